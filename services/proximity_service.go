package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/oriolpt/senderisme/backend/config"
	"github.com/oriolpt/senderisme/backend/database"
	"github.com/oriolpt/senderisme/backend/geo"
	"github.com/oriolpt/senderisme/backend/gpx"
	"github.com/oriolpt/senderisme/backend/models"
)

// ErrNoTrackFile means the route exists but has no track file to match
// against. Treated as a caller problem, not a server fault.
var ErrNoTrackFile = errors.New("route has no track file")

// CandidateSource provides the coarse candidate lookup for proximity
// matching. Satisfied by database.Store.
type CandidateSource interface {
	ItemsInBoundingBox(latMin, latMax, lonMin, lonMax float64) ([]models.CulturalItem, error)
}

// ProximityStore is everything the proximity engine needs from persistence.
// database.Store satisfies it; tests substitute an in-memory fake.
type ProximityStore interface {
	CandidateSource

	GetRoute(routeID int64) (*models.Route, error)
	TrackFileURL(routeID int64) (string, error)
	RecentRoutes(limit int) ([]models.Route, error)
	UpdateRouteInterestFlags(routeID int64, flags models.InterestFlags) error

	GetCulturalItem(itemID int64) (*models.CulturalItem, error)

	ReplaceRouteAssociations(routeID int64, assocs []models.RouteCulturalItem) error
	InsertAssociationIgnore(assoc models.RouteCulturalItem) error
	AssociatedItems(routeID int64, limit int) ([]models.AssociatedItem, error)
	AssociatedRouteIDs(itemID int64) (map[int64]bool, error)
	AssociatedItemTypes(routeID int64) ([]string, error)
	RoutesAssociatedWithItem(itemID int64, limit int) ([]models.Route, error)

	GetProximityCacheEntry(itemID int64, radiusM int) (*models.ProximityCacheEntry, error)
	UpsertProximityCacheEntry(itemID int64, radiusM int) error
	CountProximityCacheEntries() (int, error)
	DeleteOldestProximityCacheEntries(n int) (int, error)
}

// TrackSource downloads a route's raw GPX document. Satisfied by
// scraper.TrackFetcher.
type TrackSource interface {
	FetchTrack(url string) (string, error)
}

// ProximityService matches routes against cultural items, in both
// directions, and maintains the derived interest flags.
type ProximityService struct {
	store  ProximityStore
	tracks TrackSource
	cfg    config.ProximityConfig
}

func NewProximityService(store ProximityStore, tracks TrackSource, cfg config.ProximityConfig) *ProximityService {
	return &ProximityService{store: store, tracks: tracks, cfg: cfg}
}

// FindNearbyItems returns, for every item within radiusM of any of the
// given track points, the minimum exact distance in meters. Candidates are
// pre-filtered per point with a bounding box so the haversine only runs on
// plausible pairs.
func FindNearbyItems(points []gpx.TrackPoint, source CandidateSource, radiusM int) (map[int64]float64, error) {
	radius := float64(radiusM)
	nearest := make(map[int64]float64)

	for _, p := range points {
		latMin, latMax, lonMin, lonMax := geo.BoundingBox(p.Lat, p.Lon, radius)
		candidates, err := source.ItemsInBoundingBox(latMin, latMax, lonMin, lonMax)
		if err != nil {
			return nil, fmt.Errorf("candidate lookup failed: %w", err)
		}
		for _, item := range candidates {
			d := geo.DistanceMeters(p.Lat, p.Lon, item.Latitude, item.Longitude)
			if d > radius {
				continue
			}
			if best, seen := nearest[item.ID]; !seen || d < best {
				nearest[item.ID] = d
			}
		}
	}
	return nearest, nil
}

// RecomputeRouteItems runs the forward search for one route: download the
// track, sample it, match items within the radius, and replace the route's
// associations in one transaction. Radius and stride outside the configured
// bounds are clamped, never rejected.
func (p *ProximityService) RecomputeRouteItems(routeID int64, radiusM, stride int) (*models.RecomputeCulturalItemsResponse, error) {
	if _, err := p.store.GetRoute(routeID); err != nil {
		return nil, err
	}

	if radiusM == 0 {
		radiusM = p.cfg.DefaultRadiusM
	}
	radiusM = clampInt(radiusM, p.cfg.MinRadiusM, p.cfg.MaxRadiusM)
	if stride == 0 {
		stride = p.cfg.DefaultSampleStride
	}
	stride = clampInt(stride, 1, p.cfg.MaxSampleStride)

	points, err := p.routeTrackPoints(routeID)
	if err != nil {
		return nil, err
	}
	sampled := gpx.SamplePoints(points, stride)

	nearest, err := FindNearbyItems(sampled, p.store, radiusM)
	if err != nil {
		return nil, err
	}

	assocs := make([]models.RouteCulturalItem, 0, len(nearest))
	for itemID, dist := range nearest {
		assocs = append(assocs, models.RouteCulturalItem{
			RouteID:   routeID,
			ItemID:    itemID,
			DistanceM: int(math.Round(dist)),
		})
	}
	if err := p.store.ReplaceRouteAssociations(routeID, assocs); err != nil {
		return nil, err
	}

	log.Printf("Service: route %d recomputed, %d cultural items within %dm (stride %d, %d/%d points)",
		routeID, len(assocs), radiusM, stride, len(sampled), len(points))

	return &models.RecomputeCulturalItemsResponse{
		RouteID:    routeID,
		RadiusM:    radiusM,
		Step:       stride,
		ItemsFound: len(assocs),
	}, nil
}

// ListRouteItems serves a route's associated items, freshest flags
// included, ordered nearest first.
func (p *ProximityService) ListRouteItems(routeID int64, limit int) ([]models.AssociatedItem, error) {
	if _, err := p.store.GetRoute(routeID); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = p.cfg.MaxResultLimit
	}
	limit = clampInt(limit, 1, p.cfg.MaxResultLimit)

	if err := p.SyncRouteInterestFlags(routeID); err != nil {
		return nil, err
	}
	return p.store.AssociatedItems(routeID, limit)
}

// NearbyRoutesForItem runs the reverse search: which recent routes pass
// within radiusM of the item. Fresh cache entries answer from persisted
// associations alone; otherwise a bounded scan over recent routes discovers
// new associations, records them, and stamps the cache.
func (p *ProximityService) NearbyRoutesForItem(itemID int64, radiusM, limit int) (*models.NearbyRoutesResponse, error) {
	item, err := p.store.GetCulturalItem(itemID)
	if err != nil {
		return nil, err
	}

	if radiusM == 0 {
		radiusM = p.cfg.DefaultRadiusM
	}
	radiusM = clampInt(radiusM, p.cfg.MinRadiusM, p.cfg.MaxRadiusM)
	if limit == 0 {
		limit = p.cfg.MaxResultLimit
	}
	limit = clampInt(limit, 1, p.cfg.MaxResultLimit)

	entry, err := p.store.GetProximityCacheEntry(itemID, radiusM)
	if err != nil {
		return nil, err
	}
	fresh := entry != nil && time.Since(entry.ComputedAt) < p.cfg.StalenessWindow

	if !fresh {
		if err := p.discoverRoutesNearItem(item, radiusM); err != nil {
			return nil, err
		}
		if err := p.store.UpsertProximityCacheEntry(itemID, radiusM); err != nil {
			return nil, err
		}
		if err := p.evictCacheOverflow(); err != nil {
			log.Printf("WARN: Service: proximity cache eviction failed: %v", err)
		}
	}

	routes, err := p.store.RoutesAssociatedWithItem(itemID, limit)
	if err != nil {
		return nil, err
	}
	// Interest flags are derived data; serve them freshly rederived, never
	// as stored.
	for i := range routes {
		flags, err := p.syncInterestFlags(routes[i].ID)
		if err != nil {
			return nil, err
		}
		routes[i].HasHistoricalValue = flags.Historical
		routes[i].HasArchaeology = flags.Archaeology
		routes[i].HasArchitecture = flags.Architecture
		routes[i].HasNaturalInterest = flags.NaturalInterest
	}
	return &models.NearbyRoutesResponse{
		ItemID:  itemID,
		RadiusM: radiusM,
		Routes:  routes,
	}, nil
}

// discoverRoutesNearItem scans the most recent routes not yet associated
// with the item and records an association for each one that passes within
// the radius. A failure on one route (missing file, unreachable host,
// unparseable track) skips that route and moves on.
func (p *ProximityService) discoverRoutesNearItem(item *models.CulturalItem, radiusM int) error {
	scanLimit := clampInt(p.cfg.MaxRoutesScanned, 10, 200)
	routes, err := p.store.RecentRoutes(scanLimit)
	if err != nil {
		return err
	}
	known, err := p.store.AssociatedRouteIDs(item.ID)
	if err != nil {
		return err
	}

	for _, route := range routes {
		if known[route.ID] {
			continue
		}
		dist, ok, err := p.routeDistanceToItem(route.ID, item, radiusM)
		if err != nil {
			log.Printf("WARN: Service: skipping route %d in reverse search for item %d: %v", route.ID, item.ID, err)
			continue
		}
		if !ok {
			continue
		}
		assoc := models.RouteCulturalItem{
			RouteID:   route.ID,
			ItemID:    item.ID,
			DistanceM: int(math.Round(dist)),
		}
		if err := p.store.InsertAssociationIgnore(assoc); err != nil {
			return err
		}
	}
	return nil
}

// routeDistanceToItem downloads one route's track, samples it at the
// configured stride and finds the minimum distance from any sampled point
// to the item. Reports ok=false when no point comes within radiusM.
// Short-circuits below a meter; closer than that makes no difference to an
// integer distance.
func (p *ProximityService) routeDistanceToItem(routeID int64, item *models.CulturalItem, radiusM int) (float64, bool, error) {
	points, err := p.routeTrackPoints(routeID)
	if err != nil {
		return 0, false, err
	}
	stride := clampInt(p.cfg.DefaultSampleStride, 1, p.cfg.MaxSampleStride)
	points = gpx.SamplePoints(points, stride)

	radius := float64(radiusM)
	best := math.Inf(1)
	for _, pt := range points {
		d := geo.DistanceMeters(pt.Lat, pt.Lon, item.Latitude, item.Longitude)
		if d < best {
			best = d
			if best < 1 {
				break
			}
		}
	}
	if best > radius {
		return 0, false, nil
	}
	return best, true, nil
}

func (p *ProximityService) routeTrackPoints(routeID int64) ([]gpx.TrackPoint, error) {
	fileURL, err := p.store.TrackFileURL(routeID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoTrackFile
		}
		return nil, err
	}
	raw, err := p.tracks.FetchTrack(fileURL)
	if err != nil {
		return nil, err
	}
	return gpx.ParseTrack(raw)
}

// evictCacheOverflow trims the proximity cache back to the configured
// maximum, oldest entries first. The bound is clamped so a misconfigured
// value can neither empty the cache nor let it grow without limit.
func (p *ProximityService) evictCacheOverflow() error {
	maxRows := clampInt(p.cfg.MaxCacheRows, 200, 10000)
	count, err := p.store.CountProximityCacheEntries()
	if err != nil {
		return err
	}
	if count <= maxRows {
		return nil
	}
	evicted, err := p.store.DeleteOldestProximityCacheEntries(count - maxRows)
	if err != nil {
		return err
	}
	log.Printf("Service: proximity cache evicted %d entries (%d > max %d)", evicted, count, maxRows)
	return nil
}

// SyncRouteInterestFlags rederives the route's four interest flags from the
// element types of its current associations and persists them.
func (p *ProximityService) SyncRouteInterestFlags(routeID int64) error {
	_, err := p.syncInterestFlags(routeID)
	return err
}

func (p *ProximityService) syncInterestFlags(routeID int64) (models.InterestFlags, error) {
	types, err := p.store.AssociatedItemTypes(routeID)
	if err != nil {
		return models.InterestFlags{}, err
	}
	flags := DeriveInterestFlags(types)
	if err := p.store.UpdateRouteInterestFlags(routeID, flags); err != nil {
		return models.InterestFlags{}, err
	}
	return flags, nil
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
