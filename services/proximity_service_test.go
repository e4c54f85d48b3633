package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/oriolpt/senderisme/backend/config"
	"github.com/oriolpt/senderisme/backend/database"
	"github.com/oriolpt/senderisme/backend/gpx"
	"github.com/oriolpt/senderisme/backend/models"
)

func testProximityConfig() config.ProximityConfig {
	return config.ProximityConfig{
		DefaultRadiusM:      150,
		MinRadiusM:          50,
		MaxRadiusM:          20000,
		DefaultSampleStride: 1,
		MaxSampleStride:     200,
		MaxResultLimit:      50,
		MaxRoutesScanned:    100,
		MaxCacheRows:        1, // clamps up to 200
		StalenessWindow:     6 * time.Hour,
	}
}

func buildGPX(points [][2]float64) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><gpx xmlns="http://www.topografix.com/GPX/1/1"><trk><trkseg>`)
	for _, p := range points {
		fmt.Fprintf(&b, `<trkpt lat="%f" lon="%f"></trkpt>`, p[0], p[1])
	}
	b.WriteString(`</trkseg></trk></gpx>`)
	return b.String()
}

type cacheKey struct {
	itemID  int64
	radiusM int
}

type fakeStore struct {
	routes map[int64]models.Route
	items  map[int64]models.CulturalItem
	tracks map[int64]string // routeID -> file URL

	assocs map[int64]map[int64]int // routeID -> itemID -> distance
	cache  map[cacheKey]time.Time
	flags  map[int64]models.InterestFlags

	replaceCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		routes: make(map[int64]models.Route),
		items:  make(map[int64]models.CulturalItem),
		tracks: make(map[int64]string),
		assocs: make(map[int64]map[int64]int),
		cache:  make(map[cacheKey]time.Time),
		flags:  make(map[int64]models.InterestFlags),
	}
}

func (f *fakeStore) GetRoute(routeID int64) (*models.Route, error) {
	r, ok := f.routes[routeID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &r, nil
}

func (f *fakeStore) RecentRoutes(limit int) ([]models.Route, error) {
	var out []models.Route
	for _, r := range f.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) TrackFileURL(routeID int64) (string, error) {
	url, ok := f.tracks[routeID]
	if !ok {
		return "", database.ErrNotFound
	}
	return url, nil
}

func (f *fakeStore) UpdateRouteInterestFlags(routeID int64, flags models.InterestFlags) error {
	f.flags[routeID] = flags
	return nil
}

func (f *fakeStore) GetCulturalItem(itemID int64) (*models.CulturalItem, error) {
	it, ok := f.items[itemID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return &it, nil
}

func (f *fakeStore) ItemsInBoundingBox(latMin, latMax, lonMin, lonMax float64) ([]models.CulturalItem, error) {
	var out []models.CulturalItem
	for _, it := range f.items {
		if it.Latitude >= latMin && it.Latitude <= latMax && it.Longitude >= lonMin && it.Longitude <= lonMax {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeStore) ReplaceRouteAssociations(routeID int64, assocs []models.RouteCulturalItem) error {
	f.replaceCalls++
	m := make(map[int64]int, len(assocs))
	for _, a := range assocs {
		m[a.ItemID] = a.DistanceM
	}
	f.assocs[routeID] = m
	return nil
}

func (f *fakeStore) InsertAssociationIgnore(assoc models.RouteCulturalItem) error {
	m := f.assocs[assoc.RouteID]
	if m == nil {
		m = make(map[int64]int)
		f.assocs[assoc.RouteID] = m
	}
	if _, exists := m[assoc.ItemID]; !exists {
		m[assoc.ItemID] = assoc.DistanceM
	}
	return nil
}

func (f *fakeStore) AssociatedItems(routeID int64, limit int) ([]models.AssociatedItem, error) {
	var out []models.AssociatedItem
	for itemID, dist := range f.assocs[routeID] {
		out = append(out, models.AssociatedItem{CulturalItem: f.items[itemID], DistanceM: dist})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceM < out[j].DistanceM })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) AssociatedRouteIDs(itemID int64) (map[int64]bool, error) {
	out := make(map[int64]bool)
	for routeID, m := range f.assocs {
		if _, ok := m[itemID]; ok {
			out[routeID] = true
		}
	}
	return out, nil
}

func (f *fakeStore) AssociatedItemTypes(routeID int64) ([]string, error) {
	var out []string
	for itemID := range f.assocs[routeID] {
		out = append(out, f.items[itemID].ItemType)
	}
	return out, nil
}

func (f *fakeStore) RoutesAssociatedWithItem(itemID int64, limit int) ([]models.Route, error) {
	type pair struct {
		route models.Route
		dist  int
	}
	var pairs []pair
	for routeID, m := range f.assocs {
		if d, ok := m[itemID]; ok {
			pairs = append(pairs, pair{f.routes[routeID], d})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].dist < pairs[j].dist })
	var out []models.Route
	for _, p := range pairs {
		out = append(out, p.route)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) GetProximityCacheEntry(itemID int64, radiusM int) (*models.ProximityCacheEntry, error) {
	t, ok := f.cache[cacheKey{itemID, radiusM}]
	if !ok {
		return nil, nil
	}
	return &models.ProximityCacheEntry{ItemID: itemID, RadiusM: radiusM, ComputedAt: t}, nil
}

func (f *fakeStore) UpsertProximityCacheEntry(itemID int64, radiusM int) error {
	f.cache[cacheKey{itemID, radiusM}] = time.Now()
	return nil
}

func (f *fakeStore) CountProximityCacheEntries() (int, error) {
	return len(f.cache), nil
}

func (f *fakeStore) DeleteOldestProximityCacheEntries(n int) (int, error) {
	type entry struct {
		key cacheKey
		at  time.Time
	}
	var entries []entry
	for k, t := range f.cache {
		entries = append(entries, entry{k, t})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })
	if n > len(entries) {
		n = len(entries)
	}
	for _, e := range entries[:n] {
		delete(f.cache, e.key)
	}
	return n, nil
}

type fakeFetcher struct {
	byURL map[string]string
	fail  map[string]error
	calls int
}

func (f *fakeFetcher) FetchTrack(url string) (string, error) {
	f.calls++
	if err, ok := f.fail[url]; ok {
		return "", err
	}
	doc, ok := f.byURL[url]
	if !ok {
		return "", fmt.Errorf("no such track %q", url)
	}
	return doc, nil
}

// Test fixture around Sant Llorenç: a route running east along 41.66N, one
// item ~83m off the track, one item ~1.1km away.
func newFixture() (*fakeStore, *fakeFetcher, *ProximityService) {
	store := newFakeStore()
	store.routes[1] = models.Route{ID: 1, Name: "Camí dels Monjos", CreatedAt: time.Now()}
	store.tracks[1] = "http://files.test/route1.gpx"
	store.items[10] = models.CulturalItem{ID: 10, Title: "Ermita", ItemType: "Edifici", Latitude: 41.66075, Longitude: 2.001}
	store.items[11] = models.CulturalItem{ID: 11, Title: "Pou de glaç", ItemType: "Obra civil", Latitude: 41.67, Longitude: 2.0}

	fetcher := &fakeFetcher{
		byURL: map[string]string{
			"http://files.test/route1.gpx": buildGPX([][2]float64{
				{41.66, 2.000}, {41.66, 2.001}, {41.66, 2.002}, {41.66, 2.003},
			}),
		},
		fail: map[string]error{},
	}
	svc := NewProximityService(store, fetcher, testProximityConfig())
	return store, fetcher, svc
}

func TestRecomputeRouteItems(t *testing.T) {
	store, _, svc := newFixture()

	resp, err := svc.RecomputeRouteItems(1, 150, 1)
	if err != nil {
		t.Fatalf("RecomputeRouteItems: %v", err)
	}
	if resp.ItemsFound != 1 {
		t.Fatalf("ItemsFound = %d, want 1 (item 11 is ~1.1km away)", resp.ItemsFound)
	}
	dist, ok := store.assocs[1][10]
	if !ok {
		t.Fatal("item 10 not associated with route 1")
	}
	if dist < 70 || dist > 100 {
		t.Errorf("distance to item 10 = %dm, want roughly 83m", dist)
	}
	if _, ok := store.assocs[1][11]; ok {
		t.Error("item 11 associated despite being outside the radius")
	}
}

func TestRecomputeRouteItemsIdempotent(t *testing.T) {
	store, _, svc := newFixture()

	first, err := svc.RecomputeRouteItems(1, 150, 1)
	if err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	firstAssocs := fmt.Sprint(store.assocs[1])

	second, err := svc.RecomputeRouteItems(1, 150, 1)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if first.ItemsFound != second.ItemsFound {
		t.Errorf("ItemsFound changed between identical runs: %d vs %d", first.ItemsFound, second.ItemsFound)
	}
	if got := fmt.Sprint(store.assocs[1]); got != firstAssocs {
		t.Errorf("associations changed between identical runs:\n%s\nvs\n%s", firstAssocs, got)
	}
	if store.replaceCalls != 2 {
		t.Errorf("replaceCalls = %d, want 2 (each recompute replaces, never appends)", store.replaceCalls)
	}
}

func TestRecomputeRouteItemsClampsInputs(t *testing.T) {
	_, _, svc := newFixture()

	resp, err := svc.RecomputeRouteItems(1, 5, 500)
	if err != nil {
		t.Fatalf("RecomputeRouteItems: %v", err)
	}
	if resp.RadiusM != 50 {
		t.Errorf("radius 5 clamped to %d, want 50", resp.RadiusM)
	}
	if resp.Step != 200 {
		t.Errorf("stride 500 clamped to %d, want 200", resp.Step)
	}

	resp, err = svc.RecomputeRouteItems(1, 0, 0)
	if err != nil {
		t.Fatalf("RecomputeRouteItems with defaults: %v", err)
	}
	if resp.RadiusM != 150 {
		t.Errorf("zero radius defaulted to %d, want 150", resp.RadiusM)
	}
	if resp.Step != 1 {
		t.Errorf("zero stride defaulted to %d, want 1", resp.Step)
	}
}

func TestRecomputeRouteItemsErrors(t *testing.T) {
	store, fetcher, svc := newFixture()

	if _, err := svc.RecomputeRouteItems(99, 0, 0); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("unknown route: err = %v, want ErrNotFound", err)
	}

	store.routes[2] = models.Route{ID: 2, Name: "Sense track"}
	if _, err := svc.RecomputeRouteItems(2, 0, 0); !errors.Is(err, ErrNoTrackFile) {
		t.Errorf("route without file: err = %v, want ErrNoTrackFile", err)
	}

	store.routes[3] = models.Route{ID: 3}
	store.tracks[3] = "http://files.test/short.gpx"
	fetcher.byURL["http://files.test/short.gpx"] = buildGPX([][2]float64{{41.0, 2.0}})
	if _, err := svc.RecomputeRouteItems(3, 0, 0); !errors.Is(err, gpx.ErrInsufficientTrackData) {
		t.Errorf("single-point track: err = %v, want ErrInsufficientTrackData", err)
	}
}

func TestNearbyRoutesFreshCacheSkipsDownloads(t *testing.T) {
	store, fetcher, svc := newFixture()
	store.assocs[1] = map[int64]int{10: 83}
	store.cache[cacheKey{10, 150}] = time.Now().Add(-time.Hour) // within the 6h window

	resp, err := svc.NearbyRoutesForItem(10, 150, 0)
	if err != nil {
		t.Fatalf("NearbyRoutesForItem: %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("fresh cache entry triggered %d track downloads, want 0", fetcher.calls)
	}
	if len(resp.Routes) != 1 || resp.Routes[0].ID != 1 {
		t.Errorf("routes = %+v, want the one persisted association", resp.Routes)
	}
}

func TestNearbyRoutesStaleEntryTriggersDiscovery(t *testing.T) {
	store, fetcher, svc := newFixture()
	store.cache[cacheKey{10, 150}] = time.Now().Add(-7 * time.Hour) // past the 6h window

	resp, err := svc.NearbyRoutesForItem(10, 150, 0)
	if err != nil {
		t.Fatalf("NearbyRoutesForItem: %v", err)
	}
	if fetcher.calls == 0 {
		t.Error("stale cache entry did not trigger discovery")
	}
	if len(resp.Routes) != 1 || resp.Routes[0].ID != 1 {
		t.Errorf("routes = %+v, want route 1 discovered", resp.Routes)
	}
	stamped := store.cache[cacheKey{10, 150}]
	if time.Since(stamped) > time.Minute {
		t.Errorf("cache entry not restamped, ComputedAt = %v", stamped)
	}
}

func TestNearbyRoutesDiscoverySkipsKnownAssociations(t *testing.T) {
	store, fetcher, svc := newFixture()
	store.assocs[1] = map[int64]int{10: 83}

	if _, err := svc.NearbyRoutesForItem(10, 150, 0); err != nil {
		t.Fatalf("NearbyRoutesForItem: %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("already-associated route downloaded %d times, want 0", fetcher.calls)
	}
}

func TestNearbyRoutesPerRouteFailureSkipped(t *testing.T) {
	store, fetcher, svc := newFixture()
	store.routes[2] = models.Route{ID: 2, Name: "Ruta trencada", CreatedAt: time.Now()}
	store.tracks[2] = "http://files.test/broken.gpx"
	fetcher.fail["http://files.test/broken.gpx"] = errors.New("connection refused")

	resp, err := svc.NearbyRoutesForItem(10, 150, 0)
	if err != nil {
		t.Fatalf("one broken route failed the whole search: %v", err)
	}
	if len(resp.Routes) != 1 || resp.Routes[0].ID != 1 {
		t.Errorf("routes = %+v, want route 1 despite route 2 failing", resp.Routes)
	}
}

func TestNearbyRoutesCacheEviction(t *testing.T) {
	store, _, svc := newFixture()

	// Fill the cache to its clamped bound of 200. The oldest entry is for
	// item 1000 at radius 500.
	base := time.Now().Add(-48 * time.Hour)
	for i := 0; i < 200; i++ {
		store.cache[cacheKey{int64(1000 + i), 500}] = base.Add(time.Duration(i) * time.Minute)
	}

	if _, err := svc.NearbyRoutesForItem(10, 150, 0); err != nil {
		t.Fatalf("NearbyRoutesForItem: %v", err)
	}
	if got := len(store.cache); got != 200 {
		t.Fatalf("cache holds %d entries after eviction, want 200", got)
	}
	if _, ok := store.cache[cacheKey{1000, 500}]; ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := store.cache[cacheKey{10, 150}]; !ok {
		t.Error("freshly stamped entry was evicted")
	}
}

// The reverse search walks many tracks per request, so it matches against
// sampled points like the forward path does. A point only visible at full
// resolution must not produce an association.
func TestNearbyRoutesDiscoverySamplesTracks(t *testing.T) {
	store := newFakeStore()
	store.routes[1] = models.Route{ID: 1, Name: "Camí dels Monjos", CreatedAt: time.Now()}
	store.tracks[1] = "http://files.test/route1.gpx"
	store.items[10] = models.CulturalItem{ID: 10, Title: "Ermita", ItemType: "Edifici", Latitude: 41.66, Longitude: 2.001}

	// Only the second point passes the item; stride 2 samples indices 0 and
	// 2, which are ~4km north of it.
	fetcher := &fakeFetcher{
		byURL: map[string]string{
			"http://files.test/route1.gpx": buildGPX([][2]float64{
				{41.70, 2.000}, {41.66, 2.001}, {41.70, 2.002}, {41.70, 2.003},
			}),
		},
		fail: map[string]error{},
	}
	cfg := testProximityConfig()
	cfg.DefaultSampleStride = 2
	svc := NewProximityService(store, fetcher, cfg)

	resp, err := svc.NearbyRoutesForItem(10, 150, 0)
	if err != nil {
		t.Fatalf("NearbyRoutesForItem: %v", err)
	}
	if len(resp.Routes) != 0 {
		t.Errorf("routes = %+v, want none (near point lies between sample strides)", resp.Routes)
	}
	if _, ok := store.assocs[1]; ok {
		t.Errorf("association recorded from an unsampled point: %+v", store.assocs[1])
	}
}

// Interest flags served by the reverse read are rederived from the current
// associations, not trusted as stored.
func TestNearbyRoutesServesFreshInterestFlags(t *testing.T) {
	store, _, svc := newFixture()
	// Stored route row carries stale flags from before its associations
	// changed.
	route := store.routes[1]
	route.HasHistoricalValue = true
	route.HasArchitecture = false
	store.routes[1] = route

	resp, err := svc.NearbyRoutesForItem(10, 150, 0)
	if err != nil {
		t.Fatalf("NearbyRoutesForItem: %v", err)
	}
	if len(resp.Routes) != 1 {
		t.Fatalf("routes = %+v, want route 1", resp.Routes)
	}
	got := resp.Routes[0]
	if !got.HasArchitecture {
		t.Error("HasArchitecture = false, want true (the associated item is an Edifici)")
	}
	if got.HasHistoricalValue {
		t.Error("HasHistoricalValue = true, want false (stale stored flag served as truth)")
	}
	flags := store.flags[1]
	if !flags.Architecture || flags.Historical {
		t.Errorf("persisted flags not resynchronised on read: %+v", flags)
	}
}

func TestNearbyRoutesUnknownItem(t *testing.T) {
	_, _, svc := newFixture()
	if _, err := svc.NearbyRoutesForItem(999, 150, 0); !errors.Is(err, database.ErrNotFound) {
		t.Errorf("unknown item: err = %v, want ErrNotFound", err)
	}
}

func TestFindNearbyItemsKeepsMinimumDistance(t *testing.T) {
	store := newFakeStore()
	store.items[5] = models.CulturalItem{ID: 5, Latitude: 41.66, Longitude: 2.002}

	// Second point sits on top of the item; the first is ~167m away.
	points := []gpx.TrackPoint{
		{Lat: 41.66, Lon: 2.000},
		{Lat: 41.66, Lon: 2.002},
	}
	nearest, err := FindNearbyItems(points, store, 500)
	if err != nil {
		t.Fatalf("FindNearbyItems: %v", err)
	}
	d, ok := nearest[5]
	if !ok {
		t.Fatal("item 5 not found")
	}
	if d > 1 {
		t.Errorf("minimum distance = %.1fm, want ~0 (closest point wins)", d)
	}
}

func TestListRouteItemsSyncsFlags(t *testing.T) {
	store, _, svc := newFixture()
	store.assocs[1] = map[int64]int{10: 83, 11: 120}

	items, err := svc.ListRouteItems(1, 0)
	if err != nil {
		t.Fatalf("ListRouteItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != 10 {
		t.Errorf("items not ordered nearest first: %+v", items)
	}
	flags := store.flags[1]
	if !flags.Architecture {
		t.Error("Architecture flag not derived from Edifici/Obra civil associations")
	}
	if flags.Historical || flags.Archaeology || flags.NaturalInterest {
		t.Errorf("unexpected flags raised: %+v", flags)
	}
}
