// Package geo implements the great-circle distance and bounding-box
// approximations used for matching cultural items against GPX tracks.
//
// Distances are computed with the haversine formula over a mean Earth
// radius. Bounding boxes are a cheap rectangular pre-filter in degrees:
// they are deliberately over-inclusive, so a bounding-box query can never
// exclude a point that the exact haversine check would accept.
package geo

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius used by the haversine formula.
	EarthRadiusMeters = 6371000.0

	// metersPerDegreeLat is the approximate length of one degree of latitude.
	metersPerDegreeLat = 111320.0

	// minCosLat keeps the longitude scale bounded near the poles.
	minCosLat = 1e-6
)

// DistanceMeters returns the great-circle distance in meters between two
// coordinates given in decimal degrees.
func DistanceMeters(latA, lonA, latB, lonB float64) float64 {
	phi1 := latA * math.Pi / 180
	phi2 := latB * math.Pi / 180
	dPhi := (latB - latA) * math.Pi / 180
	dLambda := (lonB - lonA) * math.Pi / 180

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)

	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	// Floating-point error can push a fractionally outside [0,1] for
	// antipodal-ish inputs, which would make Sqrt return NaN.
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// BoundingBox approximates a circle of radiusMeters around (lat, lon) as a
// rectangle in degrees. The box always contains every point whose true
// distance from the center is within radiusMeters; near the poles it can be
// much larger than the circle, never smaller.
func BoundingBox(lat, lon, radiusMeters float64) (latMin, latMax, lonMin, lonMax float64) {
	dLat := radiusMeters / metersPerDegreeLat

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	dLon := radiusMeters / (metersPerDegreeLat * cosLat)

	return lat - dLat, lat + dLat, lon - dLon, lon + dLon
}
