package models

import "time"

// Route is a hiking route as stored in the routes table.
//
// Difficulty and the four interest flags are derived fields: the difficulty
// scorer and the proximity engine recompute and overwrite them. The source
// of truth is the raw metrics plus the cultural associations, never these
// columns.
type Route struct {
	ID            int64   `db:"route_id" json:"route_id"`
	Name          string  `db:"name" json:"name"`
	Description   string  `db:"description" json:"description"`
	DistanceKm    float64 `db:"distance_km" json:"distance_km"`
	Difficulty    string  `db:"difficulty" json:"difficulty"`
	ElevationGain int     `db:"elevation_gain" json:"elevation_gain"`
	Location      string  `db:"location" json:"location"`
	EstimatedTime string  `db:"estimated_time" json:"estimated_time"`
	CreatorID     int64   `db:"creator_id" json:"creator_id"`

	CulturalSummary    string `db:"cultural_summary" json:"cultural_summary"`
	HasHistoricalValue bool   `db:"has_historical_value" json:"has_historical_value"`
	HasArchaeology     bool   `db:"has_archaeology" json:"has_archaeology"`
	HasArchitecture    bool   `db:"has_architecture" json:"has_architecture"`
	HasNaturalInterest bool   `db:"has_natural_interest" json:"has_natural_interest"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// InterestFlags bundles the four derived booleans of a route.
type InterestFlags struct {
	Historical      bool `json:"has_historical_value"`
	Archaeology     bool `json:"has_archaeology"`
	Architecture    bool `json:"has_architecture"`
	NaturalInterest bool `json:"has_natural_interest"`
}

// RouteFile is a file uploaded for a route. The proximity engine only cares
// about GPX files; the first GPX reference (or failing that the first file)
// is the route's track.
type RouteFile struct {
	ID       int64  `db:"file_id" json:"file_id"`
	RouteID  int64  `db:"route_id" json:"route_id"`
	FileURL  string `db:"file_url" json:"file_url"`
	FileType string `db:"file_type" json:"file_type"`
}
