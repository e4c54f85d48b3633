package models

import "time"

// CulturalItem is a geotagged point of interest from the heritage inventory.
// Items are read-only for the proximity engine; they are only written by the
// dataset importer.
//
// CSV tags match the headers of the inventory export exactly.
type CulturalItem struct {
	ID          int64   `csv:"-" db:"item_id" json:"item_id"`
	Title       string  `csv:"Title" db:"title" json:"title"`
	Description string  `csv:"Description" db:"description" json:"description"`
	Latitude    float64 `csv:"Latitude" db:"latitude" json:"latitude"`
	Longitude   float64 `csv:"Longitude" db:"longitude" json:"longitude"`
	Period      string  `csv:"Period" db:"period" json:"period"`
	ItemType    string  `csv:"Type" db:"item_type" json:"item_type"`
	SourceURL   string  `csv:"Source URL" db:"source_url" json:"source_url"`
}

// RouteCulturalItem is the persisted route↔item association: the item lies
// within the search radius of the route, at the minimum distance observed
// over all sampled track points.
//
// At most one row exists per (route, item); DistanceM is never negative and
// never exceeds the radius that produced it.
type RouteCulturalItem struct {
	RouteID   int64 `db:"route_id" json:"route_id"`
	ItemID    int64 `db:"item_id" json:"item_id"`
	DistanceM int   `db:"distance_m" json:"distance_m"`
}

// AssociatedItem is an item joined with its association distance, as served
// by the nearby-items read path.
type AssociatedItem struct {
	CulturalItem
	DistanceM int `json:"distance_m"`
}

// ProximityCacheEntry records when the reverse (item→routes) search was last
// recomputed for a given item and radius. Within the staleness window the
// reverse search answers from persisted associations alone.
//
// The table is bounded: beyond the configured maximum the oldest entries by
// ComputedAt are evicted first.
type ProximityCacheEntry struct {
	ItemID     int64     `db:"item_id" json:"item_id"`
	RadiusM    int       `db:"radius_m" json:"radius_m"`
	ComputedAt time.Time `db:"computed_at" json:"computed_at"`
}
