package models

// RecomputeCulturalItemsRequest is the optional JSON body for
// POST /api/routes/{id}/cultural-items/recompute.
type RecomputeCulturalItemsRequest struct {
	RadiusM int `json:"radius_m"` // defaults from config when 0
	Step    int `json:"step"`     // sample stride; defaults from config when 0
}

// RecomputeCulturalItemsResponse summarises a forward recompute.
type RecomputeCulturalItemsResponse struct {
	RouteID    int64 `json:"route_id"`
	RadiusM    int   `json:"radius_m"`
	Step       int   `json:"step"`
	ItemsFound int   `json:"items_found"`
}

// NearbyRoutesResponse is served by GET /api/cultural-items/{id}/nearby-routes.
type NearbyRoutesResponse struct {
	ItemID  int64   `json:"item_id"`
	RadiusM int     `json:"radius_m"`
	Routes  []Route `json:"routes"`
}

// UpsertPreferencesRequest is the JSON body for PUT /api/users/{id}/preferences.
type UpsertPreferencesRequest struct {
	FitnessLevel      string  `json:"fitness_level"`
	PreferredDistance float64 `json:"preferred_distance"`
	EnvironmentType   string  `json:"environment_type"`
	CulturalInterest  string  `json:"cultural_interest"`
}

// PreferencesResponse is the stated profile plus the derived adaptive view.
type PreferencesResponse struct {
	UserPreferences
	AdaptiveSignals
}

// CompletionResponse reports a recorded completion together with the
// adaptive signals before and after it, so a client can narrate a
// preference shift.
type CompletionResponse struct {
	RouteID         int64           `json:"route_id"`
	CompletionCount int             `json:"completion_count"`
	Before          AdaptiveSignals `json:"signals_before"`
	After           AdaptiveSignals `json:"signals_after"`
}

// DifficultyResponse reports a recomputed difficulty for a route.
type DifficultyResponse struct {
	RouteID    int64  `json:"route_id"`
	Difficulty string `json:"difficulty"`
}
