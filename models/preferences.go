package models

import "time"

// UserPreferences is the stated preference profile of a user. It is only
// mutated by explicit user edits; the adaptive engine never writes to it.
type UserPreferences struct {
	ID                int64     `db:"pref_id" json:"pref_id"`
	UserID            int64     `db:"user_id" json:"user_id"`
	FitnessLevel      string    `db:"fitness_level" json:"fitness_level"`
	PreferredDistance float64   `db:"preferred_distance" json:"preferred_distance"`
	EnvironmentType   string    `db:"environment_type" json:"environment_type"`
	CulturalInterest  string    `db:"cultural_interest" json:"cultural_interest"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// RouteCompletion is the per (user, route) completion record: created on the
// first completion, its counter incremented on repeats. Never deleted by
// this backend.
type RouteCompletion struct {
	ID               int64     `db:"completion_id" json:"completion_id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	RouteID          int64     `db:"route_id" json:"route_id"`
	CompletionCount  int       `db:"completion_count" json:"completion_count"`
	FirstCompletedAt time.Time `db:"first_completed_at" json:"first_completed_at"`
	LastCompletedAt  time.Time `db:"last_completed_at" json:"last_completed_at"`
}

// CompletionStats is the completion-weighted aggregate of a user's history,
// produced by the preference store in one query.
type CompletionStats struct {
	TotalCompletions  int
	AvgDistanceKm     float64
	AvgElevationGain  float64
	AvgDifficultyRank float64
}

// AdaptiveSignals is the derived "effective" view of a user's preferences:
// the stated profile blended with the completion history. Advisory output
// only: it is attached to reads and never persisted.
type AdaptiveSignals struct {
	EffectiveFitnessLevel       string  `json:"effective_fitness_level"`
	EffectiveMaxDifficulty      string  `json:"effective_max_difficulty"`
	EffectivePreferredDistance  float64 `json:"effective_preferred_distance"`
	EffectivePreferredElevation float64 `json:"effective_preferred_elevation_gain"`
	AdaptiveLearningWeight      float64 `json:"adaptive_learning_weight"`
	TotalCompletedRoutes        int     `json:"total_completed_routes"`
}
