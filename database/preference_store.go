package database

import (
	"database/sql"
	"fmt"

	"github.com/oriolpt/senderisme/backend/models"
)

// GetUserPreferences returns a user's stated profile, or ErrNotFound when
// the user has never saved one.
func (s *Store) GetUserPreferences(userID int64) (*models.UserPreferences, error) {
	var p models.UserPreferences
	var fitness, environment, cultural sql.NullString
	var distance sql.NullFloat64

	err := s.db.QueryRow(`
		SELECT pref_id, user_id, fitness_level, preferred_distance,
		       environment_type, cultural_interest, updated_at
		FROM user_preferences
		WHERE user_id = ?
	`, userID).Scan(&p.ID, &p.UserID, &fitness, &distance, &environment, &cultural, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query preferences for user %d: %w", userID, err)
	}
	p.FitnessLevel = fitness.String
	p.PreferredDistance = distance.Float64
	p.EnvironmentType = environment.String
	p.CulturalInterest = cultural.String
	return &p, nil
}

// UpsertUserPreferences creates or overwrites the stated profile.
func (s *Store) UpsertUserPreferences(userID int64, req models.UpsertPreferencesRequest) (*models.UserPreferences, error) {
	_, err := s.db.Exec(`
		INSERT INTO user_preferences (
			user_id, fitness_level, preferred_distance,
			environment_type, cultural_interest, updated_at
		) VALUES (?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			fitness_level = VALUES(fitness_level),
			preferred_distance = VALUES(preferred_distance),
			environment_type = VALUES(environment_type),
			cultural_interest = VALUES(cultural_interest),
			updated_at = NOW()
	`, userID, req.FitnessLevel, req.PreferredDistance, req.EnvironmentType, req.CulturalInterest)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert preferences for user %d: %w", userID, err)
	}
	return s.GetUserPreferences(userID)
}

// RecordCompletion creates the (user, route) completion row on first
// completion and increments its counter on repeats. Returns the new count.
func (s *Store) RecordCompletion(userID, routeID int64) (int, error) {
	_, err := s.db.Exec(`
		INSERT INTO user_route_completions (
			user_id, route_id, completion_count, first_completed_at, last_completed_at
		) VALUES (?, ?, 1, NOW(), NOW())
		ON DUPLICATE KEY UPDATE
			completion_count = completion_count + 1,
			last_completed_at = NOW()
	`, userID, routeID)
	if err != nil {
		return 0, fmt.Errorf("failed to record completion for user %d route %d: %w", userID, routeID, err)
	}

	var count int
	err = s.db.QueryRow(`
		SELECT completion_count
		FROM user_route_completions
		WHERE user_id = ? AND route_id = ?
	`, userID, routeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to read completion count for user %d route %d: %w", userID, routeID, err)
	}
	return count, nil
}

// GetCompletionStats aggregates a user's completion history in one query:
// completion-weighted averages of distance, elevation gain and the
// difficulty rank classified from the route's free-text label.
func (s *Store) GetCompletionStats(userID int64) (models.CompletionStats, error) {
	var stats models.CompletionStats
	err := s.db.QueryRow(`
		SELECT
			COALESCE(SUM(urc.completion_count), 0) AS total_completions,
			COALESCE(
				SUM(urc.completion_count * COALESCE(r.distance_km, 0))
				/ NULLIF(SUM(urc.completion_count), 0),
				0
			) AS avg_distance_km,
			COALESCE(
				SUM(urc.completion_count * COALESCE(r.elevation_gain, 0))
				/ NULLIF(SUM(urc.completion_count), 0),
				0
			) AS avg_elevation_gain,
			COALESCE(
				SUM(
					urc.completion_count *
					CASE
						WHEN LOWER(COALESCE(r.difficulty, '')) LIKE '%molt%' OR LOWER(COALESCE(r.difficulty, '')) LIKE '%muy%' THEN 3
						WHEN LOWER(COALESCE(r.difficulty, '')) LIKE '%dif%' THEN 2
						WHEN LOWER(COALESCE(r.difficulty, '')) LIKE '%mitj%' OR LOWER(COALESCE(r.difficulty, '')) LIKE '%moder%' OR LOWER(COALESCE(r.difficulty, '')) LIKE '%media%' THEN 1
						ELSE 0
					END
				)
				/ NULLIF(SUM(urc.completion_count), 0),
				0
			) AS avg_difficulty_rank
		FROM user_route_completions urc
		JOIN routes r ON r.route_id = urc.route_id
		WHERE urc.user_id = ?
	`, userID).Scan(
		&stats.TotalCompletions, &stats.AvgDistanceKm,
		&stats.AvgElevationGain, &stats.AvgDifficultyRank,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.CompletionStats{}, nil
		}
		return models.CompletionStats{}, fmt.Errorf("failed to aggregate completion stats for user %d: %w", userID, err)
	}
	return stats, nil
}
