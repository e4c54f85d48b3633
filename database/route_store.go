package database

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/oriolpt/senderisme/backend/models"
)

// routeColumns builds the select list for scanRoute, optionally prefixed
// with a table alias for joined queries.
func routeColumns(alias string) string {
	cols := []string{
		"route_id", "name", "description", "distance_km", "difficulty",
		"elevation_gain", "location", "estimated_time", "creator_id",
		"cultural_summary", "has_historical_value", "has_archaeology",
		"has_architecture", "has_natural_interest", "created_at",
	}
	if alias != "" {
		for i, c := range cols {
			cols[i] = alias + "." + c
		}
	}
	return strings.Join(cols, ", ")
}

func scanRoute(scanner interface{ Scan(...any) error }) (*models.Route, error) {
	var r models.Route
	var description, difficulty, location, estimatedTime, culturalSummary sql.NullString
	var distance sql.NullFloat64
	var elevation sql.NullInt64

	err := scanner.Scan(
		&r.ID, &r.Name, &description, &distance, &difficulty,
		&elevation, &location, &estimatedTime, &r.CreatorID,
		&culturalSummary, &r.HasHistoricalValue, &r.HasArchaeology,
		&r.HasArchitecture, &r.HasNaturalInterest, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	r.Description = description.String
	r.DistanceKm = distance.Float64
	r.Difficulty = difficulty.String
	r.ElevationGain = int(elevation.Int64)
	r.Location = location.String
	r.EstimatedTime = estimatedTime.String
	r.CulturalSummary = culturalSummary.String
	return &r, nil
}

// GetRoute returns a single route or ErrNotFound.
func (s *Store) GetRoute(routeID int64) (*models.Route, error) {
	row := s.db.QueryRow(`
		SELECT `+routeColumns("")+`
		FROM routes
		WHERE route_id = ?
	`, routeID)

	route, err := scanRoute(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query route %d: %w", routeID, err)
	}
	return route, nil
}

// RecentRoutes returns up to limit routes, newest first. The reverse
// proximity search uses this as its bounded scan set.
func (s *Store) RecentRoutes(limit int) ([]models.Route, error) {
	rows, err := s.db.Query(`
		SELECT `+routeColumns("")+`
		FROM routes
		ORDER BY created_at DESC, route_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent routes: %w", err)
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			log.Printf("ERROR: Failed to scan route row: %v", err)
			continue
		}
		routes = append(routes, *r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route rows: %w", err)
	}
	return routes, nil
}

// TrackFileURL resolves the route's track reference: the first GPX file if
// one exists, otherwise the first file of any type. ErrNotFound when the
// route has no files at all.
func (s *Store) TrackFileURL(routeID int64) (string, error) {
	rows, err := s.db.Query(`
		SELECT file_url, file_type
		FROM route_files
		WHERE route_id = ?
		ORDER BY file_id ASC
	`, routeID)
	if err != nil {
		return "", fmt.Errorf("failed to query route files for route %d: %w", routeID, err)
	}
	defer rows.Close()

	var first string
	for rows.Next() {
		var fileURL, fileType string
		if err := rows.Scan(&fileURL, &fileType); err != nil {
			log.Printf("ERROR: Failed to scan route file row: %v", err)
			continue
		}
		if first == "" {
			first = fileURL
		}
		if strings.EqualFold(fileType, "GPX") {
			return fileURL, nil
		}
	}
	if err = rows.Err(); err != nil {
		return "", fmt.Errorf("error iterating route file rows: %w", err)
	}
	if first == "" {
		return "", ErrNotFound
	}
	return first, nil
}

// UpdateRouteDifficulty overwrites the derived difficulty label.
func (s *Store) UpdateRouteDifficulty(routeID int64, difficulty string) error {
	res, err := s.db.Exec(`
		UPDATE routes SET difficulty = ? WHERE route_id = ?
	`, difficulty, routeID)
	if err != nil {
		return fmt.Errorf("failed to update difficulty for route %d: %w", routeID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Unchanged label also reports 0; re-check existence before 404ing.
		var exists int
		if err := s.db.QueryRow(`SELECT 1 FROM routes WHERE route_id = ?`, routeID).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return nil
}

// UpdateRouteInterestFlags overwrites the four derived interest booleans.
func (s *Store) UpdateRouteInterestFlags(routeID int64, flags models.InterestFlags) error {
	_, err := s.db.Exec(`
		UPDATE routes
		SET has_historical_value = ?,
		    has_archaeology = ?,
		    has_architecture = ?,
		    has_natural_interest = ?
		WHERE route_id = ?
	`, flags.Historical, flags.Archaeology, flags.Architecture, flags.NaturalInterest, routeID)
	if err != nil {
		return fmt.Errorf("failed to update interest flags for route %d: %w", routeID, err)
	}
	return nil
}
