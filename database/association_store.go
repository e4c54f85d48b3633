package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/oriolpt/senderisme/backend/models"
)

// ReplaceRouteAssociations atomically replaces every association of a route
// with the given fresh set: delete-all, then insert, in one transaction.
// This is the forward "recompute" write; an interrupted replace must never
// leave a half-deleted, half-inserted state.
func (s *Store) ReplaceRouteAssociations(routeID int64, assocs []models.RouteCulturalItem) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for route %d associations: %w", routeID, err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM route_cultural_items WHERE route_id = ?", routeID)
	if err != nil {
		return fmt.Errorf("failed to delete old associations for route %d: %w", routeID, err)
	}

	if len(assocs) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO route_cultural_items (route_id, item_id, distance_m)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare association insert statement: %w", err)
		}
		defer stmt.Close()

		for _, a := range assocs {
			if _, err := stmt.Exec(routeID, a.ItemID, a.DistanceM); err != nil {
				return fmt.Errorf("failed to insert association route %d item %d: %w", routeID, a.ItemID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit associations for route %d: %w", routeID, err)
	}

	log.Printf("Replaced associations for route %d: %d items.\n", routeID, len(assocs))
	return nil
}

// InsertAssociationIgnore inserts one association unless the (route, item)
// pair already exists. The unique key makes concurrent duplicate inserts
// harmless no-ops, which is what the reverse search relies on.
func (s *Store) InsertAssociationIgnore(assoc models.RouteCulturalItem) error {
	_, err := s.db.Exec(`
		INSERT IGNORE INTO route_cultural_items (route_id, item_id, distance_m)
		VALUES (?, ?, ?)
	`, assoc.RouteID, assoc.ItemID, assoc.DistanceM)
	if err != nil {
		return fmt.Errorf("failed to insert association route %d item %d: %w", assoc.RouteID, assoc.ItemID, err)
	}
	return nil
}

// AssociatedItems lists a route's associated cultural items joined with
// their minimum distances, closest first.
func (s *Store) AssociatedItems(routeID int64, limit int) ([]models.AssociatedItem, error) {
	rows, err := s.db.Query(`
		SELECT ci.item_id, ci.title, ci.description, ci.latitude, ci.longitude,
		       ci.period, ci.item_type, ci.source_url, rci.distance_m
		FROM route_cultural_items rci
		JOIN cultural_items ci ON ci.item_id = rci.item_id
		WHERE rci.route_id = ?
		ORDER BY rci.distance_m ASC, ci.title ASC
		LIMIT ?
	`, routeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query associated items for route %d: %w", routeID, err)
	}
	defer rows.Close()

	var items []models.AssociatedItem
	for rows.Next() {
		var item models.AssociatedItem
		var description, period, sourceURL sql.NullString
		err := rows.Scan(
			&item.ID, &item.Title, &description, &item.Latitude, &item.Longitude,
			&period, &item.ItemType, &sourceURL, &item.DistanceM,
		)
		if err != nil {
			log.Printf("ERROR: Failed to scan associated item row: %v", err)
			continue
		}
		item.Description = description.String
		item.Period = period.String
		item.SourceURL = sourceURL.String
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating associated item rows: %w", err)
	}
	return items, nil
}

// AssociatedRouteIDs returns the set of routes already associated with an
// item. The reverse search skips these instead of re-verifying them.
func (s *Store) AssociatedRouteIDs(itemID int64) (map[int64]bool, error) {
	rows, err := s.db.Query(`
		SELECT route_id FROM route_cultural_items WHERE item_id = ?
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query associated routes for item %d: %w", itemID, err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			log.Printf("ERROR: Failed to scan associated route id: %v", err)
			continue
		}
		ids[id] = true
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating associated route ids: %w", err)
	}
	return ids, nil
}

// AssociatedItemTypes returns the raw type tag of every item associated
// with a route; the interest-flag derivation normalizes and classifies them.
func (s *Store) AssociatedItemTypes(routeID int64) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT ci.item_type
		FROM route_cultural_items rci
		JOIN cultural_items ci ON ci.item_id = rci.item_id
		WHERE rci.route_id = ?
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query item types for route %d: %w", routeID, err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var t sql.NullString
		if err := rows.Scan(&t); err != nil {
			log.Printf("ERROR: Failed to scan item type row: %v", err)
			continue
		}
		if t.Valid {
			types = append(types, t.String)
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item type rows: %w", err)
	}
	return types, nil
}

// RoutesAssociatedWithItem lists the routes associated with an item,
// closest approach first.
func (s *Store) RoutesAssociatedWithItem(itemID int64, limit int) ([]models.Route, error) {
	rows, err := s.db.Query(`
		SELECT `+routeColumns("r")+`
		FROM route_cultural_items rci
		JOIN routes r ON r.route_id = rci.route_id
		WHERE rci.item_id = ?
		ORDER BY rci.distance_m ASC, r.route_id ASC
		LIMIT ?
	`, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query routes for item %d: %w", itemID, err)
	}
	defer rows.Close()

	var routes []models.Route
	for rows.Next() {
		r, err := scanRoute(rows)
		if err != nil {
			log.Printf("ERROR: Failed to scan route row for item %d: %v", itemID, err)
			continue
		}
		routes = append(routes, *r)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating route rows for item %d: %w", itemID, err)
	}
	return routes, nil
}
