package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/oriolpt/senderisme/backend/models"
)

// GetCulturalItem returns a single cultural item or ErrNotFound.
func (s *Store) GetCulturalItem(itemID int64) (*models.CulturalItem, error) {
	var item models.CulturalItem
	var description, period, sourceURL sql.NullString

	err := s.db.QueryRow(`
		SELECT item_id, title, description, latitude, longitude, period, item_type, source_url
		FROM cultural_items
		WHERE item_id = ?
	`, itemID).Scan(
		&item.ID, &item.Title, &description, &item.Latitude, &item.Longitude,
		&period, &item.ItemType, &sourceURL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cultural item %d: %w", itemID, err)
	}
	item.Description = description.String
	item.Period = period.String
	item.SourceURL = sourceURL.String
	return &item, nil
}

// ItemsInBoundingBox returns the cultural items whose coordinates fall in
// the given rectangle. This is the cheap pre-filter the proximity matcher
// pushes down to the database; exact distance filtering happens above it.
func (s *Store) ItemsInBoundingBox(latMin, latMax, lonMin, lonMax float64) ([]models.CulturalItem, error) {
	rows, err := s.db.Query(`
		SELECT item_id, title, description, latitude, longitude, period, item_type, source_url
		FROM cultural_items
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
	`, latMin, latMax, lonMin, lonMax)
	if err != nil {
		return nil, fmt.Errorf("failed to query cultural items in bounding box: %w", err)
	}
	defer rows.Close()

	var items []models.CulturalItem
	for rows.Next() {
		var item models.CulturalItem
		var description, period, sourceURL sql.NullString
		err := rows.Scan(
			&item.ID, &item.Title, &description, &item.Latitude, &item.Longitude,
			&period, &item.ItemType, &sourceURL,
		)
		if err != nil {
			log.Printf("ERROR: Failed to scan cultural item row: %v", err)
			continue
		}
		item.Description = description.String
		item.Period = period.String
		item.SourceURL = sourceURL.String
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cultural item rows: %w", err)
	}
	return items, nil
}

// SaveCulturalItems loads a freshly imported inventory batch using a
// "clear and load" strategy for the given sourceFile, inside one
// transaction so readers never observe a half-loaded inventory.
func (s *Store) SaveCulturalItems(items []models.CulturalItem, sourceFile string) error {
	if len(items) == 0 {
		log.Println("No cultural items provided to save.")
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for cultural items: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec("DELETE FROM cultural_items WHERE source_file = ?", sourceFile)
	if err != nil {
		return fmt.Errorf("failed to delete old cultural items for source %s: %w", sourceFile, err)
	}
	log.Printf("Cleared existing cultural items for source: %s\n", sourceFile)

	stmt, err := tx.Prepare(`
		INSERT INTO cultural_items (
			title, description, latitude, longitude, period, item_type,
			source_url, source_file, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, NOW())
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cultural item insert statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		_, err := stmt.Exec(
			item.Title, item.Description, item.Latitude, item.Longitude,
			item.Period, item.ItemType, item.SourceURL, sourceFile,
		)
		if err != nil {
			log.Printf("ERROR saving cultural item: %+v, Error: %v", item, err)
			return fmt.Errorf("failed to execute cultural item insert for '%s': %w", item.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction for cultural items: %w", err)
	}

	log.Printf("Successfully saved %d cultural items from source: %s\n", len(items), sourceFile)
	return nil
}
