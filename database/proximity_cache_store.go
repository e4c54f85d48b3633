package database

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/oriolpt/senderisme/backend/models"
)

// GetProximityCacheEntry returns the cache row for (item, radius), or nil
// when the reverse search has never been recorded for that pair.
func (s *Store) GetProximityCacheEntry(itemID int64, radiusM int) (*models.ProximityCacheEntry, error) {
	var entry models.ProximityCacheEntry
	err := s.db.QueryRow(`
		SELECT item_id, radius_m, computed_at
		FROM proximity_cache
		WHERE item_id = ? AND radius_m = ?
	`, itemID, radiusM).Scan(&entry.ItemID, &entry.RadiusM, &entry.ComputedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // absence is a normal answer, not an error
		}
		return nil, fmt.Errorf("failed to query proximity cache for item %d radius %d: %w", itemID, radiusM, err)
	}
	return &entry, nil
}

// UpsertProximityCacheEntry stamps (item, radius) with the current time.
func (s *Store) UpsertProximityCacheEntry(itemID int64, radiusM int) error {
	_, err := s.db.Exec(`
		INSERT INTO proximity_cache (item_id, radius_m, computed_at)
		VALUES (?, ?, NOW())
		ON DUPLICATE KEY UPDATE computed_at = NOW()
	`, itemID, radiusM)
	if err != nil {
		return fmt.Errorf("failed to upsert proximity cache for item %d radius %d: %w", itemID, radiusM, err)
	}
	return nil
}

// CountProximityCacheEntries returns the current cache table size.
func (s *Store) CountProximityCacheEntries() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM proximity_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count proximity cache entries: %w", err)
	}
	return count, nil
}

// DeleteOldestProximityCacheEntries evicts the n entries with the oldest
// recomputation timestamps and reports how many rows went away.
func (s *Store) DeleteOldestProximityCacheEntries(n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	res, err := s.db.Exec(`
		DELETE FROM proximity_cache
		ORDER BY computed_at ASC, item_id ASC
		LIMIT ?
	`, n)
	if err != nil {
		return 0, fmt.Errorf("failed to evict proximity cache entries: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read evicted row count: %w", err)
	}
	if deleted > 0 {
		log.Printf("Evicted %d proximity cache entries (oldest first).\n", deleted)
	}
	return int(deleted), nil
}
