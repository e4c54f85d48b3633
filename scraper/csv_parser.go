package scraper

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"

	"github.com/jszwec/csvutil"
	"github.com/oriolpt/senderisme/backend/models"
)

// ParseCulturalItemsCsv takes an io.Reader containing the heritage-inventory
// CSV export and returns a slice of CulturalItem structs.
//
// csvutil maps the header row to struct fields via the `csv:"..."` tags in
// models.CulturalItem; the headers must match those tags exactly. Rows
// without usable coordinates are dropped here rather than poisoning the
// bounding-box index with (0, 0) items.
func ParseCulturalItemsCsv(reader io.Reader) ([]models.CulturalItem, error) {
	var raw []models.CulturalItem

	csvReader := csv.NewReader(reader)

	decoder, err := csvutil.NewDecoder(csvReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for cultural items: %w", err)
	}

	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode cultural items CSV data: %w", err)
	}

	items := make([]models.CulturalItem, 0, len(raw))
	skipped := 0
	for _, item := range raw {
		if item.Latitude == 0 && item.Longitude == 0 {
			skipped++
			continue
		}
		items = append(items, item)
	}

	if skipped > 0 {
		log.Printf("WARN: Skipped %d cultural items without coordinates.\n", skipped)
	}
	log.Printf("Successfully parsed %d cultural items from CSV.\n", len(items))
	return items, nil
}
