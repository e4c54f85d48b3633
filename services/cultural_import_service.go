package services

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/oriolpt/senderisme/backend/config"
	"github.com/oriolpt/senderisme/backend/models"
	"github.com/oriolpt/senderisme/backend/scraper"
)

const sourceCulturalItems = "CULTURAL_ITEMS_CSV"

// ImportStore is what the importer needs from persistence.
type ImportStore interface {
	SaveCulturalItems(items []models.CulturalItem, sourceFile string) error
	GetDataSourceVersion(sourceName string) (*models.DataSourceVersion, error)
	LogDataSourceVersionUpdate(
		sourceName, sourceURL, downloadedFilename string,
		publishedUpdatedAt, lastCheckedOnCatalog, lastSuccessfullyDownloadedAt *time.Time,
	) error
}

// CulturalImportService keeps the cultural_items table in sync with the
// published heritage-inventory CSV.
type CulturalImportService struct {
	store ImportStore
}

func NewCulturalImportService(store ImportStore) *CulturalImportService {
	return &CulturalImportService{store: store}
}

// ForceUpdateCulturalItems downloads the inventory CSV, parses it and
// replaces the cultural_items table contents in one transaction, then logs
// the new version. publishedAt is the catalog's published updated date when
// the caller knows it (the freshness check passes it through); nil on a
// manual refresh.
func (c *CulturalImportService) ForceUpdateCulturalItems(publishedAt *time.Time) error {
	log.Println("Service: Forcing update of cultural items data...")

	localPath, err := scraper.DownloadCulturalItemsCsv()
	if err != nil {
		return fmt.Errorf("failed to download cultural items CSV: %w", err)
	}
	defer func() {
		if err := os.Remove(localPath); err != nil {
			log.Printf("ERROR Service: Failed to remove temporary file %s: %v\n", localPath, err)
		}
	}()

	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open downloaded file %s: %w", localPath, err)
	}
	defer file.Close()

	items, err := scraper.ParseCulturalItemsCsv(file)
	if err != nil {
		return fmt.Errorf("failed to parse cultural items CSV from %s: %w", localPath, err)
	}

	sourceFile := filepath.Base(localPath)
	if err := c.store.SaveCulturalItems(items, sourceFile); err != nil {
		return fmt.Errorf("failed to save cultural items (source file: %s): %w", sourceFile, err)
	}

	now := time.Now()
	err = c.store.LogDataSourceVersionUpdate(
		sourceCulturalItems,
		config.AppConfig.CulturalDataset.CsvURL,
		sourceFile,
		publishedAt, nil, &now,
	)
	if err != nil {
		log.Printf("ERROR Service: cultural items imported but version logging failed: %v\n", err)
	}

	log.Printf("Service: Successfully imported %d cultural items from %s\n", len(items), sourceFile)
	return nil
}

// UpdateCulturalItemsIfNeeded scrapes the dataset catalog page for the
// published updated date and reimports the CSV only when that date is newer
// than the one we imported last. Returns whether an import ran.
func (c *CulturalImportService) UpdateCulturalItemsIfNeeded() (bool, error) {
	selector := config.AppConfig.CulturalDataset.UpdatedDateSelector
	log.Printf("Service: Checking if cultural items update is needed (selector: '%s')...\n", selector)

	freshness, err := scraper.ScrapeCulturalItemsFreshness(selector)
	if err != nil {
		return false, fmt.Errorf("failed to scrape cultural dataset freshness: %w", err)
	}

	stored, err := c.store.GetDataSourceVersion(sourceCulturalItems)
	if err != nil {
		return false, err
	}

	if !importNeeded(freshness.UpdatedAt, stored) {
		log.Printf("Service: Cultural items are current (published %s).\n",
			freshness.UpdatedAt.Format("2006-01-02"))
		checked := freshness.LastChecked
		err = c.store.LogDataSourceVersionUpdate(
			sourceCulturalItems,
			config.AppConfig.CulturalDataset.CsvURL,
			stored.LastDownloadedFilename,
			stored.PublishedUpdatedAt, &checked, stored.LastSuccessfullyDownloadedAt,
		)
		if err != nil {
			log.Printf("ERROR Service: failed to record catalog check: %v\n", err)
		}
		return false, nil
	}

	log.Printf("Service: Newer cultural items published %s, reimporting.\n",
		freshness.UpdatedAt.Format("2006-01-02"))
	if err := c.ForceUpdateCulturalItems(&freshness.UpdatedAt); err != nil {
		return false, err
	}
	return true, nil
}

// importNeeded decides whether the catalog's published date obliges a
// reimport. Anything we have never imported, or imported without a known
// published date, counts as needing one.
func importNeeded(publishedAt time.Time, stored *models.DataSourceVersion) bool {
	if stored == nil || stored.PublishedUpdatedAt == nil {
		return true
	}
	published := publishedAt.Truncate(24 * time.Hour)
	imported := stored.PublishedUpdatedAt.Truncate(24 * time.Hour)
	return published.After(imported)
}
