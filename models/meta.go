package models

import "time"

// DataSourceVersion tracks the freshness of a downloaded static data source,
// currently only the cultural-items inventory CSV.
type DataSourceVersion struct {
	ID                           int        `db:"id" json:"id"`
	SourceName                   string     `db:"source_name" json:"source_name"` // e.g. "CULTURAL_ITEMS_CSV"
	SourceFileURL                string     `db:"source_file_url" json:"source_file_url"`
	LastDownloadedFilename       string     `db:"last_downloaded_filename" json:"last_downloaded_filename,omitempty"`
	PublishedUpdatedAt           *time.Time `db:"published_updated_at" json:"published_updated_at,omitempty"` // updated date scraped from the catalog page
	LastCheckedOnCatalog         *time.Time `db:"last_checked_on_catalog" json:"last_checked_on_catalog,omitempty"`
	LastSuccessfullyDownloadedAt *time.Time `db:"last_successfully_downloaded_at" json:"last_successfully_downloaded_at,omitempty"`
	CreatedAt                    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt                    time.Time  `db:"updated_at" json:"updated_at"`
}
