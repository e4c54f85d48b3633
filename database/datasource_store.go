package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/oriolpt/senderisme/backend/models"
)

// LogDataSourceVersionUpdate inserts or updates a record in the
// data_source_versions table: when the cultural-items CSV was last checked
// on the catalog page, last downloaded, and which published updated date
// that download corresponds to.
func (s *Store) LogDataSourceVersionUpdate(
	sourceName string,
	sourceURL string,
	downloadedFilename string,
	publishedUpdatedAt *time.Time,
	lastCheckedOnCatalog *time.Time,
	lastSuccessfullyDownloadedAt *time.Time,
) error {
	var sqlPublished, sqlChecked, sqlDownloaded sql.NullTime
	if publishedUpdatedAt != nil {
		sqlPublished = sql.NullTime{Time: *publishedUpdatedAt, Valid: true}
	}
	if lastCheckedOnCatalog != nil {
		sqlChecked = sql.NullTime{Time: *lastCheckedOnCatalog, Valid: true}
	}
	if lastSuccessfullyDownloadedAt != nil {
		sqlDownloaded = sql.NullTime{Time: *lastSuccessfullyDownloadedAt, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO data_source_versions (
			source_name, source_file_url, last_downloaded_filename,
			published_updated_at, last_checked_on_catalog,
			last_successfully_downloaded_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			source_file_url = VALUES(source_file_url),
			last_downloaded_filename = VALUES(last_downloaded_filename),
			published_updated_at = VALUES(published_updated_at),
			last_checked_on_catalog = VALUES(last_checked_on_catalog),
			last_successfully_downloaded_at = VALUES(last_successfully_downloaded_at),
			updated_at = NOW()
	`, sourceName, sourceURL, downloadedFilename, sqlPublished, sqlChecked, sqlDownloaded)
	if err != nil {
		return fmt.Errorf("failed to log data source version for %s: %w", sourceName, err)
	}
	return nil
}

// GetDataSourceVersion returns the tracked version row for a source, or nil
// when the source has never been imported.
func (s *Store) GetDataSourceVersion(sourceName string) (*models.DataSourceVersion, error) {
	var v models.DataSourceVersion
	var published, checked, downloaded sql.NullTime
	var filename sql.NullString

	err := s.db.QueryRow(`
		SELECT id, source_name, source_file_url, last_downloaded_filename,
		       published_updated_at, last_checked_on_catalog,
		       last_successfully_downloaded_at, created_at, updated_at
		FROM data_source_versions
		WHERE source_name = ?
	`, sourceName).Scan(
		&v.ID, &v.SourceName, &v.SourceFileURL, &filename,
		&published, &checked, &downloaded, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query data source version for %s: %w", sourceName, err)
	}

	v.LastDownloadedFilename = filename.String
	if published.Valid {
		v.PublishedUpdatedAt = &published.Time
	}
	if checked.Valid {
		v.LastCheckedOnCatalog = &checked.Time
	}
	if downloaded.Valid {
		v.LastSuccessfullyDownloadedAt = &downloaded.Time
	}
	return &v, nil
}
