package scraper

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/oriolpt/senderisme/backend/config"
)

// DownloadFile is a utility function to download a file from a URL and save
// it to a local path. It returns an error if any step fails.
func DownloadFile(url string, localSavePath string) error {
	log.Printf("Attempting to download file from URL: %s to local path: %s\n", url, localSavePath)

	client := http.Client{
		Timeout: 30 * time.Second, // sensible timeout for a file download
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make GET request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download file from %s: received status code %d", url, resp.StatusCode)
	}

	dir := filepath.Dir(localSavePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	outFile, err := os.Create(localSavePath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localSavePath, err)
	}
	defer outFile.Close()

	_, err = io.Copy(outFile, resp.Body)
	if err != nil {
		return fmt.Errorf("failed to copy downloaded content to %s: %w", localSavePath, err)
	}

	log.Printf("Successfully downloaded %s to %s\n", url, localSavePath)
	return nil
}

// DownloadCulturalItemsCsv downloads the heritage-inventory CSV from the URL
// in the config and saves it to the configured local path. It returns the
// local path of the downloaded file or an error.
func DownloadCulturalItemsCsv() (string, error) {
	csvURL := config.AppConfig.CulturalDataset.CsvURL
	localPath := config.AppConfig.CulturalDataset.LocalCsvPath

	if csvURL == "" {
		return "", fmt.Errorf("cultural items CSV URL is not configured")
	}
	if localPath == "" {
		return "", fmt.Errorf("local save path for cultural items CSV is not configured")
	}

	err := DownloadFile(csvURL, localPath)
	if err != nil {
		return "", fmt.Errorf("failed to download cultural items CSV: %w", err)
	}
	return localPath, nil
}
