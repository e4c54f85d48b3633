package scraper

import (
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/oriolpt/senderisme/backend/config"
)

// DatasetFreshnessInfo holds the published updated date scraped from the
// dataset catalog page.
type DatasetFreshnessInfo struct {
	SourceName    string
	UpdatedAt     time.Time
	RawDateString string // the full "Actualitzat el ..." text found on the page
	LastChecked   time.Time
}

// Matches "Actualitzat el DD/MM/YYYY" as published on the catalog page.
var updatedDateRegex = regexp.MustCompile(`Actualitzat el\s+(\d{2}/\d{2}/\d{4})`)

const catalogDateLayout = "02/01/2006" // DD/MM/YYYY

// parseUpdatedDateString extracts the published date using the regex.
func parseUpdatedDateString(textToSearch string) (updated time.Time, rawMatch string, err error) {
	matches := updatedDateRegex.FindStringSubmatch(textToSearch)
	if len(matches) < 2 {
		err = fmt.Errorf("could not find 'Actualitzat el ...' pattern in provided text block")
		return
	}

	rawMatch = matches[0]
	updated, err = time.Parse(catalogDateLayout, matches[1])
	if err != nil {
		err = fmt.Errorf("failed to parse updated date '%s': %w", matches[1], err)
		return
	}
	return
}

// GetDatasetFreshness scrapes the catalog page for the dataset's published
// updated date, searching inside the given container selector.
func GetDatasetFreshness(sourceName, pageURL, containerSelector string) (*DatasetFreshnessInfo, error) {
	log.Printf("Scraper: Checking published updated date for %s from %s (container: '%s')\n",
		sourceName, pageURL, containerSelector)

	client := http.Client{Timeout: 20 * time.Second}
	res, err := client.Get(pageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get URL %s: %w", pageURL, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get URL %s: status code %d", pageURL, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}

	containerText := strings.TrimSpace(doc.Find(containerSelector).Text())
	if containerText == "" {
		log.Printf("WARN Scraper: Container '%s' is empty on page %s; falling back to full body.", containerSelector, pageURL)
		containerText = strings.TrimSpace(doc.Find("body").Text())
	}

	updated, rawStr, err := parseUpdatedDateString(containerText)
	if err != nil {
		return nil, fmt.Errorf("failed to find published updated date for %s on %s: %w", sourceName, pageURL, err)
	}

	log.Printf("Scraper: Found published updated date for %s: %s (Raw: '%s')\n",
		sourceName, updated.Format(catalogDateLayout), rawStr)

	return &DatasetFreshnessInfo{
		SourceName:    sourceName,
		UpdatedAt:     updated,
		RawDateString: rawStr,
		LastChecked:   time.Now().UTC(),
	}, nil
}

// ScrapeCulturalItemsFreshness fetches the published updated date for the
// cultural-items inventory using the selector from config.
func ScrapeCulturalItemsFreshness(containerSelector string) (*DatasetFreshnessInfo, error) {
	pageURL := config.AppConfig.CulturalDataset.CatalogPageURL
	if containerSelector == "" {
		log.Println("WARN Scraper: No CSS selector provided for the dataset updated date, using default 'body'.")
		containerSelector = "body"
	}
	return GetDatasetFreshness("CULTURAL_ITEMS_CSV", pageURL, containerSelector)
}
