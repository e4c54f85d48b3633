package scraper

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// ErrTrackSourceUnreachable marks a network failure while fetching a track
// file. Fatal for a forward recompute; inside a reverse-search batch the
// caller skips the route and continues.
var ErrTrackSourceUnreachable = errors.New("track source unreachable")

// maxTrackBytes caps how much of a track file is read. GPX tracks are a few
// hundred KB at most; anything larger is not a track.
const maxTrackBytes = 16 << 20

// TrackFetcher downloads GPX track files over HTTP. Unlike the CSV
// downloader it returns the body directly: the reverse search fetches many
// small files per request and a temp file per route would be waste.
type TrackFetcher struct {
	client http.Client
}

// NewTrackFetcher builds a fetcher with the given per-request timeout.
func NewTrackFetcher(timeout time.Duration) *TrackFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TrackFetcher{client: http.Client{Timeout: timeout}}
}

// FetchTrack downloads the track file at the given URL and returns its raw
// text. Transport errors and non-200 responses are reported as
// ErrTrackSourceUnreachable.
func (f *TrackFetcher) FetchTrack(url string) (string, error) {
	log.Printf("Scraper: Fetching track file from %s\n", url)

	resp, err := f.client.Get(url)
	if err != nil {
		return "", fmt.Errorf("%w: GET %s: %v", ErrTrackSourceUnreachable, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: GET %s: status code %d", ErrTrackSourceUnreachable, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTrackBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading body of %s: %v", ErrTrackSourceUnreachable, url, err)
	}
	return string(body), nil
}
