// Package gpx decodes GPX track files into ordered coordinate sequences.
//
// Only the track points (<trkpt>) matter to this backend; elevation, time
// and extension elements are ignored. Files produced by different recorders
// disagree on namespaces, so elements are matched by local name.
package gpx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MinTrackPoints is the minimum number of decodable points for a track to be
// usable: below this there is nothing to sample or measure along.
const MinTrackPoints = 2

var (
	// ErrMalformedTrack marks a structurally invalid GPX document.
	ErrMalformedTrack = errors.New("malformed GPX document")

	// ErrInsufficientTrackData marks a well-formed track with fewer than
	// MinTrackPoints decodable points.
	ErrInsufficientTrackData = errors.New("track has fewer than 2 usable points")
)

// TrackPoint is a single coordinate of a track, in decimal degrees.
// Track points only live for the duration of one request; they are never
// persisted.
type TrackPoint struct {
	Lat float64
	Lon float64
}

// ParseTrackPoints extracts the ordered track points from raw GPX text.
//
// Points missing a coordinate, or with non-numeric coordinates, are skipped:
// a single corrupt point must not fail the parse. Only structurally invalid
// XML is an error (wrapped ErrMalformedTrack).
func ParseTrackPoints(raw string) ([]TrackPoint, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))

	var points []TrackPoint
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTrack, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "trkpt" {
			continue
		}

		var latStr, lonStr string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "lat":
				latStr = attr.Value
			case "lon":
				lonStr = attr.Value
			}
		}
		if latStr == "" || lonStr == "" {
			continue
		}

		lat, errLat := strconv.ParseFloat(latStr, 64)
		lon, errLon := strconv.ParseFloat(lonStr, 64)
		if errLat != nil || errLon != nil {
			continue
		}

		points = append(points, TrackPoint{Lat: lat, Lon: lon})
	}

	return points, nil
}

// ParseTrack is ParseTrackPoints plus the minimum-size check most callers
// need. A well-formed file with fewer than MinTrackPoints usable points
// returns ErrInsufficientTrackData.
func ParseTrack(raw string) ([]TrackPoint, error) {
	points, err := ParseTrackPoints(raw)
	if err != nil {
		return nil, err
	}
	if len(points) < MinTrackPoints {
		return nil, ErrInsufficientTrackData
	}
	return points, nil
}

// SamplePoints returns every strideth point of the track, always starting
// with the first point. A stride below 1 is treated as 1.
func SamplePoints(points []TrackPoint, stride int) []TrackPoint {
	if stride < 1 {
		stride = 1
	}
	if stride == 1 {
		return points
	}
	sampled := make([]TrackPoint, 0, len(points)/stride+1)
	for i := 0; i < len(points); i += stride {
		sampled = append(sampled, points[i])
	}
	return sampled
}
