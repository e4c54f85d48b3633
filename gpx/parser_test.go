package gpx

import (
	"errors"
	"testing"
)

const namespacedGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx xmlns="http://www.topografix.com/GPX/1/1" version="1.1" creator="test">
  <trk>
    <name>Camí de ronda</name>
    <trkseg>
      <trkpt lat="41.7801" lon="3.0297"><ele>12.0</ele></trkpt>
      <trkpt lat="41.7805" lon="3.0301"><ele>14.5</ele></trkpt>
      <trkpt lat="41.7810" lon="3.0310"></trkpt>
    </trkseg>
  </trk>
</gpx>`

func TestParseTrackPoints(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantCount int
	}{
		{
			name:      "namespaced GPX 1.1",
			raw:       namespacedGPX,
			wantCount: 3,
		},
		{
			name: "no namespace",
			raw: `<gpx><trk><trkseg>
				<trkpt lat="41.0" lon="2.0"/>
				<trkpt lat="41.1" lon="2.1"/>
			</trkseg></trk></gpx>`,
			wantCount: 2,
		},
		{
			name: "missing coordinate skipped",
			raw: `<gpx><trk><trkseg>
				<trkpt lat="41.0" lon="2.0"/>
				<trkpt lat="41.1"/>
				<trkpt lon="2.2"/>
				<trkpt lat="41.3" lon="2.3"/>
			</trkseg></trk></gpx>`,
			wantCount: 2,
		},
		{
			name: "non-numeric coordinate skipped",
			raw: `<gpx><trk><trkseg>
				<trkpt lat="abc" lon="2.0"/>
				<trkpt lat="41.1" lon="2.1"/>
			</trkseg></trk></gpx>`,
			wantCount: 1,
		},
		{
			name:      "no track points",
			raw:       `<gpx><wpt lat="41.0" lon="2.0"/></gpx>`,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			points, err := ParseTrackPoints(tt.raw)
			if err != nil {
				t.Fatalf("ParseTrackPoints() error = %v", err)
			}
			if len(points) != tt.wantCount {
				t.Errorf("ParseTrackPoints() returned %d points, want %d", len(points), tt.wantCount)
			}
		})
	}
}

func TestParseTrackPointsOrder(t *testing.T) {
	points, err := ParseTrackPoints(namespacedGPX)
	if err != nil {
		t.Fatalf("ParseTrackPoints() error = %v", err)
	}
	if points[0].Lat != 41.7801 || points[0].Lon != 3.0297 {
		t.Errorf("first point = %+v, want 41.7801,3.0297", points[0])
	}
	if points[2].Lat != 41.7810 || points[2].Lon != 3.0310 {
		t.Errorf("last point = %+v, want 41.7810,3.0310", points[2])
	}
}

func TestParseTrackPointsMalformed(t *testing.T) {
	_, err := ParseTrackPoints(`<gpx><trk><trkpt lat="41.0" lon="2.0">`)
	if !errors.Is(err, ErrMalformedTrack) {
		t.Errorf("error = %v, want ErrMalformedTrack", err)
	}
}

func TestParseTrackInsufficientPoints(t *testing.T) {
	_, err := ParseTrack(`<gpx><trk><trkseg><trkpt lat="41.0" lon="2.0"/></trkseg></trk></gpx>`)
	if !errors.Is(err, ErrInsufficientTrackData) {
		t.Errorf("error = %v, want ErrInsufficientTrackData", err)
	}
}

func TestSamplePoints(t *testing.T) {
	points := make([]TrackPoint, 100)
	for i := range points {
		points[i] = TrackPoint{Lat: float64(i), Lon: float64(i)}
	}

	tests := []struct {
		name      string
		stride    int
		wantCount int
	}{
		{"stride 1 keeps all", 1, 100},
		{"stride 20", 20, 5},
		{"stride 7", 7, 15},
		{"stride larger than track", 500, 1},
		{"stride 0 treated as 1", 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sampled := SamplePoints(points, tt.stride)
			if len(sampled) != tt.wantCount {
				t.Errorf("SamplePoints(stride=%d) returned %d points, want %d", tt.stride, len(sampled), tt.wantCount)
			}
			if len(sampled) > 0 && sampled[0] != points[0] {
				t.Errorf("first sampled point = %+v, want the track start", sampled[0])
			}
		})
	}
}
