package services

import (
	"testing"
	"time"

	"github.com/oriolpt/senderisme/backend/models"
)

func TestImportNeeded(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad date %q: %v", s, err)
		}
		return d
	}
	ptr := func(d time.Time) *time.Time { return &d }

	tests := []struct {
		name      string
		published time.Time
		stored    *models.DataSourceVersion
		want      bool
	}{
		{
			name:      "never imported",
			published: day("2026-03-01"),
			stored:    nil,
			want:      true,
		},
		{
			name:      "imported without a published date",
			published: day("2026-03-01"),
			stored:    &models.DataSourceVersion{},
			want:      true,
		},
		{
			name:      "catalog newer than last import",
			published: day("2026-03-01"),
			stored:    &models.DataSourceVersion{PublishedUpdatedAt: ptr(day("2026-02-01"))},
			want:      true,
		},
		{
			name:      "same published date",
			published: day("2026-03-01"),
			stored:    &models.DataSourceVersion{PublishedUpdatedAt: ptr(day("2026-03-01"))},
			want:      false,
		},
		{
			name:      "catalog older than last import",
			published: day("2026-02-01"),
			stored:    &models.DataSourceVersion{PublishedUpdatedAt: ptr(day("2026-03-01"))},
			want:      false,
		},
		{
			name:      "same day different clock time",
			published: day("2026-03-01").Add(9 * time.Hour),
			stored:    &models.DataSourceVersion{PublishedUpdatedAt: ptr(day("2026-03-01"))},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := importNeeded(tt.published, tt.stored); got != tt.want {
				t.Errorf("importNeeded(%v, %+v) = %v, want %v", tt.published, tt.stored, got, tt.want)
			}
		})
	}
}
