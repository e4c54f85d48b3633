package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// CulturalDatasetConfig points at the heritage-inventory export and at the
// catalog page that publishes its last-updated date.
type CulturalDatasetConfig struct {
	CsvURL              string `yaml:"csv_url"`
	LocalCsvPath        string `yaml:"local_csv_path"`
	CatalogPageURL      string `yaml:"catalog_page_url"`
	UpdatedDateSelector string `yaml:"updated_date_selector"`
}

// ProximityConfig bounds the cost of a single proximity request. Caller
// inputs are clamped to the Min/Max pairs server-side regardless of what the
// request asks for.
type ProximityConfig struct {
	DefaultRadiusM      int `yaml:"default_radius_m"`
	MinRadiusM          int `yaml:"min_radius_m"`
	MaxRadiusM          int `yaml:"max_radius_m"`
	DefaultSampleStride int `yaml:"default_sample_stride"`
	MaxSampleStride     int `yaml:"max_sample_stride"`
	MaxResultLimit      int `yaml:"max_result_limit"`
	MaxRoutesScanned    int `yaml:"max_routes_scanned"`
	MaxCacheRows        int `yaml:"max_cache_rows"`

	StalenessWindowStr string        `yaml:"staleness_window"`
	StalenessWindow    time.Duration // parsed

	TrackFetchTimeoutStr string        `yaml:"track_fetch_timeout"`
	TrackFetchTimeout    time.Duration // parsed
}

// DifficultyConfig holds the score band boundaries. Bands are half-open:
// a score equal to a boundary falls into the next band up.
type DifficultyConfig struct {
	EasyBelow      float64 `yaml:"easy_below"`
	ModerateBelow  float64 `yaml:"moderate_below"`
	DifficultBelow float64 `yaml:"difficult_below"`
}

type Config struct {
	Server          ServerConfig          `yaml:"server"`
	Database        DatabaseConfig        `yaml:"database"`
	CulturalDataset CulturalDatasetConfig `yaml:"cultural_dataset"`
	Proximity       ProximityConfig       `yaml:"proximity"`
	Difficulty      DifficultyConfig      `yaml:"difficulty"`
}

var AppConfig Config

// LoadConfig reads the YAML configuration, applies defaults for anything
// left unset and parses duration strings.
func LoadConfig(configPath string) error {
	file, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(file, &AppConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&AppConfig)

	if AppConfig.Proximity.StalenessWindowStr != "" {
		AppConfig.Proximity.StalenessWindow, err = time.ParseDuration(AppConfig.Proximity.StalenessWindowStr)
		if err != nil {
			return fmt.Errorf("failed to parse proximity.staleness_window: %w", err)
		}
	}
	if AppConfig.Proximity.TrackFetchTimeoutStr != "" {
		AppConfig.Proximity.TrackFetchTimeout, err = time.ParseDuration(AppConfig.Proximity.TrackFetchTimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse proximity.track_fetch_timeout: %w", err)
		}
	}

	// Environment overrides for DB credentials (loaded from .env by main).
	if v := os.Getenv("DB_HOST"); v != "" {
		AppConfig.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		AppConfig.Database.Port = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		AppConfig.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		AppConfig.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		AppConfig.Database.DBName = v
	}

	return nil
}

func applyDefaults(cfg *Config) {
	p := &cfg.Proximity
	if p.DefaultRadiusM == 0 {
		p.DefaultRadiusM = 150
	}
	if p.MinRadiusM == 0 {
		p.MinRadiusM = 50
	}
	if p.MaxRadiusM == 0 {
		p.MaxRadiusM = 20000
	}
	if p.DefaultSampleStride == 0 {
		p.DefaultSampleStride = 20
	}
	if p.MaxSampleStride == 0 {
		p.MaxSampleStride = 200
	}
	if p.MaxResultLimit == 0 {
		p.MaxResultLimit = 50
	}
	if p.MaxRoutesScanned == 0 {
		p.MaxRoutesScanned = 100
	}
	if p.MaxCacheRows == 0 {
		p.MaxCacheRows = 2000
	}
	if p.StalenessWindowStr == "" {
		p.StalenessWindow = 6 * time.Hour
	}
	if p.TrackFetchTimeoutStr == "" {
		p.TrackFetchTimeout = 15 * time.Second
	}

	d := &cfg.Difficulty
	if d.EasyBelow == 0 {
		d.EasyBelow = 5
	}
	if d.ModerateBelow == 0 {
		d.ModerateBelow = 15
	}
	if d.DifficultBelow == 0 {
		d.DifficultBelow = 30
	}
}
