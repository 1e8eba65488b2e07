package common

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Fetcher     FetcherConfig    `toml:"fetcher"`
	Sync        SyncConfig       `toml:"sync"`
	Embeddings  EmbeddingsConfig `toml:"embeddings"`
	Sources     SourcesConfig    `toml:"sources"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// FetcherConfig controls the shared page fetcher: request identity, timeout
// and the retry/rate-limit behavior applied to every outbound request.
type FetcherConfig struct {
	UserAgent      string        `toml:"user_agent" validate:"required"`
	AcceptLanguage string        `toml:"accept_language"`
	RequestTimeout time.Duration `toml:"request_timeout" validate:"gt=0"`
	RequestDelay   time.Duration `toml:"request_delay"` // minimum delay between requests to one host
	MaxRetries     int           `toml:"max_retries" validate:"gte=1"`
}

// SyncConfig controls the per-partition pipeline. Concurrency and delay feed
// the batch executor that paces detail-page enrichment; both exist to stay
// under the source sites' abuse-detection thresholds.
type SyncConfig struct {
	EnrichConcurrency int           `toml:"enrich_concurrency" validate:"gte=1,lte=10"`
	EnrichBatchDelay  time.Duration `toml:"enrich_batch_delay"`
	MaxImages         int           `toml:"max_images" validate:"gte=1"`
}

// EmbeddingsConfig contains Gemini embedding provider configuration
type EmbeddingsConfig struct {
	Enabled   bool   `toml:"enabled"`
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	Dimension int    `toml:"dimension" validate:"gt=0"`
	BatchSize int    `toml:"batch_size" validate:"gte=1"`
}

type SourcesConfig struct {
	Emlakjet EmlakjetConfig `toml:"emlakjet"`
	Arabam   ArabamConfig   `toml:"arabam"`
}

// EmlakjetConfig configures the property source. Districts is the closed
// partition list; each partition is synced for both trade types.
type EmlakjetConfig struct {
	Enabled   bool     `toml:"enabled"`
	Schedule  string   `toml:"schedule"`
	BaseURL   string   `toml:"base_url"`
	SearchURL string   `toml:"search_url"`
	APIURL    string   `toml:"api_url"`
	City      string   `toml:"city"`
	Districts []string `toml:"districts"`
}

// ArabamConfig configures the vehicle source. Partitions are discovered by
// walking the brand→model category tree, so only the roots are configured.
type ArabamConfig struct {
	Enabled          bool          `toml:"enabled"`
	Schedule         string        `toml:"schedule"`
	BaseURL          string        `toml:"base_url"`
	CitySuffix       string        `toml:"city_suffix"` // appended to brand/model URLs, e.g. "-istanbul"
	ModelConcurrency int           `toml:"model_concurrency" validate:"gte=1,lte=10"`
	ModelBatchDelay  time.Duration `toml:"model_batch_delay"`
	MaxBrands        int           `toml:"max_brands"` // 0 = no limit
}

// NewDefaultConfig creates a configuration with default values. Only
// user-facing settings belong in ilansync.toml; technical parameters default
// here for production stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Fetcher: FetcherConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			AcceptLanguage: "tr-TR,tr;q=0.9,en;q=0.8",
			RequestTimeout: 10 * time.Second,
			RequestDelay:   500 * time.Millisecond,
			MaxRetries:     3,
		},
		Sync: SyncConfig{
			EnrichConcurrency: 3,
			EnrichBatchDelay:  time.Second,
			MaxImages:         3,
		},
		Embeddings: EmbeddingsConfig{
			Enabled:   false, // opt-in: requires an API key
			Model:     "gemini-embedding-001",
			Dimension: 768,
			BatchSize: 100,
		},
		Sources: SourcesConfig{
			Emlakjet: EmlakjetConfig{
				Enabled:   true,
				Schedule:  "0 0 * * *", // daily at midnight, matching the source's update cadence
				BaseURL:   "https://www.emlakjet.com",
				SearchURL: "https://search.emlakjet.com",
				APIURL:    "https://api.emlakjet.com/e6t",
				City:      "istanbul",
				Districts: AllDistricts(),
			},
			Arabam: ArabamConfig{
				Enabled:          true,
				Schedule:         "0 2 * * *", // daily, offset from the property sync
				BaseURL:          "https://www.arabam.com",
				CitySuffix:       "-istanbul",
				ModelConcurrency: 2,
				ModelBatchDelay:  1500 * time.Millisecond,
			},
		},
	}
}

// AllDistricts returns the closed Istanbul district list used as the property
// source's partition space.
func AllDistricts() []string {
	return []string{
		"adalar", "arnavutkoy", "atasehir", "avcilar", "bagcilar",
		"bahcelievler", "bakirkoy", "basaksehir", "bayrampasa", "besiktas",
		"beykoz", "beylikduzu", "beyoglu", "buyukcekmece", "catalca",
		"cekmekoy", "esenler", "esenyurt", "eyupsultan", "fatih",
		"gaziosmanpasa", "gungoren", "kadikoy", "kagithane", "kartal",
		"kucukcekmece", "maltepe", "pendik", "sancaktepe", "sariyer",
		"silivri", "sultanbeyli", "sultangazi", "sile", "sisli",
		"tuzla", "umraniye", "uskudar", "zeytinburnu",
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env.
// An empty path loads defaults plus environment overrides only.
func LoadFromFile(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides. Secrets should
// come from the environment rather than the config file.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("ILANSYNC_GEMINI_API_KEY"); v != "" {
		config.Embeddings.APIKey = v
	}
	if v := os.Getenv("ILANSYNC_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("ILANSYNC_DATA_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
}

// Validate checks the configuration against struct tags plus the cross-field
// rules the tags can't express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Embeddings.Enabled && c.Embeddings.APIKey == "" {
		return fmt.Errorf("invalid configuration: embeddings enabled but no API key set (ILANSYNC_GEMINI_API_KEY)")
	}
	if c.Sources.Emlakjet.Enabled && len(c.Sources.Emlakjet.Districts) == 0 {
		return fmt.Errorf("invalid configuration: emlakjet enabled with empty district list")
	}

	return nil
}
