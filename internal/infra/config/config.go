package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config aggregates runtime configuration used by the CLI and mock API.
type Config struct {
	API   APIConfig   `yaml:"api"`
	Geo   GeoConfig   `yaml:"geo"`
	Cache CacheConfig `yaml:"cache"`
	Mock  MockConfig  `yaml:"mock"`
}

// APIConfig points the transport client at the backend.
type APIConfig struct {
	BaseURL string        `yaml:"baseUrl"`
	Timeout time.Duration `yaml:"timeout"`
	Token   string        `yaml:"token"`
}

// GeoConfig selects and tunes the position source.
type GeoConfig struct {
	Provider     string        `yaml:"provider"` // static or none
	Latitude     float64       `yaml:"latitude"`
	Longitude    float64       `yaml:"longitude"`
	AccuracyM    float64       `yaml:"accuracyM"`
	HighAccuracy bool          `yaml:"highAccuracy"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxCacheAge  time.Duration `yaml:"maxCacheAge"`
}

// CacheConfig controls the env context cache.
type CacheConfig struct {
	TTL    time.Duration `yaml:"ttl"`
	Valkey ValkeyConfig  `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the shared cache.
type ValkeyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Prefix  string `yaml:"prefix"`
}

// MockConfig drives the development mock API server.
type MockConfig struct {
	Address        string          `yaml:"address"`
	ReadTimeout    time.Duration   `yaml:"readTimeout"`
	WriteTimeout   time.Duration   `yaml:"writeTimeout"`
	AllowedOrigins []string        `yaml:"allowedOrigins"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Postgres       PostgresConfig  `yaml:"postgres"`
	Storage        StorageConfig   `yaml:"storage"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// PostgresConfig contains DSN and pooling settings for the detections
// repository. Empty DSN selects the in-memory repository.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// StorageConfig points at an S3-compatible object store for leaf images.
// Empty endpoint selects in-memory storage.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CROPCARE_API_BASE_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("CROPCARE_API_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.API.Timeout = parsed
		}
	}
	if v := os.Getenv("CROPCARE_TOKEN"); v != "" {
		cfg.API.Token = v
	}
	if v := os.Getenv("CROPCARE_GEO_PROVIDER"); v != "" {
		cfg.Geo.Provider = v
	}
	if v := os.Getenv("CROPCARE_GEO_LAT"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Geo.Latitude = parsed
		}
	}
	if v := os.Getenv("CROPCARE_GEO_LON"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Geo.Longitude = parsed
		}
	}
	if v := os.Getenv("CROPCARE_GEO_ACCURACY_M"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Geo.AccuracyM = parsed
		}
	}
	if v := os.Getenv("CROPCARE_GEO_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Geo.Timeout = parsed
		}
	}
	if v := os.Getenv("CROPCARE_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = parsed
		}
	}
	if v := os.Getenv("CROPCARE_VALKEY_ENABLED"); v != "" {
		cfg.Cache.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CROPCARE_VALKEY_ADDR"); v != "" {
		cfg.Cache.Valkey.Addr = v
	}
	if v := os.Getenv("CROPCARE_MOCK_ADDRESS"); v != "" {
		cfg.Mock.Address = v
	}
	if v := os.Getenv("CROPCARE_MOCK_POSTGRES_DSN"); v != "" {
		cfg.Mock.Postgres.DSN = v
	}
	if v := os.Getenv("CROPCARE_MOCK_STORAGE_ENDPOINT"); v != "" {
		cfg.Mock.Storage.Endpoint = v
	}
	if v := os.Getenv("CROPCARE_MOCK_STORAGE_ACCESS_KEY"); v != "" {
		cfg.Mock.Storage.AccessKey = v
	}
	if v := os.Getenv("CROPCARE_MOCK_STORAGE_SECRET_KEY"); v != "" {
		cfg.Mock.Storage.SecretKey = v
	}
	if v := os.Getenv("CROPCARE_MOCK_STORAGE_BUCKET"); v != "" {
		cfg.Mock.Storage.Bucket = v
	}
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8080/api",
			Timeout: 20 * time.Second,
		},
		Geo: GeoConfig{
			Provider:     "none",
			HighAccuracy: true,
			Timeout:      10 * time.Second,
			MaxCacheAge:  time.Minute,
		},
		Cache: CacheConfig{
			TTL: 15 * time.Minute,
			Valkey: ValkeyConfig{
				Enabled: false,
				Prefix:  "cropcare:env",
			},
		},
		Mock: MockConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			Storage: StorageConfig{
				Bucket: "cropcare-scans",
			},
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.baseUrl cannot be empty")
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}
	switch c.Geo.Provider {
	case "static":
		if c.Geo.Latitude < -90 || c.Geo.Latitude > 90 {
			return errors.New("geo.latitude must be within [-90, 90]")
		}
		if c.Geo.Longitude < -180 || c.Geo.Longitude > 180 {
			return errors.New("geo.longitude must be within [-180, 180]")
		}
	case "none", "":
	default:
		return fmt.Errorf("geo.provider %q is not supported", c.Geo.Provider)
	}
	if c.Geo.Timeout < 0 {
		return errors.New("geo.timeout cannot be negative")
	}
	if c.Cache.TTL < 0 {
		return errors.New("cache.ttl cannot be negative")
	}
	if c.Cache.Valkey.Enabled && strings.TrimSpace(c.Cache.Valkey.Addr) == "" {
		return errors.New("cache.valkey.addr cannot be empty when the valkey cache is enabled")
	}
	if c.Mock.Address == "" {
		return errors.New("mock.address cannot be empty")
	}
	if c.Mock.RateLimit.Enabled {
		if c.Mock.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("mock.rateLimit.requestsPerMinute must be positive")
		}
		if c.Mock.RateLimit.Burst <= 0 {
			return errors.New("mock.rateLimit.burst must be positive")
		}
	}
	return nil
}
