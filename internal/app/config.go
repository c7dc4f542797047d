package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from an optional YAML file (CONFIG_PATH, default config.yaml) with
// environment overrides. Secrets only come from the environment.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Recommend RecommendConfig `yaml:"recommend"`
	Otel      OtelConfig      `yaml:"otel"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Version   string          `yaml:"-"`
}

type ServerConfig struct {
	BindAddr    string   `yaml:"bind_addr" env:"BIND_ADDR" env-default:"0.0.0.0"`
	Port        string   `yaml:"port" env:"PORT" env-default:"8080"`
	LogMode     string   `yaml:"log_mode" env:"LOG_MODE" env-default:"development"`
	Environment string   `yaml:"environment" env:"ENVIRONMENT" env-default:"local"`
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
	// LogHashSalt salts identity hashes in logs.
	LogHashSalt string `yaml:"-" env:"LOG_HASH_SALT"`
}

func (s ServerConfig) Address() string {
	return s.BindAddr + ":" + s.Port
}

type DatabaseConfig struct {
	Driver     string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host       string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port       string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User       string `yaml:"user" env:"POSTGRES_USER" env-default:"greenscape"`
	Password   string `yaml:"-" env:"POSTGRES_PASSWORD"`
	Name       string `yaml:"name" env:"POSTGRES_NAME" env-default:"greenscape"`
	SSLMode    string `yaml:"sslmode" env:"POSTGRES_SSLMODE" env-default:"disable"`
	SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH" env-default:"greenscape.db"`
}

type RedisConfig struct {
	// Addr empty disables the catalog cache.
	Addr              string `yaml:"addr" env:"REDIS_ADDR"`
	Password          string `yaml:"-" env:"REDIS_PASSWORD"`
	DB                int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	KeyPrefix         string `yaml:"key_prefix" env:"REDIS_KEY_PREFIX" env-default:"greenscape"`
	CatalogTTLSeconds int    `yaml:"catalog_ttl_seconds" env:"REDIS_CATALOG_TTL_SECONDS" env-default:"300"`
}

type RecommendConfig struct {
	DefaultMaxResults int     `yaml:"default_max_results" env:"RECOMMEND_DEFAULT_MAX_RESULTS" env-default:"10"`
	MaxResultsCap     int     `yaml:"max_results_cap" env:"RECOMMEND_MAX_RESULTS_CAP" env-default:"100"`
	DefaultMinScore   float64 `yaml:"default_min_score" env:"RECOMMEND_DEFAULT_MIN_SCORE" env-default:"0.3"`
	HistoryLimitCap   int     `yaml:"history_limit_cap" env:"RECOMMEND_HISTORY_LIMIT_CAP" env-default:"100"`
	AdjacentScore     float64 `yaml:"adjacent_score" env:"RECOMMEND_ADJACENT_SCORE" env-default:"0.5"`
	UnknownScore      float64 `yaml:"unknown_score" env:"RECOMMEND_UNKNOWN_SCORE" env-default:"0.5"`
	// Weights overrides individual default criterion weights.
	Weights map[string]float64 `yaml:"weights"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint    string  `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `yaml:"insecure" env:"OTEL_EXPORTER_OTLP_INSECURE" env-default:"false"`
	Headers     string  `yaml:"-" env:"OTEL_EXPORTER_OTLP_HEADERS"`
	SampleRatio float64 `yaml:"sample_ratio" env:"OTEL_SAMPLER_RATIO" env-default:"1"`
	ServiceName string  `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"greenscape-backend"`
}

type MetricsConfig struct {
	Enabled               bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"false"`
	Addr                  string `yaml:"addr" env:"METRICS_ADDR"`
	ScrapeIntervalSeconds int    `yaml:"scrape_interval_seconds" env:"METRICS_SCRAPE_INTERVAL_SECONDS" env-default:"10"`
}

// LoadConfig reads the config file when present, otherwise the environment alone.
func LoadConfig(version string) (*Config, error) {
	cfg := &Config{Version: version}
	path := strings.TrimSpace(os.Getenv("CONFIG_PATH"))
	if path == "" {
		path = "config.yaml"
	}

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("stat %s: %w", path, statErr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var problems []string
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case "postgres", "sqlite":
	default:
		problems = append(problems, fmt.Sprintf("database.driver must be postgres or sqlite, got %q", c.Database.Driver))
	}
	r := c.Recommend
	if r.DefaultMinScore < 0 || r.DefaultMinScore > 1 {
		problems = append(problems, "recommend.default_min_score must be within [0,1]")
	}
	if r.MaxResultsCap <= 0 || r.HistoryLimitCap <= 0 || r.DefaultMaxResults <= 0 {
		problems = append(problems, "recommend caps and default_max_results must be positive")
	}
	if r.DefaultMaxResults > r.MaxResultsCap {
		problems = append(problems, "recommend.default_max_results exceeds max_results_cap")
	}
	if r.AdjacentScore < 0 || r.AdjacentScore > 1 || r.UnknownScore < 0 || r.UnknownScore > 1 {
		problems = append(problems, "recommend adjacent_score and unknown_score must be within [0,1]")
	}
	if c.Otel.SampleRatio < 0 || c.Otel.SampleRatio > 1 {
		problems = append(problems, "otel.sample_ratio must be within [0,1]")
	}
	if c.Redis.CatalogTTLSeconds < 0 {
		problems = append(problems, "redis.catalog_ttl_seconds must not be negative")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
