package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Store      StoreConfig      `yaml:"store"`
	Database   DatabaseConfig   `yaml:"database"`
	Events     EventsConfig     `yaml:"events"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Log        LogConfig        `yaml:"log"`
	Business   BusinessConfig   `yaml:"business"`
	Seed       SeedConfig       `yaml:"seed"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
	CORSOrigin      string        `yaml:"cors_origin"`
}

// StoreConfig selects the key-value backend that holds the JSON collections.
type StoreConfig struct {
	Driver          string        `yaml:"driver"` // sql, redis or memory
	RedisURL        string        `yaml:"redis_url"`
	KeyPrefix       string        `yaml:"key_prefix"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite or postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogQueries             bool   `yaml:"log_queries"`
}

// EventsConfig controls forwarding of domain events to NATS.
type EventsConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// WorkerPoolConfig holds the configuration for the event forwarding worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// BusinessConfig holds the tunable business constants.
type BusinessConfig struct {
	TaxRate      float64 `yaml:"tax_rate"`
	CostRatio    float64 `yaml:"cost_ratio"`
	Timezone     string  `yaml:"timezone"`
	DefaultActor string  `yaml:"default_actor"`
}

// SeedConfig controls which default collections are written on startup.
type SeedConfig struct {
	Defaults bool `yaml:"defaults"`
	Demo     bool `yaml:"demo"`
}

// Load reads the configuration from the given path, applies defaults and
// then environment overrides.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration suitable for local development: sqlite
// store, no NATS forwarding.
func Default() *Config {
	cfg := &Config{Seed: SeedConfig{Defaults: true}}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Store.Driver == "" {
		cfg.Store.Driver = "sql"
	}
	if cfg.Store.KeyPrefix == "" {
		cfg.Store.KeyPrefix = "pos:"
	}
	cfg.Store.CacheTTL = time.Duration(cfg.Store.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == "sqlite" {
		cfg.Database.DSN = "restaurant.db"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Events.SubjectPrefix == "" {
		cfg.Events.SubjectPrefix = "pos"
	}
	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	if cfg.Business.TaxRate <= 0 {
		cfg.Business.TaxRate = 0.1
	}
	// Placeholder until real ingredient costs are tracked.
	if cfg.Business.CostRatio <= 0 {
		cfg.Business.CostRatio = 0.6
	}
	if cfg.Business.Timezone == "" {
		cfg.Business.Timezone = "Asia/Ho_Chi_Minh"
	}
	if cfg.Business.DefaultActor == "" {
		cfg.Business.DefaultActor = "system"
	}
}

// applyEnv overrides connection settings from POS_* environment variables,
// typically populated from a .env file.
func applyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv("POS_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid POS_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := os.LookupEnv("POS_STORE_DRIVER"); ok {
		cfg.Store.Driver = v
	}
	if v, ok := os.LookupEnv("POS_REDIS_URL"); ok {
		cfg.Store.RedisURL = v
	}
	if v, ok := os.LookupEnv("POS_DATABASE_DRIVER"); ok {
		cfg.Database.Driver = v
	}
	if v, ok := os.LookupEnv("POS_DATABASE_DSN"); ok {
		cfg.Database.DSN = v
	}
	if v, ok := os.LookupEnv("POS_NATS_URL"); ok {
		cfg.Events.NATSURL = v
	}
	if v, ok := os.LookupEnv("POS_LOG_LEVEL"); ok {
		cfg.Log.Level = v
	}
	return nil
}

// Location resolves the business time zone, falling back to UTC.
func (b BusinessConfig) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
