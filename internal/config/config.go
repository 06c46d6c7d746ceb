package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Attempt store kinds.
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
	} `yaml:"server"`
	Log struct {
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"maxSizeMB"`
		MaxBackups int    `yaml:"maxBackups"`
		MaxAgeDays int    `yaml:"maxAgeDays"`
	} `yaml:"log"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	SQLite struct {
		DSN string `yaml:"dsn"`
	} `yaml:"sqlite"`
	Quiz struct {
		TTL string `yaml:"ttl"`
		// Dir is a directory of YAML/JSON quiz files, used when Postgres is not configured.
		Dir string `yaml:"dir"`
	} `yaml:"quiz"`
	Attempts struct {
		// Store is memory, sqlite or postgres. Empty picks postgres when configured, else memory.
		Store string `yaml:"store"`
	} `yaml:"attempts"`
	WS struct {
		Rate  float64 `yaml:"rate"`
		Burst int     `yaml:"burst"`
	} `yaml:"ws"`
	Timer struct {
		Tick string `yaml:"tick"`
	} `yaml:"timer"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// AttemptStore resolves which attempt store to use.
func (c Config) AttemptStore() string {
	if c.Attempts.Store != "" {
		return c.Attempts.Store
	}
	if c.Postgres.URL != "" {
		return StorePostgres
	}
	return StoreMemory
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
