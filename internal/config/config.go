// Package config loads the dashboard service configuration from the environment.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the dashboard service configuration
type Config struct {
	Stage        string   `env:"DASHBOARD_STAGE" envDefault:"dev"`
	LogLevel     string   `env:"DASHBOARD_LOG_LEVEL" envDefault:"info"`
	HTTPAddr     string   `env:"DASHBOARD_HTTP_ADDR" envDefault:":8080"`
	DefaultRange string   `env:"DASHBOARD_DEFAULT_RANGE" envDefault:"2024"`
	CSVPath      string   `env:"DASHBOARD_CSV_PATH"`
	DuckDBPath   string   `env:"DASHBOARD_DUCKDB_PATH"`
	NATSURL      string   `env:"DASHBOARD_NATS_URL"`
	NATSStream   string   `env:"DASHBOARD_NATS_STREAM" envDefault:"dashboard"`
	MilvusAddr   string   `env:"DASHBOARD_MILVUS_ADDR"`
	MemoSize     int      `env:"DASHBOARD_MEMO_SIZE" envDefault:"256"`
	CORSOrigins  []string `env:"DASHBOARD_CORS_ORIGINS" envDefault:"*" envSeparator:","`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load reads an optional .env file and parses the environment into a Config
func Load(dotenvPath string) (Config, error) {
	var cfg Config
	if dotenvPath != "" {
		if _, err := os.Stat(dotenvPath); err == nil {
			if err := godotenv.Load(dotenvPath); err != nil {
				return cfg, fmt.Errorf("load %s: %w", dotenvPath, err)
			}
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	if cfg.MemoSize < 1 {
		return cfg, fmt.Errorf("DASHBOARD_MEMO_SIZE must be positive, got %d", cfg.MemoSize)
	}
	return cfg, nil
}

// Source names the dataset source the config selects
func (c Config) Source() string {
	switch {
	case c.DuckDBPath != "":
		return "duckdb"
	case c.CSVPath != "":
		return "csv"
	default:
		return "memory"
	}
}
