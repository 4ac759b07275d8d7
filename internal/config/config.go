// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration
type Config struct {
	Addr             string        `env:"GRIMOIRE_ADDR" envDefault:":8080"`
	LogLevel         string        `env:"GRIMOIRE_LOG_LEVEL" envDefault:"info"`
	LogPretty        bool          `env:"GRIMOIRE_LOG_PRETTY" envDefault:"true"`
	HistoryDBPath    string        `env:"GRIMOIRE_HISTORY_DB_PATH" envDefault:"data/history.db"`
	PublicBaseURL    string        `env:"GRIMOIRE_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	BroadcastTimeout time.Duration `env:"GRIMOIRE_BROADCAST_TIMEOUT" envDefault:"2s"`
	DefaultScript    string        `env:"GRIMOIRE_DEFAULT_SCRIPT" envDefault:"sample_trouble"`
	ShutdownTimeout  time.Duration `env:"GRIMOIRE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads optional .env files and then parses the environment.
// Variables already set in the environment win over .env values.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse loads configuration from environment variables only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.BroadcastTimeout <= 0 {
		return Config{}, fmt.Errorf("GRIMOIRE_BROADCAST_TIMEOUT must be positive")
	}
	return cfg, nil
}
