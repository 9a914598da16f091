package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration shared by the CLI and the server.
// Flags override these values where both exist.
type Config struct {
	DBPath         string   `env:"OSUBRIDGE_DB_PATH" envDefault:"osubridge.sqlite3"`
	Port           int      `env:"OSUBRIDGE_PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"OSUBRIDGE_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ImportWorkers  int      `env:"OSUBRIDGE_IMPORT_WORKERS" envDefault:"4"`
	APIKey         string   `env:"OSU_API_KEY"`
	LogLevel       string   `env:"LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load returns Config filled from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.ImportWorkers < 1 {
		cfg.ImportWorkers = 1
	}
	return cfg, nil
}
