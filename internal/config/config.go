// Package config loads front-end settings from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/store"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/tolerance"
)

// Config carries the settings shared by the CLI and the HTTP server.
type Config struct {
	Addr          string
	Env           string
	BaselineDir   string
	ExtractorURL  string
	TolerancePath string
}

// Load reads configuration from the environment. A .env file, if present,
// is merged in first.
func Load() (*Config, error) {
	_ = godotenv.Load()

	addr := strings.TrimSpace(os.Getenv("STEPCM_ADDR"))
	if addr == "" {
		if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
			if strings.HasPrefix(port, ":") {
				addr = port
			} else {
				addr = ":" + port
			}
		} else {
			addr = ":8080"
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Addr:          addr,
		Env:           env,
		BaselineDir:   store.ResolveDir(os.Environ()),
		ExtractorURL:  strings.TrimSpace(os.Getenv("STEPCM_EXTRACTOR_URL")),
		TolerancePath: strings.TrimSpace(os.Getenv("STEPCM_TOLERANCES")),
	}, nil
}

// Tolerances loads the tolerance config named by the environment, or the
// defaults.
func (c *Config) Tolerances() (tolerance.Config, error) {
	return tolerance.LoadFromPath(c.TolerancePath)
}
