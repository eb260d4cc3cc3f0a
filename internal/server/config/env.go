package config

import (
	"errors"
	"fmt"
	"io/fs"

	env "github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// parseEnv loads envFile into the process environment when it exists and
// then overlays every variable named in Config's env tags. Variables that
// are not set keep the current value.
func parseEnv(config *Config, envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
