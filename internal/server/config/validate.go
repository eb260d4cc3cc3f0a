package config

import (
	"fmt"

	validator "github.com/go-playground/validator/v10"
)

var allowedLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warning": true,
	"warn":    true,
	"error":   true,
}

func validateLogLevel(fl validator.FieldLevel) bool {
	return allowedLogLevels[fl.Field().String()]
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
