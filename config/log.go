package config

import "github.com/rs/zerolog"

// LogConfig sets the global log level.
type LogConfig struct {
	Level string `json:"level"`
}

// Validate rejects unknown level names.
func (c LogConfig) Validate() error {
	if c.Level == "" {
		return nil
	}
	_, err := zerolog.ParseLevel(c.Level)
	return err
}
