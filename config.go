package sheetview

import "github.com/rs/zerolog"

// Config represents configuration for a Collection
type Config struct {
	Logger zerolog.Logger // Debug logging of remote calls (default: disabled)
}

// DefaultConfig returns a configuration with logging disabled
func DefaultConfig() *Config {
	return &Config{
		Logger: zerolog.Nop(),
	}
}
