package googlesheets

import (
	"net/http"
	"time"
)

// DefaultDiscoveryURL is the discovery document of the Sheets API v4
const DefaultDiscoveryURL = "https://sheets.googleapis.com/$discovery/rest?version=v4"

// Config represents configuration specific to the Google Sheets adapter
type Config struct {
	MaxRetries    int           // Maximum number of retries for idempotent API calls (default: 3)
	RetryInterval time.Duration // Base interval between retries for exponential backoff (default: 1s)
	MaxBackoff    time.Duration // Upper bound of a single backoff (default: 20s)
	NoRetry       bool          // Disables retries; MaxRetries is ignored

	// UseRemoteSchemaDiscovery resolves the Sheets API root URL from the live
	// discovery document instead of the one compiled into the client library.
	UseRemoteSchemaDiscovery bool
	DiscoveryURL             string       // default: DefaultDiscoveryURL
	DiscoveryClient          *http.Client // default: http.DefaultClient
}

// DefaultConfig returns the recommended default configuration for Google Sheets
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:    3,
		RetryInterval: 1 * time.Second,
		MaxBackoff:    20 * time.Second,
		DiscoveryURL:  DefaultDiscoveryURL,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.NoRetry {
		c.MaxRetries = 0
	} else if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = d.RetryInterval
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.DiscoveryURL == "" {
		c.DiscoveryURL = d.DiscoveryURL
	}
	if c.DiscoveryClient == nil {
		c.DiscoveryClient = http.DefaultClient
	}
	return c
}
