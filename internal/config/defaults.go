package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDictionaryPath  = "data/items.csv"
	DefaultBaseURL         = "https://api.torn.com/v2"
	DefaultAPITimeout      = 30 * time.Second
	DefaultRatePerMinute   = 60
	DefaultRetryCycles     = 4
	DefaultInitialBackoff  = 1 * time.Second
	DefaultMaxBackoff      = 30 * time.Second
	DefaultBackoffFactor   = 1.6
	DefaultConcurrency     = 4
	DefaultWebAddr         = ":8080"
	DefaultSubmitPerMinute = 10
	DefaultLogLevel        = "info"
)

func (c *Config) applyDefaults() {
	if c.Dictionary.Path == "" {
		c.Dictionary.Path = DefaultDictionaryPath
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	if c.RateLimit.PerMinute == 0 {
		c.RateLimit.PerMinute = DefaultRatePerMinute
	}

	if c.Fetch.RetryCycles == 0 {
		c.Fetch.RetryCycles = DefaultRetryCycles
	}
	if c.Fetch.InitialBackoff == 0 {
		c.Fetch.InitialBackoff = DefaultInitialBackoff
	}
	if c.Fetch.MaxBackoff == 0 {
		c.Fetch.MaxBackoff = DefaultMaxBackoff
	}
	if c.Fetch.BackoffFactor == 0 {
		c.Fetch.BackoffFactor = DefaultBackoffFactor
	}
	if c.Fetch.Concurrency == 0 {
		c.Fetch.Concurrency = DefaultConcurrency
	}

	if c.Web.Addr == "" {
		c.Web.Addr = DefaultWebAddr
	}
	if c.Web.SubmitPerMinute == 0 {
		c.Web.SubmitPerMinute = DefaultSubmitPerMinute
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
