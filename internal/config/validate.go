package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Dictionary.Path == "" {
		return errors.New("dictionary.path is required")
	}

	// api.key is deliberately not required here: the web form and the
	// analyze command accept a per-run key.
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout <= 0 {
		return errors.New("api.timeout must be positive")
	}

	if c.RateLimit.PerMinute < 1 {
		return fmt.Errorf("rate_limit.per_minute must be >= 1, got %d", c.RateLimit.PerMinute)
	}

	if c.Fetch.RetryCycles < 1 {
		return errors.New("fetch.retry_cycles must be >= 1")
	}
	if c.Fetch.InitialBackoff <= 0 {
		return errors.New("fetch.initial_backoff must be positive")
	}
	if c.Fetch.MaxBackoff < c.Fetch.InitialBackoff {
		return fmt.Errorf("fetch.max_backoff (%v) cannot be below initial_backoff (%v)",
			c.Fetch.MaxBackoff, c.Fetch.InitialBackoff)
	}
	if c.Fetch.BackoffFactor <= 1 {
		return errors.New("fetch.backoff_factor must be > 1")
	}
	if c.Fetch.Concurrency < 1 {
		return errors.New("fetch.concurrency must be >= 1")
	}

	if c.Web.SubmitPerMinute < 1 {
		return errors.New("web.submit_per_minute must be >= 1")
	}

	return nil
}
