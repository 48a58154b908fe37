package config

import "time"

// Config is the root configuration for the analyzer.
type Config struct {
	Dictionary DictionaryConfig `yaml:"dictionary"`
	API        APIConfig        `yaml:"api"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Fetch      FetchConfig      `yaml:"fetch"`
	Web        WebConfig        `yaml:"web"`
	Log        LogConfig        `yaml:"log"`
}

// DictionaryConfig locates the item name to id dictionary.
type DictionaryConfig struct {
	Path string `yaml:"path"`
}

// APIConfig holds market API settings.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Key     string        `yaml:"key"` // public read-only API key, usually ${TORN_API_KEY}
	Timeout time.Duration `yaml:"timeout"`
}

// RateLimitConfig bounds the outbound call rate.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
}

// FetchConfig holds retry and concurrency settings for the market fetcher.
type FetchConfig struct {
	RetryCycles    int           `yaml:"retry_cycles"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	BackoffFactor  float64       `yaml:"backoff_factor"`
	Concurrency    int           `yaml:"concurrency"`
}

// WebConfig holds the HTTP form server settings.
type WebConfig struct {
	Addr string `yaml:"addr"`

	// SubmitPerMinute throttles analyze form submissions, independent of
	// the upstream rate limit.
	SubmitPerMinute int `yaml:"submit_per_minute"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}
