// Package models defines the core data structures for the hrdir client.
// It holds the YAML configuration model shared by the CLI and the API client.
package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// DefaultBaseURL is the production endpoint of the HR directory API.
const DefaultBaseURL = "https://api.hrdirectory.example.com/api/v1"

// Defaults applied by SetDefaults.
const (
	DefaultBackoffSeconds = 10
	DefaultTimeout        = "1m"
	DefaultCacheTTL       = "5m"
	DefaultLogLevel       = "info"
)

// Cache backend names accepted in the cache.backend field.
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// DefaultRetryStatusCodes are the HTTP statuses retried when retry.statusCodes is empty.
var DefaultRetryStatusCodes = []int{429, 500, 502, 503, 504}

// Config represents the complete configuration of the hrdir client.
type Config struct {
	API struct {
		BaseURL string `yaml:"baseURL"`
		Token   string `yaml:"token"`
		// Username and Password are accepted for compatibility with older
		// configuration files. No request path uses them; bearer tokens only.
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		Timeout            string `yaml:"timeout"`
		InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	} `yaml:"api"`

	Retry struct {
		StatusCodes    []int `yaml:"statusCodes"`
		BackoffSeconds *int  `yaml:"backoffSeconds"`
		MaxTries       int   `yaml:"maxTries"`
	} `yaml:"retry"`

	Cache struct {
		Backend string `yaml:"backend"`
		TTL     string `yaml:"ttl"`
		Redis   struct {
			Address  string `yaml:"address"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Logging struct {
		LogName string `yaml:"logName"`
		Level   string `yaml:"level"`
	} `yaml:"logging"`

	OpenTelemetry struct {
		Enabled      bool    `yaml:"enabled"`
		Endpoint     string  `yaml:"endpoint"`
		Insecure     bool    `yaml:"insecure"`
		SamplingRate float64 `yaml:"samplingRate"`
	} `yaml:"openTelemetry"`

	Metrics struct {
		Textfile string `yaml:"textfile"`
	} `yaml:"metrics"`
}

// SetDefaults sets default values for optional configuration fields.
// It is called automatically by Validate() before validation checks.
func (c *Config) SetDefaults() {
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == "" {
		c.API.Timeout = DefaultTimeout
	}
	if len(c.Retry.StatusCodes) == 0 {
		c.Retry.StatusCodes = append([]int(nil), DefaultRetryStatusCodes...)
	}
	if c.Retry.BackoffSeconds == nil {
		seconds := DefaultBackoffSeconds
		c.Retry.BackoffSeconds = &seconds
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheBackendNone
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.OpenTelemetry.Enabled && c.OpenTelemetry.SamplingRate == 0 {
		c.OpenTelemetry.SamplingRate = 1.0
	}
}

// Validate checks if the configuration is valid and returns an error if not.
// It calls SetDefaults() first and returns the first validation failure encountered.
func (c *Config) Validate() error {
	c.SetDefaults()

	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API base URL scheme: %s (must be http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid API base URL: %s (missing host)", c.API.BaseURL)
	}
	if c.API.Token == "" {
		return errors.New("API token is required")
	}
	if d, err := time.ParseDuration(c.API.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid API timeout: %s", c.API.Timeout)
	}

	for _, code := range c.Retry.StatusCodes {
		if code < 100 || code > 599 {
			return fmt.Errorf("invalid retry status code: %d", code)
		}
	}
	if *c.Retry.BackoffSeconds < 0 {
		return fmt.Errorf("invalid retry backoff: %d seconds (must be >= 0)", *c.Retry.BackoffSeconds)
	}
	if c.Retry.MaxTries < 0 {
		return fmt.Errorf("invalid retry maxTries: %d (must be >= 0, 0 means unbounded)", c.Retry.MaxTries)
	}

	switch c.Cache.Backend {
	case CacheBackendNone, CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.Redis.Address == "" {
			return errors.New("cache.redis.address is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid cache backend: %s (must be none, memory or redis)", c.Cache.Backend)
	}
	if d, err := time.ParseDuration(c.Cache.TTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid cache TTL: %s", c.Cache.TTL)
	}

	if c.OpenTelemetry.Enabled {
		if c.OpenTelemetry.Endpoint == "" {
			return errors.New("openTelemetry.endpoint is required when OpenTelemetry is enabled")
		}
		if c.OpenTelemetry.SamplingRate < 0 || c.OpenTelemetry.SamplingRate > 1 {
			return fmt.Errorf("invalid OpenTelemetry sampling rate: %.2f (must be between 0.0 and 1.0)", c.OpenTelemetry.SamplingRate)
		}
	}

	return nil
}

// GetTimeout returns the HTTP request timeout.
// Falls back to the default timeout when the configured value cannot be parsed.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultTimeout)
	}
	return d
}

// GetCacheTTL returns the cache entry lifetime.
func (c *Config) GetCacheTTL() time.Duration {
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultCacheTTL)
	}
	return d
}

// RetryBackoff returns the default delay between retried attempts.
func (c *Config) RetryBackoff() time.Duration {
	if c.Retry.BackoffSeconds == nil {
		return DefaultBackoffSeconds * time.Second
	}
	return time.Duration(*c.Retry.BackoffSeconds) * time.Second
}

// IsOTelEnabled reports whether OpenTelemetry tracing is configured.
func (c *Config) IsOTelEnabled() bool {
	return c.OpenTelemetry.Enabled && c.OpenTelemetry.Endpoint != ""
}

// MaskToken returns a masked version of the bearer token for safe logging.
// Shows the first 4 and last 4 characters with asterisks in between.
//
// Example: "abcd1234efgh5678" -> "abcd****5678"
//
// For tokens of 8 characters or fewer, returns "****".
func (c *Config) MaskToken() string {
	if len(c.API.Token) <= 8 {
		return "****"
	}
	return c.API.Token[:4] + "****" + c.API.Token[len(c.API.Token)-4:]
}
