// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetRateLimitRPS() float64
	GetRateLimitBurst() int
	IsMetricsEnabled() bool
}

// GeocodeConfig provides settings for the Nominatim search client.
type GeocodeConfig interface {
	GetNominatimURL() string
	GetNominatimUserAgent() string
	GetNominatimTimeout() time.Duration
	GetNominatimMinInterval() time.Duration
}

// GeneratorConfig provides settings for the address generator orchestrator.
type GeneratorConfig interface {
	GetDefaultCountry() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	CORSAllowAll         bool
	CORSOrigins          []string
	RateLimitRPS         float64
	RateLimitBurst       int
	MetricsEnabled       bool
	NominatimURL         string
	NominatimUserAgent   string
	NominatimTimeout     time.Duration
	NominatimMinInterval time.Duration
	DefaultCountry       string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetRateLimitRPS() float64 { return c.RateLimitRPS }
func (c *Config) GetRateLimitBurst() int   { return c.RateLimitBurst }
func (c *Config) IsMetricsEnabled() bool   { return c.MetricsEnabled }

// GeocodeConfig implementation
func (c *Config) GetNominatimURL() string                { return c.NominatimURL }
func (c *Config) GetNominatimUserAgent() string          { return c.NominatimUserAgent }
func (c *Config) GetNominatimTimeout() time.Duration     { return c.NominatimTimeout }
func (c *Config) GetNominatimMinInterval() time.Duration { return c.NominatimMinInterval }

// GeneratorConfig implementation
func (c *Config) GetDefaultCountry() string { return c.DefaultCountry }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8000"),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		RateLimitRPS:         mustFloat(getEnv("RATE_LIMIT_RPS", "2")),
		RateLimitBurst:       mustInt(getEnv("RATE_LIMIT_BURST", "5")),
		MetricsEnabled:       strings.EqualFold(getEnv("METRICS_ENABLED", "true"), "true"),
		NominatimURL:         strings.TrimRight(getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"), "/"),
		NominatimUserAgent:   getEnv("NOMINATIM_USER_AGENT", "RealAddressGenerator/1.0 (contact@example.com)"),
		NominatimTimeout:     mustDuration(getEnv("NOMINATIM_TIMEOUT", "25s")),
		NominatimMinInterval: mustDuration(getEnv("NOMINATIM_MIN_INTERVAL", "1100ms")),
		DefaultCountry:       strings.ToUpper(strings.TrimSpace(getEnv("DEFAULT_COUNTRY", "US"))),
	}

	if _, err := url.ParseRequestURI(cfg.NominatimURL); err != nil {
		return nil, fmt.Errorf("NOMINATIM_URL is invalid: %w", err)
	}
	if strings.TrimSpace(cfg.NominatimUserAgent) == "" {
		return nil, fmt.Errorf("NOMINATIM_USER_AGENT is required")
	}
	if cfg.NominatimTimeout <= 0 {
		return nil, fmt.Errorf("NOMINATIM_TIMEOUT must be a positive duration")
	}
	// Nominatim's usage policy caps clients at one request per second.
	if cfg.NominatimMinInterval < time.Second {
		return nil, fmt.Errorf("NOMINATIM_MIN_INTERVAL must be at least 1s")
	}
	if len(cfg.DefaultCountry) != 2 {
		return nil, fmt.Errorf("DEFAULT_COUNTRY must be a two-letter ISO code")
	}
	if cfg.RateLimitRPS <= 0 || cfg.RateLimitBurst <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
