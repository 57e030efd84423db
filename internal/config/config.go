package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	GeoSampa GeoSampaConfig
	Session  SessionConfig
	CORS     CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// GeoSampaConfig holds the upstream geospatial service configuration.
type GeoSampaConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds session-level defaults: the in-kind exchange unit
// prices and the identity cache location.
type SessionConfig struct {
	StoreUnitPrice float64
	AptUnitPrice   float64
	IdentityCache  string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// Load reads configuration from environment variables.
// It uses viper to read values and provides sensible defaults for development.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("GEOSAMPA_BASE_URL", "https://wms.geosampa.prefeitura.sp.gov.br/geoserver/geoportal")
	v.SetDefault("GEOSAMPA_TIMEOUT", "12s")
	v.SetDefault("STORE_UNIT_PRICE", 3000.0)
	v.SetDefault("APT_UNIT_PRICE", 4300.0)
	v.SetDefault("IDENTITY_CACHE", ".quadra/identity.json")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	// Bind environment variables
	v.AutomaticEnv()

	// Build configuration
	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		GeoSampa: GeoSampaConfig{
			BaseURL: v.GetString("GEOSAMPA_BASE_URL"),
			Timeout: v.GetDuration("GEOSAMPA_TIMEOUT"),
		},
		Session: SessionConfig{
			StoreUnitPrice: v.GetFloat64("STORE_UNIT_PRICE"),
			AptUnitPrice:   v.GetFloat64("APT_UNIT_PRICE"),
			IdentityCache:  v.GetString("IDENTITY_CACHE"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	// Validate upstream config
	if c.GeoSampa.BaseURL == "" {
		return fmt.Errorf("GEOSAMPA_BASE_URL is required")
	}
	if !strings.HasPrefix(c.GeoSampa.BaseURL, "http://") && !strings.HasPrefix(c.GeoSampa.BaseURL, "https://") {
		return fmt.Errorf("GEOSAMPA_BASE_URL must be an http(s) URL")
	}
	if c.GeoSampa.Timeout <= 0 {
		return fmt.Errorf("GEOSAMPA_TIMEOUT must be positive")
	}

	// Validate session defaults
	if c.Session.StoreUnitPrice < 0 {
		return fmt.Errorf("STORE_UNIT_PRICE must be non-negative")
	}
	if c.Session.AptUnitPrice < 0 {
		return fmt.Errorf("APT_UNIT_PRICE must be non-negative")
	}

	// Validate CORS config
	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
