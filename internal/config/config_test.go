package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_WithDefaults(t *testing.T) {
	clearConfigEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Verify defaults
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "development" {
		t.Errorf("Expected env development, got %s", cfg.Server.Env)
	}
	if cfg.GeoSampa.BaseURL != "https://wms.geosampa.prefeitura.sp.gov.br/geoserver/geoportal" {
		t.Errorf("Expected GeoSampa default base URL, got %s", cfg.GeoSampa.BaseURL)
	}
	if cfg.GeoSampa.Timeout != 12*time.Second {
		t.Errorf("Expected 12s timeout, got %s", cfg.GeoSampa.Timeout)
	}
	if cfg.Session.StoreUnitPrice != 3000 {
		t.Errorf("Expected store unit price 3000, got %f", cfg.Session.StoreUnitPrice)
	}
	if cfg.Session.AptUnitPrice != 4300 {
		t.Errorf("Expected apartment unit price 4300, got %f", cfg.Session.AptUnitPrice)
	}
	if cfg.Session.IdentityCache != ".quadra/identity.json" {
		t.Errorf("Expected default identity cache path, got %s", cfg.Session.IdentityCache)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %d", len(cfg.CORS.Origins))
	}
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("ENV", "production")
	os.Setenv("GEOSAMPA_BASE_URL", "http://localhost:8600/geoserver/geoportal")
	os.Setenv("GEOSAMPA_TIMEOUT", "5s")
	os.Setenv("STORE_UNIT_PRICE", "3500")
	os.Setenv("APT_UNIT_PRICE", "5000")
	os.Setenv("IDENTITY_CACHE", "/tmp/quadra-identity.json")
	os.Setenv("CORS_ORIGINS", "http://example.com,https://app.example.com")
	defer clearConfigEnvVars()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Server.Env != "production" {
		t.Errorf("Expected env production, got %s", cfg.Server.Env)
	}
	if cfg.GeoSampa.BaseURL != "http://localhost:8600/geoserver/geoportal" {
		t.Errorf("Expected overridden base URL, got %s", cfg.GeoSampa.BaseURL)
	}
	if cfg.GeoSampa.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", cfg.GeoSampa.Timeout)
	}
	if cfg.Session.StoreUnitPrice != 3500 {
		t.Errorf("Expected store unit price 3500, got %f", cfg.Session.StoreUnitPrice)
	}
	if cfg.Session.AptUnitPrice != 5000 {
		t.Errorf("Expected apartment unit price 5000, got %f", cfg.Session.AptUnitPrice)
	}
	if cfg.Session.IdentityCache != "/tmp/quadra-identity.json" {
		t.Errorf("Expected overridden identity cache path, got %s", cfg.Session.IdentityCache)
	}
	if len(cfg.CORS.Origins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %d", len(cfg.CORS.Origins))
	}
	if cfg.CORS.Origins[0] != "http://example.com" {
		t.Errorf("Expected first origin http://example.com, got %s", cfg.CORS.Origins[0])
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		Server: ServerConfig{Port: "8080", Env: "development"},
		GeoSampa: GeoSampaConfig{
			BaseURL: "https://wms.geosampa.prefeitura.sp.gov.br/geoserver/geoportal",
			Timeout: 12 * time.Second,
		},
		Session: SessionConfig{StoreUnitPrice: 3000, AptUnitPrice: 4300},
		CORS:    CORSConfig{Origins: []string{"http://localhost:3000"}},
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: true,
		},
		{
			name:    "missing base URL",
			mutate:  func(c *Config) { c.GeoSampa.BaseURL = "" },
			wantErr: true,
		},
		{
			name:    "base URL without scheme",
			mutate:  func(c *Config) { c.GeoSampa.BaseURL = "wms.geosampa.prefeitura.sp.gov.br" },
			wantErr: true,
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.GeoSampa.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative store unit price",
			mutate:  func(c *Config) { c.Session.StoreUnitPrice = -1 },
			wantErr: true,
		},
		{
			name:    "negative apartment unit price",
			mutate:  func(c *Config) { c.Session.AptUnitPrice = -1 },
			wantErr: true,
		},
		{
			name:    "no CORS origins",
			mutate:  func(c *Config) { c.CORS.Origins = nil },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "single origin",
			input:    "http://localhost:3000",
			expected: []string{"http://localhost:3000"},
		},
		{
			name:     "multiple origins with spaces",
			input:    "http://a.example.com , https://b.example.com",
			expected: []string{"http://a.example.com", "https://b.example.com"},
		},
		{
			name:     "trailing comma",
			input:    "http://a.example.com,",
			expected: []string{"http://a.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseOrigins(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("Expected %d origins, got %d", len(tt.expected), len(result))
			}
			for i := range result {
				if result[i] != tt.expected[i] {
					t.Errorf("Expected origin %q at %d, got %q", tt.expected[i], i, result[i])
				}
			}
		})
	}
}

func clearConfigEnvVars() {
	vars := []string{
		"PORT", "ENV",
		"GEOSAMPA_BASE_URL", "GEOSAMPA_TIMEOUT",
		"STORE_UNIT_PRICE", "APT_UNIT_PRICE", "IDENTITY_CACHE",
		"CORS_ORIGINS",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
