package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	for _, key := range []string{"LOOKBACK_DAYS", "RIGHTSIZE_REGION", "RIGHTSIZE_FAMILIES", "RIGHTSIZE_DATABASE_ROLE", "PROMETHEUS_URL"} {
		t.Setenv(key, "")
	}

	cfg := NewConfig()

	if cfg.LookbackDays != 30 {
		t.Errorf("Expected default lookback 30 days, got %d", cfg.LookbackDays)
	}
	if cfg.LookbackDuration != 30*24*time.Hour {
		t.Errorf("Expected duration 720h, got %v", cfg.LookbackDuration)
	}
	if cfg.Region != "eastus" {
		t.Errorf("Expected default region eastus, got %s", cfg.Region)
	}
	if cfg.DatabaseRole != "DBS" {
		t.Errorf("Expected default database role DBS, got %s", cfg.DatabaseRole)
	}
	if cfg.PrometheusURL != "" {
		t.Errorf("Expected no Prometheus URL, got %s", cfg.PrometheusURL)
	}
	assert.Equal(t, []string{"standardDSv3Family", "standardESv3Family", "standardMSFamily"}, cfg.Families)
	assert.Equal(t, 0.9, cfg.Thresholds.CPUP99Factor)
	assert.NoError(t, cfg.Validate())
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("LOOKBACK_DAYS", "15")
	t.Setenv("RIGHTSIZE_REGION", "westeurope")
	t.Setenv("RIGHTSIZE_FAMILIES", "standardDSv3Family, standardFSv2Family,")
	t.Setenv("RIGHTSIZE_WORKERS", "3")
	t.Setenv("PRICE_CACHE_TTL", "90m")
	t.Setenv("STORAGE_ENABLED", "1")
	t.Setenv("PROMETHEUS_URL", "http://prometheus:9090")
	t.Setenv("PROMETHEUS_STEP", "5m")

	cfg := NewConfig()

	if cfg.LookbackDuration != 15*24*time.Hour {
		t.Errorf("Expected duration %v, got %v", 15*24*time.Hour, cfg.LookbackDuration)
	}
	assert.Equal(t, "westeurope", cfg.Region)
	assert.Equal(t, []string{"standardDSv3Family", "standardFSv2Family"}, cfg.Families)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 90*time.Minute, cfg.PriceCacheTTL)
	assert.True(t, cfg.StorageEnabled)
	assert.Equal(t, "http://prometheus:9090", cfg.PrometheusURL)
	assert.Equal(t, 5*time.Minute, cfg.PrometheusStep)

	catalog := cfg.CatalogConfig()
	assert.Equal(t, "westeurope", catalog.Region)
	assert.Equal(t, cfg.Families, catalog.Families)
}

func TestInvalidEnvironmentFallsBack(t *testing.T) {
	t.Setenv("RIGHTSIZE_WORKERS", "many")
	t.Setenv("PRICE_CACHE_TTL", "tomorrow")

	cfg := NewConfig()
	assert.Greater(t, cfg.Workers, 0)
	assert.Equal(t, 24*time.Hour, cfg.PriceCacheTTL)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RIGHTSIZE_DATABASE_ROLE=SQL\n"), 0o600))

	t.Setenv("RIGHTSIZE_DATABASE_ROLE", "")
	os.Unsetenv("RIGHTSIZE_DATABASE_ROLE")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "SQL", NewConfig().DatabaseRole)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestLoadEngineFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	content := `
region: northeurope
families:
  - standardESv3Family
min_billed_cores: 2
lookback_days: 14
licenses:
  sql_core_pack_annual: 7000
thresholds:
  cpu_p99_factor: 1.0
  flex_down_max_cached_iops: 500
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := NewConfig()
	require.NoError(t, cfg.LoadEngineFile(path))

	assert.Equal(t, "northeurope", cfg.Region)
	assert.Equal(t, []string{"standardESv3Family"}, cfg.Families)
	assert.Equal(t, 2, cfg.MinBilledCores)
	assert.Equal(t, 14*24*time.Hour, cfg.LookbackDuration)
	assert.Equal(t, 7000.0, cfg.SQLCorePackAnnual)
	assert.Equal(t, 6155.0, cfg.WindowsPackAnnual, "absent keys keep their value")
	assert.Equal(t, 1.0, cfg.Thresholds.CPUP99Factor)
	assert.Equal(t, 500.0, cfg.Thresholds.FlexDownMaxCachedIOPS)
	assert.Equal(t, 1.05, cfg.Thresholds.MemoryP99Factor)
}

func TestLoadEngineFileErrors(t *testing.T) {
	cfg := NewConfig()
	assert.Error(t, cfg.LoadEngineFile(filepath.Join(t.TempDir(), "missing.yaml")))

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("families: {"), 0o600))
	assert.Error(t, cfg.LoadEngineFile(path))
}

func TestAggressivePreset(t *testing.T) {
	cfg := NewConfig()
	cfg.UseAggressivePreset()

	if cfg.LookbackDays != 7 {
		t.Errorf("Aggressive preset should be 7 days, got %d", cfg.LookbackDays)
	}
	if cfg.LookbackDuration != 7*24*time.Hour {
		t.Errorf("Aggressive preset duration should be 168h, got %v", cfg.LookbackDuration)
	}
	if cfg.Thresholds.MemoryP99Factor != 0.75 {
		t.Errorf("Aggressive preset memory p99 factor should be 0.75, got %.2f", cfg.Thresholds.MemoryP99Factor)
	}
}

func TestConservativePreset(t *testing.T) {
	cfg := NewConfig()
	cfg.UseConservativePreset()

	if cfg.LookbackDays != 90 {
		t.Errorf("Conservative preset should be 90 days, got %d", cfg.LookbackDays)
	}
	if cfg.Thresholds.CPUP99Factor != 1.0 {
		t.Errorf("Conservative preset cpu factor should be 1.0, got %.2f", cfg.Thresholds.CPUP99Factor)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Conservative preset should validate: %v", err)
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name          string
		setupConfig   func(*Config)
		expectError   bool
		errorContains string
	}{
		{
			name:        "valid default config",
			setupConfig: func(c *Config) {},
		},
		{
			name:          "lookback too low",
			setupConfig:   func(c *Config) { c.LookbackDays = 0 },
			expectError:   true,
			errorContains: "at least 1 day",
		},
		{
			name:          "lookback too high",
			setupConfig:   func(c *Config) { c.LookbackDays = 100 },
			expectError:   true,
			errorContains: "cannot exceed 90 days",
		},
		{
			name:          "no families",
			setupConfig:   func(c *Config) { c.Families = nil },
			expectError:   true,
			errorContains: "sku family",
		},
		{
			name: "storage without database",
			setupConfig: func(c *Config) {
				c.StorageEnabled = true
				c.DatabaseURL = ""
			},
			expectError:   true,
			errorContains: "DATABASE_URL",
		},
		{
			name:          "zero threshold",
			setupConfig:   func(c *Config) { c.Thresholds.DiskP95Factor = 0 },
			expectError:   true,
			errorContains: "disk_p95_factor",
		},
		{
			name:          "unknown log format",
			setupConfig:   func(c *Config) { c.LogFormat = "xml" },
			expectError:   true,
			errorContains: "log format",
		},
		{
			name:        "valid edge case - 90 days",
			setupConfig: func(c *Config) { c.LookbackDays = 90 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.setupConfig(cfg)

			err := cfg.Validate()

			if tt.expectError && err == nil {
				t.Errorf("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
			if tt.expectError && err != nil && !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error containing '%s', got '%s'", tt.errorContains, err.Error())
			}
		})
	}
}

func TestValidationReportsEveryProblem(t *testing.T) {
	cfg := NewConfig()
	cfg.Region = ""
	cfg.Workers = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region must be set")
	assert.Contains(t, err.Error(), "workers must be at least 1")
}
