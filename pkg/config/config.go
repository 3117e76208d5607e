package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/opscart/vm-rightsizer/pkg/analyzer"
	"github.com/opscart/vm-rightsizer/pkg/pricing"
	"gopkg.in/yaml.v3"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Config holds application configuration
type Config struct {
	// Utilization source
	DataDir          string
	PrometheusURL    string
	PrometheusStep   time.Duration // 0 summarizes server side
	LookbackDays     int
	LookbackDuration time.Duration

	// Pricing
	Region            string
	Families          []string
	MinBilledCores    int
	SQLCorePackAnnual float64
	WindowsPackAnnual float64
	PriceListFile     string // empty fetches from the retail API
	RedisAddr         string
	PriceCacheTTL     time.Duration

	// Engine
	DatabaseRole string
	Workers      int
	Thresholds   analyzer.Thresholds

	// Storage
	StorageEnabled bool
	DatabaseURL    string

	// Output
	OutputFormat string // text, json
	LogLevel     string
	LogFormat    string
}

// LoadDotEnv loads variables from an env file. A missing file is not an error.
// Variables already set in the environment win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// NewConfig creates a new configuration with defaults
func NewConfig() *Config {
	catalog := pricing.DefaultCatalogConfig()
	lookback := getEnvInt("LOOKBACK_DAYS", 30)

	return &Config{
		DataDir:          getEnv("RIGHTSIZE_DATA_DIR", "./data"),
		PrometheusURL:    getEnv("PROMETHEUS_URL", ""),
		PrometheusStep:   getEnvDuration("PROMETHEUS_STEP", 0),
		LookbackDays:     lookback,
		LookbackDuration: time.Duration(lookback) * 24 * time.Hour,

		Region:            getEnv("RIGHTSIZE_REGION", catalog.Region),
		Families:          getEnvList("RIGHTSIZE_FAMILIES", catalog.Families),
		MinBilledCores:    catalog.MinBilledCores,
		SQLCorePackAnnual: catalog.SQLCorePackAnnual,
		WindowsPackAnnual: catalog.WindowsPackAnnual,
		PriceListFile:     getEnv("RIGHTSIZE_PRICE_LIST", ""),
		RedisAddr:         getEnv("REDIS_ADDR", ""),
		PriceCacheTTL:     getEnvDuration("PRICE_CACHE_TTL", 24*time.Hour),

		DatabaseRole: getEnv("RIGHTSIZE_DATABASE_ROLE", "DBS"),
		Workers:      getEnvInt("RIGHTSIZE_WORKERS", runtime.NumCPU()),
		Thresholds:   analyzer.DefaultThresholds(),

		StorageEnabled: getEnvBool("STORAGE_ENABLED", false),
		DatabaseURL:    getEnv("DATABASE_URL", "host=localhost port=5432 user=rightsize password=devpassword dbname=rightsize sslmode=disable"),

		OutputFormat: "text",
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", "text"),
	}
}

// engineFile is the YAML layout of the optional engine settings file
type engineFile struct {
	Region         string              `yaml:"region"`
	Families       []string            `yaml:"families"`
	MinBilledCores int                 `yaml:"min_billed_cores"`
	DatabaseRole   string              `yaml:"database_role"`
	Workers        int                 `yaml:"workers"`
	LookbackDays   int                 `yaml:"lookback_days"`
	Licenses       licenses            `yaml:"licenses"`
	Thresholds     analyzer.Thresholds `yaml:"thresholds"`
}

type licenses struct {
	SQLCorePackAnnual float64 `yaml:"sql_core_pack_annual"`
	WindowsPackAnnual float64 `yaml:"windows_pack_annual"`
}

// LoadEngineFile overlays settings from a YAML file. Keys absent from the
// file keep their current value.
func (c *Config) LoadEngineFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read engine file: %w", err)
	}

	f := engineFile{
		Region:         c.Region,
		Families:       c.Families,
		MinBilledCores: c.MinBilledCores,
		DatabaseRole:   c.DatabaseRole,
		Workers:        c.Workers,
		LookbackDays:   c.LookbackDays,
		Licenses: licenses{
			SQLCorePackAnnual: c.SQLCorePackAnnual,
			WindowsPackAnnual: c.WindowsPackAnnual,
		},
		Thresholds: c.Thresholds,
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("failed to parse engine file %s: %w", path, err)
	}

	c.Region = f.Region
	c.Families = f.Families
	c.MinBilledCores = f.MinBilledCores
	c.DatabaseRole = f.DatabaseRole
	c.Workers = f.Workers
	c.setLookback(f.LookbackDays)
	c.SQLCorePackAnnual = f.Licenses.SQLCorePackAnnual
	c.WindowsPackAnnual = f.Licenses.WindowsPackAnnual
	c.Thresholds = f.Thresholds
	return nil
}

// UseAggressivePreset uses a short lookback and the relaxed memory margins for every workload
func (c *Config) UseAggressivePreset() {
	c.setLookback(7)
	c.Thresholds = analyzer.DefaultThresholds()
	c.Thresholds.MemoryP99Factor = c.Thresholds.FlexMemoryP99Factor
	c.Thresholds.MemoryP80Factor = c.Thresholds.FlexMemoryP80Factor
}

// UseConservativePreset looks back further and demands more CPU headroom
func (c *Config) UseConservativePreset() {
	c.setLookback(90)
	c.Thresholds = analyzer.DefaultThresholds()
	c.Thresholds.CPUP99Factor = 1.0
	c.Thresholds.MemoryP99Factor = 1.15
	c.Thresholds.MemoryP80Factor = 1.20
}

func (c *Config) setLookback(days int) {
	c.LookbackDays = days
	c.LookbackDuration = time.Duration(days) * 24 * time.Hour
}

// CatalogConfig returns the pricing settings
func (c *Config) CatalogConfig() pricing.CatalogConfig {
	return pricing.CatalogConfig{
		Region:            c.Region,
		Families:          c.Families,
		MinBilledCores:    c.MinBilledCores,
		SQLCorePackAnnual: c.SQLCorePackAnnual,
		WindowsPackAnnual: c.WindowsPackAnnual,
	}
}

// Validate checks if configuration is valid and reports every problem found
func (c *Config) Validate() error {
	var errs []error

	if c.Region == "" {
		errs = append(errs, fmt.Errorf("region must be set"))
	}
	if len(c.Families) == 0 {
		errs = append(errs, fmt.Errorf("at least one sku family must be configured"))
	}
	if c.MinBilledCores < 0 {
		errs = append(errs, fmt.Errorf("min billed cores must be >= 0"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1"))
	}
	if c.LookbackDays < 1 {
		errs = append(errs, fmt.Errorf("lookback must be at least 1 day"))
	}
	if c.LookbackDays > 90 {
		errs = append(errs, fmt.Errorf("lookback cannot exceed 90 days"))
	}
	if c.SQLCorePackAnnual < 0 || c.WindowsPackAnnual < 0 {
		errs = append(errs, fmt.Errorf("license prices must be >= 0"))
	}
	if c.PrometheusStep < 0 {
		errs = append(errs, fmt.Errorf("prometheus step must be >= 0"))
	}
	if c.StorageEnabled && c.DatabaseURL == "" {
		errs = append(errs, fmt.Errorf("DATABASE_URL must be set when storage is enabled"))
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		errs = append(errs, fmt.Errorf("log format must be text or json, got %q", c.LogFormat))
	}
	errs = append(errs, validateThresholds(c.Thresholds)...)

	return utilerrors.NewAggregate(errs)
}

func validateThresholds(t analyzer.Thresholds) []error {
	var errs []error
	factors := []struct {
		name  string
		value float64
	}{
		{"cpu_p99_factor", t.CPUP99Factor},
		{"memory_p99_factor", t.MemoryP99Factor},
		{"memory_p80_factor", t.MemoryP80Factor},
		{"flex_memory_p99_factor", t.FlexMemoryP99Factor},
		{"flex_memory_p95_factor", t.FlexMemoryP95Factor},
		{"flex_memory_p80_factor", t.FlexMemoryP80Factor},
		{"disk_p99_factor", t.DiskP99Factor},
		{"disk_p95_factor", t.DiskP95Factor},
	}
	for _, f := range factors {
		if f.value <= 0 {
			errs = append(errs, fmt.Errorf("threshold %s must be > 0", f.name))
		}
	}
	return errs
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
