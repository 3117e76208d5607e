package analyzer

import (
	"time"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// MetricSample represents a single metric data point
type MetricSample struct {
	Timestamp time.Time
	Value     float64
}

// Workload bundles everything the fitness checks need to know about one VM
type Workload struct {
	Resource models.ResourceRecord
	CPU      models.UtilizationPercentiles // ACUs
	Memory   models.UtilizationPercentiles // used MiB
	Disk     models.DiskUtilization
}

// Thresholds holds the safety margins applied by the fitness checks
type Thresholds struct {
	CPUP99Factor float64 `yaml:"cpu_p99_factor"`

	MemoryP99Factor float64 `yaml:"memory_p99_factor"`
	MemoryP80Factor float64 `yaml:"memory_p80_factor"`

	FlexMemoryP99Factor float64 `yaml:"flex_memory_p99_factor"`
	FlexMemoryP95Factor float64 `yaml:"flex_memory_p95_factor"`
	FlexMemoryP80Factor float64 `yaml:"flex_memory_p80_factor"`

	DiskP99Factor float64 `yaml:"disk_p99_factor"`
	DiskP95Factor float64 `yaml:"disk_p95_factor"`

	// Cached disk activity below both limits allows the flex-down memory margin
	FlexDownMaxCachedBytesPerSec float64 `yaml:"flex_down_max_cached_bytes_per_sec"`
	FlexDownMaxCachedIOPS        float64 `yaml:"flex_down_max_cached_iops"`
}

// DefaultThresholds returns the margins used in production
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPUP99Factor:                 0.9,
		MemoryP99Factor:              1.05,
		MemoryP80Factor:              1.10,
		FlexMemoryP99Factor:          0.75,
		FlexMemoryP95Factor:          0.8,
		FlexMemoryP80Factor:          0.8,
		DiskP99Factor:                0.9,
		DiskP95Factor:                1.0,
		FlexDownMaxCachedBytesPerSec: 30 * 1024 * 1024,
		FlexDownMaxCachedIOPS:        800,
	}
}
