package analyzer

import (
	"github.com/opscart/vm-rightsizer/pkg/models"
)

// FitnessEvaluator decides whether a SKU can carry an observed workload
type FitnessEvaluator struct {
	thresholds   Thresholds
	databaseRole string
}

func NewFitnessEvaluator(thresholds Thresholds, databaseRole string) *FitnessEvaluator {
	return &FitnessEvaluator{
		thresholds:   thresholds,
		databaseRole: databaseRole,
	}
}

// CPUFitness requires the SKU's ACUs to exceed the scaled p99 and the raw p95
func (e *FitnessEvaluator) CPUFitness(sku *models.ComputeSku, cpu models.UtilizationPercentiles) bool {
	total := sku.TotalACUs()
	return total > cpu.P99*e.thresholds.CPUP99Factor && total > cpu.P95
}

// MemoryFitness compares SKU memory with used MiB. flexDown applies the
// relaxed margins for databases that barely touch the cache.
func (e *FitnessEvaluator) MemoryFitness(sku *models.ComputeSku, mem models.UtilizationPercentiles, flexDown bool) bool {
	total := sku.MemoryMiB()
	t := e.thresholds
	if flexDown {
		return total > mem.P99*t.FlexMemoryP99Factor &&
			total > mem.P95*t.FlexMemoryP95Factor &&
			total > mem.P80*t.FlexMemoryP80Factor
	}
	return total > mem.P99*t.MemoryP99Factor && total > mem.P80*t.MemoryP80Factor
}

// DiskFitness checks cached and uncached throughput and IOPS at p99 and p95
func (e *FitnessEvaluator) DiskFitness(sku *models.ComputeSku, disk models.DiskUtilization) bool {
	check := func(pick func(models.UtilizationPercentiles) float64, factor float64) bool {
		return sku.CachedBytesPerSec > pick(disk.Get(true, models.BytesPerSec))*factor &&
			sku.CachedIOPS > pick(disk.Get(true, models.TransfersPerSec))*factor &&
			sku.UncachedBytesPerSec > pick(disk.Get(false, models.BytesPerSec))*factor &&
			sku.UncachedIOPS > pick(disk.Get(false, models.TransfersPerSec))*factor
	}

	return check(p99, e.thresholds.DiskP99Factor) && check(p95, e.thresholds.DiskP95Factor)
}

// LowCachedUsage reports whether cached disk activity at p99 stays under the flex-down limits
func (e *FitnessEvaluator) LowCachedUsage(disk models.DiskUtilization) bool {
	return disk.Get(true, models.BytesPerSec).P99 < e.thresholds.FlexDownMaxCachedBytesPerSec &&
		disk.Get(true, models.TransfersPerSec).P99 < e.thresholds.FlexDownMaxCachedIOPS
}

// IsDatabase reports whether the role code marks a database server
func (e *FitnessEvaluator) IsDatabase(resource models.ResourceRecord) bool {
	return e.databaseRole != "" && resource.RoleCode == e.databaseRole
}

// ShouldFlexDown combines the role check with the cached usage check
func (e *FitnessEvaluator) ShouldFlexDown(w *Workload) bool {
	return e.IsDatabase(w.Resource) && e.LowCachedUsage(w.Disk)
}

// Evaluate runs all three checks of a SKU against a workload
func (e *FitnessEvaluator) Evaluate(sku *models.ComputeSku, w *Workload) models.Fitness {
	return models.Fitness{
		CPU:    e.CPUFitness(sku, w.CPU),
		Memory: e.MemoryFitness(sku, w.Memory, e.ShouldFlexDown(w)),
		Disk:   e.DiskFitness(sku, w.Disk),
	}
}

func p99(u models.UtilizationPercentiles) float64 { return u.P99 }
func p95(u models.UtilizationPercentiles) float64 { return u.P95 }
