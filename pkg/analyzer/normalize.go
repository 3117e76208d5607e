package analyzer

import (
	"log/slog"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// NormalizeCPU converts "% Processor Time" percentiles into ACUs of the current SKU
func NormalizeCPU(rows []models.UtilizationPercentiles, resources map[string]models.ResourceRecord, catalog models.ComputeCatalog, logger *slog.Logger) map[string]models.UtilizationPercentiles {
	return normalize(rows, resources, catalog, logger, "cpu", func(sku *models.ComputeSku, u models.UtilizationPercentiles) models.UtilizationPercentiles {
		acus := sku.TotalACUs()
		return u.Map(func(pct float64) float64 { return pct / 100 * acus })
	})
}

// NormalizeMemory converts negated "Available MBytes" percentiles into used MiB.
// Negation keeps the percentile order: p99 of -available is the low-water mark.
func NormalizeMemory(rows []models.UtilizationPercentiles, resources map[string]models.ResourceRecord, catalog models.ComputeCatalog, logger *slog.Logger) map[string]models.UtilizationPercentiles {
	return normalize(rows, resources, catalog, logger, "memory", func(sku *models.ComputeSku, u models.UtilizationPercentiles) models.UtilizationPercentiles {
		total := sku.MemoryMiB()
		return u.Map(func(negAvailable float64) float64 { return total + negAvailable })
	})
}

func normalize(
	rows []models.UtilizationPercentiles,
	resources map[string]models.ResourceRecord,
	catalog models.ComputeCatalog,
	logger *slog.Logger,
	metric string,
	fn func(*models.ComputeSku, models.UtilizationPercentiles) models.UtilizationPercentiles,
) map[string]models.UtilizationPercentiles {
	result := make(map[string]models.UtilizationPercentiles, len(rows))
	for _, row := range rows {
		resource, ok := resources[row.ResourceID]
		if !ok {
			logger.Warn("utilization for unknown resource", "metric", metric, "resource_id", row.ResourceID)
			continue
		}
		sku, ok := catalog.Lookup(resource.VMSize)
		if !ok {
			logger.Warn("current sku not in catalog", "metric", metric, "resource_id", row.ResourceID, "vm_size", resource.VMSize)
			continue
		}
		result[row.ResourceID] = fn(sku, row)
	}
	return result
}
