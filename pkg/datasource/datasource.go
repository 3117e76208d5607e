package datasource

import (
	"context"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// Source supplies the raw tables of a rightsizing run.
// CPU rows are "% Processor Time" percentiles, memory rows are percentiles of
// the negated "Available MBytes" counter so that p99 is the low-water mark.
type Source interface {
	Resources(ctx context.Context) ([]models.ResourceRecord, error)
	CPUUtilization(ctx context.Context) ([]models.UtilizationPercentiles, error)
	MemoryUtilization(ctx context.Context) ([]models.UtilizationPercentiles, error)
	DiskUtilization(ctx context.Context) ([]models.DiskCounterRow, error)
	ComputeSkus(ctx context.Context) ([]*models.ComputeSku, error)
	AdvisorRecommendations(ctx context.Context) (map[string]string, error)
	Name() string
}
