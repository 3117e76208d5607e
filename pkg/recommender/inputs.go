package recommender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/opscart/vm-rightsizer/pkg/analyzer"
	"github.com/opscart/vm-rightsizer/pkg/datasource"
	"github.com/opscart/vm-rightsizer/pkg/models"
)

// LoadInputs reads the raw tables from src, normalizes CPU to ACUs and
// memory to used MiB, and folds disk counters into cache buckets.
func LoadInputs(ctx context.Context, src datasource.Source, catalog models.ComputeCatalog, logger *slog.Logger) (*Inputs, error) {
	resources, err := src.Resources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}
	cpuRows, err := src.CPUUtilization(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load cpu utilization: %w", err)
	}
	memRows, err := src.MemoryUtilization(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory utilization: %w", err)
	}
	diskRows, err := src.DiskUtilization(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load disk utilization: %w", err)
	}

	byID := make(map[string]models.ResourceRecord, len(resources))
	for _, r := range resources {
		byID[r.ResourceID] = r
	}

	in := &Inputs{
		Resources: resources,
		CPU:       analyzer.NormalizeCPU(cpuRows, byID, catalog, logger),
		Memory:    analyzer.NormalizeMemory(memRows, byID, catalog, logger),
		Disk:      analyzer.ClassifyDiskUtilization(diskRows, byID, logger),
	}

	analyzer.CheckCoverage("cpu", resources, keys(in.CPU), logger)
	analyzer.CheckCoverage("memory", resources, keys(in.Memory), logger)
	analyzer.CheckCoverage("disk", resources, keys(in.Disk), logger)

	logger.Info("loaded utilization",
		"source", src.Name(),
		"resources", len(resources),
		"cpu", len(in.CPU),
		"memory", len(in.Memory),
		"disk", len(in.Disk))

	return in, nil
}

func keys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
