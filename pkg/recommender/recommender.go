package recommender

import (
	"sort"

	"github.com/opscart/vm-rightsizer/pkg/analyzer"
	"github.com/opscart/vm-rightsizer/pkg/models"
)

// Inputs is the normalized utilization of one run, keyed by resource id
type Inputs struct {
	Resources []models.ResourceRecord
	CPU       map[string]models.UtilizationPercentiles // ACUs
	Memory    map[string]models.UtilizationPercentiles // used MiB
	Disk      map[string]models.DiskUtilization
}

// Workload joins the three tables for a resource. Resources missing from
// any table have no workload.
func (in *Inputs) Workload(resource models.ResourceRecord) (*analyzer.Workload, bool) {
	cpu, ok := in.CPU[resource.ResourceID]
	if !ok {
		return nil, false
	}
	mem, ok := in.Memory[resource.ResourceID]
	if !ok {
		return nil, false
	}
	disk, ok := in.Disk[resource.ResourceID]
	if !ok {
		return nil, false
	}

	return &analyzer.Workload{
		Resource: resource,
		CPU:      cpu,
		Memory:   mem,
		Disk:     disk,
	}, true
}

// Summary aggregates the verdicts of a run
type Summary struct {
	Resources    int
	Valid        int
	AnnualSaving float64
}

func Summarize(results map[string]models.RightSizeAnalysis) Summary {
	s := Summary{Resources: len(results)}
	for _, r := range results {
		if !r.Valid {
			continue
		}
		s.Valid++
		if r.AnnualSavings != nil {
			s.AnnualSaving += *r.AnnualSavings
		}
	}
	return s
}

// SortedIDs returns the resource ids of results in lexical order
func SortedIDs(results map[string]models.RightSizeAnalysis) []string {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
