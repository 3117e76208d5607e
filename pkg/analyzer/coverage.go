package analyzer

import (
	"log/slog"

	"github.com/opscart/vm-rightsizer/pkg/models"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Coverage tells how many inventory resources a utilization table covers
type Coverage struct {
	Table   string
	Input   int
	Output  int
	Missing []string
}

func (c Coverage) Complete() bool {
	return len(c.Missing) == 0
}

// CheckCoverage compares the inventory with the resource ids found in a table
func CheckCoverage(table string, resources []models.ResourceRecord, found []string, logger *slog.Logger) Coverage {
	input := sets.New[string]()
	for _, r := range resources {
		input.Insert(r.ResourceID)
	}
	output := sets.New[string](found...)

	c := Coverage{
		Table:   table,
		Input:   input.Len(),
		Output:  output.Len(),
		Missing: sets.List(input.Difference(output)),
	}
	if !c.Complete() {
		logger.Warn("resources missing from utilization table",
			"table", table,
			"input", c.Input,
			"output", c.Output,
			"missing", len(c.Missing),
			"ids", c.Missing)
	}
	return c
}
