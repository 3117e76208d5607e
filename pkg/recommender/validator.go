package recommender

import (
	"log/slog"

	"github.com/opscart/vm-rightsizer/pkg/analyzer"
	"github.com/opscart/vm-rightsizer/pkg/models"
)

// Validator checks externally proposed SKUs against observed utilization
type Validator struct {
	evaluator *analyzer.FitnessEvaluator
	catalog   models.ComputeCatalog
	logger    *slog.Logger
}

func NewValidator(evaluator *analyzer.FitnessEvaluator, catalog models.ComputeCatalog, logger *slog.Logger) *Validator {
	return &Validator{
		evaluator: evaluator,
		catalog:   catalog,
		logger:    logger,
	}
}

// Validate evaluates the advisor SKU of every resource that has both a
// recommendation and utilization data.
func (v *Validator) Validate(in *Inputs, advisor map[string]string) map[string]models.RightSizeAnalysis {
	results := make(map[string]models.RightSizeAnalysis)

	for _, resource := range in.Resources {
		advisorSku, ok := advisor[resource.ResourceID]
		if !ok || advisorSku == "" {
			continue
		}
		w, ok := in.Workload(resource)
		if !ok {
			continue
		}

		sku, ok := v.catalog.Lookup(advisorSku)
		if !ok {
			v.logger.Warn("advisor sku not in catalog",
				"resource_id", resource.ResourceID,
				"sku", advisorSku)
			continue
		}

		f := v.evaluator.Evaluate(sku, w)
		analysis := models.RightSizeAnalysis{
			ResourceID: resource.ResourceID,
			SKU:        advisorSku,
			Valid:      f.All(),
		}
		if !analysis.Valid {
			analysis.Reason = f.FailureLabels() + models.ReasonFitnessSuffix
		}
		results[resource.ResourceID] = analysis
	}

	v.logger.Info("validated advisor recommendations",
		"recommendations", len(advisor),
		"evaluated", len(results))

	return results
}
