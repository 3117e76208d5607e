package recommender

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/opscart/vm-rightsizer/pkg/analyzer"
	"github.com/opscart/vm-rightsizer/pkg/metrics"
	"github.com/opscart/vm-rightsizer/pkg/models"
	"github.com/opscart/vm-rightsizer/pkg/pricing"
	"golang.org/x/sync/errgroup"
)

// EngineConfig tunes the search engine
type EngineConfig struct {
	Workers int
	Metrics *metrics.Metrics // optional
}

// Engine searches the cheapest SKU that can carry each workload
type Engine struct {
	evaluator *analyzer.FitnessEvaluator
	catalog   *pricing.PricedCatalog
	config    EngineConfig
	logger    *slog.Logger
}

func NewEngine(evaluator *analyzer.FitnessEvaluator, catalog *pricing.PricedCatalog, config EngineConfig, logger *slog.Logger) *Engine {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	return &Engine{
		evaluator: evaluator,
		catalog:   catalog,
		config:    config,
		logger:    logger,
	}
}

// Run evaluates every resource with utilization data. Resources are
// evaluated concurrently but the result does not depend on scheduling.
func (e *Engine) Run(ctx context.Context, in *Inputs) (map[string]models.RightSizeAnalysis, error) {
	type slot struct {
		analysis models.RightSizeAnalysis
		ok       bool
	}
	slots := make([]slot, len(in.Resources))

	if m := e.config.Metrics; m != nil {
		m.CatalogCandidates.Set(float64(len(e.catalog.Candidates)))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for i, resource := range in.Resources {
		i, resource := i, resource
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			w, ok := in.Workload(resource)
			if !ok {
				e.logger.Debug("no utilization data", "resource_id", resource.ResourceID)
				return nil
			}
			slots[i].analysis, slots[i].ok = e.evaluate(w)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rightsizing interrupted: %w", err)
	}

	results := make(map[string]models.RightSizeAnalysis, len(slots))
	for _, s := range slots {
		if s.ok {
			results[s.analysis.ResourceID] = s.analysis
		}
	}

	summary := Summarize(results)
	if m := e.config.Metrics; m != nil {
		m.AnnualSavings.Set(summary.AnnualSaving)
	}
	e.logger.Info("rightsizing complete",
		"resources", len(in.Resources),
		"evaluated", summary.Resources,
		"valid", summary.Valid,
		"annual_saving", summary.AnnualSaving)

	return results, nil
}

// evaluate scans the candidates cheaper than the current SKU in ascending
// cost order and accepts the first that fits.
func (e *Engine) evaluate(w *analyzer.Workload) (models.RightSizeAnalysis, bool) {
	start := time.Now()
	resourceID := w.Resource.ResourceID

	current, ok := e.catalog.Cost(w.Resource.VMSize)
	if !ok {
		e.logger.Warn("current sku has no price, skipping",
			"resource_id", resourceID,
			"vm_size", w.Resource.VMSize)
		e.observe(metrics.OutcomeSkipped, 0, start)
		return models.RightSizeAnalysis{}, false
	}

	candidates := e.catalog.Candidates
	upper := sort.Search(len(candidates), func(i int) bool {
		return candidates[i].AnnualCost >= current.AnnualCost
	})

	analysis := models.RightSizeAnalysis{
		ResourceID: resourceID,
		SKU:        current.Sku.Name,
	}

	if upper == 0 {
		analysis.Reason = models.ReasonReductionNotPossible
		e.observe(metrics.OutcomeNoReduction, 0, start)
		return analysis, true
	}

	for _, candidate := range candidates[:upper] {
		analysis.CandidatesScanned++
		f := e.evaluator.Evaluate(candidate.Sku, w)
		if f.All() || (f.CPU && f.Disk && candidate.Sku.MemoryGB == current.Sku.MemoryGB) {
			savings := current.AnnualCost - candidate.AnnualCost
			analysis.SKU = candidate.Sku.Name
			analysis.Valid = true
			analysis.AnnualSavings = &savings
			e.observe(metrics.OutcomeResize, analysis.CandidatesScanned, start)
			return analysis, true
		}
	}

	fc := e.evaluator.Evaluate(current.Sku, w)
	if fc.All() {
		analysis.Reason = models.ReasonReductionNotPossible
		e.observe(metrics.OutcomeNoReduction, analysis.CandidatesScanned, start)
		return analysis, true
	}

	// The current SKU is undersized, point at the cheapest one that fits
	for _, candidate := range candidates[upper:] {
		if strings.EqualFold(candidate.Sku.Name, current.Sku.Name) {
			continue
		}
		analysis.CandidatesScanned++
		if e.evaluator.Evaluate(candidate.Sku, w).All() {
			analysis.SKU = candidate.Sku.Name
			break
		}
	}
	analysis.Reason = fc.FailureLabels() + models.ReasonIncreaseSuffix
	e.observe(metrics.OutcomeIncrease, analysis.CandidatesScanned, start)
	return analysis, true
}

func (e *Engine) observe(outcome string, scanned int, start time.Time) {
	m := e.config.Metrics
	if m == nil {
		return
	}
	m.ResourcesEvaluated.WithLabelValues(outcome).Inc()
	m.CandidatesScanned.Observe(float64(scanned))
	m.EvaluationSeconds.Observe(time.Since(start).Seconds())
}
