package datasource

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/opscart/vm-rightsizer/pkg/analyzer"
	"github.com/opscart/vm-rightsizer/pkg/models"
	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

const (
	resourceLabel = "resource_id"
	instanceLabel = "instance"
	counterLabel  = "counter"
)

// Metrics names the guest performance counters scraped into Prometheus
type Metrics struct {
	CPU    string // % Processor Time
	Memory string // Available MBytes
	Disk   string // Disk Bytes/sec and Disk Transfers/sec, labelled by instance and counter
}

func DefaultMetrics() Metrics {
	return Metrics{
		CPU:    "vm_processor_time_percent",
		Memory: "vm_memory_available_mbytes",
		Disk:   "vm_logical_disk",
	}
}

var percentiles = []struct {
	q      float64
	assign func(*models.UtilizationPercentiles, float64)
}{
	{0.50, func(u *models.UtilizationPercentiles, v float64) { u.P50 = v }},
	{0.80, func(u *models.UtilizationPercentiles, v float64) { u.P80 = v }},
	{0.90, func(u *models.UtilizationPercentiles, v float64) { u.P90 = v }},
	{0.95, func(u *models.UtilizationPercentiles, v float64) { u.P95 = v }},
	{0.99, func(u *models.UtilizationPercentiles, v float64) { u.P99 = v }},
}

// PrometheusSource computes the utilization tables with PromQL over the
// lookback window. Inventory, SKUs and advice come from the wrapped source.
type PrometheusSource struct {
	Source
	client   v1.API
	url      string
	lookback time.Duration
	metrics  Metrics
	logger   *slog.Logger
	now      func() time.Time

	// step > 0 fetches raw samples with range queries and computes the
	// percentiles locally instead of with quantile_over_time
	step time.Duration
}

func NewPrometheusSource(url string, lookback time.Duration, metrics Metrics, inventory Source, logger *slog.Logger) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: url,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client: %w", err)
	}

	return &PrometheusSource{
		Source:   inventory,
		client:   v1.NewAPI(client),
		url:      url,
		lookback: lookback,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (p *PrometheusSource) Name() string {
	return "Prometheus"
}

// UseRangeQueries switches to range queries at the given resolution
func (p *PrometheusSource) UseRangeQueries(step time.Duration) {
	p.step = step
}

func (p *PrometheusSource) CPUUtilization(ctx context.Context) ([]models.UtilizationPercentiles, error) {
	series, err := p.summarize(ctx, p.metrics.CPU, false, resourceLabel)
	if err != nil {
		return nil, fmt.Errorf("CPU query failed: %w", err)
	}
	rows := make([]models.UtilizationPercentiles, 0, len(series))
	for _, s := range series {
		rows = append(rows, s.stats)
	}
	return rows, nil
}

// MemoryUtilization returns percentiles of the negated available memory.
// The q-quantile of -x is the negated (1-q)-quantile of x.
func (p *PrometheusSource) MemoryUtilization(ctx context.Context) ([]models.UtilizationPercentiles, error) {
	series, err := p.summarize(ctx, p.metrics.Memory, true, resourceLabel)
	if err != nil {
		return nil, fmt.Errorf("memory query failed: %w", err)
	}
	rows := make([]models.UtilizationPercentiles, 0, len(series))
	for _, s := range series {
		rows = append(rows, s.stats)
	}
	return rows, nil
}

func (p *PrometheusSource) DiskUtilization(ctx context.Context) ([]models.DiskCounterRow, error) {
	series, err := p.summarize(ctx, p.metrics.Disk, false, resourceLabel, instanceLabel, counterLabel)
	if err != nil {
		return nil, fmt.Errorf("disk query failed: %w", err)
	}
	rows := make([]models.DiskCounterRow, 0, len(series))
	for _, s := range series {
		rows = append(rows, models.DiskCounterRow{
			InstanceName:           string(s.labels[instanceLabel]),
			Counter:                models.CounterKind(s.labels[counterLabel]),
			UtilizationPercentiles: s.stats,
		})
	}
	return rows, nil
}

// IsAvailable checks that the server answers queries
func (p *PrometheusSource) IsAvailable(ctx context.Context) bool {
	_, _, err := p.client.Query(ctx, "up", p.now())
	return err == nil
}

type series struct {
	key    string
	labels model.LabelSet
	stats  models.UtilizationPercentiles
}

// summarize runs one instant query per statistic and joins the vectors on the by labels
func (p *PrometheusSource) summarize(ctx context.Context, metric string, negate bool, by ...string) ([]*series, error) {
	if p.step > 0 {
		return p.summarizeRange(ctx, metric, negate, by...)
	}

	window := model.Duration(p.lookback).String()
	grouping := strings.Join(by, ", ")
	found := make(map[string]*series)

	collect := func(query string, assign func(*models.UtilizationPercentiles, float64)) error {
		vector, err := p.queryVector(ctx, query)
		if err != nil {
			return err
		}
		for _, sample := range vector {
			labels := make(model.LabelSet, len(by))
			parts := make([]string, len(by))
			for i, name := range by {
				v := sample.Metric[model.LabelName(name)]
				labels[model.LabelName(name)] = v
				parts[i] = string(v)
			}
			key := strings.Join(parts, "\x00")

			s, ok := found[key]
			if !ok {
				s = &series{key: key, labels: labels}
				s.stats.ResourceID = string(labels[resourceLabel])
				found[key] = s
			}
			assign(&s.stats, float64(sample.Value))
		}
		return nil
	}

	// Negated series are combined with min so the busiest series wins
	sign, outer := 1.0, "max"
	if negate {
		sign, outer = -1, "min"
	}

	for _, pct := range percentiles {
		q := pct.q
		if negate {
			q = 1 - q
		}
		query := fmt.Sprintf("%s by (%s) (quantile_over_time(%.2f, %s[%s]))", outer, grouping, q, metric, window)
		assign := pct.assign
		if err := collect(query, func(u *models.UtilizationPercentiles, v float64) { assign(u, sign*v) }); err != nil {
			return nil, err
		}
	}

	extreme := "max_over_time"
	if negate {
		extreme = "min_over_time"
	}
	maxQuery := fmt.Sprintf("%s by (%s) (%s(%s[%s]))", outer, grouping, extreme, metric, window)
	if err := collect(maxQuery, func(u *models.UtilizationPercentiles, v float64) { u.Max = sign * v }); err != nil {
		return nil, err
	}

	countQuery := fmt.Sprintf("sum by (%s) (count_over_time(%s[%s]))", grouping, metric, window)
	if err := collect(countQuery, func(u *models.UtilizationPercentiles, v float64) { u.Samples = int64(v) }); err != nil {
		return nil, err
	}

	result := make([]*series, 0, len(found))
	for _, s := range found {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].key < result[j].key })
	return result, nil
}

// summarizeRange pulls every sample of the window and summarizes each
// series with linear-interpolation percentiles
func (p *PrometheusSource) summarizeRange(ctx context.Context, metric string, negate bool, by ...string) ([]*series, error) {
	end := p.now()
	r := v1.Range{
		Start: end.Add(-p.lookback),
		End:   end,
		Step:  p.step,
	}
	outer := "max"
	if negate {
		outer = "min"
	}
	query := fmt.Sprintf("%s by (%s) (%s)", outer, strings.Join(by, ", "), metric)

	p.logger.Debug("prometheus range query", "query", query, "start", r.Start, "end", r.End, "step", r.Step)
	result, warnings, err := p.client.QueryRange(ctx, query, r)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if len(warnings) > 0 {
		p.logger.Warn("prometheus returned warnings", "query", query, "warnings", warnings)
	}

	matrix, ok := result.(model.Matrix)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %s for query: %s", result.Type(), query)
	}

	sign := 1.0
	if negate {
		sign = -1
	}

	out := make([]*series, 0, len(matrix))
	for _, stream := range matrix {
		if len(stream.Values) == 0 {
			continue
		}
		labels := make(model.LabelSet, len(by))
		parts := make([]string, len(by))
		for i, name := range by {
			v := stream.Metric[model.LabelName(name)]
			labels[model.LabelName(name)] = v
			parts[i] = string(v)
		}

		samples := make([]analyzer.MetricSample, len(stream.Values))
		for i, v := range stream.Values {
			samples[i] = analyzer.MetricSample{
				Timestamp: v.Timestamp.Time(),
				Value:     sign * float64(v.Value),
			}
		}
		stats, err := analyzer.Summarize(string(labels[resourceLabel]), samples)
		if err != nil {
			return nil, err
		}
		out = append(out, &series{key: strings.Join(parts, "\x00"), labels: labels, stats: stats})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out, nil
}

func (p *PrometheusSource) queryVector(ctx context.Context, query string) (model.Vector, error) {
	result, warnings, err := p.client.Query(ctx, query, p.now())
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}

	if len(warnings) > 0 {
		p.logger.Warn("prometheus returned warnings", "query", query, "warnings", warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %s for query: %s", result.Type(), query)
	}
	return vector, nil
}
