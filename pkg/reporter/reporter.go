package reporter

import (
	"path"
	"sort"
	"strings"
	"time"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// ReportFormat represents the output format
type ReportFormat string

const (
	FormatHTML ReportFormat = "html"
	FormatCSV  ReportFormat = "csv"
)

// Outcome classifies a verdict for display
type Outcome string

const (
	OutcomeResize      Outcome = "resize"
	OutcomeNoReduction Outcome = "no_reduction"
	OutcomeIncrease    Outcome = "increase"
	OutcomeRejected    Outcome = "rejected"
)

// Report contains all data for generating reports
type Report struct {
	Region            string
	Source            string
	GeneratedAt       time.Time
	Rows              []Row
	TotalSavings      float64
	ResourceCount     int
	ResizeCount       int
	SubscriptionStats []*SubscriptionStats
	OutcomeCounts     map[Outcome]int
}

// Row is one resource of the report
type Row struct {
	ResourceID     string
	VMName         string
	SubscriptionID string
	CurrentSKU     string
	RecommendedSKU string
	Outcome        Outcome
	Reason         string
	AnnualSavings  float64
}

// SubscriptionStats holds statistics per subscription
type SubscriptionStats struct {
	SubscriptionID string
	Resources      int
	Resizes        int
	TotalSavings   float64
}

// Reporter generates rightsizing reports
type Reporter struct {
	format ReportFormat
	now    func() time.Time
}

// New creates a new reporter
func New(format ReportFormat) *Reporter {
	return &Reporter{
		format: format,
		now:    time.Now,
	}
}

func (r *Reporter) Format() ReportFormat {
	return r.format
}

// Generate builds a report from the verdicts of a run, largest savings first
func (r *Reporter) Generate(resources []models.ResourceRecord, results map[string]models.RightSizeAnalysis, region, source string) *Report {
	report := &Report{
		Region:        region,
		Source:        source,
		GeneratedAt:   r.now(),
		OutcomeCounts: make(map[Outcome]int),
	}

	for _, resource := range resources {
		analysis, ok := results[resource.ResourceID]
		if !ok {
			continue
		}
		row := Row{
			ResourceID:     resource.ResourceID,
			VMName:         path.Base(resource.ResourceID),
			SubscriptionID: resource.SubscriptionID,
			CurrentSKU:     resource.VMSize,
			RecommendedSKU: analysis.SKU,
			Outcome:        Classify(analysis),
			Reason:         analysis.Reason,
		}
		if analysis.Valid && analysis.AnnualSavings != nil {
			row.AnnualSavings = *analysis.AnnualSavings
		}
		report.Rows = append(report.Rows, row)
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		if report.Rows[i].AnnualSavings != report.Rows[j].AnnualSavings {
			return report.Rows[i].AnnualSavings > report.Rows[j].AnnualSavings
		}
		return report.Rows[i].ResourceID < report.Rows[j].ResourceID
	})

	r.calculateStats(report)
	return report
}

// Classify maps a verdict to its display outcome
func Classify(a models.RightSizeAnalysis) Outcome {
	switch {
	case a.Valid:
		return OutcomeResize
	case a.Reason == models.ReasonReductionNotPossible:
		return OutcomeNoReduction
	case strings.HasSuffix(a.Reason, models.ReasonIncreaseSuffix):
		return OutcomeIncrease
	default:
		return OutcomeRejected
	}
}

// calculateStats computes all statistics for the report
func (r *Reporter) calculateStats(report *Report) {
	bySubscription := make(map[string]*SubscriptionStats)

	for _, row := range report.Rows {
		report.ResourceCount++
		report.TotalSavings += row.AnnualSavings
		report.OutcomeCounts[row.Outcome]++
		if row.Outcome == OutcomeResize {
			report.ResizeCount++
		}

		stat, exists := bySubscription[row.SubscriptionID]
		if !exists {
			stat = &SubscriptionStats{SubscriptionID: row.SubscriptionID}
			bySubscription[row.SubscriptionID] = stat
		}
		stat.Resources++
		stat.TotalSavings += row.AnnualSavings
		if row.Outcome == OutcomeResize {
			stat.Resizes++
		}
	}

	for _, stat := range bySubscription {
		report.SubscriptionStats = append(report.SubscriptionStats, stat)
	}
	sort.Slice(report.SubscriptionStats, func(i, j int) bool {
		return report.SubscriptionStats[i].SubscriptionID < report.SubscriptionStats[j].SubscriptionID
	})
}
