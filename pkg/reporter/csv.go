package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

// GenerateCSV creates a CSV report
func GenerateCSV(report *Report, writer io.Writer) error {
	w := csv.NewWriter(writer)

	// Write header
	header := []string{
		"Subscription",
		"VM",
		"Current SKU",
		"Recommended SKU",
		"Outcome",
		"Annual Savings ($)",
		"Reason",
		"Resource ID",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range report.Rows {
		record := []string{
			row.SubscriptionID,
			row.VMName,
			row.CurrentSKU,
			row.RecommendedSKU,
			string(row.Outcome),
			fmt.Sprintf("%.2f", row.AnnualSavings),
			row.Reason,
			row.ResourceID,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	// Write summary rows
	summary := [][]string{
		{},
		{"SUMMARY"},
		{"Region", report.Region},
		{"Resources Evaluated", fmt.Sprintf("%d", report.ResourceCount)},
		{"Resize Opportunities", fmt.Sprintf("%d", report.ResizeCount)},
		{"Total Annual Savings", fmt.Sprintf("$%.2f", report.TotalSavings)},
		{},
		{"SUBSCRIPTION BREAKDOWN"},
		{"Subscription", "Resources", "Resizes", "Savings"},
	}
	for _, stat := range report.SubscriptionStats {
		summary = append(summary, []string{
			stat.SubscriptionID,
			fmt.Sprintf("%d", stat.Resources),
			fmt.Sprintf("%d", stat.Resizes),
			fmt.Sprintf("$%.2f", stat.TotalSavings),
		})
	}
	if err := w.WriteAll(summary); err != nil {
		return fmt.Errorf("failed to write CSV summary: %w", err)
	}

	return nil
}
