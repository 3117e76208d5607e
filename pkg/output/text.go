package output

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// TextHandler prints one block per resource, in inventory order
type TextHandler struct {
	w io.Writer
}

func (h *TextHandler) Format() string { return "text" }

func (h *TextHandler) DisplayResults(ctx context.Context, resources []models.ResourceRecord, results map[string]models.RightSizeAnalysis) error {
	for _, resource := range resources {
		if err := ctx.Err(); err != nil {
			return err
		}
		analysis, ok := results[resource.ResourceID]
		if !ok {
			continue
		}

		status := "KEEP"
		if analysis.Valid {
			status = "RESIZE"
		} else if strings.HasSuffix(analysis.Reason, models.ReasonIncreaseSuffix) {
			status = "UNDERSIZED"
		}

		fmt.Fprintf(h.w, "[%s] %s (%s)\n", status, path.Base(resource.ResourceID), resource.SubscriptionID)
		fmt.Fprintf(h.w, "  Current:     %s\n", resource.VMSize)
		fmt.Fprintf(h.w, "  Recommended: %s\n", analysis.SKU)
		if analysis.AnnualSavings != nil {
			fmt.Fprintf(h.w, "  Savings:     $%.2f/yr\n", *analysis.AnnualSavings)
		}
		if analysis.Reason != "" {
			fmt.Fprintf(h.w, "  Reason:      %s\n", analysis.Reason)
		}
		fmt.Fprintln(h.w)
	}
	return nil
}

func (h *TextHandler) DisplaySummary(ctx context.Context, totalSavings float64, valid, count int) error {
	fmt.Fprintln(h.w, "========================================")
	fmt.Fprintf(h.w, "Resources evaluated: %d\n", count)
	fmt.Fprintf(h.w, "Resize opportunities: %d\n", valid)
	_, err := fmt.Fprintf(h.w, "Total annual savings: $%.2f\n", totalSavings)
	return err
}
