package output

import (
	"context"
	"encoding/json"
	"io"
	"sort"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// JSONHandler emits the verdicts as a single JSON document
type JSONHandler struct {
	w       io.Writer
	results []resultEntry
}

type resultEntry struct {
	SubscriptionID string `json:"subscription_id"`
	CurrentSKU     string `json:"current_sku"`
	models.RightSizeAnalysis
}

type jsonDocument struct {
	Results      []resultEntry `json:"results"`
	Resources    int           `json:"resources"`
	Valid        int           `json:"valid"`
	TotalSavings float64       `json:"total_annual_savings"`
}

func (h *JSONHandler) Format() string { return "json" }

// DisplayResults buffers the verdicts sorted by resource id; DisplaySummary writes the document
func (h *JSONHandler) DisplayResults(ctx context.Context, resources []models.ResourceRecord, results map[string]models.RightSizeAnalysis) error {
	h.results = h.results[:0]
	for _, resource := range resources {
		analysis, ok := results[resource.ResourceID]
		if !ok {
			continue
		}
		analysis.ResourceID = resource.ResourceID
		h.results = append(h.results, resultEntry{
			SubscriptionID:    resource.SubscriptionID,
			CurrentSKU:        resource.VMSize,
			RightSizeAnalysis: analysis,
		})
	}
	sort.Slice(h.results, func(i, j int) bool {
		return h.results[i].ResourceID < h.results[j].ResourceID
	})
	return nil
}

func (h *JSONHandler) DisplaySummary(ctx context.Context, totalSavings float64, valid, count int) error {
	doc := jsonDocument{
		Results:      h.results,
		Resources:    count,
		Valid:        valid,
		TotalSavings: totalSavings,
	}
	if doc.Results == nil {
		doc.Results = []resultEntry{}
	}
	encoder := json.NewEncoder(h.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
