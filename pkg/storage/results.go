package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// SaveResults stores a run followed by one analysis per evaluated resource,
// in resource id order.
func SaveResults(ctx context.Context, store Store, run *models.Run, resources []models.ResourceRecord, results map[string]models.RightSizeAnalysis) error {
	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}

	byID := make(map[string]models.ResourceRecord, len(resources))
	for _, r := range resources {
		byID[r.ResourceID] = r
	}

	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		resource := byID[id]
		stored := &models.StoredAnalysis{
			RunID:             run.ID,
			SubscriptionID:    resource.SubscriptionID,
			CurrentSKU:        resource.VMSize,
			Source:            run.Source,
			CreatedAt:         run.FinishedAt,
			RightSizeAnalysis: results[id],
		}
		if err := store.SaveAnalysis(ctx, stored); err != nil {
			return fmt.Errorf("run %s: %w", run.ID, err)
		}
	}
	return nil
}
