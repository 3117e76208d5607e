package storage

import (
	"context"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// Store defines the interface for persistent storage
type Store interface {
	SaveRun(ctx context.Context, run *models.Run) error
	ListRuns(ctx context.Context, limit int) ([]*models.Run, error)

	SaveAnalysis(ctx context.Context, analysis *models.StoredAnalysis) error
	ListAnalyses(ctx context.Context, subscriptionID string, limit int) ([]*models.StoredAnalysis, error)

	Ping(ctx context.Context) error
	Close() error
}
