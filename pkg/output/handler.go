package output

import (
	"context"
	"fmt"
	"io"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// Handler defines the interface for output formatting
type Handler interface {
	DisplayResults(ctx context.Context, resources []models.ResourceRecord, results map[string]models.RightSizeAnalysis) error
	DisplaySummary(ctx context.Context, totalSavings float64, valid, count int) error
	Format() string
}

// NewHandler returns the handler for format, writing to w
func NewHandler(format string, w io.Writer) (Handler, error) {
	switch format {
	case "text", "":
		return &TextHandler{w: w}, nil
	case "json":
		return &JSONHandler{w: w}, nil
	default:
		return nil, fmt.Errorf("output must be text or json, got %q", format)
	}
}
