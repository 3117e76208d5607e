package models

import (
	"strings"
	"time"
)

const (
	ReasonReductionNotPossible = "Reduction not possible."
	ReasonFitnessSuffix        = "fitness."
	ReasonIncreaseSuffix       = "suggests increase."
)

// Fitness is the outcome of the three adequacy checks for one candidate
type Fitness struct {
	CPU    bool
	Memory bool
	Disk   bool
}

func (f Fitness) All() bool {
	return f.CPU && f.Memory && f.Disk
}

// FailureLabels concatenates a label for every failing dimension
func (f Fitness) FailureLabels() string {
	var b strings.Builder
	if !f.CPU {
		b.WriteString("CPU ")
	}
	if !f.Memory {
		b.WriteString("Memory ")
	}
	if !f.Disk {
		b.WriteString("I/O ")
	}
	return b.String()
}

// RightSizeAnalysis is the verdict for a single resource
type RightSizeAnalysis struct {
	ResourceID        string   `json:"resource_id"`
	SKU               string   `json:"sku"`
	Valid             bool     `json:"valid"`
	Reason            string   `json:"reason,omitempty"`
	AnnualSavings     *float64 `json:"annual_savings,omitempty"`
	CandidatesScanned int      `json:"candidates_scanned"`
}

// ResizeOperation is one entry of the operation inventory
type ResizeOperation struct {
	SubscriptionID string `json:"subscription_id"`
	ResourceID     string `json:"resource_id"`
	CurrentSKU     string `json:"current_sku"`
	NewSKU         string `json:"new_sku"`
}

// StoredAnalysis is an analysis persisted with the run it belongs to
type StoredAnalysis struct {
	ID             string
	RunID          string
	SubscriptionID string
	CurrentSKU     string
	Source         string // engine, advisor
	CreatedAt      time.Time
	RightSizeAnalysis
}

// Run describes one execution of the engine
type Run struct {
	ID          string
	Region      string
	Source      string
	Resources   int
	Valid       int
	TotalSaving float64
	StartedAt   time.Time
	FinishedAt  time.Time
}
