package models

import "strings"

// ComputeSku represents a VM size with its capability limits
type ComputeSku struct {
	Name           string  `json:"name"`
	Family         string  `json:"family"`
	VCPUs          int     `json:"vcpus"`
	VCPUsAvailable int     `json:"vcpus_available"`
	MemoryGB       float64 `json:"memory_gb"`
	ACUs           float64 `json:"acus"` // per vCPU

	CachedBytesPerSec   float64 `json:"cached_bytes_per_sec"` // combined temp disk and cached reads
	CachedIOPS          float64 `json:"cached_iops"`
	UncachedBytesPerSec float64 `json:"uncached_bytes_per_sec"`
	UncachedIOPS        float64 `json:"uncached_iops"`

	ParentSize string `json:"parent_size,omitempty"`
}

// TotalACUs is the CPU throughput capacity of the whole VM
func (s *ComputeSku) TotalACUs() float64 {
	return s.ACUs * float64(s.BilledCores())
}

// BilledCores is the number of vCPUs the VM is licensed and billed for
func (s *ComputeSku) BilledCores() int {
	if s.VCPUsAvailable > 0 {
		return s.VCPUsAvailable
	}
	return s.VCPUs
}

// MemoryMiB returns the memory capacity in MiB
func (s *ComputeSku) MemoryMiB() float64 {
	return s.MemoryGB * 1024
}

// BillingName is the meter name the retail price list uses for this SKU.
// Constrained-core sizes bill against their parent and premium storage
// variants bill like the standard size.
func (s *ComputeSku) BillingName() string {
	name := s.Name
	if s.ParentSize != "" {
		name = s.ParentSize
	}
	name = strings.ReplaceAll(name, "s_", "_")
	return strings.ReplaceAll(name, "_DS", "_D")
}

// PricedSku is a SKU with its annual total cost of ownership
type PricedSku struct {
	Sku         *ComputeSku
	HourlyRate  float64
	SQLCost     float64
	WindowsCost float64
	AnnualCost  float64
}

// ComputeCatalog indexes SKUs by lower-cased name
type ComputeCatalog map[string]*ComputeSku

// NewComputeCatalog builds a catalog from a list of SKUs
func NewComputeCatalog(skus []*ComputeSku) ComputeCatalog {
	catalog := make(ComputeCatalog, len(skus))
	for _, sku := range skus {
		catalog[strings.ToLower(sku.Name)] = sku
	}
	return catalog
}

// Lookup finds a SKU by name, ignoring case
func (c ComputeCatalog) Lookup(name string) (*ComputeSku, bool) {
	sku, ok := c[strings.ToLower(name)]
	return sku, ok
}
