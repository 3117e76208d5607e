package models

// ResourceRecord represents a virtual machine from the resource inventory
type ResourceRecord struct {
	ResourceID     string         `json:"resource_id"`
	SubscriptionID string         `json:"subscription_id"`
	VMSize         string         `json:"vm_size"`
	RoleCode       string         `json:"role_code"`
	StorageProfile StorageProfile `json:"storage_profile"`
}

// StorageProfile mirrors the compute API storage profile of a VM
type StorageProfile struct {
	OSDisk    OSDisk     `json:"osDisk"`
	DataDisks []DataDisk `json:"dataDisks"`
}

type OSDisk struct {
	Caching string `json:"caching"`
}

type DataDisk struct {
	Caching     string      `json:"caching"`
	ManagedDisk ManagedDisk `json:"managedDisk"`
}

type ManagedDisk struct {
	ID string `json:"id"`
}

// UtilizationPercentiles summarizes one metric of one resource over the lookback window
type UtilizationPercentiles struct {
	ResourceID string  `json:"resource_id"`
	P50        float64 `json:"percentile_50th"`
	P80        float64 `json:"percentile_80th"`
	P90        float64 `json:"percentile_90th"`
	P95        float64 `json:"percentile_95th"`
	P99        float64 `json:"percentile_99th"`
	Max        float64 `json:"max"`
	Samples    int64   `json:"samples"`
}

// Map applies fn to every percentile field, leaving the sample count alone
func (u UtilizationPercentiles) Map(fn func(float64) float64) UtilizationPercentiles {
	u.P50 = fn(u.P50)
	u.P80 = fn(u.P80)
	u.P90 = fn(u.P90)
	u.P95 = fn(u.P95)
	u.P99 = fn(u.P99)
	u.Max = fn(u.Max)
	return u
}

// Add sums the percentile fields and sample counts of two summaries
func (u UtilizationPercentiles) Add(o UtilizationPercentiles) UtilizationPercentiles {
	u.P50 += o.P50
	u.P80 += o.P80
	u.P90 += o.P90
	u.P95 += o.P95
	u.P99 += o.P99
	u.Max += o.Max
	u.Samples += o.Samples
	return u
}
