package models

// CounterKind is the disk performance counter a row was aggregated from
type CounterKind string

const (
	BytesPerSec     CounterKind = "Disk Bytes/sec"
	TransfersPerSec CounterKind = "Disk Transfers/sec"
)

// CounterKinds lists the counters every classified resource carries
var CounterKinds = []CounterKind{BytesPerSec, TransfersPerSec}

// DiskCounterRow is a per-instance disk counter before cache classification
type DiskCounterRow struct {
	InstanceName string      `json:"instance_name"`
	Counter      CounterKind `json:"counter_name"`
	UtilizationPercentiles
}

// DiskUtilizationRecord is disk usage summed over all instances sharing a cache mode
type DiskUtilizationRecord struct {
	Cached  bool        `json:"cached"`
	Counter CounterKind `json:"counter_name"`
	UtilizationPercentiles
}

// DiskKey identifies one of the four (cached, counter) buckets
type DiskKey struct {
	Cached  bool
	Counter CounterKind
}

// DiskUtilization holds the classified buckets of one resource
type DiskUtilization map[DiskKey]UtilizationPercentiles

// Get returns the bucket for the given combination, zero when absent
func (d DiskUtilization) Get(cached bool, counter CounterKind) UtilizationPercentiles {
	return d[DiskKey{Cached: cached, Counter: counter}]
}

// Records flattens the buckets in a stable order: cached first, bytes before transfers
func (d DiskUtilization) Records(resourceID string) []DiskUtilizationRecord {
	records := make([]DiskUtilizationRecord, 0, len(d))
	for _, cached := range []bool{true, false} {
		for _, counter := range CounterKinds {
			u, ok := d[DiskKey{Cached: cached, Counter: counter}]
			if !ok {
				continue
			}
			u.ResourceID = resourceID
			records = append(records, DiskUtilizationRecord{Cached: cached, Counter: counter, UtilizationPercentiles: u})
		}
	}
	return records
}
