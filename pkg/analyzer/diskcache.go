package analyzer

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/opscart/vm-rightsizer/pkg/models"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Instance names reported by the guest for well-known volumes
const (
	instanceTemp = "D"
	instanceOS   = "C"
	instanceData = "S"
	instanceLog  = "L"
	instanceTmp  = "T"
)

// CachingOn reports whether a disk caching mode routes I/O through the host cache
func CachingOn(mode string) bool {
	switch strings.ToLower(mode) {
	case "readonly", "readwrite":
		return true
	}
	return false
}

// CleanInstanceName turns "c:" into "C"
func CleanInstanceName(name string) string {
	return strings.ToUpper(strings.TrimRight(name, ":"))
}

// DiskIsCached deduces whether the disk behind an instance name is host cached.
// The second return value is false when the storage profile is not conclusive.
func DiskIsCached(name string, profile models.StorageProfile, allNames sets.Set[string]) (bool, bool) {
	switch name {
	case instanceTemp:
		return true, true
	case instanceOS:
		return CachingOn(profile.OSDisk.Caching), true
	}

	if allNames.Len() == 3 && len(profile.DataDisks) == 1 {
		return CachingOn(profile.DataDisks[0].Caching), true
	}

	if allNames.HasAll(instanceData, instanceLog) && (name == instanceData || name == instanceLog) {
		suffix := "data"
		if name == instanceLog {
			suffix = "log"
		}
		if disk, ok := dataDiskBySuffix(profile, suffix); ok {
			return CachingOn(disk.Caching), true
		}
	}

	if name == instanceTmp {
		if disk, ok := dataDiskBySuffix(profile, "temp"); ok {
			return CachingOn(disk.Caching), true
		}
	}

	modes := sets.New[bool]()
	for _, disk := range profile.DataDisks {
		modes.Insert(CachingOn(disk.Caching))
	}
	if modes.Len() == 1 {
		return modes.UnsortedList()[0], true
	}

	return false, false
}

func dataDiskBySuffix(profile models.StorageProfile, suffix string) (models.DataDisk, bool) {
	for _, disk := range profile.DataDisks {
		if strings.HasSuffix(strings.ToLower(disk.ManagedDisk.ID), suffix) {
			return disk, true
		}
	}
	return models.DataDisk{}, false
}

// ClassifyInstances maps every instance name of a resource to its cache mode.
// Names the profile cannot explain default to cached and are returned separately.
func ClassifyInstances(names sets.Set[string], profile models.StorageProfile) (map[string]bool, []string) {
	mapping := make(map[string]bool, names.Len())
	var unresolved []string
	for _, name := range sets.List(names) {
		cached, ok := DiskIsCached(name, profile, names)
		if !ok {
			unresolved = append(unresolved, name)
			cached = true
		}
		mapping[name] = cached
	}
	return mapping, unresolved
}

// ClassifyDiskUtilization folds raw per-instance disk counters into the four
// (cached, counter) buckets of every resource.
func ClassifyDiskUtilization(rows []models.DiskCounterRow, resources map[string]models.ResourceRecord, logger *slog.Logger) map[string]models.DiskUtilization {
	byResource := make(map[string][]models.DiskCounterRow)
	for _, row := range rows {
		byResource[row.ResourceID] = append(byResource[row.ResourceID], row)
	}

	ids := make([]string, 0, len(byResource))
	for id := range byResource {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := make(map[string]models.DiskUtilization, len(ids))
	for _, id := range ids {
		resource, ok := resources[id]
		if !ok {
			logger.Warn("disk utilization for unknown resource", "resource_id", id)
			continue
		}

		data := byResource[id]
		names := sets.New[string]()
		for _, row := range data {
			names.Insert(CleanInstanceName(row.InstanceName))
		}

		mapping, unresolved := ClassifyInstances(names, resource.StorageProfile)
		if len(unresolved) > 0 {
			logger.Warn("failed to deduce cache config, assuming cached",
				"resource_id", id,
				"instances", strings.Join(unresolved, ","))
		}

		util := make(models.DiskUtilization, 4)
		for _, row := range data {
			if row.Counter != models.BytesPerSec && row.Counter != models.TransfersPerSec {
				logger.Debug("ignoring disk counter", "resource_id", id, "counter", row.Counter)
				continue
			}
			key := models.DiskKey{Cached: mapping[CleanInstanceName(row.InstanceName)], Counter: row.Counter}
			util[key] = util[key].Add(row.UtilizationPercentiles)
		}

		for _, cached := range []bool{true, false} {
			for _, counter := range models.CounterKinds {
				key := models.DiskKey{Cached: cached, Counter: counter}
				bucket := util[key]
				bucket.ResourceID = id
				util[key] = bucket
			}
		}
		result[id] = util
	}

	return result
}
