package recommender

import (
	"reflect"
	"testing"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

func TestWorkloadJoin(t *testing.T) {
	in := &Inputs{
		CPU:    map[string]models.UtilizationPercentiles{"vm-full": {P99: 10}, "vm-cpu-only": {P99: 10}},
		Memory: map[string]models.UtilizationPercentiles{"vm-full": {P99: 1024}},
		Disk:   map[string]models.DiskUtilization{"vm-full": {}},
	}

	w, ok := in.Workload(models.ResourceRecord{ResourceID: "vm-full", RoleCode: "APP"})
	if !ok {
		t.Fatal("expected a workload for vm-full")
	}
	if w.CPU.P99 != 10 || w.Memory.P99 != 1024 || w.Resource.RoleCode != "APP" {
		t.Errorf("unexpected workload: %+v", w)
	}

	for _, id := range []string{"vm-cpu-only", "vm-missing"} {
		if _, ok := in.Workload(models.ResourceRecord{ResourceID: id}); ok {
			t.Errorf("%s: expected no workload", id)
		}
	}
}

func TestSortedIDs(t *testing.T) {
	results := map[string]models.RightSizeAnalysis{
		"vm-c": {},
		"vm-a": {},
		"vm-b": {},
	}

	got := SortedIDs(results)
	want := []string{"vm-a", "vm-b", "vm-c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedIDs() = %v, want %v", got, want)
	}

	if got := SortedIDs(nil); len(got) != 0 {
		t.Errorf("SortedIDs(nil) = %v, want empty", got)
	}
}
