package recommender

import (
	"io"
	"log/slog"
	"testing"

	"github.com/opscart/vm-rightsizer/pkg/analyzer"
	"github.com/opscart/vm-rightsizer/pkg/models"
	"github.com/opscart/vm-rightsizer/pkg/pricing"
	"github.com/stretchr/testify/require"
)

const hoursPerYear = 24 * 365

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSku(name string, vcpus int, memoryGB float64) *models.ComputeSku {
	return &models.ComputeSku{
		Name:                name,
		Family:              "testFamily",
		VCPUs:               vcpus,
		MemoryGB:            memoryGB,
		ACUs:                100,
		CachedBytesPerSec:   1e9,
		CachedIOPS:          1e6,
		UncachedBytesPerSec: 1e9,
		UncachedIOPS:        1e6,
	}
}

// testSkus are priced at 0.05, 0.10, 0.15, 0.20 and 0.40 per hour
func testSkus() ([]*models.ComputeSku, map[string]float64) {
	skus := []*models.ComputeSku{
		testSku("Standard_T1", 1, 2),
		testSku("Standard_T2", 2, 4),
		testSku("Standard_T2m", 2, 8),
		testSku("Standard_T4", 4, 8),
		testSku("Standard_T8", 8, 16),
	}
	hourly := map[string]float64{
		"Standard_T1":  0.05,
		"Standard_T2":  0.10,
		"Standard_T2m": 0.15,
		"Standard_T4":  0.20,
		"Standard_T8":  0.40,
	}
	return skus, hourly
}

func testCatalog(t *testing.T) (*pricing.PricedCatalog, models.ComputeCatalog) {
	t.Helper()
	skus, hourly := testSkus()

	var prices []pricing.PriceItem
	for _, sku := range skus {
		for _, product := range []string{"Virtual Machines T Series", "Virtual Machines T Series Windows"} {
			prices = append(prices, pricing.PriceItem{
				ArmSkuName:    sku.Name,
				ArmRegionName: "testregion",
				Type:          "Consumption",
				ServiceName:   "Virtual Machines",
				ProductName:   product,
				SkuName:       sku.Name,
				PartNumber:    "PN",
				UnitOfMeasure: "1 Hour",
				UnitPrice:     hourly[sku.Name],
			})
		}
	}

	config := pricing.CatalogConfig{
		Region:         "testregion",
		Families:       []string{"testFamily"},
		MinBilledCores: 4,
	}
	priced, err := pricing.NewBuilder(config, discardLogger()).Build(skus, prices)
	require.NoError(t, err)
	require.Len(t, priced.Candidates, len(skus))

	return priced, models.NewComputeCatalog(skus)
}

func newTestEvaluator() *analyzer.FitnessEvaluator {
	return analyzer.NewFitnessEvaluator(analyzer.DefaultThresholds(), "DBS")
}

type workloadFixture struct {
	id, vmSize, role string
	cpuP95, cpuP99   float64
	memP80, memP95   float64
	memP99           float64
	disk             models.DiskUtilization
}

func (s workloadFixture) add(in *Inputs) {
	in.Resources = append(in.Resources, models.ResourceRecord{
		ResourceID:     s.id,
		SubscriptionID: "sub-1",
		VMSize:         s.vmSize,
		RoleCode:       s.role,
	})
	in.CPU[s.id] = models.UtilizationPercentiles{ResourceID: s.id, P95: s.cpuP95, P99: s.cpuP99}
	in.Memory[s.id] = models.UtilizationPercentiles{ResourceID: s.id, P80: s.memP80, P95: s.memP95, P99: s.memP99}
	disk := s.disk
	if disk == nil {
		disk = models.DiskUtilization{}
	}
	in.Disk[s.id] = disk
}

func newInputs(fixtures ...workloadFixture) *Inputs {
	in := &Inputs{
		CPU:    make(map[string]models.UtilizationPercentiles),
		Memory: make(map[string]models.UtilizationPercentiles),
		Disk:   make(map[string]models.DiskUtilization),
	}
	for _, s := range fixtures {
		s.add(in)
	}
	return in
}
