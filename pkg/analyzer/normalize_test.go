package analyzer

import (
	"testing"

	"github.com/opscart/vm-rightsizer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	catalog := models.NewComputeCatalog([]*models.ComputeSku{
		{Name: "Standard_E4s_v3", VCPUs: 4, ACUs: 160, MemoryGB: 32},
	})
	resources := map[string]models.ResourceRecord{
		"vm-1": {ResourceID: "vm-1", VMSize: "standard_e4s_v3"},
		"vm-2": {ResourceID: "vm-2", VMSize: "Standard_Unknown"},
	}

	t.Run("cpu percent to acus", func(t *testing.T) {
		rows := []models.UtilizationPercentiles{
			{ResourceID: "vm-1", P95: 50, P99: 75, Max: 100, Samples: 30},
			{ResourceID: "vm-2", P95: 50},
			{ResourceID: "vm-3", P95: 50},
		}

		result := NormalizeCPU(rows, resources, catalog, discardLogger())
		require.Len(t, result, 1)
		assert.Equal(t, 320.0, result["vm-1"].P95)
		assert.Equal(t, 480.0, result["vm-1"].P99)
		assert.Equal(t, 640.0, result["vm-1"].Max)
		assert.Equal(t, int64(30), result["vm-1"].Samples)
	})

	t.Run("negated available memory to used", func(t *testing.T) {
		rows := []models.UtilizationPercentiles{
			{ResourceID: "vm-1", P80: -30000, P99: -20000, Samples: 30},
		}

		result := NormalizeMemory(rows, resources, catalog, discardLogger())
		assert.Equal(t, 32768.0-30000, result["vm-1"].P80)
		assert.Equal(t, 32768.0-20000, result["vm-1"].P99)
	})
}

func TestCheckCoverage(t *testing.T) {
	resources := []models.ResourceRecord{{ResourceID: "a"}, {ResourceID: "b"}, {ResourceID: "c"}}

	c := CheckCoverage("cpu", resources, []string{"a", "c", "c"}, discardLogger())
	assert.Equal(t, 3, c.Input)
	assert.Equal(t, 2, c.Output)
	assert.Equal(t, []string{"b"}, c.Missing)
	assert.False(t, c.Complete())

	c = CheckCoverage("cpu", resources, []string{"a", "b", "c"}, discardLogger())
	assert.True(t, c.Complete())
}
