package output

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/opscart/vm-rightsizer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() ([]models.ResourceRecord, map[string]models.RightSizeAnalysis) {
	saving := 840.96
	resources := []models.ResourceRecord{
		{ResourceID: "/subscriptions/s2/vm/zeta", SubscriptionID: "s2", VMSize: "Standard_D4s_v3"},
		{ResourceID: "/subscriptions/s1/vm/alpha", SubscriptionID: "s1", VMSize: "Standard_E4s_v3"},
		{ResourceID: "/subscriptions/s1/vm/beta", SubscriptionID: "s1", VMSize: "Standard_E2s_v3"},
		{ResourceID: "/subscriptions/s1/vm/unknown", SubscriptionID: "s1", VMSize: "Standard_E2s_v3"},
	}
	results := map[string]models.RightSizeAnalysis{
		resources[0].ResourceID: {SKU: "Standard_D2s_v3", Valid: true, AnnualSavings: &saving, CandidatesScanned: 1},
		resources[1].ResourceID: {SKU: "Standard_E2s_v3", Valid: true, AnnualSavings: &saving, CandidatesScanned: 3},
		resources[2].ResourceID: {SKU: "Standard_E4s_v3", Reason: "Memory suggests increase."},
	}
	return resources, results
}

func TestBuildInventory(t *testing.T) {
	inv := BuildInventory(fixture())

	require.Len(t, inv.Operations, 2)
	assert.Equal(t, models.ResizeOperation{
		SubscriptionID: "s1",
		ResourceID:     "/subscriptions/s1/vm/alpha",
		CurrentSKU:     "Standard_E4s_v3",
		NewSKU:         "Standard_E2s_v3",
	}, inv.Operations[0])
	assert.Equal(t, "/subscriptions/s2/vm/zeta", inv.Operations[1].ResourceID)
}

func TestWriteInventory(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteInventory(&buf, BuildInventory(fixture())))

	out := buf.String()
	assert.Contains(t, out, "{\n   \"vm_resize_operations\": [\n      {\n         \"subscription_id\": \"s1\",")
	assert.Contains(t, out, `"new_sku": "Standard_D2s_v3"`)
}

func TestWriteInventoryEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.json")
	require.NoError(t, WriteInventoryFile(path, BuildInventory(nil, nil)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"vm_resize_operations": []}`, string(data))
}

func TestHandlers(t *testing.T) {
	resources, results := fixture()
	ctx := context.Background()

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		h, err := NewHandler("text", &buf)
		require.NoError(t, err)
		require.NoError(t, h.DisplayResults(ctx, resources, results))
		require.NoError(t, h.DisplaySummary(ctx, 1681.92, 2, 3))

		out := buf.String()
		assert.Contains(t, out, "[RESIZE] zeta (s2)")
		assert.Contains(t, out, "[UNDERSIZED] beta (s1)")
		assert.NotContains(t, out, "unknown")
		assert.Contains(t, out, "Total annual savings: $1681.92")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		h, err := NewHandler("json", &buf)
		require.NoError(t, err)
		require.NoError(t, h.DisplayResults(ctx, resources, results))
		require.NoError(t, h.DisplaySummary(ctx, 1681.92, 2, 3))

		var doc jsonDocument
		require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
		require.Len(t, doc.Results, 3)
		assert.Equal(t, "/subscriptions/s1/vm/alpha", doc.Results[0].ResourceID)
		assert.Equal(t, "Standard_E4s_v3", doc.Results[0].CurrentSKU)
		assert.Equal(t, 2, doc.Valid)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := NewHandler("yaml", &bytes.Buffer{})
		assert.Error(t, err)
	})
}
