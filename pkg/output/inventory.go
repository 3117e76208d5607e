package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/opscart/vm-rightsizer/pkg/models"
)

// Inventory is the operation inventory handed to the resize automation
type Inventory struct {
	Operations []models.ResizeOperation `json:"vm_resize_operations"`
}

// BuildInventory collects one operation per valid verdict, sorted by resource id
func BuildInventory(resources []models.ResourceRecord, results map[string]models.RightSizeAnalysis) Inventory {
	inv := Inventory{Operations: []models.ResizeOperation{}}
	for _, resource := range resources {
		analysis, ok := results[resource.ResourceID]
		if !ok || !analysis.Valid {
			continue
		}
		inv.Operations = append(inv.Operations, models.ResizeOperation{
			SubscriptionID: resource.SubscriptionID,
			ResourceID:     resource.ResourceID,
			CurrentSKU:     resource.VMSize,
			NewSKU:         analysis.SKU,
		})
	}
	sort.Slice(inv.Operations, func(i, j int) bool {
		return inv.Operations[i].ResourceID < inv.Operations[j].ResourceID
	})
	return inv
}

// WriteInventory serialises the inventory with a three space indent
func WriteInventory(w io.Writer, inv Inventory) error {
	data, err := json.MarshalIndent(inv, "", "   ")
	if err != nil {
		return fmt.Errorf("failed to marshal inventory: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	return nil
}

func WriteInventoryFile(path string, inv Inventory) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create inventory file: %w", err)
	}
	defer f.Close()
	return WriteInventory(f, inv)
}
