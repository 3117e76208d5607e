package pricing

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// PriceItem is one row of the Azure retail price list
type PriceItem struct {
	CurrencyCode  string  `json:"currencyCode"`
	UnitPrice     float64 `json:"unitPrice"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	ArmRegionName string  `json:"armRegionName"`
	ArmSkuName    string  `json:"armSkuName"`
	ServiceName   string  `json:"serviceName"`
	ProductName   string  `json:"productName"`
	SkuName       string  `json:"skuName"`
	Type          string  `json:"type"`
	PartNumber    string  `json:"partNumber"`
}

// IsWindows reports whether the row carries the Windows license surcharge
func (p PriceItem) IsWindows() bool {
	return strings.Contains(p.ProductName, "Windows")
}

// ParsePriceList accepts either a bare JSON array of items or an API page with an Items field
func ParsePriceList(data []byte) ([]PriceItem, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid price list JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		root = root.Get("Items")
		if !root.IsArray() {
			return nil, fmt.Errorf("price list has no Items array")
		}
	}
	return parseItems(root), nil
}

// LoadPriceList reads a price list exported to disk
func LoadPriceList(path string) ([]PriceItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read price list: %w", err)
	}

	items, err := ParsePriceList(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price list %s: %w", path, err)
	}
	return items, nil
}

func parseItems(items gjson.Result) []PriceItem {
	result := make([]PriceItem, 0, len(items.Array()))
	items.ForEach(func(_, item gjson.Result) bool {
		result = append(result, PriceItem{
			CurrencyCode:  item.Get("currencyCode").String(),
			UnitPrice:     unitPrice(item),
			UnitOfMeasure: item.Get("unitOfMeasure").String(),
			ArmRegionName: item.Get("armRegionName").String(),
			ArmSkuName:    item.Get("armSkuName").String(),
			ServiceName:   item.Get("serviceName").String(),
			ProductName:   item.Get("productName").String(),
			SkuName:       item.Get("skuName").String(),
			Type:          item.Get("type").String(),
			PartNumber:    item.Get("partNumber").String(),
		})
		return true
	})
	return result
}

// unitPrice reads unitPrice, falling back to retailPrice for rows that only carry the latter
func unitPrice(item gjson.Result) float64 {
	if v := item.Get("unitPrice"); v.Exists() {
		return v.Float()
	}
	return item.Get("retailPrice").Float()
}
