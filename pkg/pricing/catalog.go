package pricing

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/opscart/vm-rightsizer/pkg/models"
	"k8s.io/apimachinery/pkg/util/sets"
)

// ErrUnexpectedUnit is returned when a matched price row is not billed per hour
var ErrUnexpectedUnit = errors.New("unexpected unit of measure")

const (
	hoursPerYear = 24 * 365
	hourlyUnit   = "1 Hour"
)

// CatalogConfig scopes the priced catalog
type CatalogConfig struct {
	Region   string
	Families []string

	// SKUs with fewer billed cores than vCPUs are dropped below this core count
	MinBilledCores int

	// Annual list price of a 2-core SQL Server pack
	SQLCorePackAnnual float64
	// Annual list price of a 16-core Windows Server pack
	WindowsPackAnnual float64
}

func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		Region:            "eastus",
		Families:          []string{"standardDSv3Family", "standardESv3Family", "standardMSFamily"},
		MinBilledCores:    4,
		SQLCorePackAnnual: 13748,
		WindowsPackAnnual: 6155,
	}
}

// PricedCatalog holds the purchasable candidates ordered by annual cost
// and the cost of every SKU that could be priced.
type PricedCatalog struct {
	Candidates []models.PricedSku
	costs      map[string]models.PricedSku
}

// Cost looks up the annual cost of any priced SKU, ignoring case
func (c *PricedCatalog) Cost(name string) (models.PricedSku, bool) {
	p, ok := c.costs[strings.ToLower(name)]
	return p, ok
}

// Len returns the number of priced SKUs, candidates or not
func (c *PricedCatalog) Len() int {
	return len(c.costs)
}

// Builder joins a SKU catalog with a retail price list
type Builder struct {
	config CatalogConfig
	logger *slog.Logger
}

func NewBuilder(config CatalogConfig, logger *slog.Logger) *Builder {
	return &Builder{config: config, logger: logger}
}

// Build prices every SKU and selects the candidates. A SKU without exactly
// one Windows and one non-Windows row is excluded with a warning, a row
// billed in anything other than hours fails the build.
func (b *Builder) Build(skus []*models.ComputeSku, prices []PriceItem) (*PricedCatalog, error) {
	rows := b.indexPrices(prices)

	families := sets.New[string]()
	for _, f := range b.config.Families {
		families.Insert(strings.ToLower(f))
	}

	sorted := make([]*models.ComputeSku, len(skus))
	copy(sorted, skus)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	catalog := &PricedCatalog{costs: make(map[string]models.PricedSku, len(sorted))}
	for _, sku := range sorted {
		matched := rows[strings.ToLower(sku.BillingName())]

		priced, ok, err := b.price(sku, matched)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		catalog.costs[strings.ToLower(sku.Name)] = priced
		if b.isCandidate(sku, families) {
			catalog.Candidates = append(catalog.Candidates, priced)
		}
	}

	sort.SliceStable(catalog.Candidates, func(i, j int) bool {
		a, c := catalog.Candidates[i], catalog.Candidates[j]
		if a.AnnualCost != c.AnnualCost {
			return a.AnnualCost < c.AnnualCost
		}
		return a.Sku.Name < c.Sku.Name
	})

	b.logger.Info("built priced catalog",
		"region", b.config.Region,
		"skus", len(skus),
		"priced", len(catalog.costs),
		"candidates", len(catalog.Candidates))

	return catalog, nil
}

// indexPrices keeps the usable consumption rows of the region keyed by lower-cased armSkuName
func (b *Builder) indexPrices(prices []PriceItem) map[string][]PriceItem {
	rows := make(map[string][]PriceItem)
	for _, p := range prices {
		if !strings.EqualFold(p.ArmRegionName, b.config.Region) ||
			p.Type != "Consumption" ||
			p.ServiceName != "Virtual Machines" ||
			strings.Contains(p.SkuName, "Low Priority") ||
			p.PartNumber == "" {
			continue
		}
		key := strings.ToLower(p.ArmSkuName)
		rows[key] = append(rows[key], p)
	}
	return rows
}

func (b *Builder) price(sku *models.ComputeSku, rows []PriceItem) (models.PricedSku, bool, error) {
	for _, r := range rows {
		if r.UnitOfMeasure != hourlyUnit {
			return models.PricedSku{}, false, fmt.Errorf("%w %q for %s", ErrUnexpectedUnit, r.UnitOfMeasure, sku.Name)
		}
	}

	var linux, windows []PriceItem
	for _, r := range rows {
		if r.IsWindows() {
			windows = append(windows, r)
		} else {
			linux = append(linux, r)
		}
	}
	if len(rows) != 2 || len(linux) != 1 || len(windows) != 1 {
		b.logger.Warn("excluding sku without exactly one windows and one linux price",
			"sku", sku.Name,
			"billing_name", sku.BillingName(),
			"rows", len(rows))
		return models.PricedSku{}, false, nil
	}

	cores := sku.BilledCores()
	hourly := linux[0].UnitPrice
	sqlCost := SQLLicenseCost(cores, b.config.SQLCorePackAnnual)
	windowsCost := WindowsLicenseCost(cores, b.config.WindowsPackAnnual)

	return models.PricedSku{
		Sku:         sku,
		HourlyRate:  hourly,
		SQLCost:     sqlCost,
		WindowsCost: windowsCost,
		AnnualCost:  hourly*hoursPerYear + sqlCost + windowsCost,
	}, true, nil
}

func (b *Builder) isCandidate(sku *models.ComputeSku, families sets.Set[string]) bool {
	if !families.Has(strings.ToLower(sku.Family)) {
		return false
	}
	billed := sku.BilledCores()
	return !(billed < sku.VCPUs && billed < b.config.MinBilledCores)
}

// SQLLicenseCost bills 2-core packs with a 4 core minimum
func SQLLicenseCost(cores int, packAnnual float64) float64 {
	return packAnnual * float64(max(4, cores)) / 2
}

// WindowsLicenseCost bills half a pack up to 8 cores, then whole 16-core packs
func WindowsLicenseCost(cores int, packAnnual float64) float64 {
	if cores <= 8 {
		return packAnnual / 2
	}
	return math.Ceil(float64(cores)/16) * packAnnual
}
