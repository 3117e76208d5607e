package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opscart/vm-rightsizer/pkg/models"
	"github.com/tidwall/gjson"
)

const (
	ResourcesFile = "resources.json"
	CPUFile       = "cpu.json"
	MemoryFile    = "memory.json"
	DiskFile      = "disk.json"
	SkusFile      = "skus.json"
	AdvisorFile   = "advisor.json"
)

// FileSource reads exported tables from a directory
type FileSource struct {
	dir    string
	region string
}

// NewFileSource reads from dir. A non-empty region limits SKUs to those
// offered in that location.
func NewFileSource(dir, region string) *FileSource {
	return &FileSource{dir: dir, region: region}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Resources(_ context.Context) ([]models.ResourceRecord, error) {
	var resources []models.ResourceRecord
	if err := f.decode(ResourcesFile, &resources); err != nil {
		return nil, err
	}
	return resources, nil
}

func (f *FileSource) CPUUtilization(_ context.Context) ([]models.UtilizationPercentiles, error) {
	var rows []models.UtilizationPercentiles
	if err := f.decode(CPUFile, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *FileSource) MemoryUtilization(_ context.Context) ([]models.UtilizationPercentiles, error) {
	var rows []models.UtilizationPercentiles
	if err := f.decode(MemoryFile, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (f *FileSource) DiskUtilization(_ context.Context) ([]models.DiskCounterRow, error) {
	var rows []models.DiskCounterRow
	if err := f.decode(DiskFile, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ComputeSkus parses a resource SKU listing, either a bare array or a
// response page with a value field.
func (f *FileSource) ComputeSkus(_ context.Context) ([]*models.ComputeSku, error) {
	data, err := f.read(SkusFile)
	if err != nil {
		return nil, err
	}
	skus, err := ParseResourceSkus(data, f.region)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", SkusFile, err)
	}
	return skus, nil
}

// AdvisorRecommendations maps resource ids to the SKU an advisor proposed.
// The file is optional.
func (f *FileSource) AdvisorRecommendations(_ context.Context) (map[string]string, error) {
	data, err := f.read(AdvisorFile)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	advice, err := ParseAdvisor(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", AdvisorFile, err)
	}
	return advice, nil
}

func (f *FileSource) read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func (f *FileSource) decode(name string, v any) error {
	data, err := f.read(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return nil
}

// ParseResourceSkus extracts virtual machine sizes and their capabilities
func ParseResourceSkus(data []byte, region string) ([]*models.ComputeSku, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		root = root.Get("value")
	}

	seen := make(map[string]bool)
	var skus []*models.ComputeSku
	root.ForEach(func(_, item gjson.Result) bool {
		if item.Get("resourceType").String() != "virtualMachines" {
			return true
		}
		if region != "" && !offeredIn(item, region) {
			return true
		}

		name := item.Get("name").String()
		if name == "" || seen[strings.ToLower(name)] {
			return true
		}
		seen[strings.ToLower(name)] = true

		caps := make(map[string]string)
		item.Get("capabilities").ForEach(func(_, c gjson.Result) bool {
			caps[c.Get("name").String()] = c.Get("value").String()
			return true
		})

		skus = append(skus, &models.ComputeSku{
			Name:                name,
			Family:              item.Get("family").String(),
			VCPUs:               int(parseNumber(caps["vCPUs"])),
			VCPUsAvailable:      int(parseNumber(caps["vCPUsAvailable"])),
			MemoryGB:            parseNumber(caps["MemoryGB"]),
			ACUs:                parseNumber(caps["ACUs"]),
			CachedBytesPerSec:   parseNumber(caps["CombinedTempDiskAndCachedReadBytesPerSecond"]),
			CachedIOPS:          parseNumber(caps["CombinedTempDiskAndCachedIOPS"]),
			UncachedBytesPerSec: parseNumber(caps["UncachedDiskBytesPerSecond"]),
			UncachedIOPS:        parseNumber(caps["UncachedDiskIOPS"]),
			ParentSize:          caps["ParentSize"],
		})
		return true
	})

	sort.Slice(skus, func(i, j int) bool { return skus[i].Name < skus[j].Name })
	return skus, nil
}

func offeredIn(item gjson.Result, region string) bool {
	for _, l := range item.Get("locations").Array() {
		if strings.EqualFold(l.String(), region) {
			return true
		}
	}
	return false
}

func parseNumber(s string) float64 {
	return gjson.Parse(s).Float()
}

// ParseAdvisor accepts an object of resource id to SKU, or an array of
// objects with resource_id and target_sku.
func ParseAdvisor(data []byte) (map[string]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}

	advice := make(map[string]string)
	root := gjson.ParseBytes(data)
	switch {
	case root.IsObject():
		root.ForEach(func(k, v gjson.Result) bool {
			advice[k.String()] = v.String()
			return true
		})
	case root.IsArray():
		root.ForEach(func(_, v gjson.Result) bool {
			if id := v.Get("resource_id").String(); id != "" {
				advice[id] = v.Get("target_sku").String()
			}
			return true
		})
	default:
		return nil, fmt.Errorf("unexpected advisor layout")
	}
	return advice, nil
}
