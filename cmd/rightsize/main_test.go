package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opscart/vm-rightsizer/pkg/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	fixtureDir = "../../pkg/datasource/testdata/run"
	priceList  = "../../pkg/pricing/testdata/eastus_prices.json"
	appVM      = "/subscriptions/sub-1/resourcegroups/rg-app/providers/microsoft.compute/virtualmachines/app-01"
)

func offlineEnv(t *testing.T) {
	t.Helper()
	t.Setenv("PROMETHEUS_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("STORAGE_ENABLED", "false")
	t.Setenv("RIGHTSIZE_PRICE_LIST", priceList)
	t.Setenv("RIGHTSIZE_REGION", "eastus")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "text")
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "missing.env")))
	cmd.SetOut(&strings.Builder{})
	cmd.SetErr(&strings.Builder{})
	return cmd.Execute()
}

func TestEngineCommand(t *testing.T) {
	offlineEnv(t)
	dir := t.TempDir()
	inventory := filepath.Join(dir, "ops.json")
	report := filepath.Join(dir, "report.csv")
	metrics := filepath.Join(dir, "engine.prom")

	err := execute(t, "engine",
		"--data-dir", fixtureDir,
		"--workers", "2",
		"--inventory", inventory,
		"--report", "csv", "--report-file", report,
		"--metrics-file", metrics,
	)
	require.NoError(t, err)

	data, err := os.ReadFile(inventory)
	require.NoError(t, err)
	var inv output.Inventory
	require.NoError(t, json.Unmarshal(data, &inv))
	require.Len(t, inv.Operations, 1)
	assert.Equal(t, appVM, inv.Operations[0].ResourceID)
	assert.Equal(t, "Standard_D4s_v3", inv.Operations[0].CurrentSKU)
	assert.Equal(t, "Standard_D2s_v3", inv.Operations[0].NewSKU)

	csv, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(csv), "Standard_D2s_v3")

	prom, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `rightsize_resources_evaluated_total{outcome="resize",region="eastus"} 1`)
}

func TestValidateCommand(t *testing.T) {
	offlineEnv(t)
	require.NoError(t, execute(t, "validate", "--data-dir", fixtureDir, "-o", "json"))
}

func TestInvalidConfiguration(t *testing.T) {
	offlineEnv(t)

	err := execute(t, "engine", "--data-dir", fixtureDir, "--workers=-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers must be at least 1")

	err = execute(t, "engine", "--data-dir", fixtureDir, "--preset", "reckless")
	require.Error(t, err)

	err = execute(t, "engine", "--data-dir", fixtureDir, "--report", "pdf")
	require.Error(t, err)
}

func TestHistoryRequiresStorage(t *testing.T) {
	offlineEnv(t)

	err := execute(t, "history", "sub-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage is disabled")
}
