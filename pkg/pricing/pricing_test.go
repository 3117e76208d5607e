package pricing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Contract test - uses a recorded Azure response
func TestLoadPriceListRecording(t *testing.T) {
	items, err := LoadPriceList("testdata/eastus_prices.json")
	require.NoError(t, err)
	require.Len(t, items, 18)

	first := items[0]
	assert.Equal(t, "USD", first.CurrencyCode)
	assert.Equal(t, "Standard_D2_v3", first.ArmSkuName)
	assert.Equal(t, "eastus", first.ArmRegionName)
	assert.Equal(t, "1 Hour", first.UnitOfMeasure)
	assert.Equal(t, "Consumption", first.Type)
	assert.Equal(t, "Virtual Machines", first.ServiceName)
	assert.InDelta(t, 0.096, first.UnitPrice, 1e-9)
	assert.False(t, first.IsWindows())
	assert.True(t, items[1].IsWindows())
}

func TestParsePriceList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"bare array", `[{"armSkuName":"Standard_D2_v3"},{"armSkuName":"Standard_D4_v3"}]`, 2, false},
		{"api page", `{"Items":[{"armSkuName":"Standard_D2_v3"}],"NextPageLink":null}`, 1, false},
		{"empty page", `{"Items":[]}`, 0, false},
		{"missing items", `{"Count":0}`, 0, true},
		{"invalid json", `{"Items":[`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParsePriceList([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestParsePriceListUnitPrice(t *testing.T) {
	items, err := ParsePriceList([]byte(`[
		{"armSkuName":"Standard_D2_v3","unitPrice":0.096},
		{"armSkuName":"Standard_D2_v3","retailPrice":0.188},
		{"armSkuName":"Standard_D2_v3","unitPrice":0.05,"retailPrice":0.5}
	]`))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, 0.096, items[0].UnitPrice)
	assert.Equal(t, 0.188, items[1].UnitPrice)
	assert.Equal(t, 0.05, items[2].UnitPrice)
}

func TestLoadPriceListMissingFile(t *testing.T) {
	_, err := LoadPriceList("testdata/does_not_exist.json")
	assert.Error(t, err)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cache := NewMemoryCache(time.Hour)
	cache.now = func() time.Time { return now }

	_, ok, err := cache.Get(ctx, "azure-eastus")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "azure-eastus", []PriceItem{{ArmSkuName: "Standard_D2_v3"}}))

	items, ok, err := cache.Get(ctx, "azure-eastus")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, items, 1)

	now = now.Add(2 * time.Hour)
	_, ok, _ = cache.Get(ctx, "azure-eastus")
	assert.False(t, ok, "entry should expire after the TTL")

	now = now.Add(-2 * time.Hour)
	cache.Clear()
	_, ok, _ = cache.Get(ctx, "azure-eastus")
	assert.False(t, ok)
}

func TestRetailClientFollowsNextPageLink(t *testing.T) {
	var requests atomic.Int32
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/prices":
			assert.Equal(t,
				"serviceName eq 'Virtual Machines' and armRegionName eq 'eastus' and priceType eq 'Consumption'",
				r.URL.Query().Get("$filter"))
			fmt.Fprintf(w, `{"Items":[{"armSkuName":"Standard_D2_v3","retailPrice":0.096},{"armSkuName":"Standard_D2_v3","retailPrice":0.188}],"NextPageLink":"%s/prices/page2"}`, server.URL)
		case "/prices/page2":
			fmt.Fprint(w, `{"Items":[{"armSkuName":"Standard_E2_v3","retailPrice":0.126}],"NextPageLink":null}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	client := NewRetailClient(server.URL+"/prices", NewMemoryCache(time.Hour), discardLogger())

	items, err := client.FetchPrices(context.Background(), "eastus")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Standard_E2_v3", items[2].ArmSkuName)
	assert.Equal(t, int32(2), requests.Load())

	// Served from cache
	items, err = client.FetchPrices(context.Background(), "eastus")
	require.NoError(t, err)
	assert.Len(t, items, 3)
	assert.Equal(t, int32(2), requests.Load())
}

func TestRetailClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"invalid json", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Items":[`)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewRetailClient(server.URL, nil, discardLogger())
			_, err := client.FetchPrices(context.Background(), "eastus")
			assert.Error(t, err)
		})
	}
}
