package pricing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// Azure Retail Prices API
const retailPricesAPI = "https://prices.azure.com/api/retail/prices"

// maxPages guards against a NextPageLink loop
const maxPages = 1000

// RetailClient downloads virtual machine consumption prices for a region
type RetailClient struct {
	baseURL    string
	httpClient *http.Client
	cache      PriceCache
	logger     *slog.Logger
}

// NewRetailClient creates a client. An empty baseURL uses the public API,
// a nil cache disables caching.
func NewRetailClient(baseURL string, cache PriceCache, logger *slog.Logger) *RetailClient {
	if baseURL == "" {
		baseURL = retailPricesAPI
	}
	return &RetailClient{
		baseURL: baseURL,
		cache:   cache,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchPrices returns every Virtual Machines consumption row for the region,
// following NextPageLink until the list is exhausted.
func (c *RetailClient) FetchPrices(ctx context.Context, region string) ([]PriceItem, error) {
	cacheKey := fmt.Sprintf("azure-%s", region)
	if c.cache != nil {
		items, ok, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			c.logger.Warn("price cache read failed", "key", cacheKey, "error", err)
		} else if ok {
			c.logger.Debug("price list served from cache", "region", region, "items", len(items))
			return items, nil
		}
	}

	filter := fmt.Sprintf("serviceName eq 'Virtual Machines' and armRegionName eq '%s' and priceType eq 'Consumption'", region)
	next := c.baseURL + "?" + url.Values{"$filter": {filter}}.Encode()

	var items []PriceItem
	for page := 0; next != ""; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("azure pricing API exceeded %d pages", maxPages)
		}

		body, err := c.get(ctx, next)
		if err != nil {
			return nil, err
		}

		items = append(items, parseItems(gjson.GetBytes(body, "Items"))...)
		next = gjson.GetBytes(body, "NextPageLink").String()
	}

	c.logger.Info("fetched retail prices", "region", region, "items", len(items))

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, items); err != nil {
			c.logger.Warn("price cache write failed", "key", cacheKey, "error", err)
		}
	}
	return items, nil
}

func (c *RetailClient) get(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("azure pricing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("azure pricing API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read pricing response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("azure pricing API returned invalid JSON")
	}
	return body, nil
}
