package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"github.com/trolley/backend/internal/domain"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// SizeFromTitle extracts a size token from a product title
type SizeFromTitle func(title string) (string, bool)

// Client handles communication with a store price-feed API.
// Each lookup is a single request; failures are returned to the caller, never retried.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	rateLimiter *rate.Limiter
	extractSize SizeFromTitle
	debug       bool
}

// NewClient creates a new price-feed client limited to requestsPerSecond.
// A non-positive rate defaults to 5 requests per second.
func NewClient(apiKey, baseURL string, requestsPerSecond float64) *Client {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// SetDebug enables or disables request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// SetSizeExtractor sets the fallback used for products published without a size
func (c *Client) SetSizeExtractor(fn SizeFromTitle) {
	c.extractSize = fn
}

// LookupPrices implements domain.PriceLookup against the feed
func (c *Client) LookupPrices(ctx context.Context, itemName, storeID string) ([]domain.StorePrice, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "pricefeed: rate limiter")
	}

	endpoint := fmt.Sprintf("%s/v1/stores/%s/prices", c.baseURL, url.PathEscape(storeID))
	params := url.Values{}
	params.Add("item", itemName)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	if c.debug {
		zap.L().Debug("pricefeed: lookup",
			zap.String("store", storeID),
			zap.String("item", itemName),
		)
	}

	resp, err := c.doRequest(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrStoreNotFound, storeID)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		zap.L().Warn("pricefeed: unexpected status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("%w: status %d", domain.ErrPriceFeedFailure, resp.StatusCode)
	}

	var feed PriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, eris.Wrap(err, "pricefeed: failed to decode response")
	}

	prices := MapToStorePrices(feed.Products, c.extractSize)
	if c.debug {
		zap.L().Debug("pricefeed: lookup done",
			zap.String("store", storeID),
			zap.String("item", itemName),
			zap.Int("products", len(feed.Products)),
			zap.Int("priced", len(prices)),
		)
	}
	return prices, nil
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "pricefeed: create request")
	}
	req.Header.Set("User-Agent", "Trolley/1.0")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPriceFeedFailure, err)
	}
	return resp, nil
}
