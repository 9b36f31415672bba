package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"solana-deposit-engine/internal/core/ports"
	"solana-deposit-engine/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches USD prices from a CoinGecko-compatible API, with a
// Redis read-through cache in front of it.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	cache      ports.QuoteCache
	cacheTTL   time.Duration
	log        zerolog.Logger
}

// NewClient creates a quote client. cache may be nil, in which case
// every call hits the API.
func NewClient(baseURL string, httpClient HTTPClient, cache ports.QuoteCache, cacheTTL time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		cache:      cache,
		cacheTTL:   cacheTTL,
		log:        log,
	}
}

// GetPrice returns the USD price for the asset. Cached prices are served
// until their TTL expires; a cache failure falls through to the API.
func (c *Client) GetPrice(ctx context.Context, asset string) (decimal.Decimal, error) {
	if c.cache != nil {
		price, ok, err := c.cache.Get(ctx, asset)
		if err != nil {
			c.log.Warn().Err(err).Str("asset", asset).Msg("Quote cache read failed")
		} else if ok {
			return price, nil
		}
	}

	price, err := c.fetch(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, asset, price, c.cacheTTL); err != nil {
			c.log.Warn().Err(err).Str("asset", asset).Msg("Quote cache write failed")
		}
	}
	return price, nil
}

func (c *Client) fetch(ctx context.Context, asset string) (decimal.Decimal, error) {
	endpoint := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, url.QueryEscape(asset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, apperror.ErrQuoteUnavailable(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, apperror.ErrQuoteUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, apperror.ErrQuoteUnavailable(fmt.Errorf("quote API returned status %d", resp.StatusCode))
	}

	// Response shape: {"solana": {"usd": 142.37}}
	var body map[string]map[string]json.Number
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, apperror.ErrQuoteUnavailable(err)
	}

	raw, ok := body[asset]["usd"]
	if !ok {
		return decimal.Zero, apperror.ErrQuoteUnavailable(fmt.Errorf("no usd price for asset %q", asset))
	}

	price, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, apperror.ErrQuoteUnavailable(err)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, apperror.ErrQuoteUnavailable(fmt.Errorf("non-positive price %s for asset %q", price, asset))
	}
	return price, nil
}
