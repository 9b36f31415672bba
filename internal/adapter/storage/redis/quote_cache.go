package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// QuoteCache implements ports.QuoteCache using Redis. Prices are stored
// as decimal strings so no float precision is lost in transit.
type QuoteCache struct {
	client *goredis.Client
	prefix string
}

// NewQuoteCache creates a new Redis-backed quote cache.
func NewQuoteCache(client *goredis.Client) *QuoteCache {
	return &QuoteCache{
		client: client,
		prefix: "quote:",
	}
}

// Get retrieves a cached price for the asset.
// Returns ok=false if the key does not exist.
func (c *QuoteCache) Get(ctx context.Context, asset string) (decimal.Decimal, bool, error) {
	val, err := c.client.Get(ctx, c.prefix+asset).Result()
	if err != nil {
		if err == goredis.Nil {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("redis quote get: %w", err)
	}

	price, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("parsing cached quote %q: %w", val, err)
	}
	return price, true, nil
}

// Set stores a price with TTL.
func (c *QuoteCache) Set(ctx context.Context, asset string, price decimal.Decimal, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+asset, price.String(), ttl).Err(); err != nil {
		return fmt.Errorf("redis quote set: %w", err)
	}
	return nil
}
