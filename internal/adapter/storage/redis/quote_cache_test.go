package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	// Get before set => miss
	_, ok, err := cache.Get(ctx, "solana")
	assert.NoError(t, err)
	assert.False(t, ok)

	price := decimal.RequireFromString("142.37")
	require.NoError(t, cache.Set(ctx, "solana", price, time.Minute))

	got, ok, err := cache.Get(ctx, "solana")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, price.Equal(got))
}

func TestQuoteCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "solana", decimal.RequireFromString("100"), time.Second))

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	_, ok, err := cache.Get(ctx, "solana")
	assert.NoError(t, err)
	assert.False(t, ok, "expired quote should be a miss")
}

func TestQuoteCache_PreservesPrecision(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	price := decimal.RequireFromString("0.000000123456789")
	require.NoError(t, cache.Set(ctx, "solana", price, time.Minute))

	got, ok, err := cache.Get(ctx, "solana")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, price.String(), got.String())
}

func TestQuoteCache_CorruptValue(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewQuoteCache(client)
	ctx := context.Background()

	require.NoError(t, s.Set("quote:solana", "not-a-number"))

	_, _, err := cache.Get(ctx, "solana")
	assert.Error(t, err)
}
