package quote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"solana-deposit-engine/internal/adapter/storage/redis"
	"solana-deposit-engine/pkg/apperror"
	"solana-deposit-engine/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quoteServer(t *testing.T, hits *atomic.Int64, priceUSD string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "solana", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"solana":{"usd":%s}}`, priceUSD)
	}))
}

func TestClient_GetPrice(t *testing.T) {
	srv := quoteServer(t, nil, "142.37")
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, time.Minute, logger.NewWithWriter("error", io.Discard))

	price, err := client.GetPrice(context.Background(), "solana")
	require.NoError(t, err)
	assert.Equal(t, "142.37", price.String())
}

func TestClient_GetPrice_ServesFromCache(t *testing.T) {
	var hits atomic.Int64
	srv := quoteServer(t, &hits, "100.5")
	defer srv.Close()

	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := redis.NewQuoteCache(rc)

	client := NewClient(srv.URL, srv.Client(), cache, time.Minute, logger.NewWithWriter("error", io.Discard))
	ctx := context.Background()

	price, err := client.GetPrice(ctx, "solana")
	require.NoError(t, err)
	assert.Equal(t, "100.5", price.String())
	assert.Equal(t, int64(1), hits.Load())

	// Second call hits the cache, not the API.
	price, err = client.GetPrice(ctx, "solana")
	require.NoError(t, err)
	assert.Equal(t, "100.5", price.String())
	assert.Equal(t, int64(1), hits.Load())

	// After TTL expiry the API is consulted again.
	mr.FastForward(2 * time.Minute)
	_, err = client.GetPrice(ctx, "solana")
	require.NoError(t, err)
	assert.Equal(t, int64(2), hits.Load())
}

func TestClient_GetPrice_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, time.Minute, logger.NewWithWriter("error", io.Discard))

	_, err := client.GetPrice(context.Background(), "solana")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "QUOTE_001", appErr.Code)
}

func TestClient_GetPrice_MissingAsset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, time.Minute, logger.NewWithWriter("error", io.Discard))

	_, err := client.GetPrice(context.Background(), "solana")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "QUOTE_001", appErr.Code)
}

func TestClient_GetPrice_NonPositivePrice(t *testing.T) {
	srv := quoteServer(t, nil, "0")
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), nil, time.Minute, logger.NewWithWriter("error", io.Discard))

	_, err := client.GetPrice(context.Background(), "solana")
	assert.Error(t, err)
}

func TestClient_GetPrice_EndpointDown(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", http.DefaultClient, nil, time.Minute, logger.NewWithWriter("error", io.Discard))

	_, err := client.GetPrice(context.Background(), "solana")
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "QUOTE_001", appErr.Code)
}
