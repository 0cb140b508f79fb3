package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"cursapp/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateServer(t *testing.T, status int, body string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestUSDRateCachesUpstreamValue(t *testing.T) {
	srv, calls := rateServer(t, http.StatusOK, `{"current":{"usd":36.5,"date":"2024-05-02"}}`)
	c := cache.NewMemory()
	client := NewExchangeRateClient(srv.URL, time.Second, c)
	ctx := context.Background()

	assert.Equal(t, "36.50", client.USDRate(ctx).StringFixed(2))
	assert.Equal(t, "36.50", client.USDRate(ctx).StringFixed(2))
	assert.EqualValues(t, 1, atomic.LoadInt32(calls))

	raw, err := c.Get(ctx, ExchangeRateCacheKey)
	require.NoError(t, err)
	assert.Equal(t, "36.5", raw)
}

func TestUSDRateFallsBackToZero(t *testing.T) {
	ctx := context.Background()

	srv, calls := rateServer(t, http.StatusInternalServerError, `{}`)
	client := NewExchangeRateClient(srv.URL, time.Second, cache.NewMemory())
	assert.True(t, client.USDRate(ctx).IsZero())
	assert.True(t, client.USDRate(ctx).IsZero())
	assert.EqualValues(t, 2, atomic.LoadInt32(calls), "failures are not cached")

	missing, _ := rateServer(t, http.StatusOK, `{"current":{"date":"2024-05-02"}}`)
	assert.True(t, NewExchangeRateClient(missing.URL, time.Second, nil).USDRate(ctx).IsZero())

	var nilClient *ExchangeRateClient
	assert.True(t, nilClient.USDRate(ctx).IsZero())
}
