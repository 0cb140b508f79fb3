package utils

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"cursapp/cache"
	"cursapp/logger"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	ExchangeRateCacheKey = "bcv_exchange_rate"
	ExchangeRateCacheTTL = 6 * time.Hour
)

// ExchangeRateResponse is the relevant part of the official rate API reply.
type ExchangeRateResponse struct {
	Current struct {
		USD  decimal.Decimal `json:"usd"`
		Date string          `json:"date"`
	} `json:"current"`
}

// ExchangeRateClient reads the USD to VES rate and keeps it cached for six hours.
type ExchangeRateClient struct {
	client *resty.Client
	url    string
	cache  cache.Cache
}

// ExchangeRates is the process-wide client, set by InitExchangeRates.
var ExchangeRates *ExchangeRateClient

func NewExchangeRateClient(url string, timeout time.Duration, c cache.Cache) *ExchangeRateClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if c == nil {
		c = cache.NewMemory()
	}
	return &ExchangeRateClient{
		client: resty.New().SetTimeout(timeout).SetHeader("Accept", "application/json"),
		url:    url,
		cache:  c,
	}
}

func InitExchangeRates(url string, timeout time.Duration, c cache.Cache) *ExchangeRateClient {
	ExchangeRates = NewExchangeRateClient(url, timeout, c)
	return ExchangeRates
}

// Fetch calls the upstream API, bypassing the cache.
func (e *ExchangeRateClient) Fetch(ctx context.Context) (decimal.Decimal, error) {
	resp, err := e.client.R().SetContext(ctx).Get(e.url)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "exchange rate request")
	}
	if resp.StatusCode() != http.StatusOK {
		return decimal.Zero, errors.Errorf("exchange rate API returned %d", resp.StatusCode())
	}

	var body ExchangeRateResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return decimal.Zero, errors.Wrap(err, "decode exchange rate")
	}
	if !body.Current.USD.IsPositive() {
		return decimal.Zero, errors.New("exchange rate missing from response")
	}
	return body.Current.USD, nil
}

// Refresh fetches the rate and stores it in the cache.
func (e *ExchangeRateClient) Refresh(ctx context.Context) (decimal.Decimal, error) {
	rate, err := e.Fetch(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if err := e.cache.Set(ctx, ExchangeRateCacheKey, rate.String(), ExchangeRateCacheTTL); err != nil {
		logger.L().Warn("caching exchange rate failed", "error", err)
	}
	return rate, nil
}

// USDRate returns the cached rate, refreshing it on a miss. Failures yield zero and are
// never cached.
func (e *ExchangeRateClient) USDRate(ctx context.Context) decimal.Decimal {
	if e == nil {
		return decimal.Zero
	}
	if raw, err := e.cache.Get(ctx, ExchangeRateCacheKey); err == nil {
		if rate, err := decimal.NewFromString(raw); err == nil {
			return rate
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		logger.L().Warn("reading cached exchange rate failed", "error", err)
	}

	rate, err := e.Refresh(ctx)
	if err != nil {
		logger.L().Error("exchange rate unavailable", "url", e.url, "error", err)
		return decimal.Zero
	}
	return rate
}
