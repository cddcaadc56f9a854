// Package market wraps the remote market data provider behind a time-boxed
// cache with stale-data fallback.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	apperrors "marketdash/internal/errors"
	"marketdash/internal/models"
)

// Fetcher is the contract the orchestration layer depends on.
type Fetcher interface {
	Fetch(ctx context.Context, assetIDs []string) (map[string]models.MarketData, error)
}

// GatewayConfig holds gateway configuration.
type GatewayConfig struct {
	BaseURL  string
	CacheTTL time.Duration
	Timeout  time.Duration
}

// Gateway fetches batched market data from a CoinGecko-compatible API.
// It owns a single whole-snapshot cache: every successful fetch overwrites
// it, and a stale copy is served when the upstream rate-limits or the
// network fails. The cache is never exposed directly.
type Gateway struct {
	client *resty.Client
	ttl    time.Duration
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.Mutex
	cached    map[string]models.MarketData
	fetchedAt time.Time
}

// NewGateway creates a new market data gateway.
func NewGateway(cfg GatewayConfig, logger zerolog.Logger) *Gateway {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Gateway{
		client: client,
		ttl:    cfg.CacheTTL,
		logger: logger.With().Str("component", "market").Logger(),
		now:    time.Now,
	}
}

// marketRow mirrors one entry of the /coins/markets response. The change
// fields come back null when the provider has no data, hence the pointers.
type marketRow struct {
	ID           string   `json:"id"`
	CurrentPrice *float64 `json:"current_price"`
	Change24h    *float64 `json:"price_change_percentage_24h"`
	Change1h     *float64 `json:"price_change_percentage_1h_in_currency"`
}

// Fetch returns market data for the given asset IDs in one batched call.
// A cache younger than the TTL short-circuits the upstream entirely, which
// bounds the call rate regardless of how often callers refresh.
func (g *Gateway) Fetch(ctx context.Context, assetIDs []string) (map[string]models.MarketData, error) {
	if data, ok := g.freshCache(); ok {
		g.logger.Debug().Int("assets", len(data)).Msg("Serving fresh cache")
		return data, nil
	}

	start := g.now()
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"vs_currency":             "usd",
			"ids":                     strings.Join(assetIDs, ","),
			"order":                   "market_cap_desc",
			"per_page":                "50",
			"page":                    "1",
			"sparkline":               "false",
			"price_change_percentage": "1h,24h",
		}).
		Get("/coins/markets")

	if err != nil {
		// Network-level failure: any cache, however old, beats a blank screen.
		if data, ok := g.anyCache(); ok {
			g.logger.Warn().Err(err).Msg("Transport failure, serving stale cache")
			return data, nil
		}
		return nil, apperrors.NewTransportError("/coins/markets", err)
	}

	status := resp.StatusCode()
	switch {
	case status == 429:
		if data, ok := g.anyCache(); ok {
			g.logger.Warn().Msg("Rate limited, serving stale cache")
			return data, nil
		}
		return nil, apperrors.ErrRateLimited
	case status < 200 || status >= 300:
		return nil, apperrors.NewUpstreamError(status, truncate(resp.String(), 200))
	}

	var rows []marketRow
	if err := json.Unmarshal(resp.Body(), &rows); err != nil {
		if data, ok := g.anyCache(); ok {
			g.logger.Warn().Err(err).Msg("Malformed response, serving stale cache")
			return data, nil
		}
		return nil, apperrors.Wrap(err, "decoding market data response")
	}

	results := make(map[string]models.MarketData, len(rows))
	for _, row := range rows {
		results[row.ID] = models.MarketData{
			Price:     deref(row.CurrentPrice),
			Change1h:  deref(row.Change1h),
			Change24h: deref(row.Change24h),
		}
	}

	g.storeCache(results)
	g.logger.Debug().
		Int("assets", len(results)).
		Dur("duration", g.now().Sub(start)).
		Msg("Market data fetched")

	return copyData(results), nil
}

// freshCache returns the cached snapshot if it is younger than the TTL.
func (g *Gateway) freshCache() (map[string]models.MarketData, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cached == nil || g.now().Sub(g.fetchedAt) >= g.ttl {
		return nil, false
	}
	return copyData(g.cached), true
}

// anyCache returns the cached snapshot regardless of age.
func (g *Gateway) anyCache() (map[string]models.MarketData, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cached == nil {
		return nil, false
	}
	return copyData(g.cached), true
}

func (g *Gateway) storeCache(data map[string]models.MarketData) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cached = data
	g.fetchedAt = g.now()
}

func copyData(src map[string]models.MarketData) map[string]models.MarketData {
	dst := make(map[string]models.MarketData, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
