package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "marketdash/internal/errors"
)

const sampleBody = `[
	{"id":"bitcoin","current_price":45000.5,"price_change_percentage_24h":2.5,"price_change_percentage_1h_in_currency":0.3},
	{"id":"ethereum","current_price":3200.25,"price_change_percentage_24h":-1.2,"price_change_percentage_1h_in_currency":null},
	{"id":"solana","current_price":150}
]`

// testUpstream is a fake market data provider whose status can be flipped
// between requests.
type testUpstream struct {
	server *httptest.Server
	calls  int64
	status int64 // 0 means 200 with sampleBody
}

func newTestUpstream() *testUpstream {
	u := &testUpstream{}
	u.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&u.calls, 1)
		status := atomic.LoadInt64(&u.status)
		if status != 0 {
			w.WriteHeader(int(status))
			fmt.Fprint(w, `{"error":"nope"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, sampleBody)
	}))
	return u
}

func (u *testUpstream) setStatus(code int) {
	atomic.StoreInt64(&u.status, int64(code))
}

func (u *testUpstream) callCount() int64 {
	return atomic.LoadInt64(&u.calls)
}

func newTestGateway(baseURL string, ttl time.Duration) *Gateway {
	return NewGateway(GatewayConfig{
		BaseURL:  baseURL,
		CacheTTL: ttl,
		Timeout:  2 * time.Second,
	}, zerolog.Nop())
}

var testIDs = []string{"bitcoin", "ethereum", "solana"}

func TestFetchParsesResponse(t *testing.T) {
	upstream := newTestUpstream()
	defer upstream.server.Close()

	g := newTestGateway(upstream.server.URL, time.Minute)
	data, err := g.Fetch(context.Background(), testIDs)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	btc := data["bitcoin"]
	if btc.Price != 45000.5 || btc.Change24h != 2.5 || btc.Change1h != 0.3 {
		t.Errorf("unexpected bitcoin data: %+v", btc)
	}

	// Null and absent numeric fields default to 0.
	if eth := data["ethereum"]; eth.Change1h != 0 {
		t.Errorf("null change_1h should decode to 0, got %v", eth.Change1h)
	}
	sol := data["solana"]
	if sol.Price != 150 || sol.Change24h != 0 || sol.Change1h != 0 {
		t.Errorf("unexpected solana data: %+v", sol)
	}
}

func TestFetchWithinTTLServesCacheWithoutUpstreamCall(t *testing.T) {
	upstream := newTestUpstream()
	defer upstream.server.Close()

	g := newTestGateway(upstream.server.URL, time.Hour)

	first, err := g.Fetch(context.Background(), testIDs)
	if err != nil {
		t.Fatalf("first Fetch failed: %v", err)
	}
	second, err := g.Fetch(context.Background(), testIDs)
	if err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}

	if got := upstream.callCount(); got != 1 {
		t.Errorf("expected exactly 1 upstream call, got %d", got)
	}
	if len(first) != len(second) {
		t.Fatalf("cached result differs: %d vs %d entries", len(first), len(second))
	}
	for id, want := range first {
		if second[id] != want {
			t.Errorf("cached result for %s differs: %+v vs %+v", id, want, second[id])
		}
	}
}

func TestFetchExpiredTTLCallsUpstreamAgain(t *testing.T) {
	upstream := newTestUpstream()
	defer upstream.server.Close()

	g := newTestGateway(upstream.server.URL, 10*time.Millisecond)

	if _, err := g.Fetch(context.Background(), testIDs); err != nil {
		t.Fatalf("first Fetch failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if _, err := g.Fetch(context.Background(), testIDs); err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}

	if got := upstream.callCount(); got != 2 {
		t.Errorf("expected 2 upstream calls after TTL expiry, got %d", got)
	}
}

func TestFetchRateLimitedWithCacheServesStale(t *testing.T) {
	upstream := newTestUpstream()
	defer upstream.server.Close()

	g := newTestGateway(upstream.server.URL, 10*time.Millisecond)

	if _, err := g.Fetch(context.Background(), testIDs); err != nil {
		t.Fatalf("priming Fetch failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond) // let the cache go stale
	upstream.setStatus(http.StatusTooManyRequests)

	data, err := g.Fetch(context.Background(), testIDs)
	if err != nil {
		t.Fatalf("expected stale cache, got error: %v", err)
	}
	if data["bitcoin"].Price != 45000.5 {
		t.Errorf("stale cache content unexpected: %+v", data["bitcoin"])
	}
}

func TestFetchRateLimitedWithoutCacheFails(t *testing.T) {
	upstream := newTestUpstream()
	defer upstream.server.Close()
	upstream.setStatus(http.StatusTooManyRequests)

	g := newTestGateway(upstream.server.URL, time.Minute)

	_, err := g.Fetch(context.Background(), testIDs)
	if !apperrors.Is(err, apperrors.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestFetchServerErrorFails(t *testing.T) {
	upstream := newTestUpstream()
	defer upstream.server.Close()
	upstream.setStatus(http.StatusInternalServerError)

	g := newTestGateway(upstream.server.URL, time.Minute)

	_, err := g.Fetch(context.Background(), testIDs)
	var upErr *apperrors.UpstreamError
	if !apperrors.As(err, &upErr) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", upErr.StatusCode)
	}
	if !apperrors.Is(err, apperrors.ErrUpstream) {
		t.Error("UpstreamError should match ErrUpstream")
	}
}

func TestFetchTransportFailureServesStaleCache(t *testing.T) {
	upstream := newTestUpstream()

	g := newTestGateway(upstream.server.URL, 10*time.Millisecond)

	if _, err := g.Fetch(context.Background(), testIDs); err != nil {
		t.Fatalf("priming Fetch failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	upstream.server.Close()

	data, err := g.Fetch(context.Background(), testIDs)
	if err != nil {
		t.Fatalf("expected stale cache after transport failure, got %v", err)
	}
	if data["ethereum"].Price != 3200.25 {
		t.Errorf("stale cache content unexpected: %+v", data["ethereum"])
	}
}

func TestFetchTransportFailureWithoutCachePropagates(t *testing.T) {
	upstream := newTestUpstream()
	upstream.server.Close()

	g := newTestGateway(upstream.server.URL, time.Minute)

	_, err := g.Fetch(context.Background(), testIDs)
	if err == nil {
		t.Fatal("expected transport error, got nil")
	}
	var tErr *apperrors.TransportError
	if !apperrors.As(err, &tErr) {
		t.Errorf("expected TransportError, got %T: %v", err, err)
	}
}

func TestFetchResultIsACopy(t *testing.T) {
	upstream := newTestUpstream()
	defer upstream.server.Close()

	g := newTestGateway(upstream.server.URL, time.Hour)

	first, err := g.Fetch(context.Background(), testIDs)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	delete(first, "bitcoin")

	second, _ := g.Fetch(context.Background(), testIDs)
	if _, ok := second["bitcoin"]; !ok {
		t.Error("mutating a returned map leaked into the cache")
	}
}
