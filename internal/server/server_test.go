package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/quiverx/internal/cache/memory"
	"github.com/alanyoungcy/quiverx/internal/dashboard"
	"github.com/alanyoungcy/quiverx/internal/server/handler"
	"github.com/alanyoungcy/quiverx/internal/server/ws"
	"github.com/alanyoungcy/quiverx/internal/source"
)

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

type recordedRequest struct {
	route  string
	method string
	code   int
}

type requestRecorder struct {
	mu   sync.Mutex
	seen []recordedRequest
}

func (r *requestRecorder) ObserveRequest(route, method string, code int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recordedRequest{route: route, method: method, code: code})
}

func testHandlers() Handlers {
	logger := discard()
	svc := dashboard.NewService(source.NewSample(), logger)
	return Handlers{
		Health:    handler.NewHealthHandler(nil, logger),
		Status:    &handler.StatusHandler{Source: svc.SourceName(), StartedAt: time.Now()},
		Dashboard: handler.NewDashboardHandler(svc, logger),
		Export:    handler.NewExportHandler(nil, logger),
		Refreshes: handler.NewRefreshHistoryHandler(memory.NewBus(), logger),
		Metrics:   http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, "# metrics\n") }),
	}
}

func do(h http.Handler, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	h := NewHandler(Config{}, testHandlers(), Deps{}, discard())

	for _, path := range []string{
		"/api/health", "/api/status", "/api/overview", "/api/arbitrage",
		"/api/arbitrage/1", "/api/liquidity", "/api/analytics",
		"/api/architecture", "/api/snapshot", "/api/refreshes", "/metrics",
	} {
		rec := do(h, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"), path)
	}

	assert.Equal(t, http.StatusNotImplemented, do(h, http.MethodPost, "/api/snapshots", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodDelete, "/api/overview", nil).Code)
}

func TestAuth(t *testing.T) {
	h := NewHandler(Config{APIKey: "s3cret"}, testHandlers(), Deps{}, discard())

	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/overview", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/overview", map[string]string{"X-API-Key": "wrong"}).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/overview", map[string]string{"Authorization": "Bearer s3cret"}).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/overview", map[string]string{"X-API-Key": "s3cret"}).Code)

	// Health and metrics stay open.
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/health", nil).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/metrics", nil).Code)
}

func TestRateLimit(t *testing.T) {
	// httptest requests arrive from 192.0.2.1, configured here as the proxy.
	cfg := Config{RateLimit: 2, RateLimitWindow: time.Hour, TrustedProxies: []netip.Prefix{netip.MustParsePrefix("192.0.2.1/32")}}
	h := NewHandler(cfg, testHandlers(), Deps{Limiter: memory.NewRateLimiter()}, discard())

	hdr := map[string]string{"X-Forwarded-For": "203.0.113.7"}
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/overview", hdr).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/overview", hdr).Code)
	rec := do(h, http.MethodGet, "/api/overview", hdr)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	// A different client has its own budget.
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/overview", map[string]string{"X-Forwarded-For": "198.51.100.1"}).Code)
}

func TestRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	cfg := Config{RateLimit: 2, RateLimitWindow: time.Hour}
	h := NewHandler(cfg, testHandlers(), Deps{Limiter: memory.NewRateLimiter()}, discard())

	codes := make([]int, 0, 3)
	for _, ip := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		codes = append(codes, do(h, http.MethodGet, "/api/overview", map[string]string{"X-Forwarded-For": ip}).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestCORSPreflight(t *testing.T) {
	h := NewHandler(Config{CORSOrigins: []string{"https://dash.example.com"}, APIKey: "k"}, testHandlers(), Deps{}, discard())

	rec := do(h, http.MethodOptions, "/api/arbitrage", map[string]string{
		"Origin":                        "https://dash.example.com",
		"Access-Control-Request-Method": http.MethodGet,
	})
	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "https://dash.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(h, http.MethodOptions, "/api/arbitrage", map[string]string{
		"Origin":                        "https://evil.example.com",
		"Access-Control-Request-Method": http.MethodGet,
	})
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	obs := &requestRecorder{}
	h := NewHandler(Config{}, testHandlers(), Deps{Observer: obs}, discard())

	do(h, http.MethodGet, "/api/arbitrage/3", nil)
	do(h, http.MethodGet, "/api/arbitrage/missing", nil)
	do(h, http.MethodGet, "/nowhere", nil)

	require.Len(t, obs.seen, 3)
	assert.Equal(t, recordedRequest{route: "GET /api/arbitrage/{id}", method: http.MethodGet, code: http.StatusOK}, obs.seen[0])
	assert.Equal(t, recordedRequest{route: "GET /api/arbitrage/{id}", method: http.MethodGet, code: http.StatusNotFound}, obs.seen[1])
	assert.Equal(t, "unmatched", obs.seen[2].route)
}

type countingObserver struct {
	mu        sync.Mutex
	connected int
}

func (c *countingObserver) ClientConnected() {
	c.mu.Lock()
	c.connected++
	c.mu.Unlock()
}

func (c *countingObserver) ClientDisconnected() {
	c.mu.Lock()
	c.connected--
	c.mu.Unlock()
}

func TestWebSocketBridgesBus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := memory.NewBus()
	obs := &countingObserver{}
	hub := ws.NewHub(bus, discard(), ws.Config{Source: "static", Observer: obs})
	go func() { _ = hub.Run(ctx) }()

	srv := httptest.NewServer(NewHandler(Config{}, testHandlers(), Deps{Hub: hub}, discard()))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var hello struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "dashboard_status", hello.Type)
	assert.Equal(t, "static", hello.Payload["source"])

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// Bus subscriptions start asynchronously; publish until one arrives.
	got := make(chan []byte, 1)
	go func() {
		_, msg, err := conn.ReadMessage()
		if err == nil {
			got <- msg
		}
	}()
	payload, _ := json.Marshal(map[string]string{"type": "dashboard_refresh"})
	require.Eventually(t, func() bool {
		_ = bus.Publish(ctx, dashboard.ChannelDashboard, payload)
		select {
		case msg := <-got:
			assert.JSONEq(t, string(payload), string(msg))
			return true
		case <-time.After(20 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)

	obs.mu.Lock()
	assert.Equal(t, 1, obs.connected)
	obs.mu.Unlock()
}

func TestWebSocketReceivesRefreshStatus(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := memory.NewBus()
	svc := dashboard.NewService(source.NewSample(), discard())
	refresher := dashboard.NewRefresher(svc, bus, time.Minute, discard())
	hub := ws.NewHub(bus, discard(), ws.Config{Source: "static"})
	go func() { _ = hub.Run(ctx) }()

	srv := httptest.NewServer(NewHandler(Config{}, testHandlers(), Deps{Hub: hub}, discard()))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	types := make(chan string, 64)
	go func() {
		for {
			var env struct {
				Type string `json:"type"`
			}
			if err := conn.ReadJSON(&env); err != nil {
				return
			}
			types <- env.Type
		}
	}()

	// Bus subscriptions start asynchronously; refresh until status arrives.
	require.Eventually(t, func() bool {
		_, _ = refresher.Refresh(ctx)
		deadline := time.After(20 * time.Millisecond)
		for {
			select {
			case typ := <-types:
				if typ == "refresh_status" {
					return true
				}
			case <-deadline:
				return false
			}
		}
	}, 3*time.Second, 10*time.Millisecond)
}
