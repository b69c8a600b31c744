package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smallbiznis/hydrolink/internal/config"
	"github.com/smallbiznis/hydrolink/internal/hydro/domain"
	"github.com/smallbiznis/hydrolink/internal/observability/tracing"
	"github.com/smallbiznis/hydrolink/internal/query"
	"github.com/smallbiznis/hydrolink/internal/refresh"
	"github.com/smallbiznis/hydrolink/internal/snapshot"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func newTestServer(t *testing.T, cfg config.Config, store *snapshot.Store, now time.Time) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	srv := NewServer(Params{
		Config: cfg,
		Engine: engine,
		Query:  query.NewService(store),
		RefreshCfg: refresh.Config{
			Interval:        15 * time.Minute,
			FetchTimeout:    time.Minute,
			StaleMultiplier: 3,
		},
		Clock: fixedClock{now: now},
	})
	srv.RegisterRoutes()
	return engine
}

func doGet(t *testing.T, engine *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	engine.ServeHTTP(w, req)

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %s response: %v: %s", path, err, w.Body.String())
	}
	return w, body
}

func TestHealthReportsConfiguration(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	cfg := config.Config{ServiceName: "hydrolink"}
	engine := newTestServer(t, cfg, snapshot.NewStore(), now)

	w, body := doGet(t, engine, "/")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["status"] != "running" || body["configured"] != false {
		t.Fatalf("unexpected health body: %v", body)
	}

	cfg.Hydro.Username = "alice"
	cfg.Hydro.Password = "s3cret"
	engine = newTestServer(t, cfg, snapshot.NewStore(), now)
	_, body = doGet(t, engine, "/")
	if body["configured"] != true {
		t.Fatalf("configured = %v, want true", body["configured"])
	}
}

func TestColdCacheServesEmptyArrayNotNull(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	engine := newTestServer(t, config.Config{}, snapshot.NewStore(), now)

	for _, path := range []string{
		"/api/peak-events",
		"/api/customers",
		"/api/consumption/current",
		"/api/balance",
	} {
		w, body := doGet(t, engine, path)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", path, w.Code)
		}
		if body["success"] != true {
			t.Fatalf("%s success = %v", path, body["success"])
		}
		data, ok := body["data"].([]any)
		if !ok {
			t.Fatalf("%s data = %v (%T), want empty array", path, body["data"], body["data"])
		}
		if len(data) != 0 {
			t.Fatalf("%s data = %v, want empty", path, data)
		}
		if body["fetched_at"] != nil {
			t.Fatalf("%s fetched_at = %v, want null before first refresh", path, body["fetched_at"])
		}
		if body["stale"] != false {
			t.Fatalf("%s never-fetched snapshot must not be stale", path)
		}
	}
}

func TestDataRouteServesSnapshotWithFreshness(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := snapshot.NewStore()
	fetched := now.Add(-5 * time.Minute)
	store.PeakEvents().Replace([]domain.PeakEvent{
		{ContractID: "k1", State: "peak", IsPeak: true},
	}, fetched)

	engine := newTestServer(t, config.Config{}, store, now)
	_, body := doGet(t, engine, "/api/peak-events")

	data := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("data = %v, want one event", data)
	}
	event := data[0].(map[string]any)
	if event["ispeak"] != true || event["state"] != "peak" {
		t.Fatalf("unexpected event payload: %v", event)
	}
	if body["stale"] != false {
		t.Fatal("5 minute old snapshot must not be stale at 15m interval")
	}
	if body["fetched_at"] == nil {
		t.Fatal("fetched_at missing from populated snapshot")
	}
}

func TestOldSnapshotIsMarkedStaleButStillServed(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := snapshot.NewStore()
	fetched := now.Add(-2 * time.Hour)
	store.Balances().Replace([]domain.BalanceEntry{{ContractID: "k1"}}, fetched)
	store.Balances().RecordFailure(errSentinel("portal timeout"), now.Add(-time.Minute))

	engine := newTestServer(t, config.Config{}, store, now)
	w, body := doGet(t, engine, "/api/balance")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, upstream failure must not surface as 5xx", w.Code)
	}
	if body["stale"] != true {
		t.Fatal("2 hour old snapshot must be stale at 15m interval x3")
	}
	if len(body["data"].([]any)) != 1 {
		t.Fatal("stale data must still be served")
	}
	if body["last_error"] != "portal timeout" {
		t.Fatalf("last_error = %v", body["last_error"])
	}
}

type errSentinel string

func (e errSentinel) Error() string { return string(e) }

func TestStaleWarningCarriesTraceContext(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	orig := zap.L()
	zap.ReplaceGlobals(zap.New(core))
	defer zap.ReplaceGlobals(orig)

	tracing.SetPropagator()

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store := snapshot.NewStore()
	store.Balances().Replace([]domain.BalanceEntry{{ContractID: "k1"}}, now.Add(-2*time.Hour))

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(tracing.GinMiddleware())
	srv := NewServer(Params{
		Config: config.Config{},
		Engine: engine,
		Query:  query.NewService(store),
		RefreshCfg: refresh.Config{
			Interval:        15 * time.Minute,
			FetchTimeout:    time.Minute,
			StaleMultiplier: 3,
		},
		Clock: fixedClock{now: now},
	})
	srv.RegisterRoutes()

	traceID := "0123456789abcdef0123456789abcdef"
	req := httptest.NewRequest(http.MethodGet, "/api/balance", nil)
	req.Header.Set("traceparent", "00-"+traceID+"-0123456789abcdef-01")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	entries := logs.FilterMessage("serving stale snapshot").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 stale warning, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["trace_id"] != traceID {
		t.Fatalf("trace_id = %v, want %s", fields["trace_id"], traceID)
	}
	if fields["span_id"] != "0123456789abcdef" {
		t.Fatalf("span_id = %v", fields["span_id"])
	}
}
