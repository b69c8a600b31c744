// Package refresh runs the background loop that keeps the snapshot store
// populated from the upstream portal.
package refresh

import (
	"context"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/smallbiznis/hydrolink/internal/clock"
	"github.com/smallbiznis/hydrolink/internal/hydro/domain"
	"github.com/smallbiznis/hydrolink/internal/observability/metrics"
	"github.com/smallbiznis/hydrolink/internal/snapshot"
)

// Category labels used in logs and metrics.
const (
	CategoryPeakEvents  = "peak_events"
	CategoryCustomers   = "customers"
	CategoryConsumption = "consumption"
	CategoryBalances    = "balances"
)

// Params collects the worker dependencies.
type Params struct {
	fx.In

	Client  domain.Client
	Store   *snapshot.Store
	Log     *zap.Logger
	Clock   clock.Clock
	Config  Config
	Metrics *metrics.RefreshMetrics `optional:"true"`
}

// Worker is the single writer of the snapshot store.
type Worker struct {
	client  domain.Client
	store   *snapshot.Store
	log     *zap.Logger
	clock   clock.Clock
	cfg     Config
	metrics *metrics.RefreshMetrics
}

func NewWorker(p Params) *Worker {
	return &Worker{
		client:  p.Client,
		store:   p.Store,
		log:     p.Log.Named("refresh"),
		clock:   p.Clock,
		cfg:     p.Config.withDefaults(),
		metrics: p.Metrics,
	}
}

// RunForever refreshes immediately, then on every tick until the context is
// cancelled. Serving starts without waiting for the first cycle to finish.
func (w *Worker) RunForever(ctx context.Context) {
	w.log.Info("refresh loop starting",
		zap.Duration("interval", w.cfg.Interval),
		zap.Duration("fetch_timeout", w.cfg.FetchTimeout),
	)

	w.RunOnce(ctx)

	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("refresh loop stopping")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce refreshes every category. Categories are independent: a failing
// fetch records its error on that category's cell and the cycle moves on.
func (w *Worker) RunOnce(ctx context.Context) {
	refreshCategory(ctx, w, CategoryPeakEvents, w.client.FetchPeakEvents, w.store.PeakEvents())
	refreshCategory(ctx, w, CategoryCustomers, w.client.FetchCustomers, w.store.Customers())
	refreshCategory(ctx, w, CategoryConsumption, w.client.FetchConsumption, w.store.Consumption())
	refreshCategory(ctx, w, CategoryBalances, w.client.FetchBalances, w.store.Balances())
	w.observeAges()
}

func refreshCategory[T any](ctx context.Context, w *Worker, category string, fetch func(context.Context) ([]T, error), cell *snapshot.Cell[T]) {
	if ctx.Err() != nil {
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, w.cfg.FetchTimeout)
	start := time.Now()
	data, err := fetch(fetchCtx)
	cancel()
	elapsed := time.Since(start)

	now := w.clock.Now()
	if err != nil {
		cell.RecordFailure(err, now)
		w.metrics.ObserveRefresh(category, "failure", elapsed)
		w.log.Warn("refresh failed",
			zap.String("category", category),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
		return
	}

	// A cancelled cycle must not publish: readers keep the previous
	// snapshot instead of a mix of old and new categories.
	if ctx.Err() != nil {
		return
	}

	cell.Replace(data, now)
	w.metrics.ObserveRefresh(category, "success", elapsed)
	w.metrics.SetSnapshotItems(category, len(data))
	w.log.Info("snapshot refreshed",
		zap.String("category", category),
		zap.Int("items", len(data)),
		zap.Duration("elapsed", elapsed),
	)
}

func (w *Worker) observeAges() {
	if w.metrics == nil {
		return
	}
	now := w.clock.Now()
	observeAge(w, CategoryPeakEvents, w.store.PeakEvents(), now)
	observeAge(w, CategoryCustomers, w.store.Customers(), now)
	observeAge(w, CategoryConsumption, w.store.Consumption(), now)
	observeAge(w, CategoryBalances, w.store.Balances(), now)
}

func observeAge[T any](w *Worker, category string, cell *snapshot.Cell[T], now time.Time) {
	snap := cell.Get()
	if snap.FetchedAt == nil {
		return
	}
	w.metrics.SetSnapshotAge(category, now.Sub(*snap.FetchedAt))
}
