package domain

import (
	"context"
	"errors"
)

// Error classes the refresh loop distinguishes when recording a failed
// category fetch. Implementations wrap these so errors.Is works.
var (
	// ErrAuthFailed means the provider rejected the configured credentials.
	ErrAuthFailed = errors.New("hydro: authentication failed")

	// ErrSchemaDrift means the provider answered with a payload we could
	// not decode into the expected shape.
	ErrSchemaDrift = errors.New("hydro: unexpected upstream response shape")

	// ErrNotConfigured means no credentials were supplied at startup.
	ErrNotConfigured = errors.New("hydro: credentials not configured")
)

// Client is the narrow view of the upstream Hydro-Québec portal the refresh
// loop depends on. Each call performs network I/O and must honor ctx
// cancellation and deadlines; none of them retries on its own.
type Client interface {
	FetchPeakEvents(ctx context.Context) ([]PeakEvent, error)
	FetchCustomers(ctx context.Context) ([]Customer, error)
	FetchConsumption(ctx context.Context) ([]ConsumptionSummary, error)
	FetchBalances(ctx context.Context) ([]BalanceEntry, error)
}
