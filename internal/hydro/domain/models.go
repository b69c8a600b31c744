// Package domain contains the typed shapes served from the snapshot cache
// and the interface the upstream Hydro-Québec client must satisfy.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Peak event states reported by the provider. The set is open: upstream
// introduces new states without notice, so callers must not treat these
// constants as exhaustive.
const (
	PeakStateNormal       = "normal"
	PeakStatePeak         = "peak"
	PeakStateCriticalPeak = "critical_peak"
)

// Customer is one customer record with its accounts nested below it.
type Customer struct {
	CustomerID string    `json:"customer_id"`
	Accounts   []Account `json:"accounts"`
}

// Account carries the account balance and its contracts.
type Account struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
	Contracts []Contract      `json:"contracts"`
}

// Contract is a single service contract under an account.
type Contract struct {
	ContractID string          `json:"contract_id"`
	Balance    decimal.Decimal `json:"balance"`
}

// PeakEvent is a winter credit peak period for one contract. Start and End
// are nil when the provider announces a state without a scheduled window.
type PeakEvent struct {
	CustomerID string     `json:"customer_id"`
	AccountID  string     `json:"account_id"`
	ContractID string     `json:"contract_id"`
	IsPeak     bool       `json:"ispeak"`
	Start      *time.Time `json:"start"`
	End        *time.Time `json:"end"`
	State      string     `json:"state"`
}

// ConsumptionSummary is the provider's own summary of the current billing
// period. All derived figures (including MeanDailyConsumption) are stored as
// the provider reports them; lower plus higher price consumption does not
// necessarily sum to the total because of upstream rounding.
type ConsumptionSummary struct {
	ContractID             string    `json:"contract_id"`
	PeriodStart            time.Time `json:"period_start"`
	PeriodEnd              time.Time `json:"period_end"`
	TotalConsumption       float64   `json:"total_consumption"`
	LowerPriceConsumption  float64   `json:"lower_price_consumption"`
	HigherPriceConsumption float64   `json:"higher_price_consumption"`
	TotalDays              int       `json:"total_days"`
	MeanDailyConsumption   float64   `json:"mean_daily_consumption"`
}

// BalanceEntry is the flattened per-contract balance view.
type BalanceEntry struct {
	ContractID string          `json:"contract_id"`
	AccountID  string          `json:"account_id"`
	CustomerID string          `json:"customer_id"`
	Balance    decimal.Decimal `json:"balance"`
}
