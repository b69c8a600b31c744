// Package client implements the Hydro-Québec portal session client. The
// portal API is undocumented: payload shapes follow what the portal actually
// returns today, and anything that fails to decode is reported as schema
// drift rather than guessed at.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appconfig "github.com/smallbiznis/hydrolink/internal/config"
	"github.com/smallbiznis/hydrolink/internal/hydro/domain"
	"github.com/smallbiznis/hydrolink/internal/observability/tracing"
)

const (
	loginPath       = "/portail/api/login"
	peakEventsPath  = "/portail/api/winter-credit/events"
	customersPath   = "/portail/api/customers"
	consumptionPath = "/portail/api/consumption/current"
	balancesPath    = "/portail/api/balances"

	// The portal invalidates sessions early under load; renew ahead of the
	// advertised expiry.
	sessionRenewBuffer = 2 * time.Minute
)

// Naive portal timestamps are local to the utility's service area.
var providerLocation = sync.OnceValue(func() *time.Location {
	loc, err := time.LoadLocation("America/Toronto")
	if err != nil {
		return time.UTC
	}
	return loc
})

// Config carries the portal endpoint and credentials.
type Config struct {
	BaseURL  string
	Username string
	Password string
}

// SessionClient talks to the portal over an authenticated session token,
// re-logging in when the portal expires it.
type SessionClient struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger

	mu       sync.Mutex
	token    string
	tokenExp time.Time
}

// New builds a portal client. Per-request deadlines come from the caller's
// context; the transport timeout is only a safety net.
func New(cfg Config, log *zap.Logger) *SessionClient {
	return &SessionClient{
		cfg:  cfg,
		log:  log.Named("hydro.client"),
		http: tracing.WrapHTTPClient(&http.Client{Timeout: 90 * time.Second}),
	}
}

// NewFromConfig adapts the application config for fx wiring.
func NewFromConfig(cfg appconfig.Config, log *zap.Logger) domain.Client {
	return New(Config{
		BaseURL:  cfg.Hydro.BaseURL,
		Username: cfg.Hydro.Username,
		Password: cfg.Hydro.Password,
	}, log)
}

func (c *SessionClient) FetchPeakEvents(ctx context.Context) ([]domain.PeakEvent, error) {
	var payload struct {
		Events []struct {
			CustomerID string `json:"customer_id"`
			AccountID  string `json:"account_id"`
			ContractID string `json:"contract_id"`
			IsPeak     bool   `json:"ispeak"`
			Start      string `json:"start"`
			End        string `json:"end"`
			State      string `json:"state"`
		} `json:"events"`
	}
	if err := c.getJSON(ctx, peakEventsPath, &payload); err != nil {
		return nil, err
	}

	events := make([]domain.PeakEvent, 0, len(payload.Events))
	for _, raw := range payload.Events {
		start, err := parsePortalTime(raw.Start)
		if err != nil {
			return nil, fmt.Errorf("peak event for contract %s: start %q: %w", raw.ContractID, raw.Start, domain.ErrSchemaDrift)
		}
		end, err := parsePortalTime(raw.End)
		if err != nil {
			return nil, fmt.Errorf("peak event for contract %s: end %q: %w", raw.ContractID, raw.End, domain.ErrSchemaDrift)
		}
		events = append(events, domain.PeakEvent{
			CustomerID: raw.CustomerID,
			AccountID:  raw.AccountID,
			ContractID: raw.ContractID,
			IsPeak:     raw.IsPeak,
			Start:      start,
			End:        end,
			State:      raw.State,
		})
	}
	return events, nil
}

func (c *SessionClient) FetchCustomers(ctx context.Context) ([]domain.Customer, error) {
	var payload struct {
		Customers []struct {
			CustomerID string `json:"customer_id"`
			Accounts   []struct {
				AccountID string          `json:"account_id"`
				Balance   decimal.Decimal `json:"balance"`
				Contracts []struct {
					ContractID string          `json:"contract_id"`
					Balance    decimal.Decimal `json:"balance"`
				} `json:"contracts"`
			} `json:"accounts"`
		} `json:"customers"`
	}
	if err := c.getJSON(ctx, customersPath, &payload); err != nil {
		return nil, err
	}

	customers := make([]domain.Customer, 0, len(payload.Customers))
	for _, rawCustomer := range payload.Customers {
		customer := domain.Customer{
			CustomerID: rawCustomer.CustomerID,
			Accounts:   make([]domain.Account, 0, len(rawCustomer.Accounts)),
		}
		for _, rawAccount := range rawCustomer.Accounts {
			account := domain.Account{
				AccountID: rawAccount.AccountID,
				Balance:   rawAccount.Balance,
				Contracts: make([]domain.Contract, 0, len(rawAccount.Contracts)),
			}
			for _, rawContract := range rawAccount.Contracts {
				account.Contracts = append(account.Contracts, domain.Contract{
					ContractID: rawContract.ContractID,
					Balance:    rawContract.Balance,
				})
			}
			customer.Accounts = append(customer.Accounts, account)
		}
		customers = append(customers, customer)
	}
	return customers, nil
}

func (c *SessionClient) FetchConsumption(ctx context.Context) ([]domain.ConsumptionSummary, error) {
	var payload struct {
		Periods []struct {
			ContractID             string  `json:"contract_id"`
			PeriodStart            string  `json:"period_start"`
			PeriodEnd              string  `json:"period_end"`
			TotalConsumption       float64 `json:"total_consumption"`
			LowerPriceConsumption  float64 `json:"lower_price_consumption"`
			HigherPriceConsumption float64 `json:"higher_price_consumption"`
			TotalDays              int     `json:"total_days"`
			MeanDailyConsumption   float64 `json:"mean_daily_consumption"`
		} `json:"periods"`
	}
	if err := c.getJSON(ctx, consumptionPath, &payload); err != nil {
		return nil, err
	}

	summaries := make([]domain.ConsumptionSummary, 0, len(payload.Periods))
	for _, raw := range payload.Periods {
		start, err := parsePortalDate(raw.PeriodStart)
		if err != nil {
			return nil, fmt.Errorf("consumption for contract %s: period_start %q: %w", raw.ContractID, raw.PeriodStart, domain.ErrSchemaDrift)
		}
		end, err := parsePortalDate(raw.PeriodEnd)
		if err != nil {
			return nil, fmt.Errorf("consumption for contract %s: period_end %q: %w", raw.ContractID, raw.PeriodEnd, domain.ErrSchemaDrift)
		}
		summaries = append(summaries, domain.ConsumptionSummary{
			ContractID:             raw.ContractID,
			PeriodStart:            start,
			PeriodEnd:              end,
			TotalConsumption:       raw.TotalConsumption,
			LowerPriceConsumption:  raw.LowerPriceConsumption,
			HigherPriceConsumption: raw.HigherPriceConsumption,
			TotalDays:              raw.TotalDays,
			MeanDailyConsumption:   raw.MeanDailyConsumption,
		})
	}
	return summaries, nil
}

func (c *SessionClient) FetchBalances(ctx context.Context) ([]domain.BalanceEntry, error) {
	var payload struct {
		Balances []struct {
			ContractID string          `json:"contract_id"`
			AccountID  string          `json:"account_id"`
			CustomerID string          `json:"customer_id"`
			Balance    decimal.Decimal `json:"balance"`
		} `json:"balances"`
	}
	if err := c.getJSON(ctx, balancesPath, &payload); err != nil {
		return nil, err
	}

	entries := make([]domain.BalanceEntry, 0, len(payload.Balances))
	for _, raw := range payload.Balances {
		entries = append(entries, domain.BalanceEntry{
			ContractID: raw.ContractID,
			AccountID:  raw.AccountID,
			CustomerID: raw.CustomerID,
			Balance:    raw.Balance,
		})
	}
	return entries, nil
}

// getJSON performs an authenticated GET, re-logging in once when the portal
// reports the session expired.
func (c *SessionClient) getJSON(ctx context.Context, path string, out any) error {
	token, err := c.ensureSession(ctx)
	if err != nil {
		return err
	}

	status, err := c.doGet(ctx, path, token, out)
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		c.invalidateSession()
		token, err = c.ensureSession(ctx)
		if err != nil {
			return err
		}
		status, err = c.doGet(ctx, path, token, out)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized || status == http.StatusForbidden {
			return fmt.Errorf("GET %s rejected after re-login: %w", path, domain.ErrAuthFailed)
		}
	}
	if status != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, status)
	}
	return nil
}

func (c *SessionClient) doGet(ctx context.Context, path, token string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("GET %s: decode: %v: %w", path, err, domain.ErrSchemaDrift)
	}
	return resp.StatusCode, nil
}

func (c *SessionClient) ensureSession(ctx context.Context) (string, error) {
	if c.cfg.Username == "" || c.cfg.Password == "" {
		return "", domain.ErrNotConfigured
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExp) > sessionRenewBuffer {
		return c.token, nil
	}

	body, err := json.Marshal(map[string]string{
		"username": c.cfg.Username,
		"password": c.cfg.Password,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("login rejected with status %d: %w", resp.StatusCode, domain.ErrAuthFailed)
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}

	var loginResp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return "", fmt.Errorf("login: decode: %v: %w", err, domain.ErrSchemaDrift)
	}
	if loginResp.Token == "" {
		return "", fmt.Errorf("login: empty session token: %w", domain.ErrSchemaDrift)
	}

	c.token = loginResp.Token
	c.tokenExp = time.Now().Add(time.Duration(loginResp.ExpiresIn) * time.Second)
	c.log.Debug("portal session established", zap.Time("expires_at", c.tokenExp))
	return c.token, nil
}

func (c *SessionClient) invalidateSession() {
	c.mu.Lock()
	c.token = ""
	c.tokenExp = time.Time{}
	c.mu.Unlock()
}

// parsePortalTime accepts RFC3339 or the portal's naive local format.
// Empty strings map to nil: the portal omits the window for announced
// states without a schedule.
func parsePortalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return &ts, nil
	}
	ts, err := time.ParseInLocation("2006-01-02T15:04:05", value, providerLocation())
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func parsePortalDate(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", value, providerLocation())
}
