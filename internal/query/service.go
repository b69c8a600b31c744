// Package query is the read side of the snapshot store. It never reaches
// upstream: every call returns whatever the refresh loop last published, in
// constant time.
package query

import (
	"github.com/smallbiznis/hydrolink/internal/hydro/domain"
	"github.com/smallbiznis/hydrolink/internal/snapshot"
)

// Service exposes snapshot reads to the HTTP layer.
type Service struct {
	store *snapshot.Store
}

func NewService(store *snapshot.Store) *Service {
	return &Service{store: store}
}

func (s *Service) PeakEvents() snapshot.Snapshot[domain.PeakEvent] {
	return s.store.PeakEvents().Get()
}

func (s *Service) Customers() snapshot.Snapshot[domain.Customer] {
	return s.store.Customers().Get()
}

func (s *Service) ConsumptionCurrent() snapshot.Snapshot[domain.ConsumptionSummary] {
	return s.store.Consumption().Get()
}

func (s *Service) Balances() snapshot.Snapshot[domain.BalanceEntry] {
	return s.store.Balances().Get()
}
