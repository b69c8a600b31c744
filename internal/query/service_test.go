package query

import (
	"testing"
	"time"

	"github.com/smallbiznis/hydrolink/internal/hydro/domain"
	"github.com/smallbiznis/hydrolink/internal/snapshot"
)

func TestReadsReflectLatestPublish(t *testing.T) {
	store := snapshot.NewStore()
	svc := NewService(store)

	if snap := svc.PeakEvents(); snap.FetchedAt != nil || len(snap.Data) != 0 {
		t.Fatalf("cold store must read empty: %+v", snap)
	}

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store.PeakEvents().Replace([]domain.PeakEvent{{ContractID: "k1", State: "peak"}}, now)

	snap := svc.PeakEvents()
	if len(snap.Data) != 1 || snap.Data[0].ContractID != "k1" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.FetchedAt == nil || !snap.FetchedAt.Equal(now) {
		t.Fatalf("FetchedAt = %v, want %v", snap.FetchedAt, now)
	}
}

func TestReadsReturnIndependentCopies(t *testing.T) {
	store := snapshot.NewStore()
	svc := NewService(store)

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	store.Balances().Replace([]domain.BalanceEntry{{ContractID: "k1"}}, now)

	first := svc.Balances()
	first.Data[0].ContractID = "mutated"

	second := svc.Balances()
	if second.Data[0].ContractID != "k1" {
		t.Fatal("caller mutation leaked into the store")
	}
}
