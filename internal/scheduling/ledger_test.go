package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSlotKey(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 15, 0, 0, time.UTC)
	slot := SlotFor("svc-1", at)
	if slot.Key() != "svc-1:2026-03-02:09" {
		t.Errorf("unexpected slot key %q", slot.Key())
	}
}

func TestMemoryLedgerReserveCapacity(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	slot := Slot{ServiceID: "svc-1", Date: "2026-03-02", Hour: 9}

	for i := 0; i < 3; i++ {
		ok, err := ledger.Reserve(ctx, slot, 3)
		if err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("reserve %d should succeed under capacity", i)
		}
	}

	ok, err := ledger.Reserve(ctx, slot, 3)
	if err != nil {
		t.Fatalf("reserve over capacity: %v", err)
	}
	if ok {
		t.Fatal("reserve past capacity should be refused")
	}

	available, err := ledger.Available(ctx, slot, 3)
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if available {
		t.Fatal("full slot should not report available")
	}
}

func TestMemoryLedgerReleaseFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	slot := Slot{ServiceID: "svc-1", Date: "2026-03-02", Hour: 9}

	if _, err := ledger.Reserve(ctx, slot, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := ledger.Release(ctx, slot); err != nil {
		t.Fatalf("release: %v", err)
	}
	// Double release must not open phantom capacity.
	if err := ledger.Release(ctx, slot); err != nil {
		t.Fatalf("second release: %v", err)
	}

	ok, err := ledger.Reserve(ctx, slot, 1)
	if err != nil {
		t.Fatalf("re-reserve: %v", err)
	}
	if !ok {
		t.Fatal("released slot should be reservable again")
	}
	ok, err = ledger.Reserve(ctx, slot, 1)
	if err != nil {
		t.Fatalf("reserve at capacity: %v", err)
	}
	if ok {
		t.Fatal("double release must not raise effective capacity")
	}
}

func TestMemoryLedgerDayUsage(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	for hour := 9; hour < 12; hour++ {
		slot := Slot{ServiceID: "svc-1", Date: "2026-03-02", Hour: hour}
		if _, err := ledger.Reserve(ctx, slot, 2); err != nil {
			t.Fatalf("reserve hour %d: %v", hour, err)
		}
	}
	if _, err := ledger.Reserve(ctx, Slot{ServiceID: "svc-1", Date: "2026-03-03", Hour: 9}, 2); err != nil {
		t.Fatalf("reserve next day: %v", err)
	}

	usage, err := ledger.DayUsage(ctx, "svc-1", "2026-03-02")
	if err != nil {
		t.Fatalf("day usage: %v", err)
	}
	if usage != 3 {
		t.Errorf("day usage = %d, want 3", usage)
	}

	if err := ledger.Release(ctx, Slot{ServiceID: "svc-1", Date: "2026-03-02", Hour: 9}); err != nil {
		t.Fatalf("release: %v", err)
	}
	usage, err = ledger.DayUsage(ctx, "svc-1", "2026-03-02")
	if err != nil {
		t.Fatalf("day usage after release: %v", err)
	}
	if usage != 2 {
		t.Errorf("day usage after release = %d, want 2", usage)
	}
}

func TestMemoryLedgerConcurrentReserve(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	slot := Slot{ServiceID: "svc-1", Date: "2026-03-02", Hour: 9}
	const capacity = 5
	const attempts = 50

	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ledger.Reserve(ctx, slot, capacity)
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	granted := 0
	for ok := range results {
		if ok {
			granted++
		}
	}
	if granted != capacity {
		t.Errorf("granted %d reservations, want exactly %d", granted, capacity)
	}
}
