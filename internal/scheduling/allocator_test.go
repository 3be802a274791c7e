package scheduling

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/config"
	"github.com/spec-kit/frontline-service/internal/domain"
)

func testSchedulingConfig() config.SchedulingConfig {
	return config.SchedulingConfig{
		HorizonDays:       14,
		CriticalLeadHours: 0,
		HighLeadHours:     4,
		MediumLeadHours:   24,
		LowLeadHours:      72,
	}
}

func testService() *domain.Service {
	return &domain.Service{
		ID:              "svc-1",
		Name:            "City Clinic",
		Category:        domain.CategoryMedical,
		CapacityPerHour: 2,
		OperatingHours:  "9:00-17:00",
	}
}

func newTestAllocator(ledger Ledger, at time.Time) *Allocator {
	alloc := NewAllocator(ledger, testSchedulingConfig(), zap.NewNop())
	alloc.SetClock(func() time.Time { return at })
	return alloc
}

func TestFindSlotEarliestInWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	alloc := newTestAllocator(NewMemoryLedger(), now)

	slot, found, err := alloc.FindSlot(ctx, testService(), domain.UrgencyCritical, now)
	if err != nil {
		t.Fatalf("find slot: %v", err)
	}
	if !found {
		t.Fatal("expected a slot")
	}
	if slot.Date != "2026-03-02" || slot.Hour != 10 {
		t.Errorf("got %s %02d:00, want 2026-03-02 10:00", slot.Date, slot.Hour)
	}
}

func TestFindSlotHonorsLeadTime(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	alloc := newTestAllocator(NewMemoryLedger(), now)

	slot, found, err := alloc.FindSlot(ctx, testService(), domain.UrgencyHigh, now)
	if err != nil {
		t.Fatalf("find slot: %v", err)
	}
	if !found {
		t.Fatal("expected a slot")
	}
	// Four hour lead pushes the search to 13:00 the same day.
	if slot.Date != "2026-03-02" || slot.Hour != 13 {
		t.Errorf("got %s %02d:00, want 2026-03-02 13:00", slot.Date, slot.Hour)
	}
}

func TestFindSlotSkipsClosedHours(t *testing.T) {
	ctx := context.Background()
	// Past closing; the next bookable hour is tomorrow's opening.
	now := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	alloc := newTestAllocator(NewMemoryLedger(), now)

	slot, found, err := alloc.FindSlot(ctx, testService(), domain.UrgencyCritical, now)
	if err != nil {
		t.Fatalf("find slot: %v", err)
	}
	if !found {
		t.Fatal("expected a slot")
	}
	if slot.Date != "2026-03-03" || slot.Hour != 9 {
		t.Errorf("got %s %02d:00, want 2026-03-03 09:00", slot.Date, slot.Hour)
	}
}

func TestFindSlotSkipsFullHours(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ledger := NewMemoryLedger()
	svc := testService()

	// Fill 09:00 to capacity.
	first := Slot{ServiceID: svc.ID, Date: "2026-03-02", Hour: 9}
	for i := 0; i < svc.CapacityPerHour; i++ {
		if ok, err := ledger.Reserve(ctx, first, svc.CapacityPerHour); err != nil || !ok {
			t.Fatalf("seed reserve %d: ok=%v err=%v", i, ok, err)
		}
	}

	alloc := newTestAllocator(ledger, now)
	slot, found, err := alloc.FindSlot(ctx, svc, domain.UrgencyCritical, now)
	if err != nil {
		t.Fatalf("find slot: %v", err)
	}
	if !found {
		t.Fatal("expected a slot")
	}
	if slot.Hour != 10 {
		t.Errorf("got hour %d, want the 10:00 slot after the full 09:00", slot.Hour)
	}
}

func TestFindSlotHorizonExhausted(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ledger := NewMemoryLedger()
	svc := testService()

	// Saturate every bookable hour in the horizon.
	deadline := now.Add(16 * 24 * time.Hour)
	for day := now; day.Before(deadline); day = day.Add(24 * time.Hour) {
		for hour := 9; hour < 17; hour++ {
			slot := Slot{ServiceID: svc.ID, Date: day.Format("2006-01-02"), Hour: hour}
			for i := 0; i < svc.CapacityPerHour; i++ {
				if _, err := ledger.Reserve(ctx, slot, svc.CapacityPerHour); err != nil {
					t.Fatalf("seed reserve: %v", err)
				}
			}
		}
	}

	alloc := newTestAllocator(ledger, now)
	_, found, err := alloc.FindSlot(ctx, svc, domain.UrgencyCritical, now)
	if err != nil {
		t.Fatalf("find slot: %v", err)
	}
	if found {
		t.Fatal("saturated horizon should report no slot, not an error")
	}
}

func TestFindSlotReservesCapacity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	ledger := NewMemoryLedger()
	svc := testService()
	alloc := newTestAllocator(ledger, now)

	seen := make(map[string]int)
	for i := 0; i < 4; i++ {
		slot, found, err := alloc.FindSlot(ctx, svc, domain.UrgencyCritical, now)
		if err != nil || !found {
			t.Fatalf("find slot %d: found=%v err=%v", i, found, err)
		}
		seen[slot.Key()]++
	}
	for key, count := range seen {
		if count > svc.CapacityPerHour {
			t.Errorf("slot %s booked %d times, capacity is %d", key, count, svc.CapacityPerHour)
		}
	}
}

func TestSlotStartTime(t *testing.T) {
	slot := Slot{ServiceID: "svc-1", Date: "2026-03-02", Hour: 14}
	at, err := slot.StartTime(time.UTC)
	if err != nil {
		t.Fatalf("start time: %v", err)
	}
	want := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC)
	if !at.Equal(want) {
		t.Errorf("start time = %v, want %v", at, want)
	}
}
