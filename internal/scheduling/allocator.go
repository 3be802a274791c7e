package scheduling

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/config"
	"github.com/spec-kit/frontline-service/internal/domain"
)

// Allocator finds and reserves the earliest conflict-free hour slot for a
// service, honoring its operating window and hourly capacity.
type Allocator struct {
	ledger Ledger
	cfg    config.SchedulingConfig
	logger *zap.Logger
	now    func() time.Time
}

// NewAllocator constructs an allocator.
func NewAllocator(ledger Ledger, cfg config.SchedulingConfig, logger *zap.Logger) *Allocator {
	return &Allocator{
		ledger: ledger,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source.
func (a *Allocator) SetClock(now func() time.Time) {
	a.now = now
}

// FindSlot scans forward hour by hour from the urgency-adjusted earliest
// time until a reservation succeeds or the horizon is exhausted. A lost
// reservation race moves the scan to the next hour. The second return is
// false when no slot exists within the horizon; that is a capacity
// exhaustion outcome, not an error.
func (a *Allocator) FindSlot(ctx context.Context, svc *domain.Service, urgency domain.UrgencyLevel, earliest time.Time) (Slot, bool, error) {
	window, err := ParseWindow(svc.OperatingHours)
	if err != nil {
		return Slot{}, false, err
	}
	if svc.CapacityPerHour <= 0 {
		return Slot{}, false, nil
	}

	start := a.now().Add(a.cfg.LeadTime(string(urgency)))
	if earliest.After(start) {
		start = earliest
	}
	start = start.Truncate(time.Hour)
	deadline := start.Add(a.cfg.Horizon())

	for t := window.NextOpen(start); !t.After(deadline); t = t.Add(time.Hour) {
		if !window.Contains(t.Hour()) {
			t = window.NextOpen(t).Add(-time.Hour)
			continue
		}
		slot := SlotFor(svc.ID, t)
		reserved, err := a.ledger.Reserve(ctx, slot, svc.CapacityPerHour)
		if err != nil {
			return Slot{}, false, err
		}
		if reserved {
			return slot, true, nil
		}
		// Lost the race or slot full; keep scanning.
	}

	a.logger.Info("no slot within horizon",
		zap.String("service_id", svc.ID),
		zap.String("urgency", string(urgency)))
	return Slot{}, false, nil
}

// StartTime returns the wall-clock start of a slot.
func (s Slot) StartTime(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", s.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(s.Hour) * time.Hour), nil
}
