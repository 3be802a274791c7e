package scheduling

import (
	"context"
	"sync"
	"time"
)

// Slot is a unit of bookable capacity: one service, one date, one hour.
type Slot struct {
	ServiceID string
	Date      string // "2006-01-02"
	Hour      int
}

// SlotFor builds the slot containing t for a service.
func SlotFor(serviceID string, t time.Time) Slot {
	return Slot{ServiceID: serviceID, Date: t.Format("2006-01-02"), Hour: t.Hour()}
}

// Key returns the canonical slot identifier.
func (s Slot) Key() string {
	return s.ServiceID + ":" + s.Date + ":" + itoa2(s.Hour)
}

func itoa2(h int) string {
	return string([]byte{'0' + byte(h/10), '0' + byte(h%10)})
}

// Ledger is the single source of truth for slot occupancy. Reserve must be
// atomic per slot: at most capacity reservations succeed, later callers get
// a conflict (false). Release never drops a count below zero, so releasing
// an already-released slot is a no-op.
type Ledger interface {
	Available(ctx context.Context, slot Slot, capacity int) (bool, error)
	Reserve(ctx context.Context, slot Slot, capacity int) (bool, error)
	Release(ctx context.Context, slot Slot) error
	DayUsage(ctx context.Context, serviceID, date string) (int, error)
}

// memoryLedger serializes all slot updates behind one mutex. Used when no
// redis is configured, and by tests.
type memoryLedger struct {
	mu     sync.Mutex
	counts map[string]int
	days   map[string]int
}

// NewMemoryLedger creates an in-process ledger.
func NewMemoryLedger() Ledger {
	return &memoryLedger{
		counts: make(map[string]int),
		days:   make(map[string]int),
	}
}

func (l *memoryLedger) Available(ctx context.Context, slot Slot, capacity int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.counts[slot.Key()] < capacity, nil
}

func (l *memoryLedger) Reserve(ctx context.Context, slot Slot, capacity int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[slot.Key()] >= capacity {
		return false, nil
	}
	l.counts[slot.Key()]++
	l.days[dayKey(slot)]++
	return true, nil
}

func (l *memoryLedger) Release(ctx context.Context, slot Slot) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[slot.Key()] > 0 {
		l.counts[slot.Key()]--
		if l.days[dayKey(slot)] > 0 {
			l.days[dayKey(slot)]--
		}
	}
	return nil
}

func (l *memoryLedger) DayUsage(ctx context.Context, serviceID, date string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.days[serviceID+":"+date], nil
}

func dayKey(slot Slot) string {
	return slot.ServiceID + ":" + slot.Date
}
