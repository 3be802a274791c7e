package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository/memory"
)

func TestRecordCountsCaseOnce(t *testing.T) {
	ctx := context.Background()
	metrics := memory.NewMetricRepo()
	cases := memory.NewCaseRepo()
	svc := NewMetricsService(metrics, cases, memory.NewServiceRepo(), zap.NewNop())

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	closedAt := now
	c := &domain.Case{
		ID:        "case-1",
		CreatedAt: now.Add(-90 * time.Second),
		ClosedAt:  &closedAt,
	}

	// Recording the same terminal state twice must count once.
	for i := 0; i < 2; i++ {
		if err := svc.Record(ctx, c, domain.CaseStatusComplete); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	rows, err := metrics.ListRange(ctx, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d metric rows, want 1", len(rows))
	}
	row := rows[0]
	if row.TotalProcessed != 1 || row.CompletedCount != 1 {
		t.Errorf("row = %+v, want one processed one completed", row)
	}
	if row.PipelineSeconds != 90 {
		t.Errorf("pipeline seconds = %.0f, want 90", row.PipelineSeconds)
	}
}

func TestRecordPerServiceRow(t *testing.T) {
	ctx := context.Background()
	metrics := memory.NewMetricRepo()
	svc := NewMetricsService(metrics, memory.NewCaseRepo(), memory.NewServiceRepo(), zap.NewNop())

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	serviceID := "svc-1"
	appointmentID := "appt-1"
	c := &domain.Case{
		ID:            "case-1",
		ServiceID:     &serviceID,
		AppointmentID: &appointmentID,
		CreatedAt:     now.Add(-time.Minute),
	}
	if err := svc.Record(ctx, c, domain.CaseStatusComplete); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, err := metrics.ListRange(ctx, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d metric rows, want global plus per-service", len(rows))
	}
	for _, row := range rows {
		if row.ReservationCount != 1 {
			t.Errorf("reservation count = %d, want 1", row.ReservationCount)
		}
	}
}

func TestRecordDistinctTerminalStates(t *testing.T) {
	ctx := context.Background()
	metrics := memory.NewMetricRepo()
	svc := NewMetricsService(metrics, memory.NewCaseRepo(), memory.NewServiceRepo(), zap.NewNop())

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	finals := []domain.CaseStatus{
		domain.CaseStatusComplete,
		domain.CaseStatusEscalated,
		domain.CaseStatusFailed,
		domain.CaseStatusCancelled,
	}
	for i, final := range finals {
		c := &domain.Case{ID: string(rune('a' + i)), CreatedAt: now.Add(-time.Minute)}
		if err := svc.Record(ctx, c, final); err != nil {
			t.Fatalf("record %s: %v", final, err)
		}
	}

	rows, err := metrics.ListRange(ctx, now.AddDate(0, 0, -1), now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d metric rows, want 1", len(rows))
	}
	row := rows[0]
	if row.TotalProcessed != 4 {
		t.Errorf("total processed = %d, want 4", row.TotalProcessed)
	}
	if row.CompletedCount != 1 || row.EscalatedCount != 1 || row.FailedCount != 1 || row.CancelledCount != 1 {
		t.Errorf("per-status counts = %+v, want one of each", row)
	}
}

func TestDashboardAggregatesGlobalRows(t *testing.T) {
	ctx := context.Background()
	metrics := memory.NewMetricRepo()
	cases := memory.NewCaseRepo()
	svc := NewMetricsService(metrics, cases, memory.NewServiceRepo(), zap.NewNop())

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	serviceID := "svc-1"
	first := &domain.Case{ID: "case-1", ServiceID: &serviceID, CreatedAt: now.Add(-time.Minute)}
	second := &domain.Case{ID: "case-2", CreatedAt: now.Add(-time.Minute)}
	if err := svc.Record(ctx, first, domain.CaseStatusComplete); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := svc.Record(ctx, second, domain.CaseStatusEscalated); err != nil {
		t.Fatalf("record second: %v", err)
	}

	stats, err := svc.Dashboard(ctx, now.AddDate(0, 0, -7), now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	// The per-service row must not inflate the global totals.
	if stats.TotalProcessed != 2 {
		t.Errorf("total processed = %d, want 2", stats.TotalProcessed)
	}
	if stats.CompletedCount != 1 || stats.EscalatedCount != 1 {
		t.Errorf("stats = %+v, want one completed one escalated", stats)
	}
	if stats.AvgPipelineSeconds != 60 {
		t.Errorf("avg pipeline seconds = %.0f, want 60", stats.AvgPipelineSeconds)
	}
}

func TestDashboardServiceUtilization(t *testing.T) {
	ctx := context.Background()
	metrics := memory.NewMetricRepo()
	services := memory.NewServiceRepo()
	svc := NewMetricsService(metrics, memory.NewCaseRepo(), services, zap.NewNop())

	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })

	// Budget 40 slots per day: 5 per hour across an 8-hour window.
	busy := &domain.Service{
		Name:            "City Clinic",
		Category:        domain.CategoryMedical,
		CapacityPerHour: 5,
		OperatingHours:  "9:00-17:00",
	}
	idle := &domain.Service{
		Name:            "Records Office",
		Category:        domain.CategoryAdministrative,
		CapacityPerHour: 2,
		OperatingHours:  "9:00-17:00",
	}
	for _, s := range []*domain.Service{busy, idle} {
		if err := services.Create(ctx, s); err != nil {
			t.Fatalf("seed service: %v", err)
		}
	}

	appointmentID := "appt-1"
	c := &domain.Case{
		ID:            "case-1",
		ServiceID:     &busy.ID,
		AppointmentID: &appointmentID,
		CreatedAt:     now.Add(-time.Minute),
	}
	if err := svc.Record(ctx, c, domain.CaseStatusComplete); err != nil {
		t.Fatalf("record: %v", err)
	}

	stats, err := svc.Dashboard(ctx, now, now)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if len(stats.ServiceUtilization) != 2 {
		t.Fatalf("got %d utilization rows, want one per service", len(stats.ServiceUtilization))
	}

	byID := make(map[string]ServiceUtilization, len(stats.ServiceUtilization))
	for _, u := range stats.ServiceUtilization {
		byID[u.ServiceID] = u
	}
	got := byID[busy.ID]
	if got.ReservationCount != 1 {
		t.Errorf("busy reservation count = %d, want 1", got.ReservationCount)
	}
	if got.UtilizationPct != 2.5 {
		t.Errorf("busy utilization = %.2f, want 2.5 (1 of 40 slots)", got.UtilizationPct)
	}
	if u := byID[idle.ID]; u.ReservationCount != 0 || u.UtilizationPct != 0 {
		t.Errorf("idle service = %+v, want zero load", u)
	}
}

func TestDashboardRejectsInvertedRange(t *testing.T) {
	svc := NewMetricsService(memory.NewMetricRepo(), memory.NewCaseRepo(), memory.NewServiceRepo(), zap.NewNop())
	now := time.Now()
	if _, err := svc.Dashboard(context.Background(), now, now.Add(-time.Hour)); err == nil {
		t.Fatal("inverted range must be rejected")
	}
}
