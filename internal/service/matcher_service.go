package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository"
	"github.com/spec-kit/frontline-service/internal/scheduling"
)

// MatcherService ranks providers for a classified case. Candidates are
// filtered by category (CRITICAL and HIGH cases additionally require
// emergency-capable providers), then ordered by rising daily load, then
// proximity, then ID for a stable tiebreak.
type MatcherService struct {
	services repository.ServiceRepository
	ledger   scheduling.Ledger
	logger   *zap.Logger
	now      func() time.Time
}

// NewMatcherService constructs the matcher.
func NewMatcherService(services repository.ServiceRepository, ledger scheduling.Ledger, logger *zap.Logger) *MatcherService {
	return &MatcherService{
		services: services,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock overrides the time source, for tests.
func (m *MatcherService) SetClock(now func() time.Time) {
	m.now = now
}

type rankedService struct {
	svc      domain.Service
	load     float64
	distance int
}

// Match returns compatible services ordered best-first. An empty slice is
// not an error; the caller decides whether that escalates the case.
func (m *MatcherService) Match(ctx context.Context, category domain.ServiceCategory, urgency domain.UrgencyLevel, location string) ([]domain.Service, error) {
	filter := repository.ServiceFilter{Category: &category}
	if urgency == domain.UrgencyCritical || urgency == domain.UrgencyHigh {
		filter.EmergencyOnly = true
	}
	candidates, err := m.services.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	date := m.now().Format("2006-01-02")
	ranked := make([]rankedService, 0, len(candidates))
	for _, svc := range candidates {
		ranked = append(ranked, rankedService{
			svc:      svc,
			load:     m.loadRatio(ctx, svc, date),
			distance: distance(svc.Location, location),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].load != ranked[j].load {
			return ranked[i].load < ranked[j].load
		}
		if ranked[i].distance != ranked[j].distance {
			return ranked[i].distance < ranked[j].distance
		}
		return ranked[i].svc.ID < ranked[j].svc.ID
	})

	out := make([]domain.Service, len(ranked))
	for i, r := range ranked {
		out[i] = r.svc
	}
	return out, nil
}

// loadRatio is today's reservations over the service's daily slot budget.
// A ledger fault ranks the service as fully loaded rather than failing the
// match.
func (m *MatcherService) loadRatio(ctx context.Context, svc domain.Service, date string) float64 {
	usage, err := m.ledger.DayUsage(ctx, svc.ID, date)
	if err != nil {
		m.logger.Warn("day usage lookup failed",
			zap.String("service_id", svc.ID),
			zap.Error(err))
		return 1
	}

	window, err := scheduling.ParseWindow(svc.OperatingHours)
	if err != nil {
		m.logger.Warn("unparseable operating hours",
			zap.String("service_id", svc.ID),
			zap.String("hours", svc.OperatingHours))
		return 1
	}
	budget := svc.CapacityPerHour * (window.CloseHour - window.OpenHour)
	if budget <= 0 {
		return 1
	}
	return float64(usage) / float64(budget)
}

// distance is a coarse proximity score: 0 for an exact location match,
// 1 otherwise. Geocoding is out of scope.
func distance(serviceLocation, citizenLocation string) int {
	if serviceLocation != "" && strings.EqualFold(serviceLocation, citizenLocation) {
		return 0
	}
	return 1
}
