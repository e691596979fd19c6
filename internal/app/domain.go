package service

import (
	"context"
	"strings"

	"github.com/sves-daq/backend/internal/adapters/repository"
	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/types"
	"github.com/sves-daq/backend/internal/domain/vehicle"
	"github.com/sves-daq/backend/pkg/logger"
)

const (
	domainTestLimit    = 10
	domainEventScan    = 50
	domainEventLimit   = 20
	defaultStreamLimit = 10
)

// DomainView gathers the KPIs, tests and events of one dashboard domain.
// Store failures come back in the view's Error field with empty lists.
func (s *Service) DomainView(ctx context.Context, domain string, f types.DomainFilter) types.DomainView {
	stored := vehicle.StoredDomain(domain)
	view, err := s.domainView(ctx, stored, f)
	if err != nil {
		s.logger.Error(ctx, "domain view failed", logger.String("domain", domain), logger.Error(err))
		return types.DomainView{
			Domain: strings.ToLower(domain),
			KPIs:   []model.Document{},
			Tests:  []model.Document{},
			Events: []model.Document{},
			Error:  err.Error(),
		}
	}
	return view
}

func (s *Service) domainView(ctx context.Context, stored string, f types.DomainFilter) (types.DomainView, error) {
	kq := repository.Query{}.Where("domain", stored)
	if f.TestID != "" {
		kq = kq.Where("testId", f.TestID)
	}
	if f.VehicleID != "" {
		kq = kq.Where("vehicleId", f.VehicleID)
	}
	if f.ProgramID != "" {
		kq = kq.Where("programId", f.ProgramID)
	}
	kpis, err := s.store.List(ctx, model.CollectionKPIs, kq)
	if err != nil {
		return types.DomainView{}, err
	}

	tq := repository.Query{Limit: domainTestLimit}
	if f.TestID != "" {
		tq = repository.Query{}.Where(model.FieldID, f.TestID)
	}
	tests, err := s.store.List(ctx, model.CollectionTests, tq)
	if err != nil {
		return types.DomainView{}, err
	}

	eq := repository.Query{Limit: domainEventScan}
	if f.TestID != "" {
		eq = eq.Where("testId", f.TestID)
	}
	scanned, err := s.store.List(ctx, model.CollectionEvents, eq)
	if err != nil {
		return types.DomainView{}, err
	}
	events := make([]model.Document, 0, domainEventLimit)
	for _, e := range scanned {
		if len(events) == domainEventLimit {
			break
		}
		if vehicle.MatchesEvent(stored, e.String("eventType")) {
			events = append(events, e)
		}
	}

	s.logger.Debug(ctx, "domain view",
		logger.String("domain", stored),
		logger.Int("kpis", len(kpis)),
		logger.Int("tests", len(tests)),
		logger.Int("events", len(events)))

	return types.DomainView{
		Domain: stored,
		KPIs:   nonNil(kpis),
		Tests:  nonNil(tests),
		Events: events,
	}, nil
}

// Streams returns up to limit streams of a test whose sensors belong to the
// dashboard domain. Twice the limit is scanned before filtering. Failures
// yield an empty list.
func (s *Service) Streams(ctx context.Context, domain, testID string, limit int) []model.Document {
	if limit <= 0 {
		limit = defaultStreamLimit
	}
	q := repository.Query{Limit: limit * 2}
	if testID != "" {
		q = q.Where("testId", testID)
	}
	scanned, err := s.store.List(ctx, model.CollectionStreams, q)
	if err != nil {
		s.logger.Error(ctx, "list streams failed", logger.String("domain", domain), logger.Error(err))
		return []model.Document{}
	}

	out := make([]model.Document, 0, limit)
	for _, st := range scanned {
		if len(out) == limit {
			break
		}
		if vehicle.MatchesSensor(domain, st.String("sensorId")) {
			out = append(out, st)
		}
	}
	return out
}
