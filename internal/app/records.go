package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sves-daq/backend/internal/adapters/repository"
	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/types"
	"github.com/sves-daq/backend/internal/domain/vehicle"
)

// Compliance statuses.
const (
	StatusCompliant    = "compliant"
	StatusNonCompliant = "non-compliant"
)

// ListTestData returns test records, newest first.
func (s *Service) ListTestData(ctx context.Context, domain string, limit int) ([]model.Document, error) {
	q := repository.Query{OrderBy: "timestamp", Descending: true, Limit: limit}
	if domain != "" {
		q = q.Where("domain", domain)
	}
	docs, err := s.store.List(ctx, model.CollectionTestData, q)
	if err != nil {
		return nil, fmt.Errorf("list test data: %w", err)
	}
	return nonNil(docs), nil
}

// CreateTestData stores a test record stamped with the current time.
func (s *Service) CreateTestData(ctx context.Context, doc model.Document) (string, error) {
	body := doc.Clone()
	delete(body, model.FieldID)
	now := s.timestamp()
	body["timestamp"] = now
	body["createdAt"] = now

	id, err := s.store.Add(ctx, model.CollectionTestData, body)
	if err != nil {
		return "", fmt.Errorf("create test data: %w", err)
	}
	return id, nil
}

// ListCompliance returns compliance records, most recently updated first.
func (s *Service) ListCompliance(ctx context.Context) ([]model.Document, error) {
	docs, err := s.store.List(ctx, model.CollectionCompliance,
		repository.Query{OrderBy: "lastUpdated", Descending: true})
	if err != nil {
		return nil, fmt.Errorf("list compliance: %w", err)
	}
	return nonNil(docs), nil
}

// ComplianceStatus is compliant when score reaches threshold. A record
// missing either number is non-compliant.
func ComplianceStatus(doc model.Document) string {
	score, okScore := doc.Number("score")
	threshold, okThreshold := doc.Number("threshold")
	if okScore && okThreshold && score >= threshold {
		return StatusCompliant
	}
	return StatusNonCompliant
}

// CreateCompliance stores a compliance record with its derived status.
func (s *Service) CreateCompliance(ctx context.Context, doc model.Document) (id, status string, err error) {
	body := doc.Clone()
	delete(body, model.FieldID)
	status = ComplianceStatus(body)
	now := s.timestamp()
	body["status"] = status
	body["lastUpdated"] = now
	body["createdAt"] = now

	id, err = s.store.Add(ctx, model.CollectionCompliance, body)
	if err != nil {
		return "", "", fmt.Errorf("create compliance record: %w", err)
	}
	return id, status, nil
}

// ListKPIs returns KPI documents matching f.
func (s *Service) ListKPIs(ctx context.Context, f types.KPIFilter) ([]model.Document, error) {
	var q repository.Query
	for _, w := range []struct{ field, value string }{
		{"domain", f.Domain},
		{"testId", f.TestID},
		{"programId", f.ProgramID},
		{"vehicleId", f.VehicleID},
	} {
		if w.value != "" {
			q = q.Where(w.field, w.value)
		}
	}

	docs, err := s.store.List(ctx, model.CollectionKPIs, q)
	if err != nil {
		return nil, fmt.Errorf("list kpis: %w", err)
	}
	if f.Level == "" {
		return nonNil(docs), nil
	}
	out := make([]model.Document, 0, len(docs))
	for _, d := range docs {
		if vehicle.InLevel(f.Level, d.String("domain")) {
			out = append(out, d)
		}
	}
	return out, nil
}

// ExecutiveKPIs reports the headline indices of the last executive KPI
// document. Missing indices read as zero.
func (s *Service) ExecutiveKPIs(ctx context.Context, programID string) (map[string]float64, error) {
	q := repository.Query{}.Where("domain", vehicle.LevelExecutive)
	if programID != "" {
		q = q.Where("programId", programID)
	}
	docs, err := s.store.List(ctx, model.CollectionKPIs, q)
	if err != nil {
		return nil, fmt.Errorf("executive kpis: %w", err)
	}

	var latest model.Document
	if len(docs) > 0 {
		latest = docs[len(docs)-1]
	}
	out := make(map[string]float64, len(vehicle.ExecutiveFields))
	for _, field := range vehicle.ExecutiveFields {
		out[field] = latest.NumberOr(field, 0)
	}
	return out, nil
}

// Analytics summarises test data by domain. "all" or empty covers every
// domain. Domains appear in the order they are first seen.
func (s *Service) Analytics(ctx context.Context, domain string) (types.Analytics, error) {
	var q repository.Query
	if domain != "" && domain != "all" {
		q = q.Where("domain", domain)
	}
	tests, err := s.store.List(ctx, model.CollectionTestData, q)
	if err != nil {
		return types.Analytics{}, fmt.Errorf("analytics: %w", err)
	}

	type perf struct {
		n   int
		sum float64
	}
	var order, perfOrder []string
	counts := map[string]int{}
	perfs := map[string]*perf{}
	for _, t := range tests {
		d := t.String("domain")
		if _, seen := counts[d]; !seen {
			order = append(order, d)
		}
		counts[d]++

		if kpi, ok := t.Number("kpi"); ok && kpi > 0 {
			p, seen := perfs[d]
			if !seen {
				p = &perf{}
				perfs[d] = p
				perfOrder = append(perfOrder, d)
			}
			p.n++
			p.sum += kpi
		}
	}

	out := types.Analytics{
		DomainDistribution:  make([]types.DomainShare, 0, len(order)),
		PerformanceByDomain: make([]types.DomainPerformance, 0, len(perfOrder)),
	}
	for _, d := range order {
		share := int(math.Floor(float64(counts[d])/float64(len(tests))*100 + 0.5))
		out.DomainDistribution = append(out.DomainDistribution, types.DomainShare{Name: d, Value: share})
	}
	for _, d := range perfOrder {
		p := perfs[d]
		out.PerformanceByDomain = append(out.PerformanceByDomain,
			types.DomainPerformance{Domain: d, Performance: p.sum / float64(p.n)})
	}
	return out, nil
}

// DefaultDashboardMetrics is served until a dashboard document is stored.
func DefaultDashboardMetrics() model.Document {
	return model.Document{
		"totalTests":     0,
		"activeProjects": 0,
		"complianceRate": 0,
		"avgPerformance": 0,
		"recentTrends":   []any{},
	}
}

// DashboardMetrics returns the stored dashboard document or the defaults.
func (s *Service) DashboardMetrics(ctx context.Context) (model.Document, error) {
	doc, err := s.store.Get(ctx, model.CollectionMetrics, model.DashboardMetricsDocID)
	if errors.Is(err, repository.ErrNotFound) {
		return DefaultDashboardMetrics(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("dashboard metrics: %w", err)
	}
	delete(doc, model.FieldID)
	return doc, nil
}
