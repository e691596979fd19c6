// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/sves-daq/backend/internal/adapters/repository"
	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/prediction"
	"github.com/sves-daq/backend/internal/domain/types"
	"github.com/sves-daq/backend/pkg/logger"
)

// PredictionService runs the engine and keeps its results.
type PredictionService interface {
	SubmitPrediction(ctx context.Context, features prediction.Features, modelType, testID, idemKey string) prediction.Result
	PredictForTest(ctx context.Context, testID, modelType, idemKey string) (prediction.Result, error)
	ListPredictions(ctx context.Context, testID string, limit int) ([]model.Document, error)
	AnalyzeRisk(ctx context.Context, results prediction.Features, domain string) prediction.RiskAssessment
	Recommend(ctx context.Context, gaps []prediction.PerformanceGap) []prediction.Recommendation
}

// RecordService reads and writes the dashboard's stored records.
type RecordService interface {
	ListTestData(ctx context.Context, domain string, limit int) ([]model.Document, error)
	CreateTestData(ctx context.Context, doc model.Document) (string, error)
	ListCompliance(ctx context.Context) ([]model.Document, error)
	CreateCompliance(ctx context.Context, doc model.Document) (id, status string, err error)
	ListKPIs(ctx context.Context, f types.KPIFilter) ([]model.Document, error)
	ExecutiveKPIs(ctx context.Context, programID string) (map[string]float64, error)
	Analytics(ctx context.Context, domain string) (types.Analytics, error)
	DashboardMetrics(ctx context.Context) (model.Document, error)
}

// DomainService serves the per-domain dashboard pages.
type DomainService interface {
	DomainView(ctx context.Context, domain string, f types.DomainFilter) types.DomainView
	Streams(ctx context.Context, domain, testID string, limit int) []model.Document
}

// PluginService lists, runs and configures analysis plugins.
type PluginService interface {
	ListPlugins(ctx context.Context) []model.Document
	RunPlugin(ctx context.Context, name string) (types.PluginRun, error)
	ConfigurePlugin(ctx context.Context, name string, config any) (types.PluginConfig, error)
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PredictionService
	RecordService
	DomainService
	PluginService
	StatsProvider
}

const (
	defaultMaxListLimit = 1000
	defaultRPS          = 200
	defaultBurst        = 400
	defaultMaxInFlight  = 512
)

// Server wires HTTP routes for the business API.
type Server struct {
	deps   Dependencies
	logger logger.Logger

	maxListLimit int
	corsOrigin   string
	limiter      *rate.Limiter
	inFlight     *semaphore.Weighted // nil when unbounded

	health *HealthHandler
	stats  *StatsHandler
}

// Option configures a Server.
type Option func(*serverSettings)

type serverSettings struct {
	maxListLimit int
	rps          float64
	burst        int
	maxInFlight  int64
	corsOrigin   string
	logger       logger.Logger
}

// WithMaxListLimit caps the limit query parameter of list endpoints.
func WithMaxListLimit(n int) Option {
	return func(s *serverSettings) {
		if n > 0 {
			s.maxListLimit = n
		}
	}
}

// WithRateLimit sets the sustained request rate and burst of /api routes.
// A non-positive rps disables rate limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *serverSettings) {
		s.rps, s.burst = rps, max(burst, 1)
	}
}

// WithMaxInFlight bounds concurrently served /api requests. Zero or less
// removes the bound.
func WithMaxInFlight(n int) Option {
	return func(s *serverSettings) { s.maxInFlight = int64(n) }
}

// WithCORSOrigin sets Access-Control-Allow-Origin. Empty disables CORS.
func WithCORSOrigin(origin string) Option {
	return func(s *serverSettings) { s.corsOrigin = origin }
}

// WithLogger sets the request error logger.
func WithLogger(l logger.Logger) Option {
	return func(s *serverSettings) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	settings := serverSettings{
		maxListLimit: defaultMaxListLimit,
		rps:          defaultRPS,
		burst:        defaultBurst,
		maxInFlight:  defaultMaxInFlight,
		corsOrigin:   "*",
	}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.logger == nil {
		settings.logger = logger.Get().Named("api")
	}
	s := &Server{
		deps:         deps,
		logger:       settings.logger,
		maxListLimit: settings.maxListLimit,
		corsOrigin:   settings.corsOrigin,
		limiter:      rate.NewLimiter(rate.Inf, 0),
		health:       NewHealthHandler(),
		stats:        NewStatsHandler(deps),
	}
	if settings.rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(settings.rps), settings.burst)
	}
	if settings.maxInFlight > 0 {
		s.inFlight = semaphore.NewWeighted(settings.maxInFlight)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /health", "health", s.health.HandleHealth)
	mux.Handle("GET /metrics", s.health.MetricsHandler())
	route("GET /stats", "stats", s.stats.HandleStats)

	route("GET /api/metrics/dashboard", "dashboard_metrics", s.handleDashboardMetrics)

	route("GET /api/test-data", "test_data_list", s.handleListTestData)
	route("POST /api/test-data", "test_data_create", s.handleCreateTestData)
	route("GET /api/analytics", "analytics", s.handleAnalytics)
	route("GET /api/compliance", "compliance_list", s.handleListCompliance)
	route("POST /api/compliance", "compliance_create", s.handleCreateCompliance)

	route("GET /api/ml", "ml_list", s.handleListPredictions)
	route("POST /api/ml/predict", "ml_predict", s.handlePredict)
	route("POST /api/ml/tests/{testId}/predict", "ml_predict_test", s.handlePredictForTest)
	route("POST /api/ml/analyze-risk", "ml_analyze_risk", s.handleAnalyzeRisk)
	route("POST /api/ml/recommendations", "ml_recommendations", s.handleRecommendations)

	route("GET /api/kpis", "kpis", s.handleListKPIs)
	route("GET /api/kpis/executive", "kpis_executive", s.handleExecutiveKPIs)

	route("GET /api/domain/{domain}", "domain", s.handleDomain)
	route("GET /api/domain/{domain}/streams", "domain_streams", s.handleStreams)

	route("GET /api/plugins", "plugins_list", s.handleListPlugins)
	route("POST /api/plugins/{name}/run", "plugins_run", s.handleRunPlugin)
	route("POST /api/plugins/{name}/configure", "plugins_configure", s.handleConfigurePlugin)
}

// Handler wraps next with CORS, rate limiting and the in-flight bound.
func (s *Server) Handler(next http.Handler) http.Handler {
	return s.cors(s.rateLimit(s.limitInFlight(next)))
}

// errorResponse is the shape of failures raised while serving a request.
type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// clientError is the shape of rejected input.
type clientError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, clientError{Error: msg})
}

// fail logs err and reports "Failed to <action>: <cause>" with a status
// derived from the error kind.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op, action string, err error) {
	status := statusFor(err)
	s.logger.Error(r.Context(), "request failed",
		logger.String("method", r.Method),
		logger.String("path", r.URL.Path),
		logger.Int("status", status),
		logger.Error(Wrap(op, err)))
	writeJSON(w, status, errorResponse{
		Status:  "error",
		Message: fmt.Sprintf("Failed to %s: %v", action, err),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
