package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sves-daq/backend/internal/domain/prediction"
	"github.com/sves-daq/backend/internal/domain/types"
)

const (
	defaultPredictionLimit = 50
	idempotencyHeader      = "Idempotency-Key"
)

func (s *Server) handleListPredictions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, defaultPredictionLimit, s.maxListLimit)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	docs, err := s.deps.ListPredictions(r.Context(), r.URL.Query().Get("testId"), limit)
	if err != nil {
		s.fail(w, r, "api.listPredictions", "fetch ML predictions", err)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	raw := body["testData"]
	if !truthy(raw) {
		writeBadRequest(w, "Missing required field: testData")
		return
	}
	testData, ok := raw.(map[string]any)
	if !ok {
		writeBadRequest(w, "testData must be an object")
		return
	}

	res := s.deps.SubmitPrediction(r.Context(),
		prediction.FeaturesFromJSON(testData),
		stringField(body, "modelType", prediction.DefaultModelName),
		stringField(body, "testId", ""),
		strings.TrimSpace(r.Header.Get(idempotencyHeader)))
	writeJSON(w, http.StatusOK, types.NewPredictResponse(res))
}

func (s *Server) handlePredictForTest(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	res, err := s.deps.PredictForTest(r.Context(),
		r.PathValue("testId"),
		stringField(body, "modelType", prediction.DefaultModelName),
		strings.TrimSpace(r.Header.Get(idempotencyHeader)))
	if err != nil {
		s.fail(w, r, "api.predictForTest", "generate prediction", err)
		return
	}
	writeJSON(w, http.StatusOK, types.NewPredictResponse(res))
}

func (s *Server) handleAnalyzeRisk(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	raw := body["testResults"]
	if !truthy(raw) {
		writeBadRequest(w, "Missing required field: testResults")
		return
	}
	results, ok := raw.(map[string]any)
	if !ok {
		writeBadRequest(w, "testResults must be an object")
		return
	}

	a := s.deps.AnalyzeRisk(r.Context(), prediction.FeaturesFromJSON(results), stringField(body, "domain", ""))
	writeJSON(w, http.StatusOK, types.NewRiskResponse(a))
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	body, err := decodeObject(w, r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	gaps, err := parseGaps(body["performanceGaps"])
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	recs := s.deps.Recommend(r.Context(), gaps)
	writeJSON(w, http.StatusOK, types.NewRecommendationsResponse(recs))
}

// parseGaps accepts a list of {area, current, target} objects. Missing
// numbers read as zero.
func parseGaps(raw any) ([]prediction.PerformanceGap, error) {
	if raw == nil {
		return nil, errors.New("Missing required field: performanceGaps")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.New("performanceGaps must be a list")
	}
	gaps := make([]prediction.PerformanceGap, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, errors.New("performanceGaps entries must be objects")
		}
		current, _ := prediction.Number(obj["current"])
		target, _ := prediction.Number(obj["target"])
		gaps = append(gaps, prediction.PerformanceGap{
			Area:    stringField(obj, "area", ""),
			Current: current,
			Target:  target,
		})
	}
	return gaps, nil
}
