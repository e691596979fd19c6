package service

import (
	"context"
	"fmt"
	"maps"

	"github.com/google/uuid"

	"github.com/sves-daq/backend/internal/adapters/repository"
	"github.com/sves-daq/backend/internal/domain/model"
	"github.com/sves-daq/backend/internal/domain/prediction"
	"github.com/sves-daq/backend/pkg/logger"
	"github.com/sves-daq/backend/pkg/metrics"
)

// SubmitPrediction evaluates features with the named model. When testID is
// set the result is queued for persistence; a repeated idemKey skips the
// second persist but still returns a fresh prediction. Persistence problems
// are logged and never change the result.
func (s *Service) SubmitPrediction(ctx context.Context, features prediction.Features, modelType, testID, idemKey string) prediction.Result {
	m, known := prediction.ParseModelType(modelType)
	if !known {
		metrics.RecordUnknownModel()
		s.logger.Warn(ctx, "unknown model type, using default heuristic", logger.String("modelType", modelType))
	}
	res := s.engine.Evaluate(features, m, modelType)
	metrics.RecordPrediction(m.String(), res.Value)

	if testID == "" {
		return res
	}

	deduper, _, started := s.pipeline()
	if idemKey != "" && started {
		if deduper.SeenAndRecord(ctx, idemKey) {
			metrics.RecordDuplicateKey()
			s.logger.Debug(ctx, "duplicate idempotency key, prediction not persisted",
				logger.String("key", idemKey), logger.String("testId", testID))
			return res
		}
	}

	if err := s.PersistPrediction(ctx, testID, res, features); err != nil {
		if idemKey != "" && started {
			deduper.Unrecord(ctx, idemKey)
		}
		s.logger.Warn(ctx, "prediction not persisted", logger.String("testId", testID), logger.Error(err))
	}
	return res
}

// PredictForTest loads the features stored for testID and predicts with them.
func (s *Service) PredictForTest(ctx context.Context, testID, modelType, idemKey string) (prediction.Result, error) {
	features, err := s.loadFeatures(ctx, testID)
	if err != nil {
		return prediction.Result{}, err
	}
	return s.SubmitPrediction(ctx, features, modelType, testID, idemKey), nil
}

// PersistPrediction queues res for storage in ml_predictions.
func (s *Service) PersistPrediction(ctx context.Context, testID string, res prediction.Result, features prediction.Features) error {
	_, q, started := s.pipeline()
	if !started {
		return ErrNotStarted
	}
	job := model.PredictionJob{
		JobID:      uuid.NewString(),
		TestID:     testID,
		ModelType:  res.Model,
		Value:      res.Value,
		Confidence: res.Confidence,
		Timestamp:  res.Timestamp,
		Features:   maps.Clone(features),
		EnqueuedAt: s.now(),
	}
	if !q.Enqueue(ctx, job) {
		return fmt.Errorf("persist prediction for %s: %w", testID, ErrBackpressure)
	}
	return nil
}

// loadFeatures reads the feature bag of a testData document. A nested
// "features" object wins; otherwise every numeric field is a feature.
func (s *Service) loadFeatures(ctx context.Context, testID string) (prediction.Features, error) {
	doc, err := s.store.Get(ctx, model.CollectionTestData, testID)
	if err != nil {
		return nil, fmt.Errorf("load features: %w", err)
	}
	if nested, ok := doc.Object("features"); ok {
		return prediction.FeaturesFromJSON(nested), nil
	}
	delete(doc, model.FieldID)
	return prediction.FeaturesFromJSON(doc), nil
}

// ListPredictions returns stored predictions, newest first.
func (s *Service) ListPredictions(ctx context.Context, testID string, limit int) ([]model.Document, error) {
	q := repository.Query{OrderBy: "timestamp", Descending: true, Limit: limit}
	if testID != "" {
		q = q.Where("testId", testID)
	}
	docs, err := s.store.List(ctx, model.CollectionPredictions, q)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	return nonNil(docs), nil
}

// AnalyzeRisk runs the risk rules over a test result summary.
func (s *Service) AnalyzeRisk(_ context.Context, results prediction.Features, domain string) prediction.RiskAssessment {
	out := prediction.AnalyzeRiskFactors(results, domain)
	metrics.RecordRiskAssessment(string(out.OverallRisk))
	return out
}

// Recommend turns performance gaps into recommendations.
func (s *Service) Recommend(_ context.Context, gaps []prediction.PerformanceGap) []prediction.Recommendation {
	out := prediction.GenerateRecommendations(gaps)
	metrics.RecordRecommendations(len(out))
	return out
}

func nonNil(docs []model.Document) []model.Document {
	if docs == nil {
		return []model.Document{}
	}
	return docs
}
