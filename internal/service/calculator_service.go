package service

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

var (
	evaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parlay_calculator_evaluations_total",
		Help: "Total number of wager evaluations performed",
	})
	invalidLegsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "parlay_calculator_invalid_legs_total",
		Help: "Total number of legs rejected during parsing",
	})
)

// CalculatorService orchestrates wager evaluation with caching
type CalculatorService struct {
	evaluator Evaluator
	cache     Cache
	logger    zerolog.Logger
}

// NewCalculatorService creates a new calculator service
func NewCalculatorService(
	evaluator Evaluator,
	cache Cache,
	logger zerolog.Logger,
) *CalculatorService {
	return &CalculatorService{
		evaluator: evaluator,
		cache:     cache,
		logger:    logger.With().Str("component", "calculator_service").Logger(),
	}
}

// Evaluate runs the calculator for one request and caches the result
func (s *CalculatorService) Evaluate(ctx context.Context, req *models.EvaluationRequest) (*models.EvaluationResult, error) {
	result, err := s.evaluator.Evaluate(req)
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	evaluationsTotal.Inc()
	invalidLegsTotal.Add(float64(len(result.Legs) - countValid(result.Legs)))

	if err := s.cache.SetResult(ctx, result); err != nil {
		s.logger.Warn().
			Err(err).
			Str("request_id", req.RequestID).
			Msg("failed to cache evaluation result")
		// Don't fail the request on cache errors
	}

	s.logger.Info().
		Str("request_id", req.RequestID).
		Int("leg_count", len(result.Legs)).
		Bool("all_valid", result.AllValid).
		Bool("has_parlay", result.Parlay != nil).
		Bool("has_ev", result.EV != nil).
		Msg("evaluated wager")

	return result, nil
}

// EvaluateBatch evaluates a batch of requests and caches results
func (s *CalculatorService) EvaluateBatch(ctx context.Context, reqs []*models.EvaluationRequest) ([]*models.EvaluationResult, error) {
	if len(reqs) == 0 {
		return nil, nil
	}

	results, err := s.evaluator.BatchEvaluate(reqs)
	if err != nil {
		return nil, fmt.Errorf("batch evaluation failed: %w", err)
	}

	for _, result := range results {
		evaluationsTotal.Inc()
		invalidLegsTotal.Add(float64(len(result.Legs) - countValid(result.Legs)))
	}

	if err := s.cache.SetResultBatch(ctx, results); err != nil {
		s.logger.Warn().
			Err(err).
			Int("count", len(results)).
			Msg("failed to cache batch of evaluation results")
		// Don't fail the request on cache errors
	}

	s.logger.Info().
		Int("input_count", len(reqs)).
		Int("output_count", len(results)).
		Msg("evaluated and cached batch")

	return results, nil
}

// GetResult retrieves a cached evaluation result
func (s *CalculatorService) GetResult(ctx context.Context, requestID string) (*models.EvaluationResult, error) {
	result, err := s.cache.GetResult(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("result not found for request=%s: %w", requestID, err)
	}

	s.logger.Debug().
		Str("request_id", requestID).
		Msg("cache hit for evaluation result")

	return result, nil
}

// PersistSession writes a session snapshot for later restore
func (s *CalculatorService) PersistSession(ctx context.Context, sess *models.Session) {
	if err := s.cache.SetSession(ctx, sess); err != nil {
		s.logger.Warn().
			Err(err).
			Str("session_id", sess.ID.String()).
			Msg("failed to persist session snapshot")
	}
}

// LoadSession retrieves a persisted session snapshot
func (s *CalculatorService) LoadSession(ctx context.Context, id string) (*models.Session, error) {
	sess, err := s.cache.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return sess, nil
}

func countValid(legs []models.ParsedLeg) int {
	n := 0
	for _, leg := range legs {
		if leg.Valid {
			n++
		}
	}
	return n
}
