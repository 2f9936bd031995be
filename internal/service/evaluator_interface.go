package service

import (
	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// Evaluator is an interface that abstracts wager evaluation operations
// This allows for easier testing and mocking
type Evaluator interface {
	Evaluate(req *models.EvaluationRequest) (*models.EvaluationResult, error)
	BatchEvaluate(reqs []*models.EvaluationRequest) ([]*models.EvaluationResult, error)
}
