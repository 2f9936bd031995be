package service

import (
	"context"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// Cache is an interface that abstracts cache operations
// This allows for easier testing and mocking
type Cache interface {
	SetSession(ctx context.Context, sess *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	SetResult(ctx context.Context, result *models.EvaluationResult) error
	GetResult(ctx context.Context, requestID string) (*models.EvaluationResult, error)
	SetResultBatch(ctx context.Context, results []*models.EvaluationResult) error
	Ping(ctx context.Context) error
	Close() error
}
