package service

import (
	"context"

	"CrediScan/internal/domain/models"
)

// Predictor classifies a text. It never fails: errors surface as an empty option.
type Predictor interface {
	Predict(ctx context.Context, text string) models.PredictionOption
	Available() bool
	Backend() string
}

// RelevanceChecker scores a text against current news vocabulary.
type RelevanceChecker interface {
	Relevance(ctx context.Context, text string) models.NewsRelevance
	Status() models.NewsStatus
	ForceRefresh(ctx context.Context) error
}
