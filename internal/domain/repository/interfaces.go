package repository

import (
	"context"
	"time"

	"CrediScan/internal/domain/models"
)

// FeedSource yields the most recent entries of one syndication endpoint.
type FeedSource interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]models.Article, error)
}

// SnapshotStore mirrors the news snapshot so replicas can share one fetch.
type SnapshotStore interface {
	Load(ctx context.Context) (*models.NewsSnapshot, error)
	Save(ctx context.Context, s *models.NewsSnapshot) error
	// Lease reserves the next fetch for the caller. held is false while another replica owns it.
	Lease(ctx context.Context, ttl time.Duration) (release func(), held bool, err error)
}

type AnalysisPublisher interface {
	Publish(ctx context.Context, r *models.AnalysisResult) error
	Close() error
}

type AnalysisStore interface {
	Init(ctx context.Context) error // ensure tables
	Store(ctx context.Context, r *models.AnalysisResult) error
	StoreBatch(ctx context.Context, rs []*models.AnalysisResult) error
	Recent(ctx context.Context, since time.Time, limit int) ([]models.HistoryEntry, error)
	Health(ctx context.Context) error
	Close() error
}

type Metrics interface {
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
	RecordVerdict(level string, modelAvailable bool)
	RecordFeedFetch(source string, ok bool, articles int)
	RecordSnapshotAge(seconds float64)
	RecordPrediction(backend, outcome string)
	SetModelAvailable(backend string, ok bool)
}
