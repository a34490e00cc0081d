//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"CrediScan/pkg/config"
	"CrediScan/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideRedisCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories
		ProvideResultCache,
		ProvideSnapshotStore,
		ProvideAnalysisStore,
		ProvideAnalysisPublisher,

		// Analysis signals
		ProvideExtractor,
		ProvideScorer,
		ProvidePredictor,
		ProvideNewsTracker,
		ProvideRelevanceChecker,
		ProvideNewsWarmer,

		// Use cases and handlers
		ProvideStreamHub,
		ProvideAnalysisService,
		ProvideKafkaAnalysisHandler,
		ProvideRateLimiter,
		ProvideAnalysisHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
