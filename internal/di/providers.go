package di

import (
	"context"
	"fmt"
	"time"

	"CrediScan/internal/domain/repository"
	domsvc "CrediScan/internal/domain/service"
	"CrediScan/internal/handler/api"
	internalrepo "CrediScan/internal/repository"
	"CrediScan/internal/service/ratelimit"
	"CrediScan/internal/services/analytics"
	"CrediScan/internal/services/features"
	"CrediScan/internal/services/news"
	"CrediScan/internal/services/scoring"
	"CrediScan/internal/usecase"
	"CrediScan/pkg/cache"
	pkgch "CrediScan/pkg/clickhouse"
	"CrediScan/pkg/config"
	"CrediScan/pkg/http/middleware"
	pkgkafka "CrediScan/pkg/kafka"
	applogger "CrediScan/pkg/logger"
	"CrediScan/pkg/metrics"
	"CrediScan/pkg/server"
)

// ProvideLogger builds the application logger from the logging section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideRedisCache connects to Redis when enabled; nil otherwise.
func ProvideRedisCache(cfg *config.Config) (*cache.RedisCache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Host, cfg.Redis.Port),
		cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdle, cfg.Redis.PoolTimeout),
		cache.WithRedisDialTimeout(cfg.Redis.DialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideResultCache layers memory over Redis when available, memory only otherwise.
func ProvideResultCache(rc *cache.RedisCache) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache(cache.WithMemoryMaxEntries(5000), cache.WithMemorySweep(time.Minute))
	}
	return cache.NewLayeredCache(rc, cache.WithL1(5000, time.Minute))
}

// ProvideSnapshotStore mirrors news snapshots through Redis; nil without Redis.
func ProvideSnapshotStore(cfg *config.Config, rc *cache.RedisCache) repository.SnapshotStore {
	if rc == nil {
		return nil
	}
	return internalrepo.NewRedisSnapshotStore(rc, cfg.News.TTL)
}

// ProvideNewsTracker returns nil when news tracking is disabled.
func ProvideNewsTracker(cfg *config.Config, store repository.SnapshotStore, l *applogger.Logger, m repository.Metrics) *news.Tracker {
	if !cfg.News.Enabled {
		return nil
	}
	opts := []news.Option{news.WithLogger(l), news.WithMetrics(m)}
	if store != nil {
		opts = append(opts, news.WithSnapshotStore(store))
	}
	return news.NewTracker(cfg.News, news.NewRSSSources(cfg.News), opts...)
}

// ProvideRelevanceChecker adapts the tracker; a nil tracker stays a nil interface.
func ProvideRelevanceChecker(tr *news.Tracker) domsvc.RelevanceChecker {
	if tr == nil {
		return nil
	}
	return tr
}

// ProvideNewsWarmer schedules background refreshes when a schedule is configured.
func ProvideNewsWarmer(cfg *config.Config, tr *news.Tracker, l *applogger.Logger) (*news.Warmer, error) {
	if tr == nil || cfg.News.WarmSchedule == "" {
		return nil, nil
	}
	return news.NewWarmer(tr, cfg.News.WarmSchedule, cfg.News.SourceTimeout*time.Duration(len(cfg.News.Sources)+1), l)
}

// ProvideExtractor loads the lexicon table (built-in unless analysis.lexicon_path is set).
func ProvideExtractor(cfg *config.Config) (*features.Extractor, error) {
	lex, err := features.LoadLexicon(cfg.Analysis.LexiconPath)
	if err != nil {
		return nil, fmt.Errorf("lexicon: %w", err)
	}
	return features.NewExtractor(lex), nil
}

func ProvideScorer(cfg *config.Config) *scoring.Scorer {
	return scoring.NewScorer(cfg.Analysis.Weights)
}

// ProvidePredictor decides the model adapter state once at startup.
func ProvidePredictor(cfg *config.Config, l *applogger.Logger, m repository.Metrics) domsvc.Predictor {
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.Model.Timeout)
	defer cancel()
	return analytics.Load(ctx, cfg.Model, l.With(applogger.String("component", "model")), m)
}

func persistsHistory(cfg *config.Config) bool {
	return cfg.Backend.Type == "kafka" || cfg.Backend.Type == "clickhouse"
}

// ProvideClickHouseClient connects when history is persisted; nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !persistsHistory(cfg) {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClickHouse.DialTimeout+time.Second)
	defer cancel()
	client, err := pkgch.NewClient(ctx, pkgch.OptionsFromConfig(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideAnalysisStore creates the ClickHouse history table and repository.
func ProvideAnalysisStore(cfg *config.Config, ch *pkgch.Client, l *applogger.Logger) (repository.AnalysisStore, error) {
	if ch == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseAnalysisStore(ch, l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideKafkaProducer is needed for analysis events and for shipping collected error logs.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	needed := cfg.Backend.Type == "kafka" || (cfg.Logging.Collector.Enabled && len(cfg.Kafka.Brokers) > 0)
	if !needed {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideAnalysisPublisher emits analysis.completed events in kafka mode.
func ProvideAnalysisPublisher(cfg *config.Config, producer *pkgkafka.Producer) repository.AnalysisPublisher {
	if cfg.Backend.Type != "kafka" || producer == nil {
		return nil
	}
	return internalrepo.NewKafkaAnalysisPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates the history consumer in kafka mode.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if cfg.Backend.Type != "kafka" {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l.With(applogger.String("component", "kafka_consumer")), pkgkafka.ConsumerOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaAnalysisHandler stores consumed events into ClickHouse.
func ProvideKafkaAnalysisHandler(cfg *config.Config, store repository.AnalysisStore, m repository.Metrics) *usecase.KafkaAnalysisHandler {
	if cfg.Backend.Type != "kafka" || store == nil {
		return nil
	}
	return usecase.NewKafkaAnalysisHandler(cfg.Kafka.Topic, store, m)
}

func ProvideStreamHub(l *applogger.Logger) *api.StreamHub {
	return api.NewStreamHub(l.With(applogger.String("component", "stream")))
}

// ProvideAnalysisService wires the sinks that match backend.type.
func ProvideAnalysisService(
	cfg *config.Config,
	ex *features.Extractor,
	rel domsvc.RelevanceChecker,
	pred domsvc.Predictor,
	sc *scoring.Scorer,
	rc cache.Service,
	pub repository.AnalysisPublisher,
	store repository.AnalysisStore,
	hub *api.StreamHub,
	l *applogger.Logger,
	m repository.Metrics,
) *usecase.AnalysisService {
	opts := []usecase.AnalysisOption{
		usecase.WithResultCache(rc, cfg.Analysis.ResultCacheTTL),
		usecase.WithBroadcaster(hub),
		usecase.WithAnalysisTimeout(cfg.Analysis.Timeout),
		usecase.WithAnalysisLogger(l.With(applogger.String("component", "analysis"))),
		usecase.WithAnalysisMetrics(m),
	}
	switch cfg.Backend.Type {
	case "kafka":
		if pub != nil {
			opts = append(opts, usecase.WithPublisher(pub))
		}
		if store != nil {
			opts = append(opts, usecase.WithHistory(store))
		}
	case "clickhouse":
		if store != nil {
			opts = append(opts, usecase.WithStore(store))
		}
	}
	return usecase.NewAnalysisService(ex, rel, pred, sc, opts...)
}

// ProvideRateLimiter returns nil when rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) middleware.Allower {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

func ProvideAnalysisHandler(l *applogger.Logger, svc *usecase.AnalysisService, limiter middleware.Allower) *api.AnalysisEchoHandler {
	return api.NewAnalysisEchoHandler(l, svc, limiter)
}

// ProvideApp assembles the application and attaches the error log collector.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	svc *usecase.AnalysisService,
	handler *api.AnalysisEchoHandler,
	hub *api.StreamHub,
	warmer *news.Warmer,
	producer *pkgkafka.Producer,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaAnalysisHandler,
	ch *pkgch.Client,
	rc *cache.RedisCache,
	resultCache cache.Service,
) *server.App {
	if cfg.Logging.Collector.Enabled && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   cfg.Logging.Collector.Interval,
			CountThreshold: cfg.Logging.Collector.Threshold,
			Topic:          cfg.Logging.Collector.Topic,
			Publisher:      producer,
		})
	}
	app := server.New(cfg, l, svc, handler, hub)
	app.Warmer = warmer
	if consumer != nil && kh != nil {
		app.Consumer = consumer
		app.KafkaHandler = kh
	}
	app.Producer = producer
	app.ClickHouse = ch
	app.Redis = rc
	app.ResultCache = resultCache
	return app
}
