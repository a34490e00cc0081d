package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spaolacci/murmur3"

	"CrediScan/internal/domain/models"
	domrepo "CrediScan/internal/domain/repository"
	domsvc "CrediScan/internal/domain/service"
	"CrediScan/internal/services/features"
	"CrediScan/internal/services/scoring"
	"CrediScan/pkg/cache"
	"CrediScan/pkg/logger"
	"CrediScan/pkg/util"
)

// Broadcaster pushes completed analyses to live subscribers.
type Broadcaster interface {
	Broadcast(r *models.AnalysisResult)
}

// AnalysisService turns raw text into an AnalysisResult.
type AnalysisService struct {
	extractor *features.Extractor
	relevance domsvc.RelevanceChecker
	predictor domsvc.Predictor
	scorer    *scoring.Scorer

	cache    cache.Service
	cacheTTL time.Duration

	publisher domrepo.AnalysisPublisher
	store     domrepo.AnalysisStore
	history   domrepo.AnalysisStore
	stream    Broadcaster

	timeout     time.Duration
	sinkTimeout time.Duration
	log         *logger.Logger
	metrics     domrepo.Metrics
	now         func() time.Time
	newID       func() string

	sinks sync.WaitGroup
}

type AnalysisOption func(*AnalysisService)

func WithResultCache(c cache.Service, ttl time.Duration) AnalysisOption {
	return func(s *AnalysisService) { s.cache, s.cacheTTL = c, ttl }
}

// WithPublisher emits completed analyses as events.
func WithPublisher(p domrepo.AnalysisPublisher) AnalysisOption {
	return func(s *AnalysisService) { s.publisher = p }
}

// WithStore writes analyses directly and serves history from the same store.
func WithStore(st domrepo.AnalysisStore) AnalysisOption {
	return func(s *AnalysisService) { s.store, s.history = st, st }
}

// WithHistory serves history from a store written by someone else.
func WithHistory(st domrepo.AnalysisStore) AnalysisOption {
	return func(s *AnalysisService) { s.history = st }
}

func WithBroadcaster(b Broadcaster) AnalysisOption {
	return func(s *AnalysisService) { s.stream = b }
}

func WithAnalysisTimeout(d time.Duration) AnalysisOption {
	return func(s *AnalysisService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithAnalysisLogger(l *logger.Logger) AnalysisOption {
	return func(s *AnalysisService) { s.log = l }
}

func WithAnalysisMetrics(m domrepo.Metrics) AnalysisOption {
	return func(s *AnalysisService) { s.metrics = m }
}

func WithAnalysisClock(now func() time.Time) AnalysisOption {
	return func(s *AnalysisService) { s.now = now }
}

// NewAnalysisService wires the signal sources. relevance may be nil when news tracking is off.
func NewAnalysisService(ex *features.Extractor, rel domsvc.RelevanceChecker, pred domsvc.Predictor, sc *scoring.Scorer, opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
		extractor:   ex,
		relevance:   rel,
		predictor:   pred,
		scorer:      sc,
		timeout:     30 * time.Second,
		sinkTimeout: 5 * time.Second,
		log:         logger.Nop(),
		now:         time.Now,
		newID:       func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Fingerprint is a stable hash of the trimmed text.
func Fingerprint(text string) string {
	h1, h2 := murmur3.Sum128([]byte(strings.TrimSpace(text)))
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(h1 >> (56 - 8*i))
		b[8+i] = byte(h2 >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}

// Analyze fails only with models.ErrEmptyText. Every other problem degrades a signal.
func (s *AnalysisService) Analyze(ctx context.Context, text, url string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		s.recordError("empty_text")
		return nil, models.ErrEmptyText
	}
	start := s.now()

	// Overall timeout
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	hash := Fingerprint(text)
	key, cacheable := s.cacheKey(hash)
	if cacheable {
		var cached models.AnalysisResult
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			res := cached.Clone()
			s.stamp(res, url)
			s.finish(res, start, true)
			return res, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("result cache get", logger.Error(err))
		}
	}

	feat, rel, pred := s.gather(ctx, text)

	res := &models.AnalysisResult{
		TextHash:           hash,
		LinguisticFeatures: feat,
		NewsRelevance:      rel,
		AIPrediction:       pred.View(),
	}
	scoring.Apply(res, s.scorer.Score(feat, rel, pred))
	res.NewsRelevance.RelevanceScore = util.Round1(rel.RelevanceScore)
	s.stamp(res, url)

	// a transient inference failure must not be replayed from cache
	if cacheable && (pred.IsSome() || !s.predictor.Available()) {
		if err := s.cache.Set(ctx, key, res, s.cacheTTL); err != nil {
			s.log.Warn("result cache set", logger.Error(err))
		}
	}

	s.finish(res, start, false)
	return res, nil
}

func (s *AnalysisService) cacheKey(hash string) (string, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return "", false
	}
	var version int64
	if s.relevance != nil {
		st := s.relevance.Status()
		if st.Stale {
			return "", false
		}
		if st.FetchedAt != nil {
			version = st.FetchedAt.UnixNano()
		}
	}
	return cache.Key("analysis", s.predictor.Backend(), version, hash), true
}

// gather runs the three independent signals concurrently and waits for all of them
// or for ctx. A signal that misses the deadline degrades.
func (s *AnalysisService) gather(ctx context.Context, text string) (models.LinguisticFeatures, models.NewsRelevance, models.PredictionOption) {
	type item struct {
		name string
		val  interface{}
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		ch <- item{"features", s.extractor.Extract(text)}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		if s.relevance == nil {
			ch <- item{"relevance", emptyRelevance()}
			return
		}
		ch <- item{"relevance", s.relevance.Relevance(ctx, text)}
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ch <- item{"prediction", s.predictor.Predict(ctx, text)}
	}()

	go func() { wg.Wait(); close(ch) }()

	var (
		feat    models.LinguisticFeatures
		hasFeat bool
		rel     = emptyRelevance()
		pred    = models.NoPrediction()
	)
collect:
	for {
		select {
		case it, ok := <-ch:
			if !ok {
				break collect
			}
			switch it.name {
			case "features":
				feat, hasFeat = it.val.(models.LinguisticFeatures), true
			case "relevance":
				rel = it.val.(models.NewsRelevance)
			case "prediction":
				pred = it.val.(models.PredictionOption)
			}
		case <-ctx.Done():
			s.log.Warn("analysis deadline reached, degrading missing signals", logger.Error(ctx.Err()))
			s.recordError("analysis_timeout")
			break collect
		}
	}
	if !hasFeat {
		feat = s.extractor.Extract(text)
	}
	return feat, rel, pred
}

func emptyRelevance() models.NewsRelevance {
	return models.NewsRelevance{MatchingKeywords: []string{}}
}

func (s *AnalysisService) stamp(r *models.AnalysisResult, url string) {
	r.ID = s.newID()
	r.URL = url
	r.AnalyzedAt = s.now().UTC()
}

func (s *AnalysisService) finish(r *models.AnalysisResult, start time.Time, cached bool) {
	took := s.now().Sub(start)
	if s.metrics != nil {
		s.metrics.RecordLatency("analyze", took.Seconds())
		s.metrics.RecordVerdict(string(r.VerdictLevel), r.AIPrediction.Available)
	}
	s.log.Info("analysis completed",
		logger.String("id", r.ID),
		logger.String("verdict", string(r.VerdictLevel)),
		logger.Float("risk_score", r.RiskScore),
		logger.Bool("model_available", r.AIPrediction.Available),
		logger.Bool("cached", cached),
		logger.Duration("took", took),
	)
	s.dispatch(r)
}

// dispatch hands the result to the configured sinks without delaying the caller.
func (s *AnalysisService) dispatch(r *models.AnalysisResult) {
	if s.publisher == nil && s.store == nil && s.stream == nil {
		return
	}
	s.sinks.Add(1)
	go func() {
		defer s.sinks.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.sinkTimeout)
		defer cancel()

		if s.stream != nil {
			s.stream.Broadcast(r)
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, r); err != nil {
				s.recordError("publish")
				s.log.Error("publish analysis", logger.String("id", r.ID), logger.Error(err))
			}
		}
		if s.store != nil {
			if err := s.store.Store(ctx, r); err != nil {
				s.recordError("store")
				s.log.Error("store analysis", logger.String("id", r.ID), logger.Error(err))
			}
		}
	}()
}

// Drain waits for in-flight sink deliveries or ctx.
func (s *AnalysisService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() { s.sinks.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain sinks: %w", ctx.Err())
	}
}

// History returns recent analyses; empty when persistence is disabled.
func (s *AnalysisService) History(ctx context.Context, since time.Time, limit int) ([]models.HistoryEntry, error) {
	if s.history == nil {
		return []models.HistoryEntry{}, nil
	}
	out, err := s.history.Recent(ctx, since, limit)
	if err != nil {
		s.recordError("history")
		return nil, fmt.Errorf("recent analyses: %w", err)
	}
	return out, nil
}

func (s *AnalysisService) Health() models.HealthStatus {
	h := models.HealthStatus{
		Status:           "healthy",
		AIModelAvailable: s.predictor.Available(),
		ModelBackend:     s.predictor.Backend(),
	}
	if s.relevance != nil {
		st := s.relevance.Status()
		h.NewsArticles = st.Articles
		h.NewsStale = st.Stale
		if st.FetchedAt != nil {
			h.NewsFetchedAt = st.FetchedAt.UTC().Format(time.RFC3339)
		}
	}
	return h
}

// NewsStatus reports the tracker state; ok is false when news tracking is disabled.
func (s *AnalysisService) NewsStatus() (models.NewsStatus, bool) {
	if s.relevance == nil {
		return models.NewsStatus{BySource: map[string]int{}}, false
	}
	return s.relevance.Status(), true
}

// RefreshNews forces a fetch regardless of TTL.
func (s *AnalysisService) RefreshNews(ctx context.Context) (models.NewsStatus, error) {
	if s.relevance == nil {
		return models.NewsStatus{BySource: map[string]int{}}, ErrNewsDisabled
	}
	err := s.relevance.ForceRefresh(ctx)
	return s.relevance.Status(), err
}

var ErrNewsDisabled = errors.New("news tracking disabled")

func (s *AnalysisService) recordError(kind string) {
	if s.metrics != nil {
		s.metrics.RecordError(kind)
	}
}
