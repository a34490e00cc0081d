package news

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"CrediScan/internal/domain/models"
	"CrediScan/internal/domain/repository"
	"CrediScan/pkg/config"
	"CrediScan/pkg/logger"
	"CrediScan/pkg/util"
)

// ErrAllSourcesFailed is returned by a refresh in which no source answered.
var ErrAllSourcesFailed = errors.New("all news sources failed")

// Tracker keeps a time-bounded snapshot of current headlines and scores texts against it.
// Readers never block; refreshes are serialised through a single-slot semaphore.
type Tracker struct {
	sources       []repository.FeedSource
	ttl           time.Duration
	throttle      time.Duration
	sourceTimeout time.Duration
	backoff       time.Duration
	limit         int

	leaseWait time.Duration

	now     func() time.Time
	snap    atomic.Pointer[models.NewsSnapshot]
	sem     chan struct{}
	store   repository.SnapshotStore
	log     *logger.Logger
	metrics repository.Metrics

	mu          sync.Mutex
	lastAttempt time.Time
	lastFailure time.Time
	lastErr     string
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithSnapshotStore mirrors snapshots so that replicas share one fetch.
func WithSnapshotStore(s repository.SnapshotStore) Option {
	return func(t *Tracker) { t.store = s }
}

// WithLeaseWait bounds how long a replica waits for another replica's fetch
// before fetching itself.
func WithLeaseWait(d time.Duration) Option {
	return func(t *Tracker) { t.leaseWait = d }
}

func WithLogger(l *logger.Logger) Option {
	return func(t *Tracker) { t.log = l }
}

func WithMetrics(m repository.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

func NewTracker(cfg config.News, sources []repository.FeedSource, opts ...Option) *Tracker {
	t := &Tracker{
		sources:       sources,
		ttl:           cfg.TTL,
		throttle:      cfg.Throttle,
		sourceTimeout: cfg.SourceTimeout,
		backoff:       cfg.FailureBackoff,
		limit:         cfg.PerSourceLimit,
		now:           time.Now,
		sem:           make(chan struct{}, 1),
		log:           logger.Nop(),
	}
	if t.ttl <= 0 {
		t.ttl = time.Hour
	}
	if t.limit <= 0 {
		t.limit = 10
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Snapshot returns the current snapshot, nil before the first successful refresh.
func (t *Tracker) Snapshot() *models.NewsSnapshot {
	return t.snap.Load()
}

// IsStale reports whether the snapshot is absent or older than the TTL.
func (t *Tracker) IsStale() bool {
	s := t.snap.Load()
	return s == nil || t.now().Sub(s.FetchedAt) >= t.ttl
}

func (t *Tracker) inBackoff() bool {
	if t.backoff <= 0 {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.lastFailure.IsZero() && t.now().Sub(t.lastFailure) < t.backoff
}

// Refresh fetches all sources when the snapshot is stale. Concurrent callers wait
// for the in-flight refresh instead of starting their own.
func (t *Tracker) Refresh(ctx context.Context) error {
	return t.refresh(ctx, false)
}

// ForceRefresh fetches regardless of the TTL and failure back-off.
func (t *Tracker) ForceRefresh(ctx context.Context) error {
	return t.refresh(ctx, true)
}

func (t *Tracker) refresh(ctx context.Context, force bool) error {
	if !force && (!t.IsStale() || t.inBackoff()) {
		return nil
	}

	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	// another caller may have refreshed while we waited
	if !force && (!t.IsStale() || t.inBackoff()) {
		<-t.sem
		return nil
	}

	// The pass outlives callers that give up; it holds the slot until it finishes.
	done := make(chan error, 1)
	go func() {
		defer func() { <-t.sem }()
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.passBudget())
		defer cancel()
		done <- t.run(fctx, force)
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is one refresh pass. It must be called with the semaphore held.
func (t *Tracker) run(ctx context.Context, force bool) error {
	if !force {
		if t.adoptMirrored(ctx) {
			return nil
		}
		release, waited := t.lease(ctx)
		defer release()
		if waited && t.adoptMirrored(ctx) {
			return nil
		}
	}

	start := t.now()
	articles, ok, err := t.fetchAll(ctx)

	t.mu.Lock()
	t.lastAttempt = start
	if ok == 0 {
		if ctx.Err() == nil {
			t.lastFailure = t.now()
		}
		t.lastErr = err.Error()
	} else {
		t.lastFailure = time.Time{}
		t.lastErr = ""
	}
	t.mu.Unlock()

	if ok == 0 {
		t.log.Warn("news refresh failed, keeping previous snapshot",
			logger.Int("sources", len(t.sources)),
			logger.Error(err),
		)
		return err
	}

	snap := &models.NewsSnapshot{Articles: articles, FetchedAt: t.now()}
	// a pass cut short by its budget is served but already stale, so the next caller retries
	partial := ctx.Err() != nil && ok < len(t.sources)
	if partial {
		snap.FetchedAt = snap.FetchedAt.Add(-t.ttl)
	}
	t.snap.Store(snap)
	t.log.Info("news snapshot refreshed",
		logger.Int("articles", len(articles)),
		logger.Int("sources_ok", ok),
		logger.Int("sources_total", len(t.sources)),
		logger.Duration("took", t.now().Sub(start)),
	)

	if t.store != nil && !partial {
		if err := t.store.Save(ctx, snap); err != nil {
			t.log.Warn("mirror news snapshot", logger.Error(err))
		}
	}
	return nil
}

// lease coordinates the fetch with other replicas. When another replica holds the lease
// it waits up to leaseWait for that replica's snapshot and reports waited=true.
func (t *Tracker) lease(ctx context.Context) (release func(), waited bool) {
	release = func() {}
	if t.store == nil {
		return release, false
	}
	ttl := t.fetchBudget()
	rel, held, err := t.store.Lease(ctx, ttl)
	if err != nil {
		t.log.Debug("news refresh lease", logger.Error(err))
		return release, false
	}
	if held {
		return rel, false
	}

	wait := t.leaseWaitFor()
	const poll = 250 * time.Millisecond
	for waitedFor := time.Duration(0); waitedFor < wait; waitedFor += poll {
		if err := util.Sleep(ctx, poll); err != nil {
			break
		}
		if s, _ := t.store.Load(ctx); s != nil && t.now().Sub(s.FetchedAt) < t.ttl {
			break
		}
	}
	return release, true
}

// fetchBudget is the longest a full pass over the sources should take.
func (t *Tracker) fetchBudget() time.Duration {
	n := time.Duration(len(t.sources))
	d := n*t.sourceTimeout + n*t.throttle
	if d < 30*time.Second {
		d = 30 * time.Second
	}
	return d
}

func (t *Tracker) leaseWaitFor() time.Duration {
	if t.leaseWait > 0 {
		return t.leaseWait
	}
	return t.fetchBudget()
}

// passBudget covers a possible wait on another replica's lease plus our own fetch.
func (t *Tracker) passBudget() time.Duration {
	if t.store == nil {
		return t.fetchBudget()
	}
	return t.leaseWaitFor() + t.fetchBudget()
}

// adoptMirrored takes a fresh snapshot saved by another replica, if any.
func (t *Tracker) adoptMirrored(ctx context.Context) bool {
	if t.store == nil {
		return false
	}
	s, err := t.store.Load(ctx)
	if err != nil {
		t.log.Debug("load mirrored snapshot", logger.Error(err))
		return false
	}
	if s == nil || t.now().Sub(s.FetchedAt) >= t.ttl {
		return false
	}
	if cur := t.snap.Load(); cur != nil && !s.FetchedAt.After(cur.FetchedAt) {
		return false
	}
	t.snap.Store(s)
	t.log.Debug("adopted mirrored news snapshot", logger.Int("articles", len(s.Articles)))
	return true
}

func (t *Tracker) fetchAll(ctx context.Context) ([]models.Article, int, error) {
	var (
		articles []models.Article
		ok       int
		errs     []error
	)
	for i, src := range t.sources {
		if i > 0 && t.throttle > 0 {
			if err := util.Sleep(ctx, t.throttle); err != nil {
				errs = append(errs, err)
				break
			}
		}

		items, err := t.fetchOne(ctx, src)
		if t.metrics != nil {
			t.metrics.RecordFeedFetch(src.Name(), err == nil, len(items))
		}
		if err != nil {
			t.log.Warn("news source failed",
				logger.String("source", src.Name()),
				logger.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		ok++
		articles = append(articles, items...)
	}
	if ok == 0 {
		if len(errs) == 0 {
			return nil, 0, ErrAllSourcesFailed
		}
		return nil, 0, fmt.Errorf("%w: %w", ErrAllSourcesFailed, errors.Join(errs...))
	}
	return articles, ok, nil
}

func (t *Tracker) fetchOne(ctx context.Context, src repository.FeedSource) ([]models.Article, error) {
	if t.sourceTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.sourceTimeout)
		defer cancel()
	}
	items, err := src.Fetch(ctx, t.limit)
	if err != nil {
		return nil, err
	}
	if len(items) > t.limit {
		items = items[:t.limit]
	}
	return items, nil
}

// CurrentKeywords derives the vocabulary from the current snapshot on every call.
func (t *Tracker) CurrentKeywords() map[string]struct{} {
	return Keywords(t.snap.Load())
}

// Relevance refreshes on a best-effort basis and scores text against current keywords.
// With no snapshot at all the overlap is zero.
func (t *Tracker) Relevance(ctx context.Context, text string) models.NewsRelevance {
	if err := t.Refresh(ctx); err != nil {
		t.log.Debug("relevance using previous snapshot", logger.Error(err))
	}
	s := t.snap.Load()
	if t.metrics != nil && s != nil {
		t.metrics.RecordSnapshotAge(t.now().Sub(s.FetchedAt).Seconds())
	}
	return Score(text, Keywords(s))
}

func (t *Tracker) Status() models.NewsStatus {
	s := t.snap.Load()
	st := models.NewsStatus{
		Stale:        t.IsStale(),
		BySource:     s.CountBySource(),
		SourcesTotal: len(t.sources),
	}
	if s != nil {
		at := s.FetchedAt
		st.FetchedAt = &at
		st.Articles = len(s.Articles)
		st.Keywords = len(Keywords(s))
	}
	t.mu.Lock()
	if !t.lastAttempt.IsZero() {
		at := t.lastAttempt
		st.LastAttempt = &at
	}
	st.LastError = t.lastErr
	t.mu.Unlock()
	return st
}
