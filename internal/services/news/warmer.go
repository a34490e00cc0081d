package news

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"CrediScan/pkg/logger"
)

// Warmer refreshes the tracker on a cron schedule so requests rarely pay for a fetch.
type Warmer struct {
	tracker *Tracker
	cron    *cron.Cron
	timeout time.Duration
	log     *logger.Logger
}

func NewWarmer(tracker *Tracker, schedule string, timeout time.Duration, log *logger.Logger) (*Warmer, error) {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}
	w := &Warmer{
		tracker: tracker,
		cron:    cron.New(),
		timeout: timeout,
		log:     log,
	}
	if _, err := w.cron.AddFunc(schedule, w.run); err != nil {
		return nil, fmt.Errorf("warm schedule %q: %w", schedule, err)
	}
	return w, nil
}

// Start runs one refresh immediately and then follows the schedule.
func (w *Warmer) Start() {
	go w.run()
	w.cron.Start()
	w.log.Info("news warmer started", logger.Int("entries", len(w.cron.Entries())))
}

func (w *Warmer) run() {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.tracker.Refresh(ctx); err != nil {
		w.log.Warn("scheduled news refresh", logger.Error(err))
	}
}

// Stop halts the schedule and waits for a running job or ctx.
func (w *Warmer) Stop(ctx context.Context) {
	done := w.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
