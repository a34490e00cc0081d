package analytics

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"CrediScan/internal/domain/models"
	domrepo "CrediScan/internal/domain/repository"
	domsvc "CrediScan/internal/domain/service"
	"CrediScan/pkg/config"
	"CrediScan/pkg/logger"
)

// Classifier produces raw logits for a text.
type Classifier interface {
	Logits(ctx context.Context, text string) ([]float64, error)
}

// State is the load-time outcome of an Adapter: Unavailable or Ready.
type State interface {
	isState()
}

// Unavailable is permanent for the lifetime of the Adapter.
type Unavailable struct {
	Reason string
}

// Ready holds a loaded classifier with its label order and input limit.
type Ready struct {
	Classifier Classifier
	Labels     []models.Label
	MaxLength  int
}

func (Unavailable) isState() {}
func (Ready) isState()       {}

// Adapter wraps an optional classifier. Predict never fails; errors yield no prediction.
type Adapter struct {
	state   State
	backend string
	timeout time.Duration
	log     *logger.Logger
	metrics domrepo.Metrics
}

// Load decides the adapter state once. It never retries a failed load.
func Load(ctx context.Context, cfg config.Model, log *logger.Logger, metrics domrepo.Metrics) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	a := &Adapter{backend: cfg.Backend, timeout: cfg.Timeout, log: log, metrics: metrics}

	switch cfg.Backend {
	case "lexical":
		a.state = Ready{
			Classifier: LexicalClassifier{},
			Labels:     toLabels(lexicalLabels),
			MaxLength:  cfg.MaxLength,
		}
	case "http":
		clf := NewHTTPClassifier(cfg)
		probeCtx, cancel := context.WithTimeout(ctx, a.callTimeout())
		info, err := clf.Info(probeCtx)
		cancel()
		if err != nil {
			a.state = Unavailable{Reason: err.Error()}
			break
		}
		maxLen := cfg.MaxLength
		if info.MaxLength > 0 && (maxLen <= 0 || info.MaxLength < maxLen) {
			maxLen = info.MaxLength
		}
		a.state = Ready{Classifier: clf, Labels: toLabels(info.Labels), MaxLength: maxLen}
		log.Info("model loaded", logger.String("name", info.Name), logger.Strings("labels", info.Labels))
	default:
		a.state = Unavailable{Reason: fmt.Sprintf("model backend %q disabled", cfg.Backend)}
	}

	if u, ok := a.state.(Unavailable); ok {
		log.Warn("model unavailable, using rule-based scoring only",
			logger.String("backend", cfg.Backend),
			logger.String("reason", u.Reason),
		)
	}
	if metrics != nil {
		metrics.SetModelAvailable(cfg.Backend, a.Available())
	}
	return a
}

// NewAdapter builds an adapter from an already decided state.
func NewAdapter(state State, backend string, timeout time.Duration) *Adapter {
	return &Adapter{state: state, backend: backend, timeout: timeout, log: logger.Nop()}
}

func (a *Adapter) State() State { return a.state }

func (a *Adapter) Backend() string { return a.backend }

func (a *Adapter) Available() bool {
	_, ok := a.state.(Ready)
	return ok
}

func (a *Adapter) callTimeout() time.Duration {
	if a.timeout <= 0 {
		return 5 * time.Second
	}
	return a.timeout
}

func (a *Adapter) Predict(ctx context.Context, text string) models.PredictionOption {
	switch s := a.state.(type) {
	case Ready:
		p, err := a.predict(ctx, s, text)
		if err != nil {
			outcome := "error"
			switch {
			case errors.Is(err, ErrBreakerOpen):
				outcome = "breaker_open"
			case errors.Is(err, context.DeadlineExceeded):
				outcome = "timeout"
			}
			a.record(outcome)
			a.log.Warn("model inference failed", logger.String("backend", a.backend), logger.Error(err))
			return models.NoPrediction()
		}
		a.record("ok")
		return models.SomePrediction(p)
	default:
		a.record("unavailable")
		return models.NoPrediction()
	}
}

func (a *Adapter) predict(ctx context.Context, s Ready, text string) (models.ModelPrediction, error) {
	ctx, cancel := context.WithTimeout(ctx, a.callTimeout())
	defer cancel()

	logits, err := s.Classifier.Logits(ctx, Truncate(text, s.MaxLength))
	if err != nil {
		return models.ModelPrediction{}, err
	}
	if len(logits) != len(s.Labels) {
		return models.ModelPrediction{}, fmt.Errorf("got %d logits for %d labels", len(logits), len(s.Labels))
	}
	probs, err := Softmax(logits)
	if err != nil {
		return models.ModelPrediction{}, err
	}
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	label := s.Labels[best]
	if label != models.LabelFake && label != models.LabelReal {
		return models.ModelPrediction{}, fmt.Errorf("unknown label %q", label)
	}
	return models.ModelPrediction{Label: label, Confidence: probs[best]}, nil
}

func (a *Adapter) record(outcome string) {
	if a.metrics != nil {
		a.metrics.RecordPrediction(a.backend, outcome)
	}
}

// Softmax normalises logits into probabilities.
func Softmax(logits []float64) ([]float64, error) {
	if len(logits) == 0 {
		return nil, errors.New("empty logits")
	}
	maxV := math.Inf(-1)
	for _, v := range logits {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("non-finite logit")
		}
		if v > maxV {
			maxV = v
		}
	}
	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		out[i] = math.Exp(v - maxV)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out, nil
}

// Truncate keeps the first maxTokens whitespace-separated tokens.
func Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return text
	}
	fields := strings.Fields(text)
	if len(fields) <= maxTokens {
		return text
	}
	return strings.Join(fields[:maxTokens], " ")
}

func toLabels(in []string) []models.Label {
	out := make([]models.Label, len(in))
	for i, l := range in {
		out[i] = models.Label(strings.ToLower(strings.TrimSpace(l)))
	}
	return out
}

var _ domsvc.Predictor = (*Adapter)(nil)
