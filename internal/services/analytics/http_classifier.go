package analytics

import (
	"context"
	"fmt"

	"CrediScan/pkg/config"
)

// HTTPClassifier calls a remote inference service.
//
//	GET  /model   -> {"name": "...", "labels": ["real","fake"], "max_length": 512}
//	POST /predict {"text": "..."} -> {"logits": [..]}
type HTTPClassifier struct {
	base    *HTTPServiceBase
	breaker *Breaker
	retries int
}

type modelInfo struct {
	Name      string   `json:"name"`
	Labels    []string `json:"labels"`
	MaxLength int      `json:"max_length"`
}

type predictReq struct {
	Text string `json:"text"`
}

type predictResp struct {
	Logits []float64 `json:"logits"`
}

func NewHTTPClassifier(cfg config.Model) *HTTPClassifier {
	return &HTTPClassifier{
		base:    NewHTTPServiceBase(cfg.URL, cfg.Timeout),
		breaker: NewBreaker(cfg.Breaker.FailureThreshold, cfg.Breaker.Cooldown),
		retries: cfg.Retries,
	}
}

// Info probes the service for its label order and sequence limit.
func (c *HTTPClassifier) Info(ctx context.Context) (modelInfo, error) {
	var info modelInfo
	if err := c.base.GetJSON(ctx, "/model", &info); err != nil {
		return info, fmt.Errorf("probe model: %w", err)
	}
	if len(info.Labels) < 2 {
		return info, fmt.Errorf("probe model: expected at least 2 labels, got %d", len(info.Labels))
	}
	return info, nil
}

func (c *HTTPClassifier) Logits(ctx context.Context, text string) ([]float64, error) {
	if !c.breaker.Allow() {
		return nil, ErrBreakerOpen
	}
	var resp predictResp
	err := c.base.PostJSONWithRetry(ctx, "/predict", predictReq{Text: text}, &resp, c.retries+1)
	if err != nil {
		c.breaker.Failure()
		return nil, fmt.Errorf("predict: %w", err)
	}
	c.breaker.Success()
	return resp.Logits, nil
}
