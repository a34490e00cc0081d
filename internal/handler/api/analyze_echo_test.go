package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"CrediScan/internal/service/ratelimit"
	"CrediScan/internal/services/analytics"
	"CrediScan/internal/services/features"
	"CrediScan/internal/services/scoring"
	"CrediScan/internal/usecase"
	"CrediScan/pkg/config"
	xhttp "CrediScan/pkg/http"
	"CrediScan/pkg/http/middleware"
	xlogger "CrediScan/pkg/logger"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *xhttp.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	pred := analytics.Load(ctx, config.Model{Backend: "lexical", MaxLength: 512, Timeout: time.Second}, xlogger.Nop(), nil)
	svc := usecase.NewAnalysisService(features.NewExtractor(nil), nil, pred, scoring.NewScorer(scoring.DefaultWeights()))
	var allow middleware.Allower
	if limiter != nil {
		allow = limiter
	}
	h := NewAnalysisEchoHandler(xlogger.Nop(), svc, allow)
	return xhttp.NewServer([]xhttp.Handler{h}, xhttp.WithMetrics("", prometheus.NewRegistry()))
}

func do(t *testing.T, srv *xhttp.Server, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.RemoteAddr = "203.0.113.7:5555"
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: response is not an envelope: %v (%s)", method, target, err, rec.Body.String())
	}
	return rec, env
}

func TestAnalyze_OK(t *testing.T) {
	srv := newTestServer(t, nil)
	rec, env := do(t, srv, http.MethodPost, "/api/analyze",
		`{"text":"SHOCKING!!! You won't believe what they are hiding!!!","url":"https://example.org/post"}`)
	if rec.Code != http.StatusOK || env.Status != http.StatusOK {
		t.Fatalf("status %d / %d: %s", rec.Code, env.Status, rec.Body.String())
	}
	var res struct {
		RiskScore        float64 `json:"risk_score"`
		CredibilityScore float64 `json:"credibility_score"`
		VerdictLevel     string  `json:"verdict_level"`
		URL              string  `json:"url"`
		AIPrediction     struct {
			Available bool `json:"available"`
		} `json:"ai_prediction"`
		RiskIndicators map[string]struct {
			Score float64 `json:"score"`
		} `json:"risk_indicators"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if res.RiskScore+res.CredibilityScore != 100 {
		t.Fatalf("risk %v + credibility %v != 100", res.RiskScore, res.CredibilityScore)
	}
	if res.URL != "https://example.org/post" || !res.AIPrediction.Available {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.RiskIndicators) != 5 || res.VerdictLevel == "" {
		t.Fatalf("indicators or verdict missing: %+v", res)
	}
}

func TestAnalyze_EmptyText(t *testing.T) {
	srv := newTestServer(t, nil)
	for _, body := range []string{`{"text":""}`, `{"text":"   "}`, `{}`} {
		rec, env := do(t, srv, http.MethodPost, "/api/analyze", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", body, rec.Code)
		}
		var errs []xhttp.AppError
		if err := json.Unmarshal(env.Data, &errs); err != nil || len(errs) != 1 {
			t.Fatalf("%s: unexpected data %s", body, env.Data)
		}
		if errs[0].Code != "ERR_EMPTY_TEXT" {
			t.Fatalf("%s: code %q", body, errs[0].Code)
		}
	}
}

func TestAnalyze_URLIsAnOpaqueLabel(t *testing.T) {
	srv := newTestServer(t, nil)
	rec, env := do(t, srv, http.MethodPost, "/api/analyze", `{"text":"hello world","url":"shared in group chat"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil || res.URL != "shared in group chat" {
		t.Fatalf("url not echoed: %s", env.Data)
	}

	body := `{"text":"hello world","url":"` + strings.Repeat("a", 2049) + `"}`
	rec, env = do(t, srv, http.MethodPost, "/api/analyze", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized url: status %d", rec.Code)
	}
	var errs []xhttp.AppError
	if err := json.Unmarshal(env.Data, &errs); err != nil || len(errs) != 1 || errs[0].Field != "url" {
		t.Fatalf("unexpected validation errors %s", env.Data)
	}
}

func TestAnalyze_RateLimited(t *testing.T) {
	srv := newTestServer(t, ratelimit.New(1, 0))
	body := `{"text":"Officials said the bridge reopened on Monday."}`
	if rec, _ := do(t, srv, http.MethodPost, "/api/analyze", body); rec.Code != http.StatusOK {
		t.Fatalf("first request status %d", rec.Code)
	}
	rec, env := do(t, srv, http.MethodPost, "/api/analyze", body)
	if rec.Code != http.StatusTooManyRequests || env.Status != http.StatusTooManyRequests {
		t.Fatalf("second request status %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatal("Retry-After header missing")
	}
	// other endpoints are not limited
	if rec, _ := do(t, srv, http.MethodGet, "/api/health", ""); rec.Code != http.StatusOK {
		t.Fatalf("health status %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	rec, env := do(t, srv, http.MethodGet, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var h struct {
		Status           string `json:"status"`
		AIModelAvailable bool   `json:"ai_model_available"`
		ModelBackend     string `json:"model_backend"`
	}
	if err := json.Unmarshal(env.Data, &h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.Status != "healthy" || !h.AIModelAvailable || h.ModelBackend != "lexical" {
		t.Fatalf("unexpected health %+v", h)
	}
}

func TestHistory(t *testing.T) {
	srv := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodGet, "/api/analyses", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var list struct {
		Rows  []json.RawMessage `json:"rows"`
		Total int64             `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil || list.Rows == nil || list.Total != 0 {
		t.Fatalf("expected empty list, got %s", env.Data)
	}

	if rec, _ := do(t, srv, http.MethodGet, "/api/analyses?since=yesterday", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad since: status %d", rec.Code)
	}
	if rec, _ := do(t, srv, http.MethodGet, "/api/analyses?limit=1000", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("limit too large: status %d", rec.Code)
	}
}

func TestNewsDisabled(t *testing.T) {
	srv := newTestServer(t, nil)
	if rec, _ := do(t, srv, http.MethodGet, "/api/news/status", ""); rec.Code != http.StatusOK {
		t.Fatalf("status endpoint: %d", rec.Code)
	}
	if rec, _ := do(t, srv, http.MethodPost, "/api/news/refresh", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("refresh endpoint: %d", rec.Code)
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	srv := newTestServer(t, nil)
	rec, env := do(t, srv, http.MethodGet, "/api/nope", "")
	if rec.Code != http.StatusNotFound || env.Status != http.StatusNotFound {
		t.Fatalf("status %d / %d", rec.Code, env.Status)
	}
}
