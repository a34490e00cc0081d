package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if c.Model.Backend != "none" || c.Backend.Type != "none" {
		t.Fatalf("unexpected default backends %q %q", c.Model.Backend, c.Backend.Type)
	}
	if c.News.TTL != time.Hour || len(c.News.Sources) != 5 {
		t.Fatalf("unexpected news defaults %+v", c.News)
	}
	w := c.Analysis.Weights
	if sum := w.Sensationalism + w.Sources + w.Emotional + w.Clickbait + w.NewsRelevance; sum < 0.999 || sum > 1.001 {
		t.Fatalf("rule weights should sum to 1, got %v", sum)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	p := writeConfig(t, `
server:
  port: 9090
news:
  ttl: 30m
  sources:
    - name: local
      url: http://localhost/rss
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 9090 || c.Server.Host != "0.0.0.0" {
		t.Fatalf("unexpected server %+v", c.Server)
	}
	if c.News.TTL != 30*time.Minute || len(c.News.Sources) != 1 {
		t.Fatalf("unexpected news %+v", c.News)
	}
	if c.News.PerSourceLimit != 10 {
		t.Fatalf("default per_source_limit lost: %d", c.News.PerSourceLimit)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"backend":  "backend:\n  type: postgres\n",
		"kafka":    "backend:\n  type: kafka\n",
		"model":    "model:\n  backend: http\n",
		"weights":  "analysis:\n  weights:\n    sources: 1.5\n",
		"sources":  "news:\n  sources:\n    - name: x\n",
		"news_ttl": "news:\n  ttl: 0s\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	p := writeConfig(t, "environment: development\n")
	t.Setenv("PORT", "7070")
	t.Setenv("MODEL_BACKEND", "none")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BACKEND", "kafka")

	c, err := LoadWithEnv(p, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Port != 7070 || c.Model.Backend != "none" || c.Backend.Type != "kafka" {
		t.Fatalf("env overrides not applied: %+v", c)
	}
	if strings.Join(c.Kafka.Brokers, ",") != "k1:9092,k2:9092" {
		t.Fatalf("unexpected brokers %v", c.Kafka.Brokers)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestModelBackendResolution(t *testing.T) {
	c, err := Load(writeConfig(t, "model:\n  url: http://model:8000\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Model.Backend != "http" {
		t.Fatalf("url without backend should select http, got %q", c.Model.Backend)
	}

	c, err = Load(writeConfig(t, "model:\n  backend: lexical\n"))
	if err != nil || c.Model.Backend != "lexical" {
		t.Fatalf("explicit lexical should be kept: %q %v", c.Model.Backend, err)
	}

	t.Setenv("MODEL_URL", "http://model:8000")
	c, err = LoadWithEnv(writeConfig(t, "environment: production\n"), filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if c.Model.Backend != "http" {
		t.Fatalf("MODEL_URL alone should select http, got %q", c.Model.Backend)
	}
}
