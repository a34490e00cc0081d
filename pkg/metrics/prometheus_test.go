package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRecorder_RegistersAndRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)

	r.RecordError("kafka_publish")
	r.RecordLatency("analyze", 0.02)
	r.RecordVerdict("HIGH RISK", true)
	r.RecordFeedFetch("bbc", true, 10)
	r.RecordFeedFetch("cnn", false, 0)
	r.RecordSnapshotAge(12)
	r.RecordPrediction("lexical", "ok")
	r.SetModelAvailable("lexical", true)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	for _, want := range []string{
		"crediscan_errors_total",
		"crediscan_verdicts_total",
		"crediscan_feed_fetches_total",
		"crediscan_news_snapshot_age_seconds",
		"crediscan_model_available",
	} {
		if !names[want] {
			t.Errorf("metric %s not gathered", want)
		}
	}
}
