package analytics

import (
	"context"
	"math"
	"strings"
)

var (
	fakeIndicators = []string{
		"breaking", "shocking", "you won't believe", "doctors hate", "one weird trick",
		"secret", "exposed", "government doesn't want", "share before", "delete",
		"urgent", "must read",
	}
	realIndicators = []string{
		"reuters", "associated press", "ap news", "bbc", "cnn", "according to",
		"study shows", "research", "university", "published", "peer-reviewed",
	}
)

// LexicalClassifier scores fake-news and newsroom phrases in-process.
// Logits are ordered as lexicalLabels.
type LexicalClassifier struct{}

var lexicalLabels = []string{"real", "fake"}

func (LexicalClassifier) Logits(_ context.Context, text string) ([]float64, error) {
	lower := strings.ToLower(text)
	fake := countPhrases(lower, fakeIndicators)
	genuine := countPhrases(lower, realIndicators)

	total := fake + genuine
	if total < 1 {
		total = 1
	}
	fakePct := math.Min(90, math.Max(10, float64(fake)/float64(total)*100+20))
	realPct := 100 - fakePct
	return []float64{math.Log(realPct / 100), math.Log(fakePct / 100)}, nil
}

func countPhrases(text string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(text, p) {
			n++
		}
	}
	return n
}
