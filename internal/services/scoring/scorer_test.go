package scoring

import (
	"math"
	"strings"
	"testing"

	"CrediScan/internal/domain/models"
)

func TestVerdict_Boundaries(t *testing.T) {
	cases := []struct {
		risk float64
		want models.VerdictLevel
	}{
		{0, models.VerdictLow},
		{34.999, models.VerdictLow},
		{35, models.VerdictMedium},
		{64.999, models.VerdictMedium},
		{65, models.VerdictHigh},
		{100, models.VerdictHigh},
	}
	for _, c := range cases {
		got, msg := Verdict(c.risk)
		if got != c.want {
			t.Errorf("Verdict(%v) = %s, want %s", c.risk, got, c.want)
		}
		if msg == "" {
			t.Errorf("Verdict(%v) returned empty message", c.risk)
		}
	}
}

func TestScore_SourcesIndicator(t *testing.T) {
	s := NewScorer(DefaultWeights())
	cases := []struct {
		f    models.LinguisticFeatures
		want float64
	}{
		{models.LinguisticFeatures{}, 80},
		{models.LinguisticFeatures{HasURL: true}, 50},
		{models.LinguisticFeatures{HasURL: true, HasQuotes: true}, 20},
		{models.LinguisticFeatures{HasURL: true, HasQuotes: true, HasAttribution: true}, 20},
	}
	for _, c := range cases {
		a := s.Score(c.f, models.NewsRelevance{}, models.NoPrediction())
		if got := a.Indicators[models.IndicatorSources].Score; got != c.want {
			t.Errorf("sources for %+v = %v, want %v", c.f, got, c.want)
		}
	}
}

func TestScore_ClampsAdversarial(t *testing.T) {
	s := NewScorer(DefaultWeights())
	f := models.LinguisticFeatures{
		ExclamationCount: 5000,
		SensationalCount: 12,
		EmotionalCount:   11,
		CapsRatio:        1,
		ClickbaitCount:   5,
	}
	a := s.Score(f, models.NewsRelevance{}, models.SomePrediction(models.ModelPrediction{Label: models.LabelFake, Confidence: 1}))
	for name, ind := range a.Indicators {
		if ind.Score < 0 || ind.Score > 100 {
			t.Errorf("%s score %v out of range", name, ind.Score)
		}
	}
	if a.Indicators[models.IndicatorSensationalism].Score != 100 {
		t.Fatalf("sensationalism should saturate at 100")
	}
	if a.CombinedRisk > 100 || a.RuleBasedRisk > 100 {
		t.Fatalf("risk out of range: %+v", a)
	}
}

func TestScore_ModelUnavailableEqualsRuleBased(t *testing.T) {
	s := NewScorer(DefaultWeights())
	f := models.LinguisticFeatures{ExclamationCount: 3, CapsRatio: 0.2}
	a := s.Score(f, models.NewsRelevance{RelevanceScore: 8}, models.NoPrediction())
	if a.CombinedRisk != a.RuleBasedRisk {
		t.Fatalf("combined %v != rule %v", a.CombinedRisk, a.RuleBasedRisk)
	}
}

func TestScore_Blend(t *testing.T) {
	s := NewScorer(DefaultWeights())
	f := models.LinguisticFeatures{HasURL: true, HasQuotes: true}
	rel := models.NewsRelevance{RelevanceScore: 50}
	// rule = 0.25*20 + 0.20*10 = 7
	fake := s.Score(f, rel, models.SomePrediction(models.ModelPrediction{Label: models.LabelFake, Confidence: 0.9}))
	if math.Abs(fake.RuleBasedRisk-7) > 1e-9 {
		t.Fatalf("rule: want 7, got %v", fake.RuleBasedRisk)
	}
	if math.Abs(fake.CombinedRisk-48.5) > 1e-9 {
		t.Fatalf("combined fake: want 48.5, got %v", fake.CombinedRisk)
	}
	genuine := s.Score(f, rel, models.SomePrediction(models.ModelPrediction{Label: models.LabelReal, Confidence: 0.9}))
	if math.Abs(genuine.CombinedRisk-3.5) > 1e-9 {
		t.Fatalf("combined real: want 3.5, got %v", genuine.CombinedRisk)
	}
}

func TestScore_RelevanceRiskBands(t *testing.T) {
	s := NewScorer(DefaultWeights())
	cases := map[float64]float64{0: 70, 4.9: 70, 5: 40, 14.9: 40, 15: 10, 100: 10}
	for rel, want := range cases {
		a := s.Score(models.LinguisticFeatures{}, models.NewsRelevance{RelevanceScore: rel}, models.NoPrediction())
		ind := a.Indicators[models.IndicatorNewsRelevance]
		if ind.Score != want {
			t.Errorf("relevance %v: want %v, got %v", rel, want, ind.Score)
		}
		low := strings.Contains(ind.Message, "Low relevance")
		if low != (want > 50) {
			t.Errorf("relevance %v: unexpected message %q", rel, ind.Message)
		}
	}
}

func TestApply_SumsToHundred(t *testing.T) {
	s := NewScorer(DefaultWeights())
	for i := 0; i < 50; i++ {
		f := models.LinguisticFeatures{ExclamationCount: i, CapsRatio: float64(i) / 70, EmotionalCount: i % 4}
		var r models.AnalysisResult
		Apply(&r, s.Score(f, models.NewsRelevance{RelevanceScore: float64(i)}, models.NoPrediction()))
		if math.Abs(r.RiskScore+r.CredibilityScore-100) > 1e-9 {
			t.Fatalf("risk %v + credibility %v != 100", r.RiskScore, r.CredibilityScore)
		}
		if len(r.RiskIndicators) != 5 {
			t.Fatalf("want 5 indicators, got %d", len(r.RiskIndicators))
		}
	}
}

func TestApply_VerdictUsesUnroundedRisk(t *testing.T) {
	cases := []struct {
		risk    float64
		rounded float64
		want    models.VerdictLevel
	}{
		{64.96, 65, models.VerdictMedium},
		{65, 65, models.VerdictHigh},
		{34.96, 35, models.VerdictLow},
		{35.04, 35, models.VerdictMedium},
	}
	for _, c := range cases {
		var r models.AnalysisResult
		Apply(&r, Assessment{CombinedRisk: c.risk, RuleBasedRisk: c.risk})
		if r.RiskScore != c.rounded || r.VerdictLevel != c.want {
			t.Fatalf("risk %v: got %v %s, want %v %s", c.risk, r.RiskScore, r.VerdictLevel, c.rounded, c.want)
		}
	}
}
