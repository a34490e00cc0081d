package scoring

import (
	"fmt"

	"CrediScan/internal/domain/models"
	"CrediScan/pkg/config"
	"CrediScan/pkg/util"
)

const (
	highRiskThreshold   = 65.0
	mediumRiskThreshold = 35.0
)

var verdictMessages = map[models.VerdictLevel]string{
	models.VerdictHigh:   "Strong indicators of potential misinformation or vague content detected",
	models.VerdictMedium: "Some indicators of potential misinformation or unclear content detected",
	models.VerdictLow:    "Content appears credible and relevant to current events",
}

// Assessment is the unrounded output of one fusion.
type Assessment struct {
	RuleBasedRisk float64
	CombinedRisk  float64
	Indicators    map[string]models.RiskIndicator
}

// Credibility is 100 minus the combined risk.
func (a Assessment) Credibility() float64 { return 100 - a.CombinedRisk }

// Scorer fuses linguistic, relevance and model signals. Stateless after construction.
type Scorer struct {
	w config.Weights
}

func NewScorer(w config.Weights) *Scorer {
	return &Scorer{w: w}
}

// DefaultWeights mirrors the config defaults.
func DefaultWeights() config.Weights {
	return config.Weights{
		Sensationalism: 0.20,
		Sources:        0.25,
		Emotional:      0.20,
		Clickbait:      0.15,
		NewsRelevance:  0.20,
		ModelBlend:     0.5,
	}
}

func (s *Scorer) Score(f models.LinguisticFeatures, rel models.NewsRelevance, pred models.PredictionOption) Assessment {
	sens := clamp(15*float64(f.SensationalCount) + 5*float64(f.ExclamationCount))
	src := sourcesRisk(f.SourceIndicators())
	emo := clamp(12*float64(f.EmotionalCount) + 50*f.CapsRatio)
	cb := clamp(30 * float64(f.ClickbaitCount))
	nr := relevanceRisk(rel.RelevanceScore)

	rule := s.w.Sensationalism*sens +
		s.w.Sources*src +
		s.w.Emotional*emo +
		s.w.Clickbait*cb +
		s.w.NewsRelevance*nr
	rule = clamp(rule)

	combined := rule
	if p, ok := pred.Get(); ok {
		modelRisk := 0.0
		if p.Label == models.LabelFake {
			modelRisk = 100 * p.Confidence
		}
		combined = clamp(s.w.ModelBlend*modelRisk + (1-s.w.ModelBlend)*rule)
	}

	relMsg := "Related to current news"
	if nr > 50 {
		relMsg = "Low relevance to current events"
	}

	return Assessment{
		RuleBasedRisk: rule,
		CombinedRisk:  combined,
		Indicators: map[string]models.RiskIndicator{
			models.IndicatorSensationalism: {
				Score:   sens,
				Message: fmt.Sprintf("Sensational language: %d instances, %d exclamations", f.SensationalCount, f.ExclamationCount),
			},
			models.IndicatorSources: {
				Score:   src,
				Message: fmt.Sprintf("Source indicators: %d/3 found", f.SourceIndicators()),
			},
			models.IndicatorEmotional: {
				Score:   emo,
				Message: fmt.Sprintf("Emotional language: %d instances, %.1f%% caps", f.EmotionalCount, f.CapsRatio*100),
			},
			models.IndicatorClickbait: {
				Score:   cb,
				Message: fmt.Sprintf("Clickbait patterns: %d detected", f.ClickbaitCount),
			},
			models.IndicatorNewsRelevance: {
				Score:   nr,
				Message: fmt.Sprintf("News relevance: %.1f%% - %s", rel.RelevanceScore, relMsg),
			},
		},
	}
}

// Verdict maps a combined risk onto a level and its fixed message.
func Verdict(risk float64) (models.VerdictLevel, string) {
	level := models.VerdictLow
	switch {
	case risk >= highRiskThreshold:
		level = models.VerdictHigh
	case risk >= mediumRiskThreshold:
		level = models.VerdictMedium
	}
	return level, verdictMessages[level]
}

// Apply writes the rounded scores, verdict and indicators of a onto r.
// The verdict comes from the unrounded risk, so 64.96 reads as 65.0 with MEDIUM RISK.
func Apply(r *models.AnalysisResult, a Assessment) {
	r.RiskScore = util.Round1(a.CombinedRisk)
	r.CredibilityScore = util.Round1(100 - r.RiskScore)
	r.RuleBasedRisk = util.Round1(a.RuleBasedRisk)
	r.VerdictLevel, r.VerdictMessage = Verdict(a.CombinedRisk)
	r.RiskIndicators = make(map[string]models.RiskIndicator, len(a.Indicators))
	for k, v := range a.Indicators {
		v.Score = util.Round1(v.Score)
		r.RiskIndicators[k] = v
	}
}

func sourcesRisk(n int) float64 {
	switch {
	case n == 0:
		return 80
	case n == 1:
		return 50
	default:
		return 20
	}
}

func relevanceRisk(score float64) float64 {
	switch {
	case score < 5:
		return 70
	case score < 15:
		return 40
	default:
		return 10
	}
}

func clamp(v float64) float64 {
	return util.Clamp(v, 0, 100)
}
