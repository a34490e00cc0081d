package models

import (
	"errors"
	"time"
)

// ErrEmptyText is returned when there is nothing to analyze.
var ErrEmptyText = errors.New("no text provided for analysis")

// LinguisticFeatures are stylistic counts and ratios derived from one text.
type LinguisticFeatures struct {
	Length            int     `json:"length"`
	WordCount         int     `json:"word_count"`
	AvgWordLength     float64 `json:"avg_word_length"`
	ExclamationCount  int     `json:"exclamation_count"`
	QuestionCount     int     `json:"question_count"`
	CapsRatio         float64 `json:"caps_ratio"`
	SensationalCount  int     `json:"sensational_count"`
	EmotionalCount    int     `json:"emotional_count"`
	HasQuotes         Flag    `json:"has_quotes"`
	HasAttribution    Flag    `json:"has_attribution"`
	HasURL            Flag    `json:"has_url"`
	ClickbaitCount    int     `json:"clickbait_count"`
	SentenceCount     int     `json:"sentence_count"`
	AvgSentenceLength float64 `json:"avg_sentence_length"`
}

// SourceIndicators counts how many of quotes, attribution and URL are present.
func (f LinguisticFeatures) SourceIndicators() int {
	return f.HasQuotes.Int() + f.HasAttribution.Int() + f.HasURL.Int()
}

// Flag is a presence marker serialised as 0/1.
type Flag bool

func (f Flag) Int() int {
	if f {
		return 1
	}
	return 0
}

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case "1", "true":
		*f = true
	case "0", "false", "null":
		*f = false
	default:
		return errors.New("flag: expected 0/1 or boolean")
	}
	return nil
}

// RiskIndicator is one scored dimension of the verdict.
type RiskIndicator struct {
	Score   float64 `json:"score"`
	Message string  `json:"message"`
}

// Indicator names.
const (
	IndicatorSensationalism = "sensationalism"
	IndicatorSources        = "sources"
	IndicatorEmotional      = "emotional"
	IndicatorClickbait      = "clickbait"
	IndicatorNewsRelevance  = "news_relevance"
)

type VerdictLevel string

const (
	VerdictLow    VerdictLevel = "LOW RISK"
	VerdictMedium VerdictLevel = "MEDIUM RISK"
	VerdictHigh   VerdictLevel = "HIGH RISK"
)

// AIPrediction is the client-facing view of the model signal.
type AIPrediction struct {
	Available  bool    `json:"available"`
	Prediction string  `json:"prediction"`
	Confidence float64 `json:"confidence"` // percent
}

// AnalysisResult is the full verdict for one text.
type AnalysisResult struct {
	ID                 string                   `json:"id"`
	URL                string                   `json:"url,omitempty"`
	AnalyzedAt         time.Time                `json:"analyzed_at"`
	TextHash           string                   `json:"text_hash"`
	RiskScore          float64                  `json:"risk_score"`
	CredibilityScore   float64                  `json:"credibility_score"`
	RuleBasedRisk      float64                  `json:"rule_based_risk"`
	VerdictLevel       VerdictLevel             `json:"verdict_level"`
	VerdictMessage     string                   `json:"verdict_message"`
	AIPrediction       AIPrediction             `json:"ai_prediction"`
	RiskIndicators     map[string]RiskIndicator `json:"risk_indicators"`
	LinguisticFeatures LinguisticFeatures       `json:"linguistic_features"`
	NewsRelevance      NewsRelevance            `json:"news_relevance"`
}

// Clone returns a deep copy safe to re-stamp with a new id, url and time.
func (r *AnalysisResult) Clone() *AnalysisResult {
	out := *r
	out.RiskIndicators = make(map[string]RiskIndicator, len(r.RiskIndicators))
	for k, v := range r.RiskIndicators {
		out.RiskIndicators[k] = v
	}
	out.NewsRelevance.MatchingKeywords = append([]string(nil), r.NewsRelevance.MatchingKeywords...)
	return &out
}
