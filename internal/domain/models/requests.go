package models

// Requests for the HTTP API. Empty text is rejected by the analysis service, not here.
// The url is an opaque label echoed back, so only its length is bounded.

type AnalyzeRequest struct {
	Text string `json:"text" validate:"max=100000"`
	URL  string `json:"url" validate:"max=2048"`
}

type HistoryRequest struct {
	Limit int    `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
	Since string `query:"since" json:"since"`
}

// HealthStatus is returned by the health endpoint.
type HealthStatus struct {
	Status           string `json:"status"`
	AIModelAvailable bool   `json:"ai_model_available"`
	ModelBackend     string `json:"model_backend"`
	NewsArticles     int    `json:"news_articles"`
	NewsFetchedAt    string `json:"news_fetched_at,omitempty"`
	NewsStale        bool   `json:"news_stale"`
}

// HistoryEntry is a persisted analysis summary.
type HistoryEntry struct {
	ID               string       `json:"id"`
	AnalyzedAt       string       `json:"analyzed_at"`
	URL              string       `json:"url,omitempty"`
	TextHash         string       `json:"text_hash"`
	RiskScore        float64      `json:"risk_score"`
	CredibilityScore float64      `json:"credibility_score"`
	VerdictLevel     VerdictLevel `json:"verdict_level"`
	ModelAvailable   bool         `json:"model_available"`
	RelevanceScore   float64      `json:"relevance_score"`
	WordCount        int          `json:"word_count"`
}
