package models

import "time"

// Article is one headline entry taken from a feed.
type Article struct {
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Source    string    `json:"source"`
	Published time.Time `json:"published"`
	Link      string    `json:"link"`
}

// NewsSnapshot is the whole cached headline set. It is never modified once published;
// refreshes build a new one.
type NewsSnapshot struct {
	Articles  []Article `json:"articles"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Version identifies the snapshot for cache keys.
func (s *NewsSnapshot) Version() int64 {
	if s == nil {
		return 0
	}
	return s.FetchedAt.UnixNano()
}

// CountBySource returns the number of articles per source tag.
func (s *NewsSnapshot) CountBySource() map[string]int {
	out := map[string]int{}
	if s == nil {
		return out
	}
	for _, a := range s.Articles {
		out[a.Source]++
	}
	return out
}

// NewsRelevance is how much of a text's vocabulary appears in current headlines.
type NewsRelevance struct {
	RelevanceScore   float64  `json:"relevance_score"`
	MatchingKeywords []string `json:"matching_keywords"`
	IsNewsRelated    bool     `json:"is_news_related"`
}

// NewsStatus summarises the tracker state for operators.
type NewsStatus struct {
	FetchedAt    *time.Time     `json:"fetched_at,omitempty"`
	Stale        bool           `json:"stale"`
	Articles     int            `json:"articles"`
	Keywords     int            `json:"keywords"`
	BySource     map[string]int `json:"by_source"`
	LastError    string         `json:"last_error,omitempty"`
	LastAttempt  *time.Time     `json:"last_attempt,omitempty"`
	SourcesTotal int            `json:"sources_total"`
}
