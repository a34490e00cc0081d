package news

import (
	"regexp"
	"sort"
	"strings"

	"CrediScan/internal/domain/models"
)

// Words are whole Unicode letter/digit runs; only all-ASCII runs of 3+ letters become tokens,
// so "café" or "3rd" yield nothing rather than a fragment.
var (
	wordRe  = regexp.MustCompile(`[\p{L}\p{N}_]+`)
	tokenRe = regexp.MustCompile(`^[a-z]{3,}$`)
)

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`the and for are but not you all can had her was one our out day get has
		him his how man new now old see two way who boy did its let put say she too use`) {
		stopwords[w] = struct{}{}
	}
}

// Tokenize returns the unique lower-cased alphabetic tokens of length >= 3 in text.
func Tokenize(text string) map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range wordRe.FindAllString(strings.ToLower(text), -1) {
		if tokenRe.MatchString(w) {
			out[w] = struct{}{}
		}
	}
	return out
}

// Keywords builds the current-news vocabulary of a snapshot.
func Keywords(s *models.NewsSnapshot) map[string]struct{} {
	out := map[string]struct{}{}
	if s == nil {
		return out
	}
	for _, a := range s.Articles {
		for tok := range Tokenize(a.Title + " " + a.Summary) {
			if _, stop := stopwords[tok]; stop {
				continue
			}
			out[tok] = struct{}{}
		}
	}
	return out
}

// Score computes the overlap of text tokens with keywords.
func Score(text string, keywords map[string]struct{}) models.NewsRelevance {
	words := Tokenize(text)
	matching := make([]string, 0)
	for w := range words {
		if _, ok := keywords[w]; ok {
			matching = append(matching, w)
		}
	}
	sort.Strings(matching)

	denom := len(words)
	if denom == 0 {
		denom = 1
	}
	score := 100 * float64(len(matching)) / float64(denom)
	return models.NewsRelevance{
		RelevanceScore:   score,
		MatchingKeywords: matching,
		IsNewsRelated:    score > 10,
	}
}
