package features

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"CrediScan/internal/domain/models"
)

var (
	quotedRe = regexp.MustCompile(`"[^"]+"`)
	urlRe    = regexp.MustCompile(`https?://`)
)

// Extractor computes LinguisticFeatures. It is safe for concurrent use.
type Extractor struct {
	lex *Lexicon
}

func NewExtractor(lex *Lexicon) *Extractor {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Extractor{lex: lex}
}

// Extract never fails; an empty text yields zero features.
func (e *Extractor) Extract(text string) models.LinguisticFeatures {
	lower := strings.ToLower(text)
	words := strings.Fields(text)
	length := utf8.RuneCountInString(text)

	var f models.LinguisticFeatures
	f.Length = length
	f.WordCount = len(words)
	f.AvgWordLength = avgRuneLen(words)
	f.ExclamationCount = strings.Count(text, "!")
	f.QuestionCount = strings.Count(text, "?")
	f.CapsRatio = float64(countUpper(text)) / float64(atLeastOne(length))
	f.SensationalCount = countContained(lower, e.lex.sensational)
	f.EmotionalCount = countContained(lower, e.lex.emotional)
	f.HasQuotes = models.Flag(quotedRe.MatchString(text))
	f.HasAttribution = models.Flag(e.lex.attribution.MatchString(text))
	f.HasURL = models.Flag(urlRe.MatchString(text))
	for _, re := range e.lex.clickbait {
		if re.MatchString(text) {
			f.ClickbaitCount++
		}
	}
	f.SentenceCount = countSentences(text)
	f.AvgSentenceLength = float64(f.WordCount) / float64(atLeastOne(f.SentenceCount))
	return f
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func avgRuneLen(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += utf8.RuneCountInString(w)
	}
	return float64(total) / float64(len(words))
}

func countUpper(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsUpper(r) {
			n++
		}
	}
	return n
}

// countContained counts list entries occurring anywhere in text, each at most once.
func countContained(text string, list []string) int {
	n := 0
	for _, w := range list {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func countSentences(text string) int {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	n := 0
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			n++
		}
	}
	return n
}
