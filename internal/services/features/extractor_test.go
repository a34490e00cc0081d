package features

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExtract_Empty(t *testing.T) {
	f := NewExtractor(nil).Extract("")
	if f.Length != 0 || f.WordCount != 0 || f.SentenceCount != 0 {
		t.Fatalf("expected zero counts, got %+v", f)
	}
	if f.AvgWordLength != 0 || f.CapsRatio != 0 || f.AvgSentenceLength != 0 {
		t.Fatalf("expected zero ratios, got %+v", f)
	}
}

func TestExtract_Counts(t *testing.T) {
	text := `SHOCKING news! The Devastating crisis is here. Are you ready? "It is bad," officials said.`
	f := NewExtractor(nil).Extract(text)

	if f.ExclamationCount != 1 || f.QuestionCount != 1 {
		t.Fatalf("punctuation: got ! %d ? %d", f.ExclamationCount, f.QuestionCount)
	}
	if f.SensationalCount != 2 {
		t.Fatalf("sensational: want 2 (shocking, devastating), got %d", f.SensationalCount)
	}
	if f.EmotionalCount != 1 {
		t.Fatalf("emotional: want 1 (crisis), got %d", f.EmotionalCount)
	}
	if !f.HasQuotes || !f.HasAttribution || f.HasURL {
		t.Fatalf("flags: quotes %v attribution %v url %v", f.HasQuotes, f.HasAttribution, f.HasURL)
	}
	if f.SentenceCount != 4 {
		t.Fatalf("sentences: want 4, got %d", f.SentenceCount)
	}
	if f.WordCount != 15 {
		t.Fatalf("words: want 15, got %d", f.WordCount)
	}
	if f.AvgSentenceLength != 3.75 {
		t.Fatalf("avg sentence length: want 3.75, got %v", f.AvgSentenceLength)
	}
}

func TestExtract_ListedWordCountedOnce(t *testing.T) {
	f := NewExtractor(nil).Extract("shocking shocking shocking")
	if f.SensationalCount != 1 {
		t.Fatalf("want 1, got %d", f.SensationalCount)
	}
}

func TestExtract_Clickbait(t *testing.T) {
	e := NewExtractor(nil)
	f := e.Extract("You Won't Believe these 7 reasons and what happened next")
	if f.ClickbaitCount != 3 {
		t.Fatalf("want 3, got %d", f.ClickbaitCount)
	}
	f = e.Extract("The council approved the budget on Tuesday.")
	if f.ClickbaitCount != 0 {
		t.Fatalf("want 0, got %d", f.ClickbaitCount)
	}
}

func TestExtract_CapsRatio(t *testing.T) {
	f := NewExtractor(nil).Extract("ABcd")
	if f.CapsRatio != 0.5 {
		t.Fatalf("want 0.5, got %v", f.CapsRatio)
	}
}

func TestExtract_URL(t *testing.T) {
	f := NewExtractor(nil).Extract("see https://example.org/a for details")
	if !f.HasURL {
		t.Fatal("expected url flag")
	}
}

func TestLoadLexicon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lexicon.yaml")
	body := "sensational:\n  - amazing\nclickbait:\n  - 'top \\d+'\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	lx, err := LoadLexicon(path)
	if err != nil {
		t.Fatalf("LoadLexicon: %v", err)
	}
	f := NewExtractor(lx).Extract("An AMAZING top 5 list. Scary.")
	if f.SensationalCount != 1 {
		t.Fatalf("sensational: want 1, got %d", f.SensationalCount)
	}
	if f.ClickbaitCount != 1 {
		t.Fatalf("clickbait: want 1, got %d", f.ClickbaitCount)
	}
	// emotional falls back to defaults
	if f.EmotionalCount != 1 {
		t.Fatalf("emotional: want 1, got %d", f.EmotionalCount)
	}
}

func TestLoadLexicon_BadPattern(t *testing.T) {
	_, err := Compile(LexiconTable{Clickbait: []string{"(unclosed"}})
	if err == nil || !strings.Contains(err.Error(), "clickbait") {
		t.Fatalf("expected clickbait compile error, got %v", err)
	}
}

func TestLoadLexicon_EmptyPath(t *testing.T) {
	lx, err := LoadLexicon("")
	if err != nil || lx == nil {
		t.Fatalf("expected default lexicon, got %v %v", lx, err)
	}
}
