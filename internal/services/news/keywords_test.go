package news

import (
	"testing"

	"CrediScan/internal/domain/models"
)

func TestTokenize(t *testing.T) {
	got := Tokenize("The U.S. Senate, on 3rd vote, PASSED it!")
	for _, w := range []string{"the", "senate", "vote", "passed"} {
		if _, ok := got[w]; !ok {
			t.Errorf("missing token %q in %v", w, got)
		}
	}
	for _, w := range []string{"u", "on", "it", "3rd", "rd"} {
		if _, ok := got[w]; ok {
			t.Errorf("unexpected token %q", w)
		}
	}
}

func TestTokenize_NonASCIIWordsAreWhole(t *testing.T) {
	got := Tokenize("Le café naïve résumé met snake_case fans in Zürich")
	for _, w := range []string{"caf", "na", "ve", "sum", "rich", "snake", "case"} {
		if _, ok := got[w]; ok {
			t.Errorf("fragment %q should not be a token: %v", w, got)
		}
	}
	for _, w := range []string{"met", "fans"} {
		if _, ok := got[w]; !ok {
			t.Errorf("missing token %q in %v", w, got)
		}
	}
	if len(got) != 2 {
		t.Fatalf("want exactly 2 tokens, got %v", got)
	}
}

func TestKeywords_DropsStopwords(t *testing.T) {
	s := &models.NewsSnapshot{Articles: []models.Article{
		{Title: "The new mayor and council", Summary: "Who can say how it went"},
	}}
	kw := Keywords(s)
	for _, w := range []string{"the", "new", "and", "who", "can", "say", "how"} {
		if _, ok := kw[w]; ok {
			t.Errorf("stopword %q kept", w)
		}
	}
	for _, w := range []string{"mayor", "council", "went"} {
		if _, ok := kw[w]; !ok {
			t.Errorf("keyword %q missing", w)
		}
	}
}

func TestScore_Bounds(t *testing.T) {
	kw := map[string]struct{}{"mayor": {}, "council": {}, "budget": {}}

	none := Score("Aliens landed yesterday", kw)
	if none.RelevanceScore != 0 || none.IsNewsRelated {
		t.Fatalf("want 0, got %+v", none)
	}

	all := Score("Mayor council BUDGET", kw)
	if all.RelevanceScore != 100 || !all.IsNewsRelated {
		t.Fatalf("want 100, got %+v", all)
	}
	if len(all.MatchingKeywords) != 3 || all.MatchingKeywords[0] != "budget" {
		t.Fatalf("matching keywords should be sorted, got %v", all.MatchingKeywords)
	}

	half := Score("mayor spoke", kw)
	if half.RelevanceScore != 50 {
		t.Fatalf("want 50, got %v", half.RelevanceScore)
	}

	empty := Score("", kw)
	if empty.RelevanceScore != 0 {
		t.Fatalf("empty text want 0, got %v", empty.RelevanceScore)
	}
}

func TestScore_StopwordsStayOnTextSide(t *testing.T) {
	kw := map[string]struct{}{"mayor": {}}
	// "the" counts in the denominator but can never match
	rel := Score("the mayor", kw)
	if rel.RelevanceScore != 50 {
		t.Fatalf("want 50, got %v", rel.RelevanceScore)
	}
	if rel.IsNewsRelated != true {
		t.Fatal("50% should be news related")
	}
}
