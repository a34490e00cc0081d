package features

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// LexiconTable is the on-disk form of a Lexicon: category -> patterns.
type LexiconTable struct {
	Sensational []string `yaml:"sensational"`
	Emotional   []string `yaml:"emotional"`
	Attribution []string `yaml:"attribution"`
	Clickbait   []string `yaml:"clickbait"`
}

// Lexicon holds the compiled word lists and patterns used by the Extractor.
type Lexicon struct {
	sensational []string
	emotional   []string
	attribution *regexp.Regexp
	clickbait   []*regexp.Regexp
}

var defaultTable = LexiconTable{
	Sensational: []string{
		"shocking", "unbelievable", "mind-blowing", "devastating", "horrifying", "incredible",
		"jaw-dropping", "explosive", "bombshell", "stunning", "outrageous", "unprecedented",
	},
	Emotional: []string{
		"outrage", "furious", "terrifying", "disgusting", "alarming", "scary",
		"panic", "crisis", "disaster", "threat", "danger",
	},
	Attribution: []string{"according to", "said", "reported", "stated"},
	Clickbait: []string{
		`you won't believe`,
		`what happened next`,
		`this one trick`,
		`\d+ (reasons|ways|things)`,
		`shocking truth`,
	},
}

// DefaultTable returns a copy of the built-in table.
func DefaultTable() LexiconTable {
	t := defaultTable
	t.Sensational = append([]string(nil), defaultTable.Sensational...)
	t.Emotional = append([]string(nil), defaultTable.Emotional...)
	t.Attribution = append([]string(nil), defaultTable.Attribution...)
	t.Clickbait = append([]string(nil), defaultTable.Clickbait...)
	return t
}

// DefaultLexicon compiles the built-in table. It panics only if the built-in patterns are broken.
func DefaultLexicon() *Lexicon {
	lx, err := Compile(defaultTable)
	if err != nil {
		panic(err)
	}
	return lx
}

// Compile validates and compiles a table. Empty categories fall back to the defaults.
func Compile(t LexiconTable) (*Lexicon, error) {
	if len(t.Sensational) == 0 {
		t.Sensational = defaultTable.Sensational
	}
	if len(t.Emotional) == 0 {
		t.Emotional = defaultTable.Emotional
	}
	if len(t.Attribution) == 0 {
		t.Attribution = defaultTable.Attribution
	}
	if len(t.Clickbait) == 0 {
		t.Clickbait = defaultTable.Clickbait
	}

	lx := &Lexicon{
		sensational: lowerAll(t.Sensational),
		emotional:   lowerAll(t.Emotional),
	}

	alts := make([]string, 0, len(t.Attribution))
	for _, a := range t.Attribution {
		if _, err := regexp.Compile(a); err != nil {
			return nil, fmt.Errorf("attribution pattern %q: %w", a, err)
		}
		alts = append(alts, a)
	}
	attr, err := regexp.Compile(`(?i)` + strings.Join(alts, "|"))
	if err != nil {
		return nil, fmt.Errorf("attribution patterns: %w", err)
	}
	lx.attribution = attr

	for _, p := range t.Clickbait {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			return nil, fmt.Errorf("clickbait pattern %q: %w", p, err)
		}
		lx.clickbait = append(lx.clickbait, re)
	}
	return lx, nil
}

// LoadLexicon reads a YAML lexicon file. An empty path yields the default lexicon.
func LoadLexicon(path string) (*Lexicon, error) {
	if path == "" {
		return DefaultLexicon(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var t LexiconTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	return Compile(t)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
