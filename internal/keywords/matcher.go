// Package keywords matches the localized keyword phrases that start a line.
package keywords

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind classifies a keyword phrase
type Kind int

const (
	KindStep       Kind = iota // given, when, then, and, but
	KindFeature                // Feature:
	KindBackground             // Background:
	KindScenario               // Scenario:
	KindOutline                // Scenario Outline:
	KindExamples               // Examples:
	KindRule                   // Rule:
)

var categoryKinds = map[string]Kind{
	"given":           KindStep,
	"when":            KindStep,
	"then":            KindStep,
	"and":             KindStep,
	"but":             KindStep,
	"feature":         KindFeature,
	"background":      KindBackground,
	"scenario":        KindScenario,
	"scenariooutline": KindOutline,
	"examples":        KindExamples,
	"rule":            KindRule,
}

// KindForCategory maps a gherkin-languages category name ("given", "scenarioOutline", ...)
// to a Kind. Categories without a kind ("name", "native") report false.
func KindForCategory(category string) (Kind, bool) {
	kind, ok := categoryKinds[strings.ToLower(category)]
	return kind, ok
}

// IsHeader reports whether the kind opens a section rather than a step
func (k Kind) IsHeader() bool {
	return k != KindStep
}

// PhraseSpec declares one keyword phrase
type PhraseSpec struct {
	Language string
	Kind     Kind
	Words    []string
}

// Keyword is a matched keyword phrase
type Keyword struct {
	Words    []string
	Language language.Tag
	Kind     Kind
}

// Text returns the phrase words joined by single spaces
func (k Keyword) Text() string {
	return strings.Join(k.Words, " ")
}

// Len returns the number of words in the phrase
func (k Keyword) Len() int {
	return len(k.Words)
}

// Capitalized returns the phrase text with its first letter upper-cased
// using the phrase's language rules.
func (k Keyword) Capitalized() string {
	text := k.Text()
	if text == "" {
		return text
	}
	first := []rune(text)[0]
	rest := text[len(string(first)):]
	return cases.Upper(k.Language).String(string(first)) + rest
}

type phrase struct {
	keyword Keyword
	folded  []string
}

// Matcher holds an immutable, ordered keyword set.
// The zero value and a nil *Matcher match nothing.
type Matcher struct {
	steps     []phrase
	headers   []phrase
	languages []language.Tag
	maxWords  int
}

// NewMatcher builds a matcher from phrase declarations in declaration order.
// Phrases without words are skipped, as is the bare "*" wildcard.
func NewMatcher(specs []PhraseSpec) *Matcher {
	m := &Matcher{}
	tags := make(map[string]language.Tag)

	for _, spec := range specs {
		words := normalizeWords(spec.Words)
		if len(words) == 0 || (len(words) == 1 && words[0] == "*") {
			continue
		}

		tag, ok := tags[spec.Language]
		if !ok {
			tag = parseLanguage(spec.Language)
			tags[spec.Language] = tag
			m.languages = append(m.languages, tag)
		}

		p := phrase{
			keyword: Keyword{Words: words, Language: tag, Kind: spec.Kind},
			folded:  foldWords(cases.Lower(tag), words),
		}
		if spec.Kind.IsHeader() {
			m.headers = append(m.headers, p)
		} else {
			m.steps = append(m.steps, p)
		}
		if len(words) > m.maxWords {
			m.maxWords = len(words)
		}
	}

	return m
}

// Len returns the number of step phrases
func (m *Matcher) Len() int {
	if m == nil {
		return 0
	}
	return len(m.steps)
}

// StepKeywords returns the step phrases in declaration order
func (m *Matcher) StepKeywords() []Keyword {
	if m == nil {
		return nil
	}
	result := make([]Keyword, 0, len(m.steps))
	for _, p := range m.steps {
		result = append(result, p.keyword)
	}
	return result
}

// FindKeyword returns the longest step phrase whose words are a case-insensitive
// prefix of words. Equal lengths resolve to the earliest declared phrase.
func (m *Matcher) FindKeyword(words []string) (Keyword, bool) {
	if m == nil || len(words) == 0 || len(m.steps) == 0 {
		return Keyword{}, false
	}

	folded := m.foldInput(words)
	best := -1
	for i, p := range m.steps {
		if len(p.folded) > len(words) {
			continue
		}
		if best >= 0 && len(p.folded) <= len(m.steps[best].folded) {
			continue
		}
		if hasPrefix(folded[p.keyword.Language], p.folded) {
			best = i
		}
	}

	if best < 0 {
		return Keyword{}, false
	}
	return m.steps[best].keyword, true
}

// FindHeader matches a section header such as "Scenario: name" or "Сценарий:".
// The last word of the phrase must be directly followed by a colon.
func (m *Matcher) FindHeader(line string) (Keyword, bool) {
	if m == nil || len(m.headers) == 0 {
		return Keyword{}, false
	}
	words := strings.Fields(line)
	if len(words) == 0 {
		return Keyword{}, false
	}

	folded := m.foldInput(words)
	best := -1
	for i, p := range m.headers {
		n := len(p.folded)
		if n > len(words) {
			continue
		}
		if best >= 0 && n <= len(m.headers[best].folded) {
			continue
		}
		input := folded[p.keyword.Language]
		if !hasPrefix(input[:n-1], p.folded[:n-1]) {
			continue
		}
		if strings.HasPrefix(input[n-1], p.folded[n-1]+":") {
			best = i
		}
	}

	if best < 0 {
		return Keyword{}, false
	}
	return m.headers[best].keyword, true
}

// foldInput lower-cases the leading words once per declared language.
func (m *Matcher) foldInput(words []string) map[language.Tag][]string {
	limit := len(words)
	if limit > m.maxWords {
		limit = m.maxWords
	}
	result := make(map[language.Tag][]string, len(m.languages))
	for _, tag := range m.languages {
		result[tag] = foldWords(cases.Lower(tag), words[:limit])
	}
	return result
}

func foldWords(caser cases.Caser, words []string) []string {
	result := make([]string, len(words))
	for i, w := range words {
		result[i] = caser.String(w)
	}
	return result
}

func hasPrefix(words, prefix []string) bool {
	if len(prefix) > len(words) {
		return false
	}
	for i := range prefix {
		if words[i] != prefix[i] {
			return false
		}
	}
	return true
}

// normalizeWords splits every entry on whitespace so "Scenario Outline" and
// ["Scenario", "Outline"] declare the same phrase.
func normalizeWords(words []string) []string {
	var result []string
	for _, w := range words {
		result = append(result, strings.Fields(w)...)
	}
	return result
}

func parseLanguage(code string) language.Tag {
	if code == "" {
		return language.Und
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.Und
	}
	return tag
}
