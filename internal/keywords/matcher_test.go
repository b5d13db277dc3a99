package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func steps(phrases ...string) []PhraseSpec {
	specs := make([]PhraseSpec, 0, len(phrases))
	for _, p := range phrases {
		specs = append(specs, PhraseSpec{Kind: KindStep, Words: []string{p}})
	}
	return specs
}

func TestMatcher_FindKeyword(t *testing.T) {
	m := NewMatcher(steps("given", "when", "then", "and", "given that"))

	tests := []struct {
		name     string
		words    []string
		expected string
		found    bool
	}{
		{"single word", []string{"when", "something", "happens"}, "when", true},
		{"case insensitive", []string{"WHEN", "x"}, "when", true},
		{"longest wins", []string{"Given", "that", "x"}, "given that", true},
		{"shorter when second word differs", []string{"Given", "this"}, "given", true},
		{"keyword only", []string{"then"}, "then", true},
		{"no match", []string{"whence", "x"}, "", false},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw, ok := m.FindKeyword(tt.words)
			require.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, kw.Text())
		})
	}
}

func TestMatcher_TieBreakByDeclarationOrder(t *testing.T) {
	m := NewMatcher([]PhraseSpec{
		{Language: "en", Kind: KindStep, Words: []string{"Given"}},
		{Language: "en-GB", Kind: KindStep, Words: []string{"given"}},
	})

	kw, ok := m.FindKeyword([]string{"given", "x"})
	require.True(t, ok)
	assert.Equal(t, "Given", kw.Text())
	assert.Equal(t, "en", kw.Language.String())
}

func TestMatcher_Localized(t *testing.T) {
	m := NewMatcher([]PhraseSpec{
		{Language: "en", Kind: KindStep, Words: []string{"When"}},
		{Language: "ru", Kind: KindStep, Words: []string{"Когда"}},
		{Language: "ru", Kind: KindStep, Words: []string{"И"}},
	})

	kw, ok := m.FindKeyword([]string{"КОГДА", "я", "нажимаю"})
	require.True(t, ok)
	assert.Equal(t, "Когда", kw.Text())
	assert.Equal(t, "Когда", kw.Capitalized())

	kw, ok = m.FindKeyword([]string{"и", "я"})
	require.True(t, ok)
	assert.Equal(t, "И", kw.Text())
}

func TestMatcher_SkipsWildcardAndEmpty(t *testing.T) {
	m := NewMatcher(steps("*", "", "  ", "given"))
	assert.Equal(t, 1, m.Len())

	_, ok := m.FindKeyword([]string{"*", "x"})
	assert.False(t, ok)
}

func TestMatcher_Nil(t *testing.T) {
	var m *Matcher
	_, ok := m.FindKeyword([]string{"given"})
	assert.False(t, ok)
	_, ok = m.FindHeader("Scenario: x")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}

func TestMatcher_FindHeader(t *testing.T) {
	m := NewMatcher([]PhraseSpec{
		{Language: "en", Kind: KindScenario, Words: []string{"Scenario"}},
		{Language: "en", Kind: KindOutline, Words: []string{"Scenario Outline"}},
		{Language: "en", Kind: KindFeature, Words: []string{"Feature"}},
		{Language: "ru", Kind: KindScenario, Words: []string{"Сценарий"}},
		{Language: "en", Kind: KindStep, Words: []string{"Given"}},
	})

	tests := []struct {
		line     string
		expected string
		kind     Kind
		found    bool
	}{
		{"Feature: login", "Feature", KindFeature, true},
		{"  Scenario: first", "Scenario", KindScenario, true},
		{"Scenario Outline: many", "Scenario Outline", KindOutline, true},
		{"scenario:", "Scenario", KindScenario, true},
		{"Сценарий: вход", "Сценарий", KindScenario, true},
		{"Scenario without colon", "", KindStep, false},
		{"Given: x", "", KindStep, false},
		{"", "", KindStep, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			kw, ok := m.FindHeader(tt.line)
			require.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.expected, kw.Text())
				assert.Equal(t, tt.kind, kw.Kind)
			}
		})
	}
}

func TestKeyword_Capitalized(t *testing.T) {
	m := NewMatcher(steps("when"))
	kw, ok := m.FindKeyword([]string{"when"})
	require.True(t, ok)
	assert.Equal(t, "When", kw.Capitalized())
	assert.Equal(t, "", Keyword{}.Capitalized())
}

func TestKindForCategory(t *testing.T) {
	kind, ok := KindForCategory("scenarioOutline")
	require.True(t, ok)
	assert.Equal(t, KindOutline, kind)

	kind, ok = KindForCategory("but")
	require.True(t, ok)
	assert.Equal(t, KindStep, kind)

	_, ok = KindForCategory("native")
	assert.False(t, ok)
}

func TestMatcher_LongestPrefixProperty(t *testing.T) {
	vocabulary := []string{"given", "when", "then", "and", "that", "i", "a"}

	rapid.Check(t, func(rt *rapid.T) {
		phraseGen := rapid.SliceOfN(rapid.SampledFrom(vocabulary), 1, 3)
		phrases := rapid.SliceOfN(phraseGen, 0, 6).Draw(rt, "phrases")
		words := rapid.SliceOfN(rapid.SampledFrom(vocabulary), 0, 5).Draw(rt, "words")

		specs := make([]PhraseSpec, 0, len(phrases))
		for _, p := range phrases {
			specs = append(specs, PhraseSpec{Kind: KindStep, Words: p})
		}
		m := NewMatcher(specs)

		// reference: first declared phrase of maximal length among the matches
		expected := -1
		for i, p := range phrases {
			if len(p) > len(words) || strings.Join(words[:len(p)], " ") != strings.Join(p, " ") {
				continue
			}
			if expected < 0 || len(p) > len(phrases[expected]) {
				expected = i
			}
		}

		kw, ok := m.FindKeyword(words)
		if expected < 0 {
			if ok {
				rt.Fatalf("expected no match for %v, got %q", words, kw.Text())
			}
			return
		}
		if !ok {
			rt.Fatalf("expected %v to match %v", words, phrases[expected])
		}
		if kw.Text() != strings.Join(phrases[expected], " ") {
			rt.Fatalf("expected %q, got %q", strings.Join(phrases[expected], " "), kw.Text())
		}
	})
}
