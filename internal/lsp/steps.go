package lsp

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/text/cases"

	"github.com/mcncl/turbo-gherkin-ls/internal/context"
	"github.com/mcncl/turbo-gherkin-ls/internal/keywords"
	"github.com/mcncl/turbo-gherkin-ls/internal/message"
)

// shapeMarker stands in for placeholders and numbers in a step shape
const shapeMarker = "\x00"

// stepShape reduces step text to the form used for registry lookup:
// placeholders and numeric literals become a marker and words are
// case-folded and single-spaced.
func stepShape(text string) string {
	words := strings.Fields(context.ReplacePlaceholders(text, " "+shapeMarker+" "))
	caser := cases.Fold()
	for i, w := range words {
		if w == shapeMarker || isNumber(w) {
			words[i] = shapeMarker
			continue
		}
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func isNumber(word string) bool {
	digits := strings.TrimLeft(word, "+-")
	if digits == "" || !unicode.IsDigit(rune(digits[0])) {
		return false
	}
	_, err := strconv.ParseFloat(strings.Replace(digits, ",", ".", 1), 64)
	return err == nil
}

// stepLine is a line split into its keyword and the step text after it
type stepLine struct {
	keyword keywords.Keyword
	text    string
}

func parseStepLine(m *keywords.Matcher, line string) (stepLine, bool) {
	words := context.Words(line)
	kw, ok := m.FindKeyword(words)
	if !ok {
		return stepLine{}, false
	}
	return stepLine{keyword: kw, text: strings.Join(words[kw.Len():], " ")}, true
}

func splitWords(line string) []string {
	return context.Words(line)
}

func trimColon(word string) string {
	return strings.TrimSuffix(word, ":")
}

func foldEqual(a, b string) bool {
	caser := cases.Fold()
	return caser.String(a) == caser.String(b)
}

// levenshtein counts rune edits between a and b
func levenshtein(a, b string) int {
	dmp := diffmatchpatch.New()
	return dmp.DiffLevenshtein(dmp.DiffMain(a, b, false))
}

// nearMissKeyword returns the single-word step keyword closest to word, when
// it is within maxKeywordDistance edits and under half the word's length.
func nearMissKeyword(m *keywords.Matcher, word string) (keywords.Keyword, bool) {
	caser := cases.Fold()
	folded := caser.String(word)
	wordLen := utf8.RuneCountInString(folded)

	var best keywords.Keyword
	bestDistance := -1
	for _, kw := range m.StepKeywords() {
		if kw.Len() != 1 {
			continue
		}
		distance := levenshtein(folded, caser.String(kw.Words[0]))
		if distance > maxKeywordDistance || distance*2 >= wordLen {
			continue
		}
		if bestDistance < 0 || distance < bestDistance {
			best, bestDistance = kw, distance
		}
	}
	return best, bestDistance >= 0
}

// contentRange spans a line's first to last non-blank column, falling back
// to column at either edge when the line is blank.
func contentRange(line string, lineNumber, column int) message.Range {
	minColumn := context.LineMinColumn(line)
	if minColumn == 0 {
		minColumn = column
	}
	maxColumn := context.LineMaxColumn(line)
	if maxColumn == 0 {
		maxColumn = column
	}
	return message.LineRange(lineNumber, minColumn, maxColumn)
}
