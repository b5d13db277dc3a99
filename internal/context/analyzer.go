package context

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mcncl/turbo-gherkin-ls/internal/keywords"
)

// CompletionContext represents the type of completion context at a cursor position
type CompletionContext int

const (
	ContextUnknown  CompletionContext = iota
	ContextVariable                   // Cursor inside a quoted or bracketed placeholder
	ContextMidLine                    // Cursor before the end of the line content
	ContextStep                       // Line starts with a step keyword
	ContextTopLevel                   // Nothing typed that identifies a keyword
)

// placeholderPattern is only used through FindAllStringIndex, which keeps no
// state between calls.
var placeholderPattern = regexp.MustCompile(`"[^"]*"|'[^']*'|<[^\s"']*>`)

// Placeholder is a quoted or bracketed token on a line.
// Columns are 1-indexed; EndColumn is exclusive.
type Placeholder struct {
	Text          string
	StartColumn   int
	EndColumn     int
	DollarWrapped bool
}

// Open returns the opening delimiter
func (p Placeholder) Open() string {
	r, _ := utf8.DecodeRuneInString(p.Text)
	return string(r)
}

// Close returns the closing delimiter
func (p Placeholder) Close() string {
	r, _ := utf8.DecodeLastRuneInString(p.Text)
	return string(r)
}

// Inner returns the token text without its delimiters
func (p Placeholder) Inner() string {
	open, close := len(p.Open()), len(p.Close())
	if len(p.Text) < open+close {
		return ""
	}
	return p.Text[open : len(p.Text)-close]
}

// Contains reports whether a 1-indexed column touches the token span
func (p Placeholder) Contains(column int) bool {
	return p.StartColumn <= column && column <= p.EndColumn
}

// IsQuoted reports whether the token uses quote delimiters rather than angle brackets
func (p Placeholder) IsQuoted() bool {
	open := p.Open()
	return open == `"` || open == "'"
}

// FindPlaceholders scans a line left to right for non-overlapping placeholder tokens.
func FindPlaceholders(line string) []Placeholder {
	matches := placeholderPattern.FindAllStringIndex(line, -1)
	if len(matches) == 0 {
		return nil
	}

	result := make([]Placeholder, 0, len(matches))
	for _, m := range matches {
		text := line[m[0]:m[1]]
		start := utf8.RuneCountInString(line[:m[0]]) + 1
		result = append(result, Placeholder{
			Text:          text,
			StartColumn:   start,
			EndColumn:     start + utf8.RuneCountInString(text),
			DollarWrapped: isDollarWrapped(text),
		})
	}
	return result
}

// PlaceholderAt returns the first placeholder whose span contains column.
func PlaceholderAt(line string, column int) (Placeholder, bool) {
	for _, p := range FindPlaceholders(line) {
		if p.Contains(column) {
			return p, true
		}
	}
	return Placeholder{}, false
}

// ReplacePlaceholders substitutes marker for every placeholder token
func ReplacePlaceholders(line, marker string) string {
	return placeholderPattern.ReplaceAllLiteralString(line, marker)
}

// isDollarWrapped matches tokens shaped like "$name$": a dollar just inside
// both delimiters with at least one character between them.
func isDollarWrapped(text string) bool {
	runes := []rune(text)
	if len(runes) < 5 {
		return false
	}
	return runes[1] == '$' && runes[len(runes)-2] == '$'
}

// LineMinColumn returns the 1-indexed column of the first non-whitespace
// character, or 0 for a blank line.
func LineMinColumn(line string) int {
	column := 1
	for _, r := range line {
		if !unicode.IsSpace(r) {
			return column
		}
		column++
	}
	return 0
}

// LineMaxColumn returns the column just after the last non-whitespace
// character, or 0 for a blank line.
func LineMaxColumn(line string) int {
	trimmed := strings.TrimRightFunc(line, unicode.IsSpace)
	if strings.TrimSpace(trimmed) == "" {
		return 0
	}
	return utf8.RuneCountInString(trimmed) + 1
}

// Words splits a line into whitespace-delimited words
func Words(line string) []string {
	return strings.Fields(line)
}

// PositionContext provides context information about a cursor position
type PositionContext struct {
	CurrentLine string
	LineNumber  int // 1-indexed
	Column      int // 1-indexed
}

// ContextInfo provides detailed information about the completion context
type ContextInfo struct {
	Type        CompletionContext
	Placeholder Placeholder      // set for ContextVariable
	Keyword     keywords.Keyword // set for ContextStep
	MinColumn   int
	MaxColumn   int
}

// Analyzer classifies cursor positions on a single line
type Analyzer struct {
	matcher *keywords.Matcher
}

// NewAnalyzer creates a new context analyzer over a keyword set
func NewAnalyzer(matcher *keywords.Matcher) *Analyzer {
	return &Analyzer{matcher: matcher}
}

// AnalyzeContext determines the completion context at the given position.
// The checks run in priority order and the first that applies wins.
func (a *Analyzer) AnalyzeContext(posCtx *PositionContext) *ContextInfo {
	if posCtx == nil {
		return &ContextInfo{Type: ContextUnknown}
	}

	line := posCtx.CurrentLine
	info := &ContextInfo{
		MinColumn: LineMinColumn(line),
		MaxColumn: LineMaxColumn(line),
	}

	if p, ok := PlaceholderAt(line, posCtx.Column); ok {
		info.Type = ContextVariable
		info.Placeholder = p
		return info
	}

	if info.MaxColumn != 0 && posCtx.Column < info.MaxColumn {
		info.Type = ContextMidLine
		return info
	}

	if kw, ok := a.matcher.FindKeyword(Words(line)); ok {
		info.Type = ContextStep
		info.Keyword = kw
		return info
	}

	info.Type = ContextTopLevel
	return info
}

// IsInPlaceholder checks if the cursor is positioned inside a placeholder token
func (info *ContextInfo) IsInPlaceholder() bool {
	return info.Type == ContextVariable
}

// IsAtTopLevel checks if no keyword was recognized on the line
func (info *ContextInfo) IsAtTopLevel() bool {
	return info.Type == ContextTopLevel
}

// IsInStepContext checks if the line starts with a step keyword
func (info *ContextInfo) IsInStepContext() bool {
	return info.Type == ContextStep
}
