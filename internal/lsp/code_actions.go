package lsp

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/mcncl/turbo-gherkin-ls/internal/context"
	"github.com/mcncl/turbo-gherkin-ls/internal/message"
	"github.com/mcncl/turbo-gherkin-ls/internal/registry"
)

// CodeActionQuickFix is the kind of every proposed action
const CodeActionQuickFix = "quickfix"

const (
	maxKeywordDistance = 2
	maxStepSuggestions = 3
)

// GetCodeActions proposes fixes for the flagged lines in rng. markers are the
// diagnostics the caller already holds; without them the document is checked
// again. Documents are never modified.
func GetCodeActions(state *State, doc *Document, rng message.Range, markers []message.Diagnostic) []message.CodeAction {
	if rng.StartLineNumber == 0 && rng.EndLineNumber == 0 {
		rng = message.Range{StartLineNumber: 1, StartColumn: 1, EndLineNumber: doc.LineCount(), EndColumn: 1}
	}

	if len(markers) == 0 {
		markers = CheckSyntax(state, doc)
	}

	actions := []message.CodeAction{}
	for _, d := range markers {
		if !rng.ContainsLine(d.StartLineNumber) {
			continue
		}
		actions = append(actions, stepFixes(state, doc.LineContent(d.StartLineNumber), d)...)
	}
	return append(actions, importFixes(state, doc, rng)...)
}

func stepFixes(state *State, line string, d message.Diagnostic) []message.CodeAction {
	if step, ok := parseStepLine(state.Matcher, line); ok {
		return nearestStepFixes(state, line, step, d)
	}

	var actions []message.CodeAction
	if action, ok := nearMissKeywordFix(state, line, d); ok {
		actions = append(actions, action)
	}
	if action, ok := missingKeywordFix(state, line, d); ok {
		actions = append(actions, action)
	}
	return actions
}

// nearMissKeywordFix replaces a misspelt leading word with the closest
// single-word step keyword.
func nearMissKeywordFix(state *State, line string, d message.Diagnostic) (message.CodeAction, bool) {
	words := splitWords(line)
	if len(words) == 0 {
		return message.CodeAction{}, false
	}
	word := words[0]
	best, ok := nearMissKeyword(state.Matcher, word)
	if !ok {
		return message.CodeAction{}, false
	}

	replacement := best.Capitalized()
	start := context.LineMinColumn(line)
	return message.CodeAction{
		Title:       fmt.Sprintf(`Replace "%s" with "%s"`, word, replacement),
		Kind:        CodeActionQuickFix,
		Diagnostics: []message.Diagnostic{d},
		Edits: []message.TextEdit{{
			Range: message.LineRange(d.StartLineNumber, start, start+utf8.RuneCountInString(word)),
			Text:  replacement,
		}},
		IsPreferred: true,
	}, true
}

// missingKeywordFix prefixes a bare step with its declared keyword
func missingKeywordFix(state *State, line string, d message.Diagnostic) (message.CodeAction, bool) {
	step, ok := state.FindStep(strings.TrimSpace(line))
	if !ok || step.Keyword == "" {
		return message.CodeAction{}, false
	}

	start := context.LineMinColumn(line)
	return message.CodeAction{
		Title:       fmt.Sprintf(`Insert keyword "%s"`, step.Keyword),
		Kind:        CodeActionQuickFix,
		Diagnostics: []message.Diagnostic{d},
		Edits: []message.TextEdit{{
			Range: message.LineRange(d.StartLineNumber, start, start),
			Text:  step.Keyword + " ",
		}},
		IsPreferred: true,
	}, true
}

// nearestStepFixes proposes the documented steps closest in shape to an
// unknown step, keeping the keyword as typed.
func nearestStepFixes(state *State, line string, step stepLine, d message.Diagnostic) []message.CodeAction {
	shape := stepShape(step.text)
	limit := utf8.RuneCountInString(shape) / 2

	type candidate struct {
		def      registry.StepDefinition
		distance int
	}
	var candidates []candidate
	for _, def := range state.Steps.Documented() {
		distance := levenshtein(shape, stepShape(def.Key))
		if distance <= limit {
			candidates = append(candidates, candidate{def: def, distance: distance})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > maxStepSuggestions {
		candidates = candidates[:maxStepSuggestions]
	}

	typed := strings.Join(splitWords(line)[:step.keyword.Len()], " ")
	lineRange := contentRange(line, d.StartLineNumber, 1)

	actions := make([]message.CodeAction, 0, len(candidates))
	for _, c := range candidates {
		actions = append(actions, message.CodeAction{
			Title:       fmt.Sprintf(`Replace with "%s"`, c.def.Label),
			Kind:        CodeActionQuickFix,
			Diagnostics: []message.Diagnostic{d},
			Edits: []message.TextEdit{{
				Range: lineRange,
				Text:  typed + " " + c.def.Key,
			}},
		})
	}
	return actions
}

// importFixes adds a declaration for every reference in rng whose name is
// known to the import table but not imported by the document.
func importFixes(state *State, doc *Document, rng message.Range) []message.CodeAction {
	links := findImportLinks(state, doc)
	caser := cases.Fold()

	declared := make(map[string]bool)
	for _, l := range links {
		if l.declared {
			declared[caser.String(l.name())] = true
		}
	}

	directive := "import"
	if len(state.ImportDirectives) > 0 {
		directive = state.ImportDirectives[0]
	}

	var actions []message.CodeAction
	for _, l := range links {
		key := caser.String(l.name())
		if l.declared || declared[key] || !rng.ContainsLine(l.lineNumber) {
			continue
		}
		declared[key] = true
		actions = append(actions, message.CodeAction{
			Title: fmt.Sprintf(`Add import "%s"`, l.name()),
			Kind:  CodeActionQuickFix,
			Edits: []message.TextEdit{{
				Range: message.LineRange(1, 1, 1),
				Text:  fmt.Sprintf(`%s "%s"`, directive, l.name()) + "\n",
			}},
		})
	}
	return actions
}
