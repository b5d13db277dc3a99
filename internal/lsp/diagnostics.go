package lsp

import (
	"strings"

	"github.com/mcncl/turbo-gherkin-ls/internal/context"
	"github.com/mcncl/turbo-gherkin-ls/internal/keywords"
	"github.com/mcncl/turbo-gherkin-ls/internal/message"
)

// lineClass is the structural role of one document line
type lineClass int

const (
	lineBlank lineClass = iota
	lineComment
	lineTag
	lineTable
	lineDocString // a fence or the text between fences
	lineMetatag
	lineImport
	lineHeader
	lineDescription
	lineStep
	lineUnknown
)

// classifyLines walks a document once and tags every line. Description
// lines are the free text after a Feature or Rule header, up to the next
// header or step. A line that opens with a misspelt step keyword is never
// description.
func classifyLines(state *State, doc *Document) []lineClass {
	classes := make([]lineClass, doc.LineCount())
	fence := ""
	inDescription := false

	for i, line := range doc.Lines {
		trimmed := strings.TrimSpace(line)

		if fence != "" {
			classes[i] = lineDocString
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}

		switch {
		case trimmed == "":
			classes[i] = lineBlank
		case strings.HasPrefix(trimmed, `"""`):
			classes[i] = lineDocString
			fence = `"""`
		case strings.HasPrefix(trimmed, "```"):
			classes[i] = lineDocString
			fence = "```"
		case strings.HasPrefix(trimmed, "#"):
			classes[i] = lineComment
		case strings.HasPrefix(trimmed, "@"):
			classes[i] = lineTag
		case strings.HasPrefix(trimmed, "|"):
			classes[i] = lineTable
		case state.IsMetatag(trimmed):
			classes[i] = lineMetatag
		case isImportLine(state, trimmed):
			classes[i] = lineImport
		default:
			if header, ok := state.Matcher.FindHeader(trimmed); ok {
				classes[i] = lineHeader
				inDescription = header.Kind == keywords.KindFeature || header.Kind == keywords.KindRule
			} else if _, ok := parseStepLine(state.Matcher, trimmed); ok {
				classes[i] = lineStep
				inDescription = false
			} else if inDescription && !startsWithNearMiss(state, trimmed) {
				classes[i] = lineDescription
			} else {
				classes[i] = lineUnknown
			}
		}
	}
	return classes
}

// CheckSyntax returns one diagnostic per line that is neither structural
// text nor a keyword followed by a registered step.
func CheckSyntax(state *State, doc *Document) []message.Diagnostic {
	diagnostics := []message.Diagnostic{}
	text := state.Message(MessageSyntaxError)

	for i, class := range classifyLines(state, doc) {
		switch class {
		case lineStep:
			if !validStep(state, doc.Lines[i]) {
				diagnostics = append(diagnostics, syntaxDiagnostic(doc.Lines[i], i+1, text))
			}
		case lineUnknown:
			diagnostics = append(diagnostics, syntaxDiagnostic(doc.Lines[i], i+1, text))
		}
	}
	return diagnostics
}

func startsWithNearMiss(state *State, line string) bool {
	words := splitWords(line)
	if len(words) == 0 {
		return false
	}
	_, ok := nearMissKeyword(state.Matcher, words[0])
	return ok
}

func validStep(state *State, line string) bool {
	step, ok := parseStepLine(state.Matcher, line)
	if !ok || step.text == "" {
		return false
	}
	_, found := state.FindStep(step.text)
	return found
}

func syntaxDiagnostic(line string, lineNumber int, text string) message.Diagnostic {
	return message.Diagnostic{
		Severity:        message.SeverityError,
		Message:         text,
		StartLineNumber: lineNumber,
		StartColumn:     context.LineMinColumn(line),
		EndLineNumber:   lineNumber,
		EndColumn:       context.LineMaxColumn(line),
	}
}
