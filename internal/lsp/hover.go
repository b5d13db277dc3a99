package lsp

import (
	"github.com/mcncl/turbo-gherkin-ls/internal/context"
	"github.com/mcncl/turbo-gherkin-ls/internal/message"
)

// GetLineHover describes the variable under the cursor, or else the step the
// line invokes.
func GetLineHover(state *State, doc *Document, lineNumber, column int) (*message.Hover, bool) {
	line := doc.LineContent(lineNumber)

	if p, ok := context.PlaceholderAt(line, column); ok {
		if v, found := state.Variables.Lookup(p.Inner()); found {
			return &message.Hover{
				Range: message.LineRange(lineNumber, p.StartColumn, p.EndColumn),
				Contents: []message.MarkdownString{
					{Value: "`" + v.Name + "` = " + v.Value},
				},
			}, true
		}
	}

	step, ok := parseStepLine(state.Matcher, line)
	if !ok || step.text == "" {
		return nil, false
	}
	def, found := state.FindStep(step.text)
	if !found {
		return nil, false
	}

	contents := []message.MarkdownString{{Value: "**" + def.Label + "**"}}
	if def.Documentation != "" {
		contents = append(contents, message.MarkdownString{Value: def.Documentation})
	}
	if def.Section != "" {
		contents = append(contents, message.MarkdownString{Value: "_" + def.Section + "_"})
	}

	return &message.Hover{
		Range:    contentRange(line, lineNumber, column),
		Contents: contents,
	}, true
}
