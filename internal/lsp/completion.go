package lsp

import (
	"go.uber.org/zap"

	"github.com/mcncl/turbo-gherkin-ls/internal/context"
	"github.com/mcncl/turbo-gherkin-ls/internal/message"
	"github.com/mcncl/turbo-gherkin-ls/internal/registry"
)

// CompletionProvider handles context-aware completion
type CompletionProvider struct {
	logger *zap.Logger
}

// NewCompletionProvider creates a new completion provider
func NewCompletionProvider(logger *zap.Logger) *CompletionProvider {
	return &CompletionProvider{logger: logger}
}

// GetCompletions returns suggestions for a cursor on a single line.
// It only reads state.
func (cp *CompletionProvider) GetCompletions(state *State, posCtx *context.PositionContext) []message.CompletionItem {
	if posCtx == nil {
		return []message.CompletionItem{}
	}

	info := context.NewAnalyzer(state.Matcher).AnalyzeContext(posCtx)

	cp.logger.Debug("completion context",
		zap.Int("line", posCtx.LineNumber),
		zap.Int("column", posCtx.Column),
		zap.Int("context", int(info.Type)))

	switch info.Type {
	case context.ContextVariable:
		return cp.getVariableCompletions(state, posCtx, info.Placeholder)
	case context.ContextMidLine:
		return emptyCompletion(posCtx.LineNumber, posCtx.Column)
	case context.ContextStep:
		return cp.getStepCompletions(state, info, posCtx)
	case context.ContextTopLevel:
		return cp.getTopLevelCompletions(state, posCtx)
	default:
		return []message.CompletionItem{}
	}
}

// getVariableCompletions offers every variable inside the placeholder under the
// cursor, keeping the placeholder's own delimiters.
func (cp *CompletionProvider) getVariableCompletions(state *State, posCtx *context.PositionContext, p context.Placeholder) []message.CompletionItem {
	dollar := ""
	if p.DollarWrapped {
		dollar = "$"
	}
	tokenRange := message.LineRange(posCtx.LineNumber, p.StartColumn, p.EndColumn)

	vars := state.Variables.All()
	items := make([]message.CompletionItem, 0, len(vars))
	for _, v := range vars {
		name := dollar + v.Name + dollar
		items = append(items, message.CompletionItem{
			Label:      `"` + name + `" = ` + v.Value,
			Kind:       message.CompletionKindVariable,
			FilterText: p.Text + name,
			InsertText: p.Open() + name + p.Close(),
			Range:      tokenRange,
		})
	}
	return items
}

// emptyCompletion keeps the editor quiet while the cursor is inside text
func emptyCompletion(lineNumber, column int) []message.CompletionItem {
	return []message.CompletionItem{{
		Label:      "",
		Kind:       message.CompletionKindFunction,
		InsertText: "",
		Range:      message.LineRange(lineNumber, column-1, column),
	}}
}

func (cp *CompletionProvider) getStepCompletions(state *State, info *context.ContextInfo, posCtx *context.PositionContext) []message.CompletionItem {
	lineRange := contentRange(posCtx.CurrentLine, posCtx.LineNumber, posCtx.Column)
	keyword := info.Keyword.Capitalized()

	steps := state.Steps.Documented()
	items := make([]message.CompletionItem, 0, len(steps))
	for _, step := range steps {
		item := stepCompletion(step, keyword, lineRange)
		item.FilterText = keyword + " " + step.Key
		items = append(items, item)
	}
	return items
}

func (cp *CompletionProvider) getTopLevelCompletions(state *State, posCtx *context.PositionContext) []message.CompletionItem {
	lineRange := contentRange(posCtx.CurrentLine, posCtx.LineNumber, posCtx.Column)

	steps := state.Steps.Documented()
	items := make([]message.CompletionItem, 0, len(state.Metatags)+len(steps))
	for _, tag := range state.Metatags {
		items = append(items, message.CompletionItem{
			Label:      tag,
			Kind:       message.CompletionKindKeyword,
			InsertText: tag + "\n",
			Range:      lineRange,
		})
	}
	for _, step := range steps {
		item := stepCompletion(step, step.Keyword, lineRange)
		item.FilterText = step.Key
		items = append(items, item)
	}
	return items
}

func stepCompletion(step registry.StepDefinition, keyword string, lineRange message.Range) message.CompletionItem {
	kind := message.CompletionKindFunction
	if step.Kind != 0 {
		kind = message.CompletionItemKind(step.Kind)
	}
	return message.CompletionItem{
		Label:         step.Label,
		Kind:          kind,
		Detail:        step.Section,
		Documentation: step.Documentation,
		SortText:      step.SortText,
		InsertText:    keyword + " " + step.InsertText + "\n",
		Range:         lineRange,
	}
}
