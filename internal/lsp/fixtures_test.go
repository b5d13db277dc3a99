package lsp

import (
	"testing"

	"github.com/goccy/go-json"
	"go.lsp.dev/uri"
	"go.uber.org/zap/zaptest"

	"github.com/mcncl/turbo-gherkin-ls/internal/message"
)

const testURI = uri.URI("file:///specs/login.feature")

const testKeywords = `{
	"en": {
		"feature": "Feature",
		"background": "Background",
		"scenario": "Scenario",
		"scenarioOutline": "Scenario Outline",
		"examples": "Examples",
		"given": ["* ", "Given "],
		"when": "When ",
		"then": "Then ",
		"and": "And ",
		"but": "But "
	},
	"ru": {
		"scenario": "Сценарий",
		"given": "Дано ",
		"when": "Когда "
	}
}`

const testSteps = `{
	"I open the page": {
		"label": "I open the page",
		"keyword": "Given",
		"insertText": "I open the page",
		"documentation": "Opens the start page",
		"section": "Navigation"
	},
	"I type \"text\" into <field>": {
		"label": "I type text into field",
		"keyword": "When",
		"insertText": "I type \"${1:text}\" into <${2:field}>",
		"documentation": "Types text into a field",
		"section": "Input"
	},
	"I wait 5 seconds": {
		"label": "I wait N seconds",
		"keyword": "And",
		"insertText": "I wait 1 seconds",
		"documentation": "Pauses the scenario",
		"kind": 0
	},
	"internal reset": {
		"label": "internal reset",
		"keyword": "Given",
		"insertText": "internal reset"
	}
}`

const testVariables = `{
	"user": {"name": "user", "value": "admin"},
	"password": "secret"
}`

const testImports = `{
	"common": "/specs/common.feature",
	"login": {"uri": "file:///specs/login-steps.feature", "lineNumber": 4}
}`

// newTestDispatcher returns a dispatcher configured through the same
// messages a host sends.
func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()

	d := NewDispatcher(WithLogger(zaptest.NewLogger(t)))
	configure := []message.Message{
		message.SetMatchers{Data: json.RawMessage(testKeywords)},
		message.SetSteplist{Data: json.RawMessage(testSteps)},
		message.SetVariables{Data: json.RawMessage(testVariables)},
		message.SetImports{Data: json.RawMessage(testImports)},
	}
	for _, msg := range configure {
		if resp := d.Process(msg); resp != nil {
			t.Fatalf("configuration message %s returned a response", msg.Type())
		}
	}
	return d
}

func newTestState(t *testing.T) *State {
	t.Helper()
	return newTestDispatcher(t).State()
}

func newTestDocument(lines ...string) *Document {
	dm := NewDocumentManager()
	return dm.UpdateDocument(testURI, 1, lines)
}
