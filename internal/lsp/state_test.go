package lsp

import (
	"testing"

	"github.com/mcncl/turbo-gherkin-ls/internal/registry"
)

func TestStepShape(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		same bool
	}{
		{"placeholders of any kind", `I type "admin" into <login>`, `I type 'x' into "field"`, true},
		{"numbers", "I wait 10 seconds", "I wait 2,5 seconds", true},
		{"number and placeholder", "I wait 10 seconds", `I wait "ten" seconds`, true},
		{"case and spacing", "I   OPEN the Page", "i open the page", true},
		{"different words", "I open the page", "I close the page", false},
		{"word with digits", "I open page2", "I open page3", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stepShape(tt.a) == stepShape(tt.b)
			if got != tt.same {
				t.Errorf("stepShape(%q) == stepShape(%q) is %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}

func TestIsNumber(t *testing.T) {
	tests := map[string]bool{
		"10":    true,
		"-3":    true,
		"2.5":   true,
		"2,5":   true,
		"+1":    true,
		"abc":   false,
		"-":     false,
		"1a":    false,
		".5":    false,
		"":      false,
		"1,2,3": false,
	}
	for word, want := range tests {
		if got := isNumber(word); got != want {
			t.Errorf("isNumber(%q) = %v, want %v", word, got, want)
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"when", "when", 0},
		{"wen", "when", 1},
		{"gven", "given", 1},
		{"", "and", 3},
		{"когда", "кагда", 1},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestState_FindStep(t *testing.T) {
	state := newTestState(t)

	tests := []struct {
		text  string
		found bool
		key   string
	}{
		{"I open the page", true, "I open the page"},
		{`i TYPE "admin" into <login>`, true, `I type "text" into <field>`},
		{"I wait 30 seconds", true, "I wait 5 seconds"},
		{"internal reset", true, "internal reset"},
		{"I see something odd", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			def, found := state.FindStep(tt.text)
			if found != tt.found {
				t.Fatalf("FindStep(%q) found = %v, want %v", tt.text, found, tt.found)
			}
			if found && def.Key != tt.key {
				t.Errorf("FindStep(%q) key = %q, want %q", tt.text, def.Key, tt.key)
			}
		})
	}
}

func TestState_FindStepFirstShapeWins(t *testing.T) {
	state := NewState().WithSteps(registry.NewSteps([]registry.StepDefinition{
		{Key: "I wait 5 seconds", Label: "first"},
		{Key: "I wait <n> seconds", Label: "second"},
	}))

	def, found := state.FindStep("I wait 1 seconds")
	if !found {
		t.Fatal("expected a step")
	}
	if def.Label != "first" {
		t.Errorf("expected the first declared step, got %q", def.Label)
	}
}

func TestState_IsMetatag(t *testing.T) {
	state := NewState()

	tests := map[string]bool{
		"try":         true,
		"  Try:":      true,
		"EXCEPT":      true,
		"попытка":     true,
		"Исключение:": true,
		"try again":   false,
		"finally":     false,
		"":            false,
	}
	for line, want := range tests {
		if got := state.IsMetatag(line); got != want {
			t.Errorf("IsMetatag(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestState_MessageFallback(t *testing.T) {
	state := NewState()
	if got := state.Message(MessageSyntaxError); got != "Syntax error" {
		t.Errorf("expected built-in text, got %q", got)
	}

	state = state.WithMessages(map[string]string{MessageSyntaxError: "Синтаксическая ошибка"})
	if got := state.Message(MessageSyntaxError); got != "Синтаксическая ошибка" {
		t.Errorf("expected configured text, got %q", got)
	}

	state = state.WithMessages(nil)
	if got := state.Message(MessageSyntaxError); got != "Syntax error" {
		t.Errorf("expected fallback after clearing, got %q", got)
	}
}

func TestState_WithLeavesOriginalUntouched(t *testing.T) {
	original := NewState()
	next := original.WithMetatags([]string{"retry"})

	if next.Generation != original.Generation+1 {
		t.Errorf("expected generation %d, got %d", original.Generation+1, next.Generation)
	}
	if !original.IsMetatag("try") {
		t.Error("original snapshot lost its metatags")
	}
	if next.IsMetatag("try") || !next.IsMetatag("retry") {
		t.Error("new snapshot did not replace metatags")
	}
}
