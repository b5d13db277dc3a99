package lsp

import (
	"testing"

	"github.com/goccy/go-json"

	"github.com/mcncl/turbo-gherkin-ls/internal/message"
)

var loginFeature = []string{
	`Feature: Login`,
	`  As a user I want to log in`,
	``,
	`  Background:`,
	`    Given I open the page`,
	``,
	`  Scenario: Successful login`,
	`    When I type "admin" into <login>`,
	`    And I wait 10 seconds`,
	`    Then I see something odd`,
	`    Wen I open the page`,
	`    I open the page`,
	`    | a | b |`,
	`    # comment`,
	`    try`,
	`      Given I open the page`,
}

func flaggedLines(diagnostics []message.Diagnostic) []int {
	lines := make([]int, 0, len(diagnostics))
	for _, d := range diagnostics {
		lines = append(lines, d.StartLineNumber)
	}
	return lines
}

func TestCheckSyntax(t *testing.T) {
	state := newTestState(t)
	diagnostics := CheckSyntax(state, newTestDocument(loginFeature...))

	want := []int{10, 11, 12}
	got := flaggedLines(diagnostics)
	if len(got) != len(want) {
		t.Fatalf("expected diagnostics on lines %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("diagnostic %d on line %d, want %d", i, got[i], want[i])
		}
	}

	first := diagnostics[0]
	if first.Severity != message.SeverityError {
		t.Errorf("expected error severity, got %d", first.Severity)
	}
	if first.Message != "Syntax error" {
		t.Errorf("expected default message, got %q", first.Message)
	}
	if first.StartColumn != 5 || first.EndColumn != 29 {
		t.Errorf("expected columns 5..29, got %d..%d", first.StartColumn, first.EndColumn)
	}
}

func TestCheckSyntax_KeywordThenUnknownStep(t *testing.T) {
	d := NewDispatcher()
	d.Process(message.SetMatchers{Data: json.RawMessage(`[["Given"], ["When"]]`)})
	d.Process(message.SetSteplist{Data: json.RawMessage(`{"foo": {"label": "foo", "keyword": "When", "insertText": "foo"}}`)})

	diagnostics := CheckSyntax(d.State(), newTestDocument(`Given "x" is 1`, `When foo`))
	got := flaggedLines(diagnostics)
	if len(got) != 1 || got[0] != 1 {
		t.Fatalf("expected only line 1 flagged, got %v", got)
	}
}

func TestCheckSyntax_StructuralLines(t *testing.T) {
	state := newTestState(t)
	doc := newTestDocument(
		`@smoke @login`,
		`# language: en`,
		`import "common"`,
		`Feature: Structure`,
		`  free description text`,
		`  Scenario Outline: Docstrings`,
		`    Given I open the page`,
		`      """`,
		`      anything goes here`,
		`      """`,
		"      ```",
		`      and here`,
		"      ```",
		`    Examples:`,
		`      | field |`,
		`  Сценарий: Русский`,
		`    Когда I open the page`,
		`    except:`,
	)

	if diagnostics := CheckSyntax(state, doc); len(diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got lines %v", flaggedLines(diagnostics))
	}
}

func TestCheckSyntax_Descriptions(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  []int
	}{
		{
			name:  "misspelt first step after scenario",
			lines: []string{`Scenario: s`, `  Wen I open the page`},
			want:  []int{2},
		},
		{
			name:  "text after scenario is not description",
			lines: []string{`Scenario: s`, `  some free text`, `  Given I open the page`},
			want:  []int{2},
		},
		{
			name:  "feature description ends at first step",
			lines: []string{`Feature: f`, `  this is a description`, `  Given I open the page`, `  this is not`},
			want:  []int{4},
		},
		{
			name:  "feature description ends at next header",
			lines: []string{`Feature: f`, `  described`, `  Scenario: s`, `  not described`},
			want:  []int{4},
		},
		{
			name:  "misspelt keyword inside feature description",
			lines: []string{`Feature: f`, `  described`, `  Wen I open the page`},
			want:  []int{3},
		},
	}

	state := newTestState(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := flaggedLines(CheckSyntax(state, newTestDocument(tt.lines...)))
			if len(got) != len(tt.want) {
				t.Fatalf("expected diagnostics on lines %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("diagnostic %d on line %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestCheckSyntax_KeywordWithoutStep(t *testing.T) {
	state := newTestState(t)
	got := flaggedLines(CheckSyntax(state, newTestDocument(`Given`)))
	if len(got) != 1 {
		t.Errorf("expected a bare keyword to be flagged, got %v", got)
	}
}

func TestCheckSyntax_ConfiguredMessage(t *testing.T) {
	d := newTestDispatcher(t)
	d.Process(message.SetMessages{Data: json.RawMessage(`{"syntaxMsg": "Синтаксическая ошибка"}`)})

	diagnostics := CheckSyntax(d.State(), newTestDocument(`nonsense`))
	if len(diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", len(diagnostics))
	}
	if diagnostics[0].Message != "Синтаксическая ошибка" {
		t.Errorf("expected configured message, got %q", diagnostics[0].Message)
	}
}

func TestCheckSyntax_EmptyDocument(t *testing.T) {
	diagnostics := CheckSyntax(newTestState(t), newTestDocument())
	if diagnostics == nil {
		t.Fatal("expected an empty, non-nil slice")
	}
	if len(diagnostics) != 0 {
		t.Errorf("expected no diagnostics, got %d", len(diagnostics))
	}
}
