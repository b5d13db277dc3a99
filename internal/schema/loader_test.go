package schema

import (
	"strings"
	"testing"
)

func TestValidateJSON_ValidPayloads(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		kind    Kind
		payload string
	}{
		{KindKeywords, `[["given"], ["when"], "then"]`},
		{KindKeywords, `{"en": {"name": "English", "given": ["Given "]}}`},
		{KindKeywords, `[{"language": "ru", "kind": "when", "phrases": ["Когда"]}]`},
		{KindMetatags, `["try", "except"]`},
		{KindSteps, `{"foo": {"label": "foo", "keyword": "When", "insertText": "foo", "documentation": "does foo"}}`},
		{KindSteps, `[{"key": "foo", "label": "foo", "insertText": "foo"}]`},
		{KindVariables, `{"1": {"name": "User", "value": "admin"}, "Host": "localhost"}`},
		{KindImports, `{"login": "/features/login.feature", "common": {"uri": "file:///c.feature", "lineNumber": 2}}`},
		{KindMessages, `{"syntaxMsg": "Syntax error"}`},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			result, err := loader.ValidateJSON(tt.kind, []byte(tt.payload))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if result != nil {
				t.Errorf("Expected no validation error, got: %s", result.Message)
			}
		})
	}
}

func TestValidateJSON_MissingRequiredField(t *testing.T) {
	loader := NewLoader()

	result, err := loader.ValidateJSON(KindSteps, []byte(`{"foo": {"label": "foo"}}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result == nil {
		t.Fatal("Expected validation error for missing insertText")
	}

	if result.Message == "" {
		t.Error("Expected non-empty error message")
	}

	if result.Kind != KindSteps {
		t.Errorf("Expected kind %s, got %s", KindSteps, result.Kind)
	}
}

func TestValidateJSON_WrongType(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		kind    Kind
		payload string
	}{
		{KindMetatags, `"try"`},
		{KindMetatags, `[1, 2]`},
		{KindVariables, `["a"]`},
		{KindImports, `{"x": 5}`},
		{KindMessages, `{"syntaxMsg": 1}`},
		{KindKeywords, `42`},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+" "+tt.payload, func(t *testing.T) {
			result, err := loader.ValidateJSON(tt.kind, []byte(tt.payload))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if result == nil {
				t.Fatal("Expected validation error for wrong type")
			}
		})
	}
}

func TestValidateJSON_FriendlyMessages(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name     string
		kind     Kind
		payload  string
		expected string
		field    string
	}{
		{
			name:     "unknown step property",
			kind:     KindSteps,
			payload:  `{"foo": {"label": "foo", "insertText": "foo", "docs": "typo"}}`,
			expected: "Unknown property 'docs' is not allowed",
			field:    "foo",
		},
		{
			name:     "unknown import property",
			kind:     KindImports,
			payload:  `{"login": {"uri": "file:///login.feature", "line": 3}}`,
			expected: "Unknown property 'line' is not allowed",
			field:    "login",
		},
		{
			name:     "unknown variable property",
			kind:     KindVariables,
			payload:  `{"user": {"name": "user", "val": "admin"}}`,
			expected: "Unknown property 'val' is not allowed",
			field:    "user",
		},
		{
			name:     "empty phrase list",
			kind:     KindKeywords,
			payload:  `[{"language": "en", "phrases": []}]`,
			expected: "Array 'phrases' needs at least 1 items",
			field:    "phrases",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := loader.ValidateJSON(tt.kind, []byte(tt.payload))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if result == nil {
				t.Fatal("Expected a validation error")
			}

			if result.Message != tt.expected {
				t.Errorf("Expected message %q, got %q", tt.expected, result.Message)
			}

			if !strings.Contains(result.Path, tt.field) {
				t.Errorf("Expected path to mention %q, got %q", tt.field, result.Path)
			}
		})
	}
}

func TestValidateJSON_InvalidJSON(t *testing.T) {
	loader := NewLoader()

	_, err := loader.ValidateJSON(KindMetatags, []byte(`{invalid json`))
	if err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestValidateJSON_UnknownKind(t *testing.T) {
	loader := NewLoader()

	_, err := loader.ValidateJSON(Kind("nope"), []byte(`{}`))
	if err == nil {
		t.Error("Expected error for unknown schema kind")
	}
}

func TestGetSchema_Cached(t *testing.T) {
	loader := NewLoader()

	first, err := loader.GetSchema(KindSteps)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	second, err := loader.GetSchema(KindSteps)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if first != second {
		t.Error("Expected the compiled schema to be cached")
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Kind: KindImports, Message: "bad", Path: "login"}
	if !strings.Contains(err.Error(), "imports: bad") || !strings.Contains(err.Error(), "login") {
		t.Errorf("Unexpected error text: %s", err.Error())
	}

	err = &ValidationError{Kind: KindImports, Message: "bad", Path: "(root)"}
	if err.Error() != "imports: bad" {
		t.Errorf("Unexpected error text: %s", err.Error())
	}
}

func TestExtractPropertyFromDescription(t *testing.T) {
	tests := []struct {
		description string
		expected    string
	}{
		{"Additional property invalid_field is not allowed", "invalid_field"},
		{"Additional property custom_prop is not allowed", "custom_prop"},
		{"Some other error message", ""},
		{"Additional property", ""},
	}

	for _, tt := range tests {
		if got := extractPropertyFromDescription(tt.description); got != tt.expected {
			t.Errorf("extractPropertyFromDescription(%q) = %q, expected %q", tt.description, got, tt.expected)
		}
	}
}

func TestExtractFieldName(t *testing.T) {
	tests := []struct {
		fieldPath string
		expected  string
	}{
		{"steps.1.label", "label"},
		{"foo", "foo"},
		{"0.1", "0.1"},
		{"imports.login.lineNumber", "lineNumber"},
	}

	for _, tt := range tests {
		if got := extractFieldName(tt.fieldPath); got != tt.expected {
			t.Errorf("extractFieldName(%q) = %q, expected %q", tt.fieldPath, got, tt.expected)
		}
	}
}
