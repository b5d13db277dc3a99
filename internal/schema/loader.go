package schema

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFiles embed.FS

// Kind names a configuration payload
type Kind string

const (
	KindKeywords  Kind = "keywords"
	KindMetatags  Kind = "metatags"
	KindSteps     Kind = "steps"
	KindVariables Kind = "variables"
	KindImports   Kind = "imports"
	KindMessages  Kind = "messages"
)

// Kinds lists every payload kind in registry file order
var Kinds = []Kind{KindKeywords, KindMetatags, KindSteps, KindVariables, KindImports, KindMessages}

type Loader struct {
	mu      sync.RWMutex
	schemas map[Kind]*gojsonschema.Schema
}

func NewLoader() *Loader {
	return &Loader{schemas: make(map[Kind]*gojsonschema.Schema)}
}

// GetSchema compiles the embedded schema for kind once and caches it
func (l *Loader) GetSchema(kind Kind) (*gojsonschema.Schema, error) {
	l.mu.RLock()
	if s, ok := l.schemas[kind]; ok {
		defer l.mu.RUnlock()
		return s, nil
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if s, ok := l.schemas[kind]; ok {
		return s, nil
	}

	data, err := schemaFiles.ReadFile("schemas/" + string(kind) + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", kind, err)
	}

	s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", kind, err)
	}

	l.schemas[kind] = s
	return s, nil
}

type ValidationError struct {
	Kind    Kind
	Message string
	Path    string
	Line    int
}

func (e *ValidationError) Error() string {
	if e.Path == "" || e.Path == "(root)" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Path)
}

// ValidateJSON checks a payload against the schema for kind. A nil
// *ValidationError means the payload is well formed.
func (l *Loader) ValidateJSON(kind Kind, jsonData []byte) (*ValidationError, error) {
	s, err := l.GetSchema(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %w", err)
	}

	result, err := s.Validate(gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if !result.Valid() && len(result.Errors()) > 0 {
		// Find the most specific error - prioritize property-related errors over schema validation errors
		var bestError gojsonschema.ResultError
		bestError = result.Errors()[0] // fallback

		errorPriority := map[string]int{
			"additional_property_not_allowed": 1, // Unknown property
			"required":                        2, // Missing required field
			"invalid_type":                    3, // Wrong data type
			"string_gte":                      4, // String too short
			"number_gte":                      5, // Number too small
			"array_min_items":                 6, // Array too small
		}

		highestPriority := 999
		for _, err := range result.Errors() {
			if priority, exists := errorPriority[err.Type()]; exists && priority < highestPriority {
				bestError = err
				highestPriority = priority
			}
		}

		return &ValidationError{
			Kind:    kind,
			Message: l.friendlyErrorMessage(bestError),
			Path:    bestError.Field(),
			Line:    1, // Will be set by caller
		}, nil
	}

	return nil, nil
}

func (l *Loader) friendlyErrorMessage(err gojsonschema.ResultError) string {
	switch err.Type() {
	case "additional_property_not_allowed":
		if propertyName := extractPropertyFromDescription(err.Description()); propertyName != "" {
			return fmt.Sprintf("Unknown property '%s' is not allowed", propertyName)
		}
		return err.Description()
	case "required":
		return fmt.Sprintf("Missing required property '%s'", err.Details()["property"])
	case "invalid_type":
		return fmt.Sprintf("Property '%s' has wrong type (expected %s)", extractFieldName(err.Field()), err.Details()["expected"])
	case "string_gte":
		return fmt.Sprintf("Property '%s' is too short (minimum %v characters)", extractFieldName(err.Field()), err.Details()["min"])
	case "number_gte":
		return fmt.Sprintf("Property '%s' must be at least %v", extractFieldName(err.Field()), err.Details()["min"])
	case "array_min_items":
		return fmt.Sprintf("Array '%s' needs at least %v items", extractFieldName(err.Field()), err.Details()["min"])
	default:
		return err.Description()
	}
}

func extractFieldName(fieldPath string) string {
	// "steps.1.label" -> "label", skipping numeric array indices
	parts := strings.Split(fieldPath, ".")

	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]
		if !isNumeric(part) {
			return part
		}
	}

	return fieldPath
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, char := range s {
		if char < '0' || char > '9' {
			return false
		}
	}
	return true
}

func extractPropertyFromDescription(description string) string {
	// "Additional property invalid_field is not allowed" -> "invalid_field"
	if strings.Contains(description, "Additional property ") && strings.Contains(description, " is not allowed") {
		start := strings.Index(description, "Additional property ") + len("Additional property ")
		end := strings.Index(description, " is not allowed")
		if start < end {
			return description[start:end]
		}
	}
	return ""
}
