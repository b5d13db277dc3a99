// Package registry holds the immutable step, variable and import registries
// that configuration messages replace wholesale.
package registry

import (
	"strings"

	"go.lsp.dev/uri"
)

// StepDefinition is a reusable, documented template for one line of the DSL
type StepDefinition struct {
	Key           string `json:"key" yaml:"key"`
	Label         string `json:"label" yaml:"label"`
	Keyword       string `json:"keyword" yaml:"keyword"`
	InsertText    string `json:"insertText" yaml:"insertText"`
	Documentation string `json:"documentation,omitempty" yaml:"documentation,omitempty"`
	Section       string `json:"section,omitempty" yaml:"section,omitempty"`
	SortText      string `json:"sortText,omitempty" yaml:"sortText,omitempty"`
	Kind          int    `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// IsDocumented reports whether the step may be offered to users.
// Steps without documentation are reserved for internal use.
func (s StepDefinition) IsDocumented() bool {
	return s.Documentation != ""
}

// Steps is an ordered step registry keyed by StepDefinition.Key
type Steps struct {
	items []StepDefinition
	index map[string]int
}

// NewSteps builds a registry preserving declaration order.
// A repeated key replaces the earlier definition in place.
func NewSteps(defs []StepDefinition) *Steps {
	s := &Steps{index: make(map[string]int, len(defs))}
	for _, def := range defs {
		if i, exists := s.index[def.Key]; exists {
			s.items[i] = def
			continue
		}
		s.index[def.Key] = len(s.items)
		s.items = append(s.items, def)
	}
	return s
}

// All returns the definitions in declaration order
func (s *Steps) All() []StepDefinition {
	if s == nil {
		return nil
	}
	return s.items
}

// Documented returns the definitions that carry documentation
func (s *Steps) Documented() []StepDefinition {
	if s == nil {
		return nil
	}
	result := make([]StepDefinition, 0, len(s.items))
	for _, def := range s.items {
		if def.IsDocumented() {
			result = append(result, def)
		}
	}
	return result
}

// Get looks a definition up by key
func (s *Steps) Get(key string) (StepDefinition, bool) {
	if s == nil {
		return StepDefinition{}, false
	}
	i, ok := s.index[key]
	if !ok {
		return StepDefinition{}, false
	}
	return s.items[i], true
}

// Len returns the number of definitions
func (s *Steps) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// Variable is a named value offered inside placeholders
type Variable struct {
	ID    string `json:"-" yaml:"-"`
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Variables is an ordered variable registry keyed by id
type Variables struct {
	items  []Variable
	byName map[string]int
}

// NewVariables builds a registry preserving declaration order
func NewVariables(vars []Variable) *Variables {
	v := &Variables{
		items:  make([]Variable, 0, len(vars)),
		byName: make(map[string]int, len(vars)),
	}
	for _, item := range vars {
		if _, exists := v.byName[strings.ToLower(item.Name)]; !exists {
			v.byName[strings.ToLower(item.Name)] = len(v.items)
		}
		v.items = append(v.items, item)
	}
	return v
}

// All returns the variables in declaration order
func (v *Variables) All() []Variable {
	if v == nil {
		return nil
	}
	return v.items
}

// Lookup finds a variable by name, ignoring case and surrounding dollars
func (v *Variables) Lookup(name string) (Variable, bool) {
	if v == nil {
		return Variable{}, false
	}
	name = strings.Trim(name, "$")
	i, ok := v.byName[strings.ToLower(name)]
	if !ok {
		return Variable{}, false
	}
	return v.items[i], true
}

// Len returns the number of variables
func (v *Variables) Len() int {
	if v == nil {
		return 0
	}
	return len(v.items)
}

// Target is a resolved navigation location
type Target struct {
	URI        uri.URI `json:"uri"`
	LineNumber int     `json:"lineNumber,omitempty"`
}

// Imports maps import names to their targets; names compare case-insensitively
type Imports struct {
	names   []string
	targets map[string]Target
}

// ImportEntry declares one import name
type ImportEntry struct {
	Name       string
	Location   string
	LineNumber int
}

// NewImports builds an import table. Locations without a scheme are treated
// as file paths.
func NewImports(entries []ImportEntry) *Imports {
	im := &Imports{targets: make(map[string]Target, len(entries))}
	for _, e := range entries {
		key := strings.ToLower(e.Name)
		if _, exists := im.targets[key]; !exists {
			im.names = append(im.names, e.Name)
		}
		im.targets[key] = Target{URI: ResolveLocation(e.Location), LineNumber: e.LineNumber}
	}
	return im
}

// Resolve returns the target for an import name
func (im *Imports) Resolve(name string) (Target, bool) {
	if im == nil {
		return Target{}, false
	}
	t, ok := im.targets[strings.ToLower(name)]
	return t, ok
}

// Names returns the import names in declaration order
func (im *Imports) Names() []string {
	if im == nil {
		return nil
	}
	return im.names
}

// Len returns the number of import names
func (im *Imports) Len() int {
	if im == nil {
		return 0
	}
	return len(im.names)
}

// ResolveLocation turns a location string into a URI. Anything with a scheme
// is kept as is; bare paths become file URIs.
func ResolveLocation(location string) uri.URI {
	if location == "" {
		return ""
	}
	if strings.Contains(location, "://") {
		if u, err := uri.Parse(location); err == nil {
			return u
		}
		return uri.URI(location)
	}
	return uri.File(location)
}
