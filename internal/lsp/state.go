package lsp

import (
	"github.com/mcncl/turbo-gherkin-ls/internal/keywords"
	"github.com/mcncl/turbo-gherkin-ls/internal/registry"
)

// MessageSyntaxError is the messages registry id of the diagnostic text
const MessageSyntaxError = "syntaxMsg"

// DefaultMetatags are the exception-handling directives known before any
// SetMetatags arrives.
var DefaultMetatags = []string{"try", "except", "попытка", "исключение"}

// DefaultImportDirectives start an import line
var DefaultImportDirectives = []string{"import", "импорт"}

var defaultMessages = map[string]string{
	MessageSyntaxError: "Syntax error",
}

// State is an immutable snapshot of every configuration registry. A
// configuration message builds a new State and swaps it in whole; resolvers
// only ever read.
type State struct {
	Matcher          *keywords.Matcher
	Metatags         []string
	Steps            *registry.Steps
	Variables        *registry.Variables
	Imports          *registry.Imports
	Messages         map[string]string
	ImportDirectives []string

	// Generation increases with every configuration swap
	Generation uint64

	shapes map[string]int
}

// NewState returns the startup snapshot
func NewState() *State {
	s := &State{
		Matcher:          keywords.NewMatcher(nil),
		Metatags:         DefaultMetatags,
		Steps:            registry.NewSteps(nil),
		Variables:        registry.NewVariables(nil),
		Imports:          registry.NewImports(nil),
		Messages:         defaultMessages,
		ImportDirectives: DefaultImportDirectives,
	}
	s.shapes = indexShapes(s.Steps)
	return s
}

// Message returns a configured message, falling back to the built-in text
func (s *State) Message(id string) string {
	if text, ok := s.Messages[id]; ok && text != "" {
		return text
	}
	return defaultMessages[id]
}

// FindStep returns the first step whose key has the same shape as text
func (s *State) FindStep(text string) (registry.StepDefinition, bool) {
	i, ok := s.shapes[stepShape(text)]
	if !ok {
		return registry.StepDefinition{}, false
	}
	return s.Steps.All()[i], true
}

// IsMetatag reports whether a line is a bare metatag, optionally followed by a colon
func (s *State) IsMetatag(line string) bool {
	_, ok := s.metatagOf(line)
	return ok
}

func (s *State) metatagOf(line string) (string, bool) {
	words := splitWords(line)
	if len(words) != 1 {
		return "", false
	}
	word := trimColon(words[0])
	for _, tag := range s.Metatags {
		if foldEqual(word, tag) {
			return tag, true
		}
	}
	return "", false
}

func (s *State) clone() *State {
	next := *s
	next.Generation = s.Generation + 1
	return &next
}

// WithMatcher returns a snapshot with a replaced keyword set
func (s *State) WithMatcher(m *keywords.Matcher) *State {
	next := s.clone()
	next.Matcher = m
	return next
}

// WithMetatags returns a snapshot with replaced metatags
func (s *State) WithMetatags(tags []string) *State {
	next := s.clone()
	next.Metatags = tags
	return next
}

// WithSteps returns a snapshot with a replaced step registry
func (s *State) WithSteps(steps *registry.Steps) *State {
	next := s.clone()
	next.Steps = steps
	next.shapes = indexShapes(steps)
	return next
}

// WithVariables returns a snapshot with a replaced variable registry
func (s *State) WithVariables(vars *registry.Variables) *State {
	next := s.clone()
	next.Variables = vars
	return next
}

// WithImports returns a snapshot with a replaced import table
func (s *State) WithImports(imports *registry.Imports) *State {
	next := s.clone()
	next.Imports = imports
	return next
}

// WithMessages returns a snapshot with replaced message text
func (s *State) WithMessages(messages map[string]string) *State {
	next := s.clone()
	next.Messages = messages
	return next
}

// WithImportDirectives returns a snapshot with replaced import directives
func (s *State) WithImportDirectives(directives []string) *State {
	next := s.clone()
	next.ImportDirectives = directives
	return next
}

func indexShapes(steps *registry.Steps) map[string]int {
	all := steps.All()
	shapes := make(map[string]int, len(all))
	for i, def := range all {
		shape := stepShape(def.Key)
		if _, exists := shapes[shape]; !exists {
			shapes[shape] = i
		}
	}
	return shapes
}
