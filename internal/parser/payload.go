package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/turbo-gherkin-ls/internal/keywords"
	"github.com/mcncl/turbo-gherkin-ls/internal/registry"
)

// ErrUnsupportedShape is returned when a payload node has a shape the decoder
// does not accept.
var ErrUnsupportedShape = errors.New("unsupported payload shape")

// Payload is a configuration document decoded both as an order-preserving
// node tree and as JSON for schema validation.
type Payload struct {
	Content   []byte
	JSONBytes []byte
	YAMLNode  *yaml.Node
}

// ParseYAML parses YAML or JSON content. JSON is accepted because it is
// valid YAML flow syntax.
func ParseYAML(content []byte) (*Payload, error) {
	var yamlNode yaml.Node
	if err := yaml.Unmarshal(content, &yamlNode); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	var yamlData interface{}
	if err := yaml.Unmarshal(content, &yamlData); err != nil {
		return nil, fmt.Errorf("failed to parse YAML data: %w", err)
	}

	jsonBytes, err := json.Marshal(yamlData)
	if err != nil {
		return nil, fmt.Errorf("failed to convert YAML to JSON: %w", err)
	}

	return &Payload{
		Content:   content,
		JSONBytes: jsonBytes,
		YAMLNode:  &yamlNode,
	}, nil
}

// Root returns the top-level value node, or nil for an empty document
func (p *Payload) Root() *yaml.Node {
	if p == nil || p.YAMLNode == nil || len(p.YAMLNode.Content) == 0 {
		return nil
	}
	return p.YAMLNode.Content[0]
}

// FindNodeByPath walks mapping keys from the root
func (p *Payload) FindNodeByPath(path []string) *yaml.Node {
	root := p.Root()
	if root == nil {
		return nil
	}

	return findNodeRecursive(root, path, 0)
}

func findNodeRecursive(node *yaml.Node, path []string, depth int) *yaml.Node {
	if depth >= len(path) {
		return node
	}

	if node.Kind != yaml.MappingNode {
		return nil
	}

	target := path[depth]
	for i := 0; i < len(node.Content); i += 2 {
		if i+1 < len(node.Content) && node.Content[i].Value == target {
			return findNodeRecursive(node.Content[i+1], path, depth+1)
		}
	}

	return nil
}

// SectionJSON re-encodes the node at path as JSON, for validating one
// section of a larger document. Mapping keys keep their source order.
func (p *Payload) SectionJSON(path []string) ([]byte, error) {
	node := p.FindNodeByPath(path)
	if node == nil {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, node); err != nil {
		return nil, fmt.Errorf("failed to encode section %s: %w", strings.Join(path, "."), err)
	}
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, node *yaml.Node) error {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeJSON(buf, node.Content[0])
	case yaml.AliasNode:
		return writeJSON(buf, node.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(node.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(node.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeJSON(buf, node.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range node.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		var value interface{}
		if err := node.Decode(&value); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(data)
	}
	return nil
}

// GetLineForPath returns the 1-indexed source line of the node at path,
// falling back to the first line.
func (p *Payload) GetLineForPath(path []string) int {
	node := p.FindNodeByPath(path)
	if node == nil || node.Line == 0 {
		return 1
	}
	return node.Line
}

// DecodeKeywords reads a keyword set in one of three shapes, keeping
// declaration order:
//
//	["given", ["when"], "and then"]
//	{"en": {"given": ["Given "], "scenario": ["Scenario"]}, "ru": {...}}
//	[{"language": "en", "kind": "given", "phrases": ["Given"]}]
func DecodeKeywords(node *yaml.Node) ([]keywords.PhraseSpec, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case yaml.SequenceNode:
		return decodeKeywordList(node)
	case yaml.MappingNode:
		return decodeKeywordLanguages(node)
	default:
		return nil, fmt.Errorf("keywords at line %d: %w", node.Line, ErrUnsupportedShape)
	}
}

func decodeKeywordList(node *yaml.Node) ([]keywords.PhraseSpec, error) {
	var specs []keywords.PhraseSpec
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			specs = append(specs, keywords.PhraseSpec{Kind: keywords.KindStep, Words: []string{item.Value}})
		case yaml.SequenceNode:
			words, err := decodeStrings(item)
			if err != nil {
				return nil, err
			}
			specs = append(specs, keywords.PhraseSpec{Kind: keywords.KindStep, Words: words})
		case yaml.MappingNode:
			var entry struct {
				Language string   `yaml:"language"`
				Kind     string   `yaml:"kind"`
				Phrases  []string `yaml:"phrases"`
			}
			if err := item.Decode(&entry); err != nil {
				return nil, fmt.Errorf("keyword entry at line %d: %w", item.Line, err)
			}
			kind := keywords.KindStep
			if entry.Kind != "" {
				k, ok := keywords.KindForCategory(entry.Kind)
				if !ok {
					return nil, fmt.Errorf("keyword kind %q at line %d: %w", entry.Kind, item.Line, ErrUnsupportedShape)
				}
				kind = k
			}
			for _, phrase := range entry.Phrases {
				specs = append(specs, keywords.PhraseSpec{Language: entry.Language, Kind: kind, Words: []string{phrase}})
			}
		default:
			return nil, fmt.Errorf("keyword at line %d: %w", item.Line, ErrUnsupportedShape)
		}
	}
	return specs, nil
}

func decodeKeywordLanguages(node *yaml.Node) ([]keywords.PhraseSpec, error) {
	var specs []keywords.PhraseSpec
	for i := 0; i+1 < len(node.Content); i += 2 {
		lang, categories := node.Content[i].Value, node.Content[i+1]
		if categories.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("language %q at line %d: %w", lang, categories.Line, ErrUnsupportedShape)
		}
		for j := 0; j+1 < len(categories.Content); j += 2 {
			kind, ok := keywords.KindForCategory(categories.Content[j].Value)
			if !ok {
				continue
			}
			phrases, err := decodeStrings(categories.Content[j+1])
			if err != nil {
				return nil, err
			}
			for _, phrase := range phrases {
				specs = append(specs, keywords.PhraseSpec{Language: lang, Kind: kind, Words: []string{phrase}})
			}
		}
	}
	return specs, nil
}

// DecodeMetatags reads a list of metatag strings
func DecodeMetatags(node *yaml.Node) ([]string, error) {
	if node == nil {
		return nil, nil
	}
	return decodeStrings(node)
}

// DecodeSteps reads a step registry from a mapping of key to definition, or
// from a list of definitions carrying their own key.
func DecodeSteps(node *yaml.Node) (*registry.Steps, error) {
	if node == nil {
		return registry.NewSteps(nil), nil
	}

	var defs []registry.StepDefinition
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			var def registry.StepDefinition
			if err := node.Content[i+1].Decode(&def); err != nil {
				return nil, fmt.Errorf("step %q at line %d: %w", node.Content[i].Value, node.Content[i+1].Line, err)
			}
			def.Key = node.Content[i].Value
			defs = append(defs, def)
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			var def registry.StepDefinition
			if err := item.Decode(&def); err != nil {
				return nil, fmt.Errorf("step at line %d: %w", item.Line, err)
			}
			defs = append(defs, def)
		}
	default:
		return nil, fmt.Errorf("steps at line %d: %w", node.Line, ErrUnsupportedShape)
	}

	return registry.NewSteps(defs), nil
}

// DecodeVariables reads a mapping of id to {name, value}. A scalar value is
// shorthand for a variable named after its id.
func DecodeVariables(node *yaml.Node) (*registry.Variables, error) {
	if node == nil {
		return registry.NewVariables(nil), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("variables at line %d: %w", node.Line, ErrUnsupportedShape)
	}

	vars := make([]registry.Variable, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		id, value := node.Content[i].Value, node.Content[i+1]
		v := registry.Variable{ID: id}
		if value.Kind == yaml.ScalarNode {
			v.Name, v.Value = id, value.Value
		} else if err := value.Decode(&v); err != nil {
			return nil, fmt.Errorf("variable %q at line %d: %w", id, value.Line, err)
		}
		if v.Name == "" {
			v.Name = id
		}
		v.ID = id
		vars = append(vars, v)
	}
	return registry.NewVariables(vars), nil
}

// DecodeImports reads a mapping of import name to a location string or to
// {uri, lineNumber}.
func DecodeImports(node *yaml.Node) (*registry.Imports, error) {
	if node == nil {
		return registry.NewImports(nil), nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("imports at line %d: %w", node.Line, ErrUnsupportedShape)
	}

	entries := make([]registry.ImportEntry, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name, value := node.Content[i].Value, node.Content[i+1]
		entry := registry.ImportEntry{Name: name}
		switch value.Kind {
		case yaml.ScalarNode:
			entry.Location = value.Value
		case yaml.MappingNode:
			var target struct {
				URI        string `yaml:"uri"`
				Path       string `yaml:"path"`
				LineNumber int    `yaml:"lineNumber"`
			}
			if err := value.Decode(&target); err != nil {
				return nil, fmt.Errorf("import %q at line %d: %w", name, value.Line, err)
			}
			entry.Location = target.URI
			if entry.Location == "" {
				entry.Location = target.Path
			}
			entry.LineNumber = target.LineNumber
		default:
			return nil, fmt.Errorf("import %q at line %d: %w", name, value.Line, ErrUnsupportedShape)
		}
		entries = append(entries, entry)
	}
	return registry.NewImports(entries), nil
}

// DecodeMessages reads a flat mapping of message ids to localized text
func DecodeMessages(node *yaml.Node) (map[string]string, error) {
	if node == nil {
		return nil, nil
	}
	messages := make(map[string]string)
	if err := node.Decode(&messages); err != nil {
		return nil, fmt.Errorf("messages at line %d: %w", node.Line, err)
	}
	return messages, nil
}

func decodeStrings(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return []string{node.Value}, nil
	case yaml.SequenceNode:
		result := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("expected string at line %d: %w", item.Line, ErrUnsupportedShape)
			}
			result = append(result, item.Value)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("expected strings at line %d: %w", node.Line, ErrUnsupportedShape)
	}
}
