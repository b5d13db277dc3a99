package lsp

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mcncl/turbo-gherkin-ls/internal/message"
	"github.com/mcncl/turbo-gherkin-ls/internal/parser"
	"github.com/mcncl/turbo-gherkin-ls/internal/schema"
)

// registrySections maps registry file keys to the schema that checks them and
// the configuration message that applies them.
var registrySections = []struct {
	key  string
	kind schema.Kind
	wrap func(json.RawMessage) message.Message
}{
	{"keywords", schema.KindKeywords, func(b json.RawMessage) message.Message { return message.SetMatchers{Data: b} }},
	{"metatags", schema.KindMetatags, func(b json.RawMessage) message.Message { return message.SetMetatags{Data: b} }},
	{"steps", schema.KindSteps, func(b json.RawMessage) message.Message { return message.SetSteplist{Data: b} }},
	{"variables", schema.KindVariables, func(b json.RawMessage) message.Message { return message.SetVariables{Data: b} }},
	{"imports", schema.KindImports, func(b json.RawMessage) message.Message { return message.SetImports{Data: b} }},
	{"messages", schema.KindMessages, func(b json.RawMessage) message.Message { return message.SetMessages{Data: b} }},
}

// LoadRegistryFile reads a YAML or JSON registry file and applies each
// section present as the matching configuration message. Sections that fail
// validation are still applied, and so fail closed; their errors are
// combined into the returned error.
func (d *Dispatcher) LoadRegistryFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read registry %s: %w", path, err)
	}
	return d.LoadRegistry(content)
}

// LoadRegistry applies registry content; see LoadRegistryFile
func (d *Dispatcher) LoadRegistry(content []byte) error {
	payload, err := parser.ParseYAML(content)
	if err != nil {
		return err
	}

	var errs error
	for _, section := range registrySections {
		path := []string{section.key}
		if payload.FindNodeByPath(path) == nil {
			continue
		}

		data, err := payload.SectionJSON(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		validationErr, err := d.schemas.ValidateJSON(section.kind, data)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if validationErr != nil {
			validationErr.Line = payload.GetLineForPath(path)
			errs = multierr.Append(errs, fmt.Errorf("%s at line %d: %w", section.key, validationErr.Line, validationErr))
		}

		d.Process(section.wrap(data))
		d.logger.Debug("registry section loaded", zap.String("section", section.key))
	}
	return errs
}
