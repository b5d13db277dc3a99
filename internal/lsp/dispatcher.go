package lsp

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/patrickmn/go-cache"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/turbo-gherkin-ls/internal/context"
	"github.com/mcncl/turbo-gherkin-ls/internal/keywords"
	"github.com/mcncl/turbo-gherkin-ls/internal/message"
	"github.com/mcncl/turbo-gherkin-ls/internal/parser"
	"github.com/mcncl/turbo-gherkin-ls/internal/schema"
)

// DefaultMemoTTL is how long CheckSyntax results stay cached
const DefaultMemoTTL = 5 * time.Minute

// Dispatcher is the single entry point for host messages. It owns the
// document store and the current configuration snapshot and routes every
// query to its resolver.
type Dispatcher struct {
	logger     *zap.Logger
	documents  *DocumentManager
	state      *atomic.Pointer[State]
	schemas    *schema.Loader
	memo       *cache.Cache
	completion *CompletionProvider
}

// Option configures a Dispatcher
type Option func(*Dispatcher)

// WithLogger sets the dispatcher's logger
func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMemoTTL sets how long syntax check results are kept
func WithMemoTTL(ttl time.Duration) Option {
	return func(d *Dispatcher) {
		if ttl > 0 {
			d.memo = cache.New(ttl, 2*ttl)
		}
	}
}

// WithImportDirectives replaces the words that start an import line
func WithImportDirectives(directives []string) Option {
	return func(d *Dispatcher) {
		if len(directives) > 0 {
			d.state.Store(d.state.Load().WithImportDirectives(directives))
		}
	}
}

// NewDispatcher creates a dispatcher with empty registries
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		logger:    zap.NewNop(),
		documents: NewDocumentManager(),
		state:     atomic.NewPointer(NewState()),
		schemas:   schema.NewLoader(),
		memo:      cache.New(DefaultMemoTTL, 2*DefaultMemoTTL),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.completion = NewCompletionProvider(d.logger)
	return d
}

// State returns the current configuration snapshot
func (d *Dispatcher) State() *State {
	return d.state.Load()
}

// Documents returns the document store
func (d *Dispatcher) Documents() *DocumentManager {
	return d.documents
}

// ProcessRaw decodes and processes one JSON request. A query that cannot be
// decoded is still answered with a failed response when its id is known.
func (d *Dispatcher) ProcessRaw(raw []byte) *message.Response {
	msg, err := message.Decode(raw)
	if err != nil {
		d.logger.Warn("failed to decode message", zap.Error(err))
		var decodeErr *message.DecodeError
		if errors.As(err, &decodeErr) && (decodeErr.Type.IsQuery() || len(decodeErr.ID) > 0) {
			return message.Failed(decodeErr.ID)
		}
		return nil
	}
	return d.Process(msg)
}

// Process applies one message. Configuration and document messages return
// nil; queries always return a response.
func (d *Dispatcher) Process(msg message.Message) (resp *message.Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("resolver panicked",
				zap.String("type", string(msg.Type())),
				zap.Any("panic", r))
			resp = nil
			if q, ok := msg.(message.Query); ok {
				resp = message.Failed(q.CorrelationID())
			}
		}
	}()

	d.logger.Debug("processing message", zap.String("type", string(msg.Type())))

	switch m := msg.(type) {
	case message.UpdateModel:
		d.documents.UpdateDocument(m.URI, m.VersionID, m.Content)
	case message.DeleteModel:
		d.documents.CloseDocument(m.URI)
	case message.SetMatchers:
		specs := decodePayload(d, m.Type(), schema.KindKeywords, m.Data, parser.DecodeKeywords)
		d.swap(func(s *State) *State { return s.WithMatcher(keywords.NewMatcher(specs)) })
	case message.SetMetatags:
		tags := decodePayload(d, m.Type(), schema.KindMetatags, m.Data, parser.DecodeMetatags)
		d.swap(func(s *State) *State { return s.WithMetatags(tags) })
	case message.SetSteplist:
		steps := decodePayload(d, m.Type(), schema.KindSteps, m.Data, parser.DecodeSteps)
		d.swap(func(s *State) *State { return s.WithSteps(steps) })
	case message.SetVariables:
		vars := decodePayload(d, m.Type(), schema.KindVariables, m.Data, parser.DecodeVariables)
		d.swap(func(s *State) *State { return s.WithVariables(vars) })
	case message.SetImports:
		imports := decodePayload(d, m.Type(), schema.KindImports, m.Data, parser.DecodeImports)
		d.swap(func(s *State) *State { return s.WithImports(imports) })
	case message.SetMessages:
		messages := decodePayload(d, m.Type(), schema.KindMessages, m.Data, parser.DecodeMessages)
		d.swap(func(s *State) *State { return s.WithMessages(messages) })
	case message.GetCompletions:
		return d.completions(m)
	case message.DocumentQuery:
		return d.query(m)
	default:
		d.logger.Warn("unhandled message", zap.String("type", string(msg.Type())))
	}
	return nil
}

func (d *Dispatcher) swap(update func(*State) *State) {
	next := update(d.state.Load())
	d.state.Store(next)
	d.logger.Debug("configuration replaced", zap.Uint64("generation", next.Generation))
}

func (d *Dispatcher) completions(m message.GetCompletions) *message.Response {
	items := d.completion.GetCompletions(d.State(), &context.PositionContext{
		CurrentLine: m.Line,
		LineNumber:  m.LineNumber,
		Column:      m.Column,
	})
	return &message.Response{
		ID:      m.ID,
		Data:    message.CompletionList{Suggestions: items},
		Success: true,
	}
}

func (d *Dispatcher) query(q message.DocumentQuery) *message.Response {
	doc, ok := d.documents.GetDocument(q.DocumentURI())
	if !ok {
		d.logger.Debug("query for unknown document",
			zap.String("type", string(q.Type())),
			zap.String("uri", string(q.DocumentURI())))
		return message.Failed(q.CorrelationID())
	}

	data, ok := d.resolve(d.State(), doc, q)
	if !ok {
		return message.Failed(q.CorrelationID())
	}
	return &message.Response{ID: q.CorrelationID(), Data: data, Success: true}
}

func (d *Dispatcher) resolve(state *State, doc *Document, q message.DocumentQuery) (interface{}, bool) {
	switch m := q.(type) {
	case message.GetCodeActions:
		return message.CodeActionList{Actions: GetCodeActions(state, doc, m.Range, m.Markers)}, true
	case message.GetCodeFolding:
		return GetCodeFolding(state, doc), true
	case message.GetHiperlinks:
		return GetHiperlinks(state, doc), true
	case message.GetLineHover:
		hover, ok := GetLineHover(state, doc, m.LineNumber, m.Column)
		if !ok {
			return nil, false
		}
		return hover, true
	case message.GetLinkData:
		target, ok := GetLinkData(state, m.Name)
		if !ok {
			return nil, false
		}
		return target, true
	case message.CheckSyntax:
		return d.checkSyntax(state, doc), true
	}
	return nil, false
}

// checkSyntax memoizes diagnostics per document revision and configuration
// generation.
func (d *Dispatcher) checkSyntax(state *State, doc *Document) []message.Diagnostic {
	key := fmt.Sprintf("%s#%d#%d", doc.URI, doc.Revision, state.Generation)
	if cached, ok := d.memo.Get(key); ok {
		return cached.([]message.Diagnostic)
	}
	diagnostics := CheckSyntax(state, doc)
	d.memo.SetDefault(key, diagnostics)
	return diagnostics
}

// decodePayload validates and decodes a configuration payload. Any failure
// yields the zero value, which every registry treats as empty.
func decodePayload[T any](d *Dispatcher, typ message.Type, kind schema.Kind, data json.RawMessage, decode func(*yaml.Node) (T, error)) T {
	var zero T
	node, err := d.payload(kind, data)
	if err == nil {
		var value T
		if value, err = decode(node); err == nil {
			return value
		}
	}
	d.logger.Warn("rejected configuration payload",
		zap.String("type", string(typ)),
		zap.Error(err))
	return zero
}

func (d *Dispatcher) payload(kind schema.Kind, data json.RawMessage) (*yaml.Node, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, trimmed); err != nil {
		return nil, fmt.Errorf("failed to compact payload: %w", err)
	}

	validationErr, err := d.schemas.ValidateJSON(kind, compact.Bytes())
	if err != nil {
		return nil, err
	}
	if validationErr != nil {
		return nil, validationErr
	}

	payload, err := parser.ParseYAML(compact.Bytes())
	if err != nil {
		return nil, err
	}
	return payload.Root(), nil
}
