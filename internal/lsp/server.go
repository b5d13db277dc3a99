package lsp

import (
	"context"
	"strings"

	"github.com/goccy/go-json"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/zap"

	"github.com/mcncl/turbo-gherkin-ls/internal/message"
)

// ServerName is reported to clients and used as the diagnostic source
const ServerName = "turbo-gherkin-ls"

// Server adapts LSP requests to dispatcher messages. Positions are converted
// between 0-indexed LSP and 1-indexed dispatcher coordinates here and
// nowhere else.
type Server struct {
	conn       jsonrpc2.Conn
	logger     *zap.Logger
	dispatcher *Dispatcher
	version    string
}

// NewServer creates a server over a dispatcher
func NewServer(dispatcher *Dispatcher, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dispatcher == nil {
		dispatcher = NewDispatcher(WithLogger(logger))
	}
	return &Server{
		logger:     logger,
		dispatcher: dispatcher,
		version:    version,
	}
}

// SetConnection sets the connection used for notifications
func (s *Server) SetConnection(conn jsonrpc2.Conn) {
	s.conn = conn
}

// Dispatcher returns the dispatcher behind the server
func (s *Server) Dispatcher() *Dispatcher {
	return s.dispatcher
}

func (s *Server) Initialize(ctx context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("initializing server")

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			HoverProvider: true,
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{" ", `"`, "'", "<", "$"},
			},
			CodeActionProvider:   true,
			FoldingRangeProvider: true,
			DocumentLinkProvider: &protocol.DocumentLinkOptions{},
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    ServerName,
			Version: s.version,
		},
	}, nil
}

func (s *Server) Initialized(ctx context.Context, params *protocol.InitializedParams) error {
	s.logger.Info("server initialized")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return nil
}

func (s *Server) Exit(ctx context.Context) error {
	s.logger.Info("server exiting")
	return nil
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	docURI := uri.URI(params.TextDocument.URI)
	s.logger.Debug("document opened", zap.String("uri", string(docURI)))

	s.dispatcher.Process(message.UpdateModel{
		URI:       docURI,
		VersionID: int(params.TextDocument.Version),
		Content:   splitLines(params.TextDocument.Text),
	})
	s.publishDiagnostics(ctx, docURI)
	return nil
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	docURI := uri.URI(params.TextDocument.URI)
	s.logger.Debug("document changed", zap.String("uri", string(docURI)))

	if len(params.ContentChanges) > 0 {
		lastChange := params.ContentChanges[len(params.ContentChanges)-1]
		s.dispatcher.Process(message.UpdateModel{
			URI:       docURI,
			VersionID: int(params.TextDocument.Version),
			Content:   splitLines(lastChange.Text),
		})
		s.publishDiagnostics(ctx, docURI)
	}
	return nil
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	docURI := uri.URI(params.TextDocument.URI)
	s.logger.Debug("document closed", zap.String("uri", string(docURI)))

	s.dispatcher.Process(message.DeleteModel{URI: docURI})
	s.sendDiagnostics(ctx, docURI, []protocol.Diagnostic{})
	return nil
}

func (s *Server) Completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	result := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	doc, ok := s.dispatcher.Documents().GetDocument(uri.URI(params.TextDocument.URI))
	if !ok {
		return result, nil
	}

	lineNumber, column := fromPosition(params.Position)
	resp := s.dispatcher.Process(message.GetCompletions{
		Line:       doc.LineContent(lineNumber),
		LineNumber: lineNumber,
		Column:     column,
	})
	if resp == nil || !resp.Success {
		return result, nil
	}

	for _, item := range resp.Data.(message.CompletionList).Suggestions {
		if item.Label == "" && item.InsertText == "" {
			continue
		}
		converted := protocol.CompletionItem{
			Label:      item.Label,
			Kind:       toCompletionKind(item.Kind),
			Detail:     item.Detail,
			SortText:   item.SortText,
			FilterText: item.FilterText,
			InsertText: item.InsertText,
			TextEdit: &protocol.TextEdit{
				Range:   toRange(item.Range),
				NewText: item.InsertText,
			},
		}
		if item.Documentation != "" {
			converted.Documentation = &protocol.MarkupContent{
				Kind:  protocol.Markdown,
				Value: item.Documentation,
			}
		}
		result.Items = append(result.Items, converted)
	}
	return result, nil
}

func (s *Server) Hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	lineNumber, column := fromPosition(params.Position)
	resp := s.dispatcher.Process(message.GetLineHover{
		URI:        uri.URI(params.TextDocument.URI),
		LineNumber: lineNumber,
		Column:     column,
	})
	if resp == nil || !resp.Success {
		return nil, nil
	}

	hover := resp.Data.(*message.Hover)
	values := make([]string, 0, len(hover.Contents))
	for _, content := range hover.Contents {
		values = append(values, content.Value)
	}
	rng := toRange(hover.Range)

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.Markdown,
			Value: strings.Join(values, "\n\n"),
		},
		Range: &rng,
	}, nil
}

func (s *Server) FoldingRanges(ctx context.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	resp := s.dispatcher.Process(message.GetCodeFolding{URI: uri.URI(params.TextDocument.URI)})
	if resp == nil || !resp.Success {
		return []protocol.FoldingRange{}, nil
	}

	ranges := resp.Data.([]message.FoldingRange)
	result := make([]protocol.FoldingRange, 0, len(ranges))
	for _, r := range ranges {
		result = append(result, protocol.FoldingRange{
			StartLine: toLine(r.Start),
			EndLine:   toLine(r.End),
			Kind:      protocol.FoldingRangeKind(r.Kind),
		})
	}
	return result, nil
}

func (s *Server) DocumentLinks(ctx context.Context, params *protocol.DocumentLinkParams) ([]protocol.DocumentLink, error) {
	resp := s.dispatcher.Process(message.GetHiperlinks{URI: uri.URI(params.TextDocument.URI)})
	if resp == nil || !resp.Success {
		return []protocol.DocumentLink{}, nil
	}

	links := resp.Data.(message.LinkList).Links
	result := make([]protocol.DocumentLink, 0, len(links))
	for _, link := range links {
		if link.URL == "" {
			continue
		}
		result = append(result, protocol.DocumentLink{
			Range:   toRange(link.Range),
			Target:  protocol.DocumentURI(link.URL),
			Tooltip: link.Tooltip,
		})
	}
	return result, nil
}

func (s *Server) CodeAction(ctx context.Context, params *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	docURI := uri.URI(params.TextDocument.URI)

	markers := make([]message.Diagnostic, 0, len(params.Context.Diagnostics))
	for _, d := range params.Context.Diagnostics {
		if d.Source == ServerName {
			markers = append(markers, fromDiagnostic(d))
		}
	}

	resp := s.dispatcher.Process(message.GetCodeActions{
		URI:     docURI,
		Range:   fromRange(params.Range),
		Markers: markers,
	})
	if resp == nil || !resp.Success {
		return []protocol.CodeAction{}, nil
	}

	actions := resp.Data.(message.CodeActionList).Actions
	result := make([]protocol.CodeAction, 0, len(actions))
	for _, action := range actions {
		edits := make([]protocol.TextEdit, 0, len(action.Edits))
		for _, edit := range action.Edits {
			edits = append(edits, protocol.TextEdit{Range: toRange(edit.Range), NewText: edit.Text})
		}
		diagnostics := make([]protocol.Diagnostic, 0, len(action.Diagnostics))
		for _, d := range action.Diagnostics {
			diagnostics = append(diagnostics, toDiagnostic(d))
		}
		result = append(result, protocol.CodeAction{
			Title:       action.Title,
			Kind:        protocol.QuickFix,
			Diagnostics: diagnostics,
			IsPreferred: action.IsPreferred,
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentURI][]protocol.TextEdit{
					protocol.DocumentURI(docURI): edits,
				},
			},
		})
	}
	return result, nil
}

func (s *Server) publishDiagnostics(ctx context.Context, docURI uri.URI) {
	diagnostics := []protocol.Diagnostic{}

	resp := s.dispatcher.Process(message.CheckSyntax{URI: docURI})
	if resp != nil && resp.Success {
		for _, d := range resp.Data.([]message.Diagnostic) {
			diagnostics = append(diagnostics, toDiagnostic(d))
		}
	}
	s.sendDiagnostics(ctx, docURI, diagnostics)
}

func (s *Server) sendDiagnostics(ctx context.Context, docURI uri.URI, diagnostics []protocol.Diagnostic) {
	s.logger.Debug("publishing diagnostics",
		zap.String("uri", string(docURI)),
		zap.Int("count", len(diagnostics)))

	if s.conn == nil {
		return
	}

	params := &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentURI(docURI),
		Diagnostics: diagnostics,
	}
	if err := s.conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		s.logger.Warn("failed to publish diagnostics", zap.Error(err))
	}
}

func (s *Server) Handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.logger.Debug("received request", zap.String("method", req.Method()))

		switch req.Method() {
		case "initialize":
			var params protocol.InitializeParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.Initialize(ctx, &params)
			return reply(ctx, result, err)

		case "initialized":
			var params protocol.InitializedParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, s.Initialized(ctx, &params))

		case "shutdown":
			return reply(ctx, nil, s.Shutdown(ctx))

		case "exit":
			_ = s.Exit(ctx)
			return nil

		case "textDocument/didOpen":
			var params protocol.DidOpenTextDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, s.DidOpen(ctx, &params))

		case "textDocument/didChange":
			var params protocol.DidChangeTextDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, s.DidChange(ctx, &params))

		case "textDocument/didClose":
			var params protocol.DidCloseTextDocumentParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, nil, s.DidClose(ctx, &params))

		case "textDocument/completion":
			var params protocol.CompletionParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.Completion(ctx, &params)
			return reply(ctx, result, err)

		case "textDocument/hover":
			var params protocol.HoverParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.Hover(ctx, &params)
			return reply(ctx, result, err)

		case "textDocument/foldingRange":
			var params protocol.FoldingRangeParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.FoldingRanges(ctx, &params)
			return reply(ctx, result, err)

		case "textDocument/documentLink":
			var params protocol.DocumentLinkParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.DocumentLinks(ctx, &params)
			return reply(ctx, result, err)

		case "textDocument/codeAction":
			var params protocol.CodeActionParams
			if err := json.Unmarshal(req.Params(), &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.CodeAction(ctx, &params)
			return reply(ctx, result, err)

		default:
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
	}
}
