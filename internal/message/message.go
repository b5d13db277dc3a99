// Package message defines the request and response envelopes exchanged with
// the host. Every request type is its own Go type so the dispatcher can switch
// exhaustively instead of probing fields.
package message

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"go.lsp.dev/uri"
)

// ErrUnknownType is returned by Decode for unrecognized message types
var ErrUnknownType = errors.New("unknown message type")

// Type names a message
type Type string

const (
	TypeUpdateModel    Type = "UpdateModel"
	TypeDeleteModel    Type = "DeleteModel"
	TypeSetMatchers    Type = "SetMatchers"
	TypeSetMetatags    Type = "SetMetatags"
	TypeSetSteplist    Type = "SetSteplist"
	TypeSetVariables   Type = "SetVariables"
	TypeSetImports     Type = "SetImports"
	TypeSetMessages    Type = "SetMessages"
	TypeGetCompletions Type = "GetCompletions"
	TypeGetCodeActions Type = "GetCodeActions"
	TypeGetCodeFolding Type = "GetCodeFolding"
	TypeGetHiperlinks  Type = "GetHiperlinks"
	TypeGetLineHover   Type = "GetLineHover"
	TypeGetLinkData    Type = "GetLinkData"
	TypeCheckSyntax    Type = "CheckSyntax"
)

// IsQuery reports whether messages of this type expect a response
func (t Type) IsQuery() bool {
	switch t {
	case TypeGetCompletions, TypeGetCodeActions, TypeGetCodeFolding,
		TypeGetHiperlinks, TypeGetLineHover, TypeGetLinkData, TypeCheckSyntax:
		return true
	}
	return false
}

// Message is implemented by every request variant
type Message interface {
	Type() Type
}

// Query is a message answered with a Response
type Query interface {
	Message
	CorrelationID() json.RawMessage
}

// DocumentQuery is a query about one stored document
type DocumentQuery interface {
	Query
	DocumentURI() uri.URI
}

// UpdateModel replaces a document
type UpdateModel struct {
	URI       uri.URI
	VersionID int
	Content   []string
}

// DeleteModel removes a document
type DeleteModel struct {
	URI uri.URI
}

// Configuration messages carry the raw payload; decoding and validation are
// the dispatcher's job so a bad payload can fail closed.
type (
	SetMatchers  struct{ Data json.RawMessage }
	SetMetatags  struct{ Data json.RawMessage }
	SetSteplist  struct{ Data json.RawMessage }
	SetVariables struct{ Data json.RawMessage }
	SetImports   struct{ Data json.RawMessage }
	SetMessages  struct{ Data json.RawMessage }
)

// GetCompletions asks for suggestions on a single line; no document is needed
type GetCompletions struct {
	ID         json.RawMessage
	Line       string
	LineNumber int
	Column     int
}

// GetCodeActions asks for quick fixes in a line range. Markers are the
// diagnostics the host already shows; when empty they are recomputed.
type GetCodeActions struct {
	ID      json.RawMessage
	URI     uri.URI
	Range   Range
	Markers []Diagnostic
}

// GetCodeFolding asks for folding ranges
type GetCodeFolding struct {
	ID  json.RawMessage
	URI uri.URI
}

// GetHiperlinks asks for import links
type GetHiperlinks struct {
	ID  json.RawMessage
	URI uri.URI
}

// GetLineHover asks for hover content at a position
type GetLineHover struct {
	ID         json.RawMessage
	URI        uri.URI
	LineNumber int
	Column     int
}

// GetLinkData resolves a link name chosen by the user
type GetLinkData struct {
	ID   json.RawMessage
	URI  uri.URI
	Name string
}

// CheckSyntax asks for diagnostics
type CheckSyntax struct {
	ID  json.RawMessage
	URI uri.URI
}

func (UpdateModel) Type() Type    { return TypeUpdateModel }
func (DeleteModel) Type() Type    { return TypeDeleteModel }
func (SetMatchers) Type() Type    { return TypeSetMatchers }
func (SetMetatags) Type() Type    { return TypeSetMetatags }
func (SetSteplist) Type() Type    { return TypeSetSteplist }
func (SetVariables) Type() Type   { return TypeSetVariables }
func (SetImports) Type() Type     { return TypeSetImports }
func (SetMessages) Type() Type    { return TypeSetMessages }
func (GetCompletions) Type() Type { return TypeGetCompletions }
func (GetCodeActions) Type() Type { return TypeGetCodeActions }
func (GetCodeFolding) Type() Type { return TypeGetCodeFolding }
func (GetHiperlinks) Type() Type  { return TypeGetHiperlinks }
func (GetLineHover) Type() Type   { return TypeGetLineHover }
func (GetLinkData) Type() Type    { return TypeGetLinkData }
func (CheckSyntax) Type() Type    { return TypeCheckSyntax }

func (m GetCompletions) CorrelationID() json.RawMessage { return m.ID }
func (m GetCodeActions) CorrelationID() json.RawMessage { return m.ID }
func (m GetCodeFolding) CorrelationID() json.RawMessage { return m.ID }
func (m GetHiperlinks) CorrelationID() json.RawMessage  { return m.ID }
func (m GetLineHover) CorrelationID() json.RawMessage   { return m.ID }
func (m GetLinkData) CorrelationID() json.RawMessage    { return m.ID }
func (m CheckSyntax) CorrelationID() json.RawMessage    { return m.ID }

func (m GetCodeActions) DocumentURI() uri.URI { return m.URI }
func (m GetCodeFolding) DocumentURI() uri.URI { return m.URI }
func (m GetHiperlinks) DocumentURI() uri.URI  { return m.URI }
func (m GetLineHover) DocumentURI() uri.URI   { return m.URI }
func (m GetLinkData) DocumentURI() uri.URI    { return m.URI }
func (m CheckSyntax) DocumentURI() uri.URI    { return m.URI }

// envelope is the loosely typed wire shape of a request
type envelope struct {
	ID         json.RawMessage `json:"id,omitempty"`
	Type       Type            `json:"type"`
	URI        string          `json:"uri,omitempty"`
	Line       string          `json:"line,omitempty"`
	LineNumber int             `json:"lineNumber,omitempty"`
	Column     int             `json:"column,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	VersionID  int             `json:"versionId,omitempty"`
	Content    []string        `json:"content,omitempty"`
	Range      *Range          `json:"range,omitempty"`
	Markers    []Diagnostic    `json:"markers,omitempty"`
}

// DecodeError reports a request that could not be decoded. ID and Type are
// set when they could be recovered, so the caller can still answer a query.
type DecodeError struct {
	ID   json.RawMessage
	Type Type
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("decode message: %v", e.Err)
	}
	return fmt.Sprintf("decode %s message: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decode turns one JSON request into its typed variant
func Decode(raw []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		id, typ := recoverHeader(raw)
		return nil, &DecodeError{ID: id, Type: typ, Err: err}
	}

	docURI := uri.URI(env.URI)

	switch env.Type {
	case TypeUpdateModel:
		return UpdateModel{URI: docURI, VersionID: env.VersionID, Content: env.Content}, nil
	case TypeDeleteModel:
		return DeleteModel{URI: docURI}, nil
	case TypeSetMatchers:
		return SetMatchers{Data: env.Data}, nil
	case TypeSetMetatags:
		return SetMetatags{Data: env.Data}, nil
	case TypeSetSteplist:
		return SetSteplist{Data: env.Data}, nil
	case TypeSetVariables:
		return SetVariables{Data: env.Data}, nil
	case TypeSetImports:
		return SetImports{Data: env.Data}, nil
	case TypeSetMessages:
		return SetMessages{Data: env.Data}, nil
	case TypeGetCompletions:
		return GetCompletions{ID: env.ID, Line: env.Line, LineNumber: env.LineNumber, Column: env.Column}, nil
	case TypeGetCodeActions:
		m := GetCodeActions{ID: env.ID, URI: docURI, Markers: env.Markers}
		if env.Range != nil {
			m.Range = *env.Range
		} else if env.LineNumber > 0 {
			m.Range = Range{StartLineNumber: env.LineNumber, StartColumn: 1, EndLineNumber: env.LineNumber, EndColumn: 1}
		}
		return m, nil
	case TypeGetCodeFolding:
		return GetCodeFolding{ID: env.ID, URI: docURI}, nil
	case TypeGetHiperlinks:
		return GetHiperlinks{ID: env.ID, URI: docURI}, nil
	case TypeGetLineHover:
		return GetLineHover{ID: env.ID, URI: docURI, LineNumber: env.LineNumber, Column: env.Column}, nil
	case TypeGetLinkData:
		return GetLinkData{ID: env.ID, URI: docURI, Name: linkName(env.Data)}, nil
	case TypeCheckSyntax:
		return CheckSyntax{ID: env.ID, URI: docURI}, nil
	default:
		return nil, &DecodeError{ID: env.ID, Type: env.Type, Err: ErrUnknownType}
	}
}

// linkName accepts either a bare string or a link object carrying its name
// in "data", as returned by GetHiperlinks.
func linkName(data json.RawMessage) string {
	if len(data) == 0 {
		return ""
	}
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		return name
	}
	var link struct {
		Data string `json:"data"`
	}
	if err := json.Unmarshal(data, &link); err == nil {
		return link.Data
	}
	return ""
}

// recoverHeader pulls id and type out of a request whose other fields did
// not decode.
func recoverHeader(raw []byte) (json.RawMessage, Type) {
	var partial struct {
		ID   json.RawMessage `json:"id"`
		Type Type            `json:"type"`
	}
	if err := json.Unmarshal(raw, &partial); err != nil {
		return nil, ""
	}
	return partial.ID, partial.Type
}

// Response answers a query. ID echoes the request's correlation id verbatim.
type Response struct {
	ID      json.RawMessage `json:"id"`
	Data    interface{}     `json:"data"`
	Success bool            `json:"success"`
}

// MarshalJSON writes a null id when the request carried none
func (r Response) MarshalJSON() ([]byte, error) {
	id := r.ID
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return json.Marshal(struct {
		ID      json.RawMessage `json:"id"`
		Data    interface{}     `json:"data"`
		Success bool            `json:"success"`
	}{id, r.Data, r.Success})
}

// Failed builds an unsuccessful response with no data
func Failed(id json.RawMessage) *Response {
	return &Response{ID: id, Success: false}
}
