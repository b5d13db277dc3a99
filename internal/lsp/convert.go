package lsp

import (
	"go.lsp.dev/protocol"

	"github.com/mcncl/turbo-gherkin-ls/internal/message"
)

// Columns count runes on both sides of this boundary.

func fromPosition(pos protocol.Position) (lineNumber, column int) {
	return int(pos.Line) + 1, int(pos.Character) + 1
}

func fromRange(r protocol.Range) message.Range {
	startLine, startColumn := fromPosition(r.Start)
	endLine, endColumn := fromPosition(r.End)
	return message.Range{
		StartLineNumber: startLine,
		StartColumn:     startColumn,
		EndLineNumber:   endLine,
		EndColumn:       endColumn,
	}
}

func toLine(lineNumber int) uint32 {
	if lineNumber < 1 {
		return 0
	}
	return uint32(lineNumber - 1)
}

func toPosition(lineNumber, column int) protocol.Position {
	return protocol.Position{Line: toLine(lineNumber), Character: toLine(column)}
}

func toRange(r message.Range) protocol.Range {
	return protocol.Range{
		Start: toPosition(r.StartLineNumber, r.StartColumn),
		End:   toPosition(r.EndLineNumber, r.EndColumn),
	}
}

func toDiagnostic(d message.Diagnostic) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range:    toRange(d.Range()),
		Severity: toSeverity(d.Severity),
		Source:   ServerName,
		Message:  d.Message,
	}
}

func fromDiagnostic(d protocol.Diagnostic) message.Diagnostic {
	r := fromRange(d.Range)
	return message.Diagnostic{
		Severity:        fromSeverity(d.Severity),
		Message:         d.Message,
		StartLineNumber: r.StartLineNumber,
		StartColumn:     r.StartColumn,
		EndLineNumber:   r.EndLineNumber,
		EndColumn:       r.EndColumn,
	}
}

func toSeverity(severity message.MarkerSeverity) protocol.DiagnosticSeverity {
	switch severity {
	case message.SeverityHint:
		return protocol.DiagnosticSeverityHint
	case message.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	case message.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityError
	}
}

func fromSeverity(severity protocol.DiagnosticSeverity) message.MarkerSeverity {
	switch severity {
	case protocol.DiagnosticSeverityHint:
		return message.SeverityHint
	case protocol.DiagnosticSeverityInformation:
		return message.SeverityInfo
	case protocol.DiagnosticSeverityWarning:
		return message.SeverityWarning
	default:
		return message.SeverityError
	}
}

func toCompletionKind(kind message.CompletionItemKind) protocol.CompletionItemKind {
	switch kind {
	case message.CompletionKindMethod:
		return protocol.CompletionItemKindMethod
	case message.CompletionKindFunction:
		return protocol.CompletionItemKindFunction
	case message.CompletionKindVariable:
		return protocol.CompletionItemKindVariable
	case message.CompletionKindKeyword:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindText
	}
}
