package message

// Range is an editor range. Lines and columns are 1-indexed; EndColumn is exclusive.
type Range struct {
	StartLineNumber int `json:"startLineNumber"`
	StartColumn     int `json:"startColumn"`
	EndLineNumber   int `json:"endLineNumber"`
	EndColumn       int `json:"endColumn"`
}

// LineRange spans columns start..end on a single line
func LineRange(lineNumber, startColumn, endColumn int) Range {
	return Range{
		StartLineNumber: lineNumber,
		StartColumn:     startColumn,
		EndLineNumber:   lineNumber,
		EndColumn:       endColumn,
	}
}

// ContainsLine reports whether a 1-indexed line falls inside the range
func (r Range) ContainsLine(lineNumber int) bool {
	return r.StartLineNumber <= lineNumber && lineNumber <= r.EndLineNumber
}

// CompletionItemKind mirrors the host editor's completion kinds
type CompletionItemKind int

const (
	CompletionKindMethod   CompletionItemKind = 0
	CompletionKindFunction CompletionItemKind = 1
	CompletionKindVariable CompletionItemKind = 4
	CompletionKindKeyword  CompletionItemKind = 17
)

// CompletionItem is one suggestion
type CompletionItem struct {
	Label         string             `json:"label"`
	Kind          CompletionItemKind `json:"kind"`
	Detail        string             `json:"detail,omitempty"`
	Documentation string             `json:"documentation,omitempty"`
	SortText      string             `json:"sortText,omitempty"`
	FilterText    string             `json:"filterText,omitempty"`
	InsertText    string             `json:"insertText"`
	Range         Range              `json:"range"`
}

// CompletionList wraps suggestions for the GetCompletions response
type CompletionList struct {
	Suggestions []CompletionItem `json:"suggestions"`
}

// MarkerSeverity mirrors the host editor's marker severities
type MarkerSeverity int

const (
	SeverityHint    MarkerSeverity = 1
	SeverityInfo    MarkerSeverity = 2
	SeverityWarning MarkerSeverity = 4
	SeverityError   MarkerSeverity = 8
)

// Diagnostic is a marker on a range
type Diagnostic struct {
	Severity        MarkerSeverity `json:"severity"`
	Message         string         `json:"message"`
	StartLineNumber int            `json:"startLineNumber"`
	StartColumn     int            `json:"startColumn"`
	EndLineNumber   int            `json:"endLineNumber"`
	EndColumn       int            `json:"endColumn"`
}

// Range returns the diagnostic's span
func (d Diagnostic) Range() Range {
	return Range{
		StartLineNumber: d.StartLineNumber,
		StartColumn:     d.StartColumn,
		EndLineNumber:   d.EndLineNumber,
		EndColumn:       d.EndColumn,
	}
}

// FoldingRange is a collapsible line span
type FoldingRange struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  string `json:"kind,omitempty"`
}

// Link is a navigable token. URL is empty for an unresolved, inert link.
type Link struct {
	Range   Range  `json:"range"`
	URL     string `json:"url,omitempty"`
	Tooltip string `json:"tooltip,omitempty"`
	Data    string `json:"data"`
}

// LinkList wraps links for the GetHiperlinks response
type LinkList struct {
	Links []Link `json:"links"`
}

// TextEdit replaces a range with text
type TextEdit struct {
	Range Range  `json:"range"`
	Text  string `json:"text"`
}

// CodeAction is a proposed fix; applying it is the caller's job
type CodeAction struct {
	Title       string       `json:"title"`
	Kind        string       `json:"kind"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Edits       []TextEdit   `json:"edits"`
	IsPreferred bool         `json:"isPreferred,omitempty"`
}

// CodeActionList wraps actions for the GetCodeActions response
type CodeActionList struct {
	Actions []CodeAction `json:"actions"`
}

// MarkdownString is one block of hover content
type MarkdownString struct {
	Value string `json:"value"`
}

// Hover is hover content for a range
type Hover struct {
	Range    Range            `json:"range"`
	Contents []MarkdownString `json:"contents"`
}
