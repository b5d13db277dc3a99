package lsp

import (
	"strings"
	"sync"

	"go.lsp.dev/uri"
)

// DocumentManager holds the latest snapshot of every open document
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[uri.URI]*Document
	revision  uint64
}

// Document is an immutable document snapshot. Lines are 0-indexed internally;
// every accessor takes 1-indexed line numbers.
type Document struct {
	URI      uri.URI
	Version  int
	Revision uint64
	Lines    []string
}

// NewDocumentManager creates a new document manager
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		documents: make(map[uri.URI]*Document),
	}
}

// OpenDocument stores a newly opened document
func (dm *DocumentManager) OpenDocument(docURI uri.URI, version int, lines []string) *Document {
	return dm.UpdateDocument(docURI, version, lines)
}

// UpdateDocument replaces a document wholesale. The previous snapshot is
// left untouched for readers that still hold it.
func (dm *DocumentManager) UpdateDocument(docURI uri.URI, version int, lines []string) *Document {
	docURI = normalizeURI(docURI)
	copied := make([]string, len(lines))
	copy(copied, lines)

	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.revision++
	doc := &Document{
		URI:      docURI,
		Version:  version,
		Revision: dm.revision,
		Lines:    copied,
	}
	dm.documents[docURI] = doc
	return doc
}

// CloseDocument removes a document from the cache
func (dm *DocumentManager) CloseDocument(docURI uri.URI) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	delete(dm.documents, normalizeURI(docURI))
}

// GetDocument retrieves a document by URI
func (dm *DocumentManager) GetDocument(docURI uri.URI) (*Document, bool) {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	doc, exists := dm.documents[normalizeURI(docURI)]
	return doc, exists
}

// Len returns the number of open documents
func (dm *DocumentManager) Len() int {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	return len(dm.documents)
}

// LineCount returns the number of lines
func (d *Document) LineCount() int {
	return len(d.Lines)
}

// LineContent returns a 1-indexed line, or "" when out of range
func (d *Document) LineContent(lineNumber int) string {
	if lineNumber < 1 || lineNumber > len(d.Lines) {
		return ""
	}
	return d.Lines[lineNumber-1]
}

// Text joins the lines back into document text
func (d *Document) Text() string {
	return strings.Join(d.Lines, "\n")
}

// normalizeURI canonicalizes file and http URIs. Other schemes, such as the
// editor's in-memory models, are kept verbatim.
func normalizeURI(docURI uri.URI) uri.URI {
	parsed, err := uri.Parse(string(docURI))
	if err != nil {
		return docURI
	}
	return parsed
}

// splitLines splits content into lines, dropping carriage returns
func splitLines(content string) []string {
	if content == "" {
		return []string{}
	}

	lines := strings.Split(content, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
