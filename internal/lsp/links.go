package lsp

import (
	"fmt"
	"strings"

	"github.com/mcncl/turbo-gherkin-ls/internal/context"
	"github.com/mcncl/turbo-gherkin-ls/internal/message"
	"github.com/mcncl/turbo-gherkin-ls/internal/registry"
)

// importLink is a quoted import name found on a line
type importLink struct {
	lineNumber  int
	placeholder context.Placeholder
	declared    bool // found on an import directive line
}

func (l importLink) name() string {
	return l.placeholder.Inner()
}

// isImportLine reports whether a line starts with an import directive
func isImportLine(state *State, line string) bool {
	words := splitWords(line)
	if len(words) == 0 {
		return false
	}
	for _, directive := range state.ImportDirectives {
		if foldEqual(words[0], directive) {
			return true
		}
	}
	return false
}

// findImportLinks collects import declarations and resolvable references in
// document order.
func findImportLinks(state *State, doc *Document) []importLink {
	var links []importLink
	for i, line := range doc.Lines {
		if isImportLine(state, line) {
			for _, p := range context.FindPlaceholders(line) {
				if p.IsQuoted() {
					links = append(links, importLink{lineNumber: i + 1, placeholder: p, declared: true})
					break
				}
			}
			continue
		}

		if _, ok := parseStepLine(state.Matcher, line); !ok {
			continue
		}
		for _, p := range context.FindPlaceholders(line) {
			if !p.IsQuoted() {
				continue
			}
			if _, ok := state.Imports.Resolve(p.Inner()); ok {
				links = append(links, importLink{lineNumber: i + 1, placeholder: p})
			}
		}
	}
	return links
}

// GetHiperlinks returns a link for every import declaration and reference.
// Declarations whose name is not in the import table are inert.
func GetHiperlinks(state *State, doc *Document) message.LinkList {
	found := findImportLinks(state, doc)
	links := make([]message.Link, 0, len(found))
	for _, l := range found {
		link := message.Link{
			Range: message.LineRange(l.lineNumber, l.placeholder.StartColumn, l.placeholder.EndColumn),
			Data:  l.name(),
		}
		if target, ok := state.Imports.Resolve(l.name()); ok {
			link.URL = string(target.URI)
			link.Tooltip = linkTooltip(target)
		}
		links = append(links, link)
	}
	return message.LinkList{Links: links}
}

// GetLinkData resolves a link name to its target
func GetLinkData(state *State, name string) (registry.Target, bool) {
	if strings.TrimSpace(name) == "" {
		return registry.Target{}, false
	}
	return state.Imports.Resolve(name)
}

func linkTooltip(target registry.Target) string {
	if target.LineNumber > 0 {
		return fmt.Sprintf("%s:%d", target.URI, target.LineNumber)
	}
	return string(target.URI)
}
