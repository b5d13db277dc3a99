package lsp

import (
	"sort"

	"github.com/mcncl/turbo-gherkin-ls/internal/context"
	"github.com/mcncl/turbo-gherkin-ls/internal/message"
)

// Folding range kinds
const (
	FoldingKindRegion = "region"
)

// GetCodeFolding returns flat, sorted folding ranges. A header folds to the
// last non-blank line before the next header; a metatag with an indented
// block folds that block when no header range already covers it.
func GetCodeFolding(state *State, doc *Document) []message.FoldingRange {
	headers := make([]int, 0)
	for i, line := range doc.Lines {
		if _, ok := state.Matcher.FindHeader(line); ok {
			headers = append(headers, i)
		}
	}

	ranges := make([]message.FoldingRange, 0, len(headers))
	for n, start := range headers {
		limit := doc.LineCount()
		if n+1 < len(headers) {
			limit = headers[n+1]
		}
		if end := lastContentLine(doc, start, limit); end > start {
			ranges = append(ranges, message.FoldingRange{Start: start + 1, End: end + 1, Kind: FoldingKindRegion})
		}
	}

	covered := func(line int) bool {
		for _, r := range ranges {
			if r.Start <= line && line <= r.End {
				return true
			}
		}
		return false
	}

	var blocks []message.FoldingRange
	for i := 0; i < doc.LineCount(); i++ {
		if !state.IsMetatag(doc.Lines[i]) || covered(i+1) {
			continue
		}
		end := indentedBlockEnd(doc, i)
		if end <= i || covered(end+1) {
			continue
		}
		blocks = append(blocks, message.FoldingRange{Start: i + 1, End: end + 1, Kind: FoldingKindRegion})
		i = end
	}

	ranges = append(ranges, blocks...)
	sort.SliceStable(ranges, func(a, b int) bool {
		return ranges[a].Start < ranges[b].Start
	})
	return ranges
}

// lastContentLine returns the last non-blank 0-indexed line in (start, limit),
// or start when there is none.
func lastContentLine(doc *Document, start, limit int) int {
	for i := limit - 1; i > start; i-- {
		if context.LineMaxColumn(doc.Lines[i]) != 0 {
			return i
		}
	}
	return start
}

// indentedBlockEnd returns the last line indented deeper than line start,
// skipping blank lines inside the block.
func indentedBlockEnd(doc *Document, start int) int {
	indent := context.LineMinColumn(doc.Lines[start])
	end := start
	for i := start + 1; i < doc.LineCount(); i++ {
		column := context.LineMinColumn(doc.Lines[i])
		if column == 0 {
			continue
		}
		if column <= indent {
			break
		}
		end = i
	}
	return end
}
