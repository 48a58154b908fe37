// Package inventory parses the free text a player copies from the item
// market's "Add Listing" page into aggregated item quantities. Input is a
// loose sequence of item blocks: a name line, then optional quantity and
// status lines, then pricing decoration the parser deliberately ignores.
package inventory

import (
	"sort"
	"strings"

	"github.com/kzon-tools/torn-market-analyzer/pkg/dictionary"
)

// Block is one flushed item block: a recognized name line plus any quantity
// and status lines that followed it.
type Block struct {
	Name    string
	Qty     int
	Omitted bool
}

// MatchedItem is one dictionary-resolved item with its summed quantity.
type MatchedItem struct {
	Name   string
	ItemID int
	Qty    int
}

// UnmatchedEntry is a parsed block whose name failed dictionary lookup.
// Entries are never merged: every failing block is recorded on its own, in
// parse order. Suggestions holds up to three near-miss dictionary names.
type UnmatchedEntry struct {
	Name        string
	Qty         int
	Suggestions []string
}

// ParseResult is the outcome of matching one pasted dump. Matched is
// ordered by name ascending and contains each item id exactly once.
type ParseResult struct {
	Matched   []MatchedItem
	Unmatched []UnmatchedEntry
}

// ParseBlocks runs the line classifier over the input and accumulates item
// blocks. isItemName decides which lines start a block; it is usually the
// dictionary's Contains but callers may pass a broader recognizer (for
// example a fresh name list ahead of a stale id dictionary). Lines that
// classify as markers or quantities while no block is open are orphans and
// are dropped.
func ParseBlocks(raw string, isItemName func(string) bool) []Block {
	var blocks []Block
	var cur *Block

	flush := func() {
		if cur != nil && cur.Name != "" {
			blocks = append(blocks, *cur)
		}
		cur = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		line = normalizeLine(line)
		if line == "" {
			continue
		}

		c := classifyLine(line, isItemName)
		switch c.kind {
		case LineItemStart, LineItemStartWithQty:
			flush()
			cur = &Block{Name: c.name, Qty: c.qty}
		case LineOmissionMarker:
			if cur != nil {
				cur.Omitted = true
			}
		case LineQtyLine:
			// Last quantity line within a block wins.
			if cur != nil {
				cur.Qty = c.qty
			}
		case LineIgnored:
			// Prices, totals, decorations.
		}
	}
	flush()

	return blocks
}

// Aggregate drops omitted blocks, resolves the rest through the dictionary,
// sums quantities per item id, and records lookup misses as unmatched
// entries in parse order.
func Aggregate(blocks []Block, dict *dictionary.Dictionary) ParseResult {
	var result ParseResult
	index := make(map[int]int) // item id -> position in result.Matched

	for _, b := range blocks {
		if b.Omitted {
			continue
		}

		id, ok := dict.Lookup(b.Name)
		if !ok {
			result.Unmatched = append(result.Unmatched, UnmatchedEntry{
				Name:        b.Name,
				Qty:         b.Qty,
				Suggestions: suggestNames(b.Name, dict.Names()),
			})
			continue
		}

		if pos, seen := index[id]; seen {
			result.Matched[pos].Qty += b.Qty
			continue
		}
		index[id] = len(result.Matched)
		result.Matched = append(result.Matched, MatchedItem{
			Name:   b.Name, // display name of first occurrence
			ItemID: id,
			Qty:    b.Qty,
		})
	}

	sort.Slice(result.Matched, func(i, j int) bool {
		return result.Matched[i].Name < result.Matched[j].Name
	})

	return result
}

// Match parses raw pasted text against the dictionary and aggregates the
// result. It is a pure function of its inputs: no I/O, no error path.
func Match(raw string, dict *dictionary.Dictionary) ParseResult {
	return Aggregate(ParseBlocks(raw, dict.Contains), dict)
}
