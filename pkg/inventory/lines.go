package inventory

import (
	"regexp"
	"strconv"
	"strings"
)

// LineKind classifies a normalized input line. The set is closed: the block
// accumulator in Parse is driven entirely by these kinds.
type LineKind int

const (
	// LineIgnored covers everything the parser tolerates silently: prices,
	// running totals, decorations.
	LineIgnored LineKind = iota

	// LineItemStart is a line that exactly equals a known item name.
	LineItemStart

	// LineItemStartWithQty is "<name> x<digits>" where <name> is a known
	// item name.
	LineItemStartWithQty

	// LineOmissionMarker is "Equipped" or "Untradable" (case-insensitive).
	LineOmissionMarker

	// LineQtyLine is a standalone "x<digits>" quantity line.
	LineQtyLine
)

var (
	qtyLineRE     = regexp.MustCompile(`(?i)^x\s*(\d+)$`)
	nameQtyLineRE = regexp.MustCompile(`(?i)^(.*\S)\s+x\s*(\d+)$`)
)

// classified is the outcome of classifying one line.
type classified struct {
	kind LineKind
	name string
	qty  int
}

// normalizeLine strips ornamental whitespace. The market UI pads lines with
// non-breaking spaces.
func normalizeLine(line string) string {
	return strings.TrimSpace(strings.ReplaceAll(line, "\u00a0", " "))
}

// classifyLine maps a normalized, non-blank line onto the closed LineKind
// set. Dictionary membership is checked before the generic quantity
// patterns, so an item name that happens to look like a quantity token is
// never misread.
func classifyLine(line string, isItemName func(string) bool) classified {
	if isItemName(line) {
		return classified{kind: LineItemStart, name: line, qty: 1}
	}

	if m := nameQtyLineRE.FindStringSubmatch(line); m != nil {
		name := strings.TrimSpace(m[1])
		if isItemName(name) {
			qty, err := strconv.Atoi(m[2])
			if err == nil {
				return classified{kind: LineItemStartWithQty, name: name, qty: qty}
			}
		}
	}

	switch strings.ToLower(line) {
	case "equipped", "untradable":
		return classified{kind: LineOmissionMarker}
	}

	if m := qtyLineRE.FindStringSubmatch(line); m != nil {
		if qty, err := strconv.Atoi(m[1]); err == nil {
			return classified{kind: LineQtyLine, qty: qty}
		}
	}

	return classified{kind: LineIgnored}
}
