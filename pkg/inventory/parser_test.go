package inventory

import (
	"strings"
	"testing"

	"github.com/kzon-tools/torn-market-analyzer/pkg/dictionary"
)

func testDict(t *testing.T, entries string) *dictionary.Dictionary {
	t.Helper()
	d, err := dictionary.Parse(strings.NewReader("name,id\n" + entries))
	if err != nil {
		t.Fatalf("build test dictionary: %v", err)
	}
	return d
}

// nameSet builds a recognizer over a fixed set of names, independent of the
// id dictionary used for aggregation.
func nameSet(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(s string) bool { return set[s] }
}

func TestMatch_AggregatesAcrossBlocks(t *testing.T) {
	d := testDict(t, "Xanax,206\n")
	raw := "Xanax\nx5\nXanax\nx3\nGhost Item\nx2"

	// "Ghost Item" is recognized as a name but resolves to no id.
	blocks := ParseBlocks(raw, nameSet("Xanax", "Ghost Item"))
	result := Aggregate(blocks, d)

	if len(result.Matched) != 1 {
		t.Fatalf("Matched len = %d, want 1", len(result.Matched))
	}
	m := result.Matched[0]
	if m.Name != "Xanax" || m.ItemID != 206 || m.Qty != 8 {
		t.Errorf("Matched[0] = %+v, want {Xanax 206 8}", m)
	}

	if len(result.Unmatched) != 1 {
		t.Fatalf("Unmatched len = %d, want 1", len(result.Unmatched))
	}
	u := result.Unmatched[0]
	if u.Name != "Ghost Item" || u.Qty != 2 {
		t.Errorf("Unmatched[0] = %+v, want {Ghost Item 2}", u)
	}
}

func TestMatch_OmittedBlockDroppedEverywhere(t *testing.T) {
	d := testDict(t, "Flowers,99\n")

	result := Match("Flowers\nEquipped", d)

	if len(result.Matched) != 0 {
		t.Errorf("Matched = %+v, want empty", result.Matched)
	}
	if len(result.Unmatched) != 0 {
		t.Errorf("Unmatched = %+v, want empty", result.Unmatched)
	}
}

func TestMatch_OmissionMarkers(t *testing.T) {
	d := testDict(t, "Flowers,99\nXanax,206\n")

	tests := []struct {
		name string
		raw  string
	}{
		{"equipped lowercase", "Flowers\nequipped"},
		{"untradable mixed case", "Flowers\nUnTradable"},
		{"marker after qty", "Flowers\nx10\nEquipped"},
		{"marker before qty", "Flowers\nEquipped\nx10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Match(tt.raw, d)
			if len(result.Matched) != 0 || len(result.Unmatched) != 0 {
				t.Errorf("Match(%q) = %+v, want empty result", tt.raw, result)
			}
		})
	}
}

func TestMatch_OmittedBlockDoesNotTaintNext(t *testing.T) {
	d := testDict(t, "Flowers,99\nXanax,206\n")

	result := Match("Flowers\nEquipped\nXanax\nx4", d)

	if len(result.Matched) != 1 {
		t.Fatalf("Matched len = %d, want 1", len(result.Matched))
	}
	if m := result.Matched[0]; m.Name != "Xanax" || m.Qty != 4 {
		t.Errorf("Matched[0] = %+v, want {Xanax 206 4}", m)
	}
}

func TestMatch_InlineQuantity(t *testing.T) {
	d := testDict(t, "Xanax,206\n")

	result := Match("Xanax x12", d)

	if len(result.Matched) != 1 || result.Matched[0].Qty != 12 {
		t.Errorf("Match(Xanax x12) = %+v, want qty 12", result.Matched)
	}
}

func TestMatch_LastQtyLineWins(t *testing.T) {
	d := testDict(t, "Xanax,206\n")

	result := Match("Xanax\nx5\nx9", d)

	if len(result.Matched) != 1 || result.Matched[0].Qty != 9 {
		t.Errorf("Matched = %+v, want qty 9", result.Matched)
	}
}

func TestMatch_QtyDefaultsToOne(t *testing.T) {
	d := testDict(t, "Xanax,206\n")

	result := Match("Xanax\n$830,000\nRRP $900,000", d)

	if len(result.Matched) != 1 || result.Matched[0].Qty != 1 {
		t.Errorf("Matched = %+v, want qty 1", result.Matched)
	}
}

func TestParseBlocks_OrphanLinesIgnored(t *testing.T) {
	// Leading decoration, a stray qty line and a stray marker before any
	// item block must all be dropped.
	blocks := ParseBlocks("Your listings\nx5\nEquipped\nXanax\nx2", nameSet("Xanax"))

	if len(blocks) != 1 {
		t.Fatalf("blocks = %+v, want exactly one", blocks)
	}
	b := blocks[0]
	if b.Name != "Xanax" || b.Qty != 2 || b.Omitted {
		t.Errorf("blocks[0] = %+v, want {Xanax 2 false}", b)
	}
}

func TestMatch_UnmatchedNeverMerged(t *testing.T) {
	d := testDict(t, "Xanax,206\n")

	blocks := ParseBlocks("Ghost Item\nx2\nGhost Item\nx3", nameSet("Ghost Item"))
	result := Aggregate(blocks, d)

	if len(result.Unmatched) != 2 {
		t.Fatalf("Unmatched len = %d, want 2 separate entries", len(result.Unmatched))
	}
	if result.Unmatched[0].Qty != 2 || result.Unmatched[1].Qty != 3 {
		t.Errorf("Unmatched = %+v, want qty 2 then 3 in parse order", result.Unmatched)
	}
}

func TestMatch_MatchedSortedByName(t *testing.T) {
	d := testDict(t, "Xanax,206\nBeer,180\nFlowers,99\n")

	result := Match("Xanax\nBeer\nFlowers", d)

	want := []string{"Beer", "Flowers", "Xanax"}
	if len(result.Matched) != 3 {
		t.Fatalf("Matched len = %d, want 3", len(result.Matched))
	}
	for i, name := range want {
		if result.Matched[i].Name != name {
			t.Errorf("Matched[%d].Name = %q, want %q", i, result.Matched[i].Name, name)
		}
	}
}

func TestMatch_EmptyInput(t *testing.T) {
	d := testDict(t, "Xanax,206\n")

	result := Match("", d)

	if len(result.Matched) != 0 || len(result.Unmatched) != 0 {
		t.Errorf("Match(\"\") = %+v, want empty result", result)
	}
}

func TestMatch_NormalizesOrnamentalWhitespace(t *testing.T) {
	d := testDict(t, "Xanax,206\n")

	result := Match("  Xanax \n  x5  ", d)

	if len(result.Matched) != 1 || result.Matched[0].Qty != 5 {
		t.Errorf("Matched = %+v, want Xanax qty 5", result.Matched)
	}
}

func TestMatch_NameContainingQtyToken(t *testing.T) {
	// A dictionary name that itself ends in a quantity-looking token must
	// start a block via the exact-match rule, not be split by the
	// inline-quantity pattern.
	d := testDict(t, "Model x2,4321\n")

	result := Match("Model x2", d)

	if len(result.Matched) != 1 {
		t.Fatalf("Matched = %+v, want exact name match", result.Matched)
	}
	if m := result.Matched[0]; m.ItemID != 4321 || m.Qty != 1 {
		t.Errorf("Matched[0] = %+v, want {Model x2 4321 1}", m)
	}
}

func TestClassifyLine_ClosedSet(t *testing.T) {
	isName := nameSet("Xanax")

	tests := []struct {
		line string
		kind LineKind
	}{
		{"Xanax", LineItemStart},
		{"Xanax x3", LineItemStartWithQty},
		{"Xanax x 3", LineItemStartWithQty},
		{"Equipped", LineOmissionMarker},
		{"UNTRADABLE", LineOmissionMarker},
		{"x7", LineQtyLine},
		{"X7", LineQtyLine},
		{"x 7", LineQtyLine},
		{"$830,000", LineIgnored},
		{"Total: $1,660,000", LineIgnored},
		{"Ghost Item", LineIgnored},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c := classifyLine(tt.line, isName)
			if c.kind != tt.kind {
				t.Errorf("classifyLine(%q).kind = %v, want %v", tt.line, c.kind, tt.kind)
			}
		})
	}
}

func TestSuggestNames(t *testing.T) {
	candidates := []string{"Xanax", "Flowers", "First Aid Kit", "Small First Aid Kit"}

	got := suggestNames("First Aid", candidates)
	if len(got) == 0 {
		t.Fatal("Expected suggestions for a near-miss name, got none")
	}
	if got[0] != "First Aid Kit" {
		t.Errorf("Best suggestion = %q, want %q", got[0], "First Aid Kit")
	}
}
