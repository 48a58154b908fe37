// Package pricing derives per-item price suggestions from normalized market
// snapshots. It consumes the fetcher's rows purely through their 100-slot
// shape; failed items simply produce no suggestion.
package pricing

import (
	"sort"

	"github.com/kzon-tools/torn-market-analyzer/pkg/market"
)

// Depth fractions anchoring the fair and greedy suggestions. The fair price
// sits where a quarter of the visible depth has sold through; the greedy
// price where three quarters have.
const (
	fairDepthFraction   = 0.25
	greedyDepthFraction = 0.75
)

// Suggestion is the per-item pricing summary shown to the user.
type Suggestion struct {
	ItemID       int
	ItemName     string
	MyQuantity   int
	ListingCount int
	CheapestSeen int64
	AveragePrice int64

	// FastSell undercuts the cheapest visible listing.
	FastSell int64

	// Fair matches the price level a quarter into the visible depth.
	Fair int64

	// Greedy matches the price level three quarters into the depth.
	Greedy int64
}

// Suggest computes a suggestion from one market row. ok is false when the
// row has no listings to anchor on.
func Suggest(row *market.Row) (Suggestion, bool) {
	listings := row.Listings()
	if len(listings) == 0 {
		return Suggestion{}, false
	}

	total := int64(0)
	for _, l := range listings {
		total += l.Amount
	}

	s := Suggestion{
		ItemID:       row.ItemID,
		ItemName:     row.ItemName,
		MyQuantity:   row.MyQuantity,
		ListingCount: len(listings),
		CheapestSeen: listings[0].Price,
		AveragePrice: row.AveragePrice,
		FastSell:     undercut(listings[0].Price),
		Fair:         priceAtDepth(listings, total, fairDepthFraction),
		Greedy:       priceAtDepth(listings, total, greedyDepthFraction),
	}
	return s, true
}

// BuildSummary converts a batch of fetch outcomes into suggestions, one per
// successful row with listings, ordered by item name ascending.
func BuildSummary(outcomes []market.Outcome) []Suggestion {
	out := make([]Suggestion, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		if s, ok := Suggest(o.Row); ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ItemName < out[j].ItemName
	})
	return out
}

// undercut prices one unit below the anchor, never below 1.
func undercut(anchor int64) int64 {
	if anchor <= 1 {
		return 1
	}
	return anchor - 1
}

// priceAtDepth walks the listings cheapest-first and returns the price of
// the listing at which cumulative amount reaches fraction of the total
// visible depth. Listings are assumed pre-sorted ascending by price.
func priceAtDepth(listings []market.Listing, total int64, fraction float64) int64 {
	threshold := int64(float64(total) * fraction)
	if threshold < 1 {
		threshold = 1
	}

	cum := int64(0)
	for _, l := range listings {
		cum += l.Amount
		if cum >= threshold {
			return l.Price
		}
	}
	return listings[len(listings)-1].Price
}
