package market

// MaxListings is the fixed depth of a normalized order-book snapshot. Every
// successful row carries exactly this many price/amount slots; slots beyond
// the real listing count stay nil.
const MaxListings = 100

// Listing is one order-book entry as returned by the itemmarket endpoint.
type Listing struct {
	Price  int64 `json:"price"`
	Amount int64 `json:"amount"`
}

// Row is the normalized wide-format snapshot for one item. Prices and
// Amounts are parallel: slot i holds the i-th cheapest listing, assuming the
// upstream returns listings ascending by price.
type Row struct {
	ItemID       int
	ItemName     string
	ItemType     string
	AveragePrice int64
	MyQuantity   int
	Prices       [MaxListings]*int64
	Amounts      [MaxListings]*int64
}

// ListingCount reports how many slots are filled.
func (r *Row) ListingCount() int {
	n := 0
	for _, p := range r.Prices {
		if p == nil {
			break
		}
		n++
	}
	return n
}

// Listings returns the filled slots as listing values, cheapest first.
func (r *Row) Listings() []Listing {
	n := r.ListingCount()
	out := make([]Listing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Listing{Price: *r.Prices[i], Amount: *r.Amounts[i]})
	}
	return out
}

// Outcome is the per-item fetch result: exactly one of Row or Err is set.
// A failed item never aborts the batch; its failure travels alongside the
// successful rows.
type Outcome struct {
	ItemID     int
	MyQuantity int
	Row        *Row
	Err        error
}

// OK reports whether the fetch produced a market row.
func (o Outcome) OK() bool {
	return o.Row != nil
}

// Request identifies one item to fetch together with the caller's held
// quantity, carried through to the output row.
type Request struct {
	ItemID   int
	Quantity int
}

// Wire shapes of the itemmarket endpoint.

type apiEnvelope struct {
	ItemMarket *itemMarketPayload `json:"itemmarket"`
	Error      *APIError          `json:"error"`
}

type itemMarketPayload struct {
	Item     itemInfo  `json:"item"`
	Listings []Listing `json:"listings"`
}

type itemInfo struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	AveragePrice int64  `json:"average_price"`
}
