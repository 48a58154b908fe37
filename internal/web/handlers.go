package web

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/kzon-tools/torn-market-analyzer/pkg/inventory"
	"github.com/kzon-tools/torn-market-analyzer/pkg/market"
	"github.com/kzon-tools/torn-market-analyzer/pkg/pricing"
)

// pageData drives the single-page template for both the empty form and the
// analysis results.
type pageData struct {
	Error   string
	Warning string
	Ran     bool

	Listings string

	Summary   []suggestionView
	Parsed    []parsedView
	Unmatched []unmatchedView
	Failures  []failureView
}

type suggestionView struct {
	Item     string
	Quantity string
	FastSell string
	Fair     string
	Greedy   string
}

type parsedView struct {
	Name     string
	ID       int
	Quantity int
}

type unmatchedView struct {
	Name        string
	Quantity    int
	Suggestions string
}

type failureView struct {
	ItemID  int
	Message string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, pageData{})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.submitLimiter.Allow() {
		w.Header().Set("Retry-After", "60")
		s.render(w, http.StatusTooManyRequests, pageData{
			Error: "Too many submissions right now. Wait a minute and try again.",
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		s.render(w, http.StatusBadRequest, pageData{Error: "Malformed form submission."})
		return
	}

	raw := r.FormValue("listings")
	key := strings.TrimSpace(r.FormValue("api_key"))
	if key == "" {
		key = s.cfg.API.Key
	}

	if strings.TrimSpace(raw) == "" {
		s.render(w, http.StatusBadRequest, pageData{Error: "Listings text is empty."})
		return
	}
	if key == "" {
		s.render(w, http.StatusBadRequest, pageData{
			Error:    "API key required.",
			Listings: raw,
		})
		return
	}

	result := inventory.Match(raw, s.dict)
	data := pageData{
		Ran:       true,
		Listings:  raw,
		Parsed:    parsedViews(result.Matched),
		Unmatched: unmatchedViews(result.Unmatched),
	}

	if len(result.Matched) == 0 {
		data.Warning = "No matches found."
		s.render(w, http.StatusOK, data)
		return
	}

	mcfg := market.Config{
		BaseURL:        s.cfg.API.BaseURL,
		APIKey:         key,
		Timeout:        s.cfg.API.Timeout,
		RetryCycles:    s.cfg.Fetch.RetryCycles,
		InitialBackoff: s.cfg.Fetch.InitialBackoff,
		MaxBackoff:     s.cfg.Fetch.MaxBackoff,
		BackoffFactor:  s.cfg.Fetch.BackoffFactor,
		MaxConcurrency: s.cfg.Fetch.Concurrency,
	}
	client, err := market.New(mcfg, s.bucket, s.logger)
	if err != nil {
		s.logger.Error().Err(err).Msg("client setup failed")
		s.render(w, http.StatusInternalServerError, pageData{Error: "Analyzer misconfigured."})
		return
	}

	reqs := make([]market.Request, 0, len(result.Matched))
	for _, it := range result.Matched {
		reqs = append(reqs, market.Request{ItemID: it.ItemID, Quantity: it.Qty})
	}

	outcomes := client.FetchAll(r.Context(), reqs)

	for _, o := range outcomes {
		if !o.OK() {
			data.Failures = append(data.Failures, failureView{ItemID: o.ItemID, Message: o.Err.Error()})
		}
	}

	summary := pricing.BuildSummary(outcomes)
	if len(summary) == 0 && len(data.Failures) == 0 {
		data.Warning = "No valid listings found in the market data."
		s.render(w, http.StatusOK, data)
		return
	}

	data.Summary = suggestionViews(summary)
	s.render(w, http.StatusOK, data)
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error().Err(err).Msg("template render failed")
	}
}

func parsedViews(matched []inventory.MatchedItem) []parsedView {
	out := make([]parsedView, 0, len(matched))
	for _, it := range matched {
		out = append(out, parsedView{Name: it.Name, ID: it.ItemID, Quantity: it.Qty})
	}
	return out
}

func unmatchedViews(unmatched []inventory.UnmatchedEntry) []unmatchedView {
	out := make([]unmatchedView, 0, len(unmatched))
	for _, u := range unmatched {
		out = append(out, unmatchedView{
			Name:        u.Name,
			Quantity:    u.Qty,
			Suggestions: strings.Join(u.Suggestions, ", "),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func suggestionViews(summary []pricing.Suggestion) []suggestionView {
	out := make([]suggestionView, 0, len(summary))
	for _, sg := range summary {
		out = append(out, suggestionView{
			Item:     sg.ItemName,
			Quantity: comma(int64(sg.MyQuantity)),
			FastSell: comma(sg.FastSell),
			Fair:     comma(sg.Fair),
			Greedy:   comma(sg.Greedy),
		})
	}
	return out
}

// comma renders n with thousands separators.
func comma(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
		if len(s) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}

	if neg {
		return "-" + b.String()
	}
	return b.String()
}
