package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kzon-tools/torn-market-analyzer/internal/config"
	"github.com/kzon-tools/torn-market-analyzer/internal/testutil"
	"github.com/kzon-tools/torn-market-analyzer/pkg/dictionary"
)

func newTestServer(t *testing.T, baseURL string) *Server {
	t.Helper()

	dict, err := dictionary.Parse(strings.NewReader("name,id\nXanax,206\nFlowers,99\n"))
	if err != nil {
		t.Fatalf("dictionary parse: %v", err)
	}

	cfg := config.Default()
	cfg.API.BaseURL = baseURL
	cfg.API.Key = "configkey"
	cfg.API.Timeout = 2 * time.Second
	cfg.Fetch.RetryCycles = 2
	cfg.Fetch.InitialBackoff = 5 * time.Millisecond
	cfg.Fetch.MaxBackoff = 20 * time.Millisecond
	cfg.RateLimit.PerMinute = 600
	cfg.Web.SubmitPerMinute = 100

	s, err := NewServer(cfg, dict, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func postForm(s *Server, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	s := newTestServer(t, "http://unused.test")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET / = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Item Market listings") {
		t.Error("index page missing the listings form")
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, "http://unused.test")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("GET /healthz = %d, want 200", rec.Code)
	}
}

func TestAnalyze_EmptyListings(t *testing.T) {
	s := newTestServer(t, "http://unused.test")

	rec := postForm(s, url.Values{"listings": {"   "}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Listings text is empty.") {
		t.Error("response missing the empty-listings error")
	}
}

func TestAnalyze_MissingKey(t *testing.T) {
	s := newTestServer(t, "http://unused.test")
	s.cfg.API.Key = ""

	rec := postForm(s, url.Values{"listings": {"Xanax\nx5"}})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "API key required.") {
		t.Error("response missing the api-key error")
	}
}

func TestAnalyze_FullPipeline(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()

	mock.QueueResponses(testutil.ItemMarketPath(206), testutil.MockResponse{
		Body: testutil.ItemMarketBody(206, "Xanax", 3, 830000),
	})

	s := newTestServer(t, mock.URL())

	rec := postForm(s, url.Values{
		"listings": {"Xanax\nx5\nGhost Item\nx2"},
		"api_key":  {"userkey"},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()

	// Fast-sell undercuts the cheapest listing by one.
	if !strings.Contains(body, "829,999") {
		t.Error("response missing the fast-sell price")
	}
	if !strings.Contains(body, "Price overview") {
		t.Error("response missing the summary table")
	}
	if !strings.Contains(body, "Unmatched items") {
		t.Error("response missing the unmatched section")
	}
}

func TestAnalyze_SubmitThrottle(t *testing.T) {
	mock := testutil.NewMockMarket()
	defer mock.Close()

	s := newTestServer(t, mock.URL())
	s.cfg.Web.SubmitPerMinute = 1
	// Rebuild with the tightened limit.
	s2, err := NewServer(s.cfg, s.dict, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	form := url.Values{"listings": {"Xanax\nx1"}, "api_key": {"userkey"}}

	if rec := postForm(s2, form); rec.Code != http.StatusOK {
		t.Fatalf("first submit = %d, want 200", rec.Code)
	}
	rec := postForm(s2, form)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second submit = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Errorf("Retry-After = %q, want %q", rec.Header().Get("Retry-After"), "60")
	}
}

func TestComma(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{100, "100"},
		{1000, "1,000"},
		{829999, "829,999"},
		{1234567, "1,234,567"},
		{-4500, "-4,500"},
	}

	for _, tt := range tests {
		if got := comma(tt.in); got != tt.want {
			t.Errorf("comma(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
