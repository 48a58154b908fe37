// Package testutil provides testing utilities for the market fetcher.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// AuthRecord captures how one request presented its credentials.
type AuthRecord struct {
	// Scheme is the Authorization header scheme ("ApiKey", "APIKEY") or
	// "query" when the key arrived as a query parameter, or "none".
	Scheme string
	Key    string
}

// MockResponse defines one canned response.
type MockResponse struct {
	StatusCode int
	Body       string
}

// MockMarket is a configurable mock itemmarket server. Responses can be
// queued per path so auth-fallback and retry sequences are scriptable.
type MockMarket struct {
	server *httptest.Server

	mu       sync.Mutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
	queues   map[string][]MockResponse

	RequestCount int
	AuthRecords  []AuthRecord
}

// NewMockMarket creates a running mock server. Callers own Close.
func NewMockMarket() *MockMarket {
	m := &MockMarket{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
		queues:   make(map[string][]MockResponse),
	}

	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.mu.Lock()
		m.RequestCount++
		m.AuthRecords = append(m.AuthRecords, recordAuth(r))

		if queue, ok := m.queues[r.URL.Path]; ok && len(queue) > 0 {
			resp := queue[0]
			m.queues[r.URL.Path] = queue[1:]
			m.mu.Unlock()
			writeResponse(w, resp)
			return
		}

		handler, ok := m.handlers[r.URL.Path]
		m.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}
		m.defaultHandler(w, r)
	}))

	return m
}

// URL returns the mock server URL.
func (m *MockMarket) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockMarket) Close() {
	m.server.Close()
}

// Reset clears tracking state and scripted responses.
func (m *MockMarket) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.AuthRecords = nil
	m.queues = make(map[string][]MockResponse)
	m.handlers = make(map[string]func(w http.ResponseWriter, r *http.Request))
}

// SetHandler sets a custom handler for a specific path.
func (m *MockMarket) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// QueueResponses appends scripted responses for a path; each is consumed by
// exactly one request, after which the path falls back to its handler.
func (m *MockMarket) QueueResponses(path string, responses ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[path] = append(m.queues[path], responses...)
}

// ItemMarketPath returns the request path the fetcher uses for an item.
func ItemMarketPath(itemID int) string {
	return fmt.Sprintf("/market/%d/itemmarket", itemID)
}

// ItemMarketBody builds a success payload with n listings priced
// basePrice, basePrice+1, ... ascending, amount 1 each.
func ItemMarketBody(itemID int, name string, n int, basePrice int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, `{"itemmarket":{"item":{"id":%d,"name":%q,"type":"Drug","average_price":%d},"listings":[`,
		itemID, name, basePrice)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `{"price":%d,"amount":1}`, basePrice+int64(i))
	}
	b.WriteString("]}}")
	return b.String()
}

// ErrorBody builds an upstream error payload.
func ErrorBody(code int, message string) string {
	return fmt.Sprintf(`{"error":{"code":%d,"error":%q}}`, code, message)
}

// GetRequestCount returns the number of requests seen.
func (m *MockMarket) GetRequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.RequestCount
}

// GetAuthRecords returns a copy of the recorded auth placements.
func (m *MockMarket) GetAuthRecords() []AuthRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AuthRecord, len(m.AuthRecords))
	copy(out, m.AuthRecords)
	return out
}

// recordAuth extracts the credential placement from a request.
func recordAuth(r *http.Request) AuthRecord {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		rec := AuthRecord{Scheme: parts[0]}
		if len(parts) == 2 {
			rec.Key = parts[1]
		}
		return rec
	}
	if key := r.URL.Query().Get("key"); key != "" {
		return AuthRecord{Scheme: "query", Key: key}
	}
	return AuthRecord{Scheme: "none"}
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	w.Header().Set("Content-Type", "application/json")
	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// defaultHandler answers any unscripted path with an empty market.
func (m *MockMarket) defaultHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"itemmarket":{"item":{"id":0,"name":"","type":"","average_price":0},"listings":[]}}`))
}
