// Package testutil provides shared test utilities and helper functions.
// This file contains fluent builders and common test helpers to reduce
// duplication across test files and improve test maintainability.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

// ScriptedReply is one canned HTTP response served by a sequenced endpoint.
type ScriptedReply struct {
	Status  int
	Headers map[string]string
	Body    interface{} // JSON-encoded unless it is a []byte or string
}

// Reply creates a ScriptedReply with the given status and body.
// A nil body produces an empty response body.
func Reply(status int, body interface{}) *ScriptedReply {
	return &ScriptedReply{Status: status, Body: body, Headers: map[string]string{}}
}

// WithHeader adds a response header to the reply.
func (r *ScriptedReply) WithHeader(key, value string) *ScriptedReply {
	r.Headers[key] = value
	return r
}

// RecordedRequest captures what the mock server received.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     string
}

// MockServerBuilder provides a fluent interface for creating mock HTTP servers.
// It simplifies test server setup by providing chainable methods for configuring
// different endpoints and responses.
type MockServerBuilder struct {
	handlers map[string]http.HandlerFunc
	useTLS   bool
}

// MockServer is a running test server that records every request it receives.
type MockServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewMockServer creates a new MockServerBuilder.
func NewMockServer() *MockServerBuilder {
	return &MockServerBuilder{
		handlers: make(map[string]http.HandlerFunc),
		useTLS:   false,
	}
}

// WithTLS enables TLS for the mock server.
func (b *MockServerBuilder) WithTLS() *MockServerBuilder {
	b.useTLS = true
	return b
}

// WithCustomEndpoint adds a custom handler for the specified path.
func (b *MockServerBuilder) WithCustomEndpoint(path string, handler http.HandlerFunc) *MockServerBuilder {
	b.handlers[path] = handler
	return b
}

// WithJSONEndpoint adds a handler that always answers 200 with the JSON-encoded response.
func (b *MockServerBuilder) WithJSONEndpoint(path string, response interface{}) *MockServerBuilder {
	return b.WithSequence(path, Reply(http.StatusOK, response))
}

// WithSequence adds a handler that serves the replies in order, one per request.
// Once the sequence is exhausted the last reply is repeated.
func (b *MockServerBuilder) WithSequence(path string, replies ...*ScriptedReply) *MockServerBuilder {
	var mu sync.Mutex
	next := 0
	b.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		idx := next
		if next < len(replies)-1 {
			next++
		}
		mu.Unlock()

		if len(replies) == 0 {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeReply(w, replies[idx])
	}
	return b
}

// WithPagedEndpoint adds a handler serving a paginated envelope for field.
// The page is selected by the "page" query parameter (1-based); pages[i] holds
// the items of page i+1. Each response carries meta.<field>.page and page_count.
func (b *MockServerBuilder) WithPagedEndpoint(path, field string, pages [][]interface{}) *MockServerBuilder {
	b.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 || page > len(pages) {
			w.WriteHeader(http.StatusNotFound)
			writeJSONResponse(w, map[string]string{"error": "page out of range"})
			return
		}
		writeJSONResponse(w, PageEnvelope(field, pages[page-1], page, len(pages)))
	}
	return b
}

// WithErrorResponse adds a handler that returns the specified HTTP status code.
func (b *MockServerBuilder) WithErrorResponse(path string, statusCode int) *MockServerBuilder {
	b.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(ContentTypeHeader, ContentTypeJSON)
		w.WriteHeader(statusCode)
		if statusCode >= 400 {
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": http.StatusText(statusCode),
			})
		}
	}
	return b
}

// Build creates and returns the configured HTTP test server.
func (b *MockServerBuilder) Build() *MockServer {
	ms := &MockServer{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		ms.record(RecordedRequest{
			Method:   r.Method,
			Path:     r.URL.Path,
			RawQuery: r.URL.RawQuery,
			Header:   r.Header.Clone(),
			Body:     string(body),
		})

		if handler, ok := b.handlers[r.URL.Path]; ok {
			handler(w, r)
			return
		}
		w.Header().Set(ContentTypeHeader, ContentTypeJSON)
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Endpoint not found"})
	})

	if b.useTLS {
		ms.Server = httptest.NewTLSServer(handler)
	} else {
		ms.Server = httptest.NewServer(handler)
	}
	return ms
}

func (ms *MockServer) record(r RecordedRequest) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.requests = append(ms.requests, r)
}

// Requests returns a copy of every request received so far, in arrival order.
func (ms *MockServer) Requests() []RecordedRequest {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]RecordedRequest, len(ms.requests))
	copy(out, ms.requests)
	return out
}

// RequestCount returns how many requests hit the given path.
func (ms *MockServer) RequestCount(path string) int {
	n := 0
	for _, r := range ms.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// PageEnvelope builds a pagination envelope in the API's wire format.
func PageEnvelope(field string, items []interface{}, page, pageCount int) map[string]interface{} {
	if items == nil {
		items = []interface{}{}
	}
	return map[string]interface{}{
		field: items,
		"meta": map[string]interface{}{
			field: map[string]int{
				"page":       page,
				"page_count": pageCount,
			},
		},
	}
}

// RecordingTimer satisfies backoff.Timer. It records every requested wait and
// fires immediately, so retry tests observe delays without sleeping.
type RecordingTimer struct {
	mu    sync.Mutex
	waits []time.Duration
	c     chan time.Time
}

// NewRecordingTimer creates a RecordingTimer.
func NewRecordingTimer() *RecordingTimer {
	return &RecordingTimer{c: make(chan time.Time, 1)}
}

// Start records the duration and fires the timer channel.
func (t *RecordingTimer) Start(duration time.Duration) {
	t.mu.Lock()
	t.waits = append(t.waits, duration)
	t.mu.Unlock()
	select {
	case t.c <- time.Now():
	default:
	}
}

// Stop is a no-op.
func (t *RecordingTimer) Stop() {}

// C returns the timer channel.
func (t *RecordingTimer) C() <-chan time.Time {
	return t.c
}

// Waits returns the recorded wait durations in order.
func (t *RecordingTimer) Waits() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]time.Duration, len(t.waits))
	copy(out, t.waits)
	return out
}

func writeReply(w http.ResponseWriter, reply *ScriptedReply) {
	for k, v := range reply.Headers {
		w.Header().Set(k, v)
	}
	switch body := reply.Body.(type) {
	case nil:
		w.WriteHeader(reply.Status)
	case []byte:
		if w.Header().Get(ContentTypeHeader) == "" {
			w.Header().Set(ContentTypeHeader, ContentTypeJSON)
		}
		w.WriteHeader(reply.Status)
		_, _ = w.Write(body)
	case string:
		if w.Header().Get(ContentTypeHeader) == "" {
			w.Header().Set(ContentTypeHeader, ContentTypeJSON)
		}
		w.WriteHeader(reply.Status)
		_, _ = io.WriteString(w, body)
	default:
		w.Header().Set(ContentTypeHeader, ContentTypeJSON)
		w.WriteHeader(reply.Status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// writeJSONResponse writes a JSON response to the ResponseWriter.
func writeJSONResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set(ContentTypeHeader, ContentTypeJSON)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// AssertNoError is a helper that fails the test if err is not nil.
func AssertNoError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err != nil {
		if len(msgAndArgs) > 0 {
			format := msgAndArgs[0].(string)
			args := msgAndArgs[1:]
			t.Fatalf(format+": %v", append(args, err)...)
		} else {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
}

// AssertError is a helper that fails the test if err is nil.
func AssertError(t *testing.T, err error, msgAndArgs ...interface{}) {
	t.Helper()
	if err == nil {
		if len(msgAndArgs) > 0 {
			format := msgAndArgs[0].(string)
			t.Fatalf(format, msgAndArgs[1:]...)
		} else {
			t.Fatal("Expected error, got nil")
		}
	}
}

// AssertContains is a helper that fails the test if the string doesn't contain the substring.
func AssertContains(t *testing.T, s, substr string, msgAndArgs ...interface{}) {
	t.Helper()
	if !strings.Contains(s, substr) {
		if len(msgAndArgs) > 0 {
			format := msgAndArgs[0].(string)
			t.Fatalf(format, msgAndArgs[1:]...)
		} else {
			t.Fatalf("String %q does not contain %q", s, substr)
		}
	}
}

// Item builds a minimal directory record used as page content in tests.
func Item(id int) map[string]interface{} {
	return map[string]interface{}{
		"id":   id,
		"name": fmt.Sprintf("item-%d", id),
	}
}

// Items builds a slice of Item records for the given ids.
func Items(ids ...int) []interface{} {
	out := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		out = append(out, Item(id))
	}
	return out
}
