package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// RecordedRequest is a request observed by a FakeBackend.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   string
	HasCSRF bool
	CSRF    string
	Body    []byte
}

// Decode unmarshals the recorded JSON body into v.
func (r RecordedRequest) Decode(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decoding recorded body %q: %v", r.Body, err)
	}
}

// FakeBackend is an httptest server that mimics the REST API under /api
// and records every request it receives.
type FakeBackend struct {
	Server *httptest.Server

	mux      *http.ServeMux
	mu       sync.Mutex
	requests []RecordedRequest
}

// NewFakeBackend starts a FakeBackend that is closed when the test ends.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	f := &FakeBackend{mux: http.NewServeMux()}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API base URL of the fake.
func (f *FakeBackend) URL() string {
	return f.Server.URL + "/api"
}

// Handle registers h for a "METHOD /path" pattern relative to /api.
func (f *FakeBackend) Handle(pattern string, h http.HandlerFunc) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		f.mux.HandleFunc("/api"+pattern, h)
		return
	}
	f.mux.HandleFunc(method+" /api"+path, h)
}

// Requests returns a copy of the requests seen so far.
func (f *FakeBackend) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// Last returns the most recent request.
func (f *FakeBackend) Last(t *testing.T) RecordedRequest {
	t.Helper()
	reqs := f.Requests()
	if len(reqs) == 0 {
		t.Fatal("no requests recorded")
	}
	return reqs[len(reqs)-1]
}

func (f *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))

	values, has := r.Header[http.CanonicalHeaderKey("X-CSRF-Token")]
	rec := RecordedRequest{
		Method:  r.Method,
		Path:    strings.TrimPrefix(r.URL.Path, "/api"),
		Query:   r.URL.RawQuery,
		HasCSRF: has,
		Body:    body,
	}
	if has && len(values) > 0 {
		rec.CSRF = values[0]
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	f.mux.ServeHTTP(w, r)
}

// JSON returns a handler that writes v with the given status.
func JSON(status int, v any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, v)
	}
}

// WriteJSON writes v as a JSON response.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SetSession sets the session and CSRF cookies the backend issues on login.
func SetSession(w http.ResponseWriter, csrf string) {
	http.SetCookie(w, &http.Cookie{Name: "access_token_cookie", Value: "jwt-" + csrf, Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: "csrf_access_token", Value: csrf, Path: "/"})
}

// LoginHandler answers a successful login and issues a session.
func LoginHandler(csrf string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SetSession(w, csrf)
		WriteJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	}
}
