package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// RecordedRequest is what the fake backend saw for one call.
type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Query    string // decoded "query" parameter
	HasQuery bool   // whether "query" was present at all

	Fields   map[string]string // multipart text fields
	HasFile  bool
	FileName string
	FileData string

	RequestID string
}

// HasField reports whether a multipart text field was sent.
func (r RecordedRequest) HasField(name string) bool {
	_, ok := r.Fields[name]
	return ok
}

// FakeBackend is an httptest server speaking the resource backend's REST
// contract. It records every request and serves canned listings.
type FakeBackend struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest

	// ListBody is returned for GET /api/resources. Defaults to "[]".
	ListBody string
	// Status overrides the status code per "METHOD /path" key.
	Status map[string]int
}

// NewFakeBackend starts a fake backend that is closed with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{ListBody: "[]", Status: map[string]int{}}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Close)
	return fb
}

// SetList sets the listing response to the JSON encoding of v.
func (fb *FakeBackend) SetList(t *testing.T, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal listing: %v", err)
	}
	fb.mu.Lock()
	fb.ListBody = string(b)
	fb.mu.Unlock()
}

// SetStatus makes the fake reply with code for method+path.
func (fb *FakeBackend) SetStatus(method, path string, code int) {
	fb.mu.Lock()
	fb.Status[method+" "+path] = code
	fb.mu.Unlock()
}

// Requests returns a copy of everything recorded so far.
func (fb *FakeBackend) Requests() []RecordedRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	out := make([]RecordedRequest, len(fb.requests))
	copy(out, fb.requests)
	return out
}

// Calls returns "METHOD /path" for each recorded request, in order.
func (fb *FakeBackend) Calls() []string {
	reqs := fb.Requests()
	out := make([]string, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	rec := RecordedRequest{
		Method:    r.Method,
		Path:      r.URL.EscapedPath(),
		RawQuery:  r.URL.RawQuery,
		RequestID: r.Header.Get("X-Request-ID"),
	}
	if vals, ok := r.URL.Query()["query"]; ok {
		rec.HasQuery = true
		if len(vals) > 0 {
			rec.Query = vals[0]
		}
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			rec.Fields = make(map[string]string)
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					rec.Fields[k] = v[0]
				}
			}
			if f, hdr, err := r.FormFile("file"); err == nil {
				data, _ := io.ReadAll(f)
				f.Close()
				rec.HasFile = true
				rec.FileName = hdr.Filename
				rec.FileData = string(data)
			}
		}
	}

	fb.mu.Lock()
	fb.requests = append(fb.requests, rec)
	code, hasCode := fb.Status[r.Method+" "+rec.Path]
	listBody := fb.ListBody
	fb.mu.Unlock()

	if hasCode {
		w.WriteHeader(code)
		return
	}

	switch {
	case r.Method == http.MethodGet && rec.Path == "/api/resources":
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, listBody)
	case r.Method == http.MethodPost && rec.Path == "/api/upload":
		_, _ = io.WriteString(w, `{"success":true}`)
	case (r.Method == http.MethodPut || r.Method == http.MethodDelete) && strings.HasPrefix(rec.Path, "/api/resources/"):
		_, _ = io.WriteString(w, `{"success":true}`)
	default:
		http.NotFound(w, r)
	}
}
