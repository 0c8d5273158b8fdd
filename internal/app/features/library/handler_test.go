package library_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/inforepo/internal/app/backend"
	uierrors "github.com/dalemusser/inforepo/internal/app/features/errors"
	"github.com/dalemusser/inforepo/internal/app/features/library"
	"github.com/dalemusser/inforepo/internal/app/system/clientsession"
	"github.com/dalemusser/inforepo/internal/app/system/sequence"
	"github.com/dalemusser/inforepo/internal/domain/models"
	"github.com/dalemusser/inforepo/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, api library.ResourceAPI) *library.Handler {
	t.Helper()
	logger := zap.NewNop()
	return library.NewHandler(api, nil, sequence.New(time.Hour), uierrors.NewErrorLogger(logger), logger, library.Options{})
}

func newBackendHandler(t *testing.T) (*library.Handler, *testutil.FakeBackend) {
	t.Helper()
	fb := testutil.NewFakeBackend(t)
	return newTestHandler(t, backend.New(fb.URL, zap.NewNop())), fb
}

// serve routes req through the library router. Rendering may panic
// without an initialized template engine.
func serve(h *library.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	func() {
		defer func() {
			if r := recover(); r != nil {
				// Template rendering may panic in tests
			}
		}()
		library.Routes(h).ServeHTTP(rec, req)
	}()
	return rec
}

// memAPI is an in-memory ResourceAPI.
type memAPI struct {
	mu    sync.Mutex
	items []models.Resource
	calls []string

	// onList runs inside List before it returns.
	onList func()
	// updateErr is returned by Update when set.
	updateErr error
}

func (m *memAPI) record(call string) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()
}

func (m *memAPI) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *memAPI) List(_ context.Context, query string) ([]models.Resource, error) {
	m.record("list " + query)
	if m.onList != nil {
		m.onList()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Resource(nil), m.items...), nil
}

func (m *memAPI) Upload(_ context.Context, req backend.UploadRequest) error {
	m.record("upload " + req.URL)
	return nil
}

func (m *memAPI) Update(_ context.Context, id, notes, tags string) error {
	m.record("update " + id)
	return m.updateErr
}

func (m *memAPI) Delete(_ context.Context, id string) error {
	m.record("delete " + id)
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.items[:0]
	for _, r := range m.items {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.items = kept
	return nil
}

func TestServeList_SingleEncodedGet(t *testing.T) {
	h, fb := newBackendHandler(t)

	serve(h, httptest.NewRequest(http.MethodGet, "/?query=go+%26+rust", nil))

	reqs := fb.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected exactly 1 backend request, got %d", len(reqs))
	}
	if reqs[0].Method != http.MethodGet || reqs[0].Path != "/api/resources" {
		t.Errorf("got %s %s", reqs[0].Method, reqs[0].Path)
	}
	if reqs[0].Query != "go & rust" {
		t.Errorf("query: got %q, want %q", reqs[0].Query, "go & rust")
	}
}

func TestServeList_EmptyQueryListsAll(t *testing.T) {
	h, fb := newBackendHandler(t)

	serve(h, httptest.NewRequest(http.MethodGet, "/", nil))

	reqs := fb.Requests()
	if len(reqs) != 1 || !reqs[0].HasQuery || reqs[0].Query != "" {
		t.Fatalf("expected one GET with empty query, got %+v", reqs)
	}
}

func TestServeList_StaleFragmentDropped(t *testing.T) {
	api := &memAPI{}
	h := newTestHandler(t, api)

	// A newer fetch for the same client starts while this one is in flight.
	api.onList = func() { h.Seq.Begin("client-1") }

	req := httptest.NewRequest(http.MethodGet, "/?query=a", nil)
	req = testutil.HTMX(clientsession.WithClientID(req, "client-1"), "resource-list")
	rec := serve(h, req)

	rec.AssertStatus(t, http.StatusNoContent)
	if got := rec.Header().Get("HX-Reswap"); got != "none" {
		t.Errorf("HX-Reswap: got %q, want %q", got, "none")
	}
}

func TestServeList_LatestFragmentNotDropped(t *testing.T) {
	api := &memAPI{}
	h := newTestHandler(t, api)

	req := httptest.NewRequest(http.MethodGet, "/?query=a", nil)
	req = testutil.HTMX(clientsession.WithClientID(req, "client-1"), "resource-list")
	rec := serve(h, req)

	if rec.Code == http.StatusNoContent {
		t.Error("latest response must not be dropped")
	}
	if rec.Header().Get("HX-Reswap") != "" {
		t.Error("HX-Reswap should not be set on the latest response")
	}
}

func TestHandleUpload_URLOnly(t *testing.T) {
	h, fb := newBackendHandler(t)

	req := testutil.NewMultipartRequest(t, "/upload?query=conf", map[string]string{
		"url":   "https://www.youtube.com/watch?v=abc",
		"notes": "keynote",
		"tags":  "video,conf",
	})
	rec := serve(h, req)

	rec.AssertRedirect(t, "/?query=conf")
	reqs := fb.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 backend request, got %d", len(reqs))
	}
	up := reqs[0]
	if up.Method != http.MethodPost || up.Path != "/api/upload" {
		t.Fatalf("got %s %s", up.Method, up.Path)
	}
	if up.HasFile {
		t.Error("file part should be omitted")
	}
	if up.Fields["url"] != "https://www.youtube.com/watch?v=abc" || up.Fields["notes"] != "keynote" || up.Fields["tags"] != "video,conf" {
		t.Errorf("unexpected fields: %+v", up.Fields)
	}
}

func TestHandleUpload_FileOnly(t *testing.T) {
	h, fb := newBackendHandler(t)

	req := testutil.NewMultipartRequest(t, "/upload?query=",
		map[string]string{"notes": "", "tags": ""},
		testutil.MultipartFile{Field: "file", FileName: "a.pdf", Data: "%PDF-1.4 body"},
	)
	rec := serve(h, req)

	rec.AssertRedirect(t, "/?query=")
	reqs := fb.Requests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 backend request, got %d", len(reqs))
	}
	if !reqs[0].HasFile || reqs[0].FileName != "a.pdf" || reqs[0].FileData != "%PDF-1.4 body" {
		t.Errorf("file not forwarded: %+v", reqs[0])
	}
	if reqs[0].HasField("url") {
		t.Error("url field should be omitted")
	}
}

func TestHandleUpload_RejectsMissingFileAndURL(t *testing.T) {
	h, fb := newBackendHandler(t)

	req := testutil.NewMultipartRequest(t, "/upload?query=x", map[string]string{
		"url":   "   ",
		"notes": "orphan notes",
	})
	serve(h, req)

	for _, c := range fb.Calls() {
		if strings.HasPrefix(c, http.MethodPost) {
			t.Fatalf("no upload should reach the backend, got %v", fb.Calls())
		}
	}
}

func TestHandleUpload_RejectsNonHTTPURL(t *testing.T) {
	h, fb := newBackendHandler(t)

	req := testutil.NewMultipartRequest(t, "/upload", map[string]string{
		"url": "ftp://example.com/file",
	})
	serve(h, req)

	for _, c := range fb.Calls() {
		if strings.HasPrefix(c, http.MethodPost) {
			t.Fatalf("no upload should reach the backend, got %v", fb.Calls())
		}
	}
}

func TestHandleUpload_BackendFailureStillRedirects(t *testing.T) {
	h, fb := newBackendHandler(t)
	fb.SetStatus(http.MethodPost, "/api/upload", http.StatusInternalServerError)

	req := testutil.NewMultipartRequest(t, "/upload?query=q", map[string]string{
		"url": "https://example.com",
	})
	rec := serve(h, req)

	rec.AssertRedirect(t, "/?query=q")
}

func TestHandleUpload_TooLarge(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	logger := zap.NewNop()
	h := library.NewHandler(backend.New(fb.URL, logger), nil, sequence.New(time.Hour),
		uierrors.NewErrorLogger(logger), logger, library.Options{MaxUploadBytes: 1024})

	req := testutil.NewMultipartRequest(t, "/upload?query=annual+report", nil,
		testutil.MultipartFile{Field: "file", FileName: "big.bin", Data: strings.Repeat("x", 8192)},
	)
	rec := serve(h, req)

	rec.AssertRedirect(t, "/?query=annual+report")
	if n := len(fb.Requests()); n != 0 {
		t.Errorf("expected no backend requests, got %d", n)
	}
}

func TestHandleEdit_SendsBothFieldsThenRefreshes(t *testing.T) {
	h, fb := newBackendHandler(t)

	req := testutil.HTMX(testutil.NewFormRequest("/resources/1/edit", map[string]string{
		"notes": "new notes",
		"tags":  "a,b",
		"query": "a",
	}), "resource-list")
	serve(h, req)

	reqs := fb.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected PUT then GET, got %v", fb.Calls())
	}
	put := reqs[0]
	if put.Method != http.MethodPut || put.Path != "/api/resources/1" {
		t.Fatalf("first call: got %s %s", put.Method, put.Path)
	}
	if put.Fields["notes"] != "new notes" || put.Fields["tags"] != "a,b" {
		t.Errorf("unexpected fields: %+v", put.Fields)
	}
	if reqs[1].Method != http.MethodGet || reqs[1].Query != "a" {
		t.Errorf("refresh: got %s query=%q", reqs[1].Method, reqs[1].Query)
	}
}

func TestHandleEdit_PlainFormRedirects(t *testing.T) {
	h, fb := newBackendHandler(t)

	req := testutil.NewFormRequest("/resources/1/edit", map[string]string{
		"notes": "n",
		"tags":  "",
		"query": "two words",
	})
	rec := serve(h, req)

	rec.AssertRedirect(t, "/?query=two+words")
	if calls := fb.Calls(); !reflect.DeepEqual(calls, []string{"PUT /api/resources/1"}) {
		t.Errorf("calls: got %v", calls)
	}
}

func TestHandleEdit_FailureStillRefreshes(t *testing.T) {
	h, fb := newBackendHandler(t)
	fb.SetStatus(http.MethodPut, "/api/resources/9", http.StatusNotFound)

	req := testutil.HTMX(testutil.NewFormRequest("/resources/9/edit", map[string]string{
		"notes": "n", "tags": "t",
	}), "resource-list")
	serve(h, req)

	want := []string{"PUT /api/resources/9", "GET /api/resources"}
	if calls := fb.Calls(); !reflect.DeepEqual(calls, want) {
		t.Errorf("calls: got %v, want %v", calls, want)
	}
}

func TestHandleDelete_ThenRefreshEmpty(t *testing.T) {
	api := &memAPI{items: []models.Resource{{ID: "1", Title: "Only", Type: "web", Tags: []string{}}}}
	h := newTestHandler(t, api)

	req := testutil.HTMX(testutil.NewFormRequest("/resources/1/delete", map[string]string{
		"query": "",
	}), "resource-list")
	serve(h, req)

	want := []string{"delete 1", "list "}
	if calls := api.Calls(); !reflect.DeepEqual(calls, want) {
		t.Fatalf("calls: got %v, want %v", calls, want)
	}
	left, _ := api.List(context.Background(), "")
	if len(left) != 0 {
		t.Errorf("expected empty list after delete, got %d", len(left))
	}
}

func TestHandleDelete_BackendCalls(t *testing.T) {
	h, fb := newBackendHandler(t)

	req := testutil.HTMX(testutil.NewFormRequest("/resources/1/delete", map[string]string{
		"query": "",
	}), "resource-list")
	serve(h, req)

	reqs := fb.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected DELETE then GET, got %v", fb.Calls())
	}
	if reqs[0].Method != http.MethodDelete || reqs[0].Path != "/api/resources/1" {
		t.Errorf("first call: got %s %s", reqs[0].Method, reqs[0].Path)
	}
	if reqs[1].Method != http.MethodGet || !reqs[1].HasQuery || reqs[1].Query != "" {
		t.Errorf("refresh: got %s %s?%s", reqs[1].Method, reqs[1].Path, reqs[1].RawQuery)
	}
}

func TestNewHandler_Defaults(t *testing.T) {
	h := library.NewHandler(&memAPI{}, nil, nil, nil, zap.NewNop(), library.Options{})
	if h.Loc != time.UTC {
		t.Errorf("Loc: got %v, want UTC", h.Loc)
	}
	if h.MaxUploadBytes != 32<<20 {
		t.Errorf("MaxUploadBytes: got %d", h.MaxUploadBytes)
	}
}

func TestRoutes_MiddlewareWrapsOnlyMutations(t *testing.T) {
	api := &memAPI{}
	h := newTestHandler(t, api)
	block := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	router := library.Routes(h, block)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewFormRequest("/resources/1/delete", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("delete: got %d, want 429", rec.Code)
	}
	if len(api.Calls()) != 0 {
		t.Errorf("blocked request reached the backend: %v", api.Calls())
	}

	rec = httptest.NewRecorder()
	func() {
		defer func() { recover() }()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	}()
	if calls := api.Calls(); len(calls) != 1 || calls[0] != "list " {
		t.Errorf("list should not be wrapped, calls: %v", calls)
	}
}

func TestHandleEdit_StaleRefreshQueuesNoticeAsFlash(t *testing.T) {
	logger := zap.NewNop()
	sm, err := clientsession.NewManager("0123456789abcdef0123456789abcdef", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	api := &memAPI{updateErr: errors.New("backend down")}
	h := library.NewHandler(api, sm, sequence.New(time.Hour), uierrors.NewErrorLogger(logger), logger, library.Options{})

	// A newer refresh for the same client wins while this one is in flight.
	api.onList = func() { h.Seq.Begin("client-1") }

	req := testutil.HTMX(testutil.NewFormRequest("/resources/1/edit", map[string]string{
		"notes": "n", "tags": "t",
	}), "resource-list")
	rec := serve(h, clientsession.WithClientID(req, "client-1"))

	rec.AssertStatus(t, http.StatusNoContent)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	flashes := sm.Flashes(httptest.NewRecorder(), next)
	if len(flashes) != 1 || !flashes[0].IsError || flashes[0].Message != "Could not save changes." {
		t.Errorf("expected the save failure as an error flash, got %+v", flashes)
	}
}
