package testafy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const apiRoot = "/api/v0/"

type reply struct {
	status int
	body   string
}

func ok(body string) reply {
	return reply{status: http.StatusOK, body: body}
}

type recordedRequest struct {
	Path      string
	Params    map[string]any
	User      string
	Password  string
	HasAuth   bool
	RequestID string
	RawQuery  string
}

// fakeService replays scripted replies per route. The last reply of a route
// repeats once the sequence is exhausted.
type fakeService struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	replies  map[string][]reply
	served   map[string]int
	requests []recordedRequest
}

func newFakeService(t *testing.T) *fakeService {
	t.Helper()
	f := &fakeService{
		t:       t,
		replies: make(map[string][]reply),
		served:  make(map[string]int),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeService) on(route string, replies ...reply) *fakeService {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies[route] = append(f.replies[route], replies...)
	return f
}

func (f *fakeService) baseURI() string {
	return f.server.URL + apiRoot
}

func (f *fakeService) handle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		f.t.Errorf("failed to parse form: %v", err)
	}

	route := strings.TrimPrefix(r.URL.Path, apiRoot)
	rec := recordedRequest{
		Path:      route,
		RequestID: r.Header.Get(requestIDHeader),
		RawQuery:  r.URL.RawQuery,
	}
	rec.User, rec.Password, rec.HasAuth = r.BasicAuth()
	if raw := r.PostForm.Get(jsonFormField); raw != "" {
		if err := json.Unmarshal([]byte(raw), &rec.Params); err != nil {
			f.t.Errorf("json form field is not valid JSON: %v", err)
		}
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	seq := f.replies[route]
	idx := f.served[route]
	f.served[route]++
	f.mu.Unlock()

	if len(seq) == 0 {
		http.Error(w, `{"error":"no reply scripted"}`, http.StatusNotFound)
		return
	}
	if idx >= len(seq) {
		idx = len(seq) - 1
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(seq[idx].status)
	_, _ = io.WriteString(w, seq[idx].body)
}

func (f *fakeService) recorded() []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func (f *fakeService) count(route string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.served[route]
}

func (f *fakeService) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (f *fakeService) client(mutate ...func(*TestConfig)) *Client {
	cfg := NewTestConfig(f.baseURI(), "user", "pass", "For the url http://example.com\nthen pass this test")
	for _, m := range mutate {
		m(&cfg)
	}
	return NewClient(cfg, WithHTTPClient(f.server.Client()), WithLogger(quietLogger()))
}
