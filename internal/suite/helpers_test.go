package suite

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"testafy/pkg/testafy"
)

// outcome is what the fake service reports for a submitted script.
type outcome struct {
	status      string
	passed      int
	failed      int
	results     []string
	screenshots map[string]string
	reject      string
}

// fakeService answers the account endpoints. Each submitted script is looked
// up in outcomes by its first line; unknown scripts complete with one pass.
type fakeService struct {
	server *httptest.Server

	mu       sync.Mutex
	outcomes map[string]outcome
	runs     map[string]outcome
	scripts  []string
}

func newFakeService(t *testing.T, outcomes map[string]outcome) *fakeService {
	t.Helper()
	f := &fakeService{
		outcomes: outcomes,
		runs:     make(map[string]outcome),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeService) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	var params map[string]any
	_ = json.Unmarshal([]byte(r.PostForm.Get("json")), &params)
	route := strings.TrimPrefix(r.URL.Path, "/api/v0/")

	w.Header().Set("Content-Type", "application/json")

	if route == "test/run" {
		script, _ := params["pbehave"].(string)
		key := strings.SplitN(script, "\n", 2)[0]

		f.mu.Lock()
		f.scripts = append(f.scripts, script)
		o, ok := f.outcomes[key]
		if !ok {
			o = outcome{status: "completed", passed: 1, results: []string{"ok 1"}}
		}
		id := fmt.Sprintf("run-%d", len(f.scripts))
		if o.reject == "" {
			f.runs[id] = o
		}
		f.mu.Unlock()

		if o.reject != "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": o.reject})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"test_run_test_id": id})
		return
	}

	id, _ := params["trt_id"].(string)
	f.mu.Lock()
	o, known := f.runs[id]
	f.mu.Unlock()
	if !known {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown test id"})
		return
	}

	var body any
	switch route {
	case "test/status":
		body = map[string]string{"status": o.status}
	case "test/stats/passed":
		body = map[string]int{"passed": o.passed}
	case "test/stats/failed":
		body = map[string]int{"failed": o.failed}
	case "test/stats/planned":
		body = map[string]int{"planned": o.passed + o.failed}
	case "test/results":
		pairs := make([][]any, len(o.results))
		for i, line := range o.results {
			pairs[i] = []any{i + 1, line}
		}
		body = map[string]any{"results": pairs}
	case "test/screenshots":
		names := make([]string, 0, len(o.screenshots))
		for name := range o.screenshots {
			names = append(names, name)
		}
		body = map[string]any{"screenshots": names}
	case "test/screenshot":
		name, _ := params["filename"].(string)
		body = map[string]string{"screenshot": o.screenshots[name]}
	default:
		w.WriteHeader(http.StatusNotFound)
		body = map[string]string{"error": "no such route"}
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeService) submitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.scripts...)
}

func (f *fakeService) config() testafy.TestConfig {
	return testafy.NewTestConfig(f.server.URL+"/api/v0/", "user", "pass", "")
}

func (f *fakeService) runner(opts ...RunnerOption) *Runner {
	base := []RunnerOption{
		WithClientOptions(
			testafy.WithHTTPClient(f.server.Client()),
			testafy.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		),
		WithReporter(NewConsoleReporter(io.Discard, false)),
		WithLogger(NewSilentLogger()),
	}
	return NewRunner(f.config(), append(base, opts...)...)
}

type memorySink struct {
	mu    sync.Mutex
	saved map[string]map[string]string
}

func (s *memorySink) Save(_ context.Context, testID string, shots map[string]string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string]map[string]string)
	}
	s.saved[testID] = shots
	keys := make([]string, 0, len(shots))
	for name := range shots {
		keys = append(keys, testID+"/"+name)
	}
	return keys, nil
}

func intPtr(v int) *int {
	return &v
}
