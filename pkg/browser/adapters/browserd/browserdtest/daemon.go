// Package browserdtest provides an in-process fake daemon for exercising
// the browserd adapter without a real browser process.
package browserdtest

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

// HandlerFunc produces the result payload for one tool invocation.
type HandlerFunc func(args map[string]any) (any, error)

// ToolError lets a handler fail with a specific daemon error code.
type ToolError struct {
	Code    int
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

// Call records one tools/call request received by the daemon.
type Call struct {
	ID        string
	Tool      string
	Arguments map[string]any
}

// Daemon is a fake browserd speaking the same HTTP surface as the real one.
type Daemon struct {
	server *httptest.Server

	mu           sync.Mutex
	handlers     map[string]HandlerFunc
	calls        []Call
	healthy      bool
	healthyAfter int
	probes       int
}

// New starts a fake daemon and registers its shutdown with the test cleanup.
func New(t *testing.T) *Daemon {
	t.Helper()

	d := &Daemon{
		handlers: make(map[string]HandlerFunc),
		healthy:  true,
	}

	r := chi.NewRouter()
	r.Get("/health", d.handleHealth)
	r.Post("/", d.handleRPC)

	d.server = httptest.NewServer(r)
	t.Cleanup(d.server.Close)
	return d
}

// URL returns the daemon's base URL.
func (d *Daemon) URL() string {
	return d.server.URL
}

// HostPort splits the daemon's address for adapter configuration.
func (d *Daemon) HostPort(t *testing.T) (string, int) {
	t.Helper()

	parsed, err := url.Parse(d.server.URL)
	if err != nil {
		t.Fatalf("parse daemon url: %v", err)
	}
	host, portStr, err := net.SplitHostPort(parsed.Host)
	if err != nil {
		t.Fatalf("split daemon host: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse daemon port: %v", err)
	}
	return host, port
}

// Handle installs the handler invoked for the named tool.
func (d *Daemon) Handle(tool string, fn HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[tool] = fn
}

// SetHealthy controls the /health response.
func (d *Daemon) SetHealthy(healthy bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.healthy = healthy
	d.healthyAfter = 0
}

// SetHealthyAfter reports unhealthy for the next n probes, then healthy.
func (d *Daemon) SetHealthyAfter(n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.healthy = false
	d.healthyAfter = n
	d.probes = 0
}

// Calls returns a copy of every recorded tool invocation.
func (d *Daemon) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// CallsFor returns the recorded invocations of one tool.
func (d *Daemon) CallsFor(tool string) []Call {
	var out []Call
	for _, call := range d.Calls() {
		if call.Tool == tool {
			out = append(out, call)
		}
	}
	return out
}

// Probes returns how many health checks the daemon has answered.
func (d *Daemon) Probes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.probes
}

func (d *Daemon) handleHealth(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	d.probes++
	if d.healthyAfter > 0 && d.probes > d.healthyAfter {
		d.healthy = true
		d.healthyAfter = 0
	}
	healthy := d.healthy
	d.mu.Unlock()

	if !healthy {
		http.Error(w, "starting", http.StatusServiceUnavailable)
		return
	}
	respondJSON(w, map[string]string{"status": "ok"})
}

func (d *Daemon) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JSONRPC string `json:"jsonrpc"`
		ID      string `json:"id"`
		Method  string `json:"method"`
		Params  struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		} `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	if req.Method != "tools/call" {
		respondError(w, http.StatusBadRequest, -32601, "unknown method: "+req.Method)
		return
	}

	d.mu.Lock()
	d.calls = append(d.calls, Call{ID: req.ID, Tool: req.Params.Name, Arguments: req.Params.Arguments})
	handler, ok := d.handlers[req.Params.Name]
	d.mu.Unlock()

	if !ok {
		respondError(w, http.StatusBadRequest, -32601, "unknown tool: "+req.Params.Name)
		return
	}

	result, err := handler(req.Params.Arguments)
	if err != nil {
		var toolErr *ToolError
		if errors.As(err, &toolErr) {
			respondError(w, http.StatusInternalServerError, toolErr.Code, toolErr.Message)
			return
		}
		respondError(w, http.StatusInternalServerError, 0, err.Error())
		return
	}

	respondResult(w, result)
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// respondResult wraps a tool result in the daemon's status and body envelope.
func respondResult(w http.ResponseWriter, result any) {
	respondJSON(w, map[string]any{
		"status": http.StatusOK,
		"body":   map[string]any{"result": result},
	})
}

// respondError reports a failure inside the envelope. The HTTP status stays
// 200 so callers decode the error object rather than a transport failure.
func respondError(w http.ResponseWriter, status, code int, message string) {
	errObj := map[string]any{"message": message}
	if code != 0 {
		errObj["code"] = code
	}
	respondJSON(w, map[string]any{
		"status": status,
		"body":   map[string]any{"error": errObj},
	})
}
