// Package browserd drives a local browser daemon over its JSON-RPC HTTP
// endpoint, launching the daemon process on demand when it is not running.
package browserd

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odvcencio/webpilot/pkg/browser"
	"github.com/odvcencio/webpilot/pkg/observability"
)

const adapterName = "browserd"

// Adapter implements browser.Adapter against a browserd daemon.
type Adapter struct {
	cfg    Config
	launch singleflight.Group
}

// New creates a browserd adapter with the given configuration merged over
// defaults.
func New(cfg Config) (*Adapter, error) {
	merged := cfg.withDefaults()
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("browserd config: %w", err)
	}
	return &Adapter{cfg: merged}, nil
}

// Name returns the adapter identifier.
func (a *Adapter) Name() string {
	return adapterName
}

// StartSession verifies the daemon is reachable, launching it if needed, and
// returns a session bound to its endpoint.
func (a *Adapter) StartSession(ctx context.Context, opts browser.SessionOptions) (browser.Session, error) {
	port := a.cfg.Port
	if opts.Port > 0 {
		port = opts.Port
	}
	baseURL := fmt.Sprintf("http://%s:%d", a.cfg.Host, port)

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	if err := a.ensureDaemon(ctx, baseURL, port, opts.Headless); err != nil {
		return browser.Session{}, err
	}

	session := browser.NewSession(adapterName, opts)
	session = session.WithConnection(browser.ConnBaseURL, baseURL)
	session = session.WithConnection(browser.ConnPort, strconv.Itoa(port))
	return session, nil
}

// EndSession asks the daemon to quit. The call is fire and forget: quit
// errors are discarded and the process exit is not verified.
func (a *Adapter) EndSession(ctx context.Context, session browser.Session) error {
	c, err := a.clientFor(session)
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.cfg.QuitTimeout)
	defer cancel()
	_, _ = c.call(ctx, "quit", nil)
	return nil
}

// Navigate loads a URL in the daemon and returns the resulting page state.
func (a *Adapter) Navigate(ctx context.Context, session browser.Session, url string, opts browser.NavigateOptions) (browser.NavigateResult, browser.Session, error) {
	c, err := a.clientFor(session)
	if err != nil {
		return browser.NavigateResult{}, session, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.call(ctx, "navigate", map[string]any{"url": url})
	if err != nil {
		if mapped := a.callError("navigate", start, err); mapped != nil {
			return browser.NavigateResult{}, session, mapped
		}
		return browser.NavigateResult{}, session, browser.NewNavigationError(url, err)
	}

	var payload struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}
	finalURL := payload.URL
	if finalURL == "" {
		finalURL = url
	}

	result := browser.NavigateResult{URL: finalURL, Title: payload.Title, Content: payload.Content}
	return result, session.WithCurrentURL(finalURL), nil
}

// Click clicks the first element matching the selector.
func (a *Adapter) Click(ctx context.Context, session browser.Session, selector string, opts browser.ClickOptions) (browser.ActionResult, error) {
	c, err := a.clientFor(session)
	if err != nil {
		return browser.ActionResult{}, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	args := map[string]any{"selector": selector}
	if opts.Text != "" {
		args["text"] = opts.Text
	}

	start := time.Now()
	raw, err := c.call(ctx, "click", args)
	if err != nil {
		if mapped := a.callError("click", start, err); mapped != nil {
			return browser.ActionResult{}, mapped
		}
		return browser.ActionResult{}, browser.NewElementError("click", selector, err)
	}
	return actionResult("click", selector, raw), nil
}

// Type enters text into the first element matching the selector.
func (a *Adapter) Type(ctx context.Context, session browser.Session, selector, text string, opts browser.TypeOptions) (browser.ActionResult, error) {
	c, err := a.clientFor(session)
	if err != nil {
		return browser.ActionResult{}, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	args := map[string]any{"selector": selector, "text": text}
	if opts.Clear {
		args["clear"] = true
	}

	start := time.Now()
	raw, err := c.call(ctx, "type", args)
	if err != nil {
		if mapped := a.callError("type", start, err); mapped != nil {
			return browser.ActionResult{}, mapped
		}
		return browser.ActionResult{}, browser.NewElementError("type", selector, err)
	}
	return actionResult("type", selector, raw), nil
}

// Screenshot captures the current page as an image.
func (a *Adapter) Screenshot(ctx context.Context, session browser.Session, opts browser.ScreenshotOptions) (browser.ScreenshotResult, error) {
	c, err := a.clientFor(session)
	if err != nil {
		return browser.ScreenshotResult{}, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	format := opts.Format
	if format == "" {
		format = browser.ScreenshotPNG
	}
	args := map[string]any{"format": string(format)}
	if opts.FullPage {
		args["full_page"] = true
	}

	start := time.Now()
	raw, err := c.call(ctx, "screenshot", args)
	if err != nil {
		if mapped := a.callError("screenshot", start, err); mapped != nil {
			return browser.ScreenshotResult{}, mapped
		}
		return browser.ScreenshotResult{}, browser.WrapAdapterError(adapterName, "screenshot", "daemon call failed", err)
	}

	var payload struct {
		Data string `json:"data"`
		MIME string `json:"mime"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return browser.ScreenshotResult{}, browser.WrapAdapterError(adapterName, "screenshot", "invalid image payload", err)
	}
	data, err := base64.StdEncoding.DecodeString(payload.Data)
	if err != nil {
		return browser.ScreenshotResult{}, browser.WrapAdapterError(adapterName, "screenshot", "invalid image payload", err)
	}

	mime := payload.MIME
	if mime == "" {
		mime = mimeForFormat(format)
	}
	return browser.ScreenshotResult{Data: data, MIME: mime}, nil
}

// ExtractContent returns the page content in the requested format.
func (a *Adapter) ExtractContent(ctx context.Context, session browser.Session, opts browser.ExtractOptions) (browser.ContentResult, error) {
	c, err := a.clientFor(session)
	if err != nil {
		return browser.ContentResult{}, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	format := opts.Format
	if format == "" {
		format = browser.FormatMarkdown
	}
	args := map[string]any{"format": string(format)}
	if opts.Selector != "" {
		args["selector"] = opts.Selector
	}

	start := time.Now()
	raw, err := c.call(ctx, "extract_content", args)
	if err != nil {
		if mapped := a.callError("extract_content", start, err); mapped != nil {
			return browser.ContentResult{}, mapped
		}
		return browser.ContentResult{}, browser.WrapAdapterError(adapterName, "extract_content", "daemon call failed", err)
	}

	var payload struct {
		Content string `json:"content"`
		Format  string `json:"format"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}
	out := browser.ContentFormat(payload.Format)
	if out == "" {
		out = format
	}
	return browser.ContentResult{Content: payload.Content, Format: out}, nil
}

// Evaluate runs a JavaScript expression in the page and returns its value.
func (a *Adapter) Evaluate(ctx context.Context, session browser.Session, script string, opts browser.EvaluateOptions) (browser.EvaluateResult, error) {
	c, err := a.clientFor(session)
	if err != nil {
		return browser.EvaluateResult{}, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	raw, err := c.call(ctx, "evaluate", map[string]any{"script": script})
	if err != nil {
		if mapped := a.callError("evaluate", start, err); mapped != nil {
			return browser.EvaluateResult{}, mapped
		}
		if isUnsupportedTool(err) {
			return browser.EvaluateResult{}, browser.WrapAdapterError(adapterName, "evaluate", "script evaluation unavailable",
				fmt.Errorf("%w: %v", browser.ErrEvaluateUnsupported, err))
		}
		return browser.EvaluateResult{}, browser.WrapAdapterError(adapterName, "evaluate", "daemon call failed", err)
	}

	var payload struct {
		Value json.RawMessage `json:"value"`
	}
	if json.Unmarshal(raw, &payload) == nil && len(payload.Value) > 0 {
		var value any
		if err := json.Unmarshal(payload.Value, &value); err == nil {
			return browser.EvaluateResult{Value: value}, nil
		}
	}
	var value any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &value)
	}
	return browser.EvaluateResult{Value: value}, nil
}

// ensureDaemon probes the daemon and launches it when unreachable.
// Concurrent launches for the same endpoint are collapsed into one.
func (a *Adapter) ensureDaemon(ctx context.Context, baseURL string, port int, headless bool) error {
	c := newClient(baseURL)
	if err := c.health(ctx, a.cfg.HealthTimeout); err == nil {
		observability.DaemonHealthProbes.WithLabelValues("healthy").Inc()
		observability.DaemonLaunches.WithLabelValues("already_running").Inc()
		return nil
	}
	observability.DaemonHealthProbes.WithLabelValues("unhealthy").Inc()

	_, err, _ := a.launch.Do(baseURL, func() (any, error) {
		// Another caller may have finished the launch while we waited.
		if err := c.health(ctx, a.cfg.HealthTimeout); err == nil {
			return nil, nil
		}
		return nil, a.launchDaemon(ctx, c, port, headless)
	})
	if err != nil {
		observability.DaemonLaunches.WithLabelValues("failed").Inc()
		return browser.WrapAdapterError(adapterName, "start_session", "daemon failed to become ready",
			fmt.Errorf("%w: %v", browser.ErrDaemonUnavailable, err))
	}
	observability.DaemonLaunches.WithLabelValues("launched").Inc()
	return nil
}

// launchDaemon spawns the daemon process detached from the caller's context
// and waits for it to answer health checks.
func (a *Adapter) launchDaemon(ctx context.Context, c *client, port int, headless bool) error {
	args := make([]string, 0, 3)
	if headless {
		args = append(args, "--headless")
	}
	args = append(args, "--port", strconv.Itoa(port))

	cmd := exec.Command(a.cfg.BinaryPath, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch %s: %w", a.cfg.BinaryPath, err)
	}
	go func() {
		_ = cmd.Wait()
	}()

	return a.awaitHealthy(ctx, c)
}

// awaitHealthy polls the health endpoint a fixed number of times with a fixed
// sleep between attempts.
func (a *Adapter) awaitHealthy(ctx context.Context, c *client) error {
	var lastErr error
	for attempt := 0; attempt < a.cfg.HealthRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.cfg.HealthInterval):
			}
		}
		if err := c.health(ctx, a.cfg.HealthTimeout); err != nil {
			lastErr = err
			observability.DaemonHealthProbes.WithLabelValues("unhealthy").Inc()
			continue
		}
		observability.DaemonHealthProbes.WithLabelValues("healthy").Inc()
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("daemon not ready after %d attempts: %w", a.cfg.HealthRetries, lastErr)
	}
	return fmt.Errorf("daemon not ready after %d attempts", a.cfg.HealthRetries)
}

func (a *Adapter) clientFor(session browser.Session) (*client, error) {
	baseURL := session.Connection[browser.ConnBaseURL]
	if baseURL == "" {
		return nil, browser.WrapInvalidError("session has no daemon endpoint", browser.ErrSessionNotStarted)
	}
	return newClient(baseURL), nil
}

// withTimeout applies the per-call override, then an inherited deadline, then
// the configured request timeout, in that order.
func (a *Adapter) withTimeout(ctx context.Context, override time.Duration) (context.Context, context.CancelFunc) {
	if override > 0 {
		return context.WithTimeout(ctx, override)
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.cfg.RequestTimeout)
}

// callError classifies transport-level failures. It returns nil for daemon
// tool errors so the caller can apply its operation-specific wrapping.
func (a *Adapter) callError(op string, start time.Time, err error) error {
	switch {
	case isTimeoutError(err):
		return browser.NewTimeoutError(op, time.Since(start).Round(time.Millisecond))
	case isConnectionError(err):
		return browser.WrapAdapterError(adapterName, op, "daemon unreachable",
			fmt.Errorf("%w: %v", browser.ErrDaemonUnavailable, err))
	default:
		return nil
	}
}

func actionResult(action, selector string, raw json.RawMessage) browser.ActionResult {
	var payload struct {
		Output string `json:"output"`
	}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &payload)
	}
	return browser.ActionResult{Action: action, Selector: selector, Output: payload.Output}
}

func mimeForFormat(format browser.ScreenshotFormat) string {
	if format == browser.ScreenshotJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnectionError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func isUnsupportedTool(err error) bool {
	var daemonErr *rpcError
	if !errors.As(err, &daemonErr) {
		return false
	}
	msg := strings.ToLower(daemonErr.Message)
	return strings.Contains(msg, "unsupported") || strings.Contains(msg, "unknown tool") || strings.Contains(msg, "not found")
}
