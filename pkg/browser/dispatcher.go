package browser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/odvcencio/webpilot/pkg/logging"
	"github.com/odvcencio/webpilot/pkg/observability"
)

// DefaultOperationTimeout bounds operations whose context carries no deadline
// and whose options do not override it.
const DefaultOperationTimeout = 30 * time.Second

// Dispatcher is the single entry surface for browser operations. It resolves
// the adapter from the session's Adapter field, never from connection shape,
// forwards each call, and wraps untyped backend failures into the error
// taxonomy. Typed errors pass through unchanged.
type Dispatcher struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	active   map[string]struct{}
	timeout  time.Duration
	logger   *logging.Logger
}

// NewDispatcher creates a Dispatcher. A zero timeout selects
// DefaultOperationTimeout.
func NewDispatcher(timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultOperationTimeout
	}
	return &Dispatcher{
		adapters: make(map[string]Adapter),
		active:   make(map[string]struct{}),
		timeout:  timeout,
	}
}

// SetLogger attaches a structured logger for operation events.
func (d *Dispatcher) SetLogger(logger *logging.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = logger
}

// Register makes an adapter available for dispatch under its name.
func (d *Dispatcher) Register(adapter Adapter) {
	if adapter == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.adapters[adapter.Name()] = adapter
}

// AdapterNames returns the registered adapter names in sorted order.
func (d *Dispatcher) AdapterNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.adapters))
	for name := range d.adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// StartSession starts a session on the named adapter and begins tracking it.
func (d *Dispatcher) StartSession(ctx context.Context, adapterName string, opts SessionOptions) (Session, error) {
	const op = "start_session"
	adapter, err := d.resolve(adapterName)
	if err != nil {
		return Session{}, err
	}
	ctx, cancel, budget := d.withTimeout(ctx, opts.Timeout)
	defer cancel()
	ctx, span := observability.StartOperationSpan(ctx, op, adapterName, "")
	defer span.End()

	start := time.Now()
	session, err := adapter.StartSession(ctx, opts)
	if err = d.conclude(ctx, op, adapterName, session.ID, start, budget, err); err != nil {
		return Session{}, err
	}

	d.mu.Lock()
	d.active[session.ID] = struct{}{}
	d.mu.Unlock()
	observability.SessionsStarted.WithLabelValues(adapterName).Inc()
	return session, nil
}

// EndSession releases the session's backend resources. It is idempotent;
// ending an already-ended session succeeds.
func (d *Dispatcher) EndSession(ctx context.Context, session Session) error {
	const op = "end_session"
	adapter, err := d.resolve(session.Adapter)
	if err != nil {
		return err
	}
	d.mu.Lock()
	delete(d.active, session.ID)
	d.mu.Unlock()

	ctx, cancel, budget := d.withTimeout(ctx, session.Options.Timeout)
	defer cancel()
	ctx, span := observability.StartOperationSpan(ctx, op, session.Adapter, session.ID)
	defer span.End()

	start := time.Now()
	err = adapter.EndSession(ctx, session)
	if err = d.conclude(ctx, op, session.Adapter, session.ID, start, budget, err); err != nil {
		return err
	}
	observability.SessionsEnded.WithLabelValues(session.Adapter).Inc()
	return nil
}

// Navigate loads a URL and returns the payload with the updated session.
// Callers must thread the returned session into subsequent operations.
func (d *Dispatcher) Navigate(ctx context.Context, session Session, url string, opts NavigateOptions) (NavigateResult, Session, error) {
	const op = "navigate"
	adapter, err := d.prepare(session)
	if err != nil {
		return NavigateResult{}, session, err
	}
	ctx, cancel, budget := d.withTimeout(ctx, opts.Timeout)
	defer cancel()
	ctx, span := observability.StartOperationSpan(ctx, op, session.Adapter, session.ID)
	defer span.End()

	start := time.Now()
	result, updated, err := adapter.Navigate(ctx, session, url, opts)
	if err = d.conclude(ctx, op, session.Adapter, session.ID, start, budget, err); err != nil {
		return NavigateResult{}, session, err
	}
	return result, updated, nil
}

// Click activates the element matched by selector on the current page.
func (d *Dispatcher) Click(ctx context.Context, session Session, selector string, opts ClickOptions) (ActionResult, error) {
	const op = "click"
	adapter, err := d.prepare(session)
	if err != nil {
		return ActionResult{}, err
	}
	ctx, cancel, budget := d.withTimeout(ctx, opts.Timeout)
	defer cancel()
	ctx, span := observability.StartOperationSpan(ctx, op, session.Adapter, session.ID)
	defer span.End()

	start := time.Now()
	result, err := adapter.Click(ctx, session, selector, opts)
	if err = d.conclude(ctx, op, session.Adapter, session.ID, start, budget, err); err != nil {
		return ActionResult{}, err
	}
	return result, nil
}

// Type enters text into the element matched by selector.
func (d *Dispatcher) Type(ctx context.Context, session Session, selector, text string, opts TypeOptions) (ActionResult, error) {
	const op = "type"
	adapter, err := d.prepare(session)
	if err != nil {
		return ActionResult{}, err
	}
	ctx, cancel, budget := d.withTimeout(ctx, opts.Timeout)
	defer cancel()
	ctx, span := observability.StartOperationSpan(ctx, op, session.Adapter, session.ID)
	defer span.End()

	start := time.Now()
	result, err := adapter.Type(ctx, session, selector, text, opts)
	if err = d.conclude(ctx, op, session.Adapter, session.ID, start, budget, err); err != nil {
		return ActionResult{}, err
	}
	return result, nil
}

// Screenshot captures the current page as image bytes.
func (d *Dispatcher) Screenshot(ctx context.Context, session Session, opts ScreenshotOptions) (ScreenshotResult, error) {
	const op = "screenshot"
	adapter, err := d.prepare(session)
	if err != nil {
		return ScreenshotResult{}, err
	}
	ctx, cancel, budget := d.withTimeout(ctx, opts.Timeout)
	defer cancel()
	ctx, span := observability.StartOperationSpan(ctx, op, session.Adapter, session.ID)
	defer span.End()

	start := time.Now()
	result, err := adapter.Screenshot(ctx, session, opts)
	if err = d.conclude(ctx, op, session.Adapter, session.ID, start, budget, err); err != nil {
		return ScreenshotResult{}, err
	}
	return result, nil
}

// ExtractContent returns the current page content in the requested format.
func (d *Dispatcher) ExtractContent(ctx context.Context, session Session, opts ExtractOptions) (ContentResult, error) {
	const op = "extract_content"
	adapter, err := d.prepare(session)
	if err != nil {
		return ContentResult{}, err
	}
	ctx, cancel, budget := d.withTimeout(ctx, opts.Timeout)
	defer cancel()
	ctx, span := observability.StartOperationSpan(ctx, op, session.Adapter, session.ID)
	defer span.End()

	start := time.Now()
	result, err := adapter.ExtractContent(ctx, session, opts)
	if err = d.conclude(ctx, op, session.Adapter, session.ID, start, budget, err); err != nil {
		return ContentResult{}, err
	}
	return result, nil
}

// Evaluate runs a script on the current page.
func (d *Dispatcher) Evaluate(ctx context.Context, session Session, script string, opts EvaluateOptions) (EvaluateResult, error) {
	const op = "evaluate"
	adapter, err := d.prepare(session)
	if err != nil {
		return EvaluateResult{}, err
	}
	ctx, cancel, budget := d.withTimeout(ctx, opts.Timeout)
	defer cancel()
	ctx, span := observability.StartOperationSpan(ctx, op, session.Adapter, session.ID)
	defer span.End()

	start := time.Now()
	result, err := adapter.Evaluate(ctx, session, script, opts)
	if err = d.conclude(ctx, op, session.Adapter, session.ID, start, budget, err); err != nil {
		return EvaluateResult{}, err
	}
	return result, nil
}

// resolve looks up an adapter by name.
func (d *Dispatcher) resolve(name string) (Adapter, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	adapter, ok := d.adapters[name]
	if !ok {
		return nil, WrapInvalidError(fmt.Sprintf("adapter %q not registered", name), ErrUnknownAdapter)
	}
	return adapter, nil
}

// prepare resolves the session's adapter and verifies the session is in a
// state where page operations are valid.
func (d *Dispatcher) prepare(session Session) (Adapter, error) {
	adapter, err := d.resolve(session.Adapter)
	if err != nil {
		return nil, err
	}

	switch session.State {
	case SessionStateActive:
	case SessionStateEnded:
		return nil, WrapInvalidError(fmt.Sprintf("session %s has ended", session.ID), ErrSessionEnded)
	default:
		return nil, WrapInvalidError(fmt.Sprintf("session %s was never started", session.ID), ErrSessionNotStarted)
	}

	d.mu.RLock()
	_, tracked := d.active[session.ID]
	d.mu.RUnlock()
	if !tracked {
		return nil, WrapInvalidError(fmt.Sprintf("session %s has ended", session.ID), ErrSessionEnded)
	}
	return adapter, nil
}

// withTimeout applies the per-call override, an existing context deadline, or
// the dispatcher default, in that order of precedence.
func (d *Dispatcher) withTimeout(ctx context.Context, override time.Duration) (context.Context, context.CancelFunc, time.Duration) {
	if ctx == nil {
		ctx = context.Background()
	}
	if override > 0 {
		next, cancel := context.WithTimeout(ctx, override)
		return next, cancel, override
	}
	if deadline, ok := ctx.Deadline(); ok {
		return ctx, func() {}, time.Until(deadline)
	}
	next, cancel := context.WithTimeout(ctx, d.timeout)
	return next, cancel, d.timeout
}

// conclude finalizes one operation: budget overruns become TimeoutError,
// remaining untyped failures become AdapterError, and the outcome is
// recorded in metrics, the span, and the structured log.
func (d *Dispatcher) conclude(ctx context.Context, op, adapterName, sessionID string, start time.Time, budget time.Duration, err error) error {
	elapsed := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
		if errors.Is(err, context.DeadlineExceeded) && !IsTimeout(err) {
			err = NewTimeoutError(op, budget)
		} else if !isTypedError(err) {
			err = WrapAdapterError(adapterName, op, "backend failure", err)
		}
		observability.RecordError(ctx, err)
	}

	observability.Operations.WithLabelValues(adapterName, op, status).Inc()
	observability.OperationDuration.WithLabelValues(adapterName, op).Observe(elapsed.Seconds())

	d.mu.RLock()
	logger := d.logger
	d.mu.RUnlock()
	if logger == nil {
		return err
	}
	details := map[string]any{
		"adapter":    adapterName,
		"operation":  op,
		"elapsed_ms": elapsed.Milliseconds(),
		"session_id": sessionID,
	}
	if err != nil {
		details["error"] = err.Error()
		logger.Error(logging.CategoryBrowser, op, "browser operation failed", details)
	} else {
		logger.Debug(logging.CategoryBrowser, op, "browser operation completed", details)
	}
	return err
}
