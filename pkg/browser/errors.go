package browser

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrSessionEnded        = errors.New("browser session ended")
	ErrSessionNotStarted   = errors.New("browser session not started")
	ErrNoCurrentURL        = errors.New("session has no current url")
	ErrEvaluateUnsupported = errors.New("script evaluation unsupported")
	ErrDaemonUnavailable   = errors.New("browser daemon unavailable")
	ErrUnknownAdapter      = errors.New("unknown adapter")
)

// AdapterError reports a backend or process level failure: a daemon that
// would not start, a missing executable, a non-zero exit, a malformed
// response.
type AdapterError struct {
	Adapter string
	Op      string
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("adapter %s: %s: %s: %v", e.Adapter, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("adapter %s: %s: %s", e.Adapter, e.Op, e.Message)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// NewAdapterError creates an AdapterError without an underlying cause.
func NewAdapterError(adapter, op, message string) *AdapterError {
	return &AdapterError{Adapter: adapter, Op: op, Message: message}
}

// WrapAdapterError attaches adapter context to an underlying error.
func WrapAdapterError(adapter, op, message string, err error) *AdapterError {
	return &AdapterError{Adapter: adapter, Op: op, Message: message, Err: err}
}

// NavigationError reports a failure to load a specific URL.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// NewNavigationError creates a NavigationError for the given URL.
func NewNavigationError(url string, err error) *NavigationError {
	return &NavigationError{URL: url, Err: err}
}

// ElementError reports a failed page interaction scoped to a selector.
type ElementError struct {
	Action   string
	Selector string
	Err      error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Action, e.Selector, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// NewElementError creates an ElementError for the given action and selector.
func NewElementError(action, selector string, err error) *ElementError {
	return &ElementError{Action: action, Selector: selector, Err: err}
}

// TimeoutError reports that an operation exceeded its time budget.
type TimeoutError struct {
	Op     string
	Budget time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation %s timed out after %s", e.Op, e.Budget)
}

// NewTimeoutError creates a TimeoutError for the given operation and budget.
func NewTimeoutError(op string, budget time.Duration) *TimeoutError {
	return &TimeoutError{Op: op, Budget: budget}
}

// InvalidError reports malformed caller input or a violated precondition,
// such as an operation that needs a current URL on a session that has never
// navigated.
type InvalidError struct {
	Reason string
	Err    error
}

func (e *InvalidError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid request: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid request: %s", e.Reason)
}

func (e *InvalidError) Unwrap() error {
	return e.Err
}

// NewInvalidError creates an InvalidError with the given reason.
func NewInvalidError(reason string) *InvalidError {
	return &InvalidError{Reason: reason}
}

// WrapInvalidError attaches a reason to an underlying precondition error.
func WrapInvalidError(reason string, err error) *InvalidError {
	return &InvalidError{Reason: reason, Err: err}
}

// IsTimeout returns true if the error is a TimeoutError.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// IsInvalid returns true if the error is an InvalidError.
func IsInvalid(err error) bool {
	var ie *InvalidError
	return errors.As(err, &ie)
}

// IsRetryableError returns true if the error might succeed on retry.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDaemonUnavailable) {
		return true
	}
	var te *TimeoutError
	return errors.As(err, &te)
}

// isTypedError reports whether err already belongs to the adapter error
// taxonomy. Typed errors pass through dispatch unchanged; anything else is
// wrapped into an AdapterError at the facade boundary.
func isTypedError(err error) bool {
	var (
		ae *AdapterError
		ne *NavigationError
		ee *ElementError
		te *TimeoutError
		ie *InvalidError
	)
	return errors.As(err, &ae) ||
		errors.As(err, &ne) ||
		errors.As(err, &ee) ||
		errors.As(err, &te) ||
		errors.As(err, &ie)
}
