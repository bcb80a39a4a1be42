package browser

import "context"

//go:generate mockgen -package=browser -destination=mock_adapter_test.go github.com/odvcencio/webpilot/pkg/browser Adapter

// Adapter is the port implemented by browser backends. Methods take the
// session as a value and return typed errors from the taxonomy in errors.go.
// Navigate returns the updated session explicitly; no method mutates the
// caller's session value.
type Adapter interface {
	// Name identifies the adapter for session dispatch.
	Name() string

	// StartSession establishes backend resources and returns a new active
	// session.
	StartSession(ctx context.Context, opts SessionOptions) (Session, error)

	// EndSession releases backend resources. It is idempotent and safe to
	// call after a prior failure.
	EndSession(ctx context.Context, session Session) error

	// Navigate loads a URL and returns the page payload together with the
	// session carrying the updated current URL.
	Navigate(ctx context.Context, session Session, url string, opts NavigateOptions) (NavigateResult, Session, error)

	// Click activates the element matched by selector on the current page.
	Click(ctx context.Context, session Session, selector string, opts ClickOptions) (ActionResult, error)

	// Type enters text into the element matched by selector.
	Type(ctx context.Context, session Session, selector, text string, opts TypeOptions) (ActionResult, error)

	// Screenshot captures the current page as image bytes.
	Screenshot(ctx context.Context, session Session, opts ScreenshotOptions) (ScreenshotResult, error)

	// ExtractContent returns the current page content in the requested
	// format.
	ExtractContent(ctx context.Context, session Session, opts ExtractOptions) (ContentResult, error)

	// Evaluate runs a script on the current page and returns its value.
	// Backends without script support return ErrEvaluateUnsupported wrapped
	// in an AdapterError.
	Evaluate(ctx context.Context, session Session, script string, opts EvaluateOptions) (EvaluateResult, error)
}
