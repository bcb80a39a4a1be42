package browser

import (
	"time"
)

// SessionState tracks where a session is in its lifecycle.
type SessionState string

const (
	SessionStateUninitialized SessionState = "uninitialized"
	SessionStateActive        SessionState = "active"
	SessionStateEnded         SessionState = "ended"
)

// Connection state keys shared by the backends. The connection map is
// otherwise opaque to the core; only the owning adapter interprets it.
const (
	ConnBaseURL    = "base_url"
	ConnPort       = "port"
	ConnProfile    = "profile"
	ConnCurrentURL = "current_url"
)

// ContentFormat identifies the representation of extracted page content.
type ContentFormat string

const (
	FormatMarkdown ContentFormat = "markdown"
	FormatText     ContentFormat = "text"
	FormatHTML     ContentFormat = "html"
)

// ScreenshotFormat identifies the image format for a captured screenshot.
type ScreenshotFormat string

const (
	ScreenshotPNG  ScreenshotFormat = "png"
	ScreenshotJPEG ScreenshotFormat = "jpeg"
)

// Session is an immutable value capturing one logical browsing session at a
// point in time. State-changing operations return a new Session; callers are
// responsible for threading the latest value forward.
type Session struct {
	ID         string            `json:"id"`
	Adapter    string            `json:"adapter"`
	Connection map[string]string `json:"connection,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	Options    SessionOptions    `json:"options"`
	State      SessionState      `json:"state"`
}

// SessionOptions carries caller preferences for a new session.
type SessionOptions struct {
	Headless bool          `json:"headless"`
	Port     int           `json:"port,omitempty"`
	Profile  string        `json:"profile,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// DefaultSessionOptions returns the recommended session defaults.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		Headless: true,
	}
}

// NavigateOptions tunes a navigation request.
type NavigateOptions struct {
	Timeout time.Duration `json:"timeout,omitempty"`
}

// ClickOptions tunes a click request.
type ClickOptions struct {
	Text    string        `json:"text,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// TypeOptions tunes a type-into-field request.
type TypeOptions struct {
	Clear   bool          `json:"clear,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

// ScreenshotOptions tunes a screenshot request.
type ScreenshotOptions struct {
	FullPage bool             `json:"full_page,omitempty"`
	Format   ScreenshotFormat `json:"format,omitempty"`
	Timeout  time.Duration    `json:"timeout,omitempty"`
}

// ExtractOptions tunes a content extraction request.
type ExtractOptions struct {
	Selector string        `json:"selector,omitempty"`
	Format   ContentFormat `json:"format,omitempty"`
	Timeout  time.Duration `json:"timeout,omitempty"`
}

// EvaluateOptions tunes a script evaluation request.
type EvaluateOptions struct {
	Timeout time.Duration `json:"timeout,omitempty"`
}

// NavigateResult is the payload returned by a successful navigation.
type NavigateResult struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// ActionResult is the payload returned by click and type operations.
type ActionResult struct {
	Action   string `json:"action"`
	Selector string `json:"selector,omitempty"`
	Output   string `json:"output,omitempty"`
}

// ScreenshotResult carries captured image bytes and their MIME type.
type ScreenshotResult struct {
	Data []byte `json:"data,omitempty"`
	MIME string `json:"mime"`
}

// ContentResult carries extracted page content in the format it was
// produced in. Backends that cannot honor a requested format fail rather
// than substituting another one silently.
type ContentResult struct {
	Content string        `json:"content"`
	Format  ContentFormat `json:"format"`
}

// EvaluateResult carries the structured value produced by script evaluation.
type EvaluateResult struct {
	Value any `json:"value"`
}

// Snapshot is a structured, size-bounded extraction of the current page.
// Optional sections are present iff the caller requested them. Fallback
// marks snapshots degraded to plain content extraction because rich
// script-based capture was unavailable or unparseable.
type Snapshot struct {
	URL      string            `json:"url"`
	Title    string            `json:"title,omitempty"`
	Content  string            `json:"content,omitempty"`
	Links    []SnapshotLink    `json:"links,omitempty"`
	Forms    []SnapshotForm    `json:"forms,omitempty"`
	Headings []SnapshotHeading `json:"headings,omitempty"`
	Viewport *SnapshotViewport `json:"viewport,omitempty"`
	Fallback bool              `json:"fallback,omitempty"`
}

// SnapshotLink describes one link on the page.
type SnapshotLink struct {
	ID   int    `json:"id"`
	Text string `json:"text,omitempty"`
	Href string `json:"href"`
}

// SnapshotForm describes one form and its fields.
type SnapshotForm struct {
	ID     int         `json:"id"`
	Action string      `json:"action,omitempty"`
	Method string      `json:"method,omitempty"`
	Fields []FormField `json:"fields,omitempty"`
}

// FormField describes one input within a form. Password field values are
// always masked to the empty string.
type FormField struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type,omitempty"`
	Label    string `json:"label,omitempty"`
	Required bool   `json:"required,omitempty"`
	Value    string `json:"value,omitempty"`
}

// SnapshotHeading describes one heading element.
type SnapshotHeading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// SnapshotViewport carries viewport and scroll position metadata.
type SnapshotViewport struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	ScrollX int `json:"scroll_x"`
	ScrollY int `json:"scroll_y"`
}

// SnapshotOptions selects which snapshot sections are captured and bounds
// the content size.
type SnapshotOptions struct {
	IncludeLinks     bool          `json:"include_links"`
	IncludeForms     bool          `json:"include_forms"`
	IncludeHeadings  bool          `json:"include_headings"`
	MaxContentLength int           `json:"max_content_length,omitempty"`
	Timeout          time.Duration `json:"timeout,omitempty"`
}

// DefaultSnapshotOptions returns the recommended snapshot defaults.
func DefaultSnapshotOptions() SnapshotOptions {
	return SnapshotOptions{
		IncludeLinks:     true,
		MaxContentLength: 5000,
	}
}
