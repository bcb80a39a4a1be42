// Package webcli drives an external command-line browser tool that performs
// one browsing step per invocation, using an on-disk profile for continuity.
package webcli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odvcencio/webpilot/pkg/browser"
)

const adapterName = "webcli"

// Adapter implements browser.Adapter by spawning the configured executable
// once per operation. No process is kept alive between calls.
type Adapter struct {
	cfg Config
}

// New creates a webcli adapter with the given configuration merged over
// defaults.
func New(cfg Config) (*Adapter, error) {
	merged := cfg.withDefaults()
	if err := merged.Validate(); err != nil {
		return nil, fmt.Errorf("webcli config: %w", err)
	}
	return &Adapter{cfg: merged}, nil
}

// Name returns the adapter identifier.
func (a *Adapter) Name() string {
	return adapterName
}

// StartSession records the browsing profile for later invocations. The
// executable must exist; nothing is spawned yet.
func (a *Adapter) StartSession(ctx context.Context, opts browser.SessionOptions) (browser.Session, error) {
	if _, err := exec.LookPath(a.cfg.ExecutablePath); err != nil {
		return browser.Session{}, browser.WrapAdapterError(adapterName, "start_session", "executable not found", err)
	}

	profile := opts.Profile
	if profile == "" {
		profile = a.cfg.Profile
	}

	session := browser.NewSession(adapterName, opts)
	if profile != "" {
		session = session.WithConnection(browser.ConnProfile, profile)
	}
	return session, nil
}

// EndSession is a no-op: the tool holds no resources between invocations.
func (a *Adapter) EndSession(ctx context.Context, session browser.Session) error {
	return nil
}

// Navigate fetches the URL and returns the rendered page text.
func (a *Adapter) Navigate(ctx context.Context, session browser.Session, url string, opts browser.NavigateOptions) (browser.NavigateResult, browser.Session, error) {
	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := a.run(ctx, session, url)
	if err != nil {
		if t := timeoutError(ctx, "navigate", start); t != nil {
			return browser.NavigateResult{}, session, t
		}
		return browser.NavigateResult{}, session, browser.NewNavigationError(url, err)
	}

	result := browser.NavigateResult{URL: url, Title: pageTitle(out), Content: out}
	return result, session.WithCurrentURL(url), nil
}

// Click re-invokes the tool against the session's current URL with a click
// action.
func (a *Adapter) Click(ctx context.Context, session browser.Session, selector string, opts browser.ClickOptions) (browser.ActionResult, error) {
	current, err := currentURL(session)
	if err != nil {
		return browser.ActionResult{}, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	args := []string{"--click", selector}
	if opts.Text != "" {
		args = append(args, "--text", opts.Text)
	}

	start := time.Now()
	out, err := a.run(ctx, session, current, args...)
	if err != nil {
		if t := timeoutError(ctx, "click", start); t != nil {
			return browser.ActionResult{}, t
		}
		return browser.ActionResult{}, browser.NewElementError("click", selector, err)
	}
	return browser.ActionResult{Action: "click", Selector: selector, Output: strings.TrimSpace(out)}, nil
}

// Type fills the matching field on the session's current URL.
func (a *Adapter) Type(ctx context.Context, session browser.Session, selector, text string, opts browser.TypeOptions) (browser.ActionResult, error) {
	current, err := currentURL(session)
	if err != nil {
		return browser.ActionResult{}, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := a.run(ctx, session, current, "--fill", selector+"="+text)
	if err != nil {
		if t := timeoutError(ctx, "type", start); t != nil {
			return browser.ActionResult{}, t
		}
		return browser.ActionResult{}, browser.NewElementError("type", selector, err)
	}
	return browser.ActionResult{Action: "type", Selector: selector, Output: strings.TrimSpace(out)}, nil
}

// Screenshot captures the current page through a temporary file. The file is
// removed on success, read failure, and tool failure alike.
func (a *Adapter) Screenshot(ctx context.Context, session browser.Session, opts browser.ScreenshotOptions) (browser.ScreenshotResult, error) {
	current, err := currentURL(session)
	if err != nil {
		return browser.ScreenshotResult{}, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	format := opts.Format
	if format == "" {
		format = browser.ScreenshotPNG
	}

	tmp, err := os.CreateTemp(a.cfg.TempDir, "webpilot-shot-*"+extensionForFormat(format))
	if err != nil {
		return browser.ScreenshotResult{}, browser.WrapAdapterError(adapterName, "screenshot", "create temp file", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	start := time.Now()
	if _, err := a.run(ctx, session, current, "--screenshot", path); err != nil {
		if t := timeoutError(ctx, "screenshot", start); t != nil {
			return browser.ScreenshotResult{}, t
		}
		return browser.ScreenshotResult{}, browser.WrapAdapterError(adapterName, "screenshot", "capture failed", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return browser.ScreenshotResult{}, browser.WrapAdapterError(adapterName, "screenshot", "read captured image", err)
	}
	if len(data) == 0 {
		return browser.ScreenshotResult{}, browser.NewAdapterError(adapterName, "screenshot", "tool produced an empty image")
	}
	return browser.ScreenshotResult{Data: data, MIME: mimeForFormat(format)}, nil
}

// ExtractContent re-fetches the current URL and returns its rendered content.
func (a *Adapter) ExtractContent(ctx context.Context, session browser.Session, opts browser.ExtractOptions) (browser.ContentResult, error) {
	current, err := currentURL(session)
	if err != nil {
		return browser.ContentResult{}, err
	}
	if opts.Selector != "" {
		return browser.ContentResult{}, browser.NewAdapterError(adapterName, "extract_content", "selector-scoped extraction is not supported")
	}

	format := opts.Format
	if format == "" {
		format = browser.FormatMarkdown
	}
	if format == browser.FormatHTML {
		return browser.ContentResult{}, browser.NewAdapterError(adapterName, "extract_content", "html format is not supported")
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := a.run(ctx, session, current)
	if err != nil {
		if t := timeoutError(ctx, "extract_content", start); t != nil {
			return browser.ContentResult{}, t
		}
		return browser.ContentResult{}, browser.WrapAdapterError(adapterName, "extract_content", "fetch failed", err)
	}

	content := out
	if format == browser.FormatText {
		content = markdownToText(out)
	}
	return browser.ContentResult{Content: content, Format: format}, nil
}

// Evaluate runs a script against the current page via the tool's --js flag.
func (a *Adapter) Evaluate(ctx context.Context, session browser.Session, script string, opts browser.EvaluateOptions) (browser.EvaluateResult, error) {
	current, err := currentURL(session)
	if err != nil {
		return browser.EvaluateResult{}, err
	}

	ctx, cancel := a.withTimeout(ctx, opts.Timeout)
	defer cancel()

	start := time.Now()
	out, err := a.run(ctx, session, current, "--js", script)
	if err != nil {
		if t := timeoutError(ctx, "evaluate", start); t != nil {
			return browser.EvaluateResult{}, t
		}
		return browser.EvaluateResult{}, browser.WrapAdapterError(adapterName, "evaluate", "script execution failed", err)
	}

	trimmed := strings.TrimSpace(out)
	var value any
	if err := json.Unmarshal([]byte(trimmed), &value); err == nil {
		return browser.EvaluateResult{Value: value}, nil
	}
	return browser.EvaluateResult{Value: trimmed}, nil
}

// run invokes the executable once: [--profile NAME] <url> <action flags...>.
// Stdout is the payload; a non-zero exit fails with combined output attached.
func (a *Adapter) run(ctx context.Context, session browser.Session, url string, extra ...string) (string, error) {
	args := make([]string, 0, len(extra)+3)
	if profile := session.Connection[browser.ConnProfile]; profile != "" {
		args = append(args, "--profile", profile)
	}
	args = append(args, url)
	args = append(args, extra...)

	cmd := exec.CommandContext(ctx, a.cfg.ExecutablePath, args...)
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("open stdout pipe: %w", err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("open stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", a.cfg.ExecutablePath, err)
	}

	var stdout, stderr bytes.Buffer
	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(&stdout, stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(&stderr, stderrPipe)
		return err
	})
	drainErr := g.Wait()

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", a.cfg.ExecutablePath, url, err, diagnostic(&stdout, &stderr))
	}
	if drainErr != nil {
		return "", fmt.Errorf("read output: %w", drainErr)
	}
	return stdout.String(), nil
}

func (a *Adapter) withTimeout(ctx context.Context, override time.Duration) (context.Context, context.CancelFunc) {
	if override > 0 {
		return context.WithTimeout(ctx, override)
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.cfg.RequestTimeout)
}

// currentURL reads the navigation precondition out of the session.
func currentURL(session browser.Session) (string, error) {
	url, ok := session.CurrentURL()
	if !ok {
		return "", browser.WrapInvalidError("session has no current url; navigate first", browser.ErrNoCurrentURL)
	}
	return url, nil
}

// timeoutError reports a TimeoutError when the context deadline expired,
// otherwise nil.
func timeoutError(ctx context.Context, op string, start time.Time) error {
	if ctx.Err() == context.DeadlineExceeded {
		return browser.NewTimeoutError(op, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func extensionForFormat(format browser.ScreenshotFormat) string {
	if format == browser.ScreenshotJPEG {
		return ".jpg"
	}
	return ".png"
}

func mimeForFormat(format browser.ScreenshotFormat) string {
	if format == browser.ScreenshotJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// diagnostic combines stdout and stderr into one trimmed failure message.
func diagnostic(stdout, stderr *bytes.Buffer) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(stdout.String()); s != "" {
		parts = append(parts, s)
	}
	if s := strings.TrimSpace(stderr.String()); s != "" {
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return "no output"
	}
	combined := strings.Join(parts, "; ")
	if len(combined) > 500 {
		combined = combined[:500] + "…"
	}
	return combined
}

// pageTitle guesses a title from the first heading line of rendered output.
func pageTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
		return ""
	}
	return ""
}

// markdownToText strips markdown structure, leaving readable plain text.
func markdownToText(markdown string) string {
	var out strings.Builder
	out.Grow(len(markdown))

	inFence := false
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}
		if trimmed == "" {
			out.WriteByte('\n')
			continue
		}
		trimmed = strings.TrimSpace(strings.TrimLeft(trimmed, "#>"))
		trimmed = stripInlineMarkdown(trimmed)
		out.WriteString(trimmed)
		out.WriteByte('\n')
	}
	return strings.TrimSpace(out.String())
}

var linkPattern = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)

func stripInlineMarkdown(line string) string {
	line = linkPattern.ReplaceAllString(line, "$1")
	replacer := strings.NewReplacer("**", "", "__", "", "`", "")
	return replacer.Replace(line)
}
