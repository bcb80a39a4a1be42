package search

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odvcencio/webpilot/pkg/browser"
)

// scriptedAdapter is a minimal browser backend whose navigation always
// renders the configured page content.
type scriptedAdapter struct {
	mu           sync.Mutex
	pageContent  string
	startErr     error
	navigatedURL string
	endCount     int
}

func (a *scriptedAdapter) Name() string { return "scripted" }

func (a *scriptedAdapter) StartSession(ctx context.Context, opts browser.SessionOptions) (browser.Session, error) {
	if a.startErr != nil {
		return browser.Session{}, a.startErr
	}
	return browser.NewSession("scripted", opts), nil
}

func (a *scriptedAdapter) EndSession(ctx context.Context, session browser.Session) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.endCount++
	return nil
}

func (a *scriptedAdapter) Navigate(ctx context.Context, session browser.Session, url string, opts browser.NavigateOptions) (browser.NavigateResult, browser.Session, error) {
	a.mu.Lock()
	a.navigatedURL = url
	content := a.pageContent
	a.mu.Unlock()
	return browser.NavigateResult{URL: url, Content: content}, session.WithCurrentURL(url), nil
}

func (a *scriptedAdapter) Click(ctx context.Context, session browser.Session, selector string, opts browser.ClickOptions) (browser.ActionResult, error) {
	return browser.ActionResult{}, errors.New("not implemented")
}

func (a *scriptedAdapter) Type(ctx context.Context, session browser.Session, selector, text string, opts browser.TypeOptions) (browser.ActionResult, error) {
	return browser.ActionResult{}, errors.New("not implemented")
}

func (a *scriptedAdapter) Screenshot(ctx context.Context, session browser.Session, opts browser.ScreenshotOptions) (browser.ScreenshotResult, error) {
	return browser.ScreenshotResult{}, errors.New("not implemented")
}

func (a *scriptedAdapter) ExtractContent(ctx context.Context, session browser.Session, opts browser.ExtractOptions) (browser.ContentResult, error) {
	return browser.ContentResult{}, errors.New("not implemented")
}

func (a *scriptedAdapter) Evaluate(ctx context.Context, session browser.Session, script string, opts browser.EvaluateOptions) (browser.EvaluateResult, error) {
	return browser.EvaluateResult{}, errors.New("not implemented")
}

func TestBrowserProviderSearch(t *testing.T) {
	adapter := &scriptedAdapter{pageContent: scrapedFixture()}
	d := browser.NewDispatcher(0)
	d.Register(adapter)

	p := NewBrowserProvider(d, "scripted", "")
	assert.Equal(t, "browser", p.Name())

	results, err := p.Search(context.Background(), "rust lang", Options{MaxResults: 10})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "First Result Title", results[0].Title)
	assert.Equal(t, 1, results[0].Rank)

	assert.Equal(t, DefaultScrapeEndpoint+"?q=rust+lang", adapter.navigatedURL)
	assert.Equal(t, 1, adapter.endCount, "search session must be ended")
}

func TestBrowserProviderCustomEndpoint(t *testing.T) {
	adapter := &scriptedAdapter{pageContent: scrapedFixture()}
	d := browser.NewDispatcher(0)
	d.Register(adapter)

	p := NewBrowserProvider(d, "scripted", "https://lite.duckduckgo.com/lite/")
	_, err := p.Search(context.Background(), "golang", Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://lite.duckduckgo.com/lite/?q=golang", adapter.navigatedURL)
}

func TestBrowserProviderRejectsEmptyQuery(t *testing.T) {
	d := browser.NewDispatcher(0)
	d.Register(&scriptedAdapter{})

	p := NewBrowserProvider(d, "scripted", "")
	_, err := p.Search(context.Background(), "", Options{})
	require.Error(t, err)
}

func TestBrowserProviderPropagatesSessionFailure(t *testing.T) {
	adapter := &scriptedAdapter{startErr: errors.New("backend down")}
	d := browser.NewDispatcher(0)
	d.Register(adapter)

	p := NewBrowserProvider(d, "scripted", "")
	_, err := p.Search(context.Background(), "query", Options{})
	require.Error(t, err)
	assert.Equal(t, 0, adapter.endCount, "no session to end when start fails")
}

func TestBrowserProviderNoResultsOnBlankPage(t *testing.T) {
	adapter := &scriptedAdapter{pageContent: "nothing that looks like results"}
	d := browser.NewDispatcher(0)
	d.Register(adapter)

	p := NewBrowserProvider(d, "scripted", "")
	results, err := p.Search(context.Background(), "obscure query", Options{})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, 1, adapter.endCount)
}
