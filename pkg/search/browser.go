package search

import (
	"context"
	"fmt"
	"net/url"

	"github.com/odvcencio/webpilot/pkg/browser"
	"github.com/odvcencio/webpilot/pkg/observability"
)

// DefaultScrapeEndpoint is the HTML search page driven through the browser
// backend when no endpoint is configured.
const DefaultScrapeEndpoint = "https://html.duckduckgo.com/html/"

// BrowserProvider runs searches by navigating a search-engine page through a
// browser adapter and scraping the rendered results.
type BrowserProvider struct {
	dispatcher *browser.Dispatcher
	adapter    string
	endpoint   string
}

// NewBrowserProvider creates a provider that drives the named adapter. An
// empty endpoint selects DefaultScrapeEndpoint.
func NewBrowserProvider(dispatcher *browser.Dispatcher, adapterName, endpoint string) *BrowserProvider {
	if endpoint == "" {
		endpoint = DefaultScrapeEndpoint
	}
	return &BrowserProvider{
		dispatcher: dispatcher,
		adapter:    adapterName,
		endpoint:   endpoint,
	}
}

func (p *BrowserProvider) Name() string {
	return "browser"
}

// Search starts a session, navigates the search page, parses the rendered
// results, and ends the session.
func (p *BrowserProvider) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if query == "" {
		p.record("error", 0)
		return nil, fmt.Errorf("search query is empty")
	}

	session, err := p.dispatcher.StartSession(ctx, p.adapter, browser.DefaultSessionOptions())
	if err != nil {
		p.record("error", 0)
		return nil, err
	}
	current := session
	defer func() {
		_ = p.dispatcher.EndSession(ctx, current)
	}()

	searchURL := fmt.Sprintf("%s?q=%s", p.endpoint, url.QueryEscape(query))
	page, updated, err := p.dispatcher.Navigate(ctx, current, searchURL, browser.NavigateOptions{})
	if err != nil {
		p.record("error", 0)
		return nil, err
	}
	current = updated

	results := ParseScraped(page.Content, opts.MaxResults)
	p.record("ok", len(results))
	return results, nil
}

func (p *BrowserProvider) record(status string, count int) {
	observability.SearchRequests.WithLabelValues(p.Name(), status).Inc()
	if status == "ok" {
		observability.SearchResultCount.WithLabelValues(p.Name()).Observe(float64(count))
	}
}
