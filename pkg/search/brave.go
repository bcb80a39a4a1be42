package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"github.com/odvcencio/webpilot/pkg/observability"
)

const (
	// DefaultBraveEndpoint is the web search endpoint of the Brave Search
	// API.
	DefaultBraveEndpoint = "https://api.search.brave.com/res/v1/web/search"

	// braveMaxCount is the per-request result cap imposed by the API.
	braveMaxCount = 20

	braveRequestTimeout = 15 * time.Second

	// Free-tier allowance is one request per second; a small burst smooths
	// back-to-back calls.
	braveRateLimit = rate.Limit(1)
	braveBurstSize = 2
)

// BraveProvider answers searches through a Brave-style web search API: HTTP
// GET with a header API key, JSON response mapped to the shared Result
// shape.
type BraveProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// NewBraveProvider creates a provider authenticated by apiKey. An empty
// endpoint selects DefaultBraveEndpoint.
func NewBraveProvider(apiKey, endpoint string) *BraveProvider {
	if endpoint == "" {
		endpoint = DefaultBraveEndpoint
	}
	return &BraveProvider{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: braveRequestTimeout},
		limiter:  rate.NewLimiter(braveRateLimit, braveBurstSize),
	}
}

func (p *BraveProvider) Name() string {
	return "brave"
}

// Search issues one API request. Result count is capped at the API limit
// and ranks are assigned densely from 1.
func (p *BraveProvider) Search(ctx context.Context, query string, opts Options) ([]Result, error) {
	if p.apiKey == "" {
		p.record("error", 0)
		return nil, fmt.Errorf("brave search: api key not configured")
	}
	if query == "" {
		p.record("error", 0)
		return nil, fmt.Errorf("search query is empty")
	}
	if err := p.limiter.Wait(ctx); err != nil {
		p.record("error", 0)
		return nil, fmt.Errorf("brave search: %w", err)
	}

	count := opts.MaxResults
	if count <= 0 {
		count = DefaultMaxResults
	}
	if count > braveMaxCount {
		count = braveMaxCount
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(count))
	if region := normalizeCountry(opts.Country); region != "" {
		params.Set("country", region)
	}
	if lang := normalizeLanguage(opts.Language); lang != "" {
		params.Set("search_lang", lang)
	}
	if opts.Freshness != "" {
		params.Set("freshness", opts.Freshness)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		p.record("error", 0)
		return nil, fmt.Errorf("brave search: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		p.record("error", 0)
		return nil, fmt.Errorf("brave search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		p.record("error", 0)
		return nil, fmt.Errorf("brave search: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		p.record("error", 0)
		return nil, fmt.Errorf("brave search: status %d: %s", resp.StatusCode, truncateBody(body))
	}

	var decoded braveResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		p.record("error", 0)
		return nil, fmt.Errorf("brave search: decode response: %w", err)
	}

	results := make([]Result, 0, len(decoded.Web.Results))
	for i, entry := range decoded.Web.Results {
		if i >= count {
			break
		}
		age := entry.Age
		if age == "" {
			age = entry.PageAge
		}
		results = append(results, Result{
			Rank:    len(results) + 1,
			Title:   entry.Title,
			URL:     entry.URL,
			Snippet: entry.Description,
			Age:     age,
		})
	}
	p.record("ok", len(results))
	return results, nil
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Age         string `json:"age"`
			PageAge     string `json:"page_age"`
		} `json:"results"`
	} `json:"web"`
}

func (p *BraveProvider) record(status string, count int) {
	observability.SearchRequests.WithLabelValues(p.Name(), status).Inc()
	if status == "ok" {
		observability.SearchResultCount.WithLabelValues(p.Name()).Observe(float64(count))
	}
}

// normalizeCountry validates a two-letter country code, returning it
// uppercased or empty when unparseable.
func normalizeCountry(country string) string {
	if country == "" {
		return ""
	}
	region, err := language.ParseRegion(country)
	if err != nil {
		return ""
	}
	return region.String()
}

// normalizeLanguage validates a language code, returning its base form or
// empty when unparseable.
func normalizeLanguage(lang string) string {
	if lang == "" {
		return ""
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

func truncateBody(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "…"
	}
	return string(body)
}
