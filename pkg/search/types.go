// Package search normalizes web search results from heterogeneous sources: a
// scraped search-engine page driven through a browser adapter, or an external
// search API. Both produce the same Result shape, so callers are agnostic to
// which source answered.
package search

// Result is one normalized search result. Rank is dense and 1-based after
// sponsored entries are filtered out.
type Result struct {
	Rank    int    `json:"rank"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
	Age     string `json:"age,omitempty"`
}

// Options tunes a search request.
type Options struct {
	MaxResults int    `json:"max_results,omitempty"`
	Country    string `json:"country,omitempty"`
	Language   string `json:"language,omitempty"`
	Freshness  string `json:"freshness,omitempty"`
}

// DefaultMaxResults bounds result counts when the caller does not.
const DefaultMaxResults = 10
