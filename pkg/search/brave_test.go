package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBraveSearch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret-key", r.Header.Get("X-Subscription-Token"))

		q := r.URL.Query()
		assert.Equal(t, "golang http client", q.Get("q"))
		assert.Equal(t, "20", q.Get("count"), "count is capped at the API limit")
		assert.Equal(t, "US", q.Get("country"))
		assert.Equal(t, "en", q.Get("search_lang"))
		assert.Equal(t, "pw", q.Get("freshness"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"web": {
				"results": [
					{"title": "net/http", "url": "https://pkg.go.dev/net/http", "description": "Package http provides HTTP client and server implementations.", "age": "2 days ago"},
					{"title": "Making HTTP requests", "url": "https://go.dev/doc/tutorial/web-service-gin", "description": "A tutorial.", "page_age": "2026-01-12"},
					{"title": "Third", "url": "https://third.example/", "description": ""}
				]
			}
		}`))
	}))
	defer server.Close()

	p := NewBraveProvider("secret-key", server.URL)
	results, err := p.Search(context.Background(), "golang http client", Options{
		MaxResults: 25,
		Country:    "us",
		Language:   "en-US",
		Freshness:  "pw",
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, Result{
		Rank:    1,
		Title:   "net/http",
		URL:     "https://pkg.go.dev/net/http",
		Snippet: "Package http provides HTTP client and server implementations.",
		Age:     "2 days ago",
	}, results[0])
	assert.Equal(t, "2026-01-12", results[1].Age, "page_age fills in when age is missing")
	assert.Equal(t, 3, results[2].Rank)
}

func TestBraveSearchCapsReturnedResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"web": {
				"results": [
					{"title": "One", "url": "https://one.example/"},
					{"title": "Two", "url": "https://two.example/"},
					{"title": "Three", "url": "https://three.example/"}
				]
			}
		}`))
	}))
	defer server.Close()

	p := NewBraveProvider("secret-key", server.URL)
	results, err := p.Search(context.Background(), "anything", Options{MaxResults: 2})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, []int{1, 2}, []int{results[0].Rank, results[1].Rank})
}

func TestBraveSearchRequiresAPIKey(t *testing.T) {
	p := NewBraveProvider("", "")
	_, err := p.Search(context.Background(), "query", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key not configured")
}

func TestBraveSearchRejectsEmptyQuery(t *testing.T) {
	p := NewBraveProvider("secret-key", "http://unused.invalid")
	_, err := p.Search(context.Background(), "", Options{})
	require.Error(t, err)
}

func TestBraveSearchSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewBraveProvider("secret-key", server.URL)
	_, err := p.Search(context.Background(), "query", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"us", "US"},
		{"DE", "DE"},
		{"", ""},
		{"notacountry", ""},
	}
	for _, tt := range tests {
		if got := normalizeCountry(tt.in); got != tt.want {
			t.Errorf("normalizeCountry(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"en-US", "en"},
		{"pt-BR", "pt"},
		{"", ""},
		{"not a language", ""},
	}
	for _, tt := range tests {
		if got := normalizeLanguage(tt.in); got != tt.want {
			t.Errorf("normalizeLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
