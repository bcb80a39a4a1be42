package search

import (
	"fmt"
	"strings"
	"testing"
)

func scrapedFixture() string {
	return strings.Join([]string{
		"Search results for example",
		"----------",
		"First Result Title (example.com)",
		"----------",
		"(https://duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Ffirst&rut=abc123)",
		"A snippet describing the first result.",
		"example.com",
		"----------",
		"Second Result (other.example)",
		"----------",
		"(https://other.example/second)",
		"Second snippet line.",
		"----------",
		"Sponsored Result (ads.example)",
		"----------",
		"(https://www.googleadservices.com/pagead/aclk?sa=L)",
		"Buy things now.",
		"----------",
		"Third Result (third.example)",
		"----------",
		"(https://third.example/page)",
		"Third snippet.",
	}, "\n")
}

func TestParseScrapedFiltersAndRanks(t *testing.T) {
	results := ParseScraped(scrapedFixture(), 10)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3: %+v", len(results), results)
	}

	want := []Result{
		{Rank: 1, Title: "First Result Title", URL: "https://example.com/first", Snippet: "A snippet describing the first result."},
		{Rank: 2, Title: "Second Result", URL: "https://other.example/second", Snippet: "Second snippet line."},
		{Rank: 3, Title: "Third Result", URL: "https://third.example/page", Snippet: "Third snippet."},
	}
	for i, w := range want {
		if results[i] != w {
			t.Errorf("result %d = %+v, want %+v", i, results[i], w)
		}
	}
}

func TestParseScrapedTruncatesToMax(t *testing.T) {
	results := ParseScraped(scrapedFixture(), 2)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Rank != 1 || results[1].Rank != 2 {
		t.Errorf("ranks = %d, %d, want 1, 2", results[0].Rank, results[1].Rank)
	}
	// Ad filtering happens before truncation, so the second kept result is
	// the one after the sponsored entry was removed.
	if results[1].URL != "https://other.example/second" {
		t.Errorf("result 2 URL = %q", results[1].URL)
	}
}

func TestParseScrapedDefaultMax(t *testing.T) {
	var b strings.Builder
	b.WriteString("chrome header\n")
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "----------\nResult %d (site%d.example)\n----------\n(https://site%d.example/page)\nSnippet %d.\n", i, i, i, i)
	}

	results := ParseScraped(b.String(), 0)
	if len(results) != DefaultMaxResults {
		t.Fatalf("got %d results, want %d", len(results), DefaultMaxResults)
	}
	if results[9].Rank != 10 {
		t.Errorf("last rank = %d, want 10", results[9].Rank)
	}
}

func TestParseScrapedSkipsPairsWithoutURL(t *testing.T) {
	raw := strings.Join([]string{
		"chrome",
		"----------",
		"Linkless Title (no url here",
		"----------",
		"Just prose without any link.",
		"----------",
		"Real Result (real.example)",
		"----------",
		"(https://real.example/)",
		"Real snippet.",
	}, "\n")

	results := ParseScraped(raw, 10)
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1: %+v", len(results), results)
	}
	if results[0].Rank != 1 || results[0].URL != "https://real.example/" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestParseScrapedNoResults(t *testing.T) {
	for _, raw := range []string{"", "a page with no result separators at all"} {
		if results := ParseScraped(raw, 10); results != nil {
			t.Errorf("ParseScraped(%q) = %+v, want nil", raw, results)
		}
	}
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "redirect wrapped",
			text: "(https://duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc%2F%3Fm%3Dold&rut=xyz)",
			want: "https://go.dev/doc/?m=old",
		},
		{
			name: "bare url",
			text: "Title (https://pkg.go.dev/std)",
			want: "https://pkg.go.dev/std",
		},
		{
			name: "redirect preferred over bare",
			text: "(https://example.org/decoy)\nuddg=https%3A%2F%2Fpicked.example%2F",
			want: "https://picked.example/",
		},
		{
			name: "nothing",
			text: "no links anywhere",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractURL(tt.text); got != tt.want {
				t.Errorf("extractURL(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestBuildSnippetStripsBoilerplate(t *testing.T) {
	body := strings.Join([]string{
		"",
		"(https://duckduckgo.com/l/?uddg=x)",
		"https://raw.example/path",
		"www.example.com",
		"Useful   prose with    extra spacing.",
		"More detail on a second line.",
	}, "\n")

	got := buildSnippet(body)
	want := "Useful prose with extra spacing. More detail on a second line."
	if got != want {
		t.Errorf("buildSnippet = %q, want %q", got, want)
	}
}

func TestIsAdURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.googleadservices.com/pagead/aclk", true},
		{"https://ad.doubleclick.net/ddm/clk", true},
		{"https://www.bing.com/aclick?ld=e8", true},
		{"https://duckduckgo.com/y.js?ad_domain=x", true},
		{"https://example.com/doubleclick-article", false},
		{"https://go.dev/", false},
	}
	for _, tt := range tests {
		if got := isAdURL(tt.url); got != tt.want {
			t.Errorf("isAdURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}
