package search

import (
	"net/url"
	"regexp"
	"strings"
)

// Scraped search pages render results as blocks separated by horizontal
// rules. Parsing is best-effort throughout: a block that does not yield a
// title and URL contributes nothing, and never fails the batch.
var (
	separatorLine = regexp.MustCompile(`^\s*-{4,}\s*$`)
	titlePattern  = regexp.MustCompile(`(?s)^\s*(.+?)\s*\(`)
	redirectURL   = regexp.MustCompile(`uddg=([^&\s)"']+)`)
	bareURL       = regexp.MustCompile(`\((https?://[^\s)]+)\)`)
	hostnameLine  = regexp.MustCompile(`^(?:www\.)?[a-z0-9][a-z0-9.-]*\.[a-z]{2,}$`)
)

// adDomainSubstrings marks results served through advertisement networks.
// Matching results are removed before ranking.
var adDomainSubstrings = []string{
	"doubleclick.net",
	"googleadservices.com",
	"googlesyndication.com",
	"duckduckgo.com/y.js",
	"bing.com/aclick",
	"amazon-adsystem.com",
}

// ParseScraped turns the raw text of a scraped search results page into
// normalized results: at most max entries, ad entries removed, ranks dense
// from 1.
func ParseScraped(raw string, max int) []Result {
	if max <= 0 {
		max = DefaultMaxResults
	}

	chunks := splitOnSeparators(raw)
	if len(chunks) < 2 {
		return nil
	}
	// The first chunk is page chrome before the first result.
	chunks = chunks[1:]

	results := make([]Result, 0, len(chunks)/2+1)
	for i := 0; i < len(chunks); i += 2 {
		title := chunks[i]
		body := ""
		if i+1 < len(chunks) {
			body = chunks[i+1]
		}
		if r, ok := parsePair(title, body); ok {
			results = append(results, r)
		}
	}

	results = dropAdResults(results)
	for i := range results {
		results[i].Rank = i + 1
	}
	if len(results) > max {
		results = results[:max]
	}
	return results
}

// splitOnSeparators divides the document at dash-run lines.
func splitOnSeparators(raw string) []string {
	var chunks []string
	var current []string
	for _, line := range strings.Split(raw, "\n") {
		if separatorLine.MatchString(line) {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = current[:0]
			continue
		}
		current = append(current, line)
	}
	chunks = append(chunks, strings.Join(current, "\n"))
	return chunks
}

// parsePair extracts one result from a title block and its body block.
func parsePair(titleBlock, bodyBlock string) (Result, bool) {
	combined := titleBlock + "\n" + bodyBlock

	target := extractURL(combined)
	if target == "" {
		return Result{}, false
	}

	title := ""
	if m := titlePattern.FindStringSubmatch(titleBlock); m != nil {
		title = strings.Join(strings.Fields(m[1]), " ")
	}
	if title == "" {
		for _, line := range strings.Split(titleBlock, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				title = line
				break
			}
		}
	}

	return Result{
		Title:   title,
		URL:     target,
		Snippet: buildSnippet(bodyBlock),
	}, true
}

// extractURL prefers the redirect-wrapped encoded form used by
// privacy-preserving result links, then falls back to a bare parenthesized
// URL.
func extractURL(text string) string {
	if m := redirectURL.FindStringSubmatch(text); m != nil {
		if decoded, err := url.QueryUnescape(m[1]); err == nil && decoded != "" {
			return decoded
		}
	}
	if m := bareURL.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// buildSnippet keeps the body's prose lines: boilerplate such as empty
// lines, parenthetical references, redirect hosts, bare hostnames, and raw
// URLs is stripped, survivors joined and whitespace-collapsed.
func buildSnippet(body string) string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "(") && strings.HasSuffix(line, ")") {
			continue
		}
		if strings.Contains(line, "duckduckgo.com") {
			continue
		}
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			continue
		}
		if hostnameLine.MatchString(strings.ToLower(line)) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(strings.Fields(strings.Join(kept, " ")), " ")
}

// dropAdResults removes results whose URL is served by a known ad network.
func dropAdResults(results []Result) []Result {
	kept := results[:0]
	for _, r := range results {
		if isAdURL(r.URL) {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

func isAdURL(target string) bool {
	lowered := strings.ToLower(target)
	for _, domain := range adDomainSubstrings {
		if strings.Contains(lowered, domain) {
			return true
		}
	}
	return false
}
