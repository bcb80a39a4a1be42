// Package extract converts raw page HTML into the content formats exposed by
// the browser adapters: collapsed visible text, markdown, and selector-scoped
// HTML fragments.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text returns the visible text of the document, scoped to selector when one
// is given, with whitespace collapsed to single spaces. Script and style
// content is dropped.
func Text(rawHTML, selector string) (string, error) {
	sel, err := selection(rawHTML, selector)
	if err != nil {
		return "", err
	}
	sel.Find("script, style, noscript").Remove()
	return strings.Join(strings.Fields(sel.Text()), " "), nil
}

// HTML returns the outer HTML of the first element matched by selector, or
// the document unchanged when no selector is given.
func HTML(rawHTML, selector string) (string, error) {
	if strings.TrimSpace(selector) == "" {
		return rawHTML, nil
	}
	sel, err := selection(rawHTML, selector)
	if err != nil {
		return "", err
	}
	out, err := goquery.OuterHtml(sel.First())
	if err != nil {
		return "", fmt.Errorf("render selection: %w", err)
	}
	return out, nil
}

// Title returns the trimmed document title, or an empty string.
func Title(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// Truncate caps s at exactly max runes. A non-positive max leaves s
// unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func selection(rawHTML, selector string) (*goquery.Selection, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if strings.TrimSpace(selector) == "" {
		return doc.Find("body"), nil
	}
	sel := doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("selector %q matched no elements", selector)
	}
	return sel, nil
}
