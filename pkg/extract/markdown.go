package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Markdown renders the document as markdown, scoped to selector when one is
// given. The conversion is heuristic: headings, paragraphs, links, emphasis,
// lists, blockquotes, and code survive; everything else contributes its text.
func Markdown(rawHTML, selector string) (string, error) {
	sel, err := selection(rawHTML, selector)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	r := &markdownRenderer{out: &b}
	for _, node := range sel.Nodes {
		r.render(node)
	}
	return tidyMarkdown(b.String()), nil
}

type markdownRenderer struct {
	out      *strings.Builder
	ordinals []int
}

func (r *markdownRenderer) render(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		text := strings.Join(strings.Fields(n.Data), " ")
		if text != "" {
			r.out.WriteString(text)
			r.out.WriteString(" ")
		}
	case html.DocumentNode:
		r.renderChildren(n)
	case html.ElementNode:
		r.renderElement(n)
	}
}

func (r *markdownRenderer) renderElement(n *html.Node) {
	switch n.Data {
	case "script", "style", "noscript", "head", "iframe", "svg", "template":
		return
	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(n.Data[1] - '0')
		r.blockBreak()
		r.out.WriteString(strings.Repeat("#", level))
		r.out.WriteString(" ")
		r.renderChildren(n)
		r.blockBreak()
	case "p", "div", "section", "article", "main", "header", "footer", "aside", "nav", "table", "tr":
		r.blockBreak()
		r.renderChildren(n)
		r.blockBreak()
	case "br":
		r.out.WriteString("\n")
	case "hr":
		r.blockBreak()
		r.out.WriteString("---")
		r.blockBreak()
	case "a":
		href := attrValue(n, "href")
		text := collapsedText(n)
		if text == "" {
			text = href
		}
		if href == "" || strings.HasPrefix(href, "javascript:") {
			r.out.WriteString(text)
			r.out.WriteString(" ")
			return
		}
		fmt.Fprintf(r.out, "[%s](%s) ", text, href)
	case "img":
		if alt := attrValue(n, "alt"); alt != "" {
			fmt.Fprintf(r.out, "![%s](%s) ", alt, attrValue(n, "src"))
		}
	case "strong", "b":
		if text := collapsedText(n); text != "" {
			fmt.Fprintf(r.out, "**%s** ", text)
		}
	case "em", "i":
		if text := collapsedText(n); text != "" {
			fmt.Fprintf(r.out, "*%s* ", text)
		}
	case "code":
		if text := collapsedText(n); text != "" {
			fmt.Fprintf(r.out, "`%s` ", text)
		}
	case "pre":
		r.blockBreak()
		r.out.WriteString("```\n")
		r.out.WriteString(strings.TrimRight(rawText(n), "\n"))
		r.out.WriteString("\n```")
		r.blockBreak()
	case "ul", "ol":
		r.ordinals = append(r.ordinals, 0)
		r.blockBreak()
		r.renderChildren(n)
		r.ordinals = r.ordinals[:len(r.ordinals)-1]
		r.blockBreak()
	case "li":
		depth := len(r.ordinals)
		if depth == 0 {
			depth = 1
		}
		marker := "-"
		if n.Parent != nil && n.Parent.Data == "ol" && len(r.ordinals) > 0 {
			r.ordinals[len(r.ordinals)-1]++
			marker = fmt.Sprintf("%d.", r.ordinals[len(r.ordinals)-1])
		}
		r.out.WriteString("\n")
		r.out.WriteString(strings.Repeat("  ", depth-1))
		r.out.WriteString(marker)
		r.out.WriteString(" ")
		r.renderChildren(n)
	case "blockquote":
		r.blockBreak()
		r.out.WriteString("> ")
		r.renderChildren(n)
		r.blockBreak()
	default:
		r.renderChildren(n)
	}
}

func (r *markdownRenderer) renderChildren(n *html.Node) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		r.render(child)
	}
}

func (r *markdownRenderer) blockBreak() {
	r.out.WriteString("\n\n")
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// collapsedText returns the whitespace-collapsed text of a subtree, skipping
// script and style content.
func collapsedText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch node.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if node.Type == html.TextNode {
			parts = append(parts, node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

// rawText returns subtree text with original whitespace, for pre blocks.
func rawText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			b.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}

// tidyMarkdown trims trailing spaces, collapses runs of blank lines, and
// normalizes interior spacing outside fenced code blocks.
func tidyMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	inCode := false
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inCode = !inCode
			out = append(out, strings.TrimSpace(line))
			blank = false
			continue
		}
		if inCode {
			out = append(out, line)
			continue
		}
		trimmed := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(trimmed)]
		line = indent + strings.Join(strings.Fields(trimmed), " ")
		if strings.TrimSpace(line) == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
