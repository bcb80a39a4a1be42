package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/odvcencio/webpilot/pkg/extract"
)

// Fixed element caps for snapshot sections.
const (
	maxSnapshotLinks    = 100
	maxSnapshotHeadings = 50
)

// Snapshot captures a structured view of the session's current page. When
// the adapter can evaluate script, one injected script composes the page
// URL, title, truncated content, and the requested optional sections. When
// evaluation is unsupported or its result cannot be decoded, the snapshot
// degrades to plain markdown extraction and is marked Fallback.
func (d *Dispatcher) Snapshot(ctx context.Context, session Session, opts SnapshotOptions) (Snapshot, error) {
	if opts.MaxContentLength <= 0 {
		opts.MaxContentLength = DefaultSnapshotOptions().MaxContentLength
	}

	script := buildSnapshotScript(opts)
	result, err := d.Evaluate(ctx, session, script, EvaluateOptions{Timeout: opts.Timeout})
	if err != nil {
		if errors.Is(err, ErrEvaluateUnsupported) {
			return d.fallbackSnapshot(ctx, session, opts)
		}
		return Snapshot{}, err
	}

	snap, ok := decodeSnapshot(result.Value)
	if !ok {
		return d.fallbackSnapshot(ctx, session, opts)
	}

	if snap.URL == "" {
		if url, ok := session.CurrentURL(); ok {
			snap.URL = url
		}
	}
	snap.Content = extract.Truncate(snap.Content, opts.MaxContentLength)
	if !opts.IncludeLinks {
		snap.Links = nil
	} else if len(snap.Links) > maxSnapshotLinks {
		snap.Links = snap.Links[:maxSnapshotLinks]
	}
	if !opts.IncludeForms {
		snap.Forms = nil
	}
	if !opts.IncludeHeadings {
		snap.Headings = nil
	} else if len(snap.Headings) > maxSnapshotHeadings {
		snap.Headings = snap.Headings[:maxSnapshotHeadings]
	}
	return snap, nil
}

// fallbackSnapshot produces a degraded snapshot from plain content
// extraction.
func (d *Dispatcher) fallbackSnapshot(ctx context.Context, session Session, opts SnapshotOptions) (Snapshot, error) {
	content, err := d.ExtractContent(ctx, session, ExtractOptions{
		Format:  FormatMarkdown,
		Timeout: opts.Timeout,
	})
	if err != nil {
		return Snapshot{}, err
	}
	url, _ := session.CurrentURL()
	return Snapshot{
		URL:      url,
		Content:  extract.Truncate(content.Content, opts.MaxContentLength),
		Fallback: true,
	}, nil
}

// decodeSnapshot accepts either a structured value or a JSON string from
// script evaluation.
func decodeSnapshot(value any) (Snapshot, bool) {
	var snap Snapshot
	switch v := value.(type) {
	case string:
		if err := json.Unmarshal([]byte(v), &snap); err != nil {
			return Snapshot{}, false
		}
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return Snapshot{}, false
		}
		if err := json.Unmarshal(data, &snap); err != nil {
			return Snapshot{}, false
		}
	default:
		return Snapshot{}, false
	}
	if snap.URL == "" && snap.Title == "" && snap.Content == "" {
		return Snapshot{}, false
	}
	return snap, true
}

// buildSnapshotScript assembles the injected capture script, including only
// the sections the caller requested.
func buildSnapshotScript(opts SnapshotOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, snapshotHeaderJS, opts.MaxContentLength)
	if opts.IncludeLinks {
		fmt.Fprintf(&b, snapshotLinksJS, maxSnapshotLinks)
	}
	if opts.IncludeForms {
		b.WriteString(snapshotFormsJS)
	}
	if opts.IncludeHeadings {
		fmt.Fprintf(&b, snapshotHeadingsJS, maxSnapshotHeadings)
	}
	b.WriteString(snapshotFooterJS)
	return b.String()
}

const snapshotHeaderJS = `(() => {
	const snapshot = {
		url: window.location.href,
		title: document.title,
		content: (document.body ? document.body.innerText : '').slice(0, %d),
		viewport: {
			width: window.innerWidth,
			height: window.innerHeight,
			scroll_x: Math.round(window.scrollX),
			scroll_y: Math.round(window.scrollY)
		}
	};
`

const snapshotLinksJS = `	snapshot.links = Array.from(document.querySelectorAll('a[href]')).slice(0, %d).map((el, idx) => ({
		id: idx,
		text: (el.innerText || '').trim().slice(0, 200),
		href: el.href
	}));
`

const snapshotFormsJS = `	snapshot.forms = Array.from(document.querySelectorAll('form')).map((form, idx) => ({
		id: idx,
		action: form.getAttribute('action') || '',
		method: (form.method || 'get').toLowerCase(),
		fields: Array.from(form.elements).filter((el) => el.name || el.id).map((el) => {
			const type = (el.type || el.tagName || '').toLowerCase();
			let label = '';
			if (el.labels && el.labels.length > 0) {
				label = (el.labels[0].innerText || '').trim();
			}
			return {
				name: el.name || el.id,
				type: type,
				label: label,
				required: !!el.required,
				value: type === 'password' ? '' : String(el.value || '').slice(0, 100)
			};
		})
	}));
`

const snapshotHeadingsJS = `	snapshot.headings = Array.from(document.querySelectorAll('h1, h2, h3, h4, h5, h6')).slice(0, %d).map((el) => ({
		level: Number(el.tagName.slice(1)),
		text: (el.innerText || '').trim()
	}));
`

const snapshotFooterJS = `	return JSON.stringify(snapshot);
})()`
