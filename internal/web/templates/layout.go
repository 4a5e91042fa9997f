// Package templates renders the gridadmin pages as templ components.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// html accumulates the first write error so components read top to bottom.
type html struct {
	w   io.Writer
	err error
}

func (h *html) raw(s string) {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *html) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *html) render(ctx context.Context, c templ.Component) {
	if h.err == nil && c != nil {
		h.err = c.Render(ctx, h.w)
	}
}

// Layout wraps body in the page shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		h.text(title)
		h.raw(`</title><style>`)
		h.raw(styles)
		h.raw(`</style></head><body><header class="topbar"><a href="/">Admin Panel</a></header><main>`)
		h.render(ctx, body)
		h.raw(`</main></body></html>`)
		return h.err
	})
}

// ErrorAlert renders a dismissable error box.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<div class="alert" role="alert"><strong>`)
		h.text(message)
		h.raw(`</strong>`)
		if action != "" {
			h.raw(`<span class="alert-action">`)
			h.text(action)
			h.raw(`</span>`)
		}
		if code != "" {
			h.raw(`<code>`)
			h.text(code)
			h.raw(`</code>`)
		}
		h.raw(`</div>`)
		return h.err
	})
}

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1d2330}
.topbar{background:#1d2330;padding:.75rem 1.5rem}.topbar a{color:#fff;text-decoration:none;font-weight:600}
main{padding:1.5rem}
h1{font-size:1.4rem;letter-spacing:.04em}
.alert{background:#fdecea;border:1px solid #f5c2bc;padding:.75rem 1rem;border-radius:6px;margin-bottom:1rem}
.alert-action{display:block;font-size:.9rem}.alert code{float:right;color:#8a2a20}
.tables{list-style:none;padding:0;display:grid;grid-template-columns:repeat(auto-fill,minmax(14rem,1fr));gap:.75rem}
.tables a{display:block;background:#fff;border:1px solid #dde1e7;border-radius:6px;padding:1rem;text-decoration:none;color:inherit}
.toolbar{display:flex;gap:.5rem;margin-bottom:1rem;flex-wrap:wrap}
button{border:1px solid #c3c9d3;background:#fff;border-radius:4px;padding:.4rem .8rem;cursor:pointer}
button.primary{background:#2456d6;border-color:#2456d6;color:#fff}
table{border-collapse:collapse;background:#fff;width:100%}
th,td{border:1px solid #dde1e7;padding:.35rem .5rem;text-align:left;white-space:nowrap}
th{background:#eef1f5;text-transform:capitalize}
td[contenteditable=true]{background:#fffbe6}
.bulk{margin-top:1rem;background:#fff;border:1px solid #dde1e7;border-radius:6px;padding:1rem}
.bulk textarea{width:100%;min-height:8rem;font-family:monospace}
#toast{position:fixed;bottom:1rem;right:1rem;background:#1d2330;color:#fff;padding:.75rem 1rem;border-radius:6px}
`
