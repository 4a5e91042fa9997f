package templates

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/JonMunkholm/gridadmin/internal/grid"
	"github.com/a-h/templ"
)

// PickerParams feeds TablePicker.
type PickerParams struct {
	Tables []string

	// Alert is shown above the list, e.g. when the backend listing failed
	// and Tables holds the fallback set.
	Alert *grid.UserMessage
}

// TablePicker lists the tables a user can open.
func TablePicker(p PickerParams) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &html{w: w}
		h.raw(`<h1>Select a database</h1>`)
		if p.Alert != nil {
			h.render(ctx, ErrorAlert(p.Alert.Message, p.Alert.Action, p.Alert.Code))
		}
		if len(p.Tables) == 0 {
			h.raw(`<p>No tables available.</p>`)
			return h.err
		}
		h.raw(`<ul class="tables">`)
		for _, id := range p.Tables {
			h.raw(`<li><a href="`)
			h.text(TablePath(id))
			h.raw(`">`)
			h.text(grid.DisplayTitle(id))
			h.raw(`</a></li>`)
		}
		h.raw(`</ul>`)
		return h.err
	})
}

// TablePath is the page URL for table id. Slashes in the id stay path
// separators; every segment is escaped.
func TablePath(id string) string {
	parts := strings.Split(id, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return "/tables/" + strings.Join(parts, "/")
}
