package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// DatastarPath is where the page loads the datastar bundle from.
const DatastarPath = "/static/dist/datastar.js"

// Layout is the document shell. body renders the <body> element.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw(`<title>`)
		h.text(title)
		h.raw(`</title>`)
		h.raw(`<link rel="stylesheet" href="/static/dist/editor.css">`)
		h.raw(`<script type="module"`)
		h.attr("src", DatastarPath)
		h.raw(`></script>`)
		h.raw(`<script type="module" src="/static/dist/editor.js"></script>`)
		h.raw(`</head>`)
		h.render(ctx, body)
		h.raw(`</html>`)
		return h.err
	})
}
