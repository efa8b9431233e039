package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Viewer is the signed-in user shown in the page header.
// A zero Viewer renders the login link.
type Viewer struct {
	Username string
}

// Authenticated reports whether someone is signed in.
func (v Viewer) Authenticated() bool { return v.Username != "" }

// pageWriter writes markup and remembers the first write error.
type pageWriter struct {
	w   io.Writer
	err error
}

func (p *pageWriter) raw(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *pageWriter) text(s string) {
	p.raw(templ.EscapeString(s))
}

func layout(title string, viewer Viewer, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`,
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
			`<title>`)
		p.text(title)
		p.raw(`</title></head><body><header><a href="/">Blog</a> `)
		if viewer.Authenticated() {
			p.raw(`<span class="user">`)
			p.text(viewer.Username)
			p.raw(`</span> <form method="post" action="/accounts/logout/" class="inline"><button type="submit">Log out</button></form>`)
		} else {
			p.raw(`<a href="/accounts/login/">Log in</a>`)
		}
		p.raw(`</header><main>`)
		if p.err != nil {
			return p.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</main></body></html>`)
		return p.err
	})
}
