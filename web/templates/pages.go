package templates

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

// DateLayout is how publish dates are shown.
const DateLayout = "January 2, 2006"

// ArticleSummary is one row of the homepage list.
type ArticleSummary struct {
	ID          int64
	Title       string
	PublishDate string
	AuthorName  string
}

// HomeView is the homepage state.
type HomeView struct {
	Viewer   Viewer
	Articles []ArticleSummary
}

// CommentView is a comment with its author's username.
type CommentView struct {
	Username string
	Content  string
}

// DetailView is the article detail page state.
type DetailView struct {
	Viewer      Viewer
	ID          int64
	Title       string
	Content     string
	PublishDate string
	AuthorName  string
	Comments    []CommentView
	// LoginURL is where anonymous readers are sent to sign in before commenting.
	LoginURL string
}

// LoginView is the login form state.
type LoginView struct {
	Username string
	Next     string
	Error    string
}

// ArticlePath is the detail page URL for an article.
func ArticlePath(id int64) string {
	return "/article/" + strconv.FormatInt(id, 10) + "/"
}

// CommentPath is the comment submission URL for an article.
func CommentPath(id int64) string {
	return ArticlePath(id) + "comment/"
}

// HomePage renders the most recent articles.
func HomePage(v HomeView) templ.Component {
	return layout("Blog", v.Viewer, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<h1>Recent articles</h1>`)
		if len(v.Articles) == 0 {
			p.raw(`<p class="empty">No articles found.</p>`)
			return p.err
		}
		p.raw(`<ul class="articles">`)
		for _, a := range v.Articles {
			p.raw(`<li><a href="`, ArticlePath(a.ID), `">`)
			p.text(a.Title)
			p.raw(`</a> <time>`)
			p.text(a.PublishDate)
			p.raw(`</time>`)
			if a.AuthorName != "" {
				p.raw(` <span class="author">by `)
				p.text(a.AuthorName)
				p.raw(`</span>`)
			}
			p.raw(`</li>`)
		}
		p.raw(`</ul>`)
		return p.err
	}))
}

// DetailPage renders an article, its comments and the comment form.
func DetailPage(v DetailView) templ.Component {
	return layout(v.Title, v.Viewer, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<article><h1>`)
		p.text(v.Title)
		p.raw(`</h1><p class="meta"><time>`)
		p.text(v.PublishDate)
		p.raw(`</time>`)
		if v.AuthorName != "" {
			p.raw(` by <span class="author">`)
			p.text(v.AuthorName)
			p.raw(`</span>`)
		}
		p.raw(`</p><div class="content">`)
		p.text(v.Content)
		p.raw(`</div></article>`)

		p.raw(`<section class="comments"><h2>Comments</h2>`)
		if len(v.Comments) == 0 {
			p.raw(`<p class="empty">No comments yet.</p>`)
		} else {
			p.raw(`<ul>`)
			for _, c := range v.Comments {
				p.raw(`<li><strong>`)
				p.text(c.Username)
				p.raw(`</strong>: `)
				p.text(c.Content)
				p.raw(`</li>`)
			}
			p.raw(`</ul>`)
		}

		if v.Viewer.Authenticated() {
			p.raw(`<form method="post" action="`, CommentPath(v.ID), `">`,
				`<textarea name="content" rows="4" cols="60"></textarea>`,
				`<button type="submit">Add comment</button></form>`)
		} else {
			p.raw(`<p><a href="`)
			p.text(v.LoginURL)
			p.raw(`">Log in</a> to comment.</p>`)
		}
		p.raw(`</section>`)
		return p.err
	}))
}

// LoginPage renders the sign-in form.
func LoginPage(v LoginView) templ.Component {
	return layout("Log in", Viewer{}, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<h1>Log in</h1>`)
		if v.Error != "" {
			p.raw(`<p class="error">`)
			p.text(v.Error)
			p.raw(`</p>`)
		}
		p.raw(`<form method="post" action="/accounts/login/">`,
			`<input type="hidden" name="next" value="`)
		p.text(v.Next)
		p.raw(`"><label>Username <input type="text" name="username" value="`)
		p.text(v.Username)
		p.raw(`" autocomplete="username" required></label>`,
			`<label>Password <input type="password" name="password" autocomplete="current-password" required></label>`,
			`<button type="submit">Log in</button></form>`)
		return p.err
	}))
}

// NotFoundPage is shown for unknown routes and missing articles.
func NotFoundPage(viewer Viewer) templ.Component {
	return layout("Not found", viewer, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<h1>Not found</h1><p>The page you requested does not exist.</p><p><a href="/">Back to the homepage</a></p>`)
		return p.err
	}))
}

// ErrorPage is shown when a request fails on the server side.
func ErrorPage(viewer Viewer) templ.Component {
	return layout("Error", viewer, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<h1>Something went wrong</h1><p>Please try again later.</p>`)
		return p.err
	}))
}

// RateLimitedPage tells a commenter their post was not stored and when to retry.
func RateLimitedPage(viewer Viewer, articleID int64, retryAfter string) templ.Component {
	return layout("Slow down", viewer, templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &pageWriter{w: w}
		p.raw(`<h1>Slow down</h1><p>Your comment was not posted because you are commenting too quickly. Try again in `)
		p.text(retryAfter)
		p.raw(` seconds.</p><p><a href="`)
		p.text(ArticlePath(articleID))
		p.raw(`">Back to the article</a></p>`)
		return p.err
	}))
}
