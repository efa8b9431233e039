// Package templates renders the blog's HTML pages as templ components.
//
// Every component takes a view struct built by the handler; no component
// reaches into the domain or repository layers. All text is escaped with
// templ.EscapeString.
package templates
