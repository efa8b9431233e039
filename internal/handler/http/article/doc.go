// Package article serves the public blog pages: the homepage, the article
// detail page and the comment form target.
package article
