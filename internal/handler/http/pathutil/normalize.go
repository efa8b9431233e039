package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// pathPatterns are the dynamic routes, most specific first.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/article/\d+/$`), Template: "/article/:id/"},
	{Pattern: regexp.MustCompile(`^/article/\d+/comment/$`), Template: "/article/:id/comment/"},
	{Pattern: regexp.MustCompile(`^/admin/articles/\d+$`), Template: "/admin/articles/:id"},
}

// staticPaths pass through unchanged.
var staticPaths = map[string]bool{
	"/":                 true,
	"/accounts/login/":  true,
	"/accounts/logout/": true,
	"/auth/token":       true,
	"/admin/articles":   true,
	"/admin/comments":   true,
	"/health":           true,
	"/ready":            true,
	"/live":             true,
	"/metrics":          true,
}

// Unmatched is the label for paths that match no route.
const Unmatched = "unmatched"

// NormalizePath maps a request path to a bounded label set for metrics.
// IDs become ":id"; query strings are dropped; unknown paths collapse to Unmatched
// so scanners cannot inflate label cardinality.
//
//	NormalizePath("/article/123/")          // "/article/:id/"
//	NormalizePath("/article/9/comment/")    // "/article/:id/comment/"
//	NormalizePath("/health?verbose=1")      // "/health"
//	NormalizePath("/wp-login.php")          // "unmatched"
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	if staticPaths[path] {
		return path
	}
	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return Unmatched
}

// GetExpectedCardinality returns the number of distinct labels NormalizePath can produce.
func GetExpectedCardinality() int {
	return len(staticPaths) + len(pathPatterns) + 1
}
