package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() = %v", err)
	}
	return b.String()
}

func TestHomePageListsArticles(t *testing.T) {
	got := render(t, HomePage(HomeView{
		Articles: []ArticleSummary{
			{ID: 2, Title: "Second", PublishDate: "March 2, 2025", AuthorName: "alice"},
			{ID: 1, Title: "First", PublishDate: "March 1, 2025"},
		},
	}))

	if !strings.Contains(got, `<a href="/article/2/">Second</a>`) {
		t.Fatalf("expected link to article 2, got %q", got)
	}
	if strings.Index(got, "Second") > strings.Index(got, "First") {
		t.Fatal("expected articles in the given order")
	}
	if !strings.Contains(got, "by alice") {
		t.Fatalf("expected author name, got %q", got)
	}
	if strings.Contains(got, "No articles found.") {
		t.Fatal("empty message should not render with articles")
	}
}

func TestHomePageEmpty(t *testing.T) {
	got := render(t, HomePage(HomeView{}))
	if !strings.Contains(got, "No articles found.") {
		t.Fatalf("expected empty message, got %q", got)
	}
	if !strings.Contains(got, `href="/accounts/login/"`) {
		t.Fatalf("expected login link for anonymous viewer, got %q", got)
	}
}

func TestDetailPageEscapesUserContent(t *testing.T) {
	got := render(t, DetailPage(DetailView{
		ID:      5,
		Title:   "<script>alert(1)</script>",
		Content: "a & b",
		Comments: []CommentView{
			{Username: "bob", Content: `"><img src=x>`},
		},
		LoginURL: "/accounts/login/?next=/article/5/",
	}))

	if strings.Contains(got, "<script>") || strings.Contains(got, "<img") {
		t.Fatalf("user content must be escaped, got %q", got)
	}
	if !strings.Contains(got, "a &amp; b") {
		t.Fatalf("expected escaped content, got %q", got)
	}
	if !strings.Contains(got, `href="/accounts/login/?next=/article/5/"`) {
		t.Fatalf("expected login link for anonymous viewer, got %q", got)
	}
	if strings.Contains(got, "<textarea") {
		t.Fatal("comment form should only render for signed-in users")
	}
}

func TestDetailPageCommentFormForViewer(t *testing.T) {
	got := render(t, DetailPage(DetailView{
		Viewer: Viewer{Username: "carol"},
		ID:     7,
		Title:  "Hello",
	}))

	if !strings.Contains(got, `action="/article/7/comment/"`) {
		t.Fatalf("expected comment form action, got %q", got)
	}
	if !strings.Contains(got, "No comments yet.") {
		t.Fatalf("expected empty comments message, got %q", got)
	}
	if !strings.Contains(got, "Log out") {
		t.Fatalf("expected logout button, got %q", got)
	}
}

func TestLoginPageKeepsNextAndError(t *testing.T) {
	got := render(t, LoginPage(LoginView{
		Username: "dave",
		Next:     `/article/1/?a="b"`,
		Error:    "Invalid username or password.",
	}))

	if !strings.Contains(got, `value="/article/1/?a=&#34;b&#34;"`) {
		t.Fatalf("expected escaped next value, got %q", got)
	}
	if !strings.Contains(got, `value="dave"`) {
		t.Fatalf("expected username to be kept, got %q", got)
	}
	if !strings.Contains(got, "Invalid username or password.") {
		t.Fatalf("expected error message, got %q", got)
	}
}

func TestArticlePaths(t *testing.T) {
	if got := ArticlePath(12); got != "/article/12/" {
		t.Errorf("ArticlePath = %q", got)
	}
	if got := CommentPath(12); got != "/article/12/comment/" {
		t.Errorf("CommentPath = %q", got)
	}
}
