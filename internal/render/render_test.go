//go:build unit

package render

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	r := New()

	t.Run("markdown to html", func(t *testing.T) {
		out, err := r.Render("# Heading\n\nsome **bold** text")
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		html := string(out)
		if !strings.Contains(html, "<h1") {
			t.Errorf("expected a heading element, got: %s", html)
		}
		if !strings.Contains(html, "<strong>bold</strong>") {
			t.Errorf("expected bold text, got: %s", html)
		}
	})

	t.Run("script tags are stripped", func(t *testing.T) {
		out, err := r.Render("hello <script>alert('x')</script> world")
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		html := string(out)
		if strings.Contains(html, "<script") {
			t.Errorf("expected script to be stripped, got: %s", html)
		}
		if !strings.Contains(html, "hello") || !strings.Contains(html, "world") {
			t.Errorf("expected surrounding text to survive, got: %s", html)
		}
	})

	t.Run("gfm tables render", func(t *testing.T) {
		out, err := r.Render("| a | b |\n|---|---|\n| 1 | 2 |")
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if !strings.Contains(string(out), "<table>") {
			t.Errorf("expected a table element, got: %s", out)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		first, err := r.Render("same *input*")
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		second, err := r.Render("same *input*")
		if err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if first != second {
			t.Errorf("expected identical output for identical input: %q vs %q", first, second)
		}
	})
}
