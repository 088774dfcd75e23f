//go:build unit

package service

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"Hello, World!", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-hyphenated-title", "already-hyphenated-title"},
		{"Go 1.22 release notes", "go-1-22-release-notes"},
		{"UPPER CASE", "upper-case"},
		{"multiple   spaces", "multiple-spaces"},
		{"???", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.title); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	title := "How do I parse JSON in Go?"
	first := Slugify(title)
	for i := 0; i < 3; i++ {
		if got := Slugify(title); got != first {
			t.Fatalf("Slugify is not deterministic: %q then %q", first, got)
		}
	}
}
