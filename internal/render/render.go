package render

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts raw Markdown into sanitized HTML. Question and answer
// bodies are stored as Markdown only; the HTML form is computed here at the
// presentation boundary and never persisted.
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// New creates a Renderer with GitHub-flavored Markdown and a UGC sanitizer
// policy. UGCPolicy allows basic formatting like links, lists and code while
// stripping scripts and event handlers.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	return &Renderer{
		md:        md,
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Render converts raw Markdown to sanitized HTML. Sanitization runs on the
// rendered output, so raw HTML embedded in the Markdown is stripped too.
func (r *Renderer) Render(raw string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(raw), &buf); err != nil {
		return "", err
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes())), nil
}
