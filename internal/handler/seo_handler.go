package handler

import (
	"encoding/xml"
	"fmt"
	"net/http"

	"go-qa-app/internal/service"
)

// SeoHandler holds dependencies for SEO-related handlers.
type SeoHandler struct {
	questionService *service.QuestionService
	baseURL         string
}

// NewSeoHandler creates a new SeoHandler.
func NewSeoHandler(qs *service.QuestionService, baseURL string) *SeoHandler {
	return &SeoHandler{questionService: qs, baseURL: baseURL}
}

// robotsHandler serves a static robots.txt file.
func (h *SeoHandler) robotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "User-agent: *")
	fmt.Fprintln(w, "Allow: /")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Sitemap: "+h.baseURL+"/sitemap.xml")
}

const sitemapDateFormat = "2006-01-02"

type sitemapURL struct {
	XMLName xml.Name `xml:"url"`
	Loc     string   `xml:"loc"`
	LastMod string   `xml:"lastmod"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// sitemapHandler generates and serves a dynamic sitemap.xml over every
// published question.
func (h *SeoHandler) sitemapHandler(w http.ResponseWriter, r *http.Request) {
	questions, err := h.questionService.ListForSitemap(r.Context())
	if err != nil {
		http.Error(w, "Failed to retrieve questions for sitemap", http.StatusInternalServerError)
		return
	}

	sitemap := urlSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  make([]sitemapURL, len(questions)),
	}

	for i, q := range questions {
		sitemap.URLs[i] = sitemapURL{
			Loc:     fmt.Sprintf("%s/questions/%d", h.baseURL, q.ID),
			LastMod: q.UpdatedAt.Format(sitemapDateFormat),
		}
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write([]byte(xml.Header))
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(sitemap); err != nil {
		http.Error(w, "Failed to generate sitemap XML", http.StatusInternalServerError)
		return
	}
}
