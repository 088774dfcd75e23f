package handler

import (
	"io/fs"
	"net/http"

	"go-qa-app/internal/middleware"
	"go-qa-app/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates and configures a new chi router.
func NewRouter(
	questionHandler *QuestionHandler,
	answerHandler *AnswerHandler,
	authHandler *AuthHandler,
	seoHandler *SeoHandler,
	authzMiddleware func(http.Handler) http.Handler,
	errorMiddleware func(middleware.AppHandler) http.Handler,
	sessionManager session.Manager,
	staticFS fs.FS,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(sessionManager.LoadAndSave)
	r.Use(authzMiddleware)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/questions", http.StatusFound)
	})

	// Authentication routes
	r.Get("/auth/login", authHandler.handleLogin)
	r.Get("/auth/callback", authHandler.handleCallback)
	r.Get("/auth/logout", authHandler.handleLogout)

	// SEO routes
	r.Get("/robots.txt", seoHandler.robotsHandler)
	r.Get("/sitemap.xml", seoHandler.sitemapHandler)

	// Question routes
	r.Method("GET", "/questions", errorMiddleware(questionHandler.indexHandler))
	r.Method("GET", "/questions/tag/{tag}", errorMiddleware(questionHandler.tagHandler))
	r.Method("GET", "/questions/{id}", errorMiddleware(questionHandler.viewHandler))
	r.Method("GET", "/ask", errorMiddleware(questionHandler.askHandler))
	r.Method("POST", "/ask", errorMiddleware(questionHandler.askSubmitHandler))
	r.Method("GET", "/questions/{id}/edit", errorMiddleware(questionHandler.editHandler))
	r.Method("POST", "/questions/{id}/edit", errorMiddleware(questionHandler.updateHandler))
	r.Method("POST", "/questions/{id}/delete", errorMiddleware(questionHandler.deleteHandler))
	r.Method("POST", "/questions/{id}/favorite", errorMiddleware(questionHandler.favoriteHandler))
	r.Method("POST", "/questions/{id}/vote", errorMiddleware(questionHandler.voteHandler))

	// Answer routes
	r.Method("POST", "/questions/{id}/answers", errorMiddleware(answerHandler.createHandler))
	r.Method("GET", "/answers/{id}/edit", errorMiddleware(answerHandler.editHandler))
	r.Method("POST", "/answers/{id}/edit", errorMiddleware(answerHandler.updateHandler))
	r.Method("POST", "/answers/{id}/correct", errorMiddleware(answerHandler.correctHandler))
	r.Method("POST", "/answers/{id}/vote", errorMiddleware(answerHandler.voteHandler))

	// Static assets
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	return r
}
