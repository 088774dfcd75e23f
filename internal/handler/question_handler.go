package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go-qa-app/internal/data"
	"go-qa-app/internal/logger"
	"go-qa-app/internal/middleware"
	"go-qa-app/internal/service"
	"go-qa-app/internal/session"
	"go-qa-app/internal/view"

	"github.com/go-chi/chi/v5"
)

// QuestionHandler holds the dependencies for the question handlers.
type QuestionHandler struct {
	questionService *service.QuestionService
	view            *view.View
	sessions        session.Manager
	log             logger.Logger
}

// NewQuestionHandler creates a new QuestionHandler with the given dependencies.
func NewQuestionHandler(qs *service.QuestionService, v *view.View, sm session.Manager, log logger.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionService: qs,
		view:            v,
		sessions:        sm,
		log:             log,
	}
}

// appError maps service and repository failures onto error pages.
func appError(err error) *middleware.AppError {
	switch {
	case errors.Is(err, data.ErrNotFound):
		return &middleware.AppError{Error: err, Message: "The requested page does not exist.", Code: http.StatusNotFound}
	case errors.Is(err, service.ErrForbidden):
		return &middleware.AppError{Error: err, Message: "You are not allowed to perform this action.", Code: http.StatusForbidden}
	default:
		return &middleware.AppError{Error: err, Message: "Something went wrong.", Code: http.StatusInternalServerError}
	}
}

// urlID parses the {id} route parameter.
func urlID(r *http.Request) (int64, *middleware.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, &middleware.AppError{Error: err, Message: "The requested page does not exist.", Code: http.StatusNotFound}
	}
	return id, nil
}

// splitTags turns the comma-separated tags form value into names.
func splitTags(value string) []string {
	return strings.Split(value, ",")
}

// indexHandler lists questions, newest first by default.
func (h *QuestionHandler) indexHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	params := data.QuestionListParams{
		Query:      r.URL.Query().Get("q"),
		Order:      r.URL.Query().Get("order"),
		Page:       page,
		PublicOnly: true,
	}
	listing, err := h.questionService.List(r.Context(), params)
	if err != nil {
		return appError(err)
	}

	pageData := map[string]interface{}{
		"Listing":  listing,
		"Query":    params.Query,
		"UserInfo": userInfo,
		"Flash":    h.sessions.PopString(r.Context(), "flash"),
	}
	if err := h.view.Render(w, r, "index.html", pageData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render question list", Code: http.StatusInternalServerError}
	}
	return nil
}

// tagHandler lists published questions carrying a tag.
func (h *QuestionHandler) tagHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	tag := chi.URLParam(r, "tag")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	listing, err := h.questionService.ListByTag(r.Context(), tag, page, 0)
	if err != nil {
		return appError(err)
	}

	pageData := map[string]interface{}{
		"Tag":      tag,
		"Listing":  listing,
		"UserInfo": middleware.GetUserInfo(r.Context()),
		"Flash":    h.sessions.PopString(r.Context(), "flash"),
	}
	if err := h.view.Render(w, r, "tag.html", pageData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render tag page", Code: http.StatusInternalServerError}
	}
	return nil
}

// viewHandler shows a question with its answers. Views by anyone but the
// author count toward the view counter.
func (h *QuestionHandler) viewHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	vw, err := h.questionService.View(r.Context(), userInfo.Subject, id, r.URL.Query().Get("answers"))
	if err != nil {
		return appError(err)
	}

	pageData := map[string]interface{}{
		"View":     vw,
		"UserInfo": userInfo,
		"Flash":    h.sessions.PopString(r.Context(), "flash"),
	}
	if err := h.view.Render(w, r, "view.html", pageData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render question", Code: http.StatusInternalServerError}
	}
	return nil
}

// askHandler displays the question form.
func (h *QuestionHandler) askHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	pageData := map[string]interface{}{
		"UserInfo": middleware.GetUserInfo(r.Context()),
	}
	if err := h.view.Render(w, r, "ask.html", pageData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render question form", Code: http.StatusInternalServerError}
	}
	return nil
}

// askSubmitHandler creates a question from the submitted form.
func (h *QuestionHandler) askSubmitHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	userInfo := middleware.GetUserInfo(r.Context())
	in := service.QuestionInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Tags:    splitTags(r.FormValue("tags")),
	}

	question, err := h.questionService.Create(r.Context(), userInfo.Subject, in)
	if err != nil {
		if ve := service.AsValidationError(err); ve != nil {
			pageData := map[string]interface{}{
				"UserInfo": userInfo,
				"Form":     in,
				"TagsText": r.FormValue("tags"),
				"Errors":   ve.Fields,
			}
			if rerr := h.view.Render(w, r, "ask.html", pageData); rerr != nil {
				return &middleware.AppError{Error: rerr, Message: "Failed to render question form", Code: http.StatusInternalServerError}
			}
			return nil
		}
		return appError(err)
	}

	h.sessions.Put(r.Context(), "flash", "Your question has been posted.")
	http.Redirect(w, r, "/questions/"+strconv.FormatInt(question.ID, 10), http.StatusFound)
	return nil
}

// editHandler displays the edit form for a question.
func (h *QuestionHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	question, err := h.questionService.Get(r.Context(), id)
	if err != nil {
		return appError(err)
	}
	if question.AuthorID != userInfo.Subject {
		return appError(service.ErrForbidden)
	}

	names := make([]string, 0, len(question.Tags))
	for _, t := range question.Tags {
		names = append(names, t.Name)
	}
	pageData := map[string]interface{}{
		"UserInfo": userInfo,
		"Question": question,
		"Form":     service.QuestionInput{Title: question.Title, Content: question.Content},
		"TagsText": strings.Join(names, ","),
	}
	if err := h.view.Render(w, r, "edit.html", pageData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render edit form", Code: http.StatusInternalServerError}
	}
	return nil
}

// updateHandler rewrites a question from the submitted form.
func (h *QuestionHandler) updateHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())
	in := service.QuestionInput{
		Title:   r.FormValue("title"),
		Content: r.FormValue("content"),
		Tags:    splitTags(r.FormValue("tags")),
	}

	question, err := h.questionService.Update(r.Context(), userInfo.Subject, id, in)
	if err != nil {
		if ve := service.AsValidationError(err); ve != nil {
			pageData := map[string]interface{}{
				"UserInfo": userInfo,
				"Question": &data.Question{ID: id},
				"Form":     in,
				"TagsText": r.FormValue("tags"),
				"Errors":   ve.Fields,
			}
			if rerr := h.view.Render(w, r, "edit.html", pageData); rerr != nil {
				return &middleware.AppError{Error: rerr, Message: "Failed to render edit form", Code: http.StatusInternalServerError}
			}
			return nil
		}
		return appError(err)
	}

	h.sessions.Put(r.Context(), "flash", "Your question has been updated.")
	http.Redirect(w, r, "/questions/"+strconv.FormatInt(question.ID, 10), http.StatusFound)
	return nil
}

// deleteHandler removes a question and everything hanging off it.
func (h *QuestionHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	if err := h.questionService.Delete(r.Context(), userInfo.Subject, id); err != nil {
		return appError(err)
	}

	h.sessions.Put(r.Context(), "flash", "Question deleted.")
	http.Redirect(w, r, "/questions", http.StatusFound)
	return nil
}

// favoriteHandler toggles the bookmark state for the current user.
func (h *QuestionHandler) favoriteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	favorited, err := h.questionService.ToggleFavorite(r.Context(), userInfo.Subject, id)
	if err != nil {
		return appError(err)
	}

	if favorited {
		h.sessions.Put(r.Context(), "flash", "Added to your favorites.")
	} else {
		h.sessions.Put(r.Context(), "flash", "Removed from your favorites.")
	}
	http.Redirect(w, r, "/questions/"+strconv.FormatInt(id, 10), http.StatusFound)
	return nil
}

// voteHandler records a vote on the question.
func (h *QuestionHandler) voteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	counted, err := h.questionService.Vote(r.Context(), userInfo.Subject, id)
	if err != nil {
		return appError(err)
	}
	if !counted {
		h.sessions.Put(r.Context(), "flash", "You have already voted on this question.")
	}
	http.Redirect(w, r, "/questions/"+strconv.FormatInt(id, 10), http.StatusFound)
	return nil
}
