package handler

import (
	"net/http"
	"strconv"

	"go-qa-app/internal/middleware"
	"go-qa-app/internal/service"
	"go-qa-app/internal/session"
	"go-qa-app/internal/view"
)

// AnswerHandler holds the dependencies for the answer handlers.
type AnswerHandler struct {
	answerService   *service.AnswerService
	questionService *service.QuestionService
	view            *view.View
	sessions        session.Manager
}

// NewAnswerHandler creates a new AnswerHandler with the given dependencies.
func NewAnswerHandler(as *service.AnswerService, qs *service.QuestionService, v *view.View, sm session.Manager) *AnswerHandler {
	return &AnswerHandler{
		answerService:   as,
		questionService: qs,
		view:            v,
		sessions:        sm,
	}
}

func questionURL(id int64) string {
	return "/questions/" + strconv.FormatInt(id, 10)
}

// createHandler posts an answer to a question.
func (h *AnswerHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	questionID, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())
	content := r.FormValue("content")

	_, err := h.answerService.Create(r.Context(), userInfo.Subject, questionID, content)
	if err != nil {
		if ve := service.AsValidationError(err); ve != nil {
			question, qerr := h.questionService.Get(r.Context(), questionID)
			if qerr != nil {
				return appError(qerr)
			}
			pageData := map[string]interface{}{
				"UserInfo": userInfo,
				"Question": question,
				"Content":  content,
				"Errors":   ve.Fields,
			}
			if rerr := h.view.Render(w, r, "answer.html", pageData); rerr != nil {
				return &middleware.AppError{Error: rerr, Message: "Failed to render answer form", Code: http.StatusInternalServerError}
			}
			return nil
		}
		return appError(err)
	}

	h.sessions.Put(r.Context(), "flash", "Your answer has been posted.")
	http.Redirect(w, r, questionURL(questionID), http.StatusFound)
	return nil
}

// editHandler displays the edit form for an answer.
func (h *AnswerHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	answer, err := h.answerService.Get(r.Context(), id)
	if err != nil {
		return appError(err)
	}
	if answer.AuthorID != userInfo.Subject {
		return appError(service.ErrForbidden)
	}
	question, err := h.questionService.Get(r.Context(), answer.QuestionID)
	if err != nil {
		return appError(err)
	}

	pageData := map[string]interface{}{
		"UserInfo": userInfo,
		"Question": question,
		"Answer":   answer,
		"Content":  answer.Content,
	}
	if err := h.view.Render(w, r, "answer.html", pageData); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render answer form", Code: http.StatusInternalServerError}
	}
	return nil
}

// updateHandler rewrites an answer from the submitted form.
func (h *AnswerHandler) updateHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())
	content := r.FormValue("content")

	answer, err := h.answerService.Update(r.Context(), userInfo.Subject, id, content)
	if err != nil {
		if ve := service.AsValidationError(err); ve != nil {
			existing, gerr := h.answerService.Get(r.Context(), id)
			if gerr != nil {
				return appError(gerr)
			}
			question, qerr := h.questionService.Get(r.Context(), existing.QuestionID)
			if qerr != nil {
				return appError(qerr)
			}
			pageData := map[string]interface{}{
				"UserInfo": userInfo,
				"Question": question,
				"Answer":   existing,
				"Content":  content,
				"Errors":   ve.Fields,
			}
			if rerr := h.view.Render(w, r, "answer.html", pageData); rerr != nil {
				return &middleware.AppError{Error: rerr, Message: "Failed to render answer form", Code: http.StatusInternalServerError}
			}
			return nil
		}
		return appError(err)
	}

	h.sessions.Put(r.Context(), "flash", "Your answer has been updated.")
	http.Redirect(w, r, questionURL(answer.QuestionID), http.StatusFound)
	return nil
}

// correctHandler marks an answer as the accepted one for its question.
func (h *AnswerHandler) correctHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	answer, err := h.answerService.Accept(r.Context(), userInfo.Subject, id)
	if err != nil {
		return appError(err)
	}

	h.sessions.Put(r.Context(), "flash", "Answer accepted.")
	http.Redirect(w, r, questionURL(answer.QuestionID), http.StatusFound)
	return nil
}

// voteHandler records a vote on an answer.
func (h *AnswerHandler) voteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, aerr := urlID(r)
	if aerr != nil {
		return aerr
	}
	userInfo := middleware.GetUserInfo(r.Context())

	answer, err := h.answerService.Get(r.Context(), id)
	if err != nil {
		return appError(err)
	}
	counted, err := h.answerService.Vote(r.Context(), userInfo.Subject, id)
	if err != nil {
		return appError(err)
	}
	if !counted {
		h.sessions.Put(r.Context(), "flash", "You have already voted on this answer.")
	}
	http.Redirect(w, r, questionURL(answer.QuestionID), http.StatusFound)
	return nil
}
