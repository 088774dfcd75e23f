package middleware

import (
	"net/http"

	"go-qa-app/internal/session"

	"github.com/casbin/casbin/v2"
)

// Authorizer creates a new middleware for authorization.
// It resolves the requester's identity from the session, stores it in the
// request context for downstream handlers, and checks the route against the
// Casbin policy by role, path and method.
func Authorizer(e *casbin.Enforcer, sm session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The subject is empty for sessions that never logged in.
			subject := sm.GetString(r.Context(), "user_subject")
			role := "member"
			if subject == "" {
				subject = "anonymous"
				role = "anonymous"
			}

			userInfo := &UserInfo{Subject: subject, Role: role}
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			allowed, err := e.Enforce(role, r.URL.Path, r.Method)
			if err != nil {
				http.Error(w, "Authorization error", http.StatusInternalServerError)
				return
			}

			if !allowed {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
