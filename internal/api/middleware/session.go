package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/wordcascade/internal/api/apierr"
	"github.com/mcoot/wordcascade/internal/model"
	"github.com/mcoot/wordcascade/internal/services/session"
)

type contextKey string

const sessionContextKey contextKey = "session"

// SessionLookup finds a session by its id
type SessionLookup interface {
	GetByID(id model.PlayerID) (model.PlayerSession, bool)
}

var _ SessionLookup = (session.ServiceInterface)(nil)

// RequireSession rejects requests that do not carry a known session id
func RequireSession(sessions SessionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := extractSessionID(r)
			if id == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			sess, ok := sessions.GetByID(model.PlayerID(id))
			if !ok {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractSessionID reads the session id from the Authorization header or the session query parameter
func extractSessionID(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.URL.Query().Get("session")
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) (model.PlayerSession, bool) {
	sess, ok := ctx.Value(sessionContextKey).(model.PlayerSession)
	return sess, ok
}

// MustGetSession returns the session or panics
func MustGetSession(ctx context.Context) model.PlayerSession {
	sess, ok := GetSession(ctx)
	if !ok {
		panic("no session in context - session middleware not applied?")
	}
	return sess
}
