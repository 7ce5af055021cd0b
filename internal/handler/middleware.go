package handler

import (
	"context"
	"net/http"

	"github.com/unrolled/secure"

	"github.com/msomdec/campuscoders/internal/domain"
	"github.com/msomdec/campuscoders/internal/service"
)

type contextKey string

const sessionContextKey contextKey = "session"

const sessionCookieName = "session_token"

// SessionFromContext extracts the authenticated session from the request
// context. Returns nil if the request is anonymous.
func SessionFromContext(ctx context.Context) *domain.Session {
	session, _ := ctx.Value(sessionContextKey).(*domain.Session)
	return session
}

// RequireSession rejects requests whose session cookie does not belong to
// the instance's current session. Only one account is logged in at a time,
// so a valid token for an account that has since been replaced is refused.
func RequireSession(sessions *service.SessionManager, tokens *service.SessionTokens, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := authenticateRequest(r, sessions, tokens)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Not authenticated.")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalSession injects the session when the cookie matches it and lets
// every other request through as anonymous.
func OptionalSession(sessions *service.SessionManager, tokens *service.SessionTokens, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session, err := authenticateRequest(r, sessions, tokens); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), sessionContextKey, session))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin allows the request only when the current session is an
// admin. It must run behind RequireSession.
func RequireAdmin(sessions *service.SessionManager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if SessionFromContext(r.Context()) == nil || !sessions.IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin access required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func authenticateRequest(r *http.Request, sessions *service.SessionManager, tokens *service.SessionTokens) (*domain.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	userID, err := tokens.Subject(cookie.Value)
	if err != nil {
		return nil, err
	}

	current := sessions.Current()
	if current == nil || current.ID != userID {
		return nil, domain.ErrUnauthorized
	}
	return current, nil
}

// SecurityHeaders wraps next with the standard response hardening headers.
func SecurityHeaders(production bool, next http.Handler) http.Handler {
	return secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         !production,
	}).Handler(next)
}
