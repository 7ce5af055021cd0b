package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/campuscoders/internal/domain"
	"github.com/msomdec/campuscoders/internal/service"
)

// AuthHandler handles authentication and profile HTTP requests.
type AuthHandler struct {
	sessions     *service.SessionManager
	tokens       *service.SessionTokens
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(sessions *service.SessionManager, tokens *service.SessionTokens, cookieSecure bool) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens, cookieSecure: cookieSecure}
}

// HandleRegister creates an account and logs it in.
// POST /api/auth/register
// Request:  {"email":"...","password":"...","name":"..."}
// Response: 201 {"user": {...}} or 409
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeReadError(w, err)
		return
	}

	ok, err := h.sessions.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		slog.Error("register user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "An account with that email already exists.")
		return
	}

	h.startSession(w, http.StatusCreated)
}

// HandleLogin verifies credentials and starts the session.
// POST /api/auth/login
// Request:  {"email":"...","password":"..."}
// Response: 200 {"user": {...}} or 401
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeReadError(w, err)
		return
	}

	ok, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.Error("login user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred. Please try again.")
		return
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid email or password.")
		return
	}

	h.startSession(w, http.StatusOK)
}

// HandleLogout ends the session and clears the cookie.
// POST /api/auth/logout
// Response: 204 No Content
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		slog.Error("logout user", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the current session.
// GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	session := SessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user": toSessionDTO(*session),
	})
}

// HandleUpdateMe applies a profile edit.
// PATCH /api/auth/me
// Request:  {"name":"...","email":"...","avatar":"..."} (all optional)
// Response: 200 {"user": {...}} or 409 when the email is taken
func (h *AuthHandler) HandleUpdateMe(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := readJSON(r, &req); err != nil {
		writeReadError(w, err)
		return
	}

	ok, err := h.sessions.UpdateUser(r.Context(), domain.UserPatch{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		slog.Error("update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	if !ok {
		writeError(w, http.StatusConflict, "Profile could not be updated.")
		return
	}

	current := h.sessions.Current()
	if current == nil {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": toSessionDTO(*current),
	})
}

func (h *AuthHandler) startSession(w http.ResponseWriter, status int) {
	session := h.sessions.Current()
	if session == nil {
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	token, err := h.tokens.Issue(*session)
	if err != nil {
		slog.Error("issue session token", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(h.tokens.TTL().Seconds()),
	})

	writeJSON(w, status, map[string]any{
		"user": toSessionDTO(*session),
	})
}
