package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/msomdec/campuscoders/internal/handler"
)

func TestRequireSession_TokenForReplacedSession(t *testing.T) {
	app := newTestApp(t)
	alice := app.client(t)
	admin := app.client(t)

	app.expect(t, alice, http.MethodPost, "/api/auth/register", map[string]string{
		"email": "a@x.com", "password": "pw", "name": "Alice",
	}, http.StatusCreated)
	app.expect(t, alice, http.MethodGet, "/api/auth/me", nil, http.StatusOK)

	// A second login replaces the single session; Alice's cookie is now stale.
	app.expect(t, admin, http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@test.com", "password": "admin123",
	}, http.StatusOK)

	app.expect(t, alice, http.MethodGet, "/api/auth/me", nil, http.StatusUnauthorized)
	app.expect(t, alice, http.MethodDelete, "/api/subscription", nil, http.StatusUnauthorized)
	app.expect(t, admin, http.MethodGet, "/api/auth/me", nil, http.StatusOK)
}

func TestRequireSession_Direct(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	if _, err := app.sessions.Login(ctx, "admin@test.com", "admin123"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	token, err := app.tokens.Issue(*app.sessions.Current())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	var gotName string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s := handler.SessionFromContext(r.Context()); s != nil {
			gotName = s.Name
		}
		w.WriteHeader(http.StatusOK)
	})
	protected := handler.RequireSession(app.sessions, app.tokens, inner)

	tests := []struct {
		name   string
		cookie string
		status int
	}{
		{"valid", token, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"invalid", "invalid.jwt.token", http.StatusUnauthorized},
		{"tampered", token[:len(token)-1] + "X", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session_token", Value: tc.cookie})
			}
			w := httptest.NewRecorder()
			protected.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
		})
	}
	if gotName != "Admin User" {
		t.Fatalf("expected session in context, got %q", gotName)
	}
}

func TestSecurityHeaders(t *testing.T) {
	app := newTestApp(t)

	resp, err := http.Get(app.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("expected X-Frame-Options DENY, got %q", got)
	}
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected nosniff, got %q", got)
	}
}
