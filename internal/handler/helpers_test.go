package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/msomdec/campuscoders/internal/handler"
	"github.com/msomdec/campuscoders/internal/repository/memory"
	"github.com/msomdec/campuscoders/internal/repository/roster"
	"github.com/msomdec/campuscoders/internal/service"
)

const testSessionSecret = "test-secret-for-handler-tests-0123456789"

type testApp struct {
	sessions *service.SessionManager
	tokens   *service.SessionTokens
	accounts *roster.Repository
	server   *httptest.Server
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithDelay(t, 0)
}

func newTestAppWithDelay(t *testing.T, paymentDelay time.Duration) *testApp {
	t.Helper()
	accounts := roster.New(memory.New())
	sessions := service.NewSessionManager(accounts, service.NewBcryptCredentials(4))
	tokens := service.NewSessionTokens(testSessionSecret, time.Hour)

	if _, err := sessions.SeedAdmin(context.Background(), service.BootstrapAdmin{
		Email: "admin@test.com", Credential: "admin123", Name: "Admin User",
	}); err != nil {
		t.Fatalf("SeedAdmin: %v", err)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Sessions:        sessions,
		Entitlements:    service.NewEntitlementResolver(sessions, paymentDelay),
		Admin:           service.NewAdminService(accounts),
		Tokens:          tokens,
		LoginRateLimit:  1000,
		LoginRateWindow: time.Minute,
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{sessions: sessions, tokens: tokens, accounts: accounts, server: srv}
}

// client returns an HTTP client with its own cookie jar.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func (a *testApp) do(t *testing.T, c *http.Client, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("decode %s %s body %q: %v", method, path, raw, err)
		}
	}
	return resp, decoded
}

func (a *testApp) expect(t *testing.T, c *http.Client, method, path string, body any, status int) map[string]any {
	t.Helper()
	resp, decoded := a.do(t, c, method, path, body)
	if resp.StatusCode != status {
		t.Fatalf("%s %s: expected %d, got %d (%v)", method, path, status, resp.StatusCode, decoded)
	}
	return decoded
}

func userField(t *testing.T, body map[string]any, field string) any {
	t.Helper()
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected a user object in %v", body)
	}
	return user[field]
}
