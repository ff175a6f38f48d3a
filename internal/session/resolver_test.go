package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wahtabla/admin-gateway/internal/auth"
	"wahtabla/admin-gateway/internal/model"
	"wahtabla/admin-gateway/internal/upstream"
)

const testSecret = "resolver-test-secret"

type fakeBackend struct {
	refreshCalls int
	refreshFail  bool
	meCalls      int
	meFail       bool
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		b.refreshCalls++
		w.Header().Set("Content-Type", "application/json")
		if b.refreshFail {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "invalid refresh token"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]string{
				"adminAccessToken":  "new-access",
				"adminRefreshToken": "new-refresh",
			},
		})
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.meCalls++
		w.Header().Set("Content-Type", "application/json")
		if b.meFail {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "invalid token"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": model.Admin{
				ID:    "7",
				Name:  "Asha Rao",
				Email: "asha@example.com",
				Role:  model.RoleAdmin,
			},
		})
	})
	return mux
}

func newTestResolver(t *testing.T, backend *fakeBackend) (*Resolver, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(backend.handler())
	t.Cleanup(server.Close)
	client := upstream.NewClient(server.URL, 5*time.Second, upstream.RetryPolicy{MaxAttempts: 1})
	return NewResolver(testStore(), client, testSecret), server
}

func signToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, err := auth.NewAccessToken(testSecret, ttl, auth.AdminClaim{
		AdminID:  7,
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Role:     "admin",
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("sign error: %v", err)
	}
	return token
}

func requestWithCookies(access, refresh string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/admins", nil)
	if access != "" {
		req.AddCookie(&http.Cookie{Name: "access_token", Value: access})
	}
	if refresh != "" {
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refresh})
	}
	return req
}

func TestResolveValidToken(t *testing.T) {
	backend := &fakeBackend{}
	resolver, _ := newTestResolver(t, backend)

	access := signToken(t, 10*time.Minute)
	req := requestWithCookies(access, "r1")
	rec := httptest.NewRecorder()

	sess, err := resolver.Resolve(req.Context(), rec, req)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if sess == nil {
		t.Fatal("expected a session")
	}
	if sess.Admin.Role != model.RoleAdmin || sess.Admin.Email != "asha@example.com" {
		t.Fatalf("wrong identity: %+v", sess.Admin)
	}
	if sess.Tokens.AccessToken != access || sess.Tokens.RefreshToken != "r1" {
		t.Fatalf("tokens must be unchanged, got %+v", sess.Tokens)
	}
	if backend.refreshCalls != 0 || backend.meCalls != 0 {
		t.Fatalf("expected no network calls, got refresh=%d me=%d", backend.refreshCalls, backend.meCalls)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("expected no cookie writes on a clean resolve")
	}
}

func TestResolveMissingOrPartialTokens(t *testing.T) {
	backend := &fakeBackend{}
	resolver, _ := newTestResolver(t, backend)

	for _, req := range []*http.Request{
		requestWithCookies("", ""),
		requestWithCookies(signToken(t, 10*time.Minute), ""),
		requestWithCookies("", "r1"),
	} {
		rec := httptest.NewRecorder()
		sess, err := resolver.Resolve(req.Context(), rec, req)
		if err != nil || sess != nil {
			t.Fatalf("expected (nil, nil) for partial pair, got (%+v, %v)", sess, err)
		}
	}
	if backend.refreshCalls != 0 || backend.meCalls != 0 {
		t.Fatal("partial pairs must never reach the network")
	}
}

func TestResolveExpiredTokenRefreshes(t *testing.T) {
	backend := &fakeBackend{}
	resolver, _ := newTestResolver(t, backend)

	req := requestWithCookies(signToken(t, -time.Minute), "r1")
	rec := httptest.NewRecorder()

	sess, err := resolver.Resolve(req.Context(), rec, req)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	if sess == nil {
		t.Fatal("expected a refreshed session")
	}
	if backend.refreshCalls != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", backend.refreshCalls)
	}
	if sess.Tokens.AccessToken != "new-access" || sess.Tokens.RefreshToken != "new-refresh" {
		t.Fatalf("expected the new pair, got %+v", sess.Tokens)
	}
	if sess.Admin.Email != "asha@example.com" {
		t.Fatalf("wrong refreshed identity: %+v", sess.Admin)
	}

	// Both cookies rewritten, never a mix of old and new.
	wrote := map[string]string{}
	for _, c := range rec.Result().Cookies() {
		wrote[c.Name] = c.Value
	}
	if wrote["access_token"] != "new-access" || wrote["refresh_token"] != "new-refresh" {
		t.Fatalf("expected both cookies replaced, got %v", wrote)
	}
}

func TestResolveFailedRefreshClearsSession(t *testing.T) {
	backend := &fakeBackend{refreshFail: true}
	resolver, _ := newTestResolver(t, backend)

	req := requestWithCookies(signToken(t, -time.Minute), "dead-refresh")
	rec := httptest.NewRecorder()

	sess, err := resolver.Resolve(req.Context(), rec, req)
	if err != nil || sess != nil {
		t.Fatalf("expected (nil, nil) after failed refresh, got (%+v, %v)", sess, err)
	}
	if backend.refreshCalls != 1 {
		t.Fatalf("expected one refresh attempt, got %d", backend.refreshCalls)
	}

	for _, c := range rec.Result().Cookies() {
		if c.Value != "" || c.MaxAge >= 0 {
			t.Fatalf("expected cleared cookie, got %+v", c)
		}
	}
}

func TestResolveIdentityFetchFailureClearsSession(t *testing.T) {
	backend := &fakeBackend{meFail: true}
	resolver, _ := newTestResolver(t, backend)

	req := requestWithCookies(signToken(t, -time.Minute), "r1")
	rec := httptest.NewRecorder()

	sess, err := resolver.Resolve(req.Context(), rec, req)
	if err != nil || sess != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", sess, err)
	}

	// The last writes must be the clearing pair.
	cleared := 0
	for _, c := range rec.Result().Cookies() {
		if c.Value == "" && c.MaxAge < 0 {
			cleared++
		}
	}
	if cleared < 2 {
		t.Fatalf("expected both cookies cleared, got %d", cleared)
	}
}

func TestResolveTamperedTokenIsHardFailure(t *testing.T) {
	backend := &fakeBackend{}
	resolver, _ := newTestResolver(t, backend)

	req := requestWithCookies("tampered.token.value", "r1")
	rec := httptest.NewRecorder()

	sess, err := resolver.Resolve(req.Context(), rec, req)
	if sess != nil {
		t.Fatalf("expected no session, got %+v", sess)
	}
	if !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if backend.refreshCalls != 0 {
		t.Fatal("a malformed token must not trigger a refresh")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatal("a malformed token must not clear cookies")
	}
}

func TestResolveSafeNeverRefreshes(t *testing.T) {
	backend := &fakeBackend{}
	resolver, _ := newTestResolver(t, backend)

	req := requestWithCookies("whatever-access", "r1")
	sess := resolver.ResolveSafe(req.Context(), req)
	if sess == nil {
		t.Fatal("expected a session from the identity endpoint")
	}
	if backend.refreshCalls != 0 {
		t.Fatal("safe resolve must never refresh")
	}
	if backend.meCalls != 1 {
		t.Fatalf("expected one identity call, got %d", backend.meCalls)
	}
}

func TestResolveSafeFailureReturnsNil(t *testing.T) {
	backend := &fakeBackend{meFail: true}
	resolver, _ := newTestResolver(t, backend)

	req := requestWithCookies("whatever-access", "r1")
	if sess := resolver.ResolveSafe(req.Context(), req); sess != nil {
		t.Fatalf("expected nil on identity failure, got %+v", sess)
	}

	if sess := resolver.ResolveSafe(req.Context(), requestWithCookies("", "")); sess != nil {
		t.Fatalf("expected nil with no cookies, got %+v", sess)
	}
}
