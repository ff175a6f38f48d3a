package session

import (
	"net/http"
	"time"

	"wahtabla/admin-gateway/internal/model"
)

const (
	accessCookie  = "access_token"
	refreshCookie = "refresh_token"
)

// CookieStore keeps the bearer token pair in paired httpOnly cookies.
// The pair is all-or-nothing: one cookie without the other is treated as
// no session at all.
type CookieStore struct {
	secure     bool
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewCookieStore(secure bool, accessTTL, refreshTTL time.Duration) *CookieStore {
	return &CookieStore{secure: secure, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

func (s *CookieStore) SetTokens(w http.ResponseWriter, tokens model.AuthTokens) {
	http.SetCookie(w, s.cookie(accessCookie, tokens.AccessToken, int(s.accessTTL.Seconds())))
	http.SetCookie(w, s.cookie(refreshCookie, tokens.RefreshToken, int(s.refreshTTL.Seconds())))
}

// Tokens returns the stored pair, or nil unless both cookies are present
// and non-empty.
func (s *CookieStore) Tokens(r *http.Request) *model.AuthTokens {
	access, err := r.Cookie(accessCookie)
	if err != nil || access.Value == "" {
		return nil
	}
	refresh, err := r.Cookie(refreshCookie)
	if err != nil || refresh.Value == "" {
		return nil
	}
	return &model.AuthTokens{AccessToken: access.Value, RefreshToken: refresh.Value}
}

// ClearTokens removes both cookies. Idempotent.
func (s *CookieStore) ClearTokens(w http.ResponseWriter) {
	http.SetCookie(w, s.cookie(accessCookie, "", -1))
	http.SetCookie(w, s.cookie(refreshCookie, "", -1))
}

func (s *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
