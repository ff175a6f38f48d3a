package session

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"wahtabla/admin-gateway/internal/auth"
	"wahtabla/admin-gateway/internal/model"
	"wahtabla/admin-gateway/internal/upstream"
)

var resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "session_resolutions_total",
	Help: "Session resolution attempts by outcome.",
}, []string{"outcome"})

// Session is a resolved admin identity together with the token pair that
// proved it.
type Session struct {
	Admin  model.Admin
	Tokens model.AuthTokens
}

// Resolver turns stored cookies into a current identity, transparently
// healing an expired access token through the upstream refresh endpoint.
// It holds no state across calls; every request re-derives from cookies.
type Resolver struct {
	cookies  *CookieStore
	upstream *upstream.Client
	secret   string
}

func NewResolver(cookies *CookieStore, client *upstream.Client, secret string) *Resolver {
	return &Resolver{cookies: cookies, upstream: client, secret: secret}
}

// Resolve returns (nil, nil) when there is no session, (session, nil) when
// one resolves, and (nil, err) only for a malformed or tampered access
// token. That last case is a hard failure: refresh is not attempted and
// cookies are left alone so the caller can log it distinctly.
//
// An expired access token triggers one refresh round trip. The refreshed
// pair is committed to cookies in full before the identity refetch, so a
// failure between the two steps never leaves a mismatched half-pair. Any
// refresh-path failure tears the session down entirely.
func (rs *Resolver) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Session, error) {
	tokens := rs.cookies.Tokens(r)
	if tokens == nil {
		resolutions.WithLabelValues("none").Inc()
		return nil, nil
	}

	claims, err := auth.ParseToken(rs.secret, tokens.AccessToken)
	if err == nil {
		resolutions.WithLabelValues("ok").Inc()
		return &Session{Admin: adminFromClaims(claims), Tokens: *tokens}, nil
	}

	if errors.Is(err, auth.ErrTokenExpired) {
		fresh, refreshErr := rs.upstream.RefreshTokens(ctx, tokens.RefreshToken)
		if refreshErr != nil {
			rs.cookies.ClearTokens(w)
			resolutions.WithLabelValues("expired").Inc()
			return nil, nil
		}
		rs.cookies.SetTokens(w, fresh)

		admin, meErr := rs.upstream.CurrentAdmin(ctx, fresh.AccessToken)
		if meErr != nil {
			rs.cookies.ClearTokens(w)
			resolutions.WithLabelValues("expired").Inc()
			return nil, nil
		}
		resolutions.WithLabelValues("refreshed").Inc()
		return &Session{Admin: admin, Tokens: fresh}, nil
	}

	resolutions.WithLabelValues("invalid").Inc()
	return nil, err
}

// ResolveSafe is the non-healing variant for render paths that must not
// block on a refresh round trip. It uses only the access token already at
// hand and returns nil on any failure, deferring recovery to the full
// Resolve on the next data request.
func (rs *Resolver) ResolveSafe(ctx context.Context, r *http.Request) *Session {
	tokens := rs.cookies.Tokens(r)
	if tokens == nil {
		return nil
	}
	admin, err := rs.upstream.CurrentAdmin(ctx, tokens.AccessToken)
	if err != nil {
		return nil
	}
	return &Session{Admin: admin, Tokens: *tokens}
}

func adminFromClaims(claims *auth.Claims) model.Admin {
	role, ok := model.ParseRole(claims.Admin.Role)
	if !ok {
		role = model.RoleUser
	}
	return model.Admin{
		ID:    strconv.Itoa(claims.Admin.AdminID),
		Name:  claims.Admin.Name,
		Email: claims.Admin.Email,
		Role:  role,
	}
}
