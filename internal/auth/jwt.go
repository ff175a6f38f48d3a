package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenExpired means the token was well-formed and correctly signed
	// but its expiry is not in the future. Callers may attempt a refresh.
	ErrTokenExpired = errors.New("token expired")
	// ErrInvalidToken means the token is malformed, tampered with, or is
	// missing the admin claim. Refresh is not a remedy for this.
	ErrInvalidToken = errors.New("invalid token")
)

// AdminClaim is the admin identity embedded in the access token by the
// upstream API at issuance.
type AdminClaim struct {
	AdminID  int    `json:"adminId"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

type Claims struct {
	Admin *AdminClaim `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// NewAccessToken signs an access token carrying the admin claim. The
// gateway only verifies tokens in production; issuance exists for tests
// and local tooling.
func NewAccessToken(secret string, ttl time.Duration, admin AdminClaim) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		Admin: &admin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies signature and structure locally, without a network
// round trip. Expiry is re-checked explicitly on top of what the parser
// already enforces.
func ParseToken(secret, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		// A tampered token must never be reported as merely expired.
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenMalformed) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return nil, ErrInvalidToken
		}
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Admin == nil || claims.Admin.Email == "" {
		return nil, ErrInvalidToken
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(time.Now()) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}
