// Package token issues and inspects the bearer tokens exchanged with the
// festival API.
package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	Issuer   = "aerophilia"
	Audience = "aerophilia-web"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the JWT claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// Issue creates a signed HS256 token for the user.
func Issue(userID, email, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Email:  email,
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Validate verifies signature, issuer, audience and expiry.
func Validate(tokenString, secret string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(Issuer), jwt.WithAudience(Audience))
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Info is what the client can learn about a token without the signing key.
type Info struct {
	IsJWT     bool
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry at or before now.
// Opaque tokens and JWTs without exp never expire client-side.
func (i Info) Expired(now time.Time) bool {
	return i.IsJWT && !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Inspect decodes a token without verifying it. Anything that is not a
// three-segment JWT is reported as opaque rather than as an error.
func Inspect(tokenString string) Info {
	if strings.Count(tokenString, ".") != 2 {
		return Info{}
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return Info{}
	}

	info := Info{IsJWT: true, Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}
