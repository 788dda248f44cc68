package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
)

// TokenClaims holds the parts of a Steam issued JWT the session relies on.
// Tokens are never verified locally, Steam does that on every request.
type TokenClaims struct {
	Subject   string
	ExpiresAt time.Time
}

func ParseTokenClaims(token string) (TokenClaims, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return TokenClaims{}, eris.Wrap(err, "token is not a valid JWT")
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		return TokenClaims{}, eris.Wrap(err, "token is missing subject claim")
	}

	claims := TokenClaims{Subject: subject}

	expiresAt, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return TokenClaims{}, eris.Wrap(err, "token has malformed expiration claim")
	}
	if expiresAt != nil {
		claims.ExpiresAt = expiresAt.Time
	}

	return claims, nil
}
