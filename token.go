package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// PeekClaims decodes a JWT's claims without verifying its signature. The
// store never validates tokens locally (validity is owned by the provider),
// but a silent-refresh caller needs to read exp before deciding to mint a
// replacement through UpdateAccessToken.
func PeekClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()

	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "unable to decode token claims")
	}

	return claims, nil
}

// TokenExpiresWithin reports whether the token's exp claim falls inside the
// given window from now. Tokens without a readable exp claim report true so
// a refresh caller errs on the side of refreshing.
func TokenExpiresWithin(token string, window time.Duration) bool {
	claims, err := PeekClaims(token)
	if err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}

	return time.Until(exp.Time) <= window
}
