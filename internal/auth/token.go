package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken marks credential verification failures so that the
// operation boundary can tell them apart from plain store failures.
var ErrInvalidToken = errors.New("invalid auth token")

type claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the signed bearer credentials.
type Tokens struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Issue signs a token carrying the account id.
func (t *Tokens) Issue(userID string) (string, error) {
	now := time.Now()
	c := claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.Secret)
}

// Parse verifies a credential and returns the account id it encodes. Every
// failure mode (malformed token, wrong algorithm, bad signature, expiry)
// comes back wrapped in ErrInvalidToken.
func (t *Tokens) Parse(raw string) (string, error) {
	tok, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg %v", token.Header["alg"])
		}
		return t.Secret, nil
	}, jwt.WithIssuer(t.Issuer))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	c, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid || c.UserID == "" {
		return "", ErrInvalidToken
	}
	return c.UserID, nil
}
