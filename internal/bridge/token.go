package bridge

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperationPull is the only operation the download client requests.
const OperationPull = "PULL"

// Token is a short-lived credential scoped to one container and operation.
type Token struct {
	Value       string
	ContainerID string
	Operation   string
	Expires     time.Time
}

// Expired reports whether the token is past its expiry at now.
// Tokens without a known expiry never expire client-side.
func (t Token) Expired(now time.Time) bool {
	return !t.Expires.IsZero() && !now.Before(t.Expires)
}

type wireToken struct {
	Token     string `json:"token"`
	Bucket    string `json:"bucket"`
	Operation string `json:"operation"`
	Expires   string `json:"expires"`
}

func (w wireToken) toToken(containerID string) (Token, error) {
	if w.Token == "" {
		return Token{}, ErrMalformedReply
	}
	t := Token{
		Value:       w.Token,
		ContainerID: w.Bucket,
		Operation:   w.Operation,
	}
	if t.ContainerID == "" {
		t.ContainerID = containerID
	}
	if w.Expires != "" {
		exp, err := time.Parse(time.RFC3339, w.Expires)
		if err != nil {
			return Token{}, ErrMalformedReply
		}
		t.Expires = exp
	} else {
		t.Expires = jwtExpiry(w.Token)
	}
	return t, nil
}

// jwtExpiry reads the exp claim of a JWT-shaped token without verifying it.
// The bridge verifies; the client only needs to know when to give up.
func jwtExpiry(value string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(value, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
