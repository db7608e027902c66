package session

import (
	"errors"
	"time"

	"twitterconnect/pkg/claims"
)

const (
	// Header carries the bare signed token on requests and on the /connect response.
	Header = "X-Auth-Token"

	DefaultTTL = 120 * time.Minute
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrExpiredToken = errors.New("session token expired")
)

type Issuer interface {
	Issue(userID string) (string, error)
}

type Verifier interface {
	Parse(token string) (*claims.Claims, error)
}
