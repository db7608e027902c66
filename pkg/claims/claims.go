package claims

import (
	"context"

	jwt "github.com/dgrijalva/jwt-go"
)

type contextKey string

const (
	TokenContextKey contextKey = "token"
)

// Claims is the payload of a session token. ID mirrors Subject and holds
// the Twitter account id.
type Claims struct {
	ID string `json:"id"`
	jwt.StandardClaims
}

func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(TokenContextKey).(*Claims)
	if !ok || c == nil || c.ID == "" {
		return nil, false
	}
	return c, true
}

func NewContext(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, TokenContextKey, c)
}
