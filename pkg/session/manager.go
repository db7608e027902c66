package session

import (
	"fmt"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"

	"twitterconnect/pkg/claims"
)

// Manager issues and verifies stateless HS256 session tokens. Nothing is
// stored: a token stays usable until it expires.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of m that reads the current time from now.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	cp := *m
	cp.now = now
	return &cp
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("issue token: empty user id")
	}

	issuedAt := m.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims.Claims{
		ID: userID,
		StandardClaims: jwt.StandardClaims{
			Subject:   userID,
			Id:        uuid.NewString(),
			IssuedAt:  issuedAt.Unix(),
			ExpiresAt: issuedAt.Add(m.ttl).Unix(),
		},
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) Parse(token string) (*claims.Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	parser := &jwt.Parser{
		ValidMethods: []string{jwt.SigningMethodHS256.Alg()},
		// time based checks run below against m.now
		SkipClaimsValidation: true,
	}

	c := &claims.Claims{}
	parsed, err := parser.ParseWithClaims(token, c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	now := m.now().Unix()
	if !c.VerifyExpiresAt(now, true) {
		return nil, ErrExpiredToken
	}
	if !c.VerifyIssuedAt(now, false) || c.ID == "" || c.Subject != c.ID {
		return nil, ErrInvalidToken
	}

	return c, nil
}
