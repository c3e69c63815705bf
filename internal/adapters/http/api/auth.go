package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role allowed on the monitor socket.
const RoleAdmin = "admin"

// Claims are the admin token claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and validates HS256 admin tokens.
type Tokens struct {
	secret []byte
	now    func() time.Time
}

// NewTokens creates a token service signing with secret.
func NewTokens(secret string) (*Tokens, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Tokens{secret: []byte(secret), now: time.Now}, nil
}

// Issue mints an admin token for subject valid for ttl.
func (t *Tokens) Issue(subject string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, expiry and role. Failures wrap ErrUnauthorized.
func (t *Tokens) Validate(token string) (*Claims, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", ErrUnauthorized)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if !parsed.Valid || claims.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: not an admin token", ErrUnauthorized)
	}
	return claims, nil
}
