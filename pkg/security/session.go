package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("authorization token invalid")
	ErrRevokedToken = errors.New("authorization token revoked")
)

var signingMethods = map[string]*jwt.SigningMethodHMAC{
	"HS256": jwt.SigningMethodHS256,
	"HS384": jwt.SigningMethodHS384,
	"HS512": jwt.SigningMethodHS512,
}

// Claims identify the user by email in the subject claim
type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) Email() string {
	return c.Subject
}

// Sessions issues and resolves signed, expiring bearer tokens
type Sessions struct {
	secret  []byte
	method  *jwt.SigningMethodHMAC
	ttl     time.Duration
	revoker Revoker
	now     func() time.Time
}

func NewSessions(secret, algorithm string, ttl time.Duration, revoker Revoker) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("no signing secret provided")
	}

	method, ok := signingMethods[algorithm]
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}

	if ttl <= 0 {
		return nil, errors.New("token lifetime must be positive")
	}

	if revoker == nil {
		revoker = NewMemoryRevoker()
	}

	return &Sessions{
		secret:  []byte(secret),
		method:  method,
		ttl:     ttl,
		revoker: revoker,
		now:     time.Now,
	}, nil
}

// TTL is the lifetime of tokens made by Issue
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue signs a new token for email
func (s *Sessions) Issue(email string) (string, error) {
	now := s.now()

	t := jwt.NewWithClaims(s.method, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	return t.SignedString(s.secret)
}

// Resolve validates the token and returns its claims. Missing, malformed,
// expired, foreign and revoked tokens all fail with ErrInvalidToken or
// ErrRevokedToken.
func (s *Sessions) Resolve(ctx context.Context, tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation, %w", err)
	}

	if revoked {
		return nil, ErrRevokedToken
	}

	return claims, nil
}

// Revoke invalidates the token described by claims until it expires
func (s *Sessions) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return ErrInvalidToken
	}

	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(s.now()))
}
