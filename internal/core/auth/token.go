package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/roombook/identity-system/internal/core/domain"
)

// TokenTTL is the fixed validity window of issued tokens. Callers cannot
// choose their own expiry; re-issuing via a fresh login is the only renewal.
const TokenTTL = 24 * time.Hour

// Claims is the decoded payload of a session token.
type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID returns the identity id the token was issued for.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// IsAdmin reports whether the token was issued for an administrator.
func (c *Claims) IsAdmin() bool {
	return c.Role.IsAdmin()
}

// TokenService issues and validates signed, self-contained session tokens.
// The signing secret is injected once at construction and never read from a
// package-level constant, so tests can use distinct keys per run.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService builds a TokenService with the given signing secret.
// An empty secret is a configuration error; callers treat it as fatal.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("token service: signing secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), ttl: TokenTTL, now: time.Now}, nil
}

// Issue signs a token for the identity with iat = now and exp = now + TTL.
func (s *TokenService) Issue(subjectID, email string, role domain.Role) (string, error) {
	now := s.now().UTC()
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate verifies the signature and expiry of a token. Every failure mode
// is reported uniformly as domain.ErrInvalidToken so callers cannot tell a
// tampered token from an expired one.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
