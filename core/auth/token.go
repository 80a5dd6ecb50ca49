package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoCredentials is returned when neither a token nor a signing secret is
// configured.
var ErrNoCredentials = errors.New("no auth token or jwt secret configured")

// renewBefore is how long before expiry a cached token is replaced.
const renewBefore = time.Minute

// TokenSource hands out bearer tokens.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// New returns the token source matching the configuration. Without any
// credentials the returned source fails every call with ErrNoCredentials,
// which keeps read-only usage working.
func New(cfg Config) TokenSource {
	if cfg.Token != "" {
		return StaticToken(cfg.Token)
	}
	if cfg.JWTSecret == "" {
		return anonymous{}
	}

	ttl := time.Duration(cfg.JWTTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	return &Signer{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Subject:  cfg.JWTSubject,
		Duration: ttl,
	}
}

// StaticToken always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token(context.Context) (string, error) {
	return string(s), nil
}

type anonymous struct{}

func (anonymous) Token(context.Context) (string, error) {
	return "", ErrNoCredentials
}

// Claims are the claims of a locally signed token.
type Claims struct {
	jwt.RegisteredClaims
}

// Signer issues HS256 tokens and caches the last one until it is about to
// expire.
type Signer struct {
	Secret   []byte
	Issuer   string
	Subject  string
	Duration time.Duration
	// Now overrides the clock, mainly for tests.
	Now func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
}

// Token implements TokenSource.
func (s *Signer) Token(context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Add(renewBefore).Before(s.expires) {
		return s.token, nil
	}

	token, exp, err := s.Sign(now)
	if err != nil {
		return "", err
	}
	s.token = token
	s.expires = exp
	return token, nil
}

// Sign creates a new token issued at now.
func (s *Signer) Sign(now time.Time) (string, time.Time, error) {
	exp := now.Add(s.Duration)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   s.Subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// parse validates a token produced by Sign.
func (s *Signer) parse(tokenString string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.Secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *Signer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
