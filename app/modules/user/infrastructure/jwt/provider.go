package userjwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "photoshare"

// Claims identifies the session holder.
type Claims struct {
	GithubLogin string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// Provider issues and validates session tokens.
type Provider interface {
	// GenerateToken creates a signed token for githubLogin. A ttl of zero uses
	// the provider default.
	GenerateToken(githubLogin string, ttl time.Duration) (string, error)

	// ValidateToken validates a token and returns its claims.
	ValidateToken(tokenString string) (*Claims, error)
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

type provider struct {
	secret     []byte
	defaultTTL time.Duration
	now        func() time.Time
}

// NewProvider creates a new HS256 token provider.
func NewProvider(secret string, defaultTTL time.Duration) Provider {
	return &provider{
		secret:     []byte(secret),
		defaultTTL: defaultTTL,
		now:        time.Now,
	}
}

func (p *provider) GenerateToken(githubLogin string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = p.defaultTTL
	}
	now := p.now()
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    issuer,
			Subject:   githubLogin,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

func (p *provider) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSignature
		}
		return p.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(p.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, ErrInvalidSignature
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	out := &Claims{GithubLogin: claims.Subject}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	return out, nil
}
