package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Clark-Hu/notflix/internal/domain"
)

const minSecretLen = 32

var (
	ErrMissingToken = errors.New("no token provided")
	ErrShortSecret  = fmt.Errorf("token secret must be at least %d bytes", minSecretLen)
)

// Claims is the signed token payload: the user snapshot plus the registered
// JWT claims.
type Claims struct {
	domain.AuthClaim
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. ttl is the lifetime of every issued
// token.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < minSecretLen {
		return nil, ErrShortSecret
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// TTL reports the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs a token for claim, expiring ttl from now.
func (s *TokenService) Issue(claim domain.AuthClaim) (string, error) {
	now := s.now()
	claims := Claims{
		AuthClaim: claim,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   claim.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// embedded identity.
func (s *TokenService) Verify(tokenString string) (domain.AuthClaim, error) {
	if tokenString == "" {
		return domain.AuthClaim{}, ErrMissingToken
	}
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return domain.AuthClaim{}, err
	}
	if !token.Valid {
		return domain.AuthClaim{}, errors.New("invalid token")
	}
	if claims.Username == "" {
		return domain.AuthClaim{}, errors.New("token carries no username")
	}
	return claims.AuthClaim, nil
}
