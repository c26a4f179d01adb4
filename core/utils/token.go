package utils

import (
	stderrors "errors"
	"fmt"
	"time"

	"classtime/core/config"
	"classtime/core/constants"
	"classtime/core/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenClaims struct {
	StudentID int64  `json:"student_id"`
	Email     string `json:"email,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	Scope     string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenSubject is the identity a token is issued for.
type TokenSubject struct {
	StudentID int64
	Email     string
	Nickname  string
}

func jwtConfig() (config.JWTConfig, error) {
	cfg, ok := config.GetSafe()
	if !ok || cfg.JWT.Secret == "" {
		return config.JWTConfig{}, stderrors.New("jwt: secret not configured")
	}
	return cfg.JWT, nil
}

func tokenTTL(cfg config.JWTConfig, scope string) time.Duration {
	if scope == constants.ScopeTokenRefresh {
		return cfg.RefreshTTL
	}
	return cfg.AccessTTL
}

func GenerateToken(subject TokenSubject, scope string) (string, error) {
	cfg, err := jwtConfig()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := TokenClaims{
		StudentID: subject.StudentID,
		Email:     subject.Email,
		Nickname:  subject.Nickname,
		Scope:     scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    cfg.Issuer,
			Subject:   fmt.Sprintf("%d", subject.StudentID),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL(cfg, scope))),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// ValidateAndParseToken verifies signature, issuer and expiry. Failures are
// returned as *errors.AppError.
func ValidateAndParseToken(token string) (*TokenClaims, error) {
	cfg, err := jwtConfig()
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "token validation unavailable", err)
	}

	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(cfg.Issuer))
	if err != nil {
		if stderrors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.NewAppError(errors.ErrTokenExpired, "token has expired", err)
		}
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid token", err)
	}
	if !parsed.Valid || claims.StudentID <= 0 {
		return nil, errors.NewAppError(errors.ErrInvalidTokenFormat, "invalid token", nil)
	}
	return claims, nil
}

// RemainingTTL is how long the token stays valid; zero when already expired.
func (c *TokenClaims) RemainingTTL(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(c.ExpiresAt.Sub(now), 0)
}
