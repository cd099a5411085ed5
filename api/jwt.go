package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/divanco-studio/backend/config"
	"github.com/divanco-studio/backend/errs"
	"github.com/divanco-studio/backend/models"
)

type authClaims struct {
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// tokenIssuer signs and verifies the access tokens used by the admin API.
type tokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

func newTokenIssuer(cfg map[string]string) (tokenIssuer, error) {
	secret := config.GetString(cfg, "JWT_SECRET", "")
	if secret == "" {
		return tokenIssuer{}, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	ttl := time.Duration(config.GetInt(cfg, "JWT_TTL_HOURS", 24)) * time.Hour

	return tokenIssuer{secret: []byte(secret), ttl: ttl}, nil
}

// Issue creates a signed token for the user.
func (t tokenIssuer) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := authClaims{
		Role:  user.Role,
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify parses a token string and returns the user ID and role it carries.
func (t tokenIssuer) Verify(tokenString string) (uuid.UUID, string, error) {
	var claims authClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", errs.NewExpiredTokenError()
		}
		return uuid.Nil, "", errs.NewInvalidTokenError()
	}
	if !token.Valid {
		return uuid.Nil, "", errs.NewInvalidTokenError()
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", errs.NewInvalidTokenError()
	}

	return userID, claims.Role, nil
}
