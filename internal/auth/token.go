package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"campuseats/internal/models"
)

const tokenLifetime = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

type claims struct {
	jwt.RegisteredClaims
	UserID uint64 `json:"uid"`
	Role   string `json:"role"`
}

// AuthToken issues and verifies HMAC-signed auth tokens.
type AuthToken struct {
	key []byte
}

// NewAuthToken creates an AuthToken with the given signing key.
func NewAuthToken(key []byte) *AuthToken {
	return &AuthToken{key: key}
}

// CreateToken issues a token for the user.
func (at *AuthToken) CreateToken(user *models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
		UserID: user.ID,
		Role:   user.Role,
	})

	return token.SignedString(at.key)
}

// VerifyToken parses and validates a token string.
func (at *AuthToken) VerifyToken(tokenString string) (*models.TokenPayload, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return at.key, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &models.TokenPayload{UserID: c.UserID, Role: c.Role}, nil
}
