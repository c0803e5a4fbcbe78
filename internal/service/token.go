package service

import "campuseats/internal/models"

// TokenService issues and verifies auth tokens.
type TokenService interface {
	CreateToken(user *models.User) (string, error)
	VerifyToken(tokenString string) (*models.TokenPayload, error)
}
