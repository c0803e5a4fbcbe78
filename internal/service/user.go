package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"campuseats/internal/dining"
	"campuseats/internal/logger"
	"campuseats/internal/models"
)

// UserRepository is interface for interacting with account data
type UserRepository interface {
	// CreateUser inserts a new account
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByLogin returns an account by login
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	// GetUserByID returns an account by id
	GetUserByID(ctx context.Context, id uint64) (*models.User, error)
}

// DiningClient reads meal-plan accounts from dining services.
type DiningClient interface {
	GetAccount(ctx context.Context, login string) (*dining.Account, error)
}

// UserService handles registration, login and meal-plan lookups.
type UserService struct {
	repo   UserRepository
	token  TokenService
	dining DiningClient
}

// NewUserService creates new UserService instance
func NewUserService(repo UserRepository, token TokenService, diningClient DiningClient) *UserService {
	return &UserService{
		repo:   repo,
		token:  token,
		dining: diningClient,
	}
}

// Register creates an account with the given role.
func (us *UserService) Register(ctx context.Context, login, password, role string) (*models.User, error) {
	if role != models.RoleCustomer && role != models.RoleDasher {
		return nil, models.ErrInvalidCredentials
	}
	if login == "" || password == "" {
		return nil, models.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return us.repo.CreateUser(ctx, &models.User{
		Login:        login,
		PasswordHash: string(hash),
		Role:         role,
	})
}

// Login verifies credentials and returns a signed auth token.
func (us *UserService) Login(ctx context.Context, login, password string) (string, error) {
	user, err := us.repo.GetUserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return "", models.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	return us.token.CreateToken(user)
}

// PaymentProfile returns the customer's meal-plan standing. Dining
// services is authoritative; when it is unreachable the stored
// balances are used instead.
func (us *UserService) PaymentProfile(ctx context.Context, userID uint64) (flexCents int64, swipes int, err error) {
	user, err := us.repo.GetUserByID(ctx, userID)
	if err != nil {
		return 0, 0, err
	}

	if us.dining != nil {
		if acc, err := us.dining.GetAccount(ctx, user.Login); err == nil {
			return acc.FlexCents, acc.SwipesRemaining, nil
		} else {
			logger.Log.Debug("dining lookup failed, using stored balances",
				zap.String("login", user.Login), zap.Error(err))
		}
	}

	return user.FlexBalanceCents, user.SwipesRemaining, nil
}
