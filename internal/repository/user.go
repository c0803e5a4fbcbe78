package repository

import (
	"context"

	"campuseats/internal/models"
	"campuseats/internal/repository/postgres"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertUserQuery = `
						INSERT INTO users (login, password_hash, role)
						VALUES ($1, $2, $3)
						RETURNING id, login, password_hash, role, flex_balance_cents, swipes_remaining, created_at
`
	selectUserByLoginQuery = `
						SELECT id, login, password_hash, role, flex_balance_cents, swipes_remaining, created_at FROM users
						WHERE login = $1
`
	selectUserByIDQuery = `
						SELECT id, login, password_hash, role, flex_balance_cents, swipes_remaining, created_at FROM users
						WHERE id = $1
`
)

// UserRepository persists customer and dasher accounts.
type UserRepository struct {
	db *postgres.DB
}

// NewUserRepository creates new UserRepository instance
func NewUserRepository(db *postgres.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	user := models.User{}
	err := row.Scan(&user.ID, &user.Login, &user.PasswordHash, &user.Role,
		&user.FlexBalanceCents, &user.SwipesRemaining, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new account.
func (ur *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	created, err := scanUser(ur.db.QueryRow(ctx, insertUserQuery, user.Login, user.PasswordHash, user.Role))
	if err != nil {
		if errCode := ur.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}
	return created, nil
}

// GetUserByLogin returns an account by login.
func (ur *UserRepository) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	user, err := scanUser(ur.db.QueryRow(ctx, selectUserByLoginQuery, login))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByID returns an account by id.
func (ur *UserRepository) GetUserByID(ctx context.Context, id uint64) (*models.User, error) {
	user, err := scanUser(ur.db.QueryRow(ctx, selectUserByIDQuery, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}
	return user, nil
}
