package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"campuseats/internal/dining"
	"campuseats/internal/models"
)

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID uint64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	if _, ok := f.users[user.Login]; ok {
		return nil, models.ErrConflictData
	}
	f.nextID++
	user.ID = f.nextID
	f.users[user.Login] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	user, ok := f.users[login]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id uint64) (*models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, models.ErrDataNotFound
}

type fakeTokenService struct{}

func (fakeTokenService) CreateToken(user *models.User) (string, error) {
	return "token-" + user.Login, nil
}

func (fakeTokenService) VerifyToken(string) (*models.TokenPayload, error) {
	return nil, errors.New("not implemented")
}

type fakeDining struct {
	account *dining.Account
	err     error
}

func (f *fakeDining) GetAccount(context.Context, string) (*dining.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.account, nil
}

func TestUserService_Register(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, fakeTokenService{}, nil)
	ctx := context.Background()

	user, err := svc.Register(ctx, "amina", "hunter22", models.RoleCustomer)
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("hunter22")))

	_, err = svc.Register(ctx, "amina", "other", models.RoleCustomer)
	assert.ErrorIs(t, err, models.ErrConflictData)

	_, err = svc.Register(ctx, "", "hunter22", models.RoleCustomer)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Register(ctx, "bob", "", models.RoleDasher)
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Register(ctx, "bob", "hunter22", "admin")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestUserService_Login(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, fakeTokenService{}, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "amina", "hunter22", models.RoleCustomer)
	require.NoError(t, err)

	token, err := svc.Login(ctx, "amina", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "token-amina", token)

	_, err = svc.Login(ctx, "amina", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "hunter22")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestUserService_PaymentProfile(t *testing.T) {
	ctx := context.Background()

	newRepo := func(t *testing.T) *fakeUserRepo {
		t.Helper()
		repo := newFakeUserRepo()
		_, err := repo.CreateUser(ctx, &models.User{
			Login:            "amina",
			Role:             models.RoleCustomer,
			FlexBalanceCents: 1500,
			SwipesRemaining:  4,
		})
		require.NoError(t, err)
		return repo
	}

	t.Run("dining_is_authoritative", func(t *testing.T) {
		client := &fakeDining{account: &dining.Account{Login: "amina", FlexCents: 4250, SwipesRemaining: 7}}
		svc := NewUserService(newRepo(t), fakeTokenService{}, client)

		flex, swipes, err := svc.PaymentProfile(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(4250), flex)
		assert.Equal(t, 7, swipes)
	})

	t.Run("stored_balances_when_dining_unreachable", func(t *testing.T) {
		client := &fakeDining{err: models.ErrInternalError}
		svc := NewUserService(newRepo(t), fakeTokenService{}, client)

		flex, swipes, err := svc.PaymentProfile(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), flex)
		assert.Equal(t, 4, swipes)
	})

	t.Run("stored_balances_without_dining_client", func(t *testing.T) {
		svc := NewUserService(newRepo(t), fakeTokenService{}, nil)

		flex, swipes, err := svc.PaymentProfile(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), flex)
		assert.Equal(t, 4, swipes)
	})

	t.Run("unknown_user", func(t *testing.T) {
		svc := NewUserService(newFakeUserRepo(), fakeTokenService{}, nil)

		_, _, err := svc.PaymentProfile(ctx, 42)
		assert.ErrorIs(t, err, models.ErrDataNotFound)
	})
}
