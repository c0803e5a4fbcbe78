package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuseats/internal/models"
)

func TestAuthToken_RoundTrip(t *testing.T) {
	at := NewAuthToken([]byte("test-signing-key"))

	token, err := at.CreateToken(&models.User{ID: 7, Login: "amina", Role: models.RoleDasher})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	payload, err := at.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), payload.UserID)
	assert.Equal(t, models.RoleDasher, payload.Role)
}

func TestAuthToken_RejectsGarbage(t *testing.T) {
	at := NewAuthToken([]byte("test-signing-key"))

	_, err := at.VerifyToken("not a token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthToken_RejectsForeignKey(t *testing.T) {
	issuer := NewAuthToken([]byte("key-one"))
	verifier := NewAuthToken([]byte("key-two"))

	token, err := issuer.CreateToken(&models.User{ID: 7, Role: models.RoleCustomer})
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
