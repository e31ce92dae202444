package identity

import (
	"context"
	"testing"
	"time"

	"github.com/example/eshop-backend/domain/apperr"
	"github.com/example/eshop-backend/internal/monotest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIdentityAdapter_OverRequestReply(t *testing.T) {
	db := setupTestDB(t)
	module := NewModule(db, Config{
		JWT:        JWTConfig{SecretKey: "test-secret", TokenDuration: 24 * time.Hour, Issuer: "test"},
		BcryptCost: bcrypt.MinCost,
	})
	adapter := NewIdentityAdapter(monotest.Start(t, "identity", module))
	ctx := context.Background()

	user, err := adapter.Register(ctx, newUserRequest("asha@example.com"))
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)

	login, err := adapter.Login(ctx, "asha@example.com", "password123")
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.False(t, claims.IsAdmin)

	empty := ""
	city := "Mumbai"
	updated, err := adapter.UpdateUser(ctx, UpdateUserRequest{UserID: user.ID, Password: &empty, City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.City)

	_, err = adapter.Login(ctx, "asha@example.com", "password123")
	assert.NoError(t, err, "an empty password keeps the stored one")

	count, err := adapter.CountUsers(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	t.Run("errors keep their kind", func(t *testing.T) {
		_, err := adapter.Login(ctx, "asha@example.com", "wrongpassword")
		assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

		_, err = adapter.GetUser(ctx, uuid.NewString())
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = adapter.Register(ctx, newUserRequest("asha@example.com"))
		assert.ErrorIs(t, err, apperr.ErrConflict)

		_, err = adapter.ValidateToken(ctx, "garbage")
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})
}
