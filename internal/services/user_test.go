package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noteloft/noteloft-server/internal/model"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t))

	u, err := users.Register(ctx, "Alice@Example.Test", "Alice", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, "alice@example.test", u.Email)
	require.NotEqual(t, "hunter2hunter2", u.PasswordHash)

	got, err := users.Login(ctx, "alice@example.test", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, u.UserID, got.UserID)
}

func TestLoginFailuresAreOpaque(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t))
	mustRegister(t, users, "alice@example.test")

	_, err := users.Login(ctx, "alice@example.test", "wrong password")
	require.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = users.Login(ctx, "nobody@example.test", "whatever")
	require.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t))

	_, err := users.Register(ctx, "not-an-email", "", "hunter2hunter2")
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = users.Register(ctx, "bob@example.test", "", "short")
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserService(newTestStore(t))
	mustRegister(t, users, "alice@example.test")

	_, err := users.Register(ctx, "alice@example.test", "", "hunter2hunter2")
	require.ErrorIs(t, err, model.ErrConflict)
}
