package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/secrets"
	"github.com/noteloft/noteloft-server/internal/store"
	"github.com/noteloft/noteloft-server/internal/store/sqlite"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, sqlite.Migrate(db))
	return sqlite.New(db)
}

func newTestEncryptor(t *testing.T) *secrets.Encryptor {
	t.Helper()
	key, err := secrets.GenerateKey()
	require.NoError(t, err)
	enc, err := secrets.New(key)
	require.NoError(t, err)
	return enc
}

func mustRegister(t *testing.T, users *UserService, email string) *model.User {
	t.Helper()
	u, err := users.Register(context.Background(), email, "", "correct horse battery")
	require.NoError(t, err)
	return u
}
