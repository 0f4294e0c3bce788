package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noteloft/noteloft-server/internal/model"
)

func TestVaultEntryPasswordStoredEncrypted(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st)
	groups := NewVaultGroupService(st)
	entries := NewVaultEntryService(st, groups.Checker(), newTestEncryptor(t), zerolog.Nop())

	alice := mustRegister(t, users, "alice@example.test")
	g, err := groups.Create(ctx, alice.UserID, "logins")
	require.NoError(t, err)

	e, err := entries.Create(ctx, alice.UserID, &model.VaultEntry{
		GroupID: g.GroupID, Title: "email", Username: "alice", Password: "hunter2",
	})
	require.NoError(t, err)
	require.Equal(t, "hunter2", e.Password)

	// The stored row never holds the plaintext.
	raw, err := st.VaultEntries().GetByID(ctx, e.EntryID)
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", raw.Password)
	require.NotEmpty(t, raw.Password)

	got, err := entries.Get(ctx, alice.UserID, e.EntryID)
	require.NoError(t, err)
	require.Equal(t, "hunter2", got.Password)
}

func TestVaultEntryDecryptFailureIsIsolated(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st)
	groups := NewVaultGroupService(st)
	entries := NewVaultEntryService(st, groups.Checker(), newTestEncryptor(t), zerolog.Nop())

	alice := mustRegister(t, users, "alice@example.test")
	g, err := groups.Create(ctx, alice.UserID, "logins")
	require.NoError(t, err)

	good, err := entries.Create(ctx, alice.UserID, &model.VaultEntry{
		GroupID: g.GroupID, Title: "good", Password: "hunter2",
	})
	require.NoError(t, err)

	// Plant a row whose ciphertext cannot decrypt.
	bad, err := st.VaultEntries().Create(ctx, &model.VaultEntry{
		GroupID: g.GroupID, Title: "bad", Password: "not-a-ciphertext",
	})
	require.NoError(t, err)

	lst, err := entries.List(ctx, alice.UserID, g.GroupID)
	require.NoError(t, err)
	require.Len(t, lst, 2)
	byID := map[string]*model.VaultEntry{}
	for _, e := range lst {
		byID[e.EntryID] = e
	}
	require.Equal(t, "hunter2", byID[good.EntryID].Password)
	require.Equal(t, "", byID[bad.EntryID].Password)
}

func TestVaultGroupSharingUsesOwnMembershipTable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st)
	groups := NewVaultGroupService(st)
	notebooks := NewNotebookService(st)
	entries := NewVaultEntryService(st, groups.Checker(), newTestEncryptor(t), zerolog.Nop())

	alice := mustRegister(t, users, "alice@example.test")
	bob := mustRegister(t, users, "bob@example.test")

	g, err := groups.Create(ctx, alice.UserID, "logins")
	require.NoError(t, err)
	e, err := entries.Create(ctx, alice.UserID, &model.VaultEntry{
		GroupID: g.GroupID, Title: "email", Password: "hunter2",
	})
	require.NoError(t, err)

	// Sharing a notebook with bob must not leak vault access.
	nb, err := notebooks.Create(ctx, alice.UserID, "journal")
	require.NoError(t, err)
	inv, err := notebooks.Invite(ctx, alice.UserID, nb.NotebookID, "bob@example.test", model.MemberFlags{CanEdit: true})
	require.NoError(t, err)
	require.NoError(t, notebooks.Respond(ctx, bob.UserID, inv.MemberID, true))
	_, err = entries.Get(ctx, bob.UserID, e.EntryID)
	require.ErrorIs(t, err, model.ErrUnauthorized)

	// A vault invitation does grant it.
	vinv, err := groups.Invite(ctx, alice.UserID, g.GroupID, "bob@example.test", model.MemberFlags{})
	require.NoError(t, err)
	require.NoError(t, groups.Respond(ctx, bob.UserID, vinv.MemberID, true))
	got, err := entries.Get(ctx, bob.UserID, e.EntryID)
	require.NoError(t, err)
	require.Equal(t, "hunter2", got.Password)
}
