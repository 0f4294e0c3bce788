package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noteloft/noteloft-server/internal/model"
)

func TestNotebookVisibility(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st)
	notebooks := NewNotebookService(st)

	alice := mustRegister(t, users, "alice@example.test")
	bob := mustRegister(t, users, "bob@example.test")

	nb, err := notebooks.Create(ctx, alice.UserID, "journal")
	require.NoError(t, err)

	// Owner sees it; an outsider gets the same deny as for a missing id.
	_, err = notebooks.Get(ctx, alice.UserID, nb.NotebookID)
	require.NoError(t, err)
	_, err = notebooks.Get(ctx, bob.UserID, nb.NotebookID)
	require.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = notebooks.Get(ctx, bob.UserID, "no-such-notebook")
	require.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestNotebookSharingFlow(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st)
	notebooks := NewNotebookService(st)

	alice := mustRegister(t, users, "alice@example.test")
	bob := mustRegister(t, users, "bob@example.test")

	nb, err := notebooks.Create(ctx, alice.UserID, "journal")
	require.NoError(t, err)

	inv, err := notebooks.Invite(ctx, alice.UserID, nb.NotebookID, "bob@example.test", model.MemberFlags{CanEdit: true})
	require.NoError(t, err)
	require.Equal(t, model.MemberPending, inv.Status)

	// Pending confers nothing.
	_, err = notebooks.Get(ctx, bob.UserID, nb.NotebookID)
	require.ErrorIs(t, err, model.ErrUnauthorized)

	require.NoError(t, notebooks.Respond(ctx, bob.UserID, inv.MemberID, true))

	got, err := notebooks.Get(ctx, bob.UserID, nb.NotebookID)
	require.NoError(t, err)
	require.Equal(t, nb.NotebookID, got.NotebookID)

	// Shared notebooks show up in bob's list.
	lst, err := notebooks.List(ctx, bob.UserID)
	require.NoError(t, err)
	require.Len(t, lst, 1)

	// canEdit lets bob rename but not delete.
	_, err = notebooks.Rename(ctx, bob.UserID, nb.NotebookID, "ours")
	require.NoError(t, err)
	require.ErrorIs(t, notebooks.Delete(ctx, bob.UserID, nb.NotebookID), model.ErrUnauthorized)

	// Bob leaves; access is gone.
	require.NoError(t, notebooks.Leave(ctx, bob.UserID, nb.NotebookID))
	_, err = notebooks.Get(ctx, bob.UserID, nb.NotebookID)
	require.ErrorIs(t, err, model.ErrUnauthorized)
}

func TestNoteSpoofedParentDefense(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st)
	notebooks := NewNotebookService(st)
	notes := NewNoteService(st, notebooks.Checker())

	alice := mustRegister(t, users, "alice@example.test")
	bob := mustRegister(t, users, "bob@example.test")

	private, err := notebooks.Create(ctx, alice.UserID, "private")
	require.NoError(t, err)
	secret, err := notes.Create(ctx, alice.UserID, private.NotebookID, "secret", "do not share")
	require.NoError(t, err)

	// Bob owns his own notebook but the note's parent is re-derived from the
	// stored row, so his access there does not reach alice's note.
	_, err = notebooks.Create(ctx, bob.UserID, "bobs")
	require.NoError(t, err)
	_, err = notes.Get(ctx, bob.UserID, secret.NoteID)
	require.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = notes.Update(ctx, bob.UserID, secret.NoteID, "stolen", "")
	require.ErrorIs(t, err, model.ErrUnauthorized)
	require.ErrorIs(t, notes.Delete(ctx, bob.UserID, secret.NoteID), model.ErrUnauthorized)
}

func TestCapabilityGatesOnNotes(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st)
	notebooks := NewNotebookService(st)
	notes := NewNoteService(st, notebooks.Checker())

	alice := mustRegister(t, users, "alice@example.test")
	bob := mustRegister(t, users, "bob@example.test")

	nb, err := notebooks.Create(ctx, alice.UserID, "journal")
	require.NoError(t, err)
	n, err := notes.Create(ctx, alice.UserID, nb.NotebookID, "n1", "body")
	require.NoError(t, err)

	inv, err := notebooks.Invite(ctx, alice.UserID, nb.NotebookID, "bob@example.test", model.MemberFlags{CanEdit: true})
	require.NoError(t, err)
	require.NoError(t, notebooks.Respond(ctx, bob.UserID, inv.MemberID, true))

	// Read and edit work, create and delete do not.
	_, err = notes.Get(ctx, bob.UserID, n.NoteID)
	require.NoError(t, err)
	_, err = notes.Update(ctx, bob.UserID, n.NoteID, "n1b", "edited")
	require.NoError(t, err)
	_, err = notes.Create(ctx, bob.UserID, nb.NotebookID, "mine", "")
	require.ErrorIs(t, err, model.ErrUnauthorized)
	require.ErrorIs(t, notes.Delete(ctx, bob.UserID, n.NoteID), model.ErrUnauthorized)

	// Owner widens the grant; delete now passes.
	_, err = notebooks.UpdateMemberFlags(ctx, alice.UserID, inv.MemberID, model.MemberFlags{CanEdit: true, CanDelete: true})
	require.NoError(t, err)
	require.NoError(t, notes.Delete(ctx, bob.UserID, n.NoteID))
}

func TestMachineActorKeyVerification(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	users := NewUserService(st)
	notebooks := NewNotebookService(st)
	tasks := NewTaskService(st, notebooks.Checker())

	alice := mustRegister(t, users, "alice@example.test")
	bob := mustRegister(t, users, "bob@example.test")

	nb, err := notebooks.Create(ctx, alice.UserID, "automation")
	require.NoError(t, err)

	// Minting is owner-only, one key per notebook.
	_, err = notebooks.MintKey(ctx, bob.UserID, nb.NotebookID, model.KeyReadOnly)
	require.ErrorIs(t, err, model.ErrUnauthorized)
	key, err := notebooks.MintKey(ctx, alice.UserID, nb.NotebookID, model.KeyReadOnly)
	require.NoError(t, err)
	_, err = notebooks.MintKey(ctx, alice.UserID, nb.NotebookID, model.KeyFullAccess)
	require.ErrorIs(t, err, model.ErrConflict)

	// A verified key acts as the owner.
	actor, err := notebooks.MachineActor(ctx, nb.NotebookID, key.Secret, model.KeyReadOnly)
	require.NoError(t, err)
	require.Equal(t, alice.UserID, actor)
	_, err = tasks.List(ctx, actor, nb.NotebookID)
	require.NoError(t, err)

	// read_only cannot satisfy a full_access requirement; wrong or foreign
	// keys fail the same way.
	_, err = notebooks.MachineActor(ctx, nb.NotebookID, key.Secret, model.KeyFullAccess)
	require.ErrorIs(t, err, model.ErrUnauthorized)
	_, err = notebooks.MachineActor(ctx, nb.NotebookID, "nlk_wrong", model.KeyReadOnly)
	require.ErrorIs(t, err, model.ErrUnauthorized)

	// Revoke, then the key is dead; a fresh full_access key can be minted.
	require.NoError(t, notebooks.RevokeKey(ctx, alice.UserID, nb.NotebookID))
	_, err = notebooks.MachineActor(ctx, nb.NotebookID, key.Secret, model.KeyReadOnly)
	require.ErrorIs(t, err, model.ErrUnauthorized)
	full, err := notebooks.MintKey(ctx, alice.UserID, nb.NotebookID, model.KeyFullAccess)
	require.NoError(t, err)
	_, err = notebooks.MachineActor(ctx, nb.NotebookID, full.Secret, model.KeyFullAccess)
	require.NoError(t, err)
}
