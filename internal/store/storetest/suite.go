// Package storetest holds a driver-agnostic compliance suite for store.Store
// implementations. Both drivers run it; postgres additionally behind an env
// guard in its own test file.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/store"
)

// Run exercises a compliance suite against a store.Store implementation.
// makeStore must return a clean, isolated store with migrations applied.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Users
	aliceID := "u-" + uuid.New().String()
	alice := &model.User{UserID: aliceID, Email: aliceID + "@example.test", PasswordHash: "x"}
	if _, err := s.Users().Create(ctx, alice); err != nil {
		t.Fatalf("CreateUser alice: %v", err)
	}
	if got, err := s.Users().Get(ctx, aliceID); err != nil || got.UserID != aliceID {
		t.Fatalf("GetUser: got=%v err=%v", got, err)
	}
	if got, err := s.Users().GetByEmail(ctx, alice.Email); err != nil || got.UserID != aliceID {
		t.Fatalf("GetUserByEmail: got=%v err=%v", got, err)
	}
	if _, err := s.Users().Get(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetUser missing: want ErrNotFound, got %v", err)
	}
	if _, err := s.Users().Create(ctx, &model.User{Email: alice.Email, PasswordHash: "y"}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate email: want ErrConflict, got %v", err)
	}

	bobID := "u-" + uuid.New().String()
	bob := &model.User{UserID: bobID, Email: bobID + "@example.test", PasswordHash: "x"}
	if _, err := s.Users().Create(ctx, bob); err != nil {
		t.Fatalf("CreateUser bob: %v", err)
	}

	// Notebooks
	nb, err := s.Notebooks().Create(ctx, &model.Notebook{OwnerID: aliceID, Name: "journal"})
	if err != nil {
		t.Fatalf("CreateNotebook: %v", err)
	}
	if nb.NotebookID == "" || nb.CreationTime.IsZero() {
		t.Fatalf("CreateNotebook: incomplete row %+v", nb)
	}
	if owner, err := s.Notebooks().OwnerID(ctx, nb.NotebookID); err != nil || owner != aliceID {
		t.Fatalf("NotebookOwnerID: owner=%q err=%v", owner, err)
	}
	if _, err := s.Notebooks().OwnerID(ctx, "missing"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("NotebookOwnerID missing: want ErrNotFound, got %v", err)
	}
	if lst, err := s.Notebooks().ListByOwner(ctx, aliceID); err != nil || len(lst) != 1 {
		t.Fatalf("ListNotebooks: n=%d err=%v", len(lst), err)
	}
	if err := s.Notebooks().Rename(ctx, nb.NotebookID, "diary"); err != nil {
		t.Fatalf("RenameNotebook: %v", err)
	}
	if got, _ := s.Notebooks().GetByID(ctx, nb.NotebookID); got.Name != "diary" {
		t.Fatalf("RenameNotebook: name=%q", got.Name)
	}

	// Notes
	note, err := s.Notes().Create(ctx, &model.Note{NotebookID: nb.NotebookID, Title: "n1", Body: "hello"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if lst, err := s.Notes().ListByNotebook(ctx, nb.NotebookID); err != nil || len(lst) != 1 {
		t.Fatalf("ListNotes: n=%d err=%v", len(lst), err)
	}
	upd, err := s.Notes().Update(ctx, note.NoteID, "n1b", "world")
	if err != nil || upd.Body != "world" {
		t.Fatalf("UpdateNote: got=%v err=%v", upd, err)
	}
	if upd.UpdateTime.Before(note.UpdateTime) {
		t.Fatalf("UpdateNote: update_time went backwards")
	}
	if _, err := s.Notes().Update(ctx, "missing", "t", "b"); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("UpdateNote missing: want ErrNotFound, got %v", err)
	}

	// Tasks
	due := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	task, err := s.Tasks().Create(ctx, &model.Task{NotebookID: nb.NotebookID, Title: "buy milk", DueDate: &due})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	task.Done = true
	if got, err := s.Tasks().Update(ctx, task); err != nil || !got.Done {
		t.Fatalf("UpdateTask: got=%v err=%v", got, err)
	}
	if lst, err := s.Tasks().ListByNotebook(ctx, nb.NotebookID); err != nil || len(lst) != 1 {
		t.Fatalf("ListTasks: n=%d err=%v", len(lst), err)
	}

	// Notebook memberships
	mem, err := s.NotebookMembers().Create(ctx, &model.Membership{
		ResourceID: nb.NotebookID, UserID: bobID, InvitedBy: aliceID, Status: model.MemberPending,
	})
	if err != nil {
		t.Fatalf("CreateMembership: %v", err)
	}
	if _, err := s.NotebookMembers().Create(ctx, &model.Membership{
		ResourceID: nb.NotebookID, UserID: bobID, InvitedBy: aliceID, Status: model.MemberPending,
	}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("duplicate membership: want ErrConflict, got %v", err)
	}
	if _, err := s.NotebookMembers().GetActive(ctx, nb.NotebookID, bobID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("GetActive pending: want ErrNotFound, got %v", err)
	}
	if lst, err := s.NotebookMembers().ListPendingByUser(ctx, bobID); err != nil || len(lst) != 1 {
		t.Fatalf("ListPendingByUser: n=%d err=%v", len(lst), err)
	}
	if err := s.NotebookMembers().SetStatus(ctx, mem.MemberID, model.MemberActive); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if got, err := s.NotebookMembers().GetActive(ctx, nb.NotebookID, bobID); err != nil || got.MemberID != mem.MemberID {
		t.Fatalf("GetActive: got=%v err=%v", got, err)
	}
	if err := s.NotebookMembers().SetFlags(ctx, mem.MemberID, model.MemberFlags{CanEdit: true}); err != nil {
		t.Fatalf("SetFlags: %v", err)
	}
	if got, _ := s.NotebookMembers().GetByID(ctx, mem.MemberID); !got.CanEdit || got.CanCreate {
		t.Fatalf("SetFlags: flags=%+v", got.MemberFlags)
	}
	if lst, err := s.NotebookMembers().ListActiveByUser(ctx, bobID); err != nil || len(lst) != 1 {
		t.Fatalf("ListActiveByUser: n=%d err=%v", len(lst), err)
	}
	if lst, err := s.NotebookMembers().ListByResource(ctx, nb.NotebookID); err != nil || len(lst) != 1 {
		t.Fatalf("ListByResource: n=%d err=%v", len(lst), err)
	}

	// Vault groups, entries and memberships reuse the same row shape but live
	// in their own tables; spot-check the second instantiation.
	vg, err := s.VaultGroups().Create(ctx, &model.VaultGroup{OwnerID: aliceID, Name: "logins"})
	if err != nil {
		t.Fatalf("CreateVaultGroup: %v", err)
	}
	if owner, err := s.VaultGroups().OwnerID(ctx, vg.GroupID); err != nil || owner != aliceID {
		t.Fatalf("VaultGroupOwnerID: owner=%q err=%v", owner, err)
	}
	entry, err := s.VaultEntries().Create(ctx, &model.VaultEntry{
		GroupID: vg.GroupID, Title: "email", Username: "alice", Password: "deadbeef",
	})
	if err != nil {
		t.Fatalf("CreateVaultEntry: %v", err)
	}
	entry.Title = "email-2"
	if got, err := s.VaultEntries().Update(ctx, entry); err != nil || got.Title != "email-2" {
		t.Fatalf("UpdateVaultEntry: got=%v err=%v", got, err)
	}
	vmem, err := s.VaultMembers().Create(ctx, &model.Membership{
		ResourceID: vg.GroupID, UserID: bobID, InvitedBy: aliceID, Status: model.MemberActive,
	})
	if err != nil {
		t.Fatalf("CreateVaultMembership: %v", err)
	}
	if lst, err := s.NotebookMembers().ListByResource(ctx, vg.GroupID); err != nil || len(lst) != 0 {
		t.Fatalf("membership tables leak across kinds: n=%d err=%v", len(lst), err)
	}
	if err := s.VaultMembers().Delete(ctx, vmem.MemberID); err != nil {
		t.Fatalf("DeleteVaultMembership: %v", err)
	}
	if err := s.VaultMembers().Delete(ctx, vmem.MemberID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("DeleteVaultMembership twice: want ErrNotFound, got %v", err)
	}

	// API keys: one per notebook.
	key, err := s.APIKeys().Create(ctx, &model.NotebookAPIKey{
		NotebookID: nb.NotebookID, Secret: "nlk_abc", Permission: model.KeyReadOnly,
	})
	if err != nil {
		t.Fatalf("CreateAPIKey: %v", err)
	}
	if _, err := s.APIKeys().Create(ctx, &model.NotebookAPIKey{
		NotebookID: nb.NotebookID, Secret: "nlk_def", Permission: model.KeyFullAccess,
	}); !errors.Is(err, model.ErrConflict) {
		t.Fatalf("second key per notebook: want ErrConflict, got %v", err)
	}
	if got, err := s.APIKeys().GetByNotebook(ctx, nb.NotebookID); err != nil || got.KeyID != key.KeyID {
		t.Fatalf("GetAPIKeyByNotebook: got=%v err=%v", got, err)
	}

	// Deleting the notebook cascades to notes, tasks, members and keys.
	if err := s.Notebooks().Delete(ctx, nb.NotebookID); err != nil {
		t.Fatalf("DeleteNotebook: %v", err)
	}
	if _, err := s.Notes().GetByID(ctx, note.NoteID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("note survived cascade: %v", err)
	}
	if _, err := s.Tasks().GetByID(ctx, task.TaskID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("task survived cascade: %v", err)
	}
	if _, err := s.NotebookMembers().GetByID(ctx, mem.MemberID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("membership survived cascade: %v", err)
	}
	if _, err := s.APIKeys().GetByNotebook(ctx, nb.NotebookID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("api key survived cascade: %v", err)
	}

	// Deleting the group cascades to entries.
	if err := s.VaultGroups().Delete(ctx, vg.GroupID); err != nil {
		t.Fatalf("DeleteVaultGroup: %v", err)
	}
	if _, err := s.VaultEntries().GetByID(ctx, entry.EntryID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("vault entry survived cascade: %v", err)
	}
}
