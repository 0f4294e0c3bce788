package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/noteloft/noteloft-server/internal/auth"
	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/share"
	"github.com/noteloft/noteloft-server/internal/store"
)

// NotebookService owns notebooks, their sharing lifecycle and their machine
// API keys. VaultGroupService is the same construction over the other
// resource kind.
type NotebookService struct {
	store     store.Store
	lifecycle *share.Lifecycle
	verifier  *auth.KeyVerifier
}

func NewNotebookService(s store.Store) *NotebookService {
	checker := share.NewChecker(s.Notebooks(), s.NotebookMembers())
	return &NotebookService{
		store:     s,
		lifecycle: share.NewLifecycle(checker, s.NotebookMembers(), s.Users()),
		verifier:  auth.NewKeyVerifier(s.APIKeys()),
	}
}

// Checker exposes the notebook access checker for the child services.
func (s *NotebookService) Checker() *share.Checker { return s.lifecycle.Checker() }

func (s *NotebookService) Create(ctx context.Context, actorID, name string) (*model.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	return s.store.Notebooks().Create(ctx, &model.Notebook{OwnerID: actorID, Name: name})
}

// Get returns a notebook visible to the actor. Missing and forbidden
// notebooks produce the same error.
func (s *NotebookService) Get(ctx context.Context, actorID, notebookID string) (*model.Notebook, error) {
	acc, err := s.Checker().Check(ctx, notebookID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.Allowed {
		return nil, model.ErrUnauthorized
	}
	return s.store.Notebooks().GetByID(ctx, notebookID)
}

// List returns notebooks the actor owns plus those shared with them through
// an active membership.
func (s *NotebookService) List(ctx context.Context, actorID string) ([]*model.Notebook, error) {
	owned, err := s.store.Notebooks().ListByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.store.NotebookMembers().ListActiveByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		nb, err := s.store.Notebooks().GetByID(ctx, m.ResourceID)
		if err != nil {
			return nil, err
		}
		owned = append(owned, nb)
	}
	return owned, nil
}

// Rename requires ownership or the edit capability.
func (s *NotebookService) Rename(ctx context.Context, actorID, notebookID, name string) (*model.Notebook, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	acc, err := s.Checker().Require(ctx, notebookID, actorID, model.CapabilityEdit)
	if err != nil {
		return nil, err
	}
	if !acc.Allowed {
		return nil, model.ErrUnauthorized
	}
	if err := s.store.Notebooks().Rename(ctx, notebookID, name); err != nil {
		return nil, err
	}
	return s.store.Notebooks().GetByID(ctx, notebookID)
}

// Delete is owner-only and cascades to notes, tasks, memberships and keys.
func (s *NotebookService) Delete(ctx context.Context, actorID, notebookID string) error {
	acc, err := s.Checker().Check(ctx, notebookID, actorID)
	if err != nil {
		return err
	}
	if !acc.IsOwner {
		return model.ErrUnauthorized
	}
	return s.store.Notebooks().Delete(ctx, notebookID)
}

// Sharing lifecycle, delegated to the shared core.

func (s *NotebookService) Invite(ctx context.Context, actorID, notebookID, email string, f model.MemberFlags) (*model.Membership, error) {
	return s.lifecycle.Invite(ctx, actorID, notebookID, email, f)
}

func (s *NotebookService) Respond(ctx context.Context, actorID, memberID string, accept bool) error {
	return s.lifecycle.Respond(ctx, actorID, memberID, accept)
}

func (s *NotebookService) UpdateMemberFlags(ctx context.Context, actorID, memberID string, f model.MemberFlags) (*model.Membership, error) {
	return s.lifecycle.UpdateFlags(ctx, actorID, memberID, f)
}

func (s *NotebookService) RemoveMember(ctx context.Context, actorID, memberID string) error {
	return s.lifecycle.Remove(ctx, actorID, memberID)
}

func (s *NotebookService) Leave(ctx context.Context, actorID, notebookID string) error {
	return s.lifecycle.Leave(ctx, actorID, notebookID)
}

func (s *NotebookService) ListMembers(ctx context.Context, actorID, notebookID string) ([]*model.Membership, error) {
	return s.lifecycle.ListMembers(ctx, actorID, notebookID)
}

func (s *NotebookService) PendingInvites(ctx context.Context, actorID string) ([]*model.Membership, error) {
	return s.lifecycle.PendingInvites(ctx, actorID)
}

// MintKey creates the notebook's machine API key. Owner only, one key per
// notebook; a second mint is a conflict until the first key is revoked.
func (s *NotebookService) MintKey(ctx context.Context, actorID, notebookID string, perm model.APIKeyPermission) (*model.NotebookAPIKey, error) {
	if perm != model.KeyReadOnly && perm != model.KeyFullAccess {
		return nil, fmt.Errorf("%w: unknown permission %q", model.ErrValidation, perm)
	}
	acc, err := s.Checker().Check(ctx, notebookID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.IsOwner {
		return nil, model.ErrUnauthorized
	}
	secret, err := auth.GenerateKey()
	if err != nil {
		return nil, err
	}
	return s.store.APIKeys().Create(ctx, &model.NotebookAPIKey{
		NotebookID: notebookID,
		Secret:     secret,
		Permission: perm,
	})
}

// RevokeKey deletes the notebook's machine API key. Owner only.
func (s *NotebookService) RevokeKey(ctx context.Context, actorID, notebookID string) error {
	acc, err := s.Checker().Check(ctx, notebookID, actorID)
	if err != nil {
		return err
	}
	if !acc.IsOwner {
		return model.ErrUnauthorized
	}
	k, err := s.store.APIKeys().GetByNotebook(ctx, notebookID)
	if err != nil {
		return err
	}
	return s.store.APIKeys().Delete(ctx, k.KeyID)
}

// MachineActor verifies a machine caller's key against one notebook and, on
// success, returns the owner's user id. Machine calls then flow through the
// same services and checks as the owner's own requests. Every failure mode is
// the same opaque deny.
func (s *NotebookService) MachineActor(ctx context.Context, notebookID, candidate string, required model.APIKeyPermission) (string, error) {
	if !s.verifier.VerifyKey(ctx, candidate, notebookID, required) {
		return "", model.ErrUnauthorized
	}
	owner, err := s.store.Notebooks().OwnerID(ctx, notebookID)
	if err != nil {
		return "", model.ErrUnauthorized
	}
	return owner, nil
}
