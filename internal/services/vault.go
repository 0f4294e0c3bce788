package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/secrets"
	"github.com/noteloft/noteloft-server/internal/share"
	"github.com/noteloft/noteloft-server/internal/store"
)

// VaultGroupService is the vault-side counterpart of NotebookService: same
// shared-resource core, bound to the vault_members table. Vault groups have
// no machine keys.
type VaultGroupService struct {
	store     store.Store
	lifecycle *share.Lifecycle
}

func NewVaultGroupService(s store.Store) *VaultGroupService {
	checker := share.NewChecker(s.VaultGroups(), s.VaultMembers())
	return &VaultGroupService{
		store:     s,
		lifecycle: share.NewLifecycle(checker, s.VaultMembers(), s.Users()),
	}
}

func (s *VaultGroupService) Checker() *share.Checker { return s.lifecycle.Checker() }

func (s *VaultGroupService) Create(ctx context.Context, actorID, name string) (*model.VaultGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	return s.store.VaultGroups().Create(ctx, &model.VaultGroup{OwnerID: actorID, Name: name})
}

func (s *VaultGroupService) Get(ctx context.Context, actorID, groupID string) (*model.VaultGroup, error) {
	acc, err := s.Checker().Check(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.Allowed {
		return nil, model.ErrUnauthorized
	}
	return s.store.VaultGroups().GetByID(ctx, groupID)
}

func (s *VaultGroupService) List(ctx context.Context, actorID string) ([]*model.VaultGroup, error) {
	owned, err := s.store.VaultGroups().ListByOwner(ctx, actorID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.store.VaultMembers().ListActiveByUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	for _, m := range memberships {
		g, err := s.store.VaultGroups().GetByID(ctx, m.ResourceID)
		if err != nil {
			return nil, err
		}
		owned = append(owned, g)
	}
	return owned, nil
}

func (s *VaultGroupService) Rename(ctx context.Context, actorID, groupID, name string) (*model.VaultGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", model.ErrValidation)
	}
	acc, err := s.Checker().Require(ctx, groupID, actorID, model.CapabilityEdit)
	if err != nil {
		return nil, err
	}
	if !acc.Allowed {
		return nil, model.ErrUnauthorized
	}
	if err := s.store.VaultGroups().Rename(ctx, groupID, name); err != nil {
		return nil, err
	}
	return s.store.VaultGroups().GetByID(ctx, groupID)
}

func (s *VaultGroupService) Delete(ctx context.Context, actorID, groupID string) error {
	acc, err := s.Checker().Check(ctx, groupID, actorID)
	if err != nil {
		return err
	}
	if !acc.IsOwner {
		return model.ErrUnauthorized
	}
	return s.store.VaultGroups().Delete(ctx, groupID)
}

func (s *VaultGroupService) Invite(ctx context.Context, actorID, groupID, email string, f model.MemberFlags) (*model.Membership, error) {
	return s.lifecycle.Invite(ctx, actorID, groupID, email, f)
}

func (s *VaultGroupService) Respond(ctx context.Context, actorID, memberID string, accept bool) error {
	return s.lifecycle.Respond(ctx, actorID, memberID, accept)
}

func (s *VaultGroupService) UpdateMemberFlags(ctx context.Context, actorID, memberID string, f model.MemberFlags) (*model.Membership, error) {
	return s.lifecycle.UpdateFlags(ctx, actorID, memberID, f)
}

func (s *VaultGroupService) RemoveMember(ctx context.Context, actorID, memberID string) error {
	return s.lifecycle.Remove(ctx, actorID, memberID)
}

func (s *VaultGroupService) Leave(ctx context.Context, actorID, groupID string) error {
	return s.lifecycle.Leave(ctx, actorID, groupID)
}

func (s *VaultGroupService) ListMembers(ctx context.Context, actorID, groupID string) ([]*model.Membership, error) {
	return s.lifecycle.ListMembers(ctx, actorID, groupID)
}

func (s *VaultGroupService) PendingInvites(ctx context.Context, actorID string) ([]*model.Membership, error) {
	return s.lifecycle.PendingInvites(ctx, actorID)
}

// VaultEntryService stores entry passwords encrypted and decrypts them on the
// way out. Decryption failures are isolated per record: a corrupt row serves
// an empty password instead of failing the whole listing.
type VaultEntryService struct {
	store   store.Store
	checker *share.Checker
	enc     *secrets.Encryptor
	log     zerolog.Logger
}

func NewVaultEntryService(s store.Store, c *share.Checker, enc *secrets.Encryptor, log zerolog.Logger) *VaultEntryService {
	return &VaultEntryService{store: s, checker: c, enc: enc, log: log}
}

func (s *VaultEntryService) require(ctx context.Context, groupID, actorID string, cap model.Capability) error {
	acc, err := s.checker.Require(ctx, groupID, actorID, cap)
	if err != nil {
		return err
	}
	if !acc.Allowed {
		return model.ErrUnauthorized
	}
	return nil
}

// decrypt swaps the stored ciphertext for plaintext in place. On failure the
// password becomes the empty string and the entry is otherwise served intact.
func (s *VaultEntryService) decrypt(e *model.VaultEntry) {
	plain, err := s.enc.Decrypt(e.Password)
	if err != nil {
		s.log.Warn().Str("entry_id", e.EntryID).Err(err).Msg("vault entry failed to decrypt")
		e.Password = ""
		return
	}
	e.Password = plain
}

func (s *VaultEntryService) Create(ctx context.Context, actorID string, e *model.VaultEntry) (*model.VaultEntry, error) {
	if strings.TrimSpace(e.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if err := s.require(ctx, e.GroupID, actorID, model.CapabilityCreate); err != nil {
		return nil, err
	}
	plain := e.Password
	ct, err := s.enc.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}
	e.Password = ct
	out, err := s.store.VaultEntries().Create(ctx, e)
	if err != nil {
		return nil, err
	}
	out.Password = plain
	return out, nil
}

func (s *VaultEntryService) Get(ctx context.Context, actorID, entryID string) (*model.VaultEntry, error) {
	e, err := s.store.VaultEntries().GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, e.GroupID, actorID, ""); err != nil {
		return nil, err
	}
	s.decrypt(e)
	return e, nil
}

func (s *VaultEntryService) List(ctx context.Context, actorID, groupID string) ([]*model.VaultEntry, error) {
	if err := s.require(ctx, groupID, actorID, ""); err != nil {
		return nil, err
	}
	entries, err := s.store.VaultEntries().ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		s.decrypt(e)
	}
	return entries, nil
}

func (s *VaultEntryService) Update(ctx context.Context, actorID string, e *model.VaultEntry) (*model.VaultEntry, error) {
	if strings.TrimSpace(e.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	stored, err := s.store.VaultEntries().GetByID(ctx, e.EntryID)
	if err != nil {
		return nil, err
	}
	if err := s.require(ctx, stored.GroupID, actorID, model.CapabilityEdit); err != nil {
		return nil, err
	}
	plain := e.Password
	ct, err := s.enc.Encrypt(plain)
	if err != nil {
		return nil, fmt.Errorf("encrypt password: %w", err)
	}
	upd := &model.VaultEntry{
		EntryID:  e.EntryID,
		GroupID:  stored.GroupID,
		Title:    e.Title,
		Username: e.Username,
		Password: ct,
		URL:      e.URL,
		Notes:    e.Notes,
	}
	out, err := s.store.VaultEntries().Update(ctx, upd)
	if err != nil {
		return nil, err
	}
	out.Password = plain
	return out, nil
}

func (s *VaultEntryService) Delete(ctx context.Context, actorID, entryID string) error {
	e, err := s.store.VaultEntries().GetByID(ctx, entryID)
	if err != nil {
		return err
	}
	if err := s.require(ctx, e.GroupID, actorID, model.CapabilityDelete); err != nil {
		return err
	}
	return s.store.VaultEntries().Delete(ctx, entryID)
}
