package share

import (
	"context"
	"errors"
	"fmt"

	"github.com/noteloft/noteloft-server/internal/model"
)

// Lifecycle drives membership state transitions:
//
//	invite  (owner)    -> pending
//	accept  (invitee)  -> active
//	reject  (invitee)  -> row deleted
//	revoke  (owner)    -> row deleted, any status
//	leave   (member)   -> row deleted
type Lifecycle struct {
	checker *Checker
	members Members
	users   Users
}

func NewLifecycle(c *Checker, m Members, u Users) *Lifecycle {
	return &Lifecycle{checker: c, members: m, users: u}
}

// Checker returns the access checker bound to this resource kind.
func (l *Lifecycle) Checker() *Checker { return l.checker }

// Invite creates a pending membership for the user registered under email.
// Only the resource owner may invite. Self-invites and any existing row for
// the pair, pending or active, are conflicts; there is no re-invite path.
func (l *Lifecycle) Invite(ctx context.Context, actorID, resourceID, email string, f model.MemberFlags) (*model.Membership, error) {
	acc, err := l.checker.Check(ctx, resourceID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.IsOwner {
		return nil, model.ErrUnauthorized
	}
	target, err := l.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with that email", model.ErrNotFound)
		}
		return nil, err
	}
	if target.UserID == actorID {
		return nil, fmt.Errorf("%w: cannot invite yourself", model.ErrConflict)
	}
	if _, err := l.members.Get(ctx, resourceID, target.UserID); err == nil {
		return nil, fmt.Errorf("%w: already a member or invited", model.ErrConflict)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	m := &model.Membership{
		ResourceID:  resourceID,
		UserID:      target.UserID,
		InvitedBy:   actorID,
		Status:      model.MemberPending,
		MemberFlags: f,
	}
	return l.members.Create(ctx, m)
}

// Respond lets the invited user accept or reject a pending invitation.
// A row that does not exist, is not pending, or belongs to another user is
// reported as not found so nobody can act on someone else's invitation.
func (l *Lifecycle) Respond(ctx context.Context, actorID, memberID string, accept bool) error {
	m, err := l.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	if m.UserID != actorID || m.Status != model.MemberPending {
		return model.ErrNotFound
	}
	if accept {
		return l.members.SetStatus(ctx, memberID, model.MemberActive)
	}
	return l.members.Delete(ctx, memberID)
}

// UpdateFlags rewrites a membership's capability bits. The resource id is
// re-derived from the membership row and ownership of that resource is
// checked, so a forged member id cannot reach a foreign resource.
func (l *Lifecycle) UpdateFlags(ctx context.Context, actorID, memberID string, f model.MemberFlags) (*model.Membership, error) {
	m, err := l.members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	acc, err := l.checker.Check(ctx, m.ResourceID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.IsOwner {
		return nil, model.ErrUnauthorized
	}
	if err := l.members.SetFlags(ctx, memberID, f); err != nil {
		return nil, err
	}
	m.MemberFlags = f
	return m, nil
}

// Remove revokes a membership regardless of status. Owner only, with the
// same resource re-derivation as UpdateFlags.
func (l *Lifecycle) Remove(ctx context.Context, actorID, memberID string) error {
	m, err := l.members.GetByID(ctx, memberID)
	if err != nil {
		return err
	}
	acc, err := l.checker.Check(ctx, m.ResourceID, actorID)
	if err != nil {
		return err
	}
	if !acc.IsOwner {
		return model.ErrUnauthorized
	}
	return l.members.Delete(ctx, m.MemberID)
}

// Leave deletes the caller's own membership row. Owners have no row, so an
// owner trying to leave their own resource gets not found, as does a user
// who was never invited.
func (l *Lifecycle) Leave(ctx context.Context, actorID, resourceID string) error {
	m, err := l.members.Get(ctx, resourceID, actorID)
	if err != nil {
		return err
	}
	return l.members.Delete(ctx, m.MemberID)
}

// ListMembers returns all membership rows on a resource. Owner only.
func (l *Lifecycle) ListMembers(ctx context.Context, actorID, resourceID string) ([]*model.Membership, error) {
	acc, err := l.checker.Check(ctx, resourceID, actorID)
	if err != nil {
		return nil, err
	}
	if !acc.IsOwner {
		return nil, model.ErrUnauthorized
	}
	return l.members.ListByResource(ctx, resourceID)
}

// PendingInvites returns the caller's own pending invitations.
func (l *Lifecycle) PendingInvites(ctx context.Context, actorID string) ([]*model.Membership, error) {
	return l.members.ListPendingByUser(ctx, actorID)
}
