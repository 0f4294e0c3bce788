// Package share implements the shared-resource access model: ownership,
// capability-flagged memberships and the invitation lifecycle. It is written
// once and instantiated per resource kind (notebooks, vault groups) by wiring
// in the matching store interfaces.
package share

import (
	"context"

	"github.com/noteloft/noteloft-server/internal/model"
)

// Access is the result of an authorization check.
type Access struct {
	Allowed bool `json:"allowed"`
	IsOwner bool `json:"isOwner"`
}

// Owners resolves the owning user of a resource.
// Implementations return model.ErrNotFound for unknown resource ids.
type Owners interface {
	OwnerID(ctx context.Context, resourceID string) (string, error)
}

// Members is the membership persistence surface the share core needs.
// store.Members satisfies it.
type Members interface {
	Create(ctx context.Context, m *model.Membership) (*model.Membership, error)
	Get(ctx context.Context, resourceID, userID string) (*model.Membership, error)
	GetByID(ctx context.Context, memberID string) (*model.Membership, error)
	GetActive(ctx context.Context, resourceID, userID string) (*model.Membership, error)
	ListByResource(ctx context.Context, resourceID string) ([]*model.Membership, error)
	ListPendingByUser(ctx context.Context, userID string) ([]*model.Membership, error)
	SetStatus(ctx context.Context, memberID string, s model.MemberStatus) error
	SetFlags(ctx context.Context, memberID string, f model.MemberFlags) error
	Delete(ctx context.Context, memberID string) error
}

// Users resolves invite targets by email.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}
