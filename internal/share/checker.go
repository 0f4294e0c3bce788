package share

import (
	"context"
	"errors"

	"github.com/noteloft/noteloft-server/internal/model"
)

// Checker decides whether a user may act on a resource. It is read-only and
// must be consulted before every mutation and before any read that exposes a
// resource to a non-owner.
type Checker struct {
	owners  Owners
	members Members
}

func NewChecker(o Owners, m Members) *Checker {
	return &Checker{owners: o, members: m}
}

// Check grants when the user owns the resource or holds any active
// membership on it. A missing resource yields the same deny as a missing
// membership so unauthorized callers cannot probe for resource ids.
func (c *Checker) Check(ctx context.Context, resourceID, userID string) (Access, error) {
	return c.check(ctx, resourceID, userID, "")
}

// Require additionally demands one capability bit. Owners bypass capability
// checks, always.
func (c *Checker) Require(ctx context.Context, resourceID, userID string, cap model.Capability) (Access, error) {
	return c.check(ctx, resourceID, userID, cap)
}

func (c *Checker) check(ctx context.Context, resourceID, userID string, cap model.Capability) (Access, error) {
	if userID == "" {
		return Access{}, nil
	}
	ownerID, err := c.owners.OwnerID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Access{}, nil
		}
		return Access{}, err
	}
	if ownerID == userID {
		return Access{Allowed: true, IsOwner: true}, nil
	}
	m, err := c.members.GetActive(ctx, resourceID, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return Access{}, nil
		}
		return Access{}, err
	}
	if cap == "" {
		return Access{Allowed: true}, nil
	}
	return Access{Allowed: m.Allows(cap)}, nil
}
