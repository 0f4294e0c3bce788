package store

import (
	"context"

	"github.com/noteloft/noteloft-server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
// Drivers normalize driver errors to the model sentinels: missing rows become
// model.ErrNotFound and unique-index violations become model.ErrConflict.
type Store interface {
	Users() Users
	Notebooks() Notebooks
	Notes() Notes
	Tasks() Tasks
	VaultGroups() VaultGroups
	VaultEntries() VaultEntries
	NotebookMembers() Members
	VaultMembers() Members
	APIKeys() APIKeys
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// Notebooks and VaultGroups deliberately share a shape: both are shareable
// resources consumed by the share package through their OwnerID method.
type Notebooks interface {
	Create(ctx context.Context, n *model.Notebook) (*model.Notebook, error)
	GetByID(ctx context.Context, notebookID string) (*model.Notebook, error)
	OwnerID(ctx context.Context, notebookID string) (string, error)
	ListByOwner(ctx context.Context, userID string) ([]*model.Notebook, error)
	Rename(ctx context.Context, notebookID, name string) error
	Delete(ctx context.Context, notebookID string) error
}

type VaultGroups interface {
	Create(ctx context.Context, g *model.VaultGroup) (*model.VaultGroup, error)
	GetByID(ctx context.Context, groupID string) (*model.VaultGroup, error)
	OwnerID(ctx context.Context, groupID string) (string, error)
	ListByOwner(ctx context.Context, userID string) ([]*model.VaultGroup, error)
	Rename(ctx context.Context, groupID, name string) error
	Delete(ctx context.Context, groupID string) error
}

type Notes interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	GetByID(ctx context.Context, noteID string) (*model.Note, error)
	ListByNotebook(ctx context.Context, notebookID string) ([]*model.Note, error)
	Update(ctx context.Context, noteID, title, body string) (*model.Note, error)
	Delete(ctx context.Context, noteID string) error
}

type Tasks interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, taskID string) (*model.Task, error)
	ListByNotebook(ctx context.Context, notebookID string) ([]*model.Task, error)
	Update(ctx context.Context, t *model.Task) (*model.Task, error)
	Delete(ctx context.Context, taskID string) error
}

type VaultEntries interface {
	Create(ctx context.Context, e *model.VaultEntry) (*model.VaultEntry, error)
	GetByID(ctx context.Context, entryID string) (*model.VaultEntry, error)
	ListByGroup(ctx context.Context, groupID string) ([]*model.VaultEntry, error)
	Update(ctx context.Context, e *model.VaultEntry) (*model.VaultEntry, error)
	Delete(ctx context.Context, entryID string) error
}

// Members is implemented once per resource kind (notebook_members,
// vault_members); the row shape is identical.
type Members interface {
	Create(ctx context.Context, m *model.Membership) (*model.Membership, error)
	Get(ctx context.Context, resourceID, userID string) (*model.Membership, error)
	GetByID(ctx context.Context, memberID string) (*model.Membership, error)
	GetActive(ctx context.Context, resourceID, userID string) (*model.Membership, error)
	ListByResource(ctx context.Context, resourceID string) ([]*model.Membership, error)
	ListPendingByUser(ctx context.Context, userID string) ([]*model.Membership, error)
	ListActiveByUser(ctx context.Context, userID string) ([]*model.Membership, error)
	SetStatus(ctx context.Context, memberID string, s model.MemberStatus) error
	SetFlags(ctx context.Context, memberID string, f model.MemberFlags) error
	Delete(ctx context.Context, memberID string) error
}

type APIKeys interface {
	Create(ctx context.Context, k *model.NotebookAPIKey) (*model.NotebookAPIKey, error)
	GetByNotebook(ctx context.Context, notebookID string) (*model.NotebookAPIKey, error)
	Delete(ctx context.Context, keyID string) error
}
