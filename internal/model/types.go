package model

import "time"

// User represents an account in the system.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	DisplayName  *string   `json:"displayName,omitempty"`
	PasswordHash string    `json:"-"`
	CreationTime time.Time `json:"creationTime"`
}

// Notebook is a shareable container for notes and tasks, owned by one user.
type Notebook struct {
	NotebookID   string    `json:"notebookId"`
	OwnerID      string    `json:"ownerId"`
	Name         string    `json:"name"`
	CreationTime time.Time `json:"creationTime"`
}

// Note belongs to exactly one notebook.
type Note struct {
	NoteID       string    `json:"noteId"`
	NotebookID   string    `json:"notebookId"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// Task belongs to exactly one notebook.
type Task struct {
	TaskID       string     `json:"taskId"`
	NotebookID   string     `json:"notebookId"`
	Title        string     `json:"title"`
	Done         bool       `json:"done"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	CreationTime time.Time  `json:"creationTime"`
}

// VaultGroup is a shareable container for vault entries, owned by one user.
type VaultGroup struct {
	GroupID      string    `json:"groupId"`
	OwnerID      string    `json:"ownerId"`
	Name         string    `json:"name"`
	CreationTime time.Time `json:"creationTime"`
}

// VaultEntry holds one stored credential. Password carries plaintext on the
// API surface only; the store always receives and returns ciphertext.
type VaultEntry struct {
	EntryID      string    `json:"entryId"`
	GroupID      string    `json:"groupId"`
	Title        string    `json:"title"`
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	URL          *string   `json:"url,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// MemberStatus is the lifecycle state of a membership row.
type MemberStatus string

const (
	MemberPending MemberStatus = "pending"
	MemberActive  MemberStatus = "active"
)

// Capability is one independently togglable permission bit on a membership.
type Capability string

const (
	CapabilityEdit   Capability = "edit"
	CapabilityCreate Capability = "create"
	CapabilityDelete Capability = "delete"
)

// MemberFlags are the three capability bits carried by a membership.
// No flag implies another.
type MemberFlags struct {
	CanEdit   bool `json:"canEdit"`
	CanCreate bool `json:"canCreate"`
	CanDelete bool `json:"canDelete"`
}

// Allows reports whether the flags grant the given capability.
func (f MemberFlags) Allows(c Capability) bool {
	switch c {
	case CapabilityEdit:
		return f.CanEdit
	case CapabilityCreate:
		return f.CanCreate
	case CapabilityDelete:
		return f.CanDelete
	}
	return false
}

// Membership links a shareable resource to a non-owner user. At most one row
// exists per (resource, user); the owner is never represented as a row.
type Membership struct {
	MemberID   string       `json:"memberId"`
	ResourceID string       `json:"resourceId"`
	UserID     string       `json:"userId"`
	InvitedBy  string       `json:"invitedBy"`
	Status     MemberStatus `json:"status"`
	MemberFlags
	CreationTime time.Time `json:"creationTime"`
}

// APIKeyPermission is the scope a notebook API key was provisioned with.
type APIKeyPermission string

const (
	KeyReadOnly   APIKeyPermission = "read_only"
	KeyFullAccess APIKeyPermission = "full_access"
)

// NotebookAPIKey authenticates machine callers against one notebook.
type NotebookAPIKey struct {
	KeyID        string           `json:"keyId"`
	NotebookID   string           `json:"notebookId"`
	Secret       string           `json:"-"`
	Permission   APIKeyPermission `json:"permission"`
	CreationTime time.Time        `json:"creationTime"`
}
