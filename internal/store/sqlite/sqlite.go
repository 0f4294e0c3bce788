// Package sqlite implements store.Store on modernc.org/sqlite, used for
// local development and tests. Unlike the postgres driver, row timestamps
// are set from Go since SQLite has no timezone-aware defaults.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/store"
)

// Open opens (or creates) a SQLite database at the given path, enabling WAL
// journal mode and foreign keys. The path ":memory:" opens an in-memory
// database pinned to a single connection.
func Open(path string) (*sql.DB, error) {
	var dsn string
	if path == ":memory:" {
		dsn = "file::memory:?_pragma=foreign_keys(ON)"
	} else {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// A second connection would see a different empty database.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New constructs a SQLite store backed directly by database/sql.
func New(db *sql.DB) store.Store { return &liteStore{db: db} }

type liteStore struct{ db *sql.DB }

func (s *liteStore) Users() store.Users               { return &users{db: s.db} }
func (s *liteStore) Notebooks() store.Notebooks       { return &notebooks{db: s.db} }
func (s *liteStore) Notes() store.Notes               { return &notes{db: s.db} }
func (s *liteStore) Tasks() store.Tasks               { return &tasks{db: s.db} }
func (s *liteStore) VaultGroups() store.VaultGroups   { return &vaultGroups{db: s.db} }
func (s *liteStore) VaultEntries() store.VaultEntries { return &vaultEntries{db: s.db} }
func (s *liteStore) NotebookMembers() store.Members {
	return &members{db: s.db, table: "notebook_members", resourceCol: "notebook_id"}
}
func (s *liteStore) VaultMembers() store.Members {
	return &members{db: s.db, table: "vault_members", resourceCol: "group_id"}
}
func (s *liteStore) APIKeys() store.APIKeys { return &apiKeys{db: s.db} }

func (s *liteStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func normalize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return model.ErrConflict
	}
	return err
}

func orNewID(id string) string {
	if id == "" {
		return uuid.New().String()
	}
	return id
}

func now() time.Time { return time.Now().UTC() }

func affected(res sql.Result, err error) error {
	if err != nil {
		return normalize(err)
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	out := *m
	out.UserID = orNewID(m.UserID)
	out.CreationTime = now()
	_, err := u.db.ExecContext(ctx, `
        INSERT INTO users (user_id, email, display_name, password_hash, creation_time)
        VALUES (?,?,?,?,?)
    `, out.UserID, out.Email, out.DisplayName, out.PasswordHash, out.CreationTime)
	if err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, password_hash, creation_time
        FROM users WHERE user_id=?
    `, userID)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.PasswordHash, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (u *users) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, password_hash, creation_time
        FROM users WHERE email=?
    `, email)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.PasswordHash, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

// --- Notebooks ---

type notebooks struct{ db *sql.DB }

func (n *notebooks) Create(ctx context.Context, m *model.Notebook) (*model.Notebook, error) {
	out := *m
	out.NotebookID = orNewID(m.NotebookID)
	out.CreationTime = now()
	_, err := n.db.ExecContext(ctx, `
        INSERT INTO notebooks (notebook_id, owner_id, name, creation_time)
        VALUES (?,?,?,?)
    `, out.NotebookID, out.OwnerID, out.Name, out.CreationTime)
	if err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (n *notebooks) GetByID(ctx context.Context, notebookID string) (*model.Notebook, error) {
	var out model.Notebook
	row := n.db.QueryRowContext(ctx, `
        SELECT notebook_id, owner_id, name, creation_time FROM notebooks WHERE notebook_id=?
    `, notebookID)
	if err := row.Scan(&out.NotebookID, &out.OwnerID, &out.Name, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (n *notebooks) OwnerID(ctx context.Context, notebookID string) (string, error) {
	var owner string
	row := n.db.QueryRowContext(ctx, `SELECT owner_id FROM notebooks WHERE notebook_id=?`, notebookID)
	if err := row.Scan(&owner); err != nil {
		return "", normalize(err)
	}
	return owner, nil
}

func (n *notebooks) ListByOwner(ctx context.Context, userID string) ([]*model.Notebook, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT notebook_id, owner_id, name, creation_time
        FROM notebooks WHERE owner_id=? ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Notebook
	for rows.Next() {
		var m model.Notebook
		if err := rows.Scan(&m.NotebookID, &m.OwnerID, &m.Name, &m.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (n *notebooks) Rename(ctx context.Context, notebookID, name string) error {
	res, err := n.db.ExecContext(ctx, `UPDATE notebooks SET name=? WHERE notebook_id=?`, name, notebookID)
	return affected(res, err)
}

func (n *notebooks) Delete(ctx context.Context, notebookID string) error {
	res, err := n.db.ExecContext(ctx, `DELETE FROM notebooks WHERE notebook_id=?`, notebookID)
	return affected(res, err)
}

// --- Notes ---

type notes struct{ db *sql.DB }

func (n *notes) Create(ctx context.Context, m *model.Note) (*model.Note, error) {
	out := *m
	out.NoteID = orNewID(m.NoteID)
	out.CreationTime = now()
	out.UpdateTime = out.CreationTime
	_, err := n.db.ExecContext(ctx, `
        INSERT INTO notes (note_id, notebook_id, title, body, creation_time, update_time)
        VALUES (?,?,?,?,?,?)
    `, out.NoteID, out.NotebookID, out.Title, out.Body, out.CreationTime, out.UpdateTime)
	if err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (n *notes) GetByID(ctx context.Context, noteID string) (*model.Note, error) {
	var out model.Note
	row := n.db.QueryRowContext(ctx, `
        SELECT note_id, notebook_id, title, body, creation_time, update_time
        FROM notes WHERE note_id=?
    `, noteID)
	if err := row.Scan(&out.NoteID, &out.NotebookID, &out.Title, &out.Body, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (n *notes) ListByNotebook(ctx context.Context, notebookID string) ([]*model.Note, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT note_id, notebook_id, title, body, creation_time, update_time
        FROM notes WHERE notebook_id=? ORDER BY creation_time DESC
    `, notebookID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Note
	for rows.Next() {
		var m model.Note
		if err := rows.Scan(&m.NoteID, &m.NotebookID, &m.Title, &m.Body, &m.CreationTime, &m.UpdateTime); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (n *notes) Update(ctx context.Context, noteID, title, body string) (*model.Note, error) {
	res, err := n.db.ExecContext(ctx, `
        UPDATE notes SET title=?, body=?, update_time=? WHERE note_id=?
    `, title, body, now(), noteID)
	if err := affected(res, err); err != nil {
		return nil, err
	}
	return n.GetByID(ctx, noteID)
}

func (n *notes) Delete(ctx context.Context, noteID string) error {
	res, err := n.db.ExecContext(ctx, `DELETE FROM notes WHERE note_id=?`, noteID)
	return affected(res, err)
}

// --- Tasks ---

type tasks struct{ db *sql.DB }

func (t *tasks) Create(ctx context.Context, m *model.Task) (*model.Task, error) {
	out := *m
	out.TaskID = orNewID(m.TaskID)
	out.CreationTime = now()
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO tasks (task_id, notebook_id, title, done, due_date, creation_time)
        VALUES (?,?,?,?,?,?)
    `, out.TaskID, out.NotebookID, out.Title, out.Done, out.DueDate, out.CreationTime)
	if err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (t *tasks) GetByID(ctx context.Context, taskID string) (*model.Task, error) {
	var out model.Task
	row := t.db.QueryRowContext(ctx, `
        SELECT task_id, notebook_id, title, done, due_date, creation_time
        FROM tasks WHERE task_id=?
    `, taskID)
	if err := row.Scan(&out.TaskID, &out.NotebookID, &out.Title, &out.Done, &out.DueDate, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (t *tasks) ListByNotebook(ctx context.Context, notebookID string) ([]*model.Task, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT task_id, notebook_id, title, done, due_date, creation_time
        FROM tasks WHERE notebook_id=? ORDER BY creation_time DESC
    `, notebookID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Task
	for rows.Next() {
		var m model.Task
		if err := rows.Scan(&m.TaskID, &m.NotebookID, &m.Title, &m.Done, &m.DueDate, &m.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (t *tasks) Update(ctx context.Context, m *model.Task) (*model.Task, error) {
	res, err := t.db.ExecContext(ctx, `
        UPDATE tasks SET title=?, done=?, due_date=? WHERE task_id=?
    `, m.Title, m.Done, m.DueDate, m.TaskID)
	if err := affected(res, err); err != nil {
		return nil, err
	}
	return t.GetByID(ctx, m.TaskID)
}

func (t *tasks) Delete(ctx context.Context, taskID string) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM tasks WHERE task_id=?`, taskID)
	return affected(res, err)
}

// --- Vault groups ---

type vaultGroups struct{ db *sql.DB }

func (v *vaultGroups) Create(ctx context.Context, m *model.VaultGroup) (*model.VaultGroup, error) {
	out := *m
	out.GroupID = orNewID(m.GroupID)
	out.CreationTime = now()
	_, err := v.db.ExecContext(ctx, `
        INSERT INTO vault_groups (group_id, owner_id, name, creation_time)
        VALUES (?,?,?,?)
    `, out.GroupID, out.OwnerID, out.Name, out.CreationTime)
	if err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (v *vaultGroups) GetByID(ctx context.Context, groupID string) (*model.VaultGroup, error) {
	var out model.VaultGroup
	row := v.db.QueryRowContext(ctx, `
        SELECT group_id, owner_id, name, creation_time FROM vault_groups WHERE group_id=?
    `, groupID)
	if err := row.Scan(&out.GroupID, &out.OwnerID, &out.Name, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (v *vaultGroups) OwnerID(ctx context.Context, groupID string) (string, error) {
	var owner string
	row := v.db.QueryRowContext(ctx, `SELECT owner_id FROM vault_groups WHERE group_id=?`, groupID)
	if err := row.Scan(&owner); err != nil {
		return "", normalize(err)
	}
	return owner, nil
}

func (v *vaultGroups) ListByOwner(ctx context.Context, userID string) ([]*model.VaultGroup, error) {
	rows, err := v.db.QueryContext(ctx, `
        SELECT group_id, owner_id, name, creation_time
        FROM vault_groups WHERE owner_id=? ORDER BY creation_time DESC
    `, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.VaultGroup
	for rows.Next() {
		var m model.VaultGroup
		if err := rows.Scan(&m.GroupID, &m.OwnerID, &m.Name, &m.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (v *vaultGroups) Rename(ctx context.Context, groupID, name string) error {
	res, err := v.db.ExecContext(ctx, `UPDATE vault_groups SET name=? WHERE group_id=?`, name, groupID)
	return affected(res, err)
}

func (v *vaultGroups) Delete(ctx context.Context, groupID string) error {
	res, err := v.db.ExecContext(ctx, `DELETE FROM vault_groups WHERE group_id=?`, groupID)
	return affected(res, err)
}

// --- Vault entries ---

type vaultEntries struct{ db *sql.DB }

func (v *vaultEntries) Create(ctx context.Context, m *model.VaultEntry) (*model.VaultEntry, error) {
	out := *m
	out.EntryID = orNewID(m.EntryID)
	out.CreationTime = now()
	_, err := v.db.ExecContext(ctx, `
        INSERT INTO vault_entries (entry_id, group_id, title, username, password_ciphertext, url, notes, creation_time)
        VALUES (?,?,?,?,?,?,?,?)
    `, out.EntryID, out.GroupID, out.Title, out.Username, out.Password, out.URL, out.Notes, out.CreationTime)
	if err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (v *vaultEntries) GetByID(ctx context.Context, entryID string) (*model.VaultEntry, error) {
	var out model.VaultEntry
	row := v.db.QueryRowContext(ctx, `
        SELECT entry_id, group_id, title, username, password_ciphertext, url, notes, creation_time
        FROM vault_entries WHERE entry_id=?
    `, entryID)
	if err := row.Scan(&out.EntryID, &out.GroupID, &out.Title, &out.Username, &out.Password, &out.URL, &out.Notes, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (v *vaultEntries) ListByGroup(ctx context.Context, groupID string) ([]*model.VaultEntry, error) {
	rows, err := v.db.QueryContext(ctx, `
        SELECT entry_id, group_id, title, username, password_ciphertext, url, notes, creation_time
        FROM vault_entries WHERE group_id=? ORDER BY creation_time DESC
    `, groupID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.VaultEntry
	for rows.Next() {
		var m model.VaultEntry
		if err := rows.Scan(&m.EntryID, &m.GroupID, &m.Title, &m.Username, &m.Password, &m.URL, &m.Notes, &m.CreationTime); err != nil {
			return nil, err
		}
		res = append(res, &m)
	}
	return res, rows.Err()
}

func (v *vaultEntries) Update(ctx context.Context, m *model.VaultEntry) (*model.VaultEntry, error) {
	res, err := v.db.ExecContext(ctx, `
        UPDATE vault_entries SET title=?, username=?, password_ciphertext=?, url=?, notes=?
        WHERE entry_id=?
    `, m.Title, m.Username, m.Password, m.URL, m.Notes, m.EntryID)
	if err := affected(res, err); err != nil {
		return nil, err
	}
	return v.GetByID(ctx, m.EntryID)
}

func (v *vaultEntries) Delete(ctx context.Context, entryID string) error {
	res, err := v.db.ExecContext(ctx, `DELETE FROM vault_entries WHERE entry_id=?`, entryID)
	return affected(res, err)
}

// --- Memberships ---

type members struct {
	db          *sql.DB
	table       string
	resourceCol string
}

func (m *members) cols() string {
	return fmt.Sprintf("member_id, %s, user_id, invited_by, status, can_edit, can_create, can_delete, creation_time", m.resourceCol)
}

func (m *members) scan(row interface{ Scan(...any) error }) (*model.Membership, error) {
	var out model.Membership
	var status string
	if err := row.Scan(&out.MemberID, &out.ResourceID, &out.UserID, &out.InvitedBy, &status,
		&out.CanEdit, &out.CanCreate, &out.CanDelete, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	out.Status = model.MemberStatus(status)
	return &out, nil
}

func (m *members) Create(ctx context.Context, mm *model.Membership) (*model.Membership, error) {
	out := *mm
	out.MemberID = orNewID(mm.MemberID)
	out.CreationTime = now()
	q := fmt.Sprintf(`
        INSERT INTO %s (member_id, %s, user_id, invited_by, status, can_edit, can_create, can_delete, creation_time)
        VALUES (?,?,?,?,?,?,?,?,?)
    `, m.table, m.resourceCol)
	_, err := m.db.ExecContext(ctx, q, out.MemberID, out.ResourceID, out.UserID, out.InvitedBy,
		string(out.Status), out.CanEdit, out.CanCreate, out.CanDelete, out.CreationTime)
	if err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (m *members) Get(ctx context.Context, resourceID, userID string) (*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s=? AND user_id=?`, m.cols(), m.table, m.resourceCol)
	return m.scan(m.db.QueryRowContext(ctx, q, resourceID, userID))
}

func (m *members) GetByID(ctx context.Context, memberID string) (*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE member_id=?`, m.cols(), m.table)
	return m.scan(m.db.QueryRowContext(ctx, q, memberID))
}

func (m *members) GetActive(ctx context.Context, resourceID, userID string) (*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s=? AND user_id=? AND status='active'`, m.cols(), m.table, m.resourceCol)
	return m.scan(m.db.QueryRowContext(ctx, q, resourceID, userID))
}

func (m *members) list(ctx context.Context, q string, args ...any) ([]*model.Membership, error) {
	rows, err := m.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []*model.Membership
	for rows.Next() {
		mm, err := m.scan(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, mm)
	}
	return res, rows.Err()
}

func (m *members) ListByResource(ctx context.Context, resourceID string) ([]*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s=? ORDER BY creation_time`, m.cols(), m.table, m.resourceCol)
	return m.list(ctx, q, resourceID)
}

func (m *members) ListPendingByUser(ctx context.Context, userID string) ([]*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id=? AND status='pending' ORDER BY creation_time`, m.cols(), m.table)
	return m.list(ctx, q, userID)
}

func (m *members) ListActiveByUser(ctx context.Context, userID string) ([]*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id=? AND status='active' ORDER BY creation_time`, m.cols(), m.table)
	return m.list(ctx, q, userID)
}

func (m *members) SetStatus(ctx context.Context, memberID string, s model.MemberStatus) error {
	q := fmt.Sprintf(`UPDATE %s SET status=? WHERE member_id=?`, m.table)
	res, err := m.db.ExecContext(ctx, q, string(s), memberID)
	return affected(res, err)
}

func (m *members) SetFlags(ctx context.Context, memberID string, f model.MemberFlags) error {
	q := fmt.Sprintf(`UPDATE %s SET can_edit=?, can_create=?, can_delete=? WHERE member_id=?`, m.table)
	res, err := m.db.ExecContext(ctx, q, f.CanEdit, f.CanCreate, f.CanDelete, memberID)
	return affected(res, err)
}

func (m *members) Delete(ctx context.Context, memberID string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE member_id=?`, m.table)
	res, err := m.db.ExecContext(ctx, q, memberID)
	return affected(res, err)
}

// --- API keys ---

type apiKeys struct{ db *sql.DB }

func (a *apiKeys) Create(ctx context.Context, k *model.NotebookAPIKey) (*model.NotebookAPIKey, error) {
	out := *k
	out.KeyID = orNewID(k.KeyID)
	out.CreationTime = now()
	_, err := a.db.ExecContext(ctx, `
        INSERT INTO notebook_api_keys (key_id, notebook_id, secret, permission, creation_time)
        VALUES (?,?,?,?,?)
    `, out.KeyID, out.NotebookID, out.Secret, string(out.Permission), out.CreationTime)
	if err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (a *apiKeys) GetByNotebook(ctx context.Context, notebookID string) (*model.NotebookAPIKey, error) {
	var out model.NotebookAPIKey
	var perm string
	row := a.db.QueryRowContext(ctx, `
        SELECT key_id, notebook_id, secret, permission, creation_time
        FROM notebook_api_keys WHERE notebook_id=?
    `, notebookID)
	if err := row.Scan(&out.KeyID, &out.NotebookID, &out.Secret, &perm, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	out.Permission = model.APIKeyPermission(perm)
	return &out, nil
}

func (a *apiKeys) Delete(ctx context.Context, keyID string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM notebook_api_keys WHERE key_id=?`, keyID)
	return affected(res, err)
}
