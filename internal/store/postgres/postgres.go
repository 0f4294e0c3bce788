package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/store"
)

// Open opens a PostgreSQL connection using the pgx stdlib driver and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New constructs a Postgres store backed directly by database/sql.
func New(db *sql.DB) store.Store { return &pgStore{db: db} }

type pgStore struct{ db *sql.DB }

func (s *pgStore) Users() store.Users               { return &users{db: s.db} }
func (s *pgStore) Notebooks() store.Notebooks       { return &notebooks{db: s.db} }
func (s *pgStore) Notes() store.Notes               { return &notes{db: s.db} }
func (s *pgStore) Tasks() store.Tasks               { return &tasks{db: s.db} }
func (s *pgStore) VaultGroups() store.VaultGroups   { return &vaultGroups{db: s.db} }
func (s *pgStore) VaultEntries() store.VaultEntries { return &vaultEntries{db: s.db} }
func (s *pgStore) NotebookMembers() store.Members {
	return &members{db: s.db, table: "notebook_members", resourceCol: "notebook_id"}
}
func (s *pgStore) VaultMembers() store.Members {
	return &members{db: s.db, table: "vault_members", resourceCol: "group_id"}
}
func (s *pgStore) APIKeys() store.APIKeys { return &apiKeys{db: s.db} }

// HealthPing reports whether Postgres is reachable.
func (s *pgStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// normalize maps driver errors to the model sentinels.
func normalize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
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

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	id := orNewID(m.UserID)
	var created time.Time
	row := u.db.QueryRowContext(ctx, `
        INSERT INTO users (user_id, email, display_name, password_hash)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, id, m.Email, m.DisplayName, m.PasswordHash)
	if err := row.Scan(&created); err != nil {
		return nil, normalize(err)
	}
	out := *m
	out.UserID = id
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID string) (*model.User, error) {
	var out model.User
	row := u.db.QueryRowContext(ctx, `
        SELECT user_id, email, display_name, password_hash, creation_time
        FROM users WHERE user_id=$1
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
        FROM users WHERE email=$1
    `, email)
	if err := row.Scan(&out.UserID, &out.Email, &out.DisplayName, &out.PasswordHash, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

// --- Notebooks ---

type notebooks struct{ db *sql.DB }

func (n *notebooks) Create(ctx context.Context, m *model.Notebook) (*model.Notebook, error) {
	id := orNewID(m.NotebookID)
	var created time.Time
	row := n.db.QueryRowContext(ctx, `
        INSERT INTO notebooks (notebook_id, owner_id, name)
        VALUES ($1,$2,$3)
        RETURNING creation_time
    `, id, m.OwnerID, m.Name)
	if err := row.Scan(&created); err != nil {
		return nil, normalize(err)
	}
	return &model.Notebook{NotebookID: id, OwnerID: m.OwnerID, Name: m.Name, CreationTime: created}, nil
}

func (n *notebooks) GetByID(ctx context.Context, notebookID string) (*model.Notebook, error) {
	var out model.Notebook
	row := n.db.QueryRowContext(ctx, `
        SELECT notebook_id, owner_id, name, creation_time FROM notebooks WHERE notebook_id=$1
    `, notebookID)
	if err := row.Scan(&out.NotebookID, &out.OwnerID, &out.Name, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (n *notebooks) OwnerID(ctx context.Context, notebookID string) (string, error) {
	var owner string
	row := n.db.QueryRowContext(ctx, `SELECT owner_id FROM notebooks WHERE notebook_id=$1`, notebookID)
	if err := row.Scan(&owner); err != nil {
		return "", normalize(err)
	}
	return owner, nil
}

func (n *notebooks) ListByOwner(ctx context.Context, userID string) ([]*model.Notebook, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT notebook_id, owner_id, name, creation_time
        FROM notebooks WHERE owner_id=$1 ORDER BY creation_time DESC
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
	res, err := n.db.ExecContext(ctx, `UPDATE notebooks SET name=$1 WHERE notebook_id=$2`, name, notebookID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (n *notebooks) Delete(ctx context.Context, notebookID string) error {
	// Notes, tasks, memberships and API keys go with the notebook via FK cascade.
	res, err := n.db.ExecContext(ctx, `DELETE FROM notebooks WHERE notebook_id=$1`, notebookID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Notes ---

type notes struct{ db *sql.DB }

func (n *notes) Create(ctx context.Context, m *model.Note) (*model.Note, error) {
	id := orNewID(m.NoteID)
	var created time.Time
	row := n.db.QueryRowContext(ctx, `
        INSERT INTO notes (note_id, notebook_id, title, body)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, id, m.NotebookID, m.Title, m.Body)
	if err := row.Scan(&created); err != nil {
		return nil, normalize(err)
	}
	out := *m
	out.NoteID = id
	out.CreationTime = created
	out.UpdateTime = created
	return &out, nil
}

func (n *notes) GetByID(ctx context.Context, noteID string) (*model.Note, error) {
	var out model.Note
	row := n.db.QueryRowContext(ctx, `
        SELECT note_id, notebook_id, title, body, creation_time, update_time
        FROM notes WHERE note_id=$1
    `, noteID)
	if err := row.Scan(&out.NoteID, &out.NotebookID, &out.Title, &out.Body, &out.CreationTime, &out.UpdateTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (n *notes) ListByNotebook(ctx context.Context, notebookID string) ([]*model.Note, error) {
	rows, err := n.db.QueryContext(ctx, `
        SELECT note_id, notebook_id, title, body, creation_time, update_time
        FROM notes WHERE notebook_id=$1 ORDER BY creation_time DESC
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
        UPDATE notes SET title=$1, body=$2, update_time=now() WHERE note_id=$3
    `, title, body, noteID)
	if err != nil {
		return nil, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return nil, model.ErrNotFound
	}
	return n.GetByID(ctx, noteID)
}

func (n *notes) Delete(ctx context.Context, noteID string) error {
	res, err := n.db.ExecContext(ctx, `DELETE FROM notes WHERE note_id=$1`, noteID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Tasks ---

type tasks struct{ db *sql.DB }

func (t *tasks) Create(ctx context.Context, m *model.Task) (*model.Task, error) {
	id := orNewID(m.TaskID)
	var created time.Time
	row := t.db.QueryRowContext(ctx, `
        INSERT INTO tasks (task_id, notebook_id, title, done, due_date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING creation_time
    `, id, m.NotebookID, m.Title, m.Done, m.DueDate)
	if err := row.Scan(&created); err != nil {
		return nil, normalize(err)
	}
	out := *m
	out.TaskID = id
	out.CreationTime = created
	return &out, nil
}

func (t *tasks) GetByID(ctx context.Context, taskID string) (*model.Task, error) {
	var out model.Task
	row := t.db.QueryRowContext(ctx, `
        SELECT task_id, notebook_id, title, done, due_date, creation_time
        FROM tasks WHERE task_id=$1
    `, taskID)
	if err := row.Scan(&out.TaskID, &out.NotebookID, &out.Title, &out.Done, &out.DueDate, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (t *tasks) ListByNotebook(ctx context.Context, notebookID string) ([]*model.Task, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT task_id, notebook_id, title, done, due_date, creation_time
        FROM tasks WHERE notebook_id=$1 ORDER BY creation_time DESC
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
        UPDATE tasks SET title=$1, done=$2, due_date=$3 WHERE task_id=$4
    `, m.Title, m.Done, m.DueDate, m.TaskID)
	if err != nil {
		return nil, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return nil, model.ErrNotFound
	}
	return t.GetByID(ctx, m.TaskID)
}

func (t *tasks) Delete(ctx context.Context, taskID string) error {
	res, err := t.db.ExecContext(ctx, `DELETE FROM tasks WHERE task_id=$1`, taskID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Vault groups ---

type vaultGroups struct{ db *sql.DB }

func (v *vaultGroups) Create(ctx context.Context, m *model.VaultGroup) (*model.VaultGroup, error) {
	id := orNewID(m.GroupID)
	var created time.Time
	row := v.db.QueryRowContext(ctx, `
        INSERT INTO vault_groups (group_id, owner_id, name)
        VALUES ($1,$2,$3)
        RETURNING creation_time
    `, id, m.OwnerID, m.Name)
	if err := row.Scan(&created); err != nil {
		return nil, normalize(err)
	}
	return &model.VaultGroup{GroupID: id, OwnerID: m.OwnerID, Name: m.Name, CreationTime: created}, nil
}

func (v *vaultGroups) GetByID(ctx context.Context, groupID string) (*model.VaultGroup, error) {
	var out model.VaultGroup
	row := v.db.QueryRowContext(ctx, `
        SELECT group_id, owner_id, name, creation_time FROM vault_groups WHERE group_id=$1
    `, groupID)
	if err := row.Scan(&out.GroupID, &out.OwnerID, &out.Name, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (v *vaultGroups) OwnerID(ctx context.Context, groupID string) (string, error) {
	var owner string
	row := v.db.QueryRowContext(ctx, `SELECT owner_id FROM vault_groups WHERE group_id=$1`, groupID)
	if err := row.Scan(&owner); err != nil {
		return "", normalize(err)
	}
	return owner, nil
}

func (v *vaultGroups) ListByOwner(ctx context.Context, userID string) ([]*model.VaultGroup, error) {
	rows, err := v.db.QueryContext(ctx, `
        SELECT group_id, owner_id, name, creation_time
        FROM vault_groups WHERE owner_id=$1 ORDER BY creation_time DESC
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
	res, err := v.db.ExecContext(ctx, `UPDATE vault_groups SET name=$1 WHERE group_id=$2`, name, groupID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (v *vaultGroups) Delete(ctx context.Context, groupID string) error {
	res, err := v.db.ExecContext(ctx, `DELETE FROM vault_groups WHERE group_id=$1`, groupID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Vault entries ---

type vaultEntries struct{ db *sql.DB }

func (v *vaultEntries) Create(ctx context.Context, m *model.VaultEntry) (*model.VaultEntry, error) {
	id := orNewID(m.EntryID)
	var created time.Time
	row := v.db.QueryRowContext(ctx, `
        INSERT INTO vault_entries (entry_id, group_id, title, username, password_ciphertext, url, notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING creation_time
    `, id, m.GroupID, m.Title, m.Username, m.Password, m.URL, m.Notes)
	if err := row.Scan(&created); err != nil {
		return nil, normalize(err)
	}
	out := *m
	out.EntryID = id
	out.CreationTime = created
	return &out, nil
}

func (v *vaultEntries) GetByID(ctx context.Context, entryID string) (*model.VaultEntry, error) {
	var out model.VaultEntry
	row := v.db.QueryRowContext(ctx, `
        SELECT entry_id, group_id, title, username, password_ciphertext, url, notes, creation_time
        FROM vault_entries WHERE entry_id=$1
    `, entryID)
	if err := row.Scan(&out.EntryID, &out.GroupID, &out.Title, &out.Username, &out.Password, &out.URL, &out.Notes, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	return &out, nil
}

func (v *vaultEntries) ListByGroup(ctx context.Context, groupID string) ([]*model.VaultEntry, error) {
	rows, err := v.db.QueryContext(ctx, `
        SELECT entry_id, group_id, title, username, password_ciphertext, url, notes, creation_time
        FROM vault_entries WHERE group_id=$1 ORDER BY creation_time DESC
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
        UPDATE vault_entries SET title=$1, username=$2, password_ciphertext=$3, url=$4, notes=$5
        WHERE entry_id=$6
    `, m.Title, m.Username, m.Password, m.URL, m.Notes, m.EntryID)
	if err != nil {
		return nil, err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return nil, model.ErrNotFound
	}
	return v.GetByID(ctx, m.EntryID)
}

func (v *vaultEntries) Delete(ctx context.Context, entryID string) error {
	res, err := v.db.ExecContext(ctx, `DELETE FROM vault_entries WHERE entry_id=$1`, entryID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- Memberships ---

// members serves both notebook_members and vault_members; the two tables
// share a shape and differ only in name and resource column.
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
	id := orNewID(mm.MemberID)
	var created time.Time
	q := fmt.Sprintf(`
        INSERT INTO %s (member_id, %s, user_id, invited_by, status, can_edit, can_create, can_delete)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING creation_time
    `, m.table, m.resourceCol)
	row := m.db.QueryRowContext(ctx, q, id, mm.ResourceID, mm.UserID, mm.InvitedBy, string(mm.Status),
		mm.CanEdit, mm.CanCreate, mm.CanDelete)
	if err := row.Scan(&created); err != nil {
		return nil, normalize(err)
	}
	out := *mm
	out.MemberID = id
	out.CreationTime = created
	return &out, nil
}

func (m *members) Get(ctx context.Context, resourceID, userID string) (*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s=$1 AND user_id=$2`, m.cols(), m.table, m.resourceCol)
	return m.scan(m.db.QueryRowContext(ctx, q, resourceID, userID))
}

func (m *members) GetByID(ctx context.Context, memberID string) (*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE member_id=$1`, m.cols(), m.table)
	return m.scan(m.db.QueryRowContext(ctx, q, memberID))
}

func (m *members) GetActive(ctx context.Context, resourceID, userID string) (*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s=$1 AND user_id=$2 AND status='active'`, m.cols(), m.table, m.resourceCol)
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
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE %s=$1 ORDER BY creation_time`, m.cols(), m.table, m.resourceCol)
	return m.list(ctx, q, resourceID)
}

func (m *members) ListPendingByUser(ctx context.Context, userID string) ([]*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id=$1 AND status='pending' ORDER BY creation_time`, m.cols(), m.table)
	return m.list(ctx, q, userID)
}

func (m *members) ListActiveByUser(ctx context.Context, userID string) ([]*model.Membership, error) {
	q := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id=$1 AND status='active' ORDER BY creation_time`, m.cols(), m.table)
	return m.list(ctx, q, userID)
}

func (m *members) SetStatus(ctx context.Context, memberID string, s model.MemberStatus) error {
	q := fmt.Sprintf(`UPDATE %s SET status=$1 WHERE member_id=$2`, m.table)
	res, err := m.db.ExecContext(ctx, q, string(s), memberID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (m *members) SetFlags(ctx context.Context, memberID string, f model.MemberFlags) error {
	q := fmt.Sprintf(`UPDATE %s SET can_edit=$1, can_create=$2, can_delete=$3 WHERE member_id=$4`, m.table)
	res, err := m.db.ExecContext(ctx, q, f.CanEdit, f.CanCreate, f.CanDelete, memberID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (m *members) Delete(ctx context.Context, memberID string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE member_id=$1`, m.table)
	res, err := m.db.ExecContext(ctx, q, memberID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- API keys ---

type apiKeys struct{ db *sql.DB }

func (a *apiKeys) Create(ctx context.Context, k *model.NotebookAPIKey) (*model.NotebookAPIKey, error) {
	id := orNewID(k.KeyID)
	var created time.Time
	row := a.db.QueryRowContext(ctx, `
        INSERT INTO notebook_api_keys (key_id, notebook_id, secret, permission)
        VALUES ($1,$2,$3,$4)
        RETURNING creation_time
    `, id, k.NotebookID, k.Secret, string(k.Permission))
	if err := row.Scan(&created); err != nil {
		return nil, normalize(err)
	}
	out := *k
	out.KeyID = id
	out.CreationTime = created
	return &out, nil
}

func (a *apiKeys) GetByNotebook(ctx context.Context, notebookID string) (*model.NotebookAPIKey, error) {
	var out model.NotebookAPIKey
	var perm string
	row := a.db.QueryRowContext(ctx, `
        SELECT key_id, notebook_id, secret, permission, creation_time
        FROM notebook_api_keys WHERE notebook_id=$1
    `, notebookID)
	if err := row.Scan(&out.KeyID, &out.NotebookID, &out.Secret, &perm, &out.CreationTime); err != nil {
		return nil, normalize(err)
	}
	out.Permission = model.APIKeyPermission(perm)
	return &out, nil
}

func (a *apiKeys) Delete(ctx context.Context, keyID string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM notebook_api_keys WHERE key_id=$1`, keyID)
	if err != nil {
		return err
	}
	if cnt, _ := res.RowsAffected(); cnt == 0 {
		return model.ErrNotFound
	}
	return nil
}
