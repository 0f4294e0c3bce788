package share

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/noteloft/noteloft-server/internal/model"
)

// --- Fakes ---

type fakeOwners struct {
	owners map[string]string // resourceID -> ownerID
}

func (f *fakeOwners) OwnerID(_ context.Context, resourceID string) (string, error) {
	if o, ok := f.owners[resourceID]; ok {
		return o, nil
	}
	return "", model.ErrNotFound
}

type fakeMembers struct {
	rows map[string]*model.Membership // memberID -> row
}

func newFakeMembers() *fakeMembers {
	return &fakeMembers{rows: map[string]*model.Membership{}}
}

func (f *fakeMembers) Create(_ context.Context, m *model.Membership) (*model.Membership, error) {
	for _, r := range f.rows {
		if r.ResourceID == m.ResourceID && r.UserID == m.UserID {
			return nil, model.ErrConflict
		}
	}
	cp := *m
	cp.MemberID = uuid.New().String()
	f.rows[cp.MemberID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeMembers) Get(_ context.Context, resourceID, userID string) (*model.Membership, error) {
	for _, r := range f.rows {
		if r.ResourceID == resourceID && r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (f *fakeMembers) GetByID(_ context.Context, memberID string) (*model.Membership, error) {
	if r, ok := f.rows[memberID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, model.ErrNotFound
}

func (f *fakeMembers) GetActive(ctx context.Context, resourceID, userID string) (*model.Membership, error) {
	m, err := f.Get(ctx, resourceID, userID)
	if err != nil || m.Status != model.MemberActive {
		return nil, model.ErrNotFound
	}
	return m, nil
}

func (f *fakeMembers) ListByResource(_ context.Context, resourceID string) ([]*model.Membership, error) {
	var out []*model.Membership
	for _, r := range f.rows {
		if r.ResourceID == resourceID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMembers) ListPendingByUser(_ context.Context, userID string) ([]*model.Membership, error) {
	var out []*model.Membership
	for _, r := range f.rows {
		if r.UserID == userID && r.Status == model.MemberPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeMembers) SetStatus(_ context.Context, memberID string, s model.MemberStatus) error {
	r, ok := f.rows[memberID]
	if !ok {
		return model.ErrNotFound
	}
	r.Status = s
	return nil
}

func (f *fakeMembers) SetFlags(_ context.Context, memberID string, fl model.MemberFlags) error {
	r, ok := f.rows[memberID]
	if !ok {
		return model.ErrNotFound
	}
	r.MemberFlags = fl
	return nil
}

func (f *fakeMembers) Delete(_ context.Context, memberID string) error {
	if _, ok := f.rows[memberID]; !ok {
		return model.ErrNotFound
	}
	delete(f.rows, memberID)
	return nil
}

type fakeUsers struct {
	byEmail map[string]*model.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, model.ErrNotFound
}

func fixture() (*Checker, *Lifecycle, *fakeMembers) {
	owners := &fakeOwners{owners: map[string]string{"r1": "alice"}}
	members := newFakeMembers()
	users := &fakeUsers{byEmail: map[string]*model.User{
		"alice@example.test": {UserID: "alice", Email: "alice@example.test"},
		"bob@example.test":   {UserID: "bob", Email: "bob@example.test"},
	}}
	c := NewChecker(owners, members)
	return c, NewLifecycle(c, members, users), members
}

// --- Checker ---

func TestOwnerBypassesCapabilityChecks(t *testing.T) {
	c, _, _ := fixture()
	ctx := context.Background()

	for _, cap := range []model.Capability{"", model.CapabilityEdit, model.CapabilityCreate, model.CapabilityDelete} {
		acc, err := c.check(ctx, "r1", "alice", cap)
		if err != nil {
			t.Fatalf("check(%q): %v", cap, err)
		}
		if !acc.Allowed || !acc.IsOwner {
			t.Fatalf("check(%q): owner should always pass, got %+v", cap, acc)
		}
	}
}

func TestNoMembershipDenies(t *testing.T) {
	c, _, _ := fixture()
	acc, err := c.Check(context.Background(), "r1", "bob")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if acc.Allowed || acc.IsOwner {
		t.Fatalf("stranger should be denied, got %+v", acc)
	}
}

func TestMissingResourceDeniedSameAsNoAccess(t *testing.T) {
	c, _, _ := fixture()
	ctx := context.Background()

	missing, err := c.Check(ctx, "no-such-resource", "bob")
	if err != nil {
		t.Fatalf("Check missing: %v", err)
	}
	denied, err := c.Check(ctx, "r1", "bob")
	if err != nil {
		t.Fatalf("Check denied: %v", err)
	}
	if missing != denied {
		t.Fatalf("missing resource must be indistinguishable from denial: %+v vs %+v", missing, denied)
	}
}

func TestAnonymousAlwaysDenied(t *testing.T) {
	c, _, _ := fixture()
	acc, err := c.Check(context.Background(), "r1", "")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if acc.Allowed {
		t.Fatalf("anonymous caller must be denied")
	}
}

func TestPendingMembershipConfersNothing(t *testing.T) {
	c, lc, _ := fixture()
	ctx := context.Background()

	m, err := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{CanEdit: true, CanCreate: true, CanDelete: true})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if m.Status != model.MemberPending {
		t.Fatalf("invite should create pending row, got %s", m.Status)
	}
	for _, cap := range []model.Capability{"", model.CapabilityEdit, model.CapabilityCreate, model.CapabilityDelete} {
		if acc, _ := c.check(ctx, "r1", "bob", cap); acc.Allowed {
			t.Fatalf("pending member must have zero capabilities (cap=%q)", cap)
		}
	}
}

func TestCapabilityIndependence(t *testing.T) {
	c, lc, _ := fixture()
	ctx := context.Background()

	m, err := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{CanCreate: true})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if err := lc.Respond(ctx, "bob", m.MemberID, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if acc, _ := c.Require(ctx, "r1", "bob", model.CapabilityCreate); !acc.Allowed {
		t.Fatalf("canCreate=true must grant create")
	}
	if acc, _ := c.Require(ctx, "r1", "bob", model.CapabilityEdit); acc.Allowed {
		t.Fatalf("canCreate must not imply edit")
	}
	if acc, _ := c.Require(ctx, "r1", "bob", model.CapabilityDelete); acc.Allowed {
		t.Fatalf("canCreate must not imply delete")
	}
	if acc, _ := c.Check(ctx, "r1", "bob"); !acc.Allowed {
		t.Fatalf("active membership must grant capability-less read check")
	}
}

// --- Lifecycle ---

func TestInviteRequiresOwner(t *testing.T) {
	_, lc, _ := fixture()
	if _, err := lc.Invite(context.Background(), "bob", "r1", "alice@example.test", model.MemberFlags{}); err != model.ErrUnauthorized {
		t.Fatalf("non-owner invite: want ErrUnauthorized, got %v", err)
	}
}

func TestSelfInviteConflicts(t *testing.T) {
	_, lc, _ := fixture()
	_, err := lc.Invite(context.Background(), "alice", "r1", "alice@example.test", model.MemberFlags{})
	assertIs(t, err, model.ErrConflict)
}

func TestDuplicateInviteConflictsAndLeavesOneRow(t *testing.T) {
	_, lc, members := fixture()
	ctx := context.Background()

	if _, err := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{}); err != nil {
		t.Fatalf("first invite: %v", err)
	}
	_, err := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{})
	assertIs(t, err, model.ErrConflict)
	if n := len(members.rows); n != 1 {
		t.Fatalf("want exactly one membership row, got %d", n)
	}
}

func TestInviteUnknownEmailNotFound(t *testing.T) {
	_, lc, _ := fixture()
	_, err := lc.Invite(context.Background(), "alice", "r1", "nobody@example.test", model.MemberFlags{})
	assertIs(t, err, model.ErrNotFound)
}

func TestAcceptFlipsCapability(t *testing.T) {
	c, lc, _ := fixture()
	ctx := context.Background()

	m, err := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{CanEdit: true})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if acc, _ := c.Require(ctx, "r1", "bob", model.CapabilityEdit); acc.Allowed {
		t.Fatalf("edit must be denied before accept")
	}
	if err := lc.Respond(ctx, "bob", m.MemberID, true); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if acc, _ := c.Require(ctx, "r1", "bob", model.CapabilityEdit); !acc.Allowed {
		t.Fatalf("edit must be granted after accept")
	}
}

func TestRejectDeletesRow(t *testing.T) {
	_, lc, members := fixture()
	ctx := context.Background()

	m, _ := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{})
	if err := lc.Respond(ctx, "bob", m.MemberID, false); err != nil {
		t.Fatalf("Respond reject: %v", err)
	}
	if len(members.rows) != 0 {
		t.Fatalf("reject must delete the row")
	}
}

func TestRespondForeignInvitationNotFound(t *testing.T) {
	_, lc, _ := fixture()
	ctx := context.Background()

	m, _ := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{})
	if err := lc.Respond(ctx, "mallory", m.MemberID, true); err != model.ErrNotFound {
		t.Fatalf("foreign respond: want ErrNotFound, got %v", err)
	}
	if err := lc.Respond(ctx, "bob", "no-such-member", true); err != model.ErrNotFound {
		t.Fatalf("missing respond: want ErrNotFound, got %v", err)
	}
}

func TestRespondTwiceNotFound(t *testing.T) {
	_, lc, _ := fixture()
	ctx := context.Background()

	m, _ := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{})
	if err := lc.Respond(ctx, "bob", m.MemberID, true); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := lc.Respond(ctx, "bob", m.MemberID, true); err != model.ErrNotFound {
		t.Fatalf("second accept: want ErrNotFound, got %v", err)
	}
}

func TestUpdateFlagsOwnerOnly(t *testing.T) {
	c, lc, _ := fixture()
	ctx := context.Background()

	m, _ := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{CanEdit: true})
	_ = lc.Respond(ctx, "bob", m.MemberID, true)

	if _, err := lc.UpdateFlags(ctx, "bob", m.MemberID, model.MemberFlags{CanDelete: true}); err != model.ErrUnauthorized {
		t.Fatalf("non-owner update: want ErrUnauthorized, got %v", err)
	}
	upd, err := lc.UpdateFlags(ctx, "alice", m.MemberID, model.MemberFlags{CanDelete: true})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if upd.CanEdit || !upd.CanDelete {
		t.Fatalf("flags not rewritten: %+v", upd.MemberFlags)
	}
	if acc, _ := c.Require(ctx, "r1", "bob", model.CapabilityEdit); acc.Allowed {
		t.Fatalf("edit should be revoked after flag update")
	}
}

func TestRevokeActiveMembershipDeniesFurtherAccess(t *testing.T) {
	c, lc, _ := fixture()
	ctx := context.Background()

	m, _ := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{CanEdit: true})
	_ = lc.Respond(ctx, "bob", m.MemberID, true)
	if acc, _ := c.Check(ctx, "r1", "bob"); !acc.Allowed {
		t.Fatalf("precondition: bob should be active")
	}

	if err := lc.Remove(ctx, "bob", m.MemberID); err != model.ErrUnauthorized {
		t.Fatalf("non-owner revoke: want ErrUnauthorized, got %v", err)
	}
	if err := lc.Remove(ctx, "alice", m.MemberID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if acc, _ := c.Check(ctx, "r1", "bob"); acc.Allowed {
		t.Fatalf("revoked member must be denied")
	}
}

func TestRevokePendingInvite(t *testing.T) {
	_, lc, members := fixture()
	ctx := context.Background()

	m, _ := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{})
	if err := lc.Remove(ctx, "alice", m.MemberID); err != nil {
		t.Fatalf("revoking a pending invite must succeed: %v", err)
	}
	if len(members.rows) != 0 {
		t.Fatalf("row should be gone")
	}
}

func TestLeave(t *testing.T) {
	c, lc, _ := fixture()
	ctx := context.Background()

	m, _ := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{CanEdit: true})
	_ = lc.Respond(ctx, "bob", m.MemberID, true)

	if err := lc.Leave(ctx, "bob", "r1"); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if acc, _ := c.Check(ctx, "r1", "bob"); acc.Allowed {
		t.Fatalf("member who left must be denied")
	}
	// Owners have no membership row; leaving your own resource is not found.
	if err := lc.Leave(ctx, "alice", "r1"); err != model.ErrNotFound {
		t.Fatalf("owner leave: want ErrNotFound, got %v", err)
	}
	if err := lc.Leave(ctx, "mallory", "r1"); err != model.ErrNotFound {
		t.Fatalf("stranger leave: want ErrNotFound, got %v", err)
	}
}

func TestSharingScenario(t *testing.T) {
	// Owner A invites B with edit-only flags; B accepts, can edit but not
	// create; A revokes; B can do nothing.
	c, lc, _ := fixture()
	ctx := context.Background()

	m, err := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{CanEdit: true})
	if err != nil {
		t.Fatalf("Invite: %v", err)
	}
	if m.Status != model.MemberPending {
		t.Fatalf("want pending, got %s", m.Status)
	}
	if err := lc.Respond(ctx, "bob", m.MemberID, true); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if acc, _ := c.Require(ctx, "r1", "bob", model.CapabilityCreate); acc.Allowed {
		t.Fatalf("create must be denied")
	}
	if acc, _ := c.Require(ctx, "r1", "bob", model.CapabilityEdit); !acc.Allowed {
		t.Fatalf("edit must be allowed")
	}
	if err := lc.Remove(ctx, "alice", m.MemberID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if acc, _ := c.Require(ctx, "r1", "bob", model.CapabilityEdit); acc.Allowed {
		t.Fatalf("edit must be denied after revoke")
	}
}

func TestListMembersOwnerOnly(t *testing.T) {
	_, lc, _ := fixture()
	ctx := context.Background()

	m, _ := lc.Invite(ctx, "alice", "r1", "bob@example.test", model.MemberFlags{})
	_ = lc.Respond(ctx, "bob", m.MemberID, true)

	if _, err := lc.ListMembers(ctx, "bob", "r1"); err != model.ErrUnauthorized {
		t.Fatalf("member list by non-owner: want ErrUnauthorized, got %v", err)
	}
	lst, err := lc.ListMembers(ctx, "alice", "r1")
	if err != nil || len(lst) != 1 {
		t.Fatalf("ListMembers: n=%d err=%v", len(lst), err)
	}
}

func assertIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("want error %v, got %v", target, err)
	}
}
