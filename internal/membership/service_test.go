package membership

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/club"
	"github.com/alecgard/clubhive/internal/user"
)

// --- fakes ---

type fakeRepo struct {
	clubs map[string]bool
	rows  map[string]*Membership // "user|club"
	clock time.Time
}

func newFakeRepo(clubIDs ...string) *fakeRepo {
	f := &fakeRepo{clubs: map[string]bool{}, rows: map[string]*Membership{}, clock: time.Unix(1700000000, 0)}
	for _, id := range clubIDs {
		f.clubs[id] = true
	}
	return f
}

func key(userID, clubID string) string { return userID + "|" + clubID }

func (f *fakeRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeRepo) put(userID, clubID string, role Role, status Status) {
	now := f.tick()
	f.rows[key(userID, clubID)] = &Membership{
		ID: "m-" + userID + "-" + clubID, UserID: userID, ClubID: clubID,
		Role: role, Status: status, CreatedAt: now, UpdatedAt: now,
	}
}

func (f *fakeRepo) IsApprovedBoardMember(ctx context.Context, userID, clubID string) (bool, error) {
	m, ok := f.rows[key(userID, clubID)]
	return ok && m.HoldsBoardSeat(), nil
}

func (f *fakeRepo) RequestJoin(ctx context.Context, userID, clubID string) (*Membership, error) {
	if !f.clubs[clubID] {
		return nil, ErrClubNotFound
	}
	if m, ok := f.rows[key(userID, clubID)]; ok && m.Status != StatusRejected {
		return nil, ErrAlreadyMember
	}
	f.put(userID, clubID, DefaultRole(), StatusPending)
	cp := *f.rows[key(userID, clubID)]
	return &cp, nil
}

func (f *fakeRepo) Get(ctx context.Context, userID, clubID string) (*Membership, error) {
	m, ok := f.rows[key(userID, clubID)]
	if !ok {
		return nil, ErrMembershipNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepo) otherBoardSeats(userID, clubID string) int {
	n := 0
	for _, m := range f.rows {
		if m.ClubID == clubID && m.UserID != userID && m.HoldsBoardSeat() {
			n++
		}
	}
	return n
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, userID, clubID string, status Status, guard bool) (*Membership, error) {
	if !f.clubs[clubID] {
		return nil, ErrClubNotFound
	}
	m, ok := f.rows[key(userID, clubID)]
	if !ok {
		return nil, ErrMembershipNotFound
	}
	if guard && status != StatusApproved && m.HoldsBoardSeat() && f.otherBoardSeats(userID, clubID) == 0 {
		return nil, ErrLastBoardMember
	}
	m.Status = status
	m.UpdatedAt = f.tick()
	cp := *m
	return &cp, nil
}

func (f *fakeRepo) UpsertRole(ctx context.Context, userID, clubID string, role Role) (*Membership, error) {
	if m, ok := f.rows[key(userID, clubID)]; ok {
		m.Role = role
		m.Status = StatusApproved
	} else {
		f.put(userID, clubID, role, StatusApproved)
	}
	cp := *f.rows[key(userID, clubID)]
	return &cp, nil
}

func (f *fakeRepo) Delete(ctx context.Context, userID, clubID string, guard bool) error {
	m, ok := f.rows[key(userID, clubID)]
	if !ok {
		return ErrMembershipNotFound
	}
	if guard && m.HoldsBoardSeat() && f.otherBoardSeats(userID, clubID) == 0 {
		return ErrLastBoardMember
	}
	delete(f.rows, key(userID, clubID))
	return nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID string, statuses ...Status) ([]*Membership, error) {
	want := map[Status]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	out := []*Membership{}
	for _, m := range f.rows {
		if m.UserID == userID && (len(want) == 0 || want[m.Status]) {
			out = append(out, m)
		}
	}
	// newest first
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.After(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByClub(ctx context.Context, clubID string, status Status) ([]*Membership, error) {
	out := []*Membership{}
	for _, m := range f.rows {
		if m.ClubID == clubID && m.Status == status {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeClubs map[string]bool

func (f fakeClubs) GetByID(ctx context.Context, id string) (*club.Club, error) {
	if !f[id] {
		return nil, apperr.NotFound("club not found")
	}
	return &club.Club{ID: id}, nil
}

type fakeUsers map[string]bool

func (f fakeUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	if !f[id] {
		return nil, apperr.NotFound("user not found")
	}
	return &user.User{ID: id}, nil
}

var (
	admin    = &auth.User{ID: "admin", Role: auth.RoleAdmin}
	board    = &auth.User{ID: "board", Role: auth.RoleMember}
	member   = &auth.User{ID: "member", Role: auth.RoleMember}
	stranger = &auth.User{ID: "stranger", Role: auth.RoleClubHead}
)

func boardRole(t *testing.T, title Title) Role {
	t.Helper()
	r, err := NewRole(TierBoard, title)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// newFixture builds club C with approved board member "board", approved
// member "member" and a pending request from "stranger".
func newFixture(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo("C", "D")
	repo.put("board", "C", boardRole(t, TitlePresident), StatusApproved)
	repo.put("member", "C", DefaultRole(), StatusApproved)
	repo.put("stranger", "C", DefaultRole(), StatusPending)
	svc := NewService(repo,
		fakeClubs{"C": true, "D": true},
		fakeUsers{"admin": true, "board": true, "member": true, "stranger": true})
	return svc, repo
}

// --- RequestJoin ---

func TestRequestJoin(t *testing.T) {
	svc, repo := newFixture(t)
	ctx := context.Background()

	m, err := svc.RequestJoin(ctx, member, "D")
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != StatusPending || m.Role != DefaultRole() {
		t.Errorf("expected pending default membership, got %s %s/%s", m.Status, m.Role.Tier(), m.Role.Title())
	}

	if _, err := svc.RequestJoin(ctx, member, "D"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("second request while pending: expected conflict, got %v", err)
	}
	if _, err := svc.RequestJoin(ctx, board, "C"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("request while approved: expected conflict, got %v", err)
	}
	if _, err := svc.RequestJoin(ctx, member, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown club: expected not found, got %v", err)
	}

	repo.rows[key("member", "D")].Status = StatusRejected
	again, err := svc.RequestJoin(ctx, member, "D")
	if err != nil {
		t.Fatalf("request after rejection should succeed: %v", err)
	}
	if again.Status != StatusPending {
		t.Errorf("expected pending after re-request, got %s", again.Status)
	}
}

// --- Decide ---

func TestDecide_Authorization(t *testing.T) {
	tests := []struct {
		name    string
		actor   *auth.User
		wantErr error
	}{
		{"admin", admin, nil},
		{"board of club", board, nil},
		{"plain member", member, apperr.ErrForbidden},
		{"club_head global role", stranger, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newFixture(t)
			_, err := svc.Decide(context.Background(), tt.actor, "C", "stranger", StatusApproved)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDecide_Idempotent(t *testing.T) {
	svc, repo := newFixture(t)
	ctx := context.Background()

	first, err := svc.Decide(ctx, board, "C", "stranger", StatusApproved)
	if err != nil {
		t.Fatal(err)
	}
	if first.Previous != StatusPending || first.Membership.Status != StatusApproved {
		t.Errorf("unexpected first decision %+v", first)
	}
	afterFirst := *repo.rows[key("stranger", "C")]

	second, err := svc.Decide(ctx, board, "C", "stranger", StatusApproved)
	if err != nil {
		t.Fatal(err)
	}
	afterSecond := *repo.rows[key("stranger", "C")]
	if second.Previous != StatusApproved {
		t.Errorf("expected previous approved, got %s", second.Previous)
	}
	if afterFirst.Status != afterSecond.Status || afterFirst.Role != afterSecond.Role {
		t.Errorf("second approval changed state: %+v -> %+v", afterFirst, afterSecond)
	}
}

func TestDecide_Validation(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	for _, st := range []Status{StatusPending, "maybe", ""} {
		if _, err := svc.Decide(ctx, admin, "C", "stranger", st); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("status %q: expected invalid input, got %v", st, err)
		}
	}
	if _, err := svc.Decide(ctx, admin, "C", "nobody", StatusApproved); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected not found for missing membership, got %v", err)
	}
}

func TestDecide_LastBoardMember(t *testing.T) {
	svc, repo := newFixture(t)
	ctx := context.Background()

	_, err := svc.Decide(ctx, board, "C", "board", StatusRejected)
	if !errors.Is(err, ErrLastBoardMember) {
		t.Fatalf("expected ErrLastBoardMember, got %v", err)
	}
	if apperr.Code(err) != "last_board_member" {
		t.Errorf("expected last_board_member code, got %q", apperr.Code(err))
	}
	if repo.rows[key("board", "C")].Status != StatusApproved {
		t.Error("guarded decision must not change the row")
	}

	if _, err := svc.Decide(ctx, admin, "C", "board", StatusRejected); err != nil {
		t.Errorf("admin should bypass the guard, got %v", err)
	}
}

// --- AssignRole ---

func TestAssignRole_AdminOnly(t *testing.T) {
	svc, _ := newFixture(t)
	for _, actor := range []*auth.User{board, member, stranger} {
		_, err := svc.AssignRole(context.Background(), actor, "C", "member", "board", "Treasurer")
		if !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("%s: expected forbidden, got %v", actor.ID, err)
		}
	}
}

func TestAssignRole(t *testing.T) {
	tests := []struct {
		name      string
		club      string
		user      string
		tier      string
		title     string
		wantErr   error
		wantTier  Tier
		wantTitle Title
	}{
		{"promote with title", "C", "member", "board", "Treasurer", nil, TierBoard, TitleTreasurer},
		{"promote without title", "C", "member", "board", "", nil, TierBoard, TitleOther},
		{"demote without title", "C", "board", "member", "", nil, TierMember, TitleMember},
		{"creates approved row", "D", "stranger", "member", "Volunteer", nil, TierMember, TitleVolunteer},
		{"approves pending row", "C", "stranger", "member", "", nil, TierMember, TitleMember},
		{"board cannot be volunteer", "C", "member", "board", "Volunteer", ErrBoardTitle, "", ""},
		{"member cannot be president", "C", "member", "member", "President", ErrLeadershipTitle, "", ""},
		{"bad tier", "C", "member", "owner", "", ErrInvalidTier, "", ""},
		{"unknown club", "Z", "member", "member", "", apperr.ErrNotFound, "", ""},
		{"unknown user", "C", "ghost", "member", "", apperr.ErrNotFound, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newFixture(t)
			m, err := svc.AssignRole(context.Background(), admin, tt.club, tt.user, tt.tier, tt.title)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if m.Role.Tier() != tt.wantTier || m.Role.Title() != tt.wantTitle {
				t.Errorf("got %s/%s, want %s/%s", m.Role.Tier(), m.Role.Title(), tt.wantTier, tt.wantTitle)
			}
			if repo.rows[key(tt.user, tt.club)].Status != StatusApproved {
				t.Errorf("expected approved row, got %s", repo.rows[key(tt.user, tt.club)].Status)
			}
		})
	}
}

// --- Remove ---

func TestRemove(t *testing.T) {
	svc, repo := newFixture(t)
	ctx := context.Background()

	if err := svc.Remove(ctx, member, "C", "stranger"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member removing: expected forbidden, got %v", err)
	}
	if err := svc.Remove(ctx, board, "C", "member"); err != nil {
		t.Fatalf("board removing member: %v", err)
	}
	if _, ok := repo.rows[key("member", "C")]; ok {
		t.Error("expected membership row to be gone")
	}
	if err := svc.Remove(ctx, board, "C", "member"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second removal: expected not found, got %v", err)
	}
	if err := svc.Remove(ctx, board, "C", "board"); !errors.Is(err, ErrLastBoardMember) {
		t.Errorf("removing last board member: expected guard, got %v", err)
	}

	repo.put("vp", "C", boardRole(t, TitleVicePresident), StatusApproved)
	if err := svc.Remove(ctx, board, "C", "board"); err != nil {
		t.Errorf("removal with another board member present: %v", err)
	}
}

func TestRemove_AdminBypassesGuard(t *testing.T) {
	svc, repo := newFixture(t)
	if err := svc.Remove(context.Background(), admin, "C", "board"); err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.rows[key("board", "C")]; ok {
		t.Error("expected board row to be removed")
	}
}

// --- Listings ---

func TestListMine_HidesRejected(t *testing.T) {
	svc, repo := newFixture(t)
	repo.put("member", "D", DefaultRole(), StatusRejected)
	repo.put("member", "E", DefaultRole(), StatusPending)

	got, err := svc.ListMine(context.Background(), member)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(got))
	}
	if got[0].ClubID != "E" || got[1].ClubID != "C" {
		t.Errorf("expected newest first [E C], got [%s %s]", got[0].ClubID, got[1].ClubID)
	}
}

func TestListForUser(t *testing.T) {
	svc, repo := newFixture(t)
	repo.put("member", "D", DefaultRole(), StatusRejected)
	ctx := context.Background()

	own, err := svc.ListForUser(ctx, member, "member")
	if err != nil {
		t.Fatal(err)
	}
	if len(own) != 2 {
		t.Errorf("expected rejected rows included, got %d", len(own))
	}
	if _, err := svc.ListForUser(ctx, admin, "member"); err != nil {
		t.Errorf("admin lookup: %v", err)
	}
	if _, err := svc.ListForUser(ctx, board, "member"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("board looking at another user: expected forbidden, got %v", err)
	}
}

func TestListMembersAndPending(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	members, err := svc.ListMembers(ctx, board, "C")
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 2 {
		t.Errorf("expected 2 approved members, got %d", len(members))
	}
	pending, err := svc.ListPending(ctx, admin, "C")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 || pending[0].UserID != "stranger" {
		t.Errorf("unexpected pending list %+v", pending)
	}

	if _, err := svc.ListMembers(ctx, member, "C"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("member listing members: expected forbidden, got %v", err)
	}
	if _, err := svc.ListPending(ctx, board, "D"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("board of another club: expected forbidden, got %v", err)
	}
}

func TestMembership_MarshalJSON(t *testing.T) {
	m := Membership{
		ID: "m1", UserID: "u1", ClubID: "c1",
		Role:   boardRole(t, TitleHRHead),
		Status: StatusApproved,
		User:   &UserSummary{ID: "u1", Name: "Chad", Email: "chad@local.com"},
	}
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if got["role"] != "board" || got["roleName"] != "HR Head" || got["status"] != "approved" {
		t.Errorf("unexpected json %s", b)
	}
	if _, ok := got["club"]; ok {
		t.Error("absent club summary should be omitted")
	}
}
