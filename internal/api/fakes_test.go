package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alecgard/clubhive/internal/activity"
	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/attendance"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/club"
	"github.com/alecgard/clubhive/internal/event"
	"github.com/alecgard/clubhive/internal/membership"
	"github.com/alecgard/clubhive/internal/user"
)

// --- users ---

type fakeUsers struct {
	mu   sync.Mutex
	byID map[string]*user.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*user.User{}}
}

func (f *fakeUsers) add(id, email, name, role, password string) *user.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &user.User{ID: id, Email: email, Name: name, Role: role, PasswordHash: string(hash)}
	f.byID[id] = u
	return u
}

func (f *fakeUsers) Create(ctx context.Context, in user.CreateUserInput) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email := user.NormalizeEmail(in.Email)
	for _, u := range f.byID {
		if u.Email == email {
			return nil, apperr.Conflict("email already registered")
		}
	}
	return f.add(uuid.NewString(), email, in.Name, in.Role, in.Password), nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == user.NormalizeEmail(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("user not found")
}

func (f *fakeUsers) List(ctx context.Context) ([]*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*user.User{}
	for _, u := range f.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUsers) UpdateRole(ctx context.Context, id, role string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	u.Role = role
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Leaderboard(ctx context.Context, limit int) ([]user.Standing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []user.Standing{}
	for _, u := range f.byID {
		if u.Role != auth.RoleAdmin {
			out = append(out, user.Standing{ID: u.ID, Name: u.Name, Email: u.Email, Points: u.Points})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- clubs ---

type fakeClubs struct {
	byID map[string]*club.Club
}

func (f *fakeClubs) Create(ctx context.Context, in club.CreateClubInput) (*club.Club, error) {
	for _, c := range f.byID {
		if c.Name == in.Name {
			return nil, club.ErrNameTaken
		}
	}
	c := &club.Club{ID: uuid.NewString(), Name: in.Name, Description: in.Description, Category: in.Category}
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeClubs) GetByID(ctx context.Context, id string) (*club.Club, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("club not found")
	}
	return c, nil
}

func (f *fakeClubs) List(ctx context.Context) ([]*club.Club, error) {
	out := []*club.Club{}
	for _, c := range f.byID {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeClubs) Update(ctx context.Context, id string, in club.UpdateClubInput) (*club.Club, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("club not found")
	}
	if in.Name != nil {
		c.Name = *in.Name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	return c, nil
}

func (f *fakeClubs) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.NotFound("club not found")
	}
	delete(f.byID, id)
	return nil
}

// --- memberships ---

type fakeMemberships struct {
	rows map[string]*membership.Membership // "user|club"
}

func mkey(userID, clubID string) string { return userID + "|" + clubID }

func (f *fakeMemberships) put(userID, clubID string, role membership.Role, status membership.Status) {
	f.rows[mkey(userID, clubID)] = &membership.Membership{
		ID: uuid.NewString(), UserID: userID, ClubID: clubID, Role: role, Status: status,
	}
}

func (f *fakeMemberships) IsApprovedBoardMember(ctx context.Context, userID, clubID string) (bool, error) {
	m, ok := f.rows[mkey(userID, clubID)]
	return ok && m.HoldsBoardSeat(), nil
}

func (f *fakeMemberships) RequestJoin(ctx context.Context, userID, clubID string) (*membership.Membership, error) {
	if m, ok := f.rows[mkey(userID, clubID)]; ok && m.Status != membership.StatusRejected {
		return nil, membership.ErrAlreadyMember
	}
	f.put(userID, clubID, membership.DefaultRole(), membership.StatusPending)
	return f.rows[mkey(userID, clubID)], nil
}

func (f *fakeMemberships) Get(ctx context.Context, userID, clubID string) (*membership.Membership, error) {
	m, ok := f.rows[mkey(userID, clubID)]
	if !ok {
		return nil, membership.ErrMembershipNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMemberships) lastSeat(userID, clubID string) bool {
	for _, m := range f.rows {
		if m.ClubID == clubID && m.UserID != userID && m.HoldsBoardSeat() {
			return false
		}
	}
	return true
}

func (f *fakeMemberships) UpdateStatus(ctx context.Context, userID, clubID string, status membership.Status, guard bool) (*membership.Membership, error) {
	m, ok := f.rows[mkey(userID, clubID)]
	if !ok {
		return nil, membership.ErrMembershipNotFound
	}
	if guard && status != membership.StatusApproved && m.HoldsBoardSeat() && f.lastSeat(userID, clubID) {
		return nil, membership.ErrLastBoardMember
	}
	m.Status = status
	cp := *m
	return &cp, nil
}

func (f *fakeMemberships) UpsertRole(ctx context.Context, userID, clubID string, role membership.Role) (*membership.Membership, error) {
	if m, ok := f.rows[mkey(userID, clubID)]; ok {
		m.Role = role
		m.Status = membership.StatusApproved
	} else {
		f.put(userID, clubID, role, membership.StatusApproved)
	}
	cp := *f.rows[mkey(userID, clubID)]
	return &cp, nil
}

func (f *fakeMemberships) Delete(ctx context.Context, userID, clubID string, guard bool) error {
	m, ok := f.rows[mkey(userID, clubID)]
	if !ok {
		return membership.ErrMembershipNotFound
	}
	if guard && m.HoldsBoardSeat() && f.lastSeat(userID, clubID) {
		return membership.ErrLastBoardMember
	}
	delete(f.rows, mkey(userID, clubID))
	return nil
}

func (f *fakeMemberships) ListByUser(ctx context.Context, userID string, statuses ...membership.Status) ([]*membership.Membership, error) {
	want := map[membership.Status]bool{}
	for _, s := range statuses {
		want[s] = true
	}
	out := []*membership.Membership{}
	for _, m := range f.rows {
		if m.UserID == userID && (len(want) == 0 || want[m.Status]) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMemberships) ListByClub(ctx context.Context, clubID string, status membership.Status) ([]*membership.Membership, error) {
	out := []*membership.Membership{}
	for _, m := range f.rows {
		if m.ClubID == clubID && m.Status == status {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- events ---

type fakeEvents struct {
	byID        map[string]*event.Event
	memberships *fakeMemberships
}

func (f *fakeEvents) Create(ctx context.Context, in event.NewEvent) (*event.Event, error) {
	ev := &event.Event{
		ID: uuid.NewString(), ClubID: in.ClubID, Title: in.Title, Description: in.Description,
		Venue: in.Venue, Date: in.Date, Points: in.Points, CreatedAt: time.Now(),
	}
	f.byID[ev.ID] = ev
	return ev, nil
}

func (f *fakeEvents) GetByID(ctx context.Context, id string) (*event.Event, error) {
	ev, ok := f.byID[id]
	if !ok {
		return nil, event.ErrEventNotFound
	}
	return ev, nil
}

func (f *fakeEvents) ListAll(ctx context.Context) ([]*event.Event, error) {
	out := []*event.Event{}
	for _, ev := range f.byID {
		out = append(out, ev)
	}
	return out, nil
}

func (f *fakeEvents) ListForUser(ctx context.Context, userID string) ([]*event.Event, error) {
	out := []*event.Event{}
	for _, ev := range f.byID {
		if m, ok := f.memberships.rows[mkey(userID, ev.ClubID)]; ok && m.Status == membership.StatusApproved {
			out = append(out, ev)
		}
	}
	return out, nil
}

// --- attendance ---

type fakeAttendance struct {
	rows   map[string]*attendance.Participation // "user|event"
	events *fakeEvents
	users  *fakeUsers
}

func (f *fakeAttendance) Register(ctx context.Context, userID, eventID string) (*attendance.Participation, error) {
	if _, ok := f.rows[mkey(userID, eventID)]; ok {
		return nil, attendance.ErrAlreadyRegistered
	}
	p := &attendance.Participation{ID: uuid.NewString(), UserID: userID, EventID: eventID, Status: attendance.StatusRegistered}
	f.rows[mkey(userID, eventID)] = p
	return p, nil
}

func (f *fakeAttendance) Get(ctx context.Context, userID, eventID string) (*attendance.Participation, error) {
	p, ok := f.rows[mkey(userID, eventID)]
	if !ok {
		return nil, attendance.ErrNotRegistered
	}
	return p, nil
}

func (f *fakeAttendance) Unregister(ctx context.Context, userID, eventID string) error {
	p, ok := f.rows[mkey(userID, eventID)]
	if !ok {
		return attendance.ErrNotRegistered
	}
	if p.Status != attendance.StatusRegistered {
		return attendance.ErrAttendanceMarked
	}
	delete(f.rows, mkey(userID, eventID))
	return nil
}

func (f *fakeAttendance) ListByEvent(ctx context.Context, eventID string) ([]*attendance.Participation, error) {
	out := []*attendance.Participation{}
	for _, p := range f.rows {
		if p.EventID == eventID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeAttendance) SetStatus(ctx context.Context, userID, eventID string, to attendance.Status) (*attendance.Transition, error) {
	p, ok := f.rows[mkey(userID, eventID)]
	if !ok {
		return nil, attendance.ErrParticipantAbsent
	}
	points := f.events.byID[eventID].Points
	from := p.Status
	delta := attendance.PointDelta(from, to, points)
	u := f.users.byID[userID]
	u.Points = attendance.ApplyDelta(u.Points, delta)
	p.Status = to
	if delta != 0 {
		p.PointsAwarded = attendance.AwardedFor(to, points)
	}
	return &attendance.Transition{Participation: p, From: from, To: to, Delta: delta, Balance: u.Points}, nil
}

// --- activity ---

type fakeActivity struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (f *fakeActivity) BatchInsert(ctx context.Context, entries []activity.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entries...)
	return nil
}

func (f *fakeActivity) ListByClub(ctx context.Context, q activity.Query) ([]*activity.Entry, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*activity.Entry{}
	for i := len(f.entries) - 1; i >= 0; i-- {
		if f.entries[i].ClubID == q.ClubID {
			e := f.entries[i]
			out = append(out, &e)
		}
	}
	return out, "", nil
}
