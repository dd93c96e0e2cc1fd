package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/club"
)

const (
	clubC = "0b6f1c8e-8a51-4a37-9a6e-2f0d5a4c1c01"
	clubD = "0b6f1c8e-8a51-4a37-9a6e-2f0d5a4c1c02"
)

type fakeRepo struct {
	events  []*Event
	members map[string][]string // user -> approved clubs
}

func (f *fakeRepo) Create(ctx context.Context, in NewEvent) (*Event, error) {
	e := &Event{ID: "e" + in.Title, ClubID: in.ClubID, Title: in.Title, Description: in.Description,
		Venue: in.Venue, Date: in.Date, Points: in.Points}
	f.events = append(f.events, e)
	return e, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*Event, error) {
	for _, e := range f.events {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrEventNotFound
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]*Event, error) {
	return f.events, nil
}

func (f *fakeRepo) ListForUser(ctx context.Context, userID string) ([]*Event, error) {
	out := []*Event{}
	for _, e := range f.events {
		for _, c := range f.members[userID] {
			if e.ClubID == c {
				out = append(out, e)
			}
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

type fakeBoards map[string]bool // "user|club"

func (f fakeBoards) IsApprovedBoardMember(ctx context.Context, userID, clubID string) (bool, error) {
	return f[userID+"|"+clubID], nil
}

var (
	admin  = &auth.User{ID: "admin", Role: auth.RoleAdmin}
	board  = &auth.User{ID: "board", Role: auth.RoleMember}
	member = &auth.User{ID: "member", Role: auth.RoleMember}
)

func newTestService() (*Service, *fakeRepo) {
	repo := &fakeRepo{members: map[string][]string{"member": {clubC}}}
	svc := NewService(repo, fakeClubs{clubC: true, clubD: true}, fakeBoards{"board|" + clubC: true})
	return svc, repo
}

func intPtr(n int) *int { return &n }

func TestService_Create(t *testing.T) {
	tests := []struct {
		name       string
		actor      *auth.User
		input      CreateEventInput
		wantErr    error
		wantPoints int
	}{
		{"board default points", board, CreateEventInput{Title: "Meetup", ClubID: clubC, Date: "2025-03-01"}, nil, 10},
		{"zero points means default", board, CreateEventInput{Title: "Meetup", ClubID: clubC, Date: "2025-03-01", Points: intPtr(0)}, nil, 10},
		{"explicit points", admin, CreateEventInput{Title: "Hackathon", ClubID: clubD, Date: "2025-03-01T18:30", Points: intPtr(25)}, nil, 25},
		{"negative points", admin, CreateEventInput{Title: "X", ClubID: clubC, Date: "2025-03-01", Points: intPtr(-1)}, ErrPointsNegative, 0},
		{"missing title", admin, CreateEventInput{Title: " ", ClubID: clubC, Date: "2025-03-01"}, ErrTitleRequired, 0},
		{"missing club", admin, CreateEventInput{Title: "X", Date: "2025-03-01"}, ErrClubRequired, 0},
		{"malformed club", admin, CreateEventInput{Title: "X", ClubID: "abc", Date: "2025-03-01"}, ErrClubInvalid, 0},
		{"bad date", admin, CreateEventInput{Title: "X", ClubID: clubC, Date: "next friday"}, ErrDateInvalid, 0},
		{"unknown club", admin, CreateEventInput{Title: "X", ClubID: "0b6f1c8e-8a51-4a37-9a6e-2f0d5a4c1cff", Date: "2025-03-01"}, apperr.ErrNotFound, 0},
		{"board of other club", board, CreateEventInput{Title: "X", ClubID: clubD, Date: "2025-03-01"}, apperr.ErrForbidden, 0},
		{"plain member", member, CreateEventInput{Title: "X", ClubID: clubC, Date: "2025-03-01"}, apperr.ErrForbidden, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			e, err := svc.Create(context.Background(), tt.actor, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(repo.events) != 0 {
					t.Error("rejected create must not persist")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if e.Points != tt.wantPoints {
				t.Errorf("points = %d, want %d", e.Points, tt.wantPoints)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-01T18:30:00Z", time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)},
		{"2025-03-01T18:30:00+02:00", time.Date(2025, 3, 1, 16, 30, 0, 0, time.UTC)},
		{"2025-03-01T18:30", time.Date(2025, 3, 1, 18, 30, 0, 0, time.UTC)},
		{" 2025-03-01 ", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
	if _, err := ParseDate(""); !errors.Is(err, ErrDateInvalid) {
		t.Errorf("empty date: expected ErrDateInvalid, got %v", err)
	}
}

func TestService_List(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	for _, in := range []CreateEventInput{
		{Title: "A", ClubID: clubC, Date: "2025-03-01"},
		{Title: "B", ClubID: clubD, Date: "2025-03-02"},
	} {
		if _, err := svc.Create(ctx, admin, in); err != nil {
			t.Fatal(err)
		}
	}

	all, _ := svc.List(ctx, admin)
	if len(all) != 2 {
		t.Errorf("admin should see every event, got %d", len(all))
	}
	mine, _ := svc.List(ctx, member)
	if len(mine) != 1 || mine[0].Title != "A" {
		t.Errorf("member should see only club C events, got %+v", mine)
	}
	none, _ := svc.List(ctx, board)
	if len(none) != 0 {
		t.Errorf("user without approved memberships should see nothing, got %d", len(none))
	}
}
