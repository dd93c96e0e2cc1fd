package membership

import (
	"encoding/json"
	"time"
)

// Status is the approval state of a membership.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// UserSummary is the member shown in club rosters.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ClubSummary is the club shown in a user's own membership list.
type ClubSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Membership is one row of the ledger: at most one per (user, club).
type Membership struct {
	ID        string
	UserID    string
	ClubID    string
	Role      Role
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time

	User *UserSummary
	Club *ClubSummary
}

// HoldsBoardSeat reports whether m currently grants management of its club.
func (m *Membership) HoldsBoardSeat() bool {
	return m.Status == StatusApproved && m.Role.IsBoard()
}

type membershipJSON struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	ClubID    string       `json:"clubId"`
	Role      Tier         `json:"role"`
	RoleName  Title        `json:"roleName"`
	Status    Status       `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	User      *UserSummary `json:"user,omitempty"`
	Club      *ClubSummary `json:"club,omitempty"`
}

// MarshalJSON flattens Role into the role/roleName pair clients expect.
func (m Membership) MarshalJSON() ([]byte, error) {
	return json.Marshal(membershipJSON{
		ID:        m.ID,
		UserID:    m.UserID,
		ClubID:    m.ClubID,
		Role:      m.Role.Tier(),
		RoleName:  m.Role.Title(),
		Status:    m.Status,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
		User:      m.User,
		Club:      m.Club,
	})
}
