package attendance

import "time"

// Participation is one user's registration for one event.
type Participation struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	EventID       string       `json:"eventId"`
	Status        Status       `json:"status"`
	PointsAwarded int          `json:"pointsAwarded"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	User          *UserSummary `json:"user,omitempty"`
}

// UserSummary is the participant shown in event rosters.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Transition is the committed result of a status change.
type Transition struct {
	Participation *Participation `json:"participation"`
	ClubID        string         `json:"clubId"`
	From          Status         `json:"from"`
	To            Status         `json:"to"`
	Delta         int            `json:"delta"`
	Balance       int            `json:"balance"`
}

// Registration answers whether the caller is registered for an event.
type Registration struct {
	Registered bool    `json:"registered"`
	Status     *Status `json:"status"`
}
