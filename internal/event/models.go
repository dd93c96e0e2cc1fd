package event

import "time"

// DefaultPoints is awarded for attending an event created without a value.
const DefaultPoints = 10

// Event is a club activity members can register for.
type Event struct {
	ID          string       `json:"id"`
	ClubID      string       `json:"clubId"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Venue       string       `json:"venue"`
	Date        time.Time    `json:"date"`
	Points      int          `json:"points"`
	CreatedAt   time.Time    `json:"createdAt"`
	Club        *ClubSummary `json:"club,omitempty"`
}

// ClubSummary names the owning club in event listings.
type ClubSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateEventInput is the create request. ClubID also binds "ClubId".
type CreateEventInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Venue       string `json:"venue"`
	Date        string `json:"date"`
	ClubID      string `json:"clubId"`
	Points      *int   `json:"points"`
}

// NewEvent is a validated CreateEventInput.
type NewEvent struct {
	ClubID      string
	Title       string
	Description string
	Venue       string
	Date        time.Time
	Points      int
}
