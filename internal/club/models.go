package club

import "time"

// Club is a student organisation that owns memberships and events.
type Club struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	FacultyAdvisor string    `json:"facultyAdvisor"`
	Category       string    `json:"category"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// CreateClubInput holds the fields accepted when creating a club.
type CreateClubInput struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	FacultyAdvisor string `json:"facultyAdvisor"`
	Category       string `json:"category"`
}

// UpdateClubInput holds optional fields for a partial club update.
type UpdateClubInput struct {
	Name           *string `json:"name,omitempty"`
	Description    *string `json:"description,omitempty"`
	FacultyAdvisor *string `json:"facultyAdvisor,omitempty"`
	Category       *string `json:"category,omitempty"`
}
