package activity

import "time"

// Entry is one persisted audit record of a mutating operation.
type Entry struct {
	ID           string         `json:"id"`
	ClubID       string         `json:"clubId,omitempty"`
	ActorID      string         `json:"actorId,omitempty"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resourceType"`
	ResourceID   string         `json:"resourceId"`
	Detail       map[string]any `json:"detail"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// Query selects a page of a club's activity.
type Query struct {
	ClubID string
	Cursor string
	Limit  int
}

const (
	DefaultLimit = 50
	MaxLimit     = 200
)
