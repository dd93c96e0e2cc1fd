package api

import (
	"net/http"

	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/membership"
	"github.com/google/uuid"
)

// usersHandler groups user management HTTP handlers.
type usersHandler struct {
	users       UserStore
	memberships *membership.Service
	audit       *auditor
	boardLimit  int
}

func newUsersHandler(users UserStore, memberships *membership.Service, a *auditor, leaderboardLimit int) *usersHandler {
	return &usersHandler{users: users, memberships: memberships, audit: a, boardLimit: leaderboardLimit}
}

// ListUsers handles GET /api/users.
func (h *usersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateRole handles PUT /api/users/{userId}/role.
func (h *usersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := readJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	if !auth.ValidRole(req.Role) {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "role must be admin, member or club_head")
		return
	}

	u, err := h.users.UpdateRole(r.Context(), id, req.Role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, "", "user.role", "user", id, map[string]any{"role": req.Role})
	writeJSON(w, http.StatusOK, u)
}

// ListMemberships handles GET /api/users/{userId}/memberships.
func (h *usersHandler) ListMemberships(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	list, err := h.memberships.ListForUser(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// AssignClubRole handles PUT /api/users/{userId}/club-role.
func (h *usersHandler) AssignClubRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req struct {
		ClubID   string `json:"clubId"`
		Role     string `json:"role"`
		RoleName string `json:"roleName"`
	}
	if err := readJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	if _, err := uuid.Parse(req.ClubID); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "clubId must be a valid id")
		return
	}

	m, err := h.memberships.AssignRole(r.Context(), auth.UserFromContext(r.Context()), req.ClubID, id, req.Role, req.RoleName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, m.ClubID, "membership.role", "membership", m.ID, map[string]any{
		"user_id":   id,
		"role":      string(m.Role.Tier()),
		"role_name": string(m.Role.Title()),
	})
	writeJSON(w, http.StatusOK, m)
}

// Leaderboard handles GET /api/leaderboard.
func (h *usersHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.users.Leaderboard(r.Context(), h.boardLimit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}
