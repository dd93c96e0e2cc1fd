package api

import (
	"net/http"
	"strconv"

	"github.com/alecgard/clubhive/internal/activity"
	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/club"
	"github.com/alecgard/clubhive/internal/membership"
	"github.com/alecgard/clubhive/internal/metrics"
)

// clubsHandler groups club and membership HTTP handlers.
type clubsHandler struct {
	clubs       *club.Service
	memberships *membership.Service
	activity    ActivityReader
	metrics     *metrics.Metrics
	audit       *auditor
}

func newClubsHandler(clubs *club.Service, memberships *membership.Service, reader ActivityReader, m *metrics.Metrics, a *auditor) *clubsHandler {
	return &clubsHandler{clubs: clubs, memberships: memberships, activity: reader, metrics: m, audit: a}
}

// ListClubs handles GET /api/clubs.
func (h *clubsHandler) ListClubs(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubs.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clubs)
}

// GetClub handles GET /api/clubs/{clubId}.
func (h *clubsHandler) GetClub(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}
	c, err := h.clubs.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateClub handles POST /api/clubs.
func (h *clubsHandler) CreateClub(w http.ResponseWriter, r *http.Request) {
	var input club.CreateClubInput
	if err := readJSON(r, &input); err != nil {
		writeInvalidBody(w)
		return
	}

	c, err := h.clubs.Create(r.Context(), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, c.ID, "club.create", "club", c.ID, map[string]any{"name": c.Name})
	writeJSON(w, http.StatusCreated, c)
}

// UpdateClub handles PUT /api/clubs/{clubId}.
func (h *clubsHandler) UpdateClub(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}

	var input club.UpdateClubInput
	if err := readJSON(r, &input); err != nil {
		writeInvalidBody(w)
		return
	}

	c, err := h.clubs.Update(r.Context(), id, input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, c.ID, "club.update", "club", c.ID, nil)
	writeJSON(w, http.StatusOK, c)
}

// DeleteClub handles DELETE /api/clubs/{clubId}.
func (h *clubsHandler) DeleteClub(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}

	if err := h.clubs.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, id, "club.delete", "club", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// Join handles POST /api/clubs/{clubId}/join.
func (h *clubsHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}

	m, err := h.memberships.RequestJoin(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, id, "membership.request", "membership", m.ID, nil)
	writeJSON(w, http.StatusCreated, m)
}

// Decide handles PUT /api/clubs/{clubId}/membership/{userId}.
func (h *clubsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req struct {
		Status membership.Status `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	d, err := h.memberships.Decide(r.Context(), auth.UserFromContext(r.Context()), clubID, userID, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.metrics.IncMembershipDecision(string(d.Membership.Status))
	h.audit.record(r, clubID, "membership.decide", "membership", d.Membership.ID, map[string]any{
		"user_id": userID,
		"from":    string(d.Previous),
		"to":      string(d.Membership.Status),
	})
	writeJSON(w, http.StatusOK, d.Membership)
}

// ListPending handles GET /api/clubs/{clubId}/pending.
func (h *clubsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}
	list, err := h.memberships.ListPending(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListMembers handles GET /api/clubs/{clubId}/members.
func (h *clubsHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}
	list, err := h.memberships.ListMembers(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// SetMemberRole handles PUT /api/clubs/{clubId}/members/{userId}/role.
func (h *clubsHandler) SetMemberRole(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	var req struct {
		Role     string `json:"role"`
		RoleName string `json:"roleName"`
	}
	if err := readJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	m, err := h.memberships.AssignRole(r.Context(), auth.UserFromContext(r.Context()), clubID, userID, req.Role, req.RoleName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, clubID, "membership.role", "membership", m.ID, map[string]any{
		"user_id":   userID,
		"role":      string(m.Role.Tier()),
		"role_name": string(m.Role.Title()),
	})
	writeJSON(w, http.StatusOK, m)
}

// RemoveMember handles DELETE /api/clubs/{clubId}/members/{userId}.
func (h *clubsHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "userId")
	if !ok {
		return
	}

	if err := h.memberships.Remove(r.Context(), auth.UserFromContext(r.Context()), clubID, userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, clubID, "membership.remove", "user", userID, nil)
	w.WriteHeader(http.StatusNoContent)
}

// MyClubs handles GET /api/clubs/my-clubs.
func (h *clubsHandler) MyClubs(w http.ResponseWriter, r *http.Request) {
	list, err := h.memberships.ListMine(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListActivity handles GET /api/clubs/{clubId}/activity.
func (h *clubsHandler) ListActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "clubId")
	if !ok {
		return
	}

	q := activity.Query{ClubID: id, Cursor: r.URL.Query().Get("cursor")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "limit must be a positive integer")
			return
		}
		q.Limit = n
	}

	if _, err := h.clubs.GetByID(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	ok, err := h.memberships.CanManage(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if !ok {
		writeServiceError(w, r, apperr.Forbidden("not authorized to view club activity"))
		return
	}

	entries, next, err := h.activity.ListByClub(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries":    entries,
		"nextCursor": next,
	})
}
