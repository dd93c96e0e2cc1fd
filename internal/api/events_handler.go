package api

import (
	"net/http"

	"github.com/alecgard/clubhive/internal/attendance"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/event"
	"github.com/alecgard/clubhive/internal/metrics"
	"github.com/google/uuid"
)

// eventsHandler groups event and attendance HTTP handlers.
type eventsHandler struct {
	events     *event.Service
	attendance *attendance.Service
	metrics    *metrics.Metrics
	audit      *auditor
}

func newEventsHandler(events *event.Service, att *attendance.Service, m *metrics.Metrics, a *auditor) *eventsHandler {
	return &eventsHandler{events: events, attendance: att, metrics: m, audit: a}
}

// ListEvents handles GET /api/events.
func (h *eventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.events.List(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetEvent handles GET /api/events/{eventId}.
func (h *eventsHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	ev, err := h.events.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// CreateEvent handles POST /api/events.
func (h *eventsHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input event.CreateEventInput
	if err := readJSON(r, &input); err != nil {
		writeInvalidBody(w)
		return
	}

	ev, err := h.events.Create(r.Context(), auth.UserFromContext(r.Context()), input)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, ev.ClubID, "event.create", "event", ev.ID, map[string]any{
		"title":  ev.Title,
		"points": ev.Points,
	})
	writeJSON(w, http.StatusCreated, ev)
}

// Register handles POST /api/events/{eventId}/register.
func (h *eventsHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	p, err := h.attendance.Register(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, "", "event.register", "event", id, nil)
	writeJSON(w, http.StatusCreated, p)
}

// Unregister handles DELETE /api/events/{eventId}/register.
func (h *eventsHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	if err := h.attendance.Unregister(r.Context(), auth.UserFromContext(r.Context()), id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.record(r, "", "event.unregister", "event", id, nil)
	w.WriteHeader(http.StatusNoContent)
}

// MyRegistration handles GET /api/events/{eventId}/my-registration.
func (h *eventsHandler) MyRegistration(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	reg, err := h.attendance.MyRegistration(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// Participants handles GET /api/events/{eventId}/participants.
func (h *eventsHandler) Participants(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}
	list, err := h.attendance.Participants(r.Context(), auth.UserFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// MarkAttendance handles PUT /api/events/{eventId}/attendance.
func (h *eventsHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "eventId")
	if !ok {
		return
	}

	var req struct {
		UserID string `json:"userId"`
		Status string `json:"status"`
	}
	if err := readJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}
	if req.UserID != "" {
		if _, err := uuid.Parse(req.UserID); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_error", "userId must be a valid id")
			return
		}
	}

	t, err := h.attendance.MarkAttendance(r.Context(), auth.UserFromContext(r.Context()), id, req.UserID, req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.metrics.ObserveAttendance(string(t.From), string(t.To), t.Delta)
	h.audit.record(r, t.ClubID, "attendance.mark", "event", id, map[string]any{
		"user_id": req.UserID,
		"from":    string(t.From),
		"to":      string(t.To),
		"delta":   t.Delta,
	})
	writeJSON(w, http.StatusOK, t)
}
