package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alecgard/clubhive/internal/apperr"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/metrics"
	"github.com/alecgard/clubhive/internal/user"
)

const minPasswordLength = 6

// authHandler groups authentication HTTP handlers.
type authHandler struct {
	users   UserStore
	tokens  *auth.TokenIssuer
	metrics *metrics.Metrics
	audit   *auditor
}

func newAuthHandler(users UserStore, tokens *auth.TokenIssuer, m *metrics.Metrics, a *auditor) *authHandler {
	return &authHandler{users: users, tokens: tokens, metrics: m, audit: a}
}

func profile(u *user.User) map[string]interface{} {
	return map[string]interface{}{
		"id":     u.ID,
		"email":  u.Email,
		"name":   u.Name,
		"role":   u.Role,
		"points": u.Points,
	}
}

// Register handles POST /api/auth/register.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	req.Email = user.NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.Email == "" || req.Password == "" || req.Name == "":
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "email, password and name are required")
		return
	case !strings.Contains(req.Email, "@"):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "email is invalid")
		return
	case len(req.Password) < minPasswordLength:
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "password must be at least 6 characters")
		return
	}

	u, err := h.users.Create(r.Context(), user.CreateUserInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     auth.RoleMember,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	token, _, err := h.tokens.Issue(u.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.metrics.IncAuthSuccess("register")
	h.audit.record(r, "", "user.register", "user", u.ID, map[string]any{"email": u.Email})
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user":  profile(u),
	})
}

// Login handles POST /api/auth/login.
func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeInvalidBody(w)
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "email and password are required")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		writeServiceError(w, r, err)
		return
	}
	if u == nil || !user.CheckPassword(u, req.Password) {
		h.metrics.IncAuthFailure("login")
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid email or password")
		return
	}

	token, _, err := h.tokens.Issue(u.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.metrics.IncAuthSuccess("login")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  profile(u),
	})
}

// Me handles GET /api/auth/me.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := auth.UserFromContext(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "not authenticated")
		return
	}

	u, err := h.users.GetByID(r.Context(), caller.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile(u))
}
