package api

import (
	"log/slog"
	"net/http"

	"github.com/alecgard/clubhive/internal/activity"
	"github.com/alecgard/clubhive/internal/auth"
	"github.com/alecgard/clubhive/internal/metrics"
	"github.com/alecgard/clubhive/internal/ratelimit"
)

// auditor emits a structured audit log line for every mutating action and,
// when the action belongs to a club, queues it for the club activity log.
type auditor struct {
	collector *activity.Collector
	metrics   *metrics.Metrics
}

// record logs action. clubID may be empty for actions outside any club.
func (a *auditor) record(r *http.Request, clubID, action, resourceType, resourceID string, detail map[string]any) {
	attrs := []any{
		"action", action,
		"resource_type", resourceType,
		"resource_id", resourceID,
		"ip", ratelimit.ClientIP(r),
		"request_id", RequestIDFromContext(r.Context()),
	}
	if clubID != "" {
		attrs = append(attrs, "club_id", clubID)
	}

	u := auth.UserFromContext(r.Context())
	if u != nil {
		attrs = append(attrs, "user_id", u.ID, "user_email", u.Email, "user_role", u.Role)
	}
	for k, v := range detail {
		attrs = append(attrs, k, v)
	}
	slog.Info("audit", attrs...)

	if a.collector == nil || clubID == "" {
		return
	}
	entry := activity.Entry{
		ClubID:       clubID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Detail:       detail,
	}
	if u != nil {
		entry.ActorID = u.ID
	}
	a.collector.Record(entry)
	a.metrics.IncActivity()
}
