package activity

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alecgard/clubhive/internal/apperr"
)

// Store provides database operations for the activity log.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// nullable maps an empty id to SQL NULL.
func nullable(id string) any {
	if id == "" {
		return nil
	}
	return id
}

// BatchInsert writes entries in a single multi-row INSERT statement. It is a
// no-op when entries is empty.
func (s *Store) BatchInsert(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	const cols = 7
	args := make([]any, 0, len(entries)*cols)
	rows := make([]string, 0, len(entries))

	for i, e := range entries {
		base := i * cols
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))

		detail := e.Detail
		if detail == nil {
			detail = map[string]any{}
		}
		detailJSON, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("marshalling activity detail: %w", err)
		}
		args = append(args,
			nullable(e.ClubID),
			nullable(e.ActorID),
			e.Action,
			e.ResourceType,
			e.ResourceID,
			detailJSON,
			e.CreatedAt,
		)
	}

	query := `INSERT INTO activity_log
		(club_id, actor_id, action, resource_type, resource_id, detail, created_at)
		VALUES ` + strings.Join(rows, ", ")

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("batch inserting activity: %w", err)
	}
	return nil
}

// ListByClub returns a page of a club's activity ordered by created_at DESC,
// id DESC, and the cursor of the next page (empty when there is none).
func (s *Store) ListByClub(ctx context.Context, q Query) ([]*Entry, string, error) {
	limit := ClampLimit(q.Limit)

	where := ` WHERE club_id = $1`
	args := []any{q.ClubID}
	if q.Cursor != "" {
		ts, id, err := decodeCursor(q.Cursor)
		if err != nil {
			return nil, "", apperr.Invalid("invalid cursor")
		}
		where += ` AND (created_at, id) < ($2, $3)`
		args = append(args, ts, id)
	}

	query := `SELECT id, COALESCE(club_id::text, ''), COALESCE(actor_id::text, ''),
		action, resource_type, resource_id, detail, created_at
	FROM activity_log` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit+1)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("listing activity: %w", err)
	}
	defer rows.Close()

	entries := []*Entry{}
	for rows.Next() {
		var e Entry
		var detailJSON []byte
		if err := rows.Scan(&e.ID, &e.ClubID, &e.ActorID, &e.Action, &e.ResourceType,
			&e.ResourceID, &detailJSON, &e.CreatedAt); err != nil {
			return nil, "", fmt.Errorf("scanning activity row: %w", err)
		}
		e.Detail = map[string]any{}
		if len(detailJSON) > 0 {
			if err := json.Unmarshal(detailJSON, &e.Detail); err != nil {
				return nil, "", fmt.Errorf("unmarshalling activity detail: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterating activity rows: %w", err)
	}

	var next string
	if len(entries) > limit {
		last := entries[limit-1]
		next = encodeCursor(last.CreatedAt, last.ID)
		entries = entries[:limit]
	}
	return entries, next, nil
}

// ClampLimit bounds a requested page size.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// encodeCursor encodes a timestamp and id into an opaque cursor string.
func encodeCursor(ts time.Time, id string) string {
	raw := ts.Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor decodes an opaque cursor string into a timestamp and id.
func decodeCursor(cursor string) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("decoding cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return time.Time{}, "", fmt.Errorf("malformed cursor")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("parsing cursor timestamp: %w", err)
	}
	return ts, parts[1], nil
}
