// Package activity records like, unlike and counter events for library
// entries. Events are written asynchronously to the activity_log table so
// that recording never blocks or fails API requests.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/GyroZepelix/library-cms/internal/database"
)

// Entry is a single row of the activity_log table.
type Entry struct {
	ID             string         `json:"id"`
	Action         string         `json:"action"`
	ActorID        *int64         `json:"actorId"`
	ContentID      *int64         `json:"contentId"`
	OrganizationID *int64         `json:"organizationId"`
	Payload        map[string]any `json:"payload,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Filters narrows a List call. Zero values mean "any".
type Filters struct {
	ActorID   int64
	ContentID int64
	Action    string
}

// Repository provides database operations for the activity_log table.
type Repository struct {
	db *database.DB
}

// NewRepository creates a new activity Repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one event. Zero ids are stored as NULL.
func (r *Repository) Insert(ctx context.Context, event Event) error {
	var payloadJSON []byte
	if len(event.Payload) > 0 {
		var err error
		payloadJSON, err = json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("marshaling activity payload: %w", err)
		}
	}

	_, err := r.db.Pool().Exec(ctx,
		`INSERT INTO activity_log (id, action, actor_id, content_id, organization_id, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.ID,
		event.Action,
		nullIfZero(event.ActorID),
		nullIfZero(event.ContentID),
		event.OrganizationID,
		payloadJSON,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting activity event: %w", err)
	}
	return nil
}

// List retrieves a page of events ordered by created_at DESC.
func (r *Repository) List(ctx context.Context, filters Filters, page, perPage int) ([]*Entry, int, error) {
	where, args := buildListWhere(filters)
	paramIdx := len(args) + 1

	countQuery := "SELECT COUNT(*) FROM activity_log " + where
	var total int
	if err := r.db.Pool().QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting activity entries: %w", err)
	}

	offset := (page - 1) * perPage
	selectQuery := fmt.Sprintf(
		`SELECT id::text, action, actor_id, content_id, organization_id, payload, created_at
		 FROM activity_log %s
		 ORDER BY created_at DESC
		 LIMIT $%d OFFSET $%d`,
		where, paramIdx, paramIdx+1,
	)
	args = append(args, perPage, offset)

	rows, err := r.db.Pool().Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying activity entries: %w", err)
	}
	defer rows.Close()

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Entry, error) {
		var e Entry
		var payloadJSON []byte
		if err := row.Scan(&e.ID, &e.Action, &e.ActorID, &e.ContentID, &e.OrganizationID, &payloadJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		if payloadJSON != nil {
			if err := json.Unmarshal(payloadJSON, &e.Payload); err != nil {
				return nil, fmt.Errorf("unmarshaling activity payload: %w", err)
			}
		}
		return &e, nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("scanning activity entries: %w", err)
	}

	return entries, total, nil
}

// buildListWhere returns the WHERE clause and its arguments. Column names
// are constants; only values are bound.
func buildListWhere(filters Filters) (string, []any) {
	var conditions []string
	var args []any

	add := func(column string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if filters.ActorID != 0 {
		add("actor_id", filters.ActorID)
	}
	if filters.ContentID != 0 {
		add("content_id", filters.ContentID)
	}
	if filters.Action != "" {
		add("action", filters.Action)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func nullIfZero(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
