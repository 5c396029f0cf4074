package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/users"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	conn
}

const eventSelect = `
SELECT e.id, e.title, e.description, e.location, e.start_at, e.end_at,
       e.price_cents, e.creator_id, e.created_at, e.updated_at,
       u.name, u.role,
       (SELECT count(*) FROM tickets t WHERE t.event_id = e.id) AS ticket_count
  FROM events e
  JOIN users u ON u.id = e.creator_id`

// $1 query, $2 city, $3 from, $4 to, $5 min price, $6 max price
const eventFilter = `
 WHERE ($1::text = '' OR e.title ILIKE '%' || $1 || '%'
                      OR e.description ILIKE '%' || $1 || '%'
                      OR e.location ILIKE '%' || $1 || '%')
   AND ($2::text = '' OR e.location ILIKE '%' || $2 || '%')
   AND ($3::timestamptz IS NULL OR e.start_at >= $3::timestamptz)
   AND ($4::timestamptz IS NULL OR e.start_at <= $4::timestamptz)
   AND ($5::int IS NULL OR e.price_cents >= $5::int)
   AND ($6::int IS NULL OR e.price_cents <= $6::int)`

func (r *EventRepository) List(ctx context.Context, filters events.Filters, pagination events.Pagination) (_ events.ListResult, err error) {
	defer func(start time.Time) { metrics.RecordQuery("list_events", start, err) }(time.Now())

	q := r.queryer()
	args := []any{
		escapeILIKEPattern(filters.Query),
		escapeILIKEPattern(filters.City),
		filters.From,
		filters.To,
		filters.MinPrice,
		filters.MaxPrice,
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT count(*) FROM events e`+eventFilter, args...).Scan(&total); err != nil {
		return events.ListResult{}, fmt.Errorf("count events: %w", err)
	}

	rows, err := q.Query(ctx, eventSelect+eventFilter+`
 ORDER BY e.start_at ASC, e.id ASC
 LIMIT $7 OFFSET $8`,
		append(args, pagination.Limit, pagination.Offset())...,
	)
	if err != nil {
		return events.ListResult{}, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	items := make([]events.Event, 0, pagination.Limit)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return events.ListResult{}, fmt.Errorf("scan events: %w", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return events.ListResult{}, fmt.Errorf("iterate events: %w", err)
	}

	return events.ListResult{Items: items, Total: total}, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (_ *events.Event, err error) {
	defer func(start time.Time) { metrics.RecordQuery("get_event", start, err) }(time.Now())

	event, err := scanEvent(r.queryer().QueryRow(ctx, eventSelect+` WHERE e.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, events.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) Create(ctx context.Context, params events.CreateParams) (_ *events.Event, err error) {
	defer func(start time.Time) { metrics.RecordQuery("create_event", start, err) }(time.Now())

	var id int64
	err = r.queryer().QueryRow(ctx, `
INSERT INTO events (title, description, location, start_at, end_at, price_cents, creator_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id`,
		params.Title, params.Description, params.Location, params.StartAt, params.EndAt,
		params.PriceCents, params.CreatorID,
	).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err, "") {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("insert event: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *EventRepository) Update(ctx context.Context, id int64, params events.UpdateParams) (_ *events.Event, err error) {
	defer func(start time.Time) { metrics.RecordQuery("update_event", start, err) }(time.Now())

	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET title = $2,
       description = $3,
       location = $4,
       start_at = $5,
       end_at = $6,
       price_cents = $7,
       updated_at = now()
 WHERE id = $1`,
		id, params.Title, params.Description, params.Location, params.StartAt, params.EndAt, params.PriceCents,
	)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, events.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes the event's tickets and then the event in one transaction.
func (r *EventRepository) Delete(ctx context.Context, id int64) (err error) {
	defer func(start time.Time) { metrics.RecordQuery("delete_event", start, err) }(time.Now())

	return pgx.BeginFunc(ctx, r.beginner(), func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM tickets WHERE event_id = $1`, id); err != nil {
			return fmt.Errorf("delete event tickets: %w", err)
		}
		tag, err := tx.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return events.ErrNotFound
		}
		return nil
	})
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var (
		event       events.Event
		endAt       pgtype.Timestamptz
		creatorRole string
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.StartAt,
		&endAt,
		&event.PriceCents,
		&event.CreatorID,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.Creator.Name,
		&creatorRole,
		&event.TicketCount,
	); err != nil {
		return nil, err
	}
	event.StartAt = event.StartAt.UTC()
	event.EndAt = timestamptzPtr(endAt)
	event.CreatedAt = event.CreatedAt.UTC()
	event.UpdatedAt = event.UpdatedAt.UTC()
	event.Creator.ID = event.CreatorID
	event.Creator.Role = auth.Role(creatorRole)
	return &event, nil
}
