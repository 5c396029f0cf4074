package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/tickets"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/users"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var _ tickets.Repository = (*TicketRepository)(nil)

type TicketRepository struct {
	conn
}

// Purchase copies the event's current price into the new ticket row in a
// single statement. When the event is missing the SELECT yields no row and
// nothing is inserted. A second purchase by the same user is rejected by
// tickets_user_event_key, even under concurrent attempts.
func (r *TicketRepository) Purchase(ctx context.Context, userID, eventID int64) (_ *tickets.Ticket, err error) {
	defer func(start time.Time) { metrics.RecordQuery("purchase_ticket", start, err) }(time.Now())

	var ticket tickets.Ticket
	err = r.queryer().QueryRow(ctx, `
INSERT INTO tickets (user_id, event_id, price_cents)
SELECT $1, e.id, e.price_cents
  FROM events e
 WHERE e.id = $2
RETURNING id, user_id, event_id, price_cents, created_at`,
		userID, eventID,
	).Scan(&ticket.ID, &ticket.UserID, &ticket.EventID, &ticket.PriceCents, &ticket.CreatedAt)
	switch {
	case err == nil:
		ticket.CreatedAt = ticket.CreatedAt.UTC()
		return &ticket, nil
	case errors.Is(err, pgx.ErrNoRows):
		return nil, events.ErrNotFound
	case isUniqueViolation(err, ticketsUserEventKey):
		return nil, tickets.ErrDuplicateTicket
	case isForeignKeyViolation(err, ticketsEventFK):
		// event deleted between the SELECT snapshot and the insert
		return nil, events.ErrNotFound
	case isForeignKeyViolation(err, ""):
		return nil, users.ErrUserNotFound
	default:
		return nil, fmt.Errorf("insert ticket: %w", err)
	}
}

func (r *TicketRepository) EventExists(ctx context.Context, eventID int64) (_ bool, err error) {
	defer func(start time.Time) { metrics.RecordQuery("event_exists", start, err) }(time.Now())

	var exists bool
	err = r.queryer().QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event: %w", err)
	}
	return exists, nil
}

func (r *TicketRepository) ListByUser(ctx context.Context, userID int64) (_ []tickets.Ticket, err error) {
	defer func(start time.Time) { metrics.RecordQuery("list_tickets", start, err) }(time.Now())

	rows, err := r.queryer().Query(ctx, `
SELECT t.id, t.user_id, t.event_id, t.price_cents, t.created_at,
       e.title, e.description, e.location, e.start_at, e.end_at, e.price_cents,
       e.creator_id, e.created_at, e.updated_at, u.name, u.role
  FROM tickets t
  JOIN events e ON e.id = t.event_id
  JOIN users u ON u.id = e.creator_id
 WHERE t.user_id = $1
 ORDER BY t.created_at DESC, t.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	result := make([]tickets.Ticket, 0)
	for rows.Next() {
		var (
			ticket      tickets.Ticket
			event       events.Event
			endAt       pgtype.Timestamptz
			creatorRole string
		)
		if err := rows.Scan(
			&ticket.ID, &ticket.UserID, &ticket.EventID, &ticket.PriceCents, &ticket.CreatedAt,
			&event.Title, &event.Description, &event.Location, &event.StartAt, &endAt, &event.PriceCents,
			&event.CreatorID, &event.CreatedAt, &event.UpdatedAt, &event.Creator.Name, &creatorRole,
		); err != nil {
			return nil, fmt.Errorf("scan tickets: %w", err)
		}
		ticket.CreatedAt = ticket.CreatedAt.UTC()
		event.ID = ticket.EventID
		event.StartAt = event.StartAt.UTC()
		event.EndAt = timestamptzPtr(endAt)
		event.CreatedAt = event.CreatedAt.UTC()
		event.UpdatedAt = event.UpdatedAt.UTC()
		event.Creator.ID = event.CreatorID
		event.Creator.Role = auth.Role(creatorRole)
		ticket.Event = &event
		result = append(result, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tickets: %w", err)
	}
	return result, nil
}
