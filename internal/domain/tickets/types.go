package tickets

import (
	"context"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/apperr"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
)

var (
	// ErrDuplicateTicket is reported when the (user, event) unique
	// constraint rejects a purchase.
	ErrDuplicateTicket = apperr.New(apperr.KindConflict, "ticket already purchased for this event")

	ErrDancerRoleRequired = apperr.New(apperr.KindForbidden, "only DANCER accounts can hold tickets")
)

// Ticket is immutable once issued. PriceCents is the event price at the
// moment of purchase.
type Ticket struct {
	ID         int64
	UserID     int64
	EventID    int64
	PriceCents int
	CreatedAt  time.Time
	// Event is populated by ListByUser.
	Event *events.Event
}

type Repository interface {
	// Purchase inserts a ticket priced from the event row in one statement.
	// It returns events.ErrNotFound when the event does not exist and
	// ErrDuplicateTicket when the user already holds one.
	Purchase(ctx context.Context, userID, eventID int64) (*Ticket, error)
	EventExists(ctx context.Context, eventID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]Ticket, error)
}
