package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/metrics"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/tickets"

// Service issues tickets. Uniqueness per (user, event) is left entirely to
// the storage constraint; there is no read-before-write here.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "tickets").Logger(),
	}
}

func (s *Service) Purchase(ctx context.Context, actor auth.Actor, eventID int64) (*Ticket, error) {
	ctx, span := telemetry.Tracer(tracerName).Start(ctx, "tickets.Purchase")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("fomo.user_id", actor.UserID),
		attribute.Int64("fomo.event_id", eventID),
	)

	if !actor.Role.CanHoldTickets() {
		return nil, s.rejectNonDancer(ctx, span, eventID)
	}

	ticket, err := s.repo.Purchase(ctx, actor.UserID, eventID)
	switch {
	case err == nil:
	case errors.Is(err, ErrDuplicateTicket):
		metrics.TicketPurchases.WithLabelValues("duplicate").Inc()
		span.SetStatus(codes.Error, "duplicate")
		return nil, ErrDuplicateTicket
	case errors.Is(err, events.ErrNotFound):
		metrics.TicketPurchases.WithLabelValues("not_found").Inc()
		span.SetStatus(codes.Error, "event not found")
		return nil, events.ErrNotFound
	default:
		metrics.TicketPurchases.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "purchase failed")
		return nil, fmt.Errorf("purchase ticket: %w", err)
	}

	metrics.TicketPurchases.WithLabelValues("issued").Inc()
	span.SetAttributes(attribute.Int64("fomo.ticket_id", ticket.ID))
	s.logger.Info().
		Int64("ticket_id", ticket.ID).
		Int64("event_id", eventID).
		Int64("user_id", actor.UserID).
		Int("price_cents", ticket.PriceCents).
		Msg("ticket issued")
	return ticket, nil
}

// rejectNonDancer reports a missing event as not found before the role
// failure, so the outcome for an unknown event does not depend on the role.
func (s *Service) rejectNonDancer(ctx context.Context, span trace.Span, eventID int64) error {
	exists, err := s.repo.EventExists(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "event lookup failed")
		return fmt.Errorf("look up event: %w", err)
	}
	if !exists {
		metrics.TicketPurchases.WithLabelValues("not_found").Inc()
		span.SetStatus(codes.Error, "event not found")
		return events.ErrNotFound
	}
	span.SetStatus(codes.Error, "forbidden")
	return ErrDancerRoleRequired
}

// ListMine returns the actor's tickets, newest first.
func (s *Service) ListMine(ctx context.Context, actor auth.Actor) ([]Ticket, error) {
	if !actor.Role.CanHoldTickets() {
		return nil, ErrDancerRoleRequired
	}
	tickets, err := s.repo.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if tickets == nil {
		tickets = []Ticket{}
	}
	return tickets, nil
}
