package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/apperr"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/metrics"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/sanitize"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/validation"
	"github.com/rs/zerolog"
)

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

func (s *Service) List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error) {
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.Page > MaxPage {
		return ListResult{}, apperr.Validation("page", fmt.Sprintf("must be at most %d", MaxPage))
	}
	if pagination.Limit < 1 {
		pagination.Limit = DefaultLimit
	}
	pagination.Limit = min(pagination.Limit, MaxLimit)

	result, err := s.repo.List(ctx, filters, pagination)
	if err != nil {
		return ListResult{}, fmt.Errorf("list events: %w", err)
	}
	result.Page = pagination.Page
	result.Limit = pagination.Limit
	if result.Items == nil {
		result.Items = []Event{}
	}
	return result, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, input CreateInput) (*Event, error) {
	if !actor.Role.CanHostEvents() {
		return nil, ErrHostRoleRequired
	}

	input.Title = sanitize.Text(input.Title)
	input.Location = sanitize.Text(input.Location)
	input.Description = sanitize.OptionalHTML(input.Description)
	if input.EndAt != nil && strings.TrimSpace(*input.EndAt) == "" {
		input.EndAt = nil
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	startAt, err := ParseTimestamp("startAt", input.StartAt)
	if err != nil {
		return nil, err
	}
	endAt, err := parseEnd(input.EndAt, startAt)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Create(ctx, CreateParams{
		Title:       input.Title,
		Description: input.Description,
		Location:    input.Location,
		StartAt:     startAt,
		EndAt:       endAt,
		PriceCents:  *input.PriceCents,
		CreatorID:   actor.UserID,
	})
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	metrics.EventMutations.WithLabelValues("create").Inc()
	s.logger.Info().
		Int64("event_id", event.ID).
		Int64("creator_id", actor.UserID).
		Msg("event created")
	return event, nil
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id int64, input UpdateInput) (*Event, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.CreatorID != actor.UserID {
		return nil, ErrNotCreator
	}

	params, err := mergeUpdate(*existing, input)
	if err != nil {
		return nil, err
	}

	event, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	metrics.EventMutations.WithLabelValues("update").Inc()
	s.logger.Info().Int64("event_id", id).Msg("event updated")
	return event, nil
}

func (s *Service) Delete(ctx context.Context, actor auth.Actor, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.CreatorID != actor.UserID {
		return ErrNotCreator
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	metrics.EventMutations.WithLabelValues("delete").Inc()
	s.logger.Info().
		Int64("event_id", id).
		Int64("tickets_removed", existing.TicketCount).
		Msg("event deleted")
	return nil
}

func mergeUpdate(existing Event, input UpdateInput) (UpdateParams, error) {
	params := UpdateParams{
		Title:       existing.Title,
		Description: existing.Description,
		Location:    existing.Location,
		StartAt:     existing.StartAt,
		EndAt:       existing.EndAt,
		PriceCents:  existing.PriceCents,
	}

	if input.Title != nil {
		title := sanitize.Text(*input.Title)
		if err := checkText("title", title, 200); err != nil {
			return params, err
		}
		params.Title = title
	}
	if input.Location != nil {
		location := sanitize.Text(*input.Location)
		if err := checkText("location", location, 200); err != nil {
			return params, err
		}
		params.Location = location
	}
	if input.Description.Set {
		params.Description = sanitize.OptionalHTML(input.Description.Ptr())
		if params.Description != nil && len(*params.Description) > 5000 {
			return params, apperr.Validation("description", "must be at most 5000 characters")
		}
	}
	if input.StartAt != nil {
		startAt, err := ParseTimestamp("startAt", *input.StartAt)
		if err != nil {
			return params, err
		}
		params.StartAt = startAt
	}
	if input.EndAt.Set {
		endAt, err := parseEnd(input.EndAt.Ptr(), params.StartAt)
		if err != nil {
			return params, err
		}
		params.EndAt = endAt
	} else if params.EndAt != nil && params.EndAt.Before(params.StartAt) {
		return params, apperr.Validation("startAt", "must not be after endAt")
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return params, apperr.Validation("priceCents", "must be at least 0")
		}
		if *input.PriceCents > MaxPriceCents {
			return params, apperr.Validation("priceCents", fmt.Sprintf("must be at most %d", MaxPriceCents))
		}
		params.PriceCents = *input.PriceCents
	}

	return params, nil
}

func parseEnd(value *string, startAt time.Time) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	endAt, err := ParseTimestamp("endAt", *value)
	if err != nil {
		return nil, err
	}
	if endAt.Before(startAt) {
		return nil, apperr.Validation("endAt", "must not be before startAt")
	}
	return &endAt, nil
}

func checkText(field, value string, maxLen int) error {
	if value == "" {
		return apperr.Validation(field, "is required")
	}
	if len([]rune(value)) > maxLen {
		return apperr.Validation(field, fmt.Sprintf("must be at most %d characters", maxLen))
	}
	return nil
}
