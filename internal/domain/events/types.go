package events

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/apperr"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
)

var (
	ErrNotFound = apperr.New(apperr.KindNotFound, "event not found")

	// ErrNotCreator is returned when someone other than the creator tries
	// to change or remove an event.
	ErrNotCreator = apperr.New(apperr.KindForbidden, "only the event creator can modify this event")

	ErrHostRoleRequired = apperr.New(apperr.KindForbidden, "only STUDIO or AGENCY accounts can host events")
)

type Event struct {
	ID          int64
	Title       string
	Description *string
	Location    string
	StartAt     time.Time
	EndAt       *time.Time
	PriceCents  int
	CreatorID   int64
	Creator     CreatorSummary
	TicketCount int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreatorSummary is the public slice of the hosting account.
type CreatorSummary struct {
	ID   int64
	Name *string
	Role auth.Role
}

type Filters struct {
	Query    string
	City     string
	From     *time.Time
	To       *time.Time
	MinPrice *int
	MaxPrice *int
}

type Pagination struct {
	Page  int
	Limit int
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

type ListResult struct {
	Items []Event
	Total int64
	Page  int
	Limit int
}

// CreateParams carries already validated and sanitized values.
type CreateParams struct {
	Title       string
	Description *string
	Location    string
	StartAt     time.Time
	EndAt       *time.Time
	PriceCents  int
	CreatorID   int64
}

// UpdateParams is the full replacement row computed by the service after
// merging a partial update into the stored event.
type UpdateParams struct {
	Title       string
	Description *string
	Location    string
	StartAt     time.Time
	EndAt       *time.Time
	PriceCents  int
}

type Repository interface {
	List(ctx context.Context, filters Filters, pagination Pagination) (ListResult, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, params CreateParams) (*Event, error)
	Update(ctx context.Context, id int64, params UpdateParams) (*Event, error)
	// Delete removes the event and its tickets atomically.
	Delete(ctx context.Context, id int64) error
}

type CreateInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
	Location    string  `json:"location" validate:"required,max=200"`
	StartAt     string  `json:"startAt" validate:"required"`
	EndAt       *string `json:"endAt"`
	PriceCents  *int    `json:"priceCents" validate:"required,min=0,max=2147483647"`
}

// UpdateInput is a partial update. Nil pointers keep the stored value.
// Description and EndAt distinguish an omitted key from an explicit null,
// which clears the column.
type UpdateInput struct {
	Title       *string          `json:"title"`
	Description Nullable[string] `json:"description"`
	Location    *string          `json:"location"`
	StartAt     *string          `json:"startAt"`
	EndAt       Nullable[string] `json:"endAt"`
	PriceCents  *int             `json:"priceCents"`
}

// Nullable records whether a JSON key was present and whether it was null.
type Nullable[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Null = true
		return nil
	}
	return json.Unmarshal(data, &n.Value)
}

// Ptr returns the value, or nil when the key was null or absent.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || n.Null {
		return nil
	}
	v := n.Value
	return &v
}
