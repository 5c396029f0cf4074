package handlers

import (
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/tickets"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/users"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type creatorResponse struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
	Role string  `json:"role"`
}

type eventResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description"`
	Location    string          `json:"location"`
	StartAt     time.Time       `json:"startAt"`
	EndAt       *time.Time      `json:"endAt"`
	PriceCents  int             `json:"priceCents"`
	CreatorID   int64           `json:"creatorId"`
	Creator     creatorResponse `json:"creator"`
	TicketCount int64           `json:"ticketCount"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type eventListResponse struct {
	Items []eventResponse `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type ticketResponse struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"userId"`
	EventID    int64          `json:"eventId"`
	PriceCents int            `json:"priceCents"`
	CreatedAt  time.Time      `json:"createdAt"`
	Event      *eventResponse `json:"event,omitempty"`
}

func toUserResponse(user users.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
}

func toEventResponse(event events.Event) eventResponse {
	return eventResponse{
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartAt:     event.StartAt,
		EndAt:       event.EndAt,
		PriceCents:  event.PriceCents,
		CreatorID:   event.CreatorID,
		Creator: creatorResponse{
			ID:   event.Creator.ID,
			Name: event.Creator.Name,
			Role: string(event.Creator.Role),
		},
		TicketCount: event.TicketCount,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func toTicketResponse(ticket tickets.Ticket) ticketResponse {
	resp := ticketResponse{
		ID:         ticket.ID,
		UserID:     ticket.UserID,
		EventID:    ticket.EventID,
		PriceCents: ticket.PriceCents,
		CreatedAt:  ticket.CreatedAt,
	}
	if ticket.Event != nil {
		event := toEventResponse(*ticket.Event)
		resp.Event = &event
	}
	return resp
}
