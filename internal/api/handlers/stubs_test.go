package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/api/middleware"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/auth"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/tickets"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/users"
)

var (
	dancer = auth.Actor{UserID: 1, Role: auth.RoleDancer, Email: "a@x.com"}
	studio = auth.Actor{UserID: 2, Role: auth.RoleStudio, Email: "b@x.com"}
	agency = auth.Actor{UserID: 3, Role: auth.RoleAgency, Email: "c@x.com"}
)

func asActor(req *http.Request, actor auth.Actor) *http.Request {
	return req.WithContext(middleware.WithActor(req.Context(), actor))
}

type stubEventsRepo struct {
	listFn   func(filters events.Filters, pagination events.Pagination) (events.ListResult, error)
	getFn    func(id int64) (*events.Event, error)
	createFn func(params events.CreateParams) (*events.Event, error)
	updateFn func(id int64, params events.UpdateParams) (*events.Event, error)
	deleteFn func(id int64) error
}

func (s stubEventsRepo) List(_ context.Context, filters events.Filters, pagination events.Pagination) (events.ListResult, error) {
	if s.listFn == nil {
		return events.ListResult{}, nil
	}
	return s.listFn(filters, pagination)
}

func (s stubEventsRepo) GetByID(_ context.Context, id int64) (*events.Event, error) {
	if s.getFn == nil {
		return nil, events.ErrNotFound
	}
	return s.getFn(id)
}

func (s stubEventsRepo) Create(_ context.Context, params events.CreateParams) (*events.Event, error) {
	if s.createFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.createFn(params)
}

func (s stubEventsRepo) Update(_ context.Context, id int64, params events.UpdateParams) (*events.Event, error) {
	if s.updateFn == nil {
		return nil, errors.New("not implemented")
	}
	return s.updateFn(id, params)
}

func (s stubEventsRepo) Delete(_ context.Context, id int64) error {
	if s.deleteFn == nil {
		return errors.New("not implemented")
	}
	return s.deleteFn(id)
}

type stubTicketsRepo struct {
	purchaseFn func(userID, eventID int64) (*tickets.Ticket, error)
	listFn     func(userID int64) ([]tickets.Ticket, error)
	existsFn   func(eventID int64) bool
}

func (s stubTicketsRepo) EventExists(_ context.Context, eventID int64) (bool, error) {
	if s.existsFn == nil {
		return true, nil
	}
	return s.existsFn(eventID), nil
}

func (s stubTicketsRepo) Purchase(_ context.Context, userID, eventID int64) (*tickets.Ticket, error) {
	return s.purchaseFn(userID, eventID)
}

func (s stubTicketsRepo) ListByUser(_ context.Context, userID int64) ([]tickets.Ticket, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(userID)
}

// memoryUsers mimics the unique email constraint of the users table.
type memoryUsers struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*users.Credentials
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byEmail: make(map[string]*users.Credentials)}
}

func (m *memoryUsers) CreateUser(_ context.Context, params users.CreateUserParams) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[params.Email]; ok {
		return nil, users.ErrEmailTaken
	}
	m.nextID++
	user := users.User{
		ID:        m.nextID,
		Email:     params.Email,
		Name:      params.Name,
		Role:      params.Role,
		CreatedAt: time.Now().UTC(),
	}
	m.byEmail[params.Email] = &users.Credentials{User: user, PasswordHash: params.PasswordHash}
	return &user, nil
}

func (m *memoryUsers) GetCredentialsByEmail(_ context.Context, email string) (*users.Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	creds, ok := m.byEmail[email]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	copied := *creds
	return &copied, nil
}

func (m *memoryUsers) GetUserByID(_ context.Context, id int64) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, creds := range m.byEmail {
		if creds.User.ID == id {
			user := creds.User
			return &user, nil
		}
	}
	return nil, users.ErrUserNotFound
}

func salsaNight() *events.Event {
	start := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	name := "Studio B"
	return &events.Event{
		ID:          9,
		Title:       "Salsa Night",
		Location:    "NYC",
		StartAt:     start,
		PriceCents:  1000,
		CreatorID:   studio.UserID,
		Creator:     events.CreatorSummary{ID: studio.UserID, Name: &name, Role: auth.RoleStudio},
		TicketCount: 3,
		CreatedAt:   start.Add(-48 * time.Hour),
		UpdatedAt:   start.Add(-48 * time.Hour),
	}
}
