package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/config"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/tickets"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/users"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/storage"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryStore is a single-process stand-in for the Postgres repository.
type memoryStore struct {
	mu      sync.Mutex
	users   map[int64]*users.Credentials
	events  map[int64]*events.Event
	tickets []tickets.Ticket
	nextID  int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:  make(map[int64]*users.Credentials),
		events: make(map[int64]*events.Event),
	}
}

func (s *memoryStore) Users() users.Repository     { return memoryUsers{s} }
func (s *memoryStore) Events() events.Repository   { return memoryEvents{s} }
func (s *memoryStore) Tickets() tickets.Repository { return memoryTickets{s} }
func (s *memoryStore) Ping(context.Context) error  { return nil }

func (s *memoryStore) WithTx(ctx context.Context, fn func(context.Context, storage.Repository) error) error {
	return fn(ctx, s)
}

func (s *memoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memoryUsers struct{ s *memoryStore }

func (m memoryUsers) CreateUser(_ context.Context, params users.CreateUserParams) (*users.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, creds := range m.s.users {
		if creds.User.Email == params.Email {
			return nil, users.ErrEmailTaken
		}
	}
	user := users.User{ID: m.s.id(), Email: params.Email, Name: params.Name, Role: params.Role, CreatedAt: time.Now().UTC()}
	m.s.users[user.ID] = &users.Credentials{User: user, PasswordHash: params.PasswordHash}
	return &user, nil
}

func (m memoryUsers) GetCredentialsByEmail(_ context.Context, email string) (*users.Credentials, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, creds := range m.s.users {
		if creds.User.Email == email {
			copied := *creds
			return &copied, nil
		}
	}
	return nil, users.ErrUserNotFound
}

func (m memoryUsers) GetUserByID(_ context.Context, id int64) (*users.User, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	creds, ok := m.s.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	user := creds.User
	return &user, nil
}

type memoryEvents struct{ s *memoryStore }

func (m memoryEvents) snapshot(event *events.Event) *events.Event {
	copied := *event
	creator := m.s.users[event.CreatorID].User
	copied.Creator = events.CreatorSummary{ID: creator.ID, Name: creator.Name, Role: creator.Role}
	copied.TicketCount = 0
	for _, ticket := range m.s.tickets {
		if ticket.EventID == event.ID {
			copied.TicketCount++
		}
	}
	return &copied
}

func (m memoryEvents) List(_ context.Context, filters events.Filters, pagination events.Pagination) (events.ListResult, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var items []events.Event
	for _, event := range m.s.events {
		if filters.City != "" && !strings.Contains(strings.ToLower(event.Location), strings.ToLower(filters.City)) {
			continue
		}
		items = append(items, *m.snapshot(event))
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].StartAt.Equal(items[j].StartAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].StartAt.Before(items[j].StartAt)
	})
	total := int64(len(items))
	start := min(pagination.Offset(), len(items))
	end := min(start+pagination.Limit, len(items))
	return events.ListResult{Items: items[start:end], Total: total}, nil
}

func (m memoryEvents) GetByID(_ context.Context, id int64) (*events.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	event, ok := m.s.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	return m.snapshot(event), nil
}

func (m memoryEvents) Create(_ context.Context, params events.CreateParams) (*events.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	now := time.Now().UTC()
	event := &events.Event{
		ID:          m.s.id(),
		Title:       params.Title,
		Description: params.Description,
		Location:    params.Location,
		StartAt:     params.StartAt,
		EndAt:       params.EndAt,
		PriceCents:  params.PriceCents,
		CreatorID:   params.CreatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.s.events[event.ID] = event
	return m.snapshot(event), nil
}

func (m memoryEvents) Update(_ context.Context, id int64, params events.UpdateParams) (*events.Event, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	event, ok := m.s.events[id]
	if !ok {
		return nil, events.ErrNotFound
	}
	event.Title = params.Title
	event.Description = params.Description
	event.Location = params.Location
	event.StartAt = params.StartAt
	event.EndAt = params.EndAt
	event.PriceCents = params.PriceCents
	event.UpdatedAt = time.Now().UTC()
	return m.snapshot(event), nil
}

func (m memoryEvents) Delete(_ context.Context, id int64) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.events[id]; !ok {
		return events.ErrNotFound
	}
	kept := m.s.tickets[:0]
	for _, ticket := range m.s.tickets {
		if ticket.EventID != id {
			kept = append(kept, ticket)
		}
	}
	m.s.tickets = kept
	delete(m.s.events, id)
	return nil
}

type memoryTickets struct{ s *memoryStore }

func (m memoryTickets) Purchase(_ context.Context, userID, eventID int64) (*tickets.Ticket, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	event, ok := m.s.events[eventID]
	if !ok {
		return nil, events.ErrNotFound
	}
	for _, ticket := range m.s.tickets {
		if ticket.UserID == userID && ticket.EventID == eventID {
			return nil, tickets.ErrDuplicateTicket
		}
	}
	ticket := tickets.Ticket{ID: m.s.id(), UserID: userID, EventID: eventID, PriceCents: event.PriceCents, CreatedAt: time.Now().UTC()}
	m.s.tickets = append(m.s.tickets, ticket)
	return &ticket, nil
}

func (m memoryTickets) EventExists(_ context.Context, eventID int64) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	_, ok := m.s.events[eventID]
	return ok, nil
}

func (m memoryTickets) ListByUser(_ context.Context, userID int64) ([]tickets.Ticket, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var owned []tickets.Ticket
	for i := len(m.s.tickets) - 1; i >= 0; i-- {
		ticket := m.s.tickets[i]
		if ticket.UserID == userID {
			ticket.Event = memoryEvents{m.s}.snapshot(m.s.events[ticket.EventID])
			owned = append(owned, ticket)
		}
	}
	return owned, nil
}

func testConfig() config.Config {
	return config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			JWTSecret:  "router-test-secret-at-least-32-chars",
			JWTExpiry:  time.Hour,
			Issuer:     "fomo-test",
			BcryptCost: bcrypt.MinCost,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"http://localhost:5173"}},
	}
}

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &client{t: t, handler: NewRouter(ctx, testConfig(), zerolog.Nop(), newMemoryStore(), BuildInfo{Version: "test"})}
}

func (c *client) do(method, path, token, body string) *httptest.ResponseRecorder {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:5555"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res := httptest.NewRecorder()
	c.handler.ServeHTTP(res, req)
	return res
}

func (c *client) register(email, role string) string {
	c.t.Helper()
	res := c.do(http.MethodPost, "/api/auth/register", "", `{"email":"`+email+`","password":"secret","role":"`+role+`"}`)
	require.Equal(c.t, http.StatusCreated, res.Code, res.Body.String())
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(c.t, json.NewDecoder(res.Body).Decode(&session))
	return session.Token
}

func decodeBody[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var payload T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))
	return payload
}

type eventBody struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	StartAt     time.Time `json:"startAt"`
	PriceCents  int       `json:"priceCents"`
	TicketCount int64     `json:"ticketCount"`
}

func TestSalsaNightScenario(t *testing.T) {
	c := newClient(t)
	dancerToken := c.register("a@x.com", "DANCER")
	studioToken := c.register("b@x.com", "STUDIO")

	res := c.do(http.MethodPost, "/api/events", studioToken,
		`{"title":"Salsa Night","location":"NYC","startAt":"2025-01-01T20:00:00Z","priceCents":1000}`)
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	event := decodeBody[eventBody](t, res)
	eventPath := "/api/events/" + strconv.FormatInt(event.ID, 10)

	res = c.do(http.MethodPost, eventPath+"/tickets", dancerToken, "")
	require.Equal(t, http.StatusCreated, res.Code, res.Body.String())
	ticket := decodeBody[struct {
		PriceCents int `json:"priceCents"`
	}](t, res)
	require.Equal(t, 1000, ticket.PriceCents)

	res = c.do(http.MethodPost, eventPath+"/tickets", dancerToken, "")
	require.Equal(t, http.StatusConflict, res.Code)
	require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))

	res = c.do(http.MethodGet, eventPath, "", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, int64(1), decodeBody[eventBody](t, res).TicketCount)

	res = c.do(http.MethodGet, "/api/events/me/tickets", dancerToken, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, decodeBody[[]map[string]any](t, res), 1)
}

func TestAccessGate(t *testing.T) {
	c := newClient(t)
	dancerToken := c.register("a@x.com", "DANCER")
	studioToken := c.register("b@x.com", "STUDIO")
	otherStudio := c.register("c@x.com", "AGENCY")

	create := `{"title":"Bachata Social","location":"Berlin","startAt":"2025-03-01T19:00:00Z","priceCents":500}`

	require.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/events", "", create).Code)
	require.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/events", "garbage", create).Code)
	require.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/api/events", dancerToken, create).Code)

	res := c.do(http.MethodPost, "/api/events", studioToken, create)
	require.Equal(t, http.StatusCreated, res.Code)
	eventPath := "/api/events/" + strconv.FormatInt(decodeBody[eventBody](t, res).ID, 10)

	require.Equal(t, http.StatusForbidden, c.do(http.MethodPost, eventPath+"/tickets", studioToken, "").Code)
	require.Equal(t, http.StatusForbidden, c.do(http.MethodGet, "/api/events/me/tickets", studioToken, "").Code)
	require.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/events/999/tickets", dancerToken, "").Code)
	require.Equal(t, http.StatusNotFound, c.do(http.MethodPost, "/api/events/999/tickets", studioToken, "").Code)
	require.Equal(t, http.StatusUnauthorized, c.do(http.MethodPost, "/api/events/999/tickets", "", "").Code)
	require.Equal(t, http.StatusForbidden, c.do(http.MethodPut, eventPath, otherStudio, `{"priceCents":1}`).Code)
	require.Equal(t, http.StatusForbidden, c.do(http.MethodDelete, eventPath, otherStudio, "").Code)
	require.Equal(t, http.StatusBadRequest, c.do(http.MethodGet, "/api/events/abc", "", "").Code)

	res = c.do(http.MethodGet, "/api/auth/me", dancerToken, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Equal(t, "a@x.com", decodeBody[map[string]any](t, res)["email"])
}

func TestUpdateAndDeleteThroughRouter(t *testing.T) {
	c := newClient(t)
	studioToken := c.register("b@x.com", "STUDIO")
	dancerToken := c.register("a@x.com", "DANCER")

	res := c.do(http.MethodPost, "/api/events", studioToken,
		`{"title":"Salsa Night","location":"NYC","startAt":"2025-01-01T20:00:00Z","endAt":"2025-01-01T23:00:00Z","priceCents":1000}`)
	require.Equal(t, http.StatusCreated, res.Code)
	created := decodeBody[eventBody](t, res)
	eventPath := "/api/events/" + strconv.FormatInt(created.ID, 10)

	res = c.do(http.MethodPut, eventPath, studioToken, `{"priceCents":1500}`)
	require.Equal(t, http.StatusOK, res.Code)
	updated := decodeBody[eventBody](t, res)
	require.Equal(t, 1500, updated.PriceCents)
	require.Equal(t, created.Title, updated.Title)
	require.Equal(t, created.Location, updated.Location)
	require.True(t, created.StartAt.Equal(updated.StartAt))

	res = c.do(http.MethodPut, eventPath, studioToken, `{"endAt":null}`)
	require.Equal(t, http.StatusOK, res.Code)
	require.Nil(t, decodeBody[map[string]any](t, res)["endAt"])

	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, eventPath+"/tickets", dancerToken, "").Code)

	require.Equal(t, http.StatusNoContent, c.do(http.MethodDelete, eventPath, studioToken, "").Code)
	require.Equal(t, http.StatusNotFound, c.do(http.MethodGet, eventPath, "", "").Code)

	res = c.do(http.MethodGet, "/api/events/me/tickets", dancerToken, "")
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `[]`, res.Body.String())
}

func TestListEventsThroughRouter(t *testing.T) {
	c := newClient(t)
	studioToken := c.register("b@x.com", "STUDIO")

	for _, start := range []string{"2025-03-01T20:00:00Z", "2025-01-01T20:00:00Z", "2025-02-01T20:00:00Z"} {
		body := `{"title":"Social","location":"NYC","startAt":"` + start + `","priceCents":0}`
		require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/api/events", studioToken, body).Code)
	}

	res := c.do(http.MethodGet, "/api/events?limit=2&page=1", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	page := decodeBody[struct {
		Items []eventBody `json:"items"`
		Total int64       `json:"total"`
		Page  int         `json:"page"`
		Limit int         `json:"limit"`
	}](t, res)
	require.Equal(t, int64(3), page.Total)
	require.Equal(t, 2, page.Limit)
	require.Len(t, page.Items, 2)
	require.True(t, page.Items[0].StartAt.Before(page.Items[1].StartAt))

	res = c.do(http.MethodGet, "/api/events?minPrice=10&maxPrice=1", "", "")
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestOutOfRangeInputsAreRejected(t *testing.T) {
	c := newClient(t)
	studioToken := c.register("b@x.com", "STUDIO")

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
	}{
		{name: "page past offset range", method: http.MethodGet, path: "/api/events?page=9223372036854775807&limit=50"},
		{name: "max price filter above column", method: http.MethodGet, path: "/api/events?maxPrice=3000000000"},
		{
			name:   "price above column",
			method: http.MethodPost,
			path:   "/api/events",
			token:  studioToken,
			body:   `{"title":"Gala","location":"NYC","startAt":"2025-01-01T20:00:00Z","priceCents":3000000000}`,
		},
		{
			name:   "password over 72 bytes",
			method: http.MethodPost,
			path:   "/api/auth/register",
			body:   `{"email":"long@x.com","password":"` + strings.Repeat("é", 40) + `","role":"DANCER"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.do(tt.method, tt.path, tt.token, tt.body)
			require.Equal(t, http.StatusBadRequest, res.Code, res.Body.String())
			require.Equal(t, "application/problem+json", res.Header().Get("Content-Type"))
		})
	}
}

func TestOperationalRoutes(t *testing.T) {
	c := newClient(t)

	res := c.do(http.MethodGet, "/api/dance", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.JSONEq(t, `{"ok":true,"message":"Server is running"}`, res.Body.String())
	require.NotEmpty(t, res.Header().Get("X-Request-ID"))
	require.Equal(t, "nosniff", res.Header().Get("X-Content-Type-Options"))

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/healthz", "", "").Code)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/readyz", "", "").Code)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/version", "", "").Code)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/openapi.json", "", "").Code)

	res = c.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), "fomo_http_requests_total")

	require.Equal(t, http.StatusMethodNotAllowed, c.do(http.MethodPatch, "/api/events", "", "").Code)
}

func TestCORSPreflightThroughRouter(t *testing.T) {
	c := newClient(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	res := httptest.NewRecorder()

	c.handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.Equal(t, "http://localhost:5173", res.Header().Get("Access-Control-Allow-Origin"))
}
