package handlers

import (
	"net/http"
	"strconv"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/audit"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/tickets"
)

type TicketsHandler struct {
	Service *tickets.Service
	Audit   *audit.Logger
	Env     string
}

func NewTicketsHandler(service *tickets.Service, auditLog *audit.Logger, env string) *TicketsHandler {
	return &TicketsHandler{Service: service, Audit: auditLog, Env: env}
}

func (h *TicketsHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	eventID, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	ticket, err := h.Service.Purchase(r.Context(), actor, eventID)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	h.Audit.LogFromRequest(r, actor, "ticket.purchase", "event", eventID, map[string]string{
		"ticket_id":   strconv.FormatInt(ticket.ID, 10),
		"price_cents": strconv.Itoa(ticket.PriceCents),
	})
	writeJSON(w, http.StatusCreated, toTicketResponse(*ticket))
}

func (h *TicketsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	owned, err := h.Service.ListMine(r.Context(), actor)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	items := make([]ticketResponse, 0, len(owned))
	for _, ticket := range owned {
		items = append(items, toTicketResponse(ticket))
	}
	writeJSON(w, http.StatusOK, items)
}
