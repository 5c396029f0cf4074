package handlers

import (
	"net/http"

	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/audit"
	"github.com/Stela-Stoimenova/FOMO-FearOfMissingOut/internal/domain/events"
)

type EventsHandler struct {
	Service *events.Service
	Audit   *audit.Logger
	Env     string
}

func NewEventsHandler(service *events.Service, auditLog *audit.Logger, env string) *EventsHandler {
	return &EventsHandler{Service: service, Audit: auditLog, Env: env}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	filters, pagination, err := events.ParseFilters(r.URL.Query())
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	result, err := h.Service.List(r.Context(), filters, pagination)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	items := make([]eventResponse, 0, len(result.Items))
	for _, event := range result.Items {
		items = append(items, toEventResponse(event))
	}

	writeJSON(w, http.StatusOK, eventListResponse{
		Items: items,
		Total: result.Total,
		Page:  result.Page,
		Limit: result.Limit,
	})
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var input events.CreateInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	h.Audit.LogFromRequest(r, actor, "event.create", "event", event.ID, nil)
	w.Header().Set("Location", "/api/events/"+formatID(event.ID))
	writeJSON(w, http.StatusCreated, toEventResponse(*event))
}

func (h *EventsHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	var input events.UpdateInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	event, err := h.Service.Update(r.Context(), actor, id, input)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	h.Audit.LogFromRequest(r, actor, "event.update", "event", id, nil)

	writeJSON(w, http.StatusOK, toEventResponse(*event))
}

func (h *EventsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err, h.Env)
		return
	}

	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		writeError(w, r, err, h.Env)
		return
	}
	h.Audit.LogFromRequest(r, actor, "event.delete", "event", id, nil)

	w.WriteHeader(http.StatusNoContent)
}
