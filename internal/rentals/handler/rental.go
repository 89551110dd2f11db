package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"verleih/internal/rentals/service"
	apperrors "verleih/pkg/errors"
	"verleih/pkg/events"
	httputil "verleih/pkg/http"
	"verleih/pkg/logger"
	"verleih/pkg/middleware"
	"verleih/pkg/model"
)

type RentalHandler struct {
	service service.RentalService
	log     *logger.Logger
}

func NewRentalHandler(service service.RentalService, log *logger.Logger) *RentalHandler {
	return &RentalHandler{
		service: service,
		log:     log,
	}
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, err := httputil.ActorID(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.RentalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	rental, err := h.service.Create(eventContext(r), actor, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, rental); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

// GetByID needs no actor: the rental id is an unguessable uuid.
func (h *RentalHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	rental, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, rental); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) Transitions(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorID(r)
	if err != nil {
		h.writeError(w, "Transitions", err)
		return
	}

	allowed, err := h.service.AllowedActions(r.Context(), actor, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Transitions", err)
		return
	}

	if err := httputil.WriteSuccess(w, allowed); err != nil {
		h.log.Error("failed to write success response", "handler", "Transitions", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) ChangeState(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorID(r)
	if err != nil {
		h.writeError(w, "ChangeState", err)
		return
	}

	var req model.StateChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "ChangeState", apperrors.InvalidInput("Invalid request body"))
		return
	}

	rental, err := h.service.ChangeState(eventContext(r), actor, ps.ByName("id"), &req)
	if err != nil {
		h.writeError(w, "ChangeState", err)
		return
	}

	if err := httputil.WriteSuccess(w, rental); err != nil {
		h.log.Error("failed to write success response", "handler", "ChangeState", "operation", "WriteSuccess", "error", err)
	}
}

func (h *RentalHandler) ListByDepot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, err := httputil.ActorID(r)
	if err != nil {
		h.writeError(w, "ListByDepot", err)
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "ListByDepot", err)
		return
	}

	var state *model.RentalStatus
	if s := r.URL.Query().Get("state"); s != "" {
		st := model.RentalStatus(s)
		state = &st
	}

	rentals, total, err := h.service.ListByDepot(r.Context(), actor, ps.ByName("id"), state, limit, offset)
	if err != nil {
		h.writeError(w, "ListByDepot", err)
		return
	}

	if err := httputil.WritePaginated(w, rentals, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "ListByDepot", "operation", "WritePaginated", "error", err)
	}
}

// eventContext tags emitted events with the request id.
func eventContext(r *http.Request) context.Context {
	return events.WithCorrelationID(r.Context(), middleware.RequestID(r.Context()))
}

func (h *RentalHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *RentalHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/rentals", h.Create)
	router.GET("/api/v1/rentals/:id", h.GetByID)
	router.GET("/api/v1/rentals/:id/transitions", h.Transitions)
	router.POST("/api/v1/rentals/:id/state", h.ChangeState)
	router.GET("/api/v1/depots/:id/rentals", h.ListByDepot)
}
