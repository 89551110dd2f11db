package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"verleih/internal/availability/service"
	apperrors "verleih/pkg/errors"
	httputil "verleih/pkg/http"
	"verleih/pkg/logger"
)

type AvailabilityHandler struct {
	service       service.AvailabilityService
	log           *logger.Logger
	defaultWindow time.Duration
	now           func() time.Time
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger, defaultWindow time.Duration) *AvailabilityHandler {
	return &AvailabilityHandler{
		service:       service,
		log:           log,
		defaultWindow: defaultWindow,
		now:           time.Now,
	}
}

// ForDepot answers with per-item availability. A missing start_date means
// now; a missing return_date means start_date plus the default window. An
// inverted window is rejected, never swapped.
func (h *AvailabilityHandler) ForDepot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	start, end, err := h.window(r)
	if err != nil {
		h.writeError(w, "ForDepot", err)
		return
	}

	result, err := h.service.ForDepot(r.Context(), ps.ByName("id"), start, end)
	if err != nil {
		h.writeError(w, "ForDepot", err)
		return
	}

	if err := httputil.WriteSuccess(w, result); err != nil {
		h.log.Error("failed to write success response", "handler", "ForDepot", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) window(r *http.Request) (time.Time, time.Time, error) {
	start, hasStart, err := httputil.ExtractTime(r, "start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, hasEnd, err := httputil.ExtractTime(r, "return_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if !hasStart {
		start = h.now().UTC().Truncate(time.Second)
	}
	if !hasEnd {
		end = start.Add(h.defaultWindow)
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, apperrors.InvalidInput("return_date must be after start_date")
	}
	return start, end, nil
}

func (h *AvailabilityHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/depots/:id/availability", h.ForDepot)
}
