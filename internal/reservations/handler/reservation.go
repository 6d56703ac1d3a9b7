package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"qota/internal/reservations/service"
	apperrors "qota/pkg/errors"
	httputil "qota/pkg/http"
	"qota/pkg/logger"
	"qota/pkg/middleware"
	"qota/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type ReservationHandler struct {
	service service.ReservationService
	log     *logger.Logger
}

func NewReservationHandler(service service.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log,
	}
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Member is not authenticated."))
		return
	}

	var req model.CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	reservation, err := h.service.Create(r.Context(), member, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, reservation); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *ReservationHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		h.writeError(w, "GetByID", apperrors.Unauthorized("Member is not authenticated."))
		return
	}

	reservation, err := h.service.GetByID(r.Context(), member.ID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, reservation); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ReservationHandler) GetByProperty(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		h.writeError(w, "GetByProperty", apperrors.Unauthorized("Member is not authenticated."))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetByProperty", err)
		return
	}

	start, err := parseTimeParam(r, "start_date")
	if err != nil {
		h.writeError(w, "GetByProperty", err)
		return
	}
	end, err := parseTimeParam(r, "end_date")
	if err != nil {
		h.writeError(w, "GetByProperty", err)
		return
	}

	reservations, total, err := h.service.GetByProperty(r.Context(), member.ID, ps.ByName("id"), start, end, limit, offset)
	if err != nil {
		h.writeError(w, "GetByProperty", err)
		return
	}

	if err := httputil.WritePaginated(w, reservations, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetByProperty", "operation", "WritePaginated", "error", err)
	}
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Member is not authenticated."))
		return
	}

	if err := h.service.Cancel(r.Context(), member, ps.ByName("id")); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

// parseTimeParam reads an optional RFC3339 query parameter.
func parseTimeParam(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.InvalidInput(name + " must be an RFC3339 timestamp")
	}
	return &t, nil
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *ReservationHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/reservations", h.Create)
	router.GET("/api/v1/reservations/id/:id", h.GetByID)
	router.GET("/api/v1/reservations/property/:id", h.GetByProperty)
	router.DELETE("/api/v1/reservations/id/:id", h.Cancel)
}
