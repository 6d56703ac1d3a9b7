package handler

import (
	"encoding/json"
	"net/http"

	"qota/internal/properties/service"
	apperrors "qota/pkg/errors"
	httputil "qota/pkg/http"
	"qota/pkg/logger"
	"qota/pkg/middleware"
	"qota/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PropertyHandler struct {
	service service.PropertyService
	log     *logger.Logger
}

func NewPropertyHandler(service service.PropertyService, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{
		service: service,
		log:     log,
	}
}

func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Member is not authenticated."))
		return
	}

	var req model.CreatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	created, err := h.service.Create(r.Context(), member, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PropertyHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		h.writeError(w, "GetByID", apperrors.Unauthorized("Member is not authenticated."))
		return
	}

	property, err := h.service.GetByID(r.Context(), member.ID, ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, property); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PropertyHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	member, ok := middleware.MemberFromContext(r.Context())
	if !ok {
		h.writeError(w, "GetMine", apperrors.Unauthorized("Member is not authenticated."))
		return
	}

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	properties, total, err := h.service.GetMine(r.Context(), member.ID, limit, offset)
	if err != nil {
		h.writeError(w, "GetMine", err)
		return
	}

	if err := httputil.WritePaginated(w, properties, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetMine", "operation", "WritePaginated", "error", err)
	}
}

func (h *PropertyHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *PropertyHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/properties", h.Create)
	router.GET("/api/v1/properties", h.GetMine)
	router.GET("/api/v1/properties/id/:id", h.GetByID)
}
