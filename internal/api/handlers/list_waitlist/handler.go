package list_waitlist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/service/waitlist"
	"github.com/bookline/booking-service/internal/service/waitlist/models"
)

const (
	msgMissingTenantID = "отсутствует ID тенанта"
	msgInvalidService  = "некорректен параметр serviceId"
	msgInvalidStatus   = "некорректный статус листа ожидания"
)

type Handler struct {
	service WaitlistService
	logger  Logger
}

func NewHandler(service WaitlistService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/waitlist?status=waiting&serviceId=1
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /waitlist - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	query := r.URL.Query()
	req := &models.ListEntriesRequest{TenantID: tenantID}

	if raw := query.Get("status"); raw != "" {
		req.Status = &raw
	}
	if raw := query.Get("serviceId"); raw != "" {
		serviceID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || serviceID <= 0 {
			h.logger.Warn("GET /waitlist - Invalid service ID: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidService)
			return
		}
		req.ServiceID = &serviceID
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrInvalidInput):
			h.logger.Warn("GET /waitlist - Invalid status filter: tenant=%d", tenantID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /waitlist - Failed: tenant=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /waitlist - Listed %d entries: tenant=%d", len(result.Entries), tenantID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
