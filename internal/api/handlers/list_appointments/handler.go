package list_appointments

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/internal/service/appointments"
	"github.com/bookline/booking-service/internal/service/appointments/models"
)

const (
	msgMissingTenantID = "отсутствует ID тенанта"
	msgInvalidEmployee = "некорректен параметр employeeId"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStatus   = "некорректный статус записи"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments?employeeId=2&date=2025-10-15&status=scheduled&includeCancelled=true
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /appointments - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	query := r.URL.Query()
	req := &models.ListAppointmentsRequest{
		TenantID:         tenantID,
		IncludeCancelled: query.Get("includeCancelled") == "true",
	}

	if raw := query.Get("employeeId"); raw != "" {
		employeeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || employeeID <= 0 {
			h.logger.Warn("GET /appointments - Invalid employee ID: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidEmployee)
			return
		}
		req.EmployeeID = &employeeID
	}

	if raw := query.Get("date"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /appointments - Invalid date: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		req.Date = &date
	}

	if raw := query.Get("status"); raw != "" {
		req.Status = &raw
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("GET /appointments - Invalid status filter: tenant=%d", tenantID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /appointments - Failed: tenant=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /appointments - Listed %d appointments: tenant=%d", len(result.Appointments), tenantID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
