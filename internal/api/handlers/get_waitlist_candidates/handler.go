package get_waitlist_candidates

import (
	"net/http"
	"strconv"
	"time"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/internal/service/waitlist/models"
	"github.com/bookline/booking-service/pkg/types"
)

const (
	msgMissingTenantID = "отсутствует ID тенанта"
	msgInvalidService  = "отсутствует или некорректен параметр serviceId"
	msgInvalidEmployee = "отсутствует или некорректен параметр employeeId"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime     = "некорректный формат времени, ожидается HH:MM"
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

// Handle GET /api/v1/waitlist/candidates?serviceId=1&employeeId=2&date=2025-10-15&startTime=10:00
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /waitlist/candidates - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	query := r.URL.Query()

	serviceID, err := strconv.ParseInt(query.Get("serviceId"), 10, 64)
	if err != nil || serviceID <= 0 {
		h.logger.Warn("GET /waitlist/candidates - Invalid service ID: %q", query.Get("serviceId"))
		handlers.RespondBadRequest(w, msgInvalidService)
		return
	}

	employeeID, err := strconv.ParseInt(query.Get("employeeId"), 10, 64)
	if err != nil || employeeID <= 0 {
		h.logger.Warn("GET /waitlist/candidates - Invalid employee ID: %q", query.Get("employeeId"))
		handlers.RespondBadRequest(w, msgInvalidEmployee)
		return
	}

	date, err := time.Parse(domain.DateFormat, query.Get("date"))
	if err != nil {
		h.logger.Warn("GET /waitlist/candidates - Invalid date: %q", query.Get("date"))
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	startTime, err := types.NewTimeStringFromString(query.Get("startTime"))
	if err != nil {
		h.logger.Warn("GET /waitlist/candidates - Invalid start time: %q", query.Get("startTime"))
		handlers.RespondBadRequest(w, msgInvalidTime)
		return
	}

	result, err := h.service.CandidatesFor(r.Context(), tenantID, models.SlotRef{
		ServiceID:  serviceID,
		EmployeeID: employeeID,
		Date:       date,
		StartTime:  startTime,
	})
	if err != nil {
		h.logger.Error("GET /waitlist/candidates - Failed: tenant=%d, error=%v", tenantID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /waitlist/candidates - Matched %d entries: tenant=%d, service=%d",
		len(result.Entries), tenantID, serviceID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
