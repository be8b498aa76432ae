package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/domain"
	getAvailableSlots "github.com/bookline/booking-service/internal/usecase/get_available_slots"
)

const (
	msgMissingTenantID  = "отсутствует ID тенанта"
	msgMissingServiceID = "отсутствует или некорректен параметр serviceId"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidEmployee  = "некорректен параметр employeeId"
	msgServiceNotFound  = "услуга не найдена"
	msgEmployeeNotFound = "сотрудник не найден"
	msgInvalidRequest   = "некорректные параметры запроса"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots?serviceId=1&date=2025-10-15&employeeId=2
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /slots - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	query := r.URL.Query()

	serviceID, err := strconv.ParseInt(query.Get("serviceId"), 10, 64)
	if err != nil || serviceID <= 0 {
		h.logger.Warn("GET /slots - Invalid service ID: %q", query.Get("serviceId"))
		handlers.RespondBadRequest(w, msgMissingServiceID)
		return
	}

	date, err := time.Parse(domain.DateFormat, query.Get("date"))
	if err != nil {
		h.logger.Warn("GET /slots - Invalid date: %q", query.Get("date"))
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// employeeId не указан - считаем объединение по всем сотрудникам
	employee := domain.AnyAvailableEmployee()
	if raw := query.Get("employeeId"); raw != "" {
		employeeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || employeeID <= 0 {
			h.logger.Warn("GET /slots - Invalid employee ID: %q", raw)
			handlers.RespondBadRequest(w, msgInvalidEmployee)
			return
		}
		employee = domain.SpecificEmployee(employeeID)
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		TenantID:  tenantID,
		ServiceID: serviceID,
		Employee:  employee,
		Date:      date,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrServiceNotFound):
			h.logger.Warn("GET /slots - Service not found: tenant=%d, service=%d", tenantID, serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getAvailableSlots.ErrEmployeeNotFound):
			h.logger.Warn("GET /slots - Employee not found: tenant=%d", tenantID)
			handlers.RespondNotFound(w, msgEmployeeNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /slots - Invalid input: tenant=%d, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgInvalidRequest)

		default:
			h.logger.Error("GET /slots - Failed to compute slots: tenant=%d, service=%d, error=%v",
				tenantID, serviceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /slots - Computed %d slots: tenant=%d, service=%d, date=%s",
		len(result.Slots), tenantID, serviceID, query.Get("date"))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
