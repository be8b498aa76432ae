package sell_package

import (
	"errors"
	"net/http"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/service/packages"
	"github.com/bookline/booking-service/internal/service/packages/models"
)

const (
	msgMissingTenantID    = "отсутствует ID тенанта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgDefinitionNotFound = "определение пакета не найдено"
	msgCustomerNotFound   = "клиент не найден"
	msgLimitExceeded      = "превышен лимит пакетов на клиента"
	msgInvalidInput       = "некорректные данные продажи пакета"
)

type Handler struct {
	service PackagesService
	logger  Logger
}

func NewHandler(service PackagesService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/packages
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /packages - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	var req models.SellPackageRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /packages - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.TenantID = tenantID

	result, err := h.service.Sell(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, packages.ErrDefinitionNotFound):
			h.logger.Warn("POST /packages - Definition not found: tenant=%d, definition=%d", tenantID, req.DefinitionID)
			handlers.RespondNotFound(w, msgDefinitionNotFound)

		case errors.Is(err, packages.ErrCustomerNotFound):
			h.logger.Warn("POST /packages - Customer not found: tenant=%d, customer=%d", tenantID, req.CustomerID)
			handlers.RespondNotFound(w, msgCustomerNotFound)

		case errors.Is(err, packages.ErrLimitExceeded):
			h.logger.Warn("POST /packages - Limit exceeded: tenant=%d, customer=%d, definition=%d",
				tenantID, req.CustomerID, req.DefinitionID)
			handlers.RespondConflict(w, msgLimitExceeded)

		case errors.Is(err, packages.ErrInvalidInput):
			h.logger.Warn("POST /packages - Invalid input: tenant=%d, error=%v", tenantID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /packages - Failed: tenant=%d, error=%v", tenantID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /packages - Package sold: id=%d, tenant=%d, customer=%d", result.ID, tenantID, req.CustomerID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
