package get_customer_packages

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
)

const (
	msgMissingTenantID   = "отсутствует ID тенанта"
	msgInvalidCustomerID = "некорректный ID клиента"
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

// Handle GET /api/v1/customers/{customerId}/packages
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /customers/{id}/packages - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	customerID, err := strconv.ParseInt(mux.Vars(r)["customerId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /customers/{id}/packages - Invalid customer ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCustomerID)
		return
	}

	result, err := h.service.ListByCustomer(r.Context(), tenantID, customerID)
	if err != nil {
		h.logger.Error("GET /customers/{id}/packages - Failed: tenant=%d, customer=%d, error=%v",
			tenantID, customerID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /customers/{id}/packages - Listed %d packages: tenant=%d, customer=%d",
		len(result.Packages), tenantID, customerID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
