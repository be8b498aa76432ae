package redeem_package

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/service/packages"
	"github.com/bookline/booking-service/internal/service/packages/models"
)

const (
	msgMissingTenantID    = "отсутствует ID тенанта"
	msgInvalidPackageID   = "некорректный ID пакета"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "пакет не найден"
	msgPackageInactive    = "пакет не активен или просрочен"
	msgNoUsesRemaining    = "кредиты пакета исчерпаны"
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

// Handle POST /api/v1/packages/{packageId}/redeem
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /packages/{id}/redeem - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	packageID, err := strconv.ParseInt(mux.Vars(r)["packageId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /packages/{id}/redeem - Invalid package ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPackageID)
		return
	}

	var req models.RedeemRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /packages/{id}/redeem - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Redeem(r.Context(), tenantID, packageID, &req)
	if err != nil {
		switch {
		case errors.Is(err, packages.ErrPackageNotFound):
			h.logger.Warn("POST /packages/{id}/redeem - Not found: tenant=%d, id=%d", tenantID, packageID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, packages.ErrPackageInactive):
			h.logger.Warn("POST /packages/{id}/redeem - Inactive: tenant=%d, id=%d", tenantID, packageID)
			handlers.RespondConflict(w, msgPackageInactive)

		case errors.Is(err, packages.ErrNoUsesRemaining):
			h.logger.Warn("POST /packages/{id}/redeem - No uses remaining: tenant=%d, id=%d", tenantID, packageID)
			handlers.RespondConflict(w, msgNoUsesRemaining)

		default:
			h.logger.Error("POST /packages/{id}/redeem - Failed: tenant=%d, id=%d, error=%v", tenantID, packageID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /packages/{id}/redeem - Redeemed: tenant=%d, id=%d, remaining=%d",
		tenantID, packageID, result.Package.UsesRemaining)
	handlers.RespondJSON(w, http.StatusOK, result)
}
