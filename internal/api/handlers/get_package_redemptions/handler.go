package get_package_redemptions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/service/packages"
)

const (
	msgMissingTenantID  = "отсутствует ID тенанта"
	msgInvalidPackageID = "некорректный ID пакета"
	msgNotFound         = "пакет не найден"
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

// Handle GET /api/v1/packages/{packageId}/redemptions
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("GET /packages/{id}/redemptions - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	packageID, err := strconv.ParseInt(mux.Vars(r)["packageId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /packages/{id}/redemptions - Invalid package ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPackageID)
		return
	}

	result, err := h.service.Redemptions(r.Context(), tenantID, packageID)
	if err != nil {
		switch {
		case errors.Is(err, packages.ErrPackageNotFound):
			h.logger.Warn("GET /packages/{id}/redemptions - Not found: tenant=%d, id=%d", tenantID, packageID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /packages/{id}/redemptions - Failed: tenant=%d, id=%d, error=%v",
				tenantID, packageID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /packages/{id}/redemptions - Listed %d redemptions: tenant=%d, id=%d",
		len(result.Redemptions), tenantID, packageID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
