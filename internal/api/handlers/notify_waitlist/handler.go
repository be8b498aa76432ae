package notify_waitlist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/service/waitlist"
	"github.com/bookline/booking-service/internal/service/waitlist/models"
)

const (
	msgMissingTenantID    = "отсутствует ID тенанта"
	msgInvalidEntryID     = "некорректный ID записи листа ожидания"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgNotFound           = "запись листа ожидания не найдена"
	msgAlreadyProcessed   = "запись листа ожидания уже обработана"
	msgOutOfRange         = "предлагаемый слот вне предпочитаемого диапазона"
	msgInvalidInput       = "некорректные дата или время слота"
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

// Handle POST /api/v1/waitlist/{entryId}/notify
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /waitlist/{id}/notify - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	entryID, err := strconv.ParseInt(mux.Vars(r)["entryId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /waitlist/{id}/notify - Invalid entry ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return
	}

	var req models.NotifyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /waitlist/{id}/notify - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Notify(r.Context(), tenantID, entryID, &req)
	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrEntryNotFound):
			h.logger.Warn("POST /waitlist/{id}/notify - Not found: tenant=%d, id=%d", tenantID, entryID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, waitlist.ErrInvalidTransition):
			h.logger.Warn("POST /waitlist/{id}/notify - Already processed: tenant=%d, id=%d", tenantID, entryID)
			handlers.RespondConflict(w, msgAlreadyProcessed)

		case errors.Is(err, waitlist.ErrDateOutOfRange):
			h.logger.Warn("POST /waitlist/{id}/notify - Slot out of range: tenant=%d, id=%d, date=%s, time=%s",
				tenantID, entryID, req.ProposedDate, req.ProposedTime)
			handlers.RespondBadRequest(w, msgOutOfRange)

		case errors.Is(err, waitlist.ErrInvalidInput):
			h.logger.Warn("POST /waitlist/{id}/notify - Invalid input: tenant=%d, id=%d", tenantID, entryID)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /waitlist/{id}/notify - Failed: tenant=%d, id=%d, error=%v", tenantID, entryID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /waitlist/{id}/notify - Notified: tenant=%d, id=%d", tenantID, entryID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
