package resolve_waitlist

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/api/middleware"
	"github.com/bookline/booking-service/internal/service/waitlist"
)

const (
	msgMissingTenantID    = "отсутствует ID тенанта"
	msgInvalidEntryID     = "некорректный ID записи листа ожидания"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidOutcome     = "некорректный исход, ожидается booked, expired или cancelled"
	msgNotFound           = "запись листа ожидания не найдена"
	msgAlreadyProcessed   = "запись листа ожидания уже обработана"
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

// Handle POST /api/v1/waitlist/{entryId}/resolve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := middleware.GetTenantID(r.Context())
	if !ok {
		h.logger.Warn("POST /waitlist/{id}/resolve - Missing tenant ID")
		handlers.RespondUnauthorized(w, msgMissingTenantID)
		return
	}

	entryID, err := strconv.ParseInt(mux.Vars(r)["entryId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /waitlist/{id}/resolve - Invalid entry ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidEntryID)
		return
	}

	var req ResolveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /waitlist/{id}/resolve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	switch req.Outcome {
	case OutcomeBooked:
		err = h.service.MarkBooked(r.Context(), tenantID, entryID)
	case OutcomeExpired:
		err = h.service.Expire(r.Context(), tenantID, entryID)
	case OutcomeCancelled:
		err = h.service.Cancel(r.Context(), tenantID, entryID)
	default:
		h.logger.Warn("POST /waitlist/{id}/resolve - Invalid outcome: %q", req.Outcome)
		handlers.RespondBadRequest(w, msgInvalidOutcome)
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, waitlist.ErrEntryNotFound):
			h.logger.Warn("POST /waitlist/{id}/resolve - Not found: tenant=%d, id=%d", tenantID, entryID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, waitlist.ErrInvalidTransition):
			h.logger.Warn("POST /waitlist/{id}/resolve - Already processed: tenant=%d, id=%d, outcome=%s",
				tenantID, entryID, req.Outcome)
			handlers.RespondConflict(w, msgAlreadyProcessed)

		default:
			h.logger.Error("POST /waitlist/{id}/resolve - Failed: tenant=%d, id=%d, error=%v", tenantID, entryID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /waitlist/{id}/resolve - Resolved: tenant=%d, id=%d, outcome=%s", tenantID, entryID, req.Outcome)
	w.WriteHeader(http.StatusNoContent)
}
