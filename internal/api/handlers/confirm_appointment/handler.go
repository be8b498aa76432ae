package confirm_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/service/appointments"
)

const (
	msgNotFound      = "запись не найдена"
	msgCannotConfirm = "запись не может быть подтверждена"
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

// Handle POST /api/v1/confirmations/{token}/confirm
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	appointment, err := h.service.Confirm(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound), errors.Is(err, appointments.ErrInvalidInput):
			h.logger.Warn("POST /confirmations/{token}/confirm - Not found")
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, appointments.ErrCannotConfirm):
			h.logger.Warn("POST /confirmations/{token}/confirm - Cannot confirm")
			handlers.RespondConflict(w, msgCannotConfirm)

		default:
			h.logger.Error("POST /confirmations/{token}/confirm - Failed: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /confirmations/{token}/confirm - Confirmed: id=%d", appointment.ID)
	handlers.RespondJSON(w, http.StatusOK, appointment)
}
