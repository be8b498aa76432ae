package get_appointment_by_token

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/bookline/booking-service/internal/api/handlers"
	"github.com/bookline/booking-service/internal/service/appointments"
)

const (
	msgNotFound = "запись не найдена"
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

// Handle GET /api/v1/confirmations/{token}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	appointment, err := h.service.GetByToken(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, appointments.ErrAppointmentNotFound), errors.Is(err, appointments.ErrInvalidInput):
			// Несуществующий и пустой токен неразличимы для клиента
			h.logger.Warn("GET /confirmations/{token} - Not found")
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /confirmations/{token} - Failed: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, appointment)
}
