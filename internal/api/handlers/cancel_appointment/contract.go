package cancel_appointment

import (
	"context"

	"github.com/bookline/booking-service/internal/service/appointments/models"
)

type AppointmentService interface {
	Cancel(ctx context.Context, tenantID, id int64, req *models.CancelAppointmentRequest) (*models.CancelAppointmentResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
