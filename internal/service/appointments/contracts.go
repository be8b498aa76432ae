package appointments

import (
	"context"

	"github.com/bookline/booking-service/internal/domain"
	waitlistModels "github.com/bookline/booking-service/internal/service/waitlist/models"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Appointment, error)
	GetByToken(ctx context.Context, token string) (*domain.Appointment, error)
	ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
	UpdateStatus(ctx context.Context, tenantID, id int64, status domain.AppointmentStatus, from ...domain.AppointmentStatus) error
	Cancel(ctx context.Context, tenantID, id int64, reason string) error
}

// WaitlistMatcher подбирает ожидающие записи листа ожидания под слот
type WaitlistMatcher interface {
	CandidatesFor(ctx context.Context, tenantID int64, slot waitlistModels.SlotRef) (*waitlistModels.EntryListResponse, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
