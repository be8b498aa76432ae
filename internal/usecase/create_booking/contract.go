package create_booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/internal/integrations/notifier"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error)
}

// CatalogRepository интерфейс справочника услуг и сотрудников
type CatalogRepository interface {
	GetService(ctx context.Context, tenantID, serviceID int64) (*domain.ServiceDefinition, error)
	GetEmployee(ctx context.Context, tenantID, employeeID int64) (*domain.Employee, error)
	ListActiveEmployees(ctx context.Context, tenantID int64) ([]*domain.Employee, error)
}

// ScheduleRepository интерфейс репозитория графиков сотрудников
type ScheduleRepository interface {
	GetByEmployee(ctx context.Context, tenantID, employeeID int64) (*domain.EmployeeSchedule, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	FindOrCreate(ctx context.Context, tenantID int64, ref domain.CustomerRef) (*domain.Customer, error)
}

// NotifierClient интерфейс клиента сервиса уведомлений
type NotifierClient interface {
	SendBookingConfirmation(ctx context.Context, msg notifier.BookingConfirmation) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TokenGenerator интерфейс генерации confirmation token (для тестирования)
type TokenGenerator interface {
	NewToken() string
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// UUIDTokenGenerator генератор токенов для production
type UUIDTokenGenerator struct{}

// NewToken возвращает новый глобально-уникальный токен
func (g *UUIDTokenGenerator) NewToken() string {
	return uuid.NewString()
}
