package get_available_slots

import (
	"context"

	"github.com/bookline/booking-service/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
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

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
