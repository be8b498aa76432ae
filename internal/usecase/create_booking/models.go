package create_booking

import (
	"time"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/pkg/types"
)

// Request запрос на создание записи
type Request struct {
	TenantID  int64
	ServiceID int64
	Employee  domain.EmployeeChoice
	Date      time.Time
	StartTime types.TimeString
	Customer  domain.CustomerRef
	Notes     string
}

// Response результат создания записи
type Response struct {
	Appointment *domain.Appointment
	Customer    *domain.Customer
}
