package create_booking

import (
	"time"

	"github.com/bookline/booking-service/internal/domain"
	createBooking "github.com/bookline/booking-service/internal/usecase/create_booking"
	"github.com/bookline/booking-service/pkg/types"
)

// CustomerPayload контактные данные клиента в HTTP запросе
type CustomerPayload struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID  int64           `json:"serviceId"`
	EmployeeID *int64          `json:"employeeId,omitempty"` // nil = любой свободный
	Date       string          `json:"date"`                 // "2025-10-15"
	StartTime  string          `json:"startTime"`            // "10:00"
	Customer   CustomerPayload `json:"customer"`
	Notes      string          `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID                int64   `json:"id"`
	EmployeeID        int64   `json:"employeeId"`
	ServiceID         int64   `json:"serviceId"`
	CustomerID        int64   `json:"customerId"`
	Date              string  `json:"date"`
	StartTime         string  `json:"startTime"`
	DurationMinutes   int     `json:"durationMinutes"`
	Status            string  `json:"status"`
	ConfirmationToken string  `json:"confirmationToken"`
	ServiceName       string  `json:"serviceName"`
	ServicePrice      float64 `json:"servicePrice"`
	CustomerName      string  `json:"customerName"`
	Notes             *string `json:"notes,omitempty"`
	CreatedAt         string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(tenantID int64) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	employee := domain.AnyAvailableEmployee()
	if r.EmployeeID != nil {
		employee = domain.SpecificEmployee(*r.EmployeeID)
	}

	return &createBooking.Request{
		TenantID:  tenantID,
		ServiceID: r.ServiceID,
		Employee:  employee,
		Date:      date,
		StartTime: startTime,
		Customer: domain.CustomerRef{
			Name:  r.Customer.Name,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		Notes: r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *AppointmentResponse {
	appt := resp.Appointment
	return &AppointmentResponse{
		ID:                appt.ID,
		EmployeeID:        appt.EmployeeID,
		ServiceID:         appt.ServiceID,
		CustomerID:        appt.CustomerID,
		Date:              appt.Date.Format(domain.DateFormat),
		StartTime:         appt.StartTime.String(),
		DurationMinutes:   appt.DurationMinutes,
		Status:            string(appt.Status),
		ConfirmationToken: appt.ConfirmationToken,
		ServiceName:       appt.ServiceName,
		ServicePrice:      appt.ServicePrice,
		CustomerName:      appt.CustomerName,
		Notes:             appt.Notes,
		CreatedAt:         appt.CreatedAt.Format(time.RFC3339),
	}
}
