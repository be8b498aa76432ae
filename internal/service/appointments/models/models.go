package models

import (
	"errors"
	"time"

	"github.com/bookline/booking-service/internal/domain"
	waitlistModels "github.com/bookline/booking-service/internal/service/waitlist/models"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// Request модели

// CancelAppointmentRequest запрос на отмену записи
type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// UpdateStatusRequest запрос на обновление статуса записи
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ListAppointmentsRequest запрос на получение записей
type ListAppointmentsRequest struct {
	TenantID         int64
	EmployeeID       *int64
	Date             *time.Time
	Status           *string
	IncludeCancelled bool
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *ListAppointmentsRequest) ToDomainFilter() (domain.AppointmentsFilter, error) {
	filter := domain.AppointmentsFilter{
		TenantID:         r.TenantID,
		EmployeeID:       r.EmployeeID,
		Date:             r.Date,
		IncludeCancelled: r.IncludeCancelled,
	}

	if r.Status != nil {
		status, err := ToDomainAppointmentStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// AppointmentResponse ответ с данными записи
type AppointmentResponse struct {
	ID              int64  `json:"id"`
	TenantID        int64  `json:"tenantId"`
	EmployeeID      int64  `json:"employeeId"`
	ServiceID       int64  `json:"serviceId"`
	CustomerID      int64  `json:"customerId"`
	Date            string `json:"date"`      // "2025-10-15"
	StartTime       string `json:"startTime"` // "10:00"
	DurationMinutes int    `json:"durationMinutes"`
	Status          string `json:"status"`

	ConfirmationToken string `json:"confirmationToken"`

	// Денормализованные данные
	ServiceName  string  `json:"serviceName"`
	ServicePrice float64 `json:"servicePrice"`
	CustomerName string  `json:"customerName"`
	Notes        *string `json:"notes,omitempty"`

	CancelReason *string `json:"cancelReason,omitempty"`
	CancelledAt  *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppointmentListResponse ответ со списком записей
type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
}

// CancelAppointmentResponse ответ на отмену: отмененная запись и
// кандидаты из листа ожидания на освободившийся слот
type CancelAppointmentResponse struct {
	Appointment AppointmentResponse            `json:"appointment"`
	Candidates  []waitlistModels.EntryResponse `json:"waitlistCandidates"`
}

// Методы конвертации

// FromDomainAppointment конвертирует domain модель в DTO
func FromDomainAppointment(a *domain.Appointment) *AppointmentResponse {
	if a == nil {
		return nil
	}

	resp := &AppointmentResponse{
		ID:                a.ID,
		TenantID:          a.TenantID,
		EmployeeID:        a.EmployeeID,
		ServiceID:         a.ServiceID,
		CustomerID:        a.CustomerID,
		Date:              a.Date.Format(domain.DateFormat),
		StartTime:         a.StartTime.String(),
		DurationMinutes:   a.DurationMinutes,
		Status:            string(a.Status),
		ConfirmationToken: a.ConfirmationToken,
		ServiceName:       a.ServiceName,
		ServicePrice:      a.ServicePrice,
		CustomerName:      a.CustomerName,
		Notes:             a.Notes,
		CancelReason:      a.CancelReason,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}

	if a.CancelledAt != nil {
		cancelledStr := a.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainAppointmentList конвертирует список domain моделей в DTO
func FromDomainAppointmentList(appointments []*domain.Appointment) *AppointmentListResponse {
	resp := &AppointmentListResponse{
		Appointments: make([]AppointmentResponse, 0, len(appointments)),
	}

	for _, appointment := range appointments {
		if apptResp := FromDomainAppointment(appointment); apptResp != nil {
			resp.Appointments = append(resp.Appointments, *apptResp)
		}
	}

	return resp
}

// ToDomainAppointmentStatus конвертирует строку в domain.AppointmentStatus с валидацией
func ToDomainAppointmentStatus(status string) (domain.AppointmentStatus, error) {
	s := domain.AppointmentStatus(status)

	switch s {
	case domain.StatusScheduled,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelled,
		domain.StatusNoShow:
		return s, nil
	}

	return "", ErrInvalidStatus
}
