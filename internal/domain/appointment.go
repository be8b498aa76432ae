package domain

import (
	"time"

	"github.com/bookline/booking-service/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// BlockingStatuses are statuses that keep the employee-interval occupied.
// Only cancelled appointments release the interval; a no-show is discovered
// after the fact and the interval is already in the past by then.
var BlockingStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
	StatusCompleted,
	StatusNoShow,
}

// Appointment represents a single fixed-duration, non-recurring appointment.
// Appointments are never physically deleted: cancellation is a status change
// so the history stays intact.
type Appointment struct {
	ID              int64
	TenantID        int64
	EmployeeID      int64
	ServiceID       int64
	CustomerID      int64
	Date            time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// ConfirmationToken is an opaque unique identifier that lets the customer
	// look up and confirm their own appointment without authenticating.
	ConfirmationToken string

	// Denormalized data for history
	ServiceName  string
	ServicePrice float64
	CustomerName string
	Notes        *string

	CancelReason *string
	CancelledAt  *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Blocks returns true if the appointment still occupies its employee-interval
func (a *Appointment) Blocks() bool {
	return a.Status != StatusCancelled
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// CanBeConfirmed returns true if the customer can still confirm the appointment
func (a *Appointment) CanBeConfirmed() bool {
	return a.Status == StatusScheduled
}

// IsCancelled returns true if the appointment has been cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

// EndTime returns the end of the appointment interval (start + duration)
func (a *Appointment) EndTime() (types.TimeString, error) {
	return a.StartTime.AddMinutes(a.DurationMinutes)
}

// AppointmentsFilter is the filter for listing appointments of a tenant
type AppointmentsFilter struct {
	TenantID         int64      // Required
	EmployeeID       *int64     // Optional: single employee only
	Date             *time.Time // Optional: single calendar day
	Status           *AppointmentStatus
	IncludeCancelled bool  // Include cancelled appointments in the result
	ExcludeID        int64 // Optional: appointment to ignore (edit flows), 0 = none
}
