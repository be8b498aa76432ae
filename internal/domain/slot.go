package domain

import "github.com/bookline/booking-service/pkg/types"

// Slot is a candidate appointment start time for a service on a date.
// A slot is valid only if start + duration stays within the employee's work
// window and the interval does not overlap an existing blocking appointment.
type Slot struct {
	StartTime       types.TimeString
	DurationMinutes int
}

// End returns the end of the slot interval
func (s Slot) End() (types.TimeString, error) {
	return s.StartTime.AddMinutes(s.DurationMinutes)
}
