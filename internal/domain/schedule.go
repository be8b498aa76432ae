package domain

import (
	"time"

	"github.com/bookline/booking-service/pkg/types"
)

// WorkWindow is the availability window of an employee on one weekday
type WorkWindow struct {
	Working bool
	Start   types.TimeString
	End     types.TimeString
}

// EmployeeSchedule is the weekly availability of one employee.
// Days is a fixed-size table indexed by time.Weekday (Sunday = 0), so a
// missing or misspelled day name cannot exist by construction.
type EmployeeSchedule struct {
	EmployeeID int64
	TenantID   int64
	Days       [7]WorkWindow
}

// WindowFor returns the work window for the given weekday
func (s *EmployeeSchedule) WindowFor(weekday time.Weekday) WorkWindow {
	return s.Days[weekday]
}

// WindowForDate returns the work window for the weekday of the given date
func (s *EmployeeSchedule) WindowForDate(date time.Time) WorkWindow {
	return s.Days[date.Weekday()]
}
