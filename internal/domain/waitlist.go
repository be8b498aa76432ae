package domain

import (
	"time"

	"github.com/bookline/booking-service/pkg/types"
)

// WaitlistStatus represents the status of a waitlist entry
type WaitlistStatus string

const (
	WaitlistWaiting   WaitlistStatus = "waiting"
	WaitlistNotified  WaitlistStatus = "notified"
	WaitlistBooked    WaitlistStatus = "booked"
	WaitlistExpired   WaitlistStatus = "expired"
	WaitlistCancelled WaitlistStatus = "cancelled"
)

// waitlistTransitions maps each status to the statuses it may move to.
// Transitions are one-directional: nothing ever targets "waiting" again, and
// booked/expired/cancelled are terminal.
var waitlistTransitions = map[WaitlistStatus][]WaitlistStatus{
	WaitlistWaiting:  {WaitlistNotified, WaitlistBooked, WaitlistExpired, WaitlistCancelled},
	WaitlistNotified: {WaitlistBooked, WaitlistExpired, WaitlistCancelled},
}

// CanTransitionWaitlist reports whether from → to is a legal transition
func CanTransitionWaitlist(from, to WaitlistStatus) bool {
	for _, allowed := range waitlistTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal returns true for statuses that can never change again
func (s WaitlistStatus) IsTerminal() bool {
	return s == WaitlistBooked || s == WaitlistExpired || s == WaitlistCancelled
}

// WaitlistEntry is a standing request to be notified when a matching slot
// becomes available within a preferred date/time window.
type WaitlistEntry struct {
	ID       int64
	TenantID int64

	CustomerName  string
	CustomerEmail *string
	CustomerPhone *string

	ServiceID           int64
	PreferredEmployeeID *int64 // nil = any employee is acceptable

	PreferredDateFrom time.Time
	PreferredDateTo   time.Time
	PreferredTimeFrom *types.TimeString // nil = any time of day
	PreferredTimeTo   *types.TimeString

	Status WaitlistStatus

	// Priority ranks competing entries, higher served first;
	// ties break on CreatedAt (longest-waiting first).
	Priority int

	NotifiedAt        *time.Time
	NotificationCount int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AcceptsDate returns true if the proposed date falls inside the entry's
// preferred date range (inclusive on both ends, compared by calendar day)
func (e *WaitlistEntry) AcceptsDate(date time.Time) bool {
	day := truncateToDay(date)
	return !day.Before(truncateToDay(e.PreferredDateFrom)) && !day.After(truncateToDay(e.PreferredDateTo))
}

// AcceptsTime returns true if the proposed start time falls inside the
// entry's preferred time range; entries without a time range accept any time
func (e *WaitlistEntry) AcceptsTime(start types.TimeString) bool {
	if e.PreferredTimeFrom == nil || e.PreferredTimeTo == nil {
		return true
	}
	return !start.IsBefore(*e.PreferredTimeFrom) && !start.IsAfter(*e.PreferredTimeTo)
}

// AcceptsEmployee returns true if the entry accepts the given employee
func (e *WaitlistEntry) AcceptsEmployee(employeeID int64) bool {
	return e.PreferredEmployeeID == nil || *e.PreferredEmployeeID == employeeID
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
