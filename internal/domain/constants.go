package domain

// SlotGranularityMinutes is the fixed step between candidate slot start times.
// It must be the same for availability computation and booking-time
// re-validation, otherwise a slot could be offered but then rejected.
const SlotGranularityMinutes = 30

// Business validation constants
const (
	MinServiceDurationMinutes = 5
	MaxServiceDurationMinutes = 480 // 8 hours
	MaxNotesLength            = 500
	MaxCancelReasonLength     = 500
	MaxCustomerNameLength     = 200
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)
