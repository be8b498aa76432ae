package resolve_waitlist

// Исходы закрытия записи листа ожидания
const (
	OutcomeBooked    = "booked"
	OutcomeExpired   = "expired"
	OutcomeCancelled = "cancelled"
)

// ResolveRequest HTTP request model
type ResolveRequest struct {
	Outcome string `json:"outcome"`
}
