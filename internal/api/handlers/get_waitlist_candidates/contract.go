package get_waitlist_candidates

import (
	"context"

	"github.com/bookline/booking-service/internal/service/waitlist/models"
)

type WaitlistService interface {
	CandidatesFor(ctx context.Context, tenantID int64, slot models.SlotRef) (*models.EntryListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
