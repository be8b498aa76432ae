package get_waitlist_entry

import (
	"context"

	"github.com/bookline/booking-service/internal/service/waitlist/models"
)

type WaitlistService interface {
	GetByID(ctx context.Context, tenantID, id int64) (*models.EntryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
