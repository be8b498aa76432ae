package create_waitlist_entry

import (
	"context"

	"github.com/bookline/booking-service/internal/service/waitlist/models"
)

type WaitlistService interface {
	Create(ctx context.Context, req *models.CreateEntryRequest) (*models.EntryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
