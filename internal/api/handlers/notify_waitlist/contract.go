package notify_waitlist

import (
	"context"

	"github.com/bookline/booking-service/internal/service/waitlist/models"
)

type WaitlistService interface {
	Notify(ctx context.Context, tenantID, id int64, req *models.NotifyRequest) (*models.EntryResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
