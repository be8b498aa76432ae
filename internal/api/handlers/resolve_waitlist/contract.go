package resolve_waitlist

import "context"

type WaitlistService interface {
	MarkBooked(ctx context.Context, tenantID, id int64) error
	Expire(ctx context.Context, tenantID, id int64) error
	Cancel(ctx context.Context, tenantID, id int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
