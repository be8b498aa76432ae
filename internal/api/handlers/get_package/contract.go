package get_package

import (
	"context"

	"github.com/bookline/booking-service/internal/service/packages/models"
)

type PackagesService interface {
	GetByID(ctx context.Context, tenantID, id int64) (*models.PackageResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
