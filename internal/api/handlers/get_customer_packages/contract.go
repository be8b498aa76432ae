package get_customer_packages

import (
	"context"

	"github.com/bookline/booking-service/internal/service/packages/models"
)

type PackagesService interface {
	ListByCustomer(ctx context.Context, tenantID, customerID int64) (*models.PackageListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
