package get_package_redemptions

import (
	"context"

	"github.com/bookline/booking-service/internal/service/packages/models"
)

type PackagesService interface {
	Redemptions(ctx context.Context, tenantID, packageID int64) (*models.RedemptionListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
