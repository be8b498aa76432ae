package sell_package

import (
	"context"

	"github.com/bookline/booking-service/internal/service/packages/models"
)

type PackagesService interface {
	Sell(ctx context.Context, req *models.SellPackageRequest) (*models.PackageResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
