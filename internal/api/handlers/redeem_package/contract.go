package redeem_package

import (
	"context"

	"github.com/bookline/booking-service/internal/service/packages/models"
)

type PackagesService interface {
	Redeem(ctx context.Context, tenantID, packageID int64, req *models.RedeemRequest) (*models.RedeemResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
