package packages

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bookline/booking-service/internal/domain"
)

// PackagesRepository интерфейс репозитория пакетов
type PackagesRepository interface {
	GetDefinition(ctx context.Context, tenantID, definitionID int64) (*domain.PackageDefinition, error)
	CountForLimit(ctx context.Context, tenantID, customerID, definitionID int64) (int, error)
	CreateCustomerPackage(ctx context.Context, pkg *domain.CustomerPackage) (*domain.CustomerPackage, error)
	GetCustomerPackage(ctx context.Context, tenantID, id int64) (*domain.CustomerPackage, error)
	ListByCustomer(ctx context.Context, tenantID, customerID int64) ([]*domain.CustomerPackage, error)
	RedeemUse(ctx context.Context, tenantID, id int64) (*domain.CustomerPackage, error)
	InsertRedemption(ctx context.Context, redemption *domain.PackageRedemption) (*domain.PackageRedemption, error)
	ListRedemptions(ctx context.Context, tenantID, customerPackageID int64) ([]*domain.PackageRedemption, error)
}

// CustomerRepository интерфейс репозитория клиентов
type CustomerRepository interface {
	GetByID(ctx context.Context, tenantID, id int64) (*domain.Customer, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// IDGenerator интерфейс генерации идентификаторов списаний (для тестирования)
type IDGenerator interface {
	NewID() string
}

// TimeProvider интерфейс получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// UUIDGenerator генератор идентификаторов для production
type UUIDGenerator struct{}

// NewID возвращает новый глобально-уникальный идентификатор
func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// RealTimeProvider возвращает системное время
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
