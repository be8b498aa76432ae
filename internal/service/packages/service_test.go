package packages

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-service/internal/domain"
	customerRepo "github.com/bookline/booking-service/internal/infra/storage/customer"
	packagesRepo "github.com/bookline/booking-service/internal/infra/storage/packages"
	"github.com/bookline/booking-service/internal/service/packages/models"
	"github.com/bookline/booking-service/pkg/ptr"
)

type MockPackagesRepository struct {
	mock.Mock
}

func (m *MockPackagesRepository) GetDefinition(ctx context.Context, tenantID, definitionID int64) (*domain.PackageDefinition, error) {
	args := m.Called(ctx, tenantID, definitionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageDefinition), args.Error(1)
}

func (m *MockPackagesRepository) CountForLimit(ctx context.Context, tenantID, customerID, definitionID int64) (int, error) {
	args := m.Called(ctx, tenantID, customerID, definitionID)
	return args.Int(0), args.Error(1)
}

func (m *MockPackagesRepository) CreateCustomerPackage(ctx context.Context, pkg *domain.CustomerPackage) (*domain.CustomerPackage, error) {
	args := m.Called(ctx, pkg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerPackage), args.Error(1)
}

func (m *MockPackagesRepository) GetCustomerPackage(ctx context.Context, tenantID, id int64) (*domain.CustomerPackage, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerPackage), args.Error(1)
}

func (m *MockPackagesRepository) ListByCustomer(ctx context.Context, tenantID, customerID int64) ([]*domain.CustomerPackage, error) {
	args := m.Called(ctx, tenantID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CustomerPackage), args.Error(1)
}

func (m *MockPackagesRepository) RedeemUse(ctx context.Context, tenantID, id int64) (*domain.CustomerPackage, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerPackage), args.Error(1)
}

func (m *MockPackagesRepository) InsertRedemption(ctx context.Context, redemption *domain.PackageRedemption) (*domain.PackageRedemption, error) {
	args := m.Called(ctx, redemption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PackageRedemption), args.Error(1)
}

func (m *MockPackagesRepository) ListRedemptions(ctx context.Context, tenantID, customerPackageID int64) ([]*domain.PackageRedemption, error) {
	args := m.Called(ctx, tenantID, customerPackageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PackageRedemption), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

// passthroughTxManager выполняет функцию без реальной транзакции
type passthroughTxManager struct{}

func (passthroughTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type staticIDGenerator struct {
	id string
}

func (g *staticIDGenerator) NewID() string {
	return g.id
}

type frozenTimeProvider struct {
	now time.Time
}

func (p *frozenTimeProvider) Now() time.Time {
	return p.now
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

var testNow = time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)

func newService() (*Service, *MockPackagesRepository, *MockCustomerRepository) {
	repo := new(MockPackagesRepository)
	customers := new(MockCustomerRepository)
	svc := NewService(repo, customers, passthroughTxManager{},
		&staticIDGenerator{id: "redemption-1"}, &frozenTimeProvider{now: testNow}, nopLogger{})
	return svc, repo, customers
}

func activeDefinition() *domain.PackageDefinition {
	return &domain.PackageDefinition{
		ID:             3,
		TenantID:       1,
		Name:           "Абонемент 10 стрижек",
		ServiceID:      10,
		TotalUses:      10,
		Price:          12000,
		ValidityDays:   90,
		MaxPerCustomer: 2,
		Active:         true,
	}
}

func TestSell_Success(t *testing.T) {
	svc, repo, customers := newService()

	repo.On("GetDefinition", mock.Anything, int64(1), int64(3)).Return(activeDefinition(), nil)
	customers.On("GetByID", mock.Anything, int64(1), int64(7)).Return(&domain.Customer{ID: 7, TenantID: 1}, nil)
	repo.On("CountForLimit", mock.Anything, int64(1), int64(7), int64(3)).Return(1, nil)
	repo.On("CreateCustomerPackage", mock.Anything, mock.MatchedBy(func(p *domain.CustomerPackage) bool {
		return p.TotalUses == 10 &&
			p.UsesRemaining == 10 &&
			p.Status == domain.PackageActive &&
			p.ExpiresAt != nil && p.ExpiresAt.Equal(testNow.AddDate(0, 0, 90))
	})).Return(&domain.CustomerPackage{ID: 50, TenantID: 1, CustomerID: 7, TotalUses: 10, UsesRemaining: 10, Status: domain.PackageActive}, nil)

	resp, err := svc.Sell(context.Background(), &models.SellPackageRequest{TenantID: 1, CustomerID: 7, DefinitionID: 3})

	require.NoError(t, err)
	assert.Equal(t, int64(50), resp.ID)
	assert.Equal(t, 10, resp.UsesRemaining)
	repo.AssertExpectations(t)
}

func TestSell_LimitExceeded(t *testing.T) {
	svc, repo, customers := newService()

	repo.On("GetDefinition", mock.Anything, int64(1), int64(3)).Return(activeDefinition(), nil)
	customers.On("GetByID", mock.Anything, int64(1), int64(7)).Return(&domain.Customer{ID: 7, TenantID: 1}, nil)
	repo.On("CountForLimit", mock.Anything, int64(1), int64(7), int64(3)).Return(2, nil)

	_, err := svc.Sell(context.Background(), &models.SellPackageRequest{TenantID: 1, CustomerID: 7, DefinitionID: 3})

	assert.ErrorIs(t, err, ErrLimitExceeded)
	repo.AssertNotCalled(t, "CreateCustomerPackage", mock.Anything, mock.Anything)
}

func TestSell_UnlimitedDefinitionSkipsCount(t *testing.T) {
	svc, repo, customers := newService()

	definition := activeDefinition()
	definition.MaxPerCustomer = 0
	definition.ValidityDays = 0

	repo.On("GetDefinition", mock.Anything, int64(1), int64(3)).Return(definition, nil)
	customers.On("GetByID", mock.Anything, int64(1), int64(7)).Return(&domain.Customer{ID: 7, TenantID: 1}, nil)
	repo.On("CreateCustomerPackage", mock.Anything, mock.MatchedBy(func(p *domain.CustomerPackage) bool {
		return p.ExpiresAt == nil
	})).Return(&domain.CustomerPackage{ID: 50, TenantID: 1}, nil)

	_, err := svc.Sell(context.Background(), &models.SellPackageRequest{TenantID: 1, CustomerID: 7, DefinitionID: 3})

	require.NoError(t, err)
	repo.AssertNotCalled(t, "CountForLimit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSell_InactiveDefinition(t *testing.T) {
	svc, repo, _ := newService()

	definition := activeDefinition()
	definition.Active = false
	repo.On("GetDefinition", mock.Anything, int64(1), int64(3)).Return(definition, nil)

	_, err := svc.Sell(context.Background(), &models.SellPackageRequest{TenantID: 1, CustomerID: 7, DefinitionID: 3})
	assert.ErrorIs(t, err, ErrDefinitionNotFound)
}

func TestSell_CustomerNotFound(t *testing.T) {
	svc, repo, customers := newService()

	repo.On("GetDefinition", mock.Anything, int64(1), int64(3)).Return(activeDefinition(), nil)
	customers.On("GetByID", mock.Anything, int64(1), int64(7)).Return(nil, customerRepo.ErrCustomerNotFound)

	_, err := svc.Sell(context.Background(), &models.SellPackageRequest{TenantID: 1, CustomerID: 7, DefinitionID: 3})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestRedeem_Success(t *testing.T) {
	svc, repo, _ := newService()

	repo.On("RedeemUse", mock.Anything, int64(1), int64(50)).
		Return(&domain.CustomerPackage{ID: 50, TenantID: 1, TotalUses: 10, UsesRemaining: 9, Status: domain.PackageActive}, nil)
	repo.On("InsertRedemption", mock.Anything, mock.MatchedBy(func(r *domain.PackageRedemption) bool {
		return r.ID == "redemption-1" &&
			r.CustomerPackageID == 50 &&
			r.AppointmentID != nil && *r.AppointmentID == 100
	})).Return(&domain.PackageRedemption{ID: "redemption-1", TenantID: 1, CustomerPackageID: 50, RedeemedAt: testNow}, nil)

	resp, err := svc.Redeem(context.Background(), 1, 50, &models.RedeemRequest{AppointmentID: ptr.Ptr(int64(100))})

	require.NoError(t, err)
	assert.Equal(t, "redemption-1", resp.Redemption.ID)
	assert.Equal(t, 9, resp.Package.UsesRemaining)
	assert.Equal(t, 1, resp.Package.UsesConsumed)
	repo.AssertExpectations(t)
}

func TestRedeem_LastUseMarksFullyUsed(t *testing.T) {
	svc, repo, _ := newService()

	repo.On("RedeemUse", mock.Anything, int64(1), int64(50)).
		Return(&domain.CustomerPackage{ID: 50, TenantID: 1, TotalUses: 10, UsesRemaining: 0, Status: domain.PackageFullyUsed}, nil)
	repo.On("InsertRedemption", mock.Anything, mock.Anything).
		Return(&domain.PackageRedemption{ID: "redemption-1", TenantID: 1, CustomerPackageID: 50}, nil)

	resp, err := svc.Redeem(context.Background(), 1, 50, &models.RedeemRequest{})

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Package.UsesRemaining)
	assert.Equal(t, string(domain.PackageFullyUsed), resp.Package.Status)
}

func TestRedeem_NoUsesRemaining(t *testing.T) {
	svc, repo, _ := newService()

	repo.On("RedeemUse", mock.Anything, int64(1), int64(50)).Return(nil, packagesRepo.ErrNotRedeemable)
	repo.On("GetCustomerPackage", mock.Anything, int64(1), int64(50)).
		Return(&domain.CustomerPackage{ID: 50, TenantID: 1, TotalUses: 10, UsesRemaining: 0, Status: domain.PackageActive}, nil)

	_, err := svc.Redeem(context.Background(), 1, 50, &models.RedeemRequest{})

	assert.ErrorIs(t, err, ErrNoUsesRemaining)
	repo.AssertNotCalled(t, "InsertRedemption", mock.Anything, mock.Anything)
}

func TestRedeem_ExpiredPackage(t *testing.T) {
	svc, repo, _ := newService()

	expired := testNow.AddDate(0, 0, -1)
	repo.On("RedeemUse", mock.Anything, int64(1), int64(50)).Return(nil, packagesRepo.ErrNotRedeemable)
	repo.On("GetCustomerPackage", mock.Anything, int64(1), int64(50)).
		Return(&domain.CustomerPackage{ID: 50, TenantID: 1, TotalUses: 10, UsesRemaining: 3, ExpiresAt: &expired, Status: domain.PackageActive}, nil)

	_, err := svc.Redeem(context.Background(), 1, 50, &models.RedeemRequest{})
	assert.ErrorIs(t, err, ErrPackageInactive)
}

func TestRedeem_CancelledPackage(t *testing.T) {
	svc, repo, _ := newService()

	repo.On("RedeemUse", mock.Anything, int64(1), int64(50)).Return(nil, packagesRepo.ErrNotRedeemable)
	repo.On("GetCustomerPackage", mock.Anything, int64(1), int64(50)).
		Return(&domain.CustomerPackage{ID: 50, TenantID: 1, TotalUses: 10, UsesRemaining: 3, Status: domain.PackageCancelled}, nil)

	_, err := svc.Redeem(context.Background(), 1, 50, &models.RedeemRequest{})
	assert.ErrorIs(t, err, ErrPackageInactive)
}

func TestRedeem_PackageNotFound(t *testing.T) {
	svc, repo, _ := newService()

	repo.On("RedeemUse", mock.Anything, int64(1), int64(50)).Return(nil, packagesRepo.ErrPackageNotFound)

	_, err := svc.Redeem(context.Background(), 1, 50, &models.RedeemRequest{})
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestRedemptions_UnknownPackage(t *testing.T) {
	svc, repo, _ := newService()

	repo.On("GetCustomerPackage", mock.Anything, int64(1), int64(50)).Return(nil, packagesRepo.ErrPackageNotFound)

	_, err := svc.Redemptions(context.Background(), 1, 50)
	assert.ErrorIs(t, err, ErrPackageNotFound)
	repo.AssertNotCalled(t, "ListRedemptions", mock.Anything, mock.Anything, mock.Anything)
}
