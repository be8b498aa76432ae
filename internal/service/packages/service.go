package packages

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookline/booking-service/internal/domain"
	customerRepo "github.com/bookline/booking-service/internal/infra/storage/customer"
	packagesRepo "github.com/bookline/booking-service/internal/infra/storage/packages"
	"github.com/bookline/booking-service/internal/service/packages/models"
)

// Service сервис пакетов предоплаченных услуг.
//
// Остаток кредитов - это леджер: списание всегда сопровождается строкой
// аудита в той же транзакции, остаток никогда не уходит ниже нуля,
// конкурентные списания последнего кредита решает атомарный UPDATE в БД.
type Service struct {
	packagesRepo PackagesRepository
	customerRepo CustomerRepository
	txManager    TransactionManager
	ids          IDGenerator
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса пакетов
func NewService(
	packagesRepo PackagesRepository,
	customerRepo CustomerRepository,
	txManager TransactionManager,
	ids IDGenerator,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		packagesRepo: packagesRepo,
		customerRepo: customerRepo,
		txManager:    txManager,
		ids:          ids,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Sell продает пакет клиенту.
// Проверка лимита на клиента и вставка выполняются в одной serializable
// транзакции, чтобы две конкурентные продажи не пробили лимит
func (s *Service) Sell(ctx context.Context, req *models.SellPackageRequest) (*models.PackageResponse, error) {
	s.logger.Info("Packages.Sell: tenant=%d, customer=%d, definition=%d", req.TenantID, req.CustomerID, req.DefinitionID)

	if req.CustomerID <= 0 || req.DefinitionID <= 0 {
		s.logger.Warn("Packages.Sell: invalid input: customer=%d, definition=%d", req.CustomerID, req.DefinitionID)
		return nil, fmt.Errorf("%w: customer id and definition id must be positive", ErrInvalidInput)
	}

	definition, err := s.packagesRepo.GetDefinition(ctx, req.TenantID, req.DefinitionID)
	if err != nil {
		if errors.Is(err, packagesRepo.ErrDefinitionNotFound) {
			s.logger.Warn("Packages.Sell: definition id=%d not found", req.DefinitionID)
			return nil, ErrDefinitionNotFound
		}
		s.logger.Error("Packages.Sell: failed to get definition id=%d: %v", req.DefinitionID, err)
		return nil, fmt.Errorf("%w: Sell - failed to get definition: %v", ErrInternal, err)
	}
	if !definition.Active {
		s.logger.Warn("Packages.Sell: definition id=%d is inactive", req.DefinitionID)
		return nil, ErrDefinitionNotFound
	}

	if _, err := s.customerRepo.GetByID(ctx, req.TenantID, req.CustomerID); err != nil {
		if errors.Is(err, customerRepo.ErrCustomerNotFound) {
			s.logger.Warn("Packages.Sell: customer id=%d not found", req.CustomerID)
			return nil, ErrCustomerNotFound
		}
		s.logger.Error("Packages.Sell: failed to get customer id=%d: %v", req.CustomerID, err)
		return nil, fmt.Errorf("%w: Sell - failed to get customer: %v", ErrInternal, err)
	}

	var created *domain.CustomerPackage
	err = s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		if definition.HasCustomerLimit() {
			held, err := s.packagesRepo.CountForLimit(txCtx, req.TenantID, req.CustomerID, req.DefinitionID)
			if err != nil {
				s.logger.Error("Packages.Sell: failed to count packages for customer=%d: %v", req.CustomerID, err)
				return fmt.Errorf("%w: Sell - failed to count packages: %v", ErrInternal, err)
			}
			if held >= definition.MaxPerCustomer {
				s.logger.Warn("Packages.Sell: customer=%d holds %d/%d packages of definition=%d",
					req.CustomerID, held, definition.MaxPerCustomer, req.DefinitionID)
				return ErrLimitExceeded
			}
		}

		pkg := &domain.CustomerPackage{
			TenantID:      req.TenantID,
			CustomerID:    req.CustomerID,
			DefinitionID:  req.DefinitionID,
			TotalUses:     definition.TotalUses,
			UsesRemaining: definition.TotalUses,
			Status:        domain.PackageActive,
		}
		if definition.HasValidity() {
			expires := s.timeProvider.Now().AddDate(0, 0, definition.ValidityDays)
			pkg.ExpiresAt = &expires
		}

		var err error
		created, err = s.packagesRepo.CreateCustomerPackage(txCtx, pkg)
		if err != nil {
			s.logger.Error("Packages.Sell: failed to create package: %v", err)
			return fmt.Errorf("%w: Sell - failed to create package: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Packages.Sell: created package id=%d with %d uses", created.ID, created.TotalUses)
	return models.FromDomainPackage(created), nil
}

// Redeem списывает один кредит пакета.
// Атомарный декремент с проверкой остатка и строка аудита - одна транзакция:
// либо записаны оба, либо ни одного
func (s *Service) Redeem(ctx context.Context, tenantID, packageID int64, req *models.RedeemRequest) (*models.RedeemResponse, error) {
	s.logger.Info("Packages.Redeem: tenant=%d, package=%d", tenantID, packageID)

	var (
		updated    *domain.CustomerPackage
		redemption *domain.PackageRedemption
	)
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.packagesRepo.RedeemUse(txCtx, tenantID, packageID)
		if err != nil {
			if errors.Is(err, packagesRepo.ErrPackageNotFound) {
				s.logger.Warn("Packages.Redeem: package id=%d not found", packageID)
				return ErrPackageNotFound
			}
			if errors.Is(err, packagesRepo.ErrNotRedeemable) {
				return s.classifyNotRedeemable(txCtx, tenantID, packageID)
			}
			s.logger.Error("Packages.Redeem: failed to redeem use for package id=%d: %v", packageID, err)
			return fmt.Errorf("%w: Redeem - failed to redeem use: %v", ErrInternal, err)
		}

		redemption, err = s.packagesRepo.InsertRedemption(txCtx, &domain.PackageRedemption{
			ID:                s.ids.NewID(),
			TenantID:          tenantID,
			CustomerPackageID: packageID,
			AppointmentID:     req.AppointmentID,
		})
		if err != nil {
			s.logger.Error("Packages.Redeem: failed to insert redemption for package id=%d: %v", packageID, err)
			return fmt.Errorf("%w: Redeem - failed to insert redemption: %v", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Packages.Redeem: package id=%d, redemption id=%s, %d uses left",
		packageID, redemption.ID, updated.UsesRemaining)
	return &models.RedeemResponse{
		Redemption: *models.FromDomainRedemption(redemption),
		Package:    *models.FromDomainPackage(updated),
	}, nil
}

// GetByID получает пакет клиента по ID
func (s *Service) GetByID(ctx context.Context, tenantID, id int64) (*models.PackageResponse, error) {
	pkg, err := s.getPackage(ctx, tenantID, id, "GetByID")
	if err != nil {
		return nil, err
	}
	return models.FromDomainPackage(pkg), nil
}

// ListByCustomer возвращает пакеты клиента, новые первыми
func (s *Service) ListByCustomer(ctx context.Context, tenantID, customerID int64) (*models.PackageListResponse, error) {
	pkgs, err := s.packagesRepo.ListByCustomer(ctx, tenantID, customerID)
	if err != nil {
		s.logger.Error("Packages.ListByCustomer: repository error for customer=%d: %v", customerID, err)
		return nil, fmt.Errorf("%w: ListByCustomer - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainPackageList(pkgs), nil
}

// Redemptions возвращает историю списаний пакета, новые первыми
func (s *Service) Redemptions(ctx context.Context, tenantID, packageID int64) (*models.RedemptionListResponse, error) {
	if _, err := s.getPackage(ctx, tenantID, packageID, "Redemptions"); err != nil {
		return nil, err
	}

	redemptions, err := s.packagesRepo.ListRedemptions(ctx, tenantID, packageID)
	if err != nil {
		s.logger.Error("Packages.Redemptions: repository error for package=%d: %v", packageID, err)
		return nil, fmt.Errorf("%w: Redemptions - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainRedemptionList(redemptions), nil
}

// classifyNotRedeemable различает причину отказа повторным чтением пакета
func (s *Service) classifyNotRedeemable(ctx context.Context, tenantID, packageID int64) error {
	pkg, err := s.packagesRepo.GetCustomerPackage(ctx, tenantID, packageID)
	if err != nil {
		if errors.Is(err, packagesRepo.ErrPackageNotFound) {
			s.logger.Warn("Packages.Redeem: package id=%d not found", packageID)
			return ErrPackageNotFound
		}
		s.logger.Error("Packages.Redeem: failed to get package id=%d: %v", packageID, err)
		return fmt.Errorf("%w: Redeem - failed to get package: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	if pkg.Status != domain.PackageActive || (pkg.ExpiresAt != nil && now.After(*pkg.ExpiresAt)) {
		s.logger.Warn("Packages.Redeem: package id=%d is not active (status=%s)", packageID, pkg.Status)
		return ErrPackageInactive
	}

	s.logger.Warn("Packages.Redeem: package id=%d has no uses remaining", packageID)
	return ErrNoUsesRemaining
}

func (s *Service) getPackage(ctx context.Context, tenantID, id int64, op string) (*domain.CustomerPackage, error) {
	pkg, err := s.packagesRepo.GetCustomerPackage(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, packagesRepo.ErrPackageNotFound) {
			s.logger.Warn("Packages.%s: package id=%d not found", op, id)
			return nil, ErrPackageNotFound
		}
		s.logger.Error("Packages.%s: repository error for package id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return pkg, nil
}
