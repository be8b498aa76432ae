package packages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/pkg/dbmetrics"
	"github.com/bookline/booking-service/pkg/psqlbuilder"
)

var customerPackageColumns = []string{
	"id",
	"tenant_id",
	"customer_id",
	"definition_id",
	"total_uses",
	"uses_remaining",
	"expires_at",
	"status",
	"purchased_at",
	"updated_at",
}

// Repository репозиторий пакетов предоплаченных кредитов
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория пакетов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetDefinition получает определение пакета тенанта по ID
func (r *Repository) GetDefinition(ctx context.Context, tenantID, definitionID int64) (*domain.PackageDefinition, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"service_id",
		"total_uses",
		"price",
		"validity_days",
		"max_per_customer",
		"active",
		"created_at",
		"updated_at",
	).
		From("package_definitions").
		Where(squirrel.Eq{"id": definitionID, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetDefinition - build select query: %v", ErrBuildQuery, err)
	}

	var def domain.PackageDefinition
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&def.ID,
		&def.TenantID,
		&def.Name,
		&def.ServiceID,
		&def.TotalUses,
		&def.Price,
		&def.ValidityDays,
		&def.MaxPerCustomer,
		&def.Active,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDefinitionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetDefinition - scan definition: %v", ErrScanRow, err)
	}

	def.CreatedAt = createdAt.Time
	def.UpdatedAt = updatedAt.Time

	return &def, nil
}

// CountForLimit считает пакеты клиента по определению, учитываемые в лимите
// max_per_customer (active и fully_used).
// Внутри транзакции продажи строки блокируются конкурентной вставкой
// за счёт сериализуемого уровня изоляции.
func (r *Repository) CountForLimit(ctx context.Context, tenantID, customerID, definitionID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("COUNT(*)").
		From("customer_packages").
		Where(squirrel.Eq{
			"tenant_id":     tenantID,
			"customer_id":   customerID,
			"definition_id": definitionID,
			"status": []string{
				string(domain.PackageActive),
				string(domain.PackageFullyUsed),
			},
		}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CountForLimit - build select query: %v", ErrBuildQuery, err)
	}

	var count int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: CountForLimit - scan count: %v", ErrScanRow, err)
	}

	return count, nil
}

// CreateCustomerPackage создает пакет клиента при продаже
func (r *Repository) CreateCustomerPackage(ctx context.Context, pkg *domain.CustomerPackage) (*domain.CustomerPackage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("customer_packages").
		Columns(
			"tenant_id",
			"customer_id",
			"definition_id",
			"total_uses",
			"uses_remaining",
			"expires_at",
			"status",
		).
		Values(
			pkg.TenantID,
			pkg.CustomerID,
			pkg.DefinitionID,
			pkg.TotalUses,
			pkg.UsesRemaining,
			pkg.ExpiresAt,
			pkg.Status,
		).
		Suffix("RETURNING id, purchased_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CreateCustomerPackage - build insert query: %v", ErrBuildQuery, err)
	}

	var purchasedAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&pkg.ID, &purchasedAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: CreateCustomerPackage - execute insert: %v", ErrExecQuery, err)
	}

	pkg.PurchasedAt = purchasedAt.Time
	pkg.UpdatedAt = updatedAt.Time

	return pkg, nil
}

// GetCustomerPackage получает пакет клиента по ID в рамках тенанта
func (r *Repository) GetCustomerPackage(ctx context.Context, tenantID, id int64) (*domain.CustomerPackage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(customerPackageColumns...).
		From("customer_packages").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetCustomerPackage - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanPackage(executor.QueryRowContext(ctx, query, args...), "GetCustomerPackage")
}

// ListByCustomer получает пакеты клиента, новые первыми
func (r *Repository) ListByCustomer(ctx context.Context, tenantID, customerID int64) ([]*domain.CustomerPackage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(customerPackageColumns...).
		From("customer_packages").
		Where(squirrel.Eq{"tenant_id": tenantID, "customer_id": customerID}).
		OrderBy("purchased_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.CustomerPackage, 0)
	for rows.Next() {
		pkg, err := r.scanPackageRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, pkg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByCustomer - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

// RedeemUse атомарно списывает один кредит пакета.
// Проверка остатка выполняется в WHERE того же UPDATE, поэтому два
// конкурентных списания последнего кредита не могут увести остаток ниже нуля:
// проигравший не находит строку и получает ErrNotRedeemable.
// Когда остаток достигает нуля, статус в том же запросе становится fully_used.
func (r *Repository) RedeemUse(ctx context.Context, tenantID, id int64) (*domain.CustomerPackage, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("customer_packages").
		Set("uses_remaining", squirrel.Expr("uses_remaining - 1")).
		Set("status", squirrel.Expr(
			"CASE WHEN uses_remaining - 1 = 0 THEN 'fully_used' ELSE status END",
		)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":        id,
			"tenant_id": tenantID,
			"status":    domain.PackageActive,
		}).
		Where(squirrel.Gt{"uses_remaining": 0}).
		Where(squirrel.Or{
			squirrel.Eq{"expires_at": nil},
			squirrel.Expr("expires_at > NOW()"),
		}).
		Suffix("RETURNING " + strings.Join(customerPackageColumns, ", ")).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: RedeemUse - build update query: %v", ErrBuildQuery, err)
	}

	pkg, err := r.scanPackage(executor.QueryRowContext(ctx, query, args...), "RedeemUse")
	if errors.Is(err, ErrPackageNotFound) {
		return nil, ErrNotRedeemable
	}
	return pkg, err
}

// InsertRedemption добавляет audit-строку списания.
// Таблица append-only: строки никогда не изменяются и не удаляются.
func (r *Repository) InsertRedemption(ctx context.Context, redemption *domain.PackageRedemption) (*domain.PackageRedemption, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("package_redemptions").
		Columns(
			"id",
			"tenant_id",
			"customer_package_id",
			"appointment_id",
		).
		Values(
			redemption.ID,
			redemption.TenantID,
			redemption.CustomerPackageID,
			redemption.AppointmentID,
		).
		Suffix("RETURNING redeemed_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: InsertRedemption - build insert query: %v", ErrBuildQuery, err)
	}

	var redeemedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&redeemedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: InsertRedemption - execute insert: %v", ErrExecQuery, err)
	}

	redemption.RedeemedAt = redeemedAt.Time

	return redemption, nil
}

// ListRedemptions получает историю списаний пакета, новые первыми
func (r *Repository) ListRedemptions(ctx context.Context, tenantID, customerPackageID int64) ([]*domain.PackageRedemption, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"customer_package_id",
		"appointment_id",
		"redeemed_at",
	).
		From("package_redemptions").
		Where(squirrel.Eq{"tenant_id": tenantID, "customer_package_id": customerPackageID}).
		OrderBy("redeemed_at DESC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListRedemptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListRedemptions - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	result := make([]*domain.PackageRedemption, 0)
	for rows.Next() {
		var red domain.PackageRedemption
		var redeemedAt sql.NullTime

		err := rows.Scan(
			&red.ID,
			&red.TenantID,
			&red.CustomerPackageID,
			&red.AppointmentID,
			&redeemedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListRedemptions - scan row: %v", ErrScanRow, err)
		}

		red.RedeemedAt = redeemedAt.Time
		result = append(result, &red)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListRedemptions - rows error: %v", ErrScanRow, err)
	}

	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPackage сканирует пакет клиента из одной строки результата
func (r *Repository) scanPackage(row *sql.Row, op string) (*domain.CustomerPackage, error) {
	pkg, err := scanPackageFrom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPackageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan package: %v", ErrScanRow, op, err)
	}
	return pkg, nil
}

// scanPackageRow сканирует пакет клиента из строки курсора
func (r *Repository) scanPackageRow(rows *sql.Rows) (*domain.CustomerPackage, error) {
	pkg, err := scanPackageFrom(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: scanPackageRow - scan row: %v", ErrScanRow, err)
	}
	return pkg, nil
}

func scanPackageFrom(s rowScanner) (*domain.CustomerPackage, error) {
	var pkg domain.CustomerPackage
	var purchasedAt, updatedAt sql.NullTime

	err := s.Scan(
		&pkg.ID,
		&pkg.TenantID,
		&pkg.CustomerID,
		&pkg.DefinitionID,
		&pkg.TotalUses,
		&pkg.UsesRemaining,
		&pkg.ExpiresAt,
		&pkg.Status,
		&purchasedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	pkg.PurchasedAt = purchasedAt.Time
	pkg.UpdatedAt = updatedAt.Time

	return &pkg, nil
}
