package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/pkg/dbmetrics"
	"github.com/bookline/booking-service/pkg/psqlbuilder"
)

// Repository репозиторий справочника тенанта: услуги и сотрудники.
// Справочник редактируется админкой тенанта и для ядра бронирования read-only.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория справочника
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает услугу тенанта по ID
func (r *Repository) GetService(ctx context.Context, tenantID, serviceID int64) (*domain.ServiceDefinition, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"duration_minutes",
		"price",
		"active",
		"created_at",
		"updated_at",
	).
		From("services").
		Where(squirrel.Eq{"id": serviceID, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var svc domain.ServiceDefinition
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&svc.ID,
		&svc.TenantID,
		&svc.Name,
		&svc.DurationMinutes,
		&svc.Price,
		&svc.Active,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %v", ErrScanRow, err)
	}

	svc.CreatedAt = createdAt.Time
	svc.UpdatedAt = updatedAt.Time

	return &svc, nil
}

// GetEmployee получает сотрудника тенанта по ID
func (r *Repository) GetEmployee(ctx context.Context, tenantID, employeeID int64) (*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"active",
		"created_at",
		"updated_at",
	).
		From("employees").
		Where(squirrel.Eq{"id": employeeID, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetEmployee - build select query: %v", ErrBuildQuery, err)
	}

	var emp domain.Employee
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&emp.ID,
		&emp.TenantID,
		&emp.Name,
		&emp.Active,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetEmployee - scan employee: %v", ErrScanRow, err)
	}

	emp.CreatedAt = createdAt.Time
	emp.UpdatedAt = updatedAt.Time

	return &emp, nil
}

// ListActiveEmployees получает всех активных сотрудников тенанта.
// Используется для расчёта слотов в режиме "любой свободный сотрудник".
func (r *Repository) ListActiveEmployees(ctx context.Context, tenantID int64) ([]*domain.Employee, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"active",
		"created_at",
		"updated_at",
	).
		From("employees").
		Where(squirrel.Eq{"tenant_id": tenantID, "active": true}).
		OrderBy("id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveEmployees - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveEmployees - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	employees := make([]*domain.Employee, 0)
	for rows.Next() {
		var emp domain.Employee
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&emp.ID,
			&emp.TenantID,
			&emp.Name,
			&emp.Active,
			&createdAt,
			&updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: ListActiveEmployees - scan row: %v", ErrScanRow, err)
		}

		emp.CreatedAt = createdAt.Time
		emp.UpdatedAt = updatedAt.Time

		employees = append(employees, &emp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveEmployees - rows error: %v", ErrScanRow, err)
	}

	return employees, nil
}
