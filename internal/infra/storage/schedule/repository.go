package schedule

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/pkg/dbmetrics"
	"github.com/bookline/booking-service/pkg/psqlbuilder"
	"github.com/bookline/booking-service/pkg/types"
)

// Repository репозиторий недельных графиков сотрудников.
// Графики хранятся построчно (сотрудник + день недели + окно) и
// собираются в фиксированный массив из семи дней при чтении.
// Для ядра бронирования графики read-only.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория графиков
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByEmployee получает недельный график сотрудника.
// Дни без строки в базе считаются нерабочими - это не ошибка.
func (r *Repository) GetByEmployee(ctx context.Context, tenantID, employeeID int64) (*domain.EmployeeSchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"weekday",
		"start_time",
		"end_time",
	).
		From("employee_schedules").
		Where(squirrel.Eq{"tenant_id": tenantID, "employee_id": employeeID}).
		OrderBy("weekday ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmployee - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByEmployee - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	sched := &domain.EmployeeSchedule{
		EmployeeID: employeeID,
		TenantID:   tenantID,
	}

	for rows.Next() {
		var weekday int
		var start, end types.TimeString

		if err := rows.Scan(&weekday, &start, &end); err != nil {
			return nil, fmt.Errorf("%w: GetByEmployee - scan row: %v", ErrScanRow, err)
		}

		if weekday < 0 || weekday > 6 {
			return nil, fmt.Errorf("%w: GetByEmployee - weekday %d out of range", ErrScanRow, weekday)
		}

		sched.Days[weekday] = domain.WorkWindow{
			Working: true,
			Start:   start,
			End:     end,
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByEmployee - rows error: %v", ErrScanRow, err)
	}

	return sched, nil
}
