package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/pkg/dbmetrics"
	"github.com/bookline/booking-service/pkg/psqlbuilder"
)

// Коды ошибок PostgreSQL, которые означают занятый интервал
const (
	pqUniqueViolation    = "23505"
	pqExclusionViolation = "23P01"
)

var appointmentColumns = []string{
	"id",
	"tenant_id",
	"employee_id",
	"service_id",
	"customer_id",
	"appointment_date",
	"start_time",
	"duration_minutes",
	"status",
	"confirmation_token",
	"service_name",
	"service_price",
	"customer_name",
	"notes",
	"cancel_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями на услуги
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись.
// Если в контексте передана активная транзакция (через context.Value), использует её.
//
// База данных дополнительно защищена exclusion constraint на
// (employee_id, интервал записи): даже если проверка пересечений в коде
// пропустила гонку, второй INSERT на тот же интервал вернёт ErrTimeConflict.
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("appointments").
		Columns(
			"tenant_id",
			"employee_id",
			"service_id",
			"customer_id",
			"appointment_date",
			"start_time",
			"duration_minutes",
			"status",
			"confirmation_token",
			"service_name",
			"service_price",
			"customer_name",
			"notes",
		).
		Values(
			appt.TenantID,
			appt.EmployeeID,
			appt.ServiceID,
			appt.CustomerID,
			appt.Date,
			appt.StartTime,
			appt.DurationMinutes,
			appt.Status,
			appt.ConfirmationToken,
			appt.ServiceName,
			appt.ServicePrice,
			appt.CustomerName,
			appt.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		if isIntervalConflict(err) {
			return nil, ErrTimeConflict
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// GetByID получает запись по ID в рамках тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// GetByToken получает запись по confirmation token.
// Токен глобально уникален, поэтому tenant_id не требуется - это
// клиентский сценарий "открыть свою запись по ссылке без авторизации".
func (r *Repository) GetByToken(ctx context.Context, token string) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"confirmation_token": token}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByToken - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByToken")
}

// ListWithFilter получает записи тенанта с гибкой фильтрацией.
// Используется и для чтения (история, расчёт слотов), и внутри транзакции
// создания записи - тогда для конкретного сотрудника и даты добавляется
// FOR UPDATE, чтобы конкурирующие транзакции сериализовались на этих строках.
func (r *Repository) ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(appointmentColumns...).
		From("appointments").
		Where(squirrel.Eq{"tenant_id": filter.TenantID})

	if filter.EmployeeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"employee_id": *filter.EmployeeID})
	}

	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"appointment_date": *filter.Date})
	}

	if filter.ExcludeID != 0 {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": filter.ExcludeID})
	}

	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeCancelled {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": string(domain.StatusCancelled)})
	}

	if filter.Date != nil {
		selectBuilder = selectBuilder.OrderBy("start_time ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("appointment_date DESC, start_time DESC")
	}

	// Блокируем строки внутри транзакции создания записи
	if dbmetrics.IsInTransaction(ctx) && filter.Date != nil && filter.EmployeeID != nil {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListWithFilter - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanAppointments(rows)
}

// UpdateStatus переводит запись в новый статус. Непустой from добавляет
// compare-and-set предикат: переход выполняется только из перечисленных
// статусов, иначе возвращается ErrStatusConflict - конкурирующий переход
// успел первым. Без from ноль строк означает, что записи нет.
func (r *Repository) UpdateStatus(ctx context.Context, tenantID, id int64, status domain.AppointmentStatus, from ...domain.AppointmentStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("appointments").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID})

	if len(from) > 0 {
		updateBuilder = updateBuilder.Where(squirrel.Eq{"status": statusStrings(from)})
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, query, args, "UpdateStatus", len(from) > 0)
}

// Cancel отменяет запись с указанием причины. Запись не удаляется физически -
// история сохраняется. Отмена идет только из scheduled|confirmed, тем же
// compare-and-set предикатом: второй конкурирующий переход получает
// ErrStatusConflict.
func (r *Repository) Cancel(ctx context.Context, tenantID, id int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("appointments").
		Set("status", domain.StatusCancelled).
		Set("cancel_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		Where(squirrel.Eq{"status": statusStrings([]domain.AppointmentStatus{
			domain.StatusScheduled,
			domain.StatusConfirmed,
		})}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, query, args, "Cancel", true)
}

// execTransition выполняет запрос перехода статуса. Ноль затронутых строк
// трактуется как проигранный compare-and-set, если предикат был задан,
// иначе - как отсутствие записи.
func (r *Repository) execTransition(ctx context.Context, executor dbmetrics.DBExecutor, query string, args []interface{}, op string, guarded bool) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		if guarded {
			return ErrStatusConflict
		}
		return ErrAppointmentNotFound
	}

	return nil
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}
	return values
}

// scanOne сканирует одну запись из строки результата
func (r *Repository) scanOne(row *sql.Row, op string) (*domain.Appointment, error) {
	var appt domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&appt.ID,
		&appt.TenantID,
		&appt.EmployeeID,
		&appt.ServiceID,
		&appt.CustomerID,
		&appt.Date,
		&appt.StartTime,
		&appt.DurationMinutes,
		&appt.Status,
		&appt.ConfirmationToken,
		&appt.ServiceName,
		&appt.ServicePrice,
		&appt.CustomerName,
		&appt.Notes,
		&appt.CancelReason,
		&appt.CancelledAt,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan appointment: %v", ErrScanRow, op, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return &appt, nil
}

// scanAppointments сканирует результаты запроса в слайс записей
func (r *Repository) scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		var appt domain.Appointment
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&appt.ID,
			&appt.TenantID,
			&appt.EmployeeID,
			&appt.ServiceID,
			&appt.CustomerID,
			&appt.Date,
			&appt.StartTime,
			&appt.DurationMinutes,
			&appt.Status,
			&appt.ConfirmationToken,
			&appt.ServiceName,
			&appt.ServicePrice,
			&appt.CustomerName,
			&appt.Notes,
			&appt.CancelReason,
			&appt.CancelledAt,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}

		appt.CreatedAt = createdAt.Time
		appt.UpdatedAt = updatedAt.Time

		appointments = append(appointments, &appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

// isIntervalConflict проверяет, что ошибка вызвана нарушением
// констрейнта занятости интервала (unique или exclusion violation)
func isIntervalConflict(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation || string(pqErr.Code) == pqExclusionViolation
	}
	return false
}
