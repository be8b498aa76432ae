package waitlist

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/pkg/dbmetrics"
	"github.com/bookline/booking-service/pkg/psqlbuilder"
)

var entryColumns = []string{
	"id",
	"tenant_id",
	"customer_name",
	"customer_email",
	"customer_phone",
	"service_id",
	"preferred_employee_id",
	"preferred_date_from",
	"preferred_date_to",
	"preferred_time_from",
	"preferred_time_to",
	"status",
	"priority",
	"notified_at",
	"notification_count",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей листа ожидания.
// Переходы статусов выполняются как compare-and-set: UPDATE с условием на
// исходный статус. Ноль затронутых строк означает, что запись уже обработана
// конкурентно или достигла терминального статуса - это сигнал для вызывающего,
// а не тихий успех.
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория листа ожидания
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись листа ожидания в статусе waiting
func (r *Repository) Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("waitlist_entries").
		Columns(
			"tenant_id",
			"customer_name",
			"customer_email",
			"customer_phone",
			"service_id",
			"preferred_employee_id",
			"preferred_date_from",
			"preferred_date_to",
			"preferred_time_from",
			"preferred_time_to",
			"status",
			"priority",
		).
		Values(
			entry.TenantID,
			entry.CustomerName,
			entry.CustomerEmail,
			entry.CustomerPhone,
			entry.ServiceID,
			entry.PreferredEmployeeID,
			entry.PreferredDateFrom,
			entry.PreferredDateTo,
			entry.PreferredTimeFrom,
			entry.PreferredTimeTo,
			domain.WaitlistWaiting,
			entry.Priority,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	entry.Status = domain.WaitlistWaiting
	entry.CreatedAt = createdAt.Time
	entry.UpdatedAt = updatedAt.Time

	return entry, nil
}

// GetByID получает запись листа ожидания по ID в рамках тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID, id int64) (*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries, err := r.scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEntryNotFound
	}

	return entries[0], nil
}

// ListRanked получает записи тенанта, упорядоченные для выбора кандидата:
// приоритет по убыванию, затем самые давние первыми.
// Опционально фильтрует по статусу и услуге.
func (r *Repository) ListRanked(ctx context.Context, tenantID int64, status *domain.WaitlistStatus, serviceID *int64) ([]*domain.WaitlistEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(entryColumns...).
		From("waitlist_entries").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		OrderBy("priority DESC, created_at ASC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}
	if serviceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"service_id": *serviceID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListRanked - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListRanked - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanEntries(rows)
}

// MarkNotified переводит запись waiting → notified, фиксируя момент и счётчик
// уведомлений. Возвращает ErrStatusConflict, если запись уже не в waiting.
func (r *Repository) MarkNotified(ctx context.Context, tenantID, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("waitlist_entries").
		Set("status", domain.WaitlistNotified).
		Set("notified_at", squirrel.Expr("NOW()")).
		Set("notification_count", squirrel.Expr("notification_count + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":        id,
			"tenant_id": tenantID,
			"status":    domain.WaitlistWaiting,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: MarkNotified - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, query, args, "MarkNotified")
}

// Resolve переводит запись из waiting|notified в указанный терминальный статус.
// Возвращает ErrStatusConflict, если запись уже обработана.
func (r *Repository) Resolve(ctx context.Context, tenantID, id int64, to domain.WaitlistStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("waitlist_entries").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":        id,
			"tenant_id": tenantID,
			"status": []string{
				string(domain.WaitlistWaiting),
				string(domain.WaitlistNotified),
			},
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Resolve - build update query: %v", ErrBuildQuery, err)
	}

	return r.execTransition(ctx, executor, query, args, "Resolve")
}

// execTransition выполняет compare-and-set запрос перехода статуса
func (r *Repository) execTransition(ctx context.Context, executor dbmetrics.DBExecutor, query string, args []interface{}, op string) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrStatusConflict
	}

	return nil
}

// scanEntries сканирует результаты запроса в слайс записей листа ожидания
func (r *Repository) scanEntries(rows *sql.Rows) ([]*domain.WaitlistEntry, error) {
	entries := make([]*domain.WaitlistEntry, 0)

	for rows.Next() {
		var entry domain.WaitlistEntry
		var createdAt, updatedAt sql.NullTime

		err := rows.Scan(
			&entry.ID,
			&entry.TenantID,
			&entry.CustomerName,
			&entry.CustomerEmail,
			&entry.CustomerPhone,
			&entry.ServiceID,
			&entry.PreferredEmployeeID,
			&entry.PreferredDateFrom,
			&entry.PreferredDateTo,
			&entry.PreferredTimeFrom,
			&entry.PreferredTimeTo,
			&entry.Status,
			&entry.Priority,
			&entry.NotifiedAt,
			&entry.NotificationCount,
			&createdAt,
			&updatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("%w: scanEntries - scan row: %v", ErrScanRow, err)
		}

		entry.CreatedAt = createdAt.Time
		entry.UpdatedAt = updatedAt.Time

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanEntries - rows error: %v", ErrScanRow, err)
	}

	return entries, nil
}
