package customer

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

// Repository репозиторий клиентов тенанта
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория клиентов
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// FindOrCreate находит клиента тенанта по email или телефону, либо создает нового.
// Повторное бронирование с тем же контактом не создает дубликат строки.
// Вызывается внутри транзакции создания записи, поэтому конкурирующий
// параллельный insert того же клиента упирается в уникальный индекс
// (tenant_id, email) / (tenant_id, phone) и транзакция повторяется целиком.
func (r *Repository) FindOrCreate(ctx context.Context, tenantID int64, ref domain.CustomerRef) (*domain.Customer, error) {
	if !ref.HasContact() {
		return nil, ErrNoContact
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	existing, err := r.findByContact(ctx, executor, tenantID, ref)
	if err != nil && !errors.Is(err, ErrCustomerNotFound) {
		return nil, err
	}

	if existing != nil {
		// Обновляем имя и дозаполняем недостающий контакт
		return r.refresh(ctx, executor, existing, ref)
	}

	return r.create(ctx, executor, tenantID, ref)
}

// GetByID получает клиента по ID в рамках тенанта
func (r *Repository) GetByID(ctx context.Context, tenantID, id int64) (*domain.Customer, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"email",
		"phone",
		"created_at",
		"updated_at",
	).
		From("customers").
		Where(squirrel.Eq{"id": id, "tenant_id": tenantID}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "GetByID")
}

// findByContact ищет клиента по совпадению email или телефона
func (r *Repository) findByContact(ctx context.Context, executor dbmetrics.DBExecutor, tenantID int64, ref domain.CustomerRef) (*domain.Customer, error) {
	contact := squirrel.Or{}
	if ref.Email != nil && *ref.Email != "" {
		contact = append(contact, squirrel.Eq{"email": *ref.Email})
	}
	if ref.Phone != nil && *ref.Phone != "" {
		contact = append(contact, squirrel.Eq{"phone": *ref.Phone})
	}

	query, args, err := psqlbuilder.Select(
		"id",
		"tenant_id",
		"name",
		"email",
		"phone",
		"created_at",
		"updated_at",
	).
		From("customers").
		Where(squirrel.Eq{"tenant_id": tenantID}).
		Where(contact).
		OrderBy("id ASC").
		Limit(1).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: findByContact - build select query: %v", ErrBuildQuery, err)
	}

	return r.scanOne(executor.QueryRowContext(ctx, query, args...), "findByContact")
}

// refresh обновляет имя клиента и дозаполняет недостающие контакты
func (r *Repository) refresh(ctx context.Context, executor dbmetrics.DBExecutor, existing *domain.Customer, ref domain.CustomerRef) (*domain.Customer, error) {
	updateBuilder := psqlbuilder.Update("customers").
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": existing.ID})

	if ref.Name != "" {
		updateBuilder = updateBuilder.Set("name", ref.Name)
		existing.Name = ref.Name
	}
	if existing.Email == nil && ref.Email != nil && *ref.Email != "" {
		updateBuilder = updateBuilder.Set("email", *ref.Email)
		existing.Email = ref.Email
	}
	if existing.Phone == nil && ref.Phone != nil && *ref.Phone != "" {
		updateBuilder = updateBuilder.Set("phone", *ref.Phone)
		existing.Phone = ref.Phone
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: refresh - build update query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("%w: refresh - execute update: %v", ErrExecQuery, err)
	}

	return existing, nil
}

// create вставляет нового клиента
func (r *Repository) create(ctx context.Context, executor dbmetrics.DBExecutor, tenantID int64, ref domain.CustomerRef) (*domain.Customer, error) {
	query, args, err := psqlbuilder.Insert("customers").
		Columns("tenant_id", "name", "email", "phone").
		Values(tenantID, ref.Name, ref.Email, ref.Phone).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: create - build insert query: %v", ErrBuildQuery, err)
	}

	cust := &domain.Customer{
		TenantID: tenantID,
		Name:     ref.Name,
		Email:    ref.Email,
		Phone:    ref.Phone,
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&cust.ID, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: create - execute insert: %v", ErrExecQuery, err)
	}

	cust.CreatedAt = createdAt.Time
	cust.UpdatedAt = updatedAt.Time

	return cust, nil
}

// scanOne сканирует одного клиента из строки результата
func (r *Repository) scanOne(row *sql.Row, op string) (*domain.Customer, error) {
	var cust domain.Customer
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&cust.ID,
		&cust.TenantID,
		&cust.Name,
		&cust.Email,
		&cust.Phone,
		&createdAt,
		&updatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan customer: %v", ErrScanRow, op, err)
	}

	cust.CreatedAt = createdAt.Time
	cust.UpdatedAt = updatedAt.Time

	return &cust, nil
}
