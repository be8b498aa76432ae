package waitlist

import (
	"context"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/internal/integrations/notifier"
)

// WaitlistRepository интерфейс репозитория листа ожидания
type WaitlistRepository interface {
	Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error)
	GetByID(ctx context.Context, tenantID, id int64) (*domain.WaitlistEntry, error)
	ListRanked(ctx context.Context, tenantID int64, status *domain.WaitlistStatus, serviceID *int64) ([]*domain.WaitlistEntry, error)
	MarkNotified(ctx context.Context, tenantID, id int64) error
	Resolve(ctx context.Context, tenantID, id int64, to domain.WaitlistStatus) error
}

// CatalogRepository интерфейс справочника услуг
type CatalogRepository interface {
	GetService(ctx context.Context, tenantID, serviceID int64) (*domain.ServiceDefinition, error)
}

// NotifierClient интерфейс клиента сервиса уведомлений
type NotifierClient interface {
	SendWaitlistNotice(ctx context.Context, msg notifier.WaitlistNotice) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
