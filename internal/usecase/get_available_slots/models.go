package get_available_slots

import (
	"time"

	"github.com/bookline/booking-service/internal/domain"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	TenantID  int64                 // ID тенанта
	ServiceID int64                 // ID услуги
	Employee  domain.EmployeeChoice // Конкретный сотрудник или "любой свободный"
	Date      time.Time             // Дата (без времени)

	// ExcludeAppointmentID исключает запись из проверки пересечений.
	// Используется при переносе: редактируемая запись не должна
	// блокировать собственный слот. 0 = ничего не исключать.
	ExcludeAppointmentID int64
}

// Response модель ответа со списком доступных слотов
type Response struct {
	TenantID  int64         // ID тенанта
	ServiceID int64         // ID услуги
	Date      time.Time     // Дата, на которую запрашивались слоты
	Slots     []domain.Slot // Доступные слоты, отсортированы по времени начала
}
