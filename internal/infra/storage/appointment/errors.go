package appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrTimeConflict возвращается, когда интервал сотрудника уже занят.
	// Сюда транслируются нарушения exclusion constraint на (employee_id, интервал).
	ErrTimeConflict = errors.New("appointment.repository: employee interval already taken")

	// ErrStatusConflict возвращается, когда запись уже не в ожидаемом статусе:
	// конкурирующий переход успел выполниться первым
	ErrStatusConflict = errors.New("appointment.repository: appointment status already changed")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)
