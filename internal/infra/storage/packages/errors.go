package packages

import "errors"

var (
	// ErrDefinitionNotFound возвращается, когда определение пакета не найдено
	ErrDefinitionNotFound = errors.New("packages.repository: package definition not found")

	// ErrPackageNotFound возвращается, когда пакет клиента не найден
	ErrPackageNotFound = errors.New("packages.repository: customer package not found")

	// ErrNotRedeemable возвращается, когда атомарное списание не нашло строку:
	// пакет не активен, просрочен или кредиты исчерпаны.
	// Причина различается вызывающим повторным чтением пакета.
	ErrNotRedeemable = errors.New("packages.repository: package is not redeemable")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("packages.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("packages.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("packages.repository: failed to scan row")
)
