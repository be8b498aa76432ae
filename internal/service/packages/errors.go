package packages

import "errors"

var (
	// ErrDefinitionNotFound возвращается, когда определение пакета не найдено
	ErrDefinitionNotFound = errors.New("package definition not found")

	// ErrPackageNotFound возвращается, когда пакет клиента не найден
	ErrPackageNotFound = errors.New("customer package not found")

	// ErrCustomerNotFound возвращается, когда клиент не найден
	ErrCustomerNotFound = errors.New("customer not found")

	// ErrLimitExceeded возвращается, когда клиент исчерпал лимит покупок
	// пакетов этого определения
	ErrLimitExceeded = errors.New("package purchase limit exceeded")

	// ErrPackageInactive возвращается при попытке списания с неактивного
	// или просроченного пакета
	ErrPackageInactive = errors.New("package is not active")

	// ErrNoUsesRemaining возвращается при попытке списания с пакета
	// без оставшихся кредитов
	ErrNoUsesRemaining = errors.New("package has no uses remaining")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
