package waitlist

import "errors"

var (
	// ErrEntryNotFound возвращается, когда запись листа ожидания не найдена
	ErrEntryNotFound = errors.New("waitlist entry not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена
	ErrServiceNotFound = errors.New("service not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса,
	// в том числе при повторной обработке уже обработанной записи
	ErrInvalidTransition = errors.New("invalid waitlist status transition")

	// ErrDateOutOfRange возвращается, когда предлагаемый слот не попадает
	// в предпочитаемый диапазон записи
	ErrDateOutOfRange = errors.New("proposed slot is outside the preferred range")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
