package create_booking

import "errors"

var (
	// ErrInvalidInput невалидные входные данные
	ErrInvalidInput = errors.New("usecase.create_booking: invalid input")
	// ErrServiceNotFound услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("usecase.create_booking: service not found")
	// ErrEmployeeNotFound сотрудник не найден или неактивен
	ErrEmployeeNotFound = errors.New("usecase.create_booking: employee not found")
	// ErrSlotTaken слот занят или ни один сотрудник не свободен
	ErrSlotTaken = errors.New("usecase.create_booking: slot is not available")
	// ErrOutsideWorkingHours запись не помещается в рабочее окно сотрудника
	ErrOutsideWorkingHours = errors.New("usecase.create_booking: outside working hours")
	// ErrInternal внутренняя ошибка
	ErrInternal = errors.New("usecase.create_booking: internal error")
)
