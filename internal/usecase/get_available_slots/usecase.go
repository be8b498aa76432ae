package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/bookline/booking-service/internal/domain"
	catalogRepo "github.com/bookline/booking-service/internal/infra/storage/catalog"
	"github.com/bookline/booking-service/pkg/types"
)

// UseCase use case расчёта доступных слотов.
//
// Это чистый read path: результат зависит только от справочника, графиков и
// текущего состояния записей. Никакой привязки к "сегодня" здесь нет -
// ограничения на прошлое/будущее накладывает вызывающая сторона. Слот из
// ответа - это подсказка, а не резервация: окончательную проверку выполняет
// транзакция создания записи.
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	scheduleRepo    ScheduleRepository
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	scheduleRepo ScheduleRepository,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		scheduleRepo:    scheduleRepo,
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: tenant=%d, service=%d, any_employee=%v, date=%s",
		req.TenantID, req.ServiceID, req.Employee.IsAny(), req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу (нужна длительность)
	service, err := uc.catalogRepo.GetService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}

	// 3. Определяем сотрудников-кандидатов
	employees, err := uc.resolveEmployees(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Считаем свободные слоты каждого сотрудника
	perEmployee := make([][]types.TimeString, 0, len(employees))
	for _, emp := range employees {
		free, err := uc.employeeSlots(ctx, req, emp.ID, service.DurationMinutes)
		if err != nil {
			return nil, err
		}
		perEmployee = append(perEmployee, free)
	}

	// 5. Объединяем: дедупликация по времени начала, сортировка по возрастанию
	slots := mergeSlots(perEmployee, service.DurationMinutes)

	uc.logger.Info("GetAvailableSlots: %d slots for tenant=%d, service=%d, date=%s",
		len(slots), req.TenantID, req.ServiceID, req.Date.Format(domain.DateFormat))

	return &Response{
		TenantID:  req.TenantID,
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Slots:     slots,
	}, nil
}

// resolveEmployees возвращает сотрудников, участвующих в расчёте:
// одного конкретного либо всех активных сотрудников тенанта
func (uc *UseCase) resolveEmployees(ctx context.Context, req *Request) ([]*domain.Employee, error) {
	if employeeID, ok := req.Employee.EmployeeID(); ok {
		emp, err := uc.catalogRepo.GetEmployee(ctx, req.TenantID, employeeID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrEmployeeNotFound) {
				uc.logger.Warn("GetAvailableSlots: employee id=%d not found", employeeID)
				return nil, ErrEmployeeNotFound
			}
			uc.logger.Error("GetAvailableSlots: failed to get employee id=%d: %v", employeeID, err)
			return nil, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
		}

		// Неактивный сотрудник не дает слотов, но это не ошибка запроса
		if !emp.Active {
			return []*domain.Employee{}, nil
		}

		return []*domain.Employee{emp}, nil
	}

	employees, err := uc.catalogRepo.ListActiveEmployees(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list employees for tenant=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: failed to list employees: %v", ErrInternal, err)
	}

	return employees, nil
}

// employeeSlots считает свободные слоты одного сотрудника на дату
func (uc *UseCase) employeeSlots(ctx context.Context, req *Request, employeeID int64, durationMinutes int) ([]types.TimeString, error) {
	sched, err := uc.scheduleRepo.GetByEmployee(ctx, req.TenantID, employeeID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get schedule for employee=%d: %v", employeeID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	window := sched.WindowForDate(req.Date)
	if !window.Working {
		return []types.TimeString{}, nil
	}

	candidates := generateCandidates(window, durationMinutes)
	if len(candidates) == 0 {
		return []types.TimeString{}, nil
	}

	appointments, err := uc.appointmentRepo.ListWithFilter(ctx, domain.AppointmentsFilter{
		TenantID:   req.TenantID,
		EmployeeID: &employeeID,
		Date:       &req.Date,
		ExcludeID:  req.ExcludeAppointmentID,
	})
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to list appointments for employee=%d: %v", employeeID, err)
		return nil, fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	free, err := freeCandidates(candidates, durationMinutes, appointments)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to filter candidates for employee=%d: %v", employeeID, err)
		return nil, fmt.Errorf("%w: failed to filter candidates: %v", ErrInternal, err)
	}

	return free, nil
}
