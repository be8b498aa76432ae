package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/internal/integrations/notifier"
	appointmentRepo "github.com/bookline/booking-service/internal/infra/storage/appointment"
	catalogRepo "github.com/bookline/booking-service/internal/infra/storage/catalog"
	"github.com/bookline/booking-service/pkg/ptr"
)

const notifyTimeout = 5 * time.Second

// UseCase use case создания записи.
//
// Вся проверка доступности выполняется повторно внутри serializable
// транзакции: ответ расчёта слотов к этому моменту мог устареть. Выбор
// конкретного сотрудника для запроса "любой свободный" тоже происходит
// внутри транзакции, в запись всегда сохраняется конкретный сотрудник.
type UseCase struct {
	appointmentRepo AppointmentRepository
	catalogRepo     CatalogRepository
	scheduleRepo    ScheduleRepository
	customerRepo    CustomerRepository
	notifierClient  NotifierClient
	txManager       TransactionManager
	tokens          TokenGenerator
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	catalogRepo CatalogRepository,
	scheduleRepo ScheduleRepository,
	customerRepo CustomerRepository,
	notifierClient NotifierClient,
	txManager TransactionManager,
	tokens TokenGenerator,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		catalogRepo:     catalogRepo,
		scheduleRepo:    scheduleRepo,
		customerRepo:    customerRepo,
		notifierClient:  notifierClient,
		txManager:       txManager,
		tokens:          tokens,
		logger:          logger,
	}
}

// Execute выполняет use case создания записи
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: tenant=%d, service=%d, any_employee=%v, date=%s, time=%s",
		req.TenantID, req.ServiceID, req.Employee.IsAny(), req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(*req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	var result Response

	// 2. Повторная проверка доступности и вставка - одна атомарная единица
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		return uc.executeInTx(txCtx, req, &result)
	})
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrTimeConflict) {
			// Гонка, которую не поймала повторная проверка: вставку
			// отклонило ограничение на пересечение интервалов в БД
			uc.logger.Warn("CreateBooking: interval conflict on insert: %v", err)
			return nil, ErrSlotTaken
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: created appointment id=%d, employee=%d, token=%s",
		result.Appointment.ID, result.Appointment.EmployeeID, result.Appointment.ConfirmationToken)

	// 3. Уведомление отправляем вне транзакции и не ждем результата:
	// запись уже создана, сбой доставки на нее не влияет
	go uc.notifyCreated(result.Appointment, result.Customer)

	return &result, nil
}

func (uc *UseCase) executeInTx(ctx context.Context, req *Request, result *Response) error {
	// 1. Услуга: нужна длительность и денормализованные поля
	service, err := uc.catalogRepo.GetService(ctx, req.TenantID, req.ServiceID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.Active {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return ErrServiceNotFound
	}

	// 2. Выбираем сотрудника и проверяем, что интервал свободен.
	// ListWithFilter внутри транзакции читает записи с блокировкой строк.
	employeeID, err := uc.resolveEmployee(ctx, req, service.DurationMinutes)
	if err != nil {
		return err
	}

	// 3. Клиент: находим по контакту или создаем нового
	customer, err := uc.customerRepo.FindOrCreate(ctx, req.TenantID, req.Customer)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to upsert customer: %v", err)
		return fmt.Errorf("%w: failed to upsert customer: %v", ErrInternal, err)
	}

	// 4. Вставка записи
	appt := &domain.Appointment{
		TenantID:          req.TenantID,
		EmployeeID:        employeeID,
		ServiceID:         req.ServiceID,
		CustomerID:        customer.ID,
		Date:              req.Date,
		StartTime:         req.StartTime,
		DurationMinutes:   service.DurationMinutes,
		Status:            domain.StatusScheduled,
		ConfirmationToken: uc.tokens.NewToken(),
		ServiceName:       service.Name,
		ServicePrice:      service.Price,
		CustomerName:      customer.Name,
	}
	if req.Notes != "" {
		appt.Notes = ptr.Ptr(req.Notes)
	}

	created, err := uc.appointmentRepo.Create(ctx, appt)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrTimeConflict) {
			return err
		}
		uc.logger.Error("CreateBooking: failed to create appointment: %v", err)
		return fmt.Errorf("%w: failed to create appointment: %v", ErrInternal, err)
	}

	result.Appointment = created
	result.Customer = customer
	return nil
}

// resolveEmployee возвращает id конкретного свободного сотрудника либо ошибку.
// Для запроса "любой свободный" берется первый свободный активный сотрудник
// в порядке возрастания id, чтобы выбор был детерминированным.
func (uc *UseCase) resolveEmployee(ctx context.Context, req *Request, durationMinutes int) (int64, error) {
	if employeeID, ok := req.Employee.EmployeeID(); ok {
		emp, err := uc.catalogRepo.GetEmployee(ctx, req.TenantID, employeeID)
		if err != nil {
			if errors.Is(err, catalogRepo.ErrEmployeeNotFound) {
				uc.logger.Warn("CreateBooking: employee id=%d not found", employeeID)
				return 0, ErrEmployeeNotFound
			}
			uc.logger.Error("CreateBooking: failed to get employee id=%d: %v", employeeID, err)
			return 0, fmt.Errorf("%w: failed to get employee: %v", ErrInternal, err)
		}
		if !emp.Active {
			uc.logger.Warn("CreateBooking: employee id=%d is inactive", employeeID)
			return 0, ErrEmployeeNotFound
		}

		if err := uc.ensureEmployeeFree(ctx, req, employeeID, durationMinutes); err != nil {
			return 0, err
		}
		return employeeID, nil
	}

	employees, err := uc.catalogRepo.ListActiveEmployees(ctx, req.TenantID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list employees for tenant=%d: %v", req.TenantID, err)
		return 0, fmt.Errorf("%w: failed to list employees: %v", ErrInternal, err)
	}

	for _, emp := range employees {
		err := uc.ensureEmployeeFree(ctx, req, emp.ID, durationMinutes)
		if err == nil {
			return emp.ID, nil
		}
		if errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrOutsideWorkingHours) {
			continue
		}
		return 0, err
	}

	uc.logger.Warn("CreateBooking: no free employee for tenant=%d, date=%s, time=%s",
		req.TenantID, req.Date.Format(domain.DateFormat), req.StartTime)
	return 0, ErrSlotTaken
}

// ensureEmployeeFree проверяет, что интервал попадает в рабочее окно
// сотрудника, выровнен по сетке слотов и не пересекается с его записями
func (uc *UseCase) ensureEmployeeFree(ctx context.Context, req *Request, employeeID int64, durationMinutes int) error {
	sched, err := uc.scheduleRepo.GetByEmployee(ctx, req.TenantID, employeeID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get schedule for employee=%d: %v", employeeID, err)
		return fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	window := sched.WindowForDate(req.Date)
	if !window.Working {
		return ErrOutsideWorkingHours
	}

	end, err := req.StartTime.AddMinutes(durationMinutes)
	if err != nil {
		return ErrOutsideWorkingHours
	}
	if req.StartTime.IsBefore(window.Start) || window.End.IsBefore(end) {
		return ErrOutsideWorkingHours
	}

	// Время должно лежать на той же сетке, по которой считаются слоты
	offset, err := window.Start.MinutesUntil(req.StartTime)
	if err != nil || offset%domain.SlotGranularityMinutes != 0 {
		return ErrOutsideWorkingHours
	}

	appointments, err := uc.appointmentRepo.ListWithFilter(ctx, domain.AppointmentsFilter{
		TenantID:   req.TenantID,
		EmployeeID: &employeeID,
		Date:       &req.Date,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to list appointments for employee=%d: %v", employeeID, err)
		return fmt.Errorf("%w: failed to list appointments: %v", ErrInternal, err)
	}

	for _, appt := range appointments {
		if !appt.Blocks() {
			continue
		}
		apptEnd, err := appt.EndTime()
		if err != nil {
			uc.logger.Error("CreateBooking: bad interval in appointment id=%d: %v", appt.ID, err)
			return fmt.Errorf("%w: bad appointment interval: %v", ErrInternal, err)
		}
		// Полуоткрытые интервалы: [start, end) пересекаются, если
		// start < apptEnd && apptStart < end
		if req.StartTime.IsBefore(apptEnd) && appt.StartTime.IsBefore(end) {
			return ErrSlotTaken
		}
	}

	return nil
}

// notifyCreated отправляет подтверждение, ошибки только логируются
func (uc *UseCase) notifyCreated(appt *domain.Appointment, customer *domain.Customer) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	msg := notifier.BookingConfirmation{
		TenantID:          appt.TenantID,
		CustomerName:      customer.Name,
		ServiceName:       appt.ServiceName,
		Date:              appt.Date.Format(domain.DateFormat),
		StartTime:         appt.StartTime.String(),
		ConfirmationToken: appt.ConfirmationToken,
	}
	switch {
	case customer.Email != nil && *customer.Email != "":
		msg.Channel = notifier.ChannelEmail
		msg.Recipient = *customer.Email
	case customer.Phone != nil && *customer.Phone != "":
		msg.Channel = notifier.ChannelWhatsApp
		msg.Recipient = *customer.Phone
	default:
		uc.logger.Warn("CreateBooking: customer id=%d has no contact, skip notification", customer.ID)
		return
	}

	if err := uc.notifierClient.SendBookingConfirmation(ctx, msg); err != nil {
		uc.logger.Warn("CreateBooking: failed to send confirmation for appointment id=%d: %v", appt.ID, err)
	}
}
