package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bookline/booking-service/internal/domain"
	appointmentRepo "github.com/bookline/booking-service/internal/infra/storage/appointment"
	"github.com/bookline/booking-service/internal/service/appointments/models"
	waitlistModels "github.com/bookline/booking-service/internal/service/waitlist/models"
)

// Service сервис для работы с записями
type Service struct {
	appointmentRepo AppointmentRepository
	waitlist        WaitlistMatcher
	logger          Logger
}

// NewService создает новый экземпляр сервиса записей
func NewService(
	appointmentRepo AppointmentRepository,
	waitlist WaitlistMatcher,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		waitlist:        waitlist,
		logger:          logger,
	}
}

// GetByID получает запись по ID
func (s *Service) GetByID(ctx context.Context, tenantID, id int64) (*models.AppointmentResponse, error) {
	appt, err := s.getByID(ctx, tenantID, id, "GetByID")
	if err != nil {
		return nil, err
	}
	return models.FromDomainAppointment(appt), nil
}

// GetByToken получает запись по confirmation token.
// Токен сам по себе является доказательством права доступа клиента
func (s *Service) GetByToken(ctx context.Context, token string) (*models.AppointmentResponse, error) {
	appt, err := s.getByToken(ctx, token, "GetByToken")
	if err != nil {
		return nil, err
	}
	return models.FromDomainAppointment(appt), nil
}

// List получает записи тенанта с фильтрацией
func (s *Service) List(ctx context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("Appointments.List: invalid status filter: %v", err)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	appointments, err := s.appointmentRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("Appointments.List: repository error for tenant=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainAppointmentList(appointments), nil
}

// Confirm подтверждает запись по confirmation token
func (s *Service) Confirm(ctx context.Context, token string) (*models.AppointmentResponse, error) {
	appt, err := s.getByToken(ctx, token, "Confirm")
	if err != nil {
		return nil, err
	}

	if !appt.CanBeConfirmed() {
		s.logger.Warn("Appointments.Confirm: appointment id=%d is in status=%s", appt.ID, appt.Status)
		return nil, ErrCannotConfirm
	}

	// Переход защищен compare-and-set: из двух конкурирующих подтверждений
	// выигрывает одно, второе получает конфликт статуса
	err = s.appointmentRepo.UpdateStatus(ctx, appt.TenantID, appt.ID, domain.StatusConfirmed, domain.StatusScheduled)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			s.logger.Warn("Appointments.Confirm: appointment id=%d changed status concurrently", appt.ID)
			return nil, ErrCannotConfirm
		}
		s.logger.Error("Appointments.Confirm: failed to update appointment id=%d: %v", appt.ID, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	updated, err := s.getByID(ctx, appt.TenantID, appt.ID, "Confirm")
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointments.Confirm: appointment id=%d confirmed", appt.ID)
	return models.FromDomainAppointment(updated), nil
}

// UpdateStatus обновляет статус записи.
// Отмена идет через Cancel: там обязательная причина и подбор кандидатов
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Appointments.UpdateStatus: tenant=%d, appointment=%d, status=%s", tenantID, id, req.Status)

	status, err := models.ToDomainAppointmentStatus(req.Status)
	if err != nil {
		s.logger.Warn("Appointments.UpdateStatus: invalid status=%s", req.Status)
		return nil, ErrInvalidStatus
	}
	if status == domain.StatusCancelled {
		s.logger.Warn("Appointments.UpdateStatus: cancellation requested for id=%d through status update", id)
		return nil, ErrInvalidStatus
	}

	appt, err := s.getByID(ctx, tenantID, id, "UpdateStatus")
	if err != nil {
		return nil, err
	}
	if appt.IsCancelled() {
		s.logger.Warn("Appointments.UpdateStatus: appointment id=%d is cancelled", id)
		return nil, ErrInvalidStatus
	}

	// Предикат по блокирующим статусам отсекает гонку с параллельной отменой
	err = s.appointmentRepo.UpdateStatus(ctx, tenantID, id, status, domain.BlockingStatuses...)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			s.logger.Warn("Appointments.UpdateStatus: appointment id=%d changed status concurrently", id)
			return nil, ErrInvalidStatus
		}
		s.logger.Error("Appointments.UpdateStatus: failed to update appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	updated, err := s.getByID(ctx, tenantID, id, "UpdateStatus")
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointments.UpdateStatus: appointment id=%d moved to %s", id, status)
	return models.FromDomainAppointment(updated), nil
}

// Cancel отменяет запись и возвращает кандидатов из листа ожидания,
// которым подходит освободившийся слот
func (s *Service) Cancel(ctx context.Context, tenantID, id int64, req *models.CancelAppointmentRequest) (*models.CancelAppointmentResponse, error) {
	s.logger.Info("Appointments.Cancel: tenant=%d, appointment=%d", tenantID, id)

	if strings.TrimSpace(req.Reason) == "" {
		s.logger.Warn("Appointments.Cancel: empty reason for appointment id=%d", id)
		return nil, fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	}
	if len(req.Reason) > domain.MaxCancelReasonLength {
		s.logger.Warn("Appointments.Cancel: reason too long for appointment id=%d", id)
		return nil, fmt.Errorf("%w: cancellation reason is too long", ErrInvalidInput)
	}

	appt, err := s.getByID(ctx, tenantID, id, "Cancel")
	if err != nil {
		return nil, err
	}
	if !appt.CanBeCancelled() {
		s.logger.Warn("Appointments.Cancel: appointment id=%d is in status=%s", id, appt.Status)
		return nil, ErrCannotCancel
	}

	if err := s.appointmentRepo.Cancel(ctx, tenantID, id, req.Reason); err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			s.logger.Warn("Appointments.Cancel: appointment id=%d changed status concurrently", id)
			return nil, ErrCannotCancel
		}
		s.logger.Error("Appointments.Cancel: failed to cancel appointment id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	cancelled, err := s.getByID(ctx, tenantID, id, "Cancel")
	if err != nil {
		return nil, err
	}

	s.logger.Info("Appointments.Cancel: appointment id=%d cancelled", id)
	return &models.CancelAppointmentResponse{
		Appointment: *models.FromDomainAppointment(cancelled),
		Candidates:  s.candidatesForFreedSlot(ctx, cancelled),
	}, nil
}

// candidatesForFreedSlot подбирает кандидатов на слот отмененной записи.
// Отмена уже состоялась, сбой подбора её не откатывает
func (s *Service) candidatesForFreedSlot(ctx context.Context, appt *domain.Appointment) []waitlistModels.EntryResponse {
	candidates, err := s.waitlist.CandidatesFor(ctx, appt.TenantID, waitlistModels.SlotRef{
		ServiceID:  appt.ServiceID,
		EmployeeID: appt.EmployeeID,
		Date:       appt.Date,
		StartTime:  appt.StartTime,
	})
	if err != nil {
		s.logger.Warn("Appointments.Cancel: failed to match waitlist for appointment id=%d: %v", appt.ID, err)
		return []waitlistModels.EntryResponse{}
	}
	return candidates.Entries
}

func (s *Service) getByID(ctx context.Context, tenantID, id int64, op string) (*domain.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Appointments.%s: appointment id=%d not found", op, id)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Appointments.%s: repository error for appointment id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appt, nil
}

func (s *Service) getByToken(ctx context.Context, token string, op string) (*domain.Appointment, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: confirmation token is required", ErrInvalidInput)
	}

	appt, err := s.appointmentRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			s.logger.Warn("Appointments.%s: appointment with token not found", op)
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("Appointments.%s: repository error for token lookup: %v", op, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return appt, nil
}
