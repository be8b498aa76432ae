package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/internal/integrations/notifier"
	catalogRepo "github.com/bookline/booking-service/internal/infra/storage/catalog"
	waitlistRepo "github.com/bookline/booking-service/internal/infra/storage/waitlist"
	"github.com/bookline/booking-service/internal/service/waitlist/models"
	"github.com/bookline/booking-service/pkg/types"
)

const notifyTimeout = 5 * time.Second

// Service сервис листа ожидания.
//
// Переходы статусов строго однонаправленные, повторная обработка записи
// (второе уведомление, отмена уже закрытой записи) возвращает
// ErrInvalidTransition, а не затирает состояние.
type Service struct {
	waitlistRepo   WaitlistRepository
	catalogRepo    CatalogRepository
	notifierClient NotifierClient
	logger         Logger
}

// NewService создает новый экземпляр сервиса листа ожидания
func NewService(
	waitlistRepo WaitlistRepository,
	catalogRepo CatalogRepository,
	notifierClient NotifierClient,
	logger Logger,
) *Service {
	return &Service{
		waitlistRepo:   waitlistRepo,
		catalogRepo:    catalogRepo,
		notifierClient: notifierClient,
		logger:         logger,
	}
}

// Create ставит клиента в лист ожидания
func (s *Service) Create(ctx context.Context, req *models.CreateEntryRequest) (*models.EntryResponse, error) {
	s.logger.Info("Waitlist.Create: tenant=%d, service=%d, priority=%d", req.TenantID, req.ServiceID, req.Priority)

	entry, err := s.buildEntry(req)
	if err != nil {
		s.logger.Warn("Waitlist.Create: validation failed: %v", err)
		return nil, err
	}

	if _, err := s.catalogRepo.GetService(ctx, req.TenantID, req.ServiceID); err != nil {
		if errors.Is(err, catalogRepo.ErrServiceNotFound) {
			s.logger.Warn("Waitlist.Create: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		s.logger.Error("Waitlist.Create: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: Create - failed to get service: %v", ErrInternal, err)
	}

	created, err := s.waitlistRepo.Create(ctx, entry)
	if err != nil {
		s.logger.Error("Waitlist.Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Waitlist.Create: created entry id=%d", created.ID)
	return models.FromDomainEntry(created), nil
}

// GetByID получает запись листа ожидания по ID
func (s *Service) GetByID(ctx context.Context, tenantID, id int64) (*models.EntryResponse, error) {
	entry, err := s.getEntry(ctx, tenantID, id, "GetByID")
	if err != nil {
		return nil, err
	}
	return models.FromDomainEntry(entry), nil
}

// List возвращает записи листа ожидания в порядке обслуживания:
// priority по убыванию, при равенстве - дольше всех ждущие первыми
func (s *Service) List(ctx context.Context, req *models.ListEntriesRequest) (*models.EntryListResponse, error) {
	var status *domain.WaitlistStatus
	if req.Status != nil {
		converted, ok := models.ToDomainWaitlistStatus(*req.Status)
		if !ok {
			s.logger.Warn("Waitlist.List: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		status = &converted
	}

	entries, err := s.waitlistRepo.ListRanked(ctx, req.TenantID, status, req.ServiceID)
	if err != nil {
		s.logger.Error("Waitlist.List: repository error for tenant=%d: %v", req.TenantID, err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainEntryList(entries), nil
}

// Notify уведомляет запись о появившемся слоте.
// Предлагаемая дата обязана попадать в предпочитаемый диапазон записи,
// уведомление о неподходящем слоте - ошибка вызывающей стороны
func (s *Service) Notify(ctx context.Context, tenantID, id int64, req *models.NotifyRequest) (*models.EntryResponse, error) {
	s.logger.Info("Waitlist.Notify: tenant=%d, entry=%d, date=%s, time=%s", tenantID, id, req.ProposedDate, req.ProposedTime)

	proposedDate, err := time.Parse(domain.DateFormat, req.ProposedDate)
	if err != nil {
		s.logger.Warn("Waitlist.Notify: invalid proposed date=%s", req.ProposedDate)
		return nil, fmt.Errorf("%w: invalid proposed date", ErrInvalidInput)
	}
	proposedTime, err := types.NewTimeStringFromString(req.ProposedTime)
	if err != nil {
		s.logger.Warn("Waitlist.Notify: invalid proposed time=%s", req.ProposedTime)
		return nil, fmt.Errorf("%w: invalid proposed time", ErrInvalidInput)
	}

	entry, err := s.getEntry(ctx, tenantID, id, "Notify")
	if err != nil {
		return nil, err
	}

	if !domain.CanTransitionWaitlist(entry.Status, domain.WaitlistNotified) {
		s.logger.Warn("Waitlist.Notify: entry id=%d is in status=%s", id, entry.Status)
		return nil, ErrInvalidTransition
	}
	if !entry.AcceptsDate(proposedDate) || !entry.AcceptsTime(proposedTime) {
		s.logger.Warn("Waitlist.Notify: proposed slot %s %s is outside range of entry id=%d",
			req.ProposedDate, req.ProposedTime, id)
		return nil, ErrDateOutOfRange
	}

	// Compare-and-set: проигравший гонку получает конфликт, не второй переход
	if err := s.waitlistRepo.MarkNotified(ctx, tenantID, id); err != nil {
		if errors.Is(err, waitlistRepo.ErrStatusConflict) {
			s.logger.Warn("Waitlist.Notify: entry id=%d already processed", id)
			return nil, ErrInvalidTransition
		}
		s.logger.Error("Waitlist.Notify: repository error for entry id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Notify - repository error: %v", ErrInternal, err)
	}

	updated, err := s.getEntry(ctx, tenantID, id, "Notify")
	if err != nil {
		return nil, err
	}

	go s.sendNotice(updated, req.ProposedDate, req.ProposedTime)

	s.logger.Info("Waitlist.Notify: entry id=%d notified", id)
	return models.FromDomainEntry(updated), nil
}

// MarkBooked закрывает запись как успешно записавшуюся
func (s *Service) MarkBooked(ctx context.Context, tenantID, id int64) error {
	return s.resolve(ctx, tenantID, id, domain.WaitlistBooked)
}

// Expire закрывает запись, не ответившую на уведомление
func (s *Service) Expire(ctx context.Context, tenantID, id int64) error {
	return s.resolve(ctx, tenantID, id, domain.WaitlistExpired)
}

// Cancel закрывает запись по просьбе клиента
func (s *Service) Cancel(ctx context.Context, tenantID, id int64) error {
	return s.resolve(ctx, tenantID, id, domain.WaitlistCancelled)
}

// CandidatesFor возвращает ожидающие записи, которым подходит слот,
// в порядке обслуживания
func (s *Service) CandidatesFor(ctx context.Context, tenantID int64, slot models.SlotRef) (*models.EntryListResponse, error) {
	waiting := domain.WaitlistWaiting
	entries, err := s.waitlistRepo.ListRanked(ctx, tenantID, &waiting, &slot.ServiceID)
	if err != nil {
		s.logger.Error("Waitlist.CandidatesFor: repository error for tenant=%d: %v", tenantID, err)
		return nil, fmt.Errorf("%w: CandidatesFor - repository error: %v", ErrInternal, err)
	}

	matched := make([]*domain.WaitlistEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.AcceptsDate(slot.Date) && entry.AcceptsTime(slot.StartTime) && entry.AcceptsEmployee(slot.EmployeeID) {
			matched = append(matched, entry)
		}
	}

	return models.FromDomainEntryList(matched), nil
}

func (s *Service) resolve(ctx context.Context, tenantID, id int64, to domain.WaitlistStatus) error {
	s.logger.Info("Waitlist.resolve: tenant=%d, entry=%d, to=%s", tenantID, id, to)

	entry, err := s.getEntry(ctx, tenantID, id, "resolve")
	if err != nil {
		return err
	}
	if !domain.CanTransitionWaitlist(entry.Status, to) {
		s.logger.Warn("Waitlist.resolve: illegal transition %s -> %s for entry id=%d", entry.Status, to, id)
		return ErrInvalidTransition
	}

	if err := s.waitlistRepo.Resolve(ctx, tenantID, id, to); err != nil {
		if errors.Is(err, waitlistRepo.ErrStatusConflict) {
			s.logger.Warn("Waitlist.resolve: entry id=%d already processed", id)
			return ErrInvalidTransition
		}
		s.logger.Error("Waitlist.resolve: repository error for entry id=%d: %v", id, err)
		return fmt.Errorf("%w: resolve - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Waitlist.resolve: entry id=%d moved to %s", id, to)
	return nil
}

func (s *Service) getEntry(ctx context.Context, tenantID, id int64, op string) (*domain.WaitlistEntry, error) {
	entry, err := s.waitlistRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, waitlistRepo.ErrEntryNotFound) {
			s.logger.Warn("Waitlist.%s: entry id=%d not found", op, id)
			return nil, ErrEntryNotFound
		}
		s.logger.Error("Waitlist.%s: repository error for entry id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return entry, nil
}

// buildEntry валидирует запрос и собирает domain модель
func (s *Service) buildEntry(req *models.CreateEntryRequest) (*domain.WaitlistEntry, error) {
	if req.TenantID <= 0 {
		return nil, fmt.Errorf("%w: tenant id must be positive", ErrInvalidInput)
	}
	if req.ServiceID <= 0 {
		return nil, fmt.Errorf("%w: service id must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrInvalidInput)
	}
	hasEmail := req.CustomerEmail != nil && *req.CustomerEmail != ""
	hasPhone := req.CustomerPhone != nil && *req.CustomerPhone != ""
	if !hasEmail && !hasPhone {
		return nil, fmt.Errorf("%w: customer email or phone is required", ErrInvalidInput)
	}
	if req.Priority < 0 {
		return nil, fmt.Errorf("%w: priority must not be negative", ErrInvalidInput)
	}

	dateFrom, err := time.Parse(domain.DateFormat, req.PreferredDateFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid preferred date from", ErrInvalidInput)
	}
	dateTo, err := time.Parse(domain.DateFormat, req.PreferredDateTo)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid preferred date to", ErrInvalidInput)
	}
	if dateTo.Before(dateFrom) {
		return nil, fmt.Errorf("%w: preferred date range is inverted", ErrInvalidInput)
	}

	entry := &domain.WaitlistEntry{
		TenantID:            req.TenantID,
		CustomerName:        strings.TrimSpace(req.CustomerName),
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		ServiceID:           req.ServiceID,
		PreferredEmployeeID: req.PreferredEmployeeID,
		PreferredDateFrom:   dateFrom,
		PreferredDateTo:     dateTo,
		Status:              domain.WaitlistWaiting,
		Priority:            req.Priority,
	}

	// Временной диапазон задается либо целиком, либо никак
	if (req.PreferredTimeFrom == nil) != (req.PreferredTimeTo == nil) {
		return nil, fmt.Errorf("%w: preferred time range must have both ends", ErrInvalidInput)
	}
	if req.PreferredTimeFrom != nil {
		timeFrom, err := types.NewTimeStringFromString(*req.PreferredTimeFrom)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid preferred time from", ErrInvalidInput)
		}
		timeTo, err := types.NewTimeStringFromString(*req.PreferredTimeTo)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid preferred time to", ErrInvalidInput)
		}
		if timeTo.IsBefore(timeFrom) {
			return nil, fmt.Errorf("%w: preferred time range is inverted", ErrInvalidInput)
		}
		entry.PreferredTimeFrom = &timeFrom
		entry.PreferredTimeTo = &timeTo
	}

	return entry, nil
}

// sendNotice отправляет уведомление, ошибки только логируются
func (s *Service) sendNotice(entry *domain.WaitlistEntry, proposedDate, proposedTime string) {
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	var serviceName string
	if service, err := s.catalogRepo.GetService(ctx, entry.TenantID, entry.ServiceID); err == nil {
		serviceName = service.Name
	}

	msg := notifier.WaitlistNotice{
		TenantID:     entry.TenantID,
		CustomerName: entry.CustomerName,
		ServiceName:  serviceName,
		ProposedDate: proposedDate,
		ProposedTime: proposedTime,
	}
	switch {
	case entry.CustomerEmail != nil && *entry.CustomerEmail != "":
		msg.Channel = notifier.ChannelEmail
		msg.Recipient = *entry.CustomerEmail
	case entry.CustomerPhone != nil && *entry.CustomerPhone != "":
		msg.Channel = notifier.ChannelWhatsApp
		msg.Recipient = *entry.CustomerPhone
	default:
		return
	}

	if err := s.notifierClient.SendWaitlistNotice(ctx, msg); err != nil {
		s.logger.Warn("Waitlist.Notify: failed to send notice for entry id=%d: %v", entry.ID, err)
	}
}
