package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/internal/integrations/notifier"
	waitlistRepo "github.com/bookline/booking-service/internal/infra/storage/waitlist"
	"github.com/bookline/booking-service/internal/service/waitlist/models"
	"github.com/bookline/booking-service/pkg/ptr"
	"github.com/bookline/booking-service/pkg/types"
)

type MockWaitlistRepository struct {
	mock.Mock
}

func (m *MockWaitlistRepository) Create(ctx context.Context, entry *domain.WaitlistEntry) (*domain.WaitlistEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) GetByID(ctx context.Context, tenantID, id int64) (*domain.WaitlistEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) ListRanked(ctx context.Context, tenantID int64, status *domain.WaitlistStatus, serviceID *int64) ([]*domain.WaitlistEntry, error) {
	args := m.Called(ctx, tenantID, status, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepository) MarkNotified(ctx context.Context, tenantID, id int64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockWaitlistRepository) Resolve(ctx context.Context, tenantID, id int64, to domain.WaitlistStatus) error {
	args := m.Called(ctx, tenantID, id, to)
	return args.Error(0)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) GetService(ctx context.Context, tenantID, serviceID int64) (*domain.ServiceDefinition, error) {
	args := m.Called(ctx, tenantID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceDefinition), args.Error(1)
}

type MockNotifierClient struct {
	mock.Mock
}

func (m *MockNotifierClient) SendWaitlistNotice(ctx context.Context, msg notifier.WaitlistNotice) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

func newService() (*Service, *MockWaitlistRepository, *MockCatalogRepository, *MockNotifierClient) {
	repo := new(MockWaitlistRepository)
	catalog := new(MockCatalogRepository)
	notifs := new(MockNotifierClient)
	return NewService(repo, catalog, notifs, nopLogger{}), repo, catalog, notifs
}

func waitingEntry(id int64) *domain.WaitlistEntry {
	return &domain.WaitlistEntry{
		ID:                id,
		TenantID:          1,
		CustomerName:      "Анна Иванова",
		CustomerEmail:     ptr.Ptr("anna@example.com"),
		ServiceID:         10,
		PreferredDateFrom: time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC),
		PreferredDateTo:   time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC),
		Status:            domain.WaitlistWaiting,
		Priority:          5,
	}
}

func TestCreate_Success(t *testing.T) {
	svc, repo, catalog, _ := newService()

	catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.ServiceDefinition{ID: 10, TenantID: 1, Active: true}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.WaitlistEntry) bool {
		return e.Status == domain.WaitlistWaiting && e.Priority == 5 && e.CustomerName == "Анна Иванова"
	})).Return(waitingEntry(42), nil)

	resp, err := svc.Create(context.Background(), &models.CreateEntryRequest{
		TenantID:          1,
		CustomerName:      "Анна Иванова",
		CustomerEmail:     ptr.Ptr("anna@example.com"),
		ServiceID:         10,
		PreferredDateFrom: "2025-10-13",
		PreferredDateTo:   "2025-10-17",
		Priority:          5,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, string(domain.WaitlistWaiting), resp.Status)
	repo.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, _, _ := newService()

	base := func() *models.CreateEntryRequest {
		return &models.CreateEntryRequest{
			TenantID:          1,
			CustomerName:      "Анна Иванова",
			CustomerEmail:     ptr.Ptr("anna@example.com"),
			ServiceID:         10,
			PreferredDateFrom: "2025-10-13",
			PreferredDateTo:   "2025-10-17",
		}
	}

	tests := []struct {
		name   string
		mutate func(req *models.CreateEntryRequest)
	}{
		{name: "no contact", mutate: func(r *models.CreateEntryRequest) { r.CustomerEmail = nil }},
		{name: "empty name", mutate: func(r *models.CreateEntryRequest) { r.CustomerName = "  " }},
		{name: "negative priority", mutate: func(r *models.CreateEntryRequest) { r.Priority = -1 }},
		{name: "inverted date range", mutate: func(r *models.CreateEntryRequest) {
			r.PreferredDateFrom = "2025-10-17"
			r.PreferredDateTo = "2025-10-13"
		}},
		{name: "half-open time range", mutate: func(r *models.CreateEntryRequest) {
			r.PreferredTimeFrom = ptr.Ptr("10:00")
		}},
		{name: "inverted time range", mutate: func(r *models.CreateEntryRequest) {
			r.PreferredTimeFrom = ptr.Ptr("15:00")
			r.PreferredTimeTo = ptr.Ptr("10:00")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(req)

			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestNotify_Success(t *testing.T) {
	svc, repo, catalog, notifs := newService()

	entry := waitingEntry(42)
	notified := waitingEntry(42)
	notified.Status = domain.WaitlistNotified
	notified.NotificationCount = 1

	repo.On("GetByID", mock.Anything, int64(1), int64(42)).Return(entry, nil).Once()
	repo.On("MarkNotified", mock.Anything, int64(1), int64(42)).Return(nil)
	repo.On("GetByID", mock.Anything, int64(1), int64(42)).Return(notified, nil).Once()
	catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.ServiceDefinition{ID: 10, Name: "Стрижка"}, nil).Maybe()
	notifs.On("SendWaitlistNotice", mock.Anything, mock.Anything).Return(nil).Maybe()

	resp, err := svc.Notify(context.Background(), 1, 42, &models.NotifyRequest{
		ProposedDate: "2025-10-15",
		ProposedTime: "10:00",
	})

	require.NoError(t, err)
	assert.Equal(t, string(domain.WaitlistNotified), resp.Status)
	assert.Equal(t, 1, resp.NotificationCount)
}

func TestNotify_AlreadyProcessed(t *testing.T) {
	svc, repo, _, _ := newService()

	entry := waitingEntry(42)
	entry.Status = domain.WaitlistBooked
	repo.On("GetByID", mock.Anything, int64(1), int64(42)).Return(entry, nil)

	_, err := svc.Notify(context.Background(), 1, 42, &models.NotifyRequest{
		ProposedDate: "2025-10-15",
		ProposedTime: "10:00",
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
	repo.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotify_LostRaceOnCompareAndSet(t *testing.T) {
	svc, repo, _, _ := newService()

	repo.On("GetByID", mock.Anything, int64(1), int64(42)).Return(waitingEntry(42), nil)
	// Статус успел измениться между чтением и обновлением
	repo.On("MarkNotified", mock.Anything, int64(1), int64(42)).Return(waitlistRepo.ErrStatusConflict)

	_, err := svc.Notify(context.Background(), 1, 42, &models.NotifyRequest{
		ProposedDate: "2025-10-15",
		ProposedTime: "10:00",
	})

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestNotify_ProposedSlotOutOfRange(t *testing.T) {
	svc, repo, _, _ := newService()

	entry := waitingEntry(42)
	entry.PreferredTimeFrom = ptr.Ptr(types.TimeString("09:00"))
	entry.PreferredTimeTo = ptr.Ptr(types.TimeString("12:00"))
	repo.On("GetByID", mock.Anything, int64(1), int64(42)).Return(entry, nil)

	tests := []struct {
		name string
		req  *models.NotifyRequest
	}{
		{name: "date before range", req: &models.NotifyRequest{ProposedDate: "2025-10-10", ProposedTime: "10:00"}},
		{name: "date after range", req: &models.NotifyRequest{ProposedDate: "2025-10-20", ProposedTime: "10:00"}},
		{name: "time after range", req: &models.NotifyRequest{ProposedDate: "2025-10-15", ProposedTime: "14:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Notify(context.Background(), 1, 42, tt.req)
			assert.ErrorIs(t, err, ErrDateOutOfRange)
		})
	}

	repo.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.WaitlistStatus
		call    func(svc *Service) error
		to      domain.WaitlistStatus
		wantErr error
	}{
		{
			name: "waiting can be cancelled",
			from: domain.WaitlistWaiting,
			call: func(svc *Service) error { return svc.Cancel(context.Background(), 1, 42) },
			to:   domain.WaitlistCancelled,
		},
		{
			name: "notified can be booked",
			from: domain.WaitlistNotified,
			call: func(svc *Service) error { return svc.MarkBooked(context.Background(), 1, 42) },
			to:   domain.WaitlistBooked,
		},
		{
			name: "notified can expire",
			from: domain.WaitlistNotified,
			call: func(svc *Service) error { return svc.Expire(context.Background(), 1, 42) },
			to:   domain.WaitlistExpired,
		},
		{
			name:    "booked is terminal",
			from:    domain.WaitlistBooked,
			call:    func(svc *Service) error { return svc.Cancel(context.Background(), 1, 42) },
			wantErr: ErrInvalidTransition,
		},
		{
			name:    "expired is terminal",
			from:    domain.WaitlistExpired,
			call:    func(svc *Service) error { return svc.MarkBooked(context.Background(), 1, 42) },
			wantErr: ErrInvalidTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, _ := newService()

			entry := waitingEntry(42)
			entry.Status = tt.from
			repo.On("GetByID", mock.Anything, int64(1), int64(42)).Return(entry, nil)
			if tt.wantErr == nil {
				repo.On("Resolve", mock.Anything, int64(1), int64(42), tt.to).Return(nil)
			}

			err := tt.call(svc)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				repo.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestCandidatesFor_FiltersByPreferences(t *testing.T) {
	svc, repo, _, _ := newService()

	anyTime := waitingEntry(1)

	narrowTime := waitingEntry(2)
	narrowTime.PreferredTimeFrom = ptr.Ptr(types.TimeString("14:00"))
	narrowTime.PreferredTimeTo = ptr.Ptr(types.TimeString("18:00"))

	otherEmployee := waitingEntry(3)
	otherEmployee.PreferredEmployeeID = ptr.Ptr(int64(99))

	sameEmployee := waitingEntry(4)
	sameEmployee.PreferredEmployeeID = ptr.Ptr(int64(5))

	repo.On("ListRanked", mock.Anything, int64(1), mock.Anything, mock.Anything).
		Return([]*domain.WaitlistEntry{anyTime, narrowTime, otherEmployee, sameEmployee}, nil)

	resp, err := svc.CandidatesFor(context.Background(), 1, models.SlotRef{
		ServiceID:  10,
		EmployeeID: 5,
		Date:       time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime:  "10:00",
	})

	require.NoError(t, err)
	ids := make([]int64, 0, len(resp.Entries))
	for _, e := range resp.Entries {
		ids = append(ids, e.ID)
	}
	// Слот 10:00 не подходит записи с окном 14:00-18:00 и записи,
	// ждущей другого сотрудника
	assert.Equal(t, []int64{1, 4}, ids)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, repo, _, _ := newService()

	repo.On("GetByID", mock.Anything, int64(1), int64(42)).Return(nil, waitlistRepo.ErrEntryNotFound)

	_, err := svc.GetByID(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
