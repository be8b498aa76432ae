package create_booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-service/internal/domain"
	"github.com/bookline/booking-service/internal/integrations/notifier"
	appointmentRepo "github.com/bookline/booking-service/internal/infra/storage/appointment"
	"github.com/bookline/booking-service/pkg/ptr"
	"github.com/bookline/booking-service/pkg/types"
)

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	args := m.Called(ctx, appt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListWithFilter(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Appointment), args.Error(1)
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

func (m *MockCatalogRepository) GetEmployee(ctx context.Context, tenantID, employeeID int64) (*domain.Employee, error) {
	args := m.Called(ctx, tenantID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockCatalogRepository) ListActiveEmployees(ctx context.Context, tenantID int64) ([]*domain.Employee, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Employee), args.Error(1)
}

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) GetByEmployee(ctx context.Context, tenantID, employeeID int64) (*domain.EmployeeSchedule, error) {
	args := m.Called(ctx, tenantID, employeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmployeeSchedule), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindOrCreate(ctx context.Context, tenantID int64, ref domain.CustomerRef) (*domain.Customer, error) {
	args := m.Called(ctx, tenantID, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

type MockNotifierClient struct {
	mock.Mock
}

func (m *MockNotifierClient) SendBookingConfirmation(ctx context.Context, msg notifier.BookingConfirmation) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// passthroughTxManager выполняет функцию без реальной транзакции
type passthroughTxManager struct{}

func (passthroughTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type staticTokenGenerator struct {
	token string
}

func (g *staticTokenGenerator) NewToken() string {
	return g.token
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

// wednesday 2025-10-15
var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

func scheduleWith(employeeID int64, weekday time.Weekday, start, end types.TimeString) *domain.EmployeeSchedule {
	sched := &domain.EmployeeSchedule{EmployeeID: employeeID, TenantID: 1}
	sched.Days[weekday] = domain.WorkWindow{Working: true, Start: start, End: end}
	return sched
}

type fixtures struct {
	appointments *MockAppointmentRepository
	catalog      *MockCatalogRepository
	schedules    *MockScheduleRepository
	customers    *MockCustomerRepository
	notifs       *MockNotifierClient
	uc           *UseCase
}

func newFixtures() *fixtures {
	f := &fixtures{
		appointments: new(MockAppointmentRepository),
		catalog:      new(MockCatalogRepository),
		schedules:    new(MockScheduleRepository),
		customers:    new(MockCustomerRepository),
		notifs:       new(MockNotifierClient),
	}
	f.uc = NewUseCase(
		f.appointments, f.catalog, f.schedules, f.customers, f.notifs,
		passthroughTxManager{}, &staticTokenGenerator{token: "test-token"}, nopLogger{},
	)
	return f
}

func validRequest() *Request {
	return &Request{
		TenantID:  1,
		ServiceID: 10,
		Employee:  domain.SpecificEmployee(5),
		Date:      testDate,
		StartTime: "10:00",
		Customer: domain.CustomerRef{
			Name:  "Анна Иванова",
			Email: ptr.Ptr("anna@example.com"),
		},
	}
}

func TestExecute_Success(t *testing.T) {
	f := newFixtures()

	f.catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.ServiceDefinition{ID: 10, TenantID: 1, Name: "Стрижка", DurationMinutes: 60, Price: 1500, Active: true}, nil)
	f.catalog.On("GetEmployee", mock.Anything, int64(1), int64(5)).
		Return(&domain.Employee{ID: 5, TenantID: 1, Active: true}, nil)
	f.schedules.On("GetByEmployee", mock.Anything, int64(1), int64(5)).
		Return(scheduleWith(5, time.Wednesday, "09:00", "18:00"), nil)
	f.appointments.On("ListWithFilter", mock.Anything, mock.Anything).
		Return([]*domain.Appointment{}, nil)
	f.customers.On("FindOrCreate", mock.Anything, int64(1), mock.Anything).
		Return(&domain.Customer{ID: 7, TenantID: 1, Name: "Анна Иванова", Email: ptr.Ptr("anna@example.com")}, nil)
	f.appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return a.EmployeeID == 5 &&
			a.CustomerID == 7 &&
			a.DurationMinutes == 60 &&
			a.Status == domain.StatusScheduled &&
			a.ConfirmationToken == "test-token" &&
			a.ServiceName == "Стрижка"
	})).Return(&domain.Appointment{ID: 100, TenantID: 1, EmployeeID: 5, ConfirmationToken: "test-token"}, nil)
	f.notifs.On("SendBookingConfirmation", mock.Anything, mock.Anything).Return(nil).Maybe()

	resp, err := f.uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.Appointment.ID)
	assert.Equal(t, int64(7), resp.Customer.ID)
	f.appointments.AssertExpectations(t)
}

func TestExecute_SlotTakenOnRecheck(t *testing.T) {
	f := newFixtures()

	f.catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.ServiceDefinition{ID: 10, TenantID: 1, DurationMinutes: 60, Active: true}, nil)
	f.catalog.On("GetEmployee", mock.Anything, int64(1), int64(5)).
		Return(&domain.Employee{ID: 5, TenantID: 1, Active: true}, nil)
	f.schedules.On("GetByEmployee", mock.Anything, int64(1), int64(5)).
		Return(scheduleWith(5, time.Wednesday, "09:00", "18:00"), nil)

	// Интервал успели занять между расчётом слотов и созданием записи
	f.appointments.On("ListWithFilter", mock.Anything, mock.Anything).
		Return([]*domain.Appointment{
			{EmployeeID: 5, StartTime: "10:30", DurationMinutes: 60, Status: domain.StatusScheduled},
		}, nil)

	_, err := f.uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotTaken)
	f.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.customers.AssertNotCalled(t, "FindOrCreate", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_DBConflictMapsToSlotTaken(t *testing.T) {
	f := newFixtures()

	f.catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.ServiceDefinition{ID: 10, TenantID: 1, DurationMinutes: 60, Active: true}, nil)
	f.catalog.On("GetEmployee", mock.Anything, int64(1), int64(5)).
		Return(&domain.Employee{ID: 5, TenantID: 1, Active: true}, nil)
	f.schedules.On("GetByEmployee", mock.Anything, int64(1), int64(5)).
		Return(scheduleWith(5, time.Wednesday, "09:00", "18:00"), nil)
	f.appointments.On("ListWithFilter", mock.Anything, mock.Anything).
		Return([]*domain.Appointment{}, nil)
	f.customers.On("FindOrCreate", mock.Anything, int64(1), mock.Anything).
		Return(&domain.Customer{ID: 7, TenantID: 1, Name: "Анна Иванова"}, nil)

	// Вставку отклонило ограничение БД на пересечение интервалов
	f.appointments.On("Create", mock.Anything, mock.Anything).
		Return(nil, appointmentRepo.ErrTimeConflict)

	_, err := f.uc.Execute(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_OutsideWorkingHours(t *testing.T) {
	tests := []struct {
		name      string
		startTime types.TimeString
	}{
		{name: "before window", startTime: "08:00"},
		{name: "ends past window", startTime: "17:30"},
		{name: "off the slot grid", startTime: "10:15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixtures()

			f.catalog.On("GetService", mock.Anything, int64(1), int64(10)).
				Return(&domain.ServiceDefinition{ID: 10, TenantID: 1, DurationMinutes: 60, Active: true}, nil)
			f.catalog.On("GetEmployee", mock.Anything, int64(1), int64(5)).
				Return(&domain.Employee{ID: 5, TenantID: 1, Active: true}, nil)
			f.schedules.On("GetByEmployee", mock.Anything, int64(1), int64(5)).
				Return(scheduleWith(5, time.Wednesday, "09:00", "18:00"), nil)
			f.appointments.On("ListWithFilter", mock.Anything, mock.Anything).
				Return([]*domain.Appointment{}, nil).Maybe()

			req := validRequest()
			req.StartTime = tt.startTime

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrOutsideWorkingHours)
		})
	}
}

func TestExecute_AnyEmployee_PicksFirstFree(t *testing.T) {
	f := newFixtures()

	f.catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.ServiceDefinition{ID: 10, TenantID: 1, DurationMinutes: 60, Active: true}, nil)
	f.catalog.On("ListActiveEmployees", mock.Anything, int64(1)).
		Return([]*domain.Employee{
			{ID: 5, TenantID: 1, Active: true},
			{ID: 6, TenantID: 1, Active: true},
		}, nil)
	f.schedules.On("GetByEmployee", mock.Anything, int64(1), int64(5)).
		Return(scheduleWith(5, time.Wednesday, "09:00", "18:00"), nil)
	f.schedules.On("GetByEmployee", mock.Anything, int64(1), int64(6)).
		Return(scheduleWith(6, time.Wednesday, "09:00", "18:00"), nil)

	// У первого сотрудника интервал занят, у второго свободен
	busyFive := []*domain.Appointment{
		{EmployeeID: 5, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusConfirmed},
	}
	f.appointments.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(filter domain.AppointmentsFilter) bool {
		return filter.EmployeeID != nil && *filter.EmployeeID == 5
	})).Return(busyFive, nil)
	f.appointments.On("ListWithFilter", mock.Anything, mock.MatchedBy(func(filter domain.AppointmentsFilter) bool {
		return filter.EmployeeID != nil && *filter.EmployeeID == 6
	})).Return([]*domain.Appointment{}, nil)

	f.customers.On("FindOrCreate", mock.Anything, int64(1), mock.Anything).
		Return(&domain.Customer{ID: 7, TenantID: 1, Name: "Анна Иванова"}, nil)
	f.appointments.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Appointment) bool {
		return a.EmployeeID == 6
	})).Return(&domain.Appointment{ID: 101, TenantID: 1, EmployeeID: 6}, nil)

	req := validRequest()
	req.Employee = domain.AnyAvailableEmployee()

	resp, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, int64(6), resp.Appointment.EmployeeID)
	f.appointments.AssertExpectations(t)
}

func TestExecute_AnyEmployee_NobodyFree(t *testing.T) {
	f := newFixtures()

	f.catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.ServiceDefinition{ID: 10, TenantID: 1, DurationMinutes: 60, Active: true}, nil)
	f.catalog.On("ListActiveEmployees", mock.Anything, int64(1)).
		Return([]*domain.Employee{{ID: 5, TenantID: 1, Active: true}}, nil)
	f.schedules.On("GetByEmployee", mock.Anything, int64(1), int64(5)).
		Return(scheduleWith(5, time.Wednesday, "09:00", "18:00"), nil)
	f.appointments.On("ListWithFilter", mock.Anything, mock.Anything).
		Return([]*domain.Appointment{
			{EmployeeID: 5, StartTime: "10:00", DurationMinutes: 60, Status: domain.StatusScheduled},
		}, nil)

	req := validRequest()
	req.Employee = domain.AnyAvailableEmployee()

	_, err := f.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestExecute_InactiveServiceRejected(t *testing.T) {
	f := newFixtures()

	f.catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.ServiceDefinition{ID: 10, TenantID: 1, DurationMinutes: 60, Active: false}, nil)

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestExecute_InactiveEmployeeRejected(t *testing.T) {
	f := newFixtures()

	f.catalog.On("GetService", mock.Anything, int64(1), int64(10)).
		Return(&domain.ServiceDefinition{ID: 10, TenantID: 1, DurationMinutes: 60, Active: true}, nil)
	f.catalog.On("GetEmployee", mock.Anything, int64(1), int64(5)).
		Return(&domain.Employee{ID: 5, TenantID: 1, Active: false}, nil)

	_, err := f.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestExecute_Validation(t *testing.T) {
	f := newFixtures()

	tests := []struct {
		name   string
		mutate func(req *Request)
	}{
		{name: "zero tenant", mutate: func(r *Request) { r.TenantID = 0 }},
		{name: "zero service", mutate: func(r *Request) { r.ServiceID = 0 }},
		{name: "bad start time", mutate: func(r *Request) { r.StartTime = "25:00" }},
		{name: "empty customer name", mutate: func(r *Request) { r.Customer.Name = "" }},
		{name: "no contact", mutate: func(r *Request) { r.Customer.Email = nil; r.Customer.Phone = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := f.uc.Execute(context.Background(), req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
