package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-service/internal/domain"
)

func newAppointment() *domain.Appointment {
	return &domain.Appointment{
		TenantID:          1,
		EmployeeID:        5,
		ServiceID:         10,
		CustomerID:        7,
		Date:              time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC),
		StartTime:         "10:00",
		DurationMinutes:   60,
		Status:            domain.StatusScheduled,
		ConfirmationToken: "token-1",
		ServiceName:       "Стрижка",
		ServicePrice:      1500,
		CustomerName:      "Анна Иванова",
	}
}

func TestCreate_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO appointments`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(100, now, now))

	created, err := repo.Create(context.Background(), newAppointment())

	require.NoError(t, err)
	assert.Equal(t, int64(100), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_ConflictErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		code pq.ErrorCode
	}{
		{name: "unique violation", code: "23505"},
		{name: "exclusion violation", code: "23P01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
			require.NoError(t, err)
			defer db.Close()

			repo := NewRepository(db)

			mock.ExpectQuery(`INSERT INTO appointments`).
				WillReturnError(&pq.Error{Code: tt.code})

			_, err = repo.Create(context.Background(), newAppointment())

			assert.ErrorIs(t, err, ErrTimeConflict)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCreate_OtherErrorIsNotAConflict(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`INSERT INTO appointments`).
		WillReturnError(errors.New("connection reset"))

	_, err = repo.Create(context.Background(), newAppointment())

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeConflict)
	assert.ErrorIs(t, err, ErrExecQuery)
}

func appointmentRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(appointmentColumns).
		AddRow(100, 1, 5, 10, 7, time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), "10:00", 60,
			"scheduled", "token-1", "Стрижка", 1500.0, "Анна Иванова", nil, nil, nil, now, now)
}

func TestGetByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM appointments WHERE`).
		WithArgs(int64(100), int64(1)).
		WillReturnRows(appointmentRows())

	appt, err := repo.GetByID(context.Background(), 1, 100)

	require.NoError(t, err)
	assert.Equal(t, int64(100), appt.ID)
	assert.Equal(t, domain.StatusScheduled, appt.Status)
	assert.Equal(t, "token-1", appt.ConfirmationToken)
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM appointments WHERE`).
		WillReturnRows(sqlmock.NewRows(appointmentColumns))

	_, err = repo.GetByID(context.Background(), 1, 100)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestListWithFilter_ExcludesCancelledByDefault(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM appointments WHERE .+ status <> .+ ORDER BY`).
		WillReturnRows(appointmentRows())

	appointments, err := repo.ListWithFilter(context.Background(), domain.AppointmentsFilter{TenantID: 1})

	require.NoError(t, err)
	assert.Len(t, appointments, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE appointments SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), 1, 100, domain.StatusConfirmed)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestUpdateStatus_GuardedTransitionConflict(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	// Предикат по статусу в WHERE: ноль строк означает проигранную гонку
	mock.ExpectExec(`UPDATE appointments SET .+ status IN \(`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), 1, 100, domain.StatusConfirmed, domain.StatusScheduled)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestCancel_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE appointments SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Cancel(context.Background(), 1, 100, "клиент заболел")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancel_AlreadyProcessedMeansConflict(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE appointments SET .+ status IN \(`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Cancel(context.Background(), 1, 100, "повторная отмена")
	assert.ErrorIs(t, err, ErrStatusConflict)
}
