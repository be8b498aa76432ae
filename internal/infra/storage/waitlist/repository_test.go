package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-service/internal/domain"
)

func TestMarkNotified_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE waitlist_entries SET .+notification_count = notification_count \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MarkNotified(context.Background(), 1, 42)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkNotified_AlreadyProcessed(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	// Запись ушла из waiting между чтением и переходом
	mock.ExpectExec(`UPDATE waitlist_entries SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.MarkNotified(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestResolve_AlreadyProcessed(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE waitlist_entries SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Resolve(context.Background(), 1, 42, domain.WaitlistBooked)
	assert.ErrorIs(t, err, ErrStatusConflict)
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM waitlist_entries WHERE`).
		WillReturnRows(sqlmock.NewRows(entryColumns))

	_, err = repo.GetByID(context.Background(), 1, 42)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestListRanked_OrdersByPriorityThenAge(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(entryColumns).
		AddRow(2, 1, "Анна", "anna@example.com", nil, 10, nil,
			now, now, nil, nil, "waiting", 10, nil, 0, now, now).
		AddRow(1, 1, "Борис", "boris@example.com", nil, 10, nil,
			now, now, nil, nil, "waiting", 5, nil, 0, now, now)

	mock.ExpectQuery(`SELECT .+ FROM waitlist_entries WHERE .+ ORDER BY priority DESC, created_at ASC`).
		WillReturnRows(rows)

	waiting := domain.WaitlistWaiting
	serviceID := int64(10)
	entries, err := repo.ListRanked(context.Background(), 1, &waiting, &serviceID)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int64(2), entries[0].ID)
	assert.Equal(t, 10, entries[0].Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}
