package packages

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookline/booking-service/internal/domain"
)

func packageRow(usesRemaining int, status domain.PackageStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(customerPackageColumns).
		AddRow(50, 1, 7, 3, 10, usesRemaining, nil, string(status), now, now)
}

func TestRedeemUse_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`UPDATE customer_packages SET uses_remaining = uses_remaining - 1`).
		WillReturnRows(packageRow(9, domain.PackageActive))

	pkg, err := repo.RedeemUse(context.Background(), 1, 50)

	require.NoError(t, err)
	assert.Equal(t, 9, pkg.UsesRemaining)
	assert.Equal(t, domain.PackageActive, pkg.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeemUse_LastCreditFlipsStatus(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`UPDATE customer_packages SET uses_remaining = uses_remaining - 1`).
		WillReturnRows(packageRow(0, domain.PackageFullyUsed))

	pkg, err := repo.RedeemUse(context.Background(), 1, 50)

	require.NoError(t, err)
	assert.Equal(t, 0, pkg.UsesRemaining)
	assert.Equal(t, domain.PackageFullyUsed, pkg.Status)
}

func TestRedeemUse_NoMatchingRowMeansNotRedeemable(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	// Guarded UPDATE не нашел строку: пакет исчерпан, просрочен или не активен
	mock.ExpectQuery(`UPDATE customer_packages SET uses_remaining = uses_remaining - 1`).
		WillReturnRows(sqlmock.NewRows(customerPackageColumns))

	_, err = repo.RedeemUse(context.Background(), 1, 50)
	assert.ErrorIs(t, err, ErrNotRedeemable)
}

func TestInsertRedemption_Success(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	redeemedAt := time.Now()
	mock.ExpectQuery(`INSERT INTO package_redemptions`).
		WillReturnRows(sqlmock.NewRows([]string{"redeemed_at"}).AddRow(redeemedAt))

	redemption, err := repo.InsertRedemption(context.Background(), &domain.PackageRedemption{
		ID:                "redemption-1",
		TenantID:          1,
		CustomerPackageID: 50,
	})

	require.NoError(t, err)
	assert.Equal(t, "redemption-1", redemption.ID)
	assert.WithinDuration(t, redeemedAt, redemption.RedeemedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCustomerPackage_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM customer_packages WHERE`).
		WillReturnRows(sqlmock.NewRows(customerPackageColumns))

	_, err = repo.GetCustomerPackage(context.Background(), 1, 50)
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestCountForLimit(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM customer_packages`).
		WithArgs(int64(7), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountForLimit(context.Background(), 1, 7, 3)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
