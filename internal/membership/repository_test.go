package membership_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/membership"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestRepositoryCreateDefaultsStatusToPending(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := membership.NewRepository(db)

	mockDB.Mock.ExpectQuery(`INSERT INTO memberships`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	m := &membership.Membership{UserID: "user-1", StartDate: time.Now(), EndDate: time.Now().AddDate(0, 1, 0)}
	err := repo.Create(context.Background(), m)
	require.NoError(t, err)
	require.Equal(t, membership.StatusPending, m.Status)
	require.NotEmpty(t, m.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryExpireOverdueReturnsRowsAffected(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := membership.NewRepository(db)

	mockDB.Mock.ExpectExec(`UPDATE memberships SET status = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 4))

	count, err := repo.ExpireOverdue(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), count)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryCreatePaymentComputesNothingItself(t *testing.T) {
	// Repository.CreatePayment persists whatever NetAmount the caller
	// already computed — netAmount = amount + taxAmount - discountAmount
	// is the service's responsibility, not the repository's.
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := membership.NewRepository(db)

	mockDB.Mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	membershipID := "m-1"
	p := &membership.Payment{MembershipID: &membershipID, Amount: 1000, TaxAmount: 0, DiscountAmount: 100, NetAmount: 900, PaymentRef: "R-1"}
	err := repo.CreatePayment(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, membership.PaymentCompleted, p.Status)
	mockDB.ExpectationsWereMet(t)
}
