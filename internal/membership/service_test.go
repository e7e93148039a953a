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

func TestCreateInTxComputesNetAmountAndSettlesActive(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := membership.NewRepository(db)
	svc := membership.NewService(db, repo)

	mockDB.Mock.ExpectQuery(`INSERT INTO memberships`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))
	mockDB.Mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.Mock.ExpectExec(`UPDATE memberships SET status = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	m, payment, err := svc.CreateInTx(context.Background(), membership.CreateInput{
		UserID:         "user-1",
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(0, 1, 0),
		OriginalAmount: 1000,
		DiscountAmount: 100,
		TaxAmount:      0,
		PaymentRef:     "R-1",
	})
	require.NoError(t, err)
	require.Equal(t, membership.StatusActive, m.Status)
	require.Equal(t, float64(900), m.FinalAmount)
	require.Equal(t, float64(900), payment.NetAmount)
	mockDB.ExpectationsWereMet(t)
}

func TestSuspendInTxRejectsNonActiveMembership(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := membership.NewRepository(db)
	svc := membership.NewService(db, repo)

	mockDB.Mock.ExpectQuery(`SELECT id, user_id, plan_id`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "plan_id", "branch_id", "start_date", "end_date", "status",
			"original_amount", "discount_amount", "final_amount", "suspended_at", "created_at", "updated_at",
		).AddRow("m-1", "user-1", nil, nil, time.Now(), time.Now(), membership.StatusPending,
			1000.0, 0.0, 1000.0, nil, time.Now(), time.Now()))

	_, err := svc.SuspendInTx(context.Background(), "m-1")
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestCancelInTxRejectsAlreadyTerminalMembership(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := membership.NewRepository(db)
	svc := membership.NewService(db, repo)

	mockDB.Mock.ExpectQuery(`SELECT id, user_id, plan_id`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "plan_id", "branch_id", "start_date", "end_date", "status",
			"original_amount", "discount_amount", "final_amount", "suspended_at", "created_at", "updated_at",
		).AddRow("m-1", "user-1", nil, nil, time.Now(), time.Now(), membership.StatusCancelled,
			1000.0, 0.0, 1000.0, nil, time.Now(), time.Now()))

	_, err := svc.CancelInTx(context.Background(), "m-1", "member_request")
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}
