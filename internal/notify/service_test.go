package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/notify"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

const testGymID = "11111111-1111-1111-1111-111111111111"

func TestNotifyMembershipExpiryInTxEscalatesPriority(t *testing.T) {
	cases := []struct {
		daysRemaining int
		wantPriority  string
	}{
		{0, "urgent"},
		{1, "urgent"},
		{2, "high"},
		{3, "high"},
		{5, "normal"},
		{7, "normal"},
		{14, "low"},
	}

	for _, tc := range cases {
		mockDB := testutil.NewMockDB(t)

		db := &database.DB{DB: mockDB.DB}
		repo := notify.NewRepository(db)
		hub := notify.NewHub(logger.New("test", "test"))
		svc := notify.NewService(db, repo, hub)

		mockDB.Mock.ExpectQuery(`INSERT INTO notifications`).
			WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

		err := svc.NotifyMembershipExpiryInTx(context.Background(), testGymID, "user-1", tc.daysRemaining)
		require.NoError(t, err)
		mockDB.ExpectationsWereMet(t)
		mockDB.Close()
	}
}

func TestNotifyMembershipRenewedInTxWritesNotification(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := notify.NewRepository(db)
	hub := notify.NewHub(logger.New("test", "test"))
	svc := notify.NewService(db, repo, hub)

	mockDB.Mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	err := svc.NotifyMembershipRenewedInTx(context.Background(), testGymID, "user-1", "Gold Plan")
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestDeleteOldComputesCutoffFromOlderThanDays(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := notify.NewRepository(db)
	hub := notify.NewHub(logger.New("test", "test"))
	svc := notify.NewService(db, repo, hub)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(`SET LOCAL search_path`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectExec(`DELETE FROM notifications WHERE is_read = true AND read_at < \$1`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mockDB.Mock.ExpectCommit()

	count, err := svc.DeleteOld(context.Background(), testGymID, 30)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	mockDB.ExpectationsWereMet(t)
}
