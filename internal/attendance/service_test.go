package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/attendance"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestUpsertStreakInTxStartsAtOneWithNoExistingRow(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := attendance.NewRepository(db)
	svc := attendance.NewService(db, repo)

	mockDB.Mock.ExpectQuery(`SELECT id, user_id, streak_type, current_count, longest_count, last_event_date, created_at, updated_at`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "streak_type", "current_count", "longest_count", "last_event_date", "created_at", "updated_at",
		))

	mockDB.Mock.ExpectQuery(`INSERT INTO streaks`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	s, err := svc.UpsertStreakInTx(context.Background(), "user-1", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 1, s.CurrentCount)
	require.Equal(t, 1, s.LongestCount)
	mockDB.ExpectationsWereMet(t)
}

func TestUpsertStreakInTxIncrementsOnConsecutiveDay(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := attendance.NewRepository(db)
	svc := attendance.NewService(db, repo)

	mockDB.Mock.ExpectQuery(`SELECT id, user_id, streak_type, current_count, longest_count, last_event_date, created_at, updated_at`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "streak_type", "current_count", "longest_count", "last_event_date", "created_at", "updated_at",
		).AddRow("s-1", "user-1", "daily_visit", 1, 1, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Now(), time.Now()))

	mockDB.Mock.ExpectExec(`UPDATE streaks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s, err := svc.UpsertStreakInTx(context.Background(), "user-1", time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 2, s.CurrentCount)
	require.Equal(t, 2, s.LongestCount)
	mockDB.ExpectationsWereMet(t)
}

func TestUpsertStreakInTxResetsAfterGap(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := attendance.NewRepository(db)
	svc := attendance.NewService(db, repo)

	mockDB.Mock.ExpectQuery(`SELECT id, user_id, streak_type, current_count, longest_count, last_event_date, created_at, updated_at`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "streak_type", "current_count", "longest_count", "last_event_date", "created_at", "updated_at",
		).AddRow("s-1", "user-1", "daily_visit", 2, 2, time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC), time.Now(), time.Now()))

	mockDB.Mock.ExpectExec(`UPDATE streaks`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	s, err := svc.UpsertStreakInTx(context.Background(), "user-1", time.Date(2024, 6, 13, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Equal(t, 1, s.CurrentCount)
	require.Equal(t, 2, s.LongestCount)
	mockDB.ExpectationsWereMet(t)
}
