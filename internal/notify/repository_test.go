package notify_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/notify"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestRepositoryCreateDefaultsPriority(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := notify.NewRepository(db)

	mockDB.Mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	n := &notify.Notification{UserID: "user-1", Type: "MEMBERSHIP_RENEWED", Title: "t", Message: "m"}
	err := repo.Create(context.Background(), n)
	require.NoError(t, err)
	require.Equal(t, "normal", n.Priority)
	require.NotEmpty(t, n.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryListUnreadOnlyIncludesDeletedPredicate(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := notify.NewRepository(db)

	mockDB.Mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications WHERE`).
		WillReturnRows(testutil.MockRows("count").AddRow(1))
	mockDB.Mock.ExpectQuery(`SELECT id, user_id, type, title, message, priority, is_read, read_at, created_at\s+FROM notifications WHERE`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "type", "title", "message", "priority", "is_read", "read_at", "created_at",
		).AddRow("n-1", "user-1", "MEMBERSHIP_EXPIRY", "t", "m", "urgent", false, nil, time.Now()))

	rows, total, err := repo.List(context.Background(), "user-1", kernel.Page{Number: 1, PerPage: 20}, true)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryDeleteOldReturnsRowsAffected(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := notify.NewRepository(db)

	mockDB.Mock.ExpectExec(`DELETE FROM notifications WHERE is_read = true AND read_at < \$1`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	count, err := repo.DeleteOld(context.Background(), time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
	mockDB.ExpectationsWereMet(t)
}
