package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/attendance"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestRepositoryCreateAssignsIDAndCheckInTime(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := attendance.NewRepository(db)

	mockDB.Mock.ExpectQuery(`INSERT INTO attendances`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	a := &attendance.Attendance{UserID: "user-1"}
	err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	require.False(t, a.CheckInAt.IsZero())
	mockDB.ExpectationsWereMet(t)
}
