package staffsalary_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/staffsalary"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestRepositoryCreateDefaultsStatusToPending(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := staffsalary.NewRepository(db)

	mockDB.Mock.ExpectQuery(`INSERT INTO staff_salaries`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	s := &staffsalary.StaffSalary{StaffID: "staff-1", Month: 6, Year: 2024, Amount: 20000, NetAmount: 20000}
	err := repo.Create(context.Background(), s)
	require.NoError(t, err)
	require.Equal(t, staffsalary.StatusPending, s.Status)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryExistsForMonth(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := staffsalary.NewRepository(db)

	mockDB.Mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	exists, err := repo.ExistsForMonth(context.Background(), "staff-1", 6, 2024)
	require.NoError(t, err)
	require.True(t, exists)
	mockDB.ExpectationsWereMet(t)
}
