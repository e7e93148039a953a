package challenge_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/challenge"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestRepositoryCreateAssignsIDAndReturnsTimestamps(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := challenge.NewRepository(db)

	mockDB.Mock.ExpectQuery(`INSERT INTO challenges`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	c := &challenge.Challenge{
		Name:      "30-day streak",
		Metric:    "attendance",
		Goal:      30,
		StartDate: time.Now(),
		EndDate:   time.Now().AddDate(0, 1, 0),
		IsActive:  true,
	}
	err := repo.Create(context.Background(), c)
	require.NoError(t, err)
	require.NotEmpty(t, c.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryListAppliesActiveFilterAndPagination(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := challenge.NewRepository(db)

	mockDB.Mock.ExpectQuery(`SELECT COUNT\(\*\) FROM challenges WHERE`).
		WillReturnRows(testutil.MockRows("count").AddRow(1))
	mockDB.Mock.ExpectQuery(`SELECT id, name, description, metric, goal, start_date, end_date, is_active, created_at, updated_at`).
		WillReturnRows(testutil.MockRows(
			"id", "name", "description", "metric", "goal", "start_date", "end_date", "is_active", "created_at", "updated_at",
		).AddRow("c-1", "30-day streak", nil, "attendance", 30, time.Now(), time.Now(), true, time.Now(), time.Now()))

	rows, total, err := repo.List(context.Background(), kernel.Page{Number: 1, PerPage: 20}, true)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryIncrementProgressPassesDeltaAndGoal(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := challenge.NewRepository(db)

	mockDB.Mock.ExpectExec(`UPDATE challenge_participants`).
		WithArgs("p-1", 1, 30).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.IncrementProgress(context.Background(), "p-1", 1, 30)
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}
