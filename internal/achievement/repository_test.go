package achievement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/achievement"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestCriteriaUnmarshalsTypedJSON(t *testing.T) {
	a := &achievement.Achievement{CriteriaRaw: []byte(`{"type":"total_visits","value":50}`)}
	c, err := a.Criteria()
	require.NoError(t, err)
	require.Equal(t, "total_visits", c.Type)
	require.Equal(t, 50, c.Value)
}

func TestRepositoryListAllReturnsNonDeletedAchievements(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := achievement.NewRepository(db)

	mockDB.Mock.ExpectQuery(`SELECT id, name, description, icon_url, criteria, created_at, updated_at\s+FROM achievements WHERE deleted_at IS NULL\s*$`).
		WillReturnRows(testutil.MockRows(
			"id", "name", "description", "icon_url", "criteria", "created_at", "updated_at",
		).AddRow("a-1", "First Visit", nil, nil, []byte(`{"type":"total_visits","value":1}`), time.Now(), time.Now()))

	rows, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryHasAwardedChecksExistence(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := achievement.NewRepository(db)

	mockDB.Mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	ok, err := repo.HasAwarded(context.Background(), "user-1", "a-1")
	require.NoError(t, err)
	require.True(t, ok)
	mockDB.ExpectationsWereMet(t)
}
