package achievement_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/achievement"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestEvaluateAndAwardInTxAwardsQualifyingAchievements(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := achievement.NewRepository(db)
	svc := achievement.NewService(db, repo)

	mockDB.Mock.ExpectQuery(`SELECT id, name, description, icon_url, criteria, created_at, updated_at`).
		WillReturnRows(testutil.MockRows(
			"id", "name", "description", "icon_url", "criteria", "created_at", "updated_at",
		).
			AddRow("a-visits", "First Visit", nil, nil, []byte(`{"type":"total_visits","value":1}`), time.Now(), time.Now()).
			AddRow("a-streak", "Week Streak", nil, nil, []byte(`{"type":"streak_days","value":7}`), time.Now(), time.Now()).
			AddRow("a-far", "Century Club", nil, nil, []byte(`{"type":"total_visits","value":100}`), time.Now(), time.Now()))

	mockDB.Mock.ExpectQuery(`SELECT COUNT\(\*\) FROM attendances`).
		WillReturnRows(testutil.MockRows("count").AddRow(5))

	mockDB.Mock.ExpectExec(`INSERT INTO user_achievements`).
		WithArgs(sqlmock.AnyArg(), "user-1", "a-visits").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectExec(`INSERT INTO user_achievements`).
		WithArgs(sqlmock.AnyArg(), "user-1", "a-streak").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.EvaluateAndAwardInTx(context.Background(), "user-1", 7)
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}
