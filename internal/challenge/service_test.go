package challenge_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/challenge"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestAdvanceProgressInTxIncrementsEveryMatchingParticipant(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := challenge.NewRepository(db)
	svc := challenge.NewService(db, repo)

	mockDB.Mock.ExpectQuery(`SELECT p.id, p.challenge_id, p.user_id, p.current_value, p.progress_pct, p.completed_at, p.joined_at`).
		WillReturnRows(testutil.MockRows(
			"id", "challenge_id", "user_id", "current_value", "progress_pct", "completed_at", "joined_at",
		).AddRow("part-1", "c-1", "user-1", 5, 16.6, nil, time.Now()))

	mockDB.Mock.ExpectQuery(`SELECT goal FROM challenges`).
		WillReturnRows(testutil.MockRows("goal").AddRow(30))

	mockDB.Mock.ExpectExec(`UPDATE challenge_participants`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := svc.AdvanceProgressInTx(context.Background(), "user-1", []string{"attendance"}, 1)
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}
