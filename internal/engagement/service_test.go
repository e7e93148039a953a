package engagement_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/engagement"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestRiskLevelBands(t *testing.T) {
	require.Equal(t, "low", engagement.RiskLevel(75))
	require.Equal(t, "low", engagement.RiskLevel(100))
	require.Equal(t, "medium", engagement.RiskLevel(50))
	require.Equal(t, "medium", engagement.RiskLevel(74.9))
	require.Equal(t, "high", engagement.RiskLevel(25))
	require.Equal(t, "critical", engagement.RiskLevel(24.9))
	require.Equal(t, "critical", engagement.RiskLevel(0))
}

func TestRecomputeInTxOpensChurnAlertOnDeterioration(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := engagement.NewRepository(db)
	svc := engagement.NewService(db, repo, logger.New("test", "test"))

	mockDB.Mock.ExpectQuery(`SELECT`).
		WillReturnRows(testutil.MockRows(
			"visits_last30_days", "visits_prior30_days", "days_since_last_visit",
			"membership_age_days", "on_time_payment_ratio", "distinct_services",
		).AddRow(0, 0, 400, 10, 0.0, 0))

	mockDB.Mock.ExpectQuery(`SELECT id, user_id, visit_frequency, visit_recency, attendance_trend,\s+payment_reliability, membership_tenure, engagement_depth,\s+overall_score, risk_level, factors, is_current, created_at\s+FROM engagement_scores WHERE user_id = \$1 AND is_current = true`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "visit_frequency", "visit_recency", "attendance_trend",
			"payment_reliability", "membership_tenure", "engagement_depth",
			"overall_score", "risk_level", "factors", "is_current", "created_at",
		).AddRow("s-0", "user-1", 90, 90, 90, 100, 90, 80, 90, "low", []byte(`{}`), true, time.Now()))

	mockDB.Mock.ExpectExec(`UPDATE engagement_scores SET is_current = false`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mockDB.Mock.ExpectQuery(`INSERT INTO engagement_scores`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	mockDB.Mock.ExpectQuery(`INSERT INTO churn_alerts`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	score, err := svc.RecomputeInTx(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, "critical", score.RiskLevel)
	mockDB.ExpectationsWereMet(t)
}
