package pipelines_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/achievement"
	"github.com/gymflow/gymflow-backend/internal/attendance"
	"github.com/gymflow/gymflow-backend/internal/challenge"
	"github.com/gymflow/gymflow-backend/internal/engagement"
	"github.com/gymflow/gymflow-backend/internal/loyalty"
	"github.com/gymflow/gymflow-backend/internal/pipelines"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

const testGymID = "11111111-1111-1111-1111-111111111111"

// TestAttendancePipelineRunsAllFiveStepsInOneTransaction exercises the
// full happy path with empty downstream working sets (no challenges
// joined, no achievements, loyalty disabled, no prior engagement score)
// to verify the pipeline opens exactly one broker scope and commits.
func TestAttendancePipelineRunsAllFiveStepsInOneTransaction(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	log := logger.New("test", "test")
	db := &database.DB{DB: mockDB.DB}

	attendanceRepo := attendance.NewRepository(db)
	attendanceSvc := attendance.NewService(db, attendanceRepo)
	challengeSvc := challenge.NewService(db, challenge.NewRepository(db))
	achievementSvc := achievement.NewService(db, achievement.NewRepository(db))
	loyaltySvc := loyalty.NewService(db, loyalty.NewRepository(db), log)
	engagementSvc := engagement.NewService(db, engagement.NewRepository(db), log)

	pipeline := pipelines.NewAttendancePipeline(db, attendanceSvc, challengeSvc, achievementSvc, loyaltySvc, engagementSvc, log)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(`SET LOCAL search_path`).WillReturnResult(sqlmock.NewResult(0, 0))

	// Step 0: primary attendance write.
	mockDB.Mock.ExpectQuery(`INSERT INTO attendances`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	// Step 1: streak upsert, no existing row.
	mockDB.Mock.ExpectQuery(`SELECT id, user_id, streak_type, current_count, longest_count, last_event_date, created_at, updated_at`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "streak_type", "current_count", "longest_count", "last_event_date", "created_at", "updated_at",
		))
	mockDB.Mock.ExpectQuery(`INSERT INTO streaks`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	// Step 2: challenge progress, no joined challenges.
	mockDB.Mock.ExpectQuery(`SELECT p.id, p.challenge_id, p.user_id, p.current_value, p.progress_pct, p.completed_at, p.joined_at`).
		WillReturnRows(testutil.MockRows(
			"id", "challenge_id", "user_id", "current_value", "progress_pct", "completed_at", "joined_at",
		))

	// Step 3: achievement evaluation, no achievements configured.
	mockDB.Mock.ExpectQuery(`SELECT id, name, description, icon_url, criteria, created_at, updated_at`).
		WillReturnRows(testutil.MockRows(
			"id", "name", "description", "icon_url", "criteria", "created_at", "updated_at",
		))

	// Step 4: loyalty award, config disabled -> no-op.
	mockDB.Mock.ExpectQuery(`SELECT id, is_active, default_points, point_expiry_days`).
		WillReturnRows(testutil.MockRows("id", "is_active", "default_points", "point_expiry_days", "created_at", "updated_at").
			AddRow("cfg-1", false, 10, 365, time.Now(), time.Now()))

	// Step 5: engagement recompute.
	mockDB.Mock.ExpectQuery(`SELECT`).
		WillReturnRows(testutil.MockRows(
			"visits_last30_days", "visits_prior30_days", "days_since_last_visit",
			"membership_age_days", "on_time_payment_ratio", "distinct_services",
		).AddRow(5, 4, 1, 100, 1.0, 3))
	mockDB.Mock.ExpectQuery(`SELECT id, user_id, visit_frequency, visit_recency, attendance_trend,\s+payment_reliability, membership_tenure, engagement_depth,\s+overall_score, risk_level, factors, is_current, created_at\s+FROM engagement_scores WHERE user_id = \$1 AND is_current = true`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "visit_frequency", "visit_recency", "attendance_trend",
			"payment_reliability", "membership_tenure", "engagement_depth",
			"overall_score", "risk_level", "factors", "is_current", "created_at",
		))
	mockDB.Mock.ExpectQuery(`INSERT INTO engagement_scores`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	mockDB.Mock.ExpectCommit()

	a, err := pipeline.Mark(context.Background(), testGymID, "user-1", nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, a.ID)
	mockDB.ExpectationsWereMet(t)
}
