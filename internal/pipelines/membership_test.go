package pipelines_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/membership"
	"github.com/gymflow/gymflow-backend/internal/notify"
	"github.com/gymflow/gymflow-backend/internal/pipelines"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

// TestMembershipLifecyclePipelineCreateSettlesAndNotifies exercises the
// happy path: membership creation, exactly one payment row, and the
// MEMBERSHIP_RENEWED notification all run inside one transaction.
func TestMembershipLifecyclePipelineCreateSettlesAndNotifies(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	log := logger.New("test", "test")
	db := &database.DB{DB: mockDB.DB}

	membershipSvc := membership.NewService(db, membership.NewRepository(db))
	notifySvc := notify.NewService(db, notify.NewRepository(db), notify.NewHub(log))
	pipeline := pipelines.NewMembershipLifecyclePipeline(db, membershipSvc, notifySvc, log)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(`SET LOCAL search_path`).WillReturnResult(sqlmock.NewResult(0, 0))

	mockDB.Mock.ExpectQuery(`INSERT INTO memberships`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))
	mockDB.Mock.ExpectQuery(`INSERT INTO payments`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.Mock.ExpectExec(`UPDATE memberships SET status = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectQuery(`INSERT INTO notifications`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	mockDB.Mock.ExpectCommit()

	m, payment, err := pipeline.Create(context.Background(), testGymID, membership.CreateInput{
		UserID:         "user-1",
		PlanName:       "Gold Plan",
		StartDate:      time.Now(),
		EndDate:        time.Now().AddDate(0, 1, 0),
		OriginalAmount: 1000,
		DiscountAmount: 100,
		PaymentRef:     "R-1",
	})
	require.NoError(t, err)
	require.Equal(t, membership.StatusActive, m.Status)
	require.Equal(t, float64(900), payment.NetAmount)
	mockDB.ExpectationsWereMet(t)
}
