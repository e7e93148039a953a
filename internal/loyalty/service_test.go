package loyalty_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/loyalty"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestAwardPointsInTxAppliesTierMultiplierAndRounds(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := loyalty.NewRepository(db)
	svc := loyalty.NewService(db, repo, logger.New("test", "test"))

	mockDB.Mock.ExpectQuery(`SELECT id, is_active, default_points, point_expiry_days`).
		WillReturnRows(testutil.MockRows("id", "is_active", "default_points", "point_expiry_days", "created_at", "updated_at").
			AddRow("cfg-1", true, 10, 365, time.Now(), time.Now()))

	mockDB.Mock.ExpectQuery(`SELECT id, user_id, tier_id, total_earned`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "tier_id", "total_earned", "total_redeemed", "total_expired",
			"current_balance", "tier_updated_at", "created_at", "updated_at",
		).AddRow("p-1", "user-1", "tier-silver", 200, 0, 0, 200, nil, time.Now(), time.Now()))

	mockDB.Mock.ExpectQuery(`SELECT id, name, min_points, multiplier FROM loyalty_tiers`).
		WillReturnRows(testutil.MockRows("id", "name", "min_points", "multiplier").
			AddRow("tier-bronze", "Bronze", 0, 1.0).
			AddRow("tier-silver", "Silver", 100, 1.5))

	mockDB.Mock.ExpectQuery(`UPDATE loyalty_points`).
		WillReturnRows(testutil.MockRows("current_balance").AddRow(215))

	mockDB.Mock.ExpectQuery(`INSERT INTO loyalty_transactions`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	mockDB.Mock.ExpectQuery(`SELECT id, user_id, tier_id, total_earned`).
		WillReturnRows(testutil.MockRows(
			"id", "user_id", "tier_id", "total_earned", "total_redeemed", "total_expired",
			"current_balance", "tier_updated_at", "created_at", "updated_at",
		).AddRow("p-1", "user-1", "tier-silver", 200, 0, 0, 215, nil, time.Now(), time.Now()))

	mockDB.Mock.ExpectQuery(`SELECT id, name, min_points, multiplier FROM loyalty_tiers`).
		WillReturnRows(testutil.MockRows("id", "name", "min_points", "multiplier").
			AddRow("tier-bronze", "Bronze", 0, 1.0).
			AddRow("tier-silver", "Silver", 100, 1.5))

	err := svc.AwardPointsInTx(context.Background(), "user-1", "visit", nil)
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestAwardPointsNoOpWhenConfigDisabled(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := loyalty.NewRepository(db)
	svc := loyalty.NewService(db, repo, logger.New("test", "test"))

	mockDB.Mock.ExpectQuery(`SELECT id, is_active, default_points, point_expiry_days`).
		WillReturnRows(testutil.MockRows("id", "is_active", "default_points", "point_expiry_days", "created_at", "updated_at").
			AddRow("cfg-1", false, 10, 365, time.Now(), time.Now()))

	err := svc.AwardPointsInTx(context.Background(), "user-1", "visit", nil)
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestAwardPointsFallsBackToDefaultsWhenNoConfigRow(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := loyalty.NewRepository(db)

	mockDB.Mock.ExpectQuery(`SELECT id, is_active, default_points, point_expiry_days`).
		WillReturnRows(testutil.MockRows("id", "is_active", "default_points", "point_expiry_days"))

	cfg, err := repo.GetConfig(context.Background())
	require.NoError(t, err)
	assert.Equal(t, loyalty.DefaultConfig(), cfg)
	mockDB.ExpectationsWereMet(t)
}
