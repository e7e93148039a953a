package migration_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/migration"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestApplyMainRunsNewStepAndRecordsLog(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	log := logger.New("test", "test")
	steps := []migration.Step{{Version: 1, Name: "demo_table", SQL: "CREATE TABLE IF NOT EXISTS demo (id INT)"}}
	engine := migration.NewEngine(db, steps, nil, log)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`SET LOCAL search_path TO public`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS migration_log`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectQuery(`SELECT version, name, content_hash FROM migration_log`).
		WillReturnRows(testutil.MockRows("version", "name", "content_hash"))
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`SAVEPOINT step_001`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(steps[0].SQL)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`RELEASE SAVEPOINT step_001`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO migration_log`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectCommit()

	err := engine.ApplyMain(context.Background())
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestApplyMainSkipsAlreadyLoggedStep(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	log := logger.New("test", "test")
	step := migration.Step{Version: 1, Name: "demo_table", SQL: "CREATE TABLE IF NOT EXISTS demo (id INT)"}
	engine := migration.NewEngine(db, []migration.Step{step}, nil, log)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`SET LOCAL search_path TO public`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS migration_log`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectQuery(`SELECT version, name, content_hash FROM migration_log`).
		WillReturnRows(testutil.MockRows("version", "name", "content_hash").
			AddRow(1, "demo_table", sha256Hex(step.SQL)))
	mockDB.Mock.ExpectCommit()

	err := engine.ApplyMain(context.Background())
	require.NoError(t, err)
	mockDB.ExpectationsWereMet(t)
}
