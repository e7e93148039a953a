package tenantreg_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/migration"
	"github.com/gymflow/gymflow-backend/internal/tenantreg"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestSchemaNameIsPure(t *testing.T) {
	reg := tenantreg.NewRegistry(nil, nil, nil)
	assert.Equal(t, "tenant_gym-1", reg.SchemaName("gym-1"))
}

func TestExistsQueriesInformationSchema(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	log := logger.New("test", "test")
	engine := migration.NewEngine(db, nil, nil, log)
	reg := tenantreg.NewRegistry(db, engine, log)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`SET LOCAL search_path TO public`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectQuery(`SELECT EXISTS`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mockDB.Mock.ExpectCommit()

	exists, err := reg.Exists(context.Background(), "gym-1")
	require.NoError(t, err)
	assert.True(t, exists)
	mockDB.ExpectationsWereMet(t)
}

func TestListActiveFiltersBySubscription(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	log := logger.New("test", "test")
	engine := migration.NewEngine(db, nil, nil, log)
	reg := tenantreg.NewRegistry(db, engine, log)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`SET LOCAL search_path TO public`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectQuery(`SELECT t.id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("gym-1").AddRow("gym-2"))
	mockDB.Mock.ExpectCommit()

	ids, err := reg.ListActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"gym-1", "gym-2"}, ids)
	mockDB.ExpectationsWereMet(t)
}
