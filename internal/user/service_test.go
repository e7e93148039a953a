package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/user"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

const testGymID = "11111111-1111-1111-1111-111111111111"

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := user.NewRepository(db)
	svc := user.NewService(db, repo)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(`SET LOCAL search_path`).WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectQuery(`SELECT id, branch_id, name, email.*FROM users`).
		WillReturnRows(testutil.MockRows("id", "branch_id", "name", "email", "password_hash", "role", "permissions", "is_active", "created_at", "updated_at", "deleted_at").
			AddRow("u-1", nil, "Ada", "ada@irongym.test", "hash", user.RoleStaff, nil, true, time.Now(), time.Now(), nil))
	mockDB.Mock.ExpectRollback()

	_, err := svc.Create(context.Background(), testGymID, user.CreateInput{
		Name: "Ada", Email: "ada@irongym.test", PasswordHash: "hash", Role: user.RoleStaff,
	})
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestCreateSucceedsWhenEmailIsFree(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := user.NewRepository(db)
	svc := user.NewService(db, repo)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(`SET LOCAL search_path`).WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectQuery(`SELECT id, branch_id, name, email.*FROM users`).
		WillReturnRows(testutil.MockRows("id", "branch_id", "name", "email", "password_hash", "role", "permissions", "is_active", "created_at", "updated_at", "deleted_at"))
	mockDB.Mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))
	mockDB.Mock.ExpectCommit()

	u, err := svc.Create(context.Background(), testGymID, user.CreateInput{
		Name: "Ada", Email: "ada@irongym.test", PasswordHash: "hash", Role: user.RoleStaff,
	})
	require.NoError(t, err)
	require.Equal(t, "ada@irongym.test", u.Email)
	mockDB.ExpectationsWereMet(t)
}
