package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/user"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestRepositoryCreateGeneratesIDAndDefaultsPermissions(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := user.NewRepository(db)

	mockDB.Mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))

	u := &user.User{Name: "Ada", Email: "ada@irongym.test", Role: user.RoleStaff}
	err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryGetByEmailNotFound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := user.NewRepository(db)

	mockDB.Mock.ExpectQuery(`SELECT id, branch_id, name, email.*FROM users`).
		WillReturnRows(testutil.MockRows("id", "branch_id", "name", "email", "password_hash", "role", "permissions", "is_active", "created_at", "updated_at", "deleted_at"))

	_, err := repo.GetByEmail(context.Background(), "nobody@example.com")
	require.Error(t, err)
	mockDB.ExpectationsWereMet(t)
}

func TestRepositoryIsActiveReturnsFalseWhenMissing(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := user.NewRepository(db)

	mockDB.Mock.ExpectQuery(`SELECT is_active FROM users`).
		WillReturnRows(testutil.MockRows("is_active"))

	active, err := repo.IsActive(context.Background(), "missing-id")
	require.NoError(t, err)
	require.False(t, active)
	mockDB.ExpectationsWereMet(t)
}
