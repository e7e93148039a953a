package platform_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/platform"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

type fakeProvisioner struct {
	created []string
	err     error
}

func (f *fakeProvisioner) Create(ctx context.Context, gymID string) error {
	f.created = append(f.created, gymID)
	return f.err
}

func TestRegisterTenantCreatesTenantOwnerAndProvisionsSchema(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := platform.NewRepository(db)
	provisioner := &fakeProvisioner{}
	svc := platform.NewService(db, repo, provisioner)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`SET LOCAL search_path TO public`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectQuery(`SELECT id, name, email.*FROM platform_users`).
		WillReturnRows(testutil.MockRows("id", "name", "email", "password_hash", "role", "gym_id", "branch_id", "is_super_admin", "is_active", "created_at", "updated_at", "deleted_at"))
	mockDB.Mock.ExpectQuery(`INSERT INTO tenants`).
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.Mock.ExpectQuery(`INSERT INTO platform_users`).
		WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(time.Now(), time.Now()))
	mockDB.Mock.ExpectExec(`UPDATE tenants SET owner_id`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectCommit()

	tenant, owner, err := svc.RegisterTenant(context.Background(), platform.RegisterTenantInput{
		GymName:       "Iron Gym",
		OwnerName:     "Ada",
		OwnerEmail:    "ada@irongym.test",
		OwnerPassword: "supersecret1",
	})
	require.NoError(t, err)
	require.Equal(t, tenant.ID, *owner.GymID)
	require.Equal(t, []string{tenant.ID}, provisioner.created)
	mockDB.ExpectationsWereMet(t)
}

func TestRegisterTenantRejectsDuplicateEmail(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	db := &database.DB{DB: mockDB.DB}
	repo := platform.NewRepository(db)
	provisioner := &fakeProvisioner{}
	svc := platform.NewService(db, repo, provisioner)

	mockDB.Mock.ExpectBegin()
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`SET LOCAL search_path TO public`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectQuery(`SELECT id, name, email.*FROM platform_users`).
		WillReturnRows(testutil.MockRows("id", "name", "email", "password_hash", "role", "gym_id", "branch_id", "is_super_admin", "is_active", "created_at", "updated_at", "deleted_at").
			AddRow("u-1", "Ada", "ada@irongym.test", "hash", platform.RoleAdmin, nil, nil, false, true, time.Now(), time.Now(), nil))
	mockDB.Mock.ExpectRollback()

	_, _, err := svc.RegisterTenant(context.Background(), platform.RegisterTenantInput{
		GymName:       "Iron Gym",
		OwnerName:     "Ada",
		OwnerEmail:    "ada@irongym.test",
		OwnerPassword: "supersecret1",
	})
	require.Error(t, err)
	require.Empty(t, provisioner.created)
	mockDB.ExpectationsWereMet(t)
}
