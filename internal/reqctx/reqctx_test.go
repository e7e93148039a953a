package reqctx_test

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/reqctx"
	"github.com/gymflow/gymflow-backend/pkg/actor"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
	"github.com/gymflow/gymflow-backend/pkg/testutil"
)

func TestMiddlewareAllocatesOnlyMainConnWithoutGymContext(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	mockDB.Mock.MatchExpectationsInOrder(false)
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`SET search_path TO public`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	db := &database.DB{DB: mockDB.DB}
	log := logger.New("test", "test")

	var gotMain bool
	var gotTenant bool
	handler := reqctx.Middleware(db, db, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, mainErr := reqctx.MainDb(r.Context())
		gotMain = mainErr == nil
		_, gotTenant = reqctx.OptionalTenantDb(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gotMain)
	assert.False(t, gotTenant)
}

func TestMiddlewareAllocatesTenantConnWhenPrincipalHasGymID(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()
	mockDB.Mock.MatchExpectationsInOrder(false)
	mockDB.Mock.ExpectExec(regexp.QuoteMeta(`SET search_path TO public`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.Mock.ExpectExec(`SET search_path TO "tenant_gym-1", public`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	db := &database.DB{DB: mockDB.DB}
	log := logger.New("test", "test")

	var tenantErr error
	handler := reqctx.Middleware(db, db, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, tenantErr = reqctx.TenantDb(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(actor.WithActor(req.Context(), &actor.Actor{ID: "u1", GymID: "gym-1"}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, tenantErr)
}

func TestTenantDbReturnsBadRequestWithoutGymContext(t *testing.T) {
	_, err := reqctx.TenantDb(actor.WithActor(httptest.NewRequest(http.MethodGet, "/", nil).Context(), nil))
	require.Error(t, err)
}
