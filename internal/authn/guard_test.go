package authn_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/authn"
	"github.com/gymflow/gymflow-backend/pkg/actor"
)

func tokenFor(t *testing.T, user *authn.UserInfo) string {
	t.Helper()
	manager := authn.NewManager(testJWTConfig())
	pair, err := manager.GenerateTokenPair(user, "session-1")
	require.NoError(t, err)
	return pair.AccessToken
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateRejectsMissingBearer(t *testing.T) {
	manager := authn.NewManager(testJWTConfig())
	handler := authn.Authenticate(manager)(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateAttachesPrincipal(t *testing.T) {
	manager := authn.NewManager(testJWTConfig())
	token := tokenFor(t, &authn.UserInfo{ID: "staff-1", Email: "staff@gym.test", Role: "staff", GymID: "gym-1"})

	var captured *actor.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = actor.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	authn.Authenticate(manager)(next).ServeHTTP(rec, req)

	require.NotNil(t, captured)
	assert.Equal(t, "gym-1", captured.GymID)
	assert.Equal(t, "staff", captured.RoleName)
}

func TestRequireRoleBypassesForSuperAdmin(t *testing.T) {
	handler := authn.RequireRole("admin")(okHandler())

	ctx := actor.WithActor(context.Background(), &actor.Actor{ID: "root", IsSuperAdmin: true, RoleName: "superadmin"})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	handler := authn.RequireRole("admin")(okHandler())

	ctx := actor.WithActor(context.Background(), &actor.Actor{ID: "staff-1", RoleName: "staff"})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type stubFeatureLookup struct {
	features map[string][]string
	err      error
}

func (s *stubFeatureLookup) FeaturesForGym(_ context.Context, gymID string) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.features[gymID], nil
}

func TestRequireFeatureForbidsMissingSubscription(t *testing.T) {
	lookup := &stubFeatureLookup{err: assertError{}}
	handler := authn.RequireFeature(lookup, "loyalty_program")(okHandler())

	ctx := actor.WithActor(context.Background(), &actor.Actor{ID: "owner-1", GymID: "gym-1", RoleName: "admin"})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireFeatureAllowsEnabledFeature(t *testing.T) {
	lookup := &stubFeatureLookup{features: map[string][]string{"gym-1": {"loyalty_program"}}}
	handler := authn.RequireFeature(lookup, "loyalty_program")(okHandler())

	ctx := actor.WithActor(context.Background(), &actor.Actor{ID: "owner-1", GymID: "gym-1", RoleName: "admin"})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireGymRejectsMissingGymContext(t *testing.T) {
	handler := authn.RequireGym(okHandler())

	ctx := actor.WithActor(context.Background(), &actor.Actor{ID: "root", IsSuperAdmin: true})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type assertError struct{}

func (assertError) Error() string { return "no active subscription" }
