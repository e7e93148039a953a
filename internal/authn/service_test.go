package authn_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymflow/gymflow-backend/internal/authn"
	"github.com/gymflow/gymflow-backend/internal/authn/repository"
	"github.com/gymflow/gymflow-backend/pkg/config"
	"github.com/gymflow/gymflow-backend/pkg/errors"
)

type stubPlatformUsers struct {
	byEmail map[string]*authn.PlatformUserRecord
	byID    map[string]*authn.PlatformUserRecord
}

func (s *stubPlatformUsers) FindByEmail(_ context.Context, email string) (*authn.PlatformUserRecord, error) {
	if u, ok := s.byEmail[email]; ok {
		return u, nil
	}
	return nil, errors.NotFound("platform user")
}

func (s *stubPlatformUsers) FindByID(_ context.Context, id string) (*authn.PlatformUserRecord, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, errors.NotFound("platform user")
}

type stubTenantUsers struct {
	byEmail map[string]*authn.TenantUserRecord
}

func (s *stubTenantUsers) FindByEmail(_ context.Context, gymID, email string) (*authn.TenantUserRecord, error) {
	if u, ok := s.byEmail[gymID+":"+email]; ok {
		return u, nil
	}
	return nil, errors.NotFound("tenant user")
}

func (s *stubTenantUsers) FindByID(_ context.Context, gymID, id string) (*authn.TenantUserRecord, error) {
	for _, u := range s.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.NotFound("tenant user")
}

type stubPasswords struct{}

func (stubPasswords) Compare(hash, password string) error {
	if hash != password {
		return errors.InvalidCredentials()
	}
	return nil
}

// stubSessions is an in-memory SessionStore, avoiding a real database for
// service-layer unit tests.
type stubSessions struct {
	byID           map[string]*repository.Session
	byRefreshToken map[string]*repository.Session
}

func newStubSessions() *stubSessions {
	return &stubSessions{
		byID:           map[string]*repository.Session{},
		byRefreshToken: map[string]*repository.Session{},
	}
}

func (s *stubSessions) CreateWithID(_ context.Context, id, userID, refreshToken string, expiresAt time.Time, userAgent, ipAddress string) (*repository.Session, error) {
	session := &repository.Session{ID: id, UserID: userID, ExpiresAt: expiresAt}
	s.byID[id] = session
	s.byRefreshToken[refreshToken] = session
	return session, nil
}

func (s *stubSessions) GetByRefreshToken(_ context.Context, refreshToken string) (*repository.Session, error) {
	session, ok := s.byRefreshToken[refreshToken]
	if !ok {
		return nil, errors.NotFound("session")
	}
	return session, nil
}

func (s *stubSessions) UpdateRefreshTokenHash(_ context.Context, id, newRefreshToken string) error {
	session, ok := s.byID[id]
	if !ok {
		return errors.NotFound("session")
	}
	delete(s.byRefreshToken, newRefreshToken)
	s.byRefreshToken[newRefreshToken] = session
	return nil
}

func (s *stubSessions) RevokeByRefreshToken(_ context.Context, refreshToken string) error {
	delete(s.byRefreshToken, refreshToken)
	return nil
}

func (s *stubSessions) RevokeAllForUser(_ context.Context, userID string) error {
	for token, session := range s.byRefreshToken {
		if session.UserID == userID {
			delete(s.byRefreshToken, token)
		}
	}
	return nil
}

func (s *stubSessions) CleanExpired(_ context.Context) (int64, error) {
	return 0, nil
}

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		Secret:        "test-secret-test-secret-test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "gymflow-test",
	}
}

func TestLoginPlatformSuperAdmin(t *testing.T) {
	platform := &stubPlatformUsers{
		byEmail: map[string]*authn.PlatformUserRecord{
			"root@gymflow.local": {
				ID: "admin-1", Email: "root@gymflow.local", Name: "Root Admin",
				PasswordHash: "correct-horse", Role: "superadmin", IsSuperAdmin: true, IsActive: true,
			},
		},
		byID: map[string]*authn.PlatformUserRecord{},
	}
	svc := authn.NewService(platform, &stubTenantUsers{}, newStubSessions(), stubPasswords{}, testJWTConfig(), nil)

	resp, err := svc.Login(context.Background(), &authn.LoginRequest{
		Email: "root@gymflow.local", Password: "correct-horse",
	}, "test-agent", "127.0.0.1")

	require.NoError(t, err)
	assert.True(t, resp.User.IsSuperAdmin)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	platform := &stubPlatformUsers{
		byEmail: map[string]*authn.PlatformUserRecord{
			"owner@gym.test": {ID: "owner-1", Email: "owner@gym.test", PasswordHash: "right-password", IsActive: true},
		},
		byID: map[string]*authn.PlatformUserRecord{},
	}
	svc := authn.NewService(platform, &stubTenantUsers{}, newStubSessions(), stubPasswords{}, testJWTConfig(), nil)

	_, err := svc.Login(context.Background(), &authn.LoginRequest{
		Email: "owner@gym.test", Password: "wrong-password",
	}, "test-agent", "127.0.0.1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
}

func TestLoginFallsBackToTenantUserWhenGymIDProvided(t *testing.T) {
	tenant := &stubTenantUsers{
		byEmail: map[string]*authn.TenantUserRecord{
			"gym-1:staff@gym.test": {
				ID: "staff-1", Email: "staff@gym.test", Name: "Front Desk",
				PasswordHash: "staff-pass", Role: "staff", Permissions: []string{"memberships.read"}, IsActive: true,
			},
		},
	}
	platform := &stubPlatformUsers{byEmail: map[string]*authn.PlatformUserRecord{}, byID: map[string]*authn.PlatformUserRecord{}}
	svc := authn.NewService(platform, tenant, newStubSessions(), stubPasswords{}, testJWTConfig(), nil)

	resp, err := svc.Login(context.Background(), &authn.LoginRequest{
		Email: "staff@gym.test", Password: "staff-pass", GymID: "gym-1",
	}, "test-agent", "127.0.0.1")

	require.NoError(t, err)
	assert.Equal(t, "gym-1", resp.User.GymID)
	assert.False(t, resp.User.IsSuperAdmin)
}

func TestLoginWithNoGymContextAndNoPlatformMatchFails(t *testing.T) {
	platform := &stubPlatformUsers{byEmail: map[string]*authn.PlatformUserRecord{}, byID: map[string]*authn.PlatformUserRecord{}}
	svc := authn.NewService(platform, &stubTenantUsers{}, newStubSessions(), stubPasswords{}, testJWTConfig(), nil)

	_, err := svc.Login(context.Background(), &authn.LoginRequest{
		Email: "nobody@nowhere.test", Password: "whatever",
	}, "test-agent", "127.0.0.1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
}

func TestRefreshRotatesToken(t *testing.T) {
	platform := &stubPlatformUsers{
		byEmail: map[string]*authn.PlatformUserRecord{
			"root@gymflow.local": {ID: "admin-1", Email: "root@gymflow.local", PasswordHash: "pw", IsActive: true, IsSuperAdmin: true},
		},
		byID: map[string]*authn.PlatformUserRecord{
			"admin-1": {ID: "admin-1", Email: "root@gymflow.local", PasswordHash: "pw", IsActive: true, IsSuperAdmin: true},
		},
	}
	svc := authn.NewService(platform, &stubTenantUsers{}, newStubSessions(), stubPasswords{}, testJWTConfig(), nil)

	login, err := svc.Login(context.Background(), &authn.LoginRequest{Email: "root@gymflow.local", Password: "pw"}, "ua", "ip")
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, "admin-1", refreshed.User.ID)
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := newStubSessions()
	platform := &stubPlatformUsers{
		byEmail: map[string]*authn.PlatformUserRecord{
			"root@gymflow.local": {ID: "admin-1", Email: "root@gymflow.local", PasswordHash: "pw", IsActive: true},
		},
		byID: map[string]*authn.PlatformUserRecord{},
	}
	svc := authn.NewService(platform, &stubTenantUsers{}, sessions, stubPasswords{}, testJWTConfig(), nil)

	login, err := svc.Login(context.Background(), &authn.LoginRequest{Email: "root@gymflow.local", Password: "pw"}, "ua", "ip")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken))

	_, err = sessions.GetByRefreshToken(context.Background(), login.RefreshToken)
	assert.Error(t, err)
}
