package authn

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gymflow/gymflow-backend/internal/authn/repository"
	"github.com/gymflow/gymflow-backend/pkg/config"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

// PlatformUserRecord is the main-schema identity for superadmins and gym
// owners (one admin per tenant). Populated by internal/platform.
type PlatformUserRecord struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	GymID        *string
	BranchID     *string
	IsSuperAdmin bool
	IsActive     bool
}

// PlatformUserLookup resolves a main-schema platform user by email or ID.
type PlatformUserLookup interface {
	FindByEmail(ctx context.Context, email string) (*PlatformUserRecord, error)
	FindByID(ctx context.Context, id string) (*PlatformUserRecord, error)
}

// TenantUserRecord is the tenant-schema identity for staff and members.
type TenantUserRecord struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	BranchID     *string
	Permissions  []string
	IsActive     bool
}

// TenantUserLookup resolves a tenant-schema user by email or ID, scoped
// to the gym whose schema it's called within.
type TenantUserLookup interface {
	FindByEmail(ctx context.Context, gymID, email string) (*TenantUserRecord, error)
	FindByID(ctx context.Context, gymID, id string) (*TenantUserRecord, error)
}

// LoginRequest identifies a login attempt. GymID is resolved out-of-band
// (subdomain or slug lookup) before the service is called; a superadmin
// or gym owner logs in with no GymID at all.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	GymID    string `json:"-"`
}

// LoginResponse is the token pair plus the resolved caller summary.
type LoginResponse struct {
	TokenPair
	User UserInfo `json:"user"`
}

// PasswordComparer abstracts the hashing scheme so the service doesn't
// import bcrypt directly (kept swappable and easily mocked in tests).
type PasswordComparer interface {
	Compare(hash, password string) error
}

// SessionStore is the subset of *repository.SessionRepository the service
// depends on, kept as an interface so tests can stub it without a database.
type SessionStore interface {
	CreateWithID(ctx context.Context, id, userID, refreshToken string, expiresAt time.Time, userAgent, ipAddress string) (*repository.Session, error)
	GetByRefreshToken(ctx context.Context, refreshToken string) (*repository.Session, error)
	UpdateRefreshTokenHash(ctx context.Context, id, newRefreshToken string) error
	RevokeByRefreshToken(ctx context.Context, refreshToken string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	CleanExpired(ctx context.Context) (int64, error)
}

// Service implements Login/Refresh/Logout against local repositories —
// no cross-service credential hop, since platform users and tenant users
// both live in this process's own Postgres cluster.
type Service struct {
	platformUsers PlatformUserLookup
	tenantUsers   TenantUserLookup
	sessions      SessionStore
	passwords     PasswordComparer
	jwtManager    *Manager
	logger        *logger.Logger
}

// NewService creates the authentication service.
func NewService(
	platformUsers PlatformUserLookup,
	tenantUsers TenantUserLookup,
	sessions SessionStore,
	passwords PasswordComparer,
	jwtCfg *config.JWTConfig,
	log *logger.Logger,
) *Service {
	return &Service{
		platformUsers: platformUsers,
		tenantUsers:   tenantUsers,
		sessions:      sessions,
		passwords:     passwords,
		jwtManager:    NewManager(jwtCfg),
		logger:        log,
	}
}

// Login resolves the caller's identity — checking the main-schema
// platform user store first (superadmins and gym owners), then falling
// back to the tenant-schema user store when a gym context was supplied
// (staff and members) — and mints a token pair on success.
func (s *Service) Login(ctx context.Context, req *LoginRequest, userAgent, ipAddress string) (*LoginResponse, error) {
	user, err := s.resolveIdentity(ctx, req)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	pair, err := s.jwtManager.GenerateTokenPair(user, sessionID)
	if err != nil {
		return nil, errors.Internal("failed to issue tokens")
	}

	if _, err := s.sessions.CreateWithID(ctx, sessionID, user.ID, pair.RefreshToken, pair.ExpiresAt.Add(s.jwtManager.GetRefreshExpiry()-s.jwtManager.GetTokenExpiry()), userAgent, ipAddress); err != nil {
		return nil, errors.Wrap(err, "SESSION_CREATE_FAILED", "failed to persist session", http.StatusInternalServerError)
	}

	return &LoginResponse{TokenPair: *pair, User: *user}, nil
}

func (s *Service) resolveIdentity(ctx context.Context, req *LoginRequest) (*UserInfo, error) {
	if platformUser, err := s.platformUsers.FindByEmail(ctx, req.Email); err == nil {
		if !platformUser.IsActive {
			return nil, errors.Unauthorized("account is inactive")
		}
		if err := s.passwords.Compare(platformUser.PasswordHash, req.Password); err != nil {
			return nil, errors.InvalidCredentials()
		}
		return platformUserToClaims(platformUser), nil
	} else if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	if req.GymID == "" {
		return nil, errors.InvalidCredentials()
	}

	tenantUser, err := s.tenantUsers.FindByEmail(ctx, req.GymID, req.Email)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.InvalidCredentials()
		}
		return nil, err
	}
	if !tenantUser.IsActive {
		return nil, errors.Unauthorized("account is inactive")
	}
	if err := s.passwords.Compare(tenantUser.PasswordHash, req.Password); err != nil {
		return nil, errors.InvalidCredentials()
	}
	return tenantUserToClaims(tenantUser, req.GymID), nil
}

func platformUserToClaims(u *PlatformUserRecord) *UserInfo {
	info := &UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.Name,
		Role:         u.Role,
		IsSuperAdmin: u.IsSuperAdmin,
	}
	if u.GymID != nil {
		info.GymID = *u.GymID
	}
	if u.BranchID != nil {
		info.BranchID = *u.BranchID
	}
	return info
}

func tenantUserToClaims(u *TenantUserRecord, gymID string) *UserInfo {
	info := &UserInfo{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.Name,
		Role:        u.Role,
		Permissions: u.Permissions,
		GymID:       gymID,
	}
	if u.BranchID != nil {
		info.BranchID = *u.BranchID
	}
	return info
}

// Refresh rotates a refresh token and mints a fresh access token, after
// confirming the session hasn't been revoked or expired.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, errors.Unauthorized("session not found or revoked")
	}

	user, err := s.reload(ctx, claims.UserID, claims.GymID)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtManager.GenerateTokenPair(user, session.ID)
	if err != nil {
		return nil, errors.Internal("failed to issue tokens")
	}

	if err := s.sessions.UpdateRefreshTokenHash(ctx, session.ID, pair.RefreshToken); err != nil {
		return nil, errors.Wrap(err, "SESSION_ROTATE_FAILED", "failed to rotate session", http.StatusInternalServerError)
	}

	return &LoginResponse{TokenPair: *pair, User: *user}, nil
}

func (s *Service) reload(ctx context.Context, userID, gymID string) (*UserInfo, error) {
	if gymID == "" {
		platformUser, err := s.platformUsers.FindByID(ctx, userID)
		if err == nil {
			return platformUserToClaims(platformUser), nil
		}
		return nil, errors.NotFound("user")
	}
	tenantUser, err := s.tenantUsers.FindByID(ctx, gymID, userID)
	if err != nil {
		return nil, errors.NotFound("user")
	}
	return tenantUserToClaims(tenantUser, gymID), nil
}

// Logout revokes the session tied to a refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	return s.sessions.RevokeByRefreshToken(ctx, refreshToken)
}

// LogoutAll revokes every live session for a user (e.g. on password change).
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	return s.sessions.RevokeAllForUser(ctx, userID)
}

// CleanExpiredSessions deletes expired/revoked sessions. None of the
// scheduler's jobs calls it.
func (s *Service) CleanExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.CleanExpired(ctx)
}

// Manager exposes the underlying JWT manager for middleware wiring.
func (s *Service) Manager() *Manager {
	return s.jwtManager
}
