package authn

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gymflow/gymflow-backend/pkg/config"
	"github.com/gymflow/gymflow-backend/pkg/errors"
)

// Claims is the access token payload: who the caller is, which gym (and
// optionally branch) they act within, and their role/feature/permission
// grants for the Auth & Capability Layer's guard chain.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string   `json:"user_id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Permissions  []string `json:"permissions"`
	GymID        string   `json:"gym_id,omitempty"`
	BranchID     string   `json:"branch_id,omitempty"`
	Features     []string `json:"features,omitempty"`
	IsSuperAdmin bool     `json:"is_super_admin,omitempty"`
}

// RefreshClaims is the refresh token payload, kept minimal so a leaked
// refresh token can't be used as a stand-in access token.
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	GymID     string `json:"gym_id,omitempty"`
}

// UserInfo is the subset of user data needed to mint a token pair.
type UserInfo struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         string
	Permissions  []string
	GymID        string
	BranchID     string
	Features     []string
	IsSuperAdmin bool
}

// TokenPair is an access/refresh token pair returned at login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"`
}

// Manager issues and validates access/refresh tokens.
type Manager struct {
	config *config.JWTConfig
}

// NewManager creates a new JWT manager.
func NewManager(cfg *config.JWTConfig) *Manager {
	return &Manager{config: cfg}
}

// GenerateTokenPair mints a fresh access+refresh token pair for a session.
func (m *Manager) GenerateTokenPair(user *UserInfo, sessionID string) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(m.config.AccessExpiry)
	refreshExpiry := now.Add(m.config.RefreshExpiry)

	accessClaims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(accessExpiry),
			ID:        uuid.New().String(),
		},
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.FirstName + " " + user.LastName,
		Role:         user.Role,
		Permissions:  user.Permissions,
		GymID:        user.GymID,
		BranchID:     user.BranchID,
		Features:     user.Features,
		IsSuperAdmin: user.IsSuperAdmin,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessSigned, err := accessToken.SignedString([]byte(m.config.Secret))
	if err != nil {
		return nil, err
	}

	refreshClaims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    m.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(refreshExpiry),
			ID:        uuid.New().String(),
		},
		UserID:    user.ID,
		SessionID: sessionID,
		GymID:     user.GymID,
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshSigned, err := refreshToken.SignedString([]byte(m.config.Secret))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessSigned,
		RefreshToken: refreshSigned,
		ExpiresAt:    accessExpiry,
		TokenType:    "Bearer",
	}, nil
}

// ValidateAccessToken parses and validates an access token.
func (m *Manager) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.TokenInvalid()
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		if isExpired(err) {
			return nil, errors.TokenExpired()
		}
		return nil, errors.TokenInvalid()
	}

	if !token.Valid {
		return nil, errors.TokenInvalid()
	}

	return claims, nil
}

// ValidateRefreshToken parses and validates a refresh token.
func (m *Manager) ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.TokenInvalid()
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		if isExpired(err) {
			return nil, errors.TokenExpired()
		}
		return nil, errors.TokenInvalid()
	}

	if !token.Valid {
		return nil, errors.TokenInvalid()
	}

	return claims, nil
}

// GetTokenExpiry returns the configured access token lifetime.
func (m *Manager) GetTokenExpiry() time.Duration {
	return m.config.AccessExpiry
}

// GetRefreshExpiry returns the configured refresh token lifetime.
func (m *Manager) GetRefreshExpiry() time.Duration {
	return m.config.RefreshExpiry
}

func isExpired(err error) bool {
	return err != nil && strings.Contains(err.Error(), "expired")
}
