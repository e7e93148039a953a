package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/gymflow/gymflow-backend/pkg/database"
)

// Session represents a refresh-token session, stored in the main schema
// since a platform user's session is not scoped to any one gym.
type Session struct {
	ID               string     `db:"id"`
	UserID           string     `db:"user_id"`
	RefreshTokenHash string     `db:"refresh_token_hash"`
	UserAgent        *string    `db:"user_agent"`
	IPAddress        *string    `db:"ip_address"`
	ExpiresAt        time.Time  `db:"expires_at"`
	CreatedAt        time.Time  `db:"created_at"`
	LastUsedAt       time.Time  `db:"last_used_at"`
	RevokedAt        *time.Time `db:"revoked_at"`
}

// SessionRepository persists sessions in the main schema.
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateWithID creates a new session with a specific session ID, matching
// the ID baked into the refresh token's claims.
func (r *SessionRepository) CreateWithID(ctx context.Context, id, userID, refreshToken string, expiresAt time.Time, userAgent, ipAddress string) (*Session, error) {
	session := &Session{
		ID:               id,
		UserID:           userID,
		RefreshTokenHash: hashToken(refreshToken),
		UserAgent:        &userAgent,
		IPAddress:        &ipAddress,
		ExpiresAt:        expiresAt,
		CreatedAt:        time.Now(),
		LastUsedAt:       time.Now(),
	}

	query := `
		INSERT INTO sessions (id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, created_at, last_used_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	err := r.db.WithMain(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query,
			session.ID, session.UserID, session.RefreshTokenHash,
			session.UserAgent, session.IPAddress, session.ExpiresAt,
			session.CreatedAt, session.LastUsedAt,
		)
		return err
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

// GetByRefreshToken finds the live session matching a refresh token.
func (r *SessionRepository) GetByRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	hash := hashToken(refreshToken)

	var session Session
	query := `
		SELECT id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, created_at, last_used_at, revoked_at
		FROM sessions
		WHERE refresh_token_hash = $1 AND revoked_at IS NULL AND expires_at > NOW()
	`

	err := r.db.WithMain(ctx, func(ctx context.Context) error {
		return r.db.GetContext(ctx, &session, query, hash)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateRefreshTokenHash rotates a session's refresh token hash.
func (r *SessionRepository) UpdateRefreshTokenHash(ctx context.Context, id, newRefreshToken string) error {
	newHash := hashToken(newRefreshToken)
	query := `UPDATE sessions SET refresh_token_hash = $1, last_used_at = NOW() WHERE id = $2`
	return r.db.WithMain(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, newHash, id)
		return err
	})
}

// RevokeByRefreshToken revokes the session matching a refresh token (logout).
func (r *SessionRepository) RevokeByRefreshToken(ctx context.Context, refreshToken string) error {
	hash := hashToken(refreshToken)
	query := `UPDATE sessions SET revoked_at = NOW() WHERE refresh_token_hash = $1`
	return r.db.WithMain(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, hash)
		return err
	})
}

// RevokeAllForUser revokes every live session for a user.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	query := `UPDATE sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`
	return r.db.WithMain(ctx, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, query, userID)
		return err
	})
}

// CleanExpired deletes expired or revoked sessions; Service.CleanExpiredSessions is its caller.
func (r *SessionRepository) CleanExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at < NOW() OR revoked_at IS NOT NULL`
	var n int64
	err := r.db.WithMain(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx, query)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
