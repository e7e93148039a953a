// Package loyalty implements the Loyalty Config/Tier/Points/Transaction
// tables and the awardPoints/checkAndUpdateTier operations the Attendance
// pipeline and the daily loyalty-expiry/tier-recomputation scheduler jobs
// drive.
package loyalty

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/gymflow/gymflow-backend/pkg/database"
)

type Config struct {
	ID              string         `db:"id" json:"id"`
	IsActive        bool           `db:"is_active" json:"is_active"`
	PointsPerSource map[string]int `db:"-" json:"points_per_source"`
	DefaultPoints   int            `db:"default_points" json:"default_points"`
	PointExpiryDays int            `db:"point_expiry_days" json:"point_expiry_days"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// DefaultConfig is used whenever a tenant has no loyalty_configs row yet
// (spec.md §4.8 "fall back to defaults if absent").
func DefaultConfig() *Config {
	return &Config{IsActive: true, DefaultPoints: 10, PointExpiryDays: 365}
}

type Tier struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	MinPoints  int     `db:"min_points" json:"min_points"`
	Multiplier float64 `db:"multiplier" json:"multiplier"`
}

type Points struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	TierID         *string    `db:"tier_id" json:"tier_id,omitempty"`
	TotalEarned    int        `db:"total_earned" json:"total_earned"`
	TotalRedeemed  int        `db:"total_redeemed" json:"total_redeemed"`
	TotalExpired   int        `db:"total_expired" json:"total_expired"`
	CurrentBalance int        `db:"current_balance" json:"current_balance"`
	TierUpdatedAt  *time.Time `db:"tier_updated_at" json:"tier_updated_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

type Transaction struct {
	ID           string     `db:"id" json:"id"`
	UserID       string     `db:"user_id" json:"user_id"`
	Type         string     `db:"type" json:"type"` // earn, redeem, expire
	Points       int        `db:"points" json:"points"`
	BalanceAfter int        `db:"balance_after" json:"balance_after"`
	Source       string     `db:"source" json:"source"`
	Reference    *string    `db:"reference" json:"reference,omitempty"`
	ExpiresAt    *time.Time `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Repository's methods assume the caller has already pinned the tenant
// schema on ctx (via the Tenant Connection Broker) — they never open
// their own broker scope, so a caller that needs several of them to run
// atomically wraps all of them in one WithTenant call.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// GetConfig returns the tenant's loyalty config, or DefaultConfig() if
// none has been configured yet.
func (r *Repository) GetConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	err := r.db.GetContext(ctx, &cfg, `
		SELECT id, is_active, default_points, point_expiry_days, created_at, updated_at
		FROM loyalty_configs
		ORDER BY created_at
		LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *Repository) ListTiers(ctx context.Context) ([]*Tier, error) {
	var tiers []*Tier
	err := r.db.SelectContext(ctx, &tiers, `
		SELECT id, name, min_points, multiplier FROM loyalty_tiers ORDER BY min_points DESC
	`)
	return tiers, err
}

// GetOrCreatePoints fetches the user's loyalty_points row, creating a
// zeroed one with FOR UPDATE locking semantics deferred to the caller's
// transaction if absent.
func (r *Repository) GetOrCreatePoints(ctx context.Context, userID string) (*Points, error) {
	var p Points
	err := r.db.GetContext(ctx, &p, `
		SELECT id, user_id, tier_id, total_earned, total_redeemed, total_expired,
		       current_balance, tier_updated_at, created_at, updated_at
		FROM loyalty_points WHERE user_id = $1
		FOR UPDATE
	`, userID)
	if err == nil {
		return &p, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	p = Points{ID: uuid.New().String(), UserID: userID}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO loyalty_points (id, user_id, total_earned, total_redeemed, total_expired, current_balance)
		VALUES ($1, $2, 0, 0, 0, 0)
		ON CONFLICT (user_id) DO UPDATE SET updated_at = now()
		RETURNING id, total_earned, total_redeemed, total_expired, current_balance, created_at, updated_at
	`, p.ID, userID)
	if err := row.Scan(&p.ID, &p.TotalEarned, &p.TotalRedeemed, &p.TotalExpired, &p.CurrentBalance, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ApplyEarn adds effective points to both totalEarned and currentBalance.
func (r *Repository) ApplyEarn(ctx context.Context, userID string, effective int) (newBalance int, err error) {
	err = r.db.QueryRowxContext(ctx, `
		UPDATE loyalty_points
		SET total_earned = total_earned + $2, current_balance = current_balance + $2, updated_at = now()
		WHERE user_id = $1
		RETURNING current_balance
	`, userID, effective).Scan(&newBalance)
	if appErr := database.MapPQError(err); appErr != nil {
		return 0, appErr
	}
	return newBalance, err
}

// ApplyExpiry deducts points from the balance, floored at zero, and adds
// to totalExpired.
func (r *Repository) ApplyExpiry(ctx context.Context, userID string, amount int) (newBalance int, err error) {
	err = r.db.QueryRowxContext(ctx, `
		UPDATE loyalty_points
		SET total_expired = total_expired + $2,
		    current_balance = GREATEST(current_balance - $2, 0),
		    updated_at = now()
		WHERE user_id = $1
		RETURNING current_balance
	`, userID, amount).Scan(&newBalance)
	return newBalance, err
}

func (r *Repository) UpdateTier(ctx context.Context, userID, tierID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE loyalty_points SET tier_id = $2, tier_updated_at = now(), updated_at = now()
		WHERE user_id = $1
	`, userID, tierID)
	return err
}

func (r *Repository) InsertTransaction(ctx context.Context, t *Transaction) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return r.db.QueryRowxContext(ctx, `
		INSERT INTO loyalty_transactions (id, user_id, type, points, balance_after, source, reference, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`, t.ID, t.UserID, t.Type, t.Points, t.BalanceAfter, t.Source, t.Reference, t.ExpiresAt).Scan(&t.CreatedAt)
}

// ListUnexpiredEarns returns "earn" transactions whose expiresAt has
// passed and that have no paired "expire" transaction yet — the daily
// loyalty-expiry scheduler job's working set.
func (r *Repository) ListUnexpiredEarns(ctx context.Context, asOf time.Time) ([]*Transaction, error) {
	var txs []*Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT e.id, e.user_id, e.type, e.points, e.balance_after, e.source, e.reference, e.expires_at, e.created_at
		FROM loyalty_transactions e
		WHERE e.type = 'earn' AND e.expires_at IS NOT NULL AND e.expires_at < $1
		AND NOT EXISTS (
			SELECT 1 FROM loyalty_transactions x
			WHERE x.type = 'expire' AND x.reference = e.id
		)
		ORDER BY e.expires_at
	`, asOf)
	return txs, err
}

// ListAllUserIDsWithPoints supports the daily tier-recomputation job.
func (r *Repository) ListAllUserIDsWithPoints(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `SELECT user_id FROM loyalty_points`)
	return ids, err
}
