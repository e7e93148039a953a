// Package achievement implements Achievement and UserAchievement: typed
// JSON criteria evaluated against a member's lifetime stats by the
// Attendance pipeline's qualification step.
package achievement

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

// Criteria is the typed JSON stored on achievements.criteria: Type is
// "total_visits" or "streak_days", Value is the threshold to reach.
type Criteria struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type Achievement struct {
	ID          string          `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Description *string         `db:"description" json:"description,omitempty"`
	IconURL     *string         `db:"icon_url" json:"icon_url,omitempty"`
	CriteriaRaw json.RawMessage `db:"criteria" json:"criteria"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time      `db:"deleted_at" json:"-"`
}

// Criteria unmarshals the achievement's typed JSON criteria column.
func (a *Achievement) Criteria() (Criteria, error) {
	var c Criteria
	if err := json.Unmarshal(a.CriteriaRaw, &c); err != nil {
		return Criteria{}, err
	}
	return c, nil
}

type UserAchievement struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id"`
	AwardedAt     time.Time `db:"awarded_at" json:"awarded_at"`
}

// Repository methods assume ctx already carries a pinned tenant client.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, a *Achievement) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO achievements (id, name, description, icon_url, criteria)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`, a.ID, a.Name, a.Description, a.IconURL, a.CriteriaRaw)
	return row.Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *Repository) List(ctx context.Context, page kernel.Page) ([]*Achievement, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM achievements WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, err
	}

	var rows []*Achievement
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, icon_url, criteria, created_at, updated_at
		FROM achievements WHERE deleted_at IS NULL ORDER BY name LIMIT $1 OFFSET $2
	`, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Achievement, error) {
	var a Achievement
	err := r.db.GetContext(ctx, &a, `
		SELECT id, name, description, icon_url, criteria, created_at, updated_at
		FROM achievements WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("achievement")
	}
	return &a, err
}

// ListAll returns every non-deleted achievement — the working set the
// qualification step scans per attendance event.
func (r *Repository) ListAll(ctx context.Context) ([]*Achievement, error) {
	var rows []*Achievement
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, description, icon_url, criteria, created_at, updated_at
		FROM achievements WHERE deleted_at IS NULL
	`)
	return rows, err
}

// HasAwarded reports whether the user already holds this achievement.
func (r *Repository) HasAwarded(ctx context.Context, userID, achievementID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM user_achievements WHERE user_id = $1 AND achievement_id = $2)
	`, userID, achievementID)
	return exists, err
}

// Award upserts the award, a no-op if the user already holds it.
func (r *Repository) Award(ctx context.Context, userID, achievementID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_achievements (id, user_id, achievement_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, achievement_id) DO NOTHING
	`, uuid.New().String(), userID, achievementID)
	return err
}

// LifetimeVisitCount is the total_visits criterion's input.
func (r *Repository) LifetimeVisitCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM attendances WHERE user_id = $1`, userID)
	return count, err
}

func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	return kernel.SoftDelete(ctx, r.db, "achievements", "achievement", id)
}
