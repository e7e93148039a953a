// Package challenge implements Challenge and Participant: feature-gated
// competitions members join, whose progress the Attendance pipeline
// advances.
package challenge

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

type Challenge struct {
	ID          string     `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description *string    `db:"description" json:"description,omitempty"`
	Metric      string     `db:"metric" json:"metric"` // attendance, visits, ...
	Goal        int        `db:"goal" json:"goal"`
	StartDate   time.Time  `db:"start_date" json:"start_date"`
	EndDate     time.Time  `db:"end_date" json:"end_date"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at" json:"-"`
}

type Participant struct {
	ID           string     `db:"id" json:"id"`
	ChallengeID  string     `db:"challenge_id" json:"challenge_id"`
	UserID       string     `db:"user_id" json:"user_id"`
	CurrentValue int        `db:"current_value" json:"current_value"`
	ProgressPct  float64    `db:"progress_pct" json:"progress_pct"`
	CompletedAt  *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	JoinedAt     time.Time  `db:"joined_at" json:"joined_at"`
}

// Repository methods assume ctx already carries a pinned tenant client.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, c *Challenge) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO challenges (id, name, description, metric, goal, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, c.ID, c.Name, c.Description, c.Metric, c.Goal, c.StartDate, c.EndDate, c.IsActive)
	return row.Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Challenge, error) {
	var c Challenge
	err := r.db.GetContext(ctx, &c, `
		SELECT id, name, description, metric, goal, start_date, end_date, is_active, created_at, updated_at
		FROM challenges WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("challenge")
	}
	return &c, err
}

func (r *Repository) List(ctx context.Context, page kernel.Page, activeOnly bool) ([]*Challenge, int64, error) {
	filter := kernel.NewFilterBuilder()
	if activeOnly {
		filter.Eq("is_active", true)
	}
	where, args := filter.Build()

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM challenges WHERE "+where, args...); err != nil {
		return nil, 0, err
	}

	var rows []*Challenge
	args = append(args, page.Limit(), page.Offset())
	query := fmt.Sprintf(`
		SELECT id, name, description, metric, goal, start_date, end_date, is_active, created_at, updated_at
		FROM challenges WHERE %s ORDER BY start_date DESC LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ActiveForUserByMetric returns the active challenges a user has joined
// whose metric matches — the Attendance pipeline's working set.
func (r *Repository) ActiveForUserByMetric(ctx context.Context, userID string, metrics []string) ([]*Participant, error) {
	var participants []*Participant
	err := r.db.SelectContext(ctx, &participants, `
		SELECT p.id, p.challenge_id, p.user_id, p.current_value, p.progress_pct, p.completed_at, p.joined_at
		FROM challenge_participants p
		JOIN challenges c ON c.id = p.challenge_id
		WHERE p.user_id = $1 AND c.is_active = true AND c.deleted_at IS NULL
		AND c.metric = ANY($2) AND p.completed_at IS NULL
	`, userID, metrics)
	return participants, err
}

func (r *Repository) GoalFor(ctx context.Context, challengeID string) (int, error) {
	var goal int
	err := r.db.GetContext(ctx, &goal, `SELECT goal FROM challenges WHERE id = $1`, challengeID)
	return goal, err
}

// IncrementProgress bumps currentValue by delta and recomputes
// progressPct clamped to [0, 100]; marks completedAt the first time the
// goal is reached.
func (r *Repository) IncrementProgress(ctx context.Context, participantID string, delta, goal int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE challenge_participants
		SET current_value = current_value + $2,
		    progress_pct = LEAST(GREATEST(((current_value + $2)::float / NULLIF($3, 0)) * 100, 0), 100),
		    completed_at = CASE WHEN completed_at IS NULL AND current_value + $2 >= $3 THEN now() ELSE completed_at END
		WHERE id = $1
	`, participantID, delta, goal)
	return err
}

func (r *Repository) Join(ctx context.Context, challengeID, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO challenge_participants (id, challenge_id, user_id, current_value, progress_pct)
		VALUES ($1, $2, $3, 0, 0)
		ON CONFLICT (challenge_id, user_id) DO NOTHING
	`, uuid.New().String(), challengeID, userID)
	if appErr := database.MapPQError(err); appErr != nil {
		return appErr
	}
	return err
}

func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	return kernel.SoftDelete(ctx, r.db, "challenges", "challenge", id)
}
