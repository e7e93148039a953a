// Package attendance implements Attendance and Streak: a member's visit
// log and the per-(user, streakType) current/longest counters it drives.
package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

type Attendance struct {
	ID          string     `db:"id" json:"id"`
	UserID      string     `db:"user_id" json:"user_id"`
	BranchID    *string    `db:"branch_id" json:"branch_id,omitempty"`
	ServiceType *string    `db:"service_type" json:"service_type,omitempty"`
	CheckInAt   time.Time  `db:"check_in_at" json:"check_in_at"`
	CheckOutAt  *time.Time `db:"check_out_at" json:"check_out_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

type Streak struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	StreakType    string    `db:"streak_type" json:"streak_type"`
	CurrentCount  int       `db:"current_count" json:"current_count"`
	LongestCount  int       `db:"longest_count" json:"longest_count"`
	LastEventDate time.Time `db:"last_event_date" json:"last_event_date"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Repository methods assume ctx already carries a pinned tenant client.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, a *Attendance) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.CheckInAt.IsZero() {
		a.CheckInAt = time.Now()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO attendances (id, user_id, branch_id, service_type, check_in_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, a.ID, a.UserID, a.BranchID, a.ServiceType, a.CheckInAt)
	return row.Scan(&a.CreatedAt)
}

func (r *Repository) List(ctx context.Context, userID string, page kernel.Page) ([]*Attendance, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM attendances WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}
	var rows []*Attendance
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, branch_id, service_type, check_in_at, check_out_at, created_at
		FROM attendances WHERE user_id = $1 ORDER BY check_in_at DESC LIMIT $2 OFFSET $3
	`, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetStreak locks and returns the user's streak row for the given type,
// FOR UPDATE per spec.md §5's race-avoidance note, since the upsert that
// follows is a read-modify-write.
func (r *Repository) GetStreak(ctx context.Context, userID, streakType string) (*Streak, error) {
	var s Streak
	err := r.db.GetContext(ctx, &s, `
		SELECT id, user_id, streak_type, current_count, longest_count, last_event_date, created_at, updated_at
		FROM streaks WHERE user_id = $1 AND streak_type = $2 FOR UPDATE
	`, userID, streakType)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &s, err
}

func (r *Repository) CreateStreak(ctx context.Context, s *Streak) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO streaks (id, user_id, streak_type, current_count, longest_count, last_event_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`, s.ID, s.UserID, s.StreakType, s.CurrentCount, s.LongestCount, s.LastEventDate)
	return row.Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *Repository) UpdateStreak(ctx context.Context, s *Streak) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE streaks SET current_count = $2, longest_count = $3, last_event_date = $4, updated_at = now()
		WHERE id = $1
	`, s.ID, s.CurrentCount, s.LongestCount, s.LastEventDate)
	return err
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Attendance, error) {
	var a Attendance
	err := r.db.GetContext(ctx, &a, `
		SELECT id, user_id, branch_id, service_type, check_in_at, check_out_at, created_at
		FROM attendances WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("attendance")
	}
	return &a, err
}
