// Package staffsalary implements StaffSalary and its recurring
// generation job: the per-staff-member payout ledger for a tenant.
package staffsalary

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

type StaffSalary struct {
	ID             string    `db:"id" json:"id"`
	StaffID        string    `db:"staff_id" json:"staff_id"`
	Month          int       `db:"month" json:"month"`
	Year           int       `db:"year" json:"year"`
	Amount         float64   `db:"amount" json:"amount"`
	TaxAmount      float64   `db:"tax_amount" json:"tax_amount"`
	DiscountAmount float64   `db:"discount_amount" json:"discount_amount"`
	NetAmount      float64   `db:"net_amount" json:"net_amount"`
	Status         string    `db:"status" json:"status"`
	IsRecurring    bool      `db:"is_recurring" json:"is_recurring"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// StaffSalaryHistory records a salary's status change (Service.SettleInTx
// is the only writer, on settlement), the way
// membership_history archives membership transitions.
type StaffSalaryHistory struct {
	ID            string    `db:"id" json:"id"`
	StaffSalaryID string    `db:"staff_salary_id" json:"staff_salary_id"`
	PreviousStatus string   `db:"previous_status" json:"previous_status"`
	NewStatus     string    `db:"new_status" json:"new_status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Repository methods assume ctx already carries a pinned tenant client.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, s *StaffSalary) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = StatusPending
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO staff_salaries (id, staff_id, month, year, amount, tax_amount, discount_amount, net_amount, status, is_recurring)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, s.ID, s.StaffID, s.Month, s.Year, s.Amount, s.TaxAmount, s.DiscountAmount, s.NetAmount, s.Status, s.IsRecurring)
	return row.Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*StaffSalary, error) {
	var s StaffSalary
	err := r.db.GetContext(ctx, &s, `
		SELECT id, staff_id, month, year, amount, tax_amount, discount_amount, net_amount, status, is_recurring, created_at, updated_at
		FROM staff_salaries WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("staff salary")
	}
	return &s, err
}

// ExistsForMonth reports whether staffId already has a salary row for
// month/year, so the recurring-generation job never double-creates one.
func (r *Repository) ExistsForMonth(ctx context.Context, staffID string, month, year int) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM staff_salaries WHERE staff_id = $1 AND month = $2 AND year = $3)
	`, staffID, month, year)
	return exists, err
}

// ListRecurringForMonth returns every recurring salary row for the given
// month/year — the prior month's rows the generation job clones forward.
func (r *Repository) ListRecurringForMonth(ctx context.Context, month, year int) ([]*StaffSalary, error) {
	var rows []*StaffSalary
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, staff_id, month, year, amount, tax_amount, discount_amount, net_amount, status, is_recurring, created_at, updated_at
		FROM staff_salaries WHERE is_recurring = true AND month = $1 AND year = $2
	`, month, year)
	return rows, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE staff_salaries SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	return err
}

func (r *Repository) InsertHistory(ctx context.Context, h *StaffSalaryHistory) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO staff_salary_history (id, staff_salary_id, previous_status, new_status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, h.ID, h.StaffSalaryID, h.PreviousStatus, h.NewStatus)
	return row.Scan(&h.CreatedAt)
}

func (r *Repository) List(ctx context.Context, staffID string, page kernel.Page) ([]*StaffSalary, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM staff_salaries WHERE staff_id = $1`, staffID); err != nil {
		return nil, 0, err
	}
	var rows []*StaffSalary
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, staff_id, month, year, amount, tax_amount, discount_amount, net_amount, status, is_recurring, created_at, updated_at
		FROM staff_salaries WHERE staff_id = $1 ORDER BY year DESC, month DESC LIMIT $2 OFFSET $3
	`, staffID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
