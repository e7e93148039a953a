// Package membership implements Membership, Payment, and Membership
// History: the commercial core of a gym's tenant schema.
package membership

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
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCancelled = "cancelled"
	StatusSuspended = "suspended"
)

const (
	PaymentPending    = "pending"
	PaymentProcessing = "processing"
	PaymentCompleted  = "completed"
	PaymentFailed     = "failed"
	PaymentCancelled  = "cancelled"
	PaymentRefunded   = "refunded"
)

type Membership struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	PlanID          *string    `db:"plan_id" json:"plan_id,omitempty"`
	BranchID        *string    `db:"branch_id" json:"branch_id,omitempty"`
	StartDate       time.Time  `db:"start_date" json:"start_date"`
	EndDate         time.Time  `db:"end_date" json:"end_date"`
	Status          string     `db:"status" json:"status"`
	OriginalAmount  float64    `db:"original_amount" json:"original_amount"`
	DiscountAmount  float64    `db:"discount_amount" json:"discount_amount"`
	FinalAmount     float64    `db:"final_amount" json:"final_amount"`
	SuspendedAt     *time.Time `db:"suspended_at" json:"suspended_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

type Payment struct {
	ID             string    `db:"id" json:"id"`
	MembershipID   *string   `db:"membership_id" json:"membership_id,omitempty"`
	StaffSalaryID  *string   `db:"staff_salary_id" json:"staff_salary_id,omitempty"`
	Amount         float64   `db:"amount" json:"amount"`
	TaxAmount      float64   `db:"tax_amount" json:"tax_amount"`
	DiscountAmount float64   `db:"discount_amount" json:"discount_amount"`
	NetAmount      float64   `db:"net_amount" json:"net_amount"`
	Status         string    `db:"status" json:"status"`
	PaymentRef     string    `db:"payment_ref" json:"payment_ref"`
	Method         string    `db:"method" json:"method"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// MembershipHistory records a tracked mutation of a Membership: renewal,
// suspension, resumption and cancellation each write one row. The
// pending-to-active settle in CreateInTx and the expiry sweep in
// ExpireOverdue write no history row.
type MembershipHistory struct {
	ID                   string    `db:"id" json:"id"`
	MembershipID         string    `db:"membership_id" json:"membership_id"`
	PreviousStatus       string    `db:"previous_status" json:"previous_status"`
	NewStatus            string    `db:"new_status" json:"new_status"`
	ArchiveReason        string    `db:"archive_reason" json:"archive_reason,omitempty"`
	CancellationReason   string    `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// Repository methods assume ctx already carries a pinned tenant client.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, m *Membership) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = StatusPending
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO memberships (id, user_id, plan_id, branch_id, start_date, end_date, status, original_amount, discount_amount, final_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`, m.ID, m.UserID, m.PlanID, m.BranchID, m.StartDate, m.EndDate, m.Status, m.OriginalAmount, m.DiscountAmount, m.FinalAmount)
	return row.Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Membership, error) {
	var m Membership
	err := r.db.GetContext(ctx, &m, `
		SELECT id, user_id, plan_id, branch_id, start_date, end_date, status,
		       original_amount, discount_amount, final_amount, suspended_at, created_at, updated_at
		FROM memberships WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("membership")
	}
	return &m, err
}

func (r *Repository) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE memberships SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	return err
}

func (r *Repository) Suspend(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE memberships SET status = $2, suspended_at = now(), updated_at = now() WHERE id = $1
	`, id, StatusSuspended)
	return err
}

func (r *Repository) Resume(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE memberships SET status = $2, suspended_at = NULL, updated_at = now() WHERE id = $1
	`, id, StatusActive)
	return err
}

func (r *Repository) Renew(ctx context.Context, id string, endDate time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE memberships SET status = $2, end_date = $3, updated_at = now() WHERE id = $1
	`, id, StatusActive, endDate)
	return err
}

func (r *Repository) List(ctx context.Context, userID string, page kernel.Page) ([]*Membership, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM memberships WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}
	var rows []*Membership
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, plan_id, branch_id, start_date, end_date, status,
		       original_amount, discount_amount, final_amount, suspended_at, created_at, updated_at
		FROM memberships WHERE user_id = $1 ORDER BY start_date DESC LIMIT $2 OFFSET $3
	`, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListExpiring returns active memberships whose end_date falls within
// the given horizon, for the expiry-notification scheduler job.
func (r *Repository) ListExpiring(ctx context.Context, within time.Duration) ([]*Membership, error) {
	var rows []*Membership
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, plan_id, branch_id, start_date, end_date, status,
		       original_amount, discount_amount, final_amount, suspended_at, created_at, updated_at
		FROM memberships WHERE status = $1 AND end_date <= now() + $2::interval AND end_date > now()
	`, StatusActive, within.String())
	return rows, err
}

// ExpireOverdue flips every active membership whose end_date has already
// passed to expired, returning the number of rows affected — the hourly
// membership expiry sweep (spec.md §4.10).
func (r *Repository) ExpireOverdue(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE memberships SET status = $2, updated_at = now() WHERE status = $1 AND end_date < now()
	`, StatusActive, StatusExpired)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repository) InsertHistory(ctx context.Context, h *MembershipHistory) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO membership_history (id, membership_id, previous_status, new_status, archive_reason, cancellation_reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, h.ID, h.MembershipID, h.PreviousStatus, h.NewStatus, h.ArchiveReason, h.CancellationReason)
	return row.Scan(&h.CreatedAt)
}

func (r *Repository) CreatePayment(ctx context.Context, p *Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Status == "" {
		p.Status = PaymentCompleted
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO payments (id, membership_id, staff_salary_id, amount, tax_amount, discount_amount, net_amount, status, payment_ref, method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`, p.ID, p.MembershipID, p.StaffSalaryID, p.Amount, p.TaxAmount, p.DiscountAmount, p.NetAmount, p.Status, p.PaymentRef, p.Method)
	return row.Scan(&p.CreatedAt)
}
