package membership

import (
	"context"
	"time"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

// Service implements the membership lifecycle (spec.md §4.8): creation,
// renewal, pause, resume, cancel, expire. Every transition that settles
// money also records exactly one Payment row; transitions never double
// count a payment.
type Service struct {
	db   *database.DB
	repo *Repository
}

func NewService(db *database.DB, repo *Repository) *Service {
	return &Service{db: db, repo: repo}
}

type CreateInput struct {
	UserID         string
	PlanID         *string
	PlanName       string
	BranchID       *string
	StartDate      time.Time
	EndDate        time.Time
	OriginalAmount float64
	DiscountAmount float64
	PaymentRef     string
	Method         string
	TaxAmount      float64
}

// CreateInTx opens a membership in pending status, settles it to active
// with a single payment row, and returns both. Assumes ctx is already
// tenant-pinned.
func (s *Service) CreateInTx(ctx context.Context, in CreateInput) (*Membership, *Payment, error) {
	finalAmount := in.OriginalAmount - in.DiscountAmount
	m := &Membership{
		UserID:         in.UserID,
		PlanID:         in.PlanID,
		BranchID:       in.BranchID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		Status:         StatusPending,
		OriginalAmount: in.OriginalAmount,
		DiscountAmount: in.DiscountAmount,
		FinalAmount:    finalAmount,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, nil, err
	}

	payment, err := s.recordPaymentInTx(ctx, m.ID, in.OriginalAmount, in.TaxAmount, in.DiscountAmount, in.PaymentRef, in.Method)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.UpdateStatus(ctx, m.ID, StatusActive); err != nil {
		return nil, nil, err
	}
	m.Status = StatusActive

	return m, payment, nil
}

func (s *Service) Create(ctx context.Context, gymID string, in CreateInput) (*Membership, *Payment, error) {
	var m *Membership
	var p *Payment
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		m, p, err = s.CreateInTx(ctx, in)
		return err
	})
	return m, p, err
}

// RenewInTx extends a membership's end date and settles one payment for
// the renewal, per spec.md §4.8's "payment recording always creates
// exactly one Payment row; transitions never double-count."
func (s *Service) RenewInTx(ctx context.Context, id string, newEndDate time.Time, amount, taxAmount, discountAmount float64, paymentRef, method string) (*Membership, *Payment, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if m.Status == StatusCancelled {
		return nil, nil, errors.Conflict("cancelled memberships cannot be renewed")
	}

	payment, err := s.recordPaymentInTx(ctx, id, amount, taxAmount, discountAmount, paymentRef, method)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repo.Renew(ctx, id, newEndDate); err != nil {
		return nil, nil, err
	}
	if err := s.repo.InsertHistory(ctx, &MembershipHistory{
		MembershipID:   id,
		PreviousStatus: m.Status,
		NewStatus:      StatusActive,
		ArchiveReason:  "renewed",
	}); err != nil {
		return nil, nil, err
	}

	m.Status = StatusActive
	m.EndDate = newEndDate
	return m, payment, nil
}

func (s *Service) recordPaymentInTx(ctx context.Context, membershipID string, amount, taxAmount, discountAmount float64, paymentRef, method string) (*Payment, error) {
	p := &Payment{
		MembershipID:   &membershipID,
		Amount:         amount,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		NetAmount:      amount + taxAmount - discountAmount,
		Status:         PaymentCompleted,
		PaymentRef:     paymentRef,
		Method:         method,
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) SuspendInTx(ctx context.Context, id string) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != StatusActive {
		return nil, errors.Conflict("only active memberships can be suspended")
	}
	if err := s.repo.Suspend(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.InsertHistory(ctx, &MembershipHistory{
		MembershipID:   id,
		PreviousStatus: StatusActive,
		NewStatus:      StatusSuspended,
	}); err != nil {
		return nil, err
	}
	m.Status = StatusSuspended
	return m, nil
}

func (s *Service) ResumeInTx(ctx context.Context, id string) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status != StatusSuspended {
		return nil, errors.Conflict("only suspended memberships can be resumed")
	}
	if err := s.repo.Resume(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.InsertHistory(ctx, &MembershipHistory{
		MembershipID:   id,
		PreviousStatus: StatusSuspended,
		NewStatus:      StatusActive,
	}); err != nil {
		return nil, err
	}
	m.Status = StatusActive
	return m, nil
}

// CancelInTx terminates a membership and writes the archival history row
// spec.md §4.8 names explicitly: archiveReason='cancelled' plus the
// cancellation-reason code.
func (s *Service) CancelInTx(ctx context.Context, id, cancellationReason string) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == StatusCancelled || m.Status == StatusExpired {
		return nil, errors.Conflict("membership is already terminal")
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	if err := s.repo.InsertHistory(ctx, &MembershipHistory{
		MembershipID:       id,
		PreviousStatus:     m.Status,
		NewStatus:          StatusCancelled,
		ArchiveReason:      "cancelled",
		CancellationReason: cancellationReason,
	}); err != nil {
		return nil, err
	}
	m.Status = StatusCancelled
	return m, nil
}

func (s *Service) Suspend(ctx context.Context, gymID, id string) (*Membership, error) {
	var m *Membership
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		m, err = s.SuspendInTx(ctx, id)
		return err
	})
	return m, err
}

func (s *Service) Resume(ctx context.Context, gymID, id string) (*Membership, error) {
	var m *Membership
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		m, err = s.ResumeInTx(ctx, id)
		return err
	})
	return m, err
}

func (s *Service) Cancel(ctx context.Context, gymID, id, cancellationReason string) (*Membership, error) {
	var m *Membership
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		m, err = s.CancelInTx(ctx, id, cancellationReason)
		return err
	})
	return m, err
}

func (s *Service) GetByID(ctx context.Context, gymID, id string) (*Membership, error) {
	var m *Membership
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		m, err = s.repo.GetByID(ctx, id)
		return err
	})
	return m, err
}

func (s *Service) List(ctx context.Context, gymID, userID string, page kernel.Page) ([]*Membership, int64, error) {
	var rows []*Membership
	var total int64
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.List(ctx, userID, page)
		return err
	})
	return rows, total, err
}

// ExpireOverdueInTx flips overdue active memberships to expired for one
// tenant. Assumes ctx is already tenant-pinned — the scheduler's hourly
// sweep job opens the tenant scope once per gym and calls this directly.
func (s *Service) ExpireOverdueInTx(ctx context.Context) (int64, error) {
	return s.repo.ExpireOverdue(ctx)
}

// ListExpiringInTx returns memberships due within the given horizon, for
// the hourly expiry-notification job to turn into T-7/T-3/T-1 alerts.
func (s *Service) ListExpiringInTx(ctx context.Context, within time.Duration) ([]*Membership, error) {
	return s.repo.ListExpiring(ctx, within)
}
