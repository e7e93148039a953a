package staffsalary

import (
	"context"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

// StaffActiveChecker is implemented by internal/user's Service: the recurring
// generation job skips a staff member who is no longer active, per
// spec.md §4.10's "skipping if ... the staff member is no longer
// active."
type StaffActiveChecker interface {
	IsActive(ctx context.Context, staffID string) (bool, error)
}

type Service struct {
	db    *database.DB
	repo  *Repository
	staff StaffActiveChecker
}

func NewService(db *database.DB, repo *Repository, staff StaffActiveChecker) *Service {
	return &Service{db: db, repo: repo, staff: staff}
}

// GenerateRecurringInTx clones every recurring salary row from the
// previous month into the target month/year, skipping any staff member
// who already has a row for the target period or is no longer active.
// Assumes ctx is already tenant-pinned — GenerateRecurring, which the
// scheduler calls once per gym, opens the tenant scope and calls this.
func (s *Service) GenerateRecurringInTx(ctx context.Context, month, year int) (int, error) {
	prevMonth, prevYear := month-1, year
	if prevMonth == 0 {
		prevMonth, prevYear = 12, year-1
	}

	source, err := s.repo.ListRecurringForMonth(ctx, prevMonth, prevYear)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, src := range source {
		exists, err := s.repo.ExistsForMonth(ctx, src.StaffID, month, year)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}
		active, err := s.staff.IsActive(ctx, src.StaffID)
		if err != nil {
			return created, err
		}
		if !active {
			continue
		}

		next := &StaffSalary{
			StaffID:        src.StaffID,
			Month:          month,
			Year:           year,
			Amount:         src.Amount,
			TaxAmount:      src.TaxAmount,
			DiscountAmount: src.DiscountAmount,
			NetAmount:      src.NetAmount,
			Status:         StatusPending,
			IsRecurring:    true,
		}
		if err := s.repo.Create(ctx, next); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func (s *Service) GenerateRecurring(ctx context.Context, gymID string, month, year int) (int, error) {
	var created int
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		created, err = s.GenerateRecurringInTx(ctx, month, year)
		return err
	})
	return created, err
}

// SettleInTx marks a salary completed and archives the transition.
// Payment recording for staff salaries shares the same Payment table
// membership settlements use (spec.md §3's commercial group), keyed by
// StaffSalaryID instead of MembershipID. SettleInTx and its caller Settle
// write no Payment row.
func (s *Service) SettleInTx(ctx context.Context, id string) (*StaffSalary, error) {
	salary, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, StatusCompleted); err != nil {
		return nil, err
	}
	if err := s.repo.InsertHistory(ctx, &StaffSalaryHistory{
		StaffSalaryID:  id,
		PreviousStatus: salary.Status,
		NewStatus:      StatusCompleted,
	}); err != nil {
		return nil, err
	}
	salary.Status = StatusCompleted
	return salary, nil
}

func (s *Service) Settle(ctx context.Context, gymID, id string) (*StaffSalary, error) {
	var salary *StaffSalary
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		salary, err = s.SettleInTx(ctx, id)
		return err
	})
	return salary, err
}

func (s *Service) GetByID(ctx context.Context, gymID, id string) (*StaffSalary, error) {
	var salary *StaffSalary
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		salary, err = s.repo.GetByID(ctx, id)
		return err
	})
	return salary, err
}

func (s *Service) List(ctx context.Context, gymID, staffID string, page kernel.Page) ([]*StaffSalary, int64, error) {
	var rows []*StaffSalary
	var total int64
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.List(ctx, staffID, page)
		return err
	})
	return rows, total, err
}
