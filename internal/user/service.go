package user

import (
	"context"

	"github.com/gymflow/gymflow-backend/internal/authn"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

type Service struct {
	db   *database.DB
	repo *Repository
}

func NewService(db *database.DB, repo *Repository) *Service {
	return &Service{db: db, repo: repo}
}

type CreateInput struct {
	BranchID     *string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Permissions  []string
}

func (s *Service) Create(ctx context.Context, gymID string, in CreateInput) (*User, error) {
	var u *User
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
			return errors.Conflict("a user with this email already exists")
		} else if !errors.Is(err, errors.ErrNotFound) {
			return err
		}
		u = &User{
			BranchID:     in.BranchID,
			Name:         in.Name,
			Email:        in.Email,
			PasswordHash: in.PasswordHash,
			Role:         in.Role,
			Permissions:  in.Permissions,
			IsActive:     true,
		}
		return s.repo.Create(ctx, u)
	})
	return u, err
}

func (s *Service) GetByID(ctx context.Context, gymID, id string) (*User, error) {
	var u *User
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		u, err = s.repo.GetByID(ctx, id)
		return err
	})
	return u, err
}

func (s *Service) Update(ctx context.Context, gymID string, u *User) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.Update(ctx, u)
	})
}

func (s *Service) UpdatePassword(ctx context.Context, gymID, id, passwordHash string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.UpdatePassword(ctx, id, passwordHash)
	})
}

func (s *Service) Delete(ctx context.Context, gymID, id string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.SoftDelete(ctx, id)
	})
}

func (s *Service) List(ctx context.Context, gymID, branchID, role, search string, page kernel.Page) ([]*User, int64, error) {
	var rows []*User
	var total int64
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.List(ctx, branchID, role, search, page)
		return err
	})
	return rows, total, err
}

// --- Branch ---

func (s *Service) CreateBranch(ctx context.Context, gymID, name string) (*Branch, error) {
	b := &Branch{Name: name, IsActive: true}
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.CreateBranch(ctx, b)
	})
	return b, err
}

func (s *Service) ListBranches(ctx context.Context, gymID string, page kernel.Page) ([]*Branch, int64, error) {
	var rows []*Branch
	var total int64
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.ListBranches(ctx, page)
		return err
	})
	return rows, total, err
}

// --- authn.TenantUserLookup ---

// FindByEmail implements authn.TenantUserLookup.
func (s *Service) FindByEmail(ctx context.Context, gymID, email string) (*authn.TenantUserRecord, error) {
	var u *User
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		u, err = s.repo.GetByEmail(ctx, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTenantUserRecord(u), nil
}

// FindByID implements authn.TenantUserLookup.
func (s *Service) FindByID(ctx context.Context, gymID, id string) (*authn.TenantUserRecord, error) {
	var u *User
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		u, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toTenantUserRecord(u), nil
}

func toTenantUserRecord(u *User) *authn.TenantUserRecord {
	return &authn.TenantUserRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		BranchID:     u.BranchID,
		Permissions:  []string(u.Permissions),
		IsActive:     u.IsActive,
	}
}

// --- staffsalary.StaffActiveChecker ---

// IsActive implements internal/staffsalary.StaffActiveChecker. Its
// caller already runs inside the WithTenant scope that
// staffsalary.GenerateRecurring opens, so this goes straight to the
// repository instead of opening its own.
func (s *Service) IsActive(ctx context.Context, staffID string) (bool, error) {
	return s.repo.IsActive(ctx, staffID)
}
