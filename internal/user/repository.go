// Package user implements Branch and User (staff + members): the
// identity and access module of a gym's tenant schema (spec.md §3
// "Identity & access").
package user

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

// Role values stored on User.Role. spec.md's tenant schema keeps this a
// plain string column (no separate roles table) — a gym's staff roles
// are a small, fixed set.
const (
	RoleOwner   = "owner"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleMember  = "member"
)

type Branch struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type User struct {
	ID           string         `db:"id" json:"id"`
	BranchID     *string        `db:"branch_id" json:"branch_id,omitempty"`
	Name         string         `db:"name" json:"name"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Role         string         `db:"role" json:"role"`
	Permissions  pq.StringArray `db:"permissions" json:"permissions"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time     `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Repository methods assume ctx already carries a pinned tenant client.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateBranch(ctx context.Context, b *Branch) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO branches (id, name, is_active)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, b.ID, b.Name, b.IsActive)
	return row.Scan(&b.CreatedAt)
}

func (r *Repository) GetBranch(ctx context.Context, id string) (*Branch, error) {
	var b Branch
	err := r.db.GetContext(ctx, &b, `
		SELECT id, name, is_active, created_at, deleted_at
		FROM branches WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("branch")
	}
	return &b, err
}

func (r *Repository) ListBranches(ctx context.Context, page kernel.Page) ([]*Branch, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM branches WHERE deleted_at IS NULL`); err != nil {
		return nil, 0, err
	}
	var rows []*Branch
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, is_active, created_at, deleted_at
		FROM branches WHERE deleted_at IS NULL
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Permissions == nil {
		u.Permissions = pq.StringArray{}
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO users (id, branch_id, name, email, password_hash, role, permissions, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, u.ID, u.BranchID, u.Name, u.Email, u.PasswordHash, u.Role, u.Permissions, u.IsActive)
	return row.Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, branch_id, name, email, password_hash, role, permissions, is_active, created_at, updated_at, deleted_at
		FROM users WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("user")
	}
	return &u, err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, branch_id, name, email, password_hash, role, permissions, is_active, created_at, updated_at, deleted_at
		FROM users WHERE email = $1 AND deleted_at IS NULL
	`, email)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("user")
	}
	return &u, err
}

func (r *Repository) Update(ctx context.Context, u *User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET branch_id = $2, name = $3, role = $4, permissions = $5, is_active = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`, u.ID, u.BranchID, u.Name, u.Role, u.Permissions, u.IsActive)
	return err
}

func (r *Repository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL
	`, id, passwordHash)
	return err
}

func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL
	`, id)
	return err
}

func (r *Repository) List(ctx context.Context, branchID, role, search string, page kernel.Page) ([]*User, int64, error) {
	filter := kernel.NewFilterBuilder().Eq("branch_id", branchID).Eq("role", role).ILike("name", search)
	where, args := filter.Build()

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM users WHERE "+where, args...); err != nil {
		return nil, 0, err
	}

	var rows []*User
	args = append(args, page.Limit(), page.Offset())
	query := fmt.Sprintf(`
		SELECT id, branch_id, name, email, password_hash, role, permissions, is_active, created_at, updated_at, deleted_at
		FROM users WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// IsActive implements internal/staffsalary's StaffActiveChecker.
func (r *Repository) IsActive(ctx context.Context, id string) (bool, error) {
	var active bool
	err := r.db.GetContext(ctx, &active, `SELECT is_active FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return active, err
}
