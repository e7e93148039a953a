// Package platform implements the Main Database Gateway: typed access to
// the shared main-schema entities (spec.md §4.1) — tenants, platform
// users, subscription plans/bindings, system notifications, support
// tickets, contact requests, and currencies. Every repository method
// here assumes ctx already carries a pinned main client, opened via
// pkg/database.DB.WithMain by the Service layer.
package platform

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
)

// Tenant is a gym: one private schema, one owning admin.
type Tenant struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	OwnerID          string    `db:"owner_id" json:"owner_id"`
	TenantSchemaName string    `db:"tenant_schema_name" json:"tenant_schema_name"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// PlatformUser is a superadmin or gym owner; staff and members live in
// the tenant schema instead (internal/user).
type PlatformUser struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	GymID        *string    `db:"gym_id" json:"gym_id,omitempty"`
	BranchID     *string    `db:"branch_id" json:"branch_id,omitempty"`
	IsSuperAdmin bool       `db:"is_super_admin" json:"is_super_admin"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at" json:"-"`
}

// SubscriptionPlan names a set of feature codes a tenant subscription
// can unlock (spec.md §4.5's closed feature-code set).
type SubscriptionPlan struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Features  pq.StringArray `db:"features" json:"features"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// TenantSubscription binds one tenant to one plan. PK is tenant_id: a
// tenant has at most one subscription at a time.
type TenantSubscription struct {
	TenantID  string     `db:"tenant_id" json:"tenant_id"`
	PlanID    string     `db:"plan_id" json:"plan_id"`
	IsActive  bool       `db:"is_active" json:"is_active"`
	StartedAt time.Time  `db:"started_at" json:"started_at"`
	EndsAt    *time.Time `db:"ends_at" json:"ends_at,omitempty"`
}

type SystemNotification struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	ReadAt    *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

const (
	TicketStatusOpen     = "open"
	TicketStatusPending  = "pending"
	TicketStatusResolved = "resolved"
	TicketStatusClosed   = "closed"
)

type SupportTicket struct {
	ID        string    `db:"id" json:"id"`
	GymID     *string   `db:"gym_id" json:"gym_id,omitempty"`
	Subject   string    `db:"subject" json:"subject"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SupportTicketMessage struct {
	ID        string    `db:"id" json:"id"`
	TicketID  string    `db:"ticket_id" json:"ticket_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ContactRequest struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Currency struct {
	Code         string  `db:"code" json:"code"`
	Name         string  `db:"name" json:"name"`
	ExchangeRate float64 `db:"exchange_rate" json:"exchange_rate"`
}

// Repository methods assume ctx already carries a pinned main client.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// --- Tenant ---

func (r *Repository) CreateTenant(ctx context.Context, t *Tenant) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.TenantSchemaName == "" {
		t.TenantSchemaName = "tenant_" + t.ID
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO tenants (id, name, owner_id, tenant_schema_name, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, t.ID, t.Name, t.OwnerID, t.TenantSchemaName, t.IsActive)
	return row.Scan(&t.CreatedAt)
}

func (r *Repository) GetTenantByID(ctx context.Context, id string) (*Tenant, error) {
	var t Tenant
	err := r.db.GetContext(ctx, &t, `
		SELECT id, name, owner_id, tenant_schema_name, is_active, created_at
		FROM tenants WHERE id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("tenant")
	}
	return &t, err
}

func (r *Repository) ListTenants(ctx context.Context, page kernel.Page) ([]*Tenant, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM tenants`); err != nil {
		return nil, 0, err
	}
	var rows []*Tenant
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, name, owner_id, tenant_schema_name, is_active, created_at
		FROM tenants ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) DeactivateTenant(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tenants SET is_active = false WHERE id = $1`, id)
	return err
}

// --- PlatformUser ---

func (r *Repository) CreatePlatformUser(ctx context.Context, u *PlatformUser) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO platform_users (id, name, email, password_hash, role, gym_id, branch_id, is_super_admin, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.GymID, u.BranchID, u.IsSuperAdmin, u.IsActive)
	return row.Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *Repository) FindPlatformUserByEmail(ctx context.Context, email string) (*PlatformUser, error) {
	var u PlatformUser
	err := r.db.GetContext(ctx, &u, `
		SELECT id, name, email, password_hash, role, gym_id, branch_id, is_super_admin, is_active, created_at, updated_at, deleted_at
		FROM platform_users WHERE email = $1 AND deleted_at IS NULL
	`, email)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("platform user")
	}
	return &u, err
}

func (r *Repository) FindPlatformUserByID(ctx context.Context, id string) (*PlatformUser, error) {
	var u PlatformUser
	err := r.db.GetContext(ctx, &u, `
		SELECT id, name, email, password_hash, role, gym_id, branch_id, is_super_admin, is_active, created_at, updated_at, deleted_at
		FROM platform_users WHERE id = $1 AND deleted_at IS NULL
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("platform user")
	}
	return &u, err
}

// --- SubscriptionPlan / TenantSubscription ---

func (r *Repository) CreateSubscriptionPlan(ctx context.Context, p *SubscriptionPlan) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO subscription_plans (id, name, features)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`, p.ID, p.Name, p.Features)
	return row.Scan(&p.CreatedAt)
}

func (r *Repository) ListSubscriptionPlans(ctx context.Context) ([]*SubscriptionPlan, error) {
	var rows []*SubscriptionPlan
	err := r.db.SelectContext(ctx, &rows, `SELECT id, name, features, created_at FROM subscription_plans ORDER BY name`)
	return rows, err
}

func (r *Repository) GetSubscriptionPlan(ctx context.Context, id string) (*SubscriptionPlan, error) {
	var p SubscriptionPlan
	err := r.db.GetContext(ctx, &p, `SELECT id, name, features, created_at FROM subscription_plans WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("subscription plan")
	}
	return &p, err
}

// UpsertTenantSubscription binds (or rebinds) a tenant to a plan.
func (r *Repository) UpsertTenantSubscription(ctx context.Context, s *TenantSubscription) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tenant_subscriptions (tenant_id, plan_id, is_active, ends_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id) DO UPDATE SET plan_id = $2, is_active = $3, ends_at = $4
	`, s.TenantID, s.PlanID, s.IsActive, s.EndsAt)
	return err
}

// FeaturesForGym joins a tenant's active subscription to its plan's
// feature set — the Auth & Capability Layer's Feature guard (spec.md
// §4.5 item 3) looks this up on every feature-gated request.
func (r *Repository) FeaturesForGym(ctx context.Context, gymID string) ([]string, error) {
	var features pq.StringArray
	err := r.db.GetContext(ctx, &features, `
		SELECT p.features
		FROM tenant_subscriptions ts
		JOIN subscription_plans p ON p.id = ts.plan_id
		WHERE ts.tenant_id = $1 AND ts.is_active = true
	`, gymID)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("tenant subscription")
	}
	return []string(features), err
}

// --- SystemNotification ---

func (r *Repository) CreateSystemNotification(ctx context.Context, n *SystemNotification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO system_notifications (id, user_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, n.ID, n.UserID, n.Title, n.Body)
	return row.Scan(&n.CreatedAt)
}

func (r *Repository) ListSystemNotifications(ctx context.Context, userID string, page kernel.Page) ([]*SystemNotification, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM system_notifications WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}
	var rows []*SystemNotification
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, title, body, read_at, created_at
		FROM system_notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, page.Limit(), page.Offset())
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *Repository) MarkSystemNotificationRead(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE system_notifications SET read_at = now() WHERE id = $1 AND read_at IS NULL`, id)
	return err
}

// --- SupportTicket ---

func (r *Repository) CreateSupportTicket(ctx context.Context, t *SupportTicket) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = TicketStatusOpen
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO support_tickets (id, gym_id, subject, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, t.ID, t.GymID, t.Subject, t.Status)
	return row.Scan(&t.CreatedAt)
}

func (r *Repository) GetSupportTicket(ctx context.Context, id string) (*SupportTicket, error) {
	var t SupportTicket
	err := r.db.GetContext(ctx, &t, `SELECT id, gym_id, subject, status, created_at FROM support_tickets WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("support ticket")
	}
	return &t, err
}

func (r *Repository) UpdateSupportTicketStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE support_tickets SET status = $2 WHERE id = $1`, id, status)
	return err
}

func (r *Repository) AddSupportTicketMessage(ctx context.Context, m *SupportTicketMessage) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO support_ticket_messages (id, ticket_id, author_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, m.ID, m.TicketID, m.AuthorID, m.Body)
	return row.Scan(&m.CreatedAt)
}

func (r *Repository) ListSupportTicketMessages(ctx context.Context, ticketID string) ([]*SupportTicketMessage, error) {
	var rows []*SupportTicketMessage
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, ticket_id, author_id, body, created_at
		FROM support_ticket_messages WHERE ticket_id = $1 ORDER BY created_at ASC
	`, ticketID)
	return rows, err
}

// --- ContactRequest ---

func (r *Repository) CreateContactRequest(ctx context.Context, c *ContactRequest) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO contact_requests (id, name, email, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, c.ID, c.Name, c.Email, c.Message)
	return row.Scan(&c.CreatedAt)
}

// --- Currency ---

func (r *Repository) ListCurrencies(ctx context.Context) ([]*Currency, error) {
	var rows []*Currency
	err := r.db.SelectContext(ctx, &rows, `SELECT code, name, exchange_rate FROM currencies ORDER BY code`)
	return rows, err
}

func (r *Repository) GetCurrency(ctx context.Context, code string) (*Currency, error) {
	var c Currency
	err := r.db.GetContext(ctx, &c, `SELECT code, name, exchange_rate FROM currencies WHERE code = $1`, code)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("currency")
	}
	return &c, err
}
