package platform

import (
	"context"
	"net/http"
	"time"

	"github.com/gymflow/gymflow-backend/internal/authn"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

// Provisioner is the subset of tenantreg.Registry the Service depends on
// when registering a new gym — schema provisioning runs synchronously
// as part of tenant registration (spec.md §3 "Lifecycle").
type Provisioner interface {
	Create(ctx context.Context, gymID string) error
}

type Service struct {
	db      *database.DB
	repo    *Repository
	tenants Provisioner
}

func NewService(db *database.DB, repo *Repository, tenants Provisioner) *Service {
	return &Service{db: db, repo: repo, tenants: tenants}
}

// RegisterTenantInput describes a new gym signup: a fresh Tenant row, its
// owning PlatformUser (role "admin"), and the subscription plan it starts
// on.
type RegisterTenantInput struct {
	GymName       string
	OwnerName     string
	OwnerEmail    string
	OwnerPassword string
	PlanID        string
}

// RegisterTenant creates the Tenant and owner PlatformUser rows, binds
// the chosen subscription plan, then hands off to the Tenant Registry to
// provision the schema synchronously — per spec.md §3: "Tenant rows are
// created on gym registration (schema provisioning runs synchronously)."
func (s *Service) RegisterTenant(ctx context.Context, in RegisterTenantInput) (*Tenant, *PlatformUser, error) {
	hash, err := authn.HashPassword(in.OwnerPassword)
	if err != nil {
		return nil, nil, errors.Internal("failed to hash password")
	}

	var tenant *Tenant
	var owner *PlatformUser
	err = s.db.WithMain(ctx, func(ctx context.Context) error {
		if _, err := s.repo.FindPlatformUserByEmail(ctx, in.OwnerEmail); err == nil {
			return errors.Conflict("an account with this email already exists")
		} else if !errors.Is(err, errors.ErrNotFound) {
			return err
		}

		t := &Tenant{Name: in.GymName, IsActive: true}
		// OwnerID is backfilled below once the owner row exists; the
		// tenant row is created first so platform_users.gym_id can
		// reference it.
		if err := s.repo.CreateTenant(ctx, t); err != nil {
			return err
		}

		gymID := t.ID
		u := &PlatformUser{
			Name:         in.OwnerName,
			Email:        in.OwnerEmail,
			PasswordHash: hash,
			Role:         RoleAdmin,
			GymID:        &gymID,
			IsSuperAdmin: false,
			IsActive:     true,
		}
		if err := s.repo.CreatePlatformUser(ctx, u); err != nil {
			return err
		}

		t.OwnerID = u.ID
		if _, err := s.db.ExecContext(ctx, `UPDATE tenants SET owner_id = $2 WHERE id = $1`, t.ID, u.ID); err != nil {
			return err
		}

		if in.PlanID != "" {
			if err := s.repo.UpsertTenantSubscription(ctx, &TenantSubscription{TenantID: t.ID, PlanID: in.PlanID, IsActive: true}); err != nil {
				return err
			}
		}

		tenant, owner = t, u
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.tenants.Create(ctx, tenant.ID); err != nil {
		return nil, nil, errors.Wrap(err, "TENANT_PROVISION_FAILED", "gym was registered but schema provisioning failed", http.StatusInternalServerError)
	}

	return tenant, owner, nil
}

func (s *Service) GetTenant(ctx context.Context, id string) (*Tenant, error) {
	var t *Tenant
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.repo.GetTenantByID(ctx, id)
		return err
	})
	return t, err
}

func (s *Service) ListTenants(ctx context.Context, page kernel.Page) ([]*Tenant, int64, error) {
	var rows []*Tenant
	var total int64
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.ListTenants(ctx, page)
		return err
	})
	return rows, total, err
}

func (s *Service) DeactivateTenant(ctx context.Context, id string) error {
	return s.db.WithMain(ctx, func(ctx context.Context) error {
		return s.repo.DeactivateTenant(ctx, id)
	})
}

// --- SubscriptionPlan ---

func (s *Service) CreateSubscriptionPlan(ctx context.Context, name string, features []string) (*SubscriptionPlan, error) {
	p := &SubscriptionPlan{Name: name, Features: features}
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		return s.repo.CreateSubscriptionPlan(ctx, p)
	})
	return p, err
}

func (s *Service) ListSubscriptionPlans(ctx context.Context) ([]*SubscriptionPlan, error) {
	var rows []*SubscriptionPlan
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.repo.ListSubscriptionPlans(ctx)
		return err
	})
	return rows, err
}

func (s *Service) SetTenantSubscription(ctx context.Context, tenantID, planID string, endsAt *time.Time) error {
	return s.db.WithMain(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetSubscriptionPlan(ctx, planID); err != nil {
			return err
		}
		return s.repo.UpsertTenantSubscription(ctx, &TenantSubscription{TenantID: tenantID, PlanID: planID, IsActive: true, EndsAt: endsAt})
	})
}

// FeaturesForGym implements authn.FeatureLookup.
func (s *Service) FeaturesForGym(ctx context.Context, gymID string) ([]string, error) {
	var features []string
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		var err error
		features, err = s.repo.FeaturesForGym(ctx, gymID)
		return err
	})
	return features, err
}

// --- PlatformUser / authn.PlatformUserLookup ---

// FindByEmail implements authn.PlatformUserLookup.
func (s *Service) FindByEmail(ctx context.Context, email string) (*authn.PlatformUserRecord, error) {
	var u *PlatformUser
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.repo.FindPlatformUserByEmail(ctx, email)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toPlatformUserRecord(u), nil
}

// FindByID implements authn.PlatformUserLookup.
func (s *Service) FindByID(ctx context.Context, id string) (*authn.PlatformUserRecord, error) {
	var u *PlatformUser
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		var err error
		u, err = s.repo.FindPlatformUserByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toPlatformUserRecord(u), nil
}

func toPlatformUserRecord(u *PlatformUser) *authn.PlatformUserRecord {
	return &authn.PlatformUserRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		GymID:        u.GymID,
		BranchID:     u.BranchID,
		IsSuperAdmin: u.IsSuperAdmin,
		IsActive:     u.IsActive,
	}
}

// --- SystemNotification ---

func (s *Service) NotifySystem(ctx context.Context, userID, title, body string) error {
	return s.db.WithMain(ctx, func(ctx context.Context) error {
		return s.repo.CreateSystemNotification(ctx, &SystemNotification{UserID: userID, Title: title, Body: body})
	})
}

func (s *Service) ListSystemNotifications(ctx context.Context, userID string, page kernel.Page) ([]*SystemNotification, int64, error) {
	var rows []*SystemNotification
	var total int64
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.ListSystemNotifications(ctx, userID, page)
		return err
	})
	return rows, total, err
}

func (s *Service) MarkSystemNotificationRead(ctx context.Context, id string) error {
	return s.db.WithMain(ctx, func(ctx context.Context) error {
		return s.repo.MarkSystemNotificationRead(ctx, id)
	})
}

// --- SupportTicket ---

func (s *Service) OpenSupportTicket(ctx context.Context, gymID *string, subject, firstMessageAuthorID, firstMessage string) (*SupportTicket, error) {
	t := &SupportTicket{GymID: gymID, Subject: subject}
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateSupportTicket(ctx, t); err != nil {
			return err
		}
		if firstMessage == "" {
			return nil
		}
		return s.repo.AddSupportTicketMessage(ctx, &SupportTicketMessage{TicketID: t.ID, AuthorID: firstMessageAuthorID, Body: firstMessage})
	})
	return t, err
}

func (s *Service) ReplyToSupportTicket(ctx context.Context, ticketID, authorID, body string) (*SupportTicketMessage, error) {
	m := &SupportTicketMessage{TicketID: ticketID, AuthorID: authorID, Body: body}
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetSupportTicket(ctx, ticketID); err != nil {
			return err
		}
		return s.repo.AddSupportTicketMessage(ctx, m)
	})
	return m, err
}

func (s *Service) CloseSupportTicket(ctx context.Context, id string) error {
	return s.db.WithMain(ctx, func(ctx context.Context) error {
		return s.repo.UpdateSupportTicketStatus(ctx, id, TicketStatusClosed)
	})
}

func (s *Service) GetSupportTicket(ctx context.Context, id string) (*SupportTicket, []*SupportTicketMessage, error) {
	var t *SupportTicket
	var messages []*SupportTicketMessage
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		var err error
		t, err = s.repo.GetSupportTicket(ctx, id)
		if err != nil {
			return err
		}
		messages, err = s.repo.ListSupportTicketMessages(ctx, id)
		return err
	})
	return t, messages, err
}

// --- ContactRequest ---

func (s *Service) SubmitContactRequest(ctx context.Context, name, email, message string) (*ContactRequest, error) {
	c := &ContactRequest{Name: name, Email: email, Message: message}
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		return s.repo.CreateContactRequest(ctx, c)
	})
	return c, err
}

// --- Currency ---

func (s *Service) ListCurrencies(ctx context.Context) ([]*Currency, error) {
	var rows []*Currency
	err := s.db.WithMain(ctx, func(ctx context.Context) error {
		var err error
		rows, err = s.repo.ListCurrencies(ctx)
		return err
	})
	return rows, err
}
