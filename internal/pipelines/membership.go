package pipelines

import (
	"context"
	"time"

	"github.com/gymflow/gymflow-backend/internal/membership"
	"github.com/gymflow/gymflow-backend/internal/notify"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

// MembershipLifecyclePipeline implements the notification-bearing half
// of spec.md §4.8's membership lifecycle: payment recording, history
// archival, and the MEMBERSHIP_RENEWED/MEMBERSHIP_EXPIRY notifications
// all run inside the one tenant transaction the membership write opens.
// The notification is ancillary to the transition — its failure is
// logged, never propagated, the same policy the Attendance pipeline
// applies to its derived steps.
type MembershipLifecyclePipeline struct {
	db         *database.DB
	membership *membership.Service
	notify     *notify.Service
	logger     *logger.Logger
}

func NewMembershipLifecyclePipeline(
	db *database.DB,
	membershipSvc *membership.Service,
	notifySvc *notify.Service,
	log *logger.Logger,
) *MembershipLifecyclePipeline {
	return &MembershipLifecyclePipeline{db: db, membership: membershipSvc, notify: notifySvc, logger: log}
}

// Create implements membership.Lifecycle for the HTTP handler.
func (p *MembershipLifecyclePipeline) Create(ctx context.Context, gymID string, in membership.CreateInput) (*membership.Membership, *membership.Payment, error) {
	var m *membership.Membership
	var payment *membership.Payment
	err := p.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		m, payment, err = p.membership.CreateInTx(ctx, in)
		if err != nil {
			return err
		}
		if err := p.notify.NotifyMembershipRenewedInTx(ctx, gymID, in.UserID, in.PlanName); err != nil {
			p.logger.Error().Err(err).Str("membership_id", m.ID).Msg("membership pipeline: create notification failed")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return m, payment, nil
}

// Renew implements membership.Lifecycle for the HTTP handler.
func (p *MembershipLifecyclePipeline) Renew(ctx context.Context, gymID, id string, newEndDate time.Time, amount, taxAmount, discountAmount float64, paymentRef, method string) (*membership.Membership, *membership.Payment, error) {
	var m *membership.Membership
	var payment *membership.Payment
	err := p.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		m, payment, err = p.membership.RenewInTx(ctx, id, newEndDate, amount, taxAmount, discountAmount, paymentRef, method)
		if err != nil {
			return err
		}
		if err := p.notify.NotifyMembershipRenewedInTx(ctx, gymID, m.UserID, ""); err != nil {
			p.logger.Error().Err(err).Str("membership_id", m.ID).Msg("membership pipeline: renew notification failed")
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return m, payment, nil
}

// RunExpirySweepInTx flips overdue memberships to expired for one
// tenant. Assumes ctx is already tenant-pinned — the scheduler's hourly
// sweep job opens the tenant scope once per gym.
func (p *MembershipLifecyclePipeline) RunExpirySweepInTx(ctx context.Context) (int64, error) {
	return p.membership.ExpireOverdueInTx(ctx)
}

// RunExpiryNotificationsInTx finds memberships due within the next week
// and emits MEMBERSHIP_EXPIRY notifications at escalating priority,
// per spec.md §4.10's hourly expiry-notification job. Assumes ctx is
// already tenant-pinned.
func (p *MembershipLifecyclePipeline) RunExpiryNotificationsInTx(ctx context.Context, gymID string) error {
	memberships, err := p.membership.ListExpiringInTx(ctx, 7*24*time.Hour)
	if err != nil {
		return err
	}
	for _, m := range memberships {
		daysRemaining := int(time.Until(m.EndDate).Hours() / 24)
		if err := p.notify.NotifyMembershipExpiryInTx(ctx, gymID, m.UserID, daysRemaining); err != nil {
			p.logger.Error().Err(err).Str("membership_id", m.ID).Msg("membership pipeline: expiry notification failed")
		}
	}
	return nil
}
