package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

type Service struct {
	db   *database.DB
	repo *Repository
	hub  *Hub
}

func NewService(db *database.DB, repo *Repository, hub *Hub) *Service {
	return &Service{db: db, repo: repo, hub: hub}
}

// CreateInTx writes a notification and best-effort pushes it over the
// gym's WebSocket room. Assumes ctx is already tenant-pinned.
func (s *Service) CreateInTx(ctx context.Context, gymID string, n *Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.hub.Emit(gymID, "notification.created", n)
	return nil
}

func (s *Service) Create(ctx context.Context, gymID string, n *Notification) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.CreateInTx(ctx, gymID, n)
	})
}

func (s *Service) List(ctx context.Context, gymID, userID string, page kernel.Page, unreadOnly bool) ([]*Notification, int64, error) {
	var rows []*Notification
	var total int64
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.List(ctx, userID, page, unreadOnly)
		return err
	})
	return rows, total, err
}

func (s *Service) MarkAsRead(ctx context.Context, gymID, userID, id string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.MarkAsRead(ctx, userID, id)
	})
}

func (s *Service) MarkAllAsRead(ctx context.Context, gymID, userID string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.MarkAllAsRead(ctx, userID)
	})
}

func (s *Service) Delete(ctx context.Context, gymID, userID, id string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.Delete(ctx, userID, id)
	})
}

// DeleteOld runs the "delete old read notifications" administrative
// cleanup for one tenant, physically removing rows read more than
// olderThanDays ago (spec.md §3).
func (s *Service) DeleteOld(ctx context.Context, gymID string, olderThanDays int) (int64, error) {
	var count int64
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		count, err = s.repo.DeleteOld(ctx, time.Now().AddDate(0, 0, -olderThanDays))
		return err
	})
	return count, err
}

// NotifyMembershipRenewedInTx implements spec.md §4.8's "on renew/create
// success emit Notification(MEMBERSHIP_RENEWED)". Assumes ctx is already
// tenant-pinned by the caller's broker scope.
func (s *Service) NotifyMembershipRenewedInTx(ctx context.Context, gymID, userID, planName string) error {
	return s.CreateInTx(ctx, gymID, &Notification{
		UserID:   userID,
		Type:     "MEMBERSHIP_RENEWED",
		Title:    "Membership renewed",
		Message:  fmt.Sprintf("Your %s membership has been renewed.", planName),
		Priority: "normal",
	})
}

// NotifyMembershipExpiryInTx implements spec.md §4.8's expiry-priority
// escalation: priority rises as daysRemaining falls.
func (s *Service) NotifyMembershipExpiryInTx(ctx context.Context, gymID, userID string, daysRemaining int) error {
	priority := "low"
	switch {
	case daysRemaining <= 1:
		priority = "urgent"
	case daysRemaining <= 3:
		priority = "high"
	case daysRemaining <= 7:
		priority = "normal"
	}
	return s.CreateInTx(ctx, gymID, &Notification{
		UserID:   userID,
		Type:     "MEMBERSHIP_EXPIRY",
		Title:    "Membership expiring soon",
		Message:  fmt.Sprintf("Your membership expires in %d day(s).", daysRemaining),
		Priority: priority,
	})
}
