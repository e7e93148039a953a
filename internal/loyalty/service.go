package loyalty

import (
	"context"
	"math"
	"time"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

type Service struct {
	db     *database.DB
	repo   *Repository
	logger *logger.Logger
}

func NewService(db *database.DB, repo *Repository, log *logger.Logger) *Service {
	return &Service{db: db, repo: repo, logger: log}
}

// AwardPoints is the public entry point used directly by HTTP handlers or
// any caller not already inside a broker-pinned context: it opens its own
// tenant scope.
func (s *Service) AwardPoints(ctx context.Context, gymID, userID, source string, reference *string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.AwardPointsInTx(ctx, userID, source, reference)
	})
}

// AwardPointsInTx implements spec.md §4.8 "Loyalty award": it assumes
// ctx already carries a pinned tenant client (e.g. from the Attendance
// pipeline's single broker scope) and never opens its own.
func (s *Service) AwardPointsInTx(ctx context.Context, userID, source string, reference *string) error {
	cfg, err := s.repo.GetConfig(ctx)
	if err != nil {
		return err
	}
	if !cfg.IsActive {
		return nil
	}

	points, err := s.repo.GetOrCreatePoints(ctx, userID)
	if err != nil {
		return err
	}

	multiplier := 1.0
	if points.TierID != nil {
		tiers, err := s.repo.ListTiers(ctx)
		if err != nil {
			return err
		}
		for _, t := range tiers {
			if t.ID == *points.TierID {
				multiplier = t.Multiplier
				break
			}
		}
	}

	base := cfg.DefaultPoints
	if cfg.PointsPerSource != nil {
		if v, ok := cfg.PointsPerSource[source]; ok {
			base = v
		}
	}
	effective := int(math.Round(float64(base) * multiplier))

	newBalance, err := s.repo.ApplyEarn(ctx, userID, effective)
	if err != nil {
		return err
	}

	expiresAt := time.Time{}
	if cfg.PointExpiryDays > 0 {
		expiresAt = timeNowPlusDays(cfg.PointExpiryDays)
	}
	tx := &Transaction{
		UserID:       userID,
		Type:         "earn",
		Points:       effective,
		BalanceAfter: newBalance,
		Source:       source,
		Reference:    reference,
	}
	if !expiresAt.IsZero() {
		tx.ExpiresAt = &expiresAt
	}
	if err := s.repo.InsertTransaction(ctx, tx); err != nil {
		return err
	}

	return s.checkAndUpdateTier(ctx, userID)
}

// checkAndUpdateTier finds the highest tier whose minPoints does not
// exceed the user's lifetime totalEarned and persists it if it changed.
func (s *Service) checkAndUpdateTier(ctx context.Context, userID string) error {
	points, err := s.repo.GetOrCreatePoints(ctx, userID)
	if err != nil {
		return err
	}
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return err
	}

	var best *Tier
	for _, t := range tiers {
		if t.MinPoints <= points.TotalEarned {
			if best == nil || t.MinPoints > best.MinPoints {
				best = t
			}
		}
	}
	if best == nil {
		return nil
	}
	if points.TierID != nil && *points.TierID == best.ID {
		return nil
	}
	return s.repo.UpdateTier(ctx, userID, best.ID)
}

// ExpirePoints runs the daily loyalty-expiry scheduler job's per-tenant
// unit: every unexpired "earn" transaction past its expiry is deducted
// from the balance (floored at zero) and paired with an "expire" row.
func (s *Service) ExpirePoints(ctx context.Context, now time.Time) error {
	earns, err := s.repo.ListUnexpiredEarns(ctx, now)
	if err != nil {
		return err
	}
	for _, earn := range earns {
		newBalance, err := s.repo.ApplyExpiry(ctx, earn.UserID, earn.Points)
		if err != nil {
			s.logger.Error().Err(err).Str("user_id", earn.UserID).Msg("failed to expire loyalty points")
			continue
		}
		ref := earn.ID
		if err := s.repo.InsertTransaction(ctx, &Transaction{
			UserID:       earn.UserID,
			Type:         "expire",
			Points:       earn.Points,
			BalanceAfter: newBalance,
			Source:       earn.Source,
			Reference:    &ref,
		}); err != nil {
			s.logger.Error().Err(err).Str("user_id", earn.UserID).Msg("failed to record loyalty point expiry")
		}
	}
	return nil
}

// RecomputeAllTiers runs the daily tier-recomputation scheduler job's
// per-tenant unit.
func (s *Service) RecomputeAllTiers(ctx context.Context) error {
	userIDs, err := s.repo.ListAllUserIDsWithPoints(ctx)
	if err != nil {
		return err
	}
	for _, userID := range userIDs {
		if err := s.checkAndUpdateTier(ctx, userID); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to recompute loyalty tier")
		}
	}
	return nil
}

func timeNowPlusDays(days int) time.Time {
	return time.Now().AddDate(0, 0, days)
}
