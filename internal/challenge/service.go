package challenge

import (
	"context"

	"github.com/gymflow/gymflow-backend/pkg/capability"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

// gamificationFeature is the feature code the Feature guard checks before
// any challenge-creation handler runs (spec.md §4.5/§4.8).
const gamificationFeature = "gamification"

type Service struct {
	db   *database.DB
	repo *Repository
}

func NewService(db *database.DB, repo *Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (s *Service) Create(ctx context.Context, gymID string, grantedFeatures []string, c *Challenge) error {
	if !capability.Has(grantedFeatures, gamificationFeature) {
		return errors.Forbidden("gamification feature is not enabled for this gym's subscription")
	}
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.Create(ctx, c)
	})
}

func (s *Service) Get(ctx context.Context, gymID, id string) (*Challenge, error) {
	var c *Challenge
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		c, err = s.repo.GetByID(ctx, id)
		return err
	})
	return c, err
}

func (s *Service) List(ctx context.Context, gymID string, page kernel.Page, activeOnly bool) ([]*Challenge, int64, error) {
	var rows []*Challenge
	var total int64
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.List(ctx, page, activeOnly)
		return err
	})
	return rows, total, err
}

func (s *Service) Join(ctx context.Context, gymID, challengeID, userID string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.Join(ctx, challengeID, userID)
	})
}

func (s *Service) Delete(ctx context.Context, gymID, id string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.SoftDelete(ctx, id)
	})
}

// AdvanceProgressInTx implements the Attendance pipeline's step 2: for
// every active challenge the user has joined whose metric matches, bump
// currentValue and recompute progressPct. Assumes ctx is already
// tenant-pinned by the caller's broker scope.
func (s *Service) AdvanceProgressInTx(ctx context.Context, userID string, metrics []string, delta int) error {
	participants, err := s.repo.ActiveForUserByMetric(ctx, userID, metrics)
	if err != nil {
		return err
	}
	for _, p := range participants {
		goal, err := s.repo.GoalFor(ctx, p.ChallengeID)
		if err != nil {
			return err
		}
		if err := s.repo.IncrementProgress(ctx, p.ID, delta, goal); err != nil {
			return err
		}
	}
	return nil
}
