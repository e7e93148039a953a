package achievement

import (
	"context"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

type Service struct {
	db   *database.DB
	repo *Repository
}

func NewService(db *database.DB, repo *Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (s *Service) Create(ctx context.Context, gymID string, a *Achievement) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.Create(ctx, a)
	})
}

func (s *Service) List(ctx context.Context, gymID string, page kernel.Page) ([]*Achievement, int64, error) {
	var rows []*Achievement
	var total int64
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.List(ctx, page)
		return err
	})
	return rows, total, err
}

func (s *Service) Delete(ctx context.Context, gymID, id string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		return s.repo.SoftDelete(ctx, id)
	})
}

// EvaluateAndAwardInTx implements spec.md §4.8 step 3: evaluate every
// achievement's typed criteria against the user's lifetime stats and
// upsert an award for each newly-qualifying one. Assumes ctx is already
// tenant-pinned by the caller's broker scope.
func (s *Service) EvaluateAndAwardInTx(ctx context.Context, userID string, currentStreak int) error {
	achievements, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	var lifetimeVisits int
	var lifetimeVisitsLoaded bool

	for _, a := range achievements {
		criteria, err := a.Criteria()
		if err != nil {
			continue
		}

		var qualifies bool
		switch criteria.Type {
		case "total_visits":
			if !lifetimeVisitsLoaded {
				lifetimeVisits, err = s.repo.LifetimeVisitCount(ctx, userID)
				if err != nil {
					return err
				}
				lifetimeVisitsLoaded = true
			}
			qualifies = lifetimeVisits >= criteria.Value
		case "streak_days":
			qualifies = currentStreak >= criteria.Value
		default:
			continue
		}

		if qualifies {
			if err := s.repo.Award(ctx, userID, a.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
