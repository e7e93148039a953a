package attendance

import (
	"context"
	"time"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/kernel"
)

const DailyVisitStreak = "daily_visit"

type Service struct {
	db   *database.DB
	repo *Repository
}

func NewService(db *database.DB, repo *Repository) *Service {
	return &Service{db: db, repo: repo}
}

// CreateInTx records the attendance row. Assumes ctx is already
// tenant-pinned by the caller's broker scope.
func (s *Service) CreateInTx(ctx context.Context, a *Attendance) error {
	return s.repo.Create(ctx, a)
}

func (s *Service) Get(ctx context.Context, gymID, id string) (*Attendance, error) {
	var a *Attendance
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		a, err = s.repo.GetByID(ctx, id)
		return err
	})
	return a, err
}

func (s *Service) List(ctx context.Context, gymID, userID string, page kernel.Page) ([]*Attendance, int64, error) {
	var rows []*Attendance
	var total int64
	err := s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		var err error
		rows, total, err = s.repo.List(ctx, userID, page)
		return err
	})
	return rows, total, err
}

// UpsertStreakInTx implements spec.md §3's streak rule: currentCount is 1
// on the first event of the day, prev+1 if the previous event was
// yesterday, else 1; longestCount = max(longestCount, currentCount).
// Assumes ctx is already tenant-pinned by the caller's broker scope.
func (s *Service) UpsertStreakInTx(ctx context.Context, userID string, eventTime time.Time) (*Streak, error) {
	streakType := DailyVisitStreak
	eventDate := eventTime.Truncate(24 * time.Hour)

	existing, err := s.repo.GetStreak(ctx, userID, streakType)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		streak := &Streak{
			UserID:        userID,
			StreakType:    streakType,
			CurrentCount:  1,
			LongestCount:  1,
			LastEventDate: eventDate,
		}
		if err := s.repo.CreateStreak(ctx, streak); err != nil {
			return nil, err
		}
		return streak, nil
	}

	daysSinceLastEvent := int(eventDate.Sub(existing.LastEventDate).Hours() / 24)
	switch daysSinceLastEvent {
	case 0:
		// same day: already counted, no change
	case 1:
		existing.CurrentCount++
		existing.LastEventDate = eventDate
	default:
		existing.CurrentCount = 1
		existing.LastEventDate = eventDate
	}
	if existing.CurrentCount > existing.LongestCount {
		existing.LongestCount = existing.CurrentCount
	}

	if daysSinceLastEvent != 0 {
		if err := s.repo.UpdateStreak(ctx, existing); err != nil {
			return nil, err
		}
	}
	return existing, nil
}
