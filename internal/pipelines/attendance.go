// Package pipelines wires the per-domain services together into the
// cross-cutting Event Pipelines spec.md §4.8 describes: a single
// tenant-connection broker scope driving several derived writes, where
// the primary write must never fail for an ancillary one.
package pipelines

import (
	"context"

	"github.com/gymflow/gymflow-backend/internal/achievement"
	"github.com/gymflow/gymflow-backend/internal/attendance"
	"github.com/gymflow/gymflow-backend/internal/challenge"
	"github.com/gymflow/gymflow-backend/internal/engagement"
	"github.com/gymflow/gymflow-backend/internal/loyalty"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

const loyaltySourceVisit = "visit"

// attendanceMetrics is the set of challenge metrics an attendance event
// advances, per spec.md §4.8 step 2.
var attendanceMetrics = []string{"attendance", "visits"}

// AttendancePipeline implements spec.md §4.8 "Attendance marked": all
// five steps run inside one tenant connection; individual step failures
// are logged but never abort the remainder, so the primary attendance
// write always succeeds.
type AttendancePipeline struct {
	db          *database.DB
	attendance  *attendance.Service
	challenge   *challenge.Service
	achievement *achievement.Service
	loyalty     *loyalty.Service
	engagement  *engagement.Service
	logger      *logger.Logger
}

func NewAttendancePipeline(
	db *database.DB,
	attendanceSvc *attendance.Service,
	challengeSvc *challenge.Service,
	achievementSvc *achievement.Service,
	loyaltySvc *loyalty.Service,
	engagementSvc *engagement.Service,
	log *logger.Logger,
) *AttendancePipeline {
	return &AttendancePipeline{
		db:          db,
		attendance:  attendanceSvc,
		challenge:   challengeSvc,
		achievement: achievementSvc,
		loyalty:     loyaltySvc,
		engagement:  engagementSvc,
		logger:      log,
	}
}

// Mark implements the Handler.Marker interface the attendance HTTP
// handler and the wearable sync job both call.
func (p *AttendancePipeline) Mark(ctx context.Context, gymID, userID string, branchID, serviceType *string) (*attendance.Attendance, error) {
	a := &attendance.Attendance{
		UserID:      userID,
		BranchID:    branchID,
		ServiceType: serviceType,
	}

	err := p.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		// Step 0 (primary write): must succeed for the request to succeed.
		if err := p.attendance.CreateInTx(ctx, a); err != nil {
			return err
		}

		// Step 1: streak upsert.
		streakCurrent := 0
		streak, err := p.attendance.UpsertStreakInTx(ctx, userID, a.CheckInAt)
		if err != nil {
			p.logger.Error().Err(err).Str("user_id", userID).Msg("attendance pipeline: streak upsert failed")
		} else {
			streakCurrent = streak.CurrentCount
		}

		// Step 2: challenge progress.
		if err := p.challenge.AdvanceProgressInTx(ctx, userID, attendanceMetrics, 1); err != nil {
			p.logger.Error().Err(err).Str("user_id", userID).Msg("attendance pipeline: challenge progress failed")
		}

		// Step 3: achievement qualification.
		if err := p.achievement.EvaluateAndAwardInTx(ctx, userID, streakCurrent); err != nil {
			p.logger.Error().Err(err).Str("user_id", userID).Msg("attendance pipeline: achievement evaluation failed")
		}

		// Step 4: loyalty award.
		ref := a.ID
		if err := p.loyalty.AwardPointsInTx(ctx, userID, loyaltySourceVisit, &ref); err != nil {
			p.logger.Error().Err(err).Str("user_id", userID).Msg("attendance pipeline: loyalty award failed")
		}

		// Step 5: engagement score recompute.
		if _, err := p.engagement.RecomputeInTx(ctx, userID); err != nil {
			p.logger.Error().Err(err).Str("user_id", userID).Msg("attendance pipeline: engagement recompute failed")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}
