package engagement

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

const (
	weightVisitFrequency     = 0.25
	weightVisitRecency       = 0.20
	weightAttendanceTrend    = 0.15
	weightPaymentReliability = 0.15
	weightMembershipTenure   = 0.15
	weightEngagementDepth    = 0.10
)

// RiskLevel buckets an overall score per spec.md §4.8.3's fixed bands.
func RiskLevel(overall float64) string {
	switch {
	case overall >= 75:
		return "low"
	case overall >= 50:
		return "medium"
	case overall >= 25:
		return "high"
	default:
		return "critical"
	}
}

// riskRank orders risk levels so a pipeline can detect deterioration.
var riskRank = map[string]int{"low": 0, "medium": 1, "high": 2, "critical": 3}

type Service struct {
	db     *database.DB
	repo   *Repository
	logger *logger.Logger
}

func NewService(db *database.DB, repo *Repository, log *logger.Logger) *Service {
	return &Service{db: db, repo: repo, logger: log}
}

// RecomputeInTx implements spec.md §4.8.3: computes the six sub-scores
// from the user's attendance/payment/membership history, combines them
// into overallScore via the fixed weights, writes a new current row
// (flipping the prior one), and opens a Churn Alert if risk deteriorated.
// Assumes ctx is already tenant-pinned by the caller's broker scope.
func (s *Service) RecomputeInTx(ctx context.Context, userID string) (*Score, error) {
	stats, err := s.repo.AttendanceStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	visitFrequency := clamp(float64(stats.VisitsLast30Days) / 12.0 * 100)
	visitRecency := clamp(100 - float64(stats.DaysSinceLastVisit)/30.0*100)
	attendanceTrend := clamp(50 + trendDelta(stats.VisitsLast30Days, stats.VisitsPrior30Days)*10)
	paymentReliability := clamp(stats.OnTimePaymentRatio * 100)
	membershipTenure := clamp(float64(stats.MembershipAgeDays) / 365.0 * 100)
	engagementDepth := clamp(float64(stats.DistinctServices) / 5.0 * 100)

	overall := visitFrequency*weightVisitFrequency +
		visitRecency*weightVisitRecency +
		attendanceTrend*weightAttendanceTrend +
		paymentReliability*weightPaymentReliability +
		membershipTenure*weightMembershipTenure +
		engagementDepth*weightEngagementDepth

	newRisk := RiskLevel(overall)

	previous, err := s.repo.CurrentFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	factors, _ := json.Marshal(stats)

	score := &Score{
		UserID:             userID,
		VisitFrequency:     visitFrequency,
		VisitRecency:       visitRecency,
		AttendanceTrend:    attendanceTrend,
		PaymentReliability: paymentReliability,
		MembershipTenure:   membershipTenure,
		EngagementDepth:    engagementDepth,
		OverallScore:       overall,
		RiskLevel:          newRisk,
		FactorsRaw:         factors,
	}

	if previous != nil {
		if err := s.repo.FlipCurrentOff(ctx, userID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Insert(ctx, score); err != nil {
		return nil, err
	}

	if previous != nil && riskRank[newRisk] > riskRank[previous.RiskLevel] {
		alert := &ChurnAlert{
			UserID:       userID,
			PreviousRisk: previous.RiskLevel,
			NewRisk:      newRisk,
			FactorsRaw:   factors,
			Message: fmt.Sprintf(
				"Member's churn risk moved from %s to %s (score %.1f).",
				previous.RiskLevel, newRisk, overall,
			),
		}
		if err := s.repo.InsertChurnAlert(ctx, alert); err != nil {
			s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to record churn alert")
		}
	}

	return score, nil
}

// RefreshAll runs the daily engagement-refresh scheduler job's per-tenant
// unit: recompute every active member's score, logging and continuing
// past individual failures.
func (s *Service) RefreshAll(ctx context.Context, gymID string) error {
	return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
		userIDs, err := s.repo.ListActiveUserIDs(ctx)
		if err != nil {
			return err
		}
		for _, userID := range userIDs {
			if _, err := s.RecomputeInTx(ctx, userID); err != nil {
				s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to recompute engagement score")
			}
		}
		return nil
	})
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// trendDelta returns a signed ratio in roughly [-1, 1] comparing the
// last 30 days of visits against the prior 30, used to push
// attendanceTrend above or below its 50-point midpoint.
func trendDelta(last, prior int) float64 {
	if prior == 0 {
		if last == 0 {
			return 0
		}
		return 1
	}
	delta := float64(last-prior) / float64(prior)
	if delta > 1 {
		return 1
	}
	if delta < -1 {
		return -1
	}
	return delta
}
