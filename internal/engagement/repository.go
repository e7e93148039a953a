// Package engagement implements EngagementScore history and ChurnAlert:
// a per-user composite risk signal recomputed by the Attendance pipeline
// and the daily engagement-refresh scheduler job.
package engagement

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/errors"
)

type Score struct {
	ID                 string          `db:"id" json:"id"`
	UserID             string          `db:"user_id" json:"user_id"`
	VisitFrequency     float64         `db:"visit_frequency" json:"visit_frequency"`
	VisitRecency       float64         `db:"visit_recency" json:"visit_recency"`
	AttendanceTrend    float64         `db:"attendance_trend" json:"attendance_trend"`
	PaymentReliability float64         `db:"payment_reliability" json:"payment_reliability"`
	MembershipTenure   float64         `db:"membership_tenure" json:"membership_tenure"`
	EngagementDepth    float64         `db:"engagement_depth" json:"engagement_depth"`
	OverallScore       float64         `db:"overall_score" json:"overall_score"`
	RiskLevel          string          `db:"risk_level" json:"risk_level"`
	FactorsRaw         json.RawMessage `db:"factors" json:"factors"`
	IsCurrent          bool            `db:"is_current" json:"is_current"`
	CreatedAt          time.Time       `db:"created_at" json:"created_at"`
}

type ChurnAlert struct {
	ID           string          `db:"id" json:"id"`
	UserID       string          `db:"user_id" json:"user_id"`
	PreviousRisk string          `db:"previous_risk" json:"previous_risk"`
	NewRisk      string          `db:"new_risk" json:"new_risk"`
	FactorsRaw   json.RawMessage `db:"factors" json:"factors"`
	Message      string          `db:"message" json:"message"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// Repository methods assume ctx already carries a pinned tenant client.
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// CurrentFor returns the user's current engagement score row, if any.
func (r *Repository) CurrentFor(ctx context.Context, userID string) (*Score, error) {
	var s Score
	err := r.db.GetContext(ctx, &s, `
		SELECT id, user_id, visit_frequency, visit_recency, attendance_trend,
		       payment_reliability, membership_tenure, engagement_depth,
		       overall_score, risk_level, factors, is_current, created_at
		FROM engagement_scores WHERE user_id = $1 AND is_current = true
	`, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &s, err
}

// FlipCurrentOff marks the user's current row (if any) as no longer current.
func (r *Repository) FlipCurrentOff(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE engagement_scores SET is_current = false WHERE user_id = $1 AND is_current = true
	`, userID)
	return err
}

// Insert writes a new current engagement score row.
func (r *Repository) Insert(ctx context.Context, s *Score) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.IsCurrent = true
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO engagement_scores (
			id, user_id, visit_frequency, visit_recency, attendance_trend,
			payment_reliability, membership_tenure, engagement_depth,
			overall_score, risk_level, factors, is_current
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true)
		RETURNING created_at
	`, s.ID, s.UserID, s.VisitFrequency, s.VisitRecency, s.AttendanceTrend,
		s.PaymentReliability, s.MembershipTenure, s.EngagementDepth,
		s.OverallScore, s.RiskLevel, s.FactorsRaw)
	return row.Scan(&s.CreatedAt)
}

func (r *Repository) InsertChurnAlert(ctx context.Context, a *ChurnAlert) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	row := r.db.QueryRowxContext(ctx, `
		INSERT INTO churn_alerts (id, user_id, previous_risk, new_risk, factors, message)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, a.ID, a.UserID, a.PreviousRisk, a.NewRisk, a.FactorsRaw, a.Message)
	return row.Scan(&a.CreatedAt)
}

// History returns a user's engagement score series, most recent first.
func (r *Repository) History(ctx context.Context, userID string, limit int) ([]*Score, error) {
	var rows []*Score
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, user_id, visit_frequency, visit_recency, attendance_trend,
		       payment_reliability, membership_tenure, engagement_depth,
		       overall_score, risk_level, factors, is_current, created_at
		FROM engagement_scores WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2
	`, userID, limit)
	return rows, err
}

// attendanceStats is the raw counters the sub-score formulas are derived from.
type attendanceStats struct {
	VisitsLast30Days   int     `db:"visits_last30_days"`
	VisitsPrior30Days  int     `db:"visits_prior30_days"`
	DaysSinceLastVisit int     `db:"days_since_last_visit"`
	MembershipAgeDays  int     `db:"membership_age_days"`
	OnTimePaymentRatio float64 `db:"on_time_payment_ratio"`
	DistinctServices   int     `db:"distinct_services"`
}

func (r *Repository) AttendanceStats(ctx context.Context, userID string) (*attendanceStats, error) {
	var stats attendanceStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			COALESCE((SELECT COUNT(*) FROM attendances WHERE user_id = $1 AND check_in_at >= now() - interval '30 days'), 0) AS visits_last30_days,
			COALESCE((SELECT COUNT(*) FROM attendances WHERE user_id = $1 AND check_in_at >= now() - interval '60 days' AND check_in_at < now() - interval '30 days'), 0) AS visits_prior30_days,
			COALESCE((SELECT EXTRACT(DAY FROM now() - MAX(check_in_at))::int FROM attendances WHERE user_id = $1), 9999) AS days_since_last_visit,
			COALESCE((SELECT EXTRACT(DAY FROM now() - MIN(start_date))::int FROM memberships WHERE user_id = $1), 0) AS membership_age_days,
			COALESCE((SELECT AVG(CASE WHEN paid_at <= due_date THEN 1.0 ELSE 0.0 END) FROM payments WHERE user_id = $1), 1.0) AS on_time_payment_ratio,
			COALESCE((SELECT COUNT(DISTINCT service_type) FROM attendances WHERE user_id = $1), 0) AS distinct_services
	`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "ATTENDANCE_STATS_QUERY_FAILED", "loading attendance stats", http.StatusInternalServerError)
	}
	return &stats, nil
}

// ListActiveUserIDs returns every user with an active membership — the
// daily engagement-refresh scheduler job's working set.
func (r *Repository) ListActiveUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT user_id FROM memberships WHERE status = 'active'
	`)
	return ids, err
}
