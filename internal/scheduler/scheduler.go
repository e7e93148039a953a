// Package scheduler drives the six recurring tenant-wide jobs spec.md
// §4.10 names: a single cron.Cron instance iterating
// tenantreg.Registry.ListActive and running each job under WithTenant
// for every active gym. Grounded on
// _examples/Tesseract-Nexus-global-services/audit-service/internal/
// scheduler/cleanup.go's robfig/cron driver shape: cron.New, a
// mutex-guarded Start/Stop, and per-tenant errors logged rather than
// aborting the sweep.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gymflow/gymflow-backend/internal/engagement"
	"github.com/gymflow/gymflow-backend/internal/loyalty"
	"github.com/gymflow/gymflow-backend/internal/pipelines"
	"github.com/gymflow/gymflow-backend/internal/staffsalary"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

// TenantLister is the subset of tenantreg.Registry the scheduler needs;
// narrowed to an interface so a job can be unit-tested against a fake
// tenant list instead of a full Registry.
type TenantLister interface {
	ListActive(ctx context.Context) ([]string, error)
}

type Scheduler struct {
	db         *database.DB
	tenants    TenantLister
	staffSal   *staffsalary.Service
	loyalty    *loyalty.Service
	engagement *engagement.Service
	membership *pipelines.MembershipLifecyclePipeline
	logger     *logger.Logger

	cron *cron.Cron
	mu   sync.Mutex
}

func New(
	db *database.DB,
	tenants TenantLister,
	staffSal *staffsalary.Service,
	loyaltySvc *loyalty.Service,
	engagementSvc *engagement.Service,
	membershipPipeline *pipelines.MembershipLifecyclePipeline,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		db:         db,
		tenants:    tenants,
		staffSal:   staffSal,
		loyalty:    loyaltySvc,
		engagement: engagementSvc,
		membership: membershipPipeline,
		logger:     log,
	}
}

// Start registers and starts the six standard jobs from spec.md §4.10.
// cron.SkipIfStillRunning is the single-process stand-in for the
// leader-lock concurrency control the spec calls for: at most one
// instance of each job runs at a time.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	skipLogger := cron.VerbosePrintfLogger(schedulerLogAdapter{s.logger})
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(skipLogger)))

	s.cron.AddFunc("0 0 1 * *", s.runRecurringSalaries)
	s.cron.AddFunc("0 1 * * *", s.runLoyaltyExpiry)
	s.cron.AddFunc("0 2 * * *", s.runTierRecomputation)
	s.cron.AddFunc("0 3 * * *", s.runEngagementRefresh)
	s.cron.AddFunc("0 * * * *", s.runMembershipExpirySweep)
	s.cron.AddFunc("30 * * * *", s.runMembershipExpiryNotifications)

	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron == nil {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Scheduler) forEachTenant(jobName string, fn func(ctx context.Context, gymID string) error) {
	ctx := context.Background()
	gymIDs, err := s.tenants.ListActive(ctx)
	if err != nil {
		s.logger.Error().Err(err).Str("job", jobName).Msg("scheduler: failed to list active tenants")
		return
	}
	for _, gymID := range gymIDs {
		if err := fn(ctx, gymID); err != nil {
			s.logger.Error().Err(err).Str("job", jobName).Str("gym_id", gymID).Msg("scheduler: per-tenant job failed")
		}
	}
}

func (s *Scheduler) runRecurringSalaries() {
	now := time.Now()
	s.forEachTenant("recurring_salaries", func(ctx context.Context, gymID string) error {
		_, err := s.staffSal.GenerateRecurring(ctx, gymID, int(now.Month()), now.Year())
		return err
	})
}

func (s *Scheduler) runLoyaltyExpiry() {
	now := time.Now()
	s.forEachTenant("loyalty_expiry", func(ctx context.Context, gymID string) error {
		return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
			return s.loyalty.ExpirePoints(ctx, now)
		})
	})
}

func (s *Scheduler) runTierRecomputation() {
	s.forEachTenant("tier_recomputation", func(ctx context.Context, gymID string) error {
		return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
			return s.loyalty.RecomputeAllTiers(ctx)
		})
	})
}

func (s *Scheduler) runEngagementRefresh() {
	s.forEachTenant("engagement_refresh", func(ctx context.Context, gymID string) error {
		return s.engagement.RefreshAll(ctx, gymID)
	})
}

func (s *Scheduler) runMembershipExpirySweep() {
	s.forEachTenant("membership_expiry_sweep", func(ctx context.Context, gymID string) error {
		return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
			_, err := s.membership.RunExpirySweepInTx(ctx)
			return err
		})
	})
}

func (s *Scheduler) runMembershipExpiryNotifications() {
	s.forEachTenant("membership_expiry_notifications", func(ctx context.Context, gymID string) error {
		return s.db.WithTenant(ctx, gymID, func(ctx context.Context) error {
			return s.membership.RunExpiryNotificationsInTx(ctx, gymID)
		})
	})
}

// schedulerLogAdapter routes cron's internal diagnostics (job-skipped,
// job-panicked) through the zerolog-backed logger everything else uses.
type schedulerLogAdapter struct {
	log *logger.Logger
}

func (a schedulerLogAdapter) Printf(format string, args ...interface{}) {
	a.log.Info().Msgf(format, args...)
}
