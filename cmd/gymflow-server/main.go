package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gymflow/gymflow-backend/internal/achievement"
	"github.com/gymflow/gymflow-backend/internal/attendance"
	"github.com/gymflow/gymflow-backend/internal/authn"
	authnrepo "github.com/gymflow/gymflow-backend/internal/authn/repository"
	"github.com/gymflow/gymflow-backend/internal/challenge"
	"github.com/gymflow/gymflow-backend/internal/engagement"
	"github.com/gymflow/gymflow-backend/internal/loyalty"
	"github.com/gymflow/gymflow-backend/internal/membership"
	"github.com/gymflow/gymflow-backend/internal/migration"
	"github.com/gymflow/gymflow-backend/internal/notify"
	"github.com/gymflow/gymflow-backend/internal/pipelines"
	"github.com/gymflow/gymflow-backend/internal/platform"
	"github.com/gymflow/gymflow-backend/internal/reqctx"
	"github.com/gymflow/gymflow-backend/internal/scheduler"
	"github.com/gymflow/gymflow-backend/internal/staffsalary"
	"github.com/gymflow/gymflow-backend/internal/tenantreg"
	"github.com/gymflow/gymflow-backend/internal/user"
	"github.com/gymflow/gymflow-backend/pkg/config"
	"github.com/gymflow/gymflow-backend/pkg/database"
	"github.com/gymflow/gymflow-backend/pkg/httputil"
	"github.com/gymflow/gymflow-backend/pkg/logger"
)

func main() {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("gymflow-server", cfg.Server.Environment)
	log.Info().Msg("starting GymFlow server")

	// The direct (non-pooling-proxy) connection string: session-level
	// search_path pins set by the Tenant Connection Broker and the
	// Request Context Middleware must survive for the life of a
	// transaction or request (spec.md §4.1).
	db, err := database.New(&cfg.DirectDatabase, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	mainSteps := migration.MainSteps
	tenantSteps := migration.TenantSteps
	engine := migration.NewEngine(db, mainSteps, tenantSteps, log)

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := engine.ApplyMain(bootCtx); err != nil {
		bootCancel()
		log.Fatal().Err(err).Msg("failed to apply main-schema migrations")
	}
	bootCancel()

	tenants := tenantreg.NewRegistry(db, engine, log)

	reconcileCtx, reconcileCancel := context.WithTimeout(context.Background(), 60*time.Second)
	if err := tenants.Reconcile(reconcileCtx); err != nil {
		log.Error().Err(err).Msg("tenant reconciliation failed at startup; continuing")
	}
	reconcileCancel()

	// --- wire every module ---

	platformRepo := platform.NewRepository(db)
	platformSvc := platform.NewService(db, platformRepo, tenants)
	platformHandler := platform.NewHandler(platformSvc)

	userRepo := user.NewRepository(db)
	userSvc := user.NewService(db, userRepo)
	userHandler := user.NewHandler(userSvc)

	authnSessions := authnrepo.NewSessionRepository(db)
	authnSvc := authn.NewService(platformSvc, userSvc, authnSessions, authn.BcryptComparer{}, &cfg.JWT, log)
	authnHandler := authn.NewHandler(authnSvc)

	attendanceRepo := attendance.NewRepository(db)
	attendanceSvc := attendance.NewService(db, attendanceRepo)

	challengeSvc := challenge.NewService(db, challenge.NewRepository(db))
	challengeHandler := challenge.NewHandler(challengeSvc, log)

	achievementSvc := achievement.NewService(db, achievement.NewRepository(db))
	achievementHandler := achievement.NewHandler(achievementSvc, log)

	loyaltySvc := loyalty.NewService(db, loyalty.NewRepository(db), log)

	engagementRepo := engagement.NewRepository(db)
	engagementSvc := engagement.NewService(db, engagementRepo, log)
	engagementHandler := engagement.NewHandler(db, engagementRepo, log)

	attendancePipeline := pipelines.NewAttendancePipeline(db, attendanceSvc, challengeSvc, achievementSvc, loyaltySvc, engagementSvc, log)
	attendanceHandler := attendance.NewHandler(attendanceSvc, attendancePipeline, log)

	membershipRepo := membership.NewRepository(db)
	membershipSvc := membership.NewService(db, membershipRepo)
	membershipLifecycle := pipelines.NewMembershipLifecyclePipeline(db, membershipSvc, log)
	membershipHandler := membership.NewHandler(membershipSvc, membershipLifecycle)

	notifyHub := notify.NewHub(log)
	notifyRepo := notify.NewRepository(db)
	notifySvc := notify.NewService(db, notifyRepo, notifyHub)
	notifyHandler := notify.NewHandler(notifySvc, notifyHub, log)

	staffSalaryRepo := staffsalary.NewRepository(db)
	staffSalarySvc := staffsalary.NewService(db, staffSalaryRepo, userSvc)
	staffSalaryHandler := staffsalary.NewHandler(staffSalarySvc)

	sched := scheduler.New(db, tenants, staffSalarySvc, loyaltySvc, engagementSvc, membershipLifecycle, log)
	if cfg.Scheduler.Enabled {
		sched.Start()
		defer sched.Stop()
	}

	// --- HTTP surface ---

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "x-user-id"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "gymflow-server",
			"database": db.Health(r.Context()),
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", authnHandler.Login)
		r.Post("/refresh", authnHandler.Refresh)
		r.Post("/logout", authnHandler.Logout)
		r.With(authn.Authenticate(authnSvc.Manager())).Get("/me", authnHandler.Me)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authn.Authenticate(authnSvc.Manager()))
		r.Use(reqctx.Middleware(db, db, log))

		r.Route("/platform", func(r chi.Router) {
			r.Use(authn.RequireRole("superadmin"))
			r.Post("/tenants", platformHandler.RegisterTenant)
			r.Get("/tenants", platformHandler.ListTenants)
			r.Get("/tenants/{id}", platformHandler.GetTenant)
			r.Delete("/tenants/{id}", platformHandler.DeactivateTenant)
			r.Post("/plans", platformHandler.CreateSubscriptionPlan)
			r.Get("/plans", platformHandler.ListSubscriptionPlans)
			r.Post("/tenants/{id}/subscription", platformHandler.SetTenantSubscription)
			r.Get("/notifications", platformHandler.ListSystemNotifications)
			r.Post("/notifications/{id}/read", platformHandler.MarkSystemNotificationRead)
			r.Get("/currencies", platformHandler.ListCurrencies)
		})

		r.Route("/support-tickets", func(r chi.Router) {
			r.Post("/", platformHandler.OpenSupportTicket)
			r.Get("/{id}", platformHandler.GetSupportTicket)
			r.Post("/{id}/messages", platformHandler.ReplyToSupportTicket)
			r.Post("/{id}/close", platformHandler.CloseSupportTicket)
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(authn.RequireGym)
			r.Get("/me", userHandler.Me)
			r.Post("/", userHandler.Create)
			r.Get("/", userHandler.List)
			r.Get("/{id}", userHandler.Get)
			r.Delete("/{id}", userHandler.Delete)
		})

		r.Route("/branches", func(r chi.Router) {
			r.Use(authn.RequireGym)
			r.Post("/", userHandler.CreateBranch)
			r.Get("/", userHandler.ListBranches)
		})

		r.Route("/attendances", func(r chi.Router) {
			r.Use(authn.RequireGym)
			r.Post("/", attendanceHandler.Mark)
			r.Get("/{id}", attendanceHandler.Get)
			r.Get("/", attendanceHandler.List)
		})

		r.Route("/memberships", func(r chi.Router) {
			r.Use(authn.RequireGym)
			r.Post("/", membershipHandler.Create)
			r.Get("/{id}", membershipHandler.Get)
			r.Get("/", membershipHandler.List)
			r.Post("/{id}/renew", membershipHandler.Renew)
			r.Post("/{id}/suspend", membershipHandler.Suspend)
			r.Post("/{id}/resume", membershipHandler.Resume)
			r.Post("/{id}/cancel", membershipHandler.Cancel)
		})

		r.Route("/challenges", func(r chi.Router) {
			r.Use(authn.RequireGym)
			r.Use(authn.RequireFeature(platformSvc, "gamification"))
			r.Post("/", challengeHandler.Create)
			r.Get("/{id}", challengeHandler.Get)
			r.Get("/", challengeHandler.List)
			r.Post("/{id}/join", challengeHandler.Join)
			r.Delete("/{id}", challengeHandler.Delete)
		})

		r.Route("/achievements", func(r chi.Router) {
			r.Use(authn.RequireGym)
			r.Use(authn.RequireFeature(platformSvc, "gamification"))
			r.Post("/", achievementHandler.Create)
			r.Get("/", achievementHandler.List)
			r.Delete("/{id}", achievementHandler.Delete)
		})

		r.Route("/engagement", func(r chi.Router) {
			r.Use(authn.RequireGym)
			r.Get("/current", engagementHandler.Current)
			r.Get("/history", engagementHandler.History)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(authn.RequireGym)
			r.Get("/", notifyHandler.List)
			r.Post("/{id}/read", notifyHandler.MarkAsRead)
			r.Post("/read-all", notifyHandler.MarkAllAsRead)
			r.Delete("/{id}", notifyHandler.Delete)
			r.Get("/ws", notifyHandler.ServeWS)
		})

		r.Route("/staff-salaries", func(r chi.Router) {
			r.Use(authn.RequireGym)
			r.Get("/{id}", staffSalaryHandler.Get)
			r.Get("/", staffSalaryHandler.List)
			r.Post("/{id}/settle", staffSalaryHandler.Settle)
		})
	})

	r.Post("/api/v1/contact", platformHandler.SubmitContactRequest)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
