package server

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/appraisal"
	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/core"
	"appraisal/internal/domain/finalreview"
	"appraisal/internal/domain/hierarchy"
	"appraisal/internal/domain/notifications"
	"appraisal/internal/domain/selfappraisal"
	"appraisal/internal/domain/template"
	"appraisal/internal/platform/config"
	cryptoutil "appraisal/internal/platform/crypto"
	"appraisal/internal/platform/db"
	"appraisal/internal/platform/email"
	"appraisal/internal/platform/jobs"
	"appraisal/internal/platform/metrics"
	"appraisal/internal/transport/http/api"
	appraisalhandler "appraisal/internal/transport/http/handlers/appraisals"
	audithandler "appraisal/internal/transport/http/handlers/audits"
	authhandler "appraisal/internal/transport/http/handlers/auth"
	corehandler "appraisal/internal/transport/http/handlers/core"
	finalreviewhandler "appraisal/internal/transport/http/handlers/finalreviews"
	notificationshandler "appraisal/internal/transport/http/handlers/notifications"
	selfappraisalhandler "appraisal/internal/transport/http/handlers/selfappraisals"
	templatehandler "appraisal/internal/transport/http/handlers/templates"
	"appraisal/internal/transport/http/middleware"
)

func Run() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("encryption key invalid: %v", err)
	}

	authStore := auth.NewStore(pool)
	auditSvc := audit.New(pool)
	coreStore := core.NewStore(pool)
	hierarchyStore := hierarchy.NewStore(pool)
	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom)

	templateSvc := template.NewService(template.NewStore(pool), auditSvc)
	appraisalSvc := appraisal.NewService(appraisal.NewStore(pool), coreStore, templateSvc, auditSvc, notifySvc)
	finalReviewSvc := finalreview.NewService(finalreview.NewStore(pool), appraisalSvc, coreStore, hierarchyStore, auditSvc, cryptoSvc, cfg.ReportDir)
	selfAppraisalSvc := selfappraisal.NewService(selfappraisal.NewStore(pool), hierarchyStore, auditSvc, notifySvc)

	collector := metrics.New()

	jobRunner := jobs.New(pool, cfg, hierarchyStore, notifySvc)
	jobRunner.Start(ctx)

	// Materialize the reporting closure at boot so supervisor access
	// checks work before the first scheduled rebuild.
	if _, err := hierarchyStore.Rebuild(ctx); err != nil {
		slog.Warn("initial closure rebuild failed", "err", err)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(120, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, auditSvc)
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/logout", authHandler.HandleLogout)

		corehandler.NewHandler(coreStore, authStore, auditSvc).RegisterRoutes(r)
		templatehandler.NewHandler(templateSvc, authStore).RegisterRoutes(r)
		appraisalhandler.NewHandler(appraisalSvc, authStore).RegisterRoutes(r)
		finalreviewhandler.NewHandler(finalReviewSvc, authStore).RegisterRoutes(r)
		selfappraisalhandler.NewHandler(selfAppraisalSvc, authStore).RegisterRoutes(r)
		audithandler.NewHandler(auditSvc, authStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifySvc).RegisterRoutes(r)

		if cfg.MetricsEnabled {
			r.With(middleware.RequirePermission(auth.PermSystemAdmin, authStore)).Get("/admin/metrics", func(w http.ResponseWriter, req *http.Request) {
				api.Success(w, collector.Snapshot(), middleware.GetRequestID(req.Context()))
			})
		}
		r.With(middleware.RequirePermission(auth.PermSystemAdmin, authStore)).Post("/admin/closure/rebuild", func(w http.ResponseWriter, req *http.Request) {
			result, err := jobRunner.RunNow(req.Context(), jobs.JobClosureRebuild, func(ctx context.Context) (any, error) {
				rows, err := hierarchyStore.Rebuild(ctx)
				return map[string]any{"closureRows": rows}, err
			})
			if err != nil {
				api.Fail(w, http.StatusInternalServerError, "closure_rebuild_failed", "closure rebuild failed", middleware.GetRequestID(req.Context()))
				return
			}
			api.Success(w, result, middleware.GetRequestID(req.Context()))
		})
	})

	slog.Info("appraisal server listening", "addr", cfg.Addr, "env", cfg.Environment)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
