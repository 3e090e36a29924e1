package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/mazo/internal/auth"
	"github.com/mrlokans/mazo/internal/config"
	http_controllers "github.com/mrlokans/mazo/internal/http"
	"github.com/mrlokans/mazo/internal/scheduler"
	"github.com/mrlokans/mazo/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (stops the scheduler and task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Mazo v%s", version)

	ctx := context.Background()
	app, err := NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if cfg.Workspace.ProvisionOnStart && cfg.Workspace.OwnerEmail != "" {
		result, err := app.Provision(ctx)
		if err != nil {
			log.Printf("WARNING: workspace provisioning failed: %v", err)
		} else {
			log.Printf("[WORKSPACE] Ready: created %d tables, seeded %d words", len(result.CreatedTables), result.SeededWords)
		}
	}
	if err := app.Workspace.ValidateSchemas(ctx); err != nil {
		log.Printf("WARNING: workspace schema check failed: %v", err)
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.Config{
			Workers:           cfg.Tasks.Workers,
			RepairDelay:       cfg.Tasks.RepairDelay,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		})
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewReconcileIntentQueue(app.Reconciler),
			tasks.NewReconcileAllQueue(app.Reconciler),
			tasks.NewCleanupQueue(app.AuditRepo, app.Intents),
		)
		app.Decks.SetRepairQueue(taskClient)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	var reconcileScheduler *scheduler.ReconcileScheduler
	if cfg.Reconcile.Enabled {
		var cleanup scheduler.CleanupEnqueuer = app
		if taskClient != nil {
			cleanup = taskClient
		}
		reconcileScheduler = scheduler.NewReconcileScheduler(app.Reconciler, cleanup, scheduler.Config{
			Schedule:        cfg.Reconcile.Schedule,
			MinAge:          cfg.Reconcile.MinAge,
			CleanupSchedule: cfg.Reconcile.CleanupSchedule,
			RetentionDays:   cfg.Audit.RetentionDays,
		})
		if err := reconcileScheduler.Start(context.Background()); err != nil {
			log.Printf("WARNING: reconcile scheduler not started: %v", err)
			reconcileScheduler = nil
		}
	}

	var limiter *auth.RateLimiter
	if cfg.Admin.TokenHash != "" {
		limiter = auth.NewRateLimiter(auth.RateLimitConfig{
			MaxAttempts:     cfg.Admin.MaxLoginAttempts,
			WindowDuration:  cfg.Admin.RateLimitWindow,
			LockoutDuration: cfg.Admin.LockoutDuration,
		})
	} else {
		log.Printf("WARNING: ADMIN_TOKEN_HASH is not set. Admin endpoints will refuse every request (see the hash-token command).")
	}
	adminMiddleware := auth.NewAdminMiddleware(cfg.Admin.TokenHash, limiter)

	routerCfg := http_controllers.RouterConfig{
		Content:        app.Content,
		Decks:          app.Decks,
		Learner:        app.Learner,
		Workspace:      app.Workspace,
		Leads:          app.Leads,
		Speech:         app.Speech,
		Intents:        app.Intents,
		Reconciler:     app.Reconciler,
		Database:       app.DB,
		Store:          app.Store,
		Admin:          adminMiddleware,
		EnableHSTS:     true,
		EnableMetrics:  true,
		RequestLogging: true,
		Version:        version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if reconcileScheduler != nil {
			reconcileScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		if limiter != nil {
			limiter.Stop()
		}
	}

	Serve(router, cfg, onShutdown)
}
