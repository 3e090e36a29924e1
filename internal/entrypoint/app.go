package entrypoint

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/mazo/internal/audit"
	"github.com/mrlokans/mazo/internal/config"
	"github.com/mrlokans/mazo/internal/content"
	"github.com/mrlokans/mazo/internal/database"
	auditrepo "github.com/mrlokans/mazo/internal/database/audit"
	"github.com/mrlokans/mazo/internal/database/intents"
	"github.com/mrlokans/mazo/internal/decks"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/leads"
	"github.com/mrlokans/mazo/internal/learner"
	"github.com/mrlokans/mazo/internal/reconcile"
	"github.com/mrlokans/mazo/internal/speech"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/tasks"
	"github.com/mrlokans/mazo/internal/workspace"
)

// App holds the store, the local database and every service built on them.
// The HTTP server and the CLI commands share it.
type App struct {
	Config *config.Config
	Store  storage.Client
	DB     *database.Database

	Intents   *intents.Repository
	AuditRepo *auditrepo.Repository
	Audit     *audit.Service

	Content    *content.Service
	Decks      *decks.Service
	Learner    *learner.Service
	Workspace  *workspace.Service
	Leads      *leads.Service
	Speech     *speech.Client
	Reconciler *reconcile.Reconciler
}

// NewApp validates cfg and wires the services. Close releases the database.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := NewStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, store, db), nil
}

func newApp(cfg *config.Config, store storage.Client, db *database.Database) *App {
	intentRepo := intents.NewRepository(db.DB)
	auditRepo := auditrepo.NewRepository(db.DB)
	auditSvc := audit.NewService(auditRepo)

	app := &App{
		Config:    cfg,
		Store:     store,
		DB:        db,
		Intents:   intentRepo,
		AuditRepo: auditRepo,
		Audit:     auditSvc,
		Content:   content.NewService(store, auditSvc),
		Decks:     decks.NewService(store, intentRepo, nil, auditSvc),
		Learner:   learner.NewService(store),
		Workspace: workspace.NewService(store, intentRepo, auditSvc),
		Leads:     leads.NewService(store, auditSvc),
		Speech:    speech.NewClient(cfg.Speech.BaseURL, cfg.Speech.APIKey),
	}

	app.Reconciler = reconcile.New(intentRepo, auditSvc, cfg.Reconcile.MaxAttempts)
	app.Reconciler.Register(entities.IntentCreateDeck, app.Decks)
	app.Reconciler.Register(entities.IntentSeedWorkspace, app.Workspace)
	return app
}

// Provision creates the workspace tables and seeds the catalog from the
// configured seed file, if any.
func (a *App) Provision(ctx context.Context) (workspace.Result, error) {
	var words []entities.MasterWord
	if path := a.Config.Workspace.SeedFile; path != "" {
		var err error
		if words, err = workspace.LoadSeedFile(path); err != nil {
			return workspace.Result{}, err
		}
		log.Printf("[WORKSPACE] Loaded %d seed words from %s", len(words), path)
	}
	result, err := a.Workspace.EnsureWorkspace(ctx, a.Config.Workspace.OwnerEmail, words)
	if err != nil {
		return result, fmt.Errorf("provision workspace: %w", err)
	}
	return result, nil
}

// EnqueueCleanup runs the history cleanup inline. It stands in for the task
// queue when background tasks are disabled.
func (a *App) EnqueueCleanup(ctx context.Context, retentionDays int) error {
	return tasks.CleanupProcessor(a.AuditRepo, a.Intents)(ctx, tasks.CleanupTask{RetentionDays: retentionDays})
}

func (a *App) Close() error {
	a.Audit.Wait()
	return a.DB.Close()
}
