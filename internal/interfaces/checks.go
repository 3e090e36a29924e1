package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/mazo/internal/content"
	"github.com/mrlokans/mazo/internal/database"
	"github.com/mrlokans/mazo/internal/database/intents"
	"github.com/mrlokans/mazo/internal/decks"
	"github.com/mrlokans/mazo/internal/entrypoint"
	"github.com/mrlokans/mazo/internal/http"
	"github.com/mrlokans/mazo/internal/leads"
	"github.com/mrlokans/mazo/internal/learner"
	"github.com/mrlokans/mazo/internal/reconcile"
	"github.com/mrlokans/mazo/internal/scheduler"
	"github.com/mrlokans/mazo/internal/speech"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/storage/providers/googlesheets"
	"github.com/mrlokans/mazo/internal/storage/providers/memory"
	"github.com/mrlokans/mazo/internal/storage/providers/xlsx"
	"github.com/mrlokans/mazo/internal/tasks"
	"github.com/mrlokans/mazo/internal/workspace"
)

// =============================================================================
// Tabular Store
// =============================================================================

var _ storage.Client = (*googlesheets.Client)(nil)
var _ storage.Client = (*xlsx.Client)(nil)
var _ storage.Client = (*memory.Client)(nil)

// =============================================================================
// Services behind the HTTP layer
// =============================================================================

var _ http.ContentService = (*content.Service)(nil)
var _ http.DeckComposer = (*decks.Service)(nil)
var _ http.LearnerService = (*learner.Service)(nil)
var _ http.WorkspaceProvisioner = (*workspace.Service)(nil)
var _ http.LeadService = (*leads.Service)(nil)
var _ http.SpeechSynthesizer = (*speech.Client)(nil)
var _ http.IntentLister = (*intents.Repository)(nil)
var _ http.IntentReconciler = (*reconcile.Reconciler)(nil)
var _ http.ReconcileEnqueuer = (*tasks.Client)(nil)
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Write Intents and Reconciliation
// =============================================================================

var _ decks.IntentLog = (*intents.Repository)(nil)
var _ workspace.IntentLog = (*intents.Repository)(nil)
var _ decks.RepairQueue = (*tasks.Client)(nil)
var _ reconcile.IntentStore = (*intents.Repository)(nil)
var _ reconcile.Repairer = (*decks.Service)(nil)
var _ reconcile.Repairer = (*workspace.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.IntentReconciler = (*reconcile.Reconciler)(nil)
var _ tasks.IntentCleaner = (*intents.Repository)(nil)
var _ scheduler.Scanner = (*reconcile.Reconciler)(nil)
var _ scheduler.CleanupEnqueuer = (*tasks.Client)(nil)
var _ scheduler.CleanupEnqueuer = (*entrypoint.App)(nil)
