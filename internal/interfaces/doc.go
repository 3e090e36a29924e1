// Package interfaces documents the core abstractions used throughout the application.
//
// # Tabular Store
//
//   - storage.Client: the narrow row/range API every backend implements
//     (internal/storage/client.go). Implementations: googlesheets, xlsx, memory.
//     Decorators: WithTimeout, WithRetry, WithMetrics.
//
// # Services
//
// The HTTP layer depends on small per-controller interfaces declared in
// internal/http/stores.go (ContentService, DeckComposer, LearnerService,
// WorkspaceProvisioner, LeadService, SpeechSynthesizer, IntentLister,
// IntentReconciler).
//
// # Write Intents
//
// Multi-step writes record their progress in the local write-intent log:
//
//   - decks.IntentLog / workspace.IntentLog: Begin, MarkStep, Complete, Fail
//   - reconcile.IntentStore: what the reconciler reads and resolves
//   - reconcile.Repairer: completes one kind of intent (decks, workspace)
//   - decks.RepairQueue: schedules a delayed repair (tasks.Client)
//
// # Background Work
//
//   - tasks.IntentReconciler: processed by the reconcile_intent and
//     reconcile_all queues
//   - scheduler.Scanner / scheduler.CleanupEnqueuer: driven by cron
//
// Compile-time checks for all of the above live in checks.go.
package interfaces
