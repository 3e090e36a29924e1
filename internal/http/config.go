package http

import (
	"github.com/mrlokans/mazo/internal/auth"
)

// RouterConfig holds the dependencies of the HTTP layer. Nil services leave
// their routes unregistered; a nil Admin middleware leaves the admin group
// unregistered.
type RouterConfig struct {
	Content   ContentService
	Decks     DeckComposer
	Learner   LearnerService
	Workspace WorkspaceProvisioner
	Leads     LeadService
	Speech    SpeechSynthesizer

	Intents    IntentLister
	Reconciler IntentReconciler
	TaskQueue  ReconcileEnqueuer

	Database Pinger
	Store    StoreChecker

	Admin          *auth.AdminMiddleware
	EnableHSTS     bool
	EnableMetrics  bool
	RequestLogging bool
	Version        string
}
