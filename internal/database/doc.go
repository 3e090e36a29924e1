// Package database provides the local bookkeeping store of the service.
//
// The tabular store offers no transactions, so multi-step writes against it
// are tracked here in a write-intent log and repaired by the reconciler. The
// audit trail of mutating operations is kept alongside.
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── intents/         # Write-intent log (saga entries)
//	└── audit/           # Audit events
//
// Each sub-package provides a Repository type constructed from the shared
// *gorm.DB:
//
//	db, err := database.NewDatabase("./mazo.db")
//	intentsRepo := intents.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
// Compile-time interface checks live in internal/interfaces.
package database
