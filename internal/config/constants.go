package config

const (
	// DefaultDatabasePath is the default path of the local intent and audit database.
	DefaultDatabasePath = "./mazo.db"

	// DefaultXLSXPath is the default workbook used by the xlsx store backend.
	DefaultXLSXPath = "./mazo-workspace.xlsx"

	StoreBackendGoogle = "google"
	StoreBackendXLSX   = "xlsx"
	StoreBackendMemory = "memory"
)
