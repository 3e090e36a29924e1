package entrypoint

import (
	"context"
	"fmt"
	"log"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/config"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/storage/providers/googlesheets"
	"github.com/mrlokans/mazo/internal/storage/providers/memory"
	"github.com/mrlokans/mazo/internal/storage/providers/xlsx"
)

// NewStore builds the tabular store selected by cfg.Store.Backend and wraps it
// with the per-call timeout, retry policy and metrics.
func NewStore(ctx context.Context, cfg *config.Config) (storage.Client, error) {
	var base storage.Client
	switch cfg.Store.Backend {
	case config.StoreBackendGoogle:
		client, err := googlesheets.NewClient(ctx, cfg.Google.SpreadsheetID, googlesheets.Credentials{
			ClientEmail: cfg.Google.ServiceAccountEmail,
			PrivateKey:  cfg.Google.PrivateKey,
		})
		if err != nil {
			return nil, fmt.Errorf("google sheets store: %w", err)
		}
		base = client
	case config.StoreBackendXLSX:
		base = xlsx.NewClient(cfg.XLSX.Path)
	case config.StoreBackendMemory:
		log.Printf("[STORE] Using in-memory store, data is lost on exit")
		base = memory.NewClient()
	default:
		return nil, &apperr.ConfigurationError{Key: "STORE_BACKEND", Message: fmt.Sprintf("unknown backend %q", cfg.Store.Backend)}
	}

	client := storage.WithTimeout(base, cfg.Store.CallTimeout)
	client = storage.WithRetry(client, storage.RetryConfig{
		MaxRetries:      cfg.Store.MaxRetries,
		InitialInterval: cfg.Store.InitialBackoff,
		MaxInterval:     cfg.Store.MaxBackoff,
	})
	log.Printf("[STORE] Backend %s ready", cfg.Store.Backend)
	return storage.WithMetrics(client), nil
}
