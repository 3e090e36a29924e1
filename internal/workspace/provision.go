package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/mrlokans/mazo/internal/apperr"
	"github.com/mrlokans/mazo/internal/entities"
	"github.com/mrlokans/mazo/internal/ids"
	"github.com/mrlokans/mazo/internal/storage"
	"github.com/mrlokans/mazo/internal/tables"
	"github.com/mrlokans/mazo/internal/validation"
)

const (
	opCreateTables  = "create_tables"
	opSeedWorkspace = "seed_workspace"
)

// Seed steps.
const (
	StepConfigWritten = "config_written"
	StepCatalogSeeded = "catalog_seeded"
)

type seedPayload struct {
	Owner string                `json:"owner"`
	Words []entities.MasterWord `json:"words"`
	Fresh bool                  `json:"fresh"`
}

// EnsureWorkspace creates every missing table and, on first use, records the
// owner in Config and seeds the catalog with seedWords.
//
// Seeding is bracketed by Config.seedStatus: pending before the first write
// and complete after the last. A workspace whose Config exists but whose seed
// never completed is resumed: only catalog words not already present are
// appended. Existing tables with a blank header row get their declared header
// written first. Calling it again after success writes nothing.
func (s *Service) EnsureWorkspace(ctx context.Context, ownerEmail string, seedWords []entities.MasterWord) (Result, error) {
	var result Result
	ownerEmail = strings.TrimSpace(ownerEmail)
	if err := validation.Email("email", ownerEmail); err != nil {
		return result, err
	}
	for _, w := range seedWords {
		if err := validation.Struct(w); err != nil {
			return result, err
		}
	}

	existing, err := s.store.ListTables(ctx)
	if err != nil {
		return result, fmt.Errorf("list tables: %w", err)
	}
	configExisted := slices.Contains(existing, tables.Config)

	if missing := storage.MissingSpecs(existing, tables.Specs()); len(missing) > 0 {
		created, err := s.store.EnsureTables(ctx, missing...)
		result.CreatedTables = created
		if err != nil {
			if len(created) > 0 {
				err = &apperr.PartialWriteError{Op: opCreateTables, Step: "write_headers", IDs: created, Err: err}
			} else {
				err = fmt.Errorf("create tables: %w", err)
			}
			log.Printf("[WORKSPACE] %v", err)
			s.audit.LogWorkspace(ownerEmail, created, 0, err)
			return result, err
		}
		log.Printf("[WORKSPACE] created tables: %v", created)
	}

	restored, err := s.restoreHeaders(ctx, existing)
	result.RestoredHeaders = restored
	if err != nil {
		if len(restored) > 0 {
			err = &apperr.PartialWriteError{Op: opCreateTables, Step: "write_headers", IDs: restored, Err: err}
		}
		s.audit.LogWorkspace(ownerEmail, result.CreatedTables, 0, err)
		return result, err
	}
	if len(restored) > 0 {
		log.Printf("[WORKSPACE] restored missing header rows: %v", restored)
	}

	fresh := !configExisted
	if !fresh {
		status, empty, err := s.seedStatus(ctx)
		if err != nil {
			return result, err
		}
		if !empty && status != SeedPending {
			return result, nil
		}
		fresh = empty
		result.Resumed = !empty
	}

	p := seedPayload{Owner: ownerEmail, Words: seedWords, Fresh: fresh}
	intent, err := s.intents.Begin(entities.IntentSeedWorkspace, ownerEmail, p)
	if err != nil {
		return result, fmt.Errorf("seed workspace: %w", err)
	}

	seeded, step, err := s.seed(ctx, intent.ID, p)
	result.SeededWords = seeded
	if err != nil {
		pw := &apperr.PartialWriteError{
			Op:       opSeedWorkspace,
			Step:     step,
			IntentID: intent.ID,
			IDs:      []string{ownerEmail},
			Err:      err,
		}
		log.Printf("[WORKSPACE] %v", pw)
		s.audit.LogWorkspace(ownerEmail, result.CreatedTables, seeded, pw)
		return result, pw
	}
	if err := s.intents.Complete(intent.ID); err != nil {
		log.Printf("[WORKSPACE] failed to complete intent %s: %v", intent.ID, err)
	}
	s.audit.LogWorkspace(ownerEmail, result.CreatedTables, seeded, nil)
	return result, nil
}

// Repair resumes a seed intent left pending by a failed EnsureWorkspace.
func (s *Service) Repair(ctx context.Context, intent *entities.WriteIntent) (entities.IntentStatus, error) {
	if intent.Operation != entities.IntentSeedWorkspace {
		return "", fmt.Errorf("intent %s: unexpected operation %s", intent.ID, intent.Operation)
	}
	var p seedPayload
	if err := decodePayload(intent, &p); err != nil {
		return entities.IntentStatusAbandoned, err
	}

	existing, err := s.store.ListTables(ctx)
	if err != nil {
		return "", fmt.Errorf("list tables: %w", err)
	}
	if _, err := s.restoreHeaders(ctx, existing); err != nil {
		return "", err
	}

	status, empty, err := s.seedStatus(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrTableNotFound) {
			return entities.IntentStatusAbandoned, err
		}
		return "", err
	}
	if !empty && status != SeedPending {
		return entities.IntentStatusReconciled, nil
	}
	p.Fresh = empty

	seeded, step, err := s.seed(ctx, intent.ID, p)
	if err != nil {
		return "", fmt.Errorf("resume seeding at step %s: %w", step, err)
	}
	log.Printf("[WORKSPACE] resumed seeding for %s: %d words appended", p.Owner, seeded)
	return entities.IntentStatusReconciled, nil
}

// seed runs the seeding steps. It returns the number of words appended and,
// on failure, the step that failed.
func (s *Service) seed(ctx context.Context, intentID string, p seedPayload) (int, string, error) {
	now := s.now().UTC()

	if p.Fresh {
		err := tables.Append(ctx, s.store, tables.Config,
			tables.ConfigRecord(KeyOwnerEmail, p.Owner, now),
			tables.ConfigRecord(KeyCreatedAt, tables.FormatTime(now), now),
			tables.ConfigRecord(KeySeedStatus, SeedPending, now),
		)
		if err != nil {
			return 0, "write_config", err
		}
		s.markStep(intentID, StepConfigWritten)
	}

	seeded, err := s.appendMissingWords(ctx, p.Words)
	if err != nil {
		return 0, "seed_catalog", err
	}
	s.markStep(intentID, StepCatalogSeeded)

	if err := s.setConfig(ctx, KeySeedStatus, SeedComplete, now); err != nil {
		return seeded, "mark_seed_complete", err
	}
	return seeded, "", nil
}

// appendMissingWords appends the seed words not already in the catalog,
// matching by id when one is given and by source/target text otherwise.
func (s *Service) appendMissingWords(ctx context.Context, words []entities.MasterWord) (int, error) {
	if len(words) == 0 {
		return 0, nil
	}
	catalog, err := tables.Load(ctx, s.store, tables.MasterWords)
	if err != nil {
		return 0, err
	}
	haveIDs := make(map[string]bool, catalog.Len())
	havePairs := make(map[string]bool, catalog.Len())
	for _, rec := range catalog.Records() {
		w := tables.MasterWordFromRecord(rec)
		haveIDs[w.ID] = true
		havePairs[pairKey(w)] = true
	}

	var records []tables.Record
	for _, w := range words {
		if (w.ID != "" && haveIDs[w.ID]) || havePairs[pairKey(w)] {
			continue
		}
		if w.ID == "" {
			w.ID = ids.NewContentID()
		}
		haveIDs[w.ID] = true
		havePairs[pairKey(w)] = true
		records = append(records, tables.MasterWordToRecord(w))
	}
	if err := tables.AppendWith(ctx, s.store, tables.MasterWords, catalog.Header, records...); err != nil {
		return 0, err
	}
	return len(records), nil
}

// seedStatus returns the seedStatus value of Config and whether Config has no
// rows at all. Config rows without a seedStatus key come from workspaces set
// up by hand and count as complete.
func (s *Service) seedStatus(ctx context.Context) (string, bool, error) {
	config, err := tables.Load(ctx, s.store, tables.Config)
	if err != nil {
		return "", false, fmt.Errorf("read config: %w", err)
	}
	if config.Len() == 0 {
		return "", true, nil
	}
	if i := config.Find(func(r tables.Record) bool { return r["key"] == KeySeedStatus }); i >= 0 {
		return config.Record(i)["value"], false, nil
	}
	return SeedComplete, false, nil
}

// setConfig overwrites the value of key in Config, appending the row if absent.
func (s *Service) setConfig(ctx context.Context, key, value string, now time.Time) error {
	config, err := tables.Load(ctx, s.store, tables.Config)
	if err != nil {
		return err
	}
	i := config.Find(func(r tables.Record) bool { return r["key"] == key })
	if i < 0 {
		return tables.AppendWith(ctx, s.store, tables.Config, config.Header, tables.ConfigRecord(key, value, now))
	}
	updates, _ := config.Header.Update(config.AbsoluteRow(i), tables.Record{"value": value, "updatedAt": tables.FormatTime(now)})
	return s.store.BatchUpdate(ctx, tables.Config, updates)
}

func (s *Service) markStep(intentID, step string) {
	if err := s.intents.MarkStep(intentID, step); err != nil {
		log.Printf("[WORKSPACE] failed to record step %s of intent %s: %v", step, intentID, err)
	}
}

func decodePayload(intent *entities.WriteIntent, v any) error {
	if err := json.Unmarshal([]byte(intent.Payload), v); err != nil {
		return fmt.Errorf("decode intent %s: %w", intent.ID, err)
	}
	return nil
}

func pairKey(w entities.MasterWord) string {
	return strings.ToLower(strings.TrimSpace(w.SourceText)) + "\x00" + strings.ToLower(strings.TrimSpace(w.TargetText))
}
