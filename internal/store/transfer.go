package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
)

// ExportVersion is written into every export document.
const ExportVersion = 1

// ErrImportFailed wraps every reason an import was rejected.
var ErrImportFailed = errors.New("import failed")

// exportDocument is the portable backup format.
type exportDocument struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exportedAt"`
	Data       core.Snapshot `json:"data"`
}

// Export serializes every collection and the settings into one document.
func (s *Store) Export(ctx context.Context) ([]byte, error) {
	snap := s.Snapshot()
	doc := exportDocument{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
		Data:       snap,
	}
	blob, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	s.logger.InfoContext(ctx, "State exported", log.FieldOperation, log.OpExport, "bytes", len(blob))
	return blob, nil
}

// Import replaces the whole state with the document's contents. The document
// is decoded and validated first; on any error the store is left untouched.
func (s *Store) Import(ctx context.Context, blob []byte) error {
	var doc exportDocument
	if err := json.Unmarshal(blob, &doc); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrImportFailed, err)
	}
	if doc.Version < 1 || doc.Version > ExportVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrImportFailed, doc.Version)
	}
	if err := validateSnapshot(&doc.Data); err != nil {
		return fmt.Errorf("%w: %v", ErrImportFailed, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if doc.Data.LastPeriodKey == "" {
		doc.Data.LastPeriodKey = s.state.LastPeriodKey
	}
	s.state = doc.Data
	s.persistLocked(ctx)

	s.logger.InfoContext(ctx, "State imported",
		log.FieldOperation, log.OpImport,
		"expenses", len(doc.Data.Expenses),
		"incomes", len(doc.Data.Incomes),
		"saving_goals", len(doc.Data.SavingGoals))
	return nil
}

// validateSnapshot checks every record and the settings. Missing ids are
// assigned; duplicate ids within a collection are rejected.
func validateSnapshot(snap *core.Snapshot) error {
	if err := snap.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	if err := validateAll("expenses", snap.Expenses, func(e *core.Expense) (*uuid.UUID, error) { return &e.ID, e.Validate() }); err != nil {
		return err
	}
	if err := validateAll("incomes", snap.Incomes, func(i *core.Income) (*uuid.UUID, error) { return &i.ID, i.Validate() }); err != nil {
		return err
	}
	if err := validateAll("investments", snap.Investments, func(i *core.Investment) (*uuid.UUID, error) { return &i.ID, i.Validate() }); err != nil {
		return err
	}
	if err := validateAll("subscriptions", snap.Subscriptions, func(s *core.Subscription) (*uuid.UUID, error) { return &s.ID, s.Validate() }); err != nil {
		return err
	}
	if err := validateAll("savingGoals", snap.SavingGoals, func(g *core.SavingGoal) (*uuid.UUID, error) { return &g.ID, g.Validate() }); err != nil {
		return err
	}
	if err := validateAll("manualPLs", snap.ManualPLs, func(m *core.ManualPL) (*uuid.UUID, error) { return &m.ID, m.Validate() }); err != nil {
		return err
	}
	if err := validateAll("categories", snap.Categories, func(c *core.Category) (*uuid.UUID, error) { return &c.ID, c.Validate() }); err != nil {
		return err
	}

	seen := make(map[[2]int]bool, len(snap.ManualPLs))
	for _, m := range snap.ManualPLs {
		k := [2]int{m.Year, m.Month}
		if seen[k] {
			return fmt.Errorf("manualPLs: duplicate entry for %d-%02d", m.Year, m.Month)
		}
		seen[k] = true
	}
	return nil
}

func validateAll[T any](name string, items []T, check func(*T) (*uuid.UUID, error)) error {
	seen := make(map[uuid.UUID]bool, len(items))
	for i := range items {
		id, err := check(&items[i])
		if err != nil {
			return fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		ensureID(id)
		if seen[*id] {
			return fmt.Errorf("%s[%d]: duplicate id %s", name, i, *id)
		}
		seen[*id] = true
	}
	return nil
}
