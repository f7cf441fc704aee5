// Package store owns the in-memory collections of the ledger.
//
// Every mutation runs under one mutex and is followed by a synchronous save
// through the Persister. Save failures are logged and swallowed: memory stays
// authoritative until the next successful save.
package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
)

// UncategorizedName is shown for records whose category is missing or deleted.
const UncategorizedName = "Uncategorized"

// Persister is the load/save hook of the store.
type Persister interface {
	// Load returns the persisted state. Implementations fall back to empty
	// collections per key rather than failing the whole load.
	Load(ctx context.Context) (core.Snapshot, error)
	Save(ctx context.Context, snap core.Snapshot) error
}

type Store struct {
	mu        sync.Mutex
	state     core.Snapshot
	version   uint64
	persister Persister
	logger    *log.Logger
}

// New creates an empty store. Call Load to read persisted state.
func New(persister Persister, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Discard()
	}
	return &Store{
		state:     core.EmptySnapshot(),
		persister: persister,
		logger:    logger.WithComponent(log.ComponentStore),
	}
}

// Load replaces the in-memory state with the persisted one and seeds the
// default categories on first run. It never fails: a broken persister
// leaves the store empty with default settings.
func (s *Store) Load(ctx context.Context) (seeded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := core.EmptySnapshot()
	if s.persister != nil {
		loaded, err := s.persister.Load(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to load persisted state, starting empty",
				log.NewFields().WithOperation(log.OpLoad).WithError(err).ToSlice()...)
		} else {
			snap = loaded
		}
	}
	if err := snap.Settings.Validate(); err != nil {
		s.logger.WarnContext(ctx, "Persisted settings invalid, using defaults", log.FieldError, err)
		snap.Settings = core.DefaultSettings()
	}

	s.state = snap
	s.version++

	if len(s.state.Categories) == 0 {
		s.state.Categories = core.DefaultCategories()
		s.persistLocked(ctx)
		seeded = true
	}

	s.logger.InfoContext(ctx, "Store loaded",
		"expenses", len(s.state.Expenses),
		"incomes", len(s.state.Incomes),
		"investments", len(s.state.Investments),
		"subscriptions", len(s.state.Subscriptions),
		"saving_goals", len(s.state.SavingGoals),
		"manual_pls", len(s.state.ManualPLs),
		"categories", len(s.state.Categories))
	return seeded
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Version increases on every mutation; readers use it as a cache key.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Apply runs fn on the live state under the store lock. When fn reports a
// change the state is persisted once, which lets callers batch several edits.
func (s *Store) Apply(ctx context.Context, fn func(*core.Snapshot) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !fn(&s.state) {
		return false
	}
	s.persistLocked(ctx)
	return true
}

func (s *Store) Settings() core.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// UpdateSettings replaces the settings. Period boundaries change immediately
// for every record since nothing stores its period.
func (s *Store) UpdateSettings(ctx context.Context, settings core.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Settings = settings
	s.persistLocked(ctx)
	return nil
}

func (s *Store) LastPeriodKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.LastPeriodKey
}

func (s *Store) SetLastPeriodKey(ctx context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastPeriodKey = key
	s.persistLocked(ctx)
}

// persistLocked bumps the version and saves. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	s.version++
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.state.Clone()); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist state",
			log.NewFields().WithOperation(log.OpSave).WithError(err).ToSlice()...)
	}
}

type keyed interface {
	Key() uuid.UUID
}

func findRecord[T keyed](items []T, id uuid.UUID) (T, bool) {
	for _, it := range items {
		if it.Key() == id {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func replaceRecord[T keyed](items []T, item T) bool {
	for i := range items {
		if items[i].Key() == item.Key() {
			items[i] = item
			return true
		}
	}
	return false
}

func removeRecord[T keyed](items []T, id uuid.UUID) []T {
	out := items[:0]
	for _, it := range items {
		if it.Key() != id {
			out = append(out, it)
		}
	}
	return out
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
