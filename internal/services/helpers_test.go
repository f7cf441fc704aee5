package services

import (
	"context"
	"testing"
	"time"

	"pocketbook/internal/core"
	"pocketbook/internal/storage"
	"pocketbook/internal/store"
)

var march10 = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// newTestStore returns a loaded store backed by an in-memory persister.
func newTestStore(t *testing.T, settings core.Settings) *store.Store {
	t.Helper()
	st := store.New(storage.NewMemoryPersister(nil), nil)
	st.Load(context.Background())
	if err := st.UpdateSettings(context.Background(), settings); err != nil {
		t.Fatalf("UpdateSettings() error = %v", err)
	}
	return st
}

func payDaySettings(day int) core.Settings {
	s := core.DefaultSettings()
	s.ResetType = core.PayDay
	s.PayDay = day
	return s
}

// fixedClock returns a clock whose time can be moved by the test.
type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time { return c.now }

func newTestLedger(t *testing.T, settings core.Settings, clock *fixedClock, opts ...Option) *LedgerService {
	t.Helper()
	st := newTestStore(t, settings)
	opts = append([]Option{WithClock(clock.Now), WithLocation(time.UTC)}, opts...)
	return NewLedgerService(st, nil, opts...)
}
