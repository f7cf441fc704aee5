package storage

import (
	"context"
	"sync"

	"pocketbook/internal/core"
	"pocketbook/internal/log"
)

// MemoryPersister keeps encoded payloads in a map. It goes through the same
// codec as the SQLite persister, which makes it useful in tests.
type MemoryPersister struct {
	mu       sync.RWMutex
	payloads map[string][]byte
	logger   *log.Logger
}

func NewMemoryPersister(logger *log.Logger) *MemoryPersister {
	if logger == nil {
		logger = log.Discard()
	}
	return &MemoryPersister{
		payloads: make(map[string][]byte),
		logger:   logger.WithComponent(log.ComponentStorage),
	}
}

func (m *MemoryPersister) Load(_ context.Context) (core.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Decode(m.payloads, m.logger), nil
}

func (m *MemoryPersister) Save(_ context.Context, snap core.Snapshot) error {
	payloads, err := Encode(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range payloads {
		m.payloads[k] = v
	}
	return nil
}

// SetRaw overwrites one key's payload without going through the codec.
func (m *MemoryPersister) SetRaw(key string, payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads[key] = append([]byte(nil), payload...)
}

// Raw returns a copy of one key's payload.
func (m *MemoryPersister) Raw(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.payloads[key]
	return append([]byte(nil), v...), ok
}

func (m *MemoryPersister) Close() error {
	return nil
}
