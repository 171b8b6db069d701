package store

import (
	"context"
	"sync"

	"pocketpoker/internal/season"
)

type memoryEntry struct {
	version int64
	doc     []byte
}

// Memory keeps encoded documents in a map. Values are stored as JSON so callers
// never share memory with the store.
type Memory struct {
	mu   sync.Mutex
	docs map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{docs: map[string]memoryEntry{}}
}

func (m *Memory) Get(_ context.Context, id string) (*season.Season, error) {
	m.mu.Lock()
	e, ok := m.docs[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(e.doc)
}

func (m *Memory) Create(_ context.Context, s *season.Season) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[s.SeasonID]; ok {
		return ErrExists
	}
	m.docs[s.SeasonID] = memoryEntry{version: s.Version, doc: b}
	return nil
}

func (m *Memory) Save(_ context.Context, s *season.Season, prev int64) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[s.SeasonID]
	if !ok {
		return ErrNotFound
	}
	if cur.version != prev {
		return ErrVersionMismatch
	}
	m.docs[s.SeasonID] = memoryEntry{version: s.Version, doc: b}
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}
