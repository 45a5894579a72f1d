package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps sessions in process memory. Sessions are stored encoded
// so callers never share row slices with the store.
type MemoryStore struct {
	mu          sync.Mutex
	sessions    map[int64][]byte
	defaultRows int
}

func NewMemoryStore(defaultRows int) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[int64][]byte),
		defaultRows: defaultRows,
	}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (Session, error) {
	m.mu.Lock()
	data, ok := m.sessions[chatID]
	m.mu.Unlock()

	if !ok {
		return New(m.defaultRows), nil
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("unmarshal session: %w", err)
	}
	return s, nil
}

func (m *MemoryStore) Save(_ context.Context, chatID int64, s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	m.mu.Lock()
	m.sessions[chatID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, chatID int64) error {
	m.mu.Lock()
	delete(m.sessions, chatID)
	m.mu.Unlock()
	return nil
}
