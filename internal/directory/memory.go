package directory

import (
	"context"
	"sync"
)

// Memory is an in-process directory for single-node deployments and tests
type Memory struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemory creates an empty in-memory directory
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (m *Memory) Put(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[rec.ID] = rec
	return nil
}

func (m *Memory) Get(_ context.Context, playerID string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[playerID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *Memory) SetRoom(_ context.Context, playerID, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[playerID]
	if !ok {
		return ErrNotFound
	}
	rec.RoomID = roomID
	m.records[playerID] = rec
	return nil
}

func (m *Memory) SetMoney(_ context.Context, playerID string, money int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[playerID]
	if !ok {
		return ErrNotFound
	}
	rec.Money = money
	m.records[playerID] = rec
	return nil
}

func (m *Memory) Close() error {
	return nil
}
