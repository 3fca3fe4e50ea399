package sheetstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"aromasheet/internal/formulation"
)

// MemStore is an in-memory Store. Sheets are kept as JSON documents so that
// callers never share state with the store.
type MemStore struct {
	mu     sync.Mutex
	sheets map[string][]byte
	index  []Meta
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty store.
func NewMemStore() *MemStore {
	return &MemStore{sheets: make(map[string][]byte)}
}

func (m *MemStore) LoadSheet(_ context.Context, id string) (*formulation.Sheet, error) {
	m.mu.Lock()
	data, ok := m.sheets[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decodeSheet(id, data)
}

func (m *MemStore) SaveSheet(_ context.Context, id string, sheet formulation.Sheet) error {
	data, err := encodeSheet(id, sheet)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sheets[id] = data
	return nil
}

func (m *MemStore) LoadIndex(context.Context) ([]Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Meta{}, m.index...), nil
}

func (m *MemStore) SaveIndex(_ context.Context, index []Meta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = append([]Meta{}, index...)
	return nil
}

func (m *MemStore) DeleteSheet(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, inIndex := FindMeta(m.index, id)
	_, hasSheet := m.sheets[id]
	if !inIndex && !hasSheet {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	delete(m.sheets, id)
	if inIndex {
		m.index = append(m.index[:pos:pos], m.index[pos+1:]...)
	}
	return nil
}

func (m *MemStore) DuplicateSheet(ctx context.Context, id string) (string, error) {
	return duplicateSheet(ctx, m, id)
}

func (m *MemStore) NextReference(ctx context.Context) (string, error) {
	return nextReference(ctx, m)
}

// Close is a no-op.
func (m *MemStore) Close() error { return nil }

func encodeSheet(id string, sheet formulation.Sheet) ([]byte, error) {
	data, err := json.Marshal(sheet)
	if err != nil {
		return nil, fmt.Errorf("encode sheet %s: %w", id, err)
	}
	return data, nil
}

// decodeSheet parses a stored document and repairs it with Normalize.
func decodeSheet(id string, data []byte) (*formulation.Sheet, error) {
	var sheet formulation.Sheet
	if err := json.Unmarshal(data, &sheet); err != nil {
		return nil, fmt.Errorf("decode sheet %s: %w", id, err)
	}
	sheet = sheet.Normalize()
	return &sheet, nil
}
