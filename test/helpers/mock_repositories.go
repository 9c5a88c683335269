package helpers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/andrescamacho/factorio-calculator/internal/domain/production"
)

// MockConfigurationStore is a test double for production.ConfigurationStore
type MockConfigurationStore struct {
	mu       sync.RWMutex
	defaults map[string]string
	saveErr  error
}

// NewMockConfigurationStore creates a store pre-loaded with defaults
func NewMockConfigurationStore(defaults map[string]string) *MockConfigurationStore {
	m := &MockConfigurationStore{defaults: make(map[string]string)}
	for k, v := range defaults {
		m.defaults[k] = v
	}
	return m
}

// FailSaves makes every SaveAll return err
func (m *MockConfigurationStore) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// LoadAll returns a copy of the stored defaults
func (m *MockConfigurationStore) LoadAll(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.defaults))
	for k, v := range m.defaults {
		out[k] = v
	}
	return out, nil
}

// SaveAll merges defaults into the store
func (m *MockConfigurationStore) SaveAll(ctx context.Context, defaults map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for k, v := range defaults {
		m.defaults[k] = v
	}
	return nil
}

// MockExclusionRepository is a test double for catalog.ExclusionRepository
type MockExclusionRepository struct {
	mu  sync.RWMutex
	ids map[string]bool
}

// NewMockExclusionRepository creates a repository holding ids
func NewMockExclusionRepository(ids ...string) *MockExclusionRepository {
	m := &MockExclusionRepository{ids: make(map[string]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

// List returns the stored ids, sorted
func (m *MockExclusionRepository) List(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.ids))
	for id := range m.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Add stores id
func (m *MockExclusionRepository) Add(ctx context.Context, recipeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[recipeID] = true
	return nil
}

// Remove deletes id
func (m *MockExclusionRepository) Remove(ctx context.Context, recipeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, recipeID)
	return nil
}

// MockCalculationRepository is a test double for production.CalculationRepository
type MockCalculationRepository struct {
	mu      sync.RWMutex
	records []*production.CalculationRecord
}

// NewMockCalculationRepository creates an empty repository
func NewMockCalculationRepository() *MockCalculationRepository {
	return &MockCalculationRepository{}
}

// Save appends or replaces a record by id
func (m *MockCalculationRepository) Save(ctx context.Context, record *production.CalculationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if record.ID == "" {
		return fmt.Errorf("calculation id cannot be empty")
	}
	for i, r := range m.records {
		if r.ID == record.ID {
			m.records[i] = record
			return nil
		}
	}
	m.records = append(m.records, record)
	return nil
}

// FindByID returns the record with id
func (m *MockCalculationRepository) FindByID(ctx context.Context, id string) (*production.CalculationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, &production.CalculationNotFoundError{ID: id}
}

// List returns records newest first
func (m *MockCalculationRepository) List(ctx context.Context, limit int) ([]*production.CalculationRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]*production.CalculationRecord(nil), m.records...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
