// Package memory provides an in-memory store.Repository (for testing/dev).
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/forecast-engine/forecast"
	"github.com/warp/forecast-engine/store"
)

// =============================================================================
// MEMORY REPOSITORY - In-memory implementation (for testing/dev)
// =============================================================================

type Repository struct {
	mu      sync.RWMutex
	budgets map[forecast.BudgetID]forecast.Budget
	planned map[forecast.PlannedOperationID]forecast.PlannedOperation
	nextID  int64
}

var _ store.Repository = (*Repository)(nil)

func New() *Repository {
	return &Repository{
		budgets: make(map[forecast.BudgetID]forecast.Budget),
		planned: make(map[forecast.PlannedOperationID]forecast.PlannedOperation),
		nextID:  1,
	}
}

func (m *Repository) SaveBudget(_ context.Context, b forecast.Budget) (forecast.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b.ID() == 0 {
		b = b.WithID(forecast.BudgetID(m.nextID))
		m.nextID++
	}
	m.budgets[b.ID()] = b
	return b, nil
}

func (m *Repository) GetBudget(_ context.Context, id forecast.BudgetID) (forecast.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.budgets[id]
	if !ok {
		return forecast.Budget{}, store.ErrNotFound
	}
	return b, nil
}

func (m *Repository) ListBudgets(_ context.Context) ([]forecast.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]forecast.Budget, 0, len(m.budgets))
	for _, b := range m.budgets {
		result = append(result, b)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result, nil
}

func (m *Repository) DeleteBudget(_ context.Context, id forecast.BudgetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.budgets[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.budgets, id)
	return nil
}

func (m *Repository) SavePlannedOperation(_ context.Context, po forecast.PlannedOperation) (forecast.PlannedOperation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if po.ID() == 0 {
		po = po.WithID(forecast.PlannedOperationID(m.nextID))
		m.nextID++
	}
	m.planned[po.ID()] = po
	return po, nil
}

func (m *Repository) GetPlannedOperation(_ context.Context, id forecast.PlannedOperationID) (forecast.PlannedOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	po, ok := m.planned[id]
	if !ok {
		return forecast.PlannedOperation{}, store.ErrNotFound
	}
	return po, nil
}

func (m *Repository) ListPlannedOperations(_ context.Context) ([]forecast.PlannedOperation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]forecast.PlannedOperation, 0, len(m.planned))
	for _, po := range m.planned {
		result = append(result, po)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result, nil
}

func (m *Repository) DeletePlannedOperation(_ context.Context, id forecast.PlannedOperationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.planned[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.planned, id)
	return nil
}
