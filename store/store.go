// Package store defines the persistence interfaces for forecast records.
// The engine itself never touches storage; owning layers load records,
// delegate temporal reasoning to them, and save replacements wholesale.
package store

import (
	"context"
	"errors"

	"github.com/warp/forecast-engine/forecast"
)

// ErrNotFound is returned when a referenced record doesn't exist.
var ErrNotFound = errors.New("record not found")

// Repository persists budgets and planned operations. Implementations must
// round-trip ranges bit-identically: a reloaded record carries exactly the
// same (initial_date, duration, period, expiration_date) components it was
// saved with.
type Repository interface {
	// SaveBudget inserts or updates a budget and returns it with its
	// assigned id.
	SaveBudget(ctx context.Context, b forecast.Budget) (forecast.Budget, error)
	GetBudget(ctx context.Context, id forecast.BudgetID) (forecast.Budget, error)
	ListBudgets(ctx context.Context) ([]forecast.Budget, error)
	DeleteBudget(ctx context.Context, id forecast.BudgetID) error

	// SavePlannedOperation inserts or updates a planned operation and
	// returns it with its assigned id.
	SavePlannedOperation(ctx context.Context, po forecast.PlannedOperation) (forecast.PlannedOperation, error)
	GetPlannedOperation(ctx context.Context, id forecast.PlannedOperationID) (forecast.PlannedOperation, error)
	ListPlannedOperations(ctx context.Context) ([]forecast.PlannedOperation, error)
	DeletePlannedOperation(ctx context.Context, id forecast.PlannedOperationID) error
}
