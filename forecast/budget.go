package forecast

import (
	"github.com/warp/forecast-engine/schedule"
)

// =============================================================================
// BUDGET - An amount allocated to a category over a (recurring) span
// =============================================================================

// Budget allocates an amount of money to a category over a time range,
// recurring or not. Budgets match any transaction amount inside the span;
// only the span and category are binding.
type Budget struct {
	OperationRange

	id          BudgetID
	matchParams MatchParams
}

// NewBudget builds a budget. A zero id means not persisted yet.
func NewBudget(id BudgetID, description string, amount Amount, category Category, r schedule.Range) Budget {
	return Budget{
		OperationRange: NewOperationRange(description, amount, category, r),
		id:             id,
		matchParams:    BudgetMatchParams(),
	}
}

// ID returns the database id, zero when unsaved.
func (b Budget) ID() BudgetID { return b.id }

// MatchParams returns the reconciliation tolerances.
func (b Budget) MatchParams() MatchParams { return b.matchParams }

// WithMatchParams returns a copy using the given tolerances.
func (b Budget) WithMatchParams(p MatchParams) Budget {
	b.matchParams = p
	return b
}

// Matcher returns the reconciliation predicate for this budget.
func (b Budget) Matcher() Matcher {
	return NewMatcher(b.OperationRange, b.matchParams)
}

// SplitOverrides are the optional new values a split applies to the
// continuation record. The terminated record always keeps the original
// amount, category and description.
type SplitOverrides struct {
	Amount   *Amount
	Period   *schedule.Duration
	Duration *schedule.Duration
}

// SplitAt divides a recurring budget at the given date: the terminated
// budget keeps this record's identity and ends before the first occurrence
// at or after splitDate; the continuation starts there as a new record,
// with any overrides applied.
func (b Budget) SplitAt(splitDate schedule.Date, ov SplitOverrides) (terminated, continuation Budget, err error) {
	periodic, ok := b.TimeRange().(schedule.PeriodicTimeRange)
	if !ok {
		return Budget{}, Budget{}, ErrNotRecurring
	}

	terminatedRange, continuationRange, err := periodic.SplitAt(splitDate)
	if err != nil {
		return Budget{}, Budget{}, err
	}

	terminated = b
	terminated.OperationRange.timeRange = terminatedRange

	if ov.Period != nil || ov.Duration != nil {
		continuationRange, err = continuationRange.Replace(schedule.PeriodicPatch{
			Period:   ov.Period,
			Duration: ov.Duration,
		})
		if err != nil {
			return Budget{}, Budget{}, err
		}
	}

	amount := b.Amount()
	if ov.Amount != nil {
		amount = *ov.Amount
	}
	continuation = NewBudget(0, b.Description(), amount, b.Category(), continuationRange).
		WithMatchParams(b.matchParams)
	return terminated, continuation, nil
}

// BudgetPatch carries optional field overrides for Replace.
type BudgetPatch struct {
	Description *string
	Amount      *Amount
	Category    *Category
	TimeRange   schedule.Range
}

// Replace returns a new budget with the patched fields substituted,
// keeping id and match parameters.
func (b Budget) Replace(p BudgetPatch) (Budget, error) {
	op, err := b.OperationRange.replace(recordPatch{
		Description: p.Description,
		Amount:      p.Amount,
		Category:    p.Category,
		TimeRange:   p.TimeRange,
	})
	if err != nil {
		return Budget{}, err
	}
	b.OperationRange = op
	return b, nil
}

// WithID returns a copy carrying the persisted id.
func (b Budget) WithID(id BudgetID) Budget {
	b.id = id
	return b
}
