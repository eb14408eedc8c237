package forecast

import (
	"fmt"

	"github.com/warp/forecast-engine/schedule"
)

// =============================================================================
// PLANNED OPERATION - A forecasted transaction on a (recurring) day
// =============================================================================

// PlannedOperation is a financial operation expected to happen: a one-time
// payment on a day, or a payment recurring at a period. Unlike a budget it
// is pinned to single days, and actual transactions are matched against it
// with fuzzy date and amount tolerances.
type PlannedOperation struct {
	OperationRange

	id          PlannedOperationID
	archived    bool
	matchParams MatchParams
}

// NewPlannedOperation builds a planned operation. The schedule must be
// day-shaped: a single day or a day recurring at a period.
func NewPlannedOperation(id PlannedOperationID, description string, amount Amount, category Category, r schedule.Range) (PlannedOperation, error) {
	if r.Duration() != schedule.Days(1) {
		return PlannedOperation{}, fmt.Errorf("%w: planned operation schedule must cover single days, got %s",
			schedule.ErrInvalidArgument, r.Duration())
	}
	return PlannedOperation{
		OperationRange: NewOperationRange(description, amount, category, r),
		id:             id,
		matchParams:    PlannedMatchParams(),
	}, nil
}

// ID returns the database id, zero when unsaved.
func (po PlannedOperation) ID() PlannedOperationID { return po.id }

// Archived reports whether the operation is hidden from active forecasts.
func (po PlannedOperation) Archived() bool { return po.archived }

// MatchParams returns the reconciliation tolerances.
func (po PlannedOperation) MatchParams() MatchParams { return po.matchParams }

// WithMatchParams returns a copy using the given tolerances.
func (po PlannedOperation) WithMatchParams(p MatchParams) PlannedOperation {
	po.matchParams = p
	return po
}

// WithArchived returns a copy with the archived flag set.
func (po PlannedOperation) WithArchived(archived bool) PlannedOperation {
	po.archived = archived
	return po
}

// WithID returns a copy carrying the persisted id.
func (po PlannedOperation) WithID(id PlannedOperationID) PlannedOperation {
	po.id = id
	return po
}

// Matcher returns the reconciliation predicate for this operation.
func (po PlannedOperation) Matcher() Matcher {
	return NewMatcher(po.OperationRange, po.matchParams)
}

// SplitAt divides a recurring planned operation at the given date, applying
// the optional amount and period overrides to the continuation only.
// Duration overrides do not apply: a planned operation is always one day.
func (po PlannedOperation) SplitAt(splitDate schedule.Date, ov SplitOverrides) (terminated, continuation PlannedOperation, err error) {
	periodic, ok := po.TimeRange().(schedule.PeriodicTimeRange)
	if !ok {
		return PlannedOperation{}, PlannedOperation{}, ErrNotRecurring
	}

	terminatedRange, continuationRange, err := periodic.SplitAt(splitDate)
	if err != nil {
		return PlannedOperation{}, PlannedOperation{}, err
	}

	terminated = po
	terminated.OperationRange.timeRange = terminatedRange

	if ov.Period != nil {
		continuationRange, err = continuationRange.Replace(schedule.PeriodicPatch{Period: ov.Period})
		if err != nil {
			return PlannedOperation{}, PlannedOperation{}, err
		}
	}

	amount := po.Amount()
	if ov.Amount != nil {
		amount = *ov.Amount
	}
	continuation, err = NewPlannedOperation(0, po.Description(), amount, po.Category(), continuationRange)
	if err != nil {
		return PlannedOperation{}, PlannedOperation{}, err
	}
	continuation = continuation.WithMatchParams(po.matchParams)
	return terminated, continuation, nil
}

// PlannedOperationPatch carries optional field overrides for Replace.
type PlannedOperationPatch struct {
	Description *string
	Amount      *Amount
	Category    *Category
	TimeRange   schedule.Range
	Archived    *bool
}

// Replace returns a new planned operation with the patched fields
// substituted, keeping id and match parameters. A substituted schedule must
// still be day-shaped.
func (po PlannedOperation) Replace(p PlannedOperationPatch) (PlannedOperation, error) {
	if p.TimeRange != nil && p.TimeRange.Duration() != schedule.Days(1) {
		return PlannedOperation{}, fmt.Errorf("%w: planned operation schedule must cover single days, got %s",
			schedule.ErrInvalidArgument, p.TimeRange.Duration())
	}
	op, err := po.OperationRange.replace(recordPatch{
		Description: p.Description,
		Amount:      p.Amount,
		Category:    p.Category,
		TimeRange:   p.TimeRange,
	})
	if err != nil {
		return PlannedOperation{}, err
	}
	po.OperationRange = op
	if p.Archived != nil {
		po.archived = *p.Archived
	}
	return po, nil
}
