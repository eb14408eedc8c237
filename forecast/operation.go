package forecast

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/forecast-engine/schedule"
)

// =============================================================================
// OPERATION RANGE - Shared record behavior (description, amount, schedule)
// =============================================================================

// OperationRange is an amount of money allocated to a category over a
// schedule. Budget and PlannedOperation embed it; it carries the proration
// algorithm both share.
type OperationRange struct {
	description string
	amount      Amount
	category    Category
	timeRange   schedule.Range
}

// NewOperationRange builds the shared record core.
func NewOperationRange(description string, amount Amount, category Category, r schedule.Range) OperationRange {
	return OperationRange{
		description: description,
		amount:      amount,
		category:    category,
		timeRange:   r,
	}
}

func (o OperationRange) Description() string       { return o.description }
func (o OperationRange) Amount() Amount            { return o.amount }
func (o OperationRange) Category() Category        { return o.category }
func (o OperationRange) TimeRange() schedule.Range { return o.timeRange }

// AmountOnPeriod returns the value attributable to [start, end]. Each
// occurrence whose span intersects the window contributes the record's
// amount scaled by its day overlap over its own day-length; a fully covered
// occurrence contributes the full amount. Occurrences never contribute
// relative to the schedule's aggregate length.
func (o OperationRange) AmountOnPeriod(start, end schedule.Date) (Amount, error) {
	if start.After(end) {
		return Amount{}, fmt.Errorf("%w: start %s after end %s", schedule.ErrInvalidArgument, start, end)
	}

	zero := Amount{Value: decimal.Zero, Currency: o.amount.Currency}
	if o.timeRange.IsExpired(start) || o.timeRange.IsFuture(end) {
		return zero, nil
	}

	total := decimal.Zero
	it := o.timeRange.Iterate(start)
	for occ, ok := it.Next(); ok; occ, ok = it.Next() {
		if occ.IsExpired(start) {
			continue
		}
		if occ.IsFuture(end) {
			break
		}

		// Closed-interval day overlap.
		overlapStart := schedule.MaxDate(occ.InitialDate(), start)
		overlapEnd := schedule.MinDate(occ.LastDate(), end)
		days := schedule.DaysBetween(overlapStart, overlapEnd) + 1
		if days <= 0 {
			continue
		}

		if days == occ.TotalDays() {
			// Complete occurrence.
			total = total.Add(o.amount.Value)
			continue
		}

		// Multiply before dividing so exact ratios stay exact.
		share := o.amount.Value.
			Mul(decimal.NewFromInt(int64(days))).
			Div(decimal.NewFromInt(int64(occ.TotalDays())))
		total = total.Add(share)
	}

	return Amount{Value: total, Currency: o.amount.Currency}, nil
}

// replace returns a copy with the patched fields substituted.
func (o OperationRange) replace(p recordPatch) (OperationRange, error) {
	out := o
	if p.Description != nil {
		out.description = *p.Description
	}
	if p.Amount != nil {
		if p.Amount.Currency == "" {
			return OperationRange{}, fmt.Errorf("%w: amount needs a currency", schedule.ErrInvalidArgument)
		}
		out.amount = *p.Amount
	}
	if p.Category != nil {
		if *p.Category == "" {
			return OperationRange{}, fmt.Errorf("%w: category must not be empty", schedule.ErrInvalidArgument)
		}
		out.category = *p.Category
	}
	if p.TimeRange != nil {
		out.timeRange = p.TimeRange
	}
	return out, nil
}

// recordPatch carries the optional overrides shared by both record kinds.
type recordPatch struct {
	Description *string
	Amount      *Amount
	Category    *Category
	TimeRange   schedule.Range
}
