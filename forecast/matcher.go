package forecast

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/forecast-engine/schedule"
)

// =============================================================================
// MATCHER - Planned-vs-actual reconciliation predicate
// =============================================================================

// MatchParams tunes how strictly a transaction must line up with a record's
// schedule and amount.
type MatchParams struct {
	// DescriptionHints, when non-empty, require at least one hint to appear
	// as a case-insensitive substring of the transaction description.
	DescriptionHints []string

	// DateToleranceDays widens the schedule window on both sides. Budgets
	// match exactly; recurring payments drift a few days around their due
	// date.
	DateToleranceDays int

	// AmountToleranceRatio bounds |tx.amount - record.amount| relative to
	// |record.amount|. +Inf disables the amount check.
	AmountToleranceRatio float64
}

// BudgetMatchParams are the budget defaults: only transactions strictly in
// the budgeted span count, with any amount.
func BudgetMatchParams() MatchParams {
	return MatchParams{DateToleranceDays: 0, AmountToleranceRatio: math.Inf(1)}
}

// PlannedMatchParams are the planned-operation defaults: a forecasted
// payment may land a few days off and a few percent away.
func PlannedMatchParams() MatchParams {
	return MatchParams{DateToleranceDays: 5, AmountToleranceRatio: 0.05}
}

// Matcher decides whether concrete transactions satisfy a scheduled record.
// It is a pure predicate: nothing is mutated by matching.
type Matcher struct {
	record OperationRange
	params MatchParams
}

// NewMatcher builds a matcher for the given record.
func NewMatcher(record OperationRange, params MatchParams) Matcher {
	return Matcher{record: record, params: params}
}

// Params returns the tolerance configuration.
func (m Matcher) Params() MatchParams { return m.params }

// Match reports whether the transaction satisfies the record: same
// category, date inside the schedule under the tolerance window, and the
// optional description and amount criteria.
func (m Matcher) Match(tx Transaction) bool {
	return !m.outOfRange(tx) &&
		m.MatchCategory(tx) &&
		m.MatchDate(tx) &&
		(len(m.params.DescriptionHints) == 0 || m.MatchDescription(tx)) &&
		m.MatchAmount(tx)
}

// outOfRange rejects quickly when the transaction falls outside the whole
// schedule. The high side is never out of range for unbounded schedules.
func (m Matcher) outOfRange(tx Transaction) bool {
	r := m.record.timeRange
	if tx.Date.Before(r.InitialDate().AddDays(-m.params.DateToleranceDays)) {
		return true
	}
	if end, bounded := r.End().Date(); bounded {
		return tx.Date.After(end.AddDays(m.params.DateToleranceDays))
	}
	return false
}

// MatchCategory checks category equality.
func (m Matcher) MatchCategory(tx Transaction) bool {
	return tx.Category == m.record.category
}

// MatchDate checks the transaction date against the schedule under the
// tolerance window.
func (m Matcher) MatchDate(tx Transaction) bool {
	return m.record.timeRange.IsWithin(tx.Date, schedule.ApproxDays(m.params.DateToleranceDays))
}

// MatchDescription checks whether any hint appears in the description,
// case-insensitively.
func (m Matcher) MatchDescription(tx Transaction) bool {
	desc := strings.ToLower(tx.Description)
	for _, hint := range m.params.DescriptionHints {
		if hint != "" && strings.Contains(desc, strings.ToLower(hint)) {
			return true
		}
	}
	return false
}

// MatchAmount checks the transaction amount against the record amount under
// the tolerance ratio.
func (m Matcher) MatchAmount(tx Transaction) bool {
	ratio := m.params.AmountToleranceRatio
	if math.IsInf(ratio, 1) {
		return true
	}
	diff := tx.Amount.Value.Sub(m.record.amount.Value).Abs()
	bound := m.record.amount.Value.Abs().Mul(decimal.NewFromFloat(ratio))
	return diff.LessThanOrEqual(bound)
}

// Matches filters the transactions satisfying the record.
func (m Matcher) Matches(txs []Transaction) []Transaction {
	var out []Transaction
	for _, tx := range txs {
		if m.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// LateOccurrences returns the occurrences that were due close to now but
// have no matching transaction. Each transaction settles at most one
// occurrence.
func (m Matcher) LateOccurrences(now schedule.Date, txs []Transaction) []schedule.TimeRange {
	unassigned := m.Matches(txs)
	window := schedule.ApproxDays(m.params.DateToleranceDays)

	var late []schedule.TimeRange
	it := m.record.timeRange.Iterate(now.AddDays(-m.params.DateToleranceDays))
	for occ, ok := it.Next(); ok; occ, ok = it.Next() {
		if occ.IsFuture(now) {
			break
		}
		if !occ.IsWithin(now, schedule.Approx{After: m.params.DateToleranceDays}) {
			continue
		}
		settled := false
		for i, tx := range unassigned {
			if occ.IsWithin(tx.Date, window) {
				unassigned = append(unassigned[:i], unassigned[i+1:]...)
				settled = true
				break
			}
		}
		if !settled {
			late = append(late, occ)
		}
	}
	return late
}
