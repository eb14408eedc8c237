// Package schedule models spans of calendar time that may repeat at a
// calendar period, and answers membership, adjacency, splitting and
// occurrence-iteration queries about them.
//
// The engine is purely functional: every operation is a deterministic
// computation over immutable inputs producing a new immutable value or a
// restartable occurrence sequence. There is no shared mutable state, so
// independent callers may query the same range concurrently without
// coordination.
package schedule

// =============================================================================
// RANGE - Capability contract shared by both range kinds
// =============================================================================

// Range is the capability contract shared by TimeRange and
// PeriodicTimeRange. Owning records (budgets, planned operations) hold a
// Range and delegate all temporal reasoning to it; the set of
// implementations is closed.
type Range interface {
	// InitialDate is the first day covered by the range. For a periodic
	// range this is the anchor: the first occurrence's initial date.
	InitialDate() Date

	// End is the last day covered. A periodic range without an expiration
	// date has an unbounded end.
	End() Expiration

	// Duration is the calendar duration of a single occurrence.
	Duration() Duration

	// IsExpired reports whether the whole range ends strictly before d.
	IsExpired(d Date) bool

	// IsFuture reports whether the range starts strictly after d.
	IsFuture(d Date) bool

	// IsWithin reports whether d falls inside the range, widened by the
	// given tolerance window. For a periodic range this means d falls
	// inside some occurrence.
	IsWithin(d Date, approx Approx) bool

	// Iterate returns the occurrence sequence in initial-date order.
	// A zero from date starts at the first occurrence; otherwise the
	// sequence is seeded near from without walking every intermediate
	// occurrence. The sequence is stateless per restart.
	Iterate(from Date) *Iterator

	// Current returns the occurrence active at d under the tolerance
	// window, if any.
	Current(d Date, approx Approx) (TimeRange, bool)

	// Next returns the first occurrence starting strictly after d, if any.
	Next(d Date) (TimeRange, bool)

	// Last returns the most recent occurrence at or before d, if any.
	Last(d Date) (TimeRange, bool)
}

// =============================================================================
// APPROX - Tolerance window for membership queries
// =============================================================================

// Approx widens a membership check by a number of days on each side.
// The zero value is an exact check.
type Approx struct {
	Before int // days before the initial date
	After  int // days after the last date
}

// Exact is the zero tolerance window.
var Exact = Approx{}

// ApproxDays returns a symmetric tolerance window of n days.
func ApproxDays(n int) Approx {
	return Approx{Before: n, After: n}
}

// =============================================================================
// EXPIRATION - Bounded or unbounded range end
// =============================================================================

// Expiration is the end bound of a range: either a concrete last date or
// unbounded. An explicit variant avoids silent arithmetic on a magic
// max-date sentinel.
type Expiration struct {
	date    Date
	bounded bool
}

// ExpiresOn returns a bounded expiration on the given date.
func ExpiresOn(d Date) Expiration {
	return Expiration{date: d, bounded: true}
}

// NeverExpires returns the unbounded expiration.
func NeverExpires() Expiration {
	return Expiration{}
}

// Bounded reports whether the expiration is a concrete date.
func (e Expiration) Bounded() bool { return e.bounded }

// Date returns the expiration date; ok is false when unbounded.
func (e Expiration) Date() (Date, bool) { return e.date, e.bounded }

// IsBefore reports whether the end falls strictly before d. An unbounded
// end is never before any date.
func (e Expiration) IsBefore(d Date) bool {
	return e.bounded && e.date.Before(d)
}

func (e Expiration) String() string {
	if !e.bounded {
		return "never"
	}
	return e.date.String()
}

// =============================================================================
// ITERATOR - Pull-based occurrence sequence
// =============================================================================

// Iterator produces occurrences on demand. It is finite when the range's
// end is bounded and conceptually infinite otherwise; consumers stop
// pulling when they have seen enough. Iterators are single-use cursors:
// restart by calling Iterate again.
type Iterator struct {
	next func() (TimeRange, bool)
}

// Next returns the next occurrence, or ok=false when the sequence ends.
func (it *Iterator) Next() (TimeRange, bool) {
	return it.next()
}

// Collect drains the iterator into a slice. Only safe on bounded sequences.
func (it *Iterator) Collect() []TimeRange {
	var out []TimeRange
	for tr, ok := it.Next(); ok; tr, ok = it.Next() {
		out = append(out, tr)
	}
	return out
}
