package schedule

import "fmt"

// =============================================================================
// TIME RANGE - A single contiguous span of calendar days
// =============================================================================

// TimeRange is a closed interval of calendar days: an initial date plus a
// calendar duration, covering [InitialDate, LastDate]. It is an immutable
// value; edits go through Replace, which returns a new instance.
type TimeRange struct {
	initial  Date
	duration Duration
}

// NewTimeRange builds a range from its initial date and calendar duration.
// The duration must span at least one day from the initial date.
func NewTimeRange(initial Date, duration Duration) (TimeRange, error) {
	if initial.IsZero() {
		return TimeRange{}, invalidArg("initial_date", "must be a calendar date")
	}
	if duration.AddTo(initial).BeforeOrEqual(initial) {
		return TimeRange{}, invalidArg("duration", fmt.Sprintf("must span at least one day, got %s", duration))
	}
	return TimeRange{initial: initial, duration: duration}, nil
}

// SingleDay builds the one-day range covering exactly the given date.
// This is the shape planned operations use: a payment happens on a day,
// not over a span.
func SingleDay(d Date) TimeRange {
	return TimeRange{initial: d, duration: Duration{Days: 1}}
}

func (tr TimeRange) InitialDate() Date { return tr.initial }

// LastDate is the final day covered: initial + duration - 1 day. It is
// recomputed from concrete calendar values on every call because the
// duration is calendar-relative; its day-length depends on which months
// the range spans.
func (tr TimeRange) LastDate() Date {
	return tr.duration.AddTo(tr.initial).AddDays(-1)
}

func (tr TimeRange) End() Expiration { return ExpiresOn(tr.LastDate()) }

func (tr TimeRange) Duration() Duration { return tr.duration }

// TotalDays is the exact elapsed day count between the bounds, inclusive.
func (tr TimeRange) TotalDays() int {
	return DaysBetween(tr.initial, tr.LastDate()) + 1
}

func (tr TimeRange) IsExpired(d Date) bool { return tr.LastDate().Before(d) }

func (tr TimeRange) IsFuture(d Date) bool { return tr.initial.After(d) }

func (tr TimeRange) IsWithin(d Date, approx Approx) bool {
	return tr.initial.AddDays(-approx.Before).BeforeOrEqual(d) &&
		d.BeforeOrEqual(tr.LastDate().AddDays(approx.After))
}

// Iterate yields the range itself: a plain time range has one occurrence.
// The seed date is accepted for interface uniformity and ignored.
func (tr TimeRange) Iterate(Date) *Iterator {
	done := false
	return &Iterator{next: func() (TimeRange, bool) {
		if done {
			return TimeRange{}, false
		}
		done = true
		return tr, true
	}}
}

func (tr TimeRange) Current(d Date, approx Approx) (TimeRange, bool) {
	if tr.IsWithin(d, approx) {
		return tr, true
	}
	return TimeRange{}, false
}

// Next returns the range itself while it has not started yet. Once its
// single occurrence has begun there is nothing after it.
func (tr TimeRange) Next(d Date) (TimeRange, bool) {
	if tr.IsFuture(d) {
		return tr, true
	}
	return TimeRange{}, false
}

func (tr TimeRange) Last(d Date) (TimeRange, bool) {
	if tr.IsFuture(d) {
		return TimeRange{}, false
	}
	return tr, true
}

// Equal is component-wise: same initial date and same duration components.
func (tr TimeRange) Equal(other TimeRange) bool {
	return tr.initial.Equal(other.initial) && tr.duration == other.duration
}

func (tr TimeRange) String() string {
	return fmt.Sprintf("%s - %s", tr.initial, tr.LastDate())
}

// =============================================================================
// PATCH - Immutable replace
// =============================================================================

// Patch carries optional field overrides for TimeRange.Replace. Nil fields
// keep the current value. Validation happens once, at patch-application
// time.
type Patch struct {
	InitialDate *Date
	Duration    *Duration
}

// Replace returns a new range with the patched fields substituted. An
// invalid substituted value is rejected with an InvalidArgument error and
// the original is untouched.
func (tr TimeRange) Replace(p Patch) (TimeRange, error) {
	initial, duration := tr.initial, tr.duration
	if p.InitialDate != nil {
		initial = *p.InitialDate
	}
	if p.Duration != nil {
		duration = *p.Duration
	}
	return NewTimeRange(initial, duration)
}

var _ Range = TimeRange{}
