package schedule

import "fmt"

// =============================================================================
// PERIODIC TIME RANGE - A time range repeating at a calendar period
// =============================================================================

// PeriodicTimeRange is a TimeRange repeated at a calendar period, bounded by
// an optional expiration date. It generates a lazy, potentially unbounded
// sequence of concrete occurrences.
//
// The n-th occurrence is always computed directly as anchor + n*period.
// Advancing the previous occurrence by one period instead would drift under
// month-end clamping: starting monthly from Oct 31 would degrade to the
// 30th after November and never recover, whereas the direct product restores
// the 31st whenever the target month has one.
type PeriodicTimeRange struct {
	base       TimeRange
	period     Duration
	expiration Expiration
}

// NewPeriodicTimeRange builds a periodic range from the occurrence shape,
// the repetition period and the end bound. The period must advance: it has
// to produce a strictly increasing sequence of initial dates.
func NewPeriodicTimeRange(base TimeRange, period Duration, expiration Expiration) (PeriodicTimeRange, error) {
	if base.initial.IsZero() {
		return PeriodicTimeRange{}, invalidArg("base", "must be a valid time range")
	}
	if !period.AddTo(base.initial).After(base.initial) {
		return PeriodicTimeRange{}, invalidArg("period", fmt.Sprintf("must advance the initial date, got %s", period))
	}
	return PeriodicTimeRange{base: base, period: period, expiration: expiration}, nil
}

// Base returns the occurrence shape anchored at the first occurrence.
func (p PeriodicTimeRange) Base() TimeRange { return p.base }

// Period returns the repetition period.
func (p PeriodicTimeRange) Period() Duration { return p.period }

// Expiration returns the end bound.
func (p PeriodicTimeRange) Expiration() Expiration { return p.expiration }

// InitialDate is the anchor: the first occurrence's initial date.
func (p PeriodicTimeRange) InitialDate() Date { return p.base.initial }

func (p PeriodicTimeRange) End() Expiration { return p.expiration }

// Duration is the calendar duration of a single occurrence.
func (p PeriodicTimeRange) Duration() Duration { return p.base.duration }

func (p PeriodicTimeRange) IsExpired(d Date) bool { return p.expiration.IsBefore(d) }

func (p PeriodicTimeRange) IsFuture(d Date) bool { return p.base.IsFuture(d) }

// IsWithin reports whether some occurrence contains d under the window.
func (p PeriodicTimeRange) IsWithin(d Date, approx Approx) bool {
	_, ok := p.Current(d, approx)
	return ok
}

// occurrence computes the n-th occurrence directly from the anchor.
func (p PeriodicTimeRange) occurrence(n int) TimeRange {
	return TimeRange{
		initial:  p.period.Scale(n).AddTo(p.base.initial),
		duration: p.base.duration,
	}
}

// Iterate returns occurrences in initial-date order, starting near from
// without materializing intermediate occurrences, and stopping once an
// occurrence would end past the expiration date.
//
// Seeding divides the elapsed days between anchor and from by a
// conservative upper bound of the period's day-length (366 per year, 31 per
// month), minus one period of safety margin. Overestimating the period
// length underestimates the start index, so the estimate can only land
// early; the fine-tune loop then advances a bounded number of steps. The
// opposite bias would silently skip real occurrences.
func (p PeriodicTimeRange) Iterate(from Date) *Iterator {
	start := 0
	if !from.IsZero() && from.After(p.base.initial) {
		daysDiff := DaysBetween(p.base.initial, from)
		if approxPeriodDays := p.period.maxSpanDays(); approxPeriodDays > 0 {
			start = daysDiff/approxPeriodDays - 1
			if start < 0 {
				start = 0
			}
		}
		for p.occurrence(start + 1).initial.Before(from) {
			start++
		}
	}

	n := start
	return &Iterator{next: func() (TimeRange, bool) {
		occ := p.occurrence(n)
		if p.expiration.IsBefore(occ.LastDate()) {
			return TimeRange{}, false
		}
		n++
		return occ, true
	}}
}

// Current scans occurrences seeded at d and returns the first one
// containing d under the window. Scanning stops once an occurrence
// strictly in the future is reached without a match.
func (p PeriodicTimeRange) Current(d Date, approx Approx) (TimeRange, bool) {
	it := p.Iterate(d)
	for occ, ok := it.Next(); ok; occ, ok = it.Next() {
		if occ.IsWithin(d, approx) {
			return occ, true
		}
		if occ.IsFuture(d) {
			break
		}
	}
	return TimeRange{}, false
}

// Next returns the first occurrence starting strictly after d, or ok=false
// when none remains before expiration.
func (p PeriodicTimeRange) Next(d Date) (TimeRange, bool) {
	it := p.Iterate(d)
	for occ, ok := it.Next(); ok; occ, ok = it.Next() {
		if occ.IsFuture(d) {
			return occ, true
		}
	}
	return TimeRange{}, false
}

// Last walks consecutive occurrence pairs seeded at d: when the later one
// contains d it wins, when the later one is future the earlier one wins.
// No satisfying pair means d precedes the schedule entirely.
func (p PeriodicTimeRange) Last(d Date) (TimeRange, bool) {
	it := p.Iterate(d)
	prev, ok := it.Next()
	if !ok {
		return TimeRange{}, false
	}
	for {
		cur, ok := it.Next()
		if !ok {
			return TimeRange{}, false
		}
		if cur.IsWithin(d, Exact) {
			return cur, true
		}
		if cur.IsFuture(d) {
			if prev.IsFuture(d) {
				// d precedes the schedule entirely.
				return TimeRange{}, false
			}
			return prev, true
		}
		prev = cur
	}
}

// =============================================================================
// SPLIT
// =============================================================================

// SplitAt divides the schedule in two at the first occurrence starting at
// or after splitDate: a terminated copy expiring the day before that
// occurrence, and a continuation anchored at it with the original period
// and expiration. The original is untouched.
func (p PeriodicTimeRange) SplitAt(splitDate Date) (terminated, continuation PeriodicTimeRange, err error) {
	if splitDate.BeforeOrEqual(p.base.initial) {
		return PeriodicTimeRange{}, PeriodicTimeRange{}, ErrSplitBeforeStart
	}

	var pivot Date
	it := p.Iterate(Date{})
	for occ, ok := it.Next(); ok; occ, ok = it.Next() {
		if occ.initial.AfterOrEqual(splitDate) {
			pivot = occ.initial
			break
		}
	}
	if pivot.IsZero() {
		return PeriodicTimeRange{}, PeriodicTimeRange{}, ErrSplitPastEnd
	}

	expiry := ExpiresOn(pivot.AddDays(-1))
	terminated, err = p.Replace(PeriodicPatch{Expiration: &expiry})
	if err != nil {
		return PeriodicTimeRange{}, PeriodicTimeRange{}, err
	}
	continuation, err = p.Replace(PeriodicPatch{InitialDate: &pivot})
	if err != nil {
		return PeriodicTimeRange{}, PeriodicTimeRange{}, err
	}
	return terminated, continuation, nil
}

// =============================================================================
// EQUALITY AND PATCH
// =============================================================================

// Equal is component-wise over anchor, occurrence duration, period and
// expiration.
func (p PeriodicTimeRange) Equal(other PeriodicTimeRange) bool {
	return p.base.Equal(other.base) &&
		p.period == other.period &&
		p.expiration == other.expiration
}

func (p PeriodicTimeRange) String() string {
	return fmt.Sprintf("%s every %s until %s", p.base, p.period, p.expiration)
}

// PeriodicPatch carries optional field overrides for Replace. Substituting
// the initial date or duration rebuilds the anchor through the base range's
// own Replace.
type PeriodicPatch struct {
	InitialDate *Date
	Duration    *Duration
	Period      *Duration
	Expiration  *Expiration
}

// Replace returns a new schedule with the patched fields substituted,
// rejecting invalid values with an InvalidArgument error.
func (p PeriodicTimeRange) Replace(patch PeriodicPatch) (PeriodicTimeRange, error) {
	base, err := p.base.Replace(Patch{InitialDate: patch.InitialDate, Duration: patch.Duration})
	if err != nil {
		return PeriodicTimeRange{}, err
	}
	period, expiration := p.period, p.expiration
	if patch.Period != nil {
		period = *patch.Period
	}
	if patch.Expiration != nil {
		expiration = *patch.Expiration
	}
	return NewPeriodicTimeRange(base, period, expiration)
}

var _ Range = PeriodicTimeRange{}
