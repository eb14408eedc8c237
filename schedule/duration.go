package schedule

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DURATION - Calendar-aware offset (years/months/weeks/days)
// =============================================================================

// Duration is a calendar offset. Unlike a fixed elapsed time, applying it to
// a date follows calendar rules: adding one month to Jan 31 lands on the last
// valid day of February, not on March 2.
//
// The zero value is the empty offset. Equality is component-wise, so
// Duration{Months: 1} and Duration{Days: 30} are different durations even
// when they happen to span the same number of days from some date.
type Duration struct {
	Years  int
	Months int
	Weeks  int
	Days   int
}

// Convenience constructors for the common period shapes.
func Days(n int) Duration   { return Duration{Days: n} }
func Weeks(n int) Duration  { return Duration{Weeks: n} }
func Months(n int) Duration { return Duration{Months: n} }
func Years(n int) Duration  { return Duration{Years: n} }

// AddTo applies the duration to a date under calendar rules: years and months
// first, with the day-of-month clamped to the target month's length, then
// weeks and days as exact day counts.
func (d Duration) AddTo(date Date) Date {
	result := date
	if d.Years != 0 || d.Months != 0 {
		months := (date.Year()+d.Years)*12 + int(date.Month()) - 1 + d.Months
		year := floorDiv(months, 12)
		month := time.Month(months-year*12) + 1

		day := date.Day()
		if last := daysInMonth(year, month); day > last {
			day = last
		}
		result = NewDate(year, month, day)
	}
	return result.AddDays(d.Weeks*7 + d.Days)
}

// Scale multiplies every component by n. Used to compute the n-th occurrence
// of a periodic range directly from its anchor: repeated clamped addition
// drifts (Oct 31 + 1 month + 1 month sticks at the 30th), whereas
// anchor + Scale(n) restores the 31st whenever the target month allows it.
func (d Duration) Scale(n int) Duration {
	return Duration{
		Years:  d.Years * n,
		Months: d.Months * n,
		Weeks:  d.Weeks * n,
		Days:   d.Days * n,
	}
}

// IsZero reports whether all components are zero.
func (d Duration) IsZero() bool {
	return d.Years == 0 && d.Months == 0 && d.Weeks == 0 && d.Days == 0
}

// maxSpanDays is a conservative upper bound on the number of days the
// duration can span: no year exceeds 366 days and no month exceeds 31, while
// weeks and days contribute exactly. Overestimating a period's length
// underestimates the occurrence index derived from it, which is the safe
// direction when seeding iteration (see PeriodicTimeRange.iterate).
func (d Duration) maxSpanDays() int {
	return d.Years*366 + d.Months*31 + d.Weeks*7 + d.Days
}

func (d Duration) String() string {
	if d.IsZero() {
		return "0d"
	}
	var parts []string
	if d.Years != 0 {
		parts = append(parts, fmt.Sprintf("%dy", d.Years))
	}
	if d.Months != 0 {
		parts = append(parts, fmt.Sprintf("%dmo", d.Months))
	}
	if d.Weeks != 0 {
		parts = append(parts, fmt.Sprintf("%dw", d.Weeks))
	}
	if d.Days != 0 {
		parts = append(parts, fmt.Sprintf("%dd", d.Days))
	}
	return strings.Join(parts, "")
}

// floorDiv divides rounding toward negative infinity, so month arithmetic
// stays correct for negative offsets.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
