package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/forecast-engine/schedule"
)

func tenDays(t *testing.T) schedule.TimeRange {
	t.Helper()
	tr, err := schedule.NewTimeRange(date(2023, time.January, 1), schedule.Days(10))
	require.NoError(t, err)
	return tr
}

func TestTimeRange_Bounds(t *testing.T) {
	tr := tenDays(t)
	assert.Equal(t, date(2023, time.January, 1), tr.InitialDate())
	assert.Equal(t, date(2023, time.January, 10), tr.LastDate())
	assert.Equal(t, 10, tr.TotalDays())
}

func TestTimeRange_TotalDays_TracksCalendar(t *testing.T) {
	// A one-month range's day count depends on which month it spans.
	jan, err := schedule.NewTimeRange(date(2023, time.January, 1), schedule.Months(1))
	require.NoError(t, err)
	assert.Equal(t, 31, jan.TotalDays())

	feb, err := schedule.NewTimeRange(date(2023, time.February, 1), schedule.Months(1))
	require.NoError(t, err)
	assert.Equal(t, 28, feb.TotalDays())
}

func TestTimeRange_IsWithin(t *testing.T) {
	tr := tenDays(t)
	for _, d := range []schedule.Date{
		date(2023, time.January, 1),
		date(2023, time.January, 5),
		date(2023, time.January, 10),
	} {
		assert.True(t, tr.IsWithin(d, schedule.Exact), "expected %s within %s", d, tr)
	}
	assert.False(t, tr.IsWithin(date(2022, time.December, 31), schedule.Exact))
	assert.False(t, tr.IsWithin(date(2023, time.January, 11), schedule.Exact))
}

func TestTimeRange_IsWithin_Tolerance(t *testing.T) {
	tr := tenDays(t)
	assert.True(t, tr.IsWithin(date(2022, time.December, 29), schedule.ApproxDays(3)))
	assert.True(t, tr.IsWithin(date(2023, time.January, 13), schedule.ApproxDays(3)))
	assert.False(t, tr.IsWithin(date(2022, time.December, 28), schedule.ApproxDays(3)))
	assert.False(t, tr.IsWithin(date(2023, time.January, 14), schedule.ApproxDays(3)))
}

func TestTimeRange_ExpiredAndFuture(t *testing.T) {
	tr := tenDays(t)
	assert.True(t, tr.IsExpired(date(2023, time.January, 11)))
	assert.False(t, tr.IsExpired(date(2023, time.January, 10)))
	assert.True(t, tr.IsFuture(date(2022, time.December, 31)))
	assert.False(t, tr.IsFuture(date(2023, time.January, 1)))
}

func TestTimeRange_Iterate_YieldsItselfOnce(t *testing.T) {
	tr := tenDays(t)
	occurrences := tr.Iterate(schedule.Date{}).Collect()
	require.Len(t, occurrences, 1)
	assert.True(t, occurrences[0].Equal(tr))
}

func TestTimeRange_Current(t *testing.T) {
	tr := tenDays(t)

	cur, ok := tr.Current(date(2023, time.January, 5), schedule.Exact)
	require.True(t, ok)
	assert.True(t, cur.Equal(tr))

	_, ok = tr.Current(date(2022, time.December, 31), schedule.Exact)
	assert.False(t, ok)
	_, ok = tr.Current(date(2023, time.January, 11), schedule.Exact)
	assert.False(t, ok)
}

func TestTimeRange_Next(t *testing.T) {
	tr := tenDays(t)

	// Still future: the single occurrence is the next one.
	next, ok := tr.Next(date(2022, time.December, 31))
	require.True(t, ok)
	assert.True(t, next.Equal(tr))

	// Already started: nothing comes after a single occurrence.
	_, ok = tr.Next(date(2023, time.January, 1))
	assert.False(t, ok)
}

func TestTimeRange_Last(t *testing.T) {
	tr := tenDays(t)

	last, ok := tr.Last(date(2023, time.January, 10))
	require.True(t, ok)
	assert.True(t, last.Equal(tr))

	last, ok = tr.Last(date(2023, time.February, 1))
	require.True(t, ok)
	assert.True(t, last.Equal(tr))

	_, ok = tr.Last(date(2022, time.December, 31))
	assert.False(t, ok)
}

func TestTimeRange_SingleDay(t *testing.T) {
	sd := schedule.SingleDay(date(2023, time.January, 1))
	assert.Equal(t, date(2023, time.January, 1), sd.InitialDate())
	assert.Equal(t, date(2023, time.January, 1), sd.LastDate())
	assert.Equal(t, 1, sd.TotalDays())
	assert.Equal(t, schedule.Days(1), sd.Duration())
}

func TestTimeRange_Replace(t *testing.T) {
	tr := tenDays(t)

	newInitial := date(2023, time.January, 2)
	replaced, err := tr.Replace(schedule.Patch{InitialDate: &newInitial})
	require.NoError(t, err)
	assert.Equal(t, date(2023, time.January, 2), replaced.InitialDate())
	assert.Equal(t, date(2023, time.January, 11), replaced.LastDate())
	assert.Equal(t, 10, replaced.TotalDays())

	// The original is untouched.
	assert.Equal(t, date(2023, time.January, 1), tr.InitialDate())
}

func TestTimeRange_Replace_EmptyPatchIsIdentity(t *testing.T) {
	tr := tenDays(t)
	replaced, err := tr.Replace(schedule.Patch{})
	require.NoError(t, err)
	assert.True(t, replaced.Equal(tr))
}

func TestTimeRange_Replace_RejectsInvalidDuration(t *testing.T) {
	tr := tenDays(t)

	empty := schedule.Days(0)
	_, err := tr.Replace(schedule.Patch{Duration: &empty})
	require.Error(t, err)
	assert.True(t, schedule.IsInvalidArgument(err))

	negative := schedule.Days(-5)
	_, err = tr.Replace(schedule.Patch{Duration: &negative})
	require.Error(t, err)
	assert.True(t, schedule.IsInvalidArgument(err))
}

func TestNewTimeRange_RejectsZeroDate(t *testing.T) {
	_, err := schedule.NewTimeRange(schedule.Date{}, schedule.Days(1))
	require.Error(t, err)
	assert.True(t, schedule.IsInvalidArgument(err))
}
