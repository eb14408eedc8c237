package forecast_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/forecast-engine/forecast"
	"github.com/warp/forecast-engine/schedule"
)

func TestBudget_SplitAt(t *testing.T) {
	// GIVEN: a persisted recurring budget
	b := monthlyBudget(t).WithID(7)

	// WHEN: splitting at mid-year with a new amount for the continuation
	newAmount := eur(-150)
	terminated, continuation, err := b.SplitAt(date(2023, time.June, 15), forecast.SplitOverrides{
		Amount: &newAmount,
	})
	require.NoError(t, err)

	// THEN: the terminated record keeps its identity and amount
	assert.Equal(t, forecast.BudgetID(7), terminated.ID())
	assert.True(t, terminated.Amount().Equal(eur(-100)))
	assert.Equal(t, forecast.CategoryGroceries, terminated.Category())
	end, bounded := terminated.TimeRange().End().Date()
	require.True(t, bounded)
	assert.Equal(t, date(2023, time.June, 30), end)

	// AND: the continuation is a new record starting at the pivot
	assert.Equal(t, forecast.BudgetID(0), continuation.ID())
	assert.True(t, continuation.Amount().Equal(eur(-150)))
	assert.Equal(t, date(2023, time.July, 1), continuation.TimeRange().InitialDate())

	// AND: the original budget is untouched
	assert.Equal(t, date(2023, time.January, 1), b.TimeRange().InitialDate())
}

func TestBudget_SplitAt_PeriodAndDurationOverrides(t *testing.T) {
	b := monthlyBudget(t)

	newPeriod := schedule.Months(2)
	newDuration := schedule.Weeks(2)
	_, continuation, err := b.SplitAt(date(2023, time.June, 15), forecast.SplitOverrides{
		Period:   &newPeriod,
		Duration: &newDuration,
	})
	require.NoError(t, err)

	periodic, ok := continuation.TimeRange().(schedule.PeriodicTimeRange)
	require.True(t, ok)
	assert.Equal(t, schedule.Months(2), periodic.Period())
	assert.Equal(t, schedule.Weeks(2), periodic.Duration())
}

func TestBudget_SplitAt_NonRecurring(t *testing.T) {
	tr, err := schedule.NewTimeRange(date(2023, time.January, 1), schedule.Months(6))
	require.NoError(t, err)
	b := forecast.NewBudget(0, "works", eur(-2000), forecast.CategoryOther, tr)

	_, _, err = b.SplitAt(date(2023, time.March, 1), forecast.SplitOverrides{})
	require.ErrorIs(t, err, forecast.ErrNotRecurring)
	assert.True(t, forecast.IsInvalidArgument(err))

	// The record-level error is distinct from the range-level split errors.
	assert.NotErrorIs(t, err, schedule.ErrSplitBeforeStart)
}

func TestBudget_SplitAt_PropagatesRangeErrors(t *testing.T) {
	b := monthlyBudget(t)
	_, _, err := b.SplitAt(date(2022, time.June, 1), forecast.SplitOverrides{})
	require.ErrorIs(t, err, schedule.ErrSplitBeforeStart)
}

func TestBudget_Replace(t *testing.T) {
	b := monthlyBudget(t).WithID(3)

	desc := "food"
	replaced, err := b.Replace(forecast.BudgetPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "food", replaced.Description())
	assert.Equal(t, forecast.BudgetID(3), replaced.ID())
	assert.True(t, replaced.Amount().Equal(b.Amount()))

	// Empty patch is identity.
	same, err := b.Replace(forecast.BudgetPatch{})
	require.NoError(t, err)
	assert.Equal(t, b.Description(), same.Description())
	assert.True(t, same.Amount().Equal(b.Amount()))
}

func TestBudget_Replace_RejectsEmptyCategory(t *testing.T) {
	b := monthlyBudget(t)
	empty := forecast.Category("")
	_, err := b.Replace(forecast.BudgetPatch{Category: &empty})
	require.Error(t, err)
	assert.True(t, forecast.IsInvalidArgument(err))
}

func TestPlannedOperation_RequiresDayShapedSchedule(t *testing.T) {
	tr, err := schedule.NewTimeRange(date(2023, time.January, 1), schedule.Days(10))
	require.NoError(t, err)

	_, err = forecast.NewPlannedOperation(0, "rent", eur(-650), forecast.CategoryRent, tr)
	require.Error(t, err)
	assert.True(t, forecast.IsInvalidArgument(err))

	_, err = forecast.NewPlannedOperation(0, "rent", eur(-650), forecast.CategoryRent,
		schedule.SingleDay(date(2023, time.January, 5)))
	assert.NoError(t, err)
}

func TestPlannedOperation_SplitAt(t *testing.T) {
	po := monthlyRent(t)
	po = po.WithID(11)

	newAmount := eur(-700)
	terminated, continuation, err := po.SplitAt(date(2023, time.July, 1), forecast.SplitOverrides{
		Amount: &newAmount,
	})
	require.NoError(t, err)

	assert.Equal(t, forecast.PlannedOperationID(11), terminated.ID())
	end, _ := terminated.TimeRange().End().Date()
	assert.Equal(t, date(2023, time.July, 4), end)

	assert.Equal(t, forecast.PlannedOperationID(0), continuation.ID())
	assert.Equal(t, date(2023, time.July, 5), continuation.TimeRange().InitialDate())
	assert.True(t, continuation.Amount().Equal(eur(-700)))
}

func TestPlannedOperation_ArchivedFlag(t *testing.T) {
	po := monthlyRent(t)
	assert.False(t, po.Archived())

	archived := po.WithArchived(true)
	assert.True(t, archived.Archived())
	assert.False(t, po.Archived(), "original untouched")
}
