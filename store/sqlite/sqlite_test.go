package sqlite

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/forecast-engine/forecast"
	"github.com/warp/forecast-engine/schedule"
	"github.com/warp/forecast-engine/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func date(y int, m time.Month, d int) schedule.Date {
	return schedule.NewDate(y, m, d)
}

func eur(value float64) forecast.Amount {
	return forecast.AmountFromFloat(value, "EUR")
}

func TestBudgetRoundTrip_Recurring(t *testing.T) {
	// GIVEN a monthly groceries budget with a bounded schedule
	repo := newTestRepo(t)
	ctx := context.Background()

	base, err := schedule.NewTimeRange(date(2023, time.January, 1), schedule.Months(1))
	require.NoError(t, err)
	rng, err := schedule.NewPeriodicTimeRange(base, schedule.Months(1),
		schedule.ExpiresOn(date(2023, time.December, 31)))
	require.NoError(t, err)

	b := forecast.NewBudget(0, "groceries", eur(-400), forecast.CategoryGroceries, rng)

	// WHEN it is saved and loaded back
	saved, err := repo.SaveBudget(ctx, b)
	require.NoError(t, err)
	require.NotZero(t, saved.ID())

	loaded, err := repo.GetBudget(ctx, saved.ID())
	require.NoError(t, err)

	// THEN every schedule component survives unchanged
	got, ok := loaded.TimeRange().(schedule.PeriodicTimeRange)
	require.True(t, ok)
	assert.True(t, got.Equal(rng))
	assert.Equal(t, schedule.Months(1), got.Duration())
	assert.Equal(t, schedule.Months(1), got.Period())
	end, bounded := got.Expiration().Date()
	require.True(t, bounded)
	assert.True(t, end.Equal(date(2023, time.December, 31)))

	assert.Equal(t, "groceries", loaded.Description())
	assert.True(t, loaded.Amount().Equal(eur(-400)))
	assert.Equal(t, forecast.CategoryGroceries, loaded.Category())

	// AND the budget defaults round-trip: no date tolerance, unlimited ratio
	assert.Equal(t, 0, loaded.MatchParams().DateToleranceDays)
	assert.True(t, math.IsInf(loaded.MatchParams().AmountToleranceRatio, 1))
}

func TestBudgetRoundTrip_OneTime(t *testing.T) {
	// GIVEN a one-time budget (plain time range, no period)
	repo := newTestRepo(t)
	ctx := context.Background()

	rng, err := schedule.NewTimeRange(date(2024, time.June, 10), schedule.Days(14))
	require.NoError(t, err)
	b := forecast.NewBudget(0, "vacation", eur(-1500), forecast.CategoryHolidays, rng)

	saved, err := repo.SaveBudget(ctx, b)
	require.NoError(t, err)

	// WHEN loaded back
	loaded, err := repo.GetBudget(ctx, saved.ID())
	require.NoError(t, err)

	// THEN it decodes as a non-recurring range
	got, ok := loaded.TimeRange().(schedule.TimeRange)
	require.True(t, ok)
	assert.True(t, got.InitialDate().Equal(date(2024, time.June, 10)))
	assert.Equal(t, schedule.Days(14), got.Duration())
}

func TestBudget_ComponentsNotFlattened(t *testing.T) {
	// GIVEN a duration mixing calendar components
	repo := newTestRepo(t)
	ctx := context.Background()

	dur := schedule.Duration{Years: 1, Months: 2, Weeks: 3, Days: 4}
	rng, err := schedule.NewTimeRange(date(2023, time.March, 15), dur)
	require.NoError(t, err)
	b := forecast.NewBudget(0, "long project", eur(-9000), forecast.CategoryOther, rng)

	saved, err := repo.SaveBudget(ctx, b)
	require.NoError(t, err)
	loaded, err := repo.GetBudget(ctx, saved.ID())
	require.NoError(t, err)

	// THEN the components come back exactly, not as an approximated day count
	assert.Equal(t, dur, loaded.TimeRange().Duration())
}

func TestBudget_UpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rng, err := schedule.NewTimeRange(date(2024, time.January, 1), schedule.Months(1))
	require.NoError(t, err)
	saved, err := repo.SaveBudget(ctx,
		forecast.NewBudget(0, "rent", eur(-650), forecast.CategoryRent, rng))
	require.NoError(t, err)

	// WHEN the amount is updated in place
	updated, err := saved.Replace(forecast.BudgetPatch{Amount: amountPtr(eur(-700))})
	require.NoError(t, err)
	_, err = repo.SaveBudget(ctx, updated)
	require.NoError(t, err)

	loaded, err := repo.GetBudget(ctx, saved.ID())
	require.NoError(t, err)
	assert.True(t, loaded.Amount().Equal(eur(-700)))

	// AND deletion removes it
	require.NoError(t, repo.DeleteBudget(ctx, saved.ID()))
	_, err = repo.GetBudget(ctx, saved.ID())
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, repo.DeleteBudget(ctx, saved.ID()), store.ErrNotFound)
}

func TestListBudgets_OrderedByDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, d := range []schedule.Date{
		date(2024, time.March, 1),
		date(2024, time.January, 1),
		date(2024, time.February, 1),
	} {
		rng, err := schedule.NewTimeRange(d, schedule.Months(1))
		require.NoError(t, err)
		_, err = repo.SaveBudget(ctx,
			forecast.NewBudget(0, "b", eur(-1), forecast.CategoryOther, rng))
		require.NoError(t, err)
	}

	budgets, err := repo.ListBudgets(ctx)
	require.NoError(t, err)
	require.Len(t, budgets, 3)
	assert.True(t, budgets[0].TimeRange().InitialDate().Equal(date(2024, time.January, 1)))
	assert.True(t, budgets[2].TimeRange().InitialDate().Equal(date(2024, time.March, 1)))
}

func TestPlannedOperationRoundTrip(t *testing.T) {
	// GIVEN a recurring salary with custom match tolerances
	repo := newTestRepo(t)
	ctx := context.Background()

	base, err := schedule.NewTimeRange(date(2023, time.January, 28), schedule.Days(1))
	require.NoError(t, err)
	rng, err := schedule.NewPeriodicTimeRange(base, schedule.Months(1), schedule.NeverExpires())
	require.NoError(t, err)

	po, err := forecast.NewPlannedOperation(0, "salary", eur(2500),
		forecast.CategorySalary, rng)
	require.NoError(t, err)
	po = po.WithMatchParams(forecast.MatchParams{
		DescriptionHints:     []string{"ACME", "payroll"},
		DateToleranceDays:    3,
		AmountToleranceRatio: 0.1,
	})

	saved, err := repo.SavePlannedOperation(ctx, po)
	require.NoError(t, err)
	loaded, err := repo.GetPlannedOperation(ctx, saved.ID())
	require.NoError(t, err)

	// THEN the schedule, amount, and tolerances all survive
	got, ok := loaded.TimeRange().(schedule.PeriodicTimeRange)
	require.True(t, ok)
	assert.True(t, got.Equal(rng))
	assert.False(t, got.Expiration().Bounded())

	assert.Equal(t, []string{"ACME", "payroll"}, loaded.MatchParams().DescriptionHints)
	assert.Equal(t, 3, loaded.MatchParams().DateToleranceDays)
	assert.InDelta(t, 0.1, loaded.MatchParams().AmountToleranceRatio, 1e-12)
	assert.False(t, loaded.Archived())
}

func TestPlannedOperation_ArchivedFlag(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rng, err := schedule.NewTimeRange(date(2024, time.May, 1), schedule.Days(1))
	require.NoError(t, err)
	po, err := forecast.NewPlannedOperation(0, "old gym", eur(-30),
		forecast.CategoryEntertainment, rng)
	require.NoError(t, err)

	saved, err := repo.SavePlannedOperation(ctx, po.WithArchived(true))
	require.NoError(t, err)

	loaded, err := repo.GetPlannedOperation(ctx, saved.ID())
	require.NoError(t, err)
	assert.True(t, loaded.Archived())
}

func TestPlannedOperation_Delete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rng, err := schedule.NewTimeRange(date(2024, time.May, 1), schedule.Days(1))
	require.NoError(t, err)
	po, err := forecast.NewPlannedOperation(0, "one-off", eur(-10),
		forecast.CategoryOther, rng)
	require.NoError(t, err)

	saved, err := repo.SavePlannedOperation(ctx, po)
	require.NoError(t, err)

	require.NoError(t, repo.DeletePlannedOperation(ctx, saved.ID()))
	_, err = repo.GetPlannedOperation(ctx, saved.ID())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func amountPtr(a forecast.Amount) *forecast.Amount { return &a }
