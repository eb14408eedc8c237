package forecast_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/forecast-engine/forecast"
	"github.com/warp/forecast-engine/schedule"
)

func TestForecast_MonthlySummaries(t *testing.T) {
	// GIVEN: a -100 groceries budget, +2000 salary and -650 rent monthly
	b := monthlyBudget(t)

	salaryBase := schedule.SingleDay(date(2023, time.January, 28))
	salaryRange, err := schedule.NewPeriodicTimeRange(salaryBase, schedule.Months(1),
		schedule.ExpiresOn(date(2023, time.December, 31)))
	require.NoError(t, err)
	salary, err := forecast.NewPlannedOperation(0, "salary", eur(2000), forecast.CategorySalary, salaryRange)
	require.NoError(t, err)

	rent := monthlyRent(t)

	f := forecast.NewForecast([]forecast.Budget{b}, []forecast.PlannedOperation{salary, rent})

	// WHEN: summarizing three months
	summaries, err := f.MonthlySummaries(date(2023, time.February, 10), 3)
	require.NoError(t, err)
	require.Len(t, summaries, 3)

	// THEN: each month carries the full planned value per category
	months := []schedule.Date{
		date(2023, time.February, 1),
		date(2023, time.March, 1),
		date(2023, time.April, 1),
	}
	for i, s := range summaries {
		assert.Equal(t, months[i], s.Month)
		assert.True(t, s.Categories[forecast.CategoryGroceries].Equal(decimal.NewFromInt(-100)),
			"month %s groceries", s.Month)
		assert.True(t, s.Categories[forecast.CategorySalary].Equal(decimal.NewFromInt(2000)),
			"month %s salary", s.Month)
		assert.True(t, s.Categories[forecast.CategoryRent].Equal(decimal.NewFromInt(-650)),
			"month %s rent", s.Month)
		assert.True(t, s.Total.Equal(decimal.NewFromInt(1250)), "month %s total", s.Month)
	}
}

func TestForecast_SkipsArchivedOperations(t *testing.T) {
	rent := monthlyRent(t).WithArchived(true)
	f := forecast.NewForecast(nil, []forecast.PlannedOperation{rent})
	assert.Empty(t, f.PlannedOperations())

	summaries, err := f.MonthlySummaries(date(2023, time.March, 1), 1)
	require.NoError(t, err)
	assert.Empty(t, summaries[0].Categories)
}

func TestForecast_RejectsNonPositiveMonths(t *testing.T) {
	f := forecast.NewForecast(nil, nil)
	_, err := f.MonthlySummaries(date(2023, time.March, 1), 0)
	require.Error(t, err)
	assert.True(t, forecast.IsInvalidArgument(err))
}
