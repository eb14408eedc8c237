package forecast

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/warp/forecast-engine/schedule"
)

// =============================================================================
// FORECAST - Monthly planned totals across many records
// =============================================================================

// Forecast aggregates planned value over time across a set of budgets and
// planned operations.
type Forecast struct {
	budgets []Budget
	planned []PlannedOperation
}

// NewForecast builds a forecast over the given records. Archived planned
// operations are skipped.
func NewForecast(budgets []Budget, planned []PlannedOperation) Forecast {
	active := make([]PlannedOperation, 0, len(planned))
	for _, po := range planned {
		if !po.Archived() {
			active = append(active, po)
		}
	}
	return Forecast{budgets: budgets, planned: active}
}

// Budgets returns the budgets under forecast.
func (f Forecast) Budgets() []Budget { return f.budgets }

// PlannedOperations returns the active planned operations under forecast.
func (f Forecast) PlannedOperations() []PlannedOperation { return f.planned }

// MonthlySummary is the planned value per category for one calendar month.
type MonthlySummary struct {
	Month      schedule.Date // first day of the month
	Categories map[Category]decimal.Decimal
	Total      decimal.Decimal
}

// MonthlySummaries prorates every record over each of the given number of
// calendar months starting at the month containing start. Months are
// independent, so they are computed in parallel; proration is read-only
// over immutable records and needs no locking.
func (f Forecast) MonthlySummaries(start schedule.Date, months int) ([]MonthlySummary, error) {
	if months <= 0 {
		return nil, fmt.Errorf("%w: months must be positive, got %d", schedule.ErrInvalidArgument, months)
	}

	summaries := make([]MonthlySummary, months)
	var g errgroup.Group
	for i := 0; i < months; i++ {
		i := i
		g.Go(func() error {
			monthStart := schedule.Months(i).AddTo(schedule.StartOfMonth(start))
			monthEnd := schedule.Months(1).AddTo(monthStart).AddDays(-1)

			summary, err := f.summarize(monthStart, monthEnd)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// summarize prorates every record over one window.
func (f Forecast) summarize(start, end schedule.Date) (MonthlySummary, error) {
	summary := MonthlySummary{
		Month:      start,
		Categories: make(map[Category]decimal.Decimal),
	}

	add := func(category Category, amount Amount) {
		if amount.IsZero() {
			return
		}
		summary.Categories[category] = summary.Categories[category].Add(amount.Value)
		summary.Total = summary.Total.Add(amount.Value)
	}

	for _, b := range f.budgets {
		amount, err := b.AmountOnPeriod(start, end)
		if err != nil {
			return MonthlySummary{}, fmt.Errorf("budget %q: %w", b.Description(), err)
		}
		add(b.Category(), amount)
	}
	for _, po := range f.planned {
		amount, err := po.AmountOnPeriod(start, end)
		if err != nil {
			return MonthlySummary{}, fmt.Errorf("planned operation %q: %w", po.Description(), err)
		}
		add(po.Category(), amount)
	}
	return summary, nil
}
