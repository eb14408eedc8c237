/*
Package forecast models the records that own calendar schedules: budgets and
planned operations. It layers prorated value-over-time and planned-vs-actual
matching on top of the schedule engine.

KEY CONCEPTS:
  - Budget: an amount allocated to a category over a (possibly recurring) span
  - PlannedOperation: a forecasted transaction on a (possibly recurring) day
  - Transaction: an actual bank operation candidates are matched against
  - Matcher: decides whether a transaction satisfies a scheduled record
  - Forecast: per-month, per-category planned totals across many records

DESIGN PRINCIPLES:
  1. Immutability: records are replaced wholesale on edit, never mutated
  2. Precision: decimal.Decimal everywhere, proration multiplies before dividing
  3. Delegation: all calendar reasoning lives in the schedule package
*/
package forecast

import (
	"errors"

	"github.com/warp/forecast-engine/schedule"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// BudgetID identifies a persisted budget. Zero means not persisted yet.
type BudgetID int64

// PlannedOperationID identifies a persisted planned operation. Zero means
// not persisted yet.
type PlannedOperationID int64

// =============================================================================
// CATEGORY
// =============================================================================

// Category groups transactions. The value is a language-neutral key used for
// persistence and matching; display naming belongs to the presentation layer.
type Category string

const (
	CategoryUncategorized Category = "uncategorized"

	// Income
	CategorySalary   Category = "salary"
	CategoryBenefits Category = "benefits"

	// Housing
	CategoryRent          Category = "rent"
	CategoryHouseLoan     Category = "house_loan"
	CategoryLoanInsurance Category = "loan_insurance"

	// Investments
	CategorySavings Category = "savings"

	// Utilities
	CategoryElectricity Category = "electricity"
	CategoryWater       Category = "water"
	CategoryInternet    Category = "internet"
	CategoryPhone       Category = "phone"

	// Daily life
	CategoryGroceries     Category = "groceries"
	CategoryClothing      Category = "clothing"
	CategoryHealthCare    Category = "health_care"
	CategoryCarFuel       Category = "car_fuel"
	CategoryCarInsurance  Category = "car_insurance"
	CategoryEntertainment Category = "entertainment"
	CategoryHolidays      Category = "holidays"
	CategoryGifts         Category = "gifts"

	// Other
	CategoryBankFees Category = "bank_fees"
	CategoryTaxes    Category = "taxes"
	CategoryOther    Category = "other"
)

// =============================================================================
// TRANSACTION - Actual bank operation seen by the matcher
// =============================================================================

// Transaction is the concrete view of a historic bank operation that
// matching consumes. The import pipeline producing these lives outside this
// package.
type Transaction struct {
	Date        schedule.Date
	Amount      Amount
	Category    Category
	Description string
}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotRecurring is returned when a split is attempted on a record
	// whose schedule has a single occurrence. Distinct from the range-level
	// split errors so callers can tell "wrong record kind" from "wrong
	// date".
	ErrNotRecurring = errors.New("cannot split a non-recurring schedule")

	// ErrCurrencyMismatch is returned when combining amounts of different
	// currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// IsInvalidArgument reports whether err is a rejected input, from this
// package or from the schedule engine underneath.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrNotRecurring) ||
		errors.Is(err, ErrCurrencyMismatch) ||
		schedule.IsInvalidArgument(err)
}
