package forecast

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Money with a currency
// =============================================================================

// DefaultCurrency is used when no currency is given.
const DefaultCurrency = "EUR"

// Amount is a signed amount of money. Negative means an expense, positive an
// income. Values are decimals, never floats; day-level proration must not
// leak binary rounding into forecasts.
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

// NewAmount builds an amount from a decimal value.
func NewAmount(value decimal.Decimal, currency string) Amount {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Amount{Value: value, Currency: currency}
}

// AmountFromFloat is a convenience constructor for literals and API input.
func AmountFromFloat(value float64, currency string) Amount {
	return NewAmount(decimal.NewFromFloat(value), currency)
}

// Add returns the sum of two amounts of the same currency.
func (a Amount) Add(other Amount) (Amount, error) {
	if a.Currency != other.Currency {
		return Amount{}, fmt.Errorf("%w: cannot add %s and %s", ErrCurrencyMismatch, a.Currency, other.Currency)
	}
	return Amount{Value: a.Value.Add(other.Value), Currency: a.Currency}, nil
}

// Neg returns the negated amount.
func (a Amount) Neg() Amount {
	return Amount{Value: a.Value.Neg(), Currency: a.Currency}
}

// Abs returns the absolute amount.
func (a Amount) Abs() Amount {
	return Amount{Value: a.Value.Abs(), Currency: a.Currency}
}

// IsZero reports whether the value is zero.
func (a Amount) IsZero() bool { return a.Value.IsZero() }

// Equal compares value and currency.
func (a Amount) Equal(other Amount) bool {
	return a.Currency == other.Currency && a.Value.Equal(other.Value)
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Value, a.Currency)
}
