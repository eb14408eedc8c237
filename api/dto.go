/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

AMOUNTS:
  Amounts travel as decimal strings ("-123.45"), never JSON numbers, so no
  precision is lost between client and engine.

SCHEDULES:
  A schedule is a RangeDTO: an initial date, a calendar duration, and for
  recurring schedules a period plus an optional expiration date. Calendar
  components stay separate (years/months/weeks/days) end to end.

SEE ALSO:
  - handlers.go: Uses these types
  - store/sqlite: Persists the same components
*/
package api

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/warp/forecast-engine/forecast"
	"github.com/warp/forecast-engine/schedule"
)

// =============================================================================
// SCHEDULE TYPES
// =============================================================================

// DurationDTO is a calendar duration with independent components.
type DurationDTO struct {
	Years  int `json:"years,omitempty"`
	Months int `json:"months,omitempty"`
	Weeks  int `json:"weeks,omitempty"`
	Days   int `json:"days,omitempty"`
}

// RangeDTO represents a time range or periodic time range. Period is absent
// for one-time ranges; ExpirationDate is absent for unbounded schedules.
type RangeDTO struct {
	InitialDate    string       `json:"initial_date"`
	Duration       DurationDTO  `json:"duration"`
	Period         *DurationDTO `json:"period,omitempty"`
	ExpirationDate *string      `json:"expiration_date,omitempty"`
}

// MatchParamsDTO carries reconciliation tolerances. A nil
// AmountToleranceRatio means any amount matches.
type MatchParamsDTO struct {
	DescriptionHints     []string `json:"description_hints,omitempty"`
	DateToleranceDays    int      `json:"date_tolerance_days"`
	AmountToleranceRatio *float64 `json:"amount_tolerance_ratio,omitempty"`
}

// =============================================================================
// RECORD TYPES
// =============================================================================

// BudgetDTO represents a budget in API responses.
type BudgetDTO struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Schedule    RangeDTO        `json:"schedule"`
	MatchParams *MatchParamsDTO `json:"match_params,omitempty"`
}

// PlannedOperationDTO represents a planned operation in API responses.
// The schedule duration is always a single day.
type PlannedOperationDTO struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Schedule    RangeDTO        `json:"schedule"`
	Archived    bool            `json:"archived"`
	MatchParams *MatchParamsDTO `json:"match_params,omitempty"`
}

// SaveBudgetRequest creates or replaces a budget.
type SaveBudgetRequest struct {
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Schedule    RangeDTO        `json:"schedule"`
	MatchParams *MatchParamsDTO `json:"match_params,omitempty"`
}

// SavePlannedOperationRequest creates or replaces a planned operation. The
// schedule duration may be omitted; it defaults to one day.
type SavePlannedOperationRequest struct {
	Description string          `json:"description"`
	Amount      string          `json:"amount"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Schedule    RangeDTO        `json:"schedule"`
	Archived    bool            `json:"archived"`
	MatchParams *MatchParamsDTO `json:"match_params,omitempty"`
}

// SplitRequest divides a recurring record at a date. Overrides apply to the
// continuation record only. Duration is accepted for budgets and ignored
// for planned operations.
type SplitRequest struct {
	SplitDate string       `json:"split_date"`
	Amount    *string      `json:"amount,omitempty"`
	Period    *DurationDTO `json:"period,omitempty"`
	Duration  *DurationDTO `json:"duration,omitempty"`
}

// SplitBudgetResponse returns both halves of a split.
type SplitBudgetResponse struct {
	Terminated   BudgetDTO `json:"terminated"`
	Continuation BudgetDTO `json:"continuation"`
}

// SplitPlannedOperationResponse returns both halves of a split.
type SplitPlannedOperationResponse struct {
	Terminated   PlannedOperationDTO `json:"terminated"`
	Continuation PlannedOperationDTO `json:"continuation"`
}

// =============================================================================
// FORECAST TYPES
// =============================================================================

// MonthlySummaryDTO is one month of the forecast, amounts as decimal strings.
type MonthlySummaryDTO struct {
	Month      string            `json:"month"`
	Categories map[string]string `json:"categories"`
	Total      string            `json:"total"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toDurationDTO(d schedule.Duration) DurationDTO {
	return DurationDTO{Years: d.Years, Months: d.Months, Weeks: d.Weeks, Days: d.Days}
}

func durationFromDTO(d DurationDTO) schedule.Duration {
	return schedule.Duration{Years: d.Years, Months: d.Months, Weeks: d.Weeks, Days: d.Days}
}

func toRangeDTO(r schedule.Range) RangeDTO {
	dto := RangeDTO{
		InitialDate: r.InitialDate().String(),
		Duration:    toDurationDTO(r.Duration()),
	}
	if periodic, ok := r.(schedule.PeriodicTimeRange); ok {
		period := toDurationDTO(periodic.Period())
		dto.Period = &period
		if end, bounded := periodic.Expiration().Date(); bounded {
			s := end.String()
			dto.ExpirationDate = &s
		}
	}
	return dto
}

func rangeFromDTO(dto RangeDTO) (schedule.Range, error) {
	initial, err := schedule.ParseDate(dto.InitialDate)
	if err != nil {
		return nil, fmt.Errorf("%w: initial_date: %v", schedule.ErrInvalidArgument, err)
	}
	base, err := schedule.NewTimeRange(initial, durationFromDTO(dto.Duration))
	if err != nil {
		return nil, err
	}
	if dto.Period == nil {
		if dto.ExpirationDate != nil {
			return nil, fmt.Errorf("%w: expiration_date requires a period", schedule.ErrInvalidArgument)
		}
		return base, nil
	}

	expiration := schedule.NeverExpires()
	if dto.ExpirationDate != nil {
		end, err := schedule.ParseDate(*dto.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("%w: expiration_date: %v", schedule.ErrInvalidArgument, err)
		}
		expiration = schedule.ExpiresOn(end)
	}
	return schedule.NewPeriodicTimeRange(base, durationFromDTO(*dto.Period), expiration)
}

func toMatchParamsDTO(p forecast.MatchParams) *MatchParamsDTO {
	dto := &MatchParamsDTO{
		DescriptionHints:  p.DescriptionHints,
		DateToleranceDays: p.DateToleranceDays,
	}
	if !math.IsInf(p.AmountToleranceRatio, 1) {
		ratio := p.AmountToleranceRatio
		dto.AmountToleranceRatio = &ratio
	}
	return dto
}

func matchParamsFromDTO(dto MatchParamsDTO) forecast.MatchParams {
	p := forecast.MatchParams{
		DescriptionHints:     dto.DescriptionHints,
		DateToleranceDays:    dto.DateToleranceDays,
		AmountToleranceRatio: math.Inf(1),
	}
	if dto.AmountToleranceRatio != nil {
		p.AmountToleranceRatio = *dto.AmountToleranceRatio
	}
	return p
}

func amountFromRequest(value, currency string) (forecast.Amount, error) {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return forecast.Amount{}, fmt.Errorf("%w: amount: %v", schedule.ErrInvalidArgument, err)
	}
	if currency == "" {
		currency = forecast.DefaultCurrency
	}
	return forecast.NewAmount(v, currency), nil
}

func toBudgetDTO(b forecast.Budget) BudgetDTO {
	return BudgetDTO{
		ID:          int64(b.ID()),
		Description: b.Description(),
		Amount:      b.Amount().Value.String(),
		Currency:    b.Amount().Currency,
		Category:    string(b.Category()),
		Schedule:    toRangeDTO(b.TimeRange()),
		MatchParams: toMatchParamsDTO(b.MatchParams()),
	}
}

func toPlannedOperationDTO(po forecast.PlannedOperation) PlannedOperationDTO {
	return PlannedOperationDTO{
		ID:          int64(po.ID()),
		Description: po.Description(),
		Amount:      po.Amount().Value.String(),
		Currency:    po.Amount().Currency,
		Category:    string(po.Category()),
		Schedule:    toRangeDTO(po.TimeRange()),
		Archived:    po.Archived(),
		MatchParams: toMatchParamsDTO(po.MatchParams()),
	}
}

func toMonthlySummaryDTO(s forecast.MonthlySummary) MonthlySummaryDTO {
	categories := make(map[string]string, len(s.Categories))
	for category, value := range s.Categories {
		categories[string(category)] = value.String()
	}
	return MonthlySummaryDTO{
		Month:      s.Month.String(),
		Categories: categories,
		Total:      s.Total.String(),
	}
}
