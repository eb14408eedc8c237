/*
Package sqlite provides the SQLite-backed implementation of store.Repository.

PURPOSE:
  Persists budgets and planned operations. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

RANGE ENCODING:
  A schedule is stored as its components, never as expanded occurrences:
  - initial_date          TEXT "2006-01-02"
  - duration y/m/w/d      INTEGER columns (calendar components, exact)
  - period y/m/w/d        INTEGER columns, NULL for non-recurring records
  - expiration_date       TEXT, NULL for unbounded schedules
  Storing integer components (not day counts) makes round-trips bit-identical.

AMOUNTS:
  Decimal values are stored as TEXT and reparsed, never through float64.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  repo, err := sqlite.New("./data/forecast.db")
  if err != nil {
      log.Fatal(err)
  }
  defer repo.Close()

SEE ALSO:
  - store/store.go: Interface definition
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/forecast-engine/forecast"
	"github.com/warp/forecast-engine/schedule"
	"github.com/warp/forecast-engine/store"
)

// Repository implements store.Repository using SQLite.
type Repository struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ store.Repository = (*Repository)(nil)

// New creates a new SQLite repository with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate creates the database schema.
func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS budgets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		amount_value TEXT NOT NULL,
		currency TEXT NOT NULL,
		category TEXT NOT NULL,
		initial_date TEXT NOT NULL,
		duration_years INTEGER NOT NULL,
		duration_months INTEGER NOT NULL,
		duration_weeks INTEGER NOT NULL,
		duration_days INTEGER NOT NULL,
		period_years INTEGER,
		period_months INTEGER,
		period_weeks INTEGER,
		period_days INTEGER,
		expiration_date TEXT,
		description_hints TEXT NOT NULL DEFAULT '[]',
		date_tolerance_days INTEGER NOT NULL DEFAULT 0,
		amount_tolerance_ratio REAL
	);

	CREATE TABLE IF NOT EXISTS planned_operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		amount_value TEXT NOT NULL,
		currency TEXT NOT NULL,
		category TEXT NOT NULL,
		initial_date TEXT NOT NULL,
		period_years INTEGER,
		period_months INTEGER,
		period_weeks INTEGER,
		period_days INTEGER,
		expiration_date TEXT,
		archived INTEGER NOT NULL DEFAULT 0,
		description_hints TEXT NOT NULL DEFAULT '[]',
		date_tolerance_days INTEGER NOT NULL DEFAULT 5,
		amount_tolerance_ratio REAL
	);

	CREATE INDEX IF NOT EXISTS idx_budgets_category ON budgets(category);
	CREATE INDEX IF NOT EXISTS idx_planned_category ON planned_operations(category);
	CREATE INDEX IF NOT EXISTS idx_planned_archived ON planned_operations(archived);
	`
	_, err := r.db.Exec(schema)
	return err
}

// =============================================================================
// ENCODING HELPERS
// =============================================================================

// rangeRow is the column-level form of a schedule.Range.
type rangeRow struct {
	initial  string
	duration schedule.Duration
	period   *schedule.Duration
	expiry   sql.NullString
}

func encodeRange(r schedule.Range) (rangeRow, error) {
	switch rng := r.(type) {
	case schedule.TimeRange:
		return rangeRow{
			initial:  rng.InitialDate().String(),
			duration: rng.Duration(),
		}, nil
	case schedule.PeriodicTimeRange:
		period := rng.Period()
		row := rangeRow{
			initial:  rng.InitialDate().String(),
			duration: rng.Duration(),
			period:   &period,
		}
		if end, bounded := rng.Expiration().Date(); bounded {
			row.expiry = sql.NullString{String: end.String(), Valid: true}
		}
		return row, nil
	default:
		return rangeRow{}, fmt.Errorf("unsupported range type %T", r)
	}
}

func decodeRange(row rangeRow) (schedule.Range, error) {
	initial, err := schedule.ParseDate(row.initial)
	if err != nil {
		return nil, fmt.Errorf("bad initial_date %q: %w", row.initial, err)
	}
	base, err := schedule.NewTimeRange(initial, row.duration)
	if err != nil {
		return nil, err
	}
	if row.period == nil {
		return base, nil
	}

	expiration := schedule.NeverExpires()
	if row.expiry.Valid {
		end, err := schedule.ParseDate(row.expiry.String)
		if err != nil {
			return nil, fmt.Errorf("bad expiration_date %q: %w", row.expiry.String, err)
		}
		expiration = schedule.ExpiresOn(end)
	}
	return schedule.NewPeriodicTimeRange(base, *row.period, expiration)
}

func encodeParams(p forecast.MatchParams) (hints string, ratio sql.NullFloat64, err error) {
	raw, err := json.Marshal(p.DescriptionHints)
	if err != nil {
		return "", sql.NullFloat64{}, err
	}
	if !math.IsInf(p.AmountToleranceRatio, 1) {
		ratio = sql.NullFloat64{Float64: p.AmountToleranceRatio, Valid: true}
	}
	return string(raw), ratio, nil
}

func decodeParams(hints string, toleranceDays int, ratio sql.NullFloat64) (forecast.MatchParams, error) {
	p := forecast.MatchParams{
		DateToleranceDays:    toleranceDays,
		AmountToleranceRatio: math.Inf(1),
	}
	if err := json.Unmarshal([]byte(hints), &p.DescriptionHints); err != nil {
		return forecast.MatchParams{}, fmt.Errorf("bad description_hints %q: %w", hints, err)
	}
	if len(p.DescriptionHints) == 0 {
		p.DescriptionHints = nil
	}
	if ratio.Valid {
		p.AmountToleranceRatio = ratio.Float64
	}
	return p, nil
}

func parseAmount(value, currency string) (forecast.Amount, error) {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return forecast.Amount{}, fmt.Errorf("bad amount %q: %w", value, err)
	}
	return forecast.NewAmount(v, currency), nil
}

func periodColumns(period *schedule.Duration) (years, months, weeks, days sql.NullInt64) {
	if period == nil {
		return
	}
	toNull := func(n int) sql.NullInt64 { return sql.NullInt64{Int64: int64(n), Valid: true} }
	return toNull(period.Years), toNull(period.Months), toNull(period.Weeks), toNull(period.Days)
}

func periodFromColumns(years, months, weeks, days sql.NullInt64) *schedule.Duration {
	if !years.Valid {
		return nil
	}
	return &schedule.Duration{
		Years:  int(years.Int64),
		Months: int(months.Int64),
		Weeks:  int(weeks.Int64),
		Days:   int(days.Int64),
	}
}

// =============================================================================
// BUDGETS
// =============================================================================

func (r *Repository) SaveBudget(ctx context.Context, b forecast.Budget) (forecast.Budget, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, err := encodeRange(b.TimeRange())
	if err != nil {
		return forecast.Budget{}, err
	}
	hints, ratio, err := encodeParams(b.MatchParams())
	if err != nil {
		return forecast.Budget{}, err
	}
	py, pm, pw, pd := periodColumns(row.period)

	if b.ID() == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO budgets (
				description, amount_value, currency, category,
				initial_date, duration_years, duration_months, duration_weeks, duration_days,
				period_years, period_months, period_weeks, period_days, expiration_date,
				description_hints, date_tolerance_days, amount_tolerance_ratio
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.Description(), b.Amount().Value.String(), b.Amount().Currency, string(b.Category()),
			row.initial, row.duration.Years, row.duration.Months, row.duration.Weeks, row.duration.Days,
			py, pm, pw, pd, row.expiry,
			hints, b.MatchParams().DateToleranceDays, ratio,
		)
		if err != nil {
			return forecast.Budget{}, fmt.Errorf("failed to insert budget: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return forecast.Budget{}, err
		}
		return b.WithID(forecast.BudgetID(id)), nil
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE budgets SET
			description = ?, amount_value = ?, currency = ?, category = ?,
			initial_date = ?, duration_years = ?, duration_months = ?, duration_weeks = ?, duration_days = ?,
			period_years = ?, period_months = ?, period_weeks = ?, period_days = ?, expiration_date = ?,
			description_hints = ?, date_tolerance_days = ?, amount_tolerance_ratio = ?
		WHERE id = ?`,
		b.Description(), b.Amount().Value.String(), b.Amount().Currency, string(b.Category()),
		row.initial, row.duration.Years, row.duration.Months, row.duration.Weeks, row.duration.Days,
		py, pm, pw, pd, row.expiry,
		hints, b.MatchParams().DateToleranceDays, ratio,
		int64(b.ID()),
	)
	if err != nil {
		return forecast.Budget{}, fmt.Errorf("failed to update budget: %w", err)
	}
	return b, nil
}

const budgetColumns = `id, description, amount_value, currency, category,
	initial_date, duration_years, duration_months, duration_weeks, duration_days,
	period_years, period_months, period_weeks, period_days, expiration_date,
	description_hints, date_tolerance_days, amount_tolerance_ratio`

func (r *Repository) GetBudget(ctx context.Context, id forecast.BudgetID) (forecast.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, int64(id))
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return forecast.Budget{}, store.ErrNotFound
	}
	return b, err
}

func (r *Repository) ListBudgets(ctx context.Context) ([]forecast.Budget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets ORDER BY initial_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []forecast.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *Repository) DeleteBudget(ctx context.Context, id forecast.BudgetID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, int64(id))
	if err != nil {
		return err
	}
	return requireAffected(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (forecast.Budget, error) {
	var (
		id                            int64
		description, value, currency  string
		category, initial, hints      string
		dy, dm, dw, dd, toleranceDays int
		py, pm, pw, pd                sql.NullInt64
		expiry                        sql.NullString
		ratio                         sql.NullFloat64
	)
	if err := row.Scan(&id, &description, &value, &currency, &category,
		&initial, &dy, &dm, &dw, &dd,
		&py, &pm, &pw, &pd, &expiry,
		&hints, &toleranceDays, &ratio); err != nil {
		return forecast.Budget{}, err
	}

	rng, err := decodeRange(rangeRow{
		initial:  initial,
		duration: schedule.Duration{Years: dy, Months: dm, Weeks: dw, Days: dd},
		period:   periodFromColumns(py, pm, pw, pd),
		expiry:   expiry,
	})
	if err != nil {
		return forecast.Budget{}, err
	}
	amount, err := parseAmount(value, currency)
	if err != nil {
		return forecast.Budget{}, err
	}
	params, err := decodeParams(hints, toleranceDays, ratio)
	if err != nil {
		return forecast.Budget{}, err
	}

	return forecast.NewBudget(forecast.BudgetID(id), description, amount,
		forecast.Category(category), rng).WithMatchParams(params), nil
}

// =============================================================================
// PLANNED OPERATIONS
// =============================================================================

func (r *Repository) SavePlannedOperation(ctx context.Context, po forecast.PlannedOperation) (forecast.PlannedOperation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, err := encodeRange(po.TimeRange())
	if err != nil {
		return forecast.PlannedOperation{}, err
	}
	hints, ratio, err := encodeParams(po.MatchParams())
	if err != nil {
		return forecast.PlannedOperation{}, err
	}
	py, pm, pw, pd := periodColumns(row.period)

	if po.ID() == 0 {
		res, err := r.db.ExecContext(ctx, `
			INSERT INTO planned_operations (
				description, amount_value, currency, category, initial_date,
				period_years, period_months, period_weeks, period_days, expiration_date,
				archived, description_hints, date_tolerance_days, amount_tolerance_ratio
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			po.Description(), po.Amount().Value.String(), po.Amount().Currency, string(po.Category()),
			row.initial, py, pm, pw, pd, row.expiry,
			po.Archived(), hints, po.MatchParams().DateToleranceDays, ratio,
		)
		if err != nil {
			return forecast.PlannedOperation{}, fmt.Errorf("failed to insert planned operation: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return forecast.PlannedOperation{}, err
		}
		return po.WithID(forecast.PlannedOperationID(id)), nil
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE planned_operations SET
			description = ?, amount_value = ?, currency = ?, category = ?, initial_date = ?,
			period_years = ?, period_months = ?, period_weeks = ?, period_days = ?, expiration_date = ?,
			archived = ?, description_hints = ?, date_tolerance_days = ?, amount_tolerance_ratio = ?
		WHERE id = ?`,
		po.Description(), po.Amount().Value.String(), po.Amount().Currency, string(po.Category()),
		row.initial, py, pm, pw, pd, row.expiry,
		po.Archived(), hints, po.MatchParams().DateToleranceDays, ratio,
		int64(po.ID()),
	)
	if err != nil {
		return forecast.PlannedOperation{}, fmt.Errorf("failed to update planned operation: %w", err)
	}
	return po, nil
}

const plannedColumns = `id, description, amount_value, currency, category, initial_date,
	period_years, period_months, period_weeks, period_days, expiration_date,
	archived, description_hints, date_tolerance_days, amount_tolerance_ratio`

func (r *Repository) GetPlannedOperation(ctx context.Context, id forecast.PlannedOperationID) (forecast.PlannedOperation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row := r.db.QueryRowContext(ctx,
		`SELECT `+plannedColumns+` FROM planned_operations WHERE id = ?`, int64(id))
	po, err := scanPlannedOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return forecast.PlannedOperation{}, store.ErrNotFound
	}
	return po, err
}

func (r *Repository) ListPlannedOperations(ctx context.Context) ([]forecast.PlannedOperation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+plannedColumns+` FROM planned_operations ORDER BY initial_date, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var operations []forecast.PlannedOperation
	for rows.Next() {
		po, err := scanPlannedOperation(rows)
		if err != nil {
			return nil, err
		}
		operations = append(operations, po)
	}
	return operations, rows.Err()
}

func (r *Repository) DeletePlannedOperation(ctx context.Context, id forecast.PlannedOperationID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.ExecContext(ctx, `DELETE FROM planned_operations WHERE id = ?`, int64(id))
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanPlannedOperation(row rowScanner) (forecast.PlannedOperation, error) {
	var (
		id                           int64
		description, value, currency string
		category, initial, hints     string
		py, pm, pw, pd               sql.NullInt64
		expiry                       sql.NullString
		archived                     bool
		toleranceDays                int
		ratio                        sql.NullFloat64
	)
	if err := row.Scan(&id, &description, &value, &currency, &category, &initial,
		&py, &pm, &pw, &pd, &expiry,
		&archived, &hints, &toleranceDays, &ratio); err != nil {
		return forecast.PlannedOperation{}, err
	}

	rng, err := decodeRange(rangeRow{
		initial:  initial,
		duration: schedule.Days(1),
		period:   periodFromColumns(py, pm, pw, pd),
		expiry:   expiry,
	})
	if err != nil {
		return forecast.PlannedOperation{}, err
	}
	amount, err := parseAmount(value, currency)
	if err != nil {
		return forecast.PlannedOperation{}, err
	}
	params, err := decodeParams(hints, toleranceDays, ratio)
	if err != nil {
		return forecast.PlannedOperation{}, err
	}

	po, err := forecast.NewPlannedOperation(forecast.PlannedOperationID(id), description,
		amount, forecast.Category(category), rng)
	if err != nil {
		return forecast.PlannedOperation{}, err
	}
	return po.WithArchived(archived).WithMatchParams(params), nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
