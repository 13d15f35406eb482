package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"expenses/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the SQLite-backed ledger. It is the only owner of
// its database handle.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

// NewSQLiteRepository opens (creating if needed) the ledger at dbPath and
// applies pending migrations. It is safe to call on every start. Any
// failure is a StorageUnavailableError.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, core.Unavailable("initialize", fmt.Errorf("create db directory: %w", err))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, core.Unavailable("initialize", fmt.Errorf("open sqlite database: %w", err))
	}
	// Single connection: statements are serialized on one file handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, core.Unavailable("initialize", fmt.Errorf("ping database: %w", err))
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, core.Unavailable("initialize", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return core.Unavailable("ping", r.db.PingContext(ctx))
}

// Create inserts e and returns the id SQLite assigned. e.ID is ignored.
func (r *SQLiteRepository) Create(ctx context.Context, e core.Expense) (int64, error) {
	id, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		Date:        e.Date,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
	})
	if err != nil {
		return 0, core.Unavailable("create", fmt.Errorf("create expense: %w", err))
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"date", e.Date,
		"amount", e.Amount,
		"category", e.Category)

	return id, nil
}

// Delete removes the expense with id. A missing id is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return core.Unavailable("delete", fmt.Errorf("delete expense %d: %w", id, err))
	}

	if n == 0 {
		slog.DebugContext(ctx, "Delete of unknown expense ignored", "id", id)
		return nil
	}
	slog.InfoContext(ctx, "Expense deleted from SQLite", "id", id)
	return nil
}

// Get returns a single expense or core.ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, core.Unavailable("get", fmt.Errorf("get expense %d: %w", id, err))
	}
	return toCore(row), nil
}

// ListAll returns every expense, newest date first.
func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, core.Unavailable("list", fmt.Errorf("list expenses: %w", err))
	}

	expenses := make([]core.Expense, len(rows))
	for i, row := range rows {
		expenses[i] = toCore(row)
	}
	return expenses, nil
}

// MonthlyTotal sums the expenses whose date starts with yearMonth.
func (r *SQLiteRepository) MonthlyTotal(ctx context.Context, yearMonth string) (float64, error) {
	total, err := r.queries.GetMonthTotal(ctx, yearMonth)
	if err != nil {
		return 0, core.Unavailable("monthly_total", fmt.Errorf("get month total %s: %w", yearMonth, err))
	}
	return total, nil
}

// TotalsByCategory sums amounts per exact category label, ordered by label.
func (r *SQLiteRepository) TotalsByCategory(ctx context.Context) ([]core.CategoryTotal, error) {
	sums, err := r.queries.GetCategorySums(ctx)
	if err != nil {
		return nil, core.Unavailable("totals_by_category", fmt.Errorf("get category sums: %w", err))
	}

	out := make([]core.CategoryTotal, len(sums))
	for i, s := range sums {
		out[i] = core.CategoryTotal{Category: s.Category, Total: s.Total}
	}
	return out, nil
}

// TotalsByMonth sums amounts per YYYY-MM prefix, ascending.
func (r *SQLiteRepository) TotalsByMonth(ctx context.Context) ([]core.MonthTotal, error) {
	sums, err := r.queries.GetMonthSums(ctx)
	if err != nil {
		return nil, core.Unavailable("totals_by_month", fmt.Errorf("get month sums: %w", err))
	}

	out := make([]core.MonthTotal, len(sums))
	for i, s := range sums {
		out[i] = core.MonthTotal{Month: s.Month, Total: s.Total}
	}
	return out, nil
}

// Categories returns the suggested categories followed by any other label
// already used in the ledger.
func (r *SQLiteRepository) Categories(ctx context.Context) ([]string, error) {
	used, err := r.queries.GetUsedCategories(ctx)
	if err != nil {
		return nil, core.Unavailable("categories", fmt.Errorf("get used categories: %w", err))
	}
	return core.MergeCategories(core.SuggestedCategories, used), nil
}

func toCore(e Expense) core.Expense {
	return core.Expense{
		ID:          e.ID,
		Date:        e.Date,
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
	}
}
