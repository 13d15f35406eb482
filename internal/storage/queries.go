package storage

import (
	"context"
	"database/sql"
)

// DBTX is the subset of *sql.DB and *sql.Tx the queries need.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Expense mirrors a row of the expenses table. Columns written by older
// releases may be NULL and are read back as zero values.
type Expense struct {
	ID          int64
	Date        string
	Amount      float64
	Category    string
	Description string
}

const expenseColumns = `id, COALESCE(date, ''), COALESCE(amount, 0.0), COALESCE(category, ''), COALESCE(description, '')`

const createExpense = `INSERT INTO expenses (date, amount, category, description)
VALUES (?, ?, ?, ?)
RETURNING id`

type CreateExpenseParams struct {
	Date        string
	Amount      float64
	Category    string
	Description string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.Date,
		arg.Amount,
		arg.Category,
		arg.Description,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (Expense, error) {
	row := q.db.QueryRowContext(ctx, getExpense, id)
	var i Expense
	err := row.Scan(&i.ID, &i.Date, &i.Amount, &i.Category, &i.Description)
	return i, err
}

// Dates compare as plain text; the id tiebreak keeps equal dates stable.
const listExpenses = `SELECT ` + expenseColumns + ` FROM expenses ORDER BY date DESC, id DESC`

func (q *Queries) ListExpenses(ctx context.Context) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Expense
	for rows.Next() {
		var i Expense
		if err := rows.Scan(&i.ID, &i.Date, &i.Amount, &i.Category, &i.Description); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Prefix match on the stored text, equivalent to date LIKE 'YYYY-MM%'
// without LIKE's wildcard and case folding rules.
const getMonthTotal = `SELECT COALESCE(SUM(amount), 0.0) FROM expenses
WHERE substr(date, 1, length(?1)) = ?1`

func (q *Queries) GetMonthTotal(ctx context.Context, prefix string) (float64, error) {
	row := q.db.QueryRowContext(ctx, getMonthTotal, prefix)
	var total float64
	err := row.Scan(&total)
	return total, err
}

const getCategorySums = `SELECT COALESCE(category, '') AS category, COALESCE(SUM(amount), 0.0) AS total
FROM expenses
GROUP BY 1
ORDER BY 1`

type CategorySum struct {
	Category string
	Total    float64
}

func (q *Queries) GetCategorySums(ctx context.Context) ([]CategorySum, error) {
	rows, err := q.db.QueryContext(ctx, getCategorySums)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CategorySum
	for rows.Next() {
		var i CategorySum
		if err := rows.Scan(&i.Category, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getMonthSums = `SELECT substr(COALESCE(date, ''), 1, 7) AS month, COALESCE(SUM(amount), 0.0) AS total
FROM expenses
GROUP BY month
ORDER BY month`

type MonthSum struct {
	Month string
	Total float64
}

func (q *Queries) GetMonthSums(ctx context.Context) ([]MonthSum, error) {
	rows, err := q.db.QueryContext(ctx, getMonthSums)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MonthSum
	for rows.Next() {
		var i MonthSum
		if err := rows.Scan(&i.Month, &i.Total); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getUsedCategories = `SELECT DISTINCT category FROM expenses
WHERE category IS NOT NULL AND category != ''
ORDER BY category`

func (q *Queries) GetUsedCategories(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, getUsedCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, err
		}
		items = append(items, category)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
