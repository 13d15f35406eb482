package services

import (
	"context"

	"expenses/internal/core"
)

// Ports implemented by the storage backends and the event publisher.
type (
	// LedgerStore persists expense records.
	LedgerStore interface {
		Create(ctx context.Context, e core.Expense) (id int64, err error)
		Delete(ctx context.Context, id int64) error
		Get(ctx context.Context, id int64) (core.Expense, error)
		ListAll(ctx context.Context) ([]core.Expense, error)
		Categories(ctx context.Context) ([]string, error)
	}

	// ReportStore aggregates over the current ledger without mutating it.
	ReportStore interface {
		MonthlyTotal(ctx context.Context, yearMonth string) (float64, error)
		TotalsByCategory(ctx context.Context) ([]core.CategoryTotal, error)
		TotalsByMonth(ctx context.Context) ([]core.MonthTotal, error)
	}

	// EventPublisher announces ledger changes to other processes.
	EventPublisher interface {
		PublishExpenseCreated(ctx context.Context, e core.Expense) error
		PublishExpenseDeleted(ctx context.Context, id int64) error
	}
)
