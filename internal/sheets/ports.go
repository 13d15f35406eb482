package sheets

import (
	"context"

	"expenses/internal/core"
)

// Ports for outbound adapters.
type (
	// ExpenseMirror keeps a copy of the ledger outside the database. Append
	// and delete are idempotent so redelivered events are harmless.
	ExpenseMirror interface {
		AppendExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id int64) error
		// MirroredIDs lists the ids currently present in the mirror.
		MirroredIDs(ctx context.Context) ([]int64, error)
	}
)
