package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/sheets"
)

// LedgerReader is the part of the ledger the worker reconciles from.
type LedgerReader interface {
	ListAll(ctx context.Context) ([]core.Expense, error)
}

// SyncWorker applies ledger change events to an external mirror. Event
// handling and reconcile passes never overlap.
type SyncWorker struct {
	mu     sync.Mutex
	mirror sheets.ExpenseMirror
	ledger LedgerReader
}

// NewSyncWorker builds a worker. ledger may be nil, in which case
// Reconcile is a no-op.
func NewSyncWorker(mirror sheets.ExpenseMirror, ledger LedgerReader) *SyncWorker {
	return &SyncWorker{
		mirror: mirror,
		ledger: ledger,
	}
}

// HandleEvent routes one AMQP event to the mirror. A returned error makes
// the consumer requeue the message.
func (w *SyncWorker) HandleEvent(ctx context.Context, event *amqp.ExpenseEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	slog.InfoContext(ctx, "Processing expense event",
		"type", event.Type,
		"id", event.ID,
		"timestamp", event.Timestamp)

	switch event.Type {
	case amqp.EventCreated:
		if event.Expense == nil {
			return fmt.Errorf("created event %d carries no expense", event.ID)
		}
		if err := w.mirror.AppendExpense(ctx, *event.Expense); err != nil {
			return fmt.Errorf("mirror expense %d: %w", event.ID, err)
		}
	case amqp.EventDeleted:
		if err := w.mirror.DeleteExpense(ctx, event.ID); err != nil {
			return fmt.Errorf("remove mirrored expense %d: %w", event.ID, err)
		}
	default:
		// Acknowledged and dropped; requeueing would loop forever.
		slog.WarnContext(ctx, "Ignoring unknown event type", "type", event.Type, "id", event.ID)
	}

	return nil
}

// Reconcile makes the mirror hold exactly the ledger's ids. Missing
// expenses are appended and rows without a ledger record are removed,
// covering created and deleted events lost while the broker or the worker
// was down.
func (w *SyncWorker) Reconcile(ctx context.Context) error {
	if w.ledger == nil {
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	items, err := w.ledger.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list ledger: %w", err)
	}
	mirrored, err := w.mirror.MirroredIDs(ctx)
	if err != nil {
		return fmt.Errorf("list mirror: %w", err)
	}

	present := make(map[int64]bool, len(mirrored))
	for _, id := range mirrored {
		present[id] = true
	}
	inLedger := make(map[int64]bool, len(items))

	var appended, removed, failed int
	for _, e := range items {
		inLedger[e.ID] = true
		if present[e.ID] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.mirror.AppendExpense(ctx, e); err != nil {
			failed++
			slog.ErrorContext(ctx, "Failed to reconcile expense", "id", e.ID, "error", err)
			continue
		}
		appended++
	}

	for _, id := range mirrored {
		if inLedger[id] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.mirror.DeleteExpense(ctx, id); err != nil {
			failed++
			slog.ErrorContext(ctx, "Failed to remove orphaned mirror row", "id", id, "error", err)
			continue
		}
		removed++
	}

	slog.InfoContext(ctx, "Reconciled mirror",
		"expenses", len(items),
		"appended", appended,
		"removed", removed,
		"failed", failed)
	if failed > 0 {
		return fmt.Errorf("reconcile: %d mirror changes failed", failed)
	}
	return nil
}

// RunReconciler calls Reconcile every interval until ctx is done. A
// non-positive interval disables it.
func (w *SyncWorker) RunReconciler(ctx context.Context, interval time.Duration) error {
	if interval <= 0 || w.ledger == nil {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Reconcile(ctx); err != nil && ctx.Err() == nil {
				slog.WarnContext(ctx, "Reconcile pass failed", "error", err)
			}
		}
	}
}
