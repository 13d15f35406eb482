package worker

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"expenses/internal/amqp"
	"expenses/internal/core"
	"expenses/internal/ledgertest"
	"expenses/internal/memory"
	sheetsmem "expenses/internal/sheets/memory"
)

type failingMirror struct{}

func (failingMirror) AppendExpense(context.Context, core.Expense) error {
	return errors.New("quota exceeded")
}

func (failingMirror) DeleteExpense(context.Context, int64) error {
	return errors.New("quota exceeded")
}

func (failingMirror) MirroredIDs(context.Context) ([]int64, error) {
	return nil, nil
}

func TestHandleEvent(t *testing.T) {
	ctx := context.Background()
	mirror := sheetsmem.New()
	w := NewSyncWorker(mirror, nil)

	e := core.Expense{ID: 5, Date: "2025-01-10", Amount: 50, Category: "Food"}
	if err := w.HandleEvent(ctx, amqp.NewExpenseCreatedEvent(e)); err != nil {
		t.Fatalf("created: %v", err)
	}
	if rows := mirror.Rows(); len(rows) != 1 || rows[0] != e {
		t.Fatalf("unexpected mirror rows %+v", rows)
	}

	if err := w.HandleEvent(ctx, amqp.NewExpenseDeletedEvent(5)); err != nil {
		t.Fatalf("deleted: %v", err)
	}
	if rows := mirror.Rows(); len(rows) != 0 {
		t.Fatalf("expected empty mirror, got %+v", rows)
	}

	if err := w.HandleEvent(ctx, &amqp.ExpenseEvent{Type: "renamed", ID: 1}); err != nil {
		t.Fatalf("unknown type should be dropped, got %v", err)
	}
	if err := w.HandleEvent(ctx, &amqp.ExpenseEvent{Type: amqp.EventCreated, ID: 1}); err == nil {
		t.Fatal("created event without expense should fail")
	}
}

func TestHandleEventMirrorFailure(t *testing.T) {
	w := NewSyncWorker(failingMirror{}, nil)
	if err := w.HandleEvent(context.Background(), amqp.NewExpenseDeletedEvent(1)); err == nil {
		t.Fatal("expected mirror error to surface for requeue")
	}
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	ledger := memory.New(nil)
	ids := ledgertest.Seed(t, ledger, ledgertest.Example()...)

	mirror := sheetsmem.New()
	w := NewSyncWorker(mirror, ledger)
	if err := w.Reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if err := w.Reconcile(ctx); err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if rows := mirror.Rows(); len(rows) != len(ids) {
		t.Fatalf("mirror has %d rows, want %d", len(rows), len(ids))
	}

	if err := NewSyncWorker(failingMirror{}, ledger).Reconcile(ctx); err == nil {
		t.Fatal("expected reconcile error")
	}
	if err := NewSyncWorker(mirror, nil).Reconcile(ctx); err != nil {
		t.Fatalf("reconcile without ledger: %v", err)
	}
}

func TestReconcileRemovesOrphanedRows(t *testing.T) {
	ctx := context.Background()
	ledger := memory.New(nil)
	mirror := sheetsmem.New()
	if err := mirror.AppendExpense(ctx, core.Expense{ID: 5, Date: "2025-01-01", Amount: 1, Category: "x"}); err != nil {
		t.Fatal(err)
	}

	w := NewSyncWorker(mirror, ledger)
	if err := w.Reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if rows := mirror.Rows(); len(rows) != 0 {
		t.Fatalf("row without ledger record survived: %+v", rows)
	}

	ids := ledgertest.Seed(t, ledger, ledgertest.Example()...)
	if err := ledger.Delete(ctx, ids[0]); err != nil {
		t.Fatal(err)
	}
	if err := mirror.AppendExpense(ctx, core.Expense{ID: ids[0], Date: "2025-01-10", Amount: 50, Category: "Food"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Reconcile(ctx); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	got, _ := mirror.MirroredIDs(ctx)
	if want := ids[1:]; !reflect.DeepEqual(got, want) {
		t.Fatalf("mirrored ids = %v, want %v", got, want)
	}
}

func TestRunReconcilerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w := NewSyncWorker(sheetsmem.New(), memory.New(nil))
	if err := w.RunReconciler(ctx, 0); err != nil {
		t.Fatalf("disabled reconciler: %v", err)
	}
	if err := w.RunReconciler(ctx, 1); err != nil {
		t.Fatalf("cancelled reconciler: %v", err)
	}
}
