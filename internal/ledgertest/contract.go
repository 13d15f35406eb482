// Package ledgertest checks a ledger store implementation against the
// behaviour every backend must share.
package ledgertest

import (
	"context"
	"reflect"
	"testing"

	"expenses/internal/core"
)

// Store is the full set of ledger operations a backend provides.
type Store interface {
	Create(ctx context.Context, e core.Expense) (int64, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (core.Expense, error)
	ListAll(ctx context.Context) ([]core.Expense, error)
	MonthlyTotal(ctx context.Context, yearMonth string) (float64, error)
	TotalsByCategory(ctx context.Context) ([]core.CategoryTotal, error)
	TotalsByMonth(ctx context.Context) ([]core.MonthTotal, error)
	Categories(ctx context.Context) ([]string, error)
}

// Run exercises a fresh, empty store returned by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("create then list", func(t *testing.T) {
		testCreateThenList(t, newStore(t))
	})
	t.Run("ids are never reused", func(t *testing.T) {
		testIDsNeverReused(t, newStore(t))
	})
	t.Run("delete", func(t *testing.T) {
		testDelete(t, newStore(t))
	})
	t.Run("delete unknown id", func(t *testing.T) {
		testDeleteUnknown(t, newStore(t))
	})
	t.Run("list ordered by date descending", func(t *testing.T) {
		testListOrder(t, newStore(t))
	})
	t.Run("get", func(t *testing.T) {
		testGet(t, newStore(t))
	})
	t.Run("reports", func(t *testing.T) {
		testReports(t, newStore(t))
	})
	t.Run("empty reports", func(t *testing.T) {
		testEmptyReports(t, newStore(t))
	})
	t.Run("category partition", func(t *testing.T) {
		testCategoryPartition(t, newStore(t))
	})
	t.Run("short dates group under their own prefix", func(t *testing.T) {
		testShortDates(t, newStore(t))
	})
	t.Run("categories", func(t *testing.T) {
		testCategories(t, newStore(t))
	})
}

// Seed inserts each expense and returns the assigned ids in order.
func Seed(t *testing.T, s Store, items ...core.Expense) []int64 {
	t.Helper()
	ids := make([]int64, len(items))
	for i, e := range items {
		id, err := s.Create(context.Background(), e)
		if err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
		ids[i] = id
	}
	return ids
}

// Example is the three-record ledger used across report tests.
func Example() []core.Expense {
	return []core.Expense{
		{Date: "2025-01-10", Amount: 50, Category: "Food"},
		{Date: "2025-01-15", Amount: 30, Category: "Food"},
		{Date: "2025-02-01", Amount: 100, Category: "Bills"},
	}
}

func mustList(t *testing.T, s Store) []core.Expense {
	t.Helper()
	items, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return items
}

func testCreateThenList(t *testing.T, s Store) {
	in := core.Expense{Date: "2025-03-01", Amount: 12.5, Category: "Transport", Description: "bus"}
	ids := Seed(t, s, in)

	items := mustList(t, s)
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	in.ID = ids[0]
	if items[0] != in {
		t.Fatalf("got %+v, want %+v", items[0], in)
	}
}

func testIDsNeverReused(t *testing.T, s Store) {
	ctx := context.Background()
	ids := Seed(t, s, Example()...)
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}

	last := ids[len(ids)-1]
	if err := s.Delete(ctx, last); err != nil {
		t.Fatalf("delete: %v", err)
	}
	next := Seed(t, s, core.Expense{Date: "2025-04-01", Amount: 1, Category: "Others"})[0]
	if seen[next] || next <= last {
		t.Fatalf("id %d reused or not increasing after %d", next, last)
	}
}

func testDelete(t *testing.T, s Store) {
	ids := Seed(t, s, Example()...)
	if err := s.Delete(context.Background(), ids[1]); err != nil {
		t.Fatalf("delete: %v", err)
	}

	items := mustList(t, s)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	for _, e := range items {
		if e.ID == ids[1] {
			t.Fatalf("deleted id %d still listed", ids[1])
		}
	}
	want := Example()
	if items[0].ID != ids[2] || items[0].Amount != want[2].Amount {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].ID != ids[0] || items[1].Amount != want[0].Amount {
		t.Fatalf("unexpected second item %+v", items[1])
	}
}

func testDeleteUnknown(t *testing.T, s Store) {
	Seed(t, s, Example()...)
	before := mustList(t, s)
	if err := s.Delete(context.Background(), 999999); err != nil {
		t.Fatalf("delete unknown id: %v", err)
	}
	after := mustList(t, s)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("list changed: before=%v after=%v", before, after)
	}
}

func testListOrder(t *testing.T, s Store) {
	Seed(t, s,
		core.Expense{Date: "2025-03-01", Amount: 1, Category: "a"},
		core.Expense{Date: "2025-09-15", Amount: 2, Category: "b"},
		core.Expense{Date: "2024-12-31", Amount: 3, Category: "c"},
		core.Expense{Date: "2025-09-02", Amount: 4, Category: "d"},
	)
	items := mustList(t, s)
	got := make([]string, len(items))
	for i, e := range items {
		got[i] = e.Date
	}
	want := []string{"2025-09-15", "2025-09-02", "2025-03-01", "2024-12-31"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func testGet(t *testing.T, s Store) {
	ctx := context.Background()
	ids := Seed(t, s, Example()...)
	e, err := s.Get(ctx, ids[2])
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if e.ID != ids[2] || e.Category != "Bills" {
		t.Fatalf("unexpected expense %+v", e)
	}
	if _, err := s.Get(ctx, 999999); err != core.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testReports(t *testing.T, s Store) {
	ctx := context.Background()
	Seed(t, s, Example()...)

	total, err := s.MonthlyTotal(ctx, "2025-01")
	if err != nil || total != 80 {
		t.Fatalf("monthly total = %v (err=%v), want 80", total, err)
	}
	total, err = s.MonthlyTotal(ctx, "2025-09")
	if err != nil || total != 0 {
		t.Fatalf("monthly total for empty month = %v (err=%v), want 0", total, err)
	}

	cats, err := s.TotalsByCategory(ctx)
	if err != nil {
		t.Fatalf("totals by category: %v", err)
	}
	wantCats := []core.CategoryTotal{{Category: "Bills", Total: 100}, {Category: "Food", Total: 80}}
	if !reflect.DeepEqual(cats, wantCats) {
		t.Fatalf("categories = %v, want %v", cats, wantCats)
	}

	months, err := s.TotalsByMonth(ctx)
	if err != nil {
		t.Fatalf("totals by month: %v", err)
	}
	wantMonths := []core.MonthTotal{{Month: "2025-01", Total: 80}, {Month: "2025-02", Total: 100}}
	if !reflect.DeepEqual(months, wantMonths) {
		t.Fatalf("months = %v, want %v", months, wantMonths)
	}
}

func testEmptyReports(t *testing.T, s Store) {
	ctx := context.Background()
	total, err := s.MonthlyTotal(ctx, "2025-01")
	if err != nil || total != 0 {
		t.Fatalf("monthly total = %v (err=%v), want 0", total, err)
	}
	cats, err := s.TotalsByCategory(ctx)
	if err != nil || len(cats) != 0 {
		t.Fatalf("categories = %v (err=%v), want empty", cats, err)
	}
	months, err := s.TotalsByMonth(ctx)
	if err != nil || len(months) != 0 {
		t.Fatalf("months = %v (err=%v), want empty", months, err)
	}
}

func testCategoryPartition(t *testing.T, s Store) {
	items := []core.Expense{
		{Date: "2025-01-01", Amount: 10, Category: "Food"},
		{Date: "2025-01-02", Amount: 5, Category: "food"},
		{Date: "2025-02-03", Amount: -2, Category: "Food"},
		{Date: "2025-03-04", Amount: 7, Category: "Bills"},
	}
	Seed(t, s, items...)
	cats, err := s.TotalsByCategory(context.Background())
	if err != nil {
		t.Fatalf("totals by category: %v", err)
	}
	got := core.CategoryMap(cats)
	want := map[string]float64{"Food": 8, "food": 5, "Bills": 7}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("categories = %v, want %v", got, want)
	}

	var sum, all float64
	for _, c := range cats {
		sum += c.Total
	}
	for _, e := range items {
		all += e.Amount
	}
	if sum != all {
		t.Fatalf("partition sum %v != ledger sum %v", sum, all)
	}
}

func testShortDates(t *testing.T, s Store) {
	Seed(t, s,
		core.Expense{Date: "2025", Amount: 1, Category: "x"},
		core.Expense{Date: "2025-01-05", Amount: 2, Category: "x"},
	)
	months, err := s.TotalsByMonth(context.Background())
	if err != nil {
		t.Fatalf("totals by month: %v", err)
	}
	want := []core.MonthTotal{{Month: "2025", Total: 1}, {Month: "2025-01", Total: 2}}
	if !reflect.DeepEqual(months, want) {
		t.Fatalf("months = %v, want %v", months, want)
	}
}

func testCategories(t *testing.T, s Store) {
	Seed(t, s, core.Expense{Date: "2025-01-01", Amount: 1, Category: "Travel"})
	cats, err := s.Categories(context.Background())
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	found := false
	for _, c := range cats {
		if c == "Travel" {
			found = true
		}
	}
	if !found || len(cats) < 2 {
		t.Fatalf("expected seeded categories plus Travel, got %v", cats)
	}
}
