package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"expenses/internal/core"
)

// Store is a non-durable ledger with the same ordering and aggregation
// rules as the SQLite repository.
type Store struct {
	mu     sync.Mutex
	cats   []string
	items  []core.Expense
	lastID int64
}

func New(cats []string) *Store {
	return &Store{cats: core.MergeCategories(cats, nil)}
}

// NewFromFiles seeds the suggested categories from
// base/seed_categories.txt, falling back to core.SuggestedCategories.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = core.SuggestedCategories
	}
	return New(cats)
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// Create stores e under a fresh id. Ids are never reused.
func (s *Store) Create(_ context.Context, e core.Expense) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	e.ID = s.lastID
	s.items = append(s.items, e)
	return e.ID, nil
}

func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.items {
		if e.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, core.ErrNotFound
}

// ListAll returns a copy of every expense, date descending then id
// descending.
func (s *Store) ListAll(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	out := append([]core.Expense(nil), s.items...)
	s.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date > out[j].Date
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) MonthlyTotal(_ context.Context, yearMonth string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, e := range s.items {
		if strings.HasPrefix(e.Date, yearMonth) {
			total += e.Amount
		}
	}
	return total, nil
}

func (s *Store) TotalsByCategory(_ context.Context) ([]core.CategoryTotal, error) {
	s.mu.Lock()
	sums := map[string]float64{}
	for _, e := range s.items {
		sums[e.Category] += e.Amount
	}
	s.mu.Unlock()

	out := make([]core.CategoryTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, core.CategoryTotal{Category: k, Total: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) TotalsByMonth(_ context.Context) ([]core.MonthTotal, error) {
	s.mu.Lock()
	sums := map[string]float64{}
	for _, e := range s.items {
		sums[core.MonthKey(e.Date)] += e.Amount
	}
	s.mu.Unlock()

	out := make([]core.MonthTotal, 0, len(sums))
	for k, v := range sums {
		out = append(out, core.MonthTotal{Month: k, Total: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// Categories returns the seeded categories plus labels used so far.
func (s *Store) Categories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	used := make([]string, 0, len(s.items))
	for _, e := range s.items {
		used = append(used, e.Category)
	}
	sort.Strings(used)
	return core.MergeCategories(s.cats, used), nil
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
