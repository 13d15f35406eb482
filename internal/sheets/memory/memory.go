package memory

import (
	"context"
	"sort"
	"sync"

	"expenses/internal/core"
	ports "expenses/internal/sheets"
)

// Mirror is an in-process ExpenseMirror. The sync worker falls back to it
// when no spreadsheet is configured.
type Mirror struct {
	mu   sync.Mutex
	rows map[int64]core.Expense
}

var _ ports.ExpenseMirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{rows: make(map[int64]core.Expense)}
}

func (m *Mirror) AppendExpense(_ context.Context, e core.Expense) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[e.ID]; !ok {
		m.rows[e.ID] = e
	}
	return nil
}

func (m *Mirror) DeleteExpense(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *Mirror) MirroredIDs(_ context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.rows))
	for id := range m.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Rows returns the mirrored expenses ordered by id.
func (m *Mirror) Rows() []core.Expense {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Expense, 0, len(m.rows))
	for _, e := range m.rows {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
