package services

import (
	"context"
	"fmt"
	"log/slog"

	"expenses/internal/core"
)

// LedgerService validates user input and applies it to the ledger,
// announcing each change when a publisher is configured.
type LedgerService struct {
	store     LedgerStore
	publisher EventPublisher
}

// NewLedgerService builds the service. publisher may be nil.
func NewLedgerService(store LedgerStore, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

// Create validates in and persists it, returning the stored record with
// its new id. A *core.ValidationError means nothing was written.
func (s *LedgerService) Create(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	e, err := in.Validate()
	if err != nil {
		return core.Expense{}, err
	}

	// Non-canonical dates are kept as typed; they sort and group by their
	// raw text.
	if !core.IsCanonicalDate(e.Date) {
		slog.WarnContext(ctx, "Expense date is not in YYYY-MM-DD form",
			"date", e.Date,
			"category", e.Category)
	}

	id, err := s.store.Create(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	e.ID = id

	if s.publisher != nil {
		if err := s.publisher.PublishExpenseCreated(ctx, e); err != nil {
			// The expense is saved; the mirror catches up later.
			slog.ErrorContext(ctx, "Failed to publish expense created event",
				"id", id, "error", err)
		}
	}

	return e, nil
}

// Delete removes the selected expenses. An empty selection returns
// core.ErrNoSelection; unknown ids are ignored.
func (s *LedgerService) Delete(ctx context.Context, selected ...int64) error {
	if len(selected) == 0 {
		return core.ErrNoSelection
	}

	for _, id := range selected {
		if err := s.store.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}

		if s.publisher != nil {
			if err := s.publisher.PublishExpenseDeleted(ctx, id); err != nil {
				slog.ErrorContext(ctx, "Failed to publish expense deleted event",
					"id", id, "error", err)
			}
		}
	}

	return nil
}

// List returns every expense, newest date first.
func (s *LedgerService) List(ctx context.Context) ([]core.Expense, error) {
	items, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return items, nil
}

// Get returns one expense or core.ErrNotFound.
func (s *LedgerService) Get(ctx context.Context, id int64) (core.Expense, error) {
	return s.store.Get(ctx, id)
}

// Categories returns the category suggestions for entry forms.
func (s *LedgerService) Categories(ctx context.Context) ([]string, error) {
	cats, err := s.store.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}
