package services

import (
	"context"
	"fmt"

	"expenses/internal/core"
)

// ReportService answers the read-only report requests. Every call
// recomputes from the current ledger.
type ReportService struct {
	store ReportStore
}

func NewReportService(store ReportStore) *ReportService {
	return &ReportService{store: store}
}

// MonthlyTotal sums the expenses dated in yearMonth (YYYY-MM). A month
// without expenses totals 0.
func (s *ReportService) MonthlyTotal(ctx context.Context, yearMonth string) (float64, error) {
	month, err := core.ParseYearMonth(yearMonth)
	if err != nil {
		return 0, err
	}
	total, err := s.store.MonthlyTotal(ctx, month)
	if err != nil {
		return 0, fmt.Errorf("monthly total: %w", err)
	}
	return total, nil
}

// MonthlySummary reports the total of the month referenceDate falls in.
func (s *ReportService) MonthlySummary(ctx context.Context, referenceDate string) (core.MonthlySummary, error) {
	month := core.MonthKey(referenceDate)
	total, err := s.MonthlyTotal(ctx, month)
	if err != nil {
		return core.MonthlySummary{}, err
	}
	return core.MonthlySummary{Month: month, Total: total}, nil
}

// TotalsByCategory maps each exact category label to its summed amount.
func (s *ReportService) TotalsByCategory(ctx context.Context) (map[string]float64, error) {
	totals, err := s.CategoryBreakdown(ctx)
	if err != nil {
		return nil, err
	}
	return core.CategoryMap(totals), nil
}

// CategoryBreakdown is TotalsByCategory ordered by category label.
func (s *ReportService) CategoryBreakdown(ctx context.Context) ([]core.CategoryTotal, error) {
	totals, err := s.store.TotalsByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("totals by category: %w", err)
	}
	if totals == nil {
		totals = []core.CategoryTotal{}
	}
	return totals, nil
}

// TotalsByMonth sums amounts per YYYY-MM group, ascending by month.
func (s *ReportService) TotalsByMonth(ctx context.Context) ([]core.MonthTotal, error) {
	totals, err := s.store.TotalsByMonth(ctx)
	if err != nil {
		return nil, fmt.Errorf("totals by month: %w", err)
	}
	if totals == nil {
		totals = []core.MonthTotal{}
	}
	return totals, nil
}

// Analysis bundles both groupings for the chart view.
func (s *ReportService) Analysis(ctx context.Context) (core.Analysis, error) {
	byCategory, err := s.CategoryBreakdown(ctx)
	if err != nil {
		return core.Analysis{}, err
	}
	byMonth, err := s.TotalsByMonth(ctx)
	if err != nil {
		return core.Analysis{}, err
	}
	return core.Analysis{ByCategory: byCategory, ByMonth: byMonth}, nil
}
