package http

import (
	"net/http"
	"strings"

	"expenses/internal/core"
)

// handleMonthlyReport answers ?month=YYYY-MM, or ?date=YYYY-MM-DD for the
// month that date falls in. Without either it reports the current month.
func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	month := strings.TrimSpace(q.Get("month"))
	date := strings.TrimSpace(q.Get("date"))

	var (
		summary core.MonthlySummary
		err     error
	)
	switch {
	case month != "":
		var total float64
		total, err = s.reports.MonthlyTotal(r.Context(), month)
		summary = core.MonthlySummary{Month: month, Total: total}
	case date != "":
		summary, err = s.reports.MonthlySummary(r.Context(), date)
	default:
		month = core.CurrentMonth(s.now())
		var total float64
		total, err = s.reports.MonthlyTotal(r.Context(), month)
		summary = core.MonthlySummary{Month: month, Total: total}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	NewJSONResponse().Data(summary).Send(w)
}

func (s *Server) handleCategoryReport(w http.ResponseWriter, r *http.Request) {
	totals, err := s.reports.CategoryBreakdown(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(totals).Send(w)
}

func (s *Server) handleMonthReport(w http.ResponseWriter, r *http.Request) {
	totals, err := s.reports.TotalsByMonth(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(totals).Send(w)
}

type analysisResponse struct {
	core.Analysis
	Empty bool `json:"empty"`
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.reports.Analysis(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(analysisResponse{Analysis: a, Empty: a.Empty()}).Send(w)
}
