package core

// CategoryTotal is the summed amount of one category.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// MonthTotal is the summed amount of one YYYY-MM group.
type MonthTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// MonthlySummary is the answer to a monthly total request.
type MonthlySummary struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// Analysis is the category and month breakdown handed to chart renderers.
type Analysis struct {
	ByCategory []CategoryTotal `json:"by_category"`
	ByMonth    []MonthTotal    `json:"by_month"`
}

// Empty reports whether there is nothing to chart.
func (a Analysis) Empty() bool {
	return len(a.ByCategory) == 0 && len(a.ByMonth) == 0
}

// CategoryMap converts ordered category totals into a lookup map.
func CategoryMap(totals []CategoryTotal) map[string]float64 {
	out := make(map[string]float64, len(totals))
	for _, t := range totals {
		out[t.Category] += t.Total
	}
	return out
}
