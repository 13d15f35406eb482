package core

import (
	"strings"
)

// Field names reported by ValidationError.
const (
	FieldDate        = "date"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldMonth       = "month"
)

type (
	// Expense is one logged expense as persisted by the ledger.
	//
	// Date is kept as YYYY-MM-DD text: ordering and month filtering compare
	// the stored string lexically, so it must stay zero-padded.
	Expense struct {
		ID          int64   `json:"id"`
		Date        string  `json:"date"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
	}

	// ExpenseInput is the raw form submission used to create an Expense.
	ExpenseInput struct {
		Date        string `json:"date"`
		Amount      string `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
	}
)

// SuggestedCategories is the default category list offered to users.
// The ledger accepts any label.
var SuggestedCategories = []string{"Food", "Transport", "Bills", "Shopping", "Others"}

// Validate checks the required fields and converts the amount. Every
// failing field is reported at once. Text fields are stored as typed;
// blank-only values count as missing.
func (in ExpenseInput) Validate() (Expense, error) {
	e := Expense{
		Date:        in.Date,
		Category:    in.Category,
		Description: in.Description,
	}

	verr := &ValidationError{}
	if strings.TrimSpace(e.Date) == "" {
		verr.Add(FieldDate, "is required")
	}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		if strings.TrimSpace(in.Amount) == "" {
			verr.Add(FieldAmount, "is required")
		} else {
			verr.Add(FieldAmount, "must be a number")
		}
	}
	e.Amount = amount

	if strings.TrimSpace(e.Category) == "" {
		verr.Add(FieldCategory, "is required")
	}

	if verr.HasErrors() {
		return Expense{}, verr
	}
	return e, nil
}

// MergeCategories returns base followed by any entries of used not already
// present, skipping blanks.
func MergeCategories(base, used []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(base)+len(used))
	for _, list := range [][]string{base, used} {
		for _, v := range list {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
