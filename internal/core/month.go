package core

import (
	"time"
)

const (
	// DateLayout is the canonical stored date form.
	DateLayout = "2006-01-02"
	// MonthLayout is the year-month key form.
	MonthLayout = "2006-01"

	monthKeyLen = len(MonthLayout)
)

// MonthKey returns the first seven characters of a stored date, the
// YYYY-MM group it belongs to. Shorter strings are returned unchanged.
func MonthKey(date string) string {
	if len(date) < monthKeyLen {
		return date
	}
	return date[:monthKeyLen]
}

// ParseYearMonth validates a YYYY-MM key.
func ParseYearMonth(s string) (string, error) {
	if len(s) != monthKeyLen {
		return "", monthError()
	}
	if _, err := time.Parse(MonthLayout, s); err != nil {
		return "", monthError()
	}
	return s, nil
}

// IsCanonicalDate reports whether s is a zero-padded YYYY-MM-DD date.
func IsCanonicalDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}

// FormatDate renders t in the stored date form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// CurrentMonth returns the YYYY-MM key for t.
func CurrentMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

func monthError() error {
	verr := &ValidationError{}
	verr.Add(FieldMonth, "must be in YYYY-MM form")
	return verr
}
