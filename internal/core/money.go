// Package core provides the ledger's domain types and value parsing.
//
// This file contains functions for parsing monetary amounts typed into a
// form and formatting them back for display.
package core

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount converts form text to a float64.
//
// Surrounding whitespace is ignored. Any sign is accepted and no currency
// rounding is applied. Empty, non-numeric and non-finite input (NaN, Inf,
// overflow) yields ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.5")  -> 12.5, nil
//	ParseAmount(" -3 ")  -> -3, nil
//	ParseAmount("1e2")   -> 100, nil
//	ParseAmount("abc")   -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatAmount renders an amount with two decimals for display.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
