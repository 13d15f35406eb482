package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestExpenseInputValidate(t *testing.T) {
	good := ExpenseInput{Date: "2025-01-10", Amount: " 50 ", Category: "Food", Description: ""}
	e, err := good.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	want := Expense{Date: "2025-01-10", Amount: 50, Category: "Food"}
	if e != want {
		t.Fatalf("got %+v, want %+v", e, want)
	}

	cases := []struct {
		name   string
		in     ExpenseInput
		fields []string
	}{
		{"missing date", ExpenseInput{Amount: "1", Category: "c"}, []string{FieldDate}},
		{"missing amount", ExpenseInput{Date: "2025-01-01", Category: "c"}, []string{FieldAmount}},
		{"non numeric amount", ExpenseInput{Date: "2025-01-01", Amount: "abc", Category: "c"}, []string{FieldAmount}},
		{"missing category", ExpenseInput{Date: "2025-01-01", Amount: "1", Category: "   "}, []string{FieldCategory}},
		{"everything missing", ExpenseInput{}, []string{FieldDate, FieldAmount, FieldCategory}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.in.Validate()
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if got := verr.FieldNames(); !reflect.DeepEqual(got, tc.fields) {
				t.Fatalf("fields = %v, want %v", got, tc.fields)
			}
		})
	}
}

func TestExpenseInputValidateKeepsTextAsTyped(t *testing.T) {
	in := ExpenseInput{Date: " 2025-01-10", Amount: " 7 ", Category: "Food ", Description: "  indented\n"}
	e, err := in.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	want := Expense{Date: in.Date, Amount: 7, Category: in.Category, Description: in.Description}
	if e != want {
		t.Fatalf("got %+v, want %+v", e, want)
	}
}

func TestExpenseInputValidateKeepsNonCanonicalDate(t *testing.T) {
	e, err := ExpenseInput{Date: "10/01/2025", Amount: "1", Category: "c"}.Validate()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.Date != "10/01/2025" {
		t.Fatalf("date rewritten to %q", e.Date)
	}
}

func TestMergeCategories(t *testing.T) {
	got := MergeCategories([]string{"Food", "Bills"}, []string{"food", "Bills", " ", "Travel"})
	want := []string{"Food", "Bills", "food", "Travel"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStorageUnavailable(t *testing.T) {
	if Unavailable("create", nil) != nil {
		t.Fatal("nil error should stay nil")
	}
	base := errors.New("disk full")
	err := Unavailable("create", base)
	if !IsStorageUnavailable(err) {
		t.Fatal("expected storage unavailable")
	}
	if !errors.Is(err, base) {
		t.Fatal("expected wrapped error to be reachable")
	}
	if IsStorageUnavailable(base) {
		t.Fatal("plain error is not storage unavailable")
	}
}
