package core

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out float64
		ok  bool
	}{
		{"1", 1, true},
		{"12.5", 12.5, true},
		{" 2.50 ", 2.5, true},
		{"-3", -3, true},
		{"0", 0, true},
		{"1e2", 100, true},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"12,34", 0, false},
		{"", 0, false},
		{"   ", 0, false},
		{"NaN", 0, false},
		{"inf", 0, false},
		{"1e400", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %v, got %v (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(80); got != "80.00" {
		t.Fatalf("got %q", got)
	}
	if got := FormatAmount(-2.5); got != "-2.50" {
		t.Fatalf("got %q", got)
	}
}
