package core

import (
	"encoding/json"
	"testing"
)

func TestParseMoney(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"30000", 3000000, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseMoney(tc.in)
		if tc.ok {
			if err != nil || got.Cents != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got.Cents, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestMoneyFormatting(t *testing.T) {
	cases := []struct {
		cents int64
		str   string
		fixed string
	}{
		{10000, "100", "100.00"},
		{1250, "12.5", "12.50"},
		{1, "0.01", "0.01"},
		{0, "0", "0.00"},
	}
	for _, tc := range cases {
		m := Money{Cents: tc.cents}
		if m.String() != tc.str || m.Fixed() != tc.fixed {
			t.Fatalf("%d: got %q/%q want %q/%q", tc.cents, m.String(), m.Fixed(), tc.str, tc.fixed)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var m Money
	for in, want := range map[string]int64{`100`: 10000, `99.99`: 9999, `"12.5"`: 1250} {
		if err := json.Unmarshal([]byte(in), &m); err != nil || m.Cents != want {
			t.Fatalf("%s: got %d err=%v", in, m.Cents, err)
		}
	}
	if err := json.Unmarshal([]byte(`"abc"`), &m); err == nil {
		t.Fatalf("expected error for non-numeric amount")
	}
	b, _ := json.Marshal(Money{Cents: 35000})
	if string(b) != "350" {
		t.Fatalf("marshal: %s", b)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a, b := Units(10), Money{Cents: 250}
	if a.Add(b).Cents != 1250 || a.Sub(b).Cents != 750 {
		t.Fatalf("arithmetic broken")
	}
	if !(Money{}).IsZero() || a.IsZero() {
		t.Fatalf("IsZero broken")
	}
}
