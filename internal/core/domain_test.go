package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in  string
		err error
	}{
		{"2024-05-01", nil},
		{" 2024-12-31 ", nil},
		{"", ErrMissingDate},
		{"2024-13-01", ErrInvalidDate},
		{"01/05/2024", ErrInvalidDate},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.err == nil {
			if err != nil {
				t.Fatalf("%q expected ok, got %v", tc.in, err)
			}
			if d.Location() != time.UTC {
				t.Fatalf("%q expected UTC date, got %v", tc.in, d.Location())
			}
			continue
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
		}
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2024, 5, 3)
	b, err := json.Marshal(d)
	if err != nil || string(b) != `"2024-05-03"` {
		t.Fatalf("marshal: %s %v", b, err)
	}
	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(d.Time) {
		t.Fatalf("expected %v, got %v", d, back)
	}
	if err := json.Unmarshal([]byte(`"nope"`), &back); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2024-05")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ym.String() != "2024-05" || ym.Days() != 31 {
		t.Fatalf("unexpected %v days=%d", ym, ym.Days())
	}
	if NewDate(2024, 5, 17).YearMonth() != ym {
		t.Fatalf("date month mismatch")
	}
	if !(YearMonth{2023, 12}).Before(ym) || ym.Before(YearMonth{2024, 4}) {
		t.Fatalf("ordering broken")
	}
	if (YearMonth{2024, time.February}).Days() != 29 {
		t.Fatalf("leap february")
	}
	if _, err := ParseYearMonth("2024-5-1"); !errors.Is(err, ErrInvalidMonth) {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
	now := time.Date(2024, 6, 1, 1, 0, 0, 0, time.FixedZone("IST", 5*3600+1800))
	if got := CurrentYearMonth(now); got.String() != "2024-05" {
		t.Fatalf("current month should be taken in UTC, got %v", got)
	}
}

func TestDraftValidate(t *testing.T) {
	good := Draft{Amount: Units(100), Category: "Food", Date: NewDate(2024, 5, 1)}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		d   Draft
		err error
	}{
		{Draft{Amount: Money{}, Category: "Food", Date: NewDate(2024, 5, 1)}, ErrInvalidAmount},
		{Draft{Amount: Money{Cents: -5}, Category: "Food", Date: NewDate(2024, 5, 1)}, ErrInvalidAmount},
		{Draft{Amount: Units(1), Category: "  ", Date: NewDate(2024, 5, 1)}, ErrEmptyCategory},
		{Draft{Amount: Units(1), Category: "Food"}, ErrMissingDate},
	}
	for i, tc := range bads {
		if err := tc.d.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %v, got %v", i, tc.err, err)
		}
	}
}

func TestExpenseJSONFieldOrder(t *testing.T) {
	e := Expense{
		ID:        "abc",
		Amount:    Money{Cents: 1250},
		Category:  "Food",
		Date:      NewDate(2024, 5, 1),
		Note:      "lunch",
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"id":"abc","amount":12.5,"category":"Food","date":"2024-05-01","note":"lunch","createdAt":"2024-05-01T12:00:00Z"}`
	if string(b) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", b, want)
	}
	if err := (Expense{Amount: Units(1), Category: "x", Date: NewDate(2024, 1, 1)}).Validate(); !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestTheme(t *testing.T) {
	if ThemeDark.Toggle() != ThemeLight || ThemeLight.Toggle() != ThemeDark {
		t.Fatalf("toggle broken")
	}
	if th, err := ParseTheme(" Light "); err != nil || th != ThemeLight {
		t.Fatalf("parse light: %v %v", th, err)
	}
	if _, err := ParseTheme("blue"); !errors.Is(err, ErrInvalidTheme) {
		t.Fatalf("expected ErrInvalidTheme, got %v", err)
	}
}
