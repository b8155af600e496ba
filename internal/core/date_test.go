package core

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("String() = %q", d.String())
	}
	for _, bad := range []string{"", "2024-2-3", "2023-02-29", "29/02/2024"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) expected error", bad)
		}
	}
}

func TestDateOfDropsClock(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	d := DateOf(time.Date(2024, 3, 10, 23, 59, 0, 0, loc))
	if !d.Equal(NewDate(2024, 3, 10)) {
		t.Fatalf("DateOf = %s, want 2024-03-10", d)
	}
}

func TestAddDays(t *testing.T) {
	tests := []struct {
		from Date
		n    int
		want Date
	}{
		{NewDate(2024, 1, 31), 1, NewDate(2024, 2, 1)},
		{NewDate(2024, 2, 28), 1, NewDate(2024, 2, 29)},
		{NewDate(2024, 12, 31), 7, NewDate(2025, 1, 7)},
		{NewDate(2024, 3, 1), -1, NewDate(2024, 2, 29)},
	}
	for _, tt := range tests {
		if got := tt.from.AddDays(tt.n); !got.Equal(tt.want) {
			t.Errorf("%s.AddDays(%d) = %s, want %s", tt.from, tt.n, got, tt.want)
		}
	}
}

func TestNextMonthClamped(t *testing.T) {
	tests := []struct {
		from Date
		want Date
	}{
		{NewDate(2024, 1, 15), NewDate(2024, 2, 15)},
		{NewDate(2024, 1, 31), NewDate(2024, 2, 28)},
		{NewDate(2024, 2, 28), NewDate(2024, 3, 28)},
		{NewDate(2024, 12, 30), NewDate(2025, 1, 28)},
		{NewDate(2024, 11, 5), NewDate(2024, 12, 5)},
	}
	for _, tt := range tests {
		if got := tt.from.NextMonthClamped(28); !got.Equal(tt.want) {
			t.Errorf("%s.NextMonthClamped(28) = %s, want %s", tt.from, got, tt.want)
		}
	}
}

func TestMonthKey(t *testing.T) {
	if got := NewDate(2024, 7, 4).MonthKey(); got != "2024-07" {
		t.Fatalf("MonthKey = %q", got)
	}
}
