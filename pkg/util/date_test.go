package util

import (
	"testing"
	"time"
)

func TestParseDateDayOnly(t *testing.T) {
	got, ok := ParseDate("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected time %v", got)
	}
}

func TestParseDateRFC3339Truncates(t *testing.T) {
	got, ok := ParseDate("2024-10-10T15:04:05Z")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected midnight, got %v", got)
	}
}

func TestParseDateEmpty(t *testing.T) {
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected not ok for empty input")
	}
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC))
	want := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected month start %v", got)
	}
}

func TestAddMonthsRollsOverYear(t *testing.T) {
	got := AddMonths(time.Date(2024, 12, 15, 0, 0, 0, 0, time.UTC), 2)
	want := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected month %v", got)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	if d := DaysBetween(a, b); d != 31 {
		t.Fatalf("expected 31 days, got %v", d)
	}
	if d := DaysBetween(b, a); d != -31 {
		t.Fatalf("expected -31 days, got %v", d)
	}
}
