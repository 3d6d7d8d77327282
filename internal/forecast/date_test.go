package forecast

import (
	"testing"
	"time"
)

// TestClampDayOfMonth проверяет прижатие дня к длине месяца.
func TestClampDayOfMonth(t *testing.T) {
	got := ClampDayOfMonth(2023, time.February, 31)
	if got.Day != 28 {
		t.Fatalf("expected day 28 in non-leap february, got %d", got.Day)
	}

	got = ClampDayOfMonth(2024, time.February, 31)
	if got.Day != 29 {
		t.Fatalf("expected day 29 in leap february, got %d", got.Day)
	}

	got = ClampDayOfMonth(2024, time.April, 15)
	if got.Day != 15 {
		t.Fatalf("expected day 15 to pass through, got %d", got.Day)
	}
}

// TestAddMonthsClamped проверяет шаг по месяцам без дрейфа дня.
func TestAddMonthsClamped(t *testing.T) {
	anchor := NewDate(2023, time.January, 31)

	feb := AddMonthsClamped(anchor, 1, 31)
	if feb.String() != "2023-02-28" {
		t.Fatalf("expected 2023-02-28, got %s", feb)
	}

	mar := AddMonthsClamped(anchor, 2, 31)
	if mar.String() != "2023-03-31" {
		t.Fatalf("expected 2023-03-31, got %s", mar)
	}

	nextYear := AddMonthsClamped(anchor, 12, 31)
	if nextYear.String() != "2024-01-31" {
		t.Fatalf("expected 2024-01-31, got %s", nextYear)
	}
}

// TestDaysBetween проверяет разницу в календарных днях.
func TestDaysBetween(t *testing.T) {
	from := NewDate(2024, time.February, 28)
	to := NewDate(2024, time.March, 1)

	if got := DaysBetween(from, to); got != 2 {
		t.Fatalf("expected 2 days across leap february, got %d", got)
	}

	if got := DaysBetween(to, from); got != -2 {
		t.Fatalf("expected -2 days in reverse, got %d", got)
	}
}

// TestNextBusinessDay проверяет сдвиг с выходных на рабочий день.
func TestNextBusinessDay(t *testing.T) {
	saturday := NewDate(2026, time.January, 3)
	if got := saturday.NextBusinessDay(); got.String() != "2026-01-05" {
		t.Fatalf("expected 2026-01-05, got %s", got)
	}

	monday := NewDate(2026, time.January, 5)
	if got := monday.NextBusinessDay(); !got.Equal(monday) {
		t.Fatalf("expected monday to stay, got %s", got)
	}
}

// TestDateJSON проверяет сериализацию даты строкой 2006-01-02.
func TestDateJSON(t *testing.T) {
	date := NewDate(2026, time.July, 9)

	raw, err := date.MarshalJSON()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(raw) != `"2026-07-09"` {
		t.Fatalf("unexpected json: %s", raw)
	}

	var parsed Date
	if err := parsed.UnmarshalJSON(raw); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !parsed.Equal(date) {
		t.Fatalf("expected %s, got %s", date, parsed)
	}
}
