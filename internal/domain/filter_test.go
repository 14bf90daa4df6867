package domain

import (
	"testing"
	"time"
)

func ptr(t time.Time) *time.Time { return &t }

func TestTaskFilterWindow_RangeBeatsYearMonth(t *testing.T) {
	f := TaskFilter{Start: ptr(date("2024-03-10")), Year: 2023, Month: 7}
	start, end := f.Window()
	if start == nil || !start.Equal(date("2024-03-10")) {
		t.Fatalf("expected start 2024-03-10, got %v", start)
	}
	if end != nil {
		t.Fatalf("expected open end, got %v", end)
	}
}

func TestTaskFilterWindow_YearMonth(t *testing.T) {
	start, end := TaskFilter{Year: 2024, Month: 2}.Window()
	if !start.Equal(date("2024-02-01")) || !end.Equal(date("2024-02-29")) {
		t.Fatalf("expected Feb 2024, got %v - %v", start, end)
	}
}

func TestTaskFilterWindow_YearOnly(t *testing.T) {
	start, end := TaskFilter{Year: 2024}.Window()
	if !start.Equal(date("2024-01-01")) || !end.Equal(date("2024-12-31")) {
		t.Fatalf("expected whole year, got %v - %v", start, end)
	}
}

func TestTaskFilterWindow_Empty(t *testing.T) {
	start, end := TaskFilter{Month: 4}.Window()
	if start != nil || end != nil {
		t.Fatalf("expected open window, got %v - %v", start, end)
	}
}

func TestTaskFilterMatches(t *testing.T) {
	task := &WorkTask{ClientID: 2, TaskDate: date("2024-01-10")}

	tests := []struct {
		name   string
		filter TaskFilter
		want   bool
	}{
		{"no filter", TaskFilter{}, true},
		{"zero client id means all", TaskFilter{ClientID: 0}, true},
		{"other client", TaskFilter{ClientID: 1}, false},
		{"inclusive start", TaskFilter{Start: ptr(date("2024-01-10"))}, true},
		{"inclusive end", TaskFilter{End: ptr(date("2024-01-10"))}, true},
		{"end with time of day", TaskFilter{End: ptr(date("2024-01-10").Add(15 * time.Hour))}, true},
		{"before start", TaskFilter{Start: ptr(date("2024-01-11"))}, false},
		{"other month", TaskFilter{Year: 2024, Month: 2}, false},
		{"same month", TaskFilter{Year: 2024, Month: 1}, true},
	}

	for _, tt := range tests {
		if got := tt.filter.Matches(task); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
