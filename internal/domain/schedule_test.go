package domain

import (
	"errors"
	"testing"
)

func TestParseScheduleWindow(t *testing.T) {
	w, err := ParseScheduleWindow("2025-03-10T09:00-17:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Date != "2025-03-10" {
		t.Errorf("date = %q, want 2025-03-10", w.Date)
	}
	if w.Start != "09:00" {
		t.Errorf("start = %q, want 09:00", w.Start)
	}
	if w.End != "17:00" {
		t.Errorf("end = %q, want 17:00", w.End)
	}
	if got := w.StartsAt(); got != "2025-03-10T09:00:00" {
		t.Errorf("StartsAt() = %q, want 2025-03-10T09:00:00", got)
	}
	if got := w.Key(); got != "2025-03-10|09:00-17:00" {
		t.Errorf("Key() = %q, want 2025-03-10|09:00-17:00", got)
	}
}

func TestParseScheduleWindowRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"2025-03-10",
		"2025-03-10T09:00",
		"09:00-17:00",
		"2025-13-40T09:00-17:00",
		"2025-03-10T25:00-17:00",
		"2025-03-10T09:00-99:99",
		"not a schedule",
	}
	for _, in := range cases {
		if _, err := ParseScheduleWindow(in); !errors.Is(err, ErrInvalidScheduleFormat) {
			t.Errorf("ParseScheduleWindow(%q) err = %v, want ErrInvalidScheduleFormat", in, err)
		}
	}
}
