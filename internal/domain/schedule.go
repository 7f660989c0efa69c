package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidScheduleFormat is returned for a schedule value the booking form
// could not have produced.
var ErrInvalidScheduleFormat = errors.New("invalid schedule format")

// ScheduleWindow is the parsed form of the submitted schedule value
// "2006-01-02T15:04-15:04": one date, a start time and an end time.
type ScheduleWindow struct {
	Date  string
	Start string
	End   string
}

// ParseScheduleWindow validates and splits a submitted schedule value.
// "2025-03-10T09:00-17:00" parses to {2025-03-10, 09:00, 17:00}.
func ParseScheduleWindow(value string) (ScheduleWindow, error) {
	value = strings.TrimSpace(value)
	datePart, timePart, ok := strings.Cut(value, "T")
	if !ok {
		return ScheduleWindow{}, fmt.Errorf("%w: %q", ErrInvalidScheduleFormat, value)
	}
	start, end, ok := strings.Cut(timePart, "-")
	if !ok {
		return ScheduleWindow{}, fmt.Errorf("%w: %q", ErrInvalidScheduleFormat, value)
	}
	w := ScheduleWindow{
		Date:  strings.TrimSpace(datePart),
		Start: strings.TrimSpace(start),
		End:   strings.TrimSpace(end),
	}
	if _, err := time.Parse(DateFormat, w.Date); err != nil {
		return ScheduleWindow{}, fmt.Errorf("%w: bad date %q", ErrInvalidScheduleFormat, w.Date)
	}
	if _, err := time.Parse(TimeFormat, w.Start); err != nil {
		return ScheduleWindow{}, fmt.Errorf("%w: bad start time %q", ErrInvalidScheduleFormat, w.Start)
	}
	if _, err := time.Parse(TimeFormat, w.End); err != nil {
		return ScheduleWindow{}, fmt.Errorf("%w: bad end time %q", ErrInvalidScheduleFormat, w.End)
	}
	return w, nil
}

// StartsAt renders the combined date-time value persisted on the booking,
// e.g. "2025-03-10T09:00:00".
func (w ScheduleWindow) StartsAt() string {
	return w.Date + "T" + w.Start + ":00"
}

// Key is the composite slot key the availability endpoint hands out,
// "date|start-end". A booking submission echoes it back as the schedule
// value, with the pipe swapped for a T.
func (w ScheduleWindow) Key() string {
	return w.Date + "|" + w.Start + "-" + w.End
}
