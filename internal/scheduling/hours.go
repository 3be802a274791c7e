package scheduling

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a daily operating-hours span. Slots are whole hours; OpenHour is
// the first bookable hour and CloseHour the first hour past the window.
type Window struct {
	OpenHour  int
	CloseHour int
}

// ParseWindow parses the stored "9:00-17:00" form. Opening minutes round the
// first bookable hour up; closing minutes are truncated.
func ParseWindow(s string) (Window, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("operating hours %q: want \"HH:MM-HH:MM\"", s)
	}
	openHour, openMin, err := parseClock(parts[0])
	if err != nil {
		return Window{}, fmt.Errorf("operating hours %q: %w", s, err)
	}
	closeHour, _, err := parseClock(parts[1])
	if err != nil {
		return Window{}, fmt.Errorf("operating hours %q: %w", s, err)
	}
	if openMin > 0 {
		openHour++
	}
	if closeHour <= openHour {
		return Window{}, fmt.Errorf("operating hours %q: window is empty", s)
	}
	return Window{OpenHour: openHour, CloseHour: closeHour}, nil
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour %q", s)
	}
	if len(parts) == 2 {
		minute, err = strconv.Atoi(parts[1])
		if err != nil || minute < 0 || minute > 59 {
			return 0, 0, fmt.Errorf("bad minute %q", s)
		}
	}
	return hour, minute, nil
}

// Contains reports whether the hour is bookable.
func (w Window) Contains(hour int) bool {
	return hour >= w.OpenHour && hour < w.CloseHour
}

// NextOpen returns t if it falls inside the window, otherwise the start of
// the next open hour (same day if before opening, next day otherwise).
func (w Window) NextOpen(t time.Time) time.Time {
	if w.Contains(t.Hour()) {
		return t
	}
	open := time.Date(t.Year(), t.Month(), t.Day(), w.OpenHour, 0, 0, 0, t.Location())
	if t.Hour() < w.OpenHour {
		return open
	}
	return open.Add(24 * time.Hour)
}
