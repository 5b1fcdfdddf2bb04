// Package timeutil holds the naive local-clock arithmetic used by the board.
// Nothing here reads the wall clock; callers pass every instant in.
package timeutil

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

const (
	// MinutesPerDay bounds minutes-of-day values.
	MinutesPerDay = 24 * 60
	// DateLayout is the ISO date format stored on classes.
	DateLayout = "2006-01-02"
	// DisplayLayout is the DD/MM/YYYY format used in week titles.
	DisplayLayout = "02/01/2006"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// MondayOf returns midnight of the Monday at or before t, independent of locale.
func MondayOf(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DateForDayOffset returns weekStart + dayIndex days. dayIndex must be in [0,6].
func DateForDayOffset(weekStart time.Time, dayIndex int) (time.Time, error) {
	if dayIndex < 0 || dayIndex > 6 {
		return time.Time{}, fmt.Errorf("day index %d out of range", dayIndex)
	}
	return StartOfDay(weekStart).AddDate(0, 0, dayIndex), nil
}

// IsClock reports whether raw matches HH:MM with a valid hour and minute.
func IsClock(raw string) bool {
	return clockPattern.MatchString(raw)
}

// MinutesOfDay converts HH:MM into minutes since midnight.
func MinutesOfDay(raw string) (int, error) {
	if len(raw) == 4 && raw[1] == ':' {
		raw = "0" + raw
	}
	if !IsClock(raw) {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	h, _ := strconv.Atoi(raw[:2])
	m, _ := strconv.Atoi(raw[3:])
	return h*60 + m, nil
}

// ClockOf converts minutes into HH:MM, wrapping modulo 24h.
func ClockOf(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Snap rounds minutes to the nearest multiple of step. Halves round away from zero.
func Snap(minutes, step int) int {
	if step <= 0 {
		return minutes
	}
	return int(math.Round(float64(minutes)/float64(step))) * step
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Naive drops the location of t, keeping its calendar date at midnight UTC.
func Naive(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate accepts ISO dates and full RFC 3339 timestamps, returning the naive calendar date.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", raw)
	}
	return Naive(t), nil
}

// FormatDate renders t as an ISO date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// InWeek reports whether date falls in [weekStart, weekStart+7d).
func InWeek(date, weekStart time.Time) bool {
	start := Naive(weekStart)
	end := start.AddDate(0, 0, 7)
	d := Naive(date)
	return !d.Before(start) && d.Before(end)
}
