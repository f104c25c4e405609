package dates

import (
	"fmt"
	"math"
	"strings"
	"time"

	"sheetops/grid"
)

const (
	// DateLayout is the canonical output form.
	DateLayout = "02/01/2006"
	// DateTimeLayout is the canonical output form when a time is wanted.
	DateTimeLayout = "02/01/2006 15:04"

	// firstCorrectedSerial is the first serial past the phantom 29 Feb 1900.
	firstCorrectedSerial = 60
)

var serialEpoch = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Numeric layouts are day-first so canonical output parses back to itself.
var localLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04",
	"2006-1-2",
	"2-1-2006",
	"2.1.2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// FromSerial converts a spreadsheet serial date to a time. Day 1 is
// 1 January 1900 and the fraction is the time of day. Serials from 60 on
// are shifted back a day because the serial system counts a 29 February
// 1900 that never existed.
func FromSerial(serial float64) time.Time {
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 24 * 60 * 60)
	t := serialEpoch.AddDate(0, 0, int(days)-1).Add(time.Duration(secs) * time.Second)
	if days >= firstCorrectedSerial {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// Parse reads a date string in any recognised layout. Strings without a
// zone are read in loc; zoned timestamps are converted to loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.In(loc), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// Normalize renders v as DD/MM/YYYY, or DD/MM/YYYY HH:MM when withTime is
// set. It reports false when v cannot be read as a date; callers must then
// leave the original value alone.
func Normalize(v grid.Cell, withTime bool) (string, bool) {
	return NormalizeIn(v, withTime, time.UTC)
}

// NormalizeIn is Normalize with zoned timestamps converted to loc.
func NormalizeIn(v grid.Cell, withTime bool, loc *time.Location) (string, bool) {
	if grid.Falsy(v) {
		return "", false
	}
	var t time.Time
	switch {
	case isBool(v):
		return "", false
	case isNumber(v):
		n, _ := grid.Number(v)
		if n < 1 || math.IsInf(n, 0) {
			return "", false
		}
		t = FromSerial(n)
	default:
		parsed, err := Parse(grid.Text(v), loc)
		if err != nil {
			return "", false
		}
		t = parsed
	}
	return Format(t, withTime), true
}

// Format renders t in the canonical layout.
func Format(t time.Time, withTime bool) string {
	if withTime {
		return t.Format(DateTimeLayout)
	}
	return t.Format(DateLayout)
}

func isBool(v grid.Cell) bool {
	_, ok := v.(bool)
	return ok
}

func isNumber(v grid.Cell) bool {
	_, ok := grid.Number(v)
	return ok
}
