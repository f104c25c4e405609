// Package dates recognises date-like cell values and rewrites them as
// DD/MM/YYYY text.
package dates

import (
	"regexp"
	"strings"

	"sheetops/grid"
)

// Serial dates are recognised inside this open window.
const (
	minSerial = 1000
	maxSerial = 100000
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
	regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
	regexp.MustCompile(`^\d{1,2}-\d{1,2}-\d{4}$`),
	regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
	regexp.MustCompile(`^\w{3}\s+\d{1,2},?\s+\d{4}$`),
	regexp.MustCompile(`^\d{1,2}\s+\w{3}\s+\d{4}$`),
}

// IsDate reports whether v plausibly holds a date: a number inside the
// serial-date window or a string in one of the recognised layouts.
func IsDate(v grid.Cell) bool {
	if grid.Falsy(v) {
		return false
	}
	if _, ok := v.(bool); ok {
		return false
	}
	if n, ok := grid.Number(v); ok {
		return n > minSerial && n < maxSerial
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	for _, p := range datePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
