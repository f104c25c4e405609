package reconcile

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Days is the fixed weekday enumeration, Monday first.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Weeks is the number of weeks in a cleaning cycle.
const Weeks = 4

// CycleLabel renders the canonical "{Day} - Week N" label.
func CycleLabel(day string, week int) string {
	return fmt.Sprintf("%s - Week %d", day, week)
}

// CycleTable is the list of valid cycle labels, day-major.
type CycleTable []string

// NewCycleTable returns every day and week combination.
func NewCycleTable() CycleTable {
	t := make(CycleTable, 0, len(Days)*Weeks)
	for _, d := range Days {
		for w := 1; w <= Weeks; w++ {
			t = append(t, CycleLabel(d, w))
		}
	}
	return t
}

// Match maps a free-text day to a cycle label for week. It reports exact
// when "{day} - Week {week}" is in the table. Otherwise it returns the label
// with the most equal characters at equal positions, compared in lower case;
// ties go to the earlier label and the first label wins when nothing scores.
func (t CycleTable) Match(day string, week int) (label string, exact bool) {
	if len(t) == 0 {
		return "", false
	}
	want := CycleLabel(strings.TrimSpace(day), week)
	if slices.Contains(t, want) {
		return want, true
	}
	lw := []rune(strings.ToLower(want))
	best, bestScore := t[0], 0
	for _, candidate := range t {
		if s := positionalScore(lw, []rune(strings.ToLower(candidate))); s > bestScore {
			best, bestScore = candidate, s
		}
	}
	return best, false
}

func positionalScore(a, b []rune) int {
	n := min(len(a), len(b))
	score := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			score++
		}
	}
	return score
}

// SplitName splits a full name on whitespace. The last token is the last
// name and the rest joined by single spaces is the first name; a single
// token is a first name only.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
	}
}

var feePattern = regexp.MustCompile(`\d+\.?\d*`)

// ParseFee returns the first decimal number embedded in payment, or 0.
func ParseFee(payment string) float64 {
	m := feePattern.FindString(payment)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}
