// Package grid holds the in-memory shape of worksheet data: scalar cells,
// row-major grids, zero-based ranges and header-indexed tables.
package grid

import (
	"math"
	"strconv"
	"strings"
)

// Cell is a single worksheet value: nil, string, float64 or bool.
// Integer types are accepted wherever a number is expected.
type Cell = any

// Row is one row of cells.
type Row = []Cell

// Grid is a row-major block of cells.
type Grid [][]Cell

// Number reports the numeric value of c when c holds a number.
func Number(c Cell) (float64, bool) {
	switch v := c.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Text renders c the way the spreadsheet host stringifies values:
// numbers without trailing zeros, booleans as true/false, nil as "".
func Text(c Cell) string {
	switch v := c.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	}
	if n, ok := Number(c); ok {
		if math.IsNaN(n) {
			return "NaN"
		}
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// Falsy reports whether c is nil, "", false, zero or NaN.
func Falsy(c Cell) bool {
	switch v := c.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	}
	if n, ok := Number(c); ok {
		return n == 0 || math.IsNaN(n)
	}
	return true
}

// Blank reports whether c is falsy or only whitespace.
func Blank(c Cell) bool {
	return Falsy(c) || strings.TrimSpace(Text(c)) == ""
}

// Field returns the trimmed text of c, or "" when c is falsy.
func Field(c Cell) string {
	if Falsy(c) {
		return ""
	}
	return strings.TrimSpace(Text(c))
}

// At returns the cell at (row, col) or nil when out of bounds.
func (g Grid) At(row, col int) Cell {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return nil
	}
	return g[row][col]
}

// Width is the length of the longest row.
func (g Grid) Width() int {
	w := 0
	for _, r := range g {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// Clone returns a deep copy of the row slices.
func (g Grid) Clone() Grid {
	if g == nil {
		return nil
	}
	out := make(Grid, len(g))
	for i, r := range g {
		out[i] = append(Row(nil), r...)
	}
	return out
}

// Pad returns a copy of g where every row has exactly width cells.
func (g Grid) Pad(width int) Grid {
	out := make(Grid, len(g))
	for i, r := range g {
		row := make(Row, width)
		copy(row, r)
		out[i] = row
	}
	return out
}

// BlankRow returns a row of width nil cells with label in the first cell.
func BlankRow(width int, label Cell) Row {
	if width <= 0 {
		return Row{}
	}
	row := make(Row, width)
	row[0] = label
	for i := 1; i < width; i++ {
		row[i] = ""
	}
	return row
}

// TrimTrailingEmpty drops blank cells from the end of row.
func TrimTrailingEmpty(row Row) Row {
	last := -1
	for i, c := range row {
		if strings.TrimSpace(Text(c)) != "" {
			last = i
		}
	}
	if last < 0 {
		return Row{}
	}
	return row[:last+1]
}

// IsEmptyRow reports whether every cell in row is blank.
func IsEmptyRow(row Row) bool {
	for _, c := range row {
		if strings.TrimSpace(Text(c)) != "" {
			return false
		}
	}
	return true
}
