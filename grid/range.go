package grid

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Range addresses a rectangular block of a worksheet. Row and Col are
// zero-based; a zero Rows or Cols means "size taken from the data".
type Range struct {
	Row  int
	Col  int
	Rows int
	Cols int
}

// CellAt addresses a single cell.
func CellAt(row, col int) Range {
	return Range{Row: row, Col: col, Rows: 1, Cols: 1}
}

// At addresses a block with its top-left corner at (row, col).
func At(row, col, rows, cols int) Range {
	return Range{Row: row, Col: col, Rows: rows, Cols: cols}
}

// Empty reports whether the range covers no cells.
func (r Range) Empty() bool {
	return r.Rows <= 0 || r.Cols <= 0
}

// A1 renders the range in A1 notation, e.g. "B3" or "A1:D10".
func (r Range) A1() string {
	tl := CellName(r.Row, r.Col)
	if r.Rows <= 1 && r.Cols <= 1 {
		return tl
	}
	return tl + ":" + CellName(r.Row+max(r.Rows, 1)-1, r.Col+max(r.Cols, 1)-1)
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return r.A1()
}

// ColumnName converts a zero-based column index to its letter name.
func ColumnName(col int) string {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return ""
	}
	return name
}

// ColumnIndex converts a column letter name ("E", "AA") to a zero-based index.
func ColumnIndex(name string) (int, error) {
	n, err := excelize.ColumnNameToNumber(strings.TrimSpace(name))
	if err != nil {
		return -1, fmt.Errorf("invalid column %q: %w", name, err)
	}
	return n - 1, nil
}

// CellName converts zero-based coordinates to an A1 cell name.
func CellName(row, col int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return ""
	}
	return name
}

// ParseRange parses "B2" or "A1:D10" into a Range.
func ParseRange(ref string) (Range, error) {
	parts := strings.Split(strings.TrimSpace(ref), ":")
	if len(parts) == 0 || len(parts) > 2 {
		return Range{}, fmt.Errorf("invalid range %q", ref)
	}
	c1, r1, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return Range{}, fmt.Errorf("invalid range %q: %w", ref, err)
	}
	c2, r2 := c1, r1
	if len(parts) == 2 {
		c2, r2, err = excelize.CellNameToCoordinates(parts[1])
		if err != nil {
			return Range{}, fmt.Errorf("invalid range %q: %w", ref, err)
		}
	}
	if c2 < c1 {
		c1, c2 = c2, c1
	}
	if r2 < r1 {
		r1, r2 = r2, r1
	}
	return Range{Row: r1 - 1, Col: c1 - 1, Rows: r2 - r1 + 1, Cols: c2 - c1 + 1}, nil
}
