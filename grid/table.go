package grid

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultHeaderRow is the zero-based header row of the schedule workbooks:
// the first row carries a title and the column names sit on the second.
const DefaultHeaderRow = 1

var (
	// ErrNoHeader is returned when a grid has no row at the header position.
	ErrNoHeader = errors.New("header row not found")
	// ErrColumnNotFound is returned when a required column is absent.
	ErrColumnNotFound = errors.New("column not found")
)

// Table is a grid with a designated header row.
type Table struct {
	Rows      Grid
	HeaderRow int
	Headers   []string
}

// NewTable indexes g using the row at headerRow as column names.
// Header names are kept verbatim, so lookups are case and whitespace sensitive.
func NewTable(g Grid, headerRow int) (*Table, error) {
	if headerRow < 0 || headerRow >= len(g) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrNoHeader, headerRow+1, len(g))
	}
	headers := make([]string, len(g[headerRow]))
	for i, c := range g[headerRow] {
		headers[i] = Text(c)
	}
	return &Table{Rows: g, HeaderRow: headerRow, Headers: headers}, nil
}

// Index returns the position of the first header equal to name, or -1.
func (t *Table) Index(name string) int {
	for i, h := range t.Headers {
		if h == name {
			return i
		}
	}
	return -1
}

// IndexFold returns the position of the first header matching any of names
// after trimming and case folding, or -1.
func (t *Table) IndexFold(names ...string) int {
	for i, h := range t.Headers {
		h = strings.TrimSpace(h)
		for _, n := range names {
			if strings.EqualFold(h, strings.TrimSpace(n)) {
				return i
			}
		}
	}
	return -1
}

// Require returns the index of name or an ErrColumnNotFound error.
func (t *Table) Require(name string) (int, error) {
	idx := t.Index(name)
	if idx < 0 {
		return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return idx, nil
}

// Missing lists the names that have no matching header.
func (t *Table) Missing(names ...string) []string {
	var out []string
	for _, n := range names {
		if t.Index(n) < 0 {
			out = append(out, n)
		}
	}
	return out
}

// FirstDataRow is the index of the row after the header.
func (t *Table) FirstDataRow() int {
	return t.HeaderRow + 1
}

// Value returns the cell at (row, col); a negative col yields nil.
func (t *Table) Value(row, col int) Cell {
	return t.Rows.At(row, col)
}

// Width is the number of header columns, or the grid width if larger.
func (t *Table) Width() int {
	return max(len(t.Headers), t.Rows.Width())
}
