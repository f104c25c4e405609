// Package host defines the narrow worksheet capability set the routines
// depend on. The excelize binding in the root package and the in-memory
// workbook in this package both implement it.
package host

import (
	"errors"
	"fmt"

	"sheetops/grid"
)

var (
	// ErrSheetNotFound is returned when a named worksheet does not exist.
	ErrSheetNotFound = errors.New("worksheet not found")
	// ErrShape is returned when a grid does not fit the addressed range.
	ErrShape = errors.New("grid does not match range")
	// ErrLastSheet is returned when deleting the only worksheet left.
	ErrLastSheet = errors.New("cannot delete the only worksheet")
)

// Workbook is a set of named worksheets. Names compare case-insensitively.
// AddSheet returns the existing sheet when the name is taken and DeleteSheet
// keeps at least one sheet.
type Workbook interface {
	Sheet(name string) (Sheet, error)
	SheetNames() []string
	AddSheet(name string) (Sheet, error)
	DeleteSheet(name string) error
}

// Sheet is a single worksheet.
type Sheet interface {
	Name() string
	// UsedRange is the block from A1 to the last populated row and column.
	// It is empty when the sheet holds no data.
	UsedRange() (grid.Range, error)
	ReadGrid(r grid.Range) (grid.Grid, error)
	// WriteGrid writes g with its top-left cell at (r.Row, r.Col). When r has
	// a size, g must match it.
	WriteGrid(r grid.Range, g grid.Grid) error
	SetFormat(r grid.Range, f Format) error
	FreezeRows(n int) error
	AutofitColumns() error
}

// Format is the subset of cell formatting the routines apply.
type Format struct {
	FillColor           string
	FontColor           string
	Bold                bool
	NumberFormat        string
	HorizontalAlignment string
	RowHeight           float64
}

// TextFormat marks cells as literal text.
const TextFormat = "@"

// HasStyle reports whether f carries any cell style besides row height.
func (f Format) HasStyle() bool {
	return f.FillColor != "" || f.FontColor != "" || f.Bold || f.NumberFormat != "" || f.HorizontalAlignment != ""
}

// ReadUsed reads the whole used range of s. It returns a nil grid for an
// empty sheet.
func ReadUsed(s Sheet) (grid.Grid, error) {
	r, err := s.UsedRange()
	if err != nil {
		return nil, fmt.Errorf("used range of %q: %w", s.Name(), err)
	}
	if r.Empty() {
		return nil, nil
	}
	g, err := s.ReadGrid(r)
	if err != nil {
		return nil, fmt.Errorf("read %q %s: %w", s.Name(), r.A1(), err)
	}
	return g, nil
}

// CheckShape validates g against r for WriteGrid implementations.
func CheckShape(r grid.Range, g grid.Grid) error {
	if r.Rows > 0 && len(g) != r.Rows {
		return fmt.Errorf("%w: %d rows for %s", ErrShape, len(g), r.A1())
	}
	if r.Cols > 0 {
		for i, row := range g {
			if len(row) > r.Cols {
				return fmt.Errorf("%w: row %d has %d cells for %s", ErrShape, i, len(row), r.A1())
			}
		}
	}
	return nil
}
