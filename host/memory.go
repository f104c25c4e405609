package host

import (
	"fmt"
	"strings"

	"sheetops/grid"
)

// MemoryWorkbook is an in-memory Workbook for routine tests.
type MemoryWorkbook struct {
	sheets []*MemorySheet
}

// NewMemoryWorkbook returns an empty workbook.
func NewMemoryWorkbook() *MemoryWorkbook {
	return &MemoryWorkbook{}
}

// FormatCall records one SetFormat call.
type FormatCall struct {
	Range  grid.Range
	Format Format
}

// MemorySheet is a worksheet stored as a grid.
type MemorySheet struct {
	name       string
	cells      grid.Grid
	Formats    []FormatCall
	Frozen     int
	Autofitted bool
}

// Put adds or replaces a sheet holding g.
func (w *MemoryWorkbook) Put(name string, g grid.Grid) *MemorySheet {
	s := &MemorySheet{name: name, cells: g.Clone()}
	for i, existing := range w.sheets {
		if strings.EqualFold(existing.name, name) {
			w.sheets[i] = s
			return s
		}
	}
	w.sheets = append(w.sheets, s)
	return s
}

// Sheet implements Workbook.
func (w *MemoryWorkbook) Sheet(name string) (Sheet, error) {
	s := w.lookup(name)
	if s == nil {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return s, nil
}

// Memory returns the concrete sheet for assertions, or nil.
func (w *MemoryWorkbook) Memory(name string) *MemorySheet {
	return w.lookup(name)
}

func (w *MemoryWorkbook) lookup(name string) *MemorySheet {
	for _, s := range w.sheets {
		if strings.EqualFold(s.name, name) {
			return s
		}
	}
	return nil
}

// SheetNames implements Workbook.
func (w *MemoryWorkbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.name
	}
	return names
}

// AddSheet implements Workbook.
func (w *MemoryWorkbook) AddSheet(name string) (Sheet, error) {
	if s := w.lookup(name); s != nil {
		return s, nil
	}
	return w.Put(name, nil), nil
}

// DeleteSheet implements Workbook.
func (w *MemoryWorkbook) DeleteSheet(name string) error {
	for i, s := range w.sheets {
		if strings.EqualFold(s.name, name) {
			if len(w.sheets) == 1 {
				return ErrLastSheet
			}
			w.sheets = append(w.sheets[:i], w.sheets[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrSheetNotFound, name)
}

// Name implements Sheet.
func (s *MemorySheet) Name() string { return s.name }

// Grid returns a copy of the sheet contents.
func (s *MemorySheet) Grid() grid.Grid { return s.cells.Clone() }

// UsedRange implements Sheet.
func (s *MemorySheet) UsedRange() (grid.Range, error) {
	rows := len(s.cells)
	for rows > 0 && grid.IsEmptyRow(s.cells[rows-1]) {
		rows--
	}
	cols := 0
	for _, r := range s.cells[:rows] {
		cols = max(cols, len(grid.TrimTrailingEmpty(r)))
	}
	if rows == 0 || cols == 0 {
		return grid.Range{}, nil
	}
	return grid.At(0, 0, rows, cols), nil
}

// ReadGrid implements Sheet.
func (s *MemorySheet) ReadGrid(r grid.Range) (grid.Grid, error) {
	out := make(grid.Grid, r.Rows)
	for i := range out {
		row := make(grid.Row, r.Cols)
		for j := range row {
			row[j] = s.cells.At(r.Row+i, r.Col+j)
		}
		out[i] = row
	}
	return out, nil
}

// WriteGrid implements Sheet.
func (s *MemorySheet) WriteGrid(r grid.Range, g grid.Grid) error {
	if err := CheckShape(r, g); err != nil {
		return err
	}
	for i, row := range g {
		for j, v := range row {
			s.set(r.Row+i, r.Col+j, v)
		}
	}
	return nil
}

func (s *MemorySheet) set(row, col int, v grid.Cell) {
	for len(s.cells) <= row {
		s.cells = append(s.cells, nil)
	}
	for len(s.cells[row]) <= col {
		s.cells[row] = append(s.cells[row], nil)
	}
	s.cells[row][col] = v
}

// SetFormat implements Sheet.
func (s *MemorySheet) SetFormat(r grid.Range, f Format) error {
	s.Formats = append(s.Formats, FormatCall{Range: r, Format: f})
	return nil
}

// FormatsAt returns the formats applied to ranges starting at row.
func (s *MemorySheet) FormatsAt(row int) []Format {
	var out []Format
	for _, c := range s.Formats {
		if c.Range.Row == row {
			out = append(out, c.Format)
		}
	}
	return out
}

// FreezeRows implements Sheet.
func (s *MemorySheet) FreezeRows(n int) error {
	s.Frozen = n
	return nil
}

// AutofitColumns implements Sheet.
func (s *MemorySheet) AutofitColumns() error {
	s.Autofitted = true
	return nil
}
