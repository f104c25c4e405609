package sheetops

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"sheetops/grid"
	"sheetops/host"
)

// Column widths applied by AutofitColumns, in characters.
const (
	minColWidth = 8.0
	maxColWidth = 80.0
)

// Sheet is one worksheet of a Workbook. It implements host.Sheet.
type Sheet struct {
	wb   *Workbook
	name string
}

// Name returns the worksheet name.
func (s *Sheet) Name() string { return s.name }

func (s *Sheet) rawRows() ([][]string, error) {
	rows, err := s.wb.file.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", s.name, err)
	}
	return rows, nil
}

// UsedRange spans A1 to the last row and column holding a value.
func (s *Sheet) UsedRange() (grid.Range, error) {
	rows, err := s.rawRows()
	if err != nil {
		return grid.Range{}, err
	}
	lastRow, lastCol := -1, -1
	for i, row := range rows {
		for j := len(row) - 1; j >= 0; j-- {
			if row[j] != "" {
				lastRow = i
				lastCol = max(lastCol, j)
				break
			}
		}
	}
	if lastRow < 0 {
		return grid.Range{}, nil
	}
	return grid.At(0, 0, lastRow+1, lastCol+1), nil
}

// ReadGrid returns the values of r. Numbers come back as float64, booleans as
// bool, text as string and empty cells as nil. Formula cells yield their
// cached result.
func (s *Sheet) ReadGrid(r grid.Range) (grid.Grid, error) {
	rows, err := s.rawRows()
	if err != nil {
		return nil, err
	}
	g := make(grid.Grid, r.Rows)
	for i := range g {
		g[i] = make(grid.Row, r.Cols)
		ri := r.Row + i
		if ri >= len(rows) {
			continue
		}
		for j := range g[i] {
			cj := r.Col + j
			if cj >= len(rows[ri]) || rows[ri][cj] == "" {
				continue
			}
			v, err := s.typed(grid.CellName(ri, cj), rows[ri][cj])
			if err != nil {
				return nil, err
			}
			g[i][j] = v
		}
	}
	return g, nil
}

// typed converts a raw cell value using the cell's stored type.
func (s *Sheet) typed(cell, raw string) (grid.Cell, error) {
	t, err := s.wb.file.GetCellType(s.name, cell)
	if err != nil {
		return nil, fmt.Errorf("cell type of %s!%s: %w", s.name, cell, err)
	}
	switch t {
	case excelize.CellTypeBool:
		return raw == "1" || strings.EqualFold(raw, "true"), nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return raw, nil
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n, nil
	}
	return raw, nil
}

// WriteGrid writes g with its top-left cell at (r.Row, r.Col).
func (s *Sheet) WriteGrid(r grid.Range, g grid.Grid) error {
	if err := host.CheckShape(r, g); err != nil {
		return err
	}
	for i, row := range g {
		for j, v := range row {
			cell := grid.CellName(r.Row+i, r.Col+j)
			if err := s.wb.file.SetCellValue(s.name, cell, v); err != nil {
				return fmt.Errorf("write %s!%s: %w", s.name, cell, err)
			}
		}
	}
	if len(g) > 0 {
		s.wb.dirty = true
	}
	return nil
}

// SetFormat applies f to every cell of r. Only the fields set in f change;
// the rest of each cell's style is kept.
func (s *Sheet) SetFormat(r grid.Range, f host.Format) error {
	if r.Empty() {
		return nil
	}
	if f.HasStyle() {
		for row := r.Row; row < r.Row+r.Rows; row++ {
			for col := r.Col; col < r.Col+r.Cols; col++ {
				if err := s.restyle(grid.CellName(row, col), f); err != nil {
					return err
				}
			}
		}
	}
	if f.RowHeight > 0 {
		for row := r.Row; row < r.Row+r.Rows; row++ {
			if err := s.wb.file.SetRowHeight(s.name, row+1, f.RowHeight); err != nil {
				return fmt.Errorf("row height of %s row %d: %w", s.name, row+1, err)
			}
		}
	}
	s.wb.dirty = true
	return nil
}

// restyle lays f over the current style of cell.
func (s *Sheet) restyle(cell string, f host.Format) error {
	base, err := s.wb.file.GetCellStyle(s.name, cell)
	if err != nil {
		return fmt.Errorf("style of %s!%s: %w", s.name, cell, err)
	}
	id, err := s.wb.style(base, f)
	if err != nil {
		return fmt.Errorf("style for %s!%s: %w", s.name, cell, err)
	}
	if id == base {
		return nil
	}
	if err := s.wb.file.SetCellStyle(s.name, cell, cell, id); err != nil {
		return fmt.Errorf("format %s!%s: %w", s.name, cell, err)
	}
	return nil
}

// FreezeRows keeps the top n rows visible while scrolling. Zero unfreezes.
func (s *Sheet) FreezeRows(n int) error {
	panes := &excelize.Panes{}
	if n > 0 {
		panes = &excelize.Panes{
			Freeze:      true,
			YSplit:      n,
			TopLeftCell: grid.CellName(n, 0),
			ActivePane:  "bottomLeft",
		}
	}
	if err := s.wb.file.SetPanes(s.name, panes); err != nil {
		return fmt.Errorf("freeze %d rows of %q: %w", n, s.name, err)
	}
	s.wb.dirty = true
	return nil
}

// AutofitColumns sizes each used column to its longest rendered value.
func (s *Sheet) AutofitColumns() error {
	rows, err := s.wb.file.GetRows(s.name)
	if err != nil {
		return fmt.Errorf("read rows of %q: %w", s.name, err)
	}
	var widths []int
	for _, row := range rows {
		for j, v := range row {
			if j >= len(widths) {
				widths = append(widths, make([]int, j-len(widths)+1)...)
			}
			widths[j] = max(widths[j], utf8.RuneCountInString(v))
		}
	}
	for j, n := range widths {
		if n == 0 {
			continue
		}
		col := grid.ColumnName(j)
		w := min(max(float64(n)*1.1+2, minColWidth), maxColWidth)
		if err := s.wb.file.SetColWidth(s.name, col, col, w); err != nil {
			return fmt.Errorf("width of %s!%s: %w", s.name, col, err)
		}
	}
	s.wb.dirty = true
	return nil
}

var (
	_ host.Workbook = (*Workbook)(nil)
	_ host.Sheet    = (*Sheet)(nil)
)
