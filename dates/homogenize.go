package dates

import (
	"fmt"

	"go.uber.org/zap"

	"sheetops/grid"
	"sheetops/host"
	"sheetops/summary"
)

// progressEvery is the row interval between progress log entries.
const progressEvery = 200

// SheetCount is the number of converted cells in one worksheet.
type SheetCount struct {
	Sheet     string
	Scanned   int
	Converted int
}

// HomogenizeResult reports a workbook-wide date homogenization.
type HomogenizeResult struct {
	Sheets []SheetCount
	Total  int
}

// Summary renders the result for operators.
func (r *HomogenizeResult) Summary() *summary.Summary {
	lines := make([]string, 0, len(r.Sheets))
	for _, s := range r.Sheets {
		lines = append(lines, fmt.Sprintf("%s: %d cells", s.Sheet, s.Converted))
	}
	return summary.New("Date homogenization complete").
		Add("Worksheets processed", len(r.Sheets)).
		Add("Total cells processed", r.Total).
		AddSection("Final results", lines)
}

// Homogenize rewrites every date-like cell of every worksheet as DD/MM/YYYY text.
func Homogenize(wb host.Workbook, logger *zap.Logger) (*HomogenizeResult, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	names := wb.SheetNames()
	res := &HomogenizeResult{}
	for i, name := range names {
		logger.Info("processing worksheet", zap.String("sheet", name), zap.Int("index", i+1), zap.Int("of", len(names)))
		s, err := wb.Sheet(name)
		if err != nil {
			return res, err
		}
		count, err := HomogenizeSheet(s, logger)
		res.Sheets = append(res.Sheets, count)
		res.Total += count.Converted
		if err != nil {
			return res, err
		}
		logger.Info("completed worksheet", zap.String("sheet", name), zap.Int("converted", count.Converted))
	}
	return res, nil
}

// HomogenizeSheet converts the used range of s.
func HomogenizeSheet(s host.Sheet, logger *zap.Logger) (SheetCount, error) {
	r, err := s.UsedRange()
	if err != nil {
		return SheetCount{Sheet: s.Name()}, fmt.Errorf("used range of %q: %w", s.Name(), err)
	}
	return HomogenizeRange(s, r, logger)
}

// HomogenizeRange converts the date-like cells inside r.
func HomogenizeRange(s host.Sheet, r grid.Range, logger *zap.Logger) (SheetCount, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	count := SheetCount{Sheet: s.Name()}
	if r.Empty() {
		return count, nil
	}
	values, err := s.ReadGrid(r)
	if err != nil {
		return count, fmt.Errorf("read %q %s: %w", s.Name(), r.A1(), err)
	}
	logger.Debug("scanning range",
		zap.String("sheet", s.Name()),
		zap.Int("rows", r.Rows),
		zap.Int("columns", r.Cols),
		zap.Int("cells", r.Rows*r.Cols),
	)

	type update struct {
		row, col int
		value    string
	}
	var updates []update
	for i, row := range values {
		for j, v := range row {
			count.Scanned++
			if grid.Falsy(v) || !IsDate(v) {
				continue
			}
			if text, ok := Normalize(v, false); ok {
				updates = append(updates, update{row: r.Row + i, col: r.Col + j, value: text})
			}
		}
		if (i+1)%progressEvery == 0 {
			logger.Info("scan progress",
				zap.String("sheet", s.Name()),
				zap.Int("rows_done", i+1),
				zap.Int("rows_total", len(values)),
				zap.Int("date_cells", len(updates)),
			)
		}
	}

	for _, u := range updates {
		cell := grid.CellAt(u.row, u.col)
		if err := s.SetFormat(cell, host.Format{NumberFormat: host.TextFormat}); err != nil {
			return count, fmt.Errorf("format %s: %w", cell.A1(), err)
		}
		if err := s.WriteGrid(cell, grid.Grid{{u.value}}); err != nil {
			return count, fmt.Errorf("write %s: %w", cell.A1(), err)
		}
		count.Converted++
	}
	return count, nil
}
