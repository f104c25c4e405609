package reconcile

import (
	"fmt"

	"go.uber.org/zap"

	"sheetops/grid"
	"sheetops/host"
	"sheetops/summary"
)

// Summary renders the merge statistics for operators.
func (r *Result) Summary() *summary.Summary {
	malformed := make([]string, len(r.Malformed))
	for i, m := range r.Malformed {
		malformed[i] = m.String()
	}
	days := make([]string, len(r.DayIssues))
	for i, d := range r.DayIssues {
		days[i] = d.String()
	}
	return summary.New("Processing complete").
		Add("Source records processed", r.SourceRecords).
		Add("Source records matched", r.SourceMatched).
		Add("Source records unmatched", r.SourceUnmatched).
		Add("Target records matched", r.TargetMatched).
		Add("Cells updated", r.CellsUpdated).
		Add("New records added", r.Added).
		Add("Team conflicts", len(r.Conflicts)).
		AddSection("Team conflicts found", r.Conflicts).
		AddSection("Malformed keys", malformed).
		AddSection("Day matches", days).
		AddSection("Missing source columns", r.MissingSource).
		AddSection("Missing target columns", r.MissingTarget)
}

// Run merges the source sheet into the target sheet and writes the result.
func Run(wb host.Workbook, opts Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	src, err := wb.Sheet(opts.SourceSheet)
	if err != nil {
		return nil, err
	}
	dst, err := wb.Sheet(opts.TargetSheet)
	if err != nil {
		return nil, err
	}
	source, err := readTable(src, opts.HeaderRow)
	if err != nil {
		return nil, err
	}
	target, err := readTable(dst, opts.HeaderRow)
	if err != nil {
		return nil, err
	}

	res, err := Merge(source, target, opts)
	if err != nil {
		return nil, err
	}
	if len(res.MissingSource) > 0 {
		logger.Warn("missing source columns", zap.String("sheet", opts.SourceSheet), zap.Strings("columns", res.MissingSource))
	}
	if len(res.MissingTarget) > 0 {
		logger.Warn("missing target columns", zap.String("sheet", opts.TargetSheet), zap.Strings("columns", res.MissingTarget))
	}
	for _, m := range res.Malformed {
		logger.Warn("malformed key", zap.Int("row", m.Row), zap.String("key", m.Key))
	}
	for _, d := range res.DayIssues {
		logger.Warn("inexact day", zap.String("key", d.Key), zap.String("day", d.Day), zap.String("cycle", d.Cycle))
	}

	if err := Apply(dst, res); err != nil {
		return res, err
	}

	logger.Info("reconciliation complete",
		zap.Int("source_records", res.SourceRecords),
		zap.Int("source_matched", res.SourceMatched),
		zap.Int("target_matched", res.TargetMatched),
		zap.Int("cells_updated", res.CellsUpdated),
		zap.Int("added", res.Added),
		zap.Int("team_conflicts", len(res.Conflicts)),
	)
	for _, c := range res.Conflicts {
		logger.Warn("team conflict", zap.String("detail", c))
	}
	return res, nil
}

// Apply writes the updates and appended rows of res to s. Cells written
// before a failure stay written.
func Apply(s host.Sheet, res *Result) error {
	for _, u := range res.Updates {
		cell := grid.CellAt(u.Row, u.Col)
		if err := s.WriteGrid(cell, grid.Grid{{u.Value}}); err != nil {
			return fmt.Errorf("write %s: %w", cell.A1(), err)
		}
	}
	if len(res.Appended) == 0 {
		return nil
	}
	r := grid.At(res.AppendAt, 0, len(res.Appended), res.Appended.Width())
	if err := s.WriteGrid(r, res.Appended); err != nil {
		return fmt.Errorf("append %s: %w", r.A1(), err)
	}
	return nil
}

func readTable(s host.Sheet, headerRow int) (*grid.Table, error) {
	g, err := host.ReadUsed(s)
	if err != nil {
		return nil, err
	}
	t, err := grid.NewTable(g, headerRow)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", s.Name(), err)
	}
	return t, nil
}
