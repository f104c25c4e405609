package report

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sheetops/grid"
	"sheetops/host"
	"sheetops/summary"
)

// Banner and header formats of the rendered sheet.
var (
	HeaderFormat     = host.Format{Bold: true, HorizontalAlignment: "center", RowHeight: 25}
	DayBannerFormat  = host.Format{FillColor: "#4A4A4A", FontColor: "#FFFFFF", Bold: true}
	TeamBannerFormat = host.Format{FillColor: "#CCCCCC", Bold: true}
)

// Render writes r to s from A1, styles the header and banner rows, autofits
// the columns and freezes the header row.
func Render(s host.Sheet, r *Report) error {
	g := r.Grid()
	width := len(r.Headers)
	if width == 0 {
		return nil
	}
	if err := s.WriteGrid(grid.At(0, 0, len(g), width), g); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := s.SetFormat(grid.At(0, 0, 1, width), HeaderFormat); err != nil {
		return fmt.Errorf("format header: %w", err)
	}
	for i, row := range r.Rows {
		var f host.Format
		switch row.Kind {
		case KindDayBanner:
			f = DayBannerFormat
		case KindTeamBanner:
			f = TeamBannerFormat
		default:
			continue
		}
		// Row 0 of the sheet is the header.
		if err := s.SetFormat(grid.At(i+1, 0, 1, width), f); err != nil {
			return fmt.Errorf("format banner %q: %w", row.Label, err)
		}
	}
	if err := s.AutofitColumns(); err != nil {
		return fmt.Errorf("autofit: %w", err)
	}
	if err := s.FreezeRows(1); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	return nil
}

// Summary renders the report size for operators.
func (r *Report) Summary(sheet string) *summary.Summary {
	days, teams, data := r.Counts()
	return summary.New("Week report complete").
		Add("Sheet", sheet).
		Add("Days", days).
		Add("Teams", teams).
		Add("Client rows", data)
}

// Run builds the report from the source sheet and recreates the target sheet
// with it. The existing target is only replaced once the report is built.
func Run(wb host.Workbook, opts Options, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	src, err := wb.Sheet(opts.SourceSheet)
	if err != nil {
		return nil, err
	}
	g, err := host.ReadUsed(src)
	if err != nil {
		return nil, err
	}
	t, err := grid.NewTable(g, opts.HeaderRow)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", opts.SourceSheet, err)
	}
	rep, err := Build(t, opts)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", opts.SourceSheet, err)
	}

	if err := wb.DeleteSheet(opts.TargetSheet); err != nil && !errors.Is(err, host.ErrSheetNotFound) {
		return rep, fmt.Errorf("delete %q: %w", opts.TargetSheet, err)
	}
	dst, err := wb.AddSheet(opts.TargetSheet)
	if err != nil {
		return rep, fmt.Errorf("add %q: %w", opts.TargetSheet, err)
	}
	if err := Render(dst, rep); err != nil {
		return rep, fmt.Errorf("sheet %q: %w", opts.TargetSheet, err)
	}
	days, teams, data := rep.Counts()
	logger.Info("week report written",
		zap.String("sheet", opts.TargetSheet),
		zap.Int("days", days),
		zap.Int("teams", teams),
		zap.Int("rows", data),
	)
	return rep, nil
}
