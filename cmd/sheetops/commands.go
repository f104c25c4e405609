package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sheetops"
	"sheetops/dates"
	"sheetops/grid"
	"sheetops/highlight"
	"sheetops/reconcile"
	"sheetops/regions"
	"sheetops/report"
	"sheetops/summary"
	"sheetops/timesheet"
)

func newRegionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "Fill the Schedule region column from the postcode reference columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.cfg.RegionsOptions()
			if err != nil {
				return err
			}
			return a.withWorkbook(cmd, func(ctx context.Context, wb *sheetops.Workbook, logger *zap.Logger) (*summary.Summary, error) {
				res, err := regions.Run(wb, opts, logger)
				if res == nil {
					return nil, err
				}
				return res.Summary(), err
			})
		},
	}
}

func newImportCycleCmd(a *app) *cobra.Command {
	var (
		week       int
		strictDays bool
	)
	cmd := &cobra.Command{
		Use:   "import-cycle",
		Short: "Merge a cycle sheet into the Schedule by ACN",
		Long: `Matches cycle sheet rows to Schedule rows by ACN, fills blank Schedule
fields, records team conflicts and appends unmatched clients.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("week") {
				a.cfg.Reconcile.Week = week
			}
			if cmd.Flags().Changed("strict-days") {
				a.cfg.Reconcile.StrictDays = strictDays
			}
			opts, err := a.cfg.ReconcileOptions()
			if err != nil {
				return err
			}
			return a.withWorkbook(cmd, func(ctx context.Context, wb *sheetops.Workbook, logger *zap.Logger) (*summary.Summary, error) {
				res, err := reconcile.Run(wb, opts, logger)
				if res == nil {
					return nil, err
				}
				return res.Summary(), err
			})
		},
	}
	cmd.Flags().IntVar(&week, "week", 0, "Cycle week of the source sheet (1-4)")
	cmd.Flags().BoolVar(&strictDays, "strict-days", false, "Leave Cycle blank when the day is not an exact weekday name")
	return cmd
}

func newWeekReportCmd(a *app) *cobra.Command {
	var week int
	cmd := &cobra.Command{
		Use:   "week-report",
		Short: "Rebuild the Cycle Week sheet grouped by day and team",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("week") {
				if week < 1 || week > reconcile.Weeks {
					return fmt.Errorf("invalid week %d (valid: 1-%d)", week, reconcile.Weeks)
				}
				a.cfg.Report.Week = week
				a.cfg.Report.TargetSheet = ""
			}
			opts := a.cfg.ReportOptions()
			return a.withWorkbook(cmd, func(ctx context.Context, wb *sheetops.Workbook, logger *zap.Logger) (*summary.Summary, error) {
				rep, err := report.Run(wb, opts, logger)
				if rep == nil {
					return nil, err
				}
				return rep.Summary(opts.TargetSheet), err
			})
		},
	}
	cmd.Flags().IntVar(&week, "week", 1, "Cycle week to report (1-4)")
	return cmd
}

func newStripDatesCmd(a *app) *cobra.Command {
	var sheet, rng string
	cmd := &cobra.Command{
		Use:   "strip-dates",
		Short: "Rewrite date-like cells as DD/MM/YYYY text",
		Long: `Rewrites every date-like cell as DD/MM/YYYY text in all worksheets, in one
worksheet (--sheet) or in one range of it (--sheet with --range).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rng != "" && sheet == "" {
				return errors.New("--range needs --sheet")
			}
			return a.withWorkbook(cmd, func(ctx context.Context, wb *sheetops.Workbook, logger *zap.Logger) (*summary.Summary, error) {
				if sheet == "" {
					res, err := dates.Homogenize(wb, logger)
					return res.Summary(), err
				}
				s, err := wb.Sheet(sheet)
				if err != nil {
					return nil, err
				}
				var count dates.SheetCount
				if rng == "" {
					count, err = dates.HomogenizeSheet(s, logger)
				} else {
					r, perr := grid.ParseRange(rng)
					if perr != nil {
						return nil, perr
					}
					count, err = dates.HomogenizeRange(s, r, logger)
				}
				res := &dates.HomogenizeResult{Sheets: []dates.SheetCount{count}, Total: count.Converted}
				return res.Summary(), err
			})
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Only this worksheet")
	cmd.Flags().StringVar(&rng, "range", "", "Only this range of --sheet, e.g. A1:D20")
	return cmd
}

func newTimesheetsCmd(a *app) *cobra.Command {
	var month, year int
	cmd := &cobra.Command{
		Use:   "timesheets",
		Short: "Append timesheet items from the API to the sessions sheet",
		Long: `Pages through the timesheet API and appends one row per timesheet item.

The window is --month/--year when given, else the configured date range,
else the current month.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc, err := a.timesheetConfig(month, year)
			if err != nil {
				return err
			}
			return a.withWorkbook(cmd, func(ctx context.Context, wb *sheetops.Workbook, logger *zap.Logger) (*summary.Summary, error) {
				progress := func(page, added int) {
					logger.Debug("import progress", zap.Int("page", page), zap.Int("added", added))
				}
				im := timesheet.NewImporter(timesheet.NewClient(tc), tc,
					timesheet.WithLogger(logger),
					timesheet.WithProgress(progress),
				)
				stats, err := im.Run(ctx, wb)
				return stats.Summary(), err
			})
		},
	}
	cmd.Flags().IntVar(&month, "month", 0, "Calendar month to import (1-12)")
	cmd.Flags().IntVar(&year, "year", 0, "Year of --month (default: this year)")
	return cmd
}

func (a *app) timesheetConfig(month, year int) (timesheet.Config, error) {
	if month < 0 || month > 12 {
		return timesheet.Config{}, fmt.Errorf("invalid month %d", month)
	}
	now := time.Now()
	if year == 0 {
		year = now.Year()
	}
	t := a.cfg.Timesheet
	if month == 0 && t.DateRangeStart == "" && t.DateRangeEnd == "" {
		month = int(now.Month())
	}
	if month == 0 {
		year = 0
	}
	return a.cfg.TimesheetConfig(year, time.Month(month))
}

func newHighlightCmd(a *app) *cobra.Command {
	var (
		sheet     string
		threshold float64
		color     string
	)
	cmd := &cobra.Command{
		Use:   "highlight",
		Short: "Fill numeric cells above a threshold",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Highlight.Threshold
			}
			if !cmd.Flags().Changed("color") {
				color = a.cfg.Highlight.Color
			}
			return a.withWorkbook(cmd, func(ctx context.Context, wb *sheetops.Workbook, logger *zap.Logger) (*summary.Summary, error) {
				s, err := wb.Sheet(sheet)
				if err != nil {
					return nil, err
				}
				res, err := highlight.Run(s, threshold, color, logger)
				if res == nil {
					return nil, err
				}
				return res.Summary(), err
			})
		},
	}
	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet to scan")
	cmd.Flags().Float64Var(&threshold, "threshold", highlight.DefaultThreshold, "Highlight values greater than this")
	cmd.Flags().StringVar(&color, "color", highlight.DefaultColor, "Fill color name or #RRGGBB")
	_ = cmd.MarkFlagRequired("sheet")
	return cmd
}

func newInspectCmd(a *app) *cobra.Command {
	var details bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe the workbook's sheets, headers and report sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withWorkbook(cmd, func(ctx context.Context, wb *sheetops.Workbook, logger *zap.Logger) (*summary.Summary, error) {
				var (
					out string
					err error
				)
				if strings.EqualFold(a.format, "toon") {
					out, err = wb.InspectTOON(details)
				} else {
					out, err = wb.InspectMarkdown(details)
				}
				if err != nil {
					return nil, err
				}
				fmt.Fprint(cmd.OutOrStdout(), out)
				return nil, nil
			}, sheetops.WithProgressCallback(func(p sheetops.ProgressInfo) {
				a.logger.Debug("inspect progress",
					zap.String("phase", p.Phase),
					zap.String("sheet", p.Sheet),
					zap.Int("current", p.Current),
					zap.Int("total", p.Total),
					zap.Float64("percent", p.Percent),
				)
			}))
		},
	}
	cmd.Flags().BoolVar(&details, "details", false, "Include headers, column samples and sections")
	return cmd
}
