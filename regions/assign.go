package regions

import (
	"fmt"

	"go.uber.org/zap"

	"sheetops/grid"
	"sheetops/host"
	"sheetops/summary"
)

// Options names the sheets and layout used by Run.
type Options struct {
	ReferenceSheet     string
	ReferenceHeaderRow int
	ScheduleSheet      string
	ScheduleHeaderRow  int
	Columns            []Column
}

// DefaultOptions returns the layout of the operations workbook.
func DefaultOptions() Options {
	return Options{
		ReferenceSheet:     "Values&Scripts",
		ReferenceHeaderRow: 0,
		ScheduleSheet:      "Schedule",
		ScheduleHeaderRow:  grid.DefaultHeaderRow,
		Columns:            DefaultColumns,
	}
}

// Assignment is the region column computed for a schedule table.
type Assignment struct {
	PostcodeCol int
	RegionCol   int
	// Values holds one single-cell row per data row of the table.
	Values    grid.Grid
	Matched   int
	NoMatch   int
	Unmatched []string
}

// Assign computes the region of every data row in schedule. The postcode and
// region columns are found by header name, ignoring case.
func Assign(schedule *grid.Table, l *Lookup) (*Assignment, error) {
	a := &Assignment{
		PostcodeCol: schedule.IndexFold("postcode", "post code"),
		RegionCol:   schedule.IndexFold("region", "regions"),
	}
	if a.PostcodeCol < 0 {
		return nil, fmt.Errorf("%w: postcode", grid.ErrColumnNotFound)
	}
	if a.RegionCol < 0 {
		return nil, fmt.Errorf("%w: region", grid.ErrColumnNotFound)
	}
	for row := schedule.FirstDataRow(); row < len(schedule.Rows); row++ {
		postcode := grid.Field(schedule.Value(row, a.PostcodeCol))
		joined, ok := l.Joined(postcode)
		if ok {
			a.Matched++
		} else {
			a.NoMatch++
			if postcode != "" {
				a.Unmatched = append(a.Unmatched, postcode)
			}
		}
		a.Values = append(a.Values, grid.Row{joined})
	}
	return a, nil
}

// Result reports one Run.
type Result struct {
	Postcodes  int
	Assignment *Assignment
}

// Summary renders the result for operators.
func (r *Result) Summary() *summary.Summary {
	s := summary.New("Postcode region lookup complete").
		Add("Unique postcodes", r.Postcodes)
	if r.Assignment != nil {
		s.Add("Rows matched", r.Assignment.Matched).
			Add("Rows without a match", r.Assignment.NoMatch).
			AddSection("No region match", r.Assignment.Unmatched)
	}
	return s
}

// Run builds the lookup from the reference sheet and fills the region column
// of the schedule sheet.
func Run(wb host.Workbook, opts Options, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("starting postcode region lookup")

	ref, err := wb.Sheet(opts.ReferenceSheet)
	if err != nil {
		return nil, err
	}
	sched, err := wb.Sheet(opts.ScheduleSheet)
	if err != nil {
		return nil, err
	}

	refGrid, err := host.ReadUsed(ref)
	if err != nil {
		return nil, err
	}
	lookup := Build(refGrid, opts.ReferenceHeaderRow, opts.Columns)
	logger.Info("built postcode lookup", zap.Int("postcodes", lookup.Len()))
	res := &Result{Postcodes: lookup.Len()}

	schedGrid, err := host.ReadUsed(sched)
	if err != nil {
		return res, err
	}
	table, err := grid.NewTable(schedGrid, opts.ScheduleHeaderRow)
	if err != nil {
		return res, fmt.Errorf("sheet %q: %w", opts.ScheduleSheet, err)
	}
	a, err := Assign(table, lookup)
	if err != nil {
		return res, fmt.Errorf("sheet %q: %w", opts.ScheduleSheet, err)
	}
	res.Assignment = a
	logger.Info("located columns",
		zap.String("postcode", grid.ColumnName(a.PostcodeCol)),
		zap.String("region", grid.ColumnName(a.RegionCol)),
	)
	for _, p := range a.Unmatched {
		logger.Info("no region match", zap.String("postcode", p))
	}

	if len(a.Values) > 0 {
		r := grid.At(table.FirstDataRow(), a.RegionCol, len(a.Values), 1)
		if err := sched.WriteGrid(r, a.Values); err != nil {
			return res, fmt.Errorf("write regions %s: %w", r.A1(), err)
		}
	}
	logger.Info("postcode region lookup complete",
		zap.Int("matched", a.Matched),
		zap.Int("no_match", a.NoMatch),
	)
	return res, nil
}
