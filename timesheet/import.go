package timesheet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sheetops/dates"
	"sheetops/grid"
	"sheetops/host"
	"sheetops/summary"
)

// Headers are the columns of the sessions sheet.
var Headers = []string{
	"Staff ID", "Timesheet Date", "Client IDs", "Status", "Payable ID", "Payable Type",
	"Payable Name", "Payable Unit", "Start Time", "Finish Time", "Break Minutes", "Amount",
}

// Fetcher retrieves one page of timesheets.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) (*Page, error)
}

// Stats counts the work of one import.
type Stats struct {
	Range      string
	Pages      int
	Timesheets int
	Items      int
	Added      int
	Errors     int
	// LastError is the failure that stopped pagination, if any.
	LastError string
}

// Summary renders the statistics for operators.
func (s *Stats) Summary() *summary.Summary {
	sum := summary.New("Final processing statistics").
		Add("Date range", s.Range).
		Add("Pages processed", s.Pages).
		Add("Total timesheets reviewed", s.Timesheets).
		Add("Total timesheet items processed", s.Items).
		Add("Items added to worksheet", s.Added).
		Add("Errors encountered", s.Errors)
	if s.LastError != "" {
		sum.AddSection("Errors", []string{s.LastError})
	}
	return sum
}

// Importer appends timesheet items to the sessions sheet.
type Importer struct {
	fetcher  Fetcher
	cfg      Config
	logger   *zap.Logger
	progress func(page, added int)
}

// Option configures an Importer.
type Option func(*Importer)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

// WithProgress sets a callback invoked after every page.
func WithProgress(fn func(page, added int)) Option {
	return func(im *Importer) {
		im.progress = fn
	}
}

// NewImporter returns an importer reading pages from f.
func NewImporter(f Fetcher, cfg Config, opts ...Option) *Importer {
	im := &Importer{fetcher: f, cfg: cfg.WithDefaults(), logger: zap.NewNop()}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Run fetches pages from 1 until a page is empty, the metadata marks the
// last page, a fetch fails or MaxPages pages were read. Each page is written
// before the next is fetched, so a failure keeps the rows of earlier pages.
// Fetch failures are counted in Stats and do not make Run fail.
func (im *Importer) Run(ctx context.Context, wb host.Workbook) (*Stats, error) {
	stats := &Stats{
		Range: fmt.Sprintf("%s to %s", im.cfg.From.UTC().Format(time.RFC3339), im.cfg.To.UTC().Format(time.RFC3339)),
	}
	im.logger.Info("starting timesheet sync", zap.String("range", stats.Range))

	s, err := wb.Sheet(im.cfg.Sheet)
	if err != nil {
		return stats, err
	}
	next, err := im.prepare(s)
	if err != nil {
		return stats, err
	}

	for page := 1; page <= im.cfg.MaxPages; page++ {
		p, err := im.fetcher.FetchPage(ctx, page)
		if err != nil {
			stats.Errors++
			stats.LastError = err.Error()
			im.logger.Error("fetch failed", zap.Int("page", page), zap.Error(err))
			break
		}
		stats.Pages++
		stats.Timesheets += len(p.Timesheets)

		rows := im.flatten(p.Timesheets)
		stats.Items += len(rows)
		if len(rows) > 0 {
			r := grid.At(next, 0, len(rows), len(Headers))
			if err := s.WriteGrid(r, rows); err != nil {
				return stats, fmt.Errorf("write %s: %w", r.A1(), err)
			}
			next += len(rows)
			stats.Added += len(rows)
		}
		im.logger.Info("page processed",
			zap.Int("page", page),
			zap.Int("timesheets", len(p.Timesheets)),
			zap.Int("rows", len(rows)),
		)
		if im.progress != nil {
			im.progress(page, stats.Added)
		}

		if len(p.Timesheets) == 0 {
			im.logger.Info("no more timesheets")
			break
		}
		if p.Last() {
			break
		}
		if page == im.cfg.MaxPages {
			im.logger.Warn("page limit reached", zap.Int("max_pages", im.cfg.MaxPages))
		}
	}

	im.logger.Info("timesheet sync finished",
		zap.Int("pages", stats.Pages),
		zap.Int("added", stats.Added),
		zap.Int("errors", stats.Errors),
	)
	return stats, nil
}

// prepare writes the header row to an empty sheet and returns the first free
// row.
func (im *Importer) prepare(s host.Sheet) (int, error) {
	used, err := s.UsedRange()
	if err != nil {
		return 0, fmt.Errorf("used range of %q: %w", s.Name(), err)
	}
	if !used.Empty() {
		im.logger.Info("appending after existing data", zap.Int("row", used.Rows+1))
		return used.Rows, nil
	}
	header := make(grid.Row, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	r := grid.At(0, 0, 1, len(Headers))
	if err := s.WriteGrid(r, grid.Grid{header}); err != nil {
		return 0, fmt.Errorf("write headers: %w", err)
	}
	if err := s.SetFormat(r, host.Format{Bold: true}); err != nil {
		return 0, fmt.Errorf("format headers: %w", err)
	}
	return 1, nil
}

func (im *Importer) flatten(sheets []Timesheet) grid.Grid {
	var rows grid.Grid
	for _, ts := range sheets {
		clients := strings.Join(ts.ClientIDs, ", ")
		date := im.format(ts.Date, false)
		for _, it := range ts.Items {
			rows = append(rows, grid.Row{
				ts.StaffID,
				date,
				clients,
				ts.Status,
				it.PayableID,
				it.PayableType,
				it.PayableName,
				it.PayableUnit,
				im.format(it.StartAt, true),
				im.format(it.FinishAt, true),
				it.BreakMinutes,
				it.Amount,
			})
		}
	}
	return rows
}

// format renders an API timestamp in the configured zone. Values that do not
// parse are kept as received.
func (im *Importer) format(s string, withTime bool) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	out, ok := dates.NormalizeIn(s, withTime, im.cfg.Location)
	if !ok {
		im.logger.Warn("invalid timestamp", zap.String("value", s))
		return s
	}
	return out
}
