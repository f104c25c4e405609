// Package sheetops binds the worksheet routines to .xlsx files through
// excelize and inspects workbooks for operators.
package sheetops

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"sheetops/host"
)

// Workbook is an .xlsx file opened for reading and editing. It implements
// host.Workbook.
type Workbook struct {
	path       string
	file       *excelize.File
	logger     *zap.Logger
	password   string
	progress   func(ProgressInfo)
	progressCh chan<- ProgressInfo

	maxRows    int
	maxSamples int

	styles map[styleKey]int
	dirty  bool
}

// styleKey identifies a Format laid over an existing style.
type styleKey struct {
	base   int
	format host.Format
}

// Option configures a Workbook.
type Option func(*Workbook)

// ProgressInfo reports inspection progress.
type ProgressInfo struct {
	Phase   string  `json:"phase"`
	Sheet   string  `json:"sheet,omitempty"`
	Current int     `json:"current"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(w *Workbook) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithPassword opens an encrypted workbook.
func WithPassword(p string) Option {
	return func(w *Workbook) {
		w.password = p
	}
}

// WithProgressCallback sets a callback invoked while inspecting.
func WithProgressCallback(fn func(ProgressInfo)) Option {
	return func(w *Workbook) {
		w.progress = fn
	}
}

// WithProgressChannel sends inspection progress to ch. Sends never block: an
// update is dropped when ch is full.
func WithProgressChannel(ch chan<- ProgressInfo) Option {
	return func(w *Workbook) {
		w.progressCh = ch
	}
}

// WithMaxRows caps the rows scanned per sheet by inspection.
func WithMaxRows(n int) Option {
	return func(w *Workbook) {
		if n > 0 {
			w.maxRows = n
		}
	}
}

// WithMaxSamples caps the sample values kept per column by inspection.
func WithMaxSamples(n int) Option {
	return func(w *Workbook) {
		if n > 0 {
			w.maxSamples = n
		}
	}
}

const (
	defaultMaxRows    = 1000
	defaultMaxSamples = 5
)

func newWorkbook(path string, opts []Option) *Workbook {
	w := &Workbook{
		path:       path,
		logger:     zap.NewNop(),
		maxRows:    defaultMaxRows,
		maxSamples: defaultMaxSamples,
		styles:     make(map[styleKey]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Open opens the workbook at path.
func Open(path string, opts ...Option) (*Workbook, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file not found: %w", err)
	}
	w := newWorkbook(path, opts)
	f, err := excelize.OpenFile(path, excelize.Options{Password: w.password})
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file: %w", err)
	}
	w.file = f
	w.logger.Debug("workbook opened", zap.String("path", path), zap.Strings("sheets", f.GetSheetList()))
	return w, nil
}

// New returns an empty workbook that will be saved to path. excelize seeds
// it with a single "Sheet1".
func New(path string, opts ...Option) *Workbook {
	w := newWorkbook(path, opts)
	w.file = excelize.NewFile()
	w.dirty = true
	return w
}

// Path is the file the workbook saves to.
func (w *Workbook) Path() string { return w.path }

// Dirty reports whether the workbook changed since it was opened or saved.
func (w *Workbook) Dirty() bool { return w.dirty }

// Save writes the workbook back to its path.
func (w *Workbook) Save() error {
	return w.SaveAs(w.path)
}

// SaveAs writes the workbook to path, which becomes its new path.
func (w *Workbook) SaveAs(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	w.path = path
	w.dirty = false
	w.logger.Debug("workbook saved", zap.String("path", path))
	return nil
}

// Close releases the file. Unsaved changes are lost.
func (w *Workbook) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// SheetNames lists every worksheet in tab order.
func (w *Workbook) SheetNames() []string {
	return w.file.GetSheetList()
}

func (w *Workbook) resolve(name string) (string, bool) {
	for _, s := range w.file.GetSheetList() {
		if strings.EqualFold(s, name) {
			return s, true
		}
	}
	return "", false
}

// Sheet returns the worksheet called name, compared case-insensitively.
func (w *Workbook) Sheet(name string) (host.Sheet, error) {
	actual, ok := w.resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", host.ErrSheetNotFound, name)
	}
	return &Sheet{wb: w, name: actual}, nil
}

// AddSheet appends a worksheet. An existing sheet of that name is returned
// as is.
func (w *Workbook) AddSheet(name string) (host.Sheet, error) {
	if actual, ok := w.resolve(name); ok {
		return &Sheet{wb: w, name: actual}, nil
	}
	if _, err := w.file.NewSheet(name); err != nil {
		return nil, fmt.Errorf("add sheet %q: %w", name, err)
	}
	w.dirty = true
	return &Sheet{wb: w, name: name}, nil
}

// DeleteSheet removes a worksheet. The last remaining sheet of a workbook
// cannot be removed.
func (w *Workbook) DeleteSheet(name string) error {
	actual, ok := w.resolve(name)
	if !ok {
		return fmt.Errorf("%w: %q", host.ErrSheetNotFound, name)
	}
	if len(w.file.GetSheetList()) == 1 {
		return fmt.Errorf("%w: %q", host.ErrLastSheet, actual)
	}
	if err := w.file.DeleteSheet(actual); err != nil {
		return fmt.Errorf("delete sheet %q: %w", actual, err)
	}
	w.dirty = true
	return nil
}

// CellStyle returns the style id of a cell; zero is the default style.
func (w *Workbook) CellStyle(sheet, cell string) (int, error) {
	return w.file.GetCellStyle(sheet, cell)
}

// style returns the id of the style base with the fields set in f laid over
// it, creating it on first use. Fields f leaves zero keep their base value.
func (w *Workbook) style(base int, f host.Format) (int, error) {
	f.RowHeight = 0
	key := styleKey{base: base, format: f}
	if id, ok := w.styles[key]; ok {
		return id, nil
	}
	s, err := w.file.GetStyle(base)
	if err != nil {
		return 0, err
	}
	overlay(s, f)
	id, err := w.file.NewStyle(s)
	if err != nil {
		return 0, err
	}
	w.styles[key] = id
	// f is already part of id.
	w.styles[styleKey{base: id, format: f}] = id
	return id, nil
}

func overlay(s *excelize.Style, f host.Format) {
	if f.FillColor != "" {
		s.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{f.FillColor}}
	}
	if f.Bold || f.FontColor != "" {
		if s.Font == nil {
			s.Font = &excelize.Font{}
		}
		if f.Bold {
			s.Font.Bold = true
		}
		if f.FontColor != "" {
			s.Font.Color = f.FontColor
			s.Font.ColorTheme = nil
			s.Font.ColorIndexed = 0
			s.Font.ColorTint = 0
		}
	}
	if f.HorizontalAlignment != "" {
		if s.Alignment == nil {
			s.Alignment = &excelize.Alignment{}
		}
		s.Alignment.Horizontal = f.HorizontalAlignment
	}
	switch f.NumberFormat {
	case "":
	case host.TextFormat:
		s.NumFmt = 49
		s.CustomNumFmt = nil
		s.DecimalPlaces = nil
	default:
		nf := f.NumberFormat
		s.NumFmt = 0
		s.CustomNumFmt = &nf
		s.DecimalPlaces = nil
	}
}

func (w *Workbook) emitProgress(phase, sheet string, current, total int) {
	if w.progress == nil && w.progressCh == nil {
		return
	}
	pct := 0.0
	if total > 0 {
		pct = min(max(float64(current)/float64(total)*100, 0), 100)
	}
	info := ProgressInfo{Phase: phase, Sheet: sheet, Current: current, Total: total, Percent: pct}
	if w.progress != nil {
		w.progress(info)
	}
	if w.progressCh != nil {
		select {
		case w.progressCh <- info:
		default:
		}
	}
}
