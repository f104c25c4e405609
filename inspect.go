package sheetops

import (
	"fmt"
	"strings"

	toon "github.com/mateuszkardas/toon-go"
	"github.com/thedatashed/xlsxreader"
	"go.uber.org/zap"

	"sheetops/dates"
	"sheetops/grid"
	"sheetops/reconcile"
	"sheetops/report"
	"sheetops/summary"
	"sheetops/timesheet"
)

type SheetInfo struct {
	Name        string `json:"name"`
	RowCount    int    `json:"row_count"`
	ColumnCount int    `json:"column_count"`
}

type ColumnInfo struct {
	Name          string   `json:"name"`
	StartPosition string   `json:"start_position"`
	SampleValues  []string `json:"sample_values"`
	DataType      string   `json:"data_type"`
}

// Section is a block of data rows under a report banner.
type Section struct {
	Title    string `json:"title"`
	StartRow int    `json:"start_row"`
	EndRow   int    `json:"end_row"`
	RowCount int    `json:"row_count"`
}

type SheetDetail struct {
	Name        string       `json:"name"`
	RowCount    int          `json:"row_count"`
	ColumnCount int          `json:"column_count"`
	HeaderRow   int          `json:"header_row"`
	Headers     []string     `json:"headers"`
	Columns     []ColumnInfo `json:"columns"`
	Sections    []Section    `json:"sections,omitempty"`
}

type FileInfo struct {
	Sheets       []SheetInfo   `json:"sheets"`
	SheetDetails []SheetDetail `json:"sheet_details,omitempty"`
}

// headerVocabulary holds the upper-cased column names the routines read and
// write. Two hits mark a header row.
var headerVocabulary = func() map[string]bool {
	v := make(map[string]bool)
	add := func(names ...string) {
		for _, n := range names {
			if n = strings.ToUpper(strings.TrimSpace(n)); n != "" {
				v[n] = true
			}
		}
	}
	add(report.DefaultHeaders...)
	add(timesheet.Headers...)
	sc, tc := reconcile.DefaultSourceColumns(), reconcile.DefaultTargetColumns()
	add(sc.Key, sc.Day, sc.Crew, sc.Name, sc.Suburb, sc.Postcode, sc.Phone, sc.Payment, sc.Order, sc.Address, sc.Notes, sc.Complaints)
	add(tc.Key, tc.FirstName, tc.LastName, tc.Address, tc.Suburb, tc.Postcode, tc.Contact, tc.Team, tc.Order, tc.Cycle, tc.Fee, tc.Notes, tc.Complaints)
	add("Postcode", "Region", "Regions")
	return v
}()

// scannedRow is one worksheet row with its values laid out by column.
type scannedRow struct {
	num    int
	values []string
	types  []xlsxreader.CellType
}

func (r scannedRow) empty() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

type sheetScan struct {
	rows     []scannedRow
	rowCount int
	colCount int
}

// Inspect lists the visible sheets with their used row and column counts.
func (w *Workbook) Inspect() (*FileInfo, error) {
	return w.inspect(false)
}

// InspectWithDetails adds the header row, column samples and report
// sections of every visible sheet.
func (w *Workbook) InspectWithDetails() (*FileInfo, error) {
	return w.inspect(true)
}

// InspectMarkdown renders Inspect or InspectWithDetails as Markdown.
func (w *Workbook) InspectMarkdown(detailed bool) (string, error) {
	info, err := w.inspect(detailed)
	if err != nil {
		return "", err
	}
	return info.Markdown(), nil
}

// InspectTOON renders Inspect or InspectWithDetails as TOON.
func (w *Workbook) InspectTOON(detailed bool) (string, error) {
	info, err := w.inspect(detailed)
	if err != nil {
		return "", err
	}
	return info.TOON()
}

func (w *Workbook) inspect(detailed bool) (*FileInfo, error) {
	// Inspection reads the in-memory state, including unsaved edits.
	buf, err := w.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	xl, err := xlsxreader.NewReader(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to read workbook: %w", err)
	}

	visible := w.visibleSheets()
	info := &FileInfo{Sheets: make([]SheetInfo, 0, len(visible))}
	phase := "inspect_sheets"
	if detailed {
		phase = "inspect_details"
	}
	w.emitProgress(phase, "", 0, len(visible))
	for idx, name := range visible {
		scan, err := w.scanSheet(xl, name)
		if err != nil {
			return nil, err
		}
		info.Sheets = append(info.Sheets, SheetInfo{Name: name, RowCount: scan.rowCount, ColumnCount: scan.colCount})
		if detailed {
			info.SheetDetails = append(info.SheetDetails, w.detail(name, scan))
		}
		w.emitProgress(phase, name, idx+1, len(visible))
	}
	return info, nil
}

func (w *Workbook) visibleSheets() []string {
	sheets := w.file.GetSheetList()
	out := make([]string, 0, len(sheets))
	for _, name := range sheets {
		visible, err := w.file.GetSheetVisible(name)
		if err != nil || !visible {
			continue
		}
		out = append(out, name)
	}
	return out
}

// scanSheet streams every row of a sheet to count it and keeps the first
// maxRows rows.
func (w *Workbook) scanSheet(xl *xlsxreader.XlsxFile, name string) (*sheetScan, error) {
	scan := &sheetScan{}
	var firstErr error
	for row := range xl.ReadRows(name) {
		if row.Error != nil {
			if firstErr == nil {
				firstErr = row.Error
			}
			continue
		}
		sr := scannedRow{num: row.Index}
		for _, c := range row.Cells {
			v := strings.TrimSpace(c.Value)
			if v == "" {
				continue
			}
			col := c.ColumnIndex()
			if col >= len(sr.values) {
				sr.values = append(sr.values, make([]string, col-len(sr.values)+1)...)
				sr.types = append(sr.types, make([]xlsxreader.CellType, col-len(sr.types)+1)...)
			}
			sr.values[col], sr.types[col] = v, c.Type
		}
		if sr.empty() {
			continue
		}
		scan.rowCount = max(scan.rowCount, row.Index)
		scan.colCount = max(scan.colCount, len(sr.values))
		if len(scan.rows) < w.maxRows {
			scan.rows = append(scan.rows, sr)
			if len(scan.rows)%100 == 0 {
				w.emitProgress("scan_sheet_rows", name, len(scan.rows), w.maxRows)
			}
		}
	}
	if firstErr != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", name, firstErr)
	}
	w.logger.Debug("sheet scanned",
		zap.String("sheet", name),
		zap.Int("rows", scan.rowCount),
		zap.Int("columns", scan.colCount),
	)
	return scan, nil
}

func (w *Workbook) detail(name string, scan *sheetScan) SheetDetail {
	d := SheetDetail{Name: name, RowCount: scan.rowCount, ColumnCount: scan.colCount}
	h := findHeaderRow(scan.rows)
	if h < 0 {
		return d
	}
	header := scan.rows[h]
	d.HeaderRow = header.num
	d.Headers = trimTrailingEmpty(header.values)
	d.Columns = w.buildColumns(header.num, d.Headers, scan.rows[h+1:])
	d.Sections = extractSections(scan.rows[h+1:])
	return d
}

// findHeaderRow returns the index of the first row naming at least two known
// columns, falling back to the first row.
func findHeaderRow(rows []scannedRow) int {
	for i, r := range rows {
		if isLikelyHeaderRow(r.values) {
			return i
		}
	}
	if len(rows) == 0 {
		return -1
	}
	return 0
}

func isLikelyHeaderRow(values []string) bool {
	nonEmpty, known := 0, 0
	for _, v := range values {
		if v == "" {
			continue
		}
		nonEmpty++
		if headerVocabulary[strings.ToUpper(v)] {
			known++
		}
	}
	return nonEmpty >= 3 && known >= 2
}

func (w *Workbook) buildColumns(headerRow int, headers []string, rows []scannedRow) []ColumnInfo {
	columns := make([]ColumnInfo, len(headers))
	for i, h := range headers {
		columns[i] = ColumnInfo{
			Name:          h,
			StartPosition: grid.CellName(headerRow-1, i),
			SampleValues:  make([]string, 0, w.maxSamples),
		}
	}
	for _, r := range rows {
		if isBannerRow(r) {
			continue
		}
		for i := range columns {
			if i >= len(r.values) || r.values[i] == "" {
				continue
			}
			c := &columns[i]
			if c.DataType == "" {
				c.DataType = dataType(r.values[i], r.types[i])
			}
			if len(c.SampleValues) < w.maxSamples && !contains(c.SampleValues, r.values[i]) {
				c.SampleValues = append(c.SampleValues, r.values[i])
			}
		}
	}
	return columns
}

func dataType(v string, t xlsxreader.CellType) string {
	switch t {
	case xlsxreader.TypeNumerical:
		return "number"
	case xlsxreader.TypeDateTime:
		return "date"
	case xlsxreader.TypeBoolean:
		return "boolean"
	}
	if dates.IsDate(v) {
		return "date"
	}
	return "string"
}

func isBannerRow(r scannedRow) bool {
	if len(r.values) == 0 {
		return false
	}
	kind, _ := report.KindOf(r.values[0])
	return kind != report.KindData
}

// extractSections splits the rows below the header at report banners. Team
// sections are titled "DAY / TEAM". Rows before the first banner belong to no
// section.
func extractSections(rows []scannedRow) []Section {
	var (
		sections []Section
		day      string
		cur      = -1
	)
	for _, r := range rows {
		kind, label := report.KindOf(r.values[0])
		switch kind {
		case report.KindDayBanner:
			day, cur = label, -1
			continue
		case report.KindTeamBanner:
			title := label
			if day != "" {
				title = day + " / " + label
			}
			sections = append(sections, Section{Title: title})
			cur = len(sections) - 1
			continue
		}
		if cur < 0 {
			if day == "" {
				continue
			}
			sections = append(sections, Section{Title: day})
			cur = len(sections) - 1
		}
		s := &sections[cur]
		if s.StartRow == 0 {
			s.StartRow = r.num
		}
		s.EndRow = r.num
		s.RowCount++
	}
	return sections
}

func trimTrailingEmpty(values []string) []string {
	last := -1
	for i, v := range values {
		if v != "" {
			last = i
		}
	}
	return append([]string(nil), values[:last+1]...)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// Markdown renders the inspection report.
func (info *FileInfo) Markdown() string {
	var b strings.Builder

	b.WriteString("# Workbook Inspect Report\n\n")
	b.WriteString("## Sheets\n\n")
	b.WriteString("| Name | Rows | Columns |\n")
	b.WriteString("| --- | ---: | ---: |\n")
	for _, s := range info.Sheets {
		fmt.Fprintf(&b, "| %s | %d | %d |\n", summary.EscapeMarkdownCell(s.Name), s.RowCount, s.ColumnCount)
	}
	if len(info.SheetDetails) == 0 {
		return b.String()
	}

	b.WriteString("\n## Sheet Details\n")
	for _, d := range info.SheetDetails {
		fmt.Fprintf(&b, "\n### %s\n\n", summary.EscapeMarkdownCell(d.Name))
		fmt.Fprintf(&b, "- Rows: %d\n", d.RowCount)
		fmt.Fprintf(&b, "- Columns: %d\n", d.ColumnCount)
		fmt.Fprintf(&b, "- Header row: %d\n", d.HeaderRow)

		if len(d.Columns) > 0 {
			b.WriteString("\n#### Columns\n\n")
			b.WriteString("| # | Name | Start | Type | Samples |\n")
			b.WriteString("| ---: | --- | --- | --- | --- |\n")
			for idx, c := range d.Columns {
				fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
					idx+1,
					summary.EscapeMarkdownCell(c.Name),
					c.StartPosition,
					c.DataType,
					summary.EscapeMarkdownCell(strings.Join(c.SampleValues, ", ")),
				)
			}
		}

		if len(d.Sections) > 0 {
			b.WriteString("\n#### Sections\n\n")
			b.WriteString("| Title | Start | End | Rows |\n")
			b.WriteString("| --- | ---: | ---: | ---: |\n")
			for _, s := range d.Sections {
				fmt.Fprintf(&b, "| %s | %d | %d | %d |\n", summary.EscapeMarkdownCell(s.Title), s.StartRow, s.EndRow, s.RowCount)
			}
		}
	}
	return b.String()
}

// TOON renders the inspection report as flat TOON tables.
func (info *FileInfo) TOON() (string, error) {
	sheets := make([]map[string]interface{}, 0, len(info.Sheets))
	for _, s := range info.Sheets {
		sheets = append(sheets, map[string]interface{}{
			"name":         s.Name,
			"row_count":    s.RowCount,
			"column_count": s.ColumnCount,
		})
	}
	payload := map[string]interface{}{"sheets": sheets}
	if len(info.SheetDetails) == 0 {
		return toon.Marshal(payload, nil)
	}

	columns := make([]map[string]interface{}, 0)
	sections := make([]map[string]interface{}, 0)
	for _, d := range info.SheetDetails {
		for idx, c := range d.Columns {
			columns = append(columns, map[string]interface{}{
				"sheet":          d.Name,
				"column_idx":     idx + 1,
				"name":           c.Name,
				"start_position": c.StartPosition,
				"data_type":      c.DataType,
				"samples":        strings.Join(c.SampleValues, "|"),
			})
		}
		for idx, s := range d.Sections {
			sections = append(sections, map[string]interface{}{
				"sheet":       d.Name,
				"section_idx": idx + 1,
				"title":       s.Title,
				"start_row":   s.StartRow,
				"end_row":     s.EndRow,
				"row_count":   s.RowCount,
			})
		}
	}
	payload["columns"] = columns
	payload["sections"] = sections
	return toon.Marshal(payload, nil)
}
