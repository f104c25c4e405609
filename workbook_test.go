package sheetops

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetops/grid"
	"sheetops/highlight"
	"sheetops/host"
)

func newTestWorkbook(t *testing.T) *Workbook {
	t.Helper()
	w := New(filepath.Join(t.TempDir(), "book.xlsx"))
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWorkbookSheets(t *testing.T) {
	w := newTestWorkbook(t)

	s, err := w.AddSheet("Schedule")
	require.NoError(t, err)
	assert.Equal(t, "Schedule", s.Name())
	assert.Equal(t, []string{"Sheet1", "Schedule"}, w.SheetNames())

	got, err := w.Sheet("schedule")
	require.NoError(t, err)
	assert.Equal(t, "Schedule", got.Name(), "lookups ignore case")

	again, err := w.AddSheet("SCHEDULE")
	require.NoError(t, err)
	assert.Equal(t, "Schedule", again.Name())

	_, err = w.Sheet("Missing")
	assert.ErrorIs(t, err, host.ErrSheetNotFound)
	assert.ErrorIs(t, w.DeleteSheet("Missing"), host.ErrSheetNotFound)

	require.NoError(t, w.DeleteSheet("sheet1"))
	assert.Equal(t, []string{"Schedule"}, w.SheetNames())
	assert.ErrorIs(t, w.DeleteSheet("Schedule"), host.ErrLastSheet, "the last sheet stays")
}

func TestSheetReadWriteTypes(t *testing.T) {
	w := newTestWorkbook(t)
	s, err := w.Sheet("Sheet1")
	require.NoError(t, err)

	r, err := s.UsedRange()
	require.NoError(t, err)
	assert.True(t, r.Empty())

	in := grid.Grid{
		{"Name", "Fee", "Paid", "Date"},
		{"Ann", 45.5, true, "01/02/2024"},
		{"Bob", 12, false, nil},
	}
	require.NoError(t, s.WriteGrid(grid.At(1, 1, 3, 4), in))

	r, err = s.UsedRange()
	require.NoError(t, err)
	assert.Equal(t, grid.At(0, 0, 4, 5), r)

	g, err := s.ReadGrid(grid.At(1, 1, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, grid.Grid{
		{"Name", "Fee", "Paid", "Date"},
		{"Ann", 45.5, true, "01/02/2024"},
		{"Bob", 12.0, false, nil},
	}, g)

	used, err := host.ReadUsed(s)
	require.NoError(t, err)
	assert.Nil(t, used[0][0])
	assert.Len(t, used, 4)

	err = s.WriteGrid(grid.At(0, 0, 2, 1), grid.Grid{{"x"}})
	assert.ErrorIs(t, err, host.ErrShape)
}

func TestSheetFormatting(t *testing.T) {
	w := newTestWorkbook(t)
	s, err := w.AddSheet("Report")
	require.NoError(t, err)
	require.NoError(t, s.WriteGrid(grid.At(0, 0, 2, 2), grid.Grid{{"H", "Wide header value"}, {"a", "b"}}))

	bold := host.Format{Bold: true, FillColor: "#4A4A4A", FontColor: "#FFFFFF", RowHeight: 25}
	require.NoError(t, s.SetFormat(grid.At(0, 0, 1, 2), bold))
	a1, err := w.CellStyle("Report", "A1")
	require.NoError(t, err)
	assert.NotZero(t, a1)
	b1, err := w.CellStyle("Report", "B1")
	require.NoError(t, err)
	assert.Equal(t, a1, b1)

	require.NoError(t, s.SetFormat(grid.CellAt(0, 1), host.Format{Bold: true, FillColor: "#4A4A4A", FontColor: "#FFFFFF"}))
	b1, err = w.CellStyle("Report", "B1")
	require.NoError(t, err)
	assert.Equal(t, a1, b1, "reapplying a format keeps the style")
	h, err := w.file.GetRowHeight("Report", 1)
	require.NoError(t, err)
	assert.Equal(t, 25.0, h)

	require.NoError(t, s.SetFormat(grid.CellAt(1, 1), host.Format{NumberFormat: host.TextFormat}))
	b2, err := w.CellStyle("Report", "B2")
	require.NoError(t, err)
	assert.NotZero(t, b2)
	assert.NotEqual(t, a1, b2)

	require.NoError(t, s.FreezeRows(1))
	panes, err := w.file.GetPanes("Report")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "A2", panes.TopLeftCell)

	require.NoError(t, s.AutofitColumns())
	wide, err := w.file.GetColWidth("Report", "B")
	require.NoError(t, err)
	narrow, err := w.file.GetColWidth("Report", "A")
	require.NoError(t, err)
	assert.Greater(t, wide, narrow)
	assert.Equal(t, minColWidth, narrow)
}

func TestSetFormatKeepsExistingStyle(t *testing.T) {
	w := newTestWorkbook(t)
	s, err := w.AddSheet("Cycle Week 1")
	require.NoError(t, err)
	require.NoError(t, s.WriteGrid(grid.At(0, 0, 1, 2), grid.Grid{{150.0, "01/02/2024"}}))
	require.NoError(t, s.SetFormat(grid.At(0, 0, 1, 2), host.Format{Bold: true, FillColor: "#4A4A4A"}))

	res, err := highlight.Run(s, 100, "yellow", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, res.Highlighted)
	require.NoError(t, s.SetFormat(grid.CellAt(0, 1), host.Format{NumberFormat: host.TextFormat}))

	styleOf := func(cell string) *excelize.Style {
		t.Helper()
		id, err := w.CellStyle("Cycle Week 1", cell)
		require.NoError(t, err)
		st, err := w.file.GetStyle(id)
		require.NoError(t, err)
		return st
	}

	a1 := styleOf("A1")
	require.NotNil(t, a1.Font)
	assert.True(t, a1.Font.Bold, "a later fill keeps bold")
	assert.Equal(t, []string{"FFFF00"}, a1.Fill.Color)

	b1 := styleOf("B1")
	require.NotNil(t, b1.Font)
	assert.True(t, b1.Font.Bold, "a number format keeps bold")
	assert.Equal(t, []string{"4A4A4A"}, b1.Fill.Color)
	assert.Equal(t, 49, b1.NumFmt)
}

func TestWorkbookSaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.xlsx")
	w := New(path)
	assert.True(t, w.Dirty())
	s, err := w.AddSheet("Data")
	require.NoError(t, err)
	require.NoError(t, s.WriteGrid(grid.At(0, 0, 2, 2), grid.Grid{{"Qty", "Item"}, {150.0, "bolts"}}))
	require.NoError(t, w.Save())
	assert.False(t, w.Dirty())
	require.NoError(t, w.Close())

	re, err := Open(path)
	require.NoError(t, err)
	defer re.Close()
	assert.False(t, re.Dirty())
	assert.Equal(t, path, re.Path())

	data, err := re.Sheet("data")
	require.NoError(t, err)
	g, err := host.ReadUsed(data)
	require.NoError(t, err)
	assert.Equal(t, grid.Grid{{"Qty", "Item"}, {150.0, "bolts"}}, g)

	_, err = Open(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
