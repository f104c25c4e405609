package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetops/grid"
)

func TestMemoryWorkbookSheets(t *testing.T) {
	wb := NewMemoryWorkbook()
	wb.Put("Schedule", grid.Grid{{"a"}})

	s, err := wb.Sheet("schedule")
	require.NoError(t, err)
	assert.Equal(t, "Schedule", s.Name())

	_, err = wb.Sheet("Missing")
	assert.ErrorIs(t, err, ErrSheetNotFound)

	again, err := wb.AddSheet("SCHEDULE")
	require.NoError(t, err)
	assert.Same(t, wb.Memory("Schedule"), again, "an existing sheet is returned")
	assert.Len(t, wb.SheetNames(), 1)

	_, err = wb.AddSheet("Cycle Week 1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Schedule", "Cycle Week 1"}, wb.SheetNames())

	require.NoError(t, wb.DeleteSheet("cycle week 1"))
	assert.ErrorIs(t, wb.DeleteSheet("cycle week 1"), ErrSheetNotFound)
	assert.ErrorIs(t, wb.DeleteSheet("Schedule"), ErrLastSheet)
	assert.Equal(t, []string{"Schedule"}, wb.SheetNames())
}

func TestMemorySheetUsedRangeAndWrite(t *testing.T) {
	wb := NewMemoryWorkbook()
	ms := wb.Put("S", grid.Grid{
		{"h1", "h2", nil},
		{1.0, nil, ""},
		{nil, nil},
	})

	r, err := ms.UsedRange()
	require.NoError(t, err)
	assert.Equal(t, grid.At(0, 0, 2, 2), r)

	require.NoError(t, ms.WriteGrid(grid.CellAt(3, 3), grid.Grid{{"x"}}))
	g, err := ReadUsed(ms)
	require.NoError(t, err)
	require.Len(t, g, 4)
	assert.Equal(t, "x", g[3][3])
	assert.Len(t, g[0], 4)

	err = ms.WriteGrid(grid.At(0, 0, 2, 1), grid.Grid{{"only one row"}})
	assert.ErrorIs(t, err, ErrShape)
}

func TestReadUsedEmptySheet(t *testing.T) {
	wb := NewMemoryWorkbook()
	s, err := wb.AddSheet("Empty")
	require.NoError(t, err)

	g, err := ReadUsed(s)
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestMemorySheetFormatting(t *testing.T) {
	ms := NewMemoryWorkbook().Put("S", nil)
	require.NoError(t, ms.SetFormat(grid.At(0, 0, 1, 3), Format{Bold: true}))
	require.NoError(t, ms.FreezeRows(1))
	require.NoError(t, ms.AutofitColumns())

	assert.Equal(t, []Format{{Bold: true}}, ms.FormatsAt(0))
	assert.Equal(t, 1, ms.Frozen)
	assert.True(t, ms.Autofitted)
	assert.True(t, Format{NumberFormat: TextFormat}.HasStyle())
	assert.False(t, Format{RowHeight: 25}.HasStyle())
}
