package regions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetops/grid"
	"sheetops/host"
)

func referenceGrid() grid.Grid {
	return grid.Grid{
		{"Suburb", "", "", "", "Western-Sydney", "South-West", "Inner-West", "South-East", "Northern-Sydney", "Hunter", "Illawarra"},
		{"", "", "", "", 2000.0, 2000.0, 2040.0, "", "", 2300.0, ""},
		{"", "", "", "", 2150.0, "2000", " 2041 ", "", "null", "", "undefined"},
		{"", "", "", "", "", 2170.0, "", "", "", "", 2500.0},
	}
}

func TestBuild(t *testing.T) {
	l := Build(referenceGrid(), 0, DefaultColumns)

	assert.Equal(t, []string{"Western-Sydney", "South-West"}, l.Regions("2000"))
	assert.Equal(t, []string{"Inner-West"}, l.Regions("2041"))
	assert.Equal(t, []string{"Illawarra"}, l.Regions("2500"))
	assert.Nil(t, l.Regions("null"))
	assert.Nil(t, l.Regions("undefined"))
	assert.Equal(t, []string{"2000", "2150", "2170", "2040", "2041", "2300", "2500"}, l.Postcodes())
	assert.Equal(t, 7, l.Len())

	joined, ok := l.Joined(" 2000 ")
	require.True(t, ok)
	assert.Equal(t, "Western-Sydney, South-West", joined)

	_, ok = l.Joined("9999")
	assert.False(t, ok)
}

func TestBuildRegionListsHaveNoDuplicates(t *testing.T) {
	g := grid.Grid{
		{"h", "h"},
		{"2000", "2000"},
		{"2000", "2001"},
	}
	cols := []Column{{Index: 0, Region: "A"}, {Index: 1, Region: "B"}}
	l := Build(g, 0, cols)
	assert.Equal(t, []string{"A", "B"}, l.Regions("2000"))
	assert.Equal(t, []string{"B"}, l.Regions("2001"))
}

func TestColumnsFromLetters(t *testing.T) {
	cols, err := ColumnsFromLetters([]string{"E", "k"}, []string{"Western-Sydney", "Illawarra"})
	require.NoError(t, err)
	assert.Equal(t, []Column{{Index: 4, Region: "Western-Sydney"}, {Index: 10, Region: "Illawarra"}}, cols)

	_, err = ColumnsFromLetters([]string{"E"}, nil)
	assert.Error(t, err)

	_, err = ColumnsFromLetters([]string{"1"}, []string{"x"})
	assert.Error(t, err)
}

func TestAssign(t *testing.T) {
	l := Build(referenceGrid(), 0, DefaultColumns)
	table, err := grid.NewTable(grid.Grid{
		{"Clients"},
		{"Name", " Post Code ", "REGION"},
		{"Ann", 2000.0, "stale"},
		{"Bob", "9999", ""},
		{"Cat", nil, ""},
		{"Dan", "2500", nil},
	}, grid.DefaultHeaderRow)
	require.NoError(t, err)

	a, err := Assign(table, l)
	require.NoError(t, err)
	assert.Equal(t, 1, a.PostcodeCol)
	assert.Equal(t, 2, a.RegionCol)
	assert.Equal(t, grid.Grid{{"Western-Sydney, South-West"}, {""}, {""}, {"Illawarra"}}, a.Values)
	assert.Equal(t, 2, a.Matched)
	assert.Equal(t, 2, a.NoMatch)
	assert.Equal(t, []string{"9999"}, a.Unmatched)
}

func TestAssignMissingColumns(t *testing.T) {
	l := NewLookup()
	noRegion, err := grid.NewTable(grid.Grid{{}, {"Postcode"}}, 1)
	require.NoError(t, err)
	_, err = Assign(noRegion, l)
	assert.True(t, errors.Is(err, grid.ErrColumnNotFound))

	noPostcode, err := grid.NewTable(grid.Grid{{}, {"Regions"}}, 1)
	require.NoError(t, err)
	_, err = Assign(noPostcode, l)
	assert.ErrorIs(t, err, grid.ErrColumnNotFound)
}

func TestRun(t *testing.T) {
	wb := host.NewMemoryWorkbook()
	wb.Put("Values&Scripts", referenceGrid())
	wb.Put("Schedule", grid.Grid{
		{"Week schedule"},
		{"ACN", "Postcode", "Region", "Team"},
		{"AC00000001", 2000.0, "", "T1"},
		{"AC00000002", 2300.0, "", "T2"},
		{"AC00000003", 1234.0, "old", "T3"},
	})

	res, err := Run(wb, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Postcodes)

	g := wb.Memory("Schedule").Grid()
	assert.Equal(t, "Western-Sydney, South-West", g[2][2])
	assert.Equal(t, "Hunter", g[3][2])
	assert.Equal(t, "", g[4][2])
	assert.Equal(t, "T3", g[4][3])

	text := res.Summary().Text()
	assert.Contains(t, text, "- Rows matched: 2")
	assert.Contains(t, text, "- 1234")
}

func TestRunMissingSheet(t *testing.T) {
	wb := host.NewMemoryWorkbook()
	wb.Put("Schedule", grid.Grid{{"x"}})
	_, err := Run(wb, DefaultOptions(), nil)
	assert.ErrorIs(t, err, host.ErrSheetNotFound)
}
