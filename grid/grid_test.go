package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   Cell
		want string
	}{
		{nil, ""},
		{"abc", "abc"},
		{2000.0, "2000"},
		{45.5, "45.5"},
		{7, "7"},
		{true, "true"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Text(tt.in), "Text(%#v)", tt.in)
	}
}

func TestBlankAndField(t *testing.T) {
	assert.True(t, Blank(nil))
	assert.True(t, Blank(""))
	assert.True(t, Blank("   "))
	assert.True(t, Blank(0.0))
	assert.True(t, Blank(false))
	assert.False(t, Blank("x"))
	assert.False(t, Blank(12.0))

	assert.Equal(t, "", Field(0.0))
	assert.Equal(t, "Team A", Field("  Team A "))
	assert.Equal(t, "2150", Field(2150.0))
}

func TestTrimTrailingEmpty(t *testing.T) {
	assert.Equal(t, Row{"a", nil, "b"}, TrimTrailingEmpty(Row{"a", nil, "b", "", " "}))
	assert.Equal(t, Row{}, TrimTrailingEmpty(Row{"", nil}))
	assert.True(t, IsEmptyRow(Row{" ", nil, ""}))
	assert.False(t, IsEmptyRow(Row{nil, 1.0}))
}

func TestGridHelpers(t *testing.T) {
	g := Grid{{"a"}, {"b", "c", "d"}}
	assert.Equal(t, 3, g.Width())
	assert.Nil(t, g.At(0, 2))
	assert.Equal(t, "d", g.At(1, 2))

	padded := g.Pad(3)
	assert.Len(t, padded[0], 3)

	clone := g.Clone()
	clone[1][0] = "z"
	assert.Equal(t, "b", g[1][0])
}

func TestRange(t *testing.T) {
	assert.Equal(t, "B3", CellAt(2, 1).A1())
	assert.Equal(t, "A1:D10", At(0, 0, 10, 4).A1())
	assert.Equal(t, "AA", ColumnName(26))

	idx, err := ColumnIndex("E")
	require.NoError(t, err)
	assert.Equal(t, 4, idx)

	_, err = ColumnIndex("4")
	assert.Error(t, err)

	r, err := ParseRange("C2:A5")
	require.NoError(t, err)
	assert.Equal(t, Range{Row: 1, Col: 0, Rows: 4, Cols: 3}, r)

	r, err = ParseRange("K7")
	require.NoError(t, err)
	assert.Equal(t, CellAt(6, 10), r)
}

func TestTable(t *testing.T) {
	g := Grid{
		{"Schedule"},
		{"ACN", "First Name", " Post Code ", "ACN"},
		{"AC00000001", "Ann", "2000"},
	}
	tbl, err := NewTable(g, DefaultHeaderRow)
	require.NoError(t, err)

	assert.Equal(t, 0, tbl.Index("ACN"))
	assert.Equal(t, -1, tbl.Index("acn"))
	assert.Equal(t, -1, tbl.Index("Post Code"))
	assert.Equal(t, 2, tbl.IndexFold("postcode", "post code"))
	assert.Equal(t, []string{"Team"}, tbl.Missing("ACN", "Team"))
	assert.Equal(t, 2, tbl.FirstDataRow())

	_, err = tbl.Require("Team")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	_, err = NewTable(Grid{{"only"}}, DefaultHeaderRow)
	assert.ErrorIs(t, err, ErrNoHeader)
}
