package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetops/grid"
	"sheetops/host"
)

func scheduleGrid() grid.Grid {
	return grid.Grid{
		{"Schedule"},
		{"ACN", "First Name", "Cycle", "Team", "Order", "Fee"},
		{"AC1", "Ann", "Tuesday - Week 1", "Team B", 2.0, 50.0},
		{"AC2", "Bob", "Monday - Week 1", "Team B", "", 60.0},
		{"AC3", "Cat", "Monday - Week 2", "Team A", 1.0, 70.0},
		{"AC4", "Dee", "Monday - Week 1", " Team A ", 3.0, nil},
		{"AC5", "Eve", "Monday - Week 1", "Team B", 1.0, 20.0},
		{"AC6", "Fay", "Monday - Week 1", "", "x", 10.0},
		{"AC7", "Gus", "Monday - Week 1", "Team B", " 1 ", 30.0},
		{"AC8", "Hal", "Week 1", "Team A", 1.0, 40.0},
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Headers = []string{"Cycle", "ACN", "First Name", "Region", "Team", "Order"}
	return opts
}

func build(t *testing.T, g grid.Grid, opts Options) *Report {
	t.Helper()
	tb, err := grid.NewTable(g, grid.DefaultHeaderRow)
	require.NoError(t, err)
	rep, err := Build(tb, opts)
	require.NoError(t, err)
	return rep
}

func labels(rep *Report) []string {
	var out []string
	for _, r := range rep.Rows {
		if r.Kind == KindData {
			out = append(out, r.Values[1].(string))
		} else {
			out = append(out, r.Kind.String()+":"+r.Label)
		}
	}
	return out
}

func TestBuild(t *testing.T) {
	rep := build(t, scheduleGrid(), testOptions())

	assert.Equal(t, []string{
		"day:Week",
		"team:Team A",
		"AC8",
		"day:Monday",
		"team:Team A",
		"AC4",
		"team:Team B",
		"AC5",
		"AC7",
		"AC2",
		"team:Unassigned",
		"AC6",
		"day:Tuesday",
		"team:Team B",
		"AC1",
	}, labels(rep))

	days, teams, data := rep.Counts()
	assert.Equal(t, 3, days)
	assert.Equal(t, 5, teams)
	assert.Equal(t, 7, data)
}

func TestBuildMapsColumns(t *testing.T) {
	rep := build(t, scheduleGrid(), testOptions())
	require.Equal(t, KindData, rep.Rows[2].Kind)
	assert.Equal(t, grid.Row{"Week 1", "AC8", "Hal", "", "Team A", 1.0}, rep.Rows[2].Values)
}

func TestBuildOrderSortIsStable(t *testing.T) {
	g := grid.Grid{
		{""},
		{"ACN", "Cycle", "Team", "Order"},
		{"a", "Friday - Week 1", "T", ""},
		{"b", "Friday - Week 1", "T", 2.0},
		{"c", "Friday - Week 1", "T", "n/a"},
		{"d", "Friday - Week 1", "T", 2.0},
		{"e", "Friday - Week 1", "T", 1.0},
		{"f", "Friday - Week 1", "T", nil},
	}
	opts := DefaultOptions()
	opts.Headers = []string{"ACN", "Order"}
	rep := build(t, g, opts)

	var got []string
	for _, r := range rep.Rows {
		if r.Kind == KindData {
			got = append(got, r.Values[0].(string))
		}
	}
	assert.Equal(t, []string{"e", "b", "d", "a", "c", "f"}, got)
}

func TestBuildGroupsUnknownDays(t *testing.T) {
	g := grid.Grid{
		{"Schedule"},
		{"ACN", "First Name", "Cycle", "Team", "Order"},
		{"a", "Ann", "Foo - Week 1", "Team A", 1.0},
		{"b", "Bob", "Zed - Week 1", "Team A", 1.0},
		{"c", "Cat", "Foo - Week 1", "Team B", 1.0},
		{"d", "Dee", "Monday - Week 1", "Team A", 1.0},
	}
	rep := build(t, g, testOptions())

	assert.Equal(t, []string{
		"day:Foo",
		"team:Team A",
		"a",
		"team:Team B",
		"c",
		"day:Zed",
		"team:Team A",
		"b",
		"day:Monday",
		"team:Team A",
		"d",
	}, labels(rep))
	days, _, _ := rep.Counts()
	assert.Equal(t, 3, days)
}

func TestBuildMissingColumn(t *testing.T) {
	tb, err := grid.NewTable(grid.Grid{{}, {"Cycle", "Team"}}, 1)
	require.NoError(t, err)
	_, err = Build(tb, DefaultOptions())
	assert.ErrorIs(t, err, grid.ErrColumnNotFound)
}

func TestGridAndKindOf(t *testing.T) {
	rep := &Report{
		Headers: []string{"Cycle", "ACN", "Team"},
		Rows: []Row{
			{Kind: KindDayBanner, Label: "Monday"},
			{Kind: KindTeamBanner, Label: "Team a"},
			{Kind: KindData, Values: grid.Row{"Monday - Week 1", "AC1", "Team a"}},
		},
	}
	g := rep.Grid()
	assert.Equal(t, grid.Grid{
		{"Cycle", "ACN", "Team"},
		{"📅 MONDAY", "", ""},
		{"👥 TEAM A", "", ""},
		{"Monday - Week 1", "AC1", "Team a"},
	}, g)

	kinds := make([]Kind, 0, len(g))
	for _, row := range g {
		k, _ := KindOf(row[0])
		kinds = append(kinds, k)
	}
	assert.Equal(t, []Kind{KindData, KindDayBanner, KindTeamBanner, KindData}, kinds)

	_, label := KindOf(g[2][0])
	assert.Equal(t, "TEAM A", label)
	k, _ := KindOf(12.0)
	assert.Equal(t, KindData, k)
}

func TestRun(t *testing.T) {
	wb := host.NewMemoryWorkbook()
	wb.Put("Schedule", scheduleGrid())
	wb.Put("Cycle Week 1", grid.Grid{{"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}, {"stale"}})

	rep, err := Run(wb, testOptions(), nil)
	require.NoError(t, err)

	out := wb.Memory("Cycle Week 1")
	require.NotNil(t, out)
	g := out.Grid()
	assert.Len(t, g, len(rep.Rows)+1, "the old sheet is replaced, not overwritten")
	assert.Equal(t, "Cycle", g[0][0])
	assert.Equal(t, "📅 WEEK", g[1][0])

	assert.Equal(t, []host.Format{HeaderFormat}, out.FormatsAt(0))
	assert.Equal(t, []host.Format{DayBannerFormat}, out.FormatsAt(1))
	assert.Equal(t, []host.Format{TeamBannerFormat}, out.FormatsAt(2))
	assert.Empty(t, out.FormatsAt(3))
	assert.Equal(t, 1, out.Frozen)
	assert.True(t, out.Autofitted)

	assert.Contains(t, rep.Summary("Cycle Week 1").Text(), "- Client rows: 7")
}

func TestRunKeepsTargetOnFailure(t *testing.T) {
	wb := host.NewMemoryWorkbook()
	wb.Put("Schedule", grid.Grid{{}, {"ACN"}})
	wb.Put("Cycle Week 1", grid.Grid{{"keep"}})

	_, err := Run(wb, DefaultOptions(), nil)
	require.ErrorIs(t, err, grid.ErrColumnNotFound)
	assert.Equal(t, "keep", wb.Memory("Cycle Week 1").Grid()[0][0])
}
