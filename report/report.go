// Package report builds the weekly schedule view: client rows filtered to one
// cycle week, grouped by day and team under banner rows.
package report

import (
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"sheetops/grid"
)

// Kind tags a report row.
type Kind int

const (
	KindData Kind = iota
	KindDayBanner
	KindTeamBanner
)

func (k Kind) String() string {
	switch k {
	case KindDayBanner:
		return "day"
	case KindTeamBanner:
		return "team"
	default:
		return "data"
	}
}

// Banner markers prefix the first cell of banner rows in the output grid.
const (
	DayMarker  = "📅"
	TeamMarker = "👥"
)

// KindOf classifies an output-grid row by its first cell and returns the
// banner label that follows the marker.
func KindOf(first grid.Cell) (Kind, string) {
	s, ok := first.(string)
	if !ok {
		return KindData, ""
	}
	switch {
	case strings.HasPrefix(s, DayMarker):
		return KindDayBanner, strings.TrimSpace(strings.TrimPrefix(s, DayMarker))
	case strings.HasPrefix(s, TeamMarker):
		return KindTeamBanner, strings.TrimSpace(strings.TrimPrefix(s, TeamMarker))
	}
	return KindData, ""
}

// Row is one report row. Banner rows carry only a Label; data rows carry
// one value per report header.
type Row struct {
	Kind   Kind
	Label  string
	Values grid.Row
}

// DefaultHeaders is the column order of the weekly view.
var DefaultHeaders = []string{
	"Cycle", "ACN", "First Name", "Last Name", "Address", "Suburb", "Post Code",
	"Contact", "Region", "Team", "Cover Team", "Order", "Fee", "Cancelations",
	"Notes", "Complaints/Incidents",
}

// DefaultDayOrder orders day groups.
var DefaultDayOrder = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// Options configures Build and Run.
type Options struct {
	SourceSheet string
	TargetSheet string
	HeaderRow   int

	// Rows are kept when the FilterColumn text contains Filter.
	FilterColumn string
	Filter       string
	// The day is the leading word of DayColumn.
	DayColumn   string
	TeamColumn  string
	OrderColumn string

	Headers     []string
	DayOrder    []string
	DefaultDay  string
	DefaultTeam string
}

// WeekOptions returns the options for the view of one cycle week.
func WeekOptions(week int) Options {
	return Options{
		SourceSheet:  "Schedule",
		TargetSheet:  fmt.Sprintf("Cycle Week %d", week),
		HeaderRow:    grid.DefaultHeaderRow,
		FilterColumn: "Cycle",
		Filter:       fmt.Sprintf("Week %d", week),
		DayColumn:    "Cycle",
		TeamColumn:   "Team",
		OrderColumn:  "Order",
		Headers:      DefaultHeaders,
		DayOrder:     DefaultDayOrder,
		DefaultDay:   "Unknown",
		DefaultTeam:  "Unassigned",
	}
}

// DefaultOptions is the Week 1 view.
func DefaultOptions() Options {
	return WeekOptions(1)
}

// Report is the grouped output.
type Report struct {
	Headers []string
	Rows    []Row
}

// Grid serializes the report: the header row, then every row with banners
// rendered as marker, space and upper-cased label.
func (r *Report) Grid() grid.Grid {
	width := len(r.Headers)
	g := make(grid.Grid, 0, len(r.Rows)+1)
	header := make(grid.Row, width)
	for i, h := range r.Headers {
		header[i] = h
	}
	g = append(g, header)
	for _, row := range r.Rows {
		switch row.Kind {
		case KindDayBanner:
			g = append(g, grid.BlankRow(width, DayMarker+" "+strings.ToUpper(row.Label)))
		case KindTeamBanner:
			g = append(g, grid.BlankRow(width, TeamMarker+" "+strings.ToUpper(row.Label)))
		default:
			g = append(g, append(grid.Row(nil), row.Values...))
		}
	}
	return g
}

// Counts returns the number of day banners, team banners and data rows.
func (r *Report) Counts() (days, teams, data int) {
	for _, row := range r.Rows {
		switch row.Kind {
		case KindDayBanner:
			days++
		case KindTeamBanner:
			teams++
		default:
			data++
		}
	}
	return days, teams, data
}

var leadingWord = regexp.MustCompile(`^(\w+)`)

type entry struct {
	day    string
	dayIdx int
	team   string
	values grid.Row
}

// Build filters, groups and orders the data rows of t.
//
// Rows are stable-sorted by the position of their day in DayOrder, unknown
// days first and grouped by name, then by team. A day banner opens every day group and a team
// banner every team group within it. Each team group is ordered by the
// numeric value of its order column, with blank or non-numeric values last
// and ties kept in input order.
func Build(t *grid.Table, opts Options) (*Report, error) {
	filterIdx, err := t.Require(opts.FilterColumn)
	if err != nil {
		return nil, err
	}
	dayIdx, err := t.Require(opts.DayColumn)
	if err != nil {
		return nil, err
	}
	teamIdx, err := t.Require(opts.TeamColumn)
	if err != nil {
		return nil, err
	}
	if _, err := t.Require(opts.OrderColumn); err != nil {
		return nil, err
	}

	mapping := make([]int, len(opts.Headers))
	orderCol := -1
	for i, h := range opts.Headers {
		mapping[i] = t.Index(h)
		if h == opts.OrderColumn {
			orderCol = i
		}
	}

	var entries []entry
	for row := t.FirstDataRow(); row < len(t.Rows); row++ {
		if !strings.Contains(grid.Text(t.Value(row, filterIdx)), opts.Filter) {
			continue
		}
		day := opts.DefaultDay
		if m := leadingWord.FindStringSubmatch(grid.Text(t.Value(row, dayIdx))); m != nil {
			day = m[1]
		}
		team := strings.TrimSpace(grid.Text(t.Value(row, teamIdx)))
		if team == "" {
			team = opts.DefaultTeam
		}
		values := make(grid.Row, len(mapping))
		for i, src := range mapping {
			v := t.Value(row, src)
			if v == nil {
				v = ""
			}
			values[i] = v
		}
		entries = append(entries, entry{day: day, dayIdx: slices.Index(opts.DayOrder, day), team: team, values: values})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].dayIdx != entries[j].dayIdx {
			return entries[i].dayIdx < entries[j].dayIdx
		}
		if entries[i].day != entries[j].day {
			return entries[i].day < entries[j].day
		}
		return strings.Compare(entries[i].team, entries[j].team) < 0
	})

	rep := &Report{Headers: append([]string(nil), opts.Headers...)}
	var group []Row
	flush := func() {
		sortByOrder(group, orderCol)
		rep.Rows = append(rep.Rows, group...)
		group = group[:0]
	}
	lastDay, lastTeam := "", ""
	for _, e := range entries {
		if e.day != lastDay {
			flush()
			rep.Rows = append(rep.Rows, Row{Kind: KindDayBanner, Label: e.day})
			lastDay, lastTeam = e.day, ""
		}
		if e.team != lastTeam {
			flush()
			rep.Rows = append(rep.Rows, Row{Kind: KindTeamBanner, Label: e.team})
			lastTeam = e.team
		}
		group = append(group, Row{Kind: KindData, Values: e.values})
	}
	flush()
	return rep, nil
}

func sortByOrder(rows []Row, col int) {
	if col < 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, aok := orderValue(rows[i].Values[col])
		b, bok := orderValue(rows[j].Values[col])
		if aok && bok {
			return a < b
		}
		return aok && !bok
	})
}

func orderValue(c grid.Cell) (float64, bool) {
	n, ok := grid.Number(c)
	if !ok {
		s, isText := c.(string)
		if !isText {
			return 0, false
		}
		var err error
		if n, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, false
		}
	}
	return n, !math.IsNaN(n)
}
