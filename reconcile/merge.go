package reconcile

import (
	"fmt"
	"regexp"

	"sheetops/grid"
)

// Options controls a merge.
type Options struct {
	SourceSheet string
	TargetSheet string
	// HeaderRow is the zero-based header row of both sheets.
	HeaderRow int

	Source SourceColumns
	Target TargetColumns
	// Week is the cycle week source days are mapped to.
	Week int
	// StrictDays leaves Cycle untouched and records a DayIssue when a day has
	// no exact cycle label, instead of taking the closest label.
	StrictDays bool
	KeyPattern *regexp.Regexp
}

// DefaultOptions reproduces the Cycle WK2 import.
func DefaultOptions() Options {
	return Options{
		SourceSheet: "Cycle WK2",
		TargetSheet: "Schedule",
		HeaderRow:   grid.DefaultHeaderRow,
		Source:      DefaultSourceColumns(),
		Target:      DefaultTargetColumns(),
		Week:        2,
		KeyPattern:  DefaultKeyPattern,
	}
}

// Update sets one target cell.
type Update struct {
	Row   int
	Col   int
	Value grid.Cell
}

// DayIssue is a source day that did not name a cycle label exactly.
type DayIssue struct {
	Key string
	Day string
	// Cycle is the label used, empty under StrictDays.
	Cycle string
}

func (d DayIssue) String() string {
	if d.Cycle == "" {
		return fmt.Sprintf("ACN %s: day %q has no cycle label", d.Key, d.Day)
	}
	return fmt.Sprintf("ACN %s: day %q matched to %q", d.Key, d.Day, d.Cycle)
}

// Result is the outcome of Merge. Applying Updates and then writing Appended
// at AppendAt brings the target up to date.
type Result struct {
	SourceRecords   int
	SourceMatched   int
	SourceUnmatched int
	TargetMatched   int
	CellsUpdated    int
	Added           int

	Conflicts     []string
	Malformed     []MalformedKey
	DayIssues     []DayIssue
	MissingSource []string
	MissingTarget []string

	Updates  []Update
	AppendAt int
	Appended grid.Grid
}

// targetIndex resolves the target headers of a table.
type targetIndex struct {
	key, firstName, lastName, address, suburb, postcode, contact, team, order, cycle, fee, notes, complaints int
}

func newTargetIndex(t *grid.Table, c TargetColumns) targetIndex {
	return targetIndex{
		key:        t.Index(c.Key),
		firstName:  t.Index(c.FirstName),
		lastName:   t.Index(c.LastName),
		address:    t.Index(c.Address),
		suburb:     t.Index(c.Suburb),
		postcode:   t.Index(c.Postcode),
		contact:    t.Index(c.Contact),
		team:       t.Index(c.Team),
		order:      t.Index(c.Order),
		cycle:      t.Index(c.Cycle),
		fee:        t.Index(c.Fee),
		notes:      t.Index(c.Notes),
		complaints: t.Index(c.Complaints),
	}
}

// assignment is one target column and the value derived for it.
type assignment struct {
	col   int
	value grid.Cell
}

type merger struct {
	opts   Options
	cycles CycleTable
	idx    targetIndex
	res    *Result
	// reported holds the keys whose day issue is already recorded.
	reported map[string]bool
}

// derive computes the schedule values of rec other than key and team. Fields
// whose column is absent are dropped. The cycle value is omitted when the day
// has no usable label.
func (m *merger) derive(rec *Record) []assignment {
	first, last := SplitName(rec.Name)
	out := []assignment{
		{m.idx.firstName, first},
		{m.idx.lastName, last},
		{m.idx.address, rec.Address},
		{m.idx.suburb, rec.Suburb},
		{m.idx.postcode, rec.Postcode},
		{m.idx.contact, rec.Phone},
		{m.idx.order, rec.Order},
	}
	if cycle, ok := m.cycle(rec); ok {
		out = append(out, assignment{m.idx.cycle, cycle})
	}
	out = append(out,
		assignment{m.idx.fee, ParseFee(rec.Payment)},
		assignment{m.idx.notes, rec.Notes},
		assignment{m.idx.complaints, rec.Complaints},
	)
	return out
}

func (m *merger) cycle(rec *Record) (string, bool) {
	label, exact := m.cycles.Match(rec.Day, m.opts.Week)
	if exact {
		return label, true
	}
	if m.opts.StrictDays {
		label = ""
	}
	if !m.reported[rec.Key] {
		m.reported[rec.Key] = true
		m.res.DayIssues = append(m.res.DayIssues, DayIssue{Key: rec.Key, Day: rec.Day, Cycle: label})
	}
	return label, label != ""
}

// Merge joins the source table into the target table on the account key.
//
// For every target row whose key has a source record, a non-blank target
// team that differs from the source crew is a conflict: the row is left
// untouched and reported once. Otherwise each blank target field takes the
// derived source value; populated fields are never overwritten. Source
// records no target row refers to are appended after the last target row in
// source order.
//
// Merge does not modify either table.
func Merge(source, target *grid.Table, opts Options) (*Result, error) {
	if opts.Week == 0 {
		opts.Week = DefaultOptions().Week
	}
	recs, err := ReadRecords(source, opts.Source, opts.KeyPattern)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	idx := newTargetIndex(target, opts.Target)
	if idx.key < 0 {
		return nil, fmt.Errorf("target: %w: %q", grid.ErrColumnNotFound, opts.Target.Key)
	}

	m := &merger{
		opts:     opts,
		cycles:   NewCycleTable(),
		idx:      idx,
		reported: make(map[string]bool),
		res: &Result{
			SourceRecords: recs.Len(),
			Malformed:     recs.Malformed,
			MissingSource: source.Missing(opts.Source.optional()...),
			MissingTarget: target.Missing(opts.Target.optional()...),
			AppendAt:      len(target.Rows),
		},
	}
	res := m.res

	matched := make(map[string]bool)
	for row := target.FirstDataRow(); row < len(target.Rows); row++ {
		key := grid.Field(target.Value(row, idx.key))
		if key == "" {
			continue
		}
		rec, ok := recs.Get(key)
		if !ok {
			continue
		}
		res.TargetMatched++
		matched[key] = true

		if idx.team >= 0 {
			current := grid.Field(target.Value(row, idx.team))
			if current != "" && current != rec.Crew {
				res.Conflicts = append(res.Conflicts,
					fmt.Sprintf("ACN %s: Team is %q, expected %q", key, current, rec.Crew))
				continue
			}
			if current == "" && rec.Crew != "" {
				res.Updates = append(res.Updates, Update{Row: row, Col: idx.team, Value: rec.Crew})
			}
		}
		for _, a := range m.derive(rec) {
			if a.col < 0 || (grid.Falsy(a.value) && !isNumber(a.value)) {
				continue
			}
			if cur := target.Value(row, a.col); !grid.Blank(cur) || sameNumber(cur, a.value) {
				continue
			}
			res.Updates = append(res.Updates, Update{Row: row, Col: a.col, Value: a.value})
		}
	}
	res.CellsUpdated = len(res.Updates)
	res.SourceMatched = len(matched)

	width := target.Width()
	for _, key := range recs.Keys() {
		if matched[key] {
			continue
		}
		rec, _ := recs.Get(key)
		row := make(grid.Row, width)
		set := func(col int, v grid.Cell) {
			if col >= 0 && col < width {
				row[col] = v
			}
		}
		set(idx.key, rec.Key)
		set(idx.team, rec.Crew)
		for _, a := range m.derive(rec) {
			set(a.col, a.value)
		}
		res.Appended = append(res.Appended, row)
	}
	res.Added = len(res.Appended)
	res.SourceUnmatched = res.Added
	return res, nil
}

func isNumber(v grid.Cell) bool {
	_, ok := grid.Number(v)
	return ok
}

// sameNumber reports whether a and b are both numbers of equal value. A zero
// fee written on an earlier run still reads as blank.
func sameNumber(a, b grid.Cell) bool {
	x, ok := grid.Number(a)
	if !ok {
		return false
	}
	y, ok := grid.Number(b)
	return ok && x == y
}
