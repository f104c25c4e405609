// Package regions maps postcodes to the service regions that cover them and
// fills the region column of the schedule.
package regions

import (
	"fmt"
	"strings"

	"sheetops/grid"
)

// Column ties a reference-sheet column to the region its postcodes belong to.
type Column struct {
	Index  int
	Region string
}

// DefaultColumns are the region columns E through K of the reference sheet.
var DefaultColumns = []Column{
	{Index: 4, Region: "Western-Sydney"},
	{Index: 5, Region: "South-West"},
	{Index: 6, Region: "Inner-West"},
	{Index: 7, Region: "South-East"},
	{Index: 8, Region: "Northern-Sydney"},
	{Index: 9, Region: "Hunter"},
	{Index: 10, Region: "Illawarra"},
}

// ColumnsFromLetters pairs column letters with region names.
func ColumnsFromLetters(letters, names []string) ([]Column, error) {
	if len(letters) != len(names) {
		return nil, fmt.Errorf("%d region columns for %d region names", len(letters), len(names))
	}
	cols := make([]Column, len(letters))
	for i, l := range letters {
		idx, err := grid.ColumnIndex(l)
		if err != nil {
			return nil, err
		}
		cols[i] = Column{Index: idx, Region: names[i]}
	}
	return cols, nil
}

// Lookup maps postcodes to region names. Postcodes and the regions of each
// postcode keep their first-insertion order.
type Lookup struct {
	postcodes []string
	regions   map[string][]string
}

// NewLookup returns an empty lookup.
func NewLookup() *Lookup {
	return &Lookup{regions: make(map[string][]string)}
}

// Add records that postcode belongs to region. Repeats are ignored.
func (l *Lookup) Add(postcode, region string) {
	existing, ok := l.regions[postcode]
	if !ok {
		l.postcodes = append(l.postcodes, postcode)
	}
	for _, r := range existing {
		if r == region {
			return
		}
	}
	l.regions[postcode] = append(existing, region)
}

// Regions returns the regions of postcode in insertion order.
func (l *Lookup) Regions(postcode string) []string {
	return l.regions[strings.TrimSpace(postcode)]
}

// Joined returns the regions of postcode separated by ", ".
func (l *Lookup) Joined(postcode string) (string, bool) {
	rs, ok := l.regions[strings.TrimSpace(postcode)]
	if !ok {
		return "", false
	}
	return strings.Join(rs, ", "), true
}

// Postcodes returns every postcode in insertion order.
func (l *Lookup) Postcodes() []string {
	return append([]string(nil), l.postcodes...)
}

// Len is the number of distinct postcodes.
func (l *Lookup) Len() int {
	return len(l.postcodes)
}

// Build reads every row below headerRow in each region column of ref.
func Build(ref grid.Grid, headerRow int, columns []Column) *Lookup {
	l := NewLookup()
	for _, col := range columns {
		for row := headerRow + 1; row < len(ref); row++ {
			postcode := strings.TrimSpace(grid.Text(ref.At(row, col.Index)))
			if skipPostcode(postcode) {
				continue
			}
			l.Add(postcode, col.Region)
		}
	}
	return l
}

func skipPostcode(p string) bool {
	return p == "" || p == "undefined" || p == "null"
}
