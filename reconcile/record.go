// Package reconcile merges the client records of a crew cycle sheet into the
// schedule: blank schedule fields are filled, team conflicts are reported and
// clients missing from the schedule are appended.
package reconcile

import (
	"fmt"
	"regexp"

	"sheetops/grid"
)

// DefaultKeyPattern matches an account code: AC followed by eight digits.
var DefaultKeyPattern = regexp.MustCompile(`^AC\d{8}$`)

// SourceColumns names the headers of the cycle sheet. Names are matched
// exactly, including stray spaces.
type SourceColumns struct {
	Key        string
	Day        string
	Crew       string
	Name       string
	Suburb     string
	Postcode   string
	Phone      string
	Payment    string
	Order      string
	Address    string
	Notes      string
	Complaints string
}

// DefaultSourceColumns are the headers of the Cycle WK2 sheet.
func DefaultSourceColumns() SourceColumns {
	return SourceColumns{
		Key:        "AC  NUMBER",
		Day:        "DAY",
		Crew:       "CREW",
		Name:       "NAME",
		Suburb:     "SUBURB",
		Postcode:   "POSTCODE",
		Phone:      "PHONE NUMBER",
		Payment:    "PAYMENT ",
		Order:      "ORDER ",
		Address:    "ADDRESS",
		Notes:      "ADDITIONAL NOTES ",
		Complaints: "Complaints/ Incidents ",
	}
}

func (c SourceColumns) optional() []string {
	return []string{c.Day, c.Crew, c.Name, c.Suburb, c.Postcode, c.Phone, c.Payment, c.Order, c.Address, c.Notes, c.Complaints}
}

// TargetColumns names the headers of the schedule sheet.
type TargetColumns struct {
	Key        string
	FirstName  string
	LastName   string
	Address    string
	Suburb     string
	Postcode   string
	Contact    string
	Team       string
	Order      string
	Cycle      string
	Fee        string
	Notes      string
	Complaints string
}

// DefaultTargetColumns are the headers of the Schedule sheet.
func DefaultTargetColumns() TargetColumns {
	return TargetColumns{
		Key:        "ACN",
		FirstName:  "First Name",
		LastName:   "Last Name",
		Address:    "Address",
		Suburb:     "Suburb",
		Postcode:   "Post Code",
		Contact:    "Contact",
		Team:       "Team",
		Order:      "Order",
		Cycle:      "Cycle",
		Fee:        "Fee",
		Notes:      "Notes",
		Complaints: "Complaints/Incidents",
	}
}

func (c TargetColumns) optional() []string {
	return []string{c.FirstName, c.LastName, c.Address, c.Suburb, c.Postcode, c.Contact, c.Team, c.Order, c.Cycle, c.Fee, c.Notes, c.Complaints}
}

// Record is one client row of the cycle sheet. Every field is trimmed text.
type Record struct {
	Key        string
	Row        int
	Day        string
	Crew       string
	Name       string
	Suburb     string
	Postcode   string
	Phone      string
	Payment    string
	Order      string
	Address    string
	Notes      string
	Complaints string
}

// MalformedKey is a source row whose key fails the key pattern.
type MalformedKey struct {
	// Row is the one-based sheet row.
	Row int
	Key string
}

func (m MalformedKey) String() string {
	return fmt.Sprintf("Row %d: malformed key %q", m.Row, m.Key)
}

// sourceIndex resolves the source headers of a table.
type sourceIndex struct {
	key, day, crew, name, suburb, postcode, phone, payment, order, address, notes, complaints int
}

func newSourceIndex(t *grid.Table, c SourceColumns) sourceIndex {
	return sourceIndex{
		key:        t.Index(c.Key),
		day:        t.Index(c.Day),
		crew:       t.Index(c.Crew),
		name:       t.Index(c.Name),
		suburb:     t.Index(c.Suburb),
		postcode:   t.Index(c.Postcode),
		phone:      t.Index(c.Phone),
		payment:    t.Index(c.Payment),
		order:      t.Index(c.Order),
		address:    t.Index(c.Address),
		notes:      t.Index(c.Notes),
		complaints: t.Index(c.Complaints),
	}
}

// Records holds the valid source records keyed by account code. Order is the
// position of each key's first appearance; a repeated key replaces the
// earlier record in place.
type Records struct {
	keys      []string
	byKey     map[string]*Record
	Malformed []MalformedKey
}

// Len is the number of distinct keys.
func (r *Records) Len() int { return len(r.keys) }

// Get returns the record for key.
func (r *Records) Get(key string) (*Record, bool) {
	rec, ok := r.byKey[key]
	return rec, ok
}

// Keys returns the keys in first-appearance order.
func (r *Records) Keys() []string { return append([]string(nil), r.keys...) }

// ReadRecords extracts the records below the header of t. Rows with a blank
// key are skipped silently; keys not matching pattern are collected as
// malformed.
func ReadRecords(t *grid.Table, cols SourceColumns, pattern *regexp.Regexp) (*Records, error) {
	idx := newSourceIndex(t, cols)
	if idx.key < 0 {
		return nil, fmt.Errorf("%w: %q", grid.ErrColumnNotFound, cols.Key)
	}
	if pattern == nil {
		pattern = DefaultKeyPattern
	}
	recs := &Records{byKey: make(map[string]*Record)}
	for row := t.FirstDataRow(); row < len(t.Rows); row++ {
		key := grid.Field(t.Value(row, idx.key))
		if key == "" {
			continue
		}
		if !pattern.MatchString(key) {
			recs.Malformed = append(recs.Malformed, MalformedKey{Row: row + 1, Key: key})
			continue
		}
		rec := &Record{
			Key:        key,
			Row:        row,
			Day:        grid.Field(t.Value(row, idx.day)),
			Crew:       grid.Field(t.Value(row, idx.crew)),
			Name:       grid.Field(t.Value(row, idx.name)),
			Suburb:     grid.Field(t.Value(row, idx.suburb)),
			Postcode:   grid.Field(t.Value(row, idx.postcode)),
			Phone:      grid.Field(t.Value(row, idx.phone)),
			Payment:    grid.Field(t.Value(row, idx.payment)),
			Order:      grid.Field(t.Value(row, idx.order)),
			Address:    grid.Field(t.Value(row, idx.address)),
			Notes:      grid.Field(t.Value(row, idx.notes)),
			Complaints: grid.Field(t.Value(row, idx.complaints)),
		}
		if _, seen := recs.byKey[key]; !seen {
			recs.keys = append(recs.keys, key)
		}
		recs.byKey[key] = rec
	}
	return recs, nil
}
