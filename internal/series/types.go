// Package series cleans an irregularly sampled heart-rate series, infers its
// dominant sampling interval, splits it into runs of uniform spacing and
// computes mean summaries over the whole series and over each run.
package series

import (
	"time"
)

// Field is one named column of a raw input row
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Row is a raw input record. Field order follows the source (the CSV header,
// the table column order) and is preserved when the cleaned series is written
// back out.
type Row []Field

// NewRow builds a Row from parallel name and value slices
func NewRow(names, values []string) Row {
	r := make(Row, len(names))
	for i, n := range names {
		r[i] = Field{Name: n, Value: values[i]}
	}
	return r
}

// Get returns the value of the named field
func (r Row) Get(name string) (string, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Names returns the field names in row order
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Values returns the field values in row order
func (r Row) Values() []string {
	values := make([]string, len(r))
	for i, f := range r {
		values[i] = f.Value
	}
	return values
}

// Reading is one timestamped measurement. Value holds the raw text; it is
// parsed only by the aggregation stage.
type Reading struct {
	Timestamp time.Time
	Value     string
	Row       Row
	// Index is the 0-based position of the source row in the raw input
	Index int

	// timestampField names the row field Timestamp was parsed from
	timestampField string
}

// Equal reports structural equality over typed fields: the same instant in
// the same zone offset, and identical names and text for every other field.
// Timestamps written in different ISO-8601 forms compare equal.
func (r Reading) Equal(o Reading) bool {
	_, ro := r.Timestamp.Zone()
	_, oo := o.Timestamp.Zone()
	if !r.Timestamp.Equal(o.Timestamp) || ro != oo || len(r.Row) != len(o.Row) {
		return false
	}
	for i, f := range r.Row {
		g := o.Row[i]
		if f.Name != g.Name {
			return false
		}
		if f.Name == r.timestampField && f.Name == o.timestampField {
			continue
		}
		if f.Value != g.Value {
			return false
		}
	}
	return true
}

// Series is the deduplicated, time-ordered sequence of readings
type Series struct {
	Readings []Reading
}

// Len returns the number of readings in the series
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Readings)
}

// Rows returns the source rows of the series in series order
func (s *Series) Rows() []Row {
	rows := make([]Row, s.Len())
	for i, r := range s.Readings {
		rows[i] = r.Row
	}
	return rows
}

// Slice returns the readings covered by seg
func (s *Series) Slice(seg Segment) []Reading {
	return s.Readings[seg.Start:seg.End]
}

// Segment is a half-open index range [Start, End) into a Series
type Segment struct {
	Start int `json:"start" msgpack:"start"`
	End   int `json:"end" msgpack:"end"`
}

// Len returns the number of readings in the segment
func (g Segment) Len() int {
	return g.End - g.Start
}
