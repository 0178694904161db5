// Package series stores the per-step records produced by one engine run.
package series

import (
	"fmt"

	"Flashover/internal/calc/timestep"
)

// DefaultRows is the display row budget used when none is given.
const DefaultRows = 500

// Record is one time step. Values line up with the owning Series' Columns.
type Record struct {
	T      float64   `json:"t"`
	Values []float64 `json:"values"`
}

// Series is an append-only, time-ordered sequence of records.
type Series struct {
	Columns []string `json:"columns"`
	Records []Record `json:"records"`
}

func New(columns ...string) *Series {
	return &Series{Columns: columns}
}

// Append adds a record. Time must strictly increase, the value count must
// match the columns and every value must be finite.
func (s *Series) Append(t float64, values ...float64) error {
	if len(values) != len(s.Columns) {
		return fmt.Errorf("series: got %d values for %d columns", len(values), len(s.Columns))
	}
	if n := len(s.Records); n > 0 && t <= s.Records[n-1].T {
		return fmt.Errorf("series: time %g does not follow %g", t, s.Records[n-1].T)
	}
	for i, v := range values {
		if err := timestep.Finite(timestep.Quantity{Name: s.Columns[i], Value: v}); err != nil {
			return fmt.Errorf("series: at t=%g: %w", t, err)
		}
	}
	s.Records = append(s.Records, Record{T: t, Values: values})
	return nil
}

func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Last returns the final record, false when empty.
func (s *Series) Last() (Record, bool) {
	if s.Len() == 0 {
		return Record{}, false
	}
	return s.Records[len(s.Records)-1], true
}

// Column returns the index of name, or -1.
func (s *Series) Column(name string) int {
	for i, c := range s.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Value reads a named column from record i.
func (s *Series) Value(i int, name string) (float64, bool) {
	c := s.Column(name)
	if c < 0 || i < 0 || i >= s.Len() {
		return 0, false
	}
	return s.Records[i].Values[c], true
}

// Peak returns the maximum of a column and the time it occurs at.
func (s *Series) Peak(name string) (value, at float64, ok bool) {
	c := s.Column(name)
	if c < 0 {
		return 0, 0, false
	}
	for i, r := range s.Records {
		if i == 0 || r.Values[c] > value {
			value, at, ok = r.Values[c], r.T, true
		}
	}
	return value, at, ok
}

// Decimate returns a read-only view holding every Nth record, where N is
// chosen so the view fits in rows. The last record is always kept and order
// is preserved. The underlying series is not modified.
func (s *Series) Decimate(rows int) *Series {
	if rows <= 0 {
		rows = DefaultRows
	}
	n := s.Len()
	view := &Series{Columns: s.Columns}
	if n <= rows {
		view.Records = s.Records[:n:n]
		return view
	}
	if rows == 1 {
		view.Records = []Record{s.Records[n-1]}
		return view
	}
	every := (n + rows - 2) / (rows - 1)
	view.Records = make([]Record, 0, rows)
	for i := 0; i < n-1; i += every {
		view.Records = append(view.Records, s.Records[i])
	}
	view.Records = append(view.Records, s.Records[n-1])
	return view
}
