package domain

import (
	"fmt"
	"time"
)

// Frame is an ordered tabular batch of numeric values: one row per
// observation, one column per field or derived feature. It is the fixed-shape
// unification point where per-kind records become feature vectors. The column
// order of a processed Frame is the feature contract recorded with its
// snapshot and expected by model artifacts at inference time.
type Frame struct {
	// Columns is the ordered column name list.
	Columns []string

	// Timestamps holds the observation time for each row.
	Timestamps []time.Time

	// Rows holds one value per column, in column order.
	Rows [][]float64
}

// NewFrame creates an empty frame with the given column order.
func NewFrame(columns []string) *Frame {
	return &Frame{Columns: append([]string(nil), columns...)}
}

// NumRows returns the row count.
func (f *Frame) NumRows() int {
	return len(f.Rows)
}

// NumCols returns the column count.
func (f *Frame) NumCols() int {
	return len(f.Columns)
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]float64, error) {
	idx := f.ColumnIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("frame: no column %q", name)
	}
	out := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// AppendRow adds a row. The value count must match the column count.
func (f *Frame) AppendRow(ts time.Time, values []float64) error {
	if len(values) != len(f.Columns) {
		return fmt.Errorf("frame: row has %d values, want %d", len(values), len(f.Columns))
	}
	f.Timestamps = append(f.Timestamps, ts)
	f.Rows = append(f.Rows, values)
	return nil
}

// AddColumn appends a column with one value per existing row.
func (f *Frame) AddColumn(name string, values []float64) error {
	if len(values) != len(f.Rows) {
		return fmt.Errorf("frame: column %q has %d values, want %d", name, len(values), len(f.Rows))
	}
	if f.ColumnIndex(name) >= 0 {
		return fmt.Errorf("frame: column %q already exists", name)
	}
	f.Columns = append(f.Columns, name)
	for i := range f.Rows {
		f.Rows[i] = append(f.Rows[i], values[i])
	}
	return nil
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	out := &Frame{
		Columns:    append([]string(nil), f.Columns...),
		Timestamps: append([]time.Time(nil), f.Timestamps...),
		Rows:       make([][]float64, len(f.Rows)),
	}
	for i, row := range f.Rows {
		out.Rows[i] = append([]float64(nil), row...)
	}
	return out
}
