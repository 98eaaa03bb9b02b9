// Package tvstore implements the aligned time-value store: a column-major
// block of (timestamp, N typed values) rows with per-column null bitmaps,
// appended in arbitrary timestamp order and sorted into ascending-time
// order in place before being handed to the WAL manager at flush time.
//
// A Store is single-writer: it holds no internal lock. Concurrent readers
// must Clone first.
package tvstore

import (
	"sort"
	"time"
)

// Store is a mutable, column-major block of timestamped rows.
type Store struct {
	schema  []ColumnType
	times   []int64
	columns []*column

	sortObserver   func(time.Duration)
	insertObserver func(time.Duration)
}

// SetSortObserver registers a callback invoked with the wall-clock duration
// of every Sort call, nil by default (no observation). Intended for wiring
// a metrics histogram without this package importing pkg/metrics, which
// already imports pkg/tvstore to poll Store's row count.
func (s *Store) SetSortObserver(obs func(time.Duration)) {
	s.sortObserver = obs
}

// SetInsertObserver registers a callback invoked with the wall-clock
// duration of every PutAlignedBatch call, nil by default.
func (s *Store) SetInsertObserver(obs func(time.Duration)) {
	s.insertObserver = obs
}

// New creates an empty Store with one value column per entry of schema, in
// declaration order.
func New(schema []ColumnType) *Store {
	cols := make([]*column, len(schema))
	for i, t := range schema {
		cols[i] = newColumn(t)
	}
	return &Store{
		schema:  append([]ColumnType(nil), schema...),
		columns: cols,
	}
}

// Schema returns the declared column types, in physical column order.
func (s *Store) Schema() []ColumnType {
	return append([]ColumnType(nil), s.schema...)
}

// RowCount returns the number of logical rows currently held.
func (s *Store) RowCount() int {
	return len(s.times)
}

// PutAligned appends a single row. columnOrder[j] = k means values[j] is
// written into physical column k; len(values) must equal len(columnOrder)
// and columnOrder must be a permutation of 0..len(schema)-1.
func (s *Store) PutAligned(ts int64, values []Cell, columnOrder []int) error {
	if len(values) != len(columnOrder) {
		return ErrLengthMismatch
	}
	if err := s.checkColumnOrder(columnOrder); err != nil {
		return err
	}
	for j, col := range columnOrder {
		if values[j].Type != s.schema[col] {
			return ErrTypeMismatch
		}
	}

	s.times = append(s.times, ts)
	for j, col := range columnOrder {
		if err := s.columns[col].appendValue(values[j]); err != nil {
			return err
		}
	}
	return nil
}

// PutAlignedBatch appends length rows starting at start, reading in
// parallel from ts, values and the optional per-logical-column nullBitmaps.
// nullBitmaps may be nil (no column has nulls in this batch) or have a nil
// entry for any column that has no nulls.
func (s *Store) PutAlignedBatch(ts []int64, values [][]Cell, nullBitmaps [][]bool, columnOrder []int, start, length int) error {
	if s.insertObserver != nil {
		defer func(begin time.Time) { s.insertObserver(time.Since(begin)) }(time.Now())
	}
	if start < 0 || length < 0 || start+length > len(ts) || start+length > len(values) {
		return ErrLengthMismatch
	}
	if err := s.checkColumnOrder(columnOrder); err != nil {
		return err
	}
	if nullBitmaps != nil && len(nullBitmaps) != len(columnOrder) {
		return ErrLengthMismatch
	}
	for _, bm := range nullBitmaps {
		if bm != nil && len(bm) != length {
			return ErrLengthMismatch
		}
	}
	for i := start; i < start+length; i++ {
		if len(values[i]) != len(columnOrder) {
			return ErrLengthMismatch
		}
		for j, col := range columnOrder {
			if values[i][j].Type != s.schema[col] {
				return ErrTypeMismatch
			}
		}
	}

	for i := start; i < start+length; i++ {
		s.times = append(s.times, ts[i])
		for j, col := range columnOrder {
			v := values[i][j]
			if nullBitmaps != nil && nullBitmaps[j] != nil && nullBitmaps[j][i-start] {
				v.Null = true
			}
			if err := s.columns[col].appendValue(v); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) checkColumnOrder(columnOrder []int) error {
	if len(columnOrder) != len(s.schema) {
		return ErrLengthMismatch
	}
	seen := make([]bool, len(s.schema))
	for _, col := range columnOrder {
		if col < 0 || col >= len(s.schema) || seen[col] {
			return ErrLengthMismatch
		}
		seen[col] = true
	}
	return nil
}

// GetTime returns the timestamp of row i.
func (s *Store) GetTime(i int) (int64, error) {
	if i < 0 || i >= len(s.times) {
		return 0, ErrIndexOutOfRange
	}
	return s.times[i], nil
}

// GetAligned renders row i as one Cell per physical column, masked to null
// per the column's bitmap.
func (s *Store) GetAligned(i int) ([]Cell, error) {
	if i < 0 || i >= len(s.times) {
		return nil, ErrIndexOutOfRange
	}
	row := make([]Cell, len(s.columns))
	for c, col := range s.columns {
		row[c] = col.get(i)
	}
	return row, nil
}

// IsNull reports whether row i, physical column col, is masked null.
func (s *Store) IsNull(i, col int) (bool, error) {
	if i < 0 || i >= len(s.times) {
		return false, ErrIndexOutOfRange
	}
	if col < 0 || col >= len(s.columns) {
		return false, ErrIndexOutOfRange
	}
	return s.columns[col].nulls[i], nil
}

// SetNull marks or unmarks row i, physical column col, as null. The
// underlying value is never overwritten, so unmarking restores exactly the
// value that was originally written.
func (s *Store) SetNull(i, col int, null bool) error {
	if i < 0 || i >= len(s.times) {
		return ErrIndexOutOfRange
	}
	if col < 0 || col >= len(s.columns) {
		return ErrIndexOutOfRange
	}
	s.columns[col].setNull(i, null)
	return nil
}

// Sort establishes ascending-time order in place. The sort is stable: rows
// with equal timestamps retain their relative insertion order, and every
// column's null bitmap is permuted congruently with its values.
func (s *Store) Sort() error {
	if s.sortObserver != nil {
		defer func(begin time.Time) { s.sortObserver(time.Since(begin)) }(time.Now())
	}

	n := len(s.times)
	if n < 2 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return s.times[idx[a]] < s.times[idx[b]]
	})

	s.times = permuteSlice(s.times, idx)
	for _, col := range s.columns {
		col.permute(idx)
	}
	return nil
}

// Clone returns an independent deep copy; mutating the original afterwards
// never affects the clone, and vice versa.
func (s *Store) Clone() *Store {
	out := &Store{
		schema:  append([]ColumnType(nil), s.schema...),
		times:   cloneSlice(s.times),
		columns: make([]*column, len(s.columns)),
	}
	for i, col := range s.columns {
		out.columns[i] = col.clone()
	}
	return out
}

// CloneRange returns an independent deep copy of rows [start, end). It
// exists because WAL flush only ever needs a bounded window of a Store
// rather than the whole thing.
func (s *Store) CloneRange(start, end int) (*Store, error) {
	if start < 0 || end > len(s.times) || start > end {
		return nil, ErrIndexOutOfRange
	}
	out := &Store{
		schema:  append([]ColumnType(nil), s.schema...),
		times:   cloneSlice(s.times[start:end]),
		columns: make([]*column, len(s.columns)),
	}
	for i, col := range s.columns {
		out.columns[i] = col.sliceRange(start, end)
	}
	return out, nil
}
