/*
Package tvstore implements the aligned, column-major time-value store that
sits beneath the WAL-Manager: one timestamp column plus N declared value
columns (bool, int32, int64, float, double, text), each carrying its own
null bitmap.

# Invariants

Every public operation leaves the store such that:

  - every column has exactly RowCount() logical entries
  - each column's null bitmap length equals its column length
  - after Sort, GetTime(i) <= GetTime(i+1) for all valid i

# Column-order remapping

columnOrder[j] = k means the j-th element of a caller's values slice is
written into physical column k. This lets a caller's row layout differ from
the store's declared column order without a copy on the caller's side.
*/
package tvstore
