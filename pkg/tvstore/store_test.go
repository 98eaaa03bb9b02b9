package tvstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identitySchema() []ColumnType {
	return []ColumnType{Bool, Int32, Int64, Float, Double, Text}
}

func identityOrder() []int { return []int{0, 1, 2, 3, 4, 5} }

// TestAlignedSortDescendingInput covers sorting a store whose rows were
// inserted in strictly descending timestamp order back into ascending
// order.
func TestAlignedSortDescendingInput(t *testing.T) {
	store := New(identitySchema())

	for i := 1000; i >= 0; i-- {
		row := []Cell{
			BoolCell(false),
			Int32Cell(100),
			Int64Cell(1000),
			FloatCell(0.1),
			DoubleCell(0.2),
			TextCell([]byte("Test")),
		}
		require.NoError(t, store.PutAligned(int64(i), row, identityOrder()))
	}

	require.NoError(t, store.Sort())
	require.Equal(t, 1001, store.RowCount())

	for i := 0; i <= 1000; i++ {
		ts, err := store.GetTime(i)
		require.NoError(t, err)
		assert.Equal(t, int64(i), ts)

		row, err := store.GetAligned(i)
		require.NoError(t, err)
		assert.Equal(t, "[false, 100, 1000, 0.1, 0.2, Test]", RenderRow(row))
	}
}

// TestBulkInsertWithNullBitmaps covers PutAlignedBatch applying a
// per-column null bitmap across a large batch.
func TestBulkInsertWithNullBitmaps(t *testing.T) {
	store := New([]ColumnType{Bool, Int32, Int64, Float, Double})
	order := []int{0, 1, 2, 3, 4}

	const n = 1001
	ts := make([]int64, n)
	values := make([][]Cell, n)
	nulls := make([][]bool, len(order))
	for j := range nulls {
		nulls[j] = make([]bool, n)
	}

	for row := 0; row < n; row++ {
		ts[row] = int64(1000 - row)
		values[row] = []Cell{
			BoolCell(true),
			Int32Cell(int32(row)),
			Int64Cell(int64(row)),
			FloatCell(1.5),
			DoubleCell(2.5),
		}
		if row%100 == 0 {
			for j := range nulls {
				nulls[j][row] = true
			}
		}
	}

	require.NoError(t, store.PutAlignedBatch(ts, values, nulls, order, 0, n))
	require.Equal(t, n, store.RowCount())

	for i := 0; i < n; i++ {
		gotTS, err := store.GetTime(i)
		require.NoError(t, err)
		assert.Equal(t, int64(store.RowCount()-1-i), gotTS)

		row, err := store.GetAligned(i)
		require.NoError(t, err)
		if i%100 == 0 {
			assert.Equal(t, "[null, null, null, null, null]", RenderRow(row))
		} else {
			assert.False(t, row[0].Null)
		}
	}
}

// TestCloneIndependence covers Clone producing an independent copy: later
// mutation of either store must not affect the other.
func TestCloneIndependence(t *testing.T) {
	store := New([]ColumnType{Int64})
	for i := 5; i >= 0; i-- {
		require.NoError(t, store.PutAligned(int64(i), []Cell{Int64Cell(int64(i * 10))}, []int{0}))
	}

	clone := store.Clone()
	require.NoError(t, store.Sort())

	// clone must retain the pre-sort (descending) ordering.
	for i := 0; i < clone.RowCount(); i++ {
		ts, err := clone.GetTime(i)
		require.NoError(t, err)
		assert.Equal(t, int64(5-i), ts)
	}

	// mutating the clone must never reach the original.
	require.NoError(t, clone.SetNull(0, 0, true))
	null, err := store.IsNull(0, 0)
	require.NoError(t, err)
	assert.False(t, null)
}

func TestSortIsStableForEqualTimestamps(t *testing.T) {
	store := New([]ColumnType{Int32})
	for i := 0; i < 5; i++ {
		require.NoError(t, store.PutAligned(0, []Cell{Int32Cell(int32(i))}, []int{0}))
	}

	require.NoError(t, store.Sort())
	for i := 0; i < 5; i++ {
		row, err := store.GetAligned(i)
		require.NoError(t, err)
		assert.Equal(t, int32(i), row[0].Int32, "equal timestamps must retain insertion order")
	}
}

func TestEmptyStoreSortIsNoopAndGetTimeErrors(t *testing.T) {
	store := New(identitySchema())
	require.NoError(t, store.Sort())

	_, err := store.GetTime(0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPutAlignedRejectsTypeMismatch(t *testing.T) {
	store := New([]ColumnType{Int64})
	err := store.PutAligned(0, []Cell{BoolCell(true)}, []int{0})
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSetNullRoundTripRestoresOriginalValue(t *testing.T) {
	store := New([]ColumnType{Int64})
	require.NoError(t, store.PutAligned(0, []Cell{Int64Cell(42)}, []int{0}))

	require.NoError(t, store.SetNull(0, 0, true))
	row, err := store.GetAligned(0)
	require.NoError(t, err)
	assert.True(t, row[0].Null)

	require.NoError(t, store.SetNull(0, 0, false))
	row, err = store.GetAligned(0)
	require.NoError(t, err)
	assert.False(t, row[0].Null)
	assert.Equal(t, int64(42), row[0].Int64)
}

func TestCloneRangeBounds(t *testing.T) {
	store := New([]ColumnType{Int64})
	for i := 0; i < 10; i++ {
		require.NoError(t, store.PutAligned(int64(i), []Cell{Int64Cell(int64(i))}, []int{0}))
	}

	sub, err := store.CloneRange(3, 6)
	require.NoError(t, err)
	require.Equal(t, 3, sub.RowCount())
	ts, err := sub.GetTime(0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), ts)

	_, err = store.CloneRange(0, 11)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}
