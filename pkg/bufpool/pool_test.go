package bufpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRespectsCapacity(t *testing.T) {
	pool := New(2, 16)

	buf1, ok := pool.Acquire()
	require.True(t, ok)
	require.Len(t, buf1, 16)

	_, ok = pool.Acquire()
	require.True(t, ok)
	assert.Equal(t, 2, pool.InUse())

	_, ok = pool.Acquire()
	assert.False(t, ok, "pool must report unavailable once capacity is exhausted")

	pool.Release(buf1)
	assert.Equal(t, 1, pool.InUse())

	_, ok = pool.Acquire()
	assert.True(t, ok, "a released buffer must become acquirable again")
}

func TestSupplierFailsClosedWhenInsufficientCapacity(t *testing.T) {
	pool := New(3, 8)
	supplyTwo := pool.Supplier(2)

	bufs, ok := supplyTwo()
	require.True(t, ok)
	require.Len(t, bufs, 2)
	assert.Equal(t, 2, pool.InUse())

	_, ok = supplyTwo()
	assert.False(t, ok, "only one buffer remains, so a request for two must fail closed")
	assert.Equal(t, 2, pool.InUse(), "a failed supplier call must not change inUse")
}

func TestSinkReturnsBuffersToFreeList(t *testing.T) {
	pool := New(2, 8)
	supply := pool.Supplier(2)
	sink := pool.Sink()

	bufs, ok := supply()
	require.True(t, ok)
	require.Equal(t, 2, pool.InUse())

	sink(bufs)
	assert.Equal(t, 0, pool.InUse())

	_, ok = pool.Acquire()
	assert.True(t, ok)
}

func TestHighWaterTracksPeakUsage(t *testing.T) {
	pool := New(3, 8)
	b1, _ := pool.Acquire()
	b2, _ := pool.Acquire()
	assert.Equal(t, 2, pool.HighWater())

	pool.Release(b1)
	pool.Release(b2)
	assert.Equal(t, 2, pool.HighWater(), "high water mark must not decrease on release")
}

func TestWatermarkStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenWatermarkStore(dir)
	require.NoError(t, err)
	defer store.Close()

	hw, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 0, hw)

	require.NoError(t, store.Save(42))
	hw, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, 42, hw)
}

func TestPoolSeedHighWaterFromPersistedValue(t *testing.T) {
	pool := New(5, 8)
	pool.SeedHighWater(10)
	assert.Equal(t, 10, pool.HighWater())

	pool.SeedHighWater(3)
	assert.Equal(t, 10, pool.HighWater(), "seeding with a lower value must not regress the mark")
}
