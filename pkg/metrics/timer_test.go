package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestTimerDurationGrowsMonotonically(t *testing.T) {
	timer := NewTimer()
	assert.False(t, timer.start.IsZero())

	var last time.Duration
	for i := 0; i < 3; i++ {
		time.Sleep(10 * time.Millisecond)
		d := timer.Duration()
		assert.Greater(t, d, last, "Duration must increase on every call")
		last = d
	}
}

func TestTimerObserveDurationDoesNotPanic(t *testing.T) {
	histogram := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "test_timer_histogram_seconds",
		Help:    "test",
		Buckets: prometheus.DefBuckets,
	})

	timer := NewTimer()
	time.Sleep(5 * time.Millisecond)

	assert.NotPanics(t, func() { timer.ObserveDuration(histogram) })
	assert.NotZero(t, timer.Duration())
}

func TestTimerObserveDurationVecDoesNotPanic(t *testing.T) {
	histogramVec := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "test_timer_histogram_vec_seconds",
			Help:    "test",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	timer := NewTimer()
	time.Sleep(5 * time.Millisecond)

	assert.NotPanics(t, func() { timer.ObserveDurationVec(histogramVec, "force_sync") })
}

func TestIndependentTimersTrackSeparately(t *testing.T) {
	first := NewTimer()
	time.Sleep(20 * time.Millisecond)
	second := NewTimer()
	time.Sleep(20 * time.Millisecond)

	assert.Greater(t, first.Duration(), second.Duration())
}
