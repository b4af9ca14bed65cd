package ratemeter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateCountsMarksWithinWindow(t *testing.T) {
	m := New(time.Second, 4)
	base := time.Unix(0, 0)

	for i := 0; i < 10; i++ {
		m.mark(base.Add(time.Duration(i) * 10 * time.Millisecond))
	}

	require.Equal(t, float64(10), m.rate(base.Add(90*time.Millisecond)))
}

func TestRateDropsEventsOutsideWindow(t *testing.T) {
	m := New(time.Second, 4)
	base := time.Unix(0, 0)

	m.mark(base)
	m.mark(base.Add(500 * time.Millisecond))

	require.Equal(t, float64(2), m.rate(base.Add(999*time.Millisecond)))
	require.Equal(t, float64(1), m.rate(base.Add(1200*time.Millisecond)))
	require.Equal(t, float64(0), m.rate(base.Add(3*time.Second)))
}

func TestMeterGrowsBeyondInitialCapacity(t *testing.T) {
	m := New(time.Minute, 2)
	base := time.Unix(0, 0)

	for i := 0; i < 100; i++ {
		m.mark(base.Add(time.Duration(i) * time.Millisecond))
	}

	require.Equal(t, 100, m.count)
	require.GreaterOrEqual(t, len(m.events), 100)
}
