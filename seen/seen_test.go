package seen

import (
	"testing"

	"github.com/ashgrove/linearcheck/history"
	"github.com/ashgrove/linearcheck/model"
	"github.com/ashgrove/linearcheck/world"
	"github.com/stretchr/testify/require"
)

func TestSeenReportsFalseThenTrueForSameWorld(t *testing.T) {
	c := New(8)
	w := world.Initial(model.Register{})
	w.Pending = w.Pending.Add(history.Op{Type: history.Invoke, Process: 1, Function: "read"}, 0)

	require.False(t, c.Seen(w))
	require.True(t, c.Seen(w))
}

func TestSeenNeverStoresEmptyPendingWorlds(t *testing.T) {
	c := New(8)
	w := world.Initial(model.Register{})

	require.False(t, c.Seen(w))
	// seeing the same empty-pending world a second time must not report it
	// seen, since the first call never stored it.
	require.False(t, c.Seen(w))
}

func TestSeenDiscriminatesOnIndex(t *testing.T) {
	c := New(8)
	w1 := world.Initial(model.Register{})
	w1.Pending = w1.Pending.Add(history.Op{Type: history.Invoke, Process: 1, Function: "read"}, 0)
	w2 := w1
	w2.Index = w1.Index + 5

	require.False(t, c.Seen(w1))
	require.False(t, c.Seen(w2))
}

func TestNewClampsBitsToMax(t *testing.T) {
	c := New(64)
	require.Equal(t, 1<<MaxBits, c.Len())
}
