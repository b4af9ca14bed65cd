package frontier

import (
	"testing"
	"time"

	"github.com/ashgrove/linearcheck/history"
	"github.com/ashgrove/linearcheck/model"
	"github.com/ashgrove/linearcheck/world"
	"github.com/stretchr/testify/require"
)

func withPending(w world.World, n int) world.World {
	for i := 0; i < n; i++ {
		w.Pending = w.Pending.Add(history.Op{Type: history.Invoke, Process: i, Function: "read"}, 0)
	}
	return w
}

func TestPollReturnsFalseOnEmptyTimeout(t *testing.T) {
	f := New()
	_, ok := f.Poll(10 * time.Millisecond)
	require.False(t, ok)
}

func TestPutThenPollReturnsTrue(t *testing.T) {
	f := New()
	w := world.Initial(model.Register{})
	f.Put(w)

	got, ok := f.Poll(time.Second)
	require.True(t, ok)
	require.Equal(t, w, got)
}

func TestPollPrefersSmallerPendingSet(t *testing.T) {
	f := New()
	base := world.Initial(model.Register{})

	big := withPending(base, 3)
	small := withPending(base, 1)
	f.Put(big)
	f.Put(small)

	got, ok := f.Poll(time.Second)
	require.True(t, ok)
	require.Equal(t, 1, got.Pending.Len())
}

func TestPollTiebreaksOnLargerIndex(t *testing.T) {
	f := New()
	base := world.Initial(model.Register{})
	shallow := base
	shallow.Index = 1
	deep := base
	deep.Index = 5

	f.Put(shallow)
	f.Put(deep)

	got, ok := f.Poll(time.Second)
	require.True(t, ok)
	require.Equal(t, 5, got.Index)
}

func TestPollBlocksUntilPut(t *testing.T) {
	f := New()
	w := world.Initial(model.Register{})

	done := make(chan world.World, 1)
	go func() {
		got, ok := f.Poll(time.Second)
		require.True(t, ok)
		done <- got
	}()

	time.Sleep(20 * time.Millisecond)
	f.Put(w)

	select {
	case got := <-done:
		require.Equal(t, w, got)
	case <-time.After(time.Second):
		t.Fatal("Poll did not return after Put")
	}
}

func TestCloseUnblocksPoll(t *testing.T) {
	f := New()

	done := make(chan bool, 1)
	go func() {
		_, ok := f.Poll(time.Second)
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	f.Close()

	select {
	case ok := <-done:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Poll did not return after Close")
	}
}

func TestLenReflectsQueueSize(t *testing.T) {
	f := New()
	require.Equal(t, 0, f.Len())
	f.Put(world.Initial(model.Register{}))
	require.Equal(t, 1, f.Len())
}
