package world

import (
	"testing"

	"github.com/ashgrove/linearcheck/history"
	"github.com/ashgrove/linearcheck/model"
	"github.com/stretchr/testify/require"
)

func TestInitialWorld(t *testing.T) {
	w := Initial(model.Register{})
	require.False(t, w.Dead())
	require.Equal(t, 0, w.Pending.Len())
	require.Equal(t, 0, w.Index)
}

func TestInvokeAlwaysIncludesEmptyArrangement(t *testing.T) {
	m := model.Register{}
	w := Initial(m)
	h := history.History{{Type: history.Invoke, Process: 1, Function: "write", Value: 1}}

	successors, err := Invoke(m, h, w)
	require.NoError(t, err)
	require.NotEmpty(t, successors)

	var foundEmpty bool
	for _, s := range successors {
		if len(s.Fixed) == 0 {
			foundEmpty = true
			require.True(t, s.Pending.Contains(1))
		}
	}
	require.True(t, foundEmpty)
}

func TestInvokeEnumeratesCommittingArrangement(t *testing.T) {
	m := model.Register{}
	w := Initial(m)
	h := history.History{{Type: history.Invoke, Process: 1, Function: "write", Value: 1}}

	successors, err := Invoke(m, h, w)
	require.NoError(t, err)

	var foundCommitted bool
	for _, s := range successors {
		if len(s.Fixed) == 1 {
			foundCommitted = true
			require.Equal(t, model.RegisterState{Value: 1}, s.Model)
			require.False(t, s.Pending.Contains(1))
		}
	}
	require.True(t, foundCommitted)
}

func TestOkAbsorbedIntoFixedSurvives(t *testing.T) {
	m := model.Register{}
	w := Initial(m)
	w.Fixed = []history.Op{{Type: history.Invoke, Process: 1, Function: "write", Value: 1}}
	// process 1 is not pending: already committed to fixed by some earlier arrangement
	got, ok := Ok(w, history.Op{Type: history.Ok, Process: 1, Function: "write", Value: 1})
	require.True(t, ok)
	require.Equal(t, w.Index+1, got.Index)
}

func TestOkWithOutstandingPendingIsDead(t *testing.T) {
	m := model.Register{}
	w := Initial(m)
	w.Pending = w.Pending.Add(history.Op{Type: history.Invoke, Process: 1, Function: "write", Value: 1}, 0)

	_, ok := Ok(w, history.Op{Type: history.Ok, Process: 1, Function: "write", Value: 1})
	require.False(t, ok)
}

func TestFailRemovesPendingInvocation(t *testing.T) {
	m := model.Register{}
	w := Initial(m)
	w.Pending = w.Pending.Add(history.Op{Type: history.Invoke, Process: 1, Function: "write", Value: 5}, 0)

	got, ok := Fail(w, history.Op{Type: history.Fail, Process: 1, Function: "write", Value: 5})
	require.True(t, ok)
	require.False(t, got.Pending.Contains(1))
	require.Equal(t, w.Index+1, got.Index)
}

func TestFailAlreadyLinearizedIsDead(t *testing.T) {
	m := model.Register{}
	w := Initial(m)
	_, ok := Fail(w, history.Op{Type: history.Fail, Process: 1, Function: "write", Value: 5})
	require.False(t, ok)
}

func TestInfoOnlyAdvancesCursor(t *testing.T) {
	m := model.Register{}
	w := Initial(m)
	w.Pending = w.Pending.Add(history.Op{Type: history.Invoke, Process: 1, Function: "write", Value: 1}, 0)

	got := Info(w)
	require.Equal(t, w.Index+1, got.Index)
	require.True(t, got.Pending.Equal(w.Pending))
	require.Equal(t, w.Model, got.Model)
}

func TestEquivalenceKeyDiscriminatesOnIndex(t *testing.T) {
	m := model.Register{}
	w1 := Initial(m)
	w2 := w1.advance()

	require.False(t, w1.Key().Equal(w2.Key()))
}

func TestEquivalenceKeyDiscriminatesOnModelAndPending(t *testing.T) {
	m := model.Register{}
	w1 := Initial(m)
	w2 := Initial(m)
	w2.Pending = w2.Pending.Add(history.Op{Type: history.Invoke, Process: 1, Function: "read"}, 0)

	require.False(t, w1.Key().Equal(w2.Key()))
}
