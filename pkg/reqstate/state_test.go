package reqstate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateHoldsExactlyOneVariant(t *testing.T) {
	idle := Idle[int]()
	require.True(t, idle.IsIdle())
	require.Nil(t, idle.Err())
	_, ok := idle.Value()
	require.False(t, ok)

	pending := Pending[int]()
	require.True(t, pending.IsPending())
	require.Nil(t, pending.Err())
	_, ok = pending.Value()
	require.False(t, ok)

	succeeded := Succeeded(42)
	require.True(t, succeeded.IsSucceeded())
	require.Nil(t, succeeded.Err())
	value, ok := succeeded.Value()
	require.True(t, ok)
	require.Equal(t, 42, value)

	boom := errors.New("boom")
	failed := Failed[int](boom)
	require.True(t, failed.IsFailed())
	require.Equal(t, boom, failed.Err())
	_, ok = failed.Value()
	require.False(t, ok)
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "idle", PhaseIdle.String())
	require.Equal(t, "pending", PhasePending.String())
	require.Equal(t, "succeeded", PhaseSucceeded.String())
	require.Equal(t, "failed", PhaseFailed.String())
}
