package srtp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplayWindowAcceptsFutureIndex(t *testing.T) {
	var w replayWindow
	delta, accept := w.check(100, 105)
	require.True(t, accept)
	require.EqualValues(t, 5, delta)
}

func TestReplayWindowRejectsTooOld(t *testing.T) {
	var w replayWindow
	_, accept := w.check(100, 35)
	require.False(t, accept)
}

func TestReplayWindowAcceptsWithinWindowUnseenThenRejectsDuplicate(t *testing.T) {
	var w replayWindow
	delta, accept := w.check(100, 95)
	require.True(t, accept)
	w.commit(delta)

	_, accept = w.check(100, 95)
	require.False(t, accept)
}

func TestReplayWindowOutOfOrderWithinWindowAcceptedOnce(t *testing.T) {
	var w replayWindow
	stored := uint64(1000)

	order := []uint64{1005, 1003, 1004, 1001, 1002}
	for _, idx := range order {
		delta, accept := w.check(stored, idx)
		require.True(t, accept, "index %d should be accepted", idx)
		w.commit(delta)
		if delta > 0 {
			stored = idx
		}
	}

	for _, idx := range order {
		_, accept := w.check(stored, idx)
		require.False(t, accept, "index %d should now be rejected as replayed", idx)
	}
}

func TestReplayWindowBoundaryAt64(t *testing.T) {
	var w replayWindow
	_, accept := w.check(256, 192) // 64 behind: too old.
	require.False(t, accept)

	_, accept = w.check(256, 193) // 63 behind: still in window.
	require.True(t, accept)
}

func TestReplayWindowCommitShiftsOnAdvance(t *testing.T) {
	var w replayWindow
	delta, accept := w.check(0, 0)
	require.True(t, accept)
	w.commit(delta)

	delta, accept = w.check(0, 3)
	require.True(t, accept)
	w.commit(delta)

	// Index 3 is now the stored index at bit 0; index 0 moved to bit 3,
	// while 1 and 2 were never seen and stay clear.
	_, accept = w.check(3, 3)
	require.False(t, accept)
	_, accept = w.check(3, 0)
	require.False(t, accept)
	_, accept = w.check(3, 1)
	require.True(t, accept)
}
