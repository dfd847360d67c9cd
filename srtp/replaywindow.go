package srtp

// replayWindow is the 64-entry sliding-bitmask replay detector RFC 3711
// requires over 48-bit packet indices: bit k of mask corresponds to index
// (storedIndex - k) for k in [0, 63]; bit 0 is the last accepted index.
//
// Grounded on pion/transport's replaydetector.slidingWindowDetector
// (vendored under ossrs/srs-bench), adapted to a fixed 64-bit mask rather
// than an arbitrary-width fixedBigInt, and split into a pure Check/Commit
// pair instead of a Check-returns-a-commit-closure API, because here the
// commit must be deferrable past both the replay check and the
// authentication check: a forged packet that fails authentication must
// not move the window.
type replayWindow struct {
	mask uint64
}

// check reports whether guessedIndex should be accepted against
// storedIndex, and returns delta = guessedIndex - storedIndex for commit to
// reuse so the two don't recompute it differently.
func (w *replayWindow) check(storedIndex, guessedIndex uint64) (delta int64, accept bool) {
	delta = int64(guessedIndex) - int64(storedIndex)
	switch {
	case delta > 0:
		return delta, true
	case -delta >= 64:
		return delta, false
	default:
		bit := uint(-delta)
		return delta, w.mask&(1<<bit) == 0
	}
}

// commit records guessedIndex as accepted. Call only after authentication
// has succeeded.
func (w *replayWindow) commit(delta int64) {
	if delta > 0 {
		w.mask <<= uint64(delta)
		w.mask |= 1
	} else {
		w.mask |= 1 << uint64(-delta)
	}
}
