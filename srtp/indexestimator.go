package srtp

// guessIndex recovers the 48-bit packet index (ROC<<16 | SEQ) from a
// 16-bit wire sequence number, following the index-estimation pseudocode
// in RFC 3711 Appendix A: it compares the new sequence number against
// the last-seen one within a 32768-wide window and picks
// whichever of roc-1, roc, roc+1 keeps the guessed index nearest the
// stored one. Returns the guessed index and the ROC that produced it;
// neither is committed to context state until the caller authenticates
// the packet.
func guessIndex(roc uint32, lastSeq uint16, seq uint16) (index uint64, guessedROC uint32) {
	switch {
	case lastSeq < seqNumMedian:
		if int(seq)-int(lastSeq) > seqNumMedian {
			guessedROC = roc - 1
		} else {
			guessedROC = roc
		}
	default:
		if int(lastSeq)-seqNumMedian > int(seq) {
			guessedROC = roc + 1
		} else {
			guessedROC = roc
		}
	}

	return uint64(guessedROC)<<16 | uint64(seq), guessedROC
}

const (
	seqNumMax    = 1 << 16
	seqNumMedian = seqNumMax / 2
)
