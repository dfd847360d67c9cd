package srtp

import "crypto/subtle"

// zeroBytes overwrites b with zeros. Adapted from
// wbd2023-UNSW-COMP6841-Ciphera's internal/util/memzero.Zero: a
// subtle.ConstantTimeCopy rather than a plain loop so the compiler has a
// harder time proving the write is dead and eliding it, same reasoning
// Ciphera's comment gives for its own memzero helper.
func zeroBytes(b []byte) {
	if len(b) == 0 {
		return
	}
	zero := make([]byte, len(b))
	subtle.ConstantTimeCopy(1, b, zero)
}
