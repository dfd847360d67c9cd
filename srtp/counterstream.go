package srtp

import (
	"crypto/cipher"
	"encoding/binary"
)

// counterStreamXOR produces len(dst) bytes of AES/Twofish-CM keystream from
// block and iv, and XORs them into dst in place (RFC 3711 §4.1.1).
//
// Only bytes 14-15 of iv act as the block counter, starting at whatever
// value they already hold and wrapping within 16 bits; bytes 0-13 are held
// fixed for the whole call. This is RFC 3711's definition, not generic
// CTR-mode counting over the full 128-bit block (which pion/srtp's
// incrementCTR does, and which would only diverge from this after 2^16
// blocks: outside any single SRTP packet, but exactly what key derivation
// relies on to fill a full-length keystream starting the counter at zero).
func counterStreamXOR(block cipher.Block, iv [16]byte, dst []byte) {
	bs := block.BlockSize()
	work := iv
	counter := binary.BigEndian.Uint16(work[14:16])

	var streamBlock [16]byte
	for i := 0; i < len(dst); i += bs {
		binary.BigEndian.PutUint16(work[14:16], counter)
		block.Encrypt(streamBlock[:bs], work[:bs])

		end := i + bs
		if end > len(dst) {
			end = len(dst)
		}
		for j := i; j < end; j++ {
			dst[j] ^= streamBlock[j-i]
		}
		counter++
	}
}

// fillKeystream writes len(dst) bytes of pure CM keystream into dst, used
// by key derivation where dst starts zeroed so XOR-in-place is equivalent
// to assignment.
func fillKeystream(block cipher.Block, iv [16]byte, dst []byte) {
	for i := range dst {
		dst[i] = 0
	}
	counterStreamXOR(block, iv, dst)
}
