package srtp

import (
	"crypto/cipher"
	"encoding/binary"
)

// f8MaskedKey derives the inner F8 cipher's key, K xor m, per RFC 3711
// §4.1.2: m is the session salt padded with 0x55 out to the key length.
func f8MaskedKey(encKey, salt []byte) []byte {
	m := make([]byte, len(encKey))
	copy(m, salt)
	for i := len(salt); i < len(m); i++ {
		m[i] = 0x55
	}
	masked := make([]byte, len(encKey))
	for i := range masked {
		masked[i] = encKey[i] ^ m[i]
	}
	return masked
}

// f8StreamXOR produces SRTP F8-mode keystream and XORs it into dst in
// place (RFC 3711 §4.1.2). outer is keyed with the session encryption key;
// inner is keyed with the masked key from f8MaskedKey, computed once during
// key derivation. ivF8 is the 16-byte F8 IV formed from the RTP header.
func f8StreamXOR(outer, inner cipher.Block, ivF8 [16]byte, dst []byte) {
	bs := outer.BlockSize()

	// seed is IV' = E(maskedKey, IV_F8), the fixed term XORed into every
	// round. ivLast starts at S(-1) = 0 (the all-zero block) and becomes
	// S(j-1) on each later round: S(j) = E(k_e, IV' xor S(j-1) xor j).
	var seed [16]byte
	inner.Encrypt(seed[:bs], ivF8[:bs])

	var ivLast [16]byte
	var block [16]byte
	var counter uint32

	for i := 0; i < len(dst); i += bs {
		for j := 0; j < bs; j++ {
			block[j] = seed[j] ^ ivLast[j]
		}
		var counterBytes [4]byte
		binary.BigEndian.PutUint32(counterBytes[:], counter)
		for j := 0; j < 4 && bs-4+j < bs; j++ {
			block[bs-4+j] ^= counterBytes[j]
		}

		var stream [16]byte
		outer.Encrypt(stream[:bs], block[:bs])

		end := i + bs
		if end > len(dst) {
			end = len(dst)
		}
		for j := i; j < end; j++ {
			dst[j] ^= stream[j-i]
		}

		copy(ivLast[:bs], stream[:bs])
		counter++
	}
}
