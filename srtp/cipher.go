package srtp

import (
	"crypto/aes"
	"crypto/cipher"

	"golang.org/x/crypto/twofish"
)

// newBlockCipher builds the stdlib/x-crypto block cipher backing an
// EncryptionKind, keyed with key (Twofish for the Twofish kinds, AES for
// every other kind). AES/Twofish are re-keyed by building a new
// cipher.Block rather than mutating an existing one, since neither package
// exposes in-place re-keying.
//
// Callers only ever need BlockSize() and Encrypt(dst, src), both of which
// cipher.Block already provides, so no extra wrapper type is introduced.
func newBlockCipher(kind EncryptionKind, key []byte) (cipher.Block, error) {
	if kind.isTwofish() {
		return twofish.NewCipher(key)
	}
	return aes.NewCipher(key)
}

// blockSizeFor returns the block size a Policy's encryption kind will use,
// without requiring a key. Both AES and Twofish use 16-byte blocks, which
// is also the SRTP IV size the rest of this package assumes throughout.
func blockSizeFor(kind EncryptionKind) int {
	if kind.isTwofish() {
		return twofish.BlockSize
	}
	return aes.BlockSize
}
