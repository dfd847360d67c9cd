package srtp

// Key derivation labels per RFC 3711 §4.3.1 / the Java source's
// deriveSrtpKeys: which derived key a KDF call is producing.
const (
	labelSRTPEncryption byte = 0x00
	labelSRTPAuth       byte = 0x01
	labelSRTPSalt       byte = 0x02
)

// deriveKey runs the RFC 3711 §4.3.1 key derivation function: it forms a
// 16-byte IV from the 14-byte masterSalt followed by two zero counter
// bytes, folds label into byte 7 (the position the Java source's
// deriveSrtpKeys XORs the label/index byte into), and fills outLen bytes
// of AES-CM (or Twofish-CM, per cipherKind) keystream from it. Only the
// label is folded in here; when the key derivation rate is non-zero,
// DeriveSrtpKeys XORs the index/kdr term into masterSalt bytes 8-13 before
// calling this.
func deriveKey(cipherKind EncryptionKind, masterKey, masterSalt []byte, label byte, outLen int) ([]byte, error) {
	block, err := newBlockCipher(cipherKind, masterKey)
	if err != nil {
		return nil, err
	}

	var iv [16]byte
	copy(iv[:14], masterSalt)
	iv[7] ^= label

	out := make([]byte, outLen)
	fillKeystream(block, iv, out)
	return out, nil
}

// derivedKeys holds the three session keys a CryptoContext needs for one
// direction of traffic, plus the precomputed F8 masked key when the
// policy's EncType is an F8 variant.
type derivedKeys struct {
	encKey    []byte
	authKey   []byte
	saltKey   []byte
	f8MaskKey []byte
}

// deriveSessionKeys runs the KDF for all three label values and, for F8
// policies, precomputes the masked key f8StreamXOR needs as its inner
// cipher key. Grounded directly on the Java source's deriveSrtpKeys, which
// performs the same three derivations plus the F8 mask-key XOR inline
// before zeroizing its working buffers.
func deriveSessionKeys(policy Policy, masterKey, masterSalt []byte) (derivedKeys, error) {
	var keys derivedKeys
	var err error

	keys.encKey, err = deriveKey(policy.EncType, masterKey, masterSalt, labelSRTPEncryption, policy.EncKeyLength)
	if err != nil {
		return derivedKeys{}, err
	}
	keys.authKey, err = deriveKey(policy.EncType, masterKey, masterSalt, labelSRTPAuth, policy.AuthKeyLength)
	if err != nil {
		return derivedKeys{}, err
	}
	keys.saltKey, err = deriveKey(policy.EncType, masterKey, masterSalt, labelSRTPSalt, policy.SaltKeyLength)
	if err != nil {
		return derivedKeys{}, err
	}

	if policy.EncType.usesF8() {
		keys.f8MaskKey = f8MaskedKey(keys.encKey, keys.saltKey)
	}

	return keys, nil
}
