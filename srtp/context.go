package srtp

import (
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"

	"github.com/pion/rtp"
)

// contextState is the Fresh/Ready state a CryptoContext moves through once:
// Protect and Unprotect return ErrMisuseInFreshState until DeriveSrtpKeys
// has run.
type contextState int

const (
	stateFresh contextState = iota
	stateReady
)

// CryptoContext is the per-SSRC, per-direction SRTP cryptographic context:
// it owns master/session key material, the cipher and MAC instances derived
// from it, the roll-over counter and replay window, and the scratch buffers
// Protect/Unprotect reuse across calls.
//
// A CryptoContext is single-owner, single-threaded: callers must serialize
// all calls on one instance themselves, though distinct SSRCs may run on
// distinct goroutines without coordination.
type CryptoContext struct {
	ssrc   uint32
	roc    uint32
	kdr    uint64
	policy Policy

	state contextState

	masterKey  []byte
	masterSalt []byte

	salt []byte

	block   cipher.Block
	f8Inner cipher.Block
	mac     macAdapter

	seqInit bool
	lastSeq uint16
	window  replayWindow

	// Scratch buffers reused across Protect/Unprotect calls; never
	// allocated from inside either.
	ivStore  [16]byte
	tagStore []byte
	rbStore  [4]byte
}

// NewCryptoContext constructs a Fresh context for one SSRC. masterKey and
// masterSalt are copied, not aliased; the caller must still invoke
// DeriveSrtpKeys before Protect or Unprotect.
func NewCryptoContext(ssrc uint32, roc uint32, kdr uint64, masterKey, masterSalt []byte, policy Policy) (*CryptoContext, error) {
	if err := policy.validate(); err != nil {
		return nil, err
	}
	if policy.EncType != EncryptionNone && len(masterKey) < policy.EncKeyLength {
		return nil, errShortMasterKey
	}
	if policy.EncType != EncryptionNone && len(masterSalt) < policy.SaltKeyLength {
		return nil, errShortMasterSalt
	}

	c := &CryptoContext{
		ssrc:       ssrc,
		roc:        roc,
		kdr:        kdr,
		policy:     policy,
		masterKey:  append([]byte(nil), masterKey...),
		masterSalt: append([]byte(nil), masterSalt...),
	}
	return c, nil
}

// DeriveSrtpKeys runs the RFC 3711 §4.3 key derivation function against
// index, transitioning Fresh to Ready, and zeroizes the master key and
// salt. It is idempotent: once the context is Ready, later calls return nil
// without re-deriving, whatever index they pass. Fork a new context with
// DeriveContext before calling this, or carry the master material
// externally, if a second derivation is ever needed.
func (c *CryptoContext) DeriveSrtpKeys(index uint64) error {
	if c.state == stateReady {
		return nil
	}
	if c.policy.EncType == EncryptionNone && c.policy.AuthType == AuthenticationNone {
		zeroBytes(c.masterKey)
		zeroBytes(c.masterSalt)
		c.state = stateReady
		return nil
	}

	// key_id = label<<48 | index/kdr. deriveKey folds the label into byte 7
	// of the IV; the 48-bit index/kdr term lands on bytes 8-13, applied here
	// to a copy of the master salt.
	salt := c.masterSalt
	if c.kdr != 0 {
		salt = append([]byte(nil), c.masterSalt...)
		defer zeroBytes(salt)
		r := index / c.kdr
		for i := 8; i < 14 && i < len(salt); i++ {
			salt[i] ^= byte(r >> (8 * uint(13-i)))
		}
	}

	keys, err := deriveSessionKeys(c.policy, c.masterKey, salt)
	if err != nil {
		return err
	}

	if c.policy.EncType != EncryptionNone {
		c.block, err = newBlockCipher(c.policy.EncType, keys.encKey)
		if err != nil {
			return err
		}
		if c.policy.EncType.usesF8() {
			c.f8Inner, err = newBlockCipher(c.policy.EncType, keys.f8MaskKey)
			if err != nil {
				return err
			}
		}
		c.salt = keys.saltKey
	}

	if c.policy.AuthType != AuthenticationNone {
		c.mac, err = newMacAdapter(c.policy.AuthType, c.policy.AuthTagLength)
		if err != nil {
			return err
		}
		c.mac.init(keys.authKey)
		// tagStore must hold the MAC's native output length, not the
		// truncated AuthTagLength: finalize always writes a full-length
		// tag, and truncation happens only when it is sliced for
		// append/compare below.
		c.tagStore = make([]byte, c.mac.size())
	}

	// Zeroize master key, session auth key (already loaded into the MAC
	// above), session encryption key (already loaded into the cipher
	// above), then master salt, once each is no longer needed in the clear.
	zeroBytes(c.masterKey)
	zeroBytes(keys.authKey)
	zeroBytes(keys.encKey)
	zeroBytes(c.masterSalt)

	c.state = stateReady
	return nil
}

// DeriveContext forks a new Fresh context for a different SSRC, sharing
// this context's master key, master salt, and kdr. It must be called
// before this context's own DeriveSrtpKeys: calling it after leaves the
// fork with zeroized master material, which it will then happily (and
// uselessly) derive keys from.
func (c *CryptoContext) DeriveContext(ssrc uint32, roc uint32) (*CryptoContext, error) {
	return NewCryptoContext(ssrc, roc, c.kdr, c.masterKey, c.masterSalt, c.policy)
}

// AuthTagLength returns the configured MAC output length in bytes, 0 if
// authentication is disabled.
func (c *CryptoContext) AuthTagLength() int {
	if c.policy.AuthType == AuthenticationNone {
		return 0
	}
	return c.policy.AuthTagLength
}

// MKILength always returns 0: MKI is reserved but never emitted or parsed.
func (c *CryptoContext) MKILength() int { return 0 }

// SSRC returns the synchronization source this context protects.
func (c *CryptoContext) SSRC() uint32 { return c.ssrc }

// ROC returns the current roll-over counter.
func (c *CryptoContext) ROC() uint32 { return c.roc }

// SetROC overwrites the roll-over counter, e.g. when a context is primed
// from out-of-band signaling rather than starting at 0.
func (c *CryptoContext) SetROC(roc uint32) { c.roc = roc }

// Protect encrypts pkt's payload in place and appends the authentication
// tag. pkt must start at an RTP header; Protect appends to its logical
// length via Packet.Append.
func (c *CryptoContext) Protect(pkt *Packet) error {
	if c.state != stateReady {
		return ErrMisuseInFreshState
	}

	var hdr rtp.Header
	payloadOffset, err := hdr.Unmarshal(pkt.Region())
	if err != nil {
		return errPacketTooShort
	}

	if c.policy.EncType != EncryptionNone {
		payload := pkt.Region()[payloadOffset:]
		if err := c.encryptRegion(&hdr, payload); err != nil {
			return err
		}
	}

	if c.policy.AuthType != AuthenticationNone {
		binary.BigEndian.PutUint32(c.rbStore[:], c.roc)
		c.mac.update(pkt.Region())
		c.mac.update(c.rbStore[:])
		c.mac.finalize(c.tagStore)
		pkt.Append(c.tagStore[:c.policy.AuthTagLength], c.policy.AuthTagLength)
	}

	if hdr.SequenceNumber == 0xFFFF {
		c.roc++
	}

	return nil
}

// Unprotect verifies and decrypts pkt in place. It returns
// (true, nil) on acceptance; (false, err) on a reported failure kind, with
// err matching ErrReplayRejected or ErrAuthFailure via errors.Is; and
// (false, err) with another non-nil error for malformed input or misuse.
func (c *CryptoContext) Unprotect(pkt *Packet) (bool, error) {
	if c.state != stateReady {
		return false, ErrMisuseInFreshState
	}

	var hdr rtp.Header
	payloadOffset, err := hdr.Unmarshal(pkt.Region())
	if err != nil {
		return false, errPacketTooShort
	}

	// The first packet seeds lastSeq in a local copy only; nothing is
	// committed to c until the packet has passed authentication.
	lastSeq := c.lastSeq
	if !c.seqInit {
		lastSeq = hdr.SequenceNumber
	}

	guessedIndex, guessedROC := guessIndex(c.roc, lastSeq, hdr.SequenceNumber)
	storedIndex := uint64(c.roc)<<16 | uint64(lastSeq)

	delta, accept := c.window.check(storedIndex, guessedIndex)
	if !accept {
		return false, ErrReplayRejected
	}

	if c.policy.AuthType != AuthenticationNone {
		tagLen := c.policy.AuthTagLength
		if pkt.Length() < tagLen {
			return false, errTagTooShort
		}
		var receivedTag [64]byte
		pkt.ReadRegionToBuff(pkt.Length()-tagLen, tagLen, receivedTag[:tagLen])
		pkt.Shrink(tagLen)

		binary.BigEndian.PutUint32(c.rbStore[:], guessedROC)
		c.mac.update(pkt.Region())
		c.mac.update(c.rbStore[:])
		c.mac.finalize(c.tagStore)

		if subtle.ConstantTimeCompare(receivedTag[:tagLen], c.tagStore[:tagLen]) != 1 {
			return false, ErrAuthFailure
		}
	}

	if c.policy.EncType != EncryptionNone {
		payload := pkt.Region()[payloadOffset:]
		if err := c.decryptRegion(&hdr, guessedROC, payload); err != nil {
			return false, err
		}
	}

	c.window.commit(delta)
	c.seqInit = true
	c.lastSeq = lastSeq
	if hdr.SequenceNumber > c.lastSeq {
		c.lastSeq = hdr.SequenceNumber
	}
	if guessedROC > c.roc {
		c.roc = guessedROC
		c.lastSeq = hdr.SequenceNumber
	}

	return true, nil
}

// encryptRegion dispatches to CM or F8 keystream generation for payload,
// using the current roc: the pre-increment value, since the 0xFFFF
// rollover check runs only after this returns.
func (c *CryptoContext) encryptRegion(hdr *rtp.Header, payload []byte) error {
	if c.policy.EncType.usesF8() {
		c.formF8IV(hdr)
		f8StreamXOR(c.block, c.f8Inner, c.ivStore, payload)
		return nil
	}
	c.formCMIV(hdr.SSRC, c.roc, hdr.SequenceNumber)
	counterStreamXOR(c.block, c.ivStore, payload)
	return nil
}

func (c *CryptoContext) decryptRegion(hdr *rtp.Header, roc uint32, payload []byte) error {
	if c.policy.EncType.usesF8() {
		c.formF8IVWithROC(hdr, roc)
		f8StreamXOR(c.block, c.f8Inner, c.ivStore, payload)
		return nil
	}
	c.formCMIV(hdr.SSRC, roc, hdr.SequenceNumber)
	counterStreamXOR(c.block, c.ivStore, payload)
	return nil
}

// formCMIV builds the AES/Twofish counter-mode IV: bytes 0-3 from salt
// unchanged, bytes 4-7 SSRC XOR salt, bytes 8-13 the 48-bit index XOR
// salt, bytes 14-15 zero (the block counter counterStreamXOR owns).
func (c *CryptoContext) formCMIV(ssrc, roc uint32, seq uint16) {
	var iv [16]byte
	copy(iv[:8], c.salt[:8])

	var ssrcBytes [4]byte
	binary.BigEndian.PutUint32(ssrcBytes[:], ssrc)
	for i := 0; i < 4; i++ {
		iv[4+i] ^= ssrcBytes[i]
	}

	var idx [6]byte
	index := uint64(roc)<<16 | uint64(seq)
	idx[0] = byte(index >> 40)
	idx[1] = byte(index >> 32)
	idx[2] = byte(index >> 24)
	idx[3] = byte(index >> 16)
	idx[4] = byte(index >> 8)
	idx[5] = byte(index)
	for i := 0; i < 6; i++ {
		iv[8+i] = c.salt[8+i] ^ idx[i]
	}

	c.ivStore = iv
}

// formF8IV builds the F8-mode IV for protect, using this context's current
// roc.
func (c *CryptoContext) formF8IV(hdr *rtp.Header) {
	c.formF8IVWithROC(hdr, c.roc)
}

// formF8IVWithROC builds the F8-mode IV per RFC 3711 §4.1.2: the first 12
// bytes of the RTP header with byte 0 zeroed, followed by roc big-endian.
func (c *CryptoContext) formF8IVWithROC(hdr *rtp.Header, roc uint32) {
	var iv [16]byte
	iv[0] = 0
	iv[1] = boolToByte(hdr.Marker)<<7 | hdr.PayloadType&0x7f
	binary.BigEndian.PutUint16(iv[2:4], hdr.SequenceNumber)
	binary.BigEndian.PutUint32(iv[4:8], hdr.Timestamp)
	binary.BigEndian.PutUint32(iv[8:12], hdr.SSRC)
	binary.BigEndian.PutUint32(iv[12:16], roc)
	c.ivStore = iv
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
