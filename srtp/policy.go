package srtp

import "fmt"

// EncryptionKind selects the confidentiality transform a Policy applies to
// the RTP payload. Exactly one is active for the lifetime of a
// CryptoContext; the zero value is EncryptionNone.
type EncryptionKind int

const (
	EncryptionNone EncryptionKind = iota
	EncryptionAESCM
	EncryptionAESF8
	EncryptionTwofishCM
	EncryptionTwofishF8
)

func (k EncryptionKind) String() string {
	switch k {
	case EncryptionNone:
		return "none"
	case EncryptionAESCM:
		return "AES-CM"
	case EncryptionAESF8:
		return "AES-F8"
	case EncryptionTwofishCM:
		return "Twofish-CM"
	case EncryptionTwofishF8:
		return "Twofish-F8"
	default:
		return fmt.Sprintf("EncryptionKind(%d)", int(k))
	}
}

// usesF8 reports whether the encryption kind needs a second, inner cipher
// instance keyed with the masked key (RFC 3711 §4.1.2).
func (k EncryptionKind) usesF8() bool {
	return k == EncryptionAESF8 || k == EncryptionTwofishF8
}

func (k EncryptionKind) isTwofish() bool {
	return k == EncryptionTwofishCM || k == EncryptionTwofishF8
}

// AuthenticationKind selects the integrity transform a Policy applies.
type AuthenticationKind int

const (
	AuthenticationNone AuthenticationKind = iota
	AuthenticationHMACSHA1
	AuthenticationSkeinMAC
)

func (k AuthenticationKind) String() string {
	switch k {
	case AuthenticationNone:
		return "none"
	case AuthenticationHMACSHA1:
		return "HMAC-SHA1"
	case AuthenticationSkeinMAC:
		return "Skein-MAC"
	default:
		return fmt.Sprintf("AuthenticationKind(%d)", int(k))
	}
}

// Policy is the immutable description of algorithm choices and lengths for
// one CryptoContext. A Policy is never mutated after construction and may
// be shared by any number of contexts, including a sender/receiver pair
// that must agree on it out of band.
type Policy struct {
	EncType EncryptionKind
	AuthType AuthenticationKind

	// EncKeyLength is the session encryption key length in bytes, typically
	// 16 (AES-128/Twofish-128) or 32.
	EncKeyLength int
	// SaltKeyLength is the session salt key length in bytes, typically 14.
	SaltKeyLength int
	// AuthKeyLength is the session authentication key length in bytes.
	AuthKeyLength int
	// AuthTagLength is the number of bytes the MAC output is truncated to
	// before it is appended to (or compared against) the packet.
	AuthTagLength int
}

// validate checks that the policy names algorithm kinds this package
// implements and that the configured lengths are usable. It is called once,
// at CryptoContext construction, and returns ErrUnsupportedPolicy on
// rejection.
func (p *Policy) validate() error {
	switch p.EncType {
	case EncryptionNone, EncryptionAESCM, EncryptionAESF8, EncryptionTwofishCM, EncryptionTwofishF8:
	default:
		return fmt.Errorf("%w: encryption kind %v", ErrUnsupportedPolicy, p.EncType)
	}
	switch p.AuthType {
	case AuthenticationNone, AuthenticationHMACSHA1, AuthenticationSkeinMAC:
	default:
		return fmt.Errorf("%w: authentication kind %v", ErrUnsupportedPolicy, p.AuthType)
	}
	if p.EncType != EncryptionNone && p.EncKeyLength <= 0 {
		return fmt.Errorf("%w: non-zero EncKeyLength required for %v", ErrUnsupportedPolicy, p.EncType)
	}
	if p.EncType != EncryptionNone && p.SaltKeyLength <= 0 {
		return fmt.Errorf("%w: non-zero SaltKeyLength required for %v", ErrUnsupportedPolicy, p.EncType)
	}
	if p.AuthType != AuthenticationNone && (p.AuthKeyLength <= 0 || p.AuthTagLength <= 0) {
		return fmt.Errorf("%w: non-zero AuthKeyLength/AuthTagLength required for %v", ErrUnsupportedPolicy, p.AuthType)
	}
	if p.EncType != EncryptionNone && blockSizeFor(p.EncType) != 16 {
		// CryptoContext's IV and keystream scratch buffers are fixed at 16
		// bytes throughout; a cipher with any other block size would
		// silently truncate or overrun them.
		return fmt.Errorf("%w: %v has a non-16-byte block size", ErrUnsupportedPolicy, p.EncType)
	}
	return nil
}

// Named presets, one per protection profile the pack's SRTP consumers
// (pion/srtp's ProtectionProfile, the Java SRTPPolicy this core was
// distilled from) construct by name rather than by filling in every field.
// These build a Policy value; nothing about Policy itself requires using
// them.
var (
	// ProfileAESCM128HMACSHA180 is the mandatory-to-implement RFC 3711
	// default: AES-128 counter mode, HMAC-SHA1 truncated to 80 bits.
	ProfileAESCM128HMACSHA180 = Policy{
		EncType:       EncryptionAESCM,
		AuthType:      AuthenticationHMACSHA1,
		EncKeyLength:  16,
		SaltKeyLength: 14,
		AuthKeyLength: 20,
		AuthTagLength: 10,
	}

	// ProfileAESCM128HMACSHA132 is the same cipher with the shorter,
	// bandwidth-sensitive 32-bit tag.
	ProfileAESCM128HMACSHA132 = Policy{
		EncType:       EncryptionAESCM,
		AuthType:      AuthenticationHMACSHA1,
		EncKeyLength:  16,
		SaltKeyLength: 14,
		AuthKeyLength: 20,
		AuthTagLength: 4,
	}

	// ProfileAESF8128HMACSHA180 swaps counter mode for F8 mode, used by
	// 3GPP profiles layered on top of RFC 3711.
	ProfileAESF8128HMACSHA180 = Policy{
		EncType:       EncryptionAESF8,
		AuthType:      AuthenticationHMACSHA1,
		EncKeyLength:  16,
		SaltKeyLength: 14,
		AuthKeyLength: 20,
		AuthTagLength: 10,
	}

	// ProfileTwofishCM128SkeinMAC128 pairs Twofish-CM with Skein-MAC, the
	// combination the Java source this core was distilled from supports
	// alongside AES/HMAC-SHA1.
	ProfileTwofishCM128SkeinMAC128 = Policy{
		EncType:       EncryptionTwofishCM,
		AuthType:      AuthenticationSkeinMAC,
		EncKeyLength:  16,
		SaltKeyLength: 14,
		AuthKeyLength: 16,
		AuthTagLength: 16,
	}

	// ProfileNullNullNull disables both encryption and authentication.
	// Exists so callers can compile it as an ordinary Policy value rather
	// than special-casing "no SRTP" in application code; it still leaves
	// traffic unprotected and should not be shipped on the wire.
	ProfileNullNullNull = Policy{
		EncType:  EncryptionNone,
		AuthType: AuthenticationNone,
	}
)
