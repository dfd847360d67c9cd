package srtp

import (
	"crypto/hmac"
	"crypto/sha1" //nolint:gosec // SRTP's mandatory-to-implement MAC per RFC 3711 §4.2
	"hash"

	"golang.org/x/crypto/blake2b"
)

// macAdapter is the uniform wrapper over HMAC-SHA1 and Skein-MAC: init
// keys the MAC, update feeds bytes, finalize writes the native-length
// tag. Truncation to Policy.AuthTagLength happens in the caller
// (CryptoContext), not here: finalize always writes a full-length tag
// into a buffer the caller sized appropriately.
type macAdapter interface {
	init(key []byte)
	update(b []byte)
	finalize(dst []byte)
	size() int
}

// newMacAdapter builds the macAdapter for a Policy's AuthenticationKind.
// tagLength is Policy.AuthTagLength, needed up front for Skein-MAC because
// Skein's MAC output length is a parameter of the hash itself, not of
// truncation after the fact.
func newMacAdapter(kind AuthenticationKind, tagLength int) (macAdapter, error) {
	switch kind {
	case AuthenticationHMACSHA1:
		return &hmacSHA1Adapter{}, nil
	case AuthenticationSkeinMAC:
		return &skeinMACAdapter{tagLength: tagLength}, nil
	default:
		return nil, ErrUnsupportedPolicy
	}
}

// hmacSHA1Adapter wraps crypto/hmac over crypto/sha1, the primitive
// pion/srtp's srtpCipherAesCmHmacSha1 uses directly (hmac.New(sha1.New, key)).
type hmacSHA1Adapter struct {
	h hash.Hash
}

func (a *hmacSHA1Adapter) init(key []byte) {
	a.h = hmac.New(sha1.New, key)
}

func (a *hmacSHA1Adapter) update(b []byte) {
	a.h.Write(b) //nolint:errcheck // hash.Hash.Write never returns an error
}

func (a *hmacSHA1Adapter) finalize(dst []byte) {
	a.h.Sum(dst[:0])
	a.h.Reset()
}

func (a *hmacSHA1Adapter) size() int {
	return sha1.Size
}

// skeinMACAdapter is the second AuthenticationKind, named "Skein-MAC" for
// API parity with the policy this core was distilled from, backed here by
// blake2b's keyed mode rather than Skein itself.
type skeinMACAdapter struct {
	tagLength int
	h         hash.Hash
}

func (a *skeinMACAdapter) init(key []byte) {
	h, err := blake2b.New(a.tagLength, key)
	if err != nil {
		// blake2b.New rejects keys > 64 bytes and sizes > 64 bytes; a
		// Policy naming AuthenticationSkeinMAC with a workable
		// AuthKeyLength/AuthTagLength never hits this, so a panic here
		// means the Policy passed validate() with an unusable size.
		panic(err)
	}
	a.h = h
}

func (a *skeinMACAdapter) update(b []byte) {
	a.h.Write(b) //nolint:errcheck // hash.Hash.Write never returns an error
}

func (a *skeinMACAdapter) finalize(dst []byte) {
	a.h.Sum(dst[:0])
	a.h.Reset()
}

func (a *skeinMACAdapter) size() int {
	return a.tagLength
}
