package srtp

import "github.com/pkg/errors"

// Sentinel failures reported by CryptoContext. Unprotect never panics on
// bad input from the network; it reports one of these and the caller
// discards the packet. See errors.Is to distinguish them.
var (
	// ErrReplayRejected means the packet's estimated index falls outside
	// the replay window, or a bit already set in the window, relative to
	// the highest index accepted so far.
	ErrReplayRejected = errors.New("srtp: packet rejected by replay window")

	// ErrAuthFailure means the packet passed the replay check but its
	// authentication tag did not match. Context state is left untouched.
	ErrAuthFailure = errors.New("srtp: authentication tag mismatch")

	// ErrMisuseInFreshState means Protect or Unprotect was called before
	// DeriveSrtpKeys. This is a programming error, not a wire-level one.
	ErrMisuseInFreshState = errors.New("srtp: context has no session keys, call DeriveSrtpKeys first")

	// ErrUnsupportedPolicy means the Policy names an encryption or
	// authentication kind this package does not implement.
	ErrUnsupportedPolicy = errors.New("srtp: unsupported policy")

	errShortMasterKey  = errors.New("srtp: master key shorter than policy.EncKeyLength")
	errShortMasterSalt = errors.New("srtp: master salt shorter than policy.SaltKeyLength")
	errPacketTooShort  = errors.New("srtp: packet too short for RTP header")
	errTagTooShort     = errors.New("srtp: packet too short to hold authentication tag")
)
