package session

import (
	"sync"

	"github.com/ossrs/go-oryx-lib/logger"
	"github.com/pion/rtp"
	"github.com/pkg/errors"

	"github.com/ossrs/go-srtp/srtp"
)

// Session demultiplexes one direction of SRTP traffic across multiple
// SSRCs, lazily creating and deriving a *srtp.CryptoContext per SSRC the
// first time it is seen. Grounded on pion/srtp's Context.getSRTPSSRCState:
// a mutex-guarded map keyed by SSRC, with new entries built from a shared
// master key/salt/policy rather than the crypto context out-of-scope
// dispatching itself.
//
// A Session owns one direction (all SSRCs it creates contexts for share
// the caller's role, either sending or receiving); running both directions
// for a call means holding two Sessions, same as two pion/srtp Contexts.
type Session struct {
	mu       sync.Mutex
	contexts map[uint32]*srtp.CryptoContext

	masterKey  []byte
	masterSalt []byte
	policy     srtp.Policy
	kdr        uint64
}

// NewSession builds a Session that will derive every SSRC's CryptoContext
// from the same master key, master salt, and policy. masterKey/masterSalt
// are copied here, and srtp.NewCryptoContext copies them again per SSRC
// (zeroizing only its own copy on derivation), so this Session's copy
// survives for the life of the session.
func NewSession(masterKey, masterSalt []byte, policy srtp.Policy, kdr uint64) *Session {
	return &Session{
		contexts:   make(map[uint32]*srtp.CryptoContext),
		masterKey:  append([]byte(nil), masterKey...),
		masterSalt: append([]byte(nil), masterSalt...),
		policy:     policy,
		kdr:        kdr,
	}
}

// contextFor returns the CryptoContext for ssrc, deriving session keys for
// it on first use: every new context must call DeriveSrtpKeys before
// Protect/Unprotect.
func (s *Session) contextFor(ssrc uint32) (*srtp.CryptoContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx, ok := s.contexts[ssrc]; ok {
		return ctx, nil
	}

	ctx, err := srtp.NewCryptoContext(ssrc, 0, s.kdr, s.masterKey, s.masterSalt, s.policy)
	if err != nil {
		return nil, errors.Wrapf(err, "new context for ssrc %d", ssrc)
	}
	if err := ctx.DeriveSrtpKeys(0); err != nil {
		return nil, errors.Wrapf(err, "derive keys for ssrc %d", ssrc)
	}

	logger.Tf(nil, "srtp session: new context for ssrc=%d", ssrc)
	s.contexts[ssrc] = ctx
	return ctx, nil
}

// Protect looks up (or creates) the CryptoContext for the packet's SSRC
// and encrypts it in place.
func (s *Session) Protect(pkt *srtp.Packet) error {
	var hdr rtp.Header
	if _, err := hdr.Unmarshal(pkt.Region()); err != nil {
		return errors.Wrap(err, "unmarshal rtp header")
	}

	ctx, err := s.contextFor(hdr.SSRC)
	if err != nil {
		return err
	}
	return ctx.Protect(pkt)
}

// Unprotect looks up (or creates) the CryptoContext for the packet's SSRC
// and verifies/decrypts it in place.
func (s *Session) Unprotect(pkt *srtp.Packet) (bool, error) {
	var hdr rtp.Header
	if _, err := hdr.Unmarshal(pkt.Region()); err != nil {
		return false, errors.Wrap(err, "unmarshal rtp header")
	}

	ctx, err := s.contextFor(hdr.SSRC)
	if err != nil {
		return false, err
	}
	return ctx.Unprotect(pkt)
}

// ROC reports the roll-over counter of an already-seen SSRC.
func (s *Session) ROC(ssrc uint32) (uint32, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx, ok := s.contexts[ssrc]
	if !ok {
		return 0, false
	}
	return ctx.ROC(), true
}

// SSRCs returns the SSRCs this Session currently holds contexts for.
func (s *Session) SSRCs() []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint32, 0, len(s.contexts))
	for ssrc := range s.contexts {
		out = append(out, ssrc)
	}
	return out
}
