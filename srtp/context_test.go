package srtp

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/require"
)

func buildRTPPacket(t *testing.T, ssrc uint32, seq uint16, payload []byte) *Packet {
	hdr := rtp.Header{
		Version:        2,
		PayloadType:    96,
		SequenceNumber: seq,
		Timestamp:      12345,
		SSRC:           ssrc,
	}
	raw, err := hdr.Marshal()
	require.NoError(t, err)
	raw = append(raw, payload...)
	return NewPacket(raw)
}

func newPairedContexts(t *testing.T, policy Policy) (*CryptoContext, *CryptoContext) {
	masterKey := make([]byte, 16)
	masterSalt := make([]byte, 14)
	for i := range masterKey {
		masterKey[i] = byte(i + 1)
	}
	for i := range masterSalt {
		masterSalt[i] = byte(i + 30)
	}

	sender, err := NewCryptoContext(0xCAFEBABE, 0, 0, masterKey, masterSalt, policy)
	require.NoError(t, err)
	require.NoError(t, sender.DeriveSrtpKeys(0))

	receiver, err := NewCryptoContext(0xCAFEBABE, 0, 0, masterKey, masterSalt, policy)
	require.NoError(t, err)
	require.NoError(t, receiver.DeriveSrtpKeys(0))

	return sender, receiver
}

func TestCryptoContextRoundTripAESCM(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileAESCM128HMACSHA180)

	payload := []byte("this is an rtp payload")
	pkt := buildRTPPacket(t, 0xCAFEBABE, 0, payload)

	require.NoError(t, sender.Protect(pkt))

	ok, err := receiver.Unprotect(pkt)
	require.NoError(t, err)
	require.True(t, ok)

	var hdr rtp.Header
	payloadOffset, err := hdr.Unmarshal(pkt.Region())
	require.NoError(t, err)
	require.Equal(t, payload, pkt.Region()[payloadOffset:])
}

func TestCryptoContextRoundTripAESF8(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileAESF8128HMACSHA180)

	payload := []byte("f8 mode payload exercising the inner cipher")
	pkt := buildRTPPacket(t, 0xCAFEBABE, 7, payload)

	require.NoError(t, sender.Protect(pkt))
	ok, err := receiver.Unprotect(pkt)
	require.NoError(t, err)
	require.True(t, ok)

	var hdr rtp.Header
	payloadOffset, err := hdr.Unmarshal(pkt.Region())
	require.NoError(t, err)
	require.Equal(t, payload, pkt.Region()[payloadOffset:])
}

func TestCryptoContextRoundTripTwofishCMSkeinMAC(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileTwofishCM128SkeinMAC128)

	payload := []byte("twofish plus skein mac substitute")
	pkt := buildRTPPacket(t, 0xCAFEBABE, 3, payload)

	require.NoError(t, sender.Protect(pkt))
	ok, err := receiver.Unprotect(pkt)
	require.NoError(t, err)
	require.True(t, ok)

	var hdr rtp.Header
	payloadOffset, err := hdr.Unmarshal(pkt.Region())
	require.NoError(t, err)
	require.Equal(t, payload, pkt.Region()[payloadOffset:])
}

func TestCryptoContextReplayRejected(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileAESCM128HMACSHA180)

	pkt := buildRTPPacket(t, 0xCAFEBABE, 0, []byte("payload"))
	require.NoError(t, sender.Protect(pkt))

	raw := append([]byte(nil), pkt.Buffer()[:pkt.Length()]...)

	ok, err := receiver.Unprotect(pkt)
	require.NoError(t, err)
	require.True(t, ok)

	replay := NewPacket(raw)
	ok, err = receiver.Unprotect(replay)
	require.ErrorIs(t, err, ErrReplayRejected)
	require.False(t, ok)
}

func TestCryptoContextReplayThenFreshStillSucceeds(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileAESCM128HMACSHA180)

	pkt0 := buildRTPPacket(t, 0xCAFEBABE, 0, []byte("payload-0"))
	require.NoError(t, sender.Protect(pkt0))
	raw0 := append([]byte(nil), pkt0.Buffer()[:pkt0.Length()]...)

	ok, err := receiver.Unprotect(pkt0)
	require.NoError(t, err)
	require.True(t, ok)

	replay := NewPacket(raw0)
	_, err = receiver.Unprotect(replay)
	require.ErrorIs(t, err, ErrReplayRejected)

	pkt1 := buildRTPPacket(t, 0xCAFEBABE, 1, []byte("payload-1"))
	require.NoError(t, sender.Protect(pkt1))
	ok, err = receiver.Unprotect(pkt1)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCryptoContextOutOfOrderWithinWindowAcceptedOnce(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileAESCM128HMACSHA180)

	seqs := []uint16{5, 3, 4, 1, 2, 0}
	raws := make(map[uint16][]byte)
	for _, seq := range seqs {
		pkt := buildRTPPacket(t, 0xCAFEBABE, seq, []byte("payload"))
		require.NoError(t, sender.Protect(pkt))
		raws[seq] = append([]byte(nil), pkt.Buffer()[:pkt.Length()]...)
	}

	for _, seq := range seqs {
		ok, err := receiver.Unprotect(NewPacket(append([]byte(nil), raws[seq]...)))
		require.NoError(t, err)
		require.True(t, ok, "sequence %d should be accepted", seq)
	}

	for _, seq := range seqs {
		ok, _ := receiver.Unprotect(NewPacket(append([]byte(nil), raws[seq]...)))
		require.False(t, ok, "sequence %d should now be rejected as replayed", seq)
	}
}

func TestCryptoContextSequenceWraparoundIncrementsROC(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileAESCM128HMACSHA180)

	for _, seq := range []uint16{0xFFFE, 0xFFFF, 0x0000} {
		pkt := buildRTPPacket(t, 0xCAFEBABE, seq, []byte("payload"))
		require.NoError(t, sender.Protect(pkt))
		ok, err := receiver.Unprotect(pkt)
		require.NoError(t, err)
		require.True(t, ok, "sequence %#x should be accepted", seq)
	}

	require.EqualValues(t, 1, receiver.ROC())
	require.EqualValues(t, 1, sender.ROC())
}

func TestCryptoContextBitFlipInPayloadFailsAuth(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileAESCM128HMACSHA180)

	pkt := buildRTPPacket(t, 0xCAFEBABE, 0, []byte("payload"))
	require.NoError(t, sender.Protect(pkt))

	pkt.Buffer()[12] ^= 0x01 // first byte of the encrypted payload

	ok, err := receiver.Unprotect(pkt)
	require.ErrorIs(t, err, ErrAuthFailure)
	require.False(t, ok)
}

func TestCryptoContextBitFlipInTagFailsAuth(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileAESCM128HMACSHA180)

	pkt := buildRTPPacket(t, 0xCAFEBABE, 0, []byte("payload"))
	require.NoError(t, sender.Protect(pkt))

	last := pkt.Length() - 1
	pkt.Buffer()[last] ^= 0x01

	ok, err := receiver.Unprotect(pkt)
	require.ErrorIs(t, err, ErrAuthFailure)
	require.False(t, ok)
}

func TestCryptoContextProtectBeforeDeriveIsMisuse(t *testing.T) {
	ctx, err := NewCryptoContext(1, 0, 0, make([]byte, 16), make([]byte, 14), ProfileAESCM128HMACSHA180)
	require.NoError(t, err)

	pkt := buildRTPPacket(t, 1, 0, []byte("payload"))
	err = ctx.Protect(pkt)
	require.ErrorIs(t, err, ErrMisuseInFreshState)
}

func TestCryptoContextProtectRejectsTruncatedPacket(t *testing.T) {
	ctx, err := NewCryptoContext(1, 0, 0, make([]byte, 16), make([]byte, 14), ProfileAESCM128HMACSHA180)
	require.NoError(t, err)
	require.NoError(t, ctx.DeriveSrtpKeys(0))

	pkt := NewPacket([]byte{0x80, 0x60})
	err = ctx.Protect(pkt)
	require.ErrorIs(t, err, errPacketTooShort)
}

func TestCryptoContextUnprotectRejectsTruncatedPacket(t *testing.T) {
	ctx, err := NewCryptoContext(1, 0, 0, make([]byte, 16), make([]byte, 14), ProfileAESCM128HMACSHA180)
	require.NoError(t, err)
	require.NoError(t, ctx.DeriveSrtpKeys(0))

	pkt := NewPacket([]byte{0x80, 0x60})
	ok, err := ctx.Unprotect(pkt)
	require.False(t, ok)
	require.ErrorIs(t, err, errPacketTooShort)
}

func TestCryptoContextDeriveSrtpKeysZeroizesMasterMaterial(t *testing.T) {
	masterKey := make([]byte, 16)
	masterSalt := make([]byte, 14)
	for i := range masterKey {
		masterKey[i] = byte(i + 1)
	}
	for i := range masterSalt {
		masterSalt[i] = byte(i + 1)
	}

	ctx, err := NewCryptoContext(1, 0, 0, masterKey, masterSalt, ProfileAESCM128HMACSHA180)
	require.NoError(t, err)
	require.NoError(t, ctx.DeriveSrtpKeys(0))

	for _, b := range ctx.masterKey {
		require.EqualValues(t, 0, b)
	}
	for _, b := range ctx.masterSalt {
		require.EqualValues(t, 0, b)
	}
}

func TestCryptoContextDeriveContextForksMasterMaterialBeforeDerive(t *testing.T) {
	masterKey := make([]byte, 16)
	masterSalt := make([]byte, 14)
	for i := range masterKey {
		masterKey[i] = byte(i + 1)
	}

	parent, err := NewCryptoContext(1, 0, 0, masterKey, masterSalt, ProfileAESCM128HMACSHA180)
	require.NoError(t, err)

	child, err := parent.DeriveContext(2, 0)
	require.NoError(t, err)
	require.NoError(t, child.DeriveSrtpKeys(0))

	require.NoError(t, parent.DeriveSrtpKeys(0))

	pkt := buildRTPPacket(t, 2, 0, []byte("payload"))
	require.NoError(t, child.Protect(pkt))
}

func TestCryptoContextNullPolicyPassesThroughUnchanged(t *testing.T) {
	sender, receiver := newPairedContexts(t, ProfileNullNullNull)

	payload := []byte("cleartext")
	pkt := buildRTPPacket(t, 0xCAFEBABE, 0, payload)
	require.NoError(t, sender.Protect(pkt))

	ok, err := receiver.Unprotect(pkt)
	require.NoError(t, err)
	require.True(t, ok)

	var hdr rtp.Header
	payloadOffset, err := hdr.Unmarshal(pkt.Region())
	require.NoError(t, err)
	require.Equal(t, payload, pkt.Region()[payloadOffset:])
}
