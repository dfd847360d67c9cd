package srtp

// Packet is the packet buffer type CryptoContext consumes: it owns a byte
// slice, an offset marking where the RTP header starts inside it, and a
// logical length that may be shorter than the backing capacity. Protect
// grows the logical length to make room for the authentication tag;
// Unprotect shrinks it to strip the tag back off before decrypting.
//
// This mirrors wernerd/GoRTP's RawPacket: a reusable buffer with an
// in-use length distinct from capacity, grown in place instead of
// reallocated on every append.
type Packet struct {
	buf    []byte
	offset int
	length int
}

// NewPacket wraps raw as a Packet with the RTP header starting at offset 0
// and the logical length equal to len(raw). The backing array is retained,
// not copied.
func NewPacket(raw []byte) *Packet {
	return &Packet{buf: raw, offset: 0, length: len(raw)}
}

// Buffer returns the backing byte slice. Only the first Length() bytes
// after Offset() are logically part of the packet; callers that hold onto
// the returned slice across another Packet call may observe stale data if
// Append triggered a reallocation.
func (p *Packet) Buffer() []byte {
	return p.buf
}

// Offset returns the index in Buffer() at which the RTP header starts.
func (p *Packet) Offset() int {
	return p.offset
}

// Length returns the current logical length of the packet, starting at
// Offset().
func (p *Packet) Length() int {
	return p.length
}

// Region returns the logical packet as a slice: Buffer()[Offset() : Offset()+Length()].
func (p *Packet) Region() []byte {
	return p.buf[p.offset : p.offset+p.length]
}

// Append extends the packet by n bytes, copying src[:n] to the new tail.
// The backing array is grown if its capacity can't hold the new length.
func (p *Packet) Append(src []byte, n int) {
	end := p.offset + p.length
	needed := end + n
	if needed > cap(p.buf) {
		grown := make([]byte, needed, needed*2)
		copy(grown, p.buf[:end])
		p.buf = grown
	} else if needed > len(p.buf) {
		p.buf = p.buf[:needed]
	}
	copy(p.buf[end:needed], src[:n])
	p.length += n
}

// Shrink reduces the logical length by n bytes. The bytes beyond the new
// length are left in the backing array untouched (they are no longer part
// of the logical packet but are not zeroed; Unprotect only shrinks after
// it has copied the tag out via ReadRegionToBuff).
func (p *Packet) Shrink(n int) {
	p.length -= n
}

// ReadRegionToBuff copies n bytes starting at logical offset "at" (relative
// to Offset()) into dst.
func (p *Packet) ReadRegionToBuff(at, n int, dst []byte) {
	start := p.offset + at
	copy(dst, p.buf[start:start+n])
}
